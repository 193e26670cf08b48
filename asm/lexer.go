package asm

import (
	"regexp"
	"strings"
)

// Token is a lexical token of an assembly line, with its byte span.
type Token struct {
	Text  string
	Start int
	End   int
}

func (tok Token) is(text string) bool {
	return tok.Text == text
}

var tokenRe = regexp.MustCompile(`0[xXoObB][0-9a-fA-F_]+|[0-9]+|[A-Za-z_.][A-Za-z0-9_.]*|<<|>>|\*\*|==|!=|<=|>=|\S`)

// Tokenize splits a line into tokens. Comments must already be removed.
func Tokenize(line string) (tokens []Token) {
	for _, loc := range tokenRe.FindAllStringIndex(line, -1) {
		tokens = append(tokens, Token{Text: line[loc[0]:loc[1]], Start: loc[0], End: loc[1]})
	}
	return
}

// span returns the byte span covered by the tokens.
func span(tokens []Token) (start, end int) {
	if len(tokens) == 0 {
		return
	}
	return tokens[0].Start, tokens[len(tokens)-1].End
}

// join returns the text of the tokens, space separated.
func join(tokens []Token) string {
	words := make([]string, len(tokens))
	for n, tok := range tokens {
		words[n] = tok.Text
	}
	return strings.Join(words, " ")
}

// split splits tokens on commas outside of brackets and parentheses.
func split(tokens []Token) (groups [][]Token) {
	if len(tokens) == 0 {
		return
	}

	depth := 0
	last := 0
	for n, tok := range tokens {
		switch tok.Text {
		case "[", "(":
			depth++
		case "]", ")":
			depth--
		case ",":
			if depth == 0 {
				groups = append(groups, tokens[last:n])
				last = n + 1
			}
		}
	}
	groups = append(groups, tokens[last:])

	return
}
