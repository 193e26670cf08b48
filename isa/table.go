package isa

import (
	"errors"
	"iter"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Table is an opcode table.
//
// Entries are kept in declaration order. Assembly tries the forms of a
// mnemonic in that order, and decoding tries all entries in that order, so
// an alias must be declared before the general encoding it restricts.
type Table struct {
	entries []*Entry
	forms   *orderedmap.OrderedMap[string, []*Entry]
}

// NewTable validates the entries and builds a table from them.
func NewTable(entries ...*Entry) (table *Table, err error) {
	table = &Table{
		forms: orderedmap.New[string, []*Entry](),
	}

	var errs []error
	for _, e := range entries {
		err = e.Validate()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		table.entries = append(table.entries, e)
		forms, _ := table.forms.Get(e.Mnemonic)
		table.forms.Set(e.Mnemonic, append(forms, e))
	}

	err = errors.Join(errs...)
	if err != nil {
		table = nil
	}

	return
}

// MustTable builds a table, and panics on error.
func MustTable(entries ...*Entry) *Table {
	table, err := NewTable(entries...)
	if err != nil {
		panic(err)
	}
	return table
}

// Len returns the number of entries.
func (table *Table) Len() int {
	return len(table.entries)
}

// Forms returns the entries of a mnemonic, in declaration order.
func (table *Table) Forms(mnemonic string) []*Entry {
	forms, _ := table.forms.Get(mnemonic)
	return forms
}

// Mnemonics iterates over the mnemonics, in order of first declaration.
func (table *Table) Mnemonics() iter.Seq[string] {
	return func(yield func(string) bool) {
		for pair := table.forms.Oldest(); pair != nil; pair = pair.Next() {
			if !yield(pair.Key) {
				return
			}
		}
	}
}

// Entries iterates over all entries, in declaration order.
func (table *Table) Entries() iter.Seq[*Entry] {
	return func(yield func(*Entry) bool) {
		for _, e := range table.entries {
			if !yield(e) {
				return
			}
		}
	}
}

// Decode finds the first entry whose literal bits match the word, and
// whose shift and extend fields it allows, and returns its fields. Presets
// fill fields the pattern does not hold.
func (table *Table) Decode(word uint32) (e *Entry, fields Fields, ok bool) {
	for _, e = range table.entries {
		if !e.Pattern.Matches(word) {
			continue
		}
		fields, _ = e.Pattern.Decode(word)
		if !e.Allows(fields) {
			continue
		}
		fields = e.Preset.Merge(fields)
		ok = true
		return
	}

	e = nil
	return
}

// Encode builds the instruction word of an entry.
func (table *Table) Encode(e *Entry, fields Fields) (word uint32, err error) {
	return e.Pattern.Encode(e.Preset.Merge(fields))
}
