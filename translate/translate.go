// Package translate localizes the user-visible messages of a64sim.
package translate

//go:generate go tool gotext -srclang=en-US update -out=catalog.go -lang=en-US github.com/ezrec/a64sim/...

import (
	"log"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/message"
)

var printer *message.Printer

func init() {
	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("a64sim: locale: %v", err)
	}

	Use(locales...)
}

// Use selects the message printer for the best match among langs.
// With no languages, en-US is used.
func Use(langs ...string) {
	if len(langs) == 0 {
		langs = []string{"en-US"}
	}

	printer = message.NewPrinter(message.MatchLanguage(langs...))
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	return printer.Sprintf(key, args...)
}
