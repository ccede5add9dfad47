// Package translate localizes the user visible messages of the toolchain.
package translate

import (
	"log"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/message"
)

// Fallback is the language used when the host reports no locale.
const Fallback = "en-US"

var printer *message.Printer

func init() {
	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("easycpu: locale: %v", err)
	}

	if len(locales) == 0 {
		locales = []string{Fallback}
	}

	printer = message.NewPrinter(message.MatchLanguage(locales...))
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	return printer.Sprintf(key, args...)
}
