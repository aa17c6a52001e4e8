// Package translate renders human-readable relay text through a
// golang.org/x/text message printer matched to the host locale.
package translate

import (
	"log"
	"sync/atomic"

	"github.com/jeandeaual/go-locale"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// printer is read by every goroutine that formats a trace line; Use may
// swap it while they run.
var printer atomic.Pointer[message.Printer]

func init() {
	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("relay: locale: %v", err)
	}

	if len(locales) == 0 {
		locales = []string{"en-US"}
	}

	printer.Store(message.NewPrinter(message.MatchLanguage(locales...)))
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	return printer.Load().Sprintf(key, args...)
}

// Use replaces the package printer with one for the given language tag.
// Tests use it to pin output to a known locale. Safe to call while other
// goroutines are calling From.
func Use(tag language.Tag) {
	printer.Store(message.NewPrinter(tag))
}
