package engine

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NotAvailable is rendered for undefined metrics.
const NotAvailable = "N/A"

var printer = message.NewPrinter(language.English)

// FormatMillions renders a sales figure (in millions) as currency, e.g.
// "$1,234.50M".
func FormatMillions(v float64) string {
	return printer.Sprintf("$%.2fM", v)
}

// FormatOptional is FormatMillions for values that may be undefined.
func FormatOptional(v *float64) string {
	if v == nil {
		return NotAvailable
	}
	return FormatMillions(*v)
}

// FormatPercent renders a share with one decimal, e.g. "42.5%".
func FormatPercent(v float64) string {
	return printer.Sprintf("%.1f%%", v)
}
