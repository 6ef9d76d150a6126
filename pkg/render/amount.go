package render

import (
	"fmt"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatAmount renders a tip amount with its currency symbol, e.g.
// FormatAmount("USD", 5) -> "$ 5". Unknown currency codes fall back to a
// plain "<amount> <code>" form rather than failing.
func FormatAmount(code string, amount int) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return fmt.Sprintf("%d %s", amount, code)
	}

	return message.NewPrinter(language.English).Sprintf("%v", currency.Symbol(unit.Amount(amount)))
}
