// Package currency renders amounts for display. Nothing here participates in
// financial computation; prices stay integer minor units throughout the core.
package currency

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/kaoruharada/marketcore-backend/pkg/enums"
)

var symbolByCode = map[enums.Currency]string{
	enums.CurrencyUSD: "$",
	enums.CurrencyEUR: "€",
	enums.CurrencyGBP: "£",
	enums.CurrencyJPY: "¥",
}

var printer = message.NewPrinter(language.English)

// Symbol returns the display symbol for a currency code, falling back to the
// code itself for anything outside the table.
func Symbol(code enums.Currency) string {
	if symbol, ok := symbolByCode[code]; ok {
		return symbol
	}
	return string(code)
}

// Display renders an amount with its currency symbol and digit grouping,
// e.g. Display(CurrencyJPY, 1980000) == "¥1,980,000".
func Display(code enums.Currency, amount int64) string {
	return printer.Sprintf("%s%d", Symbol(code), amount)
}
