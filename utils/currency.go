package utils

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var inrPrinter = message.NewPrinter(language.MustParse("en-IN"))

// FormatINR renders an amount of whole rupees with Indian digit grouping,
// e.g. 307500 -> "₹3,07,500".
func FormatINR(amount int64) string {
	return inrPrinter.Sprintf("₹%v", number.Decimal(amount))
}
