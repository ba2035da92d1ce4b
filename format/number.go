package format

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// NumberWithCommas groups the integer part of d in thousands, keeping the
// fraction as is: 1234567.5 renders as "1,234,567.5".
func NumberWithCommas(d decimal.Decimal) string {
	if d.IsZero() {
		return "0"
	}

	abs := d.Abs()
	whole, frac, _ := strings.Cut(abs.String(), ".")
	grouped := printer.Sprintf("%d", abs.IntPart())
	if !abs.LessThan(decimal.New(1, 18)) {
		grouped = groupDigits(whole)
	}

	var b strings.Builder
	if d.IsNegative() {
		b.WriteByte('-')
	}
	b.WriteString(grouped)
	if frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}

func Int(n int64) string {
	return printer.Sprintf("%d", n)
}

// groupDigits handles values beyond int64.
func groupDigits(digits string) string {
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}
