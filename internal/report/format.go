package report

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders amounts with the digit grouping of a locale.
type Formatter struct {
	p *message.Printer
}

// NewFormatter falls back to English for an unknown or empty tag.
func NewFormatter(lang string) *Formatter {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}

	return &Formatter{p: message.NewPrinter(tag)}
}

// Amount formats d with two decimals and grouped thousands without going through float64.
func (f *Formatter) Amount(d decimal.Decimal) string {
	whole, frac, _ := strings.Cut(d.Abs().StringFixed(2), ".")

	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return d.StringFixed(2)
	}

	s := f.p.Sprintf("%d", n) + f.decimalSep() + frac
	if d.IsNegative() {
		s = "-" + s
	}

	return s
}

func (f *Formatter) decimalSep() string {
	// 1.5 printed with one decimal exposes the locale's separator.
	s := f.p.Sprintf("%.1f", 1.5)

	return s[1 : len(s)-1]
}

func (f *Formatter) Count(n int) string {
	return f.p.Sprintf("%d", n)
}
