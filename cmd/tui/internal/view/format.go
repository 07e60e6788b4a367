package view

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tillbook/internal/ledger"
)

const dbTimeout = 5 * time.Second

// FormatAmount renders money with two decimals.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func FormatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}

// FormatVariance colours a variance: green when the drawer balanced, amber over, red short.
func FormatVariance(d decimal.Decimal) string {
	s := FormatAmount(d)

	switch {
	case d.IsZero():
		return okStyle.Render(s)
	case d.IsPositive():
		return warnStyle.Render("+" + s)
	default:
		return errorStyle.Render(s)
	}
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}

func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return decimal.Zero, errors.New("amount is required")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("not a number: %s", s)
	}

	if d.IsNegative() {
		return decimal.Zero, errors.New("amount cannot be negative")
	}

	if !ledger.WholeCents(d) {
		return decimal.Zero, errors.New("at most 2 decimal places")
	}

	return d, nil
}

func validateAmount(s string) error {
	_, err := parseAmount(s)
	return err
}
