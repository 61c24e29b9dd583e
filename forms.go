// Form parsing and validation helpers shared by the handlers.
package main

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// parseAmountCents converts a dollar amount form field ("1,234.56", "$40")
// into non-negative cents. Fractions of a cent are rejected rather than
// silently rounded.
func parseAmountCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, fmt.Errorf("amount is required")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("amount cannot be negative")
	}
	cents := d.Shift(2)
	if !cents.Equal(cents.Truncate(0)) {
		return 0, fmt.Errorf("amount has more than two decimal places")
	}
	return cents.IntPart(), nil
}

// parseRateBps converts an annual percentage rate form field ("19.99") into
// non-negative basis points.
func parseRateBps(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	if s == "" {
		return 0, fmt.Errorf("rate is required")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid rate %q", s)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("rate cannot be negative")
	}
	bps := d.Shift(2)
	if !bps.Equal(bps.Truncate(0)) {
		return 0, fmt.Errorf("rate has more than two decimal places")
	}
	return bps.IntPart(), nil
}

// bpsToRatePct is the inverse of parseRateBps, for feeding stored rates into
// the payoff calculator.
func bpsToRatePct(bps int64) decimal.Decimal {
	return decimal.New(bps, -2)
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(s))
}

// parseOptionalID maps an empty select value to NULL.
func parseOptionalID(s string) (sql.NullInt64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return sql.NullInt64{}, nil
	}
	id, err := parseInt64(s)
	if err != nil {
		return sql.NullInt64{}, err
	}
	return sql.NullInt64{Int64: id, Valid: true}, nil
}

var validPeriods = map[string]bool{
	PeriodWeekly:  true,
	PeriodMonthly: true,
}

var validNecessityLevels = map[string]bool{
	NecessityEssential: true,
	NecessityImportant: true,
	NecessityOptional:  true,
}

var validFrequencies = map[string]bool{
	FreqOneTime:  true,
	FreqWeekly:   true,
	FreqMonthly:  true,
	FreqAnnually: true,
}

var validSourceKinds = map[string]bool{
	SourceCreditCard:  true,
	SourceDebitCard:   true,
	SourceBankAccount: true,
}

var validPriorities = map[string]bool{
	PriorityHigh:   true,
	PriorityMedium: true,
	PriorityLow:    true,
}

func validLastFour(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
