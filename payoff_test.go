package main

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCalculateDebtPayoff(t *testing.T) {
	// $1000 at 12% APR with $100/month pays off in under a year with
	// modest interest.
	res := CalculateDebtPayoff(100000, decimal.NewFromInt(12), 10000)
	if res.CapReached {
		t.Fatalf("unexpected cap: %+v", res)
	}
	if res.Months < 10 || res.Months > 11 {
		t.Errorf("months = %d, want 10-11", res.Months)
	}
	if res.TotalInterestCents <= 0 || res.TotalInterestCents >= 6000 {
		t.Errorf("interest = %d cents, want between 0 and 6000", res.TotalInterestCents)
	}
}

func TestCalculateDebtPayoffTotalIdentity(t *testing.T) {
	cases := []struct {
		principal int64
		rate      string
		payment   int64
	}{
		{100000, "12", 10000},
		{250000, "19.99", 7500},
		{50000, "0", 5000},
		{123456, "6.5", 20000},
	}
	for _, c := range cases {
		res := CalculateDebtPayoff(c.principal, decimal.RequireFromString(c.rate), c.payment)
		if res.CapReached {
			continue
		}
		if got := res.TotalPaymentCents; got != c.principal+res.TotalInterestCents {
			t.Errorf("payoff(%d, %s, %d): total %d != principal %d + interest %d",
				c.principal, c.rate, c.payment, got, c.principal, res.TotalInterestCents)
		}
	}
}

func TestCalculateDebtPayoffZeroRate(t *testing.T) {
	res := CalculateDebtPayoff(100000, decimal.Zero, 10000)
	if res.CapReached {
		t.Fatalf("unexpected cap: %+v", res)
	}
	if res.Months != 10 {
		t.Errorf("months = %d, want 10", res.Months)
	}
	if res.TotalInterestCents != 0 {
		t.Errorf("interest = %d, want 0", res.TotalInterestCents)
	}
	if res.TotalPaymentCents != 100000 {
		t.Errorf("total = %d, want 100000", res.TotalPaymentCents)
	}
}

func TestCalculateDebtPayoffCap(t *testing.T) {
	// $10/month against $1000 at 24% APR never outruns the interest.
	res := CalculateDebtPayoff(100000, decimal.NewFromInt(24), 1000)
	if !res.CapReached {
		t.Fatalf("expected cap to be reached: %+v", res)
	}
	if res.Months != payoffMaxMonths {
		t.Errorf("months = %d, want %d", res.Months, payoffMaxMonths)
	}
}

func TestCalculateDebtPayoffInvalidInput(t *testing.T) {
	cases := []struct {
		name      string
		principal int64
		rate      string
		payment   int64
	}{
		{"zero principal", 0, "12", 10000},
		{"negative principal", -100, "12", 10000},
		{"zero payment", 100000, "12", 0},
		{"negative rate", 100000, "-1", 10000},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			res := CalculateDebtPayoff(c.principal, decimal.RequireFromString(c.rate), c.payment)
			if res != (PayoffResult{}) {
				t.Errorf("got %+v, want zero result", res)
			}
		})
	}
}
