package main

import (
	"github.com/shopspring/decimal"
)

// payoffMaxMonths caps the simulation at 30 years. Hitting the cap means the
// payment does not cover accruing interest and the debt never pays off.
const payoffMaxMonths = 360

type PayoffResult struct {
	Months             int
	TotalInterestCents int64
	TotalPaymentCents  int64
	CapReached         bool
}

// CalculateDebtPayoff simulates fixed monthly payments against a balance with
// monthly interest accrual. All arithmetic is decimal; results are rounded to
// cents only on output. Principal and payment must be positive and the rate
// non-negative; anything else returns a zero result.
func CalculateDebtPayoff(principalCents int64, annualRatePct decimal.Decimal, paymentCents int64) PayoffResult {
	if principalCents <= 0 || paymentCents <= 0 || annualRatePct.IsNegative() {
		return PayoffResult{}
	}

	balance := decimal.New(principalCents, -2)
	payment := decimal.New(paymentCents, -2)
	monthlyRate := annualRatePct.Div(decimal.NewFromInt(12 * 100))

	totalInterest := decimal.Zero
	months := 0
	for balance.IsPositive() && months < payoffMaxMonths {
		interest := balance.Mul(monthlyRate)
		totalInterest = totalInterest.Add(interest)

		pay := payment
		// Clamp the final payment so the debt is settled exactly.
		if pay.GreaterThan(balance.Add(interest)) {
			pay = balance.Add(interest)
		}
		balance = balance.Sub(pay.Sub(interest))
		months++
	}

	interestCents := totalInterest.Shift(2).Round(0).IntPart()
	return PayoffResult{
		Months:             months,
		TotalInterestCents: interestCents,
		TotalPaymentCents:  principalCents + interestCents,
		CapReached:         balance.IsPositive(),
	}
}
