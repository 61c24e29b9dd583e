// Calculators: budget-period progress, goal progress, and savings figures.
package main

import (
	"database/sql"
	"time"
)

type BudgetStatus string

const (
	// BudgetNotSet means no budget row exists for the (category, period, user)
	// tuple. Distinct from a fully-remaining budget on purpose: "not
	// configured" must not read as "on track".
	BudgetNotSet BudgetStatus = "not_set"
	BudgetUnder  BudgetStatus = "under"
	BudgetOver   BudgetStatus = "over"
)

type BudgetProgress struct {
	Status         BudgetStatus
	PercentUsed    float64
	BudgetCents    int64
	SpentCents     int64
	RemainingCents int64
}

// periodWindow returns the inclusive date window a budget period covers:
// monthly is the first through last calendar day of the current month, weekly
// is Monday through Sunday of the current ISO week.
func periodWindow(period string, now time.Time) (time.Time, time.Time) {
	switch period {
	case PeriodWeekly:
		wd := int(now.Weekday())
		if wd == 0 {
			wd = 7 // Sunday belongs to the week that started the previous Monday
		}
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -(wd - 1))
		return start, start.AddDate(0, 0, 6)
	default:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return start, start.AddDate(0, 1, -1)
	}
}

// ComputeBudgetProgress derives the tri-state progress figure from a budget
// amount and the spend inside its period window.
func ComputeBudgetProgress(budgetCents, spentCents int64, hasBudget bool) BudgetProgress {
	if !hasBudget {
		return BudgetProgress{Status: BudgetNotSet}
	}
	p := BudgetProgress{
		BudgetCents:    budgetCents,
		SpentCents:     spentCents,
		RemainingCents: budgetCents - spentCents,
	}
	if budgetCents > 0 {
		p.PercentUsed = float64(spentCents) / float64(budgetCents) * 100.0
	}
	if spentCents > budgetCents {
		p.Status = BudgetOver
	} else {
		p.Status = BudgetUnder
	}
	return p
}

// budgetProgress looks up the budget for (category, period, user), sums the
// user's expenses for that category inside the current period window, and
// reports progress. A missing budget row reports the explicit not-set state
// with zero progress and zero remaining.
func budgetProgress(db *sql.DB, userID, categoryID int64, period string, now time.Time) (BudgetProgress, error) {
	b, err := getBudgetForCategory(db, userID, categoryID, period)
	if err == sql.ErrNoRows {
		return ComputeBudgetProgress(0, 0, false), nil
	}
	if err != nil {
		return BudgetProgress{}, err
	}
	start, end := periodWindow(period, now)
	spent, err := sumExpensesForCategoryBetween(db, userID, categoryID, start, end)
	if err != nil {
		return BudgetProgress{}, err
	}
	return ComputeBudgetProgress(b.AmountCents, spent, true), nil
}

// GoalProgress returns the percent saved toward a target, clamped to
// [0, 100]. A zero target reports 0 rather than dividing by zero.
func GoalProgress(currentCents, targetCents int64) float64 {
	if targetCents <= 0 {
		return 0.0
	}
	pct := float64(currentCents) / float64(targetCents) * 100.0
	if pct > 100.0 {
		return 100.0
	}
	if pct < 0.0 {
		return 0.0
	}
	return pct
}

// MonthlySavings is income minus expenses for a window, in cents.
func MonthlySavings(incomeCents, expenseCents int64) int64 {
	return incomeCents - expenseCents
}

// SavingsRate is the saved share of income as a percentage; 0 when there is
// no income.
func SavingsRate(incomeCents, expenseCents int64) float64 {
	if incomeCents <= 0 {
		return 0.0
	}
	return float64(incomeCents-expenseCents) / float64(incomeCents) * 100.0
}
