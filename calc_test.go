package main

import (
	"testing"
	"time"
)

func TestGoalProgress(t *testing.T) {
	cases := []struct {
		name    string
		current int64
		target  int64
		want    float64
	}{
		{"halfway", 10000, 20000, 50.0},
		{"quarter", 5000, 20000, 25.0},
		{"overshoot clamps to 100", 30000, 20000, 100.0},
		{"exactly done", 20000, 20000, 100.0},
		{"zero target", 5000, 0, 0.0},
		{"nothing saved", 0, 20000, 0.0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := GoalProgress(c.current, c.target); got != c.want {
				t.Errorf("GoalProgress(%d, %d) = %v, want %v", c.current, c.target, got, c.want)
			}
		})
	}
}

func TestComputeBudgetProgress(t *testing.T) {
	t.Run("no budget set", func(t *testing.T) {
		p := ComputeBudgetProgress(0, 0, false)
		if p.Status != BudgetNotSet {
			t.Errorf("status = %q, want %q", p.Status, BudgetNotSet)
		}
		if p.PercentUsed != 0 || p.RemainingCents != 0 {
			t.Errorf("not-set progress should be zeroed: %+v", p)
		}
	})

	t.Run("under budget", func(t *testing.T) {
		p := ComputeBudgetProgress(50000, 20000, true)
		if p.Status != BudgetUnder {
			t.Errorf("status = %q, want %q", p.Status, BudgetUnder)
		}
		if p.PercentUsed != 40.0 {
			t.Errorf("percent = %v, want 40", p.PercentUsed)
		}
		if p.RemainingCents != 30000 {
			t.Errorf("remaining = %d, want 30000", p.RemainingCents)
		}
	})

	t.Run("over budget", func(t *testing.T) {
		p := ComputeBudgetProgress(50000, 60000, true)
		if p.Status != BudgetOver {
			t.Errorf("status = %q, want %q", p.Status, BudgetOver)
		}
		if p.RemainingCents != -10000 {
			t.Errorf("remaining = %d, want -10000", p.RemainingCents)
		}
	})

	t.Run("spent equals budget", func(t *testing.T) {
		p := ComputeBudgetProgress(50000, 50000, true)
		if p.Status != BudgetUnder {
			t.Errorf("status = %q, want %q (spending to the cap is not over)", p.Status, BudgetUnder)
		}
		if p.PercentUsed != 100.0 {
			t.Errorf("percent = %v, want 100", p.PercentUsed)
		}
	})

	t.Run("zero budget with spend", func(t *testing.T) {
		p := ComputeBudgetProgress(0, 100, true)
		if p.Status != BudgetOver {
			t.Errorf("status = %q, want %q", p.Status, BudgetOver)
		}
	})
}

func TestPeriodWindow(t *testing.T) {
	loc := time.UTC
	cases := []struct {
		name      string
		period    string
		now       time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			"monthly mid-month",
			PeriodMonthly,
			time.Date(2025, 3, 17, 15, 4, 5, 0, loc),
			time.Date(2025, 3, 1, 0, 0, 0, 0, loc),
			time.Date(2025, 3, 31, 0, 0, 0, 0, loc),
		},
		{
			"monthly february",
			PeriodMonthly,
			time.Date(2025, 2, 1, 0, 0, 0, 0, loc),
			time.Date(2025, 2, 1, 0, 0, 0, 0, loc),
			time.Date(2025, 2, 28, 0, 0, 0, 0, loc),
		},
		{
			"weekly wednesday",
			PeriodWeekly,
			time.Date(2025, 3, 19, 12, 0, 0, 0, loc), // Wednesday
			time.Date(2025, 3, 17, 0, 0, 0, 0, loc),  // Monday
			time.Date(2025, 3, 23, 0, 0, 0, 0, loc),  // Sunday
		},
		{
			"weekly sunday belongs to previous monday",
			PeriodWeekly,
			time.Date(2025, 3, 23, 12, 0, 0, 0, loc), // Sunday
			time.Date(2025, 3, 17, 0, 0, 0, 0, loc),
			time.Date(2025, 3, 23, 0, 0, 0, 0, loc),
		},
		{
			"weekly monday",
			PeriodWeekly,
			time.Date(2025, 3, 17, 0, 0, 0, 0, loc),
			time.Date(2025, 3, 17, 0, 0, 0, 0, loc),
			time.Date(2025, 3, 23, 0, 0, 0, 0, loc),
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			start, end := periodWindow(c.period, c.now)
			if !start.Equal(c.wantStart) {
				t.Errorf("start = %v, want %v", start, c.wantStart)
			}
			if !end.Equal(c.wantEnd) {
				t.Errorf("end = %v, want %v", end, c.wantEnd)
			}
		})
	}
}

func TestSavingsRate(t *testing.T) {
	cases := []struct {
		name    string
		income  int64
		expense int64
		want    float64
	}{
		{"half saved", 100000, 50000, 50.0},
		{"nothing saved", 100000, 100000, 0.0},
		{"overspent", 100000, 150000, -50.0},
		{"no income", 0, 50000, 0.0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := SavingsRate(c.income, c.expense); got != c.want {
				t.Errorf("SavingsRate(%d, %d) = %v, want %v", c.income, c.expense, got, c.want)
			}
		})
	}
}
