package main

import (
	"log"
	"net/http"
	"time"
)

// handleDashboard shows the current month at a glance: totals, savings,
// outstanding debt, a category breakdown, and the latest transactions.
func (a *App) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", 405)
		return
	}

	userID := getUserID(r)
	monthStart, monthEnd := periodWindow(PeriodMonthly, time.Now())

	incomeTotal, err := sumIncomeBetween(a.db, userID, monthStart, monthEnd)
	if err != nil {
		log.Printf("Error summing income: %v", err)
		http.Error(w, "Internal server error", 500)
		return
	}
	expenseTotal, err := sumExpensesBetween(a.db, userID, monthStart, monthEnd)
	if err != nil {
		log.Printf("Error summing expenses: %v", err)
		http.Error(w, "Internal server error", 500)
		return
	}
	debtTotal, err := totalDebtBalance(a.db, userID)
	if err != nil {
		log.Printf("Error summing debt balances: %v", err)
		http.Error(w, "Internal server error", 500)
		return
	}
	breakdown, err := expenseCategorySumsBetween(a.db, userID, monthStart, monthEnd)
	if err != nil {
		log.Printf("Error loading category breakdown: %v", err)
		http.Error(w, "Internal server error", 500)
		return
	}
	recent, err := recentTransactions(a.db, userID, 5)
	if err != nil {
		log.Printf("Error loading recent transactions: %v", err)
		http.Error(w, "Internal server error", 500)
		return
	}
	goals, err := listGoals(a.db, userID)
	if err != nil {
		log.Printf("Error listing goals: %v", err)
		http.Error(w, "Internal server error", 500)
		return
	}

	// Categories currently over their budget, for the warning banner
	budgets, err := listBudgets(a.db, userID)
	if err != nil {
		log.Printf("Error listing budgets: %v", err)
		http.Error(w, "Internal server error", 500)
		return
	}
	var overBudget []string
	for _, b := range budgets {
		p, err := budgetProgress(a.db, userID, b.CategoryID, b.Period, time.Now())
		if err != nil {
			log.Printf("Error computing budget progress for %d: %v", b.ID, err)
			http.Error(w, "Internal server error", 500)
			return
		}
		if p.Status == BudgetOver {
			overBudget = append(overBudget, b.CategoryName)
		}
	}

	activeGoals := 0
	for _, g := range goals {
		if g.Status == StatusInProgress {
			activeGoals++
		}
	}

	flash, flashType := a.getFlash(r)
	a.render(w, http.StatusOK, "dashboard.html", map[string]any{
		"User":         currentUser(r),
		"MonthStart":   monthStart,
		"MonthEnd":     monthEnd,
		"IncomeTotal":  incomeTotal,
		"ExpenseTotal": expenseTotal,
		"Savings":      MonthlySavings(incomeTotal, expenseTotal),
		"SavingsRate":  SavingsRate(incomeTotal, expenseTotal),
		"DebtTotal":    debtTotal,
		"Breakdown":    breakdown,
		"Recent":       recent,
		"ActiveGoals":  activeGoals,
		"OverBudget":   overBudget,
		"Flash":        flash,
		"FlashType":    flashType,
		"CSRFToken":    a.getCSRFToken(r),
	})
}
