package main

import (
	"fmt"
	"log"
	"net/http"
	"time"
)

// BudgetView pairs a stored budget with its progress inside the current
// period window.
type BudgetView struct {
	BudgetRow
	Progress BudgetProgress
}

func (a *App) handleBudget(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", 405)
		return
	}

	userID := getUserID(r)
	now := time.Now()

	budgets, err := listBudgets(a.db, userID)
	if err != nil {
		log.Printf("Error listing budgets: %v", err)
		http.Error(w, "Internal server error", 500)
		return
	}

	views := make([]BudgetView, 0, len(budgets))
	for _, b := range budgets {
		start, end := periodWindow(b.Period, now)
		spent, err := sumExpensesForCategoryBetween(a.db, userID, b.CategoryID, start, end)
		if err != nil {
			log.Printf("Error summing spend for budget %d: %v", b.ID, err)
			http.Error(w, "Internal server error", 500)
			return
		}
		views = append(views, BudgetView{
			BudgetRow: b,
			Progress:  ComputeBudgetProgress(b.AmountCents, spent, true),
		})
	}

	categories, err := listCategories(a.db, userID, KindExpense)
	if err != nil {
		log.Printf("Error listing expense categories: %v", err)
		http.Error(w, "Internal server error", 500)
		return
	}

	// Categories without any budget, shown as not-set so a missing budget is
	// visible rather than silently on track.
	budgeted := make(map[int64]bool)
	for _, b := range budgets {
		budgeted[b.CategoryID] = true
	}
	var unbudgeted []Category
	for _, c := range categories {
		if !budgeted[c.ID] {
			unbudgeted = append(unbudgeted, c)
		}
	}

	flash, flashType := a.getFlash(r)
	a.render(w, http.StatusOK, "budget.html", map[string]any{
		"User":       currentUser(r),
		"Budgets":    views,
		"Categories": categories,
		"Unbudgeted": unbudgeted,
		"Flash":      flash,
		"FlashType":  flashType,
		"CSRFToken":  a.getCSRFToken(r),
	})
}

// handleBudgetSet creates or replaces the budget for (category, period).
// Setting an existing pair overwrites the amount instead of erroring.
func (a *App) handleBudgetSet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", 405)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}

	userID := getUserID(r)
	c, err := a.resolveCategory(userID, r.FormValue("category_id"), KindExpense)
	if err != nil {
		a.setFlash(w, "Invalid budget: "+err.Error(), true)
		http.Redirect(w, r, "/budget", http.StatusSeeOther)
		return
	}
	amount, err := parseAmountCents(r.FormValue("amount"))
	if err != nil {
		a.setFlash(w, "Invalid budget: "+err.Error(), true)
		http.Redirect(w, r, "/budget", http.StatusSeeOther)
		return
	}
	period := r.FormValue("period")
	if !validPeriods[period] {
		a.setFlash(w, "Invalid budget period", true)
		http.Redirect(w, r, "/budget", http.StatusSeeOther)
		return
	}

	start, _ := periodWindow(period, time.Now())
	b := Budget{
		UserID:      userID,
		CategoryID:  c.ID,
		AmountCents: amount,
		Period:      period,
		StartDate:   start,
	}
	if err := upsertBudget(a.db, b); err != nil {
		log.Printf("Error saving budget: %v", err)
		a.setFlash(w, "Failed to save budget", true)
		http.Redirect(w, r, "/budget", http.StatusSeeOther)
		return
	}
	a.setFlash(w, fmt.Sprintf("%s budget for %s set to %s", budgetPeriodLabel(period), c.Name, money(amount)), false)
	http.Redirect(w, r, "/budget", http.StatusSeeOther)
}

func budgetPeriodLabel(period string) string {
	if period == PeriodWeekly {
		return "Weekly"
	}
	return "Monthly"
}

func (a *App) handleBudgetDelete(w http.ResponseWriter, r *http.Request) {
	a.confirmThenDelete(w, r, deleteTarget{
		Title:    "Delete budget",
		Action:   "/budget/delete",
		Redirect: "/budget",
		Success:  "Budget deleted",
		Load: func(userID, id int64) (string, error) {
			b, err := getBudget(a.db, userID, id)
			if err != nil {
				return "", err
			}
			c, err := getCategory(a.db, userID, b.CategoryID)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%s %s budget (%s)", budgetPeriodLabel(b.Period), c.Name, money(b.AmountCents)), nil
		},
		Delete: func(userID, id int64) error {
			return deleteBudget(a.db, userID, id)
		},
	})
}
