package main

import (
	"fmt"
	"html"
	"log"
	"net/http"
	"strings"
)

// handleTransactions lists income and expenses side by side with the forms
// used to record new entries.
func (a *App) handleTransactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", 405)
		return
	}

	userID := getUserID(r)
	income, err := listIncome(a.db, userID)
	if err != nil {
		log.Printf("Error listing income: %v", err)
		http.Error(w, "Internal server error", 500)
		return
	}
	expenses, err := listExpenses(a.db, userID)
	if err != nil {
		log.Printf("Error listing expenses: %v", err)
		http.Error(w, "Internal server error", 500)
		return
	}
	incomeCategories, err := listCategories(a.db, userID, KindIncome)
	if err != nil {
		log.Printf("Error listing income categories: %v", err)
		http.Error(w, "Internal server error", 500)
		return
	}
	expenseCategories, err := listCategories(a.db, userID, KindExpense)
	if err != nil {
		log.Printf("Error listing expense categories: %v", err)
		http.Error(w, "Internal server error", 500)
		return
	}
	sources, err := listPaymentSources(a.db, userID, true)
	if err != nil {
		log.Printf("Error listing payment sources: %v", err)
		http.Error(w, "Internal server error", 500)
		return
	}

	flash, flashType := a.getFlash(r)
	a.render(w, http.StatusOK, "transactions.html", map[string]any{
		"User":              currentUser(r),
		"Income":            income,
		"Expenses":          expenses,
		"IncomeCategories":  incomeCategories,
		"ExpenseCategories": expenseCategories,
		"Sources":           sources,
		"Flash":             flash,
		"FlashType":         flashType,
		"CSRFToken":         a.getCSRFToken(r),
	})
}

// resolveCategory checks that the submitted category exists, is visible to
// the user, and carries the expected kind.
func (a *App) resolveCategory(userID int64, idStr, kind string) (Category, error) {
	id, err := parseInt64(idStr)
	if err != nil {
		return Category{}, fmt.Errorf("invalid category")
	}
	c, err := getCategory(a.db, userID, id)
	if err != nil {
		return Category{}, fmt.Errorf("category not found")
	}
	if c.Kind != kind {
		return Category{}, fmt.Errorf("category %q is not an %s category", c.Name, kind)
	}
	return c, nil
}

func (a *App) parseIncomeForm(r *http.Request) (Income, error) {
	userID := getUserID(r)
	var in Income
	in.UserID = userID

	in.Description = html.EscapeString(strings.TrimSpace(r.FormValue("description")))
	if in.Description == "" {
		return in, fmt.Errorf("description is required")
	}

	amount, err := parseAmountCents(r.FormValue("amount"))
	if err != nil {
		return in, err
	}
	in.AmountCents = amount

	c, err := a.resolveCategory(userID, r.FormValue("category_id"), KindIncome)
	if err != nil {
		return in, err
	}
	in.CategoryID = c.ID

	in.Date, err = parseDate(r.FormValue("date"))
	if err != nil {
		return in, fmt.Errorf("invalid date")
	}

	in.Recurring = r.FormValue("recurring") == "on" || r.FormValue("recurring") == "1"
	in.Frequency = r.FormValue("frequency")
	if !in.Recurring {
		in.Frequency = FreqOneTime
	}
	if !validFrequencies[in.Frequency] {
		return in, fmt.Errorf("invalid frequency")
	}
	return in, nil
}

func (a *App) handleIncomeCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", 405)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}

	in, err := a.parseIncomeForm(r)
	if err != nil {
		a.setFlash(w, "Invalid income entry: "+err.Error(), true)
		http.Redirect(w, r, "/transactions", http.StatusSeeOther)
		return
	}

	if _, err := createIncome(a.db, in); err != nil {
		log.Printf("Error creating income: %v", err)
		a.setFlash(w, "Failed to record income", true)
		http.Redirect(w, r, "/transactions", http.StatusSeeOther)
		return
	}
	a.setFlash(w, "Income recorded", false)
	http.Redirect(w, r, "/transactions", http.StatusSeeOther)
}

func (a *App) handleIncomeEdit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", 405)
		return
	}
	id, err := parseInt64(r.URL.Query().Get("id"))
	if err != nil {
		http.Error(w, "bad id", 400)
		return
	}
	userID := getUserID(r)
	in, err := getIncome(a.db, userID, id)
	if err != nil {
		http.Error(w, "Income entry not found", 404)
		return
	}
	categories, err := listCategories(a.db, userID, KindIncome)
	if err != nil {
		log.Printf("Error listing income categories: %v", err)
		http.Error(w, "Internal server error", 500)
		return
	}
	flash, flashType := a.getFlash(r)
	a.render(w, http.StatusOK, "income_edit.html", map[string]any{
		"User":       currentUser(r),
		"Income":     in,
		"Categories": categories,
		"Flash":      flash,
		"FlashType":  flashType,
		"CSRFToken":  a.getCSRFToken(r),
	})
}

func (a *App) handleIncomeUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", 405)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}

	id, err := parseInt64(r.FormValue("id"))
	if err != nil {
		http.Error(w, "bad id", 400)
		return
	}
	in, err := a.parseIncomeForm(r)
	if err != nil {
		a.setFlash(w, "Invalid income entry: "+err.Error(), true)
		http.Redirect(w, r, fmt.Sprintf("/income/edit?id=%d", id), http.StatusSeeOther)
		return
	}
	in.ID = id

	if err := updateIncome(a.db, in); err != nil {
		log.Printf("Error updating income %d: %v", id, err)
		a.setFlash(w, "Failed to update income", true)
		http.Redirect(w, r, fmt.Sprintf("/income/edit?id=%d", id), http.StatusSeeOther)
		return
	}
	a.setFlash(w, "Income updated", false)
	http.Redirect(w, r, "/transactions", http.StatusSeeOther)
}

func (a *App) handleIncomeDelete(w http.ResponseWriter, r *http.Request) {
	a.confirmThenDelete(w, r, deleteTarget{
		Title:    "Delete income entry",
		Action:   "/income/delete",
		Redirect: "/transactions",
		Success:  "Income entry deleted",
		Load: func(userID, id int64) (string, error) {
			in, err := getIncome(a.db, userID, id)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%s (%s)", in.Description, money(in.AmountCents)), nil
		},
		Delete: func(userID, id int64) error {
			return deleteIncome(a.db, userID, id)
		},
	})
}

func (a *App) parseExpenseForm(r *http.Request) (Expense, error) {
	userID := getUserID(r)
	var e Expense
	e.UserID = userID

	e.Description = html.EscapeString(strings.TrimSpace(r.FormValue("description")))
	if e.Description == "" {
		return e, fmt.Errorf("description is required")
	}

	amount, err := parseAmountCents(r.FormValue("amount"))
	if err != nil {
		return e, err
	}
	e.AmountCents = amount

	c, err := a.resolveCategory(userID, r.FormValue("category_id"), KindExpense)
	if err != nil {
		return e, err
	}
	e.CategoryID = c.ID

	e.PaymentSourceID, err = parseOptionalID(r.FormValue("payment_source_id"))
	if err != nil {
		return e, fmt.Errorf("invalid payment source")
	}
	if e.PaymentSourceID.Valid {
		s, err := getPaymentSource(a.db, userID, e.PaymentSourceID.Int64)
		if err != nil {
			return e, fmt.Errorf("payment source not found")
		}
		if !s.Active {
			return e, fmt.Errorf("payment source %q is inactive", s.Name)
		}
	}

	e.Date, err = parseDate(r.FormValue("date"))
	if err != nil {
		return e, fmt.Errorf("invalid date")
	}

	e.NecessityLevel = r.FormValue("necessity_level")
	if !validNecessityLevels[e.NecessityLevel] {
		return e, fmt.Errorf("invalid necessity level")
	}

	e.Recurring = r.FormValue("recurring") == "on" || r.FormValue("recurring") == "1"
	e.Frequency = r.FormValue("frequency")
	if !e.Recurring {
		e.Frequency = FreqOneTime
	}
	if !validFrequencies[e.Frequency] {
		return e, fmt.Errorf("invalid frequency")
	}
	return e, nil
}

func (a *App) handleExpenseCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", 405)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}

	e, err := a.parseExpenseForm(r)
	if err != nil {
		a.setFlash(w, "Invalid expense entry: "+err.Error(), true)
		http.Redirect(w, r, "/transactions", http.StatusSeeOther)
		return
	}

	if _, err := createExpense(a.db, e); err != nil {
		log.Printf("Error creating expense: %v", err)
		a.setFlash(w, "Failed to record expense", true)
		http.Redirect(w, r, "/transactions", http.StatusSeeOther)
		return
	}
	a.setFlash(w, "Expense recorded", false)
	http.Redirect(w, r, "/transactions", http.StatusSeeOther)
}

func (a *App) handleExpenseEdit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", 405)
		return
	}
	id, err := parseInt64(r.URL.Query().Get("id"))
	if err != nil {
		http.Error(w, "bad id", 400)
		return
	}
	userID := getUserID(r)
	e, err := getExpense(a.db, userID, id)
	if err != nil {
		http.Error(w, "Expense not found", 404)
		return
	}
	categories, err := listCategories(a.db, userID, KindExpense)
	if err != nil {
		log.Printf("Error listing expense categories: %v", err)
		http.Error(w, "Internal server error", 500)
		return
	}
	sources, err := listPaymentSources(a.db, userID, true)
	if err != nil {
		log.Printf("Error listing payment sources: %v", err)
		http.Error(w, "Internal server error", 500)
		return
	}
	flash, flashType := a.getFlash(r)
	a.render(w, http.StatusOK, "expense_edit.html", map[string]any{
		"User":       currentUser(r),
		"Expense":    e,
		"Categories": categories,
		"Sources":    sources,
		"Flash":      flash,
		"FlashType":  flashType,
		"CSRFToken":  a.getCSRFToken(r),
	})
}

func (a *App) handleExpenseUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", 405)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}

	id, err := parseInt64(r.FormValue("id"))
	if err != nil {
		http.Error(w, "bad id", 400)
		return
	}
	e, err := a.parseExpenseForm(r)
	if err != nil {
		a.setFlash(w, "Invalid expense entry: "+err.Error(), true)
		http.Redirect(w, r, fmt.Sprintf("/expenses/edit?id=%d", id), http.StatusSeeOther)
		return
	}
	e.ID = id

	if err := updateExpense(a.db, e); err != nil {
		log.Printf("Error updating expense %d: %v", id, err)
		a.setFlash(w, "Failed to update expense", true)
		http.Redirect(w, r, fmt.Sprintf("/expenses/edit?id=%d", id), http.StatusSeeOther)
		return
	}
	a.setFlash(w, "Expense updated", false)
	http.Redirect(w, r, "/transactions", http.StatusSeeOther)
}

func (a *App) handleExpenseDelete(w http.ResponseWriter, r *http.Request) {
	a.confirmThenDelete(w, r, deleteTarget{
		Title:    "Delete expense",
		Action:   "/expenses/delete",
		Redirect: "/transactions",
		Success:  "Expense deleted",
		Load: func(userID, id int64) (string, error) {
			e, err := getExpense(a.db, userID, id)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%s (%s)", e.Description, money(e.AmountCents)), nil
		},
		Delete: func(userID, id int64) error {
			return deleteExpense(a.db, userID, id)
		},
	})
}

// handleCategoryCreate adds a user-owned custom category of either kind.
func (a *App) handleCategoryCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", 405)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}

	name := html.EscapeString(strings.TrimSpace(r.FormValue("name")))
	kind := r.FormValue("kind")
	if name == "" {
		a.setFlash(w, "Category name is required", true)
		http.Redirect(w, r, "/transactions", http.StatusSeeOther)
		return
	}
	if kind != KindIncome && kind != KindExpense {
		a.setFlash(w, "Invalid category type", true)
		http.Redirect(w, r, "/transactions", http.StatusSeeOther)
		return
	}

	userID := getUserID(r)
	if _, err := createCategory(a.db, userID, name, kind); err != nil {
		log.Printf("Error creating category: %v", err)
		a.setFlash(w, "Failed to create category", true)
		http.Redirect(w, r, "/transactions", http.StatusSeeOther)
		return
	}
	a.setFlash(w, fmt.Sprintf("Category %q created", name), false)
	http.Redirect(w, r, "/transactions", http.StatusSeeOther)
}
