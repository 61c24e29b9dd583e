package main

import (
	"fmt"
	"log"
	"net/http"
	"time"
)

// analyticsRange reads the start/end query params, defaulting to the last 30
// days through today. An inverted range is swapped rather than rejected.
func analyticsRange(r *http.Request) (time.Time, time.Time) {
	now := time.Now()
	start, end := now.AddDate(0, 0, -30), now
	if s, err := parseDate(r.URL.Query().Get("start")); err == nil {
		start = s
	}
	if e, err := parseDate(r.URL.Query().Get("end")); err == nil {
		end = e
	}
	if end.Before(start) {
		start, end = end, start
	}
	return start, end
}

func (a *App) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", 405)
		return
	}

	userID := getUserID(r)
	start, end := analyticsRange(r)

	incomeTotal, err := sumIncomeBetween(a.db, userID, start, end)
	if err != nil {
		log.Printf("Error summing income: %v", err)
		http.Error(w, "Internal server error", 500)
		return
	}
	expenseTotal, err := sumExpensesBetween(a.db, userID, start, end)
	if err != nil {
		log.Printf("Error summing expenses: %v", err)
		http.Error(w, "Internal server error", 500)
		return
	}
	breakdown, err := expenseCategorySumsBetween(a.db, userID, start, end)
	if err != nil {
		log.Printf("Error loading category breakdown: %v", err)
		http.Error(w, "Internal server error", 500)
		return
	}
	necessity, err := expenseNecessitySumsBetween(a.db, userID, start, end)
	if err != nil {
		log.Printf("Error loading necessity breakdown: %v", err)
		http.Error(w, "Internal server error", 500)
		return
	}
	income, err := listIncomeBetween(a.db, userID, start, end)
	if err != nil {
		log.Printf("Error listing income: %v", err)
		http.Error(w, "Internal server error", 500)
		return
	}
	expenses, err := listExpensesBetween(a.db, userID, start, end)
	if err != nil {
		log.Printf("Error listing expenses: %v", err)
		http.Error(w, "Internal server error", 500)
		return
	}

	flash, flashType := a.getFlash(r)
	a.render(w, http.StatusOK, "analytics.html", map[string]any{
		"User":         currentUser(r),
		"Start":        start,
		"End":          end,
		"IncomeTotal":  incomeTotal,
		"ExpenseTotal": expenseTotal,
		"Savings":      MonthlySavings(incomeTotal, expenseTotal),
		"SavingsRate":  SavingsRate(incomeTotal, expenseTotal),
		"Breakdown":    breakdown,
		"Necessity":    necessity,
		"Income":       income,
		"Expenses":     expenses,
		"Flash":        flash,
		"FlashType":    flashType,
		"CSRFToken":    a.getCSRFToken(r),
	})
}

// handleAnalyticsExport downloads the income or expense rows of a date range
// as CSV or XLSX.
func (a *App) handleAnalyticsExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", 405)
		return
	}

	userID := getUserID(r)
	start, end := analyticsRange(r)

	data := r.URL.Query().Get("data")
	if data != KindIncome && data != KindExpense {
		http.Error(w, "data must be income or expense", 400)
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "xlsx" {
		http.Error(w, "format must be csv or xlsx", 400)
		return
	}

	var headers []string
	var rows [][]string
	var sheet string
	if data == KindIncome {
		income, err := listIncomeBetween(a.db, userID, start, end)
		if err != nil {
			log.Printf("Error listing income for export: %v", err)
			http.Error(w, "Internal server error", 500)
			return
		}
		headers, rows = incomeExportRows(income)
		sheet = "Income"
	} else {
		expenses, err := listExpensesBetween(a.db, userID, start, end)
		if err != nil {
			log.Printf("Error listing expenses for export: %v", err)
			http.Error(w, "Internal server error", 500)
			return
		}
		headers, rows = expenseExportRows(expenses)
		sheet = "Expenses"
	}

	filename := fmt.Sprintf("%s_%s_%s.%s", data, start.Format("2006-01-02"), end.Format("2006-01-02"), format)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if format == "xlsx" {
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		if err := writeXLSX(w, sheet, headers, rows); err != nil {
			log.Printf("Error writing xlsx export: %v", err)
		}
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	if err := writeCSV(w, headers, rows); err != nil {
		log.Printf("Error writing csv export: %v", err)
	}
}
