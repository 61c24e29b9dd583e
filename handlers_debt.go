package main

import (
	"fmt"
	"html"
	"log"
	"net/http"
	"strings"
)

func (a *App) handleDebts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", 405)
		return
	}

	userID := getUserID(r)
	debts, err := listDebts(a.db, userID)
	if err != nil {
		log.Printf("Error listing debts: %v", err)
		http.Error(w, "Internal server error", 500)
		return
	}

	var totalBalance int64
	var totalMinPayment int64
	for _, d := range debts {
		totalBalance += d.BalanceCents
		totalMinPayment += d.MinPaymentCents
	}

	flash, flashType := a.getFlash(r)
	a.render(w, http.StatusOK, "debts.html", map[string]any{
		"User":            currentUser(r),
		"Debts":           debts,
		"TotalBalance":    totalBalance,
		"TotalMinPayment": totalMinPayment,
		"Flash":           flash,
		"FlashType":       flashType,
		"CSRFToken":       a.getCSRFToken(r),
	})
}

func (a *App) parseDebtForm(r *http.Request) (Debt, error) {
	var d Debt
	d.UserID = getUserID(r)

	d.Name = html.EscapeString(strings.TrimSpace(r.FormValue("name")))
	if d.Name == "" {
		return d, fmt.Errorf("debt name is required")
	}

	var err error
	d.TotalAmountCents, err = parseAmountCents(r.FormValue("total_amount"))
	if err != nil {
		return d, fmt.Errorf("total amount: %v", err)
	}
	d.BalanceCents, err = parseAmountCents(r.FormValue("balance"))
	if err != nil {
		return d, fmt.Errorf("balance: %v", err)
	}
	if d.BalanceCents > d.TotalAmountCents {
		return d, fmt.Errorf("balance cannot exceed the total amount")
	}
	d.APRBps, err = parseRateBps(r.FormValue("apr"))
	if err != nil {
		return d, fmt.Errorf("interest rate: %v", err)
	}
	d.MinPaymentCents, err = parseAmountCents(r.FormValue("min_payment"))
	if err != nil {
		return d, fmt.Errorf("minimum payment: %v", err)
	}
	d.DueDate, err = parseDate(r.FormValue("due_date"))
	if err != nil {
		return d, fmt.Errorf("invalid due date")
	}
	return d, nil
}

func (a *App) handleDebtCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", 405)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}

	d, err := a.parseDebtForm(r)
	if err != nil {
		a.setFlash(w, "Invalid debt: "+err.Error(), true)
		http.Redirect(w, r, "/debts", http.StatusSeeOther)
		return
	}

	if _, err := createDebt(a.db, d); err != nil {
		log.Printf("Error creating debt: %v", err)
		a.setFlash(w, "Failed to create debt", true)
		http.Redirect(w, r, "/debts", http.StatusSeeOther)
		return
	}
	a.setFlash(w, "Debt created successfully", false)
	http.Redirect(w, r, "/debts", http.StatusSeeOther)
}

func (a *App) handleDebtEdit(w http.ResponseWriter, r *http.Request) {
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
	debt, err := getDebt(a.db, userID, id)
	if err != nil {
		http.Error(w, "Debt not found", 404)
		return
	}
	flash, flashType := a.getFlash(r)
	a.render(w, http.StatusOK, "debt_edit.html", map[string]any{
		"User":      currentUser(r),
		"Debt":      debt,
		"Flash":     flash,
		"FlashType": flashType,
		"CSRFToken": a.getCSRFToken(r),
	})
}

func (a *App) handleDebtUpdate(w http.ResponseWriter, r *http.Request) {
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
	d, err := a.parseDebtForm(r)
	if err != nil {
		a.setFlash(w, "Invalid debt: "+err.Error(), true)
		http.Redirect(w, r, fmt.Sprintf("/debts/edit?id=%d", id), http.StatusSeeOther)
		return
	}
	d.ID = id

	if err := updateDebt(a.db, d); err != nil {
		log.Printf("Error updating debt %d: %v", id, err)
		a.setFlash(w, "Failed to update debt", true)
		http.Redirect(w, r, fmt.Sprintf("/debts/edit?id=%d", id), http.StatusSeeOther)
		return
	}
	a.setFlash(w, "Debt updated successfully", false)
	http.Redirect(w, r, "/debts", http.StatusSeeOther)
}

func (a *App) handleDebtDelete(w http.ResponseWriter, r *http.Request) {
	a.confirmThenDelete(w, r, deleteTarget{
		Title:    "Delete debt",
		Action:   "/debts/delete",
		Redirect: "/debts",
		Success:  "Debt deleted",
		Load: func(userID, id int64) (string, error) {
			d, err := getDebt(a.db, userID, id)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%s (balance %s)", d.Name, money(d.BalanceCents)), nil
		},
		Delete: func(userID, id int64) error {
			return deleteDebt(a.db, userID, id)
		},
	})
}

// handlePayoffCalculator simulates paying a balance down with a fixed
// monthly payment. A debt_id prefills the form from a stored debt; explicit
// balance/apr/payment params run the simulation.
func (a *App) handlePayoffCalculator(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", 405)
		return
	}

	userID := getUserID(r)
	q := r.URL.Query()

	balanceStr := q.Get("balance")
	aprStr := q.Get("apr")
	paymentStr := q.Get("payment")

	// Prefill from a stored debt when nothing was typed in yet
	if debtIDStr := q.Get("debt_id"); debtIDStr != "" && balanceStr == "" {
		if debtID, err := parseInt64(debtIDStr); err == nil {
			if d, err := getDebt(a.db, userID, debtID); err == nil {
				balanceStr = centsToDecimalString(d.BalanceCents)
				aprStr = bpsToRatePct(d.APRBps).String()
				paymentStr = centsToDecimalString(d.MinPaymentCents)
			}
		}
	}

	data := map[string]any{
		"User":      currentUser(r),
		"Balance":   balanceStr,
		"APR":       aprStr,
		"Payment":   paymentStr,
		"CSRFToken": a.getCSRFToken(r),
	}

	if balanceStr != "" && aprStr != "" && paymentStr != "" {
		balance, err := parseAmountCents(balanceStr)
		if err != nil {
			data["Error"] = "Invalid balance: " + err.Error()
		}
		rateBps, err := parseRateBps(aprStr)
		if err != nil && data["Error"] == nil {
			data["Error"] = "Invalid interest rate: " + err.Error()
		}
		payment, err := parseAmountCents(paymentStr)
		if err != nil && data["Error"] == nil {
			data["Error"] = "Invalid payment: " + err.Error()
		}
		if data["Error"] == nil {
			result := CalculateDebtPayoff(balance, bpsToRatePct(rateBps), payment)
			data["Result"] = result
			if result.CapReached {
				data["Warning"] = "The payment barely covers monthly interest; the balance is still open after 30 years."
			}
		}
	}

	flash, flashType := a.getFlash(r)
	data["Flash"] = flash
	data["FlashType"] = flashType
	a.render(w, http.StatusOK, "payoff.html", data)
}
