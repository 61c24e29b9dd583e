package main

import (
	"fmt"
	"html"
	"log"
	"net/http"
	"strings"
)

func (a *App) handleSources(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", 405)
		return
	}

	userID := getUserID(r)
	sources, err := listPaymentSources(a.db, userID, false)
	if err != nil {
		log.Printf("Error listing payment sources: %v", err)
		http.Error(w, "Internal server error", 500)
		return
	}

	flash, flashType := a.getFlash(r)
	a.render(w, http.StatusOK, "sources.html", map[string]any{
		"User":      currentUser(r),
		"Sources":   sources,
		"Flash":     flash,
		"FlashType": flashType,
		"CSRFToken": a.getCSRFToken(r),
	})
}

func parseSourceForm(r *http.Request) (PaymentSource, error) {
	var s PaymentSource

	s.Name = html.EscapeString(strings.TrimSpace(r.FormValue("name")))
	if s.Name == "" {
		return s, fmt.Errorf("name is required")
	}
	s.Kind = r.FormValue("kind")
	if !validSourceKinds[s.Kind] {
		return s, fmt.Errorf("invalid source type")
	}
	s.LastFour = strings.TrimSpace(r.FormValue("last_four"))
	if !validLastFour(s.LastFour) {
		return s, fmt.Errorf("last four must be exactly 4 digits")
	}
	s.BankName = html.EscapeString(strings.TrimSpace(r.FormValue("bank_name")))
	if s.BankName == "" {
		return s, fmt.Errorf("bank name is required")
	}
	return s, nil
}

func (a *App) handleSourceCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", 405)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}

	s, err := parseSourceForm(r)
	if err != nil {
		a.setFlash(w, "Invalid payment source: "+err.Error(), true)
		http.Redirect(w, r, "/sources", http.StatusSeeOther)
		return
	}

	userID := getUserID(r)
	if _, err := createPaymentSource(a.db, userID, s); err != nil {
		log.Printf("Error creating payment source: %v", err)
		a.setFlash(w, "Failed to create payment source", true)
		http.Redirect(w, r, "/sources", http.StatusSeeOther)
		return
	}
	a.setFlash(w, "Payment source added", false)
	http.Redirect(w, r, "/sources", http.StatusSeeOther)
}

func (a *App) handleSourceEdit(w http.ResponseWriter, r *http.Request) {
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
	s, err := getPaymentSource(a.db, userID, id)
	if err != nil {
		http.Error(w, "Payment source not found", 404)
		return
	}
	flash, flashType := a.getFlash(r)
	a.render(w, http.StatusOK, "source_edit.html", map[string]any{
		"User":      currentUser(r),
		"Source":    s,
		"Flash":     flash,
		"FlashType": flashType,
		"CSRFToken": a.getCSRFToken(r),
	})
}

func (a *App) handleSourceUpdate(w http.ResponseWriter, r *http.Request) {
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
	s, err := parseSourceForm(r)
	if err != nil {
		a.setFlash(w, "Invalid payment source: "+err.Error(), true)
		http.Redirect(w, r, fmt.Sprintf("/sources/edit?id=%d", id), http.StatusSeeOther)
		return
	}
	s.ID = id

	userID := getUserID(r)
	if err := updatePaymentSource(a.db, userID, s); err != nil {
		log.Printf("Error updating payment source %d: %v", id, err)
		a.setFlash(w, "Failed to update payment source", true)
		http.Redirect(w, r, fmt.Sprintf("/sources/edit?id=%d", id), http.StatusSeeOther)
		return
	}
	a.setFlash(w, "Payment source updated", false)
	http.Redirect(w, r, "/sources", http.StatusSeeOther)
}

// handleSourceToggle activates or deactivates a source. Inactive sources keep
// their history on old expenses but stop appearing in the expense form.
func (a *App) handleSourceToggle(w http.ResponseWriter, r *http.Request) {
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
	active := r.FormValue("active") == "1"

	userID := getUserID(r)
	if err := setPaymentSourceActive(a.db, userID, id, active); err != nil {
		log.Printf("Error toggling payment source %d: %v", id, err)
		a.setFlash(w, "Failed to update payment source", true)
		http.Redirect(w, r, "/sources", http.StatusSeeOther)
		return
	}
	status := "deactivated"
	if active {
		status = "activated"
	}
	a.setFlash(w, fmt.Sprintf("Payment source %s", status), false)
	http.Redirect(w, r, "/sources", http.StatusSeeOther)
}

func (a *App) handleSourceDelete(w http.ResponseWriter, r *http.Request) {
	a.confirmThenDelete(w, r, deleteTarget{
		Title:    "Delete payment source",
		Action:   "/sources/delete",
		Redirect: "/sources",
		Success:  "Payment source deleted",
		Load: func(userID, id int64) (string, error) {
			s, err := getPaymentSource(a.db, userID, id)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%s (%s *%s)", s.Name, s.BankName, s.LastFour), nil
		},
		Delete: func(userID, id int64) error {
			return deletePaymentSource(a.db, userID, id)
		},
	})
}
