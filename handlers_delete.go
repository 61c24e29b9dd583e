package main

import (
	"log"
	"net/http"
)

// deleteTarget describes one deletable record for the shared confirm-then-
// delete flow: GET renders a confirmation page, POST performs the delete.
type deleteTarget struct {
	Title    string
	Action   string
	Redirect string
	Success  string
	// Load resolves the record to a display label, scoped to the user.
	Load func(userID, id int64) (string, error)
	// Delete removes the record, scoped to the user.
	Delete func(userID, id int64) error
}

func (a *App) confirmThenDelete(w http.ResponseWriter, r *http.Request, t deleteTarget) {
	userID := getUserID(r)

	if r.Method == http.MethodGet {
		id, err := parseInt64(r.URL.Query().Get("id"))
		if err != nil {
			http.Error(w, "bad id", 400)
			return
		}
		label, err := t.Load(userID, id)
		if err != nil {
			http.Error(w, "Not found", 404)
			return
		}
		a.render(w, http.StatusOK, "confirm_delete.html", map[string]any{
			"User":      currentUser(r),
			"Title":     t.Title,
			"Label":     label,
			"Action":    t.Action,
			"Cancel":    t.Redirect,
			"ID":        id,
			"CSRFToken": a.getCSRFToken(r),
		})
		return
	}

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
	if err := t.Delete(userID, id); err != nil {
		log.Printf("Error deleting (%s) id %d: %v", t.Title, id, err)
		a.setFlash(w, "Delete failed", true)
		http.Redirect(w, r, t.Redirect, http.StatusSeeOther)
		return
	}
	a.setFlash(w, t.Success, false)
	http.Redirect(w, r, t.Redirect, http.StatusSeeOther)
}
