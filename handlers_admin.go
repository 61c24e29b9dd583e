package main

import (
	"errors"
	"log"
	"net/http"
)

// errSelfTarget guards the admin actions that must never apply to the
// signed-in admin's own account.
var errSelfTarget = errors.New("cannot target your own account")

func (a *App) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", 405)
		return
	}

	users, err := listUsers(a.db)
	if err != nil {
		log.Printf("Error listing users: %v", err)
		http.Error(w, "Internal server error", 500)
		return
	}

	flash, flashType := a.getFlash(r)
	a.render(w, http.StatusOK, "users.html", map[string]any{
		"User":      currentUser(r),
		"Users":     users,
		"Flash":     flash,
		"FlashType": flashType,
		"CSRFToken": a.getCSRFToken(r),
	})
}

// handleAdminUserDelete removes a user and all their records. Admins cannot
// delete themselves.
func (a *App) handleAdminUserDelete(w http.ResponseWriter, r *http.Request) {
	admin := currentUser(r)
	a.confirmThenDelete(w, r, deleteTarget{
		Title:    "Delete user",
		Action:   "/admin/users/delete",
		Redirect: "/admin/users",
		Success:  "User and all their data deleted",
		Load: func(_, id int64) (string, error) {
			if id == admin.ID {
				return "", errSelfTarget
			}
			u, err := getUserByID(a.db, id)
			if err != nil {
				return "", err
			}
			return u.Username, nil
		},
		Delete: func(_, id int64) error {
			if id == admin.ID {
				return errSelfTarget
			}
			return deleteUser(a.db, id)
		},
	})
}

// handleAdminUserToggle grants or revokes the admin flag. Admins cannot
// change their own flag, so at least one admin always remains.
func (a *App) handleAdminUserToggle(w http.ResponseWriter, r *http.Request) {
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
	admin := currentUser(r)
	if id == admin.ID {
		a.setFlash(w, "You cannot change your own admin status", true)
		http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
		return
	}

	u, err := getUserByID(a.db, id)
	if err != nil {
		http.Error(w, "User not found", 404)
		return
	}

	if err := setUserAdmin(a.db, id, !u.IsAdmin); err != nil {
		log.Printf("Error toggling admin for user %d: %v", id, err)
		a.setFlash(w, "Failed to update user", true)
		http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
		return
	}

	action := "granted to"
	if u.IsAdmin {
		action = "revoked from"
	}
	a.setFlash(w, "Admin access "+action+" "+u.Username, false)
	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}
