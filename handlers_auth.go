package main

import (
	"log"
	"net/http"
	"strings"
)

func (a *App) handleSignup(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		flash, flashType := a.getFlash(r)
		a.render(w, http.StatusOK, "signup.html", map[string]any{
			"Flash":     flash,
			"FlashType": flashType,
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

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	confirmPassword := r.FormValue("confirm_password")

	if len(username) < 3 {
		a.setFlash(w, "Username must be at least 3 characters", true)
		http.Redirect(w, r, "/signup", http.StatusSeeOther)
		return
	}

	if len(password) < 8 {
		a.setFlash(w, "Password must be at least 8 characters", true)
		http.Redirect(w, r, "/signup", http.StatusSeeOther)
		return
	}

	if password != confirmPassword {
		a.setFlash(w, "Passwords do not match", true)
		http.Redirect(w, r, "/signup", http.StatusSeeOther)
		return
	}

	if _, err := getUserByUsername(a.db, username); err == nil {
		a.setFlash(w, "Username is already taken", true)
		http.Redirect(w, r, "/signup", http.StatusSeeOther)
		return
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		a.setFlash(w, "Error creating account", true)
		http.Redirect(w, r, "/signup", http.StatusSeeOther)
		return
	}

	user, err := createUser(a.db, username, passwordHash)
	if err != nil {
		log.Printf("Error creating user: %v", err)
		a.setFlash(w, "Error creating account. Please try again.", true)
		http.Redirect(w, r, "/signup", http.StatusSeeOther)
		return
	}

	// Auto-login after signup
	a.setSessionCookie(w, user.ID)

	a.setFlash(w, "Account created successfully!", false)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (a *App) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		redirect := r.URL.Query().Get("redirect")
		if redirect == "" || !strings.HasPrefix(redirect, "/") {
			redirect = "/"
		}
		flash, flashType := a.getFlash(r)
		a.render(w, http.StatusOK, "login.html", map[string]any{
			"Redirect":  redirect,
			"Flash":     flash,
			"FlashType": flashType,
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

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	redirect := r.FormValue("redirect")
	// Only same-site redirect targets
	if redirect == "" || !strings.HasPrefix(redirect, "/") || strings.HasPrefix(redirect, "//") {
		redirect = "/"
	}

	if username == "" || password == "" {
		a.setFlash(w, "Username and password are required", true)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	user, err := getUserByUsername(a.db, username)
	if err != nil {
		// Same message whether the user exists or not
		a.setFlash(w, "Invalid username or password", true)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if !checkPasswordHash(password, user.PasswordHash) {
		a.setFlash(w, "Invalid username or password", true)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	a.setSessionCookie(w, user.ID)
	http.Redirect(w, r, redirect, http.StatusSeeOther)
}

func (a *App) handleLogout(w http.ResponseWriter, r *http.Request) {
	cookie := http.Cookie{
		Name:     "session",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	}
	http.SetCookie(w, &cookie)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// handlePassword lets a signed-in user change their password after
// re-entering the current one.
func (a *App) handlePassword(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		flash, flashType := a.getFlash(r)
		a.render(w, http.StatusOK, "password.html", map[string]any{
			"User":      currentUser(r),
			"Flash":     flash,
			"FlashType": flashType,
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

	user := currentUser(r)
	currentPassword := r.FormValue("current_password")
	newPassword := r.FormValue("new_password")
	confirmPassword := r.FormValue("confirm_password")

	if !checkPasswordHash(currentPassword, user.PasswordHash) {
		a.setFlash(w, "Current password is incorrect", true)
		http.Redirect(w, r, "/password", http.StatusSeeOther)
		return
	}

	if len(newPassword) < 8 {
		a.setFlash(w, "New password must be at least 8 characters", true)
		http.Redirect(w, r, "/password", http.StatusSeeOther)
		return
	}

	if newPassword != confirmPassword {
		a.setFlash(w, "Passwords do not match", true)
		http.Redirect(w, r, "/password", http.StatusSeeOther)
		return
	}

	passwordHash, err := hashPassword(newPassword)
	if err != nil {
		a.setFlash(w, "Error changing password", true)
		http.Redirect(w, r, "/password", http.StatusSeeOther)
		return
	}

	if err := updateUserPassword(a.db, user.ID, passwordHash); err != nil {
		log.Printf("Error updating password for user %d: %v", user.ID, err)
		a.setFlash(w, "Error changing password", true)
		http.Redirect(w, r, "/password", http.StatusSeeOther)
		return
	}

	a.setFlash(w, "Password changed successfully", false)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
