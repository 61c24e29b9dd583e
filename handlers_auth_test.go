package main

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

// A duplicate username must bounce back to the signup form without ever
// attempting the INSERT.
func TestSignupDuplicateUsername(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT id, username, password_hash").
		WithArgs("taken").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "is_admin", "created_at"}).
			AddRow(1, "taken", "$2a$10$x", false, time.Now()))

	app := &App{db: db}

	form := url.Values{
		"username":         {"taken"},
		"password":         {"password123"},
		"confirm_password": {"password123"},
	}
	req := httptest.NewRequest("POST", "/signup", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()

	app.handleSignup(rr, req)

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusSeeOther)
	}
	if loc := rr.Header().Get("Location"); loc != "/signup" {
		t.Errorf("redirect = %q, want /signup", loc)
	}

	var flash string
	for _, c := range rr.Result().Cookies() {
		if c.Name == "flash" {
			flash, _ = url.QueryUnescape(c.Value)
		}
	}
	if flash != "Username is already taken" {
		t.Errorf("flash = %q, want the duplicate-username message", flash)
	}

	// Only the lookup may have run; an attempted INSERT would be an
	// unexpected call and a leftover expectation.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestSignupRejectsShortPassword(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	app := &App{db: db}

	form := url.Values{
		"username":         {"newuser"},
		"password":         {"short"},
		"confirm_password": {"short"},
	}
	req := httptest.NewRequest("POST", "/signup", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()

	app.handleSignup(rr, req)

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusSeeOther)
	}
	// No query of any kind should have reached the database
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
