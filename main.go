package main

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

type App struct {
	db            *sql.DB
	tpl           *template.Template
	sessionKey    string
	csrfKey       string
	rateLimiter   map[string][]time.Time
	rateLimiterMu sync.RWMutex
}

func loadEnvFile() map[string]string {
	env, err := godotenv.Read()
	if err != nil {
		return map[string]string{} // no .env present
	}
	return env
}

func getEnv(key string, env map[string]string) string {
	// Real environment variables override .env
	if val := os.Getenv(key); val != "" {
		return val
	}
	return env[key]
}

func generateKey() string {
	b := make([]byte, 32)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}

func loadOrCreateKey(keyName string, env map[string]string) string {
	key := getEnv(keyName, env)
	if len(key) >= 32 {
		return key
	}
	if key != "" {
		log.Printf("Warning: %s is too short, generating an ephemeral one", keyName)
	} else {
		log.Printf("%s not set; generating an ephemeral key (sessions will not survive a restart)", keyName)
	}
	return generateKey()
}

func money(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	d := cents / 100
	r := cents % 100
	// Thousands separator
	dStr := fmt.Sprintf("%d", d)
	var result []byte
	for i, c := range dStr {
		if i > 0 && (len(dStr)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, byte(c))
	}
	return fmt.Sprintf("%s$%s.%02d", sign, string(result), r)
}

func bpsToAPR(bps int64) string {
	return fmt.Sprintf("%.2f%%", float64(bps)/100.0)
}

func parseInt64(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) }

func main() {
	env := loadEnvFile()

	db, err := openDB(env)
	if err != nil {
		log.Fatal(err)
	}

	adminPassword := getEnv("ADMIN_PASSWORD", env)
	if adminPassword == "" {
		adminPassword = "changeme-admin"
	}
	if err := migrate(db, adminPassword); err != nil {
		log.Fatal(err)
	}

	funcs := template.FuncMap{
		"money":   money,
		"apr":     bpsToAPR,
		"dollars": func(cents int64) string { return centsToDecimalString(cents) },
		"pct":     func(p float64) string { return fmt.Sprintf("%.1f%%", p) },
		"now":     func() time.Time { return time.Now() },
		"date":    func(format string, t time.Time) string { return t.Format(format) },
		"title": func(s string) string {
			s = strings.ReplaceAll(s, "_", " ")
			if s == "" {
				return s
			}
			return strings.ToUpper(s[:1]) + s[1:]
		},
		"cond": func(condition bool, trueVal, falseVal string) string {
			if condition {
				return trueVal
			}
			return falseVal
		},
	}
	tpl := template.Must(template.New("").Funcs(funcs).ParseGlob(filepath.Join("templates", "*.html")))

	app := &App{
		db:          db,
		tpl:         tpl,
		sessionKey:  loadOrCreateKey("SESSION_KEY", env),
		csrfKey:     loadOrCreateKey("CSRF_KEY", env),
		rateLimiter: make(map[string][]time.Time),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/signup", app.rateLimit(5, 15*time.Minute)(app.handleSignup))
	mux.HandleFunc("/login", app.rateLimit(5, 15*time.Minute)(app.handleLogin))
	mux.HandleFunc("/logout", app.handleLogout)
	mux.HandleFunc("/password", app.requireAuth(app.requireCSRF(app.handlePassword)))

	mux.HandleFunc("/", app.requireAuth(app.handleDashboard))

	mux.HandleFunc("/transactions", app.requireAuth(app.handleTransactions))
	mux.HandleFunc("/income/create", app.requireAuth(app.requireCSRF(app.handleIncomeCreate)))
	mux.HandleFunc("/income/edit", app.requireAuth(app.handleIncomeEdit))
	mux.HandleFunc("/income/update", app.requireAuth(app.requireCSRF(app.handleIncomeUpdate)))
	mux.HandleFunc("/income/delete", app.requireAuth(app.requireCSRF(app.handleIncomeDelete)))
	mux.HandleFunc("/expenses/create", app.requireAuth(app.requireCSRF(app.handleExpenseCreate)))
	mux.HandleFunc("/expenses/edit", app.requireAuth(app.handleExpenseEdit))
	mux.HandleFunc("/expenses/update", app.requireAuth(app.requireCSRF(app.handleExpenseUpdate)))
	mux.HandleFunc("/expenses/delete", app.requireAuth(app.requireCSRF(app.handleExpenseDelete)))
	mux.HandleFunc("/categories/create", app.requireAuth(app.requireCSRF(app.handleCategoryCreate)))

	mux.HandleFunc("/budget", app.requireAuth(app.handleBudget))
	mux.HandleFunc("/budget/set", app.requireAuth(app.requireCSRF(app.handleBudgetSet)))
	mux.HandleFunc("/budget/delete", app.requireAuth(app.requireCSRF(app.handleBudgetDelete)))

	mux.HandleFunc("/analytics", app.requireAuth(app.handleAnalytics))
	mux.HandleFunc("/analytics/export", app.requireAuth(app.handleAnalyticsExport))

	mux.HandleFunc("/debts", app.requireAuth(app.handleDebts))
	mux.HandleFunc("/debts/create", app.requireAuth(app.requireCSRF(app.handleDebtCreate)))
	mux.HandleFunc("/debts/edit", app.requireAuth(app.handleDebtEdit))
	mux.HandleFunc("/debts/update", app.requireAuth(app.requireCSRF(app.handleDebtUpdate)))
	mux.HandleFunc("/debts/delete", app.requireAuth(app.requireCSRF(app.handleDebtDelete)))
	mux.HandleFunc("/debts/payoff", app.requireAuth(app.handlePayoffCalculator))

	mux.HandleFunc("/goals", app.requireAuth(app.handleGoals))
	mux.HandleFunc("/goals/create", app.requireAuth(app.requireCSRF(app.handleGoalCreate)))
	mux.HandleFunc("/goals/edit", app.requireAuth(app.handleGoalEdit))
	mux.HandleFunc("/goals/update", app.requireAuth(app.requireCSRF(app.handleGoalUpdate)))
	mux.HandleFunc("/goals/progress", app.requireAuth(app.requireCSRF(app.handleGoalProgress)))
	mux.HandleFunc("/goals/delete", app.requireAuth(app.requireCSRF(app.handleGoalDelete)))

	mux.HandleFunc("/sources", app.requireAuth(app.handleSources))
	mux.HandleFunc("/sources/create", app.requireAuth(app.requireCSRF(app.handleSourceCreate)))
	mux.HandleFunc("/sources/edit", app.requireAuth(app.handleSourceEdit))
	mux.HandleFunc("/sources/update", app.requireAuth(app.requireCSRF(app.handleSourceUpdate)))
	mux.HandleFunc("/sources/toggle", app.requireAuth(app.requireCSRF(app.handleSourceToggle)))
	mux.HandleFunc("/sources/delete", app.requireAuth(app.requireCSRF(app.handleSourceDelete)))

	mux.HandleFunc("/admin/users", app.requireAdmin(app.handleAdminUsers))
	mux.HandleFunc("/admin/users/delete", app.requireAdmin(app.requireCSRF(app.handleAdminUserDelete)))
	mux.HandleFunc("/admin/users/toggle", app.requireAdmin(app.requireCSRF(app.handleAdminUserToggle)))

	certFile := getEnv("TLS_CERT_FILE", env)
	keyFile := getEnv("TLS_KEY_FILE", env)
	port := getEnv("PORT", env)
	if port == "" {
		port = "8100"
	}
	bind := getEnv("BIND", env)
	if bind == "" {
		bind = "127.0.0.1"
	}
	addr := bind + ":" + port

	if certFile != "" && keyFile != "" {
		log.Printf("Starting HTTPS server on %s", addr)
		log.Fatal(http.ListenAndServeTLS(addr, certFile, keyFile, mux))
	} else {
		log.Printf("Starting HTTP server on %s (set TLS_CERT_FILE and TLS_KEY_FILE for HTTPS)", addr)
		log.Fatal(http.ListenAndServe(addr, mux))
	}
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// checkPasswordHash compares in constant time via bcrypt.
func checkPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// signSessionValue produces the session cookie payload "userID:signature".
func signSessionValue(userID int64, key string) string {
	mac := hmac.New(sha256.New, []byte(key))
	fmt.Fprintf(mac, "%d", userID)
	return fmt.Sprintf("%d:%s", userID, base64.URLEncoding.EncodeToString(mac.Sum(nil)))
}

func parseSessionValue(value, key string) (int64, bool) {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	userID, err := parseInt64(parts[0])
	if err != nil {
		return 0, false
	}
	expected := signSessionValue(userID, key)
	if !hmac.Equal([]byte(value), []byte(expected)) {
		return 0, false
	}
	return userID, true
}

func (a *App) setSessionCookie(w http.ResponseWriter, userID int64) {
	cookie := http.Cookie{
		Name:     "session",
		Value:    signSessionValue(userID, a.sessionKey),
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
	http.SetCookie(w, &cookie)
}

func generateCSRFToken(userID int64, csrfKey string) string {
	currentHour := time.Now().Unix() / 3600
	data := fmt.Sprintf("%d:%d", userID, currentHour)
	mac := hmac.New(sha256.New, []byte(csrfKey))
	mac.Write([]byte(data))
	return base64.URLEncoding.EncodeToString(mac.Sum(nil))
}

func validateCSRFToken(token string, userID int64, csrfKey string) bool {
	// Accept the current and previous hour to handle clock edges
	currentHour := time.Now().Unix() / 3600
	for i := int64(0); i <= 1; i++ {
		data := fmt.Sprintf("%d:%d", userID, currentHour-i)
		mac := hmac.New(sha256.New, []byte(csrfKey))
		mac.Write([]byte(data))
		expected := base64.URLEncoding.EncodeToString(mac.Sum(nil))
		if hmac.Equal([]byte(token), []byte(expected)) {
			return true
		}
	}
	return false
}

type contextKey string

const userKey contextKey = "user"

// requireAuth halts the request with a redirect to /login when no valid
// session identity is present; otherwise it loads the user and passes it
// along in the request context.
func (a *App) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionCookie, err := r.Cookie("session")
		if err != nil {
			http.Redirect(w, r, "/login?redirect="+url.QueryEscape(r.URL.Path), http.StatusSeeOther)
			return
		}
		userID, ok := parseSessionValue(sessionCookie.Value, a.sessionKey)
		if !ok {
			http.Redirect(w, r, "/login?redirect="+url.QueryEscape(r.URL.Path), http.StatusSeeOther)
			return
		}
		// The user may have been deleted since the cookie was issued
		user, err := getUserByID(a.db, userID)
		if err != nil {
			http.Redirect(w, r, "/login?redirect="+url.QueryEscape(r.URL.Path), http.StatusSeeOther)
			return
		}
		ctx := context.WithValue(r.Context(), userKey, user)
		next(w, r.WithContext(ctx))
	}
}

// requireAdmin additionally requires the admin flag; non-admins get a 403
// before any page content or query runs.
func (a *App) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return a.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		if !currentUser(r).IsAdmin {
			http.Error(w, "Administrator access required", 403)
			return
		}
		next(w, r)
	})
}

func currentUser(r *http.Request) User {
	user, ok := r.Context().Value(userKey).(User)
	if !ok {
		return User{}
	}
	return user
}

func getUserID(r *http.Request) int64 {
	return currentUser(r).ID
}

func (a *App) requireCSRF(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == "GET" || r.Method == "HEAD" {
			next(w, r)
			return
		}

		userID := getUserID(r)
		if userID == 0 {
			http.Error(w, "Unauthorized", 401)
			return
		}

		token := r.FormValue("csrf_token")
		if token == "" {
			token = r.Header.Get("X-CSRF-Token")
		}

		if !validateCSRFToken(token, userID, a.csrfKey) {
			log.Printf("CSRF validation failed for user %d", userID)
			http.Error(w, "Invalid security token", 403)
			return
		}

		next(w, r)
	}
}

func (a *App) rateLimit(maxAttempts int, window time.Duration) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			// Skip rate limiting for localhost (development)
			host := r.RemoteAddr
			if strings.HasPrefix(host, "127.0.0.1:") || strings.HasPrefix(host, "[::1]:") || strings.HasPrefix(host, "localhost:") {
				next(w, r)
				return
			}

			key := host
			now := time.Now()

			a.rateLimiterMu.Lock()
			if attempts, exists := a.rateLimiter[key]; exists {
				valid := make([]time.Time, 0)
				for _, t := range attempts {
					if now.Sub(t) < window {
						valid = append(valid, t)
					}
				}
				a.rateLimiter[key] = valid

				if len(valid) >= maxAttempts {
					a.rateLimiterMu.Unlock()
					log.Printf("Rate limit exceeded for %s", key)
					http.Error(w, "Too many requests. Please try again later.", 429)
					return
				}
			}

			if a.rateLimiter[key] == nil {
				a.rateLimiter[key] = make([]time.Time, 0)
			}
			a.rateLimiter[key] = append(a.rateLimiter[key], now)
			a.rateLimiterMu.Unlock()

			next(w, r)
		}
	}
}

func (a *App) render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	if err := a.tpl.ExecuteTemplate(w, name, data); err != nil {
		// Headers are already written, so just log
		log.Printf("template error (%s): %v", name, err)
	}
}

func (a *App) getCSRFToken(r *http.Request) string {
	userID := getUserID(r)
	if userID == 0 {
		return ""
	}
	return generateCSRFToken(userID, a.csrfKey)
}

func (a *App) setFlash(w http.ResponseWriter, message string, isError bool) {
	flashType := "success"
	if isError {
		flashType = "error"
	}
	cookie := http.Cookie{
		Name:     "flash",
		Value:    url.QueryEscape(message),
		Path:     "/",
		MaxAge:   1,
		HttpOnly: true,
	}
	http.SetCookie(w, &cookie)
	cookie = http.Cookie{
		Name:     "flash_type",
		Value:    flashType,
		Path:     "/",
		MaxAge:   1,
		HttpOnly: true,
	}
	http.SetCookie(w, &cookie)
}

func (a *App) getFlash(r *http.Request) (string, string) {
	flashCookie, _ := r.Cookie("flash")
	typeCookie, _ := r.Cookie("flash_type")
	if flashCookie == nil {
		return "", ""
	}
	flashType := "success"
	if typeCookie != nil {
		flashType = typeCookie.Value
	}
	message, err := url.QueryUnescape(flashCookie.Value)
	if err != nil {
		message = flashCookie.Value
	}
	return message, flashType
}
