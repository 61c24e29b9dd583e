// Package main: data layer — entity types, idempotent schema bootstrap, and
// user-scoped CRUD for categories, payment sources, income, expenses,
// budgets, debts, and financial goals.
package main

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	_ "github.com/lib/pq"
)

const (
	KindIncome  = "income"
	KindExpense = "expense"

	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"

	SourceCreditCard  = "credit_card"
	SourceDebitCard   = "debit_card"
	SourceBankAccount = "bank_account"

	NecessityEssential = "essential"
	NecessityImportant = "important"
	NecessityOptional  = "optional"

	FreqOneTime  = "one_time"
	FreqWeekly   = "weekly"
	FreqMonthly  = "monthly"
	FreqAnnually = "annually"

	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"

	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

type User struct {
	ID           int64
	Username     string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
}

// Category classifies income or expense rows. A NULL user_id means the
// category is a shared default; custom categories belong to one user.
type Category struct {
	ID       int64
	Name     string
	Kind     string
	IsCustom bool
	UserID   sql.NullInt64
}

type PaymentSource struct {
	ID        int64
	UserID    int64
	Name      string
	Kind      string
	LastFour  string
	BankName  string
	Active    bool
	CreatedAt time.Time
}

type Income struct {
	ID          int64
	UserID      int64
	Description string
	AmountCents int64
	Frequency   string
	CategoryID  int64
	Date        time.Time
	Recurring   bool
}

type Expense struct {
	ID              int64
	UserID          int64
	Description     string
	AmountCents     int64
	CategoryID      int64
	PaymentSourceID sql.NullInt64
	Date            time.Time
	NecessityLevel  string
	Recurring       bool
	Frequency       string
}

// Budget is unique per (category, period, user); writes upsert on conflict.
type Budget struct {
	ID          int64
	UserID      int64
	CategoryID  int64
	AmountCents int64
	Period      string
	StartDate   time.Time
}

type Debt struct {
	ID               int64
	UserID           int64
	Name             string
	TotalAmountCents int64
	BalanceCents     int64
	APRBps           int64
	MinPaymentCents  int64
	DueDate          time.Time
}

type FinancialGoal struct {
	ID           int64
	UserID       int64
	Name         string
	TargetCents  int64
	CurrentCents int64
	Deadline     time.Time
	CategoryID   sql.NullInt64
	Priority     string
	Status       string
	CreatedAt    time.Time
}

func openDB(env map[string]string) (*sql.DB, error) {
	host := getEnv("PGHOST", env)
	if host == "" {
		host = "localhost"
	}
	port := getEnv("PGPORT", env)
	if port == "" {
		port = "5432"
	}
	user := getEnv("PGUSER", env)
	if user == "" {
		user = "postgres"
	}
	password := getEnv("PGPASSWORD", env)
	dbname := getEnv("PGDATABASE", env)
	if dbname == "" {
		dbname = "budgettracker"
	}
	sslmode := getEnv("PGSSLMODE", env)
	if sslmode == "" {
		sslmode = "disable"
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if p := getEnv("DB_MAX_OPEN", env); p != "" {
		if n, e := strconv.Atoi(p); e == nil && n > 0 {
			db.SetMaxOpenConns(n)
		}
	}
	return db, nil
}

// migrate creates every table if absent, applies additive column changes, and
// seeds defaults for empty tables. Safe to run on every start.
func migrate(db *sql.DB, adminPassword string) error {
	schema := `
CREATE TABLE IF NOT EXISTS users (
  id BIGSERIAL PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  is_admin BOOLEAN NOT NULL DEFAULT FALSE,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS categories (
  id BIGSERIAL PRIMARY KEY,
  name TEXT NOT NULL,
  kind TEXT NOT NULL CHECK (kind IN ('income','expense')),
  is_custom BOOLEAN NOT NULL DEFAULT FALSE,
  user_id BIGINT REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS payment_sources (
  id BIGSERIAL PRIMARY KEY,
  user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  kind TEXT NOT NULL CHECK (kind IN ('credit_card','debit_card','bank_account')),
  last_four TEXT NOT NULL CHECK (last_four ~ '^[0-9]{4}$'),
  bank_name TEXT NOT NULL,
  active BOOLEAN NOT NULL DEFAULT TRUE,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS income (
  id BIGSERIAL PRIMARY KEY,
  user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  description TEXT NOT NULL,
  amount_cents BIGINT NOT NULL CHECK (amount_cents >= 0),
  frequency TEXT NOT NULL,
  category_id BIGINT NOT NULL REFERENCES categories(id),
  date DATE NOT NULL,
  is_recurring BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS expenses (
  id BIGSERIAL PRIMARY KEY,
  user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  description TEXT NOT NULL,
  amount_cents BIGINT NOT NULL CHECK (amount_cents >= 0),
  category_id BIGINT NOT NULL REFERENCES categories(id),
  date DATE NOT NULL,
  necessity_level TEXT NOT NULL CHECK (necessity_level IN ('essential','important','optional')),
  is_recurring BOOLEAN NOT NULL DEFAULT FALSE,
  frequency TEXT NOT NULL DEFAULT 'one_time'
);

-- Normalized payment sources replaced an earlier free-text payment_method.
ALTER TABLE expenses ADD COLUMN IF NOT EXISTS payment_source_id BIGINT REFERENCES payment_sources(id) ON DELETE SET NULL;

CREATE TABLE IF NOT EXISTS budgets (
  id BIGSERIAL PRIMARY KEY,
  user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  category_id BIGINT NOT NULL REFERENCES categories(id),
  amount_cents BIGINT NOT NULL CHECK (amount_cents >= 0),
  period TEXT NOT NULL CHECK (period IN ('weekly','monthly')),
  start_date DATE NOT NULL,
  UNIQUE (category_id, period, user_id)
);

CREATE TABLE IF NOT EXISTS debts (
  id BIGSERIAL PRIMARY KEY,
  user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  total_amount_cents BIGINT NOT NULL CHECK (total_amount_cents >= 0),
  balance_cents BIGINT NOT NULL CHECK (balance_cents >= 0),
  apr_bps BIGINT NOT NULL CHECK (apr_bps >= 0),
  min_payment_cents BIGINT NOT NULL CHECK (min_payment_cents >= 0),
  due_date DATE NOT NULL
);

CREATE TABLE IF NOT EXISTS financial_goals (
  id BIGSERIAL PRIMARY KEY,
  user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  target_cents BIGINT NOT NULL CHECK (target_cents >= 0),
  current_cents BIGINT NOT NULL DEFAULT 0 CHECK (current_cents >= 0),
  deadline DATE NOT NULL,
  category_id BIGINT REFERENCES categories(id),
  priority TEXT NOT NULL CHECK (priority IN ('high','medium','low')),
  status TEXT NOT NULL DEFAULT 'in_progress' CHECK (status IN ('in_progress','completed')),
  created_at DATE NOT NULL DEFAULT CURRENT_DATE
);

CREATE INDEX IF NOT EXISTS idx_categories_user ON categories(user_id);
CREATE INDEX IF NOT EXISTS idx_payment_sources_user ON payment_sources(user_id);
CREATE INDEX IF NOT EXISTS idx_income_user_date ON income(user_id, date);
CREATE INDEX IF NOT EXISTS idx_expenses_user_date ON expenses(user_id, date);
CREATE INDEX IF NOT EXISTS idx_expenses_category ON expenses(category_id);
CREATE INDEX IF NOT EXISTS idx_budgets_user ON budgets(user_id);
CREATE INDEX IF NOT EXISTS idx_debts_user ON debts(user_id);
CREATE INDEX IF NOT EXISTS idx_goals_user ON financial_goals(user_id);
`
	if _, err := db.Exec(schema); err != nil {
		return err
	}
	if err := seedCategories(db); err != nil {
		return err
	}
	return seedAdmin(db, adminPassword)
}

func seedCategories(db *sql.DB) error {
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM categories`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	defaults := []struct {
		name string
		kind string
	}{
		{"Salary", KindIncome},
		{"Bonus", KindIncome},
		{"Freelance", KindIncome},
		{"Housing", KindExpense},
		{"Transportation", KindExpense},
		{"Groceries", KindExpense},
		{"Healthcare", KindExpense},
		{"Entertainment", KindExpense},
		{"Education", KindExpense},
	}
	for _, c := range defaults {
		if _, err := db.Exec(`INSERT INTO categories(name, kind, is_custom) VALUES($1,$2,FALSE)`, c.name, c.kind); err != nil {
			return err
		}
	}
	return nil
}

func seedAdmin(db *sql.DB, password string) error {
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	_, err = db.Exec(`INSERT INTO users(username, password_hash, is_admin) VALUES('admin', $1, TRUE)`, hash)
	return err
}

// --- Users ---

func createUser(db *sql.DB, username, passwordHash string) (User, error) {
	u := User{Username: username, PasswordHash: passwordHash}
	err := db.QueryRow(`
INSERT INTO users(username, password_hash)
VALUES($1,$2)
RETURNING id, is_admin, created_at`, username, passwordHash).
		Scan(&u.ID, &u.IsAdmin, &u.CreatedAt)
	if err != nil {
		return User{}, err
	}
	return u, nil
}

func getUserByUsername(db *sql.DB, username string) (User, error) {
	var u User
	err := db.QueryRow(`
SELECT id, username, password_hash, is_admin, created_at
FROM users WHERE username = $1`, username).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt)
	if err != nil {
		return User{}, err
	}
	return u, nil
}

func getUserByID(db *sql.DB, id int64) (User, error) {
	var u User
	err := db.QueryRow(`
SELECT id, username, password_hash, is_admin, created_at
FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt)
	if err != nil {
		return User{}, err
	}
	return u, nil
}

func listUsers(db *sql.DB) ([]User, error) {
	rows, err := db.Query(`
SELECT id, username, password_hash, is_admin, created_at
FROM users ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func updateUserPassword(db *sql.DB, userID int64, passwordHash string) error {
	_, err := db.Exec(`UPDATE users SET password_hash = $1 WHERE id = $2`, passwordHash, userID)
	return err
}

func setUserAdmin(db *sql.DB, userID int64, isAdmin bool) error {
	_, err := db.Exec(`UPDATE users SET is_admin = $1 WHERE id = $2`, isAdmin, userID)
	return err
}

// deleteUser removes the user row; owned records go with it via ON DELETE CASCADE.
func deleteUser(db *sql.DB, userID int64) error {
	_, err := db.Exec(`DELETE FROM users WHERE id = $1`, userID)
	return err
}

// --- Categories ---

// listCategories returns shared defaults plus the user's custom categories
// for one kind ('income' or 'expense').
func listCategories(db *sql.DB, userID int64, kind string) ([]Category, error) {
	rows, err := db.Query(`
SELECT id, name, kind, is_custom, user_id
FROM categories
WHERE kind = $1 AND (user_id IS NULL OR user_id = $2)
ORDER BY is_custom ASC, name ASC`, kind, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Kind, &c.IsCustom, &c.UserID); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// getCategory resolves a category the user may reference: a shared default or
// one of their own custom categories.
func getCategory(db *sql.DB, userID, id int64) (Category, error) {
	var c Category
	err := db.QueryRow(`
SELECT id, name, kind, is_custom, user_id
FROM categories
WHERE id = $1 AND (user_id IS NULL OR user_id = $2)`, id, userID).
		Scan(&c.ID, &c.Name, &c.Kind, &c.IsCustom, &c.UserID)
	if err != nil {
		return Category{}, err
	}
	return c, nil
}

func createCategory(db *sql.DB, userID int64, name, kind string) (int64, error) {
	var id int64
	err := db.QueryRow(`
INSERT INTO categories(name, kind, is_custom, user_id)
VALUES($1,$2,TRUE,$3)
RETURNING id`, name, kind, userID).Scan(&id)
	return id, err
}

// --- Payment sources ---

func listPaymentSources(db *sql.DB, userID int64, activeOnly bool) ([]PaymentSource, error) {
	query := `
SELECT id, user_id, name, kind, last_four, bank_name, active, created_at
FROM payment_sources WHERE user_id = $1`
	if activeOnly {
		query += ` AND active = TRUE`
	}
	query += ` ORDER BY name ASC, id ASC`
	rows, err := db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []PaymentSource
	for rows.Next() {
		var s PaymentSource
		if err := rows.Scan(&s.ID, &s.UserID, &s.Name, &s.Kind, &s.LastFour, &s.BankName, &s.Active, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func getPaymentSource(db *sql.DB, userID, id int64) (PaymentSource, error) {
	var s PaymentSource
	err := db.QueryRow(`
SELECT id, user_id, name, kind, last_four, bank_name, active, created_at
FROM payment_sources WHERE id = $1 AND user_id = $2`, id, userID).
		Scan(&s.ID, &s.UserID, &s.Name, &s.Kind, &s.LastFour, &s.BankName, &s.Active, &s.CreatedAt)
	if err != nil {
		return PaymentSource{}, err
	}
	return s, nil
}

func createPaymentSource(db *sql.DB, userID int64, s PaymentSource) (int64, error) {
	var id int64
	err := db.QueryRow(`
INSERT INTO payment_sources(user_id, name, kind, last_four, bank_name, active)
VALUES($1,$2,$3,$4,$5,TRUE)
RETURNING id`, userID, s.Name, s.Kind, s.LastFour, s.BankName).Scan(&id)
	return id, err
}

func updatePaymentSource(db *sql.DB, userID int64, s PaymentSource) error {
	res, err := db.Exec(`
UPDATE payment_sources SET name = $1, kind = $2, last_four = $3, bank_name = $4
WHERE id = $5 AND user_id = $6`, s.Name, s.Kind, s.LastFour, s.BankName, s.ID, userID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func setPaymentSourceActive(db *sql.DB, userID, id int64, active bool) error {
	_, err := db.Exec(`UPDATE payment_sources SET active = $1 WHERE id = $2 AND user_id = $3`, active, id, userID)
	return err
}

func deletePaymentSource(db *sql.DB, userID, id int64) error {
	_, err := db.Exec(`DELETE FROM payment_sources WHERE id = $1 AND user_id = $2`, id, userID)
	return err
}

// --- Income ---

// IncomeRow joins the category name in for display and export.
type IncomeRow struct {
	Income
	CategoryName string
}

func createIncome(db *sql.DB, in Income) (int64, error) {
	var id int64
	err := db.QueryRow(`
INSERT INTO income(user_id, description, amount_cents, frequency, category_id, date, is_recurring)
VALUES($1,$2,$3,$4,$5,$6,$7)
RETURNING id`, in.UserID, in.Description, in.AmountCents, in.Frequency, in.CategoryID, in.Date, in.Recurring).Scan(&id)
	return id, err
}

func getIncome(db *sql.DB, userID, id int64) (Income, error) {
	var in Income
	err := db.QueryRow(`
SELECT id, user_id, description, amount_cents, frequency, category_id, date, is_recurring
FROM income WHERE id = $1 AND user_id = $2`, id, userID).
		Scan(&in.ID, &in.UserID, &in.Description, &in.AmountCents, &in.Frequency, &in.CategoryID, &in.Date, &in.Recurring)
	if err != nil {
		return Income{}, err
	}
	return in, nil
}

func updateIncome(db *sql.DB, in Income) error {
	res, err := db.Exec(`
UPDATE income SET description = $1, amount_cents = $2, frequency = $3, category_id = $4, date = $5, is_recurring = $6
WHERE id = $7 AND user_id = $8`,
		in.Description, in.AmountCents, in.Frequency, in.CategoryID, in.Date, in.Recurring, in.ID, in.UserID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func deleteIncome(db *sql.DB, userID, id int64) error {
	_, err := db.Exec(`DELETE FROM income WHERE id = $1 AND user_id = $2`, id, userID)
	return err
}

func listIncome(db *sql.DB, userID int64) ([]IncomeRow, error) {
	rows, err := db.Query(`
SELECT i.id, i.user_id, i.description, i.amount_cents, i.frequency, i.category_id, i.date, i.is_recurring, c.name
FROM income i
JOIN categories c ON i.category_id = c.id
WHERE i.user_id = $1
ORDER BY i.date DESC, i.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIncomeRows(rows)
}

func listIncomeBetween(db *sql.DB, userID int64, start, end time.Time) ([]IncomeRow, error) {
	rows, err := db.Query(`
SELECT i.id, i.user_id, i.description, i.amount_cents, i.frequency, i.category_id, i.date, i.is_recurring, c.name
FROM income i
JOIN categories c ON i.category_id = c.id
WHERE i.user_id = $1 AND i.date BETWEEN $2 AND $3
ORDER BY i.date ASC, i.id ASC`, userID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIncomeRows(rows)
}

func scanIncomeRows(rows *sql.Rows) ([]IncomeRow, error) {
	var out []IncomeRow
	for rows.Next() {
		var r IncomeRow
		if err := rows.Scan(&r.ID, &r.UserID, &r.Description, &r.AmountCents, &r.Frequency, &r.CategoryID, &r.Date, &r.Recurring, &r.CategoryName); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func sumIncomeBetween(db *sql.DB, userID int64, start, end time.Time) (int64, error) {
	var total sql.NullInt64
	err := db.QueryRow(`
SELECT COALESCE(SUM(amount_cents), 0) FROM income
WHERE user_id = $1 AND date BETWEEN $2 AND $3`, userID, start, end).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total.Int64, nil
}

// --- Expenses ---

// ExpenseRow joins category and payment-source display fields in.
type ExpenseRow struct {
	Expense
	CategoryName string
	SourceName   sql.NullString
	SourceBank   sql.NullString
	SourceLast4  sql.NullString
}

// SourceLabel renders "Name (Bank *1234)" or "-" for expenses without a source.
func (r ExpenseRow) SourceLabel() string {
	if !r.SourceName.Valid {
		return "-"
	}
	return fmt.Sprintf("%s (%s *%s)", r.SourceName.String, r.SourceBank.String, r.SourceLast4.String)
}

func createExpense(db *sql.DB, e Expense) (int64, error) {
	var id int64
	err := db.QueryRow(`
INSERT INTO expenses(user_id, description, amount_cents, category_id, payment_source_id, date, necessity_level, is_recurring, frequency)
VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9)
RETURNING id`,
		e.UserID, e.Description, e.AmountCents, e.CategoryID, e.PaymentSourceID, e.Date, e.NecessityLevel, e.Recurring, e.Frequency).Scan(&id)
	return id, err
}

func getExpense(db *sql.DB, userID, id int64) (Expense, error) {
	var e Expense
	err := db.QueryRow(`
SELECT id, user_id, description, amount_cents, category_id, payment_source_id, date, necessity_level, is_recurring, frequency
FROM expenses WHERE id = $1 AND user_id = $2`, id, userID).
		Scan(&e.ID, &e.UserID, &e.Description, &e.AmountCents, &e.CategoryID, &e.PaymentSourceID, &e.Date, &e.NecessityLevel, &e.Recurring, &e.Frequency)
	if err != nil {
		return Expense{}, err
	}
	return e, nil
}

func updateExpense(db *sql.DB, e Expense) error {
	res, err := db.Exec(`
UPDATE expenses SET description = $1, amount_cents = $2, category_id = $3, payment_source_id = $4, date = $5, necessity_level = $6, is_recurring = $7, frequency = $8
WHERE id = $9 AND user_id = $10`,
		e.Description, e.AmountCents, e.CategoryID, e.PaymentSourceID, e.Date, e.NecessityLevel, e.Recurring, e.Frequency, e.ID, e.UserID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func deleteExpense(db *sql.DB, userID, id int64) error {
	_, err := db.Exec(`DELETE FROM expenses WHERE id = $1 AND user_id = $2`, id, userID)
	return err
}

func listExpenses(db *sql.DB, userID int64) ([]ExpenseRow, error) {
	rows, err := db.Query(`
SELECT e.id, e.user_id, e.description, e.amount_cents, e.category_id, e.payment_source_id, e.date, e.necessity_level, e.is_recurring, e.frequency,
       c.name, ps.name, ps.bank_name, ps.last_four
FROM expenses e
JOIN categories c ON e.category_id = c.id
LEFT JOIN payment_sources ps ON e.payment_source_id = ps.id
WHERE e.user_id = $1
ORDER BY e.date DESC, e.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanExpenseRows(rows)
}

func listExpensesBetween(db *sql.DB, userID int64, start, end time.Time) ([]ExpenseRow, error) {
	rows, err := db.Query(`
SELECT e.id, e.user_id, e.description, e.amount_cents, e.category_id, e.payment_source_id, e.date, e.necessity_level, e.is_recurring, e.frequency,
       c.name, ps.name, ps.bank_name, ps.last_four
FROM expenses e
JOIN categories c ON e.category_id = c.id
LEFT JOIN payment_sources ps ON e.payment_source_id = ps.id
WHERE e.user_id = $1 AND e.date BETWEEN $2 AND $3
ORDER BY e.date ASC, e.id ASC`, userID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanExpenseRows(rows)
}

func scanExpenseRows(rows *sql.Rows) ([]ExpenseRow, error) {
	var out []ExpenseRow
	for rows.Next() {
		var r ExpenseRow
		if err := rows.Scan(&r.ID, &r.UserID, &r.Description, &r.AmountCents, &r.CategoryID, &r.PaymentSourceID, &r.Date, &r.NecessityLevel, &r.Recurring, &r.Frequency,
			&r.CategoryName, &r.SourceName, &r.SourceBank, &r.SourceLast4); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func sumExpensesBetween(db *sql.DB, userID int64, start, end time.Time) (int64, error) {
	var total sql.NullInt64
	err := db.QueryRow(`
SELECT COALESCE(SUM(amount_cents), 0) FROM expenses
WHERE user_id = $1 AND date BETWEEN $2 AND $3`, userID, start, end).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total.Int64, nil
}

func sumExpensesForCategoryBetween(db *sql.DB, userID, categoryID int64, start, end time.Time) (int64, error) {
	var total sql.NullInt64
	err := db.QueryRow(`
SELECT COALESCE(SUM(amount_cents), 0) FROM expenses
WHERE user_id = $1 AND category_id = $2 AND date BETWEEN $3 AND $4`, userID, categoryID, start, end).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total.Int64, nil
}

// CategoryAmount is one slice of a category breakdown.
type CategoryAmount struct {
	Name        string
	AmountCents int64
}

func expenseCategorySumsBetween(db *sql.DB, userID int64, start, end time.Time) ([]CategoryAmount, error) {
	rows, err := db.Query(`
SELECT c.name, SUM(e.amount_cents)
FROM expenses e
JOIN categories c ON e.category_id = c.id
WHERE e.user_id = $1 AND e.date BETWEEN $2 AND $3
GROUP BY c.name
ORDER BY SUM(e.amount_cents) DESC`, userID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CategoryAmount
	for rows.Next() {
		var ca CategoryAmount
		if err := rows.Scan(&ca.Name, &ca.AmountCents); err != nil {
			return nil, err
		}
		out = append(out, ca)
	}
	return out, rows.Err()
}

// NecessityAmount is one slice of a necessity-level breakdown.
type NecessityAmount struct {
	Level       string
	AmountCents int64
}

func expenseNecessitySumsBetween(db *sql.DB, userID int64, start, end time.Time) ([]NecessityAmount, error) {
	rows, err := db.Query(`
SELECT e.necessity_level, SUM(e.amount_cents)
FROM expenses e
WHERE e.user_id = $1 AND e.date BETWEEN $2 AND $3
GROUP BY e.necessity_level
ORDER BY CASE e.necessity_level WHEN 'essential' THEN 1 WHEN 'important' THEN 2 ELSE 3 END`, userID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []NecessityAmount
	for rows.Next() {
		var na NecessityAmount
		if err := rows.Scan(&na.Level, &na.AmountCents); err != nil {
			return nil, err
		}
		out = append(out, na)
	}
	return out, rows.Err()
}

// --- Transactions (dashboard feed) ---

// TransactionRow is a merged income/expense entry for the recent-activity list.
type TransactionRow struct {
	Type         string // "Income" or "Expense"
	Description  string
	AmountCents  int64
	Date         time.Time
	CategoryName string
}

func recentTransactions(db *sql.DB, userID int64, limit int) ([]TransactionRow, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := db.Query(`
SELECT 'Expense' AS type, e.description, e.amount_cents, e.date, c.name
FROM expenses e
JOIN categories c ON e.category_id = c.id
WHERE e.user_id = $1
UNION ALL
SELECT 'Income' AS type, i.description, i.amount_cents, i.date, c.name
FROM income i
JOIN categories c ON i.category_id = c.id
WHERE i.user_id = $1
ORDER BY date DESC
LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []TransactionRow
	for rows.Next() {
		var t TransactionRow
		if err := rows.Scan(&t.Type, &t.Description, &t.AmountCents, &t.Date, &t.CategoryName); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// --- Budgets ---

// BudgetRow joins the category name in for display.
type BudgetRow struct {
	Budget
	CategoryName string
}

// upsertBudget inserts or, on the (category, period, user) conflict, replaces
// the amount and start date.
func upsertBudget(db *sql.DB, b Budget) error {
	_, err := db.Exec(`
INSERT INTO budgets(user_id, category_id, amount_cents, period, start_date)
VALUES($1,$2,$3,$4,$5)
ON CONFLICT (category_id, period, user_id)
DO UPDATE SET amount_cents = EXCLUDED.amount_cents, start_date = EXCLUDED.start_date`,
		b.UserID, b.CategoryID, b.AmountCents, b.Period, b.StartDate)
	return err
}

func listBudgets(db *sql.DB, userID int64) ([]BudgetRow, error) {
	rows, err := db.Query(`
SELECT b.id, b.user_id, b.category_id, b.amount_cents, b.period, b.start_date, c.name
FROM budgets b
JOIN categories c ON b.category_id = c.id
WHERE b.user_id = $1
ORDER BY c.name ASC, b.period ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []BudgetRow
	for rows.Next() {
		var r BudgetRow
		if err := rows.Scan(&r.ID, &r.UserID, &r.CategoryID, &r.AmountCents, &r.Period, &r.StartDate, &r.CategoryName); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func getBudget(db *sql.DB, userID, id int64) (Budget, error) {
	var b Budget
	err := db.QueryRow(`
SELECT id, user_id, category_id, amount_cents, period, start_date
FROM budgets WHERE id = $1 AND user_id = $2`, id, userID).
		Scan(&b.ID, &b.UserID, &b.CategoryID, &b.AmountCents, &b.Period, &b.StartDate)
	if err != nil {
		return Budget{}, err
	}
	return b, nil
}

// getBudgetForCategory returns the budget row for (category, period, user),
// or sql.ErrNoRows when no budget is set.
func getBudgetForCategory(db *sql.DB, userID, categoryID int64, period string) (Budget, error) {
	var b Budget
	err := db.QueryRow(`
SELECT id, user_id, category_id, amount_cents, period, start_date
FROM budgets WHERE category_id = $1 AND period = $2 AND user_id = $3`, categoryID, period, userID).
		Scan(&b.ID, &b.UserID, &b.CategoryID, &b.AmountCents, &b.Period, &b.StartDate)
	if err != nil {
		return Budget{}, err
	}
	return b, nil
}

func deleteBudget(db *sql.DB, userID, id int64) error {
	_, err := db.Exec(`DELETE FROM budgets WHERE id = $1 AND user_id = $2`, id, userID)
	return err
}

// --- Debts ---

func listDebts(db *sql.DB, userID int64) ([]Debt, error) {
	rows, err := db.Query(`
SELECT id, user_id, name, total_amount_cents, balance_cents, apr_bps, min_payment_cents, due_date
FROM debts WHERE user_id = $1
ORDER BY due_date ASC, id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Debt
	for rows.Next() {
		var d Debt
		if err := rows.Scan(&d.ID, &d.UserID, &d.Name, &d.TotalAmountCents, &d.BalanceCents, &d.APRBps, &d.MinPaymentCents, &d.DueDate); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func getDebt(db *sql.DB, userID, id int64) (Debt, error) {
	var d Debt
	err := db.QueryRow(`
SELECT id, user_id, name, total_amount_cents, balance_cents, apr_bps, min_payment_cents, due_date
FROM debts WHERE id = $1 AND user_id = $2`, id, userID).
		Scan(&d.ID, &d.UserID, &d.Name, &d.TotalAmountCents, &d.BalanceCents, &d.APRBps, &d.MinPaymentCents, &d.DueDate)
	if err != nil {
		return Debt{}, err
	}
	return d, nil
}

func createDebt(db *sql.DB, d Debt) (int64, error) {
	var id int64
	err := db.QueryRow(`
INSERT INTO debts(user_id, name, total_amount_cents, balance_cents, apr_bps, min_payment_cents, due_date)
VALUES($1,$2,$3,$4,$5,$6,$7)
RETURNING id`, d.UserID, d.Name, d.TotalAmountCents, d.BalanceCents, d.APRBps, d.MinPaymentCents, d.DueDate).Scan(&id)
	return id, err
}

func updateDebt(db *sql.DB, d Debt) error {
	res, err := db.Exec(`
UPDATE debts SET name = $1, total_amount_cents = $2, balance_cents = $3, apr_bps = $4, min_payment_cents = $5, due_date = $6
WHERE id = $7 AND user_id = $8`,
		d.Name, d.TotalAmountCents, d.BalanceCents, d.APRBps, d.MinPaymentCents, d.DueDate, d.ID, d.UserID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func deleteDebt(db *sql.DB, userID, id int64) error {
	_, err := db.Exec(`DELETE FROM debts WHERE id = $1 AND user_id = $2`, id, userID)
	return err
}

func totalDebtBalance(db *sql.DB, userID int64) (int64, error) {
	var total sql.NullInt64
	err := db.QueryRow(`SELECT COALESCE(SUM(balance_cents), 0) FROM debts WHERE user_id = $1`, userID).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total.Int64, nil
}

// --- Financial goals ---

// GoalRow joins the optional category name in for display.
type GoalRow struct {
	FinancialGoal
	CategoryName sql.NullString
}

func listGoals(db *sql.DB, userID int64) ([]GoalRow, error) {
	rows, err := db.Query(`
SELECT g.id, g.user_id, g.name, g.target_cents, g.current_cents, g.deadline, g.category_id, g.priority, g.status, g.created_at, c.name
FROM financial_goals g
LEFT JOIN categories c ON g.category_id = c.id
WHERE g.user_id = $1
ORDER BY g.deadline ASC, g.id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []GoalRow
	for rows.Next() {
		var r GoalRow
		if err := rows.Scan(&r.ID, &r.UserID, &r.Name, &r.TargetCents, &r.CurrentCents, &r.Deadline, &r.CategoryID, &r.Priority, &r.Status, &r.CreatedAt, &r.CategoryName); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func getGoal(db *sql.DB, userID, id int64) (FinancialGoal, error) {
	var g FinancialGoal
	err := db.QueryRow(`
SELECT id, user_id, name, target_cents, current_cents, deadline, category_id, priority, status, created_at
FROM financial_goals WHERE id = $1 AND user_id = $2`, id, userID).
		Scan(&g.ID, &g.UserID, &g.Name, &g.TargetCents, &g.CurrentCents, &g.Deadline, &g.CategoryID, &g.Priority, &g.Status, &g.CreatedAt)
	if err != nil {
		return FinancialGoal{}, err
	}
	return g, nil
}

func createGoal(db *sql.DB, g FinancialGoal) (int64, error) {
	var id int64
	err := db.QueryRow(`
INSERT INTO financial_goals(user_id, name, target_cents, current_cents, deadline, category_id, priority, status)
VALUES($1,$2,$3,0,$4,$5,$6,'in_progress')
RETURNING id`, g.UserID, g.Name, g.TargetCents, g.Deadline, g.CategoryID, g.Priority).Scan(&id)
	return id, err
}

func updateGoal(db *sql.DB, g FinancialGoal) error {
	res, err := db.Exec(`
UPDATE financial_goals SET name = $1, target_cents = $2, deadline = $3, category_id = $4, priority = $5,
  status = CASE WHEN current_cents >= $2 THEN 'completed' ELSE 'in_progress' END
WHERE id = $6 AND user_id = $7`,
		g.Name, g.TargetCents, g.Deadline, g.CategoryID, g.Priority, g.ID, g.UserID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// updateGoalProgress sets the saved amount and flips the status when the
// target is reached (or back, when it no longer is).
func updateGoalProgress(db *sql.DB, userID, id, currentCents int64) error {
	res, err := db.Exec(`
UPDATE financial_goals
SET current_cents = $1,
    status = CASE WHEN $1 >= target_cents THEN 'completed' ELSE 'in_progress' END
WHERE id = $2 AND user_id = $3`, currentCents, id, userID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func deleteGoal(db *sql.DB, userID, id int64) error {
	_, err := db.Exec(`DELETE FROM financial_goals WHERE id = $1 AND user_id = $2`, id, userID)
	return err
}
