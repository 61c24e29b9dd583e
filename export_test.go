package main

import (
	"bytes"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

func TestCentsToDecimalString(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{1234, "12.34"},
		{100, "1.00"},
		{5, "0.05"},
		{0, "0.00"},
		{-1234, "-12.34"},
		{123456789, "1234567.89"},
	}
	for _, c := range cases {
		if got := centsToDecimalString(c.cents); got != c.want {
			t.Errorf("centsToDecimalString(%d) = %q, want %q", c.cents, got, c.want)
		}
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := writeCSV(&buf, []string{"a", "b"}, [][]string{
		{"1", "one, with comma"},
		{"2", "two"},
	})
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3: %q", len(lines), buf.String())
	}
	if lines[0] != "a,b" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != `1,"one, with comma"` {
		t.Errorf("row 1 = %q", lines[1])
	}
}

func TestWriteXLSXRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	err := writeXLSX(&buf, "Expenses", []string{"date", "amount"}, [][]string{
		{"2025-03-01", "12.34"},
		{"2025-03-02", "56.78"},
	})
	if err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := f.GetRows("Expenses")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[0][0] != "date" || rows[0][1] != "amount" {
		t.Errorf("header row = %v", rows[0])
	}
	if rows[2][1] != "56.78" {
		t.Errorf("cell B3 = %q, want 56.78", rows[2][1])
	}
}

func TestExpenseExportRows(t *testing.T) {
	expenses := []ExpenseRow{
		{
			Expense: Expense{
				Description:    "Groceries run",
				AmountCents:    4521,
				Date:           time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC),
				NecessityLevel: NecessityEssential,
				Frequency:      FreqOneTime,
			},
			CategoryName: "Groceries",
			SourceName:   sql.NullString{String: "Everyday card", Valid: true},
			SourceBank:   sql.NullString{String: "Chase", Valid: true},
			SourceLast4:  sql.NullString{String: "1234", Valid: true},
		},
		{
			Expense: Expense{
				Description:    "Bus ticket",
				AmountCents:    250,
				Date:           time.Date(2025, 3, 6, 0, 0, 0, 0, time.UTC),
				NecessityLevel: NecessityImportant,
				Frequency:      FreqOneTime,
			},
			CategoryName: "Transportation",
		},
	}

	headers, rows := expenseExportRows(expenses)
	if len(headers) != 8 {
		t.Fatalf("got %d headers: %v", len(headers), headers)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0][2] != "45.21" {
		t.Errorf("amount = %q, want 45.21", rows[0][2])
	}
	if rows[0][4] != "Everyday card (Chase *1234)" {
		t.Errorf("source = %q", rows[0][4])
	}
	if rows[1][4] != "-" {
		t.Errorf("missing source should export as -, got %q", rows[1][4])
	}
}

func TestIncomeExportRows(t *testing.T) {
	income := []IncomeRow{
		{
			Income: Income{
				Description: "March salary",
				AmountCents: 520000,
				Frequency:   FreqMonthly,
				Date:        time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
				Recurring:   true,
			},
			CategoryName: "Salary",
		},
	}
	headers, rows := incomeExportRows(income)
	if len(headers) != 6 {
		t.Fatalf("got %d headers: %v", len(headers), headers)
	}
	want := []string{"2025-03-01", "March salary", "5200.00", "Salary", "monthly", "true"}
	for i, v := range want {
		if rows[0][i] != v {
			t.Errorf("col %d = %q, want %q", i, rows[0][i], v)
		}
	}
}
