package main

import (
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

func TestExpenseNecessitySumsBetween(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT e.necessity_level, SUM").
		WithArgs(int64(7), start, end).
		WillReturnRows(sqlmock.NewRows([]string{"necessity_level", "sum"}).
			AddRow(NecessityEssential, 120500).
			AddRow(NecessityImportant, 45000).
			AddRow(NecessityOptional, 8000))

	sums, err := expenseNecessitySumsBetween(db, 7, start, end)
	if err != nil {
		t.Fatal(err)
	}
	if len(sums) != 3 {
		t.Fatalf("got %d levels, want 3: %+v", len(sums), sums)
	}
	want := []NecessityAmount{
		{NecessityEssential, 120500},
		{NecessityImportant, 45000},
		{NecessityOptional, 8000},
	}
	for i, w := range want {
		if sums[i] != w {
			t.Errorf("sums[%d] = %+v, want %+v", i, sums[i], w)
		}
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestExpenseNecessitySumsBetweenEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT e.necessity_level, SUM").
		WithArgs(int64(7), start, end).
		WillReturnRows(sqlmock.NewRows([]string{"necessity_level", "sum"}))

	sums, err := expenseNecessitySumsBetween(db, 7, start, end)
	if err != nil {
		t.Fatal(err)
	}
	if len(sums) != 0 {
		t.Errorf("got %+v, want empty", sums)
	}
}
