package main

import "testing"

func TestParseAmountCents(t *testing.T) {
	cases := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"12.34", 1234, false},
		{"$40", 4000, false},
		{"1,234.56", 123456, false},
		{" 0.01 ", 1, false},
		{"0", 0, false},
		{"12.345", 0, true}, // fractional cent
		{"-5", 0, true},
		{"", 0, true},
		{"abc", 0, true},
	}
	for _, c := range cases {
		got, err := parseAmountCents(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("parseAmountCents(%q) = %d, want error", c.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseAmountCents(%q): %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("parseAmountCents(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestParseRateBps(t *testing.T) {
	cases := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"19.99", 1999, false},
		{"12", 1200, false},
		{"0", 0, false},
		{"6.5%", 650, false},
		{"19.999", 0, true},
		{"-1", 0, true},
		{"", 0, true},
	}
	for _, c := range cases {
		got, err := parseRateBps(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("parseRateBps(%q) = %d, want error", c.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseRateBps(%q): %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("parseRateBps(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestParseOptionalID(t *testing.T) {
	if got, err := parseOptionalID(""); err != nil || got.Valid {
		t.Errorf("empty should be NULL, got %+v err %v", got, err)
	}
	if got, err := parseOptionalID("0"); err != nil || got.Valid {
		t.Errorf("zero should be NULL, got %+v err %v", got, err)
	}
	got, err := parseOptionalID("42")
	if err != nil || !got.Valid || got.Int64 != 42 {
		t.Errorf("parseOptionalID(42) = %+v, err %v", got, err)
	}
	if _, err := parseOptionalID("x"); err == nil {
		t.Error("expected error for non-numeric id")
	}
}

func TestValidLastFour(t *testing.T) {
	valid := []string{"0000", "1234", "9999"}
	for _, s := range valid {
		if !validLastFour(s) {
			t.Errorf("validLastFour(%q) = false, want true", s)
		}
	}
	invalid := []string{"", "123", "12345", "12a4", "12.4", "١٢٣٤"}
	for _, s := range invalid {
		if validLastFour(s) {
			t.Errorf("validLastFour(%q) = true, want false", s)
		}
	}
}
