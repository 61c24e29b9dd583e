package main

import (
	"strings"
	"testing"
)

func TestMoney(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{0, "$0.00"},
		{5, "$0.05"},
		{1234, "$12.34"},
		{123456, "$1,234.56"},
		{100000000, "$1,000,000.00"},
		{-1234, "-$12.34"},
	}
	for _, c := range cases {
		if got := money(c.cents); got != c.want {
			t.Errorf("money(%d) = %q, want %q", c.cents, got, c.want)
		}
	}
}

func TestBpsToAPR(t *testing.T) {
	if got := bpsToAPR(1999); got != "19.99%" {
		t.Errorf("bpsToAPR(1999) = %q, want 19.99%%", got)
	}
	if got := bpsToAPR(0); got != "0.00%" {
		t.Errorf("bpsToAPR(0) = %q, want 0.00%%", got)
	}
}

func TestSessionSignParse(t *testing.T) {
	key := "test-session-key-0123456789abcdef"

	value := signSessionValue(42, key)
	if !strings.HasPrefix(value, "42:") {
		t.Fatalf("session value %q should start with the user id", value)
	}

	userID, ok := parseSessionValue(value, key)
	if !ok || userID != 42 {
		t.Errorf("parseSessionValue = (%d, %v), want (42, true)", userID, ok)
	}

	// Swapping the user id without re-signing must fail
	forged := "7:" + strings.SplitN(value, ":", 2)[1]
	if _, ok := parseSessionValue(forged, key); ok {
		t.Error("forged session value accepted")
	}

	if _, ok := parseSessionValue(value, "another-key-0123456789abcdefghij"); ok {
		t.Error("session value accepted under the wrong key")
	}

	for _, bad := range []string{"", "42", "x:y", "42:not-base64!@#"} {
		if _, ok := parseSessionValue(bad, key); ok {
			t.Errorf("malformed session value %q accepted", bad)
		}
	}
}

func TestCSRFToken(t *testing.T) {
	key := "test-csrf-key-0123456789abcdefgh"

	token := generateCSRFToken(42, key)
	if token == "" {
		t.Fatal("empty token")
	}
	if !validateCSRFToken(token, 42, key) {
		t.Error("freshly generated token did not validate")
	}
	if validateCSRFToken(token, 7, key) {
		t.Error("token validated for a different user")
	}
	if validateCSRFToken(token, 42, "another-key-0123456789abcdefghij") {
		t.Error("token validated under the wrong key")
	}
	if validateCSRFToken("", 42, key) {
		t.Error("empty token validated")
	}
}
