package main

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestAnalyticsRangeDefaultsToLast30Days(t *testing.T) {
	req := httptest.NewRequest("GET", "/analytics", nil)
	start, end := analyticsRange(req)

	if since := time.Since(end); since < 0 || since > time.Minute {
		t.Errorf("end = %v, want roughly now", end)
	}
	window := end.Sub(start)
	if window < 29*24*time.Hour || window > 31*24*time.Hour {
		t.Errorf("window = %v, want about 30 days", window)
	}
}

func TestAnalyticsRangeExplicit(t *testing.T) {
	req := httptest.NewRequest("GET", "/analytics?start=2025-03-01&end=2025-03-15", nil)
	start, end := analyticsRange(req)

	if !start.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v", start)
	}
	if !end.Equal(time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("end = %v", end)
	}
}

func TestAnalyticsRangeSwapsInverted(t *testing.T) {
	req := httptest.NewRequest("GET", "/analytics?start=2025-03-15&end=2025-03-01", nil)
	start, end := analyticsRange(req)

	if end.Before(start) {
		t.Errorf("range not swapped: %v .. %v", start, end)
	}
	if !start.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v", start)
	}
}
