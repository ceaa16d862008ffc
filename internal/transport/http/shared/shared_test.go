package shared

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestParsePagination(t *testing.T) {
	req := httptest.NewRequest("GET", "/?limit=10&offset=30", nil)
	page := ParsePagination(req, 50, 200)
	if page.Limit != 10 || page.Offset != 30 {
		t.Fatalf("unexpected pagination: %+v", page)
	}

	req = httptest.NewRequest("GET", "/", nil)
	page = ParsePagination(req, 50, 200)
	if page.Limit != 50 || page.Offset != 0 {
		t.Fatalf("unexpected defaults: %+v", page)
	}

	req = httptest.NewRequest("GET", "/?limit=9999", nil)
	page = ParsePagination(req, 50, 200)
	if page.Limit != 200 {
		t.Fatalf("expected limit capped at 200, got %d", page.Limit)
	}

	req = httptest.NewRequest("GET", "/?limit=-5&offset=-1", nil)
	page = ParsePagination(req, 50, 200)
	if page.Limit != 50 || page.Offset != 0 {
		t.Fatalf("expected invalid values ignored: %+v", page)
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2026-08-29")
	if err != nil {
		t.Fatalf("ParseDate error: %v", err)
	}
	if got != time.Date(2026, time.August, 29, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("unexpected date: %v", got)
	}

	got, err = ParseDate("2026-08-29T10:30:00Z")
	if err != nil {
		t.Fatalf("ParseDate RFC3339 error: %v", err)
	}
	if got.Hour() != 10 {
		t.Fatalf("unexpected time: %v", got)
	}

	got, err = ParseDate("")
	if err != nil || !got.IsZero() {
		t.Fatalf("expected empty input to be zero time, got %v %v", got, err)
	}

	if _, err := ParseDate("29/08/2026"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
