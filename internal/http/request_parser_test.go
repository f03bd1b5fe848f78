package http

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequireUserID(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/dashboard", nil)
	if _, errResp := requireUserID(r); errResp == nil {
		t.Error("expected error response without header")
	}

	r.Header.Set("X-User-ID", "  alice  ")
	userID, errResp := requireUserID(r)
	if errResp != nil {
		t.Fatal("unexpected error response")
	}
	if userID != "alice" {
		t.Errorf("userID = %q, want trimmed alice", userID)
	}
}

func TestParseBoolParam(t *testing.T) {
	tests := []struct {
		query   string
		want    bool
		wantErr bool
	}{
		{"", false, false},
		{"?wishlist=true", true, false},
		{"?wishlist=1", true, false},
		{"?wishlist=false", false, false},
		{"?wishlist=0", false, false},
		{"?wishlist=yes", false, true},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/api/dashboard"+tt.query, nil)
		got, errResp := parseBoolParam(r, "wishlist")
		if (errResp != nil) != tt.wantErr {
			t.Errorf("query %q: error = %v, wantErr %v", tt.query, errResp, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("query %q: got %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestParseDateParam(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/purchases?from=2026-01-15", nil)
	d, errResp := parseDateParam(r, "from")
	if errResp != nil {
		t.Fatal("unexpected error response")
	}
	if d.String() != "2026-01-15" {
		t.Errorf("date = %s", d)
	}

	r = httptest.NewRequest("GET", "/api/purchases", nil)
	d, errResp = parseDateParam(r, "from")
	if errResp != nil || !d.IsZero() {
		t.Error("absent param should yield zero date and no error")
	}

	r = httptest.NewRequest("GET", "/api/purchases?from=01/15/2026", nil)
	if _, errResp = parseDateParam(r, "from"); errResp == nil {
		t.Error("expected error for non-ISO date")
	}
}

func TestDecodeJSONBody(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"name":"x"}`, false},
		{"empty", ``, true},
		{"unknown field", `{"name":"x","extra":1}`, true},
		{"trailing document", `{"name":"x"}{"name":"y"}`, true},
		{"malformed", `{"name"`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/api/categories", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			var p payload
			errResp := decodeJSONBody(w, r, &p)
			if (errResp != nil) != tt.wantErr {
				t.Errorf("error = %v, wantErr %v", errResp, tt.wantErr)
			}
		})
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("  hello\x00world\x1f  "); got != "helloworld" {
		t.Errorf("sanitizeInput = %q", got)
	}
	if got := sanitizeInput("line1\nline2\ttab"); got != "line1\nline2\ttab" {
		t.Errorf("tab and newline should survive, got %q", got)
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.1:4321"
	if got := clientIP(r); got != "10.0.0.1" {
		t.Errorf("clientIP = %q, want 10.0.0.1", got)
	}

	r.Header.Set("X-Real-IP", "203.0.113.7")
	if got := clientIP(r); got != "203.0.113.7" {
		t.Errorf("clientIP = %q, want X-Real-IP value", got)
	}

	r.Header.Set("X-Forwarded-For", "198.51.100.2, 10.0.0.1")
	if got := clientIP(r); got != "198.51.100.2" {
		t.Errorf("clientIP = %q, want first forwarded hop", got)
	}
}

func TestParseAmount(t *testing.T) {
	m, errResp := parseAmount("12.34")
	if errResp != nil {
		t.Fatal("unexpected error response")
	}
	if m.Cents != 1234 {
		t.Errorf("Cents = %d, want 1234", m.Cents)
	}

	if _, errResp = parseAmount("-5"); errResp == nil {
		t.Error("negative amounts must be rejected")
	}
	if _, errResp = parseAmount("abc"); errResp == nil {
		t.Error("non-numeric amounts must be rejected")
	}
}
