package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dukerupert/planner/internal/state"
)

var (
	now        = time.Date(2026, 2, 5, 12, 0, 0, 0, time.UTC)
	testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
)

func testPlanner(t *testing.T) *state.Container {
	t.Helper()
	c := state.NewContainer(nil, testLogger)
	c.SetClock(func() time.Time { return now })
	return c
}

// do serves one request through a mux holding a single route pattern.
func do(t *testing.T, pattern string, h http.HandlerFunc, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, h)
	req := httptest.NewRequest(method, target, &buf)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestValidDate(t *testing.T) {
	tests := []struct {
		in       string
		optional bool
		want     bool
	}{
		{"2026-02-05", false, true},
		{"", true, true},
		{"", false, false},
		{"05/02/2026", false, false},
		{"2026-02-30", false, false},
	}
	for _, tt := range tests {
		if got := validDate(tt.in, tt.optional); got != tt.want {
			t.Errorf("validDate(%q, %v) = %v, want %v", tt.in, tt.optional, got, tt.want)
		}
	}
}

func TestValidClock(t *testing.T) {
	for in, want := range map[string]bool{"": true, "09:30": true, "23:59": true, "24:00": false, "9am": false} {
		if got := validClock(in); got != want {
			t.Errorf("validClock(%q) = %v, want %v", in, got, want)
		}
	}
}
