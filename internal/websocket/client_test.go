package websocket

import (
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"
)

func TestOriginPatterns(t *testing.T) {
	tests := []struct {
		name    string
		origins []string
		want    []string
	}{
		{"none", nil, nil},
		{"scheme stripped", []string{"http://localhost:5173"}, []string{"localhost:5173"}},
		{"bare host kept", []string{"planner.example.com"}, []string{"planner.example.com"}},
		{"blank skipped", []string{" ", "https://app.example.com"}, []string{"app.example.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := originPatterns(tt.origins); !slices.Equal(got, tt.want) {
				t.Errorf("originPatterns(%v) = %v, want %v", tt.origins, got, tt.want)
			}
		})
	}
}

func TestAcceptOptions(t *testing.T) {
	if opts := acceptOptions(nil); !opts.InsecureSkipVerify {
		t.Error("no origins should skip the origin check")
	}
	opts := acceptOptions([]string{"http://localhost:5173"})
	if opts.InsecureSkipVerify {
		t.Error("configured origins should be enforced")
	}
	if !slices.Equal(opts.OriginPatterns, []string{"localhost:5173"}) {
		t.Errorf("patterns = %v", opts.OriginPatterns)
	}
}

func TestHandleWebSocketRejectsForeignOrigin(t *testing.T) {
	handler := HandleWebSocket(NewHub(testLogger), []string{"http://localhost:5173"})

	req := httptest.NewRequest("GET", "http://planner.local/ws", nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	req.Header.Set("Sec-WebSocket-Version", "13")
	req.Header.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")
	req.Header.Set("Origin", "http://evil.example")

	rec := httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}
