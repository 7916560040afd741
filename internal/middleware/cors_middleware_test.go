package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func corsHandler(allowedOrigins string) http.Handler {
	return CORSMiddleware(allowedOrigins, "GET,POST", "Content-Type")(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
}

func TestCORSMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		allowedOrigins string
		origin         string
		wantAllow      string
	}{
		{"wildcard with origin", "*", "https://app.example.com", "https://app.example.com"},
		{"wildcard without origin", "*", "", "*"},
		{"listed origin", "https://app.example.com, https://other.example.com", "https://other.example.com", "https://other.example.com"},
		{"unlisted origin", "https://app.example.com", "https://evil.example.com", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/v1/posts", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()

			corsHandler(tt.allowedOrigins).ServeHTTP(w, r)

			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantAllow {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.wantAllow)
			}
		})
	}
}

func TestCORSMiddlewarePreflight(t *testing.T) {
	r := httptest.NewRequest(http.MethodOptions, "/api/v1/posts", nil)
	r.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()

	called := false
	CORSMiddleware("*", "GET,POST", "Content-Type")(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		})).ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200 for preflight, got %d", w.Code)
	}
	if called {
		t.Error("expected preflight to short-circuit before the handler")
	}
	if w.Header().Get("Access-Control-Allow-Methods") != "GET,POST" {
		t.Errorf("expected methods header, got %q", w.Header().Get("Access-Control-Allow-Methods"))
	}
}
