package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAPIKeyMiddleware(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	const completionPath = "/admin/completion/product-descriptions"

	tests := []struct {
		name      string
		key       string
		method    string
		path      string
		header    string
		value     string
		wantCode  int
		wantError string
	}{
		{"disabled when key is empty", "", http.MethodPost, completionPath, "", "", http.StatusOK, ""},
		{"X-API-Key passes", "secret-123", http.MethodPost, completionPath, "X-API-Key", "secret-123", http.StatusOK, ""},
		{"bearer token passes", "secret-123", http.MethodPost, completionPath, "Authorization", "Bearer secret-123", http.StatusOK, ""},
		{"missing key", "secret-123", http.MethodPost, completionPath, "", "", http.StatusUnauthorized, "missing API key"},
		{"wrong key", "secret-123", http.MethodPost, completionPath, "X-API-Key", "wrong-key", http.StatusUnauthorized, "invalid API key"},
		{"wrong bearer", "secret-123", http.MethodPost, completionPath, "Authorization", "Bearer nope", http.StatusUnauthorized, "invalid API key"},
		{"basic auth ignored", "secret-123", http.MethodPost, completionPath, "Authorization", "Basic c2VjcmV0", http.StatusUnauthorized, "missing API key"},
		{"health exempt", "secret-123", http.MethodGet, "/health", "", "", http.StatusOK, ""},
		{"metrics exempt", "secret-123", http.MethodGet, "/metrics", "", "", http.StatusOK, ""},
		{"models requires auth", "secret-123", http.MethodGet, "/models", "", "", http.StatusUnauthorized, "missing API key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := APIKey(tt.key)(inner)
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.wantCode {
				t.Fatalf("status: got %d, want %d", w.Code, tt.wantCode)
			}
			if tt.wantError == "" {
				return
			}
			var body map[string]string
			json.NewDecoder(w.Body).Decode(&body)
			if body["error"] != tt.wantError {
				t.Errorf("error: got %q, want %q", body["error"], tt.wantError)
			}
		})
	}
}
