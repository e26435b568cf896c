package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHeadersMiddleware(t *testing.T) {
	handler := NewHeadersMiddleware(DefaultHeadersConfig()).Middleware(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	checks := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
	}
	for header, want := range checks {
		if got := rec.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
	if rec.Header().Get("Content-Security-Policy") == "" {
		t.Error("Content-Security-Policy should be set")
	}
	if rec.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS should not be set on plain HTTP")
	}
}

func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name       string
		trust      bool
		remoteAddr string
		xff        string
		want       string
	}{
		{
			name:       "direct connection",
			remoteAddr: "203.0.113.7:51234",
			want:       "203.0.113.7",
		},
		{
			name:       "forwarded header ignored without trust",
			remoteAddr: "127.0.0.1:51234",
			xff:        "203.0.113.7",
			want:       "127.0.0.1",
		},
		{
			name:       "forwarded header honored from trusted proxy",
			trust:      true,
			remoteAddr: "127.0.0.1:51234",
			xff:        "203.0.113.7",
			want:       "203.0.113.7",
		},
		{
			name:       "forwarded header ignored from untrusted peer",
			trust:      true,
			remoteAddr: "203.0.113.9:51234",
			xff:        "198.51.100.1",
			want:       "203.0.113.9",
		},
		{
			name:       "first hop wins in multi-proxy chain",
			trust:      true,
			remoteAddr: "10.0.0.5:51234",
			xff:        "203.0.113.7, 10.0.0.1",
			want:       "203.0.113.7",
		},
		{
			name:       "garbage forwarded value falls back to peer",
			trust:      true,
			remoteAddr: "10.0.0.5:51234",
			xff:        "not-an-ip",
			want:       "10.0.0.5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewIPExtractor(tt.trust)
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if got := e.ExtractClientIP(r); got != tt.want {
				t.Errorf("ExtractClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
