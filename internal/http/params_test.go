package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParamQueryWinsOverForm(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/entries?desc=FromQuery",
		strings.NewReader("desc=FromForm&value=7"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	if got := param(r, "desc"); got != "FromQuery" {
		t.Errorf("param(desc) = %q, want FromQuery", got)
	}
	if got := param(r, "value"); got != "7" {
		t.Errorf("param(value) = %q, want form fallback 7", got)
	}
}

func TestParamFormIgnoredOnGet(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/entries", strings.NewReader("desc=FromBody"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	if got := param(r, "desc"); got != "" {
		t.Errorf("param(desc) = %q, want empty on GET", got)
	}
}

func TestIntParam(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/entries?id=42&bad=x", nil)

	if v, err := intParam(r, "id"); err != nil || v != 42 {
		t.Errorf("intParam(id) = (%d, %v)", v, err)
	}
	if _, err := intParam(r, "bad"); err == nil {
		t.Error("intParam(bad) should fail")
	}
	if _, err := intParam(r, "missing"); err == nil {
		t.Error("intParam(missing) should fail")
	}
}

func TestTimestampParamCanonicalizes(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/entries?dt=2024-01-05T08%3A00%3A00Z", nil)

	ts, err := timestampParam(r, "dt")
	if err != nil {
		t.Fatalf("timestampParam: %v", err)
	}
	if ts.ISO8601() != "2024-01-05T08:00:00+00:00" {
		t.Errorf("ISO8601() = %q", ts.ISO8601())
	}
}
