package http

import (
	"fmt"
	"net/http"
	"strconv"

	"budget/internal/core"
)

// param reads a request parameter. The query string wins for both GET
// and POST; form values are the fallback for POSTed bodies.
func param(r *http.Request, name string) string {
	if v := r.URL.Query().Get(name); v != "" {
		return v
	}
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err == nil {
			return r.PostForm.Get(name)
		}
	}
	return ""
}

func intParam(r *http.Request, name string) (int64, error) {
	raw := param(r, name)
	if raw == "" {
		return 0, fmt.Errorf("missing parameter %q", name)
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parameter %q is not an integer: %q", name, raw)
	}
	return v, nil
}

func valueParam(r *http.Request, name string) (float64, error) {
	raw := param(r, name)
	if raw == "" {
		return 0, fmt.Errorf("missing parameter %q", name)
	}
	v, err := core.ParseValue(raw)
	if err != nil {
		return 0, fmt.Errorf("parameter %q is not a number: %q", name, raw)
	}
	return v, nil
}

func timestampParam(r *http.Request, name string) (core.Timestamp, error) {
	raw := param(r, name)
	if raw == "" {
		return core.Timestamp{}, fmt.Errorf("missing parameter %q", name)
	}
	t, err := core.ParseTimestamp(raw)
	if err != nil {
		return core.Timestamp{}, fmt.Errorf("parameter %q is not an ISO-8601 timestamp: %q", name, raw)
	}
	return t, nil
}
