package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ISO8601 is the wire and storage layout for entry timestamps. Unlike
// time.RFC3339 it renders UTC as "+00:00", matching the values persisted
// in the dt column.
const ISO8601 = "2006-01-02T15:04:05-07:00"

type (
	// Timestamp is an entry's point in time, normalized to UTC.
	Timestamp struct {
		time.Time
	}

	// Entry is one income/expense record. The sign of Value encodes
	// income (positive) vs. expense (negative) by client convention.
	Entry struct {
		ID          int64
		CategoryID  int64
		At          Timestamp
		Description string
		Value       float64
	}

	// EntryInput carries the writable fields of an entry.
	EntryInput struct {
		CategoryID  int64
		Description string
		Value       float64
		At          Timestamp
	}

	// Category is reference data; read-only through the API.
	Category struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}

	// EntryView is the API representation of an entry with its
	// category name resolved. Name is null when the category id does
	// not resolve.
	EntryView struct {
		ID          int64        `json:"id"`
		Datetime    DatetimeView `json:"datetime"`
		Category    CategoryView `json:"category"`
		Description string       `json:"description"`
		Value       float64      `json:"value"`
	}

	DatetimeView struct {
		ISO8601 string `json:"iso8601"`
	}

	CategoryView struct {
		ID   int64   `json:"id"`
		Name *string `json:"name"`
	}
)

var (
	ErrInvalidTimestamp = errors.New("invalid ISO-8601 timestamp")
	ErrInvalidValue     = errors.New("invalid decimal value")
	ErrInvalidInput     = errors.New("invalid entry input")
)

// ParseTimestamp parses an ISO-8601 timestamp with a UTC offset
// ("2024-01-05T08:00:00+00:00" or the Z suffix form) and normalizes it
// to UTC.
func ParseTimestamp(s string) (Timestamp, error) {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
	if err != nil {
		return Timestamp{}, ErrInvalidTimestamp
	}
	return Timestamp{Time: t.UTC()}, nil
}

// ISO8601 renders the timestamp in the storage layout.
func (t Timestamp) ISO8601() string {
	return t.Format(ISO8601)
}

// ParseValue parses a decimal amount, tolerating thousands separators
// and surrounding whitespace ("1,234.56" -> 1234.56). Commas are always
// treated as thousands separators and removed before parsing.
func ParseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0, ErrInvalidValue
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrInvalidValue
	}
	return v, nil
}

// View builds the API representation of an entry. name is nil when the
// category could not be resolved.
func (e Entry) View(name *string) EntryView {
	return EntryView{
		ID:          e.ID,
		Datetime:    DatetimeView{ISO8601: e.At.ISO8601()},
		Category:    CategoryView{ID: e.CategoryID, Name: name},
		Description: e.Description,
		Value:       e.Value,
	}
}

// Validate checks the writable fields of an entry before they reach the
// store. Category existence is checked against the category snapshot by
// the repository, not here.
func (in EntryInput) Validate() error {
	if in.CategoryID <= 0 {
		return fmt.Errorf("%w: category id must be positive", ErrInvalidInput)
	}
	if in.At.IsZero() {
		return ErrInvalidTimestamp
	}
	if len(in.Description) > 500 {
		return fmt.Errorf("%w: description too long (max 500 characters)", ErrInvalidInput)
	}
	return nil
}
