package core

import (
	"testing"
	"time"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "utc offset form", in: "2024-01-05T08:00:00+00:00", want: "2024-01-05T08:00:00+00:00"},
		{name: "zulu form normalizes to offset", in: "2024-01-05T08:00:00Z", want: "2024-01-05T08:00:00+00:00"},
		{name: "non-utc offset converted", in: "2024-01-05T09:00:00+01:00", want: "2024-01-05T08:00:00+00:00"},
		{name: "surrounding whitespace", in: " 2024-01-05T08:00:00Z ", want: "2024-01-05T08:00:00+00:00"},
		{name: "date only", in: "2024-01-05", wantErr: true},
		{name: "garbage", in: "not-a-date", wantErr: true},
		{name: "empty", in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, err := ParseTimestamp(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseTimestamp(%q) expected error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTimestamp(%q): %v", tt.in, err)
			}
			if got := ts.ISO8601(); got != tt.want {
				t.Errorf("ISO8601() = %q, want %q", got, tt.want)
			}
			if ts.Location() != time.UTC {
				t.Errorf("timestamp not normalized to UTC: %v", ts.Location())
			}
		})
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{in: "3.50", want: 3.5},
		{in: "-12.30", want: -12.3},
		{in: "1,234.56", want: 1234.56},
		{in: "  42 ", want: 42},
		{in: "1 234.50", want: 1234.5},
		{in: "abc", wantErr: true},
		{in: "", wantErr: true},
		{in: "12.3.4", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseValue(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseValue(%q) expected error, got %v", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseValue(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseValue(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestEntryView(t *testing.T) {
	at, _ := ParseTimestamp("2024-01-05T08:00:00Z")
	e := Entry{ID: 7, CategoryID: 2, At: at, Description: "Coffee", Value: -3.5}

	name := "Food"
	v := e.View(&name)
	if v.ID != 7 || v.Category.ID != 2 || v.Value != -3.5 {
		t.Fatalf("unexpected view: %+v", v)
	}
	if v.Datetime.ISO8601 != "2024-01-05T08:00:00+00:00" {
		t.Errorf("datetime = %q", v.Datetime.ISO8601)
	}
	if v.Category.Name == nil || *v.Category.Name != "Food" {
		t.Errorf("category name = %v", v.Category.Name)
	}

	orphan := e.View(nil)
	if orphan.Category.Name != nil {
		t.Errorf("expected null category name, got %q", *orphan.Category.Name)
	}
}

func TestEntryInputValidate(t *testing.T) {
	at, _ := ParseTimestamp("2024-01-05T08:00:00Z")
	good := EntryInput{CategoryID: 1, Description: "ok", Value: 1, At: at}
	if err := good.Validate(); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}

	bad := good
	bad.CategoryID = 0
	if err := bad.Validate(); err == nil {
		t.Error("zero category id accepted")
	}

	bad = good
	bad.At = Timestamp{}
	if err := bad.Validate(); err == nil {
		t.Error("zero timestamp accepted")
	}
}
