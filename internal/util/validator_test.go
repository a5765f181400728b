package util

import (
	"testing"
	"time"
)

func TestValidateAmount_Positive(t *testing.T) {
	testCases := []float64{0.01, 1.0, 100.5, 9999999.99}

	for _, amount := range testCases {
		err := ValidateAmount(amount)
		if err != nil {
			t.Errorf("ValidateAmount(%f) error = %v, want nil", amount, err)
		}
	}
}

func TestValidateAmount_Zero(t *testing.T) {
	err := ValidateAmount(0)

	if err == nil {
		t.Error("ValidateAmount(0) error = nil, want error")
	}
}

func TestValidateAmount_Negative(t *testing.T) {
	testCases := []float64{-0.01, -100, -9999.99}

	for _, amount := range testCases {
		err := ValidateAmount(amount)
		if err == nil {
			t.Errorf("ValidateAmount(%f) error = nil, want error", amount)
		}
	}
}

func TestValidateAmount_TooLarge(t *testing.T) {
	err := ValidateAmount(100000000)

	if err == nil {
		t.Error("ValidateAmount(100000000) error = nil, want error")
	}
}

func TestValidateDate_Valid(t *testing.T) {
	testCases := []string{
		"2024-01-01",
		"2024-12-31",
		"2025-06-15",
	}

	for _, date := range testCases {
		err := ValidateDate(date)
		if err != nil {
			t.Errorf("ValidateDate(%q) error = %v, want nil", date, err)
		}
	}
}

func TestValidateDate_InvalidFormat(t *testing.T) {
	testCases := []string{
		"",
		"2024/01/01",
		"01-01-2024",
		"2024-1-1",
		"not-a-date",
		"2024-13-01",
		"2024-01-32",
	}

	for _, date := range testCases {
		err := ValidateDate(date)
		if err == nil {
			t.Errorf("ValidateDate(%q) error = nil, want error", date)
		}
	}
}

func TestParseMonth_Valid(t *testing.T) {
	got, err := ParseMonth("2025-06")
	if err != nil {
		t.Fatalf("ParseMonth(2025-06) error = %v", err)
	}
	want := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ParseMonth(2025-06) = %v, want %v", got, want)
	}
}

func TestParseMonth_Invalid(t *testing.T) {
	testCases := []string{"", "2025", "2025-6", "06-2025", "2025-13"}

	for _, monthStr := range testCases {
		if _, err := ParseMonth(monthStr); err == nil {
			t.Errorf("ParseMonth(%q) error = nil, want error", monthStr)
		}
	}
}

func TestMonthKey(t *testing.T) {
	in := time.Date(2025, time.June, 15, 10, 30, 0, 0, time.UTC)
	if got := MonthKey(in); got != "2025-06" {
		t.Errorf("MonthKey = %q, want 2025-06", got)
	}
}

func TestValidateCurrency_Valid(t *testing.T) {
	testCases := []string{"USD", "EUR", "ILS", "GBP"}

	for _, code := range testCases {
		if err := ValidateCurrency(code); err != nil {
			t.Errorf("ValidateCurrency(%q) error = %v, want nil", code, err)
		}
	}
}

func TestValidateCurrency_Invalid(t *testing.T) {
	testCases := []string{"", "US", "DOLLAR", "usd", "U$D", "123"}

	for _, code := range testCases {
		if err := ValidateCurrency(code); err == nil {
			t.Errorf("ValidateCurrency(%q) error = nil, want error", code)
		}
	}
}
