package util

import (
	"fmt"
	"time"
)

// ValidateAmount checks that a monetary amount is positive and below the cap.
func ValidateAmount(amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive, got %f", amount)
	}
	if amount >= 10000000 { // 10M cap
		return fmt.Errorf("amount too large, got %f", amount)
	}
	return nil
}

// ValidateDate checks YYYY-MM-DD format.
func ValidateDate(dateStr string) error {
	if dateStr == "" {
		return fmt.Errorf("date is empty")
	}
	_, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return fmt.Errorf("invalid date format: %w", err)
	}
	return nil
}

// ParseMonth parses a YYYY-MM month key into the first of that month, UTC.
func ParseMonth(monthStr string) (time.Time, error) {
	t, err := time.Parse("2006-01", monthStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month format, want YYYY-MM: %w", err)
	}
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC), nil
}

// MonthKey renders a month as its YYYY-MM key.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// ValidateCurrency checks an ISO-4217-ish currency code.
func ValidateCurrency(code string) error {
	if len(code) != 3 {
		return fmt.Errorf("currency must be a 3-letter code, got %q", code)
	}
	for _, ch := range code {
		if ch < 'A' || ch > 'Z' {
			return fmt.Errorf("currency must be upper-case letters, got %q", code)
		}
	}
	return nil
}
