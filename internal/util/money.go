package util

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// RoundCents rounds a monetary value to 2 decimal places (half up).
// Every monetary value goes through this before persistence.
func RoundCents(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// RoundQuantity rounds a holding quantity to 6 decimal places.
func RoundQuantity(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(6).Float64()
	return f
}

// ParseAmount parses a decimal string into a cent-rounded amount.
func ParseAmount(s string) (float64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	f, _ := d.Round(2).Float64()
	return f, nil
}

// FormatAmount renders an amount with two decimals for display/export.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(RoundCents(v), 'f', 2, 64)
}
