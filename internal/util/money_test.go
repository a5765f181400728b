package util

import "testing"

func TestRoundCents(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{1.005, 1.01},
		{1.004, 1.00},
		{33.333333, 33.33},
		{-2.675, -2.68},
		{100, 100},
	}
	for _, tc := range cases {
		if got := RoundCents(tc.in); got != tc.want {
			t.Errorf("RoundCents(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestRoundQuantity(t *testing.T) {
	if got := RoundQuantity(0.1234567); got != 0.123457 {
		t.Errorf("RoundQuantity(0.1234567) = %v, want 0.123457", got)
	}
	if got := RoundQuantity(5); got != 5 {
		t.Errorf("RoundQuantity(5) = %v, want 5", got)
	}
}

func TestParseAmount_Valid(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"12.34", 12.34},
		{"12.345", 12.35},
		{"0.01", 0.01},
		{"1000", 1000},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if err != nil {
			t.Errorf("ParseAmount(%q) error = %v, want nil", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseAmount(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseAmount_Invalid(t *testing.T) {
	for _, in := range []string{"", "abc", "12..3", "1,000"} {
		if _, err := ParseAmount(in); err == nil {
			t.Errorf("ParseAmount(%q) error = nil, want error", in)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{12.3, "12.30"},
		{12.345, "12.35"},
		{0, "0.00"},
	}
	for _, tc := range cases {
		if got := FormatAmount(tc.in); got != tc.want {
			t.Errorf("FormatAmount(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
