package sharing

import (
	"testing"

	"github.com/avifenesh/expense-track-sub006/internal/models"
)

func TestCalculateShares_Equal(t *testing.T) {
	participants := []Participant{
		{Email: "a@example.com"},
		{Email: "b@example.com"},
	}

	// 100 split among 2 participants + owner = 33.33 each
	shares := CalculateShares(models.SplitEqual, 100, participants, nil)

	if len(shares) != 2 {
		t.Fatalf("len(shares) = %d, want 2", len(shares))
	}
	for _, s := range shares {
		if s.Amount != 33.33 {
			t.Errorf("share for %s = %v, want 33.33", s.Email, s.Amount)
		}
	}
}

func TestCalculateShares_EqualSumNeverExceedsTotal(t *testing.T) {
	totals := []float64{100, 99.99, 0.01, 10.01, 85.50}
	for _, total := range totals {
		participants := []Participant{
			{Email: "a@example.com"},
			{Email: "b@example.com"},
			{Email: "c@example.com"},
		}
		shares := CalculateShares(models.SplitEqual, total, participants, nil)

		var sum float64
		for _, s := range shares {
			sum += s.Amount
		}
		// 3 of 4 equal shares can never exceed the total
		if sum > total {
			t.Errorf("total %v: participant sum %v exceeds total", total, sum)
		}
	}
}

func TestCalculateShares_Percentage(t *testing.T) {
	participants := []Participant{
		{Email: "a@example.com", Percentage: 25},
		{Email: "b@example.com", Percentage: 30},
	}
	valid := map[string]bool{"a@example.com": true, "b@example.com": true}

	shares := CalculateShares(models.SplitPercentage, 200, participants, valid)

	if len(shares) != 2 {
		t.Fatalf("len(shares) = %d, want 2", len(shares))
	}
	if shares[0].Amount != 50 {
		t.Errorf("25%% of 200 = %v, want 50", shares[0].Amount)
	}
	if shares[1].Amount != 60 {
		t.Errorf("30%% of 200 = %v, want 60", shares[1].Amount)
	}
}

func TestCalculateShares_PercentageSkipsUnknownEmails(t *testing.T) {
	participants := []Participant{
		{Email: "known@example.com", Percentage: 50},
		{Email: "unknown@example.com", Percentage: 50},
	}
	valid := map[string]bool{"known@example.com": true}

	shares := CalculateShares(models.SplitPercentage, 100, participants, valid)

	if len(shares) != 1 {
		t.Fatalf("len(shares) = %d, want 1", len(shares))
	}
	if shares[0].Email != "known@example.com" {
		t.Errorf("share email = %s, want known@example.com", shares[0].Email)
	}
}

func TestCalculateShares_Fixed(t *testing.T) {
	participants := []Participant{
		{Email: "a@example.com", ShareAmount: 12.50},
		{Email: "b@example.com", ShareAmount: 7.25},
		{Email: "c@example.com"}, // no amount given
	}

	shares := CalculateShares(models.SplitFixed, 50, participants, nil)

	if len(shares) != 3 {
		t.Fatalf("len(shares) = %d, want 3", len(shares))
	}
	if shares[0].Amount != 12.50 {
		t.Errorf("fixed share = %v, want 12.50", shares[0].Amount)
	}
	if shares[2].Amount != 0 {
		t.Errorf("absent fixed share = %v, want 0", shares[2].Amount)
	}
}

func TestValidateFixedShares_WithinTotal(t *testing.T) {
	participants := []Participant{
		{Email: "a@example.com", ShareAmount: 30},
		{Email: "b@example.com", ShareAmount: 70},
	}

	if err := ValidateFixedShares(100, participants); err != nil {
		t.Errorf("ValidateFixedShares error = %v, want nil", err)
	}
}

func TestValidateFixedShares_ExceedsTotal(t *testing.T) {
	participants := []Participant{
		{Email: "a@example.com", ShareAmount: 60},
		{Email: "b@example.com", ShareAmount: 50},
	}

	if err := ValidateFixedShares(100, participants); err == nil {
		t.Error("ValidateFixedShares error = nil, want error")
	}
}
