// Package sharing computes peer-to-peer expense splits and settlement
// balances.
package sharing

import (
	"fmt"

	"github.com/avifenesh/expense-track-sub006/internal/models"
	"github.com/shopspring/decimal"
)

// Participant is the caller-supplied split input for one person.
type Participant struct {
	Email       string
	Percentage  float64 // for PERCENTAGE splits
	ShareAmount float64 // for FIXED splits
}

// Share is one participant's computed share.
type Share struct {
	Email      string
	Amount     float64
	Percentage float64
}

func roundCents(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

// CalculateShares computes per-participant share amounts.
//
// EQUAL divides the total by participant count + 1: the owner implicitly
// keeps one equal share. PERCENTAGE applies each participant's percentage,
// silently skipping emails not in validEmails; percentages are not required
// to sum to 100 ("you decide the split"). FIXED takes the caller-provided
// share amount verbatim, 0 when absent; the sum cap is enforced upstream
// by ValidateFixedShares.
func CalculateShares(splitType string, totalAmount float64, participants []Participant, validEmails map[string]bool) []Share {
	total := decimal.NewFromFloat(totalAmount)
	shares := make([]Share, 0, len(participants))

	switch splitType {
	case models.SplitEqual:
		n := decimal.NewFromInt(int64(len(participants) + 1))
		per := roundCents(total.Div(n))
		for _, p := range participants {
			shares = append(shares, Share{Email: p.Email, Amount: per})
		}

	case models.SplitPercentage:
		for _, p := range participants {
			if !validEmails[p.Email] {
				continue
			}
			pct := decimal.NewFromFloat(p.Percentage)
			amount := roundCents(total.Mul(pct).Div(decimal.NewFromInt(100)))
			shares = append(shares, Share{Email: p.Email, Amount: amount, Percentage: p.Percentage})
		}

	case models.SplitFixed:
		for _, p := range participants {
			shares = append(shares, Share{Email: p.Email, Amount: roundCents(decimal.NewFromFloat(p.ShareAmount))})
		}
	}

	return shares
}

// ValidateFixedShares rejects FIXED splits whose share sum exceeds the
// transaction total.
func ValidateFixedShares(totalAmount float64, participants []Participant) error {
	sum := decimal.Zero
	for _, p := range participants {
		sum = sum.Add(decimal.NewFromFloat(p.ShareAmount))
	}
	if sum.GreaterThan(decimal.NewFromFloat(totalAmount)) {
		return fmt.Errorf("fixed shares sum %s exceeds total %s",
			sum.StringFixed(2), decimal.NewFromFloat(totalAmount).StringFixed(2))
	}
	return nil
}
