package sharing

import (
	"sort"

	"github.com/avifenesh/expense-track-sub006/internal/models"
	"github.com/shopspring/decimal"
)

// ParticipantShare is the minimal participant view for balance math.
type ParticipantShare struct {
	Email  string
	Amount float64
	Status string // PENDING / PAID / DECLINED
}

// Expense is the minimal shared-expense view for balance math.
type Expense struct {
	OwnerEmail   string
	Participants []ParticipantShare
}

// MemberBalance is the settlement position of one person across all
// shared expenses. Positive NetBalance means they are owed money.
type MemberBalance struct {
	Email      string  `json:"email"`
	TotalOwed  float64 `json:"total_owed"`  // outstanding amounts owed to this person
	TotalOwes  float64 `json:"total_owes"`  // outstanding amounts this person owes
	TotalPaid  float64 `json:"total_paid"`  // settled (PAID) shares this person covered
	NetBalance float64 `json:"net_balance"` // total_owed - total_owes
}

// Balances aggregates settlement positions over shared expenses.
// PENDING shares count as outstanding debt from participant to owner,
// PAID shares are settled, DECLINED shares are ignored entirely.
func Balances(expenses []Expense) []MemberBalance {
	type acc struct {
		owed, owes, paid decimal.Decimal
	}
	byEmail := make(map[string]*acc)
	get := func(email string) *acc {
		a, ok := byEmail[email]
		if !ok {
			a = &acc{}
			byEmail[email] = a
		}
		return a
	}

	for _, e := range expenses {
		owner := get(e.OwnerEmail)
		for _, p := range e.Participants {
			amount := decimal.NewFromFloat(p.Amount)
			switch p.Status {
			case models.ShareStatusPending:
				owner.owed = owner.owed.Add(amount)
				get(p.Email).owes = get(p.Email).owes.Add(amount)
			case models.ShareStatusPaid:
				get(p.Email).paid = get(p.Email).paid.Add(amount)
			}
		}
	}

	balances := make([]MemberBalance, 0, len(byEmail))
	for email, a := range byEmail {
		balances = append(balances, MemberBalance{
			Email:      email,
			TotalOwed:  roundCents(a.owed),
			TotalOwes:  roundCents(a.owes),
			TotalPaid:  roundCents(a.paid),
			NetBalance: roundCents(a.owed.Sub(a.owes)),
		})
	}
	sort.Slice(balances, func(i, j int) bool { return balances[i].Email < balances[j].Email })
	return balances
}
