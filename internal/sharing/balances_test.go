package sharing

import (
	"testing"

	"github.com/avifenesh/expense-track-sub006/internal/models"
)

func findBalance(t *testing.T, balances []MemberBalance, email string) MemberBalance {
	t.Helper()
	for _, b := range balances {
		if b.Email == email {
			return b
		}
	}
	t.Fatalf("no balance for %s", email)
	return MemberBalance{}
}

func TestBalances_PendingCountsAsDebt(t *testing.T) {
	expenses := []Expense{
		{
			OwnerEmail: "owner@example.com",
			Participants: []ParticipantShare{
				{Email: "a@example.com", Amount: 20, Status: models.ShareStatusPending},
				{Email: "b@example.com", Amount: 30, Status: models.ShareStatusPending},
			},
		},
	}

	balances := Balances(expenses)

	owner := findBalance(t, balances, "owner@example.com")
	if owner.TotalOwed != 50 {
		t.Errorf("owner TotalOwed = %v, want 50", owner.TotalOwed)
	}
	if owner.NetBalance != 50 {
		t.Errorf("owner NetBalance = %v, want 50", owner.NetBalance)
	}

	a := findBalance(t, balances, "a@example.com")
	if a.TotalOwes != 20 {
		t.Errorf("a TotalOwes = %v, want 20", a.TotalOwes)
	}
	if a.NetBalance != -20 {
		t.Errorf("a NetBalance = %v, want -20", a.NetBalance)
	}
}

func TestBalances_PaidIsSettled(t *testing.T) {
	expenses := []Expense{
		{
			OwnerEmail: "owner@example.com",
			Participants: []ParticipantShare{
				{Email: "a@example.com", Amount: 25, Status: models.ShareStatusPaid},
			},
		},
	}

	balances := Balances(expenses)

	owner := findBalance(t, balances, "owner@example.com")
	if owner.TotalOwed != 0 {
		t.Errorf("owner TotalOwed = %v, want 0 after settlement", owner.TotalOwed)
	}

	a := findBalance(t, balances, "a@example.com")
	if a.TotalPaid != 25 {
		t.Errorf("a TotalPaid = %v, want 25", a.TotalPaid)
	}
	if a.TotalOwes != 0 {
		t.Errorf("a TotalOwes = %v, want 0", a.TotalOwes)
	}
}

func TestBalances_DeclinedIgnored(t *testing.T) {
	expenses := []Expense{
		{
			OwnerEmail: "owner@example.com",
			Participants: []ParticipantShare{
				{Email: "a@example.com", Amount: 40, Status: models.ShareStatusDeclined},
			},
		},
	}

	balances := Balances(expenses)

	owner := findBalance(t, balances, "owner@example.com")
	if owner.TotalOwed != 0 {
		t.Errorf("owner TotalOwed = %v, want 0 for declined share", owner.TotalOwed)
	}
	a := findBalance(t, balances, "a@example.com")
	if a.TotalOwes != 0 || a.TotalPaid != 0 {
		t.Errorf("declined share changed balances: %+v", a)
	}
}

func TestBalances_SortedByEmail(t *testing.T) {
	expenses := []Expense{
		{
			OwnerEmail: "z@example.com",
			Participants: []ParticipantShare{
				{Email: "m@example.com", Amount: 10, Status: models.ShareStatusPending},
				{Email: "a@example.com", Amount: 10, Status: models.ShareStatusPending},
			},
		},
	}

	balances := Balances(expenses)

	for i := 1; i < len(balances); i++ {
		if balances[i-1].Email > balances[i].Email {
			t.Fatalf("balances not sorted: %s before %s", balances[i-1].Email, balances[i].Email)
		}
	}
}
