package stats

import (
	"testing"
	"time"

	"github.com/avifenesh/expense-track-sub006/internal/models"
)

func noConvert(amount float64, cur string) float64 { return amount }

func month(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func TestBuild_Totals(t *testing.T) {
	target := month(2025, time.June)
	categories := []models.Category{
		{ID: 1, Type: models.TypeIncome},
		{ID: 2, Type: models.TypeExpense},
	}
	txs := []models.Transaction{
		{Type: models.TypeIncome, CategoryID: 1, Amount: 3500, Month: target},
		{Type: models.TypeExpense, CategoryID: 2, Amount: 85.50, Month: target},
	}
	budgets := []models.Budget{
		{CategoryID: 2, AccountID: 1, Month: target, Planned: 400},
	}

	d := Build(Input{
		Month:        target,
		Categories:   categories,
		Budgets:      budgets,
		Transactions: txs,
		History:      txs,
		Convert:      noConvert,
	})

	if d.Actual.Income != 3500 {
		t.Errorf("Actual.Income = %v, want 3500", d.Actual.Income)
	}
	if d.Actual.Expense != 85.50 {
		t.Errorf("Actual.Expense = %v, want 85.50", d.Actual.Expense)
	}
	if d.ActualNet != 3414.50 {
		t.Errorf("ActualNet = %v, want 3414.50", d.ActualNet)
	}
	if d.RemainingExpenseBudget != 314.50 {
		t.Errorf("RemainingExpenseBudget = %v, want 314.50", d.RemainingExpenseBudget)
	}
	if d.ProjectedNet != 3100 {
		t.Errorf("ProjectedNet = %v, want 3100", d.ProjectedNet)
	}
	if d.PlannedNet != -400 {
		t.Errorf("PlannedNet = %v, want -400", d.PlannedNet)
	}
}

func TestBuild_OverspentBudgetFloorsAtZero(t *testing.T) {
	target := month(2025, time.June)
	categories := []models.Category{{ID: 2, Type: models.TypeExpense}}
	txs := []models.Transaction{
		{Type: models.TypeExpense, CategoryID: 2, Amount: 500, Month: target},
	}
	budgets := []models.Budget{
		{CategoryID: 2, Month: target, Planned: 400},
	}

	d := Build(Input{
		Month:        target,
		Categories:   categories,
		Budgets:      budgets,
		Transactions: txs,
		Convert:      noConvert,
	})

	if d.Remaining.Expense != 0 {
		t.Errorf("Remaining.Expense = %v, want 0 when overspent", d.Remaining.Expense)
	}
	if d.RemainingExpenseBudget != 0 {
		t.Errorf("RemainingExpenseBudget = %v, want 0 when overspent", d.RemainingExpenseBudget)
	}
}

func TestBuild_AccountScopeFiltersBudgets(t *testing.T) {
	target := month(2025, time.June)
	accountID := uint(1)
	categories := []models.Category{{ID: 2, Type: models.TypeExpense}}
	budgets := []models.Budget{
		{CategoryID: 2, AccountID: 1, Month: target, Planned: 100},
		{CategoryID: 2, AccountID: 9, Month: target, Planned: 250},
	}

	d := Build(Input{
		Month:      target,
		AccountID:  &accountID,
		Categories: categories,
		Budgets:    budgets,
		Convert:    noConvert,
	})

	if d.Planned.Expense != 100 {
		t.Errorf("Planned.Expense = %v, want 100 (other account excluded)", d.Planned.Expense)
	}
}

func TestBuild_MonthOverMonth(t *testing.T) {
	target := month(2025, time.June)
	categories := []models.Category{
		{ID: 1, Type: models.TypeIncome},
	}

	d := Build(Input{
		Month:      target,
		Categories: categories,
		Transactions: []models.Transaction{
			{Type: models.TypeIncome, CategoryID: 1, Amount: 300, Month: target},
		},
		PrevTransactions: []models.Transaction{
			{Type: models.TypeIncome, CategoryID: 1, Amount: 200, Month: target.AddDate(0, -1, 0)},
		},
		Convert: noConvert,
	})

	if d.MonthOverMonth != 100 {
		t.Errorf("MonthOverMonth = %v, want 100", d.MonthOverMonth)
	}
}

func TestBuild_HistoryZeroFilled(t *testing.T) {
	target := month(2025, time.June)

	d := Build(Input{
		Month: target,
		History: []models.Transaction{
			{Type: models.TypeExpense, Amount: 50, Month: month(2025, time.April)},
		},
		Convert: noConvert,
	})

	if len(d.History) != HistoryMonths {
		t.Fatalf("len(History) = %d, want %d", len(d.History), HistoryMonths)
	}
	if d.History[0].Month != "2025-01" {
		t.Errorf("first history month = %s, want 2025-01", d.History[0].Month)
	}
	if last := d.History[len(d.History)-1]; last.Month != "2025-06" {
		t.Errorf("last history month = %s, want 2025-06", last.Month)
	}

	for _, p := range d.History {
		switch p.Month {
		case "2025-04":
			if p.Expense != 50 || p.Net != -50 {
				t.Errorf("2025-04 point = %+v, want expense 50, net -50", p)
			}
		default:
			if p.Income != 0 || p.Expense != 0 {
				t.Errorf("%s point = %+v, want zeros", p.Month, p)
			}
		}
	}
}

func TestBuild_CurrencyConversionApplied(t *testing.T) {
	target := month(2025, time.June)
	categories := []models.Category{{ID: 1, Type: models.TypeIncome}}
	double := func(amount float64, cur string) float64 {
		if cur == "EUR" {
			return amount * 2
		}
		return amount
	}

	d := Build(Input{
		Month:      target,
		Categories: categories,
		Transactions: []models.Transaction{
			{Type: models.TypeIncome, CategoryID: 1, Amount: 100, Currency: "EUR", Month: target},
			{Type: models.TypeIncome, CategoryID: 1, Amount: 100, Currency: "USD", Month: target},
		},
		Convert: double,
	})

	if d.Actual.Income != 300 {
		t.Errorf("Actual.Income = %v, want 300 after conversion", d.Actual.Income)
	}
}
