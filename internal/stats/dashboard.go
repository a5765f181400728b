// Package stats computes the monthly dashboard aggregation from
// already-loaded rows. All functions are pure; the handler owns the
// queries and the currency converter.
package stats

import (
	"time"

	"github.com/avifenesh/expense-track-sub006/internal/models"
	"github.com/avifenesh/expense-track-sub006/internal/util"
)

// Convert re-expresses an amount given in currency cur into the user's
// preferred currency. fx.Cache.Convert curried by the handler.
type Convert func(amount float64, cur string) float64

// Input carries everything Build needs for one dashboard request.
type Input struct {
	Month     time.Time // first of month, UTC
	AccountID *uint     // optional scope

	Categories       []models.Category
	Budgets          []models.Budget // budgets of the target month
	Transactions     []models.Transaction
	PrevTransactions []models.Transaction
	History          []models.Transaction // trailing 6-month window, current included

	PendingRequests int
	ActiveTemplates int

	Convert Convert
}

// Totals is an income/expense pair.
type Totals struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}

// HistoryPoint is one month of the trailing series.
type HistoryPoint struct {
	Month   string  `json:"month"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Net     float64 `json:"net"`
}

// Dashboard is the computed aggregation for one month.
type Dashboard struct {
	Month string `json:"month"`

	Actual    Totals `json:"actual"`
	Planned   Totals `json:"planned"`
	Remaining Totals `json:"remaining"` // planned - actual, floored at 0

	ActualNet    float64 `json:"actual_net"`
	ProjectedNet float64 `json:"projected_net"`
	PlannedNet   float64 `json:"planned_net"`

	// the 4-stat summary: actual net, projected net, remaining expense
	// budget, planned net
	RemainingExpenseBudget float64 `json:"remaining_expense_budget"`

	MonthOverMonth float64 `json:"month_over_month"` // actual net delta vs previous month

	History []HistoryPoint `json:"history"`

	PendingRequests int `json:"pending_requests"`
	ActiveTemplates int `json:"active_templates"`
}

// HistoryMonths is the length of the trailing series.
const HistoryMonths = 6

func sumByType(txs []models.Transaction, conv Convert) Totals {
	var t Totals
	for i := range txs {
		tx := &txs[i]
		amount := conv(tx.Amount, tx.Currency)
		if tx.Type == models.TypeIncome {
			t.Income += amount
		} else {
			t.Expense += amount
		}
	}
	t.Income = util.RoundCents(t.Income)
	t.Expense = util.RoundCents(t.Expense)
	return t
}

// Build computes the full dashboard.
//
// Budget-to-actual matching is keyed by category id only: with no account
// scope, budgets act as per-category monthly plans across all accounts
// (matches the historical behavior; see DESIGN.md).
func Build(in Input) Dashboard {
	catType := make(map[uint]string, len(in.Categories))
	for _, cat := range in.Categories {
		catType[cat.ID] = cat.Type
	}

	actual := sumByType(in.Transactions, in.Convert)

	var planned Totals
	for _, b := range in.Budgets {
		if in.AccountID != nil && b.AccountID != *in.AccountID {
			continue
		}
		if catType[b.CategoryID] == models.TypeIncome {
			planned.Income += b.Planned
		} else {
			planned.Expense += b.Planned
		}
	}
	planned.Income = util.RoundCents(planned.Income)
	planned.Expense = util.RoundCents(planned.Expense)

	remainingIncome := planned.Income - actual.Income
	remainingExpense := planned.Expense - actual.Expense

	actualNet := util.RoundCents(actual.Income - actual.Expense)
	projectedNet := util.RoundCents(actualNet + max0(remainingIncome) - max0(remainingExpense))
	plannedNet := util.RoundCents(planned.Income - planned.Expense)

	prev := sumByType(in.PrevTransactions, in.Convert)
	prevNet := util.RoundCents(prev.Income - prev.Expense)

	return Dashboard{
		Month:   util.MonthKey(in.Month),
		Actual:  actual,
		Planned: planned,
		Remaining: Totals{
			Income:  util.RoundCents(max0(remainingIncome)),
			Expense: util.RoundCents(max0(remainingExpense)),
		},
		ActualNet:              actualNet,
		ProjectedNet:           projectedNet,
		PlannedNet:             plannedNet,
		RemainingExpenseBudget: util.RoundCents(max0(remainingExpense)),
		MonthOverMonth:         util.RoundCents(actualNet - prevNet),
		History:                buildHistory(in.Month, in.History, in.Convert),
		PendingRequests:        in.PendingRequests,
		ActiveTemplates:        in.ActiveTemplates,
	}
}

// buildHistory produces one point per month for the trailing window ending
// at month, zero-filled where no transactions exist.
func buildHistory(month time.Time, txs []models.Transaction, conv Convert) []HistoryPoint {
	byMonth := make(map[string]*HistoryPoint, HistoryMonths)
	points := make([]HistoryPoint, 0, HistoryMonths)
	for i := HistoryMonths - 1; i >= 0; i-- {
		key := util.MonthKey(month.AddDate(0, -i, 0))
		points = append(points, HistoryPoint{Month: key})
		byMonth[key] = &points[len(points)-1]
	}

	for i := range txs {
		tx := &txs[i]
		p, ok := byMonth[util.MonthKey(tx.Month)]
		if !ok {
			continue
		}
		amount := conv(tx.Amount, tx.Currency)
		if tx.Type == models.TypeIncome {
			p.Income += amount
		} else {
			p.Expense += amount
		}
	}

	for i := range points {
		points[i].Income = util.RoundCents(points[i].Income)
		points[i].Expense = util.RoundCents(points[i].Expense)
		points[i].Net = util.RoundCents(points[i].Income - points[i].Expense)
	}
	return points
}

func max0(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
