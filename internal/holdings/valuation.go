// Package holdings values investment positions against current quotes.
package holdings

import (
	"time"

	"github.com/avifenesh/expense-track-sub006/internal/models"
	"github.com/avifenesh/expense-track-sub006/internal/quotes"
	"github.com/avifenesh/expense-track-sub006/internal/util"
	"github.com/shopspring/decimal"
)

// Convert re-expresses an amount from its currency into the user's
// preferred one.
type Convert func(amount float64, cur string) float64

// Value is one holding priced against the latest quote.
type Value struct {
	HoldingID       uint       `json:"holding_id"`
	AccountID       uint       `json:"account_id"`
	Symbol          string     `json:"symbol"`
	Quantity        float64    `json:"quantity"`
	AverageCost     float64    `json:"average_cost"`
	Price           float64    `json:"price,omitempty"`
	CostBasis       float64    `json:"cost_basis"`
	MarketValue     float64    `json:"market_value"`
	GainLoss        float64    `json:"gain_loss"`
	GainLossPercent float64    `json:"gain_loss_percent"`
	Currency        string     `json:"currency"`
	PriceStale      bool       `json:"price_stale"`
	PriceFetchedAt  *time.Time `json:"price_fetched_at,omitempty"`
}

// Valuate prices each holding. Cost basis = quantity x average cost;
// market value = quantity x current price, falling back to the cost basis
// when no quote is available; gain/loss percent is 0 on a zero cost basis.
// Monetary outputs are converted via conv and rounded to cents.
func Valuate(hs []models.Holding, qs map[string]quotes.Quote, conv Convert) []Value {
	values := make([]Value, 0, len(hs))
	for i := range hs {
		h := &hs[i]
		qty := decimal.NewFromFloat(h.Quantity)
		costBasis := qty.Mul(decimal.NewFromFloat(h.AverageCost))

		v := Value{
			HoldingID:   h.ID,
			AccountID:   h.AccountID,
			Symbol:      h.Symbol,
			Quantity:    h.Quantity,
			AverageCost: h.AverageCost,
			Currency:    h.Currency,
		}

		marketValue := costBasis
		if q, ok := qs[h.Symbol]; ok {
			marketValue = qty.Mul(decimal.NewFromFloat(q.Price))
			v.Price = q.Price
			v.PriceStale = q.IsStale
			fetched := q.FetchedAt
			v.PriceFetchedAt = &fetched
		}

		gainLoss := marketValue.Sub(costBasis)
		if !costBasis.IsZero() {
			pct, _ := gainLoss.Div(costBasis).Mul(decimal.NewFromInt(100)).Round(2).Float64()
			v.GainLossPercent = pct
		}

		cb, _ := costBasis.Round(2).Float64()
		mv, _ := marketValue.Round(2).Float64()
		gl, _ := gainLoss.Round(2).Float64()
		v.CostBasis = util.RoundCents(conv(cb, h.Currency))
		v.MarketValue = util.RoundCents(conv(mv, h.Currency))
		v.GainLoss = util.RoundCents(conv(gl, h.Currency))

		values = append(values, v)
	}
	return values
}

// Symbols returns the distinct ticker symbols across holdings.
func Symbols(hs []models.Holding) []string {
	seen := make(map[string]bool, len(hs))
	syms := make([]string, 0, len(hs))
	for i := range hs {
		if sym := hs[i].Symbol; sym != "" && !seen[sym] {
			seen[sym] = true
			syms = append(syms, sym)
		}
	}
	return syms
}
