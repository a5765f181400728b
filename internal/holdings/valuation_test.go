package holdings

import (
	"testing"
	"time"

	"github.com/avifenesh/expense-track-sub006/internal/models"
	"github.com/avifenesh/expense-track-sub006/internal/quotes"
)

func noConvert(amount float64, cur string) float64 { return amount }

func TestValuate_WithQuote(t *testing.T) {
	hs := []models.Holding{
		{ID: 1, Symbol: "AAPL", Quantity: 10, AverageCost: 150, Currency: "USD"},
	}
	qs := map[string]quotes.Quote{
		"AAPL": {Symbol: "AAPL", Price: 180, FetchedAt: time.Now()},
	}

	values := Valuate(hs, qs, noConvert)

	if len(values) != 1 {
		t.Fatalf("len(values) = %d, want 1", len(values))
	}
	v := values[0]
	if v.CostBasis != 1500 {
		t.Errorf("CostBasis = %v, want 1500", v.CostBasis)
	}
	if v.MarketValue != 1800 {
		t.Errorf("MarketValue = %v, want 1800", v.MarketValue)
	}
	if v.GainLoss != 300 {
		t.Errorf("GainLoss = %v, want 300", v.GainLoss)
	}
	if v.GainLossPercent != 20 {
		t.Errorf("GainLossPercent = %v, want 20", v.GainLossPercent)
	}
}

func TestValuate_NoQuoteFallsBackToCostBasis(t *testing.T) {
	hs := []models.Holding{
		{ID: 1, Symbol: "XYZ", Quantity: 5, AverageCost: 20, Currency: "USD"},
	}

	values := Valuate(hs, map[string]quotes.Quote{}, noConvert)

	v := values[0]
	if v.MarketValue != 100 {
		t.Errorf("MarketValue = %v, want cost basis 100", v.MarketValue)
	}
	if v.GainLoss != 0 {
		t.Errorf("GainLoss = %v, want 0 without a quote", v.GainLoss)
	}
	if v.PriceFetchedAt != nil {
		t.Error("PriceFetchedAt set without a quote")
	}
}

func TestValuate_ZeroCostBasis(t *testing.T) {
	hs := []models.Holding{
		{ID: 1, Symbol: "FREE", Quantity: 0, AverageCost: 100, Currency: "USD"},
	}
	qs := map[string]quotes.Quote{
		"FREE": {Symbol: "FREE", Price: 50},
	}

	values := Valuate(hs, qs, noConvert)

	if values[0].GainLossPercent != 0 {
		t.Errorf("GainLossPercent = %v, want 0 on zero cost basis", values[0].GainLossPercent)
	}
}

func TestValuate_StaleQuoteMarked(t *testing.T) {
	hs := []models.Holding{
		{ID: 1, Symbol: "OLD", Quantity: 1, AverageCost: 10, Currency: "USD"},
	}
	qs := map[string]quotes.Quote{
		"OLD": {Symbol: "OLD", Price: 12, IsStale: true},
	}

	values := Valuate(hs, qs, noConvert)

	if !values[0].PriceStale {
		t.Error("PriceStale = false, want true for a stale quote")
	}
}

func TestValuate_FractionalQuantity(t *testing.T) {
	hs := []models.Holding{
		{ID: 1, Symbol: "BTC", Quantity: 0.123456, AverageCost: 40000, Currency: "USD"},
	}
	qs := map[string]quotes.Quote{
		"BTC": {Symbol: "BTC", Price: 50000},
	}

	values := Valuate(hs, qs, noConvert)

	// 0.123456 * 40000 = 4938.24, 0.123456 * 50000 = 6172.80
	if values[0].CostBasis != 4938.24 {
		t.Errorf("CostBasis = %v, want 4938.24", values[0].CostBasis)
	}
	if values[0].MarketValue != 6172.80 {
		t.Errorf("MarketValue = %v, want 6172.80", values[0].MarketValue)
	}
}

func TestSymbols_Distinct(t *testing.T) {
	hs := []models.Holding{
		{Symbol: "AAPL"},
		{Symbol: "MSFT"},
		{Symbol: "AAPL"}, // same symbol, another account
		{Symbol: ""},
	}

	syms := Symbols(hs)

	if len(syms) != 2 {
		t.Fatalf("len(syms) = %d, want 2", len(syms))
	}
	if syms[0] != "AAPL" || syms[1] != "MSFT" {
		t.Errorf("syms = %v, want [AAPL MSFT]", syms)
	}
}
