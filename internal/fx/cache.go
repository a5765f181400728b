// Package fx handles currency conversion against cached exchange rates.
package fx

import (
	"fmt"

	"github.com/avifenesh/expense-track-sub006/internal/models"

	"gorm.io/gorm"
)

// Cache is an in-memory view of the exchange_rates table, loaded once per
// request batch so converting N transactions costs one query instead of N.
type Cache struct {
	rates map[string]float64 // "BASE->TARGET"
}

func pairKey(base, target string) string {
	return base + "->" + target
}

// LoadCache reads every cached rate in a single query.
func LoadCache(db *gorm.DB) (*Cache, error) {
	var rows []models.ExchangeRate
	if err := db.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load exchange rates: %w", err)
	}
	return NewCache(rows), nil
}

// NewCache builds a cache from already-loaded rate rows.
func NewCache(rows []models.ExchangeRate) *Cache {
	rates := make(map[string]float64, len(rows))
	for _, r := range rows {
		rates[pairKey(r.Base, r.Target)] = r.Rate
	}
	return &Cache{rates: rates}
}

// Convert multiplies amount by the cached rate for from->to.
// Same-currency conversion is the identity; an unknown pair returns the
// amount unconverted (graceful degradation, never an error).
func (c *Cache) Convert(amount float64, from, to string) float64 {
	if from == to || from == "" || to == "" {
		return amount
	}
	if rate, ok := c.rates[pairKey(from, to)]; ok {
		return amount * rate
	}
	// a stored inverse pair is just as good
	if rate, ok := c.rates[pairKey(to, from)]; ok && rate != 0 {
		return amount / rate
	}
	return amount
}

// Rate returns the cached rate for a pair, if present.
func (c *Cache) Rate(from, to string) (float64, bool) {
	if from == to {
		return 1, true
	}
	rate, ok := c.rates[pairKey(from, to)]
	return rate, ok
}
