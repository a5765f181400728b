package models

import "time"

// ExchangeRate caches one currency pair from the external FX collaborator.
type ExchangeRate struct {
	ID        uint      `gorm:"primaryKey"`
	Base      string    `gorm:"size:8;uniqueIndex:idx_rates_pair;not null"`
	Target    string    `gorm:"size:8;uniqueIndex:idx_rates_pair;not null"`
	Rate      float64   `gorm:"not null"`
	FetchedAt time.Time `gorm:"index;not null"`
}

// StockPrice caches the last quote seen for a ticker symbol.
type StockPrice struct {
	ID            uint      `gorm:"primaryKey"`
	Symbol        string    `gorm:"size:16;uniqueIndex;not null"`
	Price         float64   `gorm:"type:decimal(12,2);not null"`
	ChangePercent float64   `gorm:"type:decimal(8,4)"`
	Currency      string    `gorm:"size:8;default:USD"`
	FetchedAt     time.Time `gorm:"index;not null"`
}
