package models

import "time"

// Holding is an investment position per (account, category): symbol,
// quantity at 6-decimal precision, average cost at 2.
type Holding struct {
	ID          uint      `gorm:"primaryKey"`
	UserID      uint      `gorm:"index;not null"`
	AccountID   uint      `gorm:"uniqueIndex:idx_holdings_account_symbol;not null"`
	CategoryID  uint      `gorm:"index;not null"`
	Symbol      string    `gorm:"size:16;uniqueIndex:idx_holdings_account_symbol;not null"`
	Quantity    float64   `gorm:"type:decimal(18,6);not null"`
	AverageCost float64   `gorm:"type:decimal(12,2);not null"`
	Currency    string    `gorm:"size:8;default:USD"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Account  Account  `gorm:"constraint:OnDelete:CASCADE"`
	Category Category `gorm:"constraint:OnDelete:CASCADE"`
}
