package models

import "time"

// Budget is the planned amount for one (account, category, month).
// The composite key is unique; writes go through an upsert.
type Budget struct {
	ID         uint      `gorm:"primaryKey"`
	UserID     uint      `gorm:"index;not null"`
	AccountID  uint      `gorm:"uniqueIndex:idx_budgets_account_category_month;not null"`
	CategoryID uint      `gorm:"uniqueIndex:idx_budgets_account_category_month;not null"`
	Month      time.Time `gorm:"uniqueIndex:idx_budgets_account_category_month;index;not null"` // first of month, UTC
	Planned    float64   `gorm:"type:decimal(12,2);not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Account  Account  `gorm:"constraint:OnDelete:CASCADE"`
	Category Category `gorm:"constraint:OnDelete:CASCADE"`
}
