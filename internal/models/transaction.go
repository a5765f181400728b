package models

import "time"

// Transaction is a dated monetary event tied to one account and one category.
// Amount is stored rounded to cents in the account currency; the original
// currency/amount pair is kept as entered. Month is derived (first of the
// month, UTC) for grouping. Note is stored AES-encrypted (base64).
type Transaction struct {
	ID                  uint      `gorm:"primaryKey"`
	UserID              uint      `gorm:"index;not null"`
	AccountID           uint      `gorm:"index;not null"`
	CategoryID          uint      `gorm:"index;not null"`
	Type                string    `gorm:"size:16;index;not null"` // income / expense
	Amount              float64   `gorm:"type:decimal(12,2);not null"`
	Currency            string    `gorm:"size:8;default:USD"`
	OriginalAmount      float64   `gorm:"type:decimal(12,2)"`
	OriginalCurrency    string    `gorm:"size:8"`
	Note                string    `gorm:"size:512"`
	OccurredAt          time.Time `gorm:"index;not null"`
	Month               time.Time `gorm:"index;not null"` // first of month, UTC
	IsRecurring         bool      `gorm:"default:false"`
	RecurringTemplateID *uint     `gorm:"index"`
	CreatedAt           time.Time
	UpdatedAt           time.Time

	Account  Account  `gorm:"constraint:OnDelete:CASCADE"`
	Category Category `gorm:"constraint:OnDelete:SET NULL"`
}

// MonthStart truncates t to the first of its month in UTC.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
