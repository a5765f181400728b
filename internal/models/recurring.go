package models

import "time"

// RecurringTemplate generates one transaction per month while active.
// DayOfMonth is normalized at apply time to the last valid day of short
// months (day 31 in February becomes Feb 28/29).
type RecurringTemplate struct {
	ID         uint       `gorm:"primaryKey"`
	UserID     uint       `gorm:"index;not null"`
	AccountID  uint       `gorm:"index;not null"`
	CategoryID uint       `gorm:"index;not null"`
	Type       string     `gorm:"size:16;not null"` // income / expense
	Name       string     `gorm:"size:64;not null"`
	Amount     float64    `gorm:"type:decimal(12,2);not null"`
	Currency   string     `gorm:"size:8;default:USD"`
	DayOfMonth int        `gorm:"not null"` // 1..31
	StartMonth time.Time  `gorm:"index;not null"` // first of month, UTC
	EndMonth   *time.Time `gorm:"index"`          // nil = open-ended
	IsActive   bool       `gorm:"default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Account  Account  `gorm:"constraint:OnDelete:CASCADE"`
	Category Category `gorm:"constraint:OnDelete:CASCADE"`
}
