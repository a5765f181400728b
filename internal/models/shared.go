package models

import "time"

// Split types for shared expenses.
const (
	SplitEqual      = "EQUAL"
	SplitPercentage = "PERCENTAGE"
	SplitFixed      = "FIXED"
)

// Participant payment status values.
const (
	ShareStatusPending  = "PENDING"
	ShareStatusPaid     = "PAID"
	ShareStatusDeclined = "DECLINED"
)

// SharedExpense splits one transaction among other users.
// The owner implicitly keeps one share; participants carry theirs.
type SharedExpense struct {
	ID            uint    `gorm:"primaryKey"`
	UserID        uint    `gorm:"index;not null"` // owner
	TransactionID uint    `gorm:"uniqueIndex;not null"`
	SplitType     string  `gorm:"size:16;not null"` // EQUAL / PERCENTAGE / FIXED
	TotalAmount   float64 `gorm:"type:decimal(12,2);not null"`
	Currency      string  `gorm:"size:8;default:USD"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Transaction  Transaction          `gorm:"constraint:OnDelete:CASCADE"`
	Participants []ExpenseParticipant `gorm:"constraint:OnDelete:CASCADE"`
}

// ExpenseParticipant is one person's share of a shared expense.
type ExpenseParticipant struct {
	ID              uint    `gorm:"primaryKey"`
	SharedExpenseID uint    `gorm:"index;not null"`
	UserID          *uint   `gorm:"index"` // nil until the email maps to a registered user
	Email           string  `gorm:"size:128;not null"`
	ShareAmount     float64 `gorm:"type:decimal(12,2);not null"`
	Percentage      float64 `gorm:"type:decimal(5,2)"`
	Status          string  `gorm:"size:16;default:PENDING"` // PENDING / PAID / DECLINED
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
