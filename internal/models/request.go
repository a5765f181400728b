package models

import "time"

// Transaction request status values.
const (
	RequestPending  = "PENDING"
	RequestApproved = "APPROVED"
	RequestDeclined = "DECLINED"
)

// TransactionRequest is a pending transfer request from one user to another.
// Approval creates the backing Transaction atomically: the row is re-read
// inside the same database transaction before its status flips, so two
// concurrent approvals cannot both create a transaction.
type TransactionRequest struct {
	ID         uint    `gorm:"primaryKey"`
	FromUserID uint    `gorm:"index;not null"`
	ToUserID   uint    `gorm:"index;not null"`
	AccountID  uint    `gorm:"not null"` // target account of the receiving user
	CategoryID uint    `gorm:"not null"`
	Type       string  `gorm:"size:16;not null"`
	Amount     float64 `gorm:"type:decimal(12,2);not null"`
	Currency   string  `gorm:"size:8;default:USD"`
	Note       string  `gorm:"size:512"`
	Status     string  `gorm:"size:16;index;default:PENDING"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
