package models

import "time"

// Category types.
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// Category represents income/expense classification.
// Unique per (user, name, type); IsArchived disables it without breaking
// references from existing transactions.
type Category struct {
	ID         uint   `gorm:"primaryKey"`
	UserID     uint   `gorm:"index;uniqueIndex:idx_categories_user_name_type;not null"`
	Name       string `gorm:"size:64;uniqueIndex:idx_categories_user_name_type;not null"`
	Type       string `gorm:"size:16;uniqueIndex:idx_categories_user_name_type;index;not null"` // income / expense
	IsArchived bool   `gorm:"default:false"`
	IsHolding  bool   `gorm:"default:false"` // investment-tracking category
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
