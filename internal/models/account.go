package models

import "time"

// Account is a named money container owned by one user.
// Deletion is soft: DeletedAt/DeletedBy are set and every read path
// filters the row out. A user must always keep at least one active account.
type Account struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"index;not null"`
	Name      string `gorm:"size:64;not null"`
	Currency  string `gorm:"size:8;default:USD"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time `gorm:"index"`
	DeletedBy *uint

	User User `gorm:"constraint:OnDelete:CASCADE"`
}
