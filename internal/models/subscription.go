package models

import "time"

// Subscription plan and status values.
const (
	PlanTrial   = "trial"
	PlanMonthly = "monthly"
	PlanYearly  = "yearly"

	SubActive    = "active"
	SubExpired   = "expired"
	SubCancelled = "cancelled"
)

// Subscription tracks a user's access plan. Premium routes require an
// active subscription whose period has not ended.
type Subscription struct {
	ID               uint      `gorm:"primaryKey"`
	UserID           uint      `gorm:"uniqueIndex;not null"`
	Plan             string    `gorm:"size:16;not null"`
	Status           string    `gorm:"size:16;index;not null"`
	CurrentPeriodEnd time.Time `gorm:"index;not null"`
	CreatedAt        time.Time
	UpdatedAt        time.Time

	User User `gorm:"constraint:OnDelete:CASCADE"`
}

// IsActive reports whether the subscription grants access at t.
func (s *Subscription) IsActive(t time.Time) bool {
	return s.Status == SubActive && !s.CurrentPeriodEnd.Before(t)
}
