// Package recurring selects and dates monthly template occurrences.
package recurring

import (
	"time"

	"github.com/avifenesh/expense-track-sub006/internal/models"
)

// DaysIn returns the number of days in a month.
func DaysIn(year int, month time.Month) int {
	// day 0 of the next month is the last day of this one
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// NormalizeDay clamps a template's day-of-month to the target month:
// day 31 in February becomes 28 (29 in a leap year).
func NormalizeDay(day int, month time.Time) int {
	if day < 1 {
		return 1
	}
	if max := DaysIn(month.Year(), month.Month()); day > max {
		return max
	}
	return day
}

// OccurrenceDate returns the concrete transaction date for a template in
// the target month.
func OccurrenceDate(dayOfMonth int, month time.Time) time.Time {
	day := NormalizeDay(dayOfMonth, month)
	return time.Date(month.Year(), month.Month(), day, 0, 0, 0, 0, time.UTC)
}

// Due filters templates down to those that should run in the target month:
// active, started on or before it, and not yet ended.
func Due(templates []models.RecurringTemplate, month time.Time) []models.RecurringTemplate {
	var due []models.RecurringTemplate
	for _, tpl := range templates {
		if !tpl.IsActive {
			continue
		}
		if tpl.StartMonth.After(month) {
			continue
		}
		if tpl.EndMonth != nil && tpl.EndMonth.Before(month) {
			continue
		}
		due = append(due, tpl)
	}
	return due
}
