package core

import (
	"time"

	"github.com/valter-silva-au/tempo/pkg/models"
)

// dueDateLayout is the on-disk and in-memory form of a due date: a local
// calendar date with no time component.
const dueDateLayout = "2006-01-02"

// ParseDueDate parses a YYYY-MM-DD due date anchored to local midnight.
// Anchoring to time.Local avoids the off-by-one-day shift that UTC parsing
// introduces for users west of Greenwich.
func ParseDueDate(due string) (time.Time, error) {
	return time.ParseInLocation(dueDateLayout, due, time.Local)
}

// NextDueDate advances a due date by one recurrence period. daily adds one
// calendar day, weekly seven, monthly one calendar month with year rollover
// (Dec 15 -> Jan 15). The input is returned unchanged if it does not parse
// or the recurrence kind is unknown.
func NextDueDate(due string, r models.Recurrence) string {
	date, err := ParseDueDate(due)
	if err != nil {
		return due
	}

	switch r {
	case models.RecurDaily:
		date = date.AddDate(0, 0, 1)
	case models.RecurWeekly:
		date = date.AddDate(0, 0, 7)
	case models.RecurMonthly:
		date = date.AddDate(0, 1, 0)
	default:
		return due
	}

	return date.Format(dueDateLayout)
}

// startOfDay returns local midnight of the day containing t.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// endOfDay returns 23:59:59 local of the calendar date, used for overdue
// checks so a task due today is not overdue until the day is over.
func endOfDay(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 23, 59, 59, 0, date.Location())
}
