// Package deadline computes the monthly reporting deadline: updates are due
// on the last working day of each month.
package deadline

import (
	"strconv"
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/gb"
)

// Calendar knows which days are working days.
type Calendar struct {
	*cal.BusinessCalendar
}

// NewCalendar returns a calendar of working days in England and Wales.
func NewCalendar() *Calendar {
	c := cal.NewBusinessCalendar()
	c.AddHoliday(gb.Holidays...)
	return &Calendar{BusinessCalendar: c}
}

// LastWorkingDay returns the last working day of the month in which t falls.
func (c *Calendar) LastWorkingDay(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location())
	for !c.IsWorkday(day) {
		day = day.AddDate(0, 0, -1)
	}
	return day
}

// CurrentDeadline is the date by which this month's updates are due.
func (c *Calendar) CurrentDeadline(now time.Time) time.Time {
	return c.LastWorkingDay(now)
}

// PreviousDeadline is the date by which last month's updates were due.
// Updates created after it belong to the current reporting period.
func (c *Calendar) PreviousDeadline(now time.Time) time.Time {
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return c.LastWorkingDay(firstOfMonth.AddDate(0, 0, -1))
}

// PeriodStart is the instant after which updates belong to the reporting
// period containing now: the end of the previous month's deadline.
func (c *Calendar) PeriodStart(now time.Time) time.Time {
	return endOfDay(c.PreviousDeadline(now))
}

// InCurrentPeriod reports whether an update created at created belongs to the
// reporting period containing now.
func (c *Calendar) InCurrentPeriod(created, now time.Time) bool {
	return created.After(c.PeriodStart(now))
}

// MonthSlug identifies an update in URLs by the month in which it was
// started, e.g. 03-2026.
func MonthSlug(t time.Time) string {
	return t.Format("01-2006")
}

// Format renders a deadline the way it appears on pages, e.g. "Friday 27th
// March 2026".
func Format(t time.Time) string {
	return t.Format("Monday") + " " + ordinal(t.Day()) + " " + t.Format("January 2006")
}

func ordinal(day int) string {
	suffix := "th"
	switch {
	case day%100 >= 11 && day%100 <= 13:
	case day%10 == 1:
		suffix = "st"
	case day%10 == 2:
		suffix = "nd"
	case day%10 == 3:
		suffix = "rd"
	}
	return strconv.Itoa(day) + suffix
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999999999, t.Location())
}
