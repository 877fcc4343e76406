// Package update implements the monthly update wizard, through which a
// department reports on the progress of a strategic action each month.
package update

import (
	"slices"
	"strconv"
	"time"

	"github.com/supplychain-resilience/scr/internal/deadline"
	"github.com/supplychain-resilience/scr/internal/resource"
)

// Status is the lifecycle state of a monthly update.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusSubmitted  Status = "submitted"
)

func (s Status) String() string { return string(s) }

// Label is the human readable form of the status shown on the task list.
func (s Status) Label() string {
	switch s {
	case StatusInProgress:
		return "In progress"
	case StatusSubmitted:
		return "Submitted"
	default:
		return "Not started"
	}
}

// MonthlyUpdate is the record of one reporting month's answers for a
// strategic action.
type MonthlyUpdate struct {
	ID                resource.ID `db:"monthly_update_id"`
	StrategicActionID resource.ID `db:"strategic_action_id"`
	SupplyChainID     resource.ID `db:"supply_chain_id"`
	UserID            resource.ID `db:"user_id"`
	// MonthSlug is the month in which the update was started, e.g. 03-2026.
	MonthSlug string `db:"month_slug"`
	Status    Status `db:"status"`
	Content   string `db:"content"`

	// ChangedTargetCompletionDate and ChangedIsOngoing hold the timing
	// given in the update, which is copied onto the action upon submission.
	ChangedTargetCompletionDate *time.Time `db:"changed_target_completion_date"`
	ChangedIsOngoing            bool       `db:"changed_is_ongoing"`

	DeliveryStatus                string     `db:"delivery_status"`
	ReasonForDelays               string     `db:"reason_for_delays"`
	ReasonForCompletionDateChange string     `db:"reason_for_completion_date_change"`
	CreatedAt                     time.Time  `db:"created_at"`
	SubmittedAt                   *time.Time `db:"submitted_at"`
}

func newMonthlyUpdate(actionID, supplyChainID, userID resource.ID, now time.Time) *MonthlyUpdate {
	return &MonthlyUpdate{
		ID:                resource.NewID(resource.MonthlyUpdateKind),
		StrategicActionID: actionID,
		SupplyChainID:     supplyChainID,
		UserID:            userID,
		MonthSlug:         deadline.MonthSlug(now),
		Status:            StatusInProgress,
		CreatedAt:         now,
	}
}

func (u *MonthlyUpdate) IsSubmitted() bool { return u.Status == StatusSubmitted }

// merge copies the answers of the steps on the path onto the update. Answers
// are assumed to have been validated.
func (u *MonthlyUpdate) merge(answers map[StepID]Answers, path []StepID, today time.Time) {
	for _, step := range path {
		a := answers[step]
		switch step {
		case Info:
			u.Content = a[fieldContent]
		case Timing:
			u.setTiming(a, today)
		case DeliveryStatus:
			u.DeliveryStatus = a[fieldDeliveryStatus]
			switch u.DeliveryStatus {
			case "AMBER":
				u.ReasonForDelays = a[fieldAmberReasonForDelays]
			case "RED":
				u.ReasonForDelays = a[fieldRedReasonForDelays]
			default:
				u.ReasonForDelays = ""
			}
		case RevisedTiming:
			u.setTiming(a, today)
			u.ReasonForCompletionDateChange = a[fieldReasonForDateChange]
		}
	}
	if !slices.Contains(path, RevisedTiming) {
		u.ReasonForCompletionDateChange = ""
		if !slices.Contains(path, Timing) {
			// the existing target date stands
			u.ChangedTargetCompletionDate = nil
			u.ChangedIsOngoing = false
		}
	}
}

// setTiming records either a known completion date or one approximated from
// today, or that the action is ongoing.
func (u *MonthlyUpdate) setTiming(a Answers, today time.Time) {
	if a[fieldIsCompletionDateKnown] == yes {
		if date, ok := dateAnswer(a, fieldCompletionDate); ok {
			u.ChangedTargetCompletionDate = &date
			u.ChangedIsOngoing = false
		}
		return
	}
	switch months := a[fieldApproximateTiming]; months {
	case approximateTimingOngoing:
		u.ChangedTargetCompletionDate = nil
		u.ChangedIsOngoing = true
	default:
		n, err := strconv.Atoi(months)
		if err != nil {
			return
		}
		date := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
		u.ChangedTargetCompletionDate = &date
		u.ChangedIsOngoing = false
	}
}
