package update

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthlyUpdate_Merge(t *testing.T) {
	today := time.Date(2026, 3, 10, 15, 4, 5, 0, time.UTC)

	t.Run("approximate timing", func(t *testing.T) {
		var u MonthlyUpdate
		u.merge(map[StepID]Answers{
			Info:           {"content": "Going well"},
			Timing:         {"is_completion_date_known": "no", "approximate_timing": "6"},
			DeliveryStatus: {"delivery_status": "AMBER", "amber_reason_for_delays": "Shipping costs"},
		}, []StepID{Info, Timing, DeliveryStatus, Confirm}, today)

		assert.Equal(t, "Going well", u.Content)
		assert.Equal(t, "AMBER", u.DeliveryStatus)
		assert.Equal(t, "Shipping costs", u.ReasonForDelays)
		require.NotNil(t, u.ChangedTargetCompletionDate)
		assert.Equal(t, time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC), *u.ChangedTargetCompletionDate)
		assert.False(t, u.ChangedIsOngoing)
	})

	t.Run("ongoing", func(t *testing.T) {
		var u MonthlyUpdate
		u.merge(map[StepID]Answers{
			Timing: {"is_completion_date_known": "no", "approximate_timing": "0"},
		}, []StepID{Info, Timing, DeliveryStatus, Confirm}, today)

		assert.Nil(t, u.ChangedTargetCompletionDate)
		assert.True(t, u.ChangedIsOngoing)
	})

	t.Run("known date", func(t *testing.T) {
		var u MonthlyUpdate
		u.merge(map[StepID]Answers{
			Timing: {
				"is_completion_date_known": "yes",
				"completion_date_day":      "1",
				"completion_date_month":    "12",
				"completion_date_year":     "2026",
			},
		}, []StepID{Info, Timing, DeliveryStatus, Confirm}, today)

		require.NotNil(t, u.ChangedTargetCompletionDate)
		assert.Equal(t, time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC), *u.ChangedTargetCompletionDate)
	})

	t.Run("revised timing", func(t *testing.T) {
		var u MonthlyUpdate
		u.merge(map[StepID]Answers{
			DeliveryStatus: {"delivery_status": "RED", "red_reason_for_delays": "Strikes", "will_completion_date_change": "yes"},
			RevisedTiming:  {"is_completion_date_known": "no", "approximate_timing": "0", "reason_for_completion_date_change": "Rescoped"},
		}, []StepID{Info, DeliveryStatus, RevisedTiming, Confirm}, today)

		assert.Equal(t, "Strikes", u.ReasonForDelays)
		assert.True(t, u.ChangedIsOngoing)
		assert.Equal(t, "Rescoped", u.ReasonForCompletionDateChange)
	})

	t.Run("answers off the path are ignored", func(t *testing.T) {
		u := MonthlyUpdate{ReasonForCompletionDateChange: "stale", ChangedIsOngoing: true}
		u.merge(map[StepID]Answers{
			DeliveryStatus: {"delivery_status": "GREEN"},
			RevisedTiming:  {"is_completion_date_known": "no", "approximate_timing": "0", "reason_for_completion_date_change": "Rescoped"},
		}, []StepID{Info, DeliveryStatus, Confirm}, today)

		assert.Equal(t, "GREEN", u.DeliveryStatus)
		assert.Empty(t, u.ReasonForDelays)
		assert.Empty(t, u.ReasonForCompletionDateChange)
		assert.False(t, u.ChangedIsOngoing)
		assert.Nil(t, u.ChangedTargetCompletionDate)
	})
}

func TestStatus_Label(t *testing.T) {
	assert.Equal(t, "Not started", StatusNotStarted.Label())
	assert.Equal(t, "In progress", StatusInProgress.Label())
	assert.Equal(t, "Submitted", StatusSubmitted.Label())
}
