package update

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	withDate := Context{HasTargetCompletionDate: true}
	withoutDate := Context{}

	t.Run("steps for action without date", func(t *testing.T) {
		assert.Equal(t, []StepID{Info, Timing, DeliveryStatus, Confirm}, r.StepsFor(withoutDate))
	})

	t.Run("steps for action with date", func(t *testing.T) {
		assert.Equal(t, []StepID{Info, DeliveryStatus, Confirm}, r.StepsFor(withDate))
	})

	tests := []struct {
		name    string
		current StepID
		answers map[StepID]Answers
		ctx     Context
		want    StepID
	}{
		{"info without date", Info, nil, withoutDate, Timing},
		{"info with date", Info, nil, withDate, DeliveryStatus},
		{"timing", Timing, nil, withoutDate, DeliveryStatus},
		{
			"red and date will change",
			DeliveryStatus,
			map[StepID]Answers{DeliveryStatus: {"delivery_status": "RED", "will_completion_date_change": "yes"}},
			withDate,
			RevisedTiming,
		},
		{
			"red and date will not change",
			DeliveryStatus,
			map[StepID]Answers{DeliveryStatus: {"delivery_status": "RED", "will_completion_date_change": "no"}},
			withDate,
			Confirm,
		},
		{
			"amber",
			DeliveryStatus,
			map[StepID]Answers{DeliveryStatus: {"delivery_status": "AMBER"}},
			withDate,
			Confirm,
		},
		{
			"red without date",
			DeliveryStatus,
			map[StepID]Answers{DeliveryStatus: {"delivery_status": "RED", "will_completion_date_change": "yes"}},
			withoutDate,
			Confirm,
		},
		{
			"revised timing",
			RevisedTiming,
			map[StepID]Answers{DeliveryStatus: {"delivery_status": "RED", "will_completion_date_change": "yes"}},
			withDate,
			Confirm,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.NextStep(tt.current, tt.answers, tt.ctx)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("no step after confirm", func(t *testing.T) {
		_, ok := r.NextStep(Confirm, nil, withDate)
		assert.False(t, ok)
	})

	t.Run("path includes revised timing", func(t *testing.T) {
		got := r.Path(map[StepID]Answers{
			DeliveryStatus: {"delivery_status": "RED", "will_completion_date_change": "yes"},
		}, withDate)
		assert.Equal(t, []StepID{Info, DeliveryStatus, RevisedTiming, Confirm}, got)
	})

	t.Run("get step", func(t *testing.T) {
		step, ok := r.Step(DeliveryStatus)
		require.True(t, ok)
		assert.Equal(t, "Current delivery status", step.Title)

		_, ok = r.Step("review")
		assert.False(t, ok)
	})
}

func TestNewRegistry_InvalidPredicate(t *testing.T) {
	t.Run("syntax error", func(t *testing.T) {
		_, err := newRegistry([]*Step{{ID: Info, Predicate: "has_target_completion_date &&"}})
		assert.Error(t, err)
	})

	t.Run("unknown variable", func(t *testing.T) {
		_, err := newRegistry([]*Step{{ID: Info, Predicate: "is_red"}})
		assert.Error(t, err)
	})

	t.Run("not bool", func(t *testing.T) {
		_, err := newRegistry([]*Step{{ID: Info, Predicate: `delivery_status + "!"`}})
		assert.ErrorContains(t, err, "must return bool")
	})
}
