package update

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchema_Validate(t *testing.T) {
	withDate := Context{HasTargetCompletionDate: true}

	tests := []struct {
		name   string
		schema *Schema
		raw    map[string]string
		ctx    Context
		want   Answers
		errors []FieldError
	}{
		{
			name:   "info",
			schema: infoSchema,
			raw:    map[string]string{"content": "  Going well  "},
			want:   Answers{"content": "Going well"},
		},
		{
			name:   "info missing content",
			schema: infoSchema,
			raw:    map[string]string{"content": "   "},
			want:   Answers{},
			errors: []FieldError{{Field: "content", Message: "Enter details of the latest monthly update", Anchor: "content"}},
		},
		{
			name:   "timing unanswered",
			schema: timingSchema,
			raw:    map[string]string{},
			want:   Answers{},
			errors: []FieldError{{Field: "is_completion_date_known", Message: "Select whether there is an expected completion date", Anchor: "is_completion_date_known"}},
		},
		{
			name:   "timing known date",
			schema: timingSchema,
			raw: map[string]string{
				"is_completion_date_known": "yes",
				"completion_date_day":      "14",
				"completion_date_month":    "11",
				"completion_date_year":     "2027",
				"approximate_timing":       "6",
			},
			want: Answers{
				"is_completion_date_known": "yes",
				"completion_date_day":      "14",
				"completion_date_month":    "11",
				"completion_date_year":     "2027",
			},
		},
		{
			name:   "timing known date missing",
			schema: timingSchema,
			raw:    map[string]string{"is_completion_date_known": "yes"},
			want:   Answers{"is_completion_date_known": "yes"},
			errors: []FieldError{{Field: "completion_date", Message: "Enter a date for intended completion", Anchor: "completion_date_day"}},
		},
		{
			name:   "timing impossible date",
			schema: timingSchema,
			raw: map[string]string{
				"is_completion_date_known": "yes",
				"completion_date_day":      "31",
				"completion_date_month":    "2",
				"completion_date_year":     "2027",
			},
			want: Answers{
				"is_completion_date_known": "yes",
				"completion_date_day":      "31",
				"completion_date_month":    "2",
				"completion_date_year":     "2027",
			},
			errors: []FieldError{{Field: "completion_date", Message: "Enter a date for intended completion in the correct format", Anchor: "completion_date_day"}},
		},
		{
			name:   "timing approximate",
			schema: timingSchema,
			raw:    map[string]string{"is_completion_date_known": "no", "approximate_timing": "0", "completion_date_day": "1"},
			want:   Answers{"is_completion_date_known": "no", "approximate_timing": "0"},
		},
		{
			name:   "timing approximate not a choice",
			schema: timingSchema,
			raw:    map[string]string{"is_completion_date_known": "no", "approximate_timing": "18"},
			want:   Answers{"is_completion_date_known": "no", "approximate_timing": "18"},
			errors: []FieldError{{Field: "approximate_timing", Message: "Select an approximate time for completion", Anchor: "approximate_timing"}},
		},
		{
			name:   "delivery status missing",
			schema: deliveryStatusSchema,
			raw:    map[string]string{"red_reason_for_delays": "ignored"},
			want:   Answers{},
			errors: []FieldError{{Field: "delivery_status", Message: "Select the current delivery status", Anchor: "delivery_status"}},
		},
		{
			name:   "green drops reasons",
			schema: deliveryStatusSchema,
			raw:    map[string]string{"delivery_status": "GREEN", "amber_reason_for_delays": "stale"},
			want:   Answers{"delivery_status": "GREEN"},
		},
		{
			name:   "amber without reason",
			schema: deliveryStatusSchema,
			raw:    map[string]string{"delivery_status": "AMBER"},
			want:   Answers{"delivery_status": "AMBER"},
			errors: []FieldError{{Field: "amber_reason_for_delays", Message: "Enter an explanation of the potential risk", Anchor: "amber_reason_for_delays"}},
		},
		{
			name:   "red with date and nothing else",
			schema: deliveryStatusSchema,
			raw:    map[string]string{"delivery_status": "RED"},
			ctx:    withDate,
			want:   Answers{"delivery_status": "RED"},
			errors: []FieldError{
				{Field: "red_reason_for_delays", Message: "Enter an explanation of the issue", Anchor: "red_reason_for_delays"},
				{Field: "will_completion_date_change", Message: "Specify whether the estimated completion date will change", Anchor: "will_completion_date_change"},
			},
		},
		{
			name:   "red without date does not ask about date change",
			schema: deliveryStatusSchema,
			raw:    map[string]string{"delivery_status": "RED", "red_reason_for_delays": "Insolvency", "will_completion_date_change": "yes"},
			want:   Answers{"delivery_status": "RED", "red_reason_for_delays": "Insolvency"},
		},
		{
			name:   "revised timing without reason",
			schema: revisedTimingSchema,
			raw:    map[string]string{"is_completion_date_known": "no", "approximate_timing": "24"},
			ctx:    withDate,
			want:   Answers{"is_completion_date_known": "no", "approximate_timing": "24"},
			errors: []FieldError{{Field: "reason_for_completion_date_change", Message: "Enter a reason for the date change", Anchor: "reason_for_completion_date_change"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, verrs := tt.schema.Validate(tt.raw, tt.ctx)
			assert.Equal(t, tt.want, got)
			if tt.errors == nil {
				assert.Nil(t, verrs)
				return
			}
			require.NotNil(t, verrs)
			assert.Equal(t, tt.errors, verrs.Errors)
		})
	}
}

func TestSchema_ActiveFields(t *testing.T) {
	names := func(fields []*Field) (names []string) {
		for _, f := range fields {
			names = append(names, f.Name)
		}
		return
	}

	assert.Equal(t,
		[]string{"delivery_status", "red_reason_for_delays", "will_completion_date_change"},
		names(deliveryStatusSchema.ActiveFields(map[string]string{"delivery_status": "RED"}, Context{HasTargetCompletionDate: true})),
	)
	assert.Equal(t,
		[]string{"delivery_status", "red_reason_for_delays"},
		names(deliveryStatusSchema.ActiveFields(map[string]string{"delivery_status": "RED"}, Context{})),
	)
	assert.Equal(t,
		[]string{"is_completion_date_known"},
		names(timingSchema.ActiveFields(map[string]string{}, Context{})),
	)
}

func TestValidationErrors_For(t *testing.T) {
	verrs := &ValidationErrors{Errors: []FieldError{{Field: "content", Message: "Enter details"}}}
	assert.Equal(t, "Enter details", verrs.For("content"))
	assert.Equal(t, "", verrs.For("delivery_status"))

	var none *ValidationErrors
	assert.Equal(t, "", none.For("content"))
}

func TestParseDate(t *testing.T) {
	_, ok := parseDate("29", "2", "2028")
	assert.True(t, ok)

	_, ok = parseDate("29", "2", "2027")
	assert.False(t, ok)

	_, ok = parseDate("1", "13", "2027")
	assert.False(t, ok)

	_, ok = parseDate("1", "1", "27")
	assert.False(t, ok)

	_, ok = parseDate("first", "1", "2027")
	assert.False(t, ok)
}
