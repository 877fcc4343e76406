package update

import (
	"slices"
	"strconv"
	"strings"
	"time"
)

// FieldKind determines how a field is rendered and validated.
type FieldKind int

const (
	TextField FieldKind = iota
	ChoiceField
	// DateField is submitted as three inputs, <name>_day, <name>_month and
	// <name>_year.
	DateField
)

const (
	yes = "yes"
	no  = "no"

	fieldContent                  = "content"
	fieldIsCompletionDateKnown    = "is_completion_date_known"
	fieldCompletionDate           = "completion_date"
	fieldApproximateTiming        = "approximate_timing"
	fieldDeliveryStatus           = "delivery_status"
	fieldAmberReasonForDelays     = "amber_reason_for_delays"
	fieldRedReasonForDelays       = "red_reason_for_delays"
	fieldWillCompletionDateChange = "will_completion_date_change"
	fieldReasonForDateChange      = "reason_for_completion_date_change"

	// approximateTimingOngoing is the approximate timing choice for an action
	// with no end.
	approximateTimingOngoing = "0"
)

type (
	Choice struct {
		Value string
		Label string
		Hint  string
	}

	// Field is a form field belonging to a step.
	Field struct {
		Name    string
		Label   string
		Hint    string
		Kind    FieldKind
		Choices []Choice
		// Required is the message shown when an active field is left empty.
		Required string
		// Invalid is the message shown when a date is malformed.
		Invalid string
		// Parent names the choice field that reveals this field. The field
		// is only active when the parent's value is one of ParentValues.
		Parent       string
		ParentValues []string
		// RequiresTargetDate restricts the field to actions with a target
		// completion date.
		RequiresTargetDate bool
	}

	// Schema declares the fields of a step.
	Schema struct {
		Fields []*Field
	}
)

var yesNo = []Choice{{Value: yes, Label: "Yes"}, {Value: no, Label: "No"}}

var infoSchema = &Schema{Fields: []*Field{
	{
		Name:     fieldContent,
		Label:    "Latest monthly update",
		Hint:     "Describe the progress made on this action since the last update",
		Kind:     TextField,
		Required: "Enter details of the latest monthly update",
	},
}}

var timingSchema = &Schema{Fields: timingFields()}

var revisedTimingSchema = &Schema{Fields: append(timingFields(), &Field{
	Name:     fieldReasonForDateChange,
	Label:    "Reason for the date change",
	Kind:     TextField,
	Required: "Enter a reason for the date change",
})}

var deliveryStatusSchema = &Schema{Fields: []*Field{
	{
		Name:  fieldDeliveryStatus,
		Label: "Current delivery status",
		Kind:  ChoiceField,
		Choices: []Choice{
			{
				Value: "RED",
				Label: "Red",
				Hint:  "There is an issue with delivery of an action. This will require escalation and further support. There is a potential risk to the expected completion date.",
			},
			{Value: "AMBER", Label: "Amber", Hint: "There's a potential risk to delivery that needs monitoring."},
			{Value: "GREEN", Label: "Green", Hint: "Delivery is on track with no issues"},
		},
		Required: "Select the current delivery status",
	},
	{
		Name:         fieldAmberReasonForDelays,
		Label:        "Explain potential risk",
		Kind:         TextField,
		Required:     "Enter an explanation of the potential risk",
		Parent:       fieldDeliveryStatus,
		ParentValues: []string{"AMBER"},
	},
	{
		Name:         fieldRedReasonForDelays,
		Label:        "Explain issue",
		Kind:         TextField,
		Required:     "Enter an explanation of the issue",
		Parent:       fieldDeliveryStatus,
		ParentValues: []string{"RED"},
	},
	{
		Name:               fieldWillCompletionDateChange,
		Label:              "Will the estimated completion date change?",
		Kind:               ChoiceField,
		Choices:            yesNo,
		Required:           "Specify whether the estimated completion date will change",
		Parent:             fieldDeliveryStatus,
		ParentValues:       []string{"RED"},
		RequiresTargetDate: true,
	},
}}

func timingFields() []*Field {
	return []*Field{
		{
			Name:     fieldIsCompletionDateKnown,
			Label:    "Is there an expected completion date?",
			Kind:     ChoiceField,
			Choices:  yesNo,
			Required: "Select whether there is an expected completion date",
		},
		{
			Name:         fieldCompletionDate,
			Label:        "Date for intended completion",
			Hint:         "For example 14 11 2021",
			Kind:         DateField,
			Required:     "Enter a date for intended completion",
			Invalid:      "Enter a date for intended completion in the correct format",
			Parent:       fieldIsCompletionDateKnown,
			ParentValues: []string{yes},
		},
		{
			Name:  fieldApproximateTiming,
			Label: "What is the approximate time for completion?",
			Kind:  ChoiceField,
			Choices: []Choice{
				{Value: "3", Label: "3 months"},
				{Value: "6", Label: "6 months"},
				{Value: "12", Label: "1 year"},
				{Value: "24", Label: "2 years"},
				{Value: approximateTimingOngoing, Label: "Ongoing"},
			},
			Required:     "Select an approximate time for completion",
			Parent:       fieldIsCompletionDateKnown,
			ParentValues: []string{no},
		},
	}
}

// Field retrieves a field by name.
func (s *Schema) Field(name string) (*Field, bool) {
	i := slices.IndexFunc(s.Fields, func(f *Field) bool { return f.Name == name })
	if i < 0 {
		return nil, false
	}
	return s.Fields[i], true
}

// TopLevel returns the fields that have no parent.
func (s *Schema) TopLevel() []*Field {
	var fields []*Field
	for _, f := range s.Fields {
		if f.Parent == "" {
			fields = append(fields, f)
		}
	}
	return fields
}

// Children returns the fields revealed by the given value of the parent field.
func (s *Schema) Children(parent, value string, ctx Context) []*Field {
	var fields []*Field
	for _, f := range s.Fields {
		if f.Parent == parent && slices.Contains(f.ParentValues, value) && f.applies(ctx) {
			fields = append(fields, f)
		}
	}
	return fields
}

// ActiveFields returns the fields that apply given the values entered so far,
// i.e. top-level fields and those revealed by the current value of their
// parent.
func (s *Schema) ActiveFields(values map[string]string, ctx Context) []*Field {
	var active []*Field
	for _, f := range s.Fields {
		if s.isActive(f, values, ctx) {
			active = append(active, f)
		}
	}
	return active
}

func (s *Schema) isActive(f *Field, values map[string]string, ctx Context) bool {
	if !f.applies(ctx) {
		return false
	}
	if f.Parent == "" {
		return true
	}
	parent, ok := s.Field(f.Parent)
	if !ok || !s.isActive(parent, values, ctx) {
		return false
	}
	return slices.Contains(f.ParentValues, strings.TrimSpace(values[f.Parent]))
}

func (f *Field) applies(ctx Context) bool {
	return !f.RequiresTargetDate || ctx.HasTargetCompletionDate
}

// Inputs returns the names of the form inputs belonging to the field.
func (f *Field) Inputs() []string {
	if f.Kind == DateField {
		return []string{f.Name + "_day", f.Name + "_month", f.Name + "_year"}
	}
	return []string{f.Name}
}

func (f *Field) IsChoice() bool { return f.Kind == ChoiceField }
func (f *Field) IsDate() bool   { return f.Kind == DateField }

// DateInput is one of the three inputs of a date field.
type DateInput struct {
	Name  string
	Label string
	Width int
}

func (f *Field) DateInputs() []DateInput {
	inputs := f.Inputs()
	return []DateInput{
		{Name: inputs[0], Label: "Day", Width: 2},
		{Name: inputs[1], Label: "Month", Width: 2},
		{Name: inputs[2], Label: "Year", Width: 4},
	}
}

// Anchor is the ID of the first input of the field.
func (f *Field) Anchor() string {
	return f.Inputs()[0]
}

// Validate checks the raw form values against the schema. Values of active
// fields are returned trimmed; values of inactive fields are discarded.
func (s *Schema) Validate(raw map[string]string, ctx Context) (Answers, *ValidationErrors) {
	var (
		answers = make(Answers)
		errs    ValidationErrors
	)
	for _, f := range s.ActiveFields(raw, ctx) {
		for _, input := range f.Inputs() {
			if v := strings.TrimSpace(raw[input]); v != "" {
				answers[input] = v
			}
		}
		if msg := f.validate(answers); msg != "" {
			errs.add(f, msg)
		}
	}
	if len(errs.Errors) > 0 {
		return answers, &errs
	}
	return answers, nil
}

// validate returns an error message, or an empty string if the field is valid.
func (f *Field) validate(answers Answers) string {
	switch f.Kind {
	case ChoiceField:
		v := answers[f.Name]
		if !slices.ContainsFunc(f.Choices, func(c Choice) bool { return c.Value == v }) {
			return f.Required
		}
	case DateField:
		day, month, year := answers[f.Name+"_day"], answers[f.Name+"_month"], answers[f.Name+"_year"]
		if day == "" && month == "" && year == "" {
			return f.Required
		}
		if _, ok := parseDate(day, month, year); !ok {
			return f.Invalid
		}
	default:
		if answers[f.Name] == "" {
			return f.Required
		}
	}
	return ""
}

// parseDate parses the three parts of a date input, which must together form
// a real calendar date.
func parseDate(day, month, year string) (time.Time, bool) {
	d, err := strconv.Atoi(day)
	if err != nil {
		return time.Time{}, false
	}
	m, err := strconv.Atoi(month)
	if err != nil {
		return time.Time{}, false
	}
	y, err := strconv.Atoi(year)
	if err != nil || len(year) != 4 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d || int(t.Month()) != m || t.Year() != y {
		return time.Time{}, false
	}
	return t, true
}

// dateAnswer retrieves the date held in the answers for a date field.
func dateAnswer(answers Answers, name string) (time.Time, bool) {
	return parseDate(answers[name+"_day"], answers[name+"_month"], answers[name+"_year"])
}
