package update

import (
	"context"
	"slices"

	"github.com/supplychain-resilience/scr/internal/resource"
)

type (
	// SummarySection lists the answers given to a step on the confirm page.
	SummarySection struct {
		Step  StepID
		Title string
		Rows  []SummaryRow
	}

	SummaryRow struct {
		Label string
		Value string
		// Markdown renders the value as markdown.
		Markdown bool
	}
)

// Summary lists the answers of each answered step on the update's path.
// Answers to steps no longer on the path are never included.
func (s *Service) Summary(ctx context.Context, updateID resource.ID) ([]SummarySection, error) {
	update, err := s.db.getUpdate(ctx, updateID)
	if err != nil {
		return nil, err
	}
	action, err := s.supplyChains.GetStrategicActionByID(ctx, update.StrategicActionID)
	if err != nil {
		return nil, err
	}
	answers, err := s.db.allAnswers(ctx, updateID)
	if err != nil {
		return nil, err
	}
	return s.summarize(answers, contextFor(action)), nil
}

func (s *Service) summarize(answers map[StepID]Answers, wctx Context) []SummarySection {
	var sections []SummarySection
	for _, id := range s.Path(answers, wctx) {
		step, _ := s.Step(id)
		a, ok := answers[id]
		if !ok || step.Schema == nil {
			continue
		}
		section := SummarySection{Step: id, Title: step.Breadcrumb}
		for _, f := range step.Schema.ActiveFields(a, wctx) {
			section.Rows = append(section.Rows, SummaryRow{
				Label: f.Label,
				Value: f.display(a),
			})
		}
		sections = append(sections, section)
	}
	return sections
}

// display renders the answer to a field for reading.
func (f *Field) display(a Answers) string {
	switch f.Kind {
	case ChoiceField:
		i := slices.IndexFunc(f.Choices, func(c Choice) bool { return c.Value == a[f.Name] })
		if i < 0 {
			return ""
		}
		return f.Choices[i].Label
	case DateField:
		if date, ok := dateAnswer(a, f.Name); ok {
			return date.Format("2 January 2006")
		}
		return ""
	default:
		return a[f.Name]
	}
}

// reviewRows lists the merged answers of a submitted update.
func reviewRows(u *MonthlyUpdate) []SummaryRow {
	rows := []SummaryRow{
		{Label: "Latest monthly update", Value: u.Content, Markdown: true},
		{Label: "Current delivery status", Value: deliveryStatusLabel(u.DeliveryStatus)},
	}
	if u.ReasonForDelays != "" {
		rows = append(rows, SummaryRow{Label: "Reason for delays", Value: u.ReasonForDelays})
	}
	switch {
	case u.ChangedIsOngoing:
		rows = append(rows, SummaryRow{Label: "Expected completion date", Value: "Ongoing"})
	case u.ChangedTargetCompletionDate != nil:
		rows = append(rows, SummaryRow{
			Label: "Expected completion date",
			Value: u.ChangedTargetCompletionDate.Format("2 January 2006"),
		})
	}
	if u.ReasonForCompletionDateChange != "" {
		rows = append(rows, SummaryRow{Label: "Reason for the date change", Value: u.ReasonForCompletionDateChange})
	}
	return rows
}

func deliveryStatusLabel(status string) string {
	field, _ := deliveryStatusSchema.Field(fieldDeliveryStatus)
	return field.display(Answers{fieldDeliveryStatus: status})
}
