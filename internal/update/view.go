package update

import (
	"fmt"
	"slices"

	"github.com/supplychain-resilience/scr/internal/http/html"
)

type (
	stepPage struct {
		html.SitePage
		*Wizard

		Step   *Step
		Values map[string]string
		Errors *ValidationErrors
	}

	confirmPage struct {
		html.SitePage
		*Wizard

		Step     *Step
		Sections []SummarySection
		Errors   *ValidationErrors
	}

	breadcrumb struct {
		Label   string
		URL     string
		Current bool
	}
)

func (w *Wizard) StepURL(step StepID) string {
	return StepPath(w.SupplyChain.Slug, w.Action.Slug, w.Update.MonthSlug, step)
}

func (w *Wizard) reviewURL() string {
	return ReviewPath(w.SupplyChain.Slug, w.Action.Slug, w.Update.MonthSlug)
}

func (w *Wizard) CancelURL() string {
	return TaskListPath(w.SupplyChain.Slug)
}

func (w *Wizard) onPath(step StepID) bool {
	return slices.Contains(w.Path, step)
}

func (w *Wizard) title(step *Step) string {
	return fmt.Sprintf("%s - %s update – %s – %s", step.Title, w.Action.Name, w.SupplyChain.Name, html.ServiceName)
}

// Breadcrumbs lists the steps on the path, numbered in order.
func (w *Wizard) Breadcrumbs(current StepID) []breadcrumb {
	steps := Steps()
	crumbs := make([]breadcrumb, 0, len(w.Path))
	for i, id := range w.Path {
		j := slices.IndexFunc(steps, func(s *Step) bool { return s.ID == id })
		crumbs = append(crumbs, breadcrumb{
			Label:   fmt.Sprintf("%d. %s", i+1, steps[j].Breadcrumb),
			URL:     w.StepURL(id),
			Current: id == current,
		})
	}
	return crumbs
}

// Children returns the fields revealed by the given choice of the parent
// field.
func (p stepPage) Children(parent *Field, value string) []*Field {
	return p.Step.Schema.Children(parent.Name, value, p.Context)
}

func (p stepPage) Value(name string) string {
	return p.Values[name]
}

func (p stepPage) ErrorFor(field string) string {
	return p.Errors.For(field)
}
