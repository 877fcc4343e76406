package update

import (
	"fmt"
	"slices"

	"github.com/google/cel-go/cel"
)

// StepID identifies a step of the monthly update wizard. It doubles as the
// step's URL path segment.
type StepID string

const (
	Info           StepID = "info"
	Timing         StepID = "timing"
	DeliveryStatus StepID = "delivery-status"
	RevisedTiming  StepID = "revised-timing"
	Confirm        StepID = "confirm"
)

type (
	// Answers are the normalised field values submitted for a single step.
	Answers map[string]string

	// Context is what is known about an update before any step is answered.
	Context struct {
		HasTargetCompletionDate bool
	}

	// Step is a page of the wizard.
	Step struct {
		ID         StepID
		Title      string
		Breadcrumb string
		// Predicate is a CEL expression deciding whether the step is on the
		// path. See predicateEnv for the variables available.
		Predicate string
		Schema    *Schema

		program cel.Program
	}

	// Registry is the ordered set of wizard steps.
	Registry struct {
		steps []*Step
	}
)

func (s *Step) String() string { return string(s.ID) }

// Steps returns the wizard steps in order.
func Steps() []*Step {
	return []*Step{
		{
			ID:         Info,
			Title:      "Update information",
			Breadcrumb: "Update information",
			Predicate:  "true",
			Schema:     infoSchema,
		},
		{
			ID:         Timing,
			Title:      "Expected completion date",
			Breadcrumb: "Timing",
			Predicate:  "!has_target_completion_date",
			Schema:     timingSchema,
		},
		{
			ID:         DeliveryStatus,
			Title:      "Current delivery status",
			Breadcrumb: "Action status",
			Predicate:  "true",
			Schema:     deliveryStatusSchema,
		},
		{
			ID:         RevisedTiming,
			Title:      "Revised expected completion date",
			Breadcrumb: "Revised timing",
			Predicate:  `has_target_completion_date && delivery_status == "RED" && date_will_change`,
			Schema:     revisedTimingSchema,
		},
		{
			ID:         Confirm,
			Title:      "Check your answers",
			Breadcrumb: "Confirm",
			Predicate:  "true",
		},
	}
}

func predicateEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("has_target_completion_date", cel.BoolType),
		cel.Variable("delivery_status", cel.StringType),
		cel.Variable("date_will_change", cel.BoolType),
	)
}

// NewRegistry constructs a registry of the wizard steps, compiling each
// step's predicate.
func NewRegistry() (*Registry, error) {
	return newRegistry(Steps())
}

func newRegistry(steps []*Step) (*Registry, error) {
	env, err := predicateEnv()
	if err != nil {
		return nil, fmt.Errorf("creating predicate environment: %w", err)
	}
	for _, step := range steps {
		ast, iss := env.Compile(step.Predicate)
		if iss.Err() != nil {
			return nil, fmt.Errorf("compiling predicate for step %s: %w", step.ID, iss.Err())
		}
		if ast.OutputType() != cel.BoolType {
			return nil, fmt.Errorf("predicate for step %s must return bool, got %s", step.ID, ast.OutputType())
		}
		step.program, err = env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("creating program for step %s: %w", step.ID, err)
		}
	}
	return &Registry{steps: steps}, nil
}

// Step retrieves a step by its ID.
func (r *Registry) Step(id StepID) (*Step, bool) {
	i := slices.IndexFunc(r.steps, func(s *Step) bool { return s.ID == id })
	if i < 0 {
		return nil, false
	}
	return r.steps[i], true
}

// StepsFor returns the path known before any answers are given.
func (r *Registry) StepsFor(ctx Context) []StepID {
	return r.Path(nil, ctx)
}

// Path returns every step included given the answers so far.
func (r *Registry) Path(answers map[StepID]Answers, ctx Context) []StepID {
	vars := predicateVars(answers, ctx)
	var path []StepID
	for _, step := range r.steps {
		if step.included(vars) {
			path = append(path, step.ID)
		}
	}
	return path
}

// NextStep returns the first included step after current. False is returned
// when current is the last step.
func (r *Registry) NextStep(current StepID, answers map[StepID]Answers, ctx Context) (StepID, bool) {
	path := r.Path(answers, ctx)
	i := slices.Index(path, current)
	if i < 0 || i == len(path)-1 {
		return "", false
	}
	return path[i+1], true
}

func (s *Step) included(vars map[string]any) bool {
	out, _, err := s.program.Eval(vars)
	if err != nil {
		return false
	}
	included, ok := out.Value().(bool)
	return ok && included
}

func predicateVars(answers map[StepID]Answers, ctx Context) map[string]any {
	status := answers[DeliveryStatus]
	return map[string]any{
		"has_target_completion_date": ctx.HasTargetCompletionDate,
		"delivery_status":            status[fieldDeliveryStatus],
		"date_will_change":           status[fieldWillCompletionDateChange] == yes,
	}
}
