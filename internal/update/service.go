package update

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/supplychain-resilience/scr/internal"
	"github.com/supplychain-resilience/scr/internal/deadline"
	"github.com/supplychain-resilience/scr/internal/logr"
	"github.com/supplychain-resilience/scr/internal/resource"
	"github.com/supplychain-resilience/scr/internal/sql"
	"github.com/supplychain-resilience/scr/internal/supplychain"
	"github.com/supplychain-resilience/scr/internal/user"
)

type (
	Service struct {
		logr.Logger
		*Registry
		*StateStore

		db           store
		supplyChains supplyChainClient
		calendar     *deadline.Calendar
		clock        internal.Clock
		web          *webHandlers
	}

	Options struct {
		logr.Logger

		// DB is the postgres database. When nil updates are kept in memory.
		*sql.DB
		SupplyChains *supplychain.Service
		Calendar     *deadline.Calendar
		// Clock overrides the current time. Defaults to the system clock.
		Clock internal.Clock
	}

	supplyChainClient interface {
		GetSupplyChain(ctx context.Context, slug string) (*supplychain.SupplyChain, error)
		GetSupplyChainByID(ctx context.Context, id resource.ID) (*supplychain.SupplyChain, error)
		ListSupplyChains(ctx context.Context, departmentID resource.ID) ([]*supplychain.SupplyChain, error)
		GetStrategicAction(ctx context.Context, supplyChainSlug, actionSlug string) (*supplychain.SupplyChain, *supplychain.StrategicAction, error)
		GetStrategicActionByID(ctx context.Context, id resource.ID) (*supplychain.StrategicAction, error)
		ListStrategicActions(ctx context.Context, supplyChainID resource.ID) ([]*supplychain.StrategicAction, error)
		SetActionTiming(ctx context.Context, actionID resource.ID, date *time.Time, ongoing bool) (*supplychain.StrategicAction, error)
		SetLastSubmissionDate(ctx context.Context, supplyChainID resource.ID, date time.Time) error
	}

	// Wizard is an update along with what is needed to render its steps.
	Wizard struct {
		SupplyChain *supplychain.SupplyChain
		Action      *supplychain.StrategicAction
		Update      *MonthlyUpdate
		Context     Context
		Answers     map[StepID]Answers
		// Path is the steps included given the answers so far.
		Path []StepID
	}
)

func NewService(opts Options) (*Service, error) {
	registry, err := NewRegistry()
	if err != nil {
		return nil, err
	}
	svc := Service{
		Logger:       opts.Logger,
		Registry:     registry,
		supplyChains: opts.SupplyChains,
		calendar:     opts.Calendar,
		clock:        opts.Clock,
	}
	if svc.calendar == nil {
		svc.calendar = deadline.NewCalendar()
	}
	if opts.DB != nil {
		svc.db = &pgdb{opts.DB}
	} else {
		svc.db = newMemDB()
	}
	svc.StateStore = &StateStore{db: svc.db}
	svc.web = &webHandlers{
		Logger: opts.Logger,
		svc:    &svc,
	}
	return &svc, nil
}

func (s *Service) AddHandlers(r *mux.Router) {
	s.web.addHandlers(r)
}

func contextFor(action *supplychain.StrategicAction) Context {
	return Context{HasTargetCompletionDate: action.HasTargetCompletionDate()}
}

// Start resumes the update of an action for the current reporting period,
// creating it if it does not yet exist.
func (s *Service) Start(ctx context.Context, supplyChainSlug, actionSlug string) (*MonthlyUpdate, error) {
	chain, action, err := s.supplyChains.GetStrategicAction(ctx, supplyChainSlug, actionSlug)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	since := s.calendar.PeriodStart(now)
	if update, err := s.db.getUpdateSince(ctx, action.ID, since); err == nil {
		s.V(9).Info("resuming monthly update", "id", update.ID, "month", update.MonthSlug)
		return update, nil
	} else if !errors.Is(err, internal.ErrResourceNotFound) {
		return nil, err
	}

	var userID resource.ID
	if u, err := user.UserFromContext(ctx); err == nil {
		userID = u.ID
	}
	update := newMonthlyUpdate(action.ID, chain.ID, userID, now)
	if err := s.db.createUpdate(ctx, update); err != nil {
		if errors.Is(err, internal.ErrResourceAlreadyExists) {
			// lost a race to create it
			return s.db.getUpdateByMonth(ctx, action.ID, update.MonthSlug)
		}
		s.Error(err, "creating monthly update", "action", action.Slug, "month", update.MonthSlug)
		return nil, err
	}
	s.V(0).Info("created monthly update", "id", update.ID, "action", action.Slug, "month", update.MonthSlug)
	return update, nil
}

// GetWizard retrieves the update of an action for the given month, along with
// its answers so far.
func (s *Service) GetWizard(ctx context.Context, supplyChainSlug, actionSlug, monthSlug string) (*Wizard, error) {
	chain, action, err := s.supplyChains.GetStrategicAction(ctx, supplyChainSlug, actionSlug)
	if err != nil {
		return nil, err
	}
	update, err := s.db.getUpdateByMonth(ctx, action.ID, monthSlug)
	if err != nil {
		return nil, err
	}
	answers, err := s.AllAnswers(ctx, update.ID)
	if err != nil {
		return nil, err
	}
	wctx := contextFor(action)
	return &Wizard{
		SupplyChain: chain,
		Action:      action,
		Update:      update,
		Context:     wctx,
		Answers:     answers,
		Path:        s.Path(answers, wctx),
	}, nil
}

// SubmitStep validates and saves the answers to a step, returning the step
// that follows. When the answers are invalid the validation errors are
// returned and nothing is saved. Submitting the confirm step submits the
// update.
func (s *Service) SubmitStep(ctx context.Context, updateID resource.ID, step StepID, raw map[string]string) (StepID, *ValidationErrors, error) {
	if step == Confirm {
		_, err := s.Confirm(ctx, updateID)
		var verrs *ValidationErrors
		if errors.As(err, &verrs) {
			return "", verrs, nil
		}
		return "", nil, err
	}
	update, err := s.db.getUpdate(ctx, updateID)
	if err != nil {
		return "", nil, err
	}
	if update.IsSubmitted() {
		return "", nil, ErrUpdateSubmitted
	}
	action, err := s.supplyChains.GetStrategicActionByID(ctx, update.StrategicActionID)
	if err != nil {
		return "", nil, err
	}
	wctx := contextFor(action)

	all, err := s.db.allAnswers(ctx, updateID)
	if err != nil {
		return "", nil, err
	}
	if !slices.Contains(s.Path(all, wctx), step) {
		return "", nil, fmt.Errorf("%w: %s", ErrStepNotAvailable, step)
	}
	def, _ := s.Step(step)

	answers, verrs := def.Schema.Validate(raw, wctx)
	if verrs != nil {
		stepSubmissionsMetric.WithLabelValues(string(step), resultInvalid).Inc()
		s.V(1).Info("invalid step answers", "update", updateID, "step", step, "errors", len(verrs.Errors))
		return step, verrs, nil
	}

	all[step] = answers
	path := s.Path(all, wctx)
	stale := internal.Diff(slices.Collect(maps.Keys(all)), path)
	err = s.db.tx(ctx, func(ctx context.Context) error {
		if err := s.SaveAnswers(ctx, updateID, step, answers); err != nil {
			return err
		}
		if len(stale) > 0 {
			return s.DeleteAnswers(ctx, updateID, stale...)
		}
		return nil
	})
	if err != nil {
		s.Error(err, "saving step answers", "update", updateID, "step", step)
		return "", nil, err
	}
	stepSubmissionsMetric.WithLabelValues(string(step), resultSaved).Inc()

	next, _ := s.NextStep(step, all, wctx)
	s.V(0).Info("saved step answers", "update", updateID, "step", step, "next", next, "dropped", stale)
	return next, nil, nil
}

// Confirm submits an update, once every step on its path has been answered.
// The update can no longer be changed.
func (s *Service) Confirm(ctx context.Context, updateID resource.ID) (*MonthlyUpdate, error) {
	existing, err := s.db.getUpdate(ctx, updateID)
	if err != nil {
		return nil, err
	}
	if existing.IsSubmitted() {
		return nil, ErrUpdateSubmitted
	}
	action, err := s.supplyChains.GetStrategicActionByID(ctx, existing.StrategicActionID)
	if err != nil {
		return nil, err
	}
	wctx := contextFor(action)
	now := s.clock.Now()

	var update *MonthlyUpdate
	err = s.db.tx(ctx, func(ctx context.Context) (err error) {
		update, err = s.MergeIntoUpdate(ctx, updateID, func(update *MonthlyUpdate, answers map[StepID]Answers) error {
			if update.IsSubmitted() {
				return ErrUpdateSubmitted
			}
			path := s.Path(answers, wctx)
			if verrs := s.checkComplete(path, answers, wctx); verrs != nil {
				return verrs
			}
			update.merge(answers, path, now)
			if u, err := user.UserFromContext(ctx); err == nil {
				update.UserID = u.ID
			}
			update.Status = StatusSubmitted
			update.SubmittedAt = new(now)
			return nil
		})
		if err != nil {
			return err
		}
		if update.ChangedIsOngoing || update.ChangedTargetCompletionDate != nil {
			if _, err := s.supplyChains.SetActionTiming(ctx, action.ID, update.ChangedTargetCompletionDate, update.ChangedIsOngoing); err != nil {
				return err
			}
		}
		return s.markSupplyChainIfComplete(ctx, update.SupplyChainID, now)
	})
	if err != nil {
		var verrs *ValidationErrors
		if !errors.As(err, &verrs) && !errors.Is(err, ErrUpdateSubmitted) {
			s.Error(err, "submitting monthly update", "id", updateID)
		}
		return nil, err
	}
	updatesSubmittedMetric.Inc()
	s.V(0).Info("submitted monthly update", "id", update.ID, "action", action.Slug, "month", update.MonthSlug)
	return update, nil
}

// checkComplete validates the saved answers of every step on the path,
// returning an error for each step that is incomplete.
func (s *Service) checkComplete(path []StepID, answers map[StepID]Answers, wctx Context) *ValidationErrors {
	var errs ValidationErrors
	for _, id := range path {
		step, _ := s.Step(id)
		if step.Schema == nil {
			continue
		}
		if _, verrs := step.Schema.Validate(answers[id], wctx); verrs != nil {
			errs.Errors = append(errs.Errors, FieldError{
				Field:   string(id),
				Message: fmt.Sprintf("Complete the %s section", strings.ToLower(step.Breadcrumb)),
			})
		}
	}
	if len(errs.Errors) > 0 {
		return &errs
	}
	return nil
}

// markSupplyChainIfComplete records the submission date on the supply chain
// once every active action has a submitted update for the current period.
func (s *Service) markSupplyChainIfComplete(ctx context.Context, supplyChainID resource.ID, now time.Time) error {
	complete, err := s.allSubmitted(ctx, supplyChainID, now)
	if err != nil || !complete {
		return err
	}
	return s.supplyChains.SetLastSubmissionDate(ctx, supplyChainID, now)
}

// allSubmitted reports whether every active action of the supply chain has a
// submitted update for the reporting period containing now.
func (s *Service) allSubmitted(ctx context.Context, supplyChainID resource.ID, now time.Time) (bool, error) {
	actions, err := s.supplyChains.ListStrategicActions(ctx, supplyChainID)
	if err != nil {
		return false, err
	}
	updates, err := s.db.listUpdatesSince(ctx, supplyChainID, s.calendar.PeriodStart(now))
	if err != nil {
		return false, err
	}
	submitted := make(map[resource.ID]bool, len(updates))
	for _, u := range updates {
		submitted[u.StrategicActionID] = u.IsSubmitted()
	}
	for _, action := range actions {
		if !submitted[action.ID] {
			return false, nil
		}
	}
	return true, nil
}

// Get retrieves an update by ID.
func (s *Service) Get(ctx context.Context, updateID resource.ID) (*MonthlyUpdate, error) {
	update, err := s.db.getUpdate(ctx, updateID)
	if err != nil {
		s.V(9).Info("retrieving monthly update", "id", updateID, "error", err.Error())
		return nil, err
	}
	s.V(9).Info("retrieved monthly update", "id", updateID)
	return update, nil
}
