// Package supplychain manages supply chains and the strategic actions that
// strengthen them.
package supplychain

import (
	"strings"
	"time"

	"github.com/supplychain-resilience/scr/internal"
	"github.com/supplychain-resilience/scr/internal/resource"
)

type (
	// SupplyChain is a supply chain owned by a government department.
	SupplyChain struct {
		ID           resource.ID `db:"supply_chain_id"`
		Slug         string      `db:"slug"`
		Name         string      `db:"name"`
		DepartmentID resource.ID `db:"department_id"`
		ContactName  string      `db:"contact_name"`
		ContactEmail string      `db:"contact_email"`
		// LastSubmissionDate is the date on which the updates of every
		// active strategic action were last all submitted.
		LastSubmissionDate *time.Time `db:"last_submission_date"`
		IsArchived         bool       `db:"is_archived"`
		CreatedAt          time.Time  `db:"created_at"`
	}

	// StrategicAction is a tracked initiative within a supply chain requiring
	// a monthly update.
	StrategicAction struct {
		ID            resource.ID `db:"strategic_action_id"`
		SupplyChainID resource.ID `db:"supply_chain_id"`
		Slug          string      `db:"slug"`
		Name          string      `db:"name"`
		Description   string      `db:"description"`
		// TargetCompletionDate is nil when no completion date has been set.
		TargetCompletionDate *time.Time `db:"target_completion_date"`
		IsOngoing            bool       `db:"is_ongoing"`
		IsArchived           bool       `db:"is_archived"`
		CreatedAt            time.Time  `db:"created_at"`
	}

	CreateSupplyChainOptions struct {
		Name         string
		DepartmentID resource.ID
		ContactName  string
		ContactEmail string
	}

	CreateStrategicActionOptions struct {
		SupplyChainSlug      string
		Name                 string
		Description          string
		TargetCompletionDate *time.Time
		IsOngoing            bool
	}
)

func newSupplyChain(opts CreateSupplyChainOptions) (*SupplyChain, error) {
	if err := resource.ValidateName(&opts.Name); err != nil {
		return nil, err
	}
	if opts.DepartmentID == resource.EmptyID {
		return nil, &internal.MissingParameterError{Parameter: "department"}
	}
	return &SupplyChain{
		ID:           resource.NewID(resource.SupplyChainKind),
		Slug:         resource.Slugify(opts.Name),
		Name:         strings.TrimSpace(opts.Name),
		DepartmentID: opts.DepartmentID,
		ContactName:  opts.ContactName,
		ContactEmail: opts.ContactEmail,
		CreatedAt:    internal.CurrentTimestamp(),
	}, nil
}

func newStrategicAction(chain *SupplyChain, opts CreateStrategicActionOptions) (*StrategicAction, error) {
	if err := resource.ValidateName(&opts.Name); err != nil {
		return nil, err
	}
	if opts.TargetCompletionDate != nil && opts.IsOngoing {
		return nil, internal.InvalidParameterError("an ongoing action cannot have a target completion date")
	}
	action := &StrategicAction{
		ID:            resource.NewID(resource.StrategicActionKind),
		SupplyChainID: chain.ID,
		Slug:          resource.Slugify(opts.Name),
		Name:          strings.TrimSpace(opts.Name),
		Description:   opts.Description,
		IsOngoing:     opts.IsOngoing,
		CreatedAt:     internal.CurrentTimestamp(),
	}
	if opts.TargetCompletionDate != nil {
		action.TargetCompletionDate = new(truncateToDate(*opts.TargetCompletionDate))
	}
	return action, nil
}

// HasTargetCompletionDate determines whether the action has a completion
// date, which decides the route taken through the monthly update.
func (a *StrategicAction) HasTargetCompletionDate() bool {
	return a.TargetCompletionDate != nil
}

// setTiming records a revised completion date, or that the action is
// ongoing. A nil date with ongoing false leaves the timing unchanged.
func (a *StrategicAction) setTiming(date *time.Time, ongoing bool) {
	switch {
	case ongoing:
		a.IsOngoing = true
		a.TargetCompletionDate = nil
	case date != nil:
		a.IsOngoing = false
		a.TargetCompletionDate = new(truncateToDate(*date))
	}
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
