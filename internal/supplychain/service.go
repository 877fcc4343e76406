package supplychain

import (
	"context"
	"time"

	"github.com/supplychain-resilience/scr/internal/authz"
	"github.com/supplychain-resilience/scr/internal/logr"
	"github.com/supplychain-resilience/scr/internal/resource"
	"github.com/supplychain-resilience/scr/internal/sql"
)

type (
	Service struct {
		logr.Logger

		db    store
		authz authz.Interface
	}

	Options struct {
		logr.Logger

		// DB is the postgres database. When nil supply chains are kept in
		// memory.
		*sql.DB
		Authorizer authz.Interface
	}
)

func NewService(opts Options) *Service {
	svc := Service{
		Logger: opts.Logger,
		authz:  opts.Authorizer,
	}
	if svc.authz == nil {
		svc.authz = authz.NewAuthorizer(opts.Logger)
	}
	if opts.DB != nil {
		svc.db = &pgdb{opts.DB}
	} else {
		svc.db = newMemDB()
	}
	return &svc
}

func (s *Service) CreateSupplyChain(ctx context.Context, opts CreateSupplyChainOptions) (*SupplyChain, error) {
	chain, err := newSupplyChain(opts)
	if err != nil {
		return nil, err
	}
	if err := s.db.createSupplyChain(ctx, chain); err != nil {
		s.Error(err, "creating supply chain", "name", opts.Name)
		return nil, err
	}
	s.V(0).Info("created supply chain", "slug", chain.Slug, "id", chain.ID)
	return chain, nil
}

// GetSupplyChain retrieves a supply chain by its slug, checking the subject
// in the context belongs to the owning department.
func (s *Service) GetSupplyChain(ctx context.Context, slug string) (*SupplyChain, error) {
	chain, err := s.db.getSupplyChain(ctx, slug)
	if err != nil {
		s.V(9).Info("retrieving supply chain", "slug", slug, "error", err.Error())
		return nil, err
	}
	if _, err := s.authz.Authorize(ctx, chain.DepartmentID); err != nil {
		return nil, err
	}
	s.V(9).Info("retrieved supply chain", "slug", slug)
	return chain, nil
}

// GetSupplyChainByID retrieves a supply chain without an authorization check,
// for use by other services that have already authorized the request.
func (s *Service) GetSupplyChainByID(ctx context.Context, id resource.ID) (*SupplyChain, error) {
	return s.db.getSupplyChainByID(ctx, id)
}

// ListSupplyChains lists the active supply chains of a department in name
// order.
func (s *Service) ListSupplyChains(ctx context.Context, departmentID resource.ID) ([]*SupplyChain, error) {
	if _, err := s.authz.Authorize(ctx, departmentID); err != nil {
		return nil, err
	}
	chains, err := s.db.listSupplyChains(ctx, departmentID)
	if err != nil {
		s.Error(err, "listing supply chains", "department", departmentID)
		return nil, err
	}
	s.V(9).Info("listed supply chains", "department", departmentID, "count", len(chains))
	return chains, nil
}

func (s *Service) CreateStrategicAction(ctx context.Context, opts CreateStrategicActionOptions) (*StrategicAction, error) {
	chain, err := s.db.getSupplyChain(ctx, opts.SupplyChainSlug)
	if err != nil {
		return nil, err
	}
	action, err := newStrategicAction(chain, opts)
	if err != nil {
		return nil, err
	}
	if err := s.db.createStrategicAction(ctx, action); err != nil {
		s.Error(err, "creating strategic action", "name", opts.Name, "supply_chain", chain.Slug)
		return nil, err
	}
	s.V(0).Info("created strategic action", "slug", action.Slug, "supply_chain", chain.Slug, "id", action.ID)
	return action, nil
}

// GetStrategicAction retrieves a strategic action along with its supply chain,
// checking the subject in the context belongs to the owning department.
func (s *Service) GetStrategicAction(ctx context.Context, supplyChainSlug, actionSlug string) (*SupplyChain, *StrategicAction, error) {
	chain, err := s.GetSupplyChain(ctx, supplyChainSlug)
	if err != nil {
		return nil, nil, err
	}
	action, err := s.db.getStrategicAction(ctx, chain.ID, actionSlug)
	if err != nil {
		s.V(9).Info("retrieving strategic action", "slug", actionSlug, "error", err.Error())
		return nil, nil, err
	}
	return chain, action, nil
}

// GetStrategicActionByID retrieves an action without an authorization check.
func (s *Service) GetStrategicActionByID(ctx context.Context, id resource.ID) (*StrategicAction, error) {
	return s.db.getStrategicActionByID(ctx, id)
}

// ListStrategicActions lists the active actions of a supply chain in name
// order.
func (s *Service) ListStrategicActions(ctx context.Context, supplyChainID resource.ID) ([]*StrategicAction, error) {
	return s.db.listStrategicActions(ctx, supplyChainID)
}

// SetActionTiming records the completion date of an action, or that it is
// ongoing, upon submission of a monthly update.
func (s *Service) SetActionTiming(ctx context.Context, actionID resource.ID, date *time.Time, ongoing bool) (*StrategicAction, error) {
	action, err := s.db.updateStrategicAction(ctx, actionID, func(action *StrategicAction) {
		action.setTiming(date, ongoing)
	})
	if err != nil {
		s.Error(err, "updating strategic action timing", "id", actionID)
		return nil, err
	}
	s.V(1).Info("updated strategic action timing", "id", actionID, "ongoing", action.IsOngoing)
	return action, nil
}

func (s *Service) SetLastSubmissionDate(ctx context.Context, supplyChainID resource.ID, date time.Time) error {
	if err := s.db.setLastSubmissionDate(ctx, supplyChainID, truncateToDate(date)); err != nil {
		s.Error(err, "setting last submission date", "id", supplyChainID)
		return err
	}
	s.V(1).Info("all strategic actions submitted", "supply_chain", supplyChainID)
	return nil
}
