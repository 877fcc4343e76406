package update

import (
	"context"

	"github.com/supplychain-resilience/scr/internal/resource"
	"github.com/supplychain-resilience/scr/internal/supplychain"
	"github.com/supplychain-resilience/scr/internal/user"
)

// summaryPageSize is the number of items listed per page on the summary
// pages.
const summaryPageSize = 5

type (
	// ActionList lists the active strategic actions of a supply chain.
	ActionList struct {
		SupplyChain *supplychain.SupplyChain
		Actions     *resource.Page[*supplychain.StrategicAction]
	}

	// Completion confirms a supply chain is up to date, along with the
	// progress of the rest of the department.
	Completion struct {
		SupplyChain *supplychain.SupplyChain
		Updated     int
		Total       int
	}
)

// SupplyChainSummary lists the supply chains of the user's department along
// with their contact details.
func (s *Service) SupplyChainSummary(ctx context.Context, opts resource.PageOptions) (*resource.Page[*supplychain.SupplyChain], error) {
	u, err := user.UserFromContext(ctx)
	if err != nil {
		return nil, err
	}
	chains, err := s.supplyChains.ListSupplyChains(ctx, u.DepartmentID)
	if err != nil {
		return nil, err
	}
	opts.PageSize = summaryPageSize
	return resource.Paginate(chains, opts), nil
}

func (s *Service) StrategicActions(ctx context.Context, supplyChainSlug string, opts resource.PageOptions) (*ActionList, error) {
	chain, err := s.supplyChains.GetSupplyChain(ctx, supplyChainSlug)
	if err != nil {
		return nil, err
	}
	actions, err := s.supplyChains.ListStrategicActions(ctx, chain.ID)
	if err != nil {
		return nil, err
	}
	opts.PageSize = summaryPageSize
	return &ActionList{
		SupplyChain: chain,
		Actions:     resource.Paginate(actions, opts),
	}, nil
}

// Completion reports on a supply chain whose actions all have a submitted
// update for the current period. ErrUpdatesIncomplete is returned if any
// action has yet to be submitted.
func (s *Service) Completion(ctx context.Context, supplyChainSlug string) (*Completion, error) {
	u, err := user.UserFromContext(ctx)
	if err != nil {
		return nil, err
	}
	chain, err := s.supplyChains.GetSupplyChain(ctx, supplyChainSlug)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	complete, err := s.allSubmitted(ctx, chain.ID, now)
	if err != nil {
		return nil, err
	}
	if !complete {
		return nil, ErrUpdatesIncomplete
	}
	chains, err := s.supplyChains.ListSupplyChains(ctx, u.DepartmentID)
	if err != nil {
		return nil, err
	}
	var updated int
	for _, c := range chains {
		if s.updatedThisPeriod(c, now) {
			updated++
		}
	}
	return &Completion{SupplyChain: chain, Updated: updated, Total: len(chains)}, nil
}
