package supplychain

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/supplychain-resilience/scr/internal"
	"github.com/supplychain-resilience/scr/internal/resource"
)

// memdb is an in-memory supply chain store, used when no database is
// configured.
type memdb struct {
	mu      sync.RWMutex
	chains  map[resource.ID]*SupplyChain
	actions map[resource.ID]*StrategicAction
}

func newMemDB() *memdb {
	return &memdb{
		chains:  make(map[resource.ID]*SupplyChain),
		actions: make(map[resource.ID]*StrategicAction),
	}
}

func (db *memdb) createSupplyChain(_ context.Context, chain *SupplyChain) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, existing := range db.chains {
		if existing.Slug == chain.Slug {
			return internal.ErrResourceAlreadyExists
		}
	}
	db.chains[chain.ID] = new(*chain)
	return nil
}

func (db *memdb) getSupplyChain(_ context.Context, slug string) (*SupplyChain, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	for _, chain := range db.chains {
		if chain.Slug == slug {
			return new(*chain), nil
		}
	}
	return nil, internal.ErrResourceNotFound
}

func (db *memdb) getSupplyChainByID(_ context.Context, id resource.ID) (*SupplyChain, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	chain, ok := db.chains[id]
	if !ok {
		return nil, internal.ErrResourceNotFound
	}
	return new(*chain), nil
}

func (db *memdb) listSupplyChains(_ context.Context, departmentID resource.ID) ([]*SupplyChain, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var chains []*SupplyChain
	for _, chain := range db.chains {
		if chain.DepartmentID == departmentID && !chain.IsArchived {
			chains = append(chains, new(*chain))
		}
	}
	slices.SortFunc(chains, func(a, b *SupplyChain) int { return cmp.Compare(a.Name, b.Name) })
	return chains, nil
}

func (db *memdb) setLastSubmissionDate(_ context.Context, id resource.ID, date time.Time) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	chain, ok := db.chains[id]
	if !ok {
		return internal.ErrResourceNotFound
	}
	chain.LastSubmissionDate = &date
	return nil
}

func (db *memdb) createStrategicAction(_ context.Context, action *StrategicAction) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, existing := range db.actions {
		if existing.SupplyChainID == action.SupplyChainID && existing.Slug == action.Slug {
			return internal.ErrResourceAlreadyExists
		}
	}
	db.actions[action.ID] = copyAction(action)
	return nil
}

func (db *memdb) getStrategicAction(_ context.Context, supplyChainID resource.ID, slug string) (*StrategicAction, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	for _, action := range db.actions {
		if action.SupplyChainID == supplyChainID && action.Slug == slug {
			return copyAction(action), nil
		}
	}
	return nil, internal.ErrResourceNotFound
}

func (db *memdb) getStrategicActionByID(_ context.Context, id resource.ID) (*StrategicAction, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	action, ok := db.actions[id]
	if !ok {
		return nil, internal.ErrResourceNotFound
	}
	return copyAction(action), nil
}

func (db *memdb) listStrategicActions(_ context.Context, supplyChainID resource.ID) ([]*StrategicAction, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var actions []*StrategicAction
	for _, action := range db.actions {
		if action.SupplyChainID == supplyChainID && !action.IsArchived {
			actions = append(actions, copyAction(action))
		}
	}
	slices.SortFunc(actions, func(a, b *StrategicAction) int { return cmp.Compare(a.Name, b.Name) })
	return actions, nil
}

func (db *memdb) updateStrategicAction(_ context.Context, id resource.ID, fn func(*StrategicAction)) (*StrategicAction, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	action, ok := db.actions[id]
	if !ok {
		return nil, internal.ErrResourceNotFound
	}
	updated := copyAction(action)
	fn(updated)
	db.actions[id] = updated
	return copyAction(updated), nil
}

// copyAction deep copies an action so callers cannot mutate stored state via
// the date pointer.
func copyAction(action *StrategicAction) *StrategicAction {
	cp := *action
	if action.TargetCompletionDate != nil {
		cp.TargetCompletionDate = new(*action.TargetCompletionDate)
	}
	return &cp
}
