package update

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/supplychain-resilience/scr/internal"
	"github.com/supplychain-resilience/scr/internal/resource"
)

// memdb is an in-memory monthly update store, used when no database is
// configured.
type memdb struct {
	// txMu serializes transactions
	txMu sync.Mutex

	mu      sync.RWMutex
	updates map[resource.ID]*MonthlyUpdate
	answers map[resource.ID]map[StepID]Answers
}

func newMemDB() *memdb {
	return &memdb{
		updates: make(map[resource.ID]*MonthlyUpdate),
		answers: make(map[resource.ID]map[StepID]Answers),
	}
}

func (db *memdb) createUpdate(_ context.Context, update *MonthlyUpdate) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, existing := range db.updates {
		if existing.StrategicActionID == update.StrategicActionID && existing.MonthSlug == update.MonthSlug {
			return internal.ErrResourceAlreadyExists
		}
	}
	db.updates[update.ID] = copyUpdate(update)
	return nil
}

func (db *memdb) getUpdate(_ context.Context, id resource.ID) (*MonthlyUpdate, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	update, ok := db.updates[id]
	if !ok {
		return nil, internal.ErrResourceNotFound
	}
	return copyUpdate(update), nil
}

func (db *memdb) getUpdateForUpdate(ctx context.Context, id resource.ID) (*MonthlyUpdate, error) {
	return db.getUpdate(ctx, id)
}

func (db *memdb) getUpdateByMonth(_ context.Context, actionID resource.ID, monthSlug string) (*MonthlyUpdate, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	for _, update := range db.updates {
		if update.StrategicActionID == actionID && update.MonthSlug == monthSlug {
			return copyUpdate(update), nil
		}
	}
	return nil, internal.ErrResourceNotFound
}

func (db *memdb) getUpdateSince(_ context.Context, actionID resource.ID, since time.Time) (*MonthlyUpdate, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var latest *MonthlyUpdate
	for _, update := range db.updates {
		if update.StrategicActionID != actionID || !update.CreatedAt.After(since) {
			continue
		}
		if latest == nil || update.CreatedAt.After(latest.CreatedAt) {
			latest = update
		}
	}
	if latest == nil {
		return nil, internal.ErrResourceNotFound
	}
	return copyUpdate(latest), nil
}

func (db *memdb) listUpdatesSince(_ context.Context, supplyChainID resource.ID, since time.Time) ([]*MonthlyUpdate, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var updates []*MonthlyUpdate
	for _, update := range db.updates {
		if update.SupplyChainID == supplyChainID && update.CreatedAt.After(since) {
			updates = append(updates, copyUpdate(update))
		}
	}
	slices.SortFunc(updates, func(a, b *MonthlyUpdate) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return updates, nil
}

func (db *memdb) countUpdatesByStatus(_ context.Context, since time.Time) (map[Status]int, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	counts := make(map[Status]int)
	for _, update := range db.updates {
		if update.CreatedAt.After(since) {
			counts[update.Status]++
		}
	}
	return counts, nil
}

func (db *memdb) putUpdate(_ context.Context, update *MonthlyUpdate) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.updates[update.ID]; !ok {
		return internal.ErrResourceNotFound
	}
	db.updates[update.ID] = copyUpdate(update)
	return nil
}

func (db *memdb) getAnswers(_ context.Context, updateID resource.ID, step StepID) (Answers, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	answers, ok := db.answers[updateID][step]
	if !ok {
		return Answers{}, nil
	}
	return maps.Clone(answers), nil
}

func (db *memdb) saveAnswers(_ context.Context, updateID resource.ID, step StepID, answers Answers) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.updates[updateID]; !ok {
		return internal.ErrResourceNotFound
	}
	if db.answers[updateID] == nil {
		db.answers[updateID] = make(map[StepID]Answers)
	}
	db.answers[updateID][step] = maps.Clone(answers)
	return nil
}

func (db *memdb) deleteAnswers(_ context.Context, updateID resource.ID, steps []StepID) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.updates[updateID]; !ok {
		return internal.ErrResourceNotFound
	}
	for _, step := range steps {
		delete(db.answers[updateID], step)
	}
	return nil
}

func (db *memdb) deleteAllAnswers(_ context.Context, updateID resource.ID) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	delete(db.answers, updateID)
	return nil
}

func (db *memdb) allAnswers(_ context.Context, updateID resource.ID) (map[StepID]Answers, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	all := make(map[StepID]Answers, len(db.answers[updateID]))
	for step, answers := range db.answers[updateID] {
		all[step] = maps.Clone(answers)
	}
	return all, nil
}

type memTxKey struct{}

// tx runs fn, restoring the store to its prior state if fn fails. A tx
// within a tx joins the outer one.
func (db *memdb) tx(ctx context.Context, fn func(context.Context) error) error {
	if ctx.Value(memTxKey{}) != nil {
		return fn(ctx)
	}
	db.txMu.Lock()
	defer db.txMu.Unlock()

	db.mu.RLock()
	updates := maps.Clone(db.updates)
	answers := make(map[resource.ID]map[StepID]Answers, len(db.answers))
	for id, steps := range db.answers {
		answers[id] = maps.Clone(steps)
	}
	db.mu.RUnlock()

	if err := fn(context.WithValue(ctx, memTxKey{}, struct{}{})); err != nil {
		db.mu.Lock()
		db.updates = updates
		db.answers = answers
		db.mu.Unlock()
		return err
	}
	return nil
}

func copyUpdate(update *MonthlyUpdate) *MonthlyUpdate {
	cp := *update
	if update.ChangedTargetCompletionDate != nil {
		cp.ChangedTargetCompletionDate = new(*update.ChangedTargetCompletionDate)
	}
	if update.SubmittedAt != nil {
		cp.SubmittedAt = new(*update.SubmittedAt)
	}
	return &cp
}
