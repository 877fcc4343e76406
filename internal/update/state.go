package update

import (
	"context"

	"github.com/supplychain-resilience/scr/internal/resource"
)

// StateStore holds the answers given to each step of an in-progress update
// until the update is submitted.
type StateStore struct {
	db store
}

// GetAnswers retrieves the answers saved for a step. Empty answers are
// returned if the step has not been answered.
func (s *StateStore) GetAnswers(ctx context.Context, updateID resource.ID, step StepID) (Answers, error) {
	if _, err := s.db.getUpdate(ctx, updateID); err != nil {
		return nil, err
	}
	return s.db.getAnswers(ctx, updateID, step)
}

// SaveAnswers saves the answers for a step, replacing any previously saved.
func (s *StateStore) SaveAnswers(ctx context.Context, updateID resource.ID, step StepID, answers Answers) error {
	if _, err := s.db.getUpdate(ctx, updateID); err != nil {
		return err
	}
	return s.db.saveAnswers(ctx, updateID, step, answers)
}

// DeleteAnswers deletes the answers saved for the given steps.
func (s *StateStore) DeleteAnswers(ctx context.Context, updateID resource.ID, steps ...StepID) error {
	if _, err := s.db.getUpdate(ctx, updateID); err != nil {
		return err
	}
	if len(steps) == 0 {
		return nil
	}
	return s.db.deleteAnswers(ctx, updateID, steps)
}

// AllAnswers retrieves the answers saved for every step of an update.
func (s *StateStore) AllAnswers(ctx context.Context, updateID resource.ID) (map[StepID]Answers, error) {
	if _, err := s.db.getUpdate(ctx, updateID); err != nil {
		return nil, err
	}
	return s.db.allAnswers(ctx, updateID)
}

// MergeIntoUpdate hands the update and its saved answers to fn to merge, then
// persists the update and discards the answers, all within a transaction.
func (s *StateStore) MergeIntoUpdate(ctx context.Context, updateID resource.ID, fn func(*MonthlyUpdate, map[StepID]Answers) error) (*MonthlyUpdate, error) {
	var update *MonthlyUpdate
	err := s.db.tx(ctx, func(ctx context.Context) (err error) {
		update, err = s.db.getUpdateForUpdate(ctx, updateID)
		if err != nil {
			return err
		}
		answers, err := s.db.allAnswers(ctx, updateID)
		if err != nil {
			return err
		}
		if err := fn(update, answers); err != nil {
			return err
		}
		if err := s.db.putUpdate(ctx, update); err != nil {
			return err
		}
		return s.db.deleteAllAnswers(ctx, updateID)
	})
	if err != nil {
		return nil, err
	}
	return update, nil
}
