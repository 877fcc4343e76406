package daemon

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/supplychain-resilience/scr/internal/authz"
	"github.com/supplychain-resilience/scr/internal/logr"
	"golang.org/x/sync/errgroup"
)

type (
	// Subsystem is an autonomous system subordinate to the main daemon (scrd).
	Subsystem struct {
		// Name of subsystem
		Name string
		// System is the underlying system to be invoked and supervised.
		System Startable
		logr.Logger
	}
	// Startable is a blocking process that is started at least once, and upon error,
	// may need re-starting.
	Startable interface {
		Start(ctx context.Context) error
	}
)

// Start runs the subsystem in the errgroup, restarting it with exponential
// backoff whenever it fails.
func (s *Subsystem) Start(ctx context.Context, g *errgroup.Group) {
	// Confer all privileges to subsystem and identify subsystem in service
	// endpoint calls.
	ctx = authz.AddSubjectToContext(ctx, &authz.Superuser{Username: s.Name})

	op := func() error {
		s.V(1).Info("started subsystem", "name", s.Name)
		err := s.System.Start(ctx)
		if ctx.Err() != nil {
			// don't return an error if subsystem was terminated via a
			// canceled context.
			s.V(1).Info("gracefully shutdown subsystem", "name", s.Name)
			return nil
		}
		return err
	}
	// Backoff and retry whenever operation returns an error. If context is
	// cancelled then it'll stop retrying and return the context error.
	infiniteRetry := backoff.WithMaxElapsedTime(0)
	policy := backoff.WithContext(backoff.NewExponentialBackOff(infiniteRetry), ctx)
	g.Go(func() error {
		return backoff.RetryNotify(op, policy, func(err error, next time.Duration) {
			s.Error(err, "restarting subsystem", "name", s.Name, "backoff", next)
		})
	})
}
