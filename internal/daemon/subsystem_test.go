package daemon

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supplychain-resilience/scr/internal/authz"
	"github.com/supplychain-resilience/scr/internal/logr"
	"golang.org/x/sync/errgroup"
)

func TestSubsystem(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())

	system := &flakyStartable{failures: 1, running: make(chan string)}
	sub := &Subsystem{
		Name:   "flaky",
		System: system,
		Logger: logr.Discard(),
	}
	g, ctx := errgroup.WithContext(ctx)
	sub.Start(ctx, g)

	select {
	case subject := <-system.running:
		assert.Equal(t, "flaky", subject)
	case <-time.After(10 * time.Second):
		t.Fatal("subsystem was not restarted")
	}
	assert.Equal(t, int32(2), system.starts.Load())

	cancel()
	require.NoError(t, g.Wait())
}

// flakyStartable fails the given number of times before running until its
// context is cancelled.
type flakyStartable struct {
	failures int32
	starts   atomic.Int32
	running  chan string
}

func (f *flakyStartable) Start(ctx context.Context) error {
	if f.starts.Add(1) <= f.failures {
		return errors.New("failed to start")
	}
	subj, err := authz.SubjectFromContext(ctx)
	if err != nil {
		return err
	}
	f.running <- subj.String()
	<-ctx.Done()
	return ctx.Err()
}
