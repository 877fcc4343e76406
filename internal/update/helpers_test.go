package update

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/supplychain-resilience/scr/internal/authz"
	"github.com/supplychain-resilience/scr/internal/logr"
	"github.com/supplychain-resilience/scr/internal/resource"
	"github.com/supplychain-resilience/scr/internal/sql"
	"github.com/supplychain-resilience/scr/internal/supplychain"
	"github.com/supplychain-resilience/scr/internal/testutils"
	"github.com/supplychain-resilience/scr/internal/user"
)

// testNow is a Tuesday in March 2026; the reporting month is 03-2026.
var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	svc    *Service
	chains *supplychain.Service
	user   *user.User
	// ctx carries the user as the subject
	ctx context.Context
	// now is the time the service's clock reports
	now   *time.Time
	chain *supplychain.SupplyChain
	// dated has a target completion date; undated does not.
	dated   *supplychain.StrategicAction
	undated *supplychain.StrategicAction
}

// backends runs the test against the in-memory store and, if configured,
// postgres.
func backends(t *testing.T, fn func(t *testing.T, env *testEnv)) {
	t.Run("memory", func(t *testing.T) {
		fn(t, newTestEnv(t, nil))
	})
	t.Run("postgres", func(t *testing.T) {
		fn(t, newTestEnv(t, testutils.NewDB(t)))
	})
}

func newTestEnv(t *testing.T, db *sql.DB) *testEnv {
	t.Helper()

	users := user.NewService(user.Options{Logger: logr.Discard(), DB: db})
	chains := supplychain.NewService(supplychain.Options{Logger: logr.Discard(), DB: db})
	now := testNow
	svc, err := NewService(Options{
		Logger:       logr.Discard(),
		DB:           db,
		SupplyChains: chains,
		Clock:        func() time.Time { return now },
	})
	require.NoError(t, err)

	ctx := context.Background()
	dept, err := users.CreateDepartment(ctx, "Department of Health", "health.gov.uk")
	require.NoError(t, err)
	u, err := users.CreateUser(ctx, user.CreateUserOptions{
		Username:   "bob",
		Email:      "bob@health.gov.uk",
		Department: dept.Name,
	})
	require.NoError(t, err)
	ctx = authz.AddSubjectToContext(ctx, u)

	chain, err := chains.CreateSupplyChain(ctx, supplychain.CreateSupplyChainOptions{
		Name:         "Medical Devices",
		DepartmentID: dept.ID,
	})
	require.NoError(t, err)
	target := time.Date(2027, 3, 31, 0, 0, 0, 0, time.UTC)
	dated, err := chains.CreateStrategicAction(ctx, supplychain.CreateStrategicActionOptions{
		SupplyChainSlug:      chain.Slug,
		Name:                 "Diversify suppliers",
		TargetCompletionDate: &target,
	})
	require.NoError(t, err)
	undated, err := chains.CreateStrategicAction(ctx, supplychain.CreateStrategicActionOptions{
		SupplyChainSlug: chain.Slug,
		Name:            "Build stockpile",
	})
	require.NoError(t, err)

	return &testEnv{
		svc:     svc,
		chains:  chains,
		user:    u,
		ctx:     ctx,
		now:     &now,
		chain:   chain,
		dated:   dated,
		undated: undated,
	}
}

// start starts an update of the action.
func (env *testEnv) start(t *testing.T, action *supplychain.StrategicAction) *MonthlyUpdate {
	t.Helper()

	update, err := env.svc.Start(env.ctx, env.chain.Slug, action.Slug)
	require.NoError(t, err)
	return update
}

// confirm submits the update.
func (env *testEnv) confirm(t *testing.T, update *MonthlyUpdate) *MonthlyUpdate {
	t.Helper()

	got, err := env.svc.Confirm(env.ctx, update.ID)
	require.NoError(t, err)
	return got
}

// submit submits valid answers to a step, returning the next step.
func (env *testEnv) submit(t *testing.T, update *MonthlyUpdate, step StepID, raw map[string]string) StepID {
	t.Helper()

	next, verrs, err := env.svc.SubmitStep(env.ctx, update.ID, step, raw)
	require.NoError(t, err)
	require.Nil(t, verrs)
	return next
}

// failingTiming is a supply chain client that fails to set the timing of an
// action.
type failingTiming struct {
	supplyChainClient
}

func (failingTiming) SetActionTiming(context.Context, resource.ID, *time.Time, bool) (*supplychain.StrategicAction, error) {
	return nil, errors.New("connection reset")
}

var (
	validInfo  = map[string]string{"content": "Contracts signed with two new suppliers"}
	validGreen = map[string]string{"delivery_status": "GREEN"}
	redChange  = map[string]string{
		"delivery_status":             "RED",
		"red_reason_for_delays":       "Supplier insolvency",
		"will_completion_date_change": "yes",
	}
	redNoChange = map[string]string{
		"delivery_status":             "RED",
		"red_reason_for_delays":       "Supplier insolvency",
		"will_completion_date_change": "no",
	}
	approxOneYear = map[string]string{
		"is_completion_date_known": "no",
		"approximate_timing":       "12",
	}
	revisedDate = map[string]string{
		"is_completion_date_known":          "yes",
		"completion_date_day":               "30",
		"completion_date_month":             "9",
		"completion_date_year":              "2027",
		"reason_for_completion_date_change": "New supplier needs certifying",
	}
)
