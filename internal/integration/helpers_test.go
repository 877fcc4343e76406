package integration

import (
	"context"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/require"
	"github.com/supplychain-resilience/scr/internal/daemon"
	"github.com/supplychain-resilience/scr/internal/logr"
	"github.com/supplychain-resilience/scr/internal/supplychain"
	"github.com/supplychain-resilience/scr/internal/user"
)

var expect = playwright.NewPlaywrightAssertions()

type testDaemon struct {
	*daemon.Daemon

	department *user.Department
	user       *user.User
}

func integrationTest(t *testing.T) {
	// An integration test can take a while to run so it be run in parallel to
	// other integration tests
	t.Parallel()

	// Skip long-running integration tests if user has passed -short flag
	if testing.Short() {
		t.Skip()
	}
}

// setup starts an in-memory daemon with a department and a user belonging to
// it.
func setup(t *testing.T) *testDaemon {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())

	cfg := daemon.NewConfig()
	cfg.Address = "localhost:0"
	cfg.Secret = sharedSecret

	d, err := daemon.New(ctx, logr.Discard(), cfg)
	require.NoError(t, err)

	started := make(chan struct{})
	done := make(chan error)
	go func() {
		done <- d.Start(ctx, started)
	}()
	select {
	case <-started:
	case err := <-done:
		t.Fatalf("daemon exited: %v", err)
	}
	t.Cleanup(func() {
		cancel()
		<-done
	})

	dept, err := d.Users.CreateDepartment(adminCtx, "Department of Health", "health.gov.uk")
	require.NoError(t, err)
	u, err := d.Users.CreateUser(adminCtx, user.CreateUserOptions{
		Username:   "alice",
		Email:      "alice@health.gov.uk",
		Department: dept.Name,
	})
	require.NoError(t, err)

	return &testDaemon{Daemon: d, department: dept, user: u}
}

func (d *testDaemon) hostname() string {
	return d.ListenAddress.String()
}

func (d *testDaemon) url(path string) string {
	return "http://" + d.hostname() + path
}

func (d *testDaemon) createSupplyChain(t *testing.T, name string) *supplychain.SupplyChain {
	t.Helper()

	chain, err := d.SupplyChains.CreateSupplyChain(adminCtx, supplychain.CreateSupplyChainOptions{
		Name:         name,
		DepartmentID: d.department.ID,
		ContactName:  "Bob",
		ContactEmail: "bob@health.gov.uk",
	})
	require.NoError(t, err)
	return chain
}

func (d *testDaemon) createAction(t *testing.T, chain *supplychain.SupplyChain, name string, target *time.Time) *supplychain.StrategicAction {
	t.Helper()

	action, err := d.SupplyChains.CreateStrategicAction(adminCtx, supplychain.CreateStrategicActionOptions{
		SupplyChainSlug:      chain.Slug,
		Name:                 name,
		Description:          "An action to make " + chain.Name + " resilient",
		TargetCompletionDate: target,
	})
	require.NoError(t, err)
	return action
}

// choose selects a radio button by clicking its label.
func choose(t *testing.T, page playwright.Page, id string) {
	t.Helper()

	err := page.Locator(`label[for='` + id + `']`).Click()
	require.NoError(t, err)
}

func saveAndContinue(t *testing.T, page playwright.Page) {
	t.Helper()

	err := page.Locator(`//button[text()='Save and continue']`).Click()
	require.NoError(t, err)
}
