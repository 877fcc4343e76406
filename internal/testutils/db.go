// Package testutils provides helpers for tests.
package testutils

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"github.com/supplychain-resilience/scr/internal/logr"
	"github.com/supplychain-resilience/scr/internal/sql"
)

// DatabaseURLEnv names the environment variable holding the connection
// string of a postgres server that tests may create databases on.
const DatabaseURLEnv = "SCRD_TEST_DATABASE_URL"

// NewDB creates a dedicated, migrated database for the test, dropping it when
// the test finishes. The test is skipped if no postgres server is configured.
func NewDB(t *testing.T) *sql.DB {
	t.Helper()

	connstr, ok := os.LookupEnv(DatabaseURLEnv)
	if !ok {
		t.Skipf("%s not set; skipping postgres test", DatabaseURLEnv)
	}
	ctx := context.Background()

	admin, err := pgx.Connect(ctx, connstr)
	require.NoError(t, err)
	t.Cleanup(func() { admin.Close(ctx) })

	name := "scr_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	_, err = admin.Exec(ctx, "CREATE DATABASE "+name)
	require.NoError(t, err)

	u, err := url.Parse(connstr)
	require.NoError(t, err)
	u.Path = "/" + name

	db, err := sql.New(ctx, logr.Discard(), u.String())
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
		_, err := admin.Exec(ctx, fmt.Sprintf("DROP DATABASE IF EXISTS %s WITH (FORCE)", name))
		require.NoError(t, err)
	})
	return db
}
