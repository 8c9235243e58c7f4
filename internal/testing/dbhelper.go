package testing

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/questload/internal/testinfra"
)

// One container is shared by every test in a package binary; it is
// reaped by the testcontainers ryuk sidecar when the binary exits.
var (
	sharedOnce sync.Once
	sharedDB   *testinfra.QuestDatabase
	sharedErr  error
)

func sharedDatabase() (string, error) {
	sharedOnce.Do(func() {
		sharedDB, sharedErr = testinfra.StartQuestDatabase(context.Background())
	})
	if sharedErr != nil {
		return "", sharedErr
	}
	return sharedDB.ConnString, nil
}

// GetTestConnectionString returns the test database connection string.
// Priority: QUESTLOAD_TEST_CONN env var > auto-started testcontainer > skip test.
func GetTestConnectionString(t *testing.T) string {
	t.Helper()

	if connString := os.Getenv("QUESTLOAD_TEST_CONN"); connString != "" {
		return connString
	}

	connString, err := sharedDatabase()
	if err != nil {
		t.Skipf("QUESTLOAD_TEST_CONN not set and Docker unavailable: %v", err)
	}
	return connString
}

// SkipIfShort skips the test if running in short mode (-short flag).
func SkipIfShort(t *testing.T) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}

// RequireDatabase combines SkipIfShort and GetTestConnectionString for convenience.
// Returns the test connection string if available, otherwise skips the test.
func RequireDatabase(t *testing.T) string {
	t.Helper()

	SkipIfShort(t)
	return GetTestConnectionString(t)
}

// GetTestPool creates a connection pool for testing.
// The pool is automatically closed when the test completes.
func GetTestPool(t *testing.T, connString string) *pgxpool.Pool {
	t.Helper()

	pool, err := pgxpool.New(context.Background(), connString)
	if err != nil {
		t.Fatalf("Failed to create connection pool: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

// UniqueTableName returns a fresh quest table name and drops the table when
// the test completes, so tests can share one database.
func UniqueTableName(t *testing.T, pool *pgxpool.Pool) string {
	t.Helper()

	name := "quest_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	t.Cleanup(func() {
		_, err := pool.Exec(context.Background(), fmt.Sprintf("DROP TABLE IF EXISTS %s", name))
		if err != nil {
			t.Logf("Warning: Failed to drop table %s: %v", name, err)
		}
	})
	return name
}

// ForceApprover is a test approver that always approves the table drop.
type ForceApprover struct{}

// RequestApproval always returns true.
func (a *ForceApprover) RequestApproval(ctx context.Context, tableName string) (bool, error) {
	return true, nil
}
