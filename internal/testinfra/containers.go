// Package testinfra starts throwaway databases for integration tests.
package testinfra

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// DefaultImage can be replaced with $QUESTLOAD_TEST_IMAGE, e.g. to match a
// production major version.
const DefaultImage = "postgres:17-alpine"

const (
	questUser     = "questload"
	questPassword = "questload"
	questDatabase = "gamedata"
)

// QuestDatabase is a running PostgreSQL container holding an empty gamedata database.
type QuestDatabase struct {
	container  *postgres.PostgresContainer
	ConnString string
}

// StartQuestDatabase runs a PostgreSQL container and waits until it accepts
// connections. The testcontainers reaper removes it when the test binary exits.
func StartQuestDatabase(ctx context.Context) (*QuestDatabase, error) {
	image := os.Getenv("QUESTLOAD_TEST_IMAGE")
	if image == "" {
		image = DefaultImage
	}

	ctr, err := postgres.Run(ctx, image,
		postgres.WithUsername(questUser),
		postgres.WithPassword(questPassword),
		postgres.WithDatabase(questDatabase),
		// the server restarts once after initdb, so wait for the second notice
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(90*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("start %s: %w", image, err)
	}

	connString, err := ctr.ConnectionString(ctx, "sslmode=disable", "application_name=questload_test")
	if err != nil {
		_ = testcontainers.TerminateContainer(ctr)
		return nil, fmt.Errorf("connection string for %s: %w", image, err)
	}
	return &QuestDatabase{container: ctr, ConnString: connString}, nil
}
