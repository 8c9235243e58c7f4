package questload

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connector opens a pool against the database holding the quest table,
// handling whichever authentication the ConnectionConfig selected. The
// caller closes the pool.
type Connector interface {
	Connect(ctx context.Context) (*pgxpool.Pool, error)
}
