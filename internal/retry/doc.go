// Package retry retries connection establishment with exponential backoff.
//
// Only the act of connecting is retried. Statements sent after a connection
// exists are never replayed: a failed insert or update aborts the import.
//
// # Example Usage
//
//	executor := retry.NewExecutor(
//	    retry.NewPostgreSQLErrorClassifier(),
//	    retry.NewExponentialBackoff(3),
//	)
//
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    return pool.Ping(ctx)
//	})
package retry
