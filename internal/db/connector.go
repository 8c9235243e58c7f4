package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/questload/internal/logging"
	"github.com/vvka-141/questload/internal/retry"
	"github.com/vvka-141/questload/pkg/questload"
)

// Connection pool configuration constants
const (
	// DefaultMaxConns is one: an import runs on a single connection.
	DefaultMaxConns = 1

	// DefaultMaxConnIdleTime keeps the connection alive across slow sheet reads.
	DefaultMaxConnIdleTime = 30 * time.Minute
)

func configurePool(poolConfig *pgxpool.Config, logger questload.Logger) {
	poolConfig.MaxConns = DefaultMaxConns
	poolConfig.MinConns = 0
	poolConfig.MaxConnIdleTime = DefaultMaxConnIdleTime
	poolConfig.ConnConfig.OnNotice = func(_ *pgconn.PgConn, notice *pgconn.Notice) {
		logger.Verbose("%s: %s", notice.Severity, notice.Message)
	}
}

func newRetryExecutor(logger questload.Logger) *retry.Executor {
	classifier := retry.NewPostgreSQLErrorClassifier()
	strategy := retry.NewExponentialBackoff(questload.DefaultRetryMaxAttempts,
		retry.WithInitialDelay(questload.DefaultRetryInitialDelay),
		retry.WithMaxDelay(questload.DefaultRetryMaxDelay),
	)

	return retry.NewExecutor(classifier, strategy).WithOnRetry(func(attempt int, err error, delay time.Duration) {
		logger.Verbose("Connection attempt %d failed, retrying in %v: %v", attempt, delay, err)
	})
}

// StandardConnector implements the Connector interface for standard
// username/password authentication with automatic retry on transient failures.
type StandardConnector struct {
	config        *questload.ConnectionConfig
	logger        questload.Logger
	retryExecutor *retry.Executor
}

// NewStandardConnector creates a new StandardConnector with the given configuration.
// Retry behavior uses the questload defaults: DefaultRetryMaxAttempts attempts,
// exponential backoff starting at DefaultRetryInitialDelay, max DefaultRetryMaxDelay.
func NewStandardConnector(config *questload.ConnectionConfig, logger questload.Logger) *StandardConnector {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &StandardConnector{
		config:        config,
		logger:        logger,
		retryExecutor: newRetryExecutor(logger),
	}
}

// Connect establishes a connection pool using standard authentication with automatic retry.
func (c *StandardConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	return connectWithRetry(ctx, c.retryExecutor, c.config, c.logger, func(context.Context) (string, error) {
		return BuildConnectionString(c.config), nil
	})
}

// connectWithRetry opens a pool with the connection string produced by
// connString and pings it, retrying transient failures.
func connectWithRetry(
	ctx context.Context,
	executor *retry.Executor,
	config *questload.ConnectionConfig,
	logger questload.Logger,
	connString func(context.Context) (string, error),
) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool

	err := executor.Execute(ctx, func(ctx context.Context) error {
		connStr, err := connString(ctx)
		if err != nil {
			return err
		}

		poolConfig, err := pgxpool.ParseConfig(connStr)
		if err != nil {
			return fmt.Errorf("failed to parse connection config: %w", err)
		}

		configurePool(poolConfig, logger)

		p, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return wrapConnectionError(err, config.Host, config.Port, config.Database)
		}

		if err := p.Ping(ctx); err != nil {
			p.Close()
			return wrapConnectionError(err, config.Host, config.Port, config.Database)
		}

		pool = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", questload.ErrConnectionFailed, err)
	}

	logger.Verbose("Connected to %s:%d/%s", config.Host, config.Port, config.Database)
	return pool, nil
}

// NewConnector is a factory function that creates the appropriate Connector
// based on the ConnectionConfig's AuthMethod.
func NewConnector(config *questload.ConnectionConfig, logger questload.Logger) (questload.Connector, error) {
	if logger == nil {
		logger = logging.NewNullLogger()
	}

	switch config.AuthMethod {
	case questload.AuthMethodStandard:
		return NewStandardConnector(config, logger), nil
	case questload.AuthMethodAWSIAM:
		return newAWSConnector(config, logger)
	case questload.AuthMethodGoogleIAM:
		return newGoogleConnector(config, logger)
	case questload.AuthMethodAzureEntraID:
		return newAzureConnector(config, logger)
	default:
		return nil, fmt.Errorf("unsupported auth method %v: %w", config.AuthMethod, questload.ErrUnsupportedAuthMethod)
	}
}

// wrapConnectionError wraps raw pgx connection errors with actionable guidance.
func wrapConnectionError(err error, host string, port int, database string) error {
	errStr := strings.ToLower(err.Error())
	addr := fmt.Sprintf("%s:%d", host, port)

	switch {
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		return fmt.Errorf(`connection refused to %s

Possible causes:
  - PostgreSQL is not running (check: pg_isready -h %s -p %d)
  - Wrong host or port
  - Firewall blocking the connection

Original error: %w`, addr, host, port, err)

	case strings.Contains(errStr, "no such host") || strings.Contains(errStr, "no host"):
		return fmt.Errorf(`cannot resolve host "%s"

Possible causes:
  - Hostname is misspelled
  - DNS is not configured or reachable

Original error: %w`, host, err)

	case strings.Contains(errStr, "password authentication failed"):
		return fmt.Errorf(`password authentication failed for database "%s"

Possible causes:
  - Wrong password (check $PGPASSWORD or the connection string)
  - Wrong username
  - User does not have access to the database

Original error: %w`, database, err)

	case strings.Contains(errStr, "does not exist"):
		return fmt.Errorf(`database "%s" does not exist

questload creates the quest table but not the database. To create it:
  createdb %s

Original error: %w`, database, database, err)

	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out"):
		return fmt.Errorf(`connection timed out to %s

Possible causes:
  - Server is overloaded or unresponsive
  - Firewall silently dropping packets
  - Wrong host/port (server not listening)

Original error: %w`, addr, err)

	case strings.Contains(errStr, "ssl") || strings.Contains(errStr, "tls"):
		return fmt.Errorf(`SSL/TLS connection error

Possible causes:
  - Server requires SSL but --sslmode is wrong
  - Certificate verification failed (try --sslmode=require)

Original error: %w`, err)

	case strings.Contains(errStr, "too many connections"):
		return fmt.Errorf(`too many connections to database "%s"

The server's max_connections limit has been reached.

Original error: %w`, database, err)

	default:
		return fmt.Errorf("failed to connect to database: %w", err)
	}
}

// newAWSConnector creates a token-based connector with the AWS IAM token provider.
func newAWSConnector(config *questload.ConnectionConfig, logger questload.Logger) (questload.Connector, error) {
	tokenProvider, err := NewRDSTokenProvider(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS IAM token provider: %w", err)
	}

	return NewTokenBasedConnector(config, tokenProvider, "AWS IAM", logger), nil
}

// newGoogleConnector creates a GoogleCloudSQLConnector for Google Cloud SQL IAM authentication.
func newGoogleConnector(config *questload.ConnectionConfig, logger questload.Logger) (questload.Connector, error) {
	if config.GoogleInstance == "" {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth requires --google-instance (project:region:instance): %w", questload.ErrInvalidConfig)
	}
	if config.Username == "" {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth requires username (-U): %w", questload.ErrInvalidConfig)
	}

	return NewGoogleCloudSQLConnector(config, config.GoogleInstance, logger), nil
}

// newAzureConnector creates a token-based connector for Azure Entra ID.
func newAzureConnector(config *questload.ConnectionConfig, logger questload.Logger) (questload.Connector, error) {
	tokenProvider, err := NewEntraTokenProvider(config)
	if err != nil {
		return nil, err
	}
	return NewTokenBasedConnector(config, tokenProvider, "Azure", logger), nil
}
