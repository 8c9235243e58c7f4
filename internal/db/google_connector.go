package db

import (
	"context"
	"fmt"
	"net"

	"cloud.google.com/go/cloudsqlconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/questload/internal/logging"
	"github.com/vvka-141/questload/pkg/questload"
)

// GoogleCloudSQLConnector connects to a Cloud SQL instance with IAM database
// authentication. The dialer supplies both the TLS tunnel and the login token,
// so no password or sslmode applies.
//
// It is an io.Closer; stores opened from it close the dialer with the pool.
type GoogleCloudSQLConnector struct {
	config   *questload.ConnectionConfig
	instance string // project:region:instance
	logger   questload.Logger
	dialer   *cloudsqlconn.Dialer
}

func NewGoogleCloudSQLConnector(config *questload.ConnectionConfig, instance string, logger questload.Logger) *GoogleCloudSQLConnector {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &GoogleCloudSQLConnector{config: config, instance: instance, logger: logger}
}

func (c *GoogleCloudSQLConnector) Connect(ctx context.Context) (pool *pgxpool.Pool, err error) {
	if c.dialer == nil {
		c.dialer, err = cloudsqlconn.NewDialer(ctx, cloudsqlconn.WithIAMAuthN())
		if err != nil {
			return nil, fmt.Errorf("failed to create Cloud SQL dialer: %w: %w", questload.ErrConnectionFailed, err)
		}
	}
	defer func() {
		if err != nil {
			_ = c.Close()
		}
	}()

	// host is a placeholder; DialFunc ignores it
	poolConfig, err := pgxpool.ParseConfig(fmt.Sprintf(
		"host=%s user=%s dbname=%s sslmode=disable application_name=%s",
		"cloudsql", c.config.Username, c.config.Database, c.appName()))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w: %w", questload.ErrInvalidConfig, err)
	}
	poolConfig.ConnConfig.DialFunc = func(ctx context.Context, _, _ string) (net.Conn, error) {
		return c.dialer.Dial(ctx, c.instance)
	}
	configurePool(poolConfig, c.logger)

	pool, err = pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Cloud SQL instance %s: %w: %w", c.instance, questload.ErrConnectionFailed, err)
	}
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach Cloud SQL instance %s: %w: %w", c.instance, questload.ErrConnectionFailed, err)
	}

	c.logger.Verbose("Connected to Cloud SQL instance %s as %s", c.instance, c.config.Username)
	return pool, nil
}

func (c *GoogleCloudSQLConnector) appName() string {
	if c.config.AppName != "" {
		return c.config.AppName
	}
	return questload.AppName
}

// Close releases the dialer. It is safe to call more than once.
func (c *GoogleCloudSQLConnector) Close() error {
	if c.dialer == nil {
		return nil
	}
	err := c.dialer.Close()
	c.dialer = nil
	return err
}
