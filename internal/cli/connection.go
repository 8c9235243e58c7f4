package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vvka-141/questload/internal/config"
	"github.com/vvka-141/questload/internal/db"
	"github.com/vvka-141/questload/internal/store"
	"github.com/vvka-141/questload/pkg/questload"
)

// connectionFlags holds the common connection-related flag values.
type connectionFlags struct {
	connection     string
	host           string
	port           int
	username       string
	database       string
	sslMode        string
	authMethod     string
	azureTenantID  string
	azureClientID  string
	awsRegion      string
	googleInstance string
}

// storeFlags selects the destination database.
type storeFlags struct {
	driver     string
	sqlitePath string
	table      string
}

func addConnectionFlags(cmd *cobra.Command, f *connectionFlags) {
	flags := cmd.Flags()

	flags.StringVar(&f.connection, "connection", "",
		"PostgreSQL connection string (URI or ADO.NET format).\n"+
			"Mutually exclusive with granular flags (--host, --port, --username, --sslmode).\n"+
			"Alternative: QUESTLOAD_CONNECTION_STRING or DATABASE_URL environment variable.\n"+
			"Example: postgresql://user@localhost:5432/gamedata")

	flags.StringVarP(&f.host, "host", "h", "",
		"PostgreSQL server host\n"+
			"Precedence: --host > $PGHOST > questload.yaml > localhost")
	flags.IntVarP(&f.port, "port", "p", 0,
		"PostgreSQL server port\n"+
			"Precedence: --port > $PGPORT > questload.yaml > 5432")
	flags.StringVarP(&f.username, "username", "U", "",
		"PostgreSQL user (default: $PGUSER or current OS user)")
	flags.StringVarP(&f.database, "database", "d", "",
		"Database holding the quest table (overrides the connection string database)")
	flags.StringVar(&f.sslMode, "sslmode", "",
		"SSL mode: disable|allow|prefer|require|verify-ca|verify-full\n"+
			"(default: prefer, or $PGSSLMODE)")

	flags.StringVar(&f.authMethod, "auth-method", "",
		"Authentication method: standard|aws|google|azure (default: standard)")
	flags.StringVar(&f.azureTenantID, "azure-tenant-id", "",
		"Azure AD tenant/directory ID (overrides $AZURE_TENANT_ID)")
	flags.StringVar(&f.azureClientID, "azure-client-id", "",
		"Azure AD application/client ID (overrides $AZURE_CLIENT_ID)")
	flags.StringVar(&f.awsRegion, "aws-region", "",
		"AWS region for RDS IAM authentication (overrides $AWS_REGION)")
	flags.StringVar(&f.googleInstance, "google-instance", "",
		"Cloud SQL instance connection name (project:region:instance)")
}

func addStoreFlags(cmd *cobra.Command, f *storeFlags) {
	cmd.Flags().StringVar(&f.driver, "driver", "",
		"Destination database: postgres|sqlite (default: postgres, or store.driver in questload.yaml)")
	cmd.Flags().StringVar(&f.sqlitePath, "sqlite-path", "",
		"SQLite database file used with --driver sqlite (default: "+questload.DefaultSQLitePath+")")
	cmd.Flags().StringVar(&f.table, "table", "",
		"Destination table name (default: "+questload.DefaultTableName+")")
}

// resolveConnection resolves PostgreSQL connection parameters from flags,
// the environment and the project config.
func resolveConnection(flags connectionFlags, projectCfg *config.ProjectConfig) (*questload.ConnectionConfig, error) {
	granular := &db.GranularConnFlags{
		Host:     flags.host,
		Port:     flags.port,
		Username: flags.username,
		Database: flags.database,
		SSLMode:  flags.sslMode,
	}
	cloud := &db.CloudFlags{
		AuthMethod:     flags.authMethod,
		AzureTenantID:  flags.azureTenantID,
		AzureClientID:  flags.azureClientID,
		AWSRegion:      flags.awsRegion,
		GoogleInstance: flags.googleInstance,
	}
	return db.ResolveConnectionParams(flags.connection, granular, cloud, db.LoadFromEnvironment(), projectCfg)
}

// resolveTable returns --table, then the configured table, then the default.
func resolveTable(flags storeFlags, projectCfg *config.ProjectConfig) (string, error) {
	table := flags.table
	if table == "" {
		table = projectCfg.TableName()
	}
	if !questload.IsValidIdentifier(table) {
		return "", fmt.Errorf("table name %q is not a plain SQL identifier: %w", table, questload.ErrInvalidConfig)
	}
	return table, nil
}

// resolveDriver returns --driver, then store.driver, then postgres.
func resolveDriver(flags storeFlags, projectCfg *config.ProjectConfig) (string, error) {
	if flags.driver != "" {
		return (&config.ProjectConfig{Store: config.StoreConfig{Driver: flags.driver}}).Driver()
	}
	return projectCfg.Driver()
}

// buildStoreFactory wires the selected driver into a store factory.
func buildStoreFactory(
	conn connectionFlags,
	storeOpts storeFlags,
	projectCfg *config.ProjectConfig,
	logger questload.Logger,
) (questload.StoreFactory, error) {
	driver, err := resolveDriver(storeOpts, projectCfg)
	if err != nil {
		return nil, err
	}

	if driver == config.DriverSQLite {
		path := storeOpts.sqlitePath
		if path == "" && projectCfg != nil {
			path = projectCfg.Store.SQLitePath
		}
		if path == "" {
			path = questload.DefaultSQLitePath
		}
		logger.Verbose("Using SQLite database %s", path)
		return store.SQLiteFactory(path, logger), nil
	}

	connConfig, err := resolveConnection(conn, projectCfg)
	if err != nil {
		return nil, err
	}
	logger.Verbose("Connection resolved: %s (auth: %s)", db.RedactConnectionString(connConfig), connConfig.AuthMethod)

	// Cloud connectors fetch credentials on creation; build them on open.
	return func(ctx context.Context, tableName string) (questload.QuestStore, error) {
		connector, err := db.NewConnector(connConfig, logger)
		if err != nil {
			return nil, err
		}
		return store.PostgresFactory(connector, logger)(ctx, tableName)
	}, nil
}
