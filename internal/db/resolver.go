package db

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/vvka-141/questload/internal/config"
	"github.com/vvka-141/questload/pkg/questload"
)

// GranularConnFlags represents connection parameters from CLI flags.
// These follow PostgreSQL standard flag conventions (-h, -p, -U, -d).
//
// Password is not a flag; use $PGPASSWORD or a connection string.
type GranularConnFlags struct {
	Host     string
	Port     int
	Username string
	Database string
	SSLMode  string
}

// IsEmpty returns true if no connection-related granular flags were provided.
// Database is excluded: it may override the database of a connection string.
func (g *GranularConnFlags) IsEmpty() bool {
	return g.Host == "" && g.Port == 0 && g.Username == "" && g.SSLMode == ""
}

// CloudFlags selects and configures cloud IAM authentication.
// The Azure client secret is only read from $AZURE_CLIENT_SECRET.
type CloudFlags struct {
	AuthMethod     string
	AzureTenantID  string
	AzureClientID  string
	AWSRegion      string
	GoogleInstance string
}

// EnvVars holds the environment variables consulted during resolution.
// See: https://www.postgresql.org/docs/current/libpq-envars.html
type EnvVars struct {
	QUESTLOAD_CONNECTION_STRING string
	DATABASE_URL                string

	PGHOST     string
	PGPORT     string
	PGUSER     string
	PGPASSWORD string
	PGDATABASE string
	PGSSLMODE  string

	AZURE_TENANT_ID     string
	AZURE_CLIENT_ID     string
	AZURE_CLIENT_SECRET string

	AWS_REGION string
}

// LoadFromEnvironment reads EnvVars from the process environment.
func LoadFromEnvironment() *EnvVars {
	return &EnvVars{
		QUESTLOAD_CONNECTION_STRING: os.Getenv("QUESTLOAD_CONNECTION_STRING"),
		DATABASE_URL:                os.Getenv("DATABASE_URL"),
		PGHOST:                      os.Getenv("PGHOST"),
		PGPORT:                      os.Getenv("PGPORT"),
		PGUSER:                      os.Getenv("PGUSER"),
		PGPASSWORD:                  os.Getenv("PGPASSWORD"),
		PGDATABASE:                  os.Getenv("PGDATABASE"),
		PGSSLMODE:                   os.Getenv("PGSSLMODE"),
		AZURE_TENANT_ID:             os.Getenv("AZURE_TENANT_ID"),
		AZURE_CLIENT_ID:             os.Getenv("AZURE_CLIENT_ID"),
		AZURE_CLIENT_SECRET:         os.Getenv("AZURE_CLIENT_SECRET"),
		AWS_REGION:                  os.Getenv("AWS_REGION"),
	}
}

// connectionStringFromEnv returns the first connection string set in the environment.
func (e *EnvVars) connectionStringFromEnv() string {
	if e.QUESTLOAD_CONNECTION_STRING != "" {
		return e.QUESTLOAD_CONNECTION_STRING
	}
	return e.DATABASE_URL
}

// ParseAuthMethod maps a user-facing name to an AuthMethod.
// The empty string means standard authentication.
func ParseAuthMethod(name string) (questload.AuthMethod, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "standard", "password":
		return questload.AuthMethodStandard, nil
	case "aws", "aws-iam", "awsiam":
		return questload.AuthMethodAWSIAM, nil
	case "google", "gcp", "google-iam", "googleiam":
		return questload.AuthMethodGoogleIAM, nil
	case "azure", "entra", "azure-entra-id", "azureentraid":
		return questload.AuthMethodAzureEntraID, nil
	default:
		return questload.AuthMethodStandard, fmt.Errorf(
			"unknown auth method %q (use standard, aws, google or azure): %w", name, questload.ErrUnsupportedAuthMethod)
	}
}

// ResolveConnectionParams resolves connection parameters with this precedence:
//
//  1. Connection string flag (--connection)
//  2. $QUESTLOAD_CONNECTION_STRING, then $DATABASE_URL, when no granular flags are set
//  3. Granular flags (-h, -p, -U, -d, --sslmode)
//  4. PostgreSQL environment variables (PGHOST, PGPORT, ...)
//  5. questload.yaml connection block
//  6. Defaults (localhost:5432/postgres, sslmode=prefer)
//
// A database flag overrides the database of a connection string.
// Returns an error if both --connection and granular flags are provided.
func ResolveConnectionParams(
	connStringFlag string,
	granularFlags *GranularConnFlags,
	cloudFlags *CloudFlags,
	envVars *EnvVars,
	projectConfig *config.ProjectConfig,
) (*questload.ConnectionConfig, error) {
	if granularFlags == nil {
		granularFlags = &GranularConnFlags{}
	}
	if cloudFlags == nil {
		cloudFlags = &CloudFlags{}
	}
	if envVars == nil {
		envVars = &EnvVars{}
	}

	if connStringFlag != "" && !granularFlags.IsEmpty() {
		return nil, fmt.Errorf(
			"cannot specify both --connection and granular flags (-h, -p, -U, --sslmode)\n"+
				"Choose one approach:\n"+
				"  1. Connection string: --connection \"postgresql://user@localhost:5432/gamedata\"\n"+
				"  2. Granular flags: -h localhost -p 5432 -U myuser -d gamedata\n"+
				"  3. Environment variables: export PGHOST=localhost PGPORT=5432 PGUSER=myuser: %w",
			questload.ErrInvalidConfig,
		)
	}

	var (
		cfg *questload.ConnectionConfig
		err error
	)
	switch {
	case connStringFlag != "":
		cfg, err = resolveFromConnectionString(connStringFlag, granularFlags, envVars)
	case granularFlags.IsEmpty() && envVars.connectionStringFromEnv() != "":
		cfg, err = resolveFromConnectionString(envVars.connectionStringFromEnv(), granularFlags, envVars)
	default:
		cfg, err = resolveFromGranularParams(granularFlags, envVars, projectConfig)
	}
	if err != nil {
		return nil, err
	}

	if cfg.AppName == "" {
		cfg.AppName = questload.AppName
	}

	if err := applyCloudAuth(cfg, cloudFlags, envVars, projectConfig); err != nil {
		return nil, err
	}
	return cfg, nil
}

func resolveFromConnectionString(connStr string, flags *GranularConnFlags, envVars *EnvVars) (*questload.ConnectionConfig, error) {
	cfg, err := ParseConnectionString(connStr)
	if err != nil {
		return nil, fmt.Errorf("invalid connection string: %w", err)
	}

	if flags.Database != "" {
		cfg.Database = flags.Database
	}
	// libpq treats the environment as a fallback for parameters the string omits.
	if cfg.Password == "" && envVars.PGPASSWORD != "" {
		cfg.Password = envVars.PGPASSWORD
	}
	return cfg, nil
}

// resolveFromGranularParams applies flag > environment > questload.yaml > default
// for each parameter.
func resolveFromGranularParams(
	flags *GranularConnFlags,
	envVars *EnvVars,
	projectConfig *config.ProjectConfig,
) (*questload.ConnectionConfig, error) {
	var pc config.ConnectionConfig
	if projectConfig != nil {
		pc = projectConfig.Connection
	}

	cfg := newDefaultConfig()
	cfg.Host = firstNonEmpty(flags.Host, envVars.PGHOST, pc.Host, defaultHost)
	cfg.Database = firstNonEmpty(flags.Database, envVars.PGDATABASE, pc.Database, defaultDatabase)
	cfg.SSLMode = firstNonEmpty(flags.SSLMode, envVars.PGSSLMODE, pc.SSLMode, defaultSSLMode)
	cfg.Username = firstNonEmpty(flags.Username, envVars.PGUSER, pc.Username, os.Getenv("USER"), os.Getenv("USERNAME"))
	cfg.Password = envVars.PGPASSWORD

	switch {
	case flags.Port != 0:
		cfg.Port = flags.Port
	case envVars.PGPORT != "":
		port, err := strconv.Atoi(envVars.PGPORT)
		if err != nil {
			return nil, fmt.Errorf("invalid $PGPORT value '%s': must be an integer: %w", envVars.PGPORT, questload.ErrInvalidConfig)
		}
		cfg.Port = port
	case pc.Port != 0:
		cfg.Port = pc.Port
	}

	return cfg, nil
}

// applyCloudAuth selects the authentication method and attaches cloud settings.
// An explicit method (flag, then questload.yaml) wins; otherwise Azure
// credentials in flags or environment switch to Azure Entra ID.
func applyCloudAuth(cfg *questload.ConnectionConfig, flags *CloudFlags, env *EnvVars, projectConfig *config.ProjectConfig) error {
	var pc config.ConnectionConfig
	if projectConfig != nil {
		pc = projectConfig.Connection
	}

	cfg.AzureTenantID = firstNonEmpty(flags.AzureTenantID, env.AZURE_TENANT_ID, pc.AzureTenantID)
	cfg.AzureClientID = firstNonEmpty(flags.AzureClientID, env.AZURE_CLIENT_ID, pc.AzureClientID)
	cfg.AzureClientSecret = env.AZURE_CLIENT_SECRET
	cfg.AWSRegion = firstNonEmpty(flags.AWSRegion, env.AWS_REGION, pc.AWSRegion)
	cfg.GoogleInstance = firstNonEmpty(flags.GoogleInstance, pc.GoogleInstance)

	name := firstNonEmpty(flags.AuthMethod, pc.AuthMethod)
	if name == "" {
		if flags.AzureTenantID != "" || flags.AzureClientID != "" ||
			env.AZURE_TENANT_ID != "" || env.AZURE_CLIENT_ID != "" {
			cfg.AuthMethod = questload.AuthMethodAzureEntraID
		}
		return nil
	}

	method, err := ParseAuthMethod(name)
	if err != nil {
		return err
	}
	cfg.AuthMethod = method
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
