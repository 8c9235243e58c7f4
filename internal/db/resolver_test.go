package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/questload/internal/config"
	"github.com/vvka-141/questload/pkg/questload"
)

func TestResolveConnectionParams_Precedence(t *testing.T) {
	project := &config.ProjectConfig{Connection: config.ConnectionConfig{
		Host:     "yaml-host",
		Port:     6000,
		Username: "yaml-user",
		Database: "yaml-db",
		SSLMode:  "verify-full",
	}}

	t.Run("connection flag wins over environment", func(t *testing.T) {
		env := &EnvVars{QUESTLOAD_CONNECTION_STRING: "postgresql://env@env-host/envdb", PGHOST: "pg-host"}
		cfg, err := ResolveConnectionParams("postgresql://flag@flag-host/flagdb", nil, nil, env, project)
		require.NoError(t, err)
		assert.Equal(t, "flag-host", cfg.Host)
		assert.Equal(t, "flagdb", cfg.Database)
	})

	t.Run("QUESTLOAD_CONNECTION_STRING before DATABASE_URL", func(t *testing.T) {
		env := &EnvVars{
			QUESTLOAD_CONNECTION_STRING: "postgresql://a@questload-host/db",
			DATABASE_URL:                "postgresql://b@database-url-host/db",
		}
		cfg, err := ResolveConnectionParams("", nil, nil, env, project)
		require.NoError(t, err)
		assert.Equal(t, "questload-host", cfg.Host)
	})

	t.Run("DATABASE_URL used without granular flags", func(t *testing.T) {
		env := &EnvVars{DATABASE_URL: "postgresql://b@database-url-host/db", PGPASSWORD: "envpass"}
		cfg, err := ResolveConnectionParams("", nil, nil, env, project)
		require.NoError(t, err)
		assert.Equal(t, "database-url-host", cfg.Host)
		assert.Equal(t, "envpass", cfg.Password)
	})

	t.Run("granular flags ignore env connection strings", func(t *testing.T) {
		env := &EnvVars{DATABASE_URL: "postgresql://b@database-url-host/db"}
		cfg, err := ResolveConnectionParams("", &GranularConnFlags{Host: "flag-host"}, nil, env, project)
		require.NoError(t, err)
		assert.Equal(t, "flag-host", cfg.Host)
		assert.Equal(t, 6000, cfg.Port)
	})

	t.Run("PG env vars before questload.yaml", func(t *testing.T) {
		env := &EnvVars{PGHOST: "pg-host", PGPORT: "7000", PGUSER: "pg-user", PGDATABASE: "pg-db"}
		cfg, err := ResolveConnectionParams("", nil, nil, env, project)
		require.NoError(t, err)
		assert.Equal(t, "pg-host", cfg.Host)
		assert.Equal(t, 7000, cfg.Port)
		assert.Equal(t, "pg-user", cfg.Username)
		assert.Equal(t, "pg-db", cfg.Database)
		assert.Equal(t, "verify-full", cfg.SSLMode)
	})

	t.Run("questload.yaml before defaults", func(t *testing.T) {
		cfg, err := ResolveConnectionParams("", nil, nil, &EnvVars{}, project)
		require.NoError(t, err)
		assert.Equal(t, "yaml-host", cfg.Host)
		assert.Equal(t, 6000, cfg.Port)
		assert.Equal(t, "yaml-user", cfg.Username)
		assert.Equal(t, "yaml-db", cfg.Database)
	})

	t.Run("defaults", func(t *testing.T) {
		cfg, err := ResolveConnectionParams("", nil, nil, &EnvVars{}, nil)
		require.NoError(t, err)
		assert.Equal(t, "localhost", cfg.Host)
		assert.Equal(t, 5432, cfg.Port)
		assert.Equal(t, "postgres", cfg.Database)
		assert.Equal(t, "prefer", cfg.SSLMode)
		assert.Equal(t, questload.AppName, cfg.AppName)
		assert.Equal(t, questload.AuthMethodStandard, cfg.AuthMethod)
	})
}

func TestResolveConnectionParams_DatabaseFlagOverridesConnectionString(t *testing.T) {
	cfg, err := ResolveConnectionParams("postgresql://u@h/original", &GranularConnFlags{Database: "override"}, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "override", cfg.Database)
}

func TestResolveConnectionParams_ConflictingFlags(t *testing.T) {
	_, err := ResolveConnectionParams("postgresql://u@h/db", &GranularConnFlags{Host: "other"}, nil, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, questload.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "cannot specify both")
}

func TestResolveConnectionParams_InvalidPGPORT(t *testing.T) {
	_, err := ResolveConnectionParams("", nil, nil, &EnvVars{PGPORT: "abc"}, nil)
	assert.ErrorIs(t, err, questload.ErrInvalidConfig)
}

func TestResolveConnectionParams_AuthMethod(t *testing.T) {
	t.Run("azure env switches to Entra ID", func(t *testing.T) {
		env := &EnvVars{AZURE_TENANT_ID: "tenant", AZURE_CLIENT_ID: "client", AZURE_CLIENT_SECRET: "secret"}
		cfg, err := ResolveConnectionParams("", nil, nil, env, nil)
		require.NoError(t, err)
		assert.Equal(t, questload.AuthMethodAzureEntraID, cfg.AuthMethod)
		assert.Equal(t, "secret", cfg.AzureClientSecret)
	})

	t.Run("explicit flag wins over azure env", func(t *testing.T) {
		env := &EnvVars{AZURE_CLIENT_ID: "client", AWS_REGION: "eu-west-1"}
		cfg, err := ResolveConnectionParams("", nil, &CloudFlags{AuthMethod: "aws"}, env, nil)
		require.NoError(t, err)
		assert.Equal(t, questload.AuthMethodAWSIAM, cfg.AuthMethod)
		assert.Equal(t, "eu-west-1", cfg.AWSRegion)
	})

	t.Run("questload.yaml auth method", func(t *testing.T) {
		project := &config.ProjectConfig{Connection: config.ConnectionConfig{AuthMethod: "google", GoogleInstance: "p:r:i"}}
		cfg, err := ResolveConnectionParams("", nil, nil, &EnvVars{}, project)
		require.NoError(t, err)
		assert.Equal(t, questload.AuthMethodGoogleIAM, cfg.AuthMethod)
		assert.Equal(t, "p:r:i", cfg.GoogleInstance)
	})

	t.Run("unknown method", func(t *testing.T) {
		_, err := ResolveConnectionParams("", nil, &CloudFlags{AuthMethod: "kerberos"}, &EnvVars{}, nil)
		assert.ErrorIs(t, err, questload.ErrUnsupportedAuthMethod)
	})
}

func TestParseAuthMethod(t *testing.T) {
	tests := map[string]questload.AuthMethod{
		"":               questload.AuthMethodStandard,
		"Standard":       questload.AuthMethodStandard,
		"aws-iam":        questload.AuthMethodAWSIAM,
		"GCP":            questload.AuthMethodGoogleIAM,
		"azure-entra-id": questload.AuthMethodAzureEntraID,
	}
	for in, want := range tests {
		got, err := ParseAuthMethod(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}
