package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testhelpers "github.com/vvka-141/questload/internal/testing"
	"github.com/vvka-141/questload/pkg/questload"
)

func TestWrapConnectionError(t *testing.T) {
	tests := []struct {
		name         string
		errMsg       string
		wantContains string
	}{
		{"connection refused", "dial tcp 127.0.0.1:5432: connection refused", "connection refused to db:5432"},
		{"actively refused", "No connection could be made because the target machine actively refused it", "connection refused to db:5432"},
		{"no such host", "dial tcp: lookup db: no such host", `cannot resolve host "db"`},
		{"password", `password authentication failed for user "loader"`, `password authentication failed for database "gamedata"`},
		{"missing database", `database "gamedata" does not exist`, "createdb gamedata"},
		{"timeout", "dial tcp: i/o timeout", "connection timed out to db:5432"},
		{"tls", "tls: failed to verify certificate", "SSL/TLS connection error"},
		{"too many", "sorry, too many connections for role", "too many connections"},
		{"other", "something else", "failed to connect to database"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := errors.New(tt.errMsg)
			err := wrapConnectionError(original, "db", 5432, "gamedata")
			assert.Contains(t, err.Error(), tt.wantContains)
			assert.ErrorIs(t, err, original)
		})
	}
}

func TestNewConnector(t *testing.T) {
	t.Run("standard", func(t *testing.T) {
		c, err := NewConnector(&questload.ConnectionConfig{AuthMethod: questload.AuthMethodStandard}, nil)
		require.NoError(t, err)
		assert.IsType(t, &StandardConnector{}, c)
	})

	t.Run("aws requires region", func(t *testing.T) {
		_, err := NewConnector(&questload.ConnectionConfig{
			Host: "db", Port: 5432, Username: "u", AuthMethod: questload.AuthMethodAWSIAM,
		}, nil)
		assert.ErrorIs(t, err, questload.ErrInvalidConfig)
	})

	t.Run("aws", func(t *testing.T) {
		c, err := NewConnector(&questload.ConnectionConfig{
			Host: "db", Port: 5432, Username: "u", AWSRegion: "eu-west-1", AuthMethod: questload.AuthMethodAWSIAM,
		}, nil)
		require.NoError(t, err)
		assert.IsType(t, &TokenBasedConnector{}, c)
	})

	t.Run("google requires instance", func(t *testing.T) {
		_, err := NewConnector(&questload.ConnectionConfig{Username: "u", AuthMethod: questload.AuthMethodGoogleIAM}, nil)
		assert.ErrorIs(t, err, questload.ErrInvalidConfig)
	})

	t.Run("google", func(t *testing.T) {
		c, err := NewConnector(&questload.ConnectionConfig{
			Username: "u", GoogleInstance: "p:r:i", AuthMethod: questload.AuthMethodGoogleIAM,
		}, nil)
		require.NoError(t, err)
		assert.IsType(t, &GoogleCloudSQLConnector{}, c)
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := NewConnector(&questload.ConnectionConfig{AuthMethod: questload.AuthMethod(42)}, nil)
		assert.ErrorIs(t, err, questload.ErrUnsupportedAuthMethod)
	})
}

type fakeTokenProvider struct {
	calls int
	err   error
}

func (f *fakeTokenProvider) GetToken(ctx context.Context) (string, time.Time, error) {
	f.calls++
	return "token", time.Now().Add(time.Hour), f.err
}

func (f *fakeTokenProvider) String() string { return "fake" }

func TestTokenBasedConnector_TokenFailure(t *testing.T) {
	provider := &fakeTokenProvider{err: errors.New("no credentials")}
	c := NewTokenBasedConnector(&questload.ConnectionConfig{Host: "db", Port: 5432}, provider, "Fake", nil)

	_, err := c.Connect(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, questload.ErrConnectionFailed)
	assert.Contains(t, err.Error(), "failed to acquire Fake token")
	assert.Equal(t, 1, provider.calls, "token errors are not transient")
}

func TestStandardConnector_Connect(t *testing.T) {
	connString := testhelpers.RequireDatabase(t)

	cfg, err := ParseConnectionString(connString)
	require.NoError(t, err)

	pool, err := NewStandardConnector(cfg, nil).Connect(context.Background())
	require.NoError(t, err)
	defer pool.Close()

	assert.Equal(t, int32(DefaultMaxConns), pool.Config().MaxConns)

	var one int
	require.NoError(t, pool.QueryRow(context.Background(), "SELECT 1").Scan(&one))
	assert.Equal(t, 1, one)
}

func TestStandardConnector_RefusedConnection(t *testing.T) {
	testhelpers.SkipIfShort(t)

	cfg := &questload.ConnectionConfig{
		Host: "127.0.0.1", Port: 1, Database: "postgres", Username: "u", SSLMode: "disable",
		ConnectTimeout: 2 * time.Second,
	}
	_, err := NewStandardConnector(cfg, nil).Connect(context.Background())
	require.Error(t, err)
	assert.Equal(t, questload.ExitConnectionError, questload.ExitCodeForError(err))
}
