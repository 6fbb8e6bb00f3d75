package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/srq20-api/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/srq20-api/pkg/config"
	"github.com/zatekoja/srq20-api/pkg/retry"
)

func TestNewClient_Unreachable(t *testing.T) {
	cfg := &config.DatabaseConfig{Host: "127.0.0.1", Port: 1, User: "postgres", Database: "srq20", SSLMode: "disable"}
	retryCfg := retry.Config{MaxAttempts: 2, InitialDelay: 10 * time.Millisecond, BackoffFactor: 2, MaxTotalTimeout: 5 * time.Second}

	client, err := postgres.NewClient(context.Background(), cfg, retryCfg)

	require.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), "failed to connect to PostgreSQL after retries")
	assert.Contains(t, err.Error(), "max retry attempts (2) exceeded")
}

func TestNewFromDB(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	client := postgres.NewFromDB(db)
	assert.Same(t, db, client.DB())

	mock.ExpectClose()
	assert.NoError(t, client.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}
