package database

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/products-ms/internal/config"
	"github.com/Pesokrava/products-ms/internal/pkg/logger"
)

func unreachableConfig() *config.Config {
	return &config.Config{
		Database: config.DatabaseConfig{
			Host:    "127.0.0.1",
			Port:    "1",
			User:    "postgres",
			Name:    "products",
			SSLMode: "disable",
		},
	}
}

func TestWaitForDB_LogsEachRetry(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithOptions("production", logger.Options{Out: &buf})

	db, err := WaitForDB(context.Background(), unreachableConfig(), log, 3, time.Millisecond)

	require.Error(t, err)
	assert.Nil(t, db)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Contains(t, buf.String(), "attempt 1/3")
	assert.Contains(t, buf.String(), "attempt 2/3")
	assert.NotContains(t, buf.String(), "attempt 3/3")
	assert.Contains(t, buf.String(), `"database":"products"`)
}

func TestWaitForDB_StopsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	_, err := WaitForDB(ctx, unreachableConfig(), logger.New("test"), 10, time.Minute)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 5*time.Second)
}
