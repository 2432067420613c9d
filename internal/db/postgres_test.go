package db

import (
	"context"
	"testing"
	"time"

	dbconf "github.com/amirphl/simple-indicators/internal/db/conf"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupPostgres(t *testing.T) *Default {
	t.Helper()
	cfg, cleanup := dbconf.NewTestConfig(t, Schema)
	require.NotNil(t, cfg)
	t.Cleanup(cleanup)

	p, err := New(*cfg)
	require.NoError(t, err)
	return p
}

func TestPostgres_SaveAndGetCandles(t *testing.T) {
	p := setupPostgres(t)
	ctx := context.Background()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, p.SaveCandles(ctx, createTestCandles("BINANCE:BTCUSDT", "test", start, 10)))
	// upsert keeps one row per key
	require.NoError(t, p.SaveCandles(ctx, createTestCandles("BINANCE:BTCUSDT", "test", start, 10)))

	got, err := p.GetCandles(ctx, "BINANCE:BTCUSDT", "1m", "test", start, start.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 10)
	assert.True(t, got[0].Timestamp.Before(got[9].Timestamp))
	assert.Equal(t, 100.0, got[0].Open)

	count, err := p.GetCandleCount(ctx, "BINANCE:BTCUSDT", "1m", start, start.Add(5*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestPostgres_GetLatestCandles(t *testing.T) {
	p := setupPostgres(t)
	ctx := context.Background()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, p.SaveCandles(ctx, createTestCandles("A:B", "wallex", start, 10)))
	require.NoError(t, p.SaveCandles(ctx, createTestCandles("A:B", "db", start, 10)))

	got, err := p.GetLatestCandles(ctx, "A:B", "1m", 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, start.Add(7*time.Minute), got[0].Timestamp)
	assert.Equal(t, "db", got[2].Source)
}

func TestPostgres_GetCandlesOrdersSourcesPerTimestamp(t *testing.T) {
	p := setupPostgres(t)
	ctx := context.Background()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, p.SaveCandles(ctx, createTestCandles("A:B", "wallex", start, 5)))
	require.NoError(t, p.SaveCandles(ctx, createTestCandles("A:B", "db", start, 5)))

	got, err := p.GetCandles(ctx, "A:B", "1m", "", start, start.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 10)
	for i := 0; i < len(got); i += 2 {
		assert.Equal(t, "db", got[i].Source)
		assert.Equal(t, "wallex", got[i+1].Source)
		assert.True(t, got[i].Timestamp.Equal(got[i+1].Timestamp))
	}
}

func TestPostgres_DeleteCandlesInTransaction(t *testing.T) {
	p := setupPostgres(t)
	ctx := context.Background()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, p.SaveCandles(ctx, createTestCandles("A:B", "test", start, 10)))

	tx, err := p.GetDB().BeginTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, p.DeleteCandles(WithTransaction(ctx, tx), "A:B", "1m", start.Add(5*time.Minute)))
	require.NoError(t, tx.Rollback())

	count, err := p.GetCandleCount(ctx, "A:B", "1m", start, start.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 10, count)
}

func TestPostgres_Migrate(t *testing.T) {
	p := setupPostgres(t)
	assert.NoError(t, p.Migrate(context.Background()))
}

func TestSplitSchema(t *testing.T) {
	with := dbconf.SplitSchema(Schema, true)
	without := dbconf.SplitSchema(Schema, false)
	assert.Len(t, with, 3)
	assert.Len(t, without, 2)
}
