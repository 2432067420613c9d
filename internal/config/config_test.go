package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirphl/simple-indicators/internal/indicator"
	"github.com/amirphl/simple-indicators/internal/validation"
)

func TestLoad_Flags(t *testing.T) {
	t.Setenv("DB_CONN_STR", "host=localhost dbname=candles")
	cfg, err := Load([]string{
		"-loader", "Postgres",
		"-symbols", "wallex:btcusdt,wallex:ethusdt",
		"-interval", "daily",
		"-from", "2024-01-01",
		"-to", "2024-02-01",
		"-indicator", "SMA:sma_20:close:20",
		"-indicator", "KAMA:kama_10:c:10:fast=2:slow=30",
	})
	require.NoError(t, err)

	assert.Equal(t, "Postgres", cfg.Loader)
	assert.Equal(t, []string{"wallex:btcusdt", "wallex:ethusdt"}, cfg.Symbols)
	assert.Equal(t, "daily", cfg.Interval)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), cfg.From)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), cfg.To)
	require.Len(t, cfg.Indicators, 2)
	assert.Equal(t, indicator.Spec{Family: "KAMA", UserName: "kama_10", Src: "c", Period: 10, Fast: 2, Slow: 30}, cfg.Indicators[1])
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
loader: "Wallex"
symbols: ["wallex:btcusdt"]
interval: "4h"
limit: 100
pacing: "500ms"
indicators:
  - { family: "ESMA", user_name: "esma_5", src: "close", period: 5, alpha: 0.3 }
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load([]string{"-config", path, "-limit", "7"})
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.Limit)
	assert.Equal(t, 500*time.Millisecond, cfg.Pacing)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	require.Len(t, cfg.Indicators, 1)
	assert.Equal(t, 0.3, cfg.Indicators[0].Alpha)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		field string
	}{
		{name: "no indicators", args: []string{"-symbols", "wallex:btcusdt"}, field: "Indicators"},
		{name: "unknown loader", args: []string{"-loader", "Memory", "-indicator", "SMA:s:close:3"}, field: "Loader"},
		{name: "postgres without conn", args: []string{"-loader", "Postgres", "-indicator", "SMA:s:close:3"}, field: "DBConnStr"},
		{name: "unknown interval", args: []string{"-interval", "2D", "-indicator", "SMA:s:close:3"}, field: "interval"},
		{name: "bad limit", args: []string{"-limit", "0", "-indicator", "SMA:s:close:3"}, field: "Limit"},
		{name: "bad date", args: []string{"-from", "01/02/2024", "-indicator", "SMA:s:close:3"}, field: "from"},
		{name: "reversed range", args: []string{"-from", "2024-02-01", "-to", "2024-01-01", "-indicator", "SMA:s:close:3"}, field: "from"},
		{name: "bad indicator", args: []string{"-indicator", "SMA:s:close"}, field: "indicator"},
	}

	t.Setenv("DB_CONN_STR", "")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.args)
			require.Error(t, err)
			var ve *validation.ValidationError
			require.True(t, errors.As(err, &ve), "unexpected error %v", err)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestLoad_EnvDefaults(t *testing.T) {
	t.Setenv("DB_CONN_STR", "host=db")
	t.Setenv("WALLEX_API_KEY", "key")

	cfg, err := Load([]string{"-loader", "Postgres", "-indicator", "SMA:s:close:3"})
	require.NoError(t, err)
	assert.Equal(t, "host=db", cfg.DBConnStr)
	assert.Equal(t, "key", cfg.WallexAPIKey)
}

func TestParseIndicator(t *testing.T) {
	spec, err := ParseIndicator("ESMA:e:open:5:alpha=0.25")
	require.NoError(t, err)
	assert.Equal(t, indicator.Spec{Family: "ESMA", UserName: "e", Src: "open", Period: 5, Alpha: 0.25}, spec)

	for _, bad := range []string{"SMA:s:close:x", "SMA:s:close:3:alpha", "SMA:s:close:3:beta=1", "KAMA:k:close:3:fast=two"} {
		_, err := ParseIndicator(bad)
		assert.Error(t, err, bad)
	}
}
