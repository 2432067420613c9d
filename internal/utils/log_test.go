package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	SetLogger(zap.New(core))
	defer SetLogger(nil)

	GetLogger().Info("Indicator | computed", zap.String("name", "sma_1"))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "sma_1", logs.All()[0].ContextMap()["name"])
}

func TestInitLogger(t *testing.T) {
	defer SetLogger(nil)

	_, err := InitLogger("verbose", nil)
	assert.Error(t, err)

	l, err := InitLogger("debug", []string{"stderr"})
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zap.DebugLevel))
	assert.Same(t, l, GetLogger())
}

func TestGetLoggerDefault(t *testing.T) {
	SetLogger(nil)
	assert.NotNil(t, GetLogger())
}
