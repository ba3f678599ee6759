package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	t.Run("parses level", func(t *testing.T) {
		logger, err := New("debug", false)
		require.NoError(t, err)
		assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		logger, err := New("loud", true)
		require.NoError(t, err)
		assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
		assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	})
}

func TestWhatsAppAdapter(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	wa := WhatsApp(zap.New(core), "Client")

	wa.Infof("connected as %s", "bot")
	wa.Sub("Socket").Warnf("retry %d", 2)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "connected as bot", entries[0].Message)
	assert.Equal(t, "Client", entries[0].LoggerName)
	assert.Equal(t, "retry 2", entries[1].Message)
	assert.Equal(t, "Client.Socket", entries[1].LoggerName)
}
