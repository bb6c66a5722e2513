package logging_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/nspcc-dev/glasschain/pkg/config"
	"github.com/nspcc-dev/glasschain/pkg/logging"
)

func TestNewDefaultsToInfo(t *testing.T) {
	log, err := logging.New(config.Logger{})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := logging.New(config.Logger{LogLevel: "not-a-level"})
	assert.Error(t, err)
}

func TestNewWritesToFile(t *testing.T) {
	dir := t.TempDir()
	log, err := logging.New(config.Logger{LogPath: dir + "/node.log"})
	require.NoError(t, err)
	log.Info("hello")
	require.NoError(t, log.Sync())
}
