package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nspcc-dev/glasschain/pkg/config"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := config.Default()
	assert.NoError(t, cfg.ProtocolConfiguration.Validate())
	assert.NoError(t, cfg.ApplicationConfiguration.Validate())
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "protocol.privnet.yml")
	const yml = `
ProtocolConfiguration:
  MsgHeaderCountLimit: 500
  MaxRequestBlocksCount: 8
  MsgMaxLocatorCount: 16
  MaxMessageSize: 1048576
  MaxPeerTxAnnouncements: 1000
  MaxSingularUnconnectedHeaders: 3
  SyncStallingTimeout: 5s
  AnnounceDebounce: 50ms
ApplicationConfiguration:
  DataDirectoryPath: /tmp/glasschain-test
  BanThreshold: 50
  BanDuration: 1h
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	cfg, err := config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.ProtocolConfiguration.MsgHeaderCountLimit)
	assert.Equal(t, 8, cfg.ProtocolConfiguration.MaxRequestBlocksCount)
	assert.Equal(t, "/tmp/glasschain-test", cfg.ApplicationConfiguration.DataDirectoryPath)

	limits := cfg.ProtocolConfiguration.Limits()
	assert.Equal(t, 500, limits.MsgHeaderCountLimit)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := config.LoadFile("/nonexistent/path.yml")
	assert.Error(t, err)
}
