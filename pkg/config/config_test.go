package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithNoFile(t *testing.T) {
	cfg, err := Load("", viper.New())
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoadReadsYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "burrow.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data_dir: /var/lib/burrow\nlisten_addr: :8888\npeers:\n  - peer-a:7777\n  - peer-b:7777\n"), 0o644))

	cfg, err := Load(path, viper.New())
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/burrow", cfg.DataDir)
	assert.Equal(t, ":8888", cfg.ListenAddr)
	assert.Equal(t, []string{"peer-a:7777", "peer-b:7777"}, cfg.Peers)
	assert.Equal(t, Defaults().MetricsAddr, cfg.MetricsAddr)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "burrow.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen_addr: :8888\n"), 0o644))

	t.Setenv("BURROW_LISTEN_ADDR", ":9999")

	cfg, err := Load(path, viper.New())
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.ListenAddr)
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"), viper.New())
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}
