package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainswarm/substrate-indexer/chain"
)

func TestLoadFileMissingPathIsNotAnError(t *testing.T) {
	ov, err := LoadFile("")
	require.NoError(t, err)
	assert.Empty(t, ov.Networks)
}

func TestLoadFileNonExistentPathIsNotAnError(t *testing.T) {
	ov, err := LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Empty(t, ov.Networks)
}

func TestLoadFileDecodesOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overlay.toml")
	contents := `
[networks.torus]
node_ws_url = "wss://file.example/torus"

[networks.torus.clickhouse]
host = "ch.example"
port = 9440
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	ov, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "wss://file.example/torus", ov.Networks["torus"].NodeWSURL)
	assert.Equal(t, "ch.example", ov.Networks["torus"].ClickHouse.Host)
	assert.Equal(t, 9440, ov.Networks["torus"].ClickHouse.Port)
}

func TestLoadRequiresNodeWSURL(t *testing.T) {
	_, err := Load(chain.Torus, nil)
	assert.Error(t, err)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	t.Setenv("TORUS_NODE_WS_URL", "wss://env.example/torus")
	t.Setenv("TORUS_CLICKHOUSE_HOST", "env-ch.example")

	ov := &fileOverlay{Networks: map[string]struct {
		NodeWSURL  string           `toml:"node_ws_url"`
		ClickHouse ClickHouseConfig `toml:"clickhouse"`
		Memgraph   MemgraphConfig   `toml:"memgraph"`
	}{
		"torus": {NodeWSURL: "wss://file.example/torus", ClickHouse: ClickHouseConfig{Host: "file-ch.example"}},
	}}

	cfg, err := Load(chain.Torus, ov)
	require.NoError(t, err)
	assert.Equal(t, "wss://env.example/torus", cfg.NodeWSURL)
	assert.Equal(t, "env-ch.example", cfg.ClickHouse.Host)
}

func TestLoadFallsBackToFileWhenEnvUnset(t *testing.T) {
	ov := &fileOverlay{Networks: map[string]struct {
		NodeWSURL  string           `toml:"node_ws_url"`
		ClickHouse ClickHouseConfig `toml:"clickhouse"`
		Memgraph   MemgraphConfig   `toml:"memgraph"`
	}{
		"bittensor": {NodeWSURL: "wss://file.example/bittensor"},
	}}

	cfg, err := Load(chain.Bittensor, ov)
	require.NoError(t, err)
	assert.Equal(t, "wss://file.example/bittensor", cfg.NodeWSURL)
}

func TestLoadClickHouseDefaults(t *testing.T) {
	t.Setenv("POLKADOT_NODE_WS_URL", "wss://env.example/polkadot")

	cfg, err := Load(chain.Polkadot, nil)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.ClickHouse.Port)
	assert.Equal(t, 60, cfg.ClickHouse.MaxExecutionTime)
	assert.Equal(t, 262144, cfg.ClickHouse.MaxQuerySize)
}
