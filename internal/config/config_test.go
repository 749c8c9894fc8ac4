package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
devices:
  - position_mm: [0, 0, 0]
    rotation_deg: [0, 0, 0]
  - position_mm: [192, 0, 0]
    rotation_deg: [0, 0, 0]
link:
  kind: tcp
  tcp:
    addr: "127.0.0.1:8080"
sender:
  send_interval_us: 500
  timeout_ms: 100
  parallel: always
  non_strict: true
`

func Test_LoadConfig_ExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "phasedarray.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Devices, 2)
	assert.Equal(t, "tcp", cfg.Link.Kind)
	assert.Equal(t, "127.0.0.1:8080", cfg.Link.TCP.Addr)
	assert.Equal(t, "always", cfg.Sender.Parallel)
	assert.True(t, cfg.Sender.NonStrict)
}

func Test_LoadConfig_RejectsZeroDevices(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("devices: []\n"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func Test_LoadConfig_MissingExplicitPath(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	assert.Error(t, err)
}

func Test_LoadConfig_FallsBackThroughSearchPaths(t *testing.T) {
	dir := t.TempDir()
	winner := filepath.Join(dir, "winner.yaml")
	require.NoError(t, os.WriteFile(winner, []byte(sampleYAML), 0o644))

	original := SearchPaths
	SearchPaths = []string{
		filepath.Join(dir, "does-not-exist.yaml"),
		winner,
	}
	t.Cleanup(func() { SearchPaths = original })

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Len(t, cfg.Devices, 2)
}

func Test_LoadConfig_NoSearchPathResolves(t *testing.T) {
	original := SearchPaths
	SearchPaths = []string{filepath.Join(t.TempDir(), "nope.yaml")}
	t.Cleanup(func() { SearchPaths = original })

	_, err := LoadConfig("")
	assert.Error(t, err)
}
