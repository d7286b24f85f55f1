package progconfig

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaultBoundToPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.LastDevice)
	assert.NotNil(t, cfg.DeviceConfigs)
	assert.Equal(t, path, cfg.path)
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg, err := Load(path)
	require.NoError(t, err)

	cfg.LastDevice = "ft4222h-0"
	cfg.LogLevel = "debug"
	cfg.MaxSpeedHz = 50_000_000
	cfg.SetDeviceMaxSpeedHz("ft4222h-0", 20_000_000)

	require.NoError(t, cfg.Save())

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ft4222h-0", reloaded.LastDevice)
	assert.Equal(t, "debug", reloaded.LogLevel)
	assert.EqualValues(t, 50_000_000, reloaded.MaxSpeedHz)
	assert.EqualValues(t, 20_000_000, reloaded.DeviceMaxSpeedHz("ft4222h-0"))
}

func TestDeviceMaxSpeedHzFallsBackToGlobal(t *testing.T) {
	cfg := Default()
	cfg.MaxSpeedHz = 10_000_000
	assert.EqualValues(t, 10_000_000, cfg.DeviceMaxSpeedHz("unknown-device"))

	cfg.SetDeviceMaxSpeedHz("dev-a", 33_000_000)
	assert.EqualValues(t, 33_000_000, cfg.DeviceMaxSpeedHz("dev-a"))
	assert.EqualValues(t, 10_000_000, cfg.DeviceMaxSpeedHz("dev-b"))
}

func TestSaveWithUnboundPathIsNoop(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Save())
}

func TestDefaultPathEndsWithFlashprogConfigJSON(t *testing.T) {
	path, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("flashprog", "config.json"), path[len(path)-len(filepath.Join("flashprog", "config.json")):])
}
