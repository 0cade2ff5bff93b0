package collector

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestReadConfigMissing(t *testing.T) {
	cfg, err := ReadConfig(filepath.Join(t.TempDir(), "config.json5"))
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
}

func TestReadConfigOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json5")
	require.NoError(t, os.WriteFile(path, []byte(`{
		delay: "20s",
		debug_dir: ".dev/resty",
	}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.local.json5"), []byte(`{
		base_url: "https://localhost:8443/calc.aspx",
		insecure_skip_verify: true,
	}`), 0644))

	cfg, err := ReadConfig(path)
	require.NoError(t, err)
	require.Equal(t, time.Second*20, cfg.Delay.Std())
	require.Equal(t, time.Second*2, cfg.SettleDelay.Std())
	require.Equal(t, ".dev/resty", cfg.DebugDir)
	require.Equal(t, "https://localhost:8443/calc.aspx", cfg.BaseURL)
	require.True(t, cfg.InsecureSkipVerify)

	opts := cfg.DriverOptions(nil)
	require.Equal(t, time.Second*20, opts.Delay)
	require.Equal(t, time.Second*30, opts.Client.Timeout)
	require.Equal(t, "https://localhost:8443/calc.aspx", opts.Client.Endpoint)
	require.Equal(t, "0.5", opts.FallbackIncidence)
}

func TestReadConfigInvalidDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json5")
	require.NoError(t, os.WriteFile(path, []byte(`{ delay: "fifteen" }`), 0644))
	_, err := ReadConfig(path)
	require.Error(t, err)
}
