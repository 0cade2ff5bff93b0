package configutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	BaseUrl string   `json:"base_url"`
	Delay   Duration `json:"delay"`
	Verbose bool     `json:"verbose"`
}

func TestReadConfigMergesLocal(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "config.json5"), []byte(`{
		// comments are allowed
		base_url: "https://example.org/form.aspx",
		delay: "15s",
	}`), 0600)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(dir, "config.local.json5"), []byte(`{delay: "2s", verbose: true}`), 0600)
	require.NoError(t, err)

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "config.json5"))
	require.NoError(t, err)
	require.Equal(t, "https://example.org/form.aspx", cfg.BaseUrl)
	require.Equal(t, time.Second*2, cfg.Delay.Std())
	require.True(t, cfg.Verbose)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "config.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadConfigOr(t *testing.T) {
	defaults := testConfig{BaseUrl: "https://default", Delay: Duration(time.Second * 15)}

	cfg, err := ReadConfigOr(filepath.Join(t.TempDir(), "config.json5"), defaults)
	require.NoError(t, err)
	require.Equal(t, defaults, cfg)

	dir := t.TempDir()
	err = os.WriteFile(filepath.Join(dir, "config.json5"), []byte(`{delay: "1m"}`), 0600)
	require.NoError(t, err)

	cfg, err = ReadConfigOr(filepath.Join(dir, "config.json5"), defaults)
	require.NoError(t, err)
	require.Equal(t, "https://default", cfg.BaseUrl)
	require.Equal(t, time.Minute, cfg.Delay.Std())
}

func TestDurationRejectsGarbage(t *testing.T) {
	var d Duration
	require.Error(t, d.UnmarshalText([]byte("fifteen")))
}
