package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetArgs(t *testing.T, args ...string) {
	t.Helper()
	old := os.Args
	os.Args = append([]string{"daybook-server"}, args...)
	t.Cleanup(func() { os.Args = old })
}

func TestLoadConfig_Defaults(t *testing.T) {
	resetArgs(t)

	cfg := LoadConfig()

	assert.Equal(t, ":8080", cfg.EndpointAddrHTTP)
	assert.Equal(t, "2026-01-01", cfg.MinEntryDate)
	assert.Equal(t, 15*time.Minute, cfg.MagicLinkValidityDuration)
}

func TestLoadConfig_FlagsOverride(t *testing.T) {
	resetArgs(t, "-a", ":9090", "-m", "2026-06-01")

	cfg := LoadConfig()

	assert.Equal(t, ":9090", cfg.EndpointAddrHTTP)
	assert.Equal(t, "2026-06-01", cfg.MinEntryDate)
}

func TestLoadConfig_EnvOverridesJson(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"endpoint_addr_http": ":7070",
		"secret_key": "from-json",
		"magic_link_validity_duration": "5m"
	}`), 0o600))

	resetArgs(t, "-c", path)
	t.Setenv("SECRET_KEY", "from-env")

	cfg := LoadConfig()

	assert.Equal(t, ":7070", cfg.EndpointAddrHTTP)
	assert.Equal(t, "from-env", cfg.SecretKey)
	assert.Equal(t, 5*time.Minute, cfg.MagicLinkValidityDuration)
}
