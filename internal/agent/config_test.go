package agent

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigReadsEnvVars(t *testing.T) {
	t.Setenv("PROBING_PORT", "9700")
	t.Setenv("PROBING_LOG", "debug")
	t.Setenv("PROBING_ARGS", "enable sampler")
	t.Setenv("PROBING_AUTH_TOKEN", "s3cr3t")
	t.Setenv("MASTER_ADDR", "10.0.0.1:9700")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.Equal(t, 9700, cfg.Port)
	require.Equal(t, "debug", cfg.Log)
	require.Equal(t, "enable sampler", cfg.Args)
	require.Equal(t, "s3cr3t", cfg.AuthToken)
	require.Equal(t, "10.0.0.1:9700", cfg.MasterAddr)
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	for _, key := range []string{"PROBING_CTRL_ROOT", "PROBING_MAX_REQUEST_SIZE", "PROBING_MAX_FILE_SIZE", "PROBING_AUTH_USERNAME"} {
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.Equal(t, defaultCtrlRoot, cfg.CtrlRoot)
	require.EqualValues(t, defaultMaxRequestSize, cfg.MaxRequestSize)
	require.EqualValues(t, defaultMaxFileSize, cfg.MaxFileSize)
	require.Equal(t, "admin", cfg.AuthUsername)
}

func TestLoadConfigReadsYAMLDefaults(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/probing.yaml"
	require.NoError(t, os.WriteFile(path, []byte("probing_auth_username: svc-account\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "svc-account", cfg.AuthUsername)
}

func TestLoadConfigToleratesMissingYAML(t *testing.T) {
	_, err := LoadConfig("/nonexistent/probing.yaml")
	require.NoError(t, err)
}
