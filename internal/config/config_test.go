package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ffaiyaz23/querywidget/internal/backend"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("QUERYWIDGET_CONFIG", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, FrontendTUI, cfg.Frontend)
	assert.Equal(t, backend.DefaultBaseURL, cfg.Backend.URL)
	assert.Equal(t, "http://localhost:8000/query/", cfg.Backend.URL)
	assert.Equal(t, BackendRemote, cfg.Backend.Mode)
	assert.Zero(t, cfg.Backend.Timeout)
	assert.Equal(t, "update", cfg.Slack.StreamMode)
	assert.Equal(t, 10, cfg.Slack.WorkerPoolSize)
	assert.Equal(t, "3000", cfg.Slack.Port)
	assert.True(t, cfg.OTel.Enabled)
	assert.NoError(t, cfg.Validate())
}

func TestLoadEnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("QUERYWIDGET_CONFIG", "")
	t.Setenv("QUERYWIDGET_FRONTEND", "Console")
	t.Setenv("QUERYWIDGET_BACKEND_URL", "http://example.com/query/")
	t.Setenv("QUERYWIDGET_BACKEND_TIMEOUT", "3s")
	t.Setenv("QUERYWIDGET_SLACK_STREAM_MODE", "bogus")
	t.Setenv("QUERYWIDGET_SLACK_WORKER_POOL_SIZE", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, FrontendConsole, cfg.Frontend)
	assert.Equal(t, "http://example.com/query/", cfg.Backend.URL)
	assert.Equal(t, 3*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "update", cfg.Slack.StreamMode)
	assert.Equal(t, 10, cfg.Slack.WorkerPoolSize)
}

func TestLoadDotEnvAndFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("QUERYWIDGET_LOG_LEVEL=debug\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("QUERYWIDGET_LOG_LEVEL") })

	path := filepath.Join(dir, "querywidget.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
frontend = "slack"

[slack]
bot_token = "xoxb-test"
signing_secret = "secret"
stream_mode = "thread"
worker_pool_size = 4
`), 0o600))
	t.Setenv("QUERYWIDGET_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, FrontendSlack, cfg.Frontend)
	assert.Equal(t, "xoxb-test", cfg.Slack.BotToken)
	assert.Equal(t, "thread", cfg.Slack.StreamMode)
	assert.Equal(t, 4, cfg.Slack.WorkerPoolSize)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("QUERYWIDGET_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))

	_, err := Load()
	assert.ErrorContains(t, err, "read config")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := Config{
		Frontend: FrontendTUI,
		Backend:  BackendConfig{URL: "http://localhost:8000/query/", Mode: BackendRemote},
	}

	cases := []struct {
		description string
		mutate      func(c *Config)
		want        string
	}{
		{"valid", func(c *Config) {}, ""},
		{"slack without token", func(c *Config) { c.Frontend = FrontendSlack }, "slack.bot_token and slack.signing_secret must be set"},
		{"unknown frontend", func(c *Config) { c.Frontend = "web" }, `unknown frontend "web"`},
		{"remote without url", func(c *Config) { c.Backend.URL = "" }, "backend.url must be set in remote mode"},
		{"stub without url", func(c *Config) { c.Backend.URL = ""; c.Backend.Mode = BackendStub }, ""},
		{"unknown mode", func(c *Config) { c.Backend.Mode = "grpc" }, `unknown backend mode "grpc"`},
		{"negative timeout", func(c *Config) { c.Backend.Timeout = -time.Second }, "backend.timeout must not be negative"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.description, func(t *testing.T) {
			t.Parallel()

			c := valid
			tc.mutate(&c)
			err := c.Validate()
			if tc.want == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tc.want)
		})
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains: it changes
// the working directory and restores the previous one when the test ends.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
