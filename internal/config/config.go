// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ffaiyaz23/querywidget/internal/backend"
)

const (
	FrontendTUI     = "tui"
	FrontendConsole = "console"
	FrontendSlack   = "slack"

	BackendRemote = "remote"
	BackendStub   = "stub"
)

type Config struct {
	Frontend string
	Backend  BackendConfig
	Log      LogConfig
	Slack    SlackConfig
	OTel     OTelConfig
}

type BackendConfig struct {
	URL     string
	Mode    string        // "remote" or "stub"
	Timeout time.Duration // zero means no timeout
}

type LogConfig struct {
	Level string
	Path  string
}

type SlackConfig struct {
	BotToken       string `mapstructure:"bot_token"`
	SigningSecret  string `mapstructure:"signing_secret"`
	StreamMode     string `mapstructure:"stream_mode"` // "update" or "thread"
	WorkerPoolSize int    `mapstructure:"worker_pool_size"`
	Port           string
}

type OTelConfig struct {
	Enabled bool
}

// Load reads .env, an optional TOML file named by QUERYWIDGET_CONFIG and the
// environment. Env overrides use prefix QUERYWIDGET_ with dots as underscores,
// e.g. QUERYWIDGET_BACKEND_URL.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("frontend", FrontendTUI)
	v.SetDefault("backend.url", backend.DefaultBaseURL)
	v.SetDefault("backend.mode", BackendRemote)
	v.SetDefault("backend.timeout", time.Duration(0))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.path", "")
	v.SetDefault("slack.bot_token", "")
	v.SetDefault("slack.signing_secret", "")
	v.SetDefault("slack.stream_mode", "update")
	v.SetDefault("slack.worker_pool_size", 10)
	v.SetDefault("slack.port", "3000")
	v.SetDefault("otel.enabled", true)

	v.SetEnvPrefix("QUERYWIDGET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := os.Getenv("QUERYWIDGET_CONFIG"); path != "" {
		v.SetConfigType("toml")
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	c.normalize()
	return c, nil
}

func (c *Config) normalize() {
	c.Frontend = strings.ToLower(strings.TrimSpace(c.Frontend))
	c.Backend.Mode = strings.ToLower(strings.TrimSpace(c.Backend.Mode))
	if c.Slack.StreamMode != "thread" {
		c.Slack.StreamMode = "update"
	}
	if c.Slack.WorkerPoolSize <= 0 {
		c.Slack.WorkerPoolSize = 10
	}
}

// Validate reports settings the chosen front end cannot run with.
func (c Config) Validate() error {
	var errs []error
	switch c.Frontend {
	case FrontendTUI, FrontendConsole:
	case FrontendSlack:
		if c.Slack.BotToken == "" || c.Slack.SigningSecret == "" {
			errs = append(errs, errors.New("slack.bot_token and slack.signing_secret must be set"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown frontend %q", c.Frontend))
	}
	switch c.Backend.Mode {
	case BackendRemote:
		if c.Backend.URL == "" {
			errs = append(errs, errors.New("backend.url must be set in remote mode"))
		}
	case BackendStub:
	default:
		errs = append(errs, fmt.Errorf("unknown backend mode %q", c.Backend.Mode))
	}
	if c.Backend.Timeout < 0 {
		errs = append(errs, errors.New("backend.timeout must not be negative"))
	}
	return errors.Join(errs...)
}
