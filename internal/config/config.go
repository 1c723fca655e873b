// Package config loads and watches the updatewatch configuration file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"updatewatch/internal/domain"
)

type Config struct {
	Feeds         FeedsConfig         `mapstructure:"feeds"`
	Poll          PollConfig          `mapstructure:"poll"`
	Store         StoreConfig         `mapstructure:"store"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type FeedsConfig struct {
	AnnouncementsURL      string `mapstructure:"announcementsUrl"`
	CatalogURL            string `mapstructure:"catalogUrl"`
	RequestTimeoutSeconds int    `mapstructure:"requestTimeoutSeconds"`
}

type PollConfig struct {
	IntervalHours     int  `mapstructure:"intervalHours"`
	HonorFeedInterval bool `mapstructure:"honorFeedInterval"`
}

type StoreConfig struct {
	Path string `mapstructure:"path"`
}

type ObservabilityConfig struct {
	ListenAddress string `mapstructure:"listenAddress"`
	Metrics       bool   `mapstructure:"metrics"`
	Healthz       bool   `mapstructure:"healthz"`
}

func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.Feeds.RequestTimeoutSeconds) * time.Second
}

func (c Config) PollInterval() time.Duration {
	return time.Duration(c.Poll.IntervalHours) * time.Hour
}

func newConfigViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("feeds.requestTimeoutSeconds", domain.DefaultRequestTimeoutSeconds)
	v.SetDefault("poll.intervalHours", domain.DefaultPollIntervalHours)
	v.SetDefault("poll.honorFeedInterval", true)
	v.SetDefault("store.path", DefaultStatePath())
	v.SetDefault("observability.listenAddress", domain.DefaultListenAddress)
	v.SetDefault("observability.metrics", true)
	v.SetDefault("observability.healthz", true)
}

// DefaultStatePath places the state database under the user's state
// directory, honoring XDG_STATE_HOME.
func DefaultStatePath() string {
	if stateHome := strings.TrimSpace(os.Getenv("XDG_STATE_HOME")); stateHome != "" {
		return filepath.Join(stateHome, "updatewatch", "state.db")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join("updatewatch", "state.db")
	}
	return filepath.Join(home, ".local", "state", "updatewatch", "state.db")
}

// DefaultLogPath is where the daemon writes its log when managed by the
// platform service manager. It lives next to the state database.
func DefaultLogPath() string {
	return filepath.Join(filepath.Dir(DefaultStatePath()), "updatewatch.log")
}

// Load reads the config file at path into a validated Config.
func Load(path string) (Config, error) {
	const op = "config.Load"
	if strings.TrimSpace(path) == "" {
		return Config{}, domain.E(domain.CodeInvalidArgument, op, "config path is required", nil)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, domain.E(domain.CodeInvalidArgument, op, fmt.Sprintf("read config %s", path), err)
	}

	v := newConfigViper()
	if err := v.ReadConfig(strings.NewReader(string(data))); err != nil {
		return Config{}, domain.E(domain.CodeInvalidArgument, op, "parse config", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, domain.E(domain.CodeInvalidArgument, op, "decode config", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	const op = "config.Validate"
	var problems []error

	if err := validateFeedURL("feeds.announcementsUrl", c.Feeds.AnnouncementsURL); err != nil {
		problems = append(problems, err)
	}
	if err := validateFeedURL("feeds.catalogUrl", c.Feeds.CatalogURL); err != nil {
		problems = append(problems, err)
	}
	if c.Feeds.RequestTimeoutSeconds <= 0 {
		problems = append(problems, fmt.Errorf("feeds.requestTimeoutSeconds must be positive"))
	}
	if c.Poll.IntervalHours <= 0 {
		problems = append(problems, fmt.Errorf("poll.intervalHours must be positive"))
	}
	if strings.TrimSpace(c.Store.Path) == "" {
		problems = append(problems, fmt.Errorf("store.path is required"))
	}

	if len(problems) > 0 {
		return domain.E(domain.CodeInvalidArgument, op, "", errors.Join(problems...))
	}
	return nil
}

func validateFeedURL(key, raw string) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return fmt.Errorf("%s is required", key)
	}
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("%s is not a valid url: %q", key, raw)
	}
	switch parsed.Scheme {
	case "http", "https":
		return nil
	default:
		return fmt.Errorf("%s must use http or https: %q", key, raw)
	}
}
