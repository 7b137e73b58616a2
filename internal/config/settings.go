package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/adamancini/neosearch/internal/catalog"
)

// EnvPrefix prefixes every settings environment variable, e.g.
// NEOSEARCH_PER_PAGE.
const EnvPrefix = "NEOSEARCH"

// Settings are the runtime knobs that are not part of the repository
// config file. They come from flags, NEOSEARCH_* environment variables
// and defaults, in that order of precedence.
type Settings struct {
	PerPage       int           `mapstructure:"per_page"`
	Addr          string        `mapstructure:"addr"`
	CheckInterval time.Duration `mapstructure:"check_interval"`
	FetchTimeout  time.Duration `mapstructure:"fetch_timeout"`
	FetchRate     float64       `mapstructure:"fetch_rate"` // requests per second, 0 disables
	CacheDir      string        `mapstructure:"cache_dir"`
	LogFormat     string        `mapstructure:"log_format"`
}

// settingFlags maps settings keys to the flag names that override them.
var settingFlags = map[string]string{
	"per_page":       "per-page",
	"addr":           "addr",
	"check_interval": "check-interval",
	"fetch_timeout":  "fetch-timeout",
	"fetch_rate":     "fetch-rate",
	"cache_dir":      "cache-dir",
	"log_format":     "log-format",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("per_page", 10)
	v.SetDefault("addr", "127.0.0.1:8000")
	v.SetDefault("check_interval", 30*time.Second)
	v.SetDefault("fetch_timeout", 10*time.Second)
	v.SetDefault("fetch_rate", 4.0)
	v.SetDefault("cache_dir", ".repositories")
	v.SetDefault("log_format", "text")
}

// LoadSettings resolves settings. Flags present in flags and explicitly
// set by the user take precedence over the environment. flags may be nil.
func LoadSettings(flags *pflag.FlagSet) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for key, name := range settingFlags {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag %s: %w", name, err)
				}
			}
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unmarshalling settings: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks settings for values the rest of the program cannot use.
func (s *Settings) Validate() error {
	if s.PerPage <= 0 {
		return catalog.Errorf(catalog.EINVALIDINPUT, "per_page must be positive, got %d", s.PerPage)
	}
	if s.CheckInterval <= 0 {
		return catalog.Errorf(catalog.EINVALIDINPUT, "check_interval must be positive, got %s", s.CheckInterval)
	}
	if s.FetchTimeout <= 0 {
		return catalog.Errorf(catalog.EINVALIDINPUT, "fetch_timeout must be positive, got %s", s.FetchTimeout)
	}
	if s.FetchRate < 0 {
		return catalog.Errorf(catalog.EINVALIDINPUT, "fetch_rate cannot be negative")
	}
	switch s.LogFormat {
	case "text", "json":
	default:
		return catalog.Errorf(catalog.EINVALIDINPUT, "unknown log format: %s", s.LogFormat)
	}
	return nil
}
