// Package config loads fizzy-mcp settings from a config file, FIZZY_*
// environment variables and command-line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	configName = "config"
	configType = "yaml"
	configDir  = "fizzy-mcp"
	envPrefix  = "FIZZY"

	KeyBaseURL      = "base_url"
	KeyToken        = "token"
	KeyTimeout      = "timeout"
	KeyTagCacheTTL  = "tag_cache_ttl"
	KeyTagCacheSize = "tag_cache_size"

	DefaultBaseURL      = "https://app.fizzy.do"
	DefaultTimeout      = 30 * time.Second
	DefaultTagCacheTTL  = 5 * time.Minute
	DefaultTagCacheSize = 32
)

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"base-url":       KeyBaseURL,
	"timeout":        KeyTimeout,
	"tag-cache-ttl":  KeyTagCacheTTL,
	"tag-cache-size": KeyTagCacheSize,
}

// Config holds the settings of the Fizzy API client.
type Config struct {
	BaseURL      string        `mapstructure:"base_url"`
	Token        string        `mapstructure:"token"`
	Timeout      time.Duration `mapstructure:"timeout"`
	TagCacheTTL  time.Duration `mapstructure:"tag_cache_ttl"`
	TagCacheSize int           `mapstructure:"tag_cache_size"`

	// File is the config file that was read, or "" when none was found.
	File string `mapstructure:"-"`
}

// LoadOptions controls where Load looks for settings.
type LoadOptions struct {
	// ConfigFile is an explicit config file path. When empty, config.yaml is
	// searched in the user config directory under fizzy-mcp.
	ConfigFile string
	// Flags, when set, override file and environment values for the flags
	// that were changed on the command line.
	Flags *pflag.FlagSet
}

// RegisterFlags adds the client flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("base-url", DefaultBaseURL, "Fizzy API base URL (env FIZZY_BASE_URL)")
	fs.Duration("timeout", DefaultTimeout, "Timeout for a single Fizzy API request (env FIZZY_TIMEOUT)")
	fs.Duration("tag-cache-ttl", DefaultTagCacheTTL, "How long tag lookups are cached (env FIZZY_TAG_CACHE_TTL)")
	fs.Int("tag-cache-size", DefaultTagCacheSize, "Number of accounts whose tags are cached (env FIZZY_TAG_CACHE_SIZE)")
}

// Load reads the configuration. A missing config file is not an error.
func Load(opts LoadOptions) (*Config, error) {
	v := viper.New()

	v.SetDefault(KeyBaseURL, DefaultBaseURL)
	v.SetDefault(KeyToken, "")
	v.SetDefault(KeyTimeout, DefaultTimeout)
	v.SetDefault(KeyTagCacheTTL, DefaultTagCacheTTL)
	v.SetDefault(KeyTagCacheSize, DefaultTagCacheSize)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		if _, err := os.Stat(opts.ConfigFile); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, configDir))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	if opts.Flags != nil {
		for name, key := range flagKeys {
			f := opts.Flags.Lookup(name)
			if f == nil || !f.Changed {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	cfg.Token = strings.TrimSpace(cfg.Token)
	cfg.File = v.ConfigFileUsed()

	return &cfg, nil
}

// Validate checks that the configuration can build a working client.
func (c *Config) Validate() error {
	if c.Token == "" {
		return errors.New("no Fizzy access token configured: set FIZZY_TOKEN or token in the config file")
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("base_url %q must be an absolute http(s) URL", c.BaseURL)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.TagCacheSize <= 0 {
		return fmt.Errorf("tag_cache_size must be positive, got %d", c.TagCacheSize)
	}
	if c.TagCacheTTL < 0 {
		return fmt.Errorf("tag_cache_ttl must not be negative, got %s", c.TagCacheTTL)
	}
	return nil
}
