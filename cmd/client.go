package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"

	"github.com/teemow/fizzy-mcp/internal/config"
	"github.com/teemow/fizzy-mcp/internal/fizzy"
	"github.com/teemow/fizzy-mcp/internal/instrumentation"
)

// newLogger returns a text logger writing to w. Debug enables debug level.
func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadConfig reads the configuration from configFile (or the default
// location), FIZZY_* variables and the changed flags of fs.
func loadConfig(configFile string, fs *pflag.FlagSet) (*config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{ConfigFile: configFile, Flags: fs})
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newClient builds the Fizzy API client from cfg.
func newClient(cfg *config.Config, logger *slog.Logger, metrics *instrumentation.Metrics) (*fizzy.Client, error) {
	client, err := fizzy.NewClient(cfg.BaseURL, cfg.Token,
		fizzy.WithTimeout(cfg.Timeout),
		fizzy.WithTagCache(cfg.TagCacheSize, cfg.TagCacheTTL),
		fizzy.WithLogger(logger),
		fizzy.WithMetrics(metrics),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Fizzy client: %w", err)
	}
	return client, nil
}

// parseCommaSeparatedList parses a comma-separated string into a slice,
// trimming whitespace from each element and filtering out empty strings.
// Returns nil if the input is empty or contains only whitespace/commas.
func parseCommaSeparatedList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
