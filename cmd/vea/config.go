package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vea-lang/vea/vea"
	"gopkg.in/yaml.v3"
)

const defaultConfigFile = "vea.yml"

// cliConfig is the on-disk shape of vea.yml. Flags override every field.
type cliConfig struct {
	StepQuota        int           `yaml:"step_quota"`
	RecursionLimit   int           `yaml:"recursion_limit"`
	OutputLimitBytes int           `yaml:"output_limit_bytes"`
	Timeout          time.Duration `yaml:"timeout"`
	LogLevel         string        `yaml:"log_level"`
	History          string        `yaml:"history_file"`
}

func defaultConfig() cliConfig {
	return cliConfig{
		StepQuota:      1_000_000,
		RecursionLimit: 512,
		LogLevel:       "none",
		History:        ".vea_history",
	}
}

// loadConfig reads path over the defaults. An empty path falls back to
// vea.yml in the working directory, which may be absent.
func loadConfig(path string) (cliConfig, error) {
	cfg := defaultConfig()
	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return cfg, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: open %s: %w", absPath, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("config: parse %s: %w", absPath, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", absPath, err)
	}
	return cfg, nil
}

func (c cliConfig) validate() error {
	var issues []string
	if c.StepQuota < 0 {
		issues = append(issues, "step_quota must not be negative")
	}
	if c.RecursionLimit < 0 {
		issues = append(issues, "recursion_limit must not be negative")
	}
	if c.OutputLimitBytes < 0 {
		issues = append(issues, "output_limit_bytes must not be negative")
	}
	if c.Timeout < 0 {
		issues = append(issues, "timeout must not be negative")
	}
	if _, ok := parseLogLevel(c.LogLevel); !ok {
		issues = append(issues, fmt.Sprintf("unknown log_level %q", c.LogLevel))
	}
	if len(issues) > 0 {
		return errors.New(strings.Join(issues, "; "))
	}
	return nil
}

func (c cliConfig) engineConfig(logger *slog.Logger) vea.Config {
	return vea.Config{
		StepQuota:        c.StepQuota,
		RecursionLimit:   c.RecursionLimit,
		OutputLimitBytes: c.OutputLimitBytes,
		Logger:           logger,
	}
}

// newLogger builds the text logger the engine writes to; "none" discards.
func (c cliConfig) newLogger(w io.Writer) *slog.Logger {
	level, _ := parseLogLevel(c.LogLevel)
	if strings.EqualFold(c.LogLevel, "none") || c.LogLevel == "" {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func parseLogLevel(level string) (slog.Level, bool) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	case "none", "":
		return slog.LevelError, true
	default:
		return slog.LevelError, false
	}
}
