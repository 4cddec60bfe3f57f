// Package config loads cdump settings: defaults, then TOML files in order,
// then CDUMP_* environment variables (optionally from a .env file).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	CastXML CastXMLConfig `toml:"castxml"`
	Resolve ResolveConfig `toml:"resolve"`
	Output  OutputConfig  `toml:"output"`
	Store   StoreConfig   `toml:"store"`
	Log     LogConfig     `toml:"log"`
	LSP     LSPConfig     `toml:"lsp"`
}

type CastXMLConfig struct {
	Binary  string   `toml:"binary"`
	Flags   []string `toml:"flags"`   // extra front-end flags, e.g. "-I/opt/include"
	Timeout string   `toml:"timeout"` // e.g. "30s"; empty means no limit
}

type ResolveConfig struct {
	Strict    bool   `toml:"strict"`
	Conflicts string `toml:"conflicts"` // "first" or "error"
	MainOnly  bool   `toml:"main_only"`
}

type OutputConfig struct {
	Format string `toml:"format"` // "json", "yaml" or "line"
}

type StoreConfig struct {
	Path string `toml:"path"`
}

type LogConfig struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

type LSPConfig struct {
	CacheSize    int    `toml:"cache_size"`
	PollInterval string `toml:"poll_interval"` // empty disables polling
}

func NewDefaultConfig() *Config {
	return &Config{
		CastXML: CastXMLConfig{
			Binary:  "castxml",
			Timeout: "60s",
		},
		Resolve: ResolveConfig{
			Conflicts: "first",
		},
		Output: OutputConfig{
			Format: "json",
		},
		Store: StoreConfig{
			Path: "cdump.db",
		},
		LSP: LSPConfig{
			CacheSize:    64,
			PollInterval: "2s",
		},
	}
}

// LoadFromFiles merges the given TOML files over the defaults, later files
// winning, then applies environment overrides. Empty paths are skipped.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	// A missing .env is normal.
	_ = godotenv.Load()
	if err := applyEnvOverrides(config); err != nil {
		return nil, err
	}
	return config, config.Validate()
}

func applyEnvOverrides(config *Config) error {
	if binary := os.Getenv("CDUMP_CASTXML"); binary != "" {
		config.CastXML.Binary = binary
	}
	if flags := os.Getenv("CDUMP_CASTXML_FLAGS"); flags != "" {
		config.CastXML.Flags = strings.Fields(flags)
	}
	if strict := os.Getenv("CDUMP_STRICT"); strict != "" {
		b, err := strconv.ParseBool(strict)
		if err != nil {
			return fmt.Errorf("CDUMP_STRICT: %w", err)
		}
		config.Resolve.Strict = b
	}
	if conflicts := os.Getenv("CDUMP_CONFLICTS"); conflicts != "" {
		config.Resolve.Conflicts = conflicts
	}
	if format := os.Getenv("CDUMP_FORMAT"); format != "" {
		config.Output.Format = format
	}
	if path := os.Getenv("CDUMP_DB"); path != "" {
		config.Store.Path = path
	}
	if verbosity := os.Getenv("CDUMP_LOG_VERBOSITY"); verbosity != "" {
		v, err := strconv.Atoi(verbosity)
		if err != nil {
			return fmt.Errorf("CDUMP_LOG_VERBOSITY: %w", err)
		}
		config.Log.Verbosity = v
	}
	return nil
}

func (c *Config) Validate() error {
	if _, err := c.CastXMLTimeout(); err != nil {
		return err
	}
	switch c.Resolve.Conflicts {
	case "first", "error":
	default:
		return fmt.Errorf("resolve.conflicts: unknown policy %q", c.Resolve.Conflicts)
	}
	switch c.Output.Format {
	case "json", "yaml", "line":
	default:
		return fmt.Errorf("output.format: unknown format %q", c.Output.Format)
	}
	if c.LSP.CacheSize < 1 {
		return fmt.Errorf("lsp.cache_size must be positive, got %d", c.LSP.CacheSize)
	}
	if _, err := c.LSPPollInterval(); err != nil {
		return err
	}
	return nil
}

// CastXMLTimeout parses castxml.timeout. Zero means no limit.
func (c *Config) CastXMLTimeout() (time.Duration, error) {
	if c.CastXML.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.CastXML.Timeout)
	if err != nil {
		return 0, fmt.Errorf("castxml.timeout: %w", err)
	}
	return d, nil
}

func (c *Config) LSPPollInterval() (time.Duration, error) {
	if c.LSP.PollInterval == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.LSP.PollInterval)
	if err != nil {
		return 0, fmt.Errorf("lsp.poll_interval: %w", err)
	}
	return d, nil
}
