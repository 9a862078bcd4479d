package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/conduit-lang/beaninfo/internal/logging"
	"github.com/conduit-lang/beaninfo/runtime/introspection"
)

// FileName is the configuration file looked up without extension
const FileName = "beaninfo"

// EnvPrefix prefixes environment overrides, e.g. BEANINFO_LOG_LEVEL
const EnvPrefix = "BEANINFO"

// Config represents the beaninfo configuration
type Config struct {
	SearchPath []string      `mapstructure:"search_path"`
	Log        LogConfig     `mapstructure:"log"`
	Output     OutputConfig  `mapstructure:"output"`
	Metrics    MetricsConfig `mapstructure:"metrics"`
	Schema     SchemaConfig  `mapstructure:"schema"`

	// File is the configuration file that was read, if any
	File string
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// OutputConfig represents CLI output configuration
type OutputConfig struct {
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}

// MetricsConfig represents metrics configuration
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// SchemaConfig points at the type catalog
type SchemaConfig struct {
	Path string `mapstructure:"path"`
}

// Load loads the configuration from beaninfo.yml or beaninfo.yaml in the
// current directory or the nearest parent that has one.
func Load() (*Config, error) {
	v := newViper()
	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if root, err := FindRoot(); err == nil {
		v.AddConfigPath(root)
	}

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}
	return decode(v)
}

// LoadFile loads the configuration from an explicit path
func LoadFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()

	// Set defaults
	v.SetDefault("search_path", introspection.DefaultSearchPath)
	v.SetDefault("log.level", logging.Off)
	v.SetDefault("output.format", "table")
	v.SetDefault("output.color", true)
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("schema.path", "")

	// Enable environment variable support
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.File = v.ConfigFileUsed()

	// Schema paths are relative to the config file
	if config.Schema.Path != "" && config.File != "" && !filepath.IsAbs(config.Schema.Path) {
		config.Schema.Path = filepath.Join(filepath.Dir(config.File), config.Schema.Path)
	}

	// Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// FindRoot walks up from the working directory to the first directory
// holding a beaninfo.yml or beaninfo.yaml.
func FindRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		for _, ext := range []string{".yml", ".yaml"} {
			if _, err := os.Stat(filepath.Join(dir, FileName+ext)); err == nil {
				return dir, nil
			}
		}

		// Move up one directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return "", fmt.Errorf("no %s.yml found in %s or any parent", FileName, dir)
		}
		dir = parent
	}
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	switch cfg.Output.Format {
	case "table", "json":
	default:
		return fmt.Errorf("output.format must be table or json, got: %s", cfg.Output.Format)
	}

	for i, entry := range cfg.SearchPath {
		if strings.TrimSpace(entry) == "" {
			return fmt.Errorf("search_path[%d] must not be empty", i)
		}
		if strings.HasPrefix(entry, ".") || strings.HasSuffix(entry, ".") {
			return fmt.Errorf("search_path[%d] must not start or end with '.', got: %s", i, entry)
		}
	}

	if cfg.Log.Level != logging.Off {
		if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
			return fmt.Errorf("log.level: %w", err)
		}
	}
	return nil
}
