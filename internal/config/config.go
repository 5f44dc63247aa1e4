// Package config loads server configuration from defaults, an optional
// config file and IMAGE_MCP_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ironsheep/image-edit-mcp/internal/params"
)

// EnvPrefix is prepended to every environment override, e.g.
// IMAGE_MCP_CACHE_SIZE_MB=200.
const EnvPrefix = "IMAGE_MCP"

// Output modes.
const (
	OutputInline  = "inline"
	OutputFileRef = "file_ref"
)

// Config is the top-level configuration.
type Config struct {
	MaxDimension       int           `mapstructure:"max_dimension"`
	MaxUploadMB        int           `mapstructure:"max_upload_mb"`
	DefaultFormat      string        `mapstructure:"default_format"`
	DefaultQuality     int           `mapstructure:"default_quality"`
	MaxConcurrentTasks int           `mapstructure:"max_concurrent_tasks"`
	ProcessingTimeout  time.Duration `mapstructure:"processing_timeout"`
	MaxBatchSize       int           `mapstructure:"max_batch_size"`
	LogLevel           string        `mapstructure:"log_level"`

	Cache  CacheConfig  `mapstructure:"cache"`
	Output OutputConfig `mapstructure:"output"`
}

// CacheConfig configures the result cache.
type CacheConfig struct {
	Enabled bool `mapstructure:"enabled"`
	SizeMB  int  `mapstructure:"size_mb"`
}

// OutputConfig configures how result images are returned.
type OutputConfig struct {
	Mode            string `mapstructure:"mode"`
	TempDir         string `mapstructure:"temp_dir"`
	OperationPrefix bool   `mapstructure:"operation_prefix"`
}

// MaxUploadBytes returns the encoded input size ceiling in bytes.
func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) * 1024 * 1024
}

// CacheCapacityBytes returns the cache ceiling in bytes.
func (c Config) CacheCapacityBytes() int64 {
	return int64(c.Cache.SizeMB) * 1024 * 1024
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		MaxDimension:       4096,
		MaxUploadMB:        10,
		DefaultFormat:      "PNG",
		DefaultQuality:     95,
		MaxConcurrentTasks: 4,
		ProcessingTimeout:  30 * time.Second,
		MaxBatchSize:       20,
		LogLevel:           "info",
		Cache: CacheConfig{
			Enabled: true,
			SizeMB:  100,
		},
		Output: OutputConfig{
			Mode:            OutputInline,
			TempDir:         filepath.Join(os.TempDir(), "image-edit-mcp"),
			OperationPrefix: true,
		},
	}
}

// setDefaults registers every key so that environment overrides are picked
// up by Unmarshal even when no config file exists.
func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("max_dimension", d.MaxDimension)
	v.SetDefault("max_upload_mb", d.MaxUploadMB)
	v.SetDefault("default_format", d.DefaultFormat)
	v.SetDefault("default_quality", d.DefaultQuality)
	v.SetDefault("max_concurrent_tasks", d.MaxConcurrentTasks)
	v.SetDefault("processing_timeout", d.ProcessingTimeout)
	v.SetDefault("max_batch_size", d.MaxBatchSize)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.size_mb", d.Cache.SizeMB)
	v.SetDefault("output.mode", d.Output.Mode)
	v.SetDefault("output.temp_dir", d.Output.TempDir)
	v.SetDefault("output.operation_prefix", d.Output.OperationPrefix)
}

// Load reads configuration. If path is empty the file
// image-edit-mcp.{toml,yaml,json} is searched in the working directory and
// $HOME/.config/image-edit-mcp; a missing file is not an error.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("image-edit-mcp")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "image-edit-mcp"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.DefaultFormat = strings.ToUpper(cfg.DefaultFormat)
	cfg.Output.Mode = strings.ToLower(cfg.Output.Mode)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate returns an error if the configuration is inconsistent.
func (c Config) Validate() error {
	switch {
	case c.MaxDimension <= 0:
		return errors.New("config: max_dimension must be positive")
	case c.MaxUploadMB <= 0:
		return errors.New("config: max_upload_mb must be positive")
	case !slices.Contains(params.Formats, c.DefaultFormat):
		return fmt.Errorf("config: default_format must be one of %s", strings.Join(params.Formats, ", "))
	case c.DefaultQuality < 1 || c.DefaultQuality > 100:
		return errors.New("config: default_quality must be between 1 and 100")
	case c.MaxConcurrentTasks <= 0:
		return errors.New("config: max_concurrent_tasks must be positive")
	case c.ProcessingTimeout <= 0:
		return errors.New("config: processing_timeout must be positive")
	case c.MaxBatchSize <= 0:
		return errors.New("config: max_batch_size must be positive")
	case c.Cache.SizeMB < 0:
		return errors.New("config: cache.size_mb must not be negative")
	case c.Output.Mode != OutputInline && c.Output.Mode != OutputFileRef:
		return fmt.Errorf("config: output.mode must be %q or %q", OutputInline, OutputFileRef)
	}
	return nil
}
