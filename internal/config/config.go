// Package config provides configuration loading and validation for fpagpgen.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"

	"github.com/fpasys/fpagpgen/pkg/safeconv"
	"github.com/fpasys/fpagpgen/pkg/units"
)

// Sentinel validation errors.
var (
	ErrInvalidPort          = errors.New("invalid server port")
	ErrMissingHome          = errors.New("setup.home must not be empty")
	ErrInvalidMaxConcurrent = errors.New("max concurrent interpolations must be positive")
	ErrInvalidCacheMaxSize  = errors.New("cache max entries must be positive")
)

// Default configuration values.
const (
	defaultPort          = 8080
	defaultHost          = "0.0.0.0"
	defaultMaxConcurrent = 10
	maxPort              = 65535
)

// Config holds all configuration for fpagpgen: the setup-file directory map
// that drives codeword expansion (spec.md §6's "Environment and paths"),
// plus the ambient server/cache/checkpoint/logging sections carried over
// from the teacher's shape.
type Config struct {
	Setup      SetupConfig      `mapstructure:"setup"`
	Server     ServerConfig     `mapstructure:"server"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Checkpoint CheckpointConfig `mapstructure:"checkpoint"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// SetupConfig models the directory map a GPG setup-file resolves: the base
// output/fpdf directories per back end and the codewords available for
// expansion in `<…>` placeholders within paths and filenames. Extra holds
// any further codeword → value pairs the setup-file defines beyond the
// fixed fields below, so an unrecognized codeword is still resolvable
// rather than just warned about.
type SetupConfig struct {
	Home string `mapstructure:"home"`

	PSOut  string `mapstructure:"psout"`
	SVGOut string `mapstructure:"svgout"`
	COROut string `mapstructure:"corout"`
	TexOut string `mapstructure:"texout"`

	PSMet  string `mapstructure:"psmet"`
	SVGMet string `mapstructure:"svgmet"`
	CorMet string `mapstructure:"cormet"`
	TexMet string `mapstructure:"texmet"`

	IncludePaths []string `mapstructure:"include_paths"`

	// Extra holds any further codeword -> value pairs the setup-file defines
	// beyond the fixed fields above. A run-time codeword like `year` or
	// `run_time` is naturally written as a bare YAML number rather than a
	// quoted string, so this is decoded loosely typed and stringified by
	// CodewordValues rather than forcing every setup-file author to quote
	// numeric codewords.
	Extra map[string]any `mapstructure:"extra"`
}

// CodewordValues flattens SetupConfig into the name → value map that
// gpg.NewContext's codeword expander consumes, per spec.md §6: "Codewords
// surrounded by <…> in paths and filenames expand from this map."
func (s SetupConfig) CodewordValues() map[string]string {
	values := make(map[string]string, len(s.Extra)+8)

	for k, v := range s.Extra {
		values[k] = stringifyCodeword(v)
	}

	if s.Home != "" {
		values["home"] = s.Home
	}

	if s.PSOut != "" {
		values["psout"] = s.PSOut
	}

	if s.SVGOut != "" {
		values["svgout"] = s.SVGOut
	}

	if s.COROut != "" {
		values["corout"] = s.COROut
	}

	if s.TexOut != "" {
		values["texout"] = s.TexOut
	}

	if s.PSMet != "" {
		values["psmet"] = s.PSMet
	}

	if s.SVGMet != "" {
		values["svgmet"] = s.SVGMet
	}

	if s.CorMet != "" {
		values["cormet"] = s.CorMet
	}

	if s.TexMet != "" {
		values["texmet"] = s.TexMet
	}

	return values
}

// stringifyCodeword renders one decoded extra-codeword value as the plain
// string a `<name>` placeholder expands to. Integral YAML numbers (`year:
// 2026`) format without a trailing ".0"; safeconv.ToInt is tried before
// ToFloat64 so a whole-number float (2026.0) still renders as "2026".
func stringifyCodeword(v any) string {
	if s, ok := v.(string); ok {
		return s
	}

	if i, ok := safeconv.ToInt(v); ok {
		if f, isFloat := v.(float64); !isFloat || f == float64(i) {
			return strconv.Itoa(i)
		}
	}

	if f, ok := safeconv.ToFloat64(v); ok {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}

	return fmt.Sprint(v)
}

// ServerConfig holds configuration for the `serve` command's MCP/metrics
// HTTP listener.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	Port         int           `mapstructure:"port"`
	Enabled      bool          `mapstructure:"enabled"`
}

// CacheConfig holds resource-cache configuration (internal/cache's
// path-keyed LRU of parsed fpdf includes and rendered field lookups).
type CacheConfig struct {
	Directory       string        `mapstructure:"directory"`
	MaxEntries      int           `mapstructure:"max_entries"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	Compress        bool          `mapstructure:"compress"`
	Enabled         bool          `mapstructure:"enabled"`
}

// defaultResourceMiB is the assumed average size of one cached resource
// (a symbol library or location look-up table), used to convert MaxEntries
// into the byte budget internal/cache.ResourceCache actually enforces.
const defaultResourceMiB = 1

// ResourceCacheBytes converts MaxEntries into the byte size bound
// internal/cache.NewResourceCache expects, since the cache itself bounds
// total bytes rather than entry count.
func (c CacheConfig) ResourceCacheBytes() int64 {
	if c.MaxEntries <= 0 {
		return 0
	}

	return int64(c.MaxEntries) * defaultResourceMiB * units.MiB
}

// CheckpointConfig holds interpolation-run checkpoint/resume configuration.
type CheckpointConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Dir       string `mapstructure:"dir"`
	Resume    bool   `mapstructure:"resume"`
	ClearPrev bool   `mapstructure:"clear_prev"`
	// MaxSize is a human-readable size ("1GB", "512MB") bounding one
	// checkpoint directory's total size, parsed by MaxSizeBytes the same
	// way the teacher parses its memory-budget flags.
	MaxSize string `mapstructure:"max_size"`
}

// MaxSizeBytes parses MaxSize into bytes via humanize.ParseBytes, per
// spec.md's checkpoint retention fields (internal/checkpoint.Manager.
// MaxSize). An empty MaxSize reports ok=false so the caller can fall back
// to internal/checkpoint.DefaultMaxSize.
func (c CheckpointConfig) MaxSizeBytes() (size int64, ok bool, err error) {
	if c.MaxSize == "" {
		return 0, false, nil
	}

	parsed, parseErr := humanize.ParseBytes(c.MaxSize)
	if parseErr != nil {
		return 0, false, fmt.Errorf("parse checkpoint.max_size %q: %w", c.MaxSize, parseErr)
	}

	return int64(parsed), true, nil
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// LoadConfig loads configuration from file and environment variables.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName("config")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("./config")
		viperCfg.AddConfigPath("/etc/fpagpgen")
	}

	viperCfg.SetEnvPrefix("FPAGPGEN")
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	if schemaErr := ValidateSetupDocument(viperCfg.AllSettings()); schemaErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", schemaErr)
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := validateConfig(&cfg)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(viperCfg *viper.Viper) {
	// Setup defaults.
	viperCfg.SetDefault("setup.home", ".")
	viperCfg.SetDefault("setup.psout", "<home>/psout")
	viperCfg.SetDefault("setup.svgout", "<home>/svgout")
	viperCfg.SetDefault("setup.corout", "<home>/corout")
	viperCfg.SetDefault("setup.texout", "<home>/texout")
	viperCfg.SetDefault("setup.psmet", "<home>/psmet")
	viperCfg.SetDefault("setup.svgmet", "<home>/svgmet")
	viperCfg.SetDefault("setup.cormet", "<home>/cormet")
	viperCfg.SetDefault("setup.texmet", "<home>/texmet")

	// Server defaults.
	viperCfg.SetDefault("server.enabled", false)
	viperCfg.SetDefault("server.port", defaultPort)
	viperCfg.SetDefault("server.host", defaultHost)
	viperCfg.SetDefault("server.read_timeout", "30s")
	viperCfg.SetDefault("server.write_timeout", "30s")
	viperCfg.SetDefault("server.idle_timeout", "60s")

	// Cache defaults.
	viperCfg.SetDefault("cache.enabled", true)
	viperCfg.SetDefault("cache.directory", "/tmp/fpagpgen-cache")
	viperCfg.SetDefault("cache.max_entries", defaultMaxConcurrent*100)
	viperCfg.SetDefault("cache.ttl", "24h")
	viperCfg.SetDefault("cache.cleanup_interval", "1h")
	viperCfg.SetDefault("cache.compress", false)

	// Checkpoint defaults.
	viperCfg.SetDefault("checkpoint.enabled", DefaultCheckpointEnabled)
	viperCfg.SetDefault("checkpoint.dir", DefaultCheckpointDir)
	viperCfg.SetDefault("checkpoint.resume", DefaultCheckpointResume)
	viperCfg.SetDefault("checkpoint.clear_prev", DefaultCheckpointClearPrev)
	viperCfg.SetDefault("checkpoint.max_size", "1GB")

	// Logging defaults.
	viperCfg.SetDefault("logging.level", "info")
	viperCfg.SetDefault("logging.format", "json")
	viperCfg.SetDefault("logging.output", "stdout")
}

// validateConfig validates the configuration.
func validateConfig(cfg *Config) error {
	if cfg.Setup.Home == "" {
		return ErrMissingHome
	}

	if cfg.Server.Enabled && (cfg.Server.Port <= 0 || cfg.Server.Port > maxPort) {
		return fmt.Errorf("%w: %d", ErrInvalidPort, cfg.Server.Port)
	}

	if cfg.Cache.Enabled && cfg.Cache.MaxEntries <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCacheMaxSize, cfg.Cache.MaxEntries)
	}

	if cfg.Checkpoint.Enabled {
		if _, _, sizeErr := cfg.Checkpoint.MaxSizeBytes(); sizeErr != nil {
			return sizeErr
		}
	}

	return nil
}
