// Package config handles application configuration and command-line argument parsing.
//
// Values are layered: built-in defaults, then an optional YAML file named
// with --config, then command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/joe/dirnav/internal/entry"
	"github.com/joe/dirnav/internal/logging"
	"github.com/joe/dirnav/internal/navigator"
	"github.com/joe/dirnav/internal/pipeline"
	"github.com/joe/dirnav/internal/traversal"
)

// Exported constants.
const (
	DefaultIconCacheCapacity = 500
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "json"
)

// Config holds the application configuration
type Config struct {
	Path       string `arg:"positional" help:"Directory to open (default: current directory)"`
	ConfigFile string `arg:"-c,--config" help:"YAML file with default settings; flags override it"`

	SortKey    entry.SortKey   `arg:"-s,--sort" help:"Sort key: name|size|date"`
	SortOrder  entry.SortOrder `arg:"-o,--order" help:"Sort order: asc|desc"`
	ShowHidden bool            `arg:"-a,--all" help:"Show entries whose names start with a dot"`
	MaxDepth   int             `arg:"-d,--depth" help:"Levels to list below the directory (0 = unlimited)"`
	Exclude    []string        `arg:"-x,--exclude,separate" help:"Glob pattern of entries to hide (repeatable)"`
	Workers    int             `arg:"-w,--workers" help:"Metadata workers per traversal (0 = number of CPUs)"`
	Streaming  bool            `arg:"--streaming" help:"Show entries in discovery order instead of sorted"`

	BatchSize     int           `arg:"--batch-size" help:"Entries per batch delivered to the view"`
	FlushInterval time.Duration `arg:"--flush-interval" help:"Maximum time a partial batch is held back"`

	CacheCapacity     int `arg:"--cache-size" help:"Directories kept in the listing cache"`
	IconCacheCapacity int `arg:"--icon-cache-size" help:"Icons kept in the icon cache"`

	Plain       bool   `arg:"-p,--plain" help:"Print the listing and exit instead of starting the interactive view"`
	LogLevel    string `arg:"--log-level" help:"Log level: debug|info|warn|error"`
	LogFormat   string `arg:"--log-format" help:"Log format: json|console"`
	LogFile     string `arg:"--log-file" help:"Write logs to this file (default: logging disabled)"`
	MetricsAddr string `arg:"--metrics-addr" help:"Serve Prometheus metrics on this address, e.g. :9090"`
}

// Description returns the program description for go-arg
func (Config) Description() string {
	return "A fast directory browser with cached, incremental listings"
}

// Version returns the version string for go-arg
func (Config) Version() string {
	return "dirnav 1.0.0"
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		SortKey:           entry.SortByName,
		SortOrder:         entry.Ascending,
		MaxDepth:          traversal.DefaultMaxDepth,
		BatchSize:         pipeline.DefaultBatchSize,
		FlushInterval:     pipeline.DefaultFlushInterval,
		CacheCapacity:     navigator.DefaultCacheCapacity,
		IconCacheCapacity: DefaultIconCacheCapacity,
		LogLevel:          DefaultLogLevel,
		LogFormat:         DefaultLogFormat,
	}
}

// FileConfig is the YAML file layout. Pointer fields distinguish unset from zero.
type FileConfig struct {
	Sort              *string        `yaml:"sort,omitempty"`
	Order             *string        `yaml:"order,omitempty"`
	ShowHidden        *bool          `yaml:"show_hidden,omitempty"`
	MaxDepth          *int           `yaml:"max_depth,omitempty"`
	Exclude           []string       `yaml:"exclude,omitempty"`
	Workers           *int           `yaml:"workers,omitempty"`
	Streaming         *bool          `yaml:"streaming,omitempty"`
	BatchSize         *int           `yaml:"batch_size,omitempty"`
	FlushInterval     *time.Duration `yaml:"flush_interval,omitempty"`
	CacheCapacity     *int           `yaml:"cache_size,omitempty"`
	IconCacheCapacity *int           `yaml:"icon_cache_size,omitempty"`
	LogLevel          *string        `yaml:"log_level,omitempty"`
	LogFormat         *string        `yaml:"log_format,omitempty"`
	LogFile           *string        `yaml:"log_file,omitempty"`
	MetricsAddr       *string        `yaml:"metrics_addr,omitempty"`
}

// LoadFile reads a YAML config file.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path is chosen by the user
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fileCfg FileConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return &fileCfg, nil
}

// Merge applies the values set in fileCfg onto cfg.
func (cfg *Config) Merge(fileCfg *FileConfig) error {
	if fileCfg.Sort != nil {
		key, err := entry.ParseSortKey(*fileCfg.Sort)
		if err != nil {
			return err
		}
		cfg.SortKey = key
	}

	if fileCfg.Order != nil {
		order, err := entry.ParseSortOrder(*fileCfg.Order)
		if err != nil {
			return err
		}
		cfg.SortOrder = order
	}

	if fileCfg.Exclude != nil {
		cfg.Exclude = append([]string(nil), fileCfg.Exclude...)
	}

	mergeValue(&cfg.ShowHidden, fileCfg.ShowHidden)
	mergeValue(&cfg.MaxDepth, fileCfg.MaxDepth)
	mergeValue(&cfg.Workers, fileCfg.Workers)
	mergeValue(&cfg.Streaming, fileCfg.Streaming)
	mergeValue(&cfg.BatchSize, fileCfg.BatchSize)
	mergeValue(&cfg.FlushInterval, fileCfg.FlushInterval)
	mergeValue(&cfg.CacheCapacity, fileCfg.CacheCapacity)
	mergeValue(&cfg.IconCacheCapacity, fileCfg.IconCacheCapacity)
	mergeValue(&cfg.LogLevel, fileCfg.LogLevel)
	mergeValue(&cfg.LogFormat, fileCfg.LogFormat)
	mergeValue(&cfg.LogFile, fileCfg.LogFile)
	mergeValue(&cfg.MetricsAddr, fileCfg.MetricsAddr)

	return nil
}

func mergeValue[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// ParseFlags parses command-line flags and returns configuration
func ParseFlags() (*Config, error) {
	cfg, parser, err := Parse(os.Args[1:])

	switch {
	case errors.Is(err, arg.ErrHelp):
		parser.WriteHelp(os.Stdout)
		os.Exit(0)
	case errors.Is(err, arg.ErrVersion):
		fmt.Fprintln(os.Stdout, Config{}.Version())
		os.Exit(0)
	case err != nil && parser != nil:
		parser.Fail(err.Error())
	}

	return cfg, err
}

// Parse builds the configuration from args. The parser is returned so callers
// can print usage for arg.ErrHelp.
func Parse(args []string) (*Config, *arg.Parser, error) {
	// First pass only finds the config file
	probe := Defaults()

	parser, err := arg.NewParser(arg.Config{Program: "dirnav"}, probe)
	if err != nil {
		return nil, nil, err
	}

	if err := parser.Parse(args); err != nil {
		return nil, parser, err
	}

	if probe.ConfigFile == "" {
		cfg, err := PostProcessConfig(probe)
		return cfg, parser, err
	}

	layered := Defaults()

	fileCfg, err := LoadFile(probe.ConfigFile)
	if err != nil {
		return nil, parser, err
	}

	if err := layered.Merge(fileCfg); err != nil {
		return nil, parser, fmt.Errorf("invalid config file %s: %w", probe.ConfigFile, err)
	}

	// Second pass lets flags override the file
	parser, err = arg.NewParser(arg.Config{Program: "dirnav"}, layered)
	if err != nil {
		return nil, nil, err
	}

	if err := parser.Parse(args); err != nil {
		return nil, parser, err
	}

	cfg, err := PostProcessConfig(layered)

	return cfg, parser, err
}

// PostProcessConfig applies post-processing logic to a parsed config
func PostProcessConfig(cfg *Config) (*Config, error) {
	if cfg.Path == "" {
		cfg.Path = "."
	}

	abs, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", cfg.Path, err)
	}
	cfg.Path = abs

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks value ranges and exclude patterns.
func (cfg *Config) Validate() error {
	if cfg.MaxDepth < 0 {
		return fmt.Errorf("depth must not be negative: %d", cfg.MaxDepth)
	}

	if cfg.Workers < 0 {
		return fmt.Errorf("workers must not be negative: %d", cfg.Workers)
	}

	if cfg.BatchSize < 1 {
		return fmt.Errorf("batch size must be at least 1: %d", cfg.BatchSize)
	}

	if cfg.FlushInterval <= 0 {
		return fmt.Errorf("flush interval must be positive: %s", cfg.FlushInterval)
	}

	if cfg.CacheCapacity < 1 || cfg.IconCacheCapacity < 1 {
		return fmt.Errorf("cache sizes must be at least 1")
	}

	for _, pattern := range cfg.Exclude {
		if err := ValidateFilePattern(pattern); err != nil {
			return err
		}
	}

	return nil
}

// ValidatePath checks that the configured path exists and is a directory.
func (cfg *Config) ValidatePath() error {
	info, err := os.Stat(cfg.Path)
	if os.IsNotExist(err) {
		return fmt.Errorf("path does not exist: %s", cfg.Path)
	}
	if err != nil {
		return fmt.Errorf("cannot access path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", cfg.Path)
	}

	return nil
}

// ValidateFilePattern validates a doublestar glob pattern
func ValidateFilePattern(pattern string) error {
	if pattern == "" {
		return nil
	}

	if !doublestar.ValidatePattern(pattern) {
		return fmt.Errorf("invalid file pattern: %s", pattern)
	}

	return nil
}

// TraversalConfig returns the traversal settings.
func (cfg *Config) TraversalConfig() traversal.Config {
	return traversal.Config{
		SortKey:       cfg.SortKey,
		SortOrder:     cfg.SortOrder,
		IncludeHidden: cfg.ShowHidden,
		MaxDepth:      cfg.MaxDepth,
		Exclude:       cfg.Exclude,
		Workers:       cfg.Workers,
		Streaming:     cfg.Streaming,
	}
}

// BatchConfig returns the batching thresholds.
func (cfg *Config) BatchConfig() pipeline.BatchConfig {
	return pipeline.BatchConfig{BatchSize: cfg.BatchSize, FlushInterval: cfg.FlushInterval}
}

// LoggingConfig returns the logger settings.
func (cfg *Config) LoggingConfig() logging.Config {
	return logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, OutputPath: cfg.LogFile}
}
