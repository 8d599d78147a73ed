package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration.
type Config struct {
	Pipeline PipelineConfig `yaml:"pipeline" envconfig:"PIPELINE"`
	Fetcher  FetcherConfig  `yaml:"fetcher" envconfig:"FETCHER"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Tracing  TracingConfig  `yaml:"tracing" envconfig:"TRACING"`
}

// PipelineConfig contains the preprocessing knobs. All window and limit
// values are counted in samples at the table's native rate.
type PipelineConfig struct {
	RawFile          string  `yaml:"raw_file" envconfig:"RAW_FILE" validate:"required"`
	ProcessedDir     string  `yaml:"processed_dir" envconfig:"PROCESSED_DIR" validate:"required"`
	ProcessedFile    string  `yaml:"processed_file" envconfig:"PROCESSED_FILE" validate:"required"`
	ResampledFile    string  `yaml:"resampled_file" envconfig:"RESAMPLED_FILE" validate:"required"`
	ResampleFreq     string  `yaml:"resample_freq" envconfig:"RESAMPLE_FREQ" validate:"required"`
	InterpolateLimit int     `yaml:"interpolate_limit" envconfig:"INTERPOLATE_LIMIT" validate:"min=0"`
	ForwardFillLimit int     `yaml:"forward_fill_limit" envconfig:"FORWARD_FILL_LIMIT" validate:"min=0"`
	ClipSigma        float64 `yaml:"clip_sigma" envconfig:"CLIP_SIGMA" validate:"gt=0"`
	WindowSize       int     `yaml:"window_size" envconfig:"WINDOW_SIZE" validate:"min=1"`
	LagShort         int     `yaml:"lag_short" envconfig:"LAG_SHORT" validate:"min=1"`
	LagLong          int     `yaml:"lag_long" envconfig:"LAG_LONG" validate:"min=1"`
}

// FetcherConfig contains dataset acquisition configuration.
type FetcherConfig struct {
	DatasetURL string `yaml:"dataset_url" envconfig:"DATASET_URL" validate:"required,url"`
	RawDir     string `yaml:"raw_dir" envconfig:"RAW_DIR" validate:"required"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=stdout file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// TracingConfig contains OpenTelemetry tracing configuration.
type TracingConfig struct {
	Enabled bool `yaml:"enabled" envconfig:"ENABLED"`
}

// DatasetURL is the canonical location of the raw archive.
const DatasetURL = "https://archive.ics.uci.edu/ml/machine-learning-databases/00235/household_power_consumption.zip"

// Default returns the configuration with all defaults applied.
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			RawFile:          "data/raw/household_power_consumption.txt",
			ProcessedDir:     "data/processed",
			ProcessedFile:    "household_power_consumption_processed.csv",
			ResampledFile:    "household_power_consumption_hourly.csv",
			ResampleFreq:     "H",
			InterpolateLimit: 24,
			ForwardFillLimit: 48,
			ClipSigma:        3,
			WindowSize:       168,
			LagShort:         24,
			LagLong:          168,
		},
		Fetcher: FetcherConfig{
			DatasetURL: DatasetURL,
			RawDir:     "data/raw",
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "stdout",
			FilePath: "logs/preprocess.log",
		},
		Tracing: TracingConfig{
			Enabled: false,
		},
	}
}

// Load builds the configuration in precedence order: defaults, then the
// YAML config file if one exists, then POWER_* environment variables.
func Load() (*Config, error) {
	cfg := Default()

	configFile := os.Getenv("POWER_CONFIG_FILE")
	if configFile == "" {
		configFile = "config.yaml"
	}
	if _, err := os.Stat(configFile); err == nil {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process("POWER", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromFile overlays values from a YAML file onto cfg.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks the configuration against its struct constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if c.Logging.Output != "stdout" && c.Logging.FilePath == "" {
		return fmt.Errorf("config validation failed: logging.output %q requires logging.file_path", c.Logging.Output)
	}
	return nil
}
