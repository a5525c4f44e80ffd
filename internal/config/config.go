package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// DefaultConfigFile is looked up in the working directory when no explicit
// config path is given.
const DefaultConfigFile = "sales-analytics.yml"

// Config represents the complete application configuration
type Config struct {
	Input    InputConfig    `yaml:"input" envconfig:"INPUT"`
	Output   OutputConfig   `yaml:"output" envconfig:"OUTPUT"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Analysis AnalysisConfig `yaml:"analysis" envconfig:"ANALYSIS"`
}

// InputConfig describes where the sales dataset is read from
type InputConfig struct {
	Path string `yaml:"path" envconfig:"PATH" validate:"required"`
}

// OutputConfig controls the export side of the pipeline
type OutputConfig struct {
	Dir     string   `yaml:"dir" envconfig:"DIR" validate:"required"`
	Formats []string `yaml:"formats" envconfig:"FORMATS" validate:"min=1,dive,oneof=csv xlsx report"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// AnalysisConfig holds the thresholds for insight rules and the
// growth-bucketing policy. All values have compile-time defaults; the
// config file and SALES_* environment variables may override them.
type AnalysisConfig struct {
	ConcentrationThreshold float64 `yaml:"concentration_threshold" envconfig:"CONCENTRATION_THRESHOLD" validate:"gt=0,lte=1"`
	OutlierStdDevs         float64 `yaml:"outlier_std_devs" envconfig:"OUTLIER_STD_DEVS" validate:"gt=0"`
	CorrelationMin         float64 `yaml:"correlation_min" envconfig:"CORRELATION_MIN" validate:"gte=0,lte=1"`
	GrowthBucket           string  `yaml:"growth_bucket" envconfig:"GROWTH_BUCKET" validate:"oneof=auto daily weekly"`
}

// Default returns the built-in configuration. File and environment
// overrides are layered on top of it by Load.
func Default() *Config {
	return &Config{
		Input:  InputConfig{Path: "sales.csv"},
		Output: OutputConfig{Dir: "output", Formats: []string{"csv", "xlsx", "report"}},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "text",
			Output:   "console",
			FilePath: "logs/analysis.log",
		},
		Analysis: AnalysisConfig{
			ConcentrationThreshold: 0.75,
			OutlierStdDevs:         2.0,
			CorrelationMin:         0.6,
			GrowthBucket:           "auto",
		},
	}
}

// Load loads configuration from defaults, an optional YAML file and
// SALES_* environment variables, in that order of precedence (env wins).
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom is Load with an explicit config file path. A missing file is
// not an error; the defaults and environment still apply.
func LoadFrom(configFile string) (*Config, error) {
	cfg := *Default()

	if _, err := os.Stat(configFile); err == nil {
		fileCfg, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileCfg, cfg)
	}

	// Environment overrides take precedence over file values
	if err := envconfig.Process("SALES", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs merges file config over the defaults where the file
// provides a value.
func mergeConfigs(fileConfig, defaults Config) Config {
	merged := defaults

	if fileConfig.Input.Path != "" {
		merged.Input.Path = fileConfig.Input.Path
	}
	if fileConfig.Output.Dir != "" {
		merged.Output.Dir = fileConfig.Output.Dir
	}
	if len(fileConfig.Output.Formats) > 0 {
		merged.Output.Formats = fileConfig.Output.Formats
	}
	if fileConfig.Logging.Level != "" {
		merged.Logging.Level = fileConfig.Logging.Level
	}
	if fileConfig.Logging.Format != "" {
		merged.Logging.Format = fileConfig.Logging.Format
	}
	if fileConfig.Logging.Output != "" {
		merged.Logging.Output = fileConfig.Logging.Output
	}
	if fileConfig.Logging.FilePath != "" {
		merged.Logging.FilePath = fileConfig.Logging.FilePath
	}
	if fileConfig.Analysis.ConcentrationThreshold != 0 {
		merged.Analysis.ConcentrationThreshold = fileConfig.Analysis.ConcentrationThreshold
	}
	if fileConfig.Analysis.OutlierStdDevs != 0 {
		merged.Analysis.OutlierStdDevs = fileConfig.Analysis.OutlierStdDevs
	}
	if fileConfig.Analysis.CorrelationMin != 0 {
		merged.Analysis.CorrelationMin = fileConfig.Analysis.CorrelationMin
	}
	if fileConfig.Analysis.GrowthBucket != "" {
		merged.Analysis.GrowthBucket = fileConfig.Analysis.GrowthBucket
	}

	return merged
}

// Validate checks the configuration against the struct validation rules.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}
	return nil
}

// ExportsFormat reports whether the named export format is enabled.
func (c *Config) ExportsFormat(format string) bool {
	for _, f := range c.Output.Formats {
		if f == format {
			return true
		}
	}
	return false
}
