package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/pricecast-dev/pricecast/internal/cleaning"
	"github.com/pricecast-dev/pricecast/internal/gbm"
	"github.com/pricecast-dev/pricecast/internal/logging"
)

// FileName is the config file at the root of a project.
const FileName = "pricecast.yaml"

// Config represents the top-level pricecast.yaml configuration.
type Config struct {
	Project  ProjectConfig  `yaml:"project"`
	Data     DataConfig     `yaml:"data"`
	Cleaning CleaningConfig `yaml:"cleaning"`
	Training TrainingConfig `yaml:"training"`
	Forecast ForecastConfig `yaml:"forecast"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Git      GitConfig      `yaml:"git"`
}

// ProjectConfig names the project and the market it covers.
type ProjectConfig struct {
	Name   string `yaml:"name"`
	Region string `yaml:"region"`
}

// DataConfig locates inputs and intermediate tables, relative to the
// project root.
type DataConfig struct {
	Input    string `yaml:"input"` // a CSV file or a directory of them
	Features string `yaml:"features"`
}

// CleaningConfig holds the quality filter thresholds.
type CleaningConfig struct {
	MinTradeYear int     `yaml:"min_trade_year"`
	MinUnitPrice float64 `yaml:"min_unit_price"`
	MaxUnitPrice float64 `yaml:"max_unit_price"`
	MaxHouseAge  int     `yaml:"max_house_age"`
}

// TrainingConfig controls the split and the boosting hyperparameters.
type TrainingConfig struct {
	TestRatio  float64 `yaml:"test_ratio"`
	Seed       uint64  `yaml:"seed"`
	gbm.Params `yaml:",inline"`
}

// ForecastConfig bounds the projection years.
type ForecastConfig struct {
	BaseYear     int `yaml:"base_year"`
	HorizonYears int `yaml:"horizon_years"`
}

// ServerConfig configures the form UI.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig selects the log level and handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Policy converts the cleaning section into filter thresholds.
func (c CleaningConfig) Policy() cleaning.Policy {
	return cleaning.Policy{
		MinTradeYear: c.MinTradeYear,
		MinUnitPrice: c.MinUnitPrice,
		MaxUnitPrice: c.MaxUnitPrice,
		MaxHouseAge:  c.MaxHouseAge,
	}
}

// Load reads a pricecast.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default("")
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault reads <projectRoot>/pricecast.yaml, falling back to
// defaults when the file does not exist.
func LoadOrDefault(projectRoot string) (*Config, error) {
	cfg, err := Load(filepath.Join(projectRoot, FileName))
	if errors.Is(err, os.ErrNotExist) {
		abs, absErr := filepath.Abs(projectRoot)
		if absErr != nil {
			abs = projectRoot
		}
		return Default(filepath.Base(abs)), nil
	}
	return cfg, err
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default(projectName string) *Config {
	p := cleaning.DefaultPolicy()
	return &Config{
		Project: ProjectConfig{
			Name:   projectName,
			Region: "高雄市",
		},
		Data: DataConfig{
			Input:    "data/raw",
			Features: "data/features.csv",
		},
		Cleaning: CleaningConfig{
			MinTradeYear: p.MinTradeYear,
			MinUnitPrice: p.MinUnitPrice,
			MaxUnitPrice: p.MaxUnitPrice,
			MaxHouseAge:  p.MaxHouseAge,
		},
		Training: TrainingConfig{
			TestRatio: 0.2,
			Seed:      42,
			Params:    gbm.DefaultParams(),
		},
		Forecast: ForecastConfig{
			BaseYear:     2025,
			HorizonYears: 5,
		},
		Server: ServerConfig{
			Addr: ":8501",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Git: GitConfig{
			AutoCommit:  false,
			AuthorName:  "pricecast",
			AuthorEmail: "pricecast@localhost",
		},
	}
}

// Validate reports every setting that cannot work.
func (c *Config) Validate() error {
	var errs []error
	if c.Data.Input == "" {
		errs = append(errs, errors.New("data.input is empty"))
	}
	if c.Data.Features == "" {
		errs = append(errs, errors.New("data.features is empty"))
	}
	if c.Cleaning.MinUnitPrice >= c.Cleaning.MaxUnitPrice {
		errs = append(errs, fmt.Errorf("cleaning.min_unit_price %g must be below max_unit_price %g",
			c.Cleaning.MinUnitPrice, c.Cleaning.MaxUnitPrice))
	}
	if c.Cleaning.MaxHouseAge <= 0 {
		errs = append(errs, fmt.Errorf("cleaning.max_house_age must be positive, got %d", c.Cleaning.MaxHouseAge))
	}
	if c.Training.TestRatio <= 0 || c.Training.TestRatio >= 1 {
		errs = append(errs, fmt.Errorf("training.test_ratio %g not in (0, 1)", c.Training.TestRatio))
	}
	if err := c.Training.Params.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("training: %w", err))
	}
	if c.Forecast.HorizonYears < 0 {
		errs = append(errs, fmt.Errorf("forecast.horizon_years must not be negative, got %d", c.Forecast.HorizonYears))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// InputPath resolves data.input against the project root.
func (c *Config) InputPath(projectRoot string) string {
	return resolve(projectRoot, c.Data.Input)
}

// FeaturesPath resolves data.features against the project root.
func (c *Config) FeaturesPath(projectRoot string) string {
	return resolve(projectRoot, c.Data.Features)
}

func resolve(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}
