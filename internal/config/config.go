package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Dataset  DatasetConfig  `mapstructure:"dataset"`
	Matching MatchingConfig `mapstructure:"matching"`
	Log      LogConfig      `mapstructure:"log"`
	Cache    CacheConfig    `mapstructure:"cache"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// DatasetConfig selects where listings come from. When SQLitePath is set the
// CSV/JSON sources are imported into it and the snapshot is read back from SQLite.
type DatasetConfig struct {
	CSVPath       string `mapstructure:"csv_path"`
	JSONPath      string `mapstructure:"json_path"`
	SQLitePath    string `mapstructure:"sqlite_path"`
	ReferenceYear int    `mapstructure:"reference_year"`
}

type MatchingConfig struct {
	BandsPath string `mapstructure:"bands_path"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type CacheConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

var defaults = map[string]any{
	"server.address":         ":8080",
	"dataset.csv_path":       "data/car_details.csv",
	"dataset.json_path":      "",
	"dataset.sqlite_path":    "",
	"dataset.reference_year": 2024,
	"matching.bands_path":    "configs/bands.json",
	"log.level":              "info",
	"log.format":             "console",
	"cache.enabled":          true,
}

// Load reads .env, an optional configs/config.yaml and environment overrides
// such as DATASET_CSV_PATH or LOG_LEVEL.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return errors.New("server.address is required")
	}
	if c.Dataset.CSVPath == "" && c.Dataset.JSONPath == "" && c.Dataset.SQLitePath == "" {
		return errors.New("one of dataset.csv_path, dataset.json_path or dataset.sqlite_path is required")
	}
	if c.Dataset.ReferenceYear <= 0 {
		return fmt.Errorf("dataset.reference_year must be positive, got %d", c.Dataset.ReferenceYear)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json, got %q", c.Log.Format)
	}
	return nil
}
