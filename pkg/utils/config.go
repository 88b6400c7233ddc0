package utils

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Source  SourceConfig  `yaml:"source"`
	Server  ServerConfig  `yaml:"server"`
	Cache   CacheConfig   `yaml:"cache"`
	Views   ViewsConfig   `yaml:"views"`
	Logging LoggingConfig `yaml:"logging"`
}

type SourceConfig struct {
	Kind  string `yaml:"kind" validate:"oneof=sqlite csv"`
	Path  string `yaml:"path" validate:"required"`
	Table string `yaml:"table" validate:"omitempty,max=64"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" validate:"required"`
}

type CacheConfig struct {
	Size int `yaml:"size" validate:"min=1,max=1024"`
}

type ViewsConfig struct {
	TopN          int `yaml:"top_n" validate:"min=1"`
	HistogramBins int `yaml:"histogram_bins" validate:"min=1,max=100"`
}

type LoggingConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `yaml:"json"`
}

func DefaultConfig() Config {
	return Config{
		Source: SourceConfig{
			Kind:  "sqlite",
			Path:  "data/imdb2024.db",
			Table: "movies",
		},
		Server:  ServerConfig{Addr: ":8080"},
		Cache:   CacheConfig{Size: 8},
		Views:   ViewsConfig{TopN: 10, HistogramBins: 20},
		Logging: LoggingConfig{Level: "info"},
	}
}

// LoadEnvFile loads KEY=VALUE pairs from a dotenv file into the process
// environment. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// LoadConfig builds the configuration from defaults, the optional YAML file
// at path and MOVIEDASH_* environment variables, in that order.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config yaml: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	setString := func(key string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) error {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, key, v)
		}
		*dst = n
		return nil
	}

	setString("MOVIEDASH_SOURCE_KIND", &c.Source.Kind)
	setString("MOVIEDASH_DB_PATH", &c.Source.Path)
	setString("MOVIEDASH_SOURCE_PATH", &c.Source.Path)
	setString("MOVIEDASH_SOURCE_TABLE", &c.Source.Table)
	setString("MOVIEDASH_ADDR", &c.Server.Addr)
	setString("MOVIEDASH_LOG_LEVEL", &c.Logging.Level)

	if err := setInt("MOVIEDASH_CACHE_SIZE", &c.Cache.Size); err != nil {
		return err
	}
	if err := setInt("MOVIEDASH_TOP_N", &c.Views.TopN); err != nil {
		return err
	}
	if err := setInt("MOVIEDASH_HISTOGRAM_BINS", &c.Views.HistogramBins); err != nil {
		return err
	}

	if v := strings.TrimSpace(os.Getenv("MOVIEDASH_LOG_JSON")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: MOVIEDASH_LOG_JSON=%q is not a boolean", ErrInvalidConfig, v)
		}
		c.Logging.JSON = b
	}
	return nil
}

var validate = validator.New()

func (c *Config) Validate() error {
	c.Source.Kind = strings.ToLower(strings.TrimSpace(c.Source.Kind))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s failed %q", ErrInvalidConfig, fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func (c *Config) String() string {
	return fmt.Sprintf("Config{Source: %s:%s, Addr: %s, Cache: %d}",
		c.Source.Kind, c.Source.Path, c.Server.Addr, c.Cache.Size)
}
