// Package config loads service settings from defaults, an optional YAML file
// and GAMESALES_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable the service reads.
const EnvPrefix = "GAMESALES"

// FileEnv names the variable pointing at an optional YAML config file.
const FileEnv = EnvPrefix + "_CONFIG_FILE"

type Config struct {
	Server  ServerConfig  `yaml:"server" envconfig:"SERVER"`
	Data    DataConfig    `yaml:"data" envconfig:"DATA"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Tracing TracingConfig `yaml:"tracing" envconfig:"TRACING"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Addr            string          `yaml:"addr" envconfig:"ADDR" validate:"required,hostname_port"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
	BodyLimit       string          `yaml:"body_limit" envconfig:"BODY_LIMIT" validate:"required"`
	AllowedOrigins  []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" validate:"min=1"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
	StaticDir       string          `yaml:"static_dir" envconfig:"STATIC_DIR"`
}

type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" validate:"gt=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" validate:"gte=1"`
}

// DataConfig describes where the dataset comes from and how it is loaded.
type DataConfig struct {
	Source         string        `yaml:"source" envconfig:"SOURCE" validate:"required"`
	LoadTimeout    time.Duration `yaml:"load_timeout" envconfig:"LOAD_TIMEOUT" validate:"gt=0"`
	HTTPTimeout    time.Duration `yaml:"http_timeout" envconfig:"HTTP_TIMEOUT" validate:"gt=0"`
	Workers        int           `yaml:"workers" envconfig:"WORKERS" validate:"gte=0"`
	MaxBytes       int64         `yaml:"max_bytes" envconfig:"MAX_BYTES" validate:"gt=0"`
	AllowRemoteURI bool          `yaml:"allow_remote_uri" envconfig:"ALLOW_REMOTE_URI"`
	S3Region       string        `yaml:"s3_region" envconfig:"S3_REGION"`
	S3Endpoint     string        `yaml:"s3_endpoint" envconfig:"S3_ENDPOINT" validate:"omitempty,url"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
}

type TracingConfig struct {
	Enabled     bool    `yaml:"enabled" envconfig:"ENABLED"`
	Exporter    string  `yaml:"exporter" envconfig:"EXPORTER" validate:"oneof=stdout none"`
	SampleRatio float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"gte=0,lte=1"`
	ServiceName string  `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			BodyLimit:       "64M",
			AllowedOrigins:  []string{"*"},
			RateLimit:       RateLimitConfig{Enabled: true, RPS: 50, Burst: 100},
		},
		Data: DataConfig{
			Source:      "vgsales.csv",
			LoadTimeout: 2 * time.Minute,
			HTTPTimeout: 30 * time.Second,
			MaxBytes:    64 << 20,
		},
		Logging: LoggingConfig{Level: "info", Format: "json"},
		Tracing: TracingConfig{Exporter: "stdout", SampleRatio: 1, ServiceName: "gamesales"},
	}
}

// Load reads .env (if present), the YAML file named by GAMESALES_CONFIG_FILE
// (if set) and then the environment, and validates the result.
func Load() (*Config, error) {
	return load(".env")
}

func load(dotenv string) (*Config, error) {
	if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", dotenv, err)
	}

	cfg := Default()
	if path := os.Getenv(FileEnv); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// No default tags: envconfig only touches fields whose variable is set.
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// loadFile overlays the YAML at path onto cfg; keys absent from the file keep
// their current values.
func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every field constraint.
func (c *Config) Validate() error {
	return validate.Struct(c)
}
