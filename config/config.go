// Package config loads the service configuration from a YAML file, a .env
// file and the process environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Http struct {
		Host         string        `yaml:"host" env:"PREDICT_HTTP_HOST" validate:"omitempty,hostname|ip"`
		Port         int           `yaml:"port" env:"PREDICT_HTTP_PORT" validate:"min=1,max=65535"`
		ReadTimeout  time.Duration `yaml:"read_timeout" env:"PREDICT_HTTP_READ_TIMEOUT"`
		WriteTimeout time.Duration `yaml:"write_timeout" env:"PREDICT_HTTP_WRITE_TIMEOUT"`
		MaxBodyBytes int64         `yaml:"max_body_bytes" env:"PREDICT_HTTP_MAX_BODY_BYTES" validate:"min=1"`
	} `yaml:"http"`
	Model struct {
		Type string `yaml:"type" env:"PREDICT_MODEL_TYPE" validate:"oneof=decision_tree logistic_regression"`
		Path string `yaml:"path" env:"PREDICT_MODEL_PATH" validate:"required"`
	} `yaml:"model"`
	Cache struct {
		Size int `yaml:"size" env:"PREDICT_CACHE_SIZE" validate:"min=0"`
	} `yaml:"cache"`
	Log struct {
		Level      string `yaml:"level" env:"PREDICT_LOG_LEVEL" validate:"oneof=debug info warn error"`
		Format     string `yaml:"format" env:"PREDICT_LOG_FORMAT" validate:"oneof=json console"`
		File       string `yaml:"file" env:"PREDICT_LOG_FILE"`
		MaxSizeMB  int    `yaml:"max_size_mb" env:"PREDICT_LOG_MAX_SIZE_MB" validate:"min=0"`
		MaxBackups int    `yaml:"max_backups" env:"PREDICT_LOG_MAX_BACKUPS" validate:"min=0"`
		MaxAgeDays int    `yaml:"max_age_days" env:"PREDICT_LOG_MAX_AGE_DAYS" validate:"min=0"`
		Compress   bool   `yaml:"compress" env:"PREDICT_LOG_COMPRESS"`
	} `yaml:"log"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" env:"PREDICT_METRICS_ENABLED"`
		Path    string `yaml:"path" env:"PREDICT_METRICS_PATH" validate:"omitempty,startswith=/"`
	} `yaml:"metrics"`
}

// Default returns the reference settings: all interfaces on port 5001.
func Default() *Config {
	var c Config
	c.Http.Host = "0.0.0.0"
	c.Http.Port = 5001
	c.Http.ReadTimeout = 30 * time.Second
	c.Http.WriteTimeout = 30 * time.Second
	c.Http.MaxBodyBytes = 1 << 20
	c.Model.Type = "logistic_regression"
	c.Model.Path = "model.json"
	c.Cache.Size = 1024
	c.Log.Level = "info"
	c.Log.Format = "json"
	c.Log.MaxSizeMB = 100
	c.Log.MaxBackups = 3
	c.Log.MaxAgeDays = 28
	c.Metrics.Enabled = true
	c.Metrics.Path = "/metrics"
	return &c
}

// Load starts from Default, overlays the YAML file at path when it exists,
// then .env and environment variables, and validates the result.
func Load(path string) (*Config, error) {
	config := Default()

	if path != "" {
		if err := loadFile(path, config); err != nil {
			return nil, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if _, err := env.UnmarshalFromEnviron(config); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	if err := Validate(config); err != nil {
		return nil, err
	}
	return config, nil
}

func Validate(config *Config) error {
	if err := validator.New().Struct(config); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if config.Metrics.Enabled && config.Metrics.Path == "" {
		return errors.New("invalid config: metrics.path is required when metrics are enabled")
	}
	return nil
}

// Addr is the listen address in host:port form.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Http.Host, c.Http.Port)
}

func loadFile(path string, config *Config) error {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(config); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
