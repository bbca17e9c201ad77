package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	ServerHost            string  `mapstructure:"SERVER_HOST" validate:"required"`
	ServerPort            int     `mapstructure:"SERVER_PORT" validate:"required,gte=1,lte=65535"`
	ServerShutdownTimeout int     `mapstructure:"SERVER_SHUTDOWN_TIMEOUT" validate:"required,gte=0"`
	FalKey                string  `mapstructure:"FAL_KEY" validate:"required"`
	FalModel              string  `mapstructure:"FAL_MODEL" validate:"required"`
	FalQueueURL           string  `mapstructure:"FAL_QUEUE_URL" validate:"required,url"`
	FalStorageURL         string  `mapstructure:"FAL_STORAGE_URL" validate:"required,url"`
	FalPollIntervalMS     int     `mapstructure:"FAL_POLL_INTERVAL_MS" validate:"required,gte=100"`
	MaxUploadSize         int64   `mapstructure:"MAX_UPLOAD_SIZE" validate:"required,gte=1"`
	RateLimitCapacity     float64 `mapstructure:"RATE_LIMITER_CAPACITY" validate:"required,gte=1"`
	RateLimitFillRate     float64 `mapstructure:"RATE_LIMITER_FILL_RATE" validate:"required,gt=0"`
	RedisAddr             string  `mapstructure:"REDIS_ADDR"`
	RedisDB               int     `mapstructure:"REDIS_DB" validate:"gte=0,lte=16"`
	MapboxToken           string  `mapstructure:"MAPBOX_TOKEN" validate:"required"`
	PlacesAPIKey          string  `mapstructure:"PLACES_API_KEY"`
	PlacesAPIURL          string  `mapstructure:"PLACES_API_URL"`
	APIBaseURL            string  `mapstructure:"API_BASE_URL"`
	WebDir                string  `mapstructure:"WEB_DIR"`
	LogFile               string  `mapstructure:"LOGGING_FILE"`
	LogLevel              string  `mapstructure:"LOG_LEVEL" validate:"required,oneof=debug info warn error"`
}

func (c *Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.FalPollIntervalMS) * time.Millisecond
}

func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ServerShutdownTimeout) * time.Second
}

// LoadConfigs reads the optional .env style file at path, overlays
// process environment variables and validates the result. A missing
// file is fine, missing required values are not.
func LoadConfigs(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
		}
	}

	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	validate := validator.New()

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", 10)
	v.SetDefault("FAL_KEY", "")
	v.SetDefault("FAL_MODEL", "fal-ai/nano-banana/edit")
	v.SetDefault("FAL_QUEUE_URL", "https://queue.fal.run")
	v.SetDefault("FAL_STORAGE_URL", "https://rest.alpha.fal.ai")
	v.SetDefault("FAL_POLL_INTERVAL_MS", 1000)
	v.SetDefault("MAX_UPLOAD_SIZE", 10<<20)
	v.SetDefault("RATE_LIMITER_CAPACITY", 5.0)
	v.SetDefault("RATE_LIMITER_FILL_RATE", 0.5)
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("MAPBOX_TOKEN", "")
	v.SetDefault("PLACES_API_KEY", "")
	v.SetDefault("PLACES_API_URL", "https://api.locationiq.com/v1/autocomplete")
	v.SetDefault("API_BASE_URL", "")
	v.SetDefault("WEB_DIR", "./web")
	v.SetDefault("LOGGING_FILE", "")
	v.SetDefault("LOG_LEVEL", "info")
}
