// Package config provides Viper-based configuration management for doceboctl
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the complete doceboctl configuration
type Config struct {
	Platform PlatformConfig `mapstructure:"platform"`
	Client   ClientConfig   `mapstructure:"client"`
	Bulk     BulkConfig     `mapstructure:"bulk"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Output   OutputConfig   `mapstructure:"output"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// PlatformConfig holds the platform domain and credentials
type PlatformConfig struct {
	Domain       string `mapstructure:"domain" validate:"required"`
	ClientID     string `mapstructure:"client_id" validate:"required"`
	ClientSecret string `mapstructure:"client_secret" validate:"required"`
	Username     string `mapstructure:"username" validate:"required"`
	Password     string `mapstructure:"password" validate:"required"`
}

// ClientConfig contains gateway tuning
type ClientConfig struct {
	Timeout      time.Duration `mapstructure:"timeout" validate:"gt=0"`
	CallTimeout  time.Duration `mapstructure:"call_timeout" validate:"gt=0"`
	RetryMax     int           `mapstructure:"retry_max" validate:"min=1,max=10"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff" validate:"gte=0"`
	RateLimit    float64       `mapstructure:"rate_limit" validate:"gte=0"`
	RateBurst    int           `mapstructure:"rate_burst" validate:"min=1"`
}

// BulkConfig contains bulk run settings
type BulkConfig struct {
	BatchSize        int           `mapstructure:"batch_size" validate:"min=1,max=50"`
	BatchPause       time.Duration `mapstructure:"batch_pause" validate:"gte=0"`
	AllowUnconfirmed bool          `mapstructure:"allow_unconfirmed"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

// OutputConfig contains output formatting settings
type OutputConfig struct {
	Colors bool `mapstructure:"colors"`
}

// MetricsConfig contains the Prometheus endpoint settings
type MetricsConfig struct {
	Addr string `mapstructure:"addr" validate:"omitempty,hostname_port"`
}

// envAliases are the short variable names accepted besides DOCEBO_PLATFORM_*.
var envAliases = map[string]string{
	"platform.domain":        "DOCEBO_DOMAIN",
	"platform.client_id":     "DOCEBO_CLIENT_ID",
	"platform.client_secret": "DOCEBO_CLIENT_SECRET",
	"platform.username":      "DOCEBO_USERNAME",
	"platform.password":      "DOCEBO_PASSWORD",
}

// Load reads configuration from the .env file, the config file and
// environment variables, in increasing precedence.
func Load(cfgFile, envFile string) (*Config, error) {
	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}

	v := viper.New()

	// Set config file if specified
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		// Search paths for .doceboctl.yaml
		v.SetConfigName(".doceboctl")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/doceboctl")
	}

	// Environment variables
	v.SetEnvPrefix("DOCEBO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, alias := range envAliases {
		envName := "DOCEBO_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, envName, alias); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	// Set defaults
	setDefaults(v)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// Config file not found is OK, use defaults and environment
	}

	// Unmarshal into struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.Platform.Domain = strings.TrimSpace(cfg.Platform.Domain)

	// Validate configuration
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads path (default .env) into the process environment
// without overriding variables that are already set.
func loadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading env file %s: %w", path, err)
	}
	return nil
}

// setDefaults configures default values
func setDefaults(v *viper.Viper) {
	// Platform keys have no defaults; registering them lets Unmarshal see env values
	for key := range envAliases {
		v.SetDefault(key, "")
	}

	// Client defaults
	v.SetDefault("client.timeout", 60*time.Second)
	v.SetDefault("client.call_timeout", 30*time.Second)
	v.SetDefault("client.retry_max", 3)
	v.SetDefault("client.retry_backoff", 500*time.Millisecond)
	v.SetDefault("client.rate_limit", 0.0)
	v.SetDefault("client.rate_burst", 1)

	// Bulk defaults
	v.SetDefault("bulk.batch_size", 3)
	v.SetDefault("bulk.batch_pause", 500*time.Millisecond)
	v.SetDefault("bulk.allow_unconfirmed", false)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	// Output defaults
	v.SetDefault("output.colors", true)

	v.SetDefault("metrics.addr", "")
}

// Validate checks the configuration for errors. Every failing field is reported.
func Validate(cfg *Config) error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
	})

	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	errs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		errs = append(errs, fieldError(fe))
	}
	return errors.Join(errs...)
}

func fieldError(fe validator.FieldError) error {
	// Namespace is "Config.platform.domain"; drop the struct name.
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}

	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required (set it in the config file or DOCEBO_%s)",
			field, strings.ToUpper(strings.ReplaceAll(field, ".", "_")))
	case "oneof":
		return fmt.Errorf("%s must be one of %s, got %v", field, strings.ReplaceAll(fe.Param(), " ", ", "), fe.Value())
	case "min", "gte":
		return fmt.Errorf("%s must be at least %s, got %v", field, fe.Param(), fe.Value())
	case "max":
		return fmt.Errorf("%s must be at most %s, got %v", field, fe.Param(), fe.Value())
	case "gt":
		return fmt.Errorf("%s must be greater than %s, got %v", field, fe.Param(), fe.Value())
	case "hostname_port":
		return fmt.Errorf("%s must be host:port, got %v", field, fe.Value())
	}
	return fmt.Errorf("%s failed %s validation", field, fe.Tag())
}
