// Package config loads and validates gateway configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/viper"
)

// DefaultDotenvPath is the dotenv file consulted when present in the working directory.
const DefaultDotenvPath = ".env"

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	QRZ     QRZConfig     `mapstructure:"qrz"`
	Logging LoggingConfig `mapstructure:"logging"`
	Sentry  SentryConfig  `mapstructure:"sentry"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port" validate:"gt=0,lte=65535"`
}

// QRZConfig holds the upstream registry endpoint and credentials.
type QRZConfig struct {
	BaseURL        string `mapstructure:"base_url" validate:"required,http_url"`
	User           string `mapstructure:"user" validate:"required"`
	Pass           Secret `mapstructure:"pass" validate:"required"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"gte=0"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
}

// SentryConfig enables panic reporting. An empty DSN disables it.
type SentryConfig struct {
	DSN         Secret `mapstructure:"dsn"`
	Environment string `mapstructure:"environment"`
}

// envBindings lists every key with the environment variables that may set it.
// The first variable that is set wins.
var envBindings = []struct {
	key  string
	envs []string
}{
	{"server.host", []string{"SERVER_HOST", "HOST"}},
	{"server.port", []string{"SERVER_PORT", "PORT"}},
	{"qrz.base_url", []string{"QRZ_BASE_URL"}},
	{"qrz.user", []string{"QRZ_USER"}},
	{"qrz.pass", []string{"QRZ_PASS"}},
	{"qrz.timeout_seconds", []string{"QRZ_TIMEOUT_SECONDS"}},
	{"logging.development", []string{"LOGGING_DEVELOPMENT"}},
	{"logging.level", []string{"LOGGING_LEVEL"}},
	{"sentry.dsn", []string{"SENTRY_DSN"}},
	{"sentry.environment", []string{"SENTRY_ENVIRONMENT"}},
}

// Load builds a Config from defaults, an optional .env file, an optional
// config file and the environment, in increasing order of precedence.
func Load(path string) (Config, error) {
	return load(path, DefaultDotenvPath)
}

func load(path, dotenvPath string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if err := applyDotenv(v, dotenvPath); err != nil {
		return Config{}, err
	}

	for _, b := range envBindings {
		args := append([]string{b.key}, b.envs...)
		if err := v.BindEnv(args...); err != nil {
			return Config{}, fmt.Errorf("bind env %s: %w", b.key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("qrz.timeout_seconds", 0)
	v.SetDefault("logging.development", false)
	v.SetDefault("logging.level", "info")
}

// applyDotenv layers dotenv values just above the built-in defaults.
func applyDotenv(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat dotenv: %w", err)
	}

	dv := viper.New()
	dv.SetConfigFile(path)
	dv.SetConfigType("env")
	if err := dv.ReadInConfig(); err != nil {
		return fmt.Errorf("read dotenv: %w", err)
	}

	for _, b := range envBindings {
		for _, name := range b.envs {
			key := strings.ToLower(name)
			if dv.IsSet(key) {
				v.SetDefault(b.key, dv.Get(key))
				break
			}
		}
	}
	return nil
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate config: %w", err)
	}

	var result *multierror.Error
	for _, fe := range fieldErrs {
		key := strings.TrimPrefix(fe.Namespace(), "Config.")
		result = multierror.Append(result, fmt.Errorf("%s failed %q validation", key, fe.Tag()))
	}
	return result.ErrorOrNil()
}

// Address returns the host:port pair the HTTP server listens on.
func (s ServerConfig) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Timeout converts the optional upstream timeout. Zero means the transport default.
func (q QRZConfig) Timeout() time.Duration {
	return time.Duration(q.TimeoutSeconds) * time.Second
}
