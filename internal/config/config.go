// Package config loads server settings from flags, environment variables,
// an optional .env file and an optional YAML config file.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, eg. VECINO_PORT or
// VECINO_STORAGE_DRIVER.
const EnvPrefix = "VECINO"

// Storage drivers accepted by storage.driver.
const (
	DriverSQLite = "sqlite"
	DriverFile   = "file"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

type Config struct {
	Port        int      `mapstructure:"port" yaml:"port" validate:"min=1,max=65535"`
	LogLevel    string   `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`
	CatalogPath string   `mapstructure:"catalog_path" yaml:"catalog_path"`
	Storage     Storage  `mapstructure:"storage" yaml:"storage"`
	Session     Session  `mapstructure:"session" yaml:"session"`
	Branding    Branding `mapstructure:"branding" yaml:"branding"`
}

type Storage struct {
	Driver        string `mapstructure:"driver" yaml:"driver" validate:"oneof=sqlite file redis memory"`
	SQLitePath    string `mapstructure:"sqlite_path" yaml:"sqlite_path" validate:"required_if=Driver sqlite"`
	FilePath      string `mapstructure:"file_path" yaml:"file_path" validate:"required_if=Driver file"`
	RedisAddr     string `mapstructure:"redis_addr" yaml:"redis_addr" validate:"required_if=Driver redis"`
	RedisPassword string `mapstructure:"redis_password" yaml:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db" yaml:"redis_db" validate:"min=0"`
	RedisPrefix   string `mapstructure:"redis_prefix" yaml:"redis_prefix"`
	ProgressKey   string `mapstructure:"progress_key" yaml:"progress_key" validate:"required"`
}

type Session struct {
	// Secret signs the session cookie. When empty a random secret is
	// generated at startup and sessions do not survive a restart.
	Secret       string        `mapstructure:"secret" yaml:"secret" validate:"omitempty,min=32"`
	CookieSecure bool          `mapstructure:"cookie_secure" yaml:"cookie_secure"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout" validate:"min=1m"`
	// CreatePerMinute limits how many new sessions one client address may
	// open per minute.
	CreatePerMinute int `mapstructure:"create_per_minute" yaml:"create_per_minute" validate:"min=1"`

	generated bool
}

// Generated reports whether Secret was generated at load time.
func (s Session) Generated() bool { return s.generated }

type Branding struct {
	AppName      string `mapstructure:"app_name" yaml:"app_name" validate:"required"`
	Municipality string `mapstructure:"municipality" yaml:"municipality" validate:"required"`
}

// Addr returns the listen address for the configured port.
func (c *Config) Addr() string { return fmt.Sprintf(":%d", c.Port) }

// SlogLevel maps LogLevel onto a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("vecino", pflag.ContinueOnError)

	fs.String("config", "", "path to a YAML config file")
	fs.String("env_file", ".env", "dotenv file loaded before reading the environment, ignored when missing")

	fs.Int("port", 8080, "listening port")
	fs.String("log_level", "info", "logging level, one of debug, info, warn, error")
	fs.String("catalog_path", "", "YAML lesson catalog, the built-in course is used when empty")

	fs.String("storage.driver", DriverSQLite, "progress storage, one of sqlite, file, redis, memory")
	fs.String("storage.sqlite_path", "vecino-digital.db", "SQLite database path")
	fs.String("storage.file_path", "progress.json", "JSON progress file path")
	fs.String("storage.redis_addr", "", "redis address, eg. 127.0.0.1:6379")
	fs.String("storage.redis_password", "", "redis password")
	fs.Int("storage.redis_db", 0, "redis database number")
	fs.String("storage.redis_prefix", "", "prefix for every redis key, eg. vecino:")
	fs.String("storage.progress_key", "vecino_digital_progress", "key the progress mapping is stored under")

	fs.String("session.secret", "", "cookie signing secret (at least 32 characters), generated when empty")
	fs.Bool("session.cookie_secure", true, "mark the session cookie Secure, disable for local http")
	fs.Duration("session.idle_timeout", 2*time.Hour, "drop browser sessions idle for longer than this")
	fs.Int("session.create_per_minute", 30, "new sessions allowed per client address per minute")

	fs.String("branding.app_name", "Vecino Digital", "application name shown in the header")
	fs.String("branding.municipality", "Municipalidad", "municipality shown in the header")

	return fs
}

// Load parses args (without the program name) and merges, from lowest to
// highest precedence: flag defaults, the YAML config file, the environment
// and explicitly set flags.
func Load(args []string) (*Config, error) {
	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if envFile, _ := fs.GetString("env_file"); envFile != "" {
		// godotenv never overrides variables already set in the process.
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	}

	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configPath, _ := fs.GetString("config")
	if configPath == "" {
		configPath = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}

	if cfg.Session.Secret == "" {
		secret, err := randomSecret()
		if err != nil {
			return nil, fmt.Errorf("generate session secret: %w", err)
		}
		cfg.Session.Secret = secret
		cfg.Session.generated = true
	}
	return cfg, nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func validate(cfg *Config) error {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("mapstructure")
		if name == "-" {
			return ""
		}
		return name
	})

	err := v.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}

	msg := make([]string, 0, len(verrs))
	for _, field := range verrs {
		namespace := field.Namespace()
		name := namespace[strings.IndexByte(namespace, '.')+1:]
		switch field.Tag() {
		case "required", "required_if":
			msg = append(msg, fmt.Sprintf("%s is required", name))
		case "oneof":
			msg = append(msg, fmt.Sprintf("%s must be one of (%s)", name, field.Param()))
		case "min", "max":
			msg = append(msg, fmt.Sprintf("%s must be %s %s", name, field.Tag(), field.Param()))
		default:
			msg = append(msg, fmt.Sprintf("%s is invalid", name))
		}
	}
	return fmt.Errorf("invalid config:\n%s", strings.Join(msg, "\n"))
}
