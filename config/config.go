// Package config loads runtime settings from defaults, an optional config
// file, a .env file and PETTYCASH_* environment variables, in increasing
// order of precedence. Command-line flags bound by the cli package win over
// all of them.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	"golang.org/x/crypto/bcrypt"
)

// Storage backends.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Keys, also the lower-case suffix of the PETTYCASH_* environment variables.
const (
	KeyStore          = "store"
	KeyLogLevel       = "log_level"
	KeyLogDevelopment = "log_development"
	KeyLogFile        = "log_file"
	KeySeedDemoUsers  = "seed_demo_users"
	KeyBcryptCost     = "bcrypt_cost"
	KeyReconcileEvery = "reconcile_interval"
)

const EnvPrefix = "PETTYCASH"

// Config holds application configuration.
type Config struct {
	Store          string `mapstructure:"store"`
	LogLevel       string `mapstructure:"log_level"`
	LogDevelopment bool   `mapstructure:"log_development"`
	LogFile        string `mapstructure:"log_file"` // empty: stderr only
	SeedDemoUsers  bool   `mapstructure:"seed_demo_users"`
	BcryptCost     int    `mapstructure:"bcrypt_cost"`

	// ReconcileInterval is how often the shell re-verifies fund balances.
	// Zero disables the check.
	ReconcileInterval time.Duration `mapstructure:"reconcile_interval"`
}

// New returns a viper instance with defaults and environment binding set up.
// Callers may bind flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyStore, StoreMemory)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogDevelopment, false)
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeySeedDemoUsers, true)
	v.SetDefault(KeyBcryptCost, bcrypt.DefaultCost)
	v.SetDefault(KeyReconcileEvery, 5*time.Minute)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads file (if set) and the environment into a validated Config.
func Load(v *viper.Viper, file string) (Config, error) {
	// A missing .env is normal.
	_ = godotenv.Load()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated and ranged settings.
func (c Config) Validate() error {
	var errs []error
	switch c.Store {
	case StoreMemory, StoreSQLite:
	default:
		errs = append(errs, fmt.Errorf("store must be %q or %q, got %q", StoreMemory, StoreSQLite, c.Store))
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("bcrypt_cost must be between %d and %d, got %d",
			bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost))
	}
	if c.ReconcileInterval < 0 {
		errs = append(errs, fmt.Errorf("reconcile_interval cannot be negative, got %s", c.ReconcileInterval))
	}
	return errors.Join(errs...)
}
