// Package config provides environment-based configuration for
// Project-Tracker.
//
// Configuration is loaded from environment variables using Viper, with
// sensible defaults for development.
//
// # Environment Variables
//
//   - DB_TYPE: Database type (sqlite, postgres, mysql). Default: sqlite
//   - DSN: Database connection string. Default: tracker.db
//   - SKIP_AUTO_MIGRATE: Skip automatic database migrations. Default: false
//   - LOG_LEVEL: Logging level (debug, info, warn, error). Default: info
//   - PORT: HTTP server port. Default: 3000
//   - SESSION_SECRET: HMAC secret for session tokens. Must be set in production.
//   - SESSION_TTL_HOURS: Session lifetime. Default: 24
//   - BCRYPT_COST: Credential hashing cost. Default: 12
//   - REDIS_ADDR: Optional Redis address for the shared lockout store.
//   - LOCKOUT_MAX_FAILURES: Failed logins before lockout. Default: 5
//   - LOCKOUT_DURATION_MINUTES: Lockout length. Default: 15
package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	DBType          string `mapstructure:"DB_TYPE"` // sqlite, postgres, mysql
	DSN             string `mapstructure:"DSN"`
	SkipAutoMigrate bool   `mapstructure:"SKIP_AUTO_MIGRATE"`
	LogLevel        string `mapstructure:"LOG_LEVEL"`
	Port            int    `mapstructure:"PORT"`

	SessionSecret   string `mapstructure:"SESSION_SECRET"`
	SessionTTLHours int    `mapstructure:"SESSION_TTL_HOURS"`
	BcryptCost      int    `mapstructure:"BCRYPT_COST"`

	RedisAddr              string `mapstructure:"REDIS_ADDR"`
	LockoutMaxFailures     int    `mapstructure:"LOCKOUT_MAX_FAILURES"`
	LockoutDurationMinutes int    `mapstructure:"LOCKOUT_DURATION_MINUTES"`
}

func LoadConfig() (*Config, error) {
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("PORT", 3000)
	viper.SetDefault("DB_TYPE", "sqlite")
	viper.SetDefault("DSN", "tracker.db")
	viper.SetDefault("SKIP_AUTO_MIGRATE", false)
	viper.SetDefault("SESSION_SECRET", "dev-secret-change-me")
	viper.SetDefault("SESSION_TTL_HOURS", 24)
	viper.SetDefault("BCRYPT_COST", 12)
	viper.SetDefault("LOCKOUT_MAX_FAILURES", 5)
	viper.SetDefault("LOCKOUT_DURATION_MINUTES", 15)

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
