package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	ServerPort string `mapstructure:"SERVER_PORT"`

	DbHost    string `mapstructure:"POSTGRES_HOST"`
	DbPort    string `mapstructure:"POSTGRES_PORT"`
	DbUser    string `mapstructure:"POSTGRES_USER"`
	DbPas     string `mapstructure:"POSTGRES_PASSWORD"`
	DbName    string `mapstructure:"POSTGRES_DB"`
	DbSSLMode string `mapstructure:"POSTGRES_SSLMODE"`

	// RedisAddr empty disables the login throttle.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	MenuItemsPerPage int `mapstructure:"MENU_ITEMS_PER_PAGE"`
	OrdersPerPage    int `mapstructure:"ORDERS_PER_PAGE"`

	LoginMaxFailures int           `mapstructure:"LOGIN_MAX_FAILURES"`
	LoginCooldown    time.Duration `mapstructure:"LOGIN_COOLDOWN"`

	AdminUsername string `mapstructure:"ADMIN_USERNAME"`
	AdminPassword string `mapstructure:"ADMIN_PASSWORD"`
	AdminEmail    string `mapstructure:"ADMIN_EMAIL"`
}

var defaults = map[string]any{
	"SERVER_PORT":         "8080",
	"POSTGRES_HOST":       "localhost",
	"POSTGRES_PORT":       "5432",
	"POSTGRES_USER":       "postgres",
	"POSTGRES_PASSWORD":   "",
	"POSTGRES_DB":         "littlelemon",
	"POSTGRES_SSLMODE":    "disable",
	"REDIS_ADDR":          "",
	"REDIS_PASSWORD":      "",
	"REDIS_DB":            0,
	"LOG_LEVEL":           "info",
	"LOG_FORMAT":          "json",
	"MENU_ITEMS_PER_PAGE": 2,
	"ORDERS_PER_PAGE":     10,
	"LOGIN_MAX_FAILURES":  5,
	"LOGIN_COOLDOWN":      "30s",
	"ADMIN_USERNAME":      "",
	"ADMIN_PASSWORD":      "",
	"ADMIN_EMAIL":         "",
}

// Load reads an optional .env file, then the environment. Environment
// variables win over .env values.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	cf := &Config{}
	if err := v.Unmarshal(cf); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cf.validate(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cf, nil
}

func (c *Config) validate() error {
	if c.MenuItemsPerPage < 1 || c.OrdersPerPage < 1 {
		return fmt.Errorf("page sizes must be positive")
	}
	if c.LoginMaxFailures < 1 {
		return fmt.Errorf("LOGIN_MAX_FAILURES must be positive")
	}
	if (c.AdminUsername == "") != (c.AdminPassword == "") {
		return fmt.Errorf("ADMIN_USERNAME and ADMIN_PASSWORD must be set together")
	}
	return nil
}

// DSN builds a libpq keyword/value connection string.
func (c *Config) DSN() string {
	parts := []string{
		"host=" + quote(c.DbHost),
		"port=" + quote(c.DbPort),
		"user=" + quote(c.DbUser),
		"password=" + quote(c.DbPas),
		"dbname=" + quote(c.DbName),
		"sslmode=" + quote(c.DbSSLMode),
	}
	return strings.Join(parts, " ")
}

// quote escapes a libpq keyword value.
func quote(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// RedactedDSN is safe to log.
func (c *Config) RedactedDSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.User(c.DbUser),
		Host:   c.DbHost + ":" + c.DbPort,
		Path:   c.DbName,
	}
	return u.String()
}
