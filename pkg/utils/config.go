package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Auth     AuthConfig
	Query    QueryConfig
	Seed     SeedConfig
}

type AppConfig struct {
	Name            string
	Port            string
	Debug           bool
	LogPath         string
	ShutdownTimeout time.Duration
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

type DatabaseConfig struct {
	Driver       string
	Host         string
	Port         string
	Name         string
	User         string
	Password     string
	MaxConns     int32
	SQLitePath   string
	QueryTimeout time.Duration
}

// JWTConfig holds the two signing secrets; they must differ so a refresh
// token can never pass as an access token.
type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

type AuthConfig struct {
	ReleaseDeviceOnLogout bool
	BcryptCost            int
}

type QueryConfig struct {
	DefaultPageSize int
	MaxPageSize     int
}

type SeedConfig struct {
	Enabled     bool
	Username    string
	Password    string
	AccountName string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "admin-backend")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DEBUG", false)
	v.SetDefault("LOG_PATH", "logs/")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")

	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_SQLITE_PATH", "data/admin.db")
	v.SetDefault("DB_QUERY_TIMEOUT", "5s")

	v.SetDefault("JWT_ACCESS_TTL", "15m")
	v.SetDefault("JWT_REFRESH_TTL", "168h")

	v.SetDefault("AUTH_RELEASE_DEVICE_ON_LOGOUT", true)
	v.SetDefault("BCRYPT_COST", 10)

	v.SetDefault("QUERY_DEFAULT_PAGE_SIZE", 20)
	v.SetDefault("QUERY_MAX_PAGE_SIZE", 100)

	v.SetDefault("SEED_ADMIN_ENABLED", true)
	v.SetDefault("SEED_ADMIN_USERNAME", "admin")
	v.SetDefault("SEED_ADMIN_ACCOUNT_NAME", "admin")
}

// LoadConfig reads path (an .env style file, optional) and the environment.
// Environment variables win over the file.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			var pathErr *fs.PathError
			if !errors.As(err, &pathErr) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	v.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:            v.GetString("APP_NAME"),
			Port:            v.GetString("PORT"),
			Debug:           v.GetBool("DEBUG"),
			LogPath:         v.GetString("LOG_PATH"),
			ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Driver:       v.GetString("DB_DRIVER"),
			Host:         v.GetString("DB_HOST"),
			Port:         v.GetString("DB_PORT"),
			Name:         v.GetString("DB_NAME"),
			User:         v.GetString("DB_USER"),
			Password:     v.GetString("DB_PASS"),
			MaxConns:     v.GetInt32("DB_MAX_CONNS"),
			SQLitePath:   v.GetString("DB_SQLITE_PATH"),
			QueryTimeout: v.GetDuration("DB_QUERY_TIMEOUT"),
		},
		JWT: JWTConfig{
			AccessSecret:  v.GetString("JWT_ACCESS_SECRET"),
			RefreshSecret: v.GetString("JWT_REFRESH_SECRET"),
			AccessTTL:     v.GetDuration("JWT_ACCESS_TTL"),
			RefreshTTL:    v.GetDuration("JWT_REFRESH_TTL"),
		},
		Auth: AuthConfig{
			ReleaseDeviceOnLogout: v.GetBool("AUTH_RELEASE_DEVICE_ON_LOGOUT"),
			BcryptCost:            v.GetInt("BCRYPT_COST"),
		},
		Query: QueryConfig{
			DefaultPageSize: v.GetInt("QUERY_DEFAULT_PAGE_SIZE"),
			MaxPageSize:     v.GetInt("QUERY_MAX_PAGE_SIZE"),
		},
		Seed: SeedConfig{
			Enabled:     v.GetBool("SEED_ADMIN_ENABLED"),
			Username:    v.GetString("SEED_ADMIN_USERNAME"),
			Password:    v.GetString("SEED_ADMIN_PASSWORD"),
			AccountName: v.GetString("SEED_ADMIN_ACCOUNT_NAME"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate rejects configurations the server must not start with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.Database.Driver)
	}

	if c.JWT.AccessSecret == "" || c.JWT.RefreshSecret == "" {
		return errors.New("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET are required")
	}
	if c.JWT.AccessSecret == c.JWT.RefreshSecret {
		return errors.New("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ")
	}
	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= 0 {
		return errors.New("JWT_ACCESS_TTL and JWT_REFRESH_TTL must be positive")
	}
	if c.Database.QueryTimeout <= 0 {
		return errors.New("DB_QUERY_TIMEOUT must be positive")
	}
	if c.Query.DefaultPageSize < 1 || c.Query.MaxPageSize < c.Query.DefaultPageSize {
		return errors.New("QUERY_DEFAULT_PAGE_SIZE must be >= 1 and <= QUERY_MAX_PAGE_SIZE")
	}
	return nil
}
