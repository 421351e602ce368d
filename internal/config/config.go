package config

import (
	"time"

	"github.com/spf13/viper"
)

// DefaultDatabasePath is the default path for the application database.
const DefaultDatabasePath = "./librarium.db"

type (
	Config struct {
		HTTP
		Database
		Auth
		Global
	}

	HTTP struct {
		Port int32
		Host string
	}
	Database struct {
		Path string
	}
	Auth struct {
		JWTSecret     string
		TokenLifetime time.Duration
		BcryptCost    int
		SecureCookies bool // set to false for local dev without HTTPS

		// Credentials for the administrator account seeded on first boot.
		AdminLogin    string
		AdminPassword string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8190)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Auth defaults
	v.SetDefault("auth_jwt_secret", "")      // must be set outside dev
	v.SetDefault("auth_token_lifetime", "6h")
	v.SetDefault("auth_bcrypt_cost", 13)
	v.SetDefault("auth_secure_cookies", true)
	v.SetDefault("auth_admin_login", "admin")
	v.SetDefault("auth_admin_password", "")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Auth: Auth{
			JWTSecret:     v.GetString("AUTH_JWT_SECRET"),
			TokenLifetime: v.GetDuration("AUTH_TOKEN_LIFETIME"),
			BcryptCost:    v.GetInt("AUTH_BCRYPT_COST"),
			SecureCookies: v.GetBool("AUTH_SECURE_COOKIES"),
			AdminLogin:    v.GetString("AUTH_ADMIN_LOGIN"),
			AdminPassword: v.GetString("AUTH_ADMIN_PASSWORD"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
	}
}
