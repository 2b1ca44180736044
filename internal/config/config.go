package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	Auth        AuthConfig
	App         AppConfig
}

type ServerConfig struct {
	Port int
}

type DatabaseConfig struct {
	Path string
}

type AuthConfig struct {
	SessionSecret      string
	WorkplaceAppID     string
	WorkplaceAppSecret string
	WorkplaceCallback  string
	SecureCookie       bool
}

type AppConfig struct {
	// BaseURL is the public root of this deployment; every link,
	// canonical_link, icon and download_url is built from it.
	BaseURL string
}

func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("taaskly_env", "")
	v.SetDefault("taaskly_port", 8080)
	v.SetDefault("taaskly_db_path", "data/taaskly")
	v.SetDefault("taaskly_base_url", "")
	v.SetDefault("taaskly_secure_cookie", false)
	v.SetDefault("workplace_app_id", "")
	v.SetDefault("workplace_app_secret", "")
	v.SetDefault("workplace_callback_url", "")

	port := v.GetInt("taaskly_port")
	if port <= 0 || port > 65535 {
		return Config{}, fmt.Errorf("invalid TAASKLY_PORT: %d", port)
	}

	baseURL := strings.TrimSpace(v.GetString("taaskly_base_url"))
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://localhost:%d/", port)
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	callbackURL := strings.TrimSpace(v.GetString("workplace_callback_url"))
	if callbackURL == "" {
		callbackURL = baseURL + "auth/facebook/callback"
	}

	cfg := Config{
		Environment: strings.ToLower(strings.TrimSpace(v.GetString("taaskly_env"))),
		Server:      ServerConfig{Port: port},
		Database: DatabaseConfig{
			Path: strings.TrimSpace(v.GetString("taaskly_db_path")),
		},
		Auth: AuthConfig{
			SessionSecret:      strings.TrimSpace(v.GetString("taaskly_session_secret")),
			WorkplaceAppID:     strings.TrimSpace(v.GetString("workplace_app_id")),
			WorkplaceAppSecret: strings.TrimSpace(v.GetString("workplace_app_secret")),
			WorkplaceCallback:  callbackURL,
			SecureCookie:       v.GetBool("taaskly_secure_cookie"),
		},
		App: AppConfig{BaseURL: baseURL},
	}

	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/taaskly"
	}
	if !cfg.IsLocalDevelopment() && cfg.Auth.SessionSecret == "" {
		return Config{}, fmt.Errorf("TAASKLY_SESSION_SECRET is required outside local/dev environments")
	}
	if cfg.IsLocalDevelopment() && cfg.Auth.SessionSecret == "" {
		cfg.Auth.SessionSecret = "taaskly-local-dev"
	}

	return cfg, nil
}

func (c Config) IsLocalDevelopment() bool {
	switch c.Environment {
	case "", "local", "dev", "development":
		return true
	}
	return false
}
