// Package config loads and validates the application configuration.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/viper"

	"github.com/sevigo/merge-warden/internal/logger"
)

// Config holds the application's configuration values.
type Config struct {
	Server   ServerConfig
	GitHub   GitHubConfig
	GitLab   GitLabConfig
	Database DBConfig
	Dispatch DispatchConfig
	Logging  logger.Config
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port string
	// Webhook endpoint rate limit, requests per second with a burst.
	RateLimit float64
	RateBurst int
}

// GitHubConfig configures the GitHub App integration. Zero AppID disables
// the GitHub webhook endpoint.
type GitHubConfig struct {
	AppID          int64
	WebhookSecret  string
	PrivateKeyPath string
}

// Enabled reports whether the GitHub integration is configured.
func (c *GitHubConfig) Enabled() bool { return c.AppID != 0 }

// GitLabConfig configures the GitLab integration. Empty Token disables the
// GitLab webhook endpoint.
type GitLabConfig struct {
	BaseURL      string
	Token        string // API token
	WebhookToken string // shared secret presented by webhook deliveries
}

// Enabled reports whether the GitLab integration is configured.
func (c *GitLabConfig) Enabled() bool { return c.Token != "" }

// DBConfig configures the PostgreSQL connection pool.
type DBConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DSN returns the connection string in libpq keyword form.
func (c *DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// DispatchConfig configures event processing and job execution.
type DispatchConfig struct {
	// PodmanBinary is the container engine executable used for delegated jobs.
	PodmanBinary string
}

// LoadConfig reads configuration from environment variables and a .env file,
// sets sensible defaults, and validates required fields. It uses the Viper
// library to handle configuration loading and precedence.
func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_RATE_LIMIT", 50.0)
	viper.SetDefault("SERVER_RATE_BURST", 100)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")
	viper.SetDefault("LOG_OUTPUT", "stdout")
	viper.SetDefault("LOG_FILE", "merge-warden.log")
	viper.SetDefault("GITHUB_PRIVATE_KEY_PATH", "keys/merge-warden-app.private-key.pem")
	viper.SetDefault("GITLAB_BASE_URL", "https://gitlab.com")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 5432)
	viper.SetDefault("DB_USER", "warden")
	viper.SetDefault("DB_NAME", "warden")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_CONN_MAX_LIFETIME", "30m")
	viper.SetDefault("DB_CONN_MAX_IDLE_TIME", "5m")
	viper.SetDefault("PODMAN_BINARY", "podman")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Error("failed to read config file", "error", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:      viper.GetString("SERVER_PORT"),
			RateLimit: viper.GetFloat64("SERVER_RATE_LIMIT"),
			RateBurst: viper.GetInt("SERVER_RATE_BURST"),
		},
		GitHub: GitHubConfig{
			AppID:          viper.GetInt64("GITHUB_APP_ID"),
			WebhookSecret:  viper.GetString("GITHUB_WEBHOOK_SECRET"),
			PrivateKeyPath: viper.GetString("GITHUB_PRIVATE_KEY_PATH"),
		},
		GitLab: GitLabConfig{
			BaseURL:      viper.GetString("GITLAB_BASE_URL"),
			Token:        viper.GetString("GITLAB_TOKEN"),
			WebhookToken: viper.GetString("GITLAB_WEBHOOK_TOKEN"),
		},
		Database: DBConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			Name:            viper.GetString("DB_NAME"),
			SSLMode:         viper.GetString("DB_SSL_MODE"),
			ConnMaxLifetime: viper.GetDuration("DB_CONN_MAX_LIFETIME"),
			ConnMaxIdleTime: viper.GetDuration("DB_CONN_MAX_IDLE_TIME"),
		},
		Dispatch: DispatchConfig{
			PodmanBinary: viper.GetString("PODMAN_BINARY"),
		},
		Logging: logger.Config{
			Level:  viper.GetString("LOG_LEVEL"),
			Format: viper.GetString("LOG_FORMAT"),
			Output: viper.GetString("LOG_OUTPUT"),
			File:   viper.GetString("LOG_FILE"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that at least one platform is configured and that each
// configured platform is complete.
func (c *Config) Validate() error {
	if !c.GitHub.Enabled() && !c.GitLab.Enabled() {
		return fmt.Errorf("no platform configured: set GITHUB_APP_ID or GITLAB_TOKEN")
	}
	if c.GitHub.Enabled() {
		if c.GitHub.WebhookSecret == "" {
			return fmt.Errorf("GITHUB_WEBHOOK_SECRET must be set when GITHUB_APP_ID is set")
		}
		if c.GitHub.PrivateKeyPath == "" {
			return fmt.Errorf("GITHUB_PRIVATE_KEY_PATH must be set when GITHUB_APP_ID is set")
		}
	}
	if c.GitLab.Enabled() && c.GitLab.WebhookToken == "" {
		return fmt.Errorf("GITLAB_WEBHOOK_TOKEN must be set when GITLAB_TOKEN is set")
	}
	return nil
}
