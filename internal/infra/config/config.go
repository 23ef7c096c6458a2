// Package config loads run configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"mcpsync/internal/domain"
)

type Config struct {
	ClientID     string
	ClientSecret string
	APIBaseURL   string
	ListTimeout  time.Duration
	HTTPTimeout  time.Duration
}

func newConfigViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("api_url", domain.DefaultAPIBaseURL)
	v.SetDefault("list_timeout_seconds", domain.DefaultListTimeoutSeconds)
	v.SetDefault("http_timeout_seconds", domain.DefaultHTTPTimeoutSeconds)
	_ = v.BindEnv("client_id", "PORT_CLIENT_ID")
	_ = v.BindEnv("client_secret", "PORT_CLIENT_SECRET")
	_ = v.BindEnv("api_url", "PORT_API_URL")
	_ = v.BindEnv("list_timeout_seconds", "MCPSYNC_LIST_TIMEOUT_SECONDS")
	_ = v.BindEnv("http_timeout_seconds", "MCPSYNC_HTTP_TIMEOUT_SECONDS")
	return v
}

// Load reads configuration from the environment. Missing credentials are a
// startup precondition failure: the run aborts before any processing.
func Load() (Config, error) {
	v := newConfigViper()

	cfg := Config{
		ClientID:     strings.TrimSpace(v.GetString("client_id")),
		ClientSecret: strings.TrimSpace(v.GetString("client_secret")),
		APIBaseURL:   strings.TrimRight(v.GetString("api_url"), "/"),
		ListTimeout:  time.Duration(v.GetInt("list_timeout_seconds")) * time.Second,
		HTTPTimeout:  time.Duration(v.GetInt("http_timeout_seconds")) * time.Second,
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	var missing []string
	if c.ClientID == "" {
		missing = append(missing, "PORT_CLIENT_ID")
	}
	if c.ClientSecret == "" {
		missing = append(missing, "PORT_CLIENT_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if c.APIBaseURL == "" {
		return errors.New("api base URL must not be empty")
	}
	if c.ListTimeout <= 0 {
		return errors.New("list timeout must be positive")
	}
	if c.HTTPTimeout <= 0 {
		return errors.New("http timeout must be positive")
	}
	return nil
}
