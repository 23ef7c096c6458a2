package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcpsync/internal/domain"
)

func setCredentials(t *testing.T) {
	t.Helper()
	t.Setenv("PORT_CLIENT_ID", "cid")
	t.Setenv("PORT_CLIENT_SECRET", "csec")
}

func clearOptional(t *testing.T) {
	t.Helper()
	t.Setenv("PORT_API_URL", "")
	t.Setenv("MCPSYNC_LIST_TIMEOUT_SECONDS", "")
	t.Setenv("MCPSYNC_HTTP_TIMEOUT_SECONDS", "")
}

func TestLoad_Defaults(t *testing.T) {
	setCredentials(t)
	clearOptional(t)
	t.Setenv("PORT_API_URL", domain.DefaultAPIBaseURL)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "cid", cfg.ClientID)
	assert.Equal(t, "csec", cfg.ClientSecret)
	assert.Equal(t, domain.DefaultAPIBaseURL, cfg.APIBaseURL)
	assert.Equal(t, time.Duration(domain.DefaultListTimeoutSeconds)*time.Second, cfg.ListTimeout)
	assert.Equal(t, time.Duration(domain.DefaultHTTPTimeoutSeconds)*time.Second, cfg.HTTPTimeout)
}

func TestLoad_Overrides(t *testing.T) {
	setCredentials(t)
	t.Setenv("PORT_API_URL", "https://port.internal.example/v1/")
	t.Setenv("MCPSYNC_LIST_TIMEOUT_SECONDS", "5")
	t.Setenv("MCPSYNC_HTTP_TIMEOUT_SECONDS", "12")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://port.internal.example/v1", cfg.APIBaseURL)
	assert.Equal(t, 5*time.Second, cfg.ListTimeout)
	assert.Equal(t, 12*time.Second, cfg.HTTPTimeout)
}

func TestLoad_MissingCredentials(t *testing.T) {
	t.Setenv("PORT_CLIENT_ID", "")
	t.Setenv("PORT_CLIENT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT_CLIENT_ID")
	assert.Contains(t, err.Error(), "PORT_CLIENT_SECRET")
}

func TestLoad_MissingSecretOnly(t *testing.T) {
	t.Setenv("PORT_CLIENT_ID", "cid")
	t.Setenv("PORT_CLIENT_SECRET", "  ")

	_, err := Load()
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "PORT_CLIENT_ID,")
	assert.Contains(t, err.Error(), "PORT_CLIENT_SECRET")
}

func TestLoad_InvalidTimeout(t *testing.T) {
	setCredentials(t)
	t.Setenv("MCPSYNC_LIST_TIMEOUT_SECONDS", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list timeout")
}
