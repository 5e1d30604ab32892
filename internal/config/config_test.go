package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("IDENTITY_URL", "https://id.example.com/")
	t.Setenv("IDENTITY_API_KEY", "anon")

	cfg := Load()

	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, "sqb_db", cfg.DBName)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "https://id.example.com", cfg.IdentityURL)
	assert.Equal(t, 10*time.Second, cfg.IdentityTimeout)
	assert.Equal(t, "http", cfg.IdentityMode())
	require.NoError(t, cfg.Validate())
}

func TestIdentityMode(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		want string
	}{
		{"none", Config{}, ""},
		{"url without key", Config{IdentityURL: "https://x"}, ""},
		{"http", Config{IdentityURL: "https://x", IdentityAPIKey: "k"}, "http"},
		{"oidc", Config{IdentityOIDCIssuer: "https://issuer"}, "oidc"},
		{"jwt", Config{IdentityJWTSecret: "s"}, "jwt"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.cfg.IdentityMode())
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{IdentityJWTSecret: "s"}
	assert.ErrorContains(t, cfg.Validate(), "DB_PASSWORD")

	cfg = &Config{DBPassword: "p"}
	assert.ErrorContains(t, cfg.Validate(), "identity provider")
}

func TestParseDurationFallback(t *testing.T) {
	assert.Equal(t, 10*time.Second, parseDuration("soon"))
	assert.Equal(t, 3*time.Second, parseDuration("3s"))
}
