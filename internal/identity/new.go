package identity

import (
	"context"
	"errors"

	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/config"
)

// New builds the verifier selected by cfg.
func New(ctx context.Context, cfg *config.Config) (Verifier, error) {
	switch cfg.IdentityMode() {
	case "http":
		return NewHTTPVerifier(cfg.IdentityURL, cfg.IdentityAPIKey, cfg.IdentityTimeout, cfg.IdentityRPS), nil
	case "oidc":
		return NewOIDCVerifier(ctx, cfg.IdentityOIDCIssuer, cfg.IdentityOIDCClientID)
	case "jwt":
		return NewJWTVerifier(cfg.IdentityJWTSecret), nil
	default:
		return nil, errors.New("identity provider is not configured")
	}
}
