// Package identity verifies bearer tokens against the external identity
// provider. It knows nothing about local users; see services.IdentitySyncService
// for the mapping onto User and Profile records.
package identity

import (
	"context"
	"errors"
	"strings"
)

// Identity is what the provider asserts about a token's owner.
type Identity struct {
	Subject  string
	Email    string
	Metadata map[string]any
}

// Verifier resolves a raw token into an Identity. One instance is built at
// startup and shared by all requests.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

type Reason string

const (
	ReasonMissingHeader       Reason = "missing_header"
	ReasonMalformedHeader     Reason = "malformed_header"
	ReasonProviderUnreachable Reason = "provider_unreachable"
	ReasonInvalidToken        Reason = "invalid_token"
	ReasonUserNotFound        Reason = "user_not_found"
)

// AuthFailure is returned for every authentication failure. Err carries the
// underlying cause for logs and is never shown to clients.
type AuthFailure struct {
	Reason Reason
	Err    error
}

func (e *AuthFailure) Error() string {
	if e.Err == nil {
		return "authentication failed: " + string(e.Reason)
	}
	return "authentication failed: " + string(e.Reason) + ": " + e.Err.Error()
}

func (e *AuthFailure) Unwrap() error { return e.Err }

func Fail(reason Reason, err error) *AuthFailure {
	return &AuthFailure{Reason: reason, Err: err}
}

// ReasonOf extracts the failure reason, or "" if err is not an AuthFailure.
func ReasonOf(err error) Reason {
	var af *AuthFailure
	if errors.As(err, &af) {
		return af.Reason
	}
	return ""
}

// TokenFromHeader extracts the token from an "Authorization: Bearer <token>"
// value.
func TokenFromHeader(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", Fail(ReasonMissingHeader, nil)
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", Fail(ReasonMalformedHeader, nil)
	}
	return parts[1], nil
}

// identityFromClaims reads the claim set shared by the JWT and OIDC verifiers.
func identityFromClaims(claims map[string]any) (*Identity, error) {
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, Fail(ReasonUserNotFound, errors.New("token has no subject"))
	}
	email, _ := claims["email"].(string)
	meta, _ := claims["user_metadata"].(map[string]any)
	return &Identity{Subject: sub, Email: email, Metadata: meta}, nil
}
