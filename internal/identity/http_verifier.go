package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// HTTPVerifier asks the provider's user endpoint who owns a token.
type HTTPVerifier struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

type providerUser struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
}

// NewHTTPVerifier builds a verifier for baseURL. rps caps outbound calls to
// the provider; zero or less disables the cap.
func NewHTTPVerifier(baseURL, apiKey string, timeout time.Duration, rps float64) *HTTPVerifier {
	limit := rate.Inf
	burst := 0
	if rps > 0 {
		limit = rate.Limit(rps)
		burst = int(rps)
		if burst < 1 {
			burst = 1
		}
	}
	return &HTTPVerifier{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, burst),
	}
}

func (v *HTTPVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	if err := v.limiter.Wait(ctx); err != nil {
		return nil, Fail(ReasonProviderUnreachable, fmt.Errorf("rate limit wait: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, Fail(ReasonProviderUnreachable, err)
	}
	req.Header.Set("apikey", v.apiKey)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, Fail(ReasonProviderUnreachable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, Fail(ReasonInvalidToken, fmt.Errorf("provider returned status %d", resp.StatusCode))
	case resp.StatusCode == http.StatusNotFound:
		return nil, Fail(ReasonUserNotFound, errors.New("provider has no user for token"))
	case resp.StatusCode != http.StatusOK:
		return nil, Fail(ReasonProviderUnreachable, fmt.Errorf("provider returned status %d", resp.StatusCode))
	}

	var user providerUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, Fail(ReasonProviderUnreachable, fmt.Errorf("decode user: %w", err))
	}
	if user.ID == "" {
		return nil, Fail(ReasonUserNotFound, errors.New("provider returned no subject"))
	}

	return &Identity{Subject: user.ID, Email: user.Email, Metadata: user.UserMetadata}, nil
}
