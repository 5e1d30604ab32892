package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPVerifier(t *testing.T) {
	var gotKey, gotAuth, gotPath string
	status := http.StatusOK
	body := `{"id":"sub-1","email":"b@example.com","user_metadata":{"role":"contractor","first_name":"Tino"}}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("apikey")
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	v := NewHTTPVerifier(srv.URL, "anon-key", 2*time.Second, 0)

	t.Run("success", func(t *testing.T) {
		id, err := v.Verify(context.Background(), "tok")
		require.NoError(t, err)
		assert.Equal(t, "sub-1", id.Subject)
		assert.Equal(t, "b@example.com", id.Email)
		assert.Equal(t, "contractor", id.Metadata["role"])
		assert.Equal(t, "anon-key", gotKey)
		assert.Equal(t, "Bearer tok", gotAuth)
		assert.Equal(t, "/auth/v1/user", gotPath)
	})

	cases := []struct {
		name   string
		status int
		body   string
		reason Reason
	}{
		{"rejected token", http.StatusUnauthorized, `{"msg":"bad jwt"}`, ReasonInvalidToken},
		{"forbidden", http.StatusForbidden, `{}`, ReasonInvalidToken},
		{"no such user", http.StatusNotFound, `{}`, ReasonUserNotFound},
		{"provider error", http.StatusBadGateway, `oops`, ReasonProviderUnreachable},
		{"undecodable", http.StatusOK, `not json`, ReasonProviderUnreachable},
		{"empty subject", http.StatusOK, `{"id":""}`, ReasonUserNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body = tc.status, tc.body
			_, err := v.Verify(context.Background(), "tok")
			require.Error(t, err)
			assert.Equal(t, tc.reason, ReasonOf(err))
		})
	}
}

func TestHTTPVerifierUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	v := NewHTTPVerifier(url, "k", time.Second, 10)
	_, err := v.Verify(context.Background(), "tok")
	assert.Equal(t, ReasonProviderUnreachable, ReasonOf(err))
}

func TestHTTPVerifierCancelledContext(t *testing.T) {
	v := NewHTTPVerifier("http://127.0.0.1:1", "k", time.Second, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := v.Verify(ctx, "tok")
	assert.Equal(t, ReasonProviderUnreachable, ReasonOf(err))
}
