package auth_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/hal9000y/inbox-agent/internal/auth"
)

type tokMock struct {
	AuthorizeCodeFunc func(ctx context.Context, code, state string) error
	OAuthTokenFunc    func() (*oauth2.Token, error)
	RedirectURLFunc   func() (string, error)
}

func (m *tokMock) AuthorizeCode(ctx context.Context, code, state string) error {
	return m.AuthorizeCodeFunc(ctx, code, state)
}

func (m *tokMock) OAuthToken() (*oauth2.Token, error) {
	return m.OAuthTokenFunc()
}

func (m *tokMock) RedirectURL() (string, error) {
	return m.RedirectURLFunc()
}

func TestHTTPHandlerRedirectsToConsent(t *testing.T) {
	mock := &tokMock{
		RedirectURLFunc: func() (string, error) {
			return "https://accounts.example.com/auth?state=abc", nil
		},
	}

	rec := httptest.NewRecorder()
	auth.NewHTTPHandler(mock).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/oauth?redirect=1", nil))

	require.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "https://accounts.example.com/auth?state=abc", rec.Header().Get("Location"))
}

func TestHTTPHandlerExchangesCode(t *testing.T) {
	var gotCode, gotState string
	mock := &tokMock{
		AuthorizeCodeFunc: func(_ context.Context, code, state string) error {
			gotCode, gotState = code, state
			return nil
		},
	}

	rec := httptest.NewRecorder()
	auth.NewHTTPHandler(mock).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/oauth?code=the-code&state=the-state", nil))

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "the-code", gotCode)
	assert.Equal(t, "the-state", gotState)
}

func TestHTTPHandlerRejectsBadCode(t *testing.T) {
	mock := &tokMock{
		AuthorizeCodeFunc: func(context.Context, string, string) error {
			return errors.New("invalid or expired state parameter")
		},
	}

	rec := httptest.NewRecorder()
	auth.NewHTTPHandler(mock).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/oauth?code=bad&state=forged", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHTTPHandlerTokenStatus(t *testing.T) {
	t.Run("no token", func(t *testing.T) {
		mock := &tokMock{
			OAuthTokenFunc: func() (*oauth2.Token, error) {
				return nil, auth.ErrTokenNotSet
			},
		}

		rec := httptest.NewRecorder()
		auth.NewHTTPHandler(mock).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/oauth", nil))

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("token present is masked", func(t *testing.T) {
		mock := &tokMock{
			OAuthTokenFunc: func() (*oauth2.Token, error) {
				return &oauth2.Token{
					AccessToken: "supersecrettoken1234",
					Expiry:      time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC),
				}, nil
			},
		}

		rec := httptest.NewRecorder()
		auth.NewHTTPHandler(mock).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/oauth", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.NotContains(t, body, "supersecrettoken")
		assert.Contains(t, body, "XXXXXXXXXXXXXXXX1234")
		assert.Contains(t, body, "2026-01-05T10:00:00Z")
	})
}
