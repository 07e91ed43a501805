package usecase

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"roomfinder/internal/adapters/backend_api_client"
	"roomfinder/internal/adapters/gateway"
	"roomfinder/internal/contextkeys"
	"roomfinder/internal/core/domain"
	"roomfinder/internal/core/port"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// backendWithAccounts выдает токен "tokB" и узнает по /me только его.
func backendWithAccounts(t *testing.T, meAuth *[]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/jwt/login":
			assert.NoError(t, r.ParseForm())
			if r.PostForm.Get("password") != "right" {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = io.WriteString(w, `{"detail":"LOGIN_BAD_CREDENTIALS"}`)
				return
			}
			_, _ = io.WriteString(w, `{"access_token":"tokB","token_type":"bearer"}`)
		case "/api/users/me":
			*meAuth = append(*meAuth, r.Header.Get("Authorization"))
			if r.Header.Get("Authorization") != "Bearer tokB" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = io.WriteString(w, `{"detail":"Unauthorized"}`)
				return
			}
			_, _ = io.WriteString(w, `{"id":"uB","email":"b@x.vn","role":"landlord","phone":null}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func authOverGateway(t *testing.T, backendURL string, sess port.SessionHolderPort, nav port.Navigator) *AuthService {
	t.Helper()
	u, err := url.Parse(backendURL)
	require.NoError(t, err)
	httpClient := gateway.NewClient(gateway.Config{BackendHost: u.Host}, sess, nav, contextkeys.NoopLogger())
	return NewAuthService(backend_api_client.NewClient(backendURL, httpClient), sess)
}

func TestLoginReplacesExistingSession(t *testing.T) {
	var meAuth []string
	backend := backendWithAccounts(t, &meAuth)
	defer backend.Close()

	sess, store := newSession(t)
	require.NoError(t, sess.Login(context.Background(), "tokA-expired", domain.User{ID: "uA", Email: "a@x.vn", Role: domain.RoleStudent}))

	var routes []string
	nav := port.NavigatorFunc(func(_ context.Context, route string) { routes = append(routes, route) })
	svc := authOverGateway(t, backend.URL, sess, nav)

	user, err := svc.Login(context.Background(), domain.Credentials{Email: "b@x.vn", Password: "right"})
	require.NoError(t, err)
	assert.Equal(t, "uB", user.ID)
	assert.Equal(t, []string{"Bearer tokB"}, meAuth)
	assert.Empty(t, routes)

	assert.Equal(t, "tokB", sess.Token())
	current, ok := sess.User()
	require.True(t, ok)
	assert.Equal(t, "uB", current.ID)

	token, ok, err := store.Get(context.Background(), port.TokenStorageKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tokB", token)
}

func TestFailedLoginKeepsExistingSession(t *testing.T) {
	var meAuth []string
	backend := backendWithAccounts(t, &meAuth)
	defer backend.Close()

	sess, _ := newSession(t)
	require.NoError(t, sess.Login(context.Background(), "tokA", domain.User{ID: "uA", Email: "a@x.vn", Role: domain.RoleStudent}))
	svc := authOverGateway(t, backend.URL, sess, nil)

	_, err := svc.Login(context.Background(), domain.Credentials{Email: "b@x.vn", Password: "wrong"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrSessionExpired))
	assert.Empty(t, meAuth)
	assert.Equal(t, "tokA", sess.Token())
}
