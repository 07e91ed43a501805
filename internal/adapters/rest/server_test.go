package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"roomfinder/internal/adapters/backend_api_client"
	"roomfinder/internal/adapters/gateway"
	"roomfinder/internal/adapters/geography_client"
	"roomfinder/internal/adapters/localstore"
	"roomfinder/internal/contextkeys"
	"roomfinder/internal/core/domain"
	"roomfinder/internal/core/port"
	"roomfinder/internal/core/search"
	"roomfinder/internal/core/session"
	"roomfinder/internal/core/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	router  http.Handler
	session *session.Manager
	store   *localstore.MemoryStore
}

// newTestEnv собирает весь стек поверх фейкового backend.
func newTestEnv(t *testing.T, backend http.HandlerFunc) *testEnv {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)

	store := localstore.NewMemoryStore()
	sess := session.NewManager(store, contextkeys.NoopLogger())
	sess.Initialize(context.Background())

	httpClient := gateway.NewClient(gateway.Config{BackendHost: u.Host}, sess, Navigator{}, contextkeys.NoopLogger())
	api := backend_api_client.NewClient(srv.URL, httpClient)
	geo := geography_client.NewClient(geography_client.Config{BaseURL: srv.URL + "/geo"}, httpClient)

	h := NewHandlers(
		usecase.NewAuthService(api, sess),
		search.NewComposer(api, 20),
		usecase.NewRoomManager(api, sess),
		usecase.NewRoomBrowser(api),
		geo,
	)
	router := NewRouter(ServerConfig{AllowedOrigins: []string{"http://localhost:5173"}}, h, contextkeys.NoopLogger())
	return &testEnv{router: router, session: sess, store: store}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestLoginAndSessionEndpoints(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/jwt/login":
			_, _ = io.WriteString(w, `{"access_token":"tok","token_type":"bearer"}`)
		case "/api/users/me":
			_, _ = io.WriteString(w, `{"id":"u1","email":"a@b.vn","role":"landlord"}`)
		default:
			http.NotFound(w, r)
		}
	})

	rec := env.do(t, http.MethodGet, "/api/session", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["authenticated"])

	rec = env.do(t, http.MethodPost, "/api/session/login", `{"email":"a@b.vn","password":"Secret123"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "tok", env.session.Token())

	rec = env.do(t, http.MethodGet, "/api/session", "")
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["authenticated"])
	assert.Equal(t, "landlord", body["user"].(map[string]any)["role"])

	rec = env.do(t, http.MethodPost, "/api/session/logout", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, env.session.IsAuthenticated())
}

func TestExpiredSessionRedirectsToLogin(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"detail":"Unauthorized"}`)
	})
	require.NoError(t, env.session.Login(context.Background(), "old", domain.User{ID: "l1", Role: domain.RoleLandlord}))

	rec := env.do(t, http.MethodGet, "/api/my-rooms", "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, port.LoginRoute, rec.Header().Get("Location"))
	assert.Equal(t, "/login", decodeBody(t, rec)["redirect"])
	assert.False(t, env.session.IsAuthenticated())
	_, ok, err := env.store.Get(context.Background(), port.TokenStorageKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSearchFlow(t *testing.T) {
	var filterBody map[string]any
	var filterPaths []string
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/find-rooms/search-keyword":
			assert.Equal(t, "keyword=g%C3%A1c%20l%E1%BB%ADng&page=1&limit=20", r.URL.RawQuery)
			_, _ = io.WriteString(w, `{"success":true,"keyword":"gác lửng","total":1,"page":1,"limit":20,"total_pages":1,"rooms":[{"id":"r1","title":"A","images":[]}]}`)
		case strings.HasPrefix(r.URL.Path, "/api/find-rooms/search"):
			filterPaths = append(filterPaths, r.URL.Path)
			filterBody = nil
			_ = json.NewDecoder(r.Body).Decode(&filterBody)
			_, _ = io.WriteString(w, `{"success":true,"total":41,"page":1,"limit":20,"total_pages":3,"rooms":[]}`)
		default:
			http.NotFound(w, r)
		}
	})

	rec := env.do(t, http.MethodPost, "/api/search", `{"keyword":"gác lửng","price":{"bucket":"1m-3m"}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, "keyword", body["path"])
	assert.Len(t, body["rooms"], 1)

	rec = env.do(t, http.MethodGet, "/api/search/state", "")
	state := decodeBody(t, rec)
	assert.Equal(t, "", state["keyword"])
	assert.Equal(t, "1m-3m", state["selection"].(map[string]any)["price"].(map[string]any)["bucket"])

	rec = env.do(t, http.MethodPost, "/api/search", `{"keyword":"","price":{"bucket":"5m-7m"},"area":{"bucket":"20-30"}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	filters := filterBody["filters"].(map[string]any)
	assert.Equal(t, map[string]any{"min": float64(5_000_000), "max": float64(7_000_000)}, filters["price"])

	rec = env.do(t, http.MethodGet, "/api/search/page/2", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, decodeBody(t, rec)["reset_scroll"])
	assert.Equal(t, []string{"/api/find-rooms/search", "/api/find-rooms/search/page/2"}, filterPaths)
}

func TestSearchValidationErrors(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("backend must not be called, got %s", r.URL.Path)
	})

	rec := env.do(t, http.MethodPost, "/api/search", `{"price":{"min":"abc"}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	fields := decodeBody(t, rec)["fields"].(map[string]any)
	assert.Contains(t, fields, "price.min")

	rec = env.do(t, http.MethodPost, "/api/search", `{"area":{"bucket":"1m-3m"}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["fields"], "area")

	rec = env.do(t, http.MethodGet, "/api/search/page/2", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/search/page/x", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestKeywordSearchIgnoresInvalidFilters(t *testing.T) {
	var keywordCalls int
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/find-rooms/search-keyword" {
			t.Errorf("unexpected backend call %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		keywordCalls++
		_, _ = io.WriteString(w, `{"success":true,"keyword":"studio","total":0,"page":1,"limit":20,"total_pages":0,"rooms":[]}`)
	})

	rec := env.do(t, http.MethodPost, "/api/search", `{"keyword":"studio","area":{"bucket":"1m-3m"},"ward":{"code":157,"name":"Phường Dịch Vọng"}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "keyword", decodeBody(t, rec)["path"])
	assert.Equal(t, 1, keywordCalls)
}

func TestOwnerRoutesRequireLandlord(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("backend must not be called, got %s", r.URL.Path)
	})

	rec := env.do(t, http.MethodGet, "/api/my-rooms", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	require.NoError(t, env.session.Login(context.Background(), "tok", domain.User{ID: "s1", Role: domain.RoleStudent}))
	rec = env.do(t, http.MethodPost, "/api/my-rooms", `{"title":"x"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateRoomAndBackendValidation(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/rooms/":
			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, `{"message":"Room created","room":{"id":"r5","title":"A","price":2000000,"area":20,"status":"available"}}`)
		case r.Method == http.MethodPut:
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = io.WriteString(w, `{"detail":[{"loc":["body","price"],"msg":"Input should be greater than 0"}]}`)
		default:
			http.NotFound(w, r)
		}
	})
	require.NoError(t, env.session.Login(context.Background(), "tok", domain.User{ID: "l1", Role: domain.RoleLandlord}))

	form := `{"title":"A","province":"P","district":"D","ward":"W","address_detail":"1","area":"20","price":"2000000","room_status":"available","images":[]}`
	rec := env.do(t, http.MethodPost, "/api/my-rooms", form)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "r5", decodeBody(t, rec)["id"])

	rec = env.do(t, http.MethodPut, "/api/my-rooms/r5", form)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "Input should be greater than 0", decodeBody(t, rec)["fields"].(map[string]any)["price"])

	rec = env.do(t, http.MethodGet, "/api/rooms/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLocationsPassThrough(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/geo/api/p/":
			_, _ = io.WriteString(w, `[{"name":"Thành phố Hà Nội","code":1}]`)
		case "/geo/api/p/1":
			_, _ = io.WriteString(w, `{"code":1,"districts":[{"name":"Quận Ba Đình","code":1}]}`)
		case "/geo/api/d/1":
			_, _ = io.WriteString(w, `{"code":1,"wards":[{"name":"Phường Phúc Xá","code":1}]}`)
		default:
			http.NotFound(w, r)
		}
	})

	rec := env.do(t, http.MethodGet, "/api/locations/provinces", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"code":1,"name":"Thành phố Hà Nội"}]`, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/api/locations/provinces/1/districts", "")
	assert.JSONEq(t, `[{"code":1,"name":"Quận Ba Đình"}]`, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/api/locations/districts/1/wards", "")
	assert.JSONEq(t, `[{"code":1,"name":"Phường Phúc Xá"}]`, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/api/locations/districts/abc/wards", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchOptions(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {})
	rec := env.do(t, http.MethodGet, "/api/search/options", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["price_ranges"])
	assert.NotEmpty(t, body["utility_levels"])
}
