package backend_api_client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"roomfinder/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", srv.Client())
}

func TestSearchByKeywordEncodesLikeEncodeURIComponent(t *testing.T) {
	var rawQuery, path string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		path = r.URL.Path
		_, _ = io.WriteString(w, `{"success":true,"keyword":"sinh viên","total":1,"page":1,"limit":20,"total_pages":1,
			"rooms":[{"id":"r1","title":"Phòng gần ĐH","province":"Hà Nội","district":"Cầu Giấy","ward":"Dịch Vọng",
			"area":18,"price":2500000,"images":[],"created_at":"2024-05-01T10:00:00.123456","landlord_email":null,"landlord_phone":"0912345678"}]}`)
	})

	page, err := c.SearchByKeyword(context.Background(), "sinh viên", 1, 20)
	require.NoError(t, err)

	assert.Equal(t, "/api/find-rooms/search-keyword", path)
	assert.Equal(t, "keyword=sinh%20vi%C3%AAn&page=1&limit=20", rawQuery)
	assert.Equal(t, domain.PathKeyword, page.Path)
	require.Len(t, page.Rooms, 1)
	assert.Equal(t, "r1", page.Rooms[0].ID)
	assert.Equal(t, "", page.Rooms[0].LandlordEmail)
	assert.Equal(t, "0912345678", page.Rooms[0].LandlordPhone)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 123456000, time.UTC), page.Rooms[0].CreatedAt)
}

func TestKeywordEscapeCharacterSet(t *testing.T) {
	cases := map[string]string{
		"phòng trọ":       "ph%C3%B2ng%20tr%E1%BB%8D",
		"a-b_c.d~e":       "a-b_c.d~e",
		"it's (new)!*":    "it's%20(new)!*",
		"q=1&x=2+3/4?#@:": "q%3D1%26x%3D2%2B3%2F4%3F%23%40%3A",
		"50%":             "50%25",
	}
	for in, want := range cases {
		assert.Equal(t, want, keywordEscape(in), in)
	}
}

func TestSearchByFiltersFirstPageBody(t *testing.T) {
	var method, path string
	var body map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = io.WriteString(w, `{"success":true,"total":0,"page":1,"limit":20,"total_pages":0,"rooms":[]}`)
	})

	sel := domain.NewFilterSelection()
	require.NoError(t, sel.Price.SelectBucket("5m-7m"))
	require.NoError(t, sel.Area.SelectBucket("20-30"))
	query, err := sel.Compose("")
	require.NoError(t, err)

	page, err := c.SearchByFilters(context.Background(), query, 1)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "/api/find-rooms/search", path)
	filters := body["filters"].(map[string]any)
	assert.Equal(t, map[string]any{"min": float64(5_000_000), "max": float64(7_000_000)}, filters["price"])
	assert.Equal(t, map[string]any{"min": float64(20), "max": float64(30)}, filters["area"])
	assert.Equal(t, "", body["keyword"])
	assert.True(t, page.Empty())
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, domain.PathFilter, page.Path)
}

func TestSearchByFiltersLaterPagePath(t *testing.T) {
	var path string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_, _ = io.WriteString(w, `{"success":true,"total":45,"page":3,"limit":20,"total_pages":3,"rooms":[]}`)
	})

	page, err := c.SearchByFilters(context.Background(), domain.SearchQuery{}, 3)
	require.NoError(t, err)
	assert.Equal(t, "/api/find-rooms/search/page/3", path)
	assert.Equal(t, 3, page.Page)
}

func TestLoginSendsFormAndCurrentUserUsesExplicitToken(t *testing.T) {
	var contentType, username, password, auth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/jwt/login":
			contentType = r.Header.Get("Content-Type")
			assert.NoError(t, r.ParseForm())
			username, password = r.PostForm.Get("username"), r.PostForm.Get("password")
			_, _ = io.WriteString(w, `{"access_token":"tok-1","token_type":"bearer"}`)
		case "/api/users/me":
			auth = r.Header.Get("Authorization")
			_, _ = io.WriteString(w, `{"id":"u1","email":"a@b.vn","role":"landlord","phone":null}`)
		default:
			http.NotFound(w, r)
		}
	})

	token, err := c.Login(context.Background(), domain.Credentials{Email: "a@b.vn", Password: "Secret123"})
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
	assert.Equal(t, "application/x-www-form-urlencoded", contentType)
	assert.Equal(t, "a@b.vn", username)
	assert.Equal(t, "Secret123", password)

	user, err := c.CurrentUser(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-1", auth)
	assert.True(t, user.IsLandlord())
	assert.Empty(t, user.Phone)
}

func TestRegisterPayload(t *testing.T) {
	var body map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":"u2"}`)
	})

	err := c.Register(context.Background(), domain.Registration{
		Email: "s@b.vn", Password: "Secret123", ConfirmPassword: "Secret123", Role: domain.RoleStudent,
	})
	require.NoError(t, err)

	assert.Nil(t, body["phone"])
	assert.Equal(t, "student", body["role"])
	assert.Equal(t, true, body["is_active"])
	assert.Equal(t, false, body["is_superuser"])
	assert.Equal(t, false, body["is_verified"])
	assert.NotContains(t, body, "confirm_password")
}

func TestErrorDetailMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "string detail",
			status: http.StatusBadRequest,
			body:   `{"detail":"REGISTER_USER_ALREADY_EXISTS"}`,
			check: func(t *testing.T, err error) {
				var ve *domain.ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Equal(t, "REGISTER_USER_ALREADY_EXISTS", ve.Message)
			},
		},
		{
			name:   "field list detail",
			status: http.StatusUnprocessableEntity,
			body:   `{"detail":[{"loc":["body","price"],"msg":"must be positive"},{"loc":["body","area"],"msg":"too large"}]}`,
			check: func(t *testing.T, err error) {
				var ve *domain.ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Equal(t, map[string]string{"price": "must be positive", "area": "too large"}, ve.Fields)
				assert.Equal(t, "must be positive, too large", ve.Message)
			},
		},
		{
			name:   "object detail with reason",
			status: http.StatusBadRequest,
			body:   `{"detail":{"code":"REGISTER_INVALID_PASSWORD","reason":"Password too short"}}`,
			check: func(t *testing.T, err error) {
				var ve *domain.ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Equal(t, "Password too short", ve.Message)
			},
		},
		{
			name:   "forbidden",
			status: http.StatusForbidden,
			body:   `{"detail":"Not the owner"}`,
			check: func(t *testing.T, err error) {
				assert.True(t, errors.Is(err, domain.ErrForbidden))
				var apiErr *domain.APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, "Not the owner", apiErr.Detail)
			},
		},
		{
			name:   "not found without json",
			status: http.StatusNotFound,
			body:   `missing`,
			check: func(t *testing.T, err error) {
				assert.True(t, errors.Is(err, domain.ErrNotFound))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			_, err := c.GetRoom(context.Background(), "r1")
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestOwnerRoomCrud(t *testing.T) {
	var calls []string
	var created map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/rooms/my-rooms":
			_, _ = io.WriteString(w, `[{"id":"r1","title":"A","province":"P","district":"D","ward":"W","address_detail":"12 Le Loi",
				"area":25,"price":3000000,"room_status":"available","images":["x"],"created_at":"2024-01-01T00:00:00Z"}]`)
		case r.Method == http.MethodPost && r.URL.Path == "/api/rooms/":
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&created))
			_, _ = io.WriteString(w, `{"message":"Room created","room":{"id":"r2","title":"B","price":1,"area":2,"status":"available","created_at":"2024-01-01T00:00:00"}}`)
		case r.Method == http.MethodPut && r.URL.Path == "/api/rooms/r2":
			_, _ = io.WriteString(w, `{"message":"Room updated","room":{"id":"r2","title":"B2","price":1,"area":2,"status":"rented"}}`)
		case r.Method == http.MethodDelete && r.URL.Path == "/api/rooms/r2":
			_, _ = io.WriteString(w, `{"message":"Room deleted"}`)
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	rooms, err := c.MyRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "12 Le Loi", rooms[0].AddressDetail)
	assert.Equal(t, domain.RoomAvailable, rooms[0].Status)

	saved, err := c.CreateRoom(ctx, domain.RoomPayload{Title: "B", Area: 2, Price: 1, Status: domain.RoomAvailable, Images: []string{"x"}})
	require.NoError(t, err)
	assert.Equal(t, "r2", saved.ID)
	assert.Equal(t, "Room created", saved.Message)
	assert.Equal(t, "available", created["room_status"])

	saved, err = c.UpdateRoom(ctx, "r2", domain.RoomPayload{Title: "B2", Status: domain.RoomRented})
	require.NoError(t, err)
	assert.Equal(t, domain.RoomRented, saved.Status)

	require.NoError(t, c.DeleteRoom(ctx, "r2"))
	assert.Equal(t, []string{
		"GET /api/rooms/my-rooms", "POST /api/rooms/", "PUT /api/rooms/r2", "DELETE /api/rooms/r2",
	}, calls)
}

func TestRoomDetailMapsNullableLandlord(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/find-rooms/r9", r.URL.Path)
		_, _ = io.WriteString(w, `{"success":true,"room":{"id":"r9","title":"T","description":null,
			"address":{"province":"P","district":"D","ward":"W","address_detail":"1 A","full_address":"1 A, W, D, P"},
			"area":30,"price":4000000,"room_status":"rented","images":[],"created_at":"2024-02-02T02:02:02",
			"landlord":{"id":"l1","email":"l@b.vn","phone":null,"role":"landlord"}}}`)
	})

	room, err := c.RoomDetail(context.Background(), "r9")
	require.NoError(t, err)
	assert.Equal(t, "1 A, W, D, P", room.Address.FullAddress)
	assert.Equal(t, "l@b.vn", room.Landlord.Email)
	assert.Empty(t, room.Landlord.Phone)
	assert.Equal(t, domain.RoomRented, room.Status)
}
