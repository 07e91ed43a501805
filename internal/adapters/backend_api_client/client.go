package backend_api_client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"roomfinder/internal/contextkeys"
	"roomfinder/internal/core/domain"
	"roomfinder/internal/core/port"
)

// Client - клиент REST API backend. httpClient должен быть клиентом шлюза,
// именно он добавляет токен и обрабатывает 401.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var (
	_ port.AuthAPI       = (*Client)(nil)
	_ port.SearchAPI     = (*Client)(nil)
	_ port.OwnerRoomsAPI = (*Client)(nil)
)

func NewClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// doRequest - внутренний хелпер: JSON-тело кодируется здесь, заголовки ставит шлюз.
func (c *Client) doRequest(ctx context.Context, method, path string, body any, header http.Header) (*http.Response, error) {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case io.Reader:
		reader = b
	default:
		payload, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("Accept", "application/json")

	return c.httpClient.Do(req)
}

// call выполняет запрос и декодирует успешный ответ в out (если out не nil).
func (c *Client) call(ctx context.Context, method, path string, body any, header http.Header, out any) error {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":   "BackendApiClient",
		"http_method": method,
		"http_path":   path,
	})
	logger.Debug("Sending request to backend", nil)

	resp, err := c.doRequest(ctx, method, path, body, header)
	if err != nil {
		if !errors.Is(err, domain.ErrSessionExpired) {
			logger.Error("Failed to perform request to backend", err, nil)
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := decodeErrorResponse(resp)
		logger.Warn("Received error response from backend", port.Fields{
			"status_code": resp.StatusCode,
			"error":       apiErr.Error(),
		})
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		logger.Error("Failed to decode response from backend", err, nil)
		return fmt.Errorf("failed to decode backend response: %w", err)
	}
	return nil
}

// Login - POST /auth/jwt/login с form-urlencoded телом.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (string, error) {
	form := url.Values{}
	form.Set("username", creds.Email)
	form.Set("password", creds.Password)

	header := http.Header{}
	header.Set("Content-Type", "application/x-www-form-urlencoded")

	var out loginResponse
	if err := c.call(ctx, http.MethodPost, "/auth/jwt/login", strings.NewReader(form.Encode()), header, &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("backend returned empty access token")
	}
	return out.AccessToken, nil
}

// Register - POST /auth/register.
func (c *Client) Register(ctx context.Context, reg domain.Registration) error {
	var phone *string
	if p := strings.TrimSpace(reg.Phone); p != "" {
		phone = &p
	}
	body := registerRequest{
		Email:    reg.Email,
		Password: reg.Password,
		Phone:    phone,
		Role:     reg.Role,
		IsActive: true,
	}
	return c.call(ctx, http.MethodPost, "/auth/register", body, nil, nil)
}

// CurrentUser - GET /api/users/me с явным токеном. Шлюз оставляет его как есть,
// поэтому вход поверх старой сессии проверяет именно новый токен.
func (c *Client) CurrentUser(ctx context.Context, token string) (domain.User, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	var out userResponse
	if err := c.call(ctx, http.MethodGet, "/api/users/me", nil, header, &out); err != nil {
		return domain.User{}, err
	}
	return out.toDomain(), nil
}

// keywordEscape кодирует как encodeURIComponent: без изменений остаются только
// латинские буквы, цифры и -_.!~*'(), остальные байты UTF-8 идут как %XX.
func keywordEscape(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if uriComponentSafe(ch) {
			b.WriteByte(ch)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[ch>>4])
		b.WriteByte(hex[ch&0x0F])
	}
	return b.String()
}

func uriComponentSafe(ch byte) bool {
	switch {
	case 'a' <= ch && ch <= 'z', 'A' <= ch && ch <= 'Z', '0' <= ch && ch <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", ch) >= 0
}

// SearchByKeyword - GET /api/find-rooms/search-keyword.
func (c *Client) SearchByKeyword(ctx context.Context, keyword string, page, limit int) (domain.SearchPage, error) {
	path := fmt.Sprintf("/api/find-rooms/search-keyword?keyword=%s&page=%d&limit=%d", keywordEscape(keyword), page, limit)

	var out searchResponse
	if err := c.call(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return domain.SearchPage{}, err
	}
	if !out.Success {
		return domain.SearchPage{}, &domain.APIError{StatusCode: http.StatusOK, Detail: "search was not successful"}
	}
	if out.Page == 0 {
		out.Page = page
	}
	return out.toDomain(domain.PathKeyword), nil
}

// SearchByFilters - POST /api/find-rooms/search для первой страницы,
// POST /api/find-rooms/search/page/{n} для остальных.
func (c *Client) SearchByFilters(ctx context.Context, query domain.SearchQuery, page int) (domain.SearchPage, error) {
	path := "/api/find-rooms/search"
	if page > 1 {
		path += "/page/" + strconv.Itoa(page)
	}

	var out searchResponse
	if err := c.call(ctx, http.MethodPost, path, query, nil, &out); err != nil {
		return domain.SearchPage{}, err
	}
	if !out.Success {
		return domain.SearchPage{}, &domain.APIError{StatusCode: http.StatusOK, Detail: "search was not successful"}
	}
	if out.Page == 0 {
		out.Page = page
	}
	return out.toDomain(domain.PathFilter), nil
}

// RoomDetail - GET /api/find-rooms/{id}.
func (c *Client) RoomDetail(ctx context.Context, roomID string) (domain.RoomDetail, error) {
	var out roomDetailResponse
	if err := c.call(ctx, http.MethodGet, "/api/find-rooms/"+url.PathEscape(roomID), nil, nil, &out); err != nil {
		return domain.RoomDetail{}, err
	}
	if !out.Success {
		return domain.RoomDetail{}, &domain.APIError{StatusCode: http.StatusNotFound, Detail: "room not found"}
	}
	return out.Room.toDomain(), nil
}

// MyRooms - GET /api/rooms/my-rooms.
func (c *Client) MyRooms(ctx context.Context) ([]domain.OwnedRoom, error) {
	var out []ownedRoomDTO
	if err := c.call(ctx, http.MethodGet, "/api/rooms/my-rooms", nil, nil, &out); err != nil {
		return nil, err
	}
	rooms := make([]domain.OwnedRoom, 0, len(out))
	for _, dto := range out {
		rooms = append(rooms, dto.toDomain())
	}
	return rooms, nil
}

func (c *Client) GetRoom(ctx context.Context, roomID string) (domain.OwnedRoom, error) {
	var out ownedRoomDTO
	if err := c.call(ctx, http.MethodGet, "/api/rooms/"+url.PathEscape(roomID), nil, nil, &out); err != nil {
		return domain.OwnedRoom{}, err
	}
	return out.toDomain(), nil
}

func (c *Client) CreateRoom(ctx context.Context, payload domain.RoomPayload) (domain.SavedRoom, error) {
	var out savedRoomResponse
	if err := c.call(ctx, http.MethodPost, "/api/rooms/", payload, nil, &out); err != nil {
		return domain.SavedRoom{}, err
	}
	return out.toDomain(), nil
}

func (c *Client) UpdateRoom(ctx context.Context, roomID string, payload domain.RoomPayload) (domain.SavedRoom, error) {
	var out savedRoomResponse
	if err := c.call(ctx, http.MethodPut, "/api/rooms/"+url.PathEscape(roomID), payload, nil, &out); err != nil {
		return domain.SavedRoom{}, err
	}
	return out.toDomain(), nil
}

func (c *Client) DeleteRoom(ctx context.Context, roomID string) error {
	return c.call(ctx, http.MethodDelete, "/api/rooms/"+url.PathEscape(roomID), nil, nil, nil)
}
