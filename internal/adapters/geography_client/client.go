package geography_client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"roomfinder/internal/contextkeys"
	"roomfinder/internal/core/domain"
	"roomfinder/internal/core/port"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

// Config - параметры клиента справочника адресов.
type Config struct {
	BaseURL   string        // Например, "https://provinces.open-api.vn"
	CacheSize int
	CacheTTL  time.Duration
}

// Client - клиент публичного API административного деления.
// Справочник меняется редко, поэтому ответы кешируются, а одинаковые
// одновременные запросы склеиваются в один.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *expirable.LRU[string, []domain.Place]
	group      singleflight.Group
}

var _ port.GeographyPort = (*Client)(nil)

// sharedFetchTimeout ограничивает общий запрос, который не наследует отмену вызывающих.
const sharedFetchTimeout = 30 * time.Second

func NewClient(cfg Config, httpClient *http.Client) *Client {
	size := cfg.CacheSize
	if size <= 0 {
		size = 256
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		cache:      expirable.NewLRU[string, []domain.Place](size, nil, cfg.CacheTTL),
	}
}

type placeDTO struct {
	Code int    `json:"code"`
	Name string `json:"name"`
}

type provinceDTO struct {
	placeDTO
	Districts []placeDTO `json:"districts"`
}

type districtDTO struct {
	placeDTO
	Wards []placeDTO `json:"wards"`
}

func toPlaces(dtos []placeDTO) []domain.Place {
	places := make([]domain.Place, 0, len(dtos))
	for _, d := range dtos {
		places = append(places, domain.Place{Code: d.Code, Name: d.Name})
	}
	return places
}

// Provinces - GET /api/p/
func (c *Client) Provinces(ctx context.Context) ([]domain.Place, error) {
	return c.cached(ctx, "/api/p/", func(body io.Reader) ([]domain.Place, error) {
		var out []placeDTO
		if err := json.NewDecoder(body).Decode(&out); err != nil {
			return nil, err
		}
		return toPlaces(out), nil
	})
}

// Districts - GET /api/p/{code}?depth=2, поле districts.
func (c *Client) Districts(ctx context.Context, provinceCode int) ([]domain.Place, error) {
	path := "/api/p/" + strconv.Itoa(provinceCode) + "?depth=2"
	return c.cached(ctx, path, func(body io.Reader) ([]domain.Place, error) {
		var out provinceDTO
		if err := json.NewDecoder(body).Decode(&out); err != nil {
			return nil, err
		}
		return toPlaces(out.Districts), nil
	})
}

// Wards - GET /api/d/{code}?depth=2, поле wards.
func (c *Client) Wards(ctx context.Context, districtCode int) ([]domain.Place, error) {
	path := "/api/d/" + strconv.Itoa(districtCode) + "?depth=2"
	return c.cached(ctx, path, func(body io.Reader) ([]domain.Place, error) {
		var out districtDTO
		if err := json.NewDecoder(body).Decode(&out); err != nil {
			return nil, err
		}
		return toPlaces(out.Wards), nil
	})
}

// cached отдает копию из кеша или загружает справочник одним общим запросом.
// Общий запрос не зависит от отмены контекста отдельного вызывающего,
// каждый вызывающий ждет его только в пределах своего ctx.
func (c *Client) cached(ctx context.Context, path string, decode func(io.Reader) ([]domain.Place, error)) ([]domain.Place, error) {
	if places, ok := c.cache.Get(path); ok {
		return slices.Clone(places), nil
	}

	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "GeographyClient",
		"path":      path,
	})

	ch := c.group.DoChan(path, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedFetchTimeout)
		defer cancel()

		places, err := c.fetch(fetchCtx, path, decode)
		if err != nil {
			return nil, err
		}
		c.cache.Add(path, places)
		return places, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			logger.Error("Failed to load administrative divisions", res.Err, nil)
			return nil, res.Err
		}
		logger.Debug("Administrative divisions loaded", port.Fields{"shared": res.Shared})
		return slices.Clone(res.Val.([]domain.Place)), nil
	}
}

func (c *Client) fetch(ctx context.Context, path string, decode func(io.Reader) ([]domain.Place, error)) ([]domain.Place, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, &domain.APIError{StatusCode: resp.StatusCode, Detail: strings.TrimSpace(string(body))}
	}

	places, err := decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode geography response: %w", err)
	}
	return places, nil
}
