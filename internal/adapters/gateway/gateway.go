// Package gateway - единая точка выхода в сеть. Все адаптеры получают *http.Client
// отсюда; запросы к backend обогащаются заголовками, 401 завершает сессию.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"roomfinder/internal/contextkeys"
	"roomfinder/internal/core/domain"
	"roomfinder/internal/core/port"

	"github.com/google/uuid"
)

// RoundTripperFunc позволяет использовать функцию как http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

// Middleware оборачивает транспорт.
type Middleware func(next http.RoundTripper) http.RoundTripper

// Chain собирает транспорт: первый middleware в списке выполняется первым.
func Chain(base http.RoundTripper, mws ...Middleware) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	rt := base
	for i := len(mws) - 1; i >= 0; i-- {
		rt = mws[i](rt)
	}
	return rt
}

// Config - параметры шлюза.
type Config struct {
	// BackendHost - host:port backend. Только эти запросы получают заголовки и обработку 401.
	BackendHost string
	Timeout     time.Duration
	// Transport - базовый транспорт, по умолчанию http.DefaultTransport.
	Transport http.RoundTripper
}

// NewClient собирает http.Client со всей цепочкой middleware.
func NewClient(cfg Config, session port.SessionPort, navigator port.Navigator, logger port.LoggerPort) *http.Client {
	gwLogger := logger.WithFields(port.Fields{"component": "RequestGateway"})

	return &http.Client{
		Timeout: cfg.Timeout,
		Transport: Chain(cfg.Transport,
			ConnectionErrors(),
			Trace(cfg.BackendHost),
			Unauthorized(cfg.BackendHost, session, navigator, gwLogger),
			Auth(cfg.BackendHost, session),
		),
	}
}

func isBackend(req *http.Request, backendHost string) bool {
	return backendHost != "" && req.URL != nil && req.URL.Host == backendHost
}

// ConnectionErrors помечает сетевые сбои как domain.ErrConnection.
func ConnectionErrors() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			resp, err := next.RoundTrip(req)
			if err != nil && !errors.Is(err, domain.ErrSessionExpired) && !errors.Is(err, context.Canceled) {
				return nil, fmt.Errorf("%w: %w", domain.ErrConnection, err)
			}
			return resp, err
		})
	}
}

// Trace передает trace_id из контекста в заголовке X-Trace-ID, создавая новый при отсутствии.
func Trace(backendHost string) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if !isBackend(req, backendHost) || req.Header.Get("X-Trace-ID") != "" {
				return next.RoundTrip(req)
			}

			traceID := contextkeys.TraceIDFromContext(req.Context())
			if traceID == "" {
				traceID = uuid.New().String()
			}
			out := req.Clone(req.Context())
			out.Header.Set("X-Trace-ID", traceID)
			return next.RoundTrip(out)
		})
	}
}

// Auth добавляет Content-Type по умолчанию и Authorization к запросам backend.
// Заголовки вызывающего не перезаписываются: явный токен (вход до создания сессии)
// важнее токена текущей сессии.
func Auth(backendHost string, session port.SessionPort) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if !isBackend(req, backendHost) {
				return next.RoundTrip(req)
			}

			out := req.Clone(req.Context())
			if out.Header.Get("Content-Type") == "" {
				out.Header.Set("Content-Type", "application/json")
			}
			if out.Header.Get("Authorization") == "" {
				if token := session.Token(); token != "" {
					out.Header.Set("Authorization", "Bearer "+token)
				}
			}
			return next.RoundTrip(out)
		})
	}
}

// Unauthorized: ответ 401 от backend сбрасывает сессию, переводит на страницу входа
// и возвращается вызывающему как domain.ErrSessionExpired. Тело ответа не читается, повтора нет.
// Запрос со своим Authorization сессию не трогает, 401 отдается вызывающему как есть.
func Unauthorized(backendHost string, session port.SessionPort, navigator port.Navigator, logger port.LoggerPort) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			ownToken := req.Header.Get("Authorization") != ""
			resp, err := next.RoundTrip(req)
			if err != nil || ownToken || !isBackend(req, backendHost) || resp.StatusCode != http.StatusUnauthorized {
				return resp, err
			}

			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
			resp.Body.Close()

			logger.Warn("Backend rejected token, ending session", port.Fields{
				"http_method": req.Method,
				"http_path":   req.URL.Path,
				"trace_id":    req.Header.Get("X-Trace-ID"),
			})

			if logoutErr := session.Logout(req.Context()); logoutErr != nil {
				logger.Error("Failed to clear session after 401", logoutErr, nil)
			}
			if navigator != nil {
				navigator.Navigate(req.Context(), port.LoginRoute)
			}

			return nil, domain.ErrSessionExpired
		})
	}
}
