package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"roomfinder/internal/core/port"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// ServerConfig - адрес и разрешенные источники CORS.
type ServerConfig struct {
	Port           string
	AllowedOrigins []string
}

// Server - локальный HTTP-сервер для браузерного интерфейса.
type Server struct {
	httpServer *http.Server
	logger     port.LoggerPort
}

// NewRouter собирает маршруты. Вынесен отдельно, чтобы тесты работали без сокета.
func NewRouter(cfg ServerConfig, h *Handlers, baseLogger port.LoggerPort) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP, LoggerMiddleware(baseLogger), middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Trace-ID"},
		ExposedHeaders:   []string{"Location"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/session", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Post("/login", h.Login)
			r.Post("/register", h.Register)
			r.Post("/logout", h.Logout)
		})

		r.Route("/search", func(r chi.Router) {
			r.Get("/options", h.SearchOptions)
			r.Get("/state", h.SearchState)
			r.Post("/", h.Search)
			r.Get("/page/{page}", h.SearchPage)
		})

		r.Get("/rooms/{id}", h.RoomDetail)

		r.Route("/my-rooms", func(r chi.Router) {
			r.Get("/", h.MyRooms)
			r.Post("/", h.CreateRoom)
			r.Get("/{id}", h.GetMyRoom)
			r.Put("/{id}", h.UpdateRoom)
			r.Delete("/{id}", h.DeleteRoom)
		})

		r.Route("/locations", func(r chi.Router) {
			r.Get("/provinces", h.Provinces)
			r.Get("/provinces/{code}/districts", h.Districts)
			r.Get("/districts/{code}/wards", h.Wards)
		})
	})

	return r
}

func NewServer(cfg ServerConfig, h *Handlers, baseLogger port.LoggerPort) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           NewRouter(cfg, h, baseLogger),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: baseLogger,
	}
}

// Start запускает HTTP-сервер и блокируется до остановки.
func (s *Server) Start() error {
	s.logger.Info("Starting REST API server", port.Fields{"address": s.httpServer.Addr})
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("Could not start server", err, nil)
		return fmt.Errorf("could not start server: %w", err)
	}
	return nil
}

// Stop корректно останавливает сервер.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping REST API server...", nil)
	return s.httpServer.Shutdown(ctx)
}
