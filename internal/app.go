package internal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"roomfinder/internal/adapters/backend_api_client"
	"roomfinder/internal/adapters/gateway"
	"roomfinder/internal/adapters/geography_client"
	"roomfinder/internal/adapters/localstore"
	logger_adapter "roomfinder/internal/adapters/logger"
	"roomfinder/internal/adapters/rest"
	"roomfinder/internal/cli"
	"roomfinder/internal/configs"
	"roomfinder/internal/core/port"
	"roomfinder/internal/core/search"
	"roomfinder/internal/core/session"
	"roomfinder/internal/core/usecase"

	"github.com/fluent/fluent-logger-golang/fluent"
)

// App держит все зависимости одного запуска: хранилище сессии, клиентов и сценарии.
type App struct {
	config *configs.Config

	store   *localstore.SQLiteStore
	session *session.Manager

	auth     *usecase.AuthService
	composer *search.Composer
	rooms    *usecase.RoomManager
	browser  *usecase.RoomBrowser
	geo      *geography_client.Client

	fluentClient *fluent.Fluent
	baseLogger   port.LoggerPort
	logger       port.LoggerPort
}

// NewApp загружает конфигурацию, поднимает логгеры, открывает хранилище
// и восстанавливает сессию.
func NewApp(ctx context.Context, envPath string) (*App, error) {
	appConfig, err := configs.LoadConfig(envPath)
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	// --- 1. ЛОГГЕРЫ ---
	var activeLoggers []port.LoggerPort

	stdoutLogger := logger_adapter.NewSlogAdapter(logger_adapter.SlogConfig{
		Level:    logger_adapter.ParseLevel(appConfig.StdoutLogger.Level),
		IsJSON:   appConfig.StdoutLogger.JSON,
		UseColor: !appConfig.StdoutLogger.JSON,
	})
	activeLoggers = append(activeLoggers, stdoutLogger)

	var fluentClient *fluent.Fluent
	if appConfig.FluentBit.Enabled {
		fluentClient, err = logger_adapter.NewFluentClient(logger_adapter.FluentConfig{
			Host:      appConfig.FluentBit.Host,
			Port:      appConfig.FluentBit.Port,
			TagPrefix: appConfig.AppName,
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return nil, fmt.Errorf("failed to create fluentbit client: %w", err)
		}

		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(fluentClient, logger_adapter.ParseLevel(appConfig.FluentBit.Level))
		if err != nil {
			fluentClient.Close()
			return nil, err
		}
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	multiLogger, err := logger_adapter.NewMultiloggerAdapter(activeLoggers...)
	if err != nil {
		return nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}

	baseLogger := multiLogger.WithFields(port.Fields{"service_name": appConfig.AppName})
	appLogger := baseLogger.WithFields(port.Fields{"component": "app"})
	appLogger.Debug("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers), "fluent_enabled": appConfig.FluentBit.Enabled,
	})

	// --- 2. СЕССИЯ ---
	store, err := localstore.OpenSQLiteStore(ctx, appConfig.StorePath)
	if err != nil {
		appLogger.Error("Failed to open session store", err, port.Fields{"path": appConfig.StorePath})
		if fluentClient != nil {
			fluentClient.Close()
		}
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	sessionManager := session.NewManager(store, baseLogger.WithFields(port.Fields{"component": "SessionManager"}))
	sessionManager.Initialize(ctx)

	// --- 3. ШЛЮЗ И КЛИЕНТЫ ---
	navigator := port.NavigatorFunc(func(ctx context.Context, route string) {
		rest.Navigator{}.Navigate(ctx, route)
		appLogger.Info("Redirecting user", port.Fields{"route": route})
	})
	httpClient := gateway.NewClient(gateway.Config{
		BackendHost: appConfig.BackendHost(),
		Timeout:     appConfig.HTTP.Timeout,
	}, sessionManager, navigator, baseLogger)

	backendClient := backend_api_client.NewClient(appConfig.BackendURL, httpClient)
	geoClient := geography_client.NewClient(geography_client.Config{
		BaseURL:   appConfig.GeographyURL,
		CacheSize: appConfig.Geo.Size,
		CacheTTL:  appConfig.Geo.TTL,
	}, httpClient)

	// --- 4. СЦЕНАРИИ ---
	return &App{
		config:       appConfig,
		store:        store,
		session:      sessionManager,
		auth:         usecase.NewAuthService(backendClient, sessionManager),
		composer:     search.NewComposer(backendClient, appConfig.Search.PageLimit),
		rooms:        usecase.NewRoomManager(backendClient, sessionManager),
		browser:      usecase.NewRoomBrowser(backendClient),
		geo:          geoClient,
		fluentClient: fluentClient,
		baseLogger:   baseLogger,
		logger:       appLogger,
	}, nil
}

// Services отдает сценарии командам CLI.
func (a *App) Services() *cli.Services {
	return &cli.Services{
		Auth:   a.auth,
		Search: a.composer,
		Rooms:  a.rooms,
		Browse: a.browser,
		Geo:    a.geo,
		Serve:  a.Serve,
		Logger: a.baseLogger,
	}
}

// Serve запускает BFF-сервер и ждет сигнала или отмены контекста.
func (a *App) Serve(ctx context.Context) error {
	handlers := rest.NewHandlers(a.auth, a.composer, a.rooms, a.browser, a.geo)
	apiServer := rest.NewServer(rest.ServerConfig{
		Port:           a.config.Web.Port,
		AllowedOrigins: a.config.Web.AllowedOrigins,
	}, handlers, a.baseLogger)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- apiServer.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	a.logger.Info("Application running. Waiting for signals or server error...", port.Fields{"port": a.config.Web.Port})

	var runErr error
	select {
	case receivedSignal := <-quit:
		a.logger.Warn("Received OS signal, shutting down...", port.Fields{"signal": receivedSignal.String()})
	case <-ctx.Done():
		a.logger.Warn("Context was cancelled, shutting down...", nil)
	case err := <-serverErrors:
		if err != nil {
			a.logger.Error("Server failed, shutting down", err, nil)
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("Error during API server shutdown", err, nil)
		runErr = err
	}
	if err := <-serverErrors; err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// Close освобождает хранилище и клиента fluent.
func (a *App) Close() error {
	var errs []error
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close session store: %w", err))
		}
	}
	if a.fluentClient != nil {
		if err := a.fluentClient.Close(); err != nil {
			// fluent может быть уже недоступен, поэтому в stderr
			fmt.Fprintf(os.Stderr, "ERROR: Error closing fluent client: %v\n", err)
		}
	}
	return errors.Join(errs...)
}
