package app

import (
	"context"
	"fmt"
	"image/png"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aidar/certgen/internal/config"
	"github.com/aidar/certgen/internal/document"
	"github.com/aidar/certgen/internal/handler"
	"github.com/aidar/certgen/internal/middleware"
	"github.com/aidar/certgen/internal/repository"
	"github.com/aidar/certgen/internal/repository/memory"
	"github.com/aidar/certgen/internal/repository/postgres"
	"github.com/aidar/certgen/internal/service"
)

// App представляет приложение со всеми зависимостями
type App struct {
	config *config.Config
	db     *pgxpool.Pool
	server *http.Server
	logger *slog.Logger

	runRepo   repository.RunRepository
	certRepo  repository.CertificateRepository
	statsRepo repository.StatsRepository

	certService  *service.CertificateService
	statsService *service.StatsService
	authService  *service.AuthService
}

// Option настраивает приложение
type Option func(*App)

// WithLogger подменяет логгер по умолчанию
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

// New создает новый экземпляр приложения
func New(cfg *config.Config, opts ...Option) (*App, error) {
	app := &App{
		config: cfg,
		// Структурированный логгер (JSON формат) для серверного режима
		logger: slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()})),
	}

	for _, opt := range opts {
		opt(app)
	}

	return app, nil
}

// Initialize открывает шаблон, подключает журнал и настраивает HTTP сервер
func (a *App) Initialize(ctx context.Context) error {
	if err := a.setupStorage(ctx); err != nil {
		return err
	}

	if err := a.setupServices(); err != nil {
		return err
	}

	a.setupServer()

	a.logger.Info("Application initialized successfully")
	return nil
}

// setupStorage выбирает журнал: PostgreSQL если включен, иначе память процесса
func (a *App) setupStorage(ctx context.Context) error {
	if !a.config.Database.Enabled {
		journal := memory.NewJournal(memory.WithMaxRuns(a.config.Database.JournalMaxRuns))
		a.runRepo = journal.Runs()
		a.certRepo = journal.Certificates()
		a.statsRepo = journal
		a.logger.Debug("Using in-memory journal", "max_runs", a.config.Database.JournalMaxRuns)
		return nil
	}

	if err := a.connectDB(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	a.runRepo = postgres.NewRunRepository(a.db)
	a.certRepo = postgres.NewCertificateRepository(a.db)
	a.statsRepo = postgres.NewStatsRepository(a.db)
	return nil
}

// connectDB устанавливает подключение к PostgreSQL с connection pool
func (a *App) connectDB(ctx context.Context) error {
	poolConfig, err := pgxpool.ParseConfig(a.config.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to parse database config: %w", err)
	}

	// Настраиваем размеры connection pool
	poolConfig.MaxConns = a.config.Database.MaxConns
	poolConfig.MinConns = a.config.Database.MinConns

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Проверяем подключение к БД
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	a.db = pool
	a.logger.Info("Connected to database")
	return nil
}

// setupServices открывает документ-шаблон и создает сервисы
func (a *App) setupServices() error {
	doc, err := document.Open(a.config.Template.Path)
	if err != nil {
		return fmt.Errorf("failed to open template: %w", err)
	}
	a.logger.Info("Template opened", "path", a.config.Template.Path, "layers", len(doc.ArtLayers()))

	saveOptions := document.PNGSaveOptions{Compression: png.CompressionLevel(a.config.Generator.Compression)}
	a.certService, err = service.NewCertificateService(doc, a.runRepo, a.certRepo, saveOptions, a.logger)
	if err != nil {
		return fmt.Errorf("failed to bind template layers: %w", err)
	}

	a.statsService = service.NewStatsService(a.statsRepo)
	a.authService = service.NewAuthService(
		a.config.JWT.APIKey,
		a.config.JWT.Secret,
		a.config.JWT.GetExpiration(),
	)
	return nil
}

// setupServer инициализирует HTTP роутер и обработчики
func (a *App) setupServer() {
	authHandler := handler.NewAuthHandler(a.authService)
	runHandler := handler.NewRunHandler(
		a.certService,
		a.config.Generator.ResultsDir,
		a.config.Generator.MaxUploadMB<<20,
		a.logger,
	)
	statsHandler := handler.NewStatsHandler(a.statsService)

	authMiddleware := middleware.AuthMiddleware(a.authService)

	r := chi.NewRouter()

	// Глобальные middleware (применяются ко всем запросам)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	// Генерация большого списка может занимать минуты
	r.Use(chimiddleware.Timeout(10 * time.Minute))

	r.Post("/auth/login", authHandler.Login)

	// Health check для мониторинга
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
			a.logger.Error("Failed to write health check response", "error", err)
		}
	})

	// Защищенные эндпоинты (требуют JWT токен в заголовке Authorization)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)

		r.Post("/runs", runHandler.CreateRun)
		r.Get("/runs", runHandler.ListRuns)
		r.Get("/runs/{runID}", runHandler.GetRun)
		r.Get("/runs/{runID}/files/{fileName}", runHandler.GetFile)

		r.Get("/stats", statsHandler.GetStats)
	})

	addr := fmt.Sprintf("%s:%s", a.config.Server.Host, a.config.Server.Port)
	a.server = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 11 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	a.logger.Debug("HTTP server configured", "addr", addr)
}

// CertificateService возвращает сервис генерации (для CLI режима)
func (a *App) CertificateService() *service.CertificateService {
	return a.certService
}

// AuthService возвращает сервис авторизации
func (a *App) AuthService() *service.AuthService {
	return a.authService
}

// Handler возвращает корневой HTTP обработчик
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run запускает HTTP сервер
func (a *App) Run() error {
	a.logger.Info("Starting HTTP server", "addr", a.server.Addr)
	return a.server.ListenAndServe()
}

// Shutdown корректно останавливает приложение
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down application")

	// Останавливаем HTTP сервер (ждем завершения текущих запросов)
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
	}

	// Закрываем подключения к базе данных
	if a.db != nil {
		a.db.Close()
	}

	a.logger.Info("Application stopped gracefully")
	return nil
}
