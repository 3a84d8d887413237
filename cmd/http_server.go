package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/website-management/internal"
	"github.com/frahmantamala/website-management/internal/auth"
	authpg "github.com/frahmantamala/website-management/internal/auth/postgres"
	authredis "github.com/frahmantamala/website-management/internal/auth/redis"
	"github.com/frahmantamala/website-management/internal/core/events"
	"github.com/frahmantamala/website-management/internal/transport/rest"
	"github.com/frahmantamala/website-management/internal/user"
	userpg "github.com/frahmantamala/website-management/internal/user/postgres"
	"github.com/frahmantamala/website-management/internal/website"
	websitepg "github.com/frahmantamala/website-management/internal/website/postgres"
	"github.com/frahmantamala/website-management/pkg/logger"

	"github.com/go-chi/chi"
	goredis "github.com/go-redis/redis/v8"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Router *chi.Mux
	Logger *slog.Logger
	Store  *website.Store
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Format, config.Observability.Logging.Level)
	appLogger := logger.LoggerWrapper()

	sqlxDB, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlxDB.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm connection: %w", err)
	}

	// Token revocation backend: redis when configured, in-process otherwise
	var revoker auth.TokenRevoker
	if config.Redis.Enabled {
		client := goredis.NewClient(&goredis.Options{
			Addr:     config.Redis.Addr,
			Password: config.Redis.Password,
			DB:       config.Redis.DB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		revoker = authredis.NewRevoker(client)
	} else {
		revoker = auth.NewMemoryRevoker()
	}

	bus := events.NewEventBus(appLogger)
	website.RegisterAuditSubscriber(bus, appLogger)

	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)

	authRepo := authpg.NewRepository(gormDB)
	authService := auth.NewService(authRepo, tokenGen, revoker, config.Security.BCryptCost, config.Security.EmailDomain, appLogger)
	authHandler := auth.NewHandler(authService)

	userRepo := userpg.NewUserRepository(gormDB)
	userService := user.NewService(userRepo, config.Security.BCryptCost, appLogger)
	userHandler := user.NewHandler(appLogger, userService)

	websiteRepo := websitepg.NewWebsiteRepository(gormDB)
	recordRepo := websitepg.NewRecordRepository(gormDB)
	store := website.NewStore(websiteRepo, recordRepo, config.Sync.FetchMaxRetries, config.Sync.FetchBackoff, appLogger)
	websiteService := website.NewService(store, bus, appLogger)
	websiteHandler := website.NewHandler(appLogger, websiteService)

	// Warm the snapshot; a failed initial fetch is not fatal, health
	// reports it and the next list request retries.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := store.FetchAll(ctx); err != nil {
		appLogger.Error("initial snapshot fetch failed", "error", err)
	}

	downloadHandler := rest.NewDownloadHandler(config.Downloads.Timeout, config.Downloads.MaxBodyBytes, appLogger)
	rbac := auth.NewRBACAuthorization(appLogger)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, config, sqlxDB.DB, store, rest.Handlers{
		Auth:     authHandler,
		User:     userHandler,
		Website:  websiteHandler,
		Download: downloadHandler,
	}, rbac, appLogger)

	return &Dependencies{
		Config: config,
		Logger: appLogger,
		DB:     sqlxDB,
		Router: router,
		Store:  store,
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
