package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/voltride/rental-service/internal/adapter/handler/http"
	"github.com/voltride/rental-service/internal/adapter/logger"
	"github.com/voltride/rental-service/internal/adapter/postgres"
	"github.com/voltride/rental-service/internal/adapter/prometheus"
	"github.com/voltride/rental-service/internal/adapter/redis"
	"github.com/voltride/rental-service/internal/auth"
	"github.com/voltride/rental-service/internal/config"
	"github.com/voltride/rental-service/internal/core/ports"
	"github.com/voltride/rental-service/internal/core/services"

	"github.com/go-playground/validator/v10"
	"github.com/pressly/goose"
	redisClient "github.com/redis/go-redis/v9"
)

type App struct {
	Config       *config.Container
	Logger       ports.LoggerPort
	DB           *sql.DB
	RedisClient  *redisClient.Client
	RedisAdapter ports.CachePort
	HTTPRouter   *http.Router
}

func New(ctx context.Context, cfg *config.Container) (*App, error) {
	// Set logger
	loggerAdapter := logger.NewLoggerAdapter(cfg.App.Env)
	loggerAdapter.Info("Starting the application", map[string]interface{}{
		"app": cfg.App.Name,
		"env": cfg.App.Env,
	})

	// Set redis
	redisConn := redisClient.NewClient(&redisClient.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if _, err := redisConn.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	cacheAdapter := redis.NewRedisAdapter(redisConn)

	// Connect DB
	db, err := sql.Open("postgres", cfg.DB.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Migrate DB
	if err := goose.Up(db, "./internal/adapter/postgres/migrations"); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Validate
	validate := validator.New()

	// Observability
	metrics := prometheus.NewPrometheusAdapter()

	// Repositories
	txManager := postgres.NewTxManager(db)
	userRepo := postgres.NewUserRepository(db)
	vehicleRepo := postgres.NewVehicleRepository(db)
	stationRepo := postgres.NewStationRepository(db)
	tripRepo := postgres.NewTripRepository(db)
	membershipRepo := postgres.NewMembershipRepository(db)
	maintenanceRepo := postgres.NewMaintenanceRepository(db)
	reviewRepo := postgres.NewReviewRepository(db)

	// Auth primitives
	hasher := auth.NewBcryptHasher()
	tokenService := http.NewJWTTokenService(cfg.Token.Secret, loggerAdapter)

	// Services
	userService := services.NewUserService(userRepo, membershipRepo, hasher, tokenService, loggerAdapter, validate)
	walletService := services.NewWalletService(userRepo, loggerAdapter)
	vehicleService := services.NewVehicleService(vehicleRepo, loggerAdapter, validate, cacheAdapter)
	stationService := services.NewStationService(stationRepo, loggerAdapter, validate, cacheAdapter)
	tripService := services.NewTripService(tripRepo, vehicleRepo, userRepo, txManager, loggerAdapter)
	membershipService := services.NewMembershipService(membershipRepo, userRepo, txManager, loggerAdapter)
	maintenanceService := services.NewMaintenanceService(maintenanceRepo, vehicleRepo, tripRepo, txManager, loggerAdapter, validate)
	reviewService := services.NewReviewService(reviewRepo, tripRepo, loggerAdapter)

	// HTTP Handlers
	userHandler := http.NewUserHandler(userService, walletService, loggerAdapter, metrics)
	tripHandler := http.NewTripHandler(tripService, reviewService, loggerAdapter, metrics)
	vehicleHandler := http.NewVehicleHandler(vehicleService, maintenanceService, loggerAdapter, metrics)
	stationHandler := http.NewStationHandler(stationService, vehicleService, loggerAdapter, metrics)
	membershipHandler := http.NewMembershipHandler(membershipService, loggerAdapter, metrics)
	maintenanceHandler := http.NewMaintenanceHandler(maintenanceService, loggerAdapter, metrics)

	// Init HTTP router
	router, err := http.NewRouter(
		cfg.HTTP,
		db,
		tokenService,
		userHandler,
		tripHandler,
		vehicleHandler,
		stationHandler,
		membershipHandler,
		maintenanceHandler,
	)
	if err != nil {
		db.Close()
		redisConn.Close()
		return nil, fmt.Errorf("failed to initialize router: %w", err)
	}

	return &App{
		Config:       cfg,
		Logger:       loggerAdapter,
		DB:           db,
		RedisClient:  redisConn,
		RedisAdapter: cacheAdapter,
		HTTPRouter:   router,
	}, nil
}

// Runs all services
func (a *App) Run() error {
	listenAddr := fmt.Sprintf("%s:%s", a.Config.HTTP.URL, a.Config.HTTP.Port)
	a.Logger.Info("Starting HTTP server", map[string]interface{}{
		"addr": listenAddr,
	})

	if err := a.HTTPRouter.Serve(listenAddr); err != nil {
		a.Logger.Error("HTTP server error", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}
	return nil
}

// Stops all services
func (a *App) Stop(ctx context.Context) error {
	a.Logger.Info("Shutting down gracefully...", nil)

	// Close database
	if err := a.DB.Close(); err != nil {
		a.Logger.Error("Database close error", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Close Redis
	if err := a.RedisClient.Close(); err != nil {
		a.Logger.Error("Redis close error", map[string]interface{}{
			"error": err.Error(),
		})
	}

	a.Logger.Info("Application stopped successfully", nil)
	return nil
}
