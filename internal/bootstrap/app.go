package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	httpHandler "github.com/team-pig/backend/internal/handler/http"
	wsHandler "github.com/team-pig/backend/internal/handler/websocket"
	"github.com/team-pig/backend/internal/hub"
	gormpersistence "github.com/team-pig/backend/internal/infra/persistence/gorm"
	"github.com/team-pig/backend/internal/infra/persistence/memory"
	redispubsub "github.com/team-pig/backend/internal/infra/pubsub/redis"
	"github.com/team-pig/backend/internal/infra/setup"
	"github.com/team-pig/backend/internal/middleware"
	"github.com/team-pig/backend/internal/repository"
	"github.com/team-pig/backend/internal/service"
	"github.com/team-pig/backend/internal/tasks"
	"github.com/team-pig/backend/internal/worker"
)

// App holds every long-lived component of the server.
type App struct {
	Config      *Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	AsynqClient *asynq.Client
	Worker      *worker.WorkerServer
	Scheduler   *worker.Scheduler
	Hub         *hub.Hub
	HttpServer  *http.Server

	cancel context.CancelFunc
}

type repositories struct {
	users   repository.UserRepository
	rooms   repository.RoomRepository
	board   repository.BoardRepository
	content repository.ContentRepository
}

// NewLogger builds the application logger from cfg.
func NewLogger(cfg *Config) *logrus.Logger {
	log := logrus.New()
	if cfg.AppEnv == "production" {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	log.SetOutput(os.Stdout)

	// Package code logs through the standard logger.
	logrus.SetFormatter(log.Formatter)
	logrus.SetLevel(level)
	logrus.SetOutput(os.Stdout)
	return log
}

// NewApp connects the infrastructure and wires services, handlers and workers.
func NewApp(cfg *Config) (*App, error) {
	log := NewLogger(cfg)
	log.Infof("Logger initialized (Level: %s)", log.GetLevel())

	app := &App{Config: cfg, Log: log}

	log.Info("Initializing infrastructure...")
	repos, err := app.initRepositories()
	if err != nil {
		return nil, err
	}

	redisClient, err := setup.InitRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, fmt.Errorf("failed to init Redis: %w", err)
	}
	app.RedisClient = redisClient
	log.Info("Redis client initialized")

	redisOpt := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
	app.AsynqClient = asynq.NewClient(redisOpt)

	publisher := redispubsub.NewEventPublisher(redisClient, cfg.KeyPrefix)
	purger := tasks.NewPurgeScheduler(app.AsynqClient)

	log.Info("Initializing services...")
	authService, err := service.NewAuthService(repos.users, cfg.JWTSecret, cfg.JWTExpiryHours)
	if err != nil {
		return nil, fmt.Errorf("failed to create AuthService: %w", err)
	}
	roomService := service.NewRoomService(repos.rooms, publisher, purger)
	boardService := service.NewBoardService(repos.rooms, repos.board, repos.content, publisher)
	contentService := service.NewContentService(repos.rooms, repos.content, publisher)

	app.Hub = hub.NewHub()

	app.Worker = worker.NewWorkerServer(redisOpt, cfg.WorkerConcurrency,
		worker.NewPurgeHandler(repos.board, repos.rooms, cfg.PurgeGracePeriod), log)
	app.Scheduler, err = worker.NewScheduler(redisOpt, cfg.PurgeSweepSchedule, log)
	if err != nil {
		return nil, fmt.Errorf("failed to register purge sweep: %w", err)
	}

	log.Info("Setting up Gin router...")
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(log))
	router.Use(middleware.Metrics())
	router.Use(cors.New(corsConfig(cfg.CORSAllowedOrigins)))

	httpHandler.RegisterRoutes(router, httpHandler.Routes{
		Auth:      httpHandler.NewAuthHandler(authService),
		Room:      httpHandler.NewRoomHandler(roomService, middleware.NewInviteLimiter(cfg.InviteLimitPerMin, cfg.InviteLimitBurst)),
		Board:     httpHandler.NewBoardHandler(boardService),
		Content:   httpHandler.NewContentHandler(contentService),
		Members:   roomService,
		JWTSecret: cfg.JWTSecret,
		RateLimit: middleware.RateLimit(redisClient, cfg.KeyPrefix, cfg.RateLimitMax, cfg.RateLimitWindow),
		WebSocket: wsHandler.NewWebSocketHandler(app.Hub, cfg.CORSAllowedOrigins).HandleConnection,
	})
	router.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true, "message": "pong"}) })
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	app.HttpServer = &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	log.Info("Application assembled successfully")
	return app, nil
}

// Migrate creates or updates the schema of the configured SQL database.
func Migrate(cfg *Config, log *logrus.Logger) error {
	if cfg.DBDriver == DriverMemory {
		log.Info("In-memory store selected, nothing to migrate")
		return nil
	}
	db, err := setup.InitDB(cfg.DBDriver, cfg.DSN())
	if err != nil {
		return fmt.Errorf("failed to init DB: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := setup.MigrateDB(db); err != nil {
		return fmt.Errorf("failed to migrate DB: %w", err)
	}
	log.WithField("driver", cfg.DBDriver).Info("Database migrated")
	return nil
}

func (a *App) initRepositories() (*repositories, error) {
	if a.Config.DBDriver == DriverMemory {
		a.Log.Warn("Using the in-memory store; data is lost on restart")
		store := memory.NewStore()
		return &repositories{
			users:   memory.NewUserRepository(store),
			rooms:   memory.NewRoomRepository(store),
			board:   memory.NewBoardRepository(store),
			content: memory.NewContentRepository(store),
		}, nil
	}

	db, err := setup.InitDB(a.Config.DBDriver, a.Config.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to init DB: %w", err)
	}
	if err := setup.MigrateDB(db); err != nil {
		return nil, fmt.Errorf("failed to migrate DB: %w", err)
	}
	a.DB = db
	a.Log.WithField("driver", a.Config.DBDriver).Info("Database initialized and migrated")
	return &repositories{
		users:   gormpersistence.NewGormUserRepository(db),
		rooms:   gormpersistence.NewGormRoomRepository(db),
		board:   gormpersistence.NewGormBoardRepository(db),
		content: gormpersistence.NewGormContentRepository(db),
	}, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Requested-With"}
	cfg.ExposeHeaders = []string{"X-RateLimit-Limit", "X-RateLimit-Remaining"}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}

// Start launches the hub, the event subscription, the worker, the scheduler
// and the HTTP server.
func (a *App) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	go a.Hub.Run(ctx)
	go a.listenForEvents(ctx)

	if err := a.Worker.Start(); err != nil {
		return fmt.Errorf("start worker: %w", err)
	}
	if err := a.Scheduler.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	go func() {
		a.Log.Infof("HTTP server starting to listen on %s", a.HttpServer.Addr)
		if err := a.HttpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Log.Fatalf("Failed to start HTTP server: %v", err)
		}
		a.Log.Info("HTTP server stopped listening.")
	}()
	return nil
}

// listenForEvents keeps the hub subscribed, reconnecting with backoff.
func (a *App) listenForEvents(ctx context.Context) {
	backoff := time.Second
	for {
		err := a.Hub.Listen(ctx, a.RedisClient, a.Config.KeyPrefix)
		if ctx.Err() != nil {
			return
		}
		a.Log.WithError(err).Warnf("Board event subscription ended, retrying in %s", backoff)
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

// Shutdown stops accepting requests, then stops background work and closes clients.
func (a *App) Shutdown() {
	a.Log.Info("Shutting down application...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.HttpServer.Shutdown(ctx); err != nil {
		a.Log.Errorf("Error shutting down HTTP server: %v", err)
	}

	if a.cancel != nil {
		a.cancel()
		<-a.Hub.Done()
	}
	if a.Scheduler != nil {
		a.Scheduler.Shutdown()
	}
	if a.Worker != nil {
		a.Worker.Shutdown()
	}
	if a.AsynqClient != nil {
		if err := a.AsynqClient.Close(); err != nil {
			a.Log.Errorf("Error closing Asynq client: %v", err)
		}
	}
	if a.RedisClient != nil {
		if err := a.RedisClient.Close(); err != nil {
			a.Log.Errorf("Error closing Redis connection: %v", err)
		}
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				a.Log.Errorf("Error closing database connection: %v", err)
			}
		}
	}
	a.Log.Info("Application shutdown complete.")
}

// LoggerMiddleware logs each request at a level chosen by its status code.
func LoggerMiddleware(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		c.Next()
		latency := time.Since(startTime)
		statusCode := c.Writer.Status()

		// The query string is left out; it may carry a token.
		entry := log.WithFields(logrus.Fields{
			"status_code": statusCode,
			"latency_ms":  latency.Milliseconds(),
			"client_ip":   c.ClientIP(),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
		})
		if userID, ok := middleware.UserID(c); ok {
			entry = entry.WithField("user_id", userID)
		}

		if errorMessage := c.Errors.ByType(gin.ErrorTypePrivate).String(); errorMessage != "" {
			entry.Error(errorMessage)
			return
		}
		switch {
		case statusCode >= 500:
			entry.Error("Server error")
		case statusCode >= 400:
			entry.Warn("Client error")
		default:
			entry.Info("Request handled")
		}
	}
}
