package app

import (
	"database/sql"
	"net/http"

	"go-hris-leave/internal/config"
	"go-hris-leave/internal/directory"
	"go-hris-leave/internal/leave"
	"go-hris-leave/internal/messaging/kafka"
	"go-hris-leave/internal/metrics"
	"go-hris-leave/internal/middleware"
	"go-hris-leave/internal/notification"
	"go-hris-leave/internal/rbac"
	"go-hris-leave/internal/rbac/infra"
	"go-hris-leave/internal/realtime"
	"go-hris-leave/internal/shared/timefmt"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	cfg *config.Config,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
	logger *zap.Logger,
) (*realtime.Hub, error) {
	loc, err := cfg.App.Location()
	if err != nil {
		return nil, err
	}
	clock := timefmt.New(loc)
	m := metrics.New()
	jwtSecret := cfg.Auth.JWTSecret

	router.Use(middleware.RequestID())
	router.Use(middleware.ContextLogger(logger))
	router.Use(m.Middleware())

	// --- Repositories ---
	directoryRepo := directory.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	notificationRepo := notification.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)
	rbacRepo := rbac.NewStaticRepository()

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return nil, err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer, logger)
	if err := rbacService.LoadPolicy(); err != nil {
		return nil, err
	}

	// --- Services ---
	hub := realtime.NewHub(m, logger)
	directoryService := directory.NewService(directoryRepo, rdb, cfg.Redis.ProfileTTL, logger)
	notificationService := notification.NewService(notificationRepo, directoryService, hub, clock, logger)
	leaveService := leave.NewService(
		db,
		leaveRepo,
		notificationRepo,
		notificationService,
		directoryService,
		outboxRepo,
		m,
		clock,
		logger,
	)

	// --- Handlers ---
	leaveHandler := leave.NewHandler(leaveService, logger)
	notificationHandler := notification.NewHandler(notificationService, logger)
	rbacHandler := rbac.NewHandler(rbacService, logger)
	realtimeHandler := realtime.NewHandler(
		hub,
		notificationService,
		realtime.Options{
			SendBuffer:     cfg.Realtime.SendBuffer,
			WriteWait:      cfg.Realtime.WriteWait,
			PongWait:       cfg.Realtime.PongWait,
			MaxMessageSize: cfg.Realtime.MaxMessageSize,
		},
		cfg.Realtime.AllowedOrigins,
		logger,
	)

	// --- Routes Registration ---
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(m.Handler()))

	api := router.Group("/api/v1")
	{
		leave.RegisterRoutes(api, leaveHandler, rbacService, rdb, jwtSecret)
		notification.RegisterRoutes(api, notificationHandler, rbacService, jwtSecret)
		rbac.RegisterRoutes(api, rbacHandler, rbacService, jwtSecret)
	}

	realtime.RegisterRoutes(
		router,
		realtimeHandler,
		jwtSecret,
		rate.Limit(cfg.Realtime.ConnectRate),
		cfg.Realtime.ConnectBurst,
	)

	return hub, nil
}
