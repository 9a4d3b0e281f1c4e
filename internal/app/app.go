package app

import (
	"context"
	"fmt"

	"go-hris-leave/internal/config"
	"go-hris-leave/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BuildApp connects infrastructure and registers every module on router.
// The returned hooks release resources on shutdown.
func BuildApp(router *gin.Engine, cfg *config.Config, logger *zap.Logger) ([]func(context.Context), error) {
	gormDB, err := connection.ConnectGORMWithRetry(cfg.Database)
	if err != nil {
		return nil, err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	logger.Info("database connection established")

	rdb, err := connection.ConnectRedisWithRetry(cfg.Redis, 5)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	logger.Info("redis connection established")

	hub, err := registerModules(router, cfg, sqlDB, gormDB, rdb, logger)
	if err != nil {
		_ = rdb.Close()
		_ = sqlDB.Close()
		return nil, err
	}

	return []func(context.Context){
		func(context.Context) { hub.Close() },
		func(context.Context) {
			_ = rdb.Close()
			_ = sqlDB.Close()
		},
	}, nil
}
