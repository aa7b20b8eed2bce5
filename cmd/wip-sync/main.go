// wip-sync is the batch replication binary. An external scheduler runs
// it periodically; a non-zero exit is the scheduler's failure signal.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/texfocus/wiptrack_backend/config"
	"github.com/texfocus/wiptrack_backend/models"
	"github.com/texfocus/wiptrack_backend/wipsync"
)

func main() {
	_ = godotenv.Load()

	logger := config.GetLogger()

	ctx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	config.ConnectDatabaseWithRetry()
	config.ConnectRemoteSource()
	config.ConnectRedisOnce()

	db := config.GetDB()
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()

	models.MigrateTable()

	remote := config.GetRemoteDB()
	if remote == nil {
		logger.WithFields(logrus.Fields{"field": "remote"}).Error("remote source is not configured; nothing to replicate")
		os.Exit(1)
	}

	engine := wipsync.NewEngine(db, remote, logger, config.GetRedisLock())
	run, err := engine.Run(ctx, models.SyncTriggeredScheduler)
	if err != nil {
		config.LogError(logger, "main", "main", "sync run failed", nil, err)
		os.Exit(1)
	}

	logger.WithFields(logrus.Fields{
		"runId":  run.ID,
		"orders": run.OrdersSynced,
		"items":  run.ItemsSynced,
		"units":  run.UnitsSynced,
	}).Info("sync run completed")
}
