// Package main runs the background job worker: email delivery and
// deferred space status updates.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/smartspace/smartspace-be/config"
	"github.com/smartspace/smartspace-be/queue"
	"github.com/smartspace/smartspace-be/worker"
)

func main() {
	logger := config.NewLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	db, err := config.ConnectDatabase(cfg.Database)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}

	rdb, err := config.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	jobQueue := queue.NewQueue(rdb, logger)
	processor := worker.NewProcessor(db, jobQueue, worker.SMTPConfig{
		Host: cfg.SMTP.Host,
		Port: cfg.SMTP.Port,
		User: cfg.SMTP.User,
		Pass: cfg.SMTP.Pass,
		From: cfg.SMTP.From,
	}, logger)

	workerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go processor.Run(workerCtx)
	logger.Info("worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	time.Sleep(2 * time.Second)
	logger.Info("worker stopped")
}
