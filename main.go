package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/smartspace/smartspace-be/config"
	"github.com/smartspace/smartspace-be/controllers"
	"github.com/smartspace/smartspace-be/queue"
	"github.com/smartspace/smartspace-be/routes"
	"github.com/smartspace/smartspace-be/services"
	"github.com/smartspace/smartspace-be/websocket"
)

func main() {
	logger := config.NewLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	db, err := config.ConnectDatabase(cfg.Database)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}

	sqlDB, err := config.SQLDB(db)
	if err != nil {
		logger.Fatal("database handle", zap.Error(err))
	}
	if err := config.RunMigrations(sqlDB); err != nil {
		logger.Fatal("migrations", zap.Error(err))
	}

	ctx := context.Background()

	// The queue is best-effort; the API keeps serving bookings without it
	// and notification enqueues become no-ops.
	var jobQueue *queue.Queue
	if rdb, err := config.NewRedisClient(ctx, cfg.Redis); err != nil {
		logger.Warn("redis unavailable, notifications disabled", zap.Error(err))
	} else {
		jobQueue = queue.NewQueue(rdb, logger)
	}

	hub := websocket.NewHub(logger)
	go hub.Run()

	notifier := services.NewNotificationService(jobQueue, hub, cfg.Admin.Email, logger)
	authService := services.NewAuthService(db, notifier, cfg.JWT.Secret, logger)
	bookingService := services.NewBookingService(db, notifier, logger)
	spaceService := services.NewSpaceService(db, logger)
	sweeper := services.NewSweeperService(db, time.Duration(cfg.Sweeper.IntervalMinutes)*time.Minute, logger)

	sweepCtx, cancelSweeper := context.WithCancel(ctx)
	defer cancelSweeper()
	go sweeper.Run(sweepCtx)

	r := routes.SetupRoutes(routes.Deps{
		Auth:      controllers.NewAuthController(authService),
		Booking:   controllers.NewBookingController(bookingService, authService),
		Admin:     controllers.NewAdminController(bookingService, spaceService, sweeper),
		Space:     controllers.NewSpaceController(spaceService),
		Hub:       hub,
		Logger:    logger,
		JWTSecret: cfg.JWT.Secret,
	})

	logger.Info("server starting", zap.String("port", cfg.Server.Port))
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
