package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/silab/attendance-system/internal/api"
	"github.com/silab/attendance-system/internal/core/service"
	"github.com/silab/attendance-system/internal/infrastructure/config"
	mongodb "github.com/silab/attendance-system/internal/infrastructure/db/mongo"
	redisdb "github.com/silab/attendance-system/internal/infrastructure/db/redis"
	"github.com/silab/attendance-system/internal/infrastructure/queue"
	"github.com/silab/attendance-system/pkg/logger"
)

// @title        Attendance System API
// @version      1.0
// @description  Real-time lab attendance tracking over RFID scans.
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Infrastructure ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongodb disconnect failed")
		}
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	// --- Repositories ---
	userRepo := mongodb.NewUserRepository(db)
	attendanceRepo := mongodb.NewAttendanceRepository(db)
	scheduleRepo := mongodb.NewScheduleRepository(mongoClient, db)

	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("user indexes failed")
	}
	if err := attendanceRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("attendance indexes failed")
	}

	modeStore := redisdb.NewModeStore(rdb)
	debounce := redisdb.NewScanDebounce(rdb, cfg.Scanner.DebounceWindow)
	lastScan := redisdb.NewLastScanStore(rdb, cfg.Scanner.LastScanTTL)
	publisher := redisdb.NewSnapshotPublisher(rdb, cfg.Broadcast.Channel)

	// --- Services ---
	dashboardService := service.NewDashboardService(
		attendanceRepo, userRepo, publisher, cfg.Broadcast.ChartDays, logger.With("dashboard"))

	dispatcher := queue.NewDispatcher(cfg.Broadcast.Workers, dashboardService, logger.With("dispatcher"))
	dispatcher.Start(ctx)

	scanService := service.NewScanService(
		userRepo, attendanceRepo, modeStore, debounce, dispatcher, logger.With("scan"))
	modeService := service.NewModeService(modeStore, logger.With("mode"))
	registrationService := service.NewRegistrationService(userRepo, lastScan, logger.With("registration"))
	scheduleService := service.NewScheduleService(scheduleRepo, logger.With("schedule"))
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, 24*time.Hour)

	// --- HTTP ---
	e := api.NewRouter(api.Dependencies{
		Mongo:        db,
		Redis:        rdb,
		Scan:         scanService,
		Mode:         modeService,
		Registration: registrationService,
		Attendance:   attendanceRepo,
		Dashboard:    dashboardService,
		Schedule:     scheduleService,
		Auth:         authService,
		JWTSecret:    cfg.JWTSecret,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("attendance system started")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
