package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/squadup/event-reporting/internal/config"
	"github.com/squadup/event-reporting/internal/database"
	"github.com/squadup/event-reporting/internal/gateway"
	"github.com/squadup/event-reporting/internal/handler"
	"github.com/squadup/event-reporting/internal/logger"
	"github.com/squadup/event-reporting/internal/mailer"
	"github.com/squadup/event-reporting/internal/queue"
	"github.com/squadup/event-reporting/internal/report"
	"github.com/squadup/event-reporting/internal/repository"
	"github.com/squadup/event-reporting/internal/router"
	"github.com/squadup/event-reporting/internal/scheduler"
	"github.com/squadup/event-reporting/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := logger.Init(cfg.Env, os.Getenv("LOG_LEVEL")); err != nil {
		panic(err)
	}
	defer logger.Sync()

	warehouse, err := database.OpenWarehouse(cfg.WarehouseURL, cfg.StatementTimeoutMS)
	if err != nil {
		logger.L.Fatal("warehouse connection failed", zap.Error(err))
	}
	defer warehouse.Close()

	appDB, err := database.OpenApp(cfg.AppDatabaseURL)
	if err != nil {
		logger.L.Fatal("app database connection failed", zap.Error(err))
	}
	defer appDB.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.L.Warn("redis unavailable, cache and rate limiting disabled")
	}

	zipClient := gateway.New(cfg.GatewayBaseURL, cfg.GatewayAPIKey)
	mailClient := mailer.New(cfg.ResendAPIKey, cfg.ResendFromEmail)
	schedClient := scheduler.New(cfg.SchedulerAPIURL, cfg.SchedulerAPIKey)

	warehouseRepo := repository.NewWarehouse(warehouse)
	paymentRepo := repository.NewPaymentRepo(warehouse)
	reportRepo := repository.NewReportRepo(warehouse)
	seatRepo := repository.NewSeatRepo(warehouse)
	recipientRepo := repository.NewRecipientRepo(appDB)
	scheduleRepo := repository.NewScheduleRepo(appDB)

	runner := &report.Runner{
		Schedules:    scheduleRepo,
		Reports:      reportRepo,
		Mailer:       mailClient,
		HostUserID:   cfg.ReportHostUserID,
		ScheduleName: report.DefaultScheduleName,
	}
	go queue.StartReportRunConsumer(cfg.AMQPUrl, runner)

	e := echo.New()
	e.HideBanner = true
	router.Register(e, cfg, router.Handlers{
		SQL:          handler.NewSQLHandler(cfg, warehouseRepo),
		Transactions: handler.NewTransactionHandler(cfg, service.NewTransactionService(paymentRepo, zipClient)),
		Reports:      handler.NewReportHandler(cfg, reportRepo),
		Seats:        handler.NewSeatHandler(cfg, seatRepo),
		Send:         handler.NewSendHandler(cfg, reportRepo, mailClient),
		Recipients:   handler.NewRecipientHandler(cfg, recipientRepo),
		Schedules:    handler.NewScheduleHandler(cfg, scheduleRepo, schedClient),
	}, rdb)

	go func() {
		addr := ":" + cfg.Port
		logger.L.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil {
			logger.L.Info("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.L.Error("shutdown failed", zap.Error(err))
	}
}
