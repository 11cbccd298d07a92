package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Freeeeeet/alumni_connect/internal/app"
	"github.com/Freeeeeet/alumni_connect/internal/auth"
	"github.com/Freeeeeet/alumni_connect/internal/config"
	"github.com/Freeeeeet/alumni_connect/internal/controller/moderation"
	"github.com/Freeeeeet/alumni_connect/internal/controller/rest"
	"github.com/Freeeeeet/alumni_connect/internal/repository"
	"github.com/Freeeeeet/alumni_connect/internal/service"
	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment, cfg.LogLevel)
	defer logger.Sync()

	logger.Info("Starting alumni connect",
		zap.String("environment", cfg.Environment),
		zap.String("http_addr", cfg.HTTPAddr),
		zap.Bool("moderation_bot", cfg.TelegramToken != ""),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Подключаемся к базе данных
	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to create connection pool", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}
	logger.Info("Connected to database")

	if cfg.MigrationsAuto {
		migrator, err := app.NewMigrator(pool, logger)
		if err != nil {
			logger.Fatal("Failed to create migrator", zap.Error(err))
		}
		if err := migrator.Run(ctx); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
		if err := migrator.Close(); err != nil {
			logger.Warn("Failed to close migrator", zap.Error(err))
		}
	}

	// Репозитории
	userRepo := repository.NewUserRepository(pool)
	connectionRepo := repository.NewConnectionRepository(pool)
	mentorshipRepo := repository.NewMentorshipRepository(pool)
	directoryRepo := repository.NewDirectoryRepository(pool)

	// Сервисы
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	approvalService := service.NewApprovalService(userRepo, logger)
	accountService := service.NewAccountService(userRepo, tokens, service.LogOTPSender{Logger: logger}, cfg.OTPTTL, logger)

	services := rest.Services{
		Accounts:    accountService,
		Approval:    approvalService,
		Connections: service.NewConnectionService(connectionRepo, approvalService, logger),
		Mentorships: service.NewMentorshipService(mentorshipRepo, userRepo, approvalService, logger),
		Directory:   service.NewDirectoryService(directoryRepo, approvalService),
	}

	if cfg.AdminEmail != "" {
		if _, err := accountService.EnsureAdmin(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPhone, cfg.AdminPassword); err != nil {
			logger.Fatal("Failed to create admin account", zap.Error(err))
		}
	}

	// Бот модерации опционален
	if cfg.TelegramToken != "" {
		botInstance, err := bot.New(cfg.TelegramToken)
		if err != nil {
			logger.Fatal("Failed to create bot", zap.Error(err))
		}

		botController := moderation.NewBotController(botInstance, approvalService, cfg.TelegramAdmins, logger)
		if err := botController.RegisterHandlers(ctx); err != nil {
			logger.Warn("Failed to register bot commands", zap.Error(err))
		}

		go botController.Start(ctx)
	}

	router := rest.NewRouter(rest.NewHandler(services), tokens, pool, logger)
	server := app.NewServer(router, cfg.HTTPAddr, cfg.ShutdownTimeout, logger)

	if err := server.Run(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Shutdown complete")
}
