package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"segmentation-bot/config"
	telegram "segmentation-bot/internal/api"
	"segmentation-bot/internal/container"
	"segmentation-bot/internal/infrastructure/storage"
	"segmentation-bot/internal/infrastructure/vision"
)

// shutdownTimeout сколько ждать незавершённые инференсы при остановке
const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.TelegramToken == "" {
		logger.Fatal("TELEGRAM_TOKEN is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Создаём хранилище сессий и загрузчик модели
	sessionRepo := storage.NewMemorySessionRepository()
	loader := vision.NewGoCVModelLoader(cfg.ModelPath, cfg.ModelConfig, cfg.LabelsPath)

	// Собираем сервисы приложения
	appContainer := container.New(sessionRepo, loader, cfg.InputSize, logger)
	svc := appContainer.SegmentationService

	// Создаём бота
	bot, err := telegram.NewBot(cfg.TelegramToken, svc, cfg.OverlayOpacity, logger)
	if err != nil {
		logger.Fatalw("Failed to create bot", "error", err)
	}
	svc.SetListener(bot)

	// Цикл живёт дольше бота, чтобы корректно закрыть модель
	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()
	go func() {
		_ = appContainer.Dispatcher.Run(loopCtx)
	}()

	// Модель грузится в фоне, фото до окончания загрузки ждут в сессии
	go func() {
		if err := svc.LoadModel(ctx); err != nil {
			logger.Errorw("Model is not available", "error", err)
		}
	}()

	logger.Infow("Bot is running...", "model", cfg.ModelPath, "input_size", cfg.InputSize)
	if err := bot.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Errorw("Bot error", "error", err)
	}

	closeCtx, cancelClose := context.WithTimeout(loopCtx, shutdownTimeout)
	defer cancelClose()
	if err := svc.Close(closeCtx); err != nil {
		logger.Warnw("Failed to close model", "error", err)
	}
	logger.Info("Bot stopped")
}

func newLogger(level, format string) (*zap.SugaredLogger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	zcfg := zap.NewProductionConfig()
	if format == "console" {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(lvl)

	l, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}
