package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

type Config struct {
	TelegramToken  string
	ModelPath      string
	ModelConfig    string
	LabelsPath     string
	InputSize      int
	OverlayOpacity float64
	LogLevel       string
	LogFormat      string
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := &Config{
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		ModelPath:     getEnv("MODEL_PATH", "models/segmentation.onnx"),
		ModelConfig:   os.Getenv("MODEL_CONFIG"),
		LabelsPath:    getEnv("LABELS_PATH", "models/labels.json"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "json"),
	}

	var err error
	if cfg.InputSize, err = strconv.Atoi(getEnv("INPUT_SIZE", "448")); err != nil || cfg.InputSize <= 0 {
		return nil, errors.Errorf("invalid INPUT_SIZE %q", os.Getenv("INPUT_SIZE"))
	}
	if cfg.OverlayOpacity, err = strconv.ParseFloat(getEnv("OVERLAY_OPACITY", "0.75"), 64); err != nil ||
		cfg.OverlayOpacity < 0 || cfg.OverlayOpacity > 1 {
		return nil, errors.Errorf("invalid OVERLAY_OPACITY %q", os.Getenv("OVERLAY_OPACITY"))
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
