package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "token")
	t.Setenv("INPUT_SIZE", "")
	t.Setenv("OVERLAY_OPACITY", "")
	t.Setenv("LABELS_PATH", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "token", cfg.TelegramToken)
	require.Equal(t, 448, cfg.InputSize)
	require.Equal(t, 0.75, cfg.OverlayOpacity)
	require.Equal(t, "models/labels.json", cfg.LabelsPath)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("INPUT_SIZE", "512")
	t.Setenv("OVERLAY_OPACITY", "0.5")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 512, cfg.InputSize)
	require.Equal(t, 0.5, cfg.OverlayOpacity)
	require.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("INPUT_SIZE", "big")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("INPUT_SIZE", "448")
	t.Setenv("OVERLAY_OPACITY", "2")
	_, err = Load()
	require.Error(t, err)
}
