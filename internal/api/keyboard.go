package telegram

import (
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
)

const (
	labelDataPrefix = "label:"
	// Telegram ограничивает callback data 64 байтами
	maxCallbackData = 64
	labelsPerRow    = 3
)

// labelsKeyboard сетка кнопок меток, выбранная отмечена галочкой.
// Метки со слишком длинным именем пропускаются.
func labelsKeyboard(labels []string, selected string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, label := range labels {
		data := labelDataPrefix + label
		if len(data) > maxCallbackData {
			continue
		}
		text := label
		if label == selected {
			text = "✅ " + label
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(text, data))
		if len(row) == labelsPerRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// parseLabelData извлекает имя метки из callback data.
func parseLabelData(data string) (string, bool) {
	if !strings.HasPrefix(data, labelDataPrefix) {
		return "", false
	}
	return strings.TrimPrefix(data, labelDataPrefix), true
}

// parseTap разбирает аргументы "/tap x y".
// Диапазон не проверяется: точки вне [0, 1] отклоняет сервис.
func parseTap(args string) (float64, float64, error) {
	fields := strings.Fields(strings.ReplaceAll(args, ",", " "))
	if len(fields) != 2 {
		return 0, 0, errors.Errorf("expected 2 coordinates, got %d", len(fields))
	}
	x, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, 0, errors.Wrap(err, "parse x")
	}
	y, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return 0, 0, errors.Wrap(err, "parse y")
	}
	return x, y, nil
}
