package entity

import (
	"fmt"

	"github.com/pkg/errors"
)

// Виды ошибок подсистемы сегментации.
var (
	// ErrModelLoad модель не найдена или повреждена, сессия без модели не работает
	ErrModelLoad = errors.New("model load failed")
	// ErrModelNotLoaded инференс запрошен до загрузки модели
	ErrModelNotLoaded = errors.New("model not loaded")
	// ErrNoInputImage нет изображения для инференса
	ErrNoInputImage = errors.New("no input image")
	// ErrInference ошибка конкретного запроса к модели
	ErrInference = errors.New("inference failed")
	// ErrFormat изображение не удалось привести к входному формату модели
	ErrFormat = errors.New("file format isn't supported")
	// ErrRender не удалось построить маску
	ErrRender = errors.New("mask render failed")
	// ErrIndexOutOfRange обращение за границы сетки меток
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrUnknownLabel метки нет в таблице текущей сетки
	ErrUnknownLabel = errors.New("unknown label")
)

// WithKind помечает cause видом ошибки kind, сохраняя обе цепочки для errors.Is.
func WithKind(kind, cause error) error {
	if cause == nil || errors.Is(cause, kind) {
		return cause
	}
	return fmt.Errorf("%w: %w", kind, cause)
}

// UserMessage превращает ошибку в текст для пользователя.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrModelLoad):
		return "The model failed to load: " + err.Error()
	case errors.Is(err, ErrModelNotLoaded):
		return "Model not loaded."
	case errors.Is(err, ErrNoInputImage):
		return "No input image."
	case errors.Is(err, ErrFormat):
		return "File format isn't supported."
	case errors.Is(err, ErrRender):
		return "Failed to render mask: " + err.Error()
	default:
		return err.Error()
	}
}
