package port

import (
	"context"

	"segmentation-bot/internal/domain/entity"
)

// ModelLoader загружает модель сегментации и её таблицу меток
type ModelLoader interface {
	// Load возвращает таблицу меток и готовую к инференсу модель.
	// Ошибка оборачивает entity.ErrModelLoad.
	Load(ctx context.Context) (*entity.LabelTable, Model, error)
}

// Model загруженная модель сегментации
type Model interface {
	// InputFormat формат пикселей, который ожидает модель
	InputFormat() entity.PixelFormat

	// Infer возвращает индексы меток для каждого пикселя выхода модели
	Infer(ctx context.Context, buf *entity.PixelBuffer) (*entity.Prediction, error)

	// Close освобождает ресурсы модели
	Close() error
}
