package port

import (
	"image"

	"segmentation-bot/internal/domain/entity"
)

// Preprocessor приводит изображение к входу модели
type Preprocessor interface {
	// Preprocess растягивает src до size и растеризует в буфер формата format
	Preprocess(src image.Image, size image.Point, format entity.PixelFormat) (*entity.PixelBuffer, error)
}

// MaskRenderer строит маску подсветки для выбранной метки
type MaskRenderer interface {
	// Render возвращает изображение размером с сетку, по пикселю на ячейку
	Render(grid *entity.LabelGrid, label string) (*image.NRGBA, error)
}
