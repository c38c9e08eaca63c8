package app

import (
	"image"

	"github.com/pkg/errors"

	"segmentation-bot/internal/domain/entity"
	"segmentation-bot/internal/domain/port"
)

// MaskCache хранит отрисованные маски по имени метки для одной сетки.
// Размер ограничен числом меток в таблице, вытеснения нет.
type MaskCache struct {
	renderer port.MaskRenderer
	grid     *entity.LabelGrid
	masks    map[string]*image.NRGBA
}

// NewMaskCache создаёт кэш для сетки grid (может быть nil).
func NewMaskCache(renderer port.MaskRenderer, grid *entity.LabelGrid) *MaskCache {
	return &MaskCache{
		renderer: renderer,
		grid:     grid,
		masks:    make(map[string]*image.NRGBA),
	}
}

// Get возвращает маску метки, отрисовывая её при первом обращении.
// Возвращаемое изображение общее для всех вызовов, менять его нельзя.
func (c *MaskCache) Get(label string) (*image.NRGBA, error) {
	if c.grid == nil {
		return nil, entity.ErrNoInputImage
	}
	if !c.grid.Table().Contains(label) {
		return nil, errors.Wrapf(entity.ErrUnknownLabel, "%q", label)
	}
	if mask, ok := c.masks[label]; ok {
		return mask, nil
	}

	mask, err := c.renderer.Render(c.grid, label)
	if err != nil {
		return nil, err
	}
	c.masks[label] = mask
	return mask, nil
}

// InvalidateAll очищает кэш.
func (c *MaskCache) InvalidateAll() {
	clear(c.masks)
}

// Reset очищает кэш и привязывает его к новой сетке.
func (c *MaskCache) Reset(grid *entity.LabelGrid) {
	c.InvalidateAll()
	c.grid = grid
}

// Len количество закэшированных масок.
func (c *MaskCache) Len() int {
	return len(c.masks)
}
