package imageproc

import (
	"image"
	"image/color"
	"math"

	"github.com/pkg/errors"

	"segmentation-bot/internal/domain/entity"
	"segmentation-bot/internal/domain/port"
)

var (
	// HighlightColor цвет ячеек выбранной метки
	HighlightColor = color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	// DimColor полупрозрачное затемнение остальных ячеек
	DimColor = color.NRGBA{R: 0x20, G: 0x20, B: 0x20, A: 0x80}
)

// MaskRenderer строит маску в разрешении сетки.
// Масштабирование до размера исходного фото делает Composite.
type MaskRenderer struct {
	Highlight color.NRGBA
	Dim       color.NRGBA
}

// NewMaskRenderer создаёт рендерер с цветами по умолчанию.
func NewMaskRenderer() *MaskRenderer {
	return &MaskRenderer{Highlight: HighlightColor, Dim: DimColor}
}

// Render возвращает маску: ячейки с меткой label подсвечены, остальные затемнены.
func (r *MaskRenderer) Render(grid *entity.LabelGrid, label string) (*image.NRGBA, error) {
	if grid == nil {
		return nil, errors.Wrap(entity.ErrRender, "nil grid")
	}
	w, h := grid.Width(), grid.Height()
	if w <= 0 || h <= 0 || w > math.MaxInt32/4/h {
		return nil, errors.Wrapf(entity.ErrRender, "cannot allocate %dx%d mask", w, h)
	}

	table := grid.Table()
	match := make([]bool, table.Len())
	for i := range match {
		name, _ := table.Name(i)
		match[i] = name == label
	}

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	grid.Each(func(row, col, index int) {
		c := r.Dim
		if match[index] {
			c = r.Highlight
		}
		off := img.PixOffset(col, row)
		img.Pix[off+0] = c.R
		img.Pix[off+1] = c.G
		img.Pix[off+2] = c.B
		img.Pix[off+3] = c.A
	})

	return img, nil
}

var _ port.MaskRenderer = (*MaskRenderer)(nil)
