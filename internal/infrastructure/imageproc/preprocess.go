package imageproc

import (
	"image"

	"github.com/pkg/errors"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"segmentation-bot/internal/domain/entity"
	"segmentation-bot/internal/domain/port"
)

// Preprocessor растягивает изображение до входа модели без сохранения пропорций.
type Preprocessor struct {
	Interpolator xdraw.Interpolator
}

// NewPreprocessor создаёт препроцессор с билинейной интерполяцией.
func NewPreprocessor() *Preprocessor {
	return &Preprocessor{Interpolator: xdraw.BiLinear}
}

// Preprocess масштабирует X на Wt/W0 и Y на Ht/H0, переносит начало в (0, 0)
// и растеризует результат в новый буфер формата format.
func (p *Preprocessor) Preprocess(src image.Image, size image.Point, format entity.PixelFormat) (*entity.PixelBuffer, error) {
	if src == nil {
		return nil, errors.Wrap(entity.ErrFormat, "nil source image")
	}
	b := src.Bounds()
	if b.Empty() {
		return nil, errors.Wrapf(entity.ErrFormat, "empty source image %v", b)
	}
	if size.X <= 0 || size.Y <= 0 {
		return nil, errors.Wrapf(entity.ErrFormat, "invalid target size %v", size)
	}
	if !supported(format) {
		return nil, errors.Wrapf(entity.ErrFormat, "unsupported pixel format %s", format)
	}

	sx := float64(size.X) / float64(b.Dx())
	sy := float64(size.Y) / float64(b.Dy())
	s2d := f64.Aff3{
		sx, 0, -float64(b.Min.X) * sx,
		0, sy, -float64(b.Min.Y) * sy,
	}

	interp := p.Interpolator
	if interp == nil {
		interp = xdraw.BiLinear
	}
	dst := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
	interp.Transform(dst, s2d, src, b, xdraw.Src, nil)

	return pack(dst, format), nil
}

func supported(format entity.PixelFormat) bool {
	switch format {
	case entity.PixelFormatARGB32, entity.PixelFormatBGRA32, entity.PixelFormatRGBA32:
		return true
	}
	return false
}

// pack раскладывает RGBA по каналам нужного формата.
func pack(img *image.RGBA, format entity.PixelFormat) *entity.PixelBuffer {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	buf := &entity.PixelBuffer{
		Width:       w,
		Height:      h,
		Format:      format,
		BytesPerRow: w * 4,
		Data:        make([]byte, w*h*4),
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			s := img.PixOffset(x, y)
			r, g, b, a := img.Pix[s], img.Pix[s+1], img.Pix[s+2], img.Pix[s+3]
			d := buf.Data[buf.Offset(x, y):]
			switch format {
			case entity.PixelFormatARGB32:
				d[0], d[1], d[2], d[3] = a, r, g, b
			case entity.PixelFormatBGRA32:
				d[0], d[1], d[2], d[3] = b, g, r, a
			default:
				d[0], d[1], d[2], d[3] = r, g, b, a
			}
		}
	}
	return buf
}

var _ port.Preprocessor = (*Preprocessor)(nil)
