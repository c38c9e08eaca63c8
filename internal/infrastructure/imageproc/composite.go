package imageproc

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"segmentation-bot/internal/domain/entity"
)

// DefaultOverlayOpacity прозрачность маски при наложении.
const DefaultOverlayOpacity = 0.75

// Composite растягивает маску до размера src и накладывает её в режиме darken.
// Белые ячейки оставляют фото как есть, тёмные его затемняют.
func Composite(src image.Image, overlay *image.NRGBA, opacity float64) (*image.NRGBA, error) {
	if src == nil || overlay == nil {
		return nil, errors.Wrap(entity.ErrRender, "nothing to composite")
	}
	if opacity < 0 {
		opacity = 0
	} else if opacity > 1 {
		opacity = 1
	}

	base := imaging.Clone(src)
	w, h := base.Rect.Dx(), base.Rect.Dy()
	if w == 0 || h == 0 {
		return nil, errors.Wrap(entity.ErrRender, "empty source image")
	}
	mask := imaging.Resize(overlay, w, h, imaging.NearestNeighbor)

	for i := 0; i+3 < len(base.Pix); i += 4 {
		alpha := float64(mask.Pix[i+3]) / 255 * opacity
		for c := 0; c < 3; c++ {
			b := float64(base.Pix[i+c])
			d := min(b, float64(mask.Pix[i+c]))
			base.Pix[i+c] = uint8(b + (d-b)*alpha + 0.5)
		}
	}
	return base, nil
}

// Decode читает JPEG/PNG/GIF с учётом EXIF-ориентации.
func Decode(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, entity.WithKind(entity.ErrFormat, errors.Wrap(err, "decode image"))
	}
	return img, nil
}

// EncodePNG кодирует изображение в PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, errors.Wrap(err, "encode png")
	}
	return buf.Bytes(), nil
}
