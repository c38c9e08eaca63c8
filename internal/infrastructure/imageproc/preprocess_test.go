package imageproc

import (
	"image"
	"image/color"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	xdraw "golang.org/x/image/draw"

	"segmentation-bot/internal/domain/entity"
)

func solid(r image.Rectangle, c color.Color) *image.RGBA {
	img := image.NewRGBA(r)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestPreprocess_TargetSize(t *testing.T) {
	p := NewPreprocessor()
	src := solid(image.Rect(0, 0, 640, 200), color.RGBA{R: 10, G: 20, B: 30, A: 255})

	buf, err := p.Preprocess(src, image.Pt(448, 448), entity.PixelFormatARGB32)
	require.NoError(t, err)
	require.Equal(t, 448, buf.Width)
	require.Equal(t, 448, buf.Height)
	require.Equal(t, 448*4, buf.BytesPerRow)
	require.Len(t, buf.Data, 448*448*4)

	for _, pt := range []image.Point{{0, 0}, {447, 447}, {200, 100}} {
		off := buf.Offset(pt.X, pt.Y)
		require.Equal(t, []byte{255, 10, 20, 30}, buf.Data[off:off+4], "pixel %v", pt)
	}
}

func TestPreprocess_NonUniformStretch(t *testing.T) {
	p := &Preprocessor{Interpolator: xdraw.NearestNeighbor}
	// левая половина красная, правая синяя, начало не в нуле
	src := image.NewRGBA(image.Rect(5, 7, 7, 8))
	src.Set(5, 7, color.RGBA{R: 255, A: 255})
	src.Set(6, 7, color.RGBA{B: 255, A: 255})

	buf, err := p.Preprocess(src, image.Pt(4, 2), entity.PixelFormatRGBA32)
	require.NoError(t, err)

	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			off := buf.Offset(x, y)
			want := []byte{255, 0, 0, 255}
			if x >= 2 {
				want = []byte{0, 0, 255, 255}
			}
			require.Equal(t, want, buf.Data[off:off+4], "pixel (%d, %d)", x, y)
		}
	}
}

func TestPreprocess_BGRA(t *testing.T) {
	p := NewPreprocessor()
	src := solid(image.Rect(0, 0, 3, 3), color.RGBA{R: 1, G: 2, B: 3, A: 255})

	buf, err := p.Preprocess(src, image.Pt(2, 2), entity.PixelFormatBGRA32)
	require.NoError(t, err)
	require.Equal(t, []byte{3, 2, 1, 255}, buf.Data[:4])
}

func TestPreprocess_FormatErrors(t *testing.T) {
	p := NewPreprocessor()
	src := solid(image.Rect(0, 0, 2, 2), color.White)

	_, err := p.Preprocess(nil, image.Pt(2, 2), entity.PixelFormatARGB32)
	require.True(t, errors.Is(err, entity.ErrFormat))

	_, err = p.Preprocess(image.NewRGBA(image.Rectangle{}), image.Pt(2, 2), entity.PixelFormatARGB32)
	require.True(t, errors.Is(err, entity.ErrFormat))

	_, err = p.Preprocess(src, image.Pt(0, 2), entity.PixelFormatARGB32)
	require.True(t, errors.Is(err, entity.ErrFormat))

	_, err = p.Preprocess(src, image.Pt(2, 2), entity.PixelFormatUnknown)
	require.True(t, errors.Is(err, entity.ErrFormat))
}
