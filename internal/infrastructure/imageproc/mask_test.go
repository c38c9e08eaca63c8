package imageproc

import (
	"image"
	"image/color"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"segmentation-bot/internal/domain/entity"
)

func skyRoad(t *testing.T) *entity.LabelGrid {
	t.Helper()
	grid, err := entity.NewLabelGrid(entity.NewLabelTable([]string{"sky", "road"}), []int32{0, 0, 1, 1}, 2, 2)
	require.NoError(t, err)
	return grid
}

func TestMaskRenderer_SkyRoad(t *testing.T) {
	r := NewMaskRenderer()

	img, err := r.Render(skyRoad(t), "road")
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 2, 2), img.Bounds())

	// верхняя строка затемнена, нижняя подсвечена
	require.Equal(t, DimColor, img.NRGBAAt(0, 0))
	require.Equal(t, DimColor, img.NRGBAAt(1, 0))
	require.Equal(t, HighlightColor, img.NRGBAAt(0, 1))
	require.Equal(t, HighlightColor, img.NRGBAAt(1, 1))
}

func TestMaskRenderer_GridResolutionNonSquare(t *testing.T) {
	table := entity.NewLabelTable([]string{"a", "b"})
	grid, err := entity.NewLabelGrid(table, []int32{
		0, 1, 0,
		0, 0, 0,
	}, 2, 3)
	require.NoError(t, err)

	img, err := NewMaskRenderer().Render(grid, "b")
	require.NoError(t, err)
	require.Equal(t, 3, img.Bounds().Dx())
	require.Equal(t, 2, img.Bounds().Dy())
	require.Equal(t, HighlightColor, img.NRGBAAt(1, 0))
	require.Equal(t, DimColor, img.NRGBAAt(1, 1))
}

func TestMaskRenderer_Deterministic(t *testing.T) {
	r := NewMaskRenderer()
	grid := skyRoad(t)

	first, err := r.Render(grid, "sky")
	require.NoError(t, err)
	second, err := r.Render(grid, "sky")
	require.NoError(t, err)
	require.Equal(t, first.Pix, second.Pix)
}

func TestMaskRenderer_AbsentLabelAllDim(t *testing.T) {
	table := entity.NewLabelTable([]string{"sky", "road", "tree"})
	grid, err := entity.NewLabelGrid(table, []int32{0, 1}, 1, 2)
	require.NoError(t, err)

	img, err := NewMaskRenderer().Render(grid, "tree")
	require.NoError(t, err)
	require.Equal(t, DimColor, img.NRGBAAt(0, 0))
	require.Equal(t, DimColor, img.NRGBAAt(1, 0))
}

func TestMaskRenderer_NilGrid(t *testing.T) {
	_, err := NewMaskRenderer().Render(nil, "sky")
	require.True(t, errors.Is(err, entity.ErrRender))
}

func TestComposite_Darken(t *testing.T) {
	src := solid(image.Rect(0, 0, 4, 4), color.RGBA{R: 200, G: 100, B: 50, A: 255})
	overlay, err := NewMaskRenderer().Render(skyRoad(t), "road")
	require.NoError(t, err)

	out, err := Composite(src, overlay, 1)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 4, 4), out.Bounds())

	// подсвеченная нижняя половина не меняется
	require.Equal(t, color.NRGBA{R: 200, G: 100, B: 50, A: 255}, out.NRGBAAt(3, 3))

	// верхняя: b + (min(b, 0x20) - b) * 0x80/255
	top := out.NRGBAAt(0, 0)
	require.Less(t, top.R, uint8(200))
	require.Greater(t, top.R, uint8(0x20))

	_, err = Composite(nil, overlay, 1)
	require.True(t, errors.Is(err, entity.ErrRender))
}

func TestDecodeEncodeRoundTrip(t *testing.T) {
	src := solid(image.Rect(0, 0, 3, 2), color.RGBA{R: 9, G: 8, B: 7, A: 255})
	data, err := EncodePNG(src)
	require.NoError(t, err)

	img, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, 3, img.Bounds().Dx())
	require.Equal(t, 2, img.Bounds().Dy())

	_, err = Decode([]byte("not an image"))
	require.True(t, errors.Is(err, entity.ErrFormat))
}
