package app

import (
	"image"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"segmentation-bot/internal/domain/entity"
)

type countingRenderer struct {
	calls int
	err   error
}

func (r *countingRenderer) Render(grid *entity.LabelGrid, label string) (*image.NRGBA, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return image.NewNRGBA(image.Rect(0, 0, grid.Width(), grid.Height())), nil
}

func skyRoadGrid(t *testing.T) *entity.LabelGrid {
	t.Helper()
	grid, err := entity.NewLabelGrid(entity.NewLabelTable([]string{"sky", "road"}), []int32{0, 0, 1, 1}, 2, 2)
	require.NoError(t, err)
	return grid
}

func TestMaskCache_HitDoesNotRerender(t *testing.T) {
	r := &countingRenderer{}
	cache := NewMaskCache(r, skyRoadGrid(t))

	first, err := cache.Get("road")
	require.NoError(t, err)
	second, err := cache.Get("road")
	require.NoError(t, err)

	require.Equal(t, 1, r.calls)
	require.Same(t, first, second)

	_, err = cache.Get("sky")
	require.NoError(t, err)
	require.Equal(t, 2, r.calls)
	require.Equal(t, 2, cache.Len())
}

func TestMaskCache_InvalidateAllRerenders(t *testing.T) {
	r := &countingRenderer{}
	cache := NewMaskCache(r, skyRoadGrid(t))

	_, err := cache.Get("road")
	require.NoError(t, err)
	cache.InvalidateAll()
	require.Zero(t, cache.Len())

	_, err = cache.Get("road")
	require.NoError(t, err)
	require.Equal(t, 2, r.calls)
}

func TestMaskCache_ResetBindsNewGrid(t *testing.T) {
	r := &countingRenderer{}
	cache := NewMaskCache(r, skyRoadGrid(t))
	_, err := cache.Get("road")
	require.NoError(t, err)

	other, err := entity.NewLabelGrid(entity.NewLabelTable([]string{"wall"}), []int32{0, 0, 0}, 1, 3)
	require.NoError(t, err)
	cache.Reset(other)

	// метки старой таблицы в кэш не попадают
	_, err = cache.Get("road")
	require.True(t, errors.Is(err, entity.ErrUnknownLabel))

	mask, err := cache.Get("wall")
	require.NoError(t, err)
	require.Equal(t, 3, mask.Bounds().Dx())
	require.Equal(t, 2, r.calls)
}

func TestMaskCache_Errors(t *testing.T) {
	r := &countingRenderer{}
	cache := NewMaskCache(r, nil)
	_, err := cache.Get("road")
	require.ErrorIs(t, err, entity.ErrNoInputImage)

	r.err = errors.Wrap(entity.ErrRender, "alloc")
	cache.Reset(skyRoadGrid(t))
	_, err = cache.Get("road")
	require.True(t, errors.Is(err, entity.ErrRender))
	require.Zero(t, cache.Len())
}
