package vision

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"segmentation-bot/internal/domain/entity"
)

func TestDecodeOutput_Argmax(t *testing.T) {
	// 3 класса, 1x2 пикселя: плоскости классов идут подряд
	data := []float32{
		0.1, 0.9, // класс 0
		0.5, 0.2, // класс 1
		0.7, 0.1, // класс 2
	}

	p, err := DecodeOutput(data, []int{1, 3, 1, 2})
	require.NoError(t, err)
	require.Equal(t, 1, p.Height)
	require.Equal(t, 2, p.Width)
	require.Equal(t, []int32{2, 0}, p.Indices)
}

func TestDecodeOutput_DirectIndices(t *testing.T) {
	p, err := DecodeOutput([]float32{0, 1, 1, 0, 2, 2}, []int{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, 2, p.Height)
	require.Equal(t, 3, p.Width)
	require.Equal(t, []int32{0, 1, 1, 0, 2, 2}, p.Indices)

	p, err = DecodeOutput([]float32{3, 4}, []int{2, 1})
	require.NoError(t, err)
	require.Equal(t, []int32{3, 4}, p.Indices)
}

func TestDecodeOutput_Errors(t *testing.T) {
	_, err := DecodeOutput([]float32{1}, []int{1, 2, 2, 2})
	require.True(t, errors.Is(err, entity.ErrInference))

	_, err = DecodeOutput(make([]float32, 16), []int{2, 2, 2, 2})
	require.True(t, errors.Is(err, entity.ErrInference))

	_, err = DecodeOutput(nil, []int{5})
	require.True(t, errors.Is(err, entity.ErrInference))
}
