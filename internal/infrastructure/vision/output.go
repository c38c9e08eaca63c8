package vision

import (
	"github.com/pkg/errors"

	"segmentation-bot/internal/domain/entity"
)

// DecodeOutput превращает выход сети в сетку индексов.
//
// [1, C, H, W] логиты: argmax по C для каждого пикселя.
// [1, H, W] или [H, W]: сеть уже вернула индексы меток.
func DecodeOutput(data []float32, dims []int) (*entity.Prediction, error) {
	switch len(dims) {
	case 4:
		if dims[0] != 1 {
			return nil, errors.Wrapf(entity.ErrInference, "batch size %d is not supported", dims[0])
		}
		return argmaxClasses(data, dims[1], dims[2], dims[3])
	case 3:
		if dims[0] != 1 {
			return nil, errors.Wrapf(entity.ErrInference, "batch size %d is not supported", dims[0])
		}
		return directIndices(data, dims[1], dims[2])
	case 2:
		return directIndices(data, dims[0], dims[1])
	default:
		return nil, errors.Wrapf(entity.ErrInference, "unexpected output shape %v", dims)
	}
}

func argmaxClasses(data []float32, c, h, w int) (*entity.Prediction, error) {
	plane := h * w
	if c <= 0 || plane <= 0 || len(data) < c*plane {
		return nil, errors.Wrapf(entity.ErrInference, "output has %d values, shape needs %dx%dx%d", len(data), c, h, w)
	}

	indices := make([]int32, plane)
	for i := 0; i < plane; i++ {
		best := data[i]
		bestClass := 0
		for k := 1; k < c; k++ {
			if v := data[k*plane+i]; v > best {
				best = v
				bestClass = k
			}
		}
		indices[i] = int32(bestClass)
	}
	return &entity.Prediction{Indices: indices, Height: h, Width: w}, nil
}

func directIndices(data []float32, h, w int) (*entity.Prediction, error) {
	if h <= 0 || w <= 0 || len(data) < h*w {
		return nil, errors.Wrapf(entity.ErrInference, "output has %d values, shape needs %dx%d", len(data), h, w)
	}
	indices := make([]int32, h*w)
	for i := range indices {
		indices[i] = int32(data[i])
	}
	return &entity.Prediction{Indices: indices, Height: h, Width: w}, nil
}
