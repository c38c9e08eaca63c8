//go:build !gocv
// +build !gocv

package vision

import (
	"context"

	"github.com/pkg/errors"

	"segmentation-bot/internal/domain/entity"
	"segmentation-bot/internal/domain/port"
)

// GoCVModelLoader загрузчик-заглушка (без OpenCV).
type GoCVModelLoader struct {
	ModelPath  string
	ConfigPath string
	LabelsPath string
}

// NewGoCVModelLoader создаёт загрузчик-заглушку.
func NewGoCVModelLoader(modelPath, configPath, labelsPath string) *GoCVModelLoader {
	return &GoCVModelLoader{
		ModelPath:  modelPath,
		ConfigPath: configPath,
		LabelsPath: labelsPath,
	}
}

// Load возвращает ошибку, если сборка без тега gocv.
func (l *GoCVModelLoader) Load(ctx context.Context) (*entity.LabelTable, port.Model, error) {
	_ = ctx
	if _, err := LoadLabels(l.LabelsPath); err != nil {
		return nil, nil, err
	}
	return nil, nil, errors.Wrap(entity.ErrModelLoad, "gocv build tag is not enabled")
}

var _ port.ModelLoader = (*GoCVModelLoader)(nil)
