//go:build gocv
// +build gocv

package vision

import (
	"context"
	"image"
	"sync"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"segmentation-bot/internal/domain/entity"
	"segmentation-bot/internal/domain/port"
)

// GoCVModelLoader загружает модель сегментации через OpenCV DNN.
type GoCVModelLoader struct {
	ModelPath  string
	ConfigPath string
	LabelsPath string
	Backend    gocv.NetBackendType
	Target     gocv.NetTargetType
	Scale      float64
	Mean       gocv.Scalar
	SwapRB     bool
}

// NewGoCVModelLoader создаёт загрузчик с параметрами нормализации по умолчанию.
func NewGoCVModelLoader(modelPath, configPath, labelsPath string) *GoCVModelLoader {
	return &GoCVModelLoader{
		ModelPath:  modelPath,
		ConfigPath: configPath,
		LabelsPath: labelsPath,
		Backend:    gocv.NetBackendDefault,
		Target:     gocv.NetTargetCPU,
		Scale:      1.0 / 255.0,
		Mean:       gocv.NewScalar(0, 0, 0, 0),
		SwapRB:     true,
	}
}

// Load читает таблицу меток и веса модели.
func (l *GoCVModelLoader) Load(ctx context.Context) (*entity.LabelTable, port.Model, error) {
	_ = ctx
	names, err := LoadLabels(l.LabelsPath)
	if err != nil {
		return nil, nil, err
	}

	net := gocv.ReadNet(l.ModelPath, l.ConfigPath)
	if net.Empty() {
		net.Close()
		return nil, nil, errors.Wrapf(entity.ErrModelLoad, "read net %q", l.ModelPath)
	}
	if err := net.SetPreferableBackend(l.Backend); err != nil {
		net.Close()
		return nil, nil, entity.WithKind(entity.ErrModelLoad, errors.Wrap(err, "set backend"))
	}
	if err := net.SetPreferableTarget(l.Target); err != nil {
		net.Close()
		return nil, nil, entity.WithKind(entity.ErrModelLoad, errors.Wrap(err, "set target"))
	}

	return entity.NewLabelTable(names), &GoCVModel{
		net:    net,
		scale:  l.Scale,
		mean:   l.Mean,
		swapRB: l.SwapRB,
	}, nil
}

// GoCVModel загруженная сеть OpenCV. Net не потокобезопасна, вызовы сериализуются.
type GoCVModel struct {
	mu     sync.Mutex
	net    gocv.Net
	scale  float64
	mean   gocv.Scalar
	swapRB bool
}

// InputFormat OpenCV работает с BGR(A).
func (m *GoCVModel) InputFormat() entity.PixelFormat {
	return entity.PixelFormatBGRA32
}

// Infer прогоняет буфер через сеть и возвращает argmax по классам.
func (m *GoCVModel) Infer(ctx context.Context, buf *entity.PixelBuffer) (*entity.Prediction, error) {
	if err := ctx.Err(); err != nil {
		return nil, entity.WithKind(entity.ErrInference, err)
	}
	if buf == nil || buf.Format != entity.PixelFormatBGRA32 {
		return nil, errors.Wrap(entity.ErrFormat, "expected BGRA32 buffer")
	}

	bgra, err := gocv.NewMatFromBytes(buf.Height, buf.Width, gocv.MatTypeCV8UC4, buf.Data)
	if err != nil {
		return nil, entity.WithKind(entity.ErrFormat, errors.Wrap(err, "wrap buffer"))
	}
	defer bgra.Close()

	bgr := gocv.NewMat()
	defer bgr.Close()
	gocv.CvtColor(bgra, &bgr, gocv.ColorBGRAToBGR)

	blob := gocv.BlobFromImage(bgr, m.scale, image.Pt(buf.Width, buf.Height), m.mean, m.swapRB, false)
	defer blob.Close()

	m.mu.Lock()
	m.net.SetInput(blob, "")
	out := m.net.Forward("")
	m.mu.Unlock()
	defer out.Close()

	if out.Empty() {
		return nil, errors.Wrap(entity.ErrInference, "empty network output")
	}
	data, err := out.DataPtrFloat32()
	if err != nil {
		return nil, entity.WithKind(entity.ErrInference, errors.Wrap(err, "read output"))
	}
	return DecodeOutput(data, out.Size())
}

// Close освобождает сеть.
func (m *GoCVModel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.net.Close()
}

var (
	_ port.ModelLoader = (*GoCVModelLoader)(nil)
	_ port.Model       = (*GoCVModel)(nil)
)
