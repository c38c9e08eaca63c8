package container

import (
	"image"

	"go.uber.org/zap"

	app "segmentation-bot/internal/application"
	"segmentation-bot/internal/domain/port"
	"segmentation-bot/internal/infrastructure/imageproc"
)

type Container struct {
	Dispatcher          *app.Dispatcher
	SessionService      *app.SessionService
	SegmentationService *app.SegmentationService
}

func New(sessionRepo port.SessionRepository, loader port.ModelLoader, inputSize int, logger *zap.SugaredLogger) *Container {
	dispatcher := app.NewDispatcher(64)
	sessionService := app.NewSessionService(sessionRepo)
	segmentationService := app.NewSegmentationService(
		sessionService,
		loader,
		imageproc.NewPreprocessor(),
		imageproc.NewMaskRenderer(),
		dispatcher,
		logger,
		image.Pt(inputSize, inputSize),
	)

	return &Container{
		Dispatcher:          dispatcher,
		SessionService:      sessionService,
		SegmentationService: segmentationService,
	}
}
