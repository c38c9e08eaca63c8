package app

import (
	"context"
	"image"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"segmentation-bot/internal/domain/entity"
	"segmentation-bot/internal/domain/port"
)

// DefaultInputSize размер входа модели.
var DefaultInputSize = image.Pt(448, 448)

// SegmentationService связывает препроцессинг, модель, сетку меток и маски.
//
// Состояние сессий, кэшей и модели меняется только в цикле dispatcher.
// Препроцессинг и инференс идут в отдельной горутине, результат
// возвращается в цикл и применяется, только если токен запроса актуален.
type SegmentationService struct {
	sessions     *SessionService
	loader       port.ModelLoader
	preprocessor port.Preprocessor
	renderer     port.MaskRenderer
	dispatcher   *Dispatcher
	logger       *zap.SugaredLogger
	inputSize    image.Point
	listener     port.SessionListener

	// только из цикла
	model   port.Model
	table   *entity.LabelTable
	loaded  bool
	loadErr error
	closing bool
	caches  map[int64]*MaskCache

	inflight sync.WaitGroup
}

// NewSegmentationService создаёт сервис сегментации.
func NewSegmentationService(
	sessions *SessionService,
	loader port.ModelLoader,
	preprocessor port.Preprocessor,
	renderer port.MaskRenderer,
	dispatcher *Dispatcher,
	logger *zap.SugaredLogger,
	inputSize image.Point,
) *SegmentationService {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if inputSize.X <= 0 || inputSize.Y <= 0 {
		inputSize = DefaultInputSize
	}
	return &SegmentationService{
		sessions:     sessions,
		loader:       loader,
		preprocessor: preprocessor,
		renderer:     renderer,
		dispatcher:   dispatcher,
		logger:       logger,
		inputSize:    inputSize,
		caches:       make(map[int64]*MaskCache),
	}
}

// SetListener задаёт получателя изменений. Вызывать до запуска цикла.
func (s *SegmentationService) SetListener(l port.SessionListener) {
	s.listener = l
}

// LoadModel загружает модель вне цикла и применяет результат в цикле.
// Изображения, присланные до загрузки, обрабатываются сразу после неё.
func (s *SegmentationService) LoadModel(ctx context.Context) error {
	table, model, err := s.loader.Load(ctx)
	err = entity.WithKind(entity.ErrModelLoad, err)

	if doErr := s.dispatcher.Do(ctx, func() { s.didLoadModel(ctx, table, model, err) }); doErr != nil {
		if model != nil {
			_ = model.Close()
		}
		return doErr
	}
	return err
}

func (s *SegmentationService) didLoadModel(ctx context.Context, table *entity.LabelTable, model port.Model, err error) {
	sessions, listErr := s.sessions.All(ctx)
	if listErr != nil {
		s.logger.Errorw("list sessions", "error", listErr)
	}

	if err != nil {
		s.loadErr = err
		s.logger.Errorw("model failed to load", "error", err)
		for _, sess := range sessions {
			if sess.State == entity.StateProcessing && sess.Fail(sess.Generation(), err) {
				s.notify(ctx, sess)
			}
		}
		return
	}

	if s.closing {
		s.logger.Infow("model loaded after close, releasing")
		if model != nil {
			_ = model.Close()
		}
		return
	}

	s.model = model
	s.table = table
	s.loaded = true
	s.logger.Infow("model loaded", "labels", table.Len())

	for _, sess := range sessions {
		if sess.State == entity.StateProcessing && sess.Pending != nil {
			if !s.startInference(ctx, sess, sess.Generation(), sess.Pending) {
				s.notify(ctx, sess)
			}
		}
	}
}

// Begin переводит сессию в ожидание фото.
func (s *SegmentationService) Begin(ctx context.Context, userID, chatID int64) (port.View, error) {
	var (
		view port.View
		err  error
	)
	doErr := s.dispatcher.Do(ctx, func() {
		var sess *entity.Session
		sess, err = s.sessions.BeginCheck(ctx, userID, chatID)
		if err != nil {
			return
		}
		view = s.view(sess)
	})
	if doErr != nil {
		return view, doErr
	}
	return view, err
}

// Cancel сбрасывает сессию и отбрасывает незавершённый инференс.
func (s *SegmentationService) Cancel(ctx context.Context, userID, chatID int64) (port.View, error) {
	var (
		view port.View
		err  error
	)
	doErr := s.dispatcher.Do(ctx, func() {
		var sess *entity.Session
		sess, err = s.sessions.Cancel(ctx, userID, chatID)
		if err != nil {
			return
		}
		if cache, ok := s.caches[sess.ID]; ok {
			cache.Reset(nil)
		}
		view = s.view(sess)
	})
	if doErr != nil {
		return view, doErr
	}
	return view, err
}

// SubmitImage принимает новое изображение и запускает инференс.
// Ошибки запроса попадают в View.ErrorMessage, error только для сбоев цикла.
func (s *SegmentationService) SubmitImage(ctx context.Context, userID, chatID int64, img image.Image) (port.View, error) {
	var (
		view port.View
		err  error
	)
	if img == nil {
		return view, entity.ErrNoInputImage
	}
	doErr := s.dispatcher.Do(ctx, func() {
		var sess *entity.Session
		sess, err = s.sessions.Get(ctx, userID, chatID)
		if err != nil {
			return
		}

		token := sess.BeginImage(img)
		s.logger.Infow("image selected", "session", sess.ID, "generation", token,
			"width", img.Bounds().Dx(), "height", img.Bounds().Dy())

		switch {
		case s.loadErr != nil:
			sess.Fail(token, s.loadErr)
		case !s.loaded:
			s.logger.Infow("model is not loaded yet, image is pending", "session", sess.ID)
		default:
			s.startInference(ctx, sess, token, img)
		}
		view = s.view(sess)
	})
	if doErr != nil {
		return view, doErr
	}
	return view, err
}

// startInference запускает препроцессинг и инференс вне цикла.
// После начала Close новые запросы не принимаются, возвращает false.
func (s *SegmentationService) startInference(ctx context.Context, sess *entity.Session, token uint64, img image.Image) bool {
	if s.closing {
		sess.Fail(token, entity.ErrModelNotLoaded)
		s.logger.Infow("service is closing, inference refused", "session", sess.ID, "generation", token)
		return false
	}
	model, table := s.model, s.table
	runCtx := context.WithoutCancel(ctx)

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()

		grid, err := s.infer(runCtx, model, table, img)
		posted := s.dispatcher.Post(func() {
			s.didInfer(runCtx, sess, token, grid, err)
		})
		if !posted {
			s.logger.Warnw("dispatcher stopped, inference result dropped", "session", sess.ID, "generation", token)
		}
	}()
	return true
}

func (s *SegmentationService) infer(ctx context.Context, model port.Model, table *entity.LabelTable, img image.Image) (*entity.LabelGrid, error) {
	if model == nil {
		return nil, entity.ErrModelNotLoaded
	}
	if img == nil {
		return nil, entity.ErrNoInputImage
	}

	buf, err := s.preprocessor.Preprocess(img, s.inputSize, model.InputFormat())
	if err != nil {
		return nil, err
	}

	prediction, err := model.Infer(ctx, buf)
	if err != nil {
		if errors.Is(err, entity.ErrFormat) {
			return nil, err
		}
		return nil, entity.WithKind(entity.ErrInference, err)
	}

	return entity.NewLabelGridFromPrediction(table, prediction)
}

func (s *SegmentationService) didInfer(ctx context.Context, sess *entity.Session, token uint64, grid *entity.LabelGrid, err error) {
	if err != nil {
		if !sess.Fail(token, err) {
			s.logger.Debugw("stale inference error dropped", "session", sess.ID, "generation", token, "error", err)
			return
		}
		s.logger.Warnw("inference failed", "session", sess.ID, "generation", token, "error", err)
		s.notify(ctx, sess)
		return
	}

	if !sess.ApplyPrediction(token, grid) {
		s.logger.Debugw("stale inference result dropped", "session", sess.ID, "generation", token,
			"current", sess.Generation())
		return
	}
	s.cache(sess).Reset(grid)
	s.logger.Infow("inference complete", "session", sess.ID, "generation", token,
		"labels", len(sess.Labels()))
	s.notify(ctx, sess)
}

// SelectLabel выбирает метку явно.
func (s *SegmentationService) SelectLabel(ctx context.Context, userID, chatID int64, label string) (port.View, error) {
	var (
		view port.View
		err  error
	)
	doErr := s.dispatcher.Do(ctx, func() {
		var sess *entity.Session
		sess, err = s.sessions.Get(ctx, userID, chatID)
		if err != nil {
			return
		}
		if err = sess.Select(label); err != nil {
			return
		}
		s.renderSelection(sess)
		view = s.view(sess)
	})
	if doErr != nil {
		return view, doErr
	}
	return view, err
}

// SelectAt выбирает метку под нормализованной точкой касания.
// Точка вне [0, 1] снимает выбор, ok == false.
func (s *SegmentationService) SelectAt(ctx context.Context, userID, chatID int64, nx, ny float64) (view port.View, ok bool, err error) {
	doErr := s.dispatcher.Do(ctx, func() {
		var sess *entity.Session
		sess, err = s.sessions.Get(ctx, userID, chatID)
		if err != nil {
			return
		}
		if sess.Grid == nil {
			err = entity.ErrNoInputImage
			return
		}

		var label string
		label, ok = sess.Grid.LabelNameAt(nx, ny)
		if !ok {
			sess.ClearSelection()
			view = s.view(sess)
			return
		}
		if err = sess.Select(label); err != nil {
			return
		}
		s.renderSelection(sess)
		view = s.view(sess)
	})
	if doErr != nil {
		return view, false, doErr
	}
	return view, ok, err
}

// renderSelection прогревает кэш для выбранной метки и фиксирует ошибку отрисовки.
func (s *SegmentationService) renderSelection(sess *entity.Session) {
	if _, err := s.cache(sess).Get(sess.Selected); err != nil {
		s.logger.Warnw("failed to render mask", "session", sess.ID, "label", sess.Selected, "error", err)
		sess.ErrorMessage = entity.UserMessage(entity.WithKind(entity.ErrRender, err))
		return
	}
	sess.ErrorMessage = ""
}

// View возвращает снимок сессии.
func (s *SegmentationService) View(ctx context.Context, userID, chatID int64) (port.View, error) {
	var (
		view port.View
		err  error
	)
	doErr := s.dispatcher.Do(ctx, func() {
		var sess *entity.Session
		sess, err = s.sessions.Get(ctx, userID, chatID)
		if err != nil {
			return
		}
		view = s.view(sess)
	})
	if doErr != nil {
		return view, doErr
	}
	return view, err
}

// Wait ждёт завершения всех запущенных инференсов.
func (s *SegmentationService) Wait() {
	s.inflight.Wait()
}

// Close перестаёт принимать инференсы, ждёт запущенные не дольше ctx
// и освобождает модель. Если ожидание прервано, модель не закрывается:
// она ещё используется зависшим запросом.
func (s *SegmentationService) Close(ctx context.Context) error {
	if err := s.dispatcher.Do(ctx, func() { s.closing = true }); err != nil {
		return err
	}

	idle := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(idle)
	}()
	select {
	case <-idle:
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "wait for running inference")
	}

	var closeErr error
	doErr := s.dispatcher.Do(ctx, func() {
		if s.model != nil {
			closeErr = s.model.Close()
			s.model = nil
			s.loaded = false
		}
	})
	if doErr != nil {
		return doErr
	}
	return closeErr
}

func (s *SegmentationService) cache(sess *entity.Session) *MaskCache {
	cache, ok := s.caches[sess.ID]
	if !ok {
		cache = NewMaskCache(s.renderer, sess.Grid)
		s.caches[sess.ID] = cache
	}
	return cache
}

func (s *SegmentationService) view(sess *entity.Session) port.View {
	view := port.View{
		SessionID:    sess.ID,
		ChatID:       sess.ChatID,
		Generation:   sess.Generation(),
		State:        sess.State,
		ModelLoaded:  s.loaded,
		Source:       sess.Source,
		Labels:       sess.Labels(),
		Selected:     sess.Selected,
		ErrorMessage: sess.ErrorMessage,
	}
	if sess.State == entity.StateReady && sess.Selected != "" {
		if mask, err := s.cache(sess).Get(sess.Selected); err == nil {
			view.Overlay = mask
		}
	}
	return view
}

func (s *SegmentationService) notify(ctx context.Context, sess *entity.Session) {
	if s.listener == nil {
		return
	}
	s.listener.OnSessionChanged(ctx, s.view(sess))
}
