package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	app "segmentation-bot/internal/application"
	"segmentation-bot/internal/domain/entity"
	"segmentation-bot/internal/domain/port"
	"segmentation-bot/internal/infrastructure/imageproc"
)

const (
	msgStart = `👋 Привет! Я бот для семантической сегментации фотографий.

📸 Отправьте мне фото, я найду на нём объекты и покажу их маску.

📋 Команды:
/check — начать новую сегментацию
/tap x y — выбрать объект по точке (x и y от 0 до 1)
/labels — список найденных объектов
/help — справка
/cancel — отменить текущую операцию`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Отправьте фото
2️⃣ Бот найдёт объекты на изображении
3️⃣ Выберите объект кнопкой или командой /tap 0.5 0.9
4️⃣ Вы получите фото с подсветкой выбранного объекта

📋 Команды:
/check — начать сегментацию
/cancel — отменить операцию`

	msgAwaitingPhoto  = "📸 Отправьте фото для сегментации."
	msgCancelled      = "❌ Операция отменена. Отправьте /check для новой сегментации."
	msgSendPhoto      = "📸 Пожалуйста, отправьте фото для сегментации."
	msgUnknownCommand = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing     = "⏳ Обрабатываю изображение..."
	msgModelLoading   = "⏳ Модель ещё загружается, фото будет обработано сразу после загрузки."
	msgChooseLabel    = "🏷 Нажмите на объект, чтобы увидеть его маску:"
	msgNoLabels       = "Объекты пока не найдены. Отправьте фото."
	msgTapUsage       = "Использование: /tap x y, где x и y от 0 до 1."
	msgTapMissed      = "Точка вне изображения, выбор снят."
	msgDownloadError  = "⚠️ Не удалось загрузить изображение. Попробуйте ещё раз."
	msgInternalError  = "⚠️ Внутренняя ошибка. Попробуйте позже."
)

// Bot представляет Telegram-бота: слой отображения сессий сегментации
type Bot struct {
	api     *tgbotapi.BotAPI
	svc     *app.SegmentationService
	logger  *zap.SugaredLogger
	opacity float64
	views   chan port.View
}

// NewBot создаёт нового бота
func NewBot(token string, svc *app.SegmentationService, opacity float64, logger *zap.SugaredLogger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, errors.Wrap(err, "create bot api")
	}

	logger.Infow("authorized", "account", api.Self.UserName)

	return &Bot{
		api:     api,
		svc:     svc,
		logger:  logger,
		opacity: opacity,
		views:   make(chan port.View, 64),
	}, nil
}

// OnSessionChanged ставит изменение сессии в очередь отправки.
// Вызывается из цикла сервиса, поэтому не блокируется.
func (b *Bot) OnSessionChanged(ctx context.Context, view port.View) {
	select {
	case b.views <- view:
	default:
		b.logger.Warnw("view queue is full, update dropped", "session", view.SessionID, "generation", view.Generation)
	}
}

// Run запускает основной цикл обработки сообщений
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	go b.deliverLoop(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			switch {
			case update.CallbackQuery != nil:
				b.handleCallback(ctx, update.CallbackQuery)
			case update.Message != nil:
				b.handleMessage(ctx, update.Message)
			}
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}

	// Обработка команд
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	// Обработка фото
	if len(msg.Photo) > 0 {
		b.handlePhoto(ctx, msg)
		return
	}

	// Текстовое сообщение (не команда)
	b.sendMessage(msg.Chat.ID, msgSendPhoto)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	userID, chatID := msg.From.ID, msg.Chat.ID

	switch msg.Command() {
	case "start":
		if _, err := b.svc.Cancel(ctx, userID, chatID); err != nil {
			b.fail(chatID, "cancel session", err)
			return
		}
		b.sendMessage(chatID, msgStart)

	case "help":
		b.sendMessage(chatID, msgHelp)

	case "check":
		if _, err := b.svc.Begin(ctx, userID, chatID); err != nil {
			b.fail(chatID, "begin session", err)
			return
		}
		b.sendMessage(chatID, msgAwaitingPhoto)

	case "cancel":
		if _, err := b.svc.Cancel(ctx, userID, chatID); err != nil {
			b.fail(chatID, "cancel session", err)
			return
		}
		b.sendMessage(chatID, msgCancelled)

	case "labels":
		view, err := b.svc.View(ctx, userID, chatID)
		if err != nil {
			b.fail(chatID, "view session", err)
			return
		}
		b.sendLabels(view)

	case "tap":
		nx, ny, err := parseTap(msg.CommandArguments())
		if err != nil {
			b.sendMessage(chatID, msgTapUsage)
			return
		}
		b.handleTap(ctx, userID, chatID, nx, ny)

	default:
		b.sendMessage(chatID, msgUnknownCommand)
	}
}

// handleTap выбирает метку по нормализованной точке
func (b *Bot) handleTap(ctx context.Context, userID, chatID int64, nx, ny float64) {
	view, ok, err := b.svc.SelectAt(ctx, userID, chatID, nx, ny)
	switch {
	case errors.Is(err, entity.ErrNoInputImage):
		b.sendMessage(chatID, msgNoLabels)
	case err != nil:
		b.fail(chatID, "select at point", err)
	case !ok:
		b.sendMessage(chatID, msgTapMissed)
	default:
		b.deliver(view)
	}
}

// handleCallback обрабатывает нажатие кнопки с меткой
func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.logger.Warnw("answer callback", "error", err)
	}
	if cb.Message == nil || cb.From == nil {
		return
	}

	label, ok := parseLabelData(cb.Data)
	if !ok {
		return
	}

	chatID := cb.Message.Chat.ID
	view, err := b.svc.SelectLabel(ctx, cb.From.ID, chatID, label)
	switch {
	case errors.Is(err, entity.ErrUnknownLabel), errors.Is(err, entity.ErrNoInputImage):
		// кнопка от устаревшего результата
		b.sendMessage(chatID, msgNoLabels)
	case err != nil:
		b.fail(chatID, "select label", err)
	default:
		b.deliver(view)
	}
}

// handlePhoto обрабатывает входящее фото
func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	// Получаем файл с максимальным разрешением
	photo := msg.Photo[len(msg.Photo)-1]

	imageData, err := b.downloadFile(photo.FileID)
	if err != nil {
		b.logger.Warnw("download photo", "chat", chatID, "error", err)
		b.sendMessage(chatID, msgDownloadError)
		return
	}

	img, err := imageproc.Decode(imageData)
	if err != nil {
		b.logger.Warnw("decode photo", "chat", chatID, "bytes", len(imageData), "error", err)
		b.sendMessage(chatID, "⚠️ "+entity.UserMessage(err))
		return
	}

	view, err := b.svc.SubmitImage(ctx, msg.From.ID, chatID, img)
	if err != nil {
		b.fail(chatID, "submit image", err)
		return
	}

	switch {
	case view.ErrorMessage != "":
		b.sendMessage(chatID, "⚠️ Ошибка: "+view.ErrorMessage)
	case !view.ModelLoaded:
		b.sendMessage(chatID, msgModelLoading)
	default:
		b.sendMessage(chatID, msgProcessing)
	}
}

// deliverLoop отправляет изменения сессий, пришедшие из сервиса
func (b *Bot) deliverLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case view := <-b.views:
			b.deliver(view)
		}
	}
}

// deliver показывает пользователю состояние сессии
func (b *Bot) deliver(view port.View) {
	switch {
	case view.ErrorMessage != "":
		b.sendMessage(view.ChatID, "⚠️ Ошибка: "+view.ErrorMessage)
	case view.Overlay != nil:
		b.sendOverlay(view)
	case view.State == entity.StateReady:
		b.sendLabels(view)
	}
}

// sendLabels отправляет список найденных меток с кнопками
func (b *Bot) sendLabels(view port.View) {
	if len(view.Labels) == 0 {
		b.sendMessage(view.ChatID, msgNoLabels)
		return
	}
	msg := tgbotapi.NewMessage(view.ChatID, msgChooseLabel)
	msg.ReplyMarkup = labelsKeyboard(view.Labels, view.Selected)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Warnw("send labels", "chat", view.ChatID, "error", err)
	}
}

// sendOverlay накладывает маску на исходное фото и отправляет результат
func (b *Bot) sendOverlay(view port.View) {
	composite, err := imageproc.Composite(view.Source, view.Overlay, b.opacity)
	if err != nil {
		b.fail(view.ChatID, "composite overlay", err)
		return
	}
	data, err := imageproc.EncodePNG(composite)
	if err != nil {
		b.fail(view.ChatID, "encode overlay", err)
		return
	}

	photo := tgbotapi.NewPhoto(view.ChatID, tgbotapi.FileBytes{Name: "mask.png", Bytes: data})
	photo.Caption = fmt.Sprintf("🏷 %s", view.Selected)
	photo.ReplyMarkup = labelsKeyboard(view.Labels, view.Selected)
	if _, err := b.api.Send(photo); err != nil {
		b.logger.Warnw("send overlay", "chat", view.ChatID, "error", err)
	}
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, errors.Wrap(err, "get file")
	}

	fileURL := file.Link(b.api.Token)

	resp, err := http.Get(fileURL)
	if err != nil {
		return nil, errors.Wrap(err, "download file")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("download file: status %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	return data, nil
}

// fail логирует внутреннюю ошибку и сообщает пользователю
func (b *Bot) fail(chatID int64, op string, err error) {
	b.logger.Errorw(op, "chat", chatID, "error", err)
	b.sendMessage(chatID, msgInternalError)
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Warnw("send message", "chat", chatID, "error", err)
	}
}

var _ port.SessionListener = (*Bot)(nil)
