package entity

import (
	"image"

	"go.uber.org/atomic"
)

// SessionState состояние сессии сегментации
type SessionState string

const (
	StateMainMenu      SessionState = "main_menu"      // В главном меню
	StateAwaitingPhoto SessionState = "awaiting_photo" // Ожидание фото
	StateProcessing    SessionState = "processing"     // Идёт инференс
	StateReady         SessionState = "ready"          // Сетка меток готова
)

// Session состояние одного экрана сегментации (одного чата).
//
// Все методы, кроме Generation и IsCurrent, вызываются только из
// владеющего цикла.
type Session struct {
	ID     int64        // Telegram User ID
	ChatID int64        // Telegram Chat ID
	State  SessionState // Текущее состояние

	Source       image.Image // изображение, которому принадлежит Grid
	Pending      image.Image // изображение, ожидающее инференса
	Grid         *LabelGrid  // последняя применённая сетка
	Selected     string      // выбранная метка, пусто если нет
	ErrorMessage string      // текст последней ошибки для пользователя

	generation atomic.Uint64
}

// NewSession создаёт новую сессию с начальным состоянием
func NewSession(userID, chatID int64) *Session {
	return &Session{
		ID:     userID,
		ChatID: chatID,
		State:  StateMainMenu,
	}
}

// SetState обновляет состояние сессии
func (s *Session) SetState(state SessionState) {
	s.State = state
}

// Generation текущий номер запроса.
func (s *Session) Generation() uint64 {
	return s.generation.Load()
}

// IsCurrent сообщает, относится ли token к последнему запросу.
func (s *Session) IsCurrent(token uint64) bool {
	return s.generation.Load() == token
}

// BeginImage принимает новое изображение и возвращает токен запроса.
// Предыдущие сетка, выбор и Source остаются до прихода нового результата.
func (s *Session) BeginImage(img image.Image) uint64 {
	s.Pending = img
	s.ErrorMessage = ""
	s.State = StateProcessing
	return s.generation.Inc()
}

// ApplyPrediction применяет сетку, если token актуален.
func (s *Session) ApplyPrediction(token uint64, grid *LabelGrid) bool {
	if !s.IsCurrent(token) || grid == nil {
		return false
	}
	s.Source = s.Pending
	s.Pending = nil
	s.Grid = grid
	s.Selected = ""
	s.ErrorMessage = ""
	s.State = StateReady
	return true
}

// Fail фиксирует ошибку запроса token. Сетка, выбор и Source не меняются.
func (s *Session) Fail(token uint64, err error) bool {
	if !s.IsCurrent(token) {
		return false
	}
	s.Pending = nil
	s.ErrorMessage = UserMessage(err)
	if s.Grid != nil {
		s.State = StateReady
	} else {
		s.State = StateAwaitingPhoto
	}
	return true
}

// Select выбирает метку по имени.
func (s *Session) Select(label string) error {
	if s.Grid == nil {
		return ErrNoInputImage
	}
	if !s.Grid.Table().Contains(label) {
		return ErrUnknownLabel
	}
	s.Selected = label
	return nil
}

// ClearSelection снимает выбор.
func (s *Session) ClearSelection() {
	s.Selected = ""
}

// Reset сбрасывает сессию. Незавершённый запрос становится устаревшим.
func (s *Session) Reset() {
	s.generation.Inc()
	s.Source = nil
	s.Pending = nil
	s.Grid = nil
	s.Selected = ""
	s.ErrorMessage = ""
	s.State = StateMainMenu
}

// Labels метки текущей сетки.
func (s *Session) Labels() []string {
	if s.Grid == nil {
		return nil
	}
	return s.Grid.UniqueLabels()
}
