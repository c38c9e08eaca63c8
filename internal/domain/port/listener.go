package port

import (
	"context"
	"image"

	"segmentation-bot/internal/domain/entity"
)

// View снимок сессии для слоя отображения.
type View struct {
	SessionID    int64
	ChatID       int64
	Generation   uint64
	State        entity.SessionState
	ModelLoaded  bool
	Source       image.Image
	Overlay      *image.NRGBA
	Labels       []string
	Selected     string
	ErrorMessage string
}

// SessionListener получает изменения сессий.
// Вызывается из владеющего цикла, поэтому не должен блокироваться надолго.
type SessionListener interface {
	OnSessionChanged(ctx context.Context, view View)
}
