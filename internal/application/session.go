package app

import (
	"context"

	"segmentation-bot/internal/domain/entity"
	"segmentation-bot/internal/domain/port"
)

// SessionService управляет состоянием сессий в хранилище.
// Вызывается из владеющего цикла.
type SessionService struct {
	repo port.SessionRepository
}

func NewSessionService(repo port.SessionRepository) *SessionService {
	return &SessionService{repo: repo}
}

func (s *SessionService) Get(ctx context.Context, userID, chatID int64) (*entity.Session, error) {
	return s.repo.Get(ctx, userID, chatID)
}

func (s *SessionService) All(ctx context.Context) ([]*entity.Session, error) {
	return s.repo.All(ctx)
}

// SetState создаёт сессию при необходимости и меняет её состояние через хранилище.
func (s *SessionService) SetState(ctx context.Context, userID, chatID int64, state entity.SessionState) (*entity.Session, error) {
	session, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateState(ctx, session.ID, state); err != nil {
		return nil, err
	}

	return session, nil
}

func (s *SessionService) BeginCheck(ctx context.Context, userID, chatID int64) (*entity.Session, error) {
	return s.SetState(ctx, userID, chatID, entity.StateAwaitingPhoto)
}

// Cancel сбрасывает сессию; результат незавершённого инференса будет отброшен.
func (s *SessionService) Cancel(ctx context.Context, userID, chatID int64) (*entity.Session, error) {
	session, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	session.Reset()
	if err := s.repo.Save(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}
