package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"it-inventory/internal/entities"
	apperrors "it-inventory/pkg/errors"
)

const sessionKeyPrefix = "session:"

type SessionRepositoryInterface interface {
	Create(ctx context.Context, session entities.Session) (string, error)
	Get(ctx context.Context, id string) (*entities.Session, error)
	Delete(ctx context.Context, id string) error
}

// SessionRepository хранит сессии в кеше в виде JSON под случайным id.
type SessionRepository struct {
	cache  CacheRepositoryInterface
	ttl    time.Duration
	logger *zap.Logger
}

func NewSessionRepository(cache CacheRepositoryInterface, ttl time.Duration, logger *zap.Logger) SessionRepositoryInterface {
	return &SessionRepository{cache: cache, ttl: ttl, logger: logger}
}

func (r *SessionRepository) Create(ctx context.Context, session entities.Session) (string, error) {
	payload, err := json.Marshal(session)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	if err := r.cache.Set(ctx, sessionKeyPrefix+id, payload, r.ttl); err != nil {
		return "", fmt.Errorf("не удалось сохранить сессию: %w", err)
	}
	return id, nil
}

// Get возвращает сессию и продлевает её время жизни.
func (r *SessionRepository) Get(ctx context.Context, id string) (*entities.Session, error) {
	raw, err := r.cache.Get(ctx, sessionKeyPrefix+id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrSessionNotFound
		}
		return nil, fmt.Errorf("не удалось прочитать сессию: %w", err)
	}
	var session entities.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		r.logger.Warn("Повреждённые данные сессии", zap.String("session_id", id), zap.Error(err))
		return nil, apperrors.ErrSessionNotFound
	}
	if _, err := r.cache.Expire(ctx, sessionKeyPrefix+id, r.ttl); err != nil {
		r.logger.Warn("Не удалось продлить сессию", zap.String("session_id", id), zap.Error(err))
	}
	return &session, nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	return r.cache.Del(ctx, sessionKeyPrefix+id)
}
