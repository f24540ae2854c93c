package utils

import (
	"context"

	"it-inventory/internal/entities"
	"it-inventory/pkg/contextkeys"
	apperrors "it-inventory/pkg/errors"
)

func GetUserFromCtx(ctx context.Context) (*entities.User, error) {
	user, ok := ctx.Value(contextkeys.UserKey).(*entities.User)
	if !ok || user == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	return user, nil
}

// ActorFromCtx возвращает автора изменения или nil для системных вызовов.
func ActorFromCtx(ctx context.Context) *entities.Actor {
	user, err := GetUserFromCtx(ctx)
	if err != nil {
		return nil
	}
	return &entities.Actor{UserID: user.ID, Email: user.Email}
}
