package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"it-inventory/internal/dto"
	"it-inventory/internal/entities"
	"it-inventory/internal/repositories"
	apperrors "it-inventory/pkg/errors"
	"it-inventory/pkg/service"
	"it-inventory/pkg/utils"
)

// LoginResult - токен доступа и подписанное значение cookie сессии.
type LoginResult struct {
	AccessToken   string
	SessionCookie string
	User          *entities.User
}

type AuthServiceInterface interface {
	Login(ctx context.Context, in dto.LoginDTO) (*LoginResult, error)
	Logout(ctx context.Context, sessionCookie string) error
	// CurrentUser определяет пользователя по Bearer-токену, иначе по cookie сессии.
	CurrentUser(ctx context.Context, bearerToken, sessionCookie string) (*entities.User, error)
	CheckActive(user *entities.User) error
	CheckSuperuser(user *entities.User) error
}

type AuthService struct {
	txManager     repositories.TxManagerInterface
	users         repositories.UserRepositoryInterface
	sessions      repositories.SessionRepositoryInterface
	jwtService    service.JWTService
	sessionSecret string
	logger        *zap.Logger
}

func NewAuthService(
	txManager repositories.TxManagerInterface,
	users repositories.UserRepositoryInterface,
	sessions repositories.SessionRepositoryInterface,
	jwtService service.JWTService,
	sessionSecret string,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		txManager:     txManager,
		users:         users,
		sessions:      sessions,
		jwtService:    jwtService,
		sessionSecret: sessionSecret,
		logger:        logger,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) findUser(ctx context.Context, find func(ctx context.Context) (*entities.User, error)) (*entities.User, error) {
	var user *entities.User
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		user, err = find(ctx)
		return err
	})
	return user, err
}

func (s *AuthService) Login(ctx context.Context, in dto.LoginDTO) (*LoginResult, error) {
	email := normalizeEmail(in.Email)
	user, err := s.findUser(ctx, func(ctx context.Context) (*entities.User, error) {
		return s.users.FindByEmail(ctx, email)
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.Warn("Вход: пользователь не найден", zap.String("email", email))
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := utils.ComparePasswords(user.HashedPassword, in.Password); err != nil {
		s.logger.Warn("Вход: неверный пароль", zap.String("email", email))
		return nil, apperrors.ErrInvalidCredentials
	}
	if err := s.CheckActive(user); err != nil {
		return nil, err
	}

	token, err := s.jwtService.GenerateToken(user.Email)
	if err != nil {
		return nil, err
	}
	sessionID, err := s.sessions.Create(ctx, entities.Session{
		UserID:      user.ID,
		UserEmail:   user.Email,
		UserName:    user.DisplayName(),
		IsSuperuser: user.IsSuperuser,
	})
	if err != nil {
		return nil, err
	}
	cookie, err := utils.SignSessionID(sessionID, s.sessionSecret)
	if err != nil {
		s.logger.Error("Не удалось подписать cookie сессии", zap.Error(err))
		return nil, err
	}
	s.logger.Info("Пользователь вошел в систему", zap.Int64("user_id", user.ID))
	return &LoginResult{
		AccessToken:   token,
		SessionCookie: cookie,
		User:          user,
	}, nil
}

// Logout удаляет сессию; неверная или пустая cookie не считается ошибкой.
func (s *AuthService) Logout(ctx context.Context, sessionCookie string) error {
	if sessionCookie == "" {
		return nil
	}
	id, err := utils.VerifySessionCookie(sessionCookie, s.sessionSecret)
	if err != nil {
		return nil
	}
	return s.sessions.Delete(ctx, id)
}

func (s *AuthService) CurrentUser(ctx context.Context, bearerToken, sessionCookie string) (*entities.User, error) {
	var (
		user *entities.User
		err  error
	)
	switch {
	case bearerToken != "":
		claims, verr := s.jwtService.ValidateToken(bearerToken)
		if verr != nil {
			return nil, verr
		}
		user, err = s.findUser(ctx, func(ctx context.Context) (*entities.User, error) {
			return s.users.FindByEmail(ctx, claims.Subject)
		})
	case sessionCookie != "":
		id, verr := utils.VerifySessionCookie(sessionCookie, s.sessionSecret)
		if verr != nil {
			return nil, apperrors.ErrUnauthenticated
		}
		session, serr := s.sessions.Get(ctx, id)
		if serr != nil {
			if errors.Is(serr, apperrors.ErrSessionNotFound) {
				return nil, apperrors.ErrUnauthenticated
			}
			return nil, serr
		}
		user, err = s.findUser(ctx, func(ctx context.Context) (*entities.User, error) {
			return s.users.FindByID(ctx, session.UserID)
		})
	default:
		return nil, apperrors.ErrUnauthenticated
	}
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.ErrUnauthenticated
	}
	return user, err
}

func (s *AuthService) CheckActive(user *entities.User) error {
	if user == nil {
		return apperrors.ErrUnauthenticated
	}
	if !user.IsActive {
		return apperrors.ErrInactiveUser
	}
	return nil
}

func (s *AuthService) CheckSuperuser(user *entities.User) error {
	if err := s.CheckActive(user); err != nil {
		return err
	}
	if !user.IsSuperuser {
		return apperrors.ErrForbidden
	}
	return nil
}
