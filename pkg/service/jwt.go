package service

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	apperrors "it-inventory/pkg/errors"
)

// JwtCustomClaim: в sub лежит email пользователя.
type JwtCustomClaim struct {
	jwt.RegisteredClaims
}

type JWTService interface {
	GenerateToken(email string) (string, error)
	ValidateToken(tokenString string) (*JwtCustomClaim, error)
	GetAccessTokenTTL() time.Duration
}

type jwtService struct {
	secretKey      string
	method         *jwt.SigningMethodHMAC
	accessTokenExp time.Duration
	now            func() time.Time
	logger         *zap.Logger
}

// NewJWTService принимает алгоритм HS256, HS384 или HS512.
func NewJWTService(secretKey, algorithm string, accessTokenExp time.Duration, logger *zap.Logger) (JWTService, error) {
	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrInvalidSigningMethod, algorithm)
	}
	return &jwtService{
		secretKey:      secretKey,
		method:         method,
		accessTokenExp: accessTokenExp,
		now:            time.Now,
		logger:         logger,
	}, nil
}

func (s *jwtService) GenerateToken(email string) (string, error) {
	now := s.now()
	claims := &JwtCustomClaim{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTokenExp)),
		},
	}
	return jwt.NewWithClaims(s.method, claims).SignedString([]byte(s.secretKey))
}

func (s *jwtService) GetAccessTokenTTL() time.Duration {
	return s.accessTokenExp
}

func (s *jwtService) ValidateToken(tokenString string) (*JwtCustomClaim, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JwtCustomClaim{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != s.method.Alg() {
			return nil, apperrors.ErrInvalidSigningMethod
		}
		return []byte(s.secretKey), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		s.logger.Debug("Ошибка парсинга или проверки подписи токена", zap.Error(err))
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, apperrors.ErrTokenExpired
		case errors.Is(err, apperrors.ErrInvalidSigningMethod):
			return nil, apperrors.ErrInvalidSigningMethod
		default:
			return nil, apperrors.ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*JwtCustomClaim)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}
