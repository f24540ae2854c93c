package utils

import (
	"github.com/gorilla/securecookie"

	apperrors "it-inventory/pkg/errors"
)

const SessionCookieName = "session"

// срок жизни задаёт TTL сессии в Redis, поэтому метку времени в cookie не проверяем
func sessionCodec(secret string) *securecookie.SecureCookie {
	return securecookie.New([]byte(secret), nil).MaxAge(0)
}

// SignSessionID возвращает подписанное значение cookie с id сессии.
func SignSessionID(id, secret string) (string, error) {
	return sessionCodec(secret).Encode(SessionCookieName, id)
}

// VerifySessionCookie проверяет подпись и возвращает id сессии.
func VerifySessionCookie(value, secret string) (string, error) {
	var id string
	if err := sessionCodec(secret).Decode(SessionCookieName, value, &id); err != nil || id == "" {
		return "", apperrors.ErrSessionNotFound
	}
	return id, nil
}
