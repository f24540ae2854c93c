package utils

import (
	"testing"

	"github.com/gorilla/securecookie"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "it-inventory/pkg/errors"
)

func TestSessionCookie_RoundTrip(t *testing.T) {
	value, err := SignSessionID("4b1c-uuid", "secret")
	require.NoError(t, err)
	assert.NotContains(t, value, "4b1c-uuid")

	id, err := VerifySessionCookie(value, "secret")
	require.NoError(t, err)
	assert.Equal(t, "4b1c-uuid", id)
}

func TestSessionCookie_Rejects(t *testing.T) {
	signed, err := SignSessionID("abc", "secret")
	require.NoError(t, err)
	otherName, err := securecookie.New([]byte("secret"), nil).Encode("remember", "abc")
	require.NoError(t, err)

	tampered := []byte(signed)
	tampered[len(tampered)/2] ^= 1

	tests := []struct {
		name   string
		value  string
		secret string
	}{
		{"другой секрет", signed, "other"},
		{"подмена значения", string(tampered), "secret"},
		{"другое имя cookie", otherName, "secret"},
		{"пустое значение", "", "secret"},
		{"старый формат", "abc.c2lnbmF0dXJl", "secret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := VerifySessionCookie(tt.value, tt.secret)
			assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
		})
	}
}

func TestSessionCookie_EmptySecret(t *testing.T) {
	_, err := SignSessionID("abc", "")
	assert.Error(t, err)
}
