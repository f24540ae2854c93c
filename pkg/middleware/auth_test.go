package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"it-inventory/internal/dto"
	"it-inventory/internal/entities"
	"it-inventory/internal/services"
	"it-inventory/pkg/contextkeys"
	apperrors "it-inventory/pkg/errors"
	"it-inventory/pkg/utils"
)

type stubAuth struct {
	user      *entities.User
	gotToken  string
	gotCookie string
}

func (s *stubAuth) Login(context.Context, dto.LoginDTO) (*services.LoginResult, error) { return nil, nil }
func (s *stubAuth) Logout(context.Context, string) error { return nil }

func (s *stubAuth) CurrentUser(_ context.Context, token, cookie string) (*entities.User, error) {
	s.gotToken, s.gotCookie = token, cookie
	if s.user == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	return s.user, nil
}

func (s *stubAuth) CheckActive(u *entities.User) error {
	if !u.IsActive {
		return apperrors.ErrInactiveUser
	}
	return nil
}

func (s *stubAuth) CheckSuperuser(u *entities.User) error {
	if !u.IsSuperuser {
		return apperrors.ErrForbidden
	}
	return nil
}

func serve(t *testing.T, mw *AuthMiddleware, chain []echo.MiddlewareFunc, req *http.Request) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	var seen echo.Context
	h := func(c echo.Context) error {
		seen = c
		return c.NoContent(http.StatusNoContent)
	}
	for i := len(chain) - 1; i >= 0; i-- {
		h = chain[i](h)
	}
	require.NoError(t, h(c))
	return rec, seen
}

func TestAuth_BearerTokenPutsUserIntoContext(t *testing.T) {
	stub := &stubAuth{user: &entities.User{ID: 7, Email: "a@b.c", IsActive: true}}
	mw := NewAuthMiddleware(stub, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer abc.def")
	rec, seen := serve(t, mw, []echo.MiddlewareFunc{mw.Auth, mw.RequireActive}, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "abc.def", stub.gotToken)
	user, err := utils.GetUserFromCtx(seen.Request().Context())
	require.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)
	assert.Equal(t, "token", seen.Request().Context().Value(contextkeys.AuthViaKey))
}

func TestAuth_SessionCookie(t *testing.T) {
	stub := &stubAuth{user: &entities.User{ID: 1, IsActive: true}}
	mw := NewAuthMiddleware(stub, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: utils.SessionCookieName, Value: "id.sig"})
	rec, _ := serve(t, mw, []echo.MiddlewareFunc{mw.Auth}, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "id.sig", stub.gotCookie)
	assert.Empty(t, stub.gotToken)
}

func TestAuth_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		header string
		user   *entities.User
		chain  func(mw *AuthMiddleware) []echo.MiddlewareFunc
		code   int
	}{
		{
			name:  "без учетных данных",
			chain: func(mw *AuthMiddleware) []echo.MiddlewareFunc { return []echo.MiddlewareFunc{mw.Auth} },
			code:  http.StatusUnauthorized,
		},
		{
			name:   "неверный заголовок",
			header: "Token abc",
			user:   &entities.User{ID: 1, IsActive: true},
			chain:  func(mw *AuthMiddleware) []echo.MiddlewareFunc { return []echo.MiddlewareFunc{mw.Auth} },
			code:   http.StatusUnauthorized,
		},
		{
			name:   "неактивный пользователь",
			header: "Bearer x",
			user:   &entities.User{ID: 1},
			chain:  func(mw *AuthMiddleware) []echo.MiddlewareFunc { return []echo.MiddlewareFunc{mw.Auth, mw.RequireActive} },
			code:   http.StatusBadRequest,
		},
		{
			name:   "не администратор",
			header: "Bearer x",
			user:   &entities.User{ID: 1, IsActive: true},
			chain:  func(mw *AuthMiddleware) []echo.MiddlewareFunc { return []echo.MiddlewareFunc{mw.Auth, mw.RequireSuperuser} },
			code:   http.StatusForbidden,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mw := NewAuthMiddleware(&stubAuth{user: tt.user}, zap.NewNop())
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec, seen := serve(t, mw, tt.chain(mw), req)
			assert.Equal(t, tt.code, rec.Code)
			assert.Nil(t, seen)
		})
	}
}
