package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"it-inventory/internal/dto"
	"it-inventory/internal/entities"
	apperrors "it-inventory/pkg/errors"
	"it-inventory/pkg/service"
	"it-inventory/pkg/utils"
)

type memoryUsers struct {
	byID map[int64]*entities.User
}

func (m *memoryUsers) FindByID(_ context.Context, id int64) (*entities.User, error) {
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, apperrors.ErrNotFound
}

func (m *memoryUsers) FindByEmail(_ context.Context, email string) (*entities.User, error) {
	for _, u := range m.byID {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *memoryUsers) List(context.Context) ([]entities.User, error) {
	out := make([]entities.User, 0, len(m.byID))
	for _, u := range m.byID {
		out = append(out, *u)
	}
	return out, nil
}

func (m *memoryUsers) Create(_ context.Context, u entities.User) (*entities.User, error) {
	u.ID = int64(len(m.byID) + 1)
	m.byID[u.ID] = &u
	return &u, nil
}

type memorySessions struct {
	data map[string]entities.Session
}

func (m *memorySessions) Create(_ context.Context, s entities.Session) (string, error) {
	id := "sess-" + s.UserEmail
	m.data[id] = s
	return id, nil
}

func (m *memorySessions) Get(_ context.Context, id string) (*entities.Session, error) {
	s, ok := m.data[id]
	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}
	return &s, nil
}

func (m *memorySessions) Delete(_ context.Context, id string) error {
	delete(m.data, id)
	return nil
}

func newAuthFixture(t *testing.T) (*AuthService, *memorySessions) {
	t.Helper()
	hashed, err := utils.HashPassword("secret123")
	require.NoError(t, err)

	users := &memoryUsers{byID: map[int64]*entities.User{
		1: {ID: 1, Email: "admin@example.com", HashedPassword: hashed, IsActive: true, IsSuperuser: true},
		2: {ID: 2, Email: "old@example.com", HashedPassword: hashed, IsActive: false},
		3: {ID: 3, Email: "user@example.com", HashedPassword: hashed, IsActive: true},
	}}
	sessions := &memorySessions{data: map[string]entities.Session{}}
	jwtSvc, err := service.NewJWTService("jwt-secret", "HS256", 30*time.Minute, zap.NewNop())
	require.NoError(t, err)

	return NewAuthService(&passThroughTx{}, users, sessions, jwtSvc, "session-secret", zap.NewNop()), sessions
}

func TestAuthService_LoginAndCurrentUser(t *testing.T) {
	svc, sessions := newAuthFixture(t)
	ctx := context.Background()

	res, err := svc.Login(ctx, dto.LoginDTO{Email: " Admin@Example.com ", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Len(t, sessions.data, 1)

	byToken, err := svc.CurrentUser(ctx, res.AccessToken, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), byToken.ID)

	byCookie, err := svc.CurrentUser(ctx, "", res.SessionCookie)
	require.NoError(t, err)
	assert.Equal(t, int64(1), byCookie.ID)

	require.NoError(t, svc.Logout(ctx, res.SessionCookie))
	_, err = svc.CurrentUser(ctx, "", res.SessionCookie)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestAuthService_LoginFailures(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, dto.LoginDTO{Email: "admin@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, dto.LoginDTO{Email: "nobody@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, dto.LoginDTO{Email: "old@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, apperrors.ErrInactiveUser)
}

func TestAuthService_CurrentUserRejects(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.CurrentUser(ctx, "", "")
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	_, err = svc.CurrentUser(ctx, "", "forged.signature")
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	_, err = svc.CurrentUser(ctx, "not-a-jwt", "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestAuthService_Checks(t *testing.T) {
	svc, _ := newAuthFixture(t)

	assert.ErrorIs(t, svc.CheckActive(nil), apperrors.ErrUnauthenticated)
	assert.ErrorIs(t, svc.CheckActive(&entities.User{IsActive: false}), apperrors.ErrInactiveUser)
	assert.ErrorIs(t, svc.CheckSuperuser(&entities.User{IsActive: true}), apperrors.ErrForbidden)
	assert.NoError(t, svc.CheckSuperuser(&entities.User{IsActive: true, IsSuperuser: true}))
}

func TestUserService_CreateRejectsDuplicateEmail(t *testing.T) {
	users := &memoryUsers{byID: map[int64]*entities.User{
		1: {ID: 1, Email: "admin@example.com", IsActive: true},
	}}
	audit := &fakeAudit{}
	svc := NewUserService(&passThroughTx{}, users, audit, zap.NewNop())

	_, err := svc.Create(context.Background(), dto.CreateUserDTO{Email: "ADMIN@example.com", Password: "secret123"}, testActor)
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)

	created, err := svc.Create(context.Background(), dto.CreateUserDTO{Email: "new@example.com", Password: "secret123"}, testActor)
	require.NoError(t, err)
	assert.True(t, created.IsActive)
	assert.NotEqual(t, "secret123", created.HashedPassword)
	require.Len(t, audit.records, 1)
	assert.Equal(t, "User", audit.records[0].entityType)
}
