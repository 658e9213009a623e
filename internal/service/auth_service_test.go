package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/rotaboard/rota-api/internal/models"
	appErrors "github.com/rotaboard/rota-api/pkg/errors"
)

type userRepoStub struct {
	users      map[string]models.User
	lastLogins map[string]time.Time
}

func newUserRepoStub(users ...models.User) *userRepoStub {
	byID := map[string]models.User{}
	for _, u := range users {
		byID[u.ID] = u
	}
	return &userRepoStub{users: byID, lastLogins: map[string]time.Time{}}
}

func (s *userRepoStub) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *userRepoStub) FindByID(_ context.Context, id string) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &u, nil
}

func (s *userRepoStub) UpdateLastLogin(_ context.Context, id string, ts time.Time) error {
	s.lastLogins[id] = ts
	return nil
}

func testAuthConfig() AuthConfig {
	return AuthConfig{
		TokenSecret: "test-secret",
		TokenExpiry: time.Hour,
		Issuer:      "rota-api",
	}
}

func mkUser(t *testing.T, id, email, password string, role models.UserRole) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	personID := testPersonID
	return models.User{
		ID:           id,
		Email:        email,
		PasswordHash: string(hash),
		FullName:     "Test User",
		Role:         role,
		PersonID:     &personID,
		Active:       true,
	}
}

func TestAuthLoginIssuesValidToken(t *testing.T) {
	repo := newUserRepoStub(mkUser(t, "u1", "admin@example.com", "hunter2", models.RoleAdmin))
	service := NewAuthService(repo, nil, nil, testAuthConfig())

	resp, err := service.Login(context.Background(), models.LoginRequest{
		Email:    "admin@example.com",
		Password: "hunter2",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, models.RoleAdmin, resp.User.Role)
	assert.Contains(t, repo.lastLogins, "u1")

	claims, err := service.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	require.NotNil(t, claims.PersonID)
	assert.Equal(t, testPersonID, *claims.PersonID)
}

func TestAuthLoginRejectsBadPassword(t *testing.T) {
	repo := newUserRepoStub(mkUser(t, "u1", "admin@example.com", "hunter2", models.RoleAdmin))
	service := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := service.Login(context.Background(), models.LoginRequest{
		Email:    "admin@example.com",
		Password: "wrong",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)

	// unknown emails get the same answer
	_, err = service.Login(context.Background(), models.LoginRequest{
		Email:    "ghost@example.com",
		Password: "hunter2",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthLoginRejectsInactiveAccount(t *testing.T) {
	user := mkUser(t, "u1", "admin@example.com", "hunter2", models.RoleAdmin)
	user.Active = false
	service := NewAuthService(newUserRepoStub(user), nil, nil, testAuthConfig())

	_, err := service.Login(context.Background(), models.LoginRequest{
		Email:    "admin@example.com",
		Password: "hunter2",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestAuthValidateTokenRejectsTampering(t *testing.T) {
	repo := newUserRepoStub(mkUser(t, "u1", "admin@example.com", "hunter2", models.RoleAdmin))
	service := NewAuthService(repo, nil, nil, testAuthConfig())

	resp, err := service.Login(context.Background(), models.LoginRequest{
		Email:    "admin@example.com",
		Password: "hunter2",
	})
	require.NoError(t, err)

	_, err = service.ValidateToken(resp.AccessToken + "x")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)

	other := NewAuthService(repo, nil, nil, AuthConfig{TokenSecret: "other-secret", TokenExpiry: time.Hour})
	_, err = other.ValidateToken(resp.AccessToken)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthMe(t *testing.T) {
	repo := newUserRepoStub(mkUser(t, "u1", "admin@example.com", "hunter2", models.RoleAdmin))
	service := NewAuthService(repo, nil, nil, testAuthConfig())

	info, err := service.Me(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", info.Email)

	_, err = service.Me(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
