package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/campusfees/fee-management-api/internal/models"
	appErrors "github.com/campusfees/fee-management-api/pkg/errors"
)

type mockUserRepo struct {
	users    map[string]models.User
	tokens   map[string]models.RefreshToken
	revoked  []string
	loginTS  *time.Time
	tokenErr error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: map[string]models.User{}, tokens: map[string]models.RefreshToken{}}
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return &u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.loginTS = &ts
	return nil
}

func (m *mockUserRepo) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	m.revoked = append(m.revoked, userID)
	return nil
}

func (m *mockUserRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if m.tokenErr != nil {
		return m.tokenErr
	}
	m.tokens[token.Token] = *token
	return nil
}

func (m *mockUserRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if t, ok := m.tokens[token]; ok {
		return &t, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	for k, t := range m.tokens {
		if t.ID == id {
			t.Revoked = true
			t.RevokedAt = &revokedAt
			m.tokens[k] = t
		}
	}
	return nil
}

func testAuthConfig() AuthConfig {
	return AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "fee-management-api",
	}
}

func seedAdmin(t *testing.T, repo *mockUserRepo) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	user := models.User{
		ID:           "admin-1",
		Email:        "bursar@college.edu",
		PasswordHash: string(hash),
		FullName:     "College Bursar",
		Role:         models.RoleAdmin,
		Active:       true,
	}
	repo.users[user.ID] = user
	return user
}

func TestAuthServiceLogin(t *testing.T) {
	repo := newMockUserRepo()
	user := seedAdmin(t, repo)
	svc := NewAuthService(repo, newTestStore(t), nil, zap.NewNop(), testAuthConfig())

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: user.Email, Password: "s3cret"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, user.ID, resp.User.ID)
	require.NotNil(t, repo.loginTS)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	repo := newMockUserRepo()
	user := seedAdmin(t, repo)
	svc := NewAuthService(repo, newTestStore(t), nil, zap.NewNop(), testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: user.Email, Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginStudent(t *testing.T) {
	st := newTestStore(t)
	svc := NewAuthService(newMockUserRepo(), st, nil, zap.NewNop(), testAuthConfig())

	resp, err := svc.LoginStudent(models.StudentLoginRequest{RegNo: "21A21A05D3"})
	require.NoError(t, err)
	assert.Equal(t, "Abhilash", resp.Student.Name)
	assert.NotEmpty(t, resp.AccessToken)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, claims.Role)
	assert.Equal(t, resp.Student.ID, claims.UserID)

	session, ok := st.CurrentStudent()
	require.True(t, ok)
	assert.Equal(t, resp.Student.ID, session.ID)
}

func TestAuthServiceLoginStudentInvalidRegNo(t *testing.T) {
	st := newTestStore(t)
	svc := NewAuthService(newMockUserRepo(), st, nil, zap.NewNop(), testAuthConfig())

	_, err := svc.LoginStudent(models.StudentLoginRequest{RegNo: "NOPE"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidStudentID.Code, appErr.Code)
	assert.Equal(t, "Invalid Student ID", appErr.Message)

	_, ok := st.CurrentStudent()
	assert.False(t, ok)
}

func TestAuthServiceRefreshTokenRotation(t *testing.T) {
	repo := newMockUserRepo()
	user := seedAdmin(t, repo)
	svc := NewAuthService(repo, newTestStore(t), nil, zap.NewNop(), testAuthConfig())

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: user.Email, Password: "s3cret"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// the used refresh token was revoked and cannot be replayed
	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err)
}

func TestAuthServiceLogout(t *testing.T) {
	repo := newMockUserRepo()
	user := seedAdmin(t, repo)
	svc := NewAuthService(repo, newTestStore(t), nil, zap.NewNop(), testAuthConfig())

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: user.Email, Password: "s3cret"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), login.RefreshToken, user.ID))

	err = svc.Logout(context.Background(), login.RefreshToken, "someone-else")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLogoutStudentClearsSession(t *testing.T) {
	st := newTestStore(t)
	svc := NewAuthService(newMockUserRepo(), st, nil, zap.NewNop(), testAuthConfig())

	_, err := svc.LoginStudent(models.StudentLoginRequest{RegNo: "21A21A05D4"})
	require.NoError(t, err)
	svc.LogoutStudent()

	_, ok := st.CurrentStudent()
	assert.False(t, ok)
}
