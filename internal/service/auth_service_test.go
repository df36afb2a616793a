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

	"github.com/Gilbert-2/security-threat-detection-sub000/internal/models"
	appErrors "github.com/Gilbert-2/security-threat-detection-sub000/pkg/errors"
)

type mockAuthRepo struct {
	usersByEmail map[string]*models.User
	usersByID    map[string]*models.User
	refresh      map[string]*models.RefreshToken

	revokedAll    []string
	revokedTokens []string
	lastLogins    []string
	auditLogs     []*models.AuditLog
}

func newMockAuthRepo() *mockAuthRepo {
	return &mockAuthRepo{
		usersByEmail: map[string]*models.User{},
		usersByID:    map[string]*models.User{},
		refresh:      map[string]*models.RefreshToken{},
	}
}

func (m *mockAuthRepo) addUser(user *models.User) {
	m.usersByEmail[user.Email] = user
	m.usersByID[user.ID] = user
}

func (m *mockAuthRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := m.usersByEmail[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (m *mockAuthRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	user, ok := m.usersByID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (m *mockAuthRepo) Create(_ context.Context, user *models.User) error {
	m.addUser(user)
	return nil
}

func (m *mockAuthRepo) UpdateLastLogin(_ context.Context, id string, _ time.Time) error {
	m.lastLogins = append(m.lastLogins, id)
	return nil
}

func (m *mockAuthRepo) RevokeUserRefreshTokens(_ context.Context, userID string) error {
	m.revokedAll = append(m.revokedAll, userID)
	return nil
}

func (m *mockAuthRepo) CreateRefreshToken(_ context.Context, token *models.RefreshToken) error {
	m.refresh[token.Token] = token
	return nil
}

func (m *mockAuthRepo) FindRefreshToken(_ context.Context, token string) (*models.RefreshToken, error) {
	rt, ok := m.refresh[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return rt, nil
}

func (m *mockAuthRepo) RevokeRefreshToken(_ context.Context, id string, _ time.Time) error {
	m.revokedTokens = append(m.revokedTokens, id)
	return nil
}

func (m *mockAuthRepo) CreateAuditLog(_ context.Context, log *models.AuditLog) error {
	m.auditLogs = append(m.auditLogs, log)
	return nil
}

func testAuthConfig() AuthConfig {
	return AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "dashboard-api-test",
	}
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func activeUser(t *testing.T) *models.User {
	return &models.User{
		ID:           "user-1",
		Email:        "ops@example.com",
		PasswordHash: hashPassword(t, "correct horse"),
		FirstName:    "Olive",
		LastName:     "Operator",
		Role:         models.RoleOperator,
		Active:       true,
	}
}

func TestLoginIssuesValidatableToken(t *testing.T) {
	repo := newMockAuthRepo()
	repo.addUser(activeUser(t))
	svc := NewAuthService(repo, nil, zap.NewNop(), testAuthConfig())

	result, err := svc.Login(context.Background(), models.LoginRequest{Email: "ops@example.com", Password: "correct horse"})
	require.NoError(t, err)

	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.Equal(t, models.RoleOperator, result.User.Role)
	assert.Contains(t, repo.refresh, result.RefreshToken)
	assert.Equal(t, []string{"user-1"}, repo.lastLogins)
	require.Len(t, repo.auditLogs, 1)
	assert.Equal(t, models.AuditActionLogin, repo.auditLogs[0].Action)

	claims, err := svc.ValidateToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleOperator, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newMockAuthRepo()
	repo.addUser(activeUser(t))
	svc := NewAuthService(repo, nil, zap.NewNop(), testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ops@example.com", Password: "wrong"})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestLoginUnknownEmailMatchesWrongPassword(t *testing.T) {
	svc := NewAuthService(newMockAuthRepo(), nil, zap.NewNop(), testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "nobody@example.com", Password: "whatever"})
	require.Error(t, err)

	// Unknown email and wrong password are indistinguishable to the caller.
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestLoginInactiveAccount(t *testing.T) {
	repo := newMockAuthRepo()
	user := activeUser(t)
	user.Active = false
	repo.addUser(user)
	svc := NewAuthService(repo, nil, zap.NewNop(), testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ops@example.com", Password: "correct horse"})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErr.Code)
}

func TestLoginSingleSessionRevokesPriorTokens(t *testing.T) {
	repo := newMockAuthRepo()
	repo.addUser(activeUser(t))
	cfg := testAuthConfig()
	cfg.SingleSession = true
	svc := NewAuthService(repo, nil, zap.NewNop(), cfg)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ops@example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, []string{"user-1"}, repo.revokedAll)
}

func TestProfileIncompleteRecord(t *testing.T) {
	repo := newMockAuthRepo()
	user := activeUser(t)
	user.Role = "auditor"
	repo.addUser(user)
	svc := NewAuthService(repo, nil, zap.NewNop(), testAuthConfig())

	_, err := svc.Profile(context.Background(), "user-1")
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrIncompleteProfile.Code, appErr.Code)
}

func TestProfileInactiveAccount(t *testing.T) {
	repo := newMockAuthRepo()
	user := activeUser(t)
	user.Active = false
	repo.addUser(user)
	svc := NewAuthService(repo, nil, zap.NewNop(), testAuthConfig())

	_, err := svc.Profile(context.Background(), "user-1")
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErr.Code)
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	repo := newMockAuthRepo()
	repo.addUser(activeUser(t))
	svc := NewAuthService(repo, nil, zap.NewNop(), testAuthConfig())

	result, err := svc.Login(context.Background(), models.LoginRequest{Email: "ops@example.com", Password: "correct horse"})
	require.NoError(t, err)

	otherCfg := testAuthConfig()
	otherCfg.AccessTokenSecret = "different-secret"
	other := NewAuthService(repo, nil, zap.NewNop(), otherCfg)

	_, err = other.ValidateToken(result.AccessToken)
	require.Error(t, err)
}
