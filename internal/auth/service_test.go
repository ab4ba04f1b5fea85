package auth

import (
	"context"
	"testing"
	"time"

	"flashback-app/internal/config"
	"flashback-app/internal/database"
	"flashback-app/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// stubDB embeds the Database interface and backs only the lookups the auth
// service performs.
type stubDB struct {
	database.Database

	usersByID    map[int]*models.User
	usersByEmail map[string]*models.User
}

func (s *stubDB) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	user, ok := s.usersByID[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return user, nil
}

func (s *stubDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := s.usersByEmail[email]
	if !ok {
		return nil, database.ErrNotFound
	}
	return user, nil
}

func newTestService(t *testing.T) (*Service, *stubDB) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		ID:           3,
		Username:     "ada",
		Email:        "ada@example.com",
		PasswordHash: string(hash),
	}
	db := &stubDB{
		usersByID:    map[int]*models.User{3: user},
		usersByEmail: map[string]*models.User{"ada@example.com": user},
	}
	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:    []byte("test-secret"),
			ExpiresIn: time.Hour,
		},
	}
	return NewService(db, cfg), db
}

func TestLoginAndResolveRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)

	resp, err := svc.Login(context.Background(), &models.LoginRequest{
		Email:    "ada@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	assert.Empty(t, resp.User.PasswordHash)

	user, err := svc.Resolve(context.Background(), resp.Token)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, 3, user.ID)
	assert.Equal(t, "ada", user.Username)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Login(context.Background(), &models.LoginRequest{
		Email:    "ada@example.com",
		Password: "wrong",
	})
	assert.EqualError(t, err, "invalid credentials")
}

func TestResolveAnonymous(t *testing.T) {
	svc, _ := newTestService(t)

	for _, token := range []string{"", "garbage", "a.b.c"} {
		user, err := svc.Resolve(context.Background(), token)
		assert.NoError(t, err, token)
		assert.Nil(t, user, token)
	}
}

func TestResolveUnknownUser(t *testing.T) {
	svc, db := newTestService(t)

	resp, err := svc.Login(context.Background(), &models.LoginRequest{
		Email:    "ada@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)

	// Token is valid but the account is gone: anonymous, not an error.
	delete(db.usersByID, 3)
	user, err := svc.Resolve(context.Background(), resp.Token)
	assert.NoError(t, err)
	assert.Nil(t, user)
}

func TestValidateTokenRejectsForeignSignature(t *testing.T) {
	svc, _ := newTestService(t)

	other := NewService(nil, &config.Config{
		JWT: config.JWTConfig{Secret: []byte("other-secret"), ExpiresIn: time.Hour},
	})
	token, err := other.generateToken(&models.User{ID: 3, Username: "ada"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService(t)

	tests := []struct {
		name string
		req  models.RegisterRequest
	}{
		{"missing fields", models.RegisterRequest{Username: "ada"}},
		{"bad email", models.RegisterRequest{Username: "ada", Email: "not-an-email", Password: "longenough"}},
		{"short password", models.RegisterRequest{Username: "ada", Email: "ada@example.com", Password: "short"}},
		{"short username", models.RegisterRequest{Username: "ab", Email: "ada@example.com", Password: "longenough"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), &tt.req)
			assert.Error(t, err)
		})
	}
}
