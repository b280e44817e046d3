package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaehoon-dev/commerce-api/internal/domain"
	"github.com/jaehoon-dev/commerce-api/pkg/security"
)

// fakeUserRepo is an in-memory domain.UserRepository for tests.
type fakeUserRepo struct {
	users  map[string]*domain.User // keyed by email
	err    error                   // when set, every lookup fails with it
	events []string
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[string]*domain.User{}}
	for _, u := range users {
		r.users[u.Email] = u
	}
	return r
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeUserRepo) List(_ context.Context, _, _ int) ([]*domain.User, error) {
	return nil, nil
}

func (r *fakeUserRepo) Create(_ context.Context, u *domain.User) error {
	r.users[u.Email] = u
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *domain.User) error {
	r.users[u.Email] = u
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	for email, u := range r.users {
		if u.ID == id {
			delete(r.users, email)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *fakeUserRepo) LogSecurityEvent(_ context.Context, _, eventType, _ string, _ map[string]interface{}) error {
	r.events = append(r.events, eventType)
	return nil
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password)
	require.NoError(t, err)
	return hash
}

func TestLoginSuccess(t *testing.T) {
	repo := newFakeUserRepo(&domain.User{
		ID:           "1",
		Email:        "admin@example.com",
		PasswordHash: mustHash(t, "correct horse"),
		Role:         domain.RoleAdmin,
	})

	codec := security.NewTokenCodec("test-secret", 86400*time.Second)
	u := NewAuthUsecase(repo, codec)
	t0 := time.Now().Truncate(time.Second)
	u.now = func() time.Time { return t0 }

	resp, err := u.Login(context.Background(), "admin@example.com", "correct horse")
	require.NoError(t, err)

	assert.Equal(t, "Bearer", resp.Type)
	assert.Equal(t, "1", resp.PrincipalID)
	assert.Equal(t, []string{"ROLE_ADMIN"}, resp.Roles)

	claims, err := codec.Decode(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "1", claims.Subject)
	assert.Equal(t, []string{"ROLE_ADMIN"}, claims.Roles)
	assert.Equal(t, t0.Unix(), claims.IssuedAt.Unix())
	assert.False(t, claims.IsExpired(t0))

	assert.Contains(t, repo.events, "LOGIN_SUCCESS")
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newFakeUserRepo(&domain.User{
		ID:           "1",
		Email:        "user@example.com",
		PasswordHash: mustHash(t, "right"),
		Role:         domain.RoleUser,
	})
	u := NewAuthUsecase(repo, security.NewTokenCodec("test-secret", time.Hour))

	_, err := u.Login(context.Background(), "user@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Contains(t, repo.events, "LOGIN_FAILED")
}

func TestLoginUnknownEmail(t *testing.T) {
	repo := newFakeUserRepo()
	u := NewAuthUsecase(repo, security.NewTokenCodec("test-secret", time.Hour))

	_, err := u.Login(context.Background(), "nobody@example.com", "whatever")
	// Same error as a wrong password; account existence must not leak.
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginRepositoryFailure(t *testing.T) {
	repo := newFakeUserRepo()
	repo.err = errors.New("connection refused")
	u := NewAuthUsecase(repo, security.NewTokenCodec("test-secret", time.Hour))

	_, err := u.Login(context.Background(), "user@example.com", "whatever")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestLoginMFARequired(t *testing.T) {
	repo := newFakeUserRepo(&domain.User{
		ID:           "1",
		Email:        "user@example.com",
		PasswordHash: mustHash(t, "right"),
		Role:         domain.RoleUser,
		MFAEnabled:   true,
		MFASecret:    "JBSWY3DPEHPK3PXP",
	})
	u := NewAuthUsecase(repo, security.NewTokenCodec("test-secret", time.Hour))

	_, err := u.Login(context.Background(), "user@example.com", "right")
	assert.ErrorIs(t, err, ErrMFARequired)
}

func TestVerifyMFA(t *testing.T) {
	secret, err := security.GenerateMFASecret()
	require.NoError(t, err)

	repo := newFakeUserRepo(&domain.User{
		ID:         "1",
		Email:      "user@example.com",
		Role:       domain.RoleUser,
		MFAEnabled: true,
		MFASecret:  secret,
	})
	u := NewAuthUsecase(repo, security.NewTokenCodec("test-secret", time.Hour))

	_, err = u.VerifyMFA(context.Background(), "user@example.com", "000000")
	assert.ErrorIs(t, err, ErrInvalidMFACode)

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)

	resp, err := u.VerifyMFA(context.Background(), "user@example.com", code)
	require.NoError(t, err)
	assert.Equal(t, "1", resp.PrincipalID)
}

func TestRegister(t *testing.T) {
	repo := newFakeUserRepo()
	u := NewAuthUsecase(repo, security.NewTokenCodec("test-secret", time.Hour))

	user, err := u.Register(context.Background(), "new@example.com", "New User", "s3cret-pass")
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)

	match, err := security.ComparePassword("s3cret-pass", user.PasswordHash)
	require.NoError(t, err)
	assert.True(t, match)

	_, err = u.Register(context.Background(), "new@example.com", "Dup", "s3cret-pass")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestEnableMFA(t *testing.T) {
	repo := newFakeUserRepo(&domain.User{
		ID:    "1",
		Email: "user@example.com",
		Role:  domain.RoleUser,
	})
	u := NewAuthUsecase(repo, security.NewTokenCodec("test-secret", time.Hour))

	secret, uri, err := u.SetupMFA(context.Background(), "1")
	require.NoError(t, err)
	assert.NotEmpty(t, secret)
	assert.Contains(t, uri, "otpauth://totp/")

	// MFA must stay off until a code is verified.
	user, err := repo.GetByID(context.Background(), "1")
	require.NoError(t, err)
	assert.False(t, user.MFAEnabled)

	err = u.EnableMFA(context.Background(), "1", "000000")
	assert.ErrorIs(t, err, ErrInvalidMFACode)

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	require.NoError(t, u.EnableMFA(context.Background(), "1", code))

	user, err = repo.GetByID(context.Background(), "1")
	require.NoError(t, err)
	assert.True(t, user.MFAEnabled)
}
