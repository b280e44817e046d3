package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jaehoon-dev/commerce-api/internal/domain"
	"github.com/jaehoon-dev/commerce-api/pkg/security"
)

var (
	// ErrInvalidCredentials covers both "no such account" and "wrong
	// password"; callers must never reveal which one happened.
	ErrInvalidCredentials = errors.New("Invalid credentials")
	// ErrAuthenticationFailed covers every other login failure (store
	// errors, token issuance) so internals never leak through the boundary.
	ErrAuthenticationFailed = errors.New("Authentication failed")
	ErrMFARequired          = errors.New("mfa_challenge_required")
	ErrInvalidMFACode       = errors.New("invalid mfa code")
	ErrEmailTaken           = errors.New("email already registered")
)

// AuthUsecase verifies credentials and issues access tokens. Tokens are
// self-contained; nothing is stored server-side for a session.
type AuthUsecase struct {
	userRepo domain.UserRepository
	codec    *security.TokenCodec

	// now is swappable so tests can pin the clock.
	now func() time.Time
}

func NewAuthUsecase(u domain.UserRepository, codec *security.TokenCodec) *AuthUsecase {
	return &AuthUsecase{
		userRepo: u,
		codec:    codec,
		now:      time.Now,
	}
}

// Login validates an email/password pair and, when the account has no MFA
// requirement, issues a session immediately.
func (u *AuthUsecase) Login(ctx context.Context, email, password string) (*domain.AuthResponse, error) {
	user, err := u.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Burn a hash comparison so an unknown account takes the same
			// time as a wrong password.
			security.CompareDummy(password)
			return nil, ErrInvalidCredentials
		}
		return nil, ErrAuthenticationFailed
	}

	match, err := security.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		_ = u.userRepo.LogSecurityEvent(ctx, user.ID, "LOGIN_FAILED", "", nil)
		return nil, ErrInvalidCredentials
	}

	if user.MFAEnabled {
		return nil, ErrMFARequired
	}

	return u.issueSession(ctx, user)
}

// VerifyMFA completes the second step for accounts with TOTP enabled.
func (u *AuthUsecase) VerifyMFA(ctx context.Context, email, code string) (*domain.AuthResponse, error) {
	user, err := u.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, ErrAuthenticationFailed
	}

	if !user.MFAEnabled || !security.VerifyMFACode(code, user.MFASecret) {
		_ = u.userRepo.LogSecurityEvent(ctx, user.ID, "MFA_FAILED", "", nil)
		return nil, ErrInvalidMFACode
	}

	return u.issueSession(ctx, user)
}

// Register creates a new account with role USER and a hashed password.
func (u *AuthUsecase) Register(ctx context.Context, email, displayName, password string) (*domain.User, error) {
	if _, err := u.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: hash,
		Role:         domain.RoleUser,
	}

	if err := u.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	_ = u.userRepo.LogSecurityEvent(ctx, user.ID, "USER_REGISTERED", "", nil)
	return user, nil
}

// SetupMFA generates a pending TOTP secret for the user and returns it with
// the provisioning URI. MFA stays disabled until EnableMFA verifies a code.
func (u *AuthUsecase) SetupMFA(ctx context.Context, userID string) (secret, uri string, err error) {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", "", err
	}

	secret, err = security.GenerateMFASecret()
	if err != nil {
		return "", "", err
	}

	user.MFASecret = secret
	user.MFAEnabled = false
	if err := u.userRepo.Update(ctx, user); err != nil {
		return "", "", err
	}

	return secret, security.GetMFAQRCodeURI(user.Email, secret), nil
}

// EnableMFA verifies the first code against the pending secret and turns
// MFA on for the account.
func (u *AuthUsecase) EnableMFA(ctx context.Context, userID, code string) error {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if user.MFASecret == "" || !security.VerifyMFACode(code, user.MFASecret) {
		return ErrInvalidMFACode
	}

	user.MFAEnabled = true
	if err := u.userRepo.Update(ctx, user); err != nil {
		return err
	}

	_ = u.userRepo.LogSecurityEvent(ctx, user.ID, "MFA_ENABLED", "", nil)
	return nil
}

// issueSession signs an access token carrying the user's prefixed role claim.
func (u *AuthUsecase) issueSession(ctx context.Context, user *domain.User) (*domain.AuthResponse, error) {
	roles := []string{user.RoleClaim()}

	token, err := u.codec.Issue(user.ID, roles, u.now())
	if err != nil {
		return nil, ErrAuthenticationFailed
	}

	_ = u.userRepo.LogSecurityEvent(ctx, user.ID, "LOGIN_SUCCESS", "", nil)

	return &domain.AuthResponse{
		Token:       token,
		Type:        "Bearer",
		PrincipalID: user.ID,
		Roles:       roles,
	}, nil
}
