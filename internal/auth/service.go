package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service errors.
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserDisabled       = errors.New("user account is disabled")
	ErrAccountLocked      = errors.New("account temporarily locked")
	ErrUserExists         = errors.New("username or email already exists")
	ErrSetupComplete      = errors.New("setup already completed")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidUser        = errors.New("invalid user")
)

// Lockout policy for repeated bad passwords.
const (
	maxFailedLogins = 5
	lockoutDuration = 15 * time.Minute
)

// TokenPair contains an access token and refresh token.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"` // Access token TTL in seconds
}

// Service provides authentication business logic.
type Service struct {
	store  *UserStore
	tokens *TokenService
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates an auth Service.
func NewService(store *UserStore, tokens *TokenService, logger *zap.Logger) *Service {
	return &Service{store: store, tokens: tokens, logger: logger, now: time.Now}
}

// Tokens returns the token service for middleware use.
func (s *Service) Tokens() *TokenService {
	return s.tokens
}

// Login authenticates a user and returns a token pair. Five consecutive
// bad passwords lock the account for fifteen minutes.
func (s *Service) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if user.Disabled {
		return nil, ErrUserDisabled
	}
	if user.Locked(s.now()) {
		return nil, ErrAccountLocked
	}

	if !CheckPassword(user.PasswordHash, password) {
		attempts, err := s.store.RecordFailedLogin(ctx, user.ID)
		if err != nil {
			s.logger.Warn("record failed login", zap.Error(err))
		}
		if attempts >= maxFailedLogins {
			_ = s.store.LockAccount(ctx, user.ID, s.now().Add(lockoutDuration).UTC())
			s.logger.Warn("account locked after failed logins",
				zap.String("username", username), zap.Int("attempts", attempts))
		}
		return nil, ErrInvalidCredentials
	}

	if user.FailedLoginAttempts > 0 || user.LockedUntil != nil {
		_ = s.store.ClearFailedLogins(ctx, user.ID)
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, err
	}

	_ = s.store.UpdateLastLogin(ctx, user.ID)
	s.logger.Info("user logged in", zap.String("username", username), zap.String("user_id", user.ID))
	return pair, nil
}

// Setup creates the initial admin account. Only works when no users exist.
func (s *Service) Setup(ctx context.Context, username, email, password string) (*User, error) {
	count, err := s.store.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil, ErrSetupComplete
	}

	user, err := s.createUser(ctx, username, email, password, RoleAdmin)
	if err != nil {
		return nil, err
	}
	s.logger.Info("initial admin account created", zap.String("username", username))
	return user, nil
}

// CreateUser adds an editor, viewer or additional admin.
func (s *Service) CreateUser(ctx context.Context, username, email, password string, role Role) (*User, error) {
	user, err := s.createUser(ctx, username, email, password, role)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user created", zap.String("username", username), zap.String("role", string(role)))
	return user, nil
}

func (s *Service) createUser(ctx context.Context, username, email, password string, role Role) (*User, error) {
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidUser)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: email %q", ErrInvalidUser, email)
	}
	if !ValidRoles[role] {
		return nil, fmt.Errorf("%w: role %q", ErrInvalidUser, role)
	}
	if err := ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidUser, err)
	}

	if _, err := s.store.GetUserByUsername(ctx, username); err == nil {
		return nil, ErrUserExists
	}

	hash, err := HashPassword(password, 0)
	if err != nil {
		return nil, err
	}

	user := &User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		// The username was free, so a failure here is most likely the
		// unique email constraint.
		return nil, fmt.Errorf("%w: %w", ErrUserExists, err)
	}
	return user, nil
}

// Refresh validates a refresh token and returns a new token pair (rotation).
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	rt, err := s.store.GetRefreshToken(ctx, HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("lookup refresh token: %w", err)
	}

	if rt.Revoked || rt.ExpiresAt.Before(s.now()) {
		return nil, ErrInvalidToken
	}

	_ = s.store.RevokeRefreshToken(ctx, rt.ID)

	user, err := s.store.GetUserByID(ctx, rt.UserID)
	if err != nil {
		return nil, fmt.Errorf("lookup user for refresh: %w", err)
	}
	if user.Disabled {
		return nil, ErrUserDisabled
	}

	return s.issueTokenPair(ctx, user)
}

// Logout revokes a refresh token. Unknown tokens are ignored.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	rt, err := s.store.GetRefreshToken(ctx, HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("lookup refresh token: %w", err)
	}
	return s.store.RevokeRefreshToken(ctx, rt.ID)
}

// NeedsSetup returns true if no users exist (first-run state).
func (s *Service) NeedsSetup(ctx context.Context) (bool, error) {
	count, err := s.store.CountUsers(ctx)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.store.ListUsers(ctx)
}

// GetUser returns a user by ID.
func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// UpdateUser updates a user's email, role, and disabled status. Disabling
// a user revokes their refresh tokens.
func (s *Service) UpdateUser(ctx context.Context, id, email string, role Role, disabled bool) (*User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Email = email
	user.Role = role
	user.Disabled = disabled
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	if disabled {
		_ = s.store.RevokeUserRefreshTokens(ctx, id)
	}
	return user, nil
}

// DeleteUser removes a user by ID.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	if err := s.store.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// PurgeTokens deletes expired and revoked refresh tokens.
func (s *Service) PurgeTokens(ctx context.Context) {
	n, err := s.store.CleanExpiredTokens(ctx)
	if err != nil {
		s.logger.Warn("purge refresh tokens failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Debug("purged refresh tokens", zap.Int64("count", n))
	}
}

func (s *Service) issueTokenPair(ctx context.Context, user *User) (*TokenPair, error) {
	accessToken, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, err
	}

	refresh, err := s.tokens.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	if err := s.store.SaveRefreshToken(ctx, uuid.New().String(), user.ID, refresh.Hash, refresh.ExpiresAt); err != nil {
		return nil, fmt.Errorf("save refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refresh.Raw,
		ExpiresIn:    int(s.tokens.AccessTokenTTL().Seconds()),
	}, nil
}
