package auth

import (
	"context"
	"crypto/md5"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-api/internal/auth/jwt"
	"github.com/gokatarajesh/quiz-api/internal/db/store"
	httperrors "github.com/gokatarajesh/quiz-api/pkg/http/errors"
)

// Users is the account storage the auth flows need.
type Users interface {
	Create(ctx context.Context, params store.CreateUserParams) (store.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (store.User, error)
	GetByEmail(ctx context.Context, email string) (store.User, error)
	GetByProvider(ctx context.Context, provider, providerID string) (store.User, error)
	LinkProvider(ctx context.Context, id uuid.UUID, provider, providerID string) (store.User, error)
}

// RefreshTokens stores issued refresh tokens.
type RefreshTokens interface {
	Create(ctx context.Context, value string, userID uuid.UUID, expiresAt time.Time) (store.RefreshToken, error)
	Get(ctx context.Context, value string) (store.RefreshToken, error)
	Revoke(ctx context.Context, value string) error
}

// Service handles registration, login and session tokens.
type Service struct {
	users      Users
	tokens     RefreshTokens
	tokenMgr   *jwt.Manager
	hasher     *Hasher
	refreshTTL time.Duration
	logger     zerolog.Logger
	now        func() time.Time
}

// ServiceOptions configures the auth service.
type ServiceOptions struct {
	TokenConfig jwt.TokenConfig
	RefreshTTL  time.Duration // default: 365 days
	BcryptCost  int
}

// NewService creates an authentication service.
func NewService(users Users, tokens RefreshTokens, opts ServiceOptions, logger zerolog.Logger) *Service {
	if opts.RefreshTTL == 0 {
		opts.RefreshTTL = 365 * 24 * time.Hour
	}
	return &Service{
		users:      users,
		tokens:     tokens,
		tokenMgr:   jwt.NewManager(opts.TokenConfig),
		hasher:     NewHasher(opts.BcryptCost),
		refreshTTL: opts.RefreshTTL,
		logger:     logger.With().Str("component", "auth_service").Logger(),
		now:        time.Now,
	}
}

// Hasher exposes the password hasher for flows that change passwords.
func (s *Service) Hasher() *Hasher { return s.hasher }

// Tokens exposes the token manager for secure link generation.
func (s *Service) Tokens() *jwt.Manager { return s.tokenMgr }

// Register creates an email/password account and logs it in.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Session, error) {
	email := strings.TrimSpace(in.Email)
	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return Session{}, httperrors.Conflict(httperrors.ErrCodeEmailRegistered, MsgEmailRegistered)
	case !errors.Is(err, store.ErrNotFound):
		return Session{}, httperrors.Internal("lookup email", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if errors.Is(err, ErrWeakPassword) {
		return Session{}, httperrors.Validation(err.Error(), nil)
	}
	if err != nil {
		return Session{}, httperrors.Internal("hash password", err)
	}

	user, err := s.users.Create(ctx, store.CreateUserParams{
		Email:             email,
		Username:          in.Username,
		Firstname:         in.Firstname,
		Lastname:          in.Lastname,
		PasswordHash:      &hash,
		VerificationToken: VerificationToken(email),
	})
	if errors.Is(err, store.ErrDuplicate) {
		return Session{}, httperrors.Conflict(httperrors.ErrCodeEmailRegistered, MsgEmailRegistered)
	}
	if err != nil {
		return Session{}, httperrors.Internal("create user", err)
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("user registered")
	return s.IssueSession(ctx, user)
}

// Login authenticates a user with email/password.
func (s *Service) Login(ctx context.Context, in LoginInput) (Session, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(in.Email))
	if errors.Is(err, store.ErrNotFound) {
		return Session{}, httperrors.Validation(MsgIncorrectEmail, nil).WithCode(httperrors.ErrCodeInvalidCredentials)
	}
	if err != nil {
		return Session{}, httperrors.Internal("lookup user", err)
	}

	if user.PasswordHash == nil || s.hasher.Verify(*user.PasswordHash, in.Password) != nil {
		return Session{}, httperrors.Validation(MsgIncorrectPassword, nil).WithCode(httperrors.ErrCodeInvalidCredentials)
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("user logged in")
	return s.IssueSession(ctx, user)
}

// IssueSession mints an access token and stores a new refresh token for user.
func (s *Service) IssueSession(ctx context.Context, user store.User) (Session, error) {
	access, accessExp, err := s.tokenMgr.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return Session{}, httperrors.Internal("sign access token", err)
	}

	refresh, err := randomToken()
	if err != nil {
		return Session{}, httperrors.Internal("generate refresh token", err)
	}
	refreshExp := s.now().Add(s.refreshTTL)
	if _, err := s.tokens.Create(ctx, refresh, user.ID, refreshExp); err != nil {
		return Session{}, httperrors.Internal("store refresh token", err)
	}

	return Session{
		UserID:         user.ID,
		Role:           user.Role,
		AccessToken:    access,
		AccessExpires:  accessExp,
		RefreshToken:   refresh,
		RefreshExpires: refreshExp,
	}, nil
}

// Refresh exchanges a stored refresh token for a new access token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (AccessToken, Actor, error) {
	if refreshToken == "" {
		return AccessToken{}, Actor{}, httperrors.Validation(MsgMissingField, nil).WithCode(httperrors.ErrCodeMissingField)
	}
	user, err := s.refreshOwner(ctx, refreshToken)
	if err != nil {
		return AccessToken{}, Actor{}, err
	}

	token, expires, err := s.tokenMgr.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return AccessToken{}, Actor{}, httperrors.Internal("sign access token", err)
	}
	return AccessToken{Token: token, Expires: expires}, Actor{ID: user.ID, Role: user.Role}, nil
}

// refreshOwner resolves the user behind a live refresh token.
func (s *Service) refreshOwner(ctx context.Context, value string) (store.User, error) {
	invalid := httperrors.Unauthorized(MsgInvalidToken).WithCode(httperrors.ErrCodeInvalidToken)

	token, err := s.tokens.Get(ctx, value)
	if errors.Is(err, store.ErrNotFound) {
		return store.User{}, invalid
	}
	if err != nil {
		return store.User{}, httperrors.Internal("lookup refresh token", err)
	}
	if token.IsRevoked || !s.now().Before(token.ExpiresAt) {
		return store.User{}, invalid
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return store.User{}, invalid
	}
	if err != nil {
		return store.User{}, httperrors.Internal("lookup user", err)
	}
	return user, nil
}

// Logout revokes the refresh token. Unknown tokens are ignored.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	err := s.tokens.Revoke(ctx, refreshToken)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return httperrors.Internal("revoke refresh token", err)
	}
	return nil
}

// Authenticate resolves the caller from an access token, loading the user so
// that deleted accounts and role changes take effect immediately.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (Actor, error) {
	claims, err := s.tokenMgr.ValidateAccessToken(accessToken)
	if err != nil {
		return Actor{}, httperrors.Unauthorized(MsgUnauthenticated).WithCode(httperrors.ErrCodeInvalidToken)
	}
	user, err := s.users.GetByID(ctx, claims.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return Actor{}, httperrors.Unauthorized(MsgUnauthenticated)
	}
	if err != nil {
		return Actor{}, httperrors.Internal("lookup user", err)
	}
	return Actor{ID: user.ID, Role: user.Role}, nil
}

// VerificationToken derives the per account secret used to sign verify links.
func VerificationToken(email string) string {
	sum := md5.Sum([]byte(email))
	return hex.EncodeToString(sum[:])
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
