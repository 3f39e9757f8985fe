package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-api/internal/auth"
	"github.com/gokatarajesh/quiz-api/internal/auth/jwt"
	"github.com/gokatarajesh/quiz-api/internal/db/store"
	"github.com/gokatarajesh/quiz-api/internal/storage"
	httperrors "github.com/gokatarajesh/quiz-api/pkg/http/errors"
)

// Users is the account storage the profile flows need.
type Users interface {
	GetByID(ctx context.Context, id uuid.UUID) (store.User, error)
	GetByEmail(ctx context.Context, email string) (store.User, error)
	List(ctx context.Context, limit, offset int32) ([]store.User, error)
	UpdateProfile(ctx context.Context, params store.UpdateUserProfileParams) (store.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
	MarkEmailVerified(ctx context.Context, id uuid.UUID) error
	SetPhoto(ctx context.Context, id uuid.UUID, photo string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Ranker resolves a user's leaderboard position.
type Ranker interface {
	Rank(ctx context.Context, userID uuid.UUID) (int64, error)
}

// Links signs and checks secure email links.
type Links interface {
	GenerateLinkToken(email, secret string) (string, error)
	ValidateLinkToken(token, secret string) (*jwt.LinkClaims, error)
}

// Passwords hashes new passwords.
type Passwords interface {
	Hash(password string) (string, error)
}

// Options configures the user service.
type Options struct {
	PublicOrigin  string
	MaxImageBytes int64
	DefaultLimit  int32
}

// Service manages profiles, email verification, password resets and images.
type Service struct {
	users     Users
	ranker    Ranker
	links     Links
	passwords Passwords
	mailer    auth.Mailer
	images    storage.ObjectStore
	opts      Options
	logger    zerolog.Logger
}

// NewService wires the user service. images may be nil when no bucket is configured.
func NewService(
	users Users,
	ranker Ranker,
	links Links,
	passwords Passwords,
	mailer auth.Mailer,
	images storage.ObjectStore,
	opts Options,
	logger zerolog.Logger,
) *Service {
	if opts.MaxImageBytes <= 0 {
		opts.MaxImageBytes = storage.MaxImageBytes
	}
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 50
	}
	return &Service{
		users:     users,
		ranker:    ranker,
		links:     links,
		passwords: passwords,
		mailer:    mailer,
		images:    images,
		opts:      opts,
		logger:    logger.With().Str("component", "user_service").Logger(),
	}
}

// Profile returns the caller's profile with the live leaderboard rank.
func (s *Service) Profile(ctx context.Context, id uuid.UUID) (Profile, error) {
	u, err := s.load(ctx, id, MsgProfileNotFound)
	if err != nil {
		return Profile{}, err
	}
	p := toProfile(u)
	if s.ranker != nil {
		rank, err := s.ranker.Rank(ctx, id)
		if err != nil {
			s.logger.Warn().Err(err).Str("user_id", id.String()).Msg("rank lookup failed")
		} else {
			p.Rank = rank
		}
	}
	return p, nil
}

// Get returns one profile.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Profile, error) {
	u, err := s.load(ctx, id, MsgProfileNotFound)
	if err != nil {
		return Profile{}, err
	}
	return toProfile(u), nil
}

// List pages through all profiles.
func (s *Service) List(ctx context.Context, limit, offset int32) ([]Profile, error) {
	if limit <= 0 {
		limit = s.opts.DefaultLimit
	}
	users, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, httperrors.Internal("list users", err)
	}
	if len(users) == 0 {
		return nil, httperrors.NotFound(MsgNoUsersFound)
	}
	out := make([]Profile, len(users))
	for i, u := range users {
		out[i] = toProfile(u)
	}
	return out, nil
}

// Update applies a partial profile change to target on behalf of actor.
func (s *Service) Update(ctx context.Context, actor auth.Actor, target uuid.UUID, in UpdateInput) (Profile, error) {
	if err := authorize(actor, target); err != nil {
		return Profile{}, err
	}
	if in.empty() {
		return Profile{}, httperrors.Validation(MsgNothingToUpdate, nil)
	}

	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		in.Email = &email
		existing, err := s.users.GetByEmail(ctx, email)
		switch {
		case err == nil && existing.ID != target:
			return Profile{}, httperrors.Conflict(httperrors.ErrCodeEmailRegistered, MsgEmailTaken)
		case err != nil && !errors.Is(err, store.ErrNotFound):
			return Profile{}, httperrors.Internal("check email", err)
		}
	}

	u, err := s.users.UpdateProfile(ctx, store.UpdateUserProfileParams{
		ID:          target,
		Email:       in.Email,
		Firstname:   in.Firstname,
		Middlename:  in.Middlename,
		Lastname:    in.Lastname,
		Username:    in.Username,
		Dob:         in.Dob,
		Gender:      in.Gender,
		Nationality: in.Nationality,
		Language:    in.Language,
		Occupation:  in.Occupation,
	})
	switch {
	case errors.Is(err, store.ErrNotFound):
		return Profile{}, httperrors.NotFound(MsgUserNotFound)
	case errors.Is(err, store.ErrDuplicate):
		return Profile{}, httperrors.Conflict(httperrors.ErrCodeEmailRegistered, MsgEmailTaken)
	case err != nil:
		return Profile{}, httperrors.Internal("update user", err)
	}
	return toProfile(u), nil
}

// VerifyEmail marks the email verified when the link was signed with the
// user's verification token.
func (s *Service) VerifyEmail(ctx context.Context, in LinkInput) error {
	u, err := s.checkLink(ctx, in, func(u store.User) string { return u.VerificationToken })
	if err != nil {
		return err
	}
	if err := s.users.MarkEmailVerified(ctx, u.ID); err != nil {
		return httperrors.Internal("verify email", err)
	}
	s.logger.Info().Str("user_id", u.ID.String()).Msg("email verified")
	return nil
}

// ResetPassword stores a new password when the link was signed with the
// current password hash. Using the hash means a link works only once.
func (s *Service) ResetPassword(ctx context.Context, in LinkInput, password string) error {
	if err := auth.CheckPolicy(password); err != nil {
		return httperrors.Validation(err.Error(), nil)
	}
	u, err := s.checkLink(ctx, in, passwordSecret)
	if err != nil {
		return err
	}
	hash, err := s.passwords.Hash(password)
	if err != nil {
		return httperrors.Internal("hash password", err)
	}
	if err := s.users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return httperrors.Internal("update password", err)
	}
	s.logger.Info().Str("user_id", u.ID.String()).Msg("password reset")
	return nil
}

// SendMail mails a secure link of the given type. It returns the message to
// report, which differs when there is nothing to send.
func (s *Service) SendMail(ctx context.Context, email, mailtype string) (string, error) {
	u, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, store.ErrNotFound) {
		return "", httperrors.NotFound(MsgEmailNotFound)
	}
	if err != nil {
		return "", httperrors.Internal("load user", err)
	}

	var secret string
	switch mailtype {
	case auth.MailVerify:
		if u.IsEmailVerified {
			return MsgAlreadyVerified, nil
		}
		secret = u.VerificationToken
	case auth.MailResetPassword:
		if !u.IsEmailVerified {
			return "", httperrors.Validation(MsgVerifyFirst, nil).WithCode(httperrors.ErrCodeEmailUnverified)
		}
		secret = passwordSecret(u)
		if secret == "" {
			// OAuth accounts set their first password through the verification token.
			secret = u.VerificationToken
		}
	default:
		return "", httperrors.Validation(fmt.Sprintf("mailtype must be one of [%s %s]", auth.MailVerify, auth.MailResetPassword), nil)
	}

	token, err := s.links.GenerateLinkToken(u.Email, secret)
	if err != nil {
		return "", httperrors.Internal("sign link", err)
	}
	mail := auth.Mail{
		To:       u.Email,
		Name:     displayName(u),
		Template: mailtype,
		Link:     auth.SecureLink(s.opts.PublicOrigin, mailtype, u.Email, token),
	}
	if err := s.mailer.Send(ctx, mail); err != nil {
		return "", httperrors.Internal(MsgMailerUnavailable, err)
	}
	return MsgMailSent, nil
}

// SaveImage uploads a new profile image and records its URL.
func (s *Service) SaveImage(ctx context.Context, id uuid.UUID, img storage.Image) (string, error) {
	if s.images == nil {
		return "", httperrors.Validation(MsgStorageDisabled, nil).WithCode(httperrors.ErrCodeFeatureNotAvailable)
	}
	u, err := s.load(ctx, id, MsgUserNotFound)
	if err != nil {
		return "", err
	}

	url, err := s.images.Upload(ctx, storage.UserImageKey(id.String(), img.Ext), img.ContentType, img.Body, img.Size)
	if err != nil {
		return "", httperrors.Internal("upload image", err)
	}
	if err := s.users.SetPhoto(ctx, id, url); err != nil {
		return "", httperrors.Internal("save image", err)
	}
	if old := storage.KeyFromURL(u.Photo); old != "" && old != storage.KeyFromURL(url) {
		s.removeObject(ctx, old)
	}
	return url, nil
}

// RemoveImage clears the profile image and deletes the stored object.
func (s *Service) RemoveImage(ctx context.Context, id uuid.UUID) error {
	u, err := s.load(ctx, id, MsgUserNotFound)
	if err != nil {
		return err
	}
	if u.Photo == "" {
		return httperrors.NotFound(MsgNoImage)
	}
	if err := s.users.SetPhoto(ctx, id, ""); err != nil {
		return httperrors.Internal("remove image", err)
	}
	if key := storage.KeyFromURL(u.Photo); key != "" {
		s.removeObject(ctx, key)
	}
	return nil
}

// Delete removes the account and its stored image.
func (s *Service) Delete(ctx context.Context, actor auth.Actor, target uuid.UUID) error {
	if err := authorize(actor, target); err != nil {
		return err
	}
	u, err := s.load(ctx, target, MsgDeleteMissing)
	if err != nil {
		return err
	}
	if key := storage.KeyFromURL(u.Photo); key != "" {
		s.removeObject(ctx, key)
	}
	if err := s.users.Delete(ctx, target); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return httperrors.NotFound(MsgDeleteMissing)
		}
		return httperrors.Internal("delete user", err)
	}
	s.logger.Info().Str("user_id", target.String()).Str("actor", actor.ID.String()).Msg("user deleted")
	return nil
}

// checkLink resolves the user behind a secure link. The checks run in order:
// user exists, token signature and expiry, email claim, secret claim.
func (s *Service) checkLink(ctx context.Context, in LinkInput, secretOf func(store.User) string) (store.User, error) {
	u, err := s.users.GetByEmail(ctx, in.Email)
	if errors.Is(err, store.ErrNotFound) {
		return store.User{}, httperrors.NotFound(MsgUserNotFound)
	}
	if err != nil {
		return store.User{}, httperrors.Internal("load user", err)
	}

	secret := secretOf(u)
	if secret == "" {
		secret = u.VerificationToken
	}
	claims, err := s.links.ValidateLinkToken(in.Token, secret)
	if err != nil {
		return store.User{}, linkError(MsgInvalidLink)
	}
	if !strings.EqualFold(claims.Email, in.Email) {
		return store.User{}, linkError(MsgEmailMismatch)
	}
	if claims.MD5 != secret {
		return store.User{}, linkError(MsgBadCredentials)
	}
	return u, nil
}

func (s *Service) load(ctx context.Context, id uuid.UUID, missing string) (store.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return store.User{}, httperrors.NotFound(missing)
	}
	if err != nil {
		return store.User{}, httperrors.Internal("load user", err)
	}
	return u, nil
}

func (s *Service) removeObject(ctx context.Context, key string) {
	if s.images == nil {
		return
	}
	if err := s.images.Delete(ctx, key); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("image delete failed")
	}
}

func authorize(actor auth.Actor, target uuid.UUID) error {
	if actor.ID != target && !actor.IsAdmin() {
		return httperrors.Forbidden(MsgNotYourAccount)
	}
	return nil
}

func linkError(message string) error {
	return httperrors.Validation(message, nil).WithCode(httperrors.ErrCodeSecureLinkFailed)
}

func passwordSecret(u store.User) string {
	if u.PasswordHash == nil {
		return ""
	}
	return *u.PasswordHash
}

func displayName(u store.User) string {
	if name := strings.TrimSpace(u.Firstname + " " + u.Lastname); name != "" {
		return name
	}
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}
