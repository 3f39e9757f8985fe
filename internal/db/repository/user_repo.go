package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/gokatarajesh/quiz-api/internal/db/store"
)

type userStore interface {
	CreateUser(ctx context.Context, arg store.CreateUserParams) (store.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (store.User, error)
	GetUserByEmail(ctx context.Context, email string) (store.User, error)
	GetUserByProviderID(ctx context.Context, provider, providerID string) (store.User, error)
	LinkUserProvider(ctx context.Context, id uuid.UUID, provider, providerID string) (store.User, error)
	ListUsers(ctx context.Context, limit, offset int32) ([]store.User, error)
	UpdateUserProfile(ctx context.Context, arg store.UpdateUserProfileParams) (store.User, error)
	UpdateUserPassword(ctx context.Context, id uuid.UUID, hash string) error
	SetUserEmailVerified(ctx context.Context, id uuid.UUID) error
	SetUserPhoto(ctx context.Context, id uuid.UUID, photo string) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
	ListTopUserScores(ctx context.Context, limit int32) ([]store.UserScore, error)
}

// UserRepository exposes typed DB operations for accounts.
type UserRepository struct {
	store userStore
}

// NewUserRepository wraps queries for user-specific operations.
func NewUserRepository(s userStore) *UserRepository {
	return &UserRepository{store: s}
}

// Create inserts an account. A taken email yields store.ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, params store.CreateUserParams) (store.User, error) {
	return r.store.CreateUser(ctx, params)
}

// GetByID fetches a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (store.User, error) {
	return r.store.GetUserByID(ctx, id)
}

// GetByEmail fetches a user by email, ignoring case.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (store.User, error) {
	return r.store.GetUserByEmail(ctx, email)
}

// GetByProvider fetches the user linked to an OAuth identity.
func (r *UserRepository) GetByProvider(ctx context.Context, provider, providerID string) (store.User, error) {
	return r.store.GetUserByProviderID(ctx, provider, providerID)
}

// LinkProvider attaches an OAuth identity to an existing account.
func (r *UserRepository) LinkProvider(ctx context.Context, id uuid.UUID, provider, providerID string) (store.User, error) {
	return r.store.LinkUserProvider(ctx, id, provider, providerID)
}

// List pages through accounts in creation order.
func (r *UserRepository) List(ctx context.Context, limit, offset int32) ([]store.User, error) {
	return r.store.ListUsers(ctx, limit, offset)
}

func (r *UserRepository) UpdateProfile(ctx context.Context, params store.UpdateUserProfileParams) (store.User, error) {
	return r.store.UpdateUserProfile(ctx, params)
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	return r.store.UpdateUserPassword(ctx, id, hash)
}

func (r *UserRepository) MarkEmailVerified(ctx context.Context, id uuid.UUID) error {
	return r.store.SetUserEmailVerified(ctx, id)
}

func (r *UserRepository) SetPhoto(ctx context.Context, id uuid.UUID, photo string) error {
	return r.store.SetUserPhoto(ctx, id, photo)
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.store.DeleteUser(ctx, id)
}

// TopScores returns the highest lifetime scores, used to seed the leaderboard.
func (r *UserRepository) TopScores(ctx context.Context, limit int32) ([]store.UserScore, error) {
	return r.store.ListTopUserScores(ctx, limit)
}
