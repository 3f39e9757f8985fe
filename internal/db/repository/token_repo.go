package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gokatarajesh/quiz-api/internal/db/store"
)

type tokenStore interface {
	CreateRefreshToken(ctx context.Context, value string, userID uuid.UUID, expiresAt time.Time) (store.RefreshToken, error)
	GetRefreshToken(ctx context.Context, value string) (store.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, value string) error
}

// TokenRepository stores refresh tokens server side so they can be revoked.
type TokenRepository struct {
	store tokenStore
}

func NewTokenRepository(s tokenStore) *TokenRepository {
	return &TokenRepository{store: s}
}

func (r *TokenRepository) Create(ctx context.Context, value string, userID uuid.UUID, expiresAt time.Time) (store.RefreshToken, error) {
	return r.store.CreateRefreshToken(ctx, value, userID, expiresAt)
}

func (r *TokenRepository) Get(ctx context.Context, value string) (store.RefreshToken, error) {
	return r.store.GetRefreshToken(ctx, value)
}

func (r *TokenRepository) Revoke(ctx context.Context, value string) error {
	return r.store.RevokeRefreshToken(ctx, value)
}
