package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const createRefreshToken = `INSERT INTO refresh_tokens (value, user_id, expires_at)
VALUES ($1, $2, $3)
RETURNING id, value, user_id, is_revoked, created_at, expires_at`

func (q *Queries) CreateRefreshToken(ctx context.Context, value string, userID uuid.UUID, expiresAt time.Time) (RefreshToken, error) {
	var t RefreshToken
	err := q.db.QueryRow(ctx, createRefreshToken, value, userID, expiresAt).
		Scan(&t.ID, &t.Value, &t.UserID, &t.IsRevoked, &t.CreatedAt, &t.ExpiresAt)
	return t, translate(err)
}

const getRefreshToken = `SELECT id, value, user_id, is_revoked, created_at, expires_at
FROM refresh_tokens WHERE value = $1`

func (q *Queries) GetRefreshToken(ctx context.Context, value string) (RefreshToken, error) {
	var t RefreshToken
	err := q.db.QueryRow(ctx, getRefreshToken, value).
		Scan(&t.ID, &t.Value, &t.UserID, &t.IsRevoked, &t.CreatedAt, &t.ExpiresAt)
	return t, translate(err)
}

const revokeRefreshToken = `UPDATE refresh_tokens SET is_revoked = TRUE WHERE value = $1`

func (q *Queries) RevokeRefreshToken(ctx context.Context, value string) error {
	return q.execOne(ctx, revokeRefreshToken, value)
}
