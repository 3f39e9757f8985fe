package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, google_id, facebook_id, firstname, middlename, lastname, email, username,
	dob, gender, nationality, language, occupation, score, rank, password_hash, photo,
	verification_token, is_email_verified, role, created_at, updated_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.GoogleID, &u.FacebookID, &u.Firstname, &u.Middlename, &u.Lastname, &u.Email, &u.Username,
		&u.Dob, &u.Gender, &u.Nationality, &u.Language, &u.Occupation, &u.Score, &u.Rank, &u.PasswordHash, &u.Photo,
		&u.VerificationToken, &u.IsEmailVerified, &u.Role, &u.CreatedAt, &u.UpdatedAt,
	)
	return u, translate(err)
}

type CreateUserParams struct {
	Email             string
	Username          string
	Firstname         string
	Lastname          string
	PasswordHash      *string
	Photo             string
	VerificationToken string
	IsEmailVerified   bool
	GoogleID          *string
	FacebookID        *string
}

const createUser = `INSERT INTO users (email, username, firstname, lastname, password_hash, photo,
	verification_token, is_email_verified, google_id, facebook_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING ` + userColumns

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRow(ctx, createUser,
		arg.Email, arg.Username, arg.Firstname, arg.Lastname, arg.PasswordHash, arg.Photo,
		arg.VerificationToken, arg.IsEmailVerified, arg.GoogleID, arg.FacebookID,
	)
	return scanUser(row)
}

const getUserByID = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

func (q *Queries) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	return scanUser(q.db.QueryRow(ctx, getUserByID, id))
}

const getUserByEmail = `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(q.db.QueryRow(ctx, getUserByEmail, email))
}

// providerColumn whitelists the identity columns usable in provider lookups.
func providerColumn(provider string) (string, error) {
	switch provider {
	case "google":
		return "google_id", nil
	case "facebook":
		return "facebook_id", nil
	default:
		return "", fmt.Errorf("store: unknown provider %q", provider)
	}
}

func (q *Queries) GetUserByProviderID(ctx context.Context, provider, providerID string) (User, error) {
	col, err := providerColumn(provider)
	if err != nil {
		return User{}, err
	}
	sql := `SELECT ` + userColumns + ` FROM users WHERE ` + col + ` = $1`
	return scanUser(q.db.QueryRow(ctx, sql, providerID))
}

func (q *Queries) LinkUserProvider(ctx context.Context, id uuid.UUID, provider, providerID string) (User, error) {
	col, err := providerColumn(provider)
	if err != nil {
		return User{}, err
	}
	sql := `UPDATE users SET ` + col + ` = $2, is_email_verified = TRUE, updated_at = now()
WHERE id = $1 RETURNING ` + userColumns
	return scanUser(q.db.QueryRow(ctx, sql, id, providerID))
}

const listUsers = `SELECT ` + userColumns + ` FROM users ORDER BY created_at, id LIMIT $1 OFFSET $2`

func (q *Queries) ListUsers(ctx context.Context, limit, offset int32) ([]User, error) {
	rows, err := q.db.Query(ctx, listUsers, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, u)
	}
	return items, rows.Err()
}

// UpdateUserProfileParams leaves a column untouched when its field is nil.
type UpdateUserProfileParams struct {
	ID          uuid.UUID
	Email       *string
	Firstname   *string
	Middlename  *string
	Lastname    *string
	Username    *string
	Dob         *time.Time
	Gender      *string
	Nationality *string
	Language    *string
	Occupation  *string
}

const updateUserProfile = `UPDATE users SET
	firstname   = COALESCE($2, firstname),
	middlename  = COALESCE($3, middlename),
	lastname    = COALESCE($4, lastname),
	username    = COALESCE($5, username),
	dob         = COALESCE($6, dob),
	gender      = COALESCE($7, gender),
	nationality = COALESCE($8, nationality),
	language    = COALESCE($9, language),
	occupation  = COALESCE($10, occupation),
	email       = COALESCE($11, email),
	updated_at  = now()
WHERE id = $1
RETURNING ` + userColumns

func (q *Queries) UpdateUserProfile(ctx context.Context, arg UpdateUserProfileParams) (User, error) {
	row := q.db.QueryRow(ctx, updateUserProfile,
		arg.ID, arg.Firstname, arg.Middlename, arg.Lastname, arg.Username, arg.Dob,
		arg.Gender, arg.Nationality, arg.Language, arg.Occupation, arg.Email,
	)
	return scanUser(row)
}

const updateUserPassword = `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`

func (q *Queries) UpdateUserPassword(ctx context.Context, id uuid.UUID, hash string) error {
	return q.execOne(ctx, updateUserPassword, id, hash)
}

const setUserEmailVerified = `UPDATE users SET is_email_verified = TRUE, updated_at = now() WHERE id = $1`

func (q *Queries) SetUserEmailVerified(ctx context.Context, id uuid.UUID) error {
	return q.execOne(ctx, setUserEmailVerified, id)
}

const setUserPhoto = `UPDATE users SET photo = $2, updated_at = now() WHERE id = $1`

func (q *Queries) SetUserPhoto(ctx context.Context, id uuid.UUID, photo string) error {
	return q.execOne(ctx, setUserPhoto, id, photo)
}

const incrementUserScore = `UPDATE users SET score = score + $2, updated_at = now() WHERE id = $1 RETURNING score`

// IncrementUserScore adds delta to the lifetime score and returns the new total.
func (q *Queries) IncrementUserScore(ctx context.Context, id uuid.UUID, delta int64) (int64, error) {
	var score int64
	err := q.db.QueryRow(ctx, incrementUserScore, id, delta).Scan(&score)
	return score, translate(err)
}

const deleteUser = `DELETE FROM users WHERE id = $1`

func (q *Queries) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return q.execOne(ctx, deleteUser, id)
}

const listTopUserScores = `SELECT id, score FROM users WHERE score > 0 ORDER BY score DESC, id LIMIT $1`

func (q *Queries) ListTopUserScores(ctx context.Context, limit int32) ([]UserScore, error) {
	rows, err := q.db.Query(ctx, listTopUserScores, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []UserScore
	for rows.Next() {
		var s UserScore
		if err := rows.Scan(&s.ID, &s.Score); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

// execOne runs a statement that must touch exactly one row.
func (q *Queries) execOne(ctx context.Context, sql string, args ...interface{}) error {
	tag, err := q.db.Exec(ctx, sql, args...)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
