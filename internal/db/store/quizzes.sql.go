package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const quizColumns = `id, title, status, refs, image, owner_id, tag_ids, created_at, updated_at`

func scanQuiz(row pgx.Row) (Quiz, error) {
	var z Quiz
	err := row.Scan(&z.ID, &z.Title, &z.Status, &z.References, &z.Image, &z.OwnerID, &z.TagIDs, &z.CreatedAt, &z.UpdatedAt)
	return z, translate(err)
}

type CreateQuizParams struct {
	Title      string
	References []string
	OwnerID    uuid.UUID
	TagIDs     []uuid.UUID
}

const createQuiz = `INSERT INTO quizzes (title, refs, owner_id, tag_ids)
VALUES ($1, COALESCE($2::text[], '{}'), $3, COALESCE($4::uuid[], '{}'))
RETURNING ` + quizColumns

func (q *Queries) CreateQuiz(ctx context.Context, arg CreateQuizParams) (Quiz, error) {
	return scanQuiz(q.db.QueryRow(ctx, createQuiz, arg.Title, arg.References, arg.OwnerID, arg.TagIDs))
}

const getQuizByID = `SELECT ` + quizColumns + ` FROM quizzes WHERE id = $1`

func (q *Queries) GetQuizByID(ctx context.Context, id uuid.UUID) (Quiz, error) {
	return scanQuiz(q.db.QueryRow(ctx, getQuizByID, id))
}

// QuizFilter narrows ListQuizzes. Nil or empty fields do not filter.
type QuizFilter struct {
	Title   *string
	OwnerID *uuid.UUID
	TagIDs  []uuid.UUID
}

const listQuizzes = `SELECT ` + quizColumns + ` FROM quizzes
WHERE ($1::text IS NULL OR title ILIKE '%' || $1 || '%')
  AND ($2::uuid IS NULL OR owner_id = $2)
  AND (COALESCE(cardinality($3::uuid[]), 0) = 0 OR tag_ids && $3)
ORDER BY created_at DESC, id`

func (q *Queries) ListQuizzes(ctx context.Context, f QuizFilter) ([]Quiz, error) {
	rows, err := q.db.Query(ctx, listQuizzes, f.Title, f.OwnerID, f.TagIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Quiz
	for rows.Next() {
		z, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, z)
	}
	return items, rows.Err()
}

// UpdateQuizParams leaves a column untouched when its field is nil.
type UpdateQuizParams struct {
	ID         uuid.UUID
	Title      *string
	Status     *string
	References []string
	TagIDs     []uuid.UUID
}

const updateQuiz = `UPDATE quizzes SET
	title      = COALESCE($2, title),
	status     = COALESCE($3, status),
	refs       = COALESCE($4::text[], refs),
	tag_ids    = COALESCE($5::uuid[], tag_ids),
	updated_at = now()
WHERE id = $1
RETURNING ` + quizColumns

func (q *Queries) UpdateQuiz(ctx context.Context, arg UpdateQuizParams) (Quiz, error) {
	return scanQuiz(q.db.QueryRow(ctx, updateQuiz, arg.ID, arg.Title, arg.Status, arg.References, arg.TagIDs))
}

const setQuizImage = `UPDATE quizzes SET image = $2, updated_at = now() WHERE id = $1`

func (q *Queries) SetQuizImage(ctx context.Context, id uuid.UUID, image string) error {
	return q.execOne(ctx, setQuizImage, id, image)
}

const deleteQuiz = `DELETE FROM quizzes WHERE id = $1`

func (q *Queries) DeleteQuiz(ctx context.Context, id uuid.UUID) error {
	return q.execOne(ctx, deleteQuiz, id)
}

const countQuizQuestions = `SELECT count(*) FROM questions WHERE quiz_id = $1`

func (q *Queries) CountQuizQuestions(ctx context.Context, quizID uuid.UUID) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, countQuizQuestions, quizID).Scan(&n)
	return n, err
}

const countQuizRounds = `SELECT count(*) FROM rounds WHERE quiz_id = $1`

func (q *Queries) CountQuizRounds(ctx context.Context, quizID uuid.UUID) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, countQuizRounds, quizID).Scan(&n)
	return n, err
}
