package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const tagColumns = `id, name, type, created_at, updated_at`

func scanTag(row pgx.Row) (Tag, error) {
	var t Tag
	err := row.Scan(&t.ID, &t.Name, &t.Type, &t.CreatedAt, &t.UpdatedAt)
	return t, translate(err)
}

const createTag = `INSERT INTO tags (name, type) VALUES ($1, $2) RETURNING ` + tagColumns

func (q *Queries) CreateTag(ctx context.Context, name, tagType string) (Tag, error) {
	return scanTag(q.db.QueryRow(ctx, createTag, name, tagType))
}

const getTagByID = `SELECT ` + tagColumns + ` FROM tags WHERE id = $1`

func (q *Queries) GetTagByID(ctx context.Context, id uuid.UUID) (Tag, error) {
	return scanTag(q.db.QueryRow(ctx, getTagByID, id))
}

const getTagByName = `SELECT ` + tagColumns + ` FROM tags WHERE lower(name) = lower($1)`

func (q *Queries) GetTagByName(ctx context.Context, name string) (Tag, error) {
	return scanTag(q.db.QueryRow(ctx, getTagByName, name))
}

const listTags = `SELECT ` + tagColumns + ` FROM tags
WHERE ($1::text IS NULL OR type = $1)
ORDER BY name`

// ListTags returns every tag, optionally restricted to one type.
func (q *Queries) ListTags(ctx context.Context, tagType *string) ([]Tag, error) {
	rows, err := q.db.Query(ctx, listTags, tagType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

const updateTag = `UPDATE tags SET
	name = COALESCE($2, name),
	type = COALESCE($3, type),
	updated_at = now()
WHERE id = $1
RETURNING ` + tagColumns

func (q *Queries) UpdateTag(ctx context.Context, id uuid.UUID, name, tagType *string) (Tag, error) {
	return scanTag(q.db.QueryRow(ctx, updateTag, id, name, tagType))
}

const deleteTag = `DELETE FROM tags WHERE id = $1`

func (q *Queries) DeleteTag(ctx context.Context, id uuid.UUID) error {
	return q.execOne(ctx, deleteTag, id)
}

const removeTagFromQuizzes = `UPDATE quizzes SET tag_ids = array_remove(tag_ids, $1), updated_at = now()
WHERE $1 = ANY(tag_ids)`

// RemoveTagFromQuizzes detaches a tag from every quiz that references it.
func (q *Queries) RemoveTagFromQuizzes(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, removeTagFromQuizzes, id)
	return err
}
