package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/gokatarajesh/quiz-api/internal/db/store"
)

type tagStore interface {
	CreateTag(ctx context.Context, name, tagType string) (store.Tag, error)
	GetTagByID(ctx context.Context, id uuid.UUID) (store.Tag, error)
	GetTagByName(ctx context.Context, name string) (store.Tag, error)
	ListTags(ctx context.Context, tagType *string) ([]store.Tag, error)
	UpdateTag(ctx context.Context, id uuid.UUID, name, tagType *string) (store.Tag, error)
}

type tagTxStore interface {
	DeleteTag(ctx context.Context, id uuid.UUID) error
	RemoveTagFromQuizzes(ctx context.Context, id uuid.UUID) error
}

type tagTxFunc func(ctx context.Context, fn func(tx tagTxStore) error) error

// TagRepository persists tags.
type TagRepository struct {
	store tagStore
	inTx  tagTxFunc
}

func NewTagRepository(s tagStore, runner *store.TxRunner) *TagRepository {
	return &TagRepository{store: s, inTx: func(ctx context.Context, fn func(tx tagTxStore) error) error {
		return runner.InTx(ctx, func(q *store.Queries) error { return fn(q) })
	}}
}

func (r *TagRepository) Create(ctx context.Context, name, tagType string) (store.Tag, error) {
	return r.store.CreateTag(ctx, name, tagType)
}

func (r *TagRepository) Get(ctx context.Context, id uuid.UUID) (store.Tag, error) {
	return r.store.GetTagByID(ctx, id)
}

func (r *TagRepository) GetByName(ctx context.Context, name string) (store.Tag, error) {
	return r.store.GetTagByName(ctx, name)
}

func (r *TagRepository) List(ctx context.Context, tagType *string) ([]store.Tag, error) {
	return r.store.ListTags(ctx, tagType)
}

func (r *TagRepository) Update(ctx context.Context, id uuid.UUID, name, tagType *string) (store.Tag, error) {
	return r.store.UpdateTag(ctx, id, name, tagType)
}

// Delete removes the tag and detaches it from every quiz in one transaction.
func (r *TagRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.inTx(ctx, func(tx tagTxStore) error {
		if err := tx.RemoveTagFromQuizzes(ctx, id); err != nil {
			return fmt.Errorf("detach tag: %w", err)
		}
		return tx.DeleteTag(ctx, id)
	})
}
