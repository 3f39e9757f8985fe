package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/gokatarajesh/quiz-api/internal/db/store"
)

type questionStore interface {
	CreateQuestion(ctx context.Context, arg store.QuestionParams) (store.Question, error)
	UpsertQuestion(ctx context.Context, arg store.QuestionParams) (store.Question, error)
	GetQuestionByID(ctx context.Context, id string) (store.Question, error)
	ListQuestions(ctx context.Context, limit int32) ([]store.Question, error)
	ListQuestionsByQuiz(ctx context.Context, quizID uuid.UUID) ([]store.Question, error)
	DeleteQuestion(ctx context.Context, id string) error
}

// QuestionRepository wraps queries for question access.
type QuestionRepository struct {
	store questionStore
}

func NewQuestionRepository(s questionStore) *QuestionRepository {
	return &QuestionRepository{store: s}
}

// Create inserts a question. A taken id yields store.ErrDuplicate.
func (r *QuestionRepository) Create(ctx context.Context, params store.QuestionParams) (store.Question, error) {
	return r.store.CreateQuestion(ctx, params)
}

// Upsert inserts or replaces the question with params.ID.
func (r *QuestionRepository) Upsert(ctx context.Context, params store.QuestionParams) (store.Question, error) {
	return r.store.UpsertQuestion(ctx, params)
}

func (r *QuestionRepository) Get(ctx context.Context, id string) (store.Question, error) {
	return r.store.GetQuestionByID(ctx, id)
}

func (r *QuestionRepository) List(ctx context.Context, limit int32) ([]store.Question, error) {
	return r.store.ListQuestions(ctx, limit)
}

// ListByQuiz returns a quiz's questions ordered by sort order then id.
func (r *QuestionRepository) ListByQuiz(ctx context.Context, quizID uuid.UUID) ([]store.Question, error) {
	return r.store.ListQuestionsByQuiz(ctx, quizID)
}

func (r *QuestionRepository) Delete(ctx context.Context, id string) error {
	return r.store.DeleteQuestion(ctx, id)
}
