package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/gokatarajesh/quiz-api/internal/db/store"
)

type quizStore interface {
	CreateQuiz(ctx context.Context, arg store.CreateQuizParams) (store.Quiz, error)
	GetQuizByID(ctx context.Context, id uuid.UUID) (store.Quiz, error)
	ListQuizzes(ctx context.Context, f store.QuizFilter) ([]store.Quiz, error)
	UpdateQuiz(ctx context.Context, arg store.UpdateQuizParams) (store.Quiz, error)
	SetQuizImage(ctx context.Context, id uuid.UUID, image string) error
	DeleteQuiz(ctx context.Context, id uuid.UUID) error
	CountQuizQuestions(ctx context.Context, quizID uuid.UUID) (int64, error)
	CountQuizRounds(ctx context.Context, quizID uuid.UUID) (int64, error)
}

// QuizRepository persists quizzes and their counters.
type QuizRepository struct {
	store quizStore
}

func NewQuizRepository(s quizStore) *QuizRepository {
	return &QuizRepository{store: s}
}

func (r *QuizRepository) Create(ctx context.Context, params store.CreateQuizParams) (store.Quiz, error) {
	return r.store.CreateQuiz(ctx, params)
}

func (r *QuizRepository) Get(ctx context.Context, id uuid.UUID) (store.Quiz, error) {
	return r.store.GetQuizByID(ctx, id)
}

func (r *QuizRepository) List(ctx context.Context, f store.QuizFilter) ([]store.Quiz, error) {
	return r.store.ListQuizzes(ctx, f)
}

func (r *QuizRepository) Update(ctx context.Context, params store.UpdateQuizParams) (store.Quiz, error) {
	return r.store.UpdateQuiz(ctx, params)
}

func (r *QuizRepository) SetImage(ctx context.Context, id uuid.UUID, image string) error {
	return r.store.SetQuizImage(ctx, id, image)
}

// Delete removes the quiz; its questions cascade.
func (r *QuizRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.store.DeleteQuiz(ctx, id)
}

func (r *QuizRepository) QuestionCount(ctx context.Context, id uuid.UUID) (int64, error) {
	return r.store.CountQuizQuestions(ctx, id)
}

// Plays counts the rounds ever started for the quiz.
func (r *QuizRepository) Plays(ctx context.Context, id uuid.UUID) (int64, error) {
	return r.store.CountQuizRounds(ctx, id)
}
