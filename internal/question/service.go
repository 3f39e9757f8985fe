package question

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-api/internal/auth"
	"github.com/gokatarajesh/quiz-api/internal/db/store"
	httperrors "github.com/gokatarajesh/quiz-api/pkg/http/errors"
)

// Questions persists questions.
type Questions interface {
	Create(ctx context.Context, params store.QuestionParams) (store.Question, error)
	Upsert(ctx context.Context, params store.QuestionParams) (store.Question, error)
	Get(ctx context.Context, id string) (store.Question, error)
	List(ctx context.Context, limit int32) ([]store.Question, error)
	ListByQuiz(ctx context.Context, quizID uuid.UUID) ([]store.Question, error)
	Delete(ctx context.Context, id string) error
}

// QuizOwners resolves a quiz and checks the actor may edit it.
type QuizOwners interface {
	Owned(ctx context.Context, actor auth.Actor, id uuid.UUID) (store.Quiz, error)
}

// Service manages the questions of quizzes.
type Service struct {
	questions    Questions
	quizzes      QuizOwners
	defaultLimit int32
	logger       zerolog.Logger
}

func NewService(questions Questions, quizzes QuizOwners, logger zerolog.Logger) *Service {
	return &Service{
		questions:    questions,
		quizzes:      quizzes,
		defaultLimit: 100,
		logger:       logger.With().Str("component", "question_service").Logger(),
	}
}

// Create adds a question to a quiz the actor owns. Question ids are chosen
// by the client and must be unique.
func (s *Service) Create(ctx context.Context, actor auth.Actor, in CreateInput) (Public, error) {
	if err := checkAnswerKey(in.Answers, in.CorrectAnswers); err != nil {
		return Public{}, err
	}
	if _, err := s.quizzes.Owned(ctx, actor, in.QuizID); err != nil {
		return Public{}, err
	}

	q, err := s.questions.Create(ctx, store.QuestionParams{
		ID:             strings.TrimSpace(in.ID),
		QuizID:         in.QuizID,
		Question:       in.Question,
		Answers:        in.Answers,
		CorrectAnswers: in.CorrectAnswers,
		Comment:        in.Comment,
		SortOrder:      in.SortOrder,
	})
	if errors.Is(err, store.ErrDuplicate) {
		return Public{}, httperrors.Conflict(httperrors.ErrCodeQuestionIDInUse, MsgIDInUse)
	}
	if err != nil {
		return Public{}, httperrors.Internal("create question", err)
	}
	return toPublic(q), nil
}

// Update merges in into the stored question, or creates it when missing.
// The actor must own both the current and the target quiz.
func (s *Service) Update(ctx context.Context, actor auth.Actor, in UpdateInput) (Public, error) {
	if in.empty() {
		return Public{}, httperrors.Validation(MsgNoChanges, nil)
	}

	current, err := s.questions.Get(ctx, in.ID)
	exists := err == nil
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return Public{}, httperrors.Internal("load question", err)
	}

	params := store.QuestionParams{ID: in.ID}
	if exists {
		if _, err := s.quizzes.Owned(ctx, actor, current.QuizID); err != nil {
			return Public{}, err
		}
		params = store.QuestionParams{
			ID:             current.ID,
			QuizID:         current.QuizID,
			Question:       current.Question,
			Answers:        current.Answers,
			CorrectAnswers: current.CorrectAnswers,
			Comment:        current.Comment,
			SortOrder:      current.SortOrder,
		}
	} else if in.QuizID == nil || in.Question == nil || in.Answers == nil || in.CorrectAnswers == nil {
		return Public{}, httperrors.Validation(MsgIncompleteCreate, nil)
	}

	if in.QuizID != nil {
		params.QuizID = *in.QuizID
	}
	if in.Question != nil {
		params.Question = *in.Question
	}
	if in.Answers != nil {
		params.Answers = in.Answers
	}
	if in.CorrectAnswers != nil {
		params.CorrectAnswers = in.CorrectAnswers
	}
	if in.Comment != nil {
		params.Comment = *in.Comment
	}
	if in.SortOrder != nil {
		params.SortOrder = *in.SortOrder
	}

	if err := checkAnswerKey(params.Answers, params.CorrectAnswers); err != nil {
		return Public{}, err
	}
	if !exists || params.QuizID != current.QuizID {
		if _, err := s.quizzes.Owned(ctx, actor, params.QuizID); err != nil {
			return Public{}, err
		}
	}

	q, err := s.questions.Upsert(ctx, params)
	if err != nil {
		return Public{}, httperrors.Internal("upsert question", err)
	}
	return toPublic(q), nil
}

func (s *Service) Get(ctx context.Context, id string) (Public, error) {
	q, err := s.load(ctx, id)
	if err != nil {
		return Public{}, err
	}
	return toPublic(q), nil
}

// ListByQuiz returns a quiz's questions in play order.
func (s *Service) ListByQuiz(ctx context.Context, quizID uuid.UUID) ([]Public, error) {
	rows, err := s.questions.ListByQuiz(ctx, quizID)
	if err != nil {
		return nil, httperrors.Internal("list questions", err)
	}
	return publics(rows), nil
}

func (s *Service) List(ctx context.Context, limit int32) ([]Public, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}
	rows, err := s.questions.List(ctx, limit)
	if err != nil {
		return nil, httperrors.Internal("list questions", err)
	}
	return publics(rows), nil
}

// Correct reveals the answer key of a question.
func (s *Service) Correct(ctx context.Context, id string) (AnswerKey, error) {
	q, err := s.load(ctx, id)
	if err != nil {
		return AnswerKey{}, err
	}
	return AnswerKey{ID: q.ID, CorrectAnswers: q.CorrectAnswers, Comment: q.Comment}, nil
}

func (s *Service) Delete(ctx context.Context, actor auth.Actor, id string) error {
	q, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.quizzes.Owned(ctx, actor, q.QuizID); err != nil {
		return err
	}
	if err := s.questions.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return httperrors.NotFound(MsgNotFound)
		}
		return httperrors.Internal("delete question", err)
	}
	return nil
}

func (s *Service) load(ctx context.Context, id string) (store.Question, error) {
	q, err := s.questions.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return store.Question{}, httperrors.NotFound(MsgNotFound)
	}
	if err != nil {
		return store.Question{}, httperrors.Internal("load question", err)
	}
	return q, nil
}

func checkAnswerKey(answers, correct []string) error {
	for _, c := range correct {
		if !slices.Contains(answers, c) {
			return httperrors.Validation(MsgUnknownCorrect, nil)
		}
	}
	return nil
}

func publics(rows []store.Question) []Public {
	out := make([]Public, len(rows))
	for i, q := range rows {
		out[i] = toPublic(q)
	}
	return out
}
