package quiz

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-api/internal/auth"
	"github.com/gokatarajesh/quiz-api/internal/db/store"
	"github.com/gokatarajesh/quiz-api/internal/storage"
	httperrors "github.com/gokatarajesh/quiz-api/pkg/http/errors"
	"github.com/gokatarajesh/quiz-api/pkg/http/validate"
)

// Quizzes persists quizzes and their counters.
type Quizzes interface {
	Create(ctx context.Context, params store.CreateQuizParams) (store.Quiz, error)
	Get(ctx context.Context, id uuid.UUID) (store.Quiz, error)
	List(ctx context.Context, f store.QuizFilter) ([]store.Quiz, error)
	Update(ctx context.Context, params store.UpdateQuizParams) (store.Quiz, error)
	SetImage(ctx context.Context, id uuid.UUID, image string) error
	Delete(ctx context.Context, id uuid.UUID) error
	QuestionCount(ctx context.Context, id uuid.UUID) (int64, error)
	Plays(ctx context.Context, id uuid.UUID) (int64, error)
}

// Service manages quizzes on behalf of their owners.
type Service struct {
	quizzes Quizzes
	images  storage.ObjectStore
	logger  zerolog.Logger
}

// NewService creates a quiz service. images may be nil when uploads are disabled.
func NewService(quizzes Quizzes, images storage.ObjectStore, logger zerolog.Logger) *Service {
	return &Service{
		quizzes: quizzes,
		images:  images,
		logger:  logger.With().Str("component", "quiz_service").Logger(),
	}
}

// Create stores a draft quiz owned by owner.
func (s *Service) Create(ctx context.Context, owner uuid.UUID, in CreateInput) (Quiz, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = DefaultTitle
	}
	z, err := s.quizzes.Create(ctx, store.CreateQuizParams{
		Title:      title,
		References: in.References,
		OwnerID:    owner,
		TagIDs:     in.Tags,
	})
	if err != nil {
		return Quiz{}, httperrors.Internal("create quiz", err)
	}
	s.logger.Info().Str("quiz_id", z.ID.String()).Str("owner_id", owner.String()).Msg("quiz created")
	return toQuiz(z), nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (Quiz, error) {
	z, err := s.load(ctx, id)
	if err != nil {
		return Quiz{}, err
	}
	return toQuiz(z), nil
}

// List returns quizzes matching f, newest first. Titles match case
// insensitively and tags match on any overlap.
func (s *Service) List(ctx context.Context, f Filter) ([]Quiz, error) {
	filter := store.QuizFilter{OwnerID: f.OwnerID, TagIDs: f.Tags}
	if t := strings.TrimSpace(f.Title); t != "" {
		filter.Title = &t
	}
	rows, err := s.quizzes.List(ctx, filter)
	if err != nil {
		return nil, httperrors.Internal("list quizzes", err)
	}
	out := make([]Quiz, len(rows))
	for i, z := range rows {
		out[i] = toQuiz(z)
	}
	return out, nil
}

func (s *Service) QuestionCount(ctx context.Context, id uuid.UUID) (QuestionCount, error) {
	n, err := s.quizzes.QuestionCount(ctx, id)
	if err != nil {
		return QuestionCount{}, httperrors.Internal("count questions", err)
	}
	return QuestionCount{QuizID: id, QuestionCount: n}, nil
}

// Plays counts the rounds ever started for the quiz.
func (s *Service) Plays(ctx context.Context, id uuid.UUID) (PlayCount, error) {
	n, err := s.quizzes.Plays(ctx, id)
	if err != nil {
		return PlayCount{}, httperrors.Internal("count plays", err)
	}
	return PlayCount{QuizID: id, PlayCount: n}, nil
}

// Update applies a partial change. Only the owner or an admin may update.
func (s *Service) Update(ctx context.Context, actor auth.Actor, in UpdateInput) (Quiz, error) {
	if in.Title == nil && in.Status == nil && in.References == nil && in.Tags == nil {
		return Quiz{}, httperrors.Validation(MsgNoChanges, nil)
	}
	if _, err := s.Owned(ctx, actor, in.ID); err != nil {
		return Quiz{}, err
	}
	z, err := s.quizzes.Update(ctx, store.UpdateQuizParams{
		ID:         in.ID,
		Title:      in.Title,
		Status:     in.Status,
		References: in.References,
		TagIDs:     in.Tags,
	})
	if errors.Is(err, store.ErrNotFound) {
		return Quiz{}, httperrors.NotFound(MsgNotFound)
	}
	if err != nil {
		return Quiz{}, httperrors.Internal("update quiz", err)
	}
	return toQuiz(z), nil
}

// Delete removes the quiz with its questions and image.
func (s *Service) Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	z, err := s.Owned(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.quizzes.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return httperrors.NotFound(MsgNotFound)
		}
		return httperrors.Internal("delete quiz", err)
	}
	if key := storage.KeyFromURL(z.Image); key != "" && s.images != nil {
		if err := s.images.Delete(ctx, key); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("quiz image delete failed")
		}
	}
	s.logger.Info().Str("quiz_id", id.String()).Msg("quiz deleted")
	return nil
}

// SaveImage uploads the quiz cover image and records its URL.
func (s *Service) SaveImage(ctx context.Context, actor auth.Actor, id uuid.UUID, img storage.Image) (string, error) {
	if s.images == nil {
		return "", httperrors.Validation(MsgNoStorage, nil).WithCode(httperrors.ErrCodeFeatureNotAvailable)
	}
	z, err := s.Owned(ctx, actor, id)
	if err != nil {
		return "", err
	}
	url, err := s.images.Upload(ctx, storage.QuizImageKey(id.String(), img.Ext), img.ContentType, img.Body, img.Size)
	if err != nil {
		return "", httperrors.Internal("upload image", err)
	}
	if err := s.quizzes.SetImage(ctx, id, url); err != nil {
		return "", httperrors.Internal("save image", err)
	}
	if old := storage.KeyFromURL(z.Image); old != "" && old != storage.KeyFromURL(url) {
		if err := s.images.Delete(ctx, old); err != nil {
			s.logger.Warn().Err(err).Str("key", old).Msg("old quiz image delete failed")
		}
	}
	return url, nil
}

// Owned loads the quiz and checks that actor may modify it.
func (s *Service) Owned(ctx context.Context, actor auth.Actor, id uuid.UUID) (store.Quiz, error) {
	z, err := s.load(ctx, id)
	if err != nil {
		return store.Quiz{}, err
	}
	if z.OwnerID != actor.ID && !actor.IsAdmin() {
		return store.Quiz{}, httperrors.Forbidden(MsgNotOwner)
	}
	return z, nil
}

func (s *Service) load(ctx context.Context, id uuid.UUID) (store.Quiz, error) {
	z, err := s.quizzes.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return store.Quiz{}, httperrors.NotFound(MsgNotFound)
	}
	if err != nil {
		return store.Quiz{}, httperrors.Internal("load quiz", err)
	}
	return z, nil
}

// ParseIDs parses a list of uuids, reporting the first bad one against field.
func ParseIDs(field string, raw []string) ([]uuid.UUID, error) {
	if raw == nil {
		return nil, nil
	}
	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		id, err := uuid.Parse(r)
		if err != nil {
			return nil, httperrors.Validation(validate.InvalidFieldsMessage, []validate.FieldViolation{{
				Field:   field,
				Rule:    "uuid",
				Message: field + " must contain valid ids",
			}})
		}
		ids = append(ids, id)
	}
	return ids, nil
}
