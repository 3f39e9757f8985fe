package tag

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-api/internal/db/store"
	httperrors "github.com/gokatarajesh/quiz-api/pkg/http/errors"
)

const (
	MsgCreated   = "Tag created successfully"
	MsgUpdated   = "tag updated successfully"
	MsgDeleted   = "tag deleted successfully"
	MsgNameTaken = "tag name already exists"
	MsgNotFound  = "tag not found"
	MsgNoChanges = "missing or invalid fields to update"
)

// Tag types.
const (
	TypeCountry = "country"
	TypeGeneral = "general"
)

// Tag is the client view of a tag.
type Tag struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toTag(t store.Tag) Tag {
	return Tag{ID: t.ID, Name: t.Name, Type: t.Type, CreatedAt: t.CreatedAt, UpdatedAt: t.UpdatedAt}
}

// Tags persists tags.
type Tags interface {
	Create(ctx context.Context, name, tagType string) (store.Tag, error)
	Get(ctx context.Context, id uuid.UUID) (store.Tag, error)
	List(ctx context.Context, tagType *string) ([]store.Tag, error)
	Update(ctx context.Context, id uuid.UUID, name, tagType *string) (store.Tag, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service manages the tag catalogue quizzes are labelled with.
type Service struct {
	tags   Tags
	logger zerolog.Logger
}

func NewService(tags Tags, logger zerolog.Logger) *Service {
	return &Service{tags: tags, logger: logger.With().Str("component", "tag_service").Logger()}
}

func (s *Service) Create(ctx context.Context, name, tagType string) (Tag, error) {
	if tagType == "" {
		tagType = TypeGeneral
	}
	t, err := s.tags.Create(ctx, strings.TrimSpace(name), tagType)
	if errors.Is(err, store.ErrDuplicate) {
		return Tag{}, httperrors.Conflict(httperrors.ErrCodeTagNameTaken, MsgNameTaken)
	}
	if err != nil {
		return Tag{}, httperrors.Internal("create tag", err)
	}
	return toTag(t), nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (Tag, error) {
	t, err := s.tags.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return Tag{}, httperrors.NotFound(MsgNotFound)
	}
	if err != nil {
		return Tag{}, httperrors.Internal("load tag", err)
	}
	return toTag(t), nil
}

// List returns every tag, optionally of one type.
func (s *Service) List(ctx context.Context, tagType string) ([]Tag, error) {
	var filter *string
	if tagType != "" {
		filter = &tagType
	}
	rows, err := s.tags.List(ctx, filter)
	if err != nil {
		return nil, httperrors.Internal("list tags", err)
	}
	out := make([]Tag, len(rows))
	for i, t := range rows {
		out[i] = toTag(t)
	}
	return out, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, name, tagType *string) (Tag, error) {
	if name == nil && tagType == nil {
		return Tag{}, httperrors.Validation(MsgNoChanges, nil)
	}
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		name = &trimmed
	}
	t, err := s.tags.Update(ctx, id, name, tagType)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return Tag{}, httperrors.NotFound(MsgNotFound)
	case errors.Is(err, store.ErrDuplicate):
		return Tag{}, httperrors.Conflict(httperrors.ErrCodeTagNameTaken, MsgNameTaken)
	case err != nil:
		return Tag{}, httperrors.Internal("update tag", err)
	}
	return toTag(t), nil
}

// Delete removes the tag and detaches it from every quiz.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.tags.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return httperrors.NotFound(MsgNotFound)
		}
		return httperrors.Internal("delete tag", err)
	}
	s.logger.Info().Str("tag_id", id.String()).Msg("tag deleted")
	return nil
}
