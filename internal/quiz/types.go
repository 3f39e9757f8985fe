package quiz

import (
	"time"

	"github.com/google/uuid"

	"github.com/gokatarajesh/quiz-api/internal/db/store"
)

const (
	MsgCreated      = "quiz created successfully"
	MsgUpdated      = "quiz updated successfully"
	MsgDeleted      = "quiz deleted successfully"
	MsgImageSaved   = "image saved successfully"
	MsgNotFound     = "quiz not found"
	MsgNotOwner     = "Unauthorized"
	MsgNoChanges    = "missing or invalid fields to update"
	MsgNoStorage    = "image storage is not configured"
	DefaultTitle    = "Untitled"
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Quiz is the client view of a quiz.
type Quiz struct {
	ID         uuid.UUID   `json:"id"`
	Title      string      `json:"title"`
	Status     string      `json:"status"`
	References []string    `json:"references"`
	Image      string      `json:"image"`
	OwnerID    uuid.UUID   `json:"ownerId"`
	Tags       []uuid.UUID `json:"tags"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

func toQuiz(z store.Quiz) Quiz {
	refs := z.References
	if refs == nil {
		refs = []string{}
	}
	tags := z.TagIDs
	if tags == nil {
		tags = []uuid.UUID{}
	}
	return Quiz{
		ID:         z.ID,
		Title:      z.Title,
		Status:     z.Status,
		References: refs,
		Image:      z.Image,
		OwnerID:    z.OwnerID,
		Tags:       tags,
		CreatedAt:  z.CreatedAt,
		UpdatedAt:  z.UpdatedAt,
	}
}

// CreateInput describes a new draft quiz.
type CreateInput struct {
	Title      string
	References []string
	Tags       []uuid.UUID
}

// UpdateInput is a partial quiz change. Nil fields are left untouched.
type UpdateInput struct {
	ID         uuid.UUID
	Title      *string
	Status     *string
	References []string
	Tags       []uuid.UUID
}

// Filter selects quizzes for listing. Zero fields do not filter.
type Filter struct {
	Title   string
	OwnerID *uuid.UUID
	Tags    []uuid.UUID
}

// QuestionCount is the response of the question count endpoint.
type QuestionCount struct {
	QuizID        uuid.UUID `json:"quizId"`
	QuestionCount int64     `json:"questionCount"`
}

// PlayCount is the response of the plays endpoint.
type PlayCount struct {
	QuizID    uuid.UUID `json:"quizId"`
	PlayCount int64     `json:"playCount"`
}

type createRequest struct {
	Title      string   `json:"title" validate:"omitempty,max=200"`
	References []string `json:"references" validate:"omitempty,max=20,dive,max=500"`
	Tags       []string `json:"tags" validate:"omitempty,unique,dive,uuid"`
}

type updateRequest struct {
	ID         string   `json:"id" validate:"required,uuid"`
	Title      *string  `json:"title" validate:"omitempty,min=1,max=200"`
	Status     *string  `json:"status" validate:"omitempty,oneof=draft published"`
	References []string `json:"references" validate:"omitempty,max=20,dive,max=500"`
	Tags       []string `json:"tags" validate:"omitempty,unique,dive,uuid"`
}

type getQuery struct {
	Type    string `query:"type" validate:"required,oneof=all id title ownerId tags"`
	ID      string `query:"id" validate:"required_if=Type id,omitempty,uuid"`
	Title   string `query:"title" validate:"required_if=Type title"`
	OwnerID string `query:"ownerId" validate:"required_if=Type ownerId,omitempty,uuid"`
	Tags    string `query:"tags" validate:"required_if=Type tags"`
}

type quizIDQuery struct {
	QuizID string `query:"quizId" validate:"required,uuid"`
}

type idQuery struct {
	ID string `query:"id" validate:"required,uuid"`
}

type deleteQuery struct {
	Type string `query:"type" validate:"required,eq=id"`
	ID   string `query:"id" validate:"required,uuid"`
}
