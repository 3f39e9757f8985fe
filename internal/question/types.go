package question

import (
	"time"

	"github.com/google/uuid"

	"github.com/gokatarajesh/quiz-api/internal/db/store"
)

const (
	MsgCreated          = "question added successfully"
	MsgUpdated          = "question updated successfully"
	MsgDeleted          = "question deleted successfully"
	MsgNotFound         = "question not found"
	MsgQuizNotFound     = "quiz not found"
	MsgIDInUse          = "question id already in use"
	MsgNotOwner         = "Unauthorized"
	MsgUnknownCorrect   = "every correct answer must be one of the answers"
	MsgIncompleteCreate = "question, answers and correctAnswers are required for a new question"
	MsgNoChanges        = "missing or invalid fields to update"
)

// Public is a question without its answer key.
type Public struct {
	ID        string    `json:"id"`
	QuizID    uuid.UUID `json:"quizId"`
	Question  string    `json:"question"`
	Answers   []string  `json:"answers"`
	SortOrder int32     `json:"sortOrder"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toPublic(q store.Question) Public {
	return Public{
		ID:        q.ID,
		QuizID:    q.QuizID,
		Question:  q.Question,
		Answers:   q.Answers,
		SortOrder: q.SortOrder,
		UpdatedAt: q.UpdatedAt,
	}
}

// AnswerKey is revealed once a player asks for the solution.
type AnswerKey struct {
	ID             string   `json:"id"`
	CorrectAnswers []string `json:"correctAnswers"`
	Comment        string   `json:"comment"`
}

// CreateInput is a complete new question.
type CreateInput struct {
	ID             string
	QuizID         uuid.UUID
	Question       string
	Answers        []string
	CorrectAnswers []string
	Comment        string
	SortOrder      int32
}

// UpdateInput upserts a question. Nil fields keep their stored value; when
// the question does not exist yet, QuizID, Question, Answers and
// CorrectAnswers are required.
type UpdateInput struct {
	ID             string
	QuizID         *uuid.UUID
	Question       *string
	Answers        []string
	CorrectAnswers []string
	Comment        *string
	SortOrder      *int32
}

func (in UpdateInput) empty() bool {
	return in.QuizID == nil && in.Question == nil && in.Answers == nil &&
		in.CorrectAnswers == nil && in.Comment == nil && in.SortOrder == nil
}

type createRequest struct {
	ID             string   `json:"id" validate:"required,max=128"`
	QuizID         string   `json:"quizId" validate:"required,uuid"`
	Question       string   `json:"question" validate:"required,max=1000"`
	Answers        []string `json:"answers" validate:"required,min=2,max=4,unique,dive,required"`
	CorrectAnswers []string `json:"correctAnswers" validate:"required,min=1,max=4,unique,dive,required"`
	Comment        string   `json:"comment" validate:"max=2000"`
	SortOrder      int32    `json:"sortOrder"`
}

type updateRequest struct {
	ID             string   `json:"id" validate:"required,max=128"`
	QuizID         string   `json:"quizId" validate:"omitempty,uuid"`
	Question       *string  `json:"question" validate:"omitempty,min=1,max=1000"`
	Answers        []string `json:"answers" validate:"omitempty,min=2,max=4,unique,dive,required"`
	CorrectAnswers []string `json:"correctAnswers" validate:"omitempty,min=1,max=4,unique,dive,required"`
	Comment        *string  `json:"comment" validate:"omitempty,max=2000"`
	SortOrder      *int32   `json:"sortOrder"`
}

type getQuery struct {
	Type   string `query:"type" validate:"required,oneof=all id quizId"`
	ID     string `query:"id" validate:"required_if=Type id"`
	QuizID string `query:"quizId" validate:"required_if=Type quizId,omitempty,uuid"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=500"`
}

type idQuery struct {
	ID string `query:"id" validate:"required"`
}

type deleteQuery struct {
	Type string `query:"type" validate:"required,eq=id"`
	ID   string `query:"id" validate:"required"`
}
