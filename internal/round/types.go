package round

import (
	"time"

	"github.com/google/uuid"

	"github.com/gokatarajesh/quiz-api/internal/db/store"
)

// Round is the client view of a play-through.
type Round struct {
	ID        uuid.UUID  `json:"id"`
	QuizID    uuid.UUID  `json:"quizId"`
	PlayerID  *uuid.UUID `json:"playerId"`
	Questions []string   `json:"questions"`
	Answered  []string   `json:"answered"`
	Score     int64      `json:"score"`
	TotalTime int32      `json:"totalTime"`
	HasEnded  bool       `json:"hasEnded"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func toRound(r store.Round) Round {
	questions := r.Questions
	if questions == nil {
		questions = []string{}
	}
	answered := r.Answered
	if answered == nil {
		answered = []string{}
	}
	return Round{
		ID:        r.ID,
		QuizID:    r.QuizID,
		PlayerID:  r.PlayerID,
		Questions: questions,
		Answered:  answered,
		Score:     r.Score,
		TotalTime: r.TotalTime,
		HasEnded:  r.HasEnded,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// PublicQuestion is what a player sees while playing. It has no correct
// answers or comment, so they cannot be serialized by accident.
type PublicQuestion struct {
	ID        string    `json:"id"`
	QuizID    uuid.UUID `json:"quizId"`
	Question  string    `json:"question"`
	Answers   []string  `json:"answers"`
	SortOrder int32     `json:"sortOrder"`
}

// NewPublicQuestion strips the answer key from q.
func NewPublicQuestion(q store.Question) PublicQuestion {
	return PublicQuestion{
		ID:        q.ID,
		QuizID:    q.QuizID,
		Question:  q.Question,
		Answers:   append([]string(nil), q.Answers...),
		SortOrder: q.SortOrder,
	}
}

// StartInput starts a round for a quiz. PlayerID is nil for anonymous play.
type StartInput struct {
	QuizID   uuid.UUID
	PlayerID *uuid.UUID
}

// StartResult is the new round plus the questions to render.
type StartResult struct {
	Round     Round            `json:"round"`
	Questions []PublicQuestion `json:"questions"`
}

// SubmitInput is one answer to one question of a round.
type SubmitInput struct {
	RoundID    uuid.UUID
	QuestionID string
	Response   []string
	TimeSpent  int
	HasEnded   bool
}

// SubmitResult is the grading feedback. TotalScore and TotalTime are set only
// when the submission ended the round.
type SubmitResult struct {
	IsCorrect      bool     `json:"isCorrect"`
	CorrectAnswers []string `json:"correctAnswers"`
	Comment        string   `json:"comment"`
	Score          int      `json:"score"`
	TotalScore     *int64   `json:"totalScore,omitempty"`
	TotalTime      *int32   `json:"totalTime,omitempty"`
}

type startRequest struct {
	QuizID string `json:"quizId" validate:"required,uuid"`
}

type submitRequest struct {
	ID         string   `json:"id" validate:"required,uuid"`
	QuestionID string   `json:"questionId" validate:"required"`
	Response   []string `json:"response" validate:"required,min=1,max=4"`
	TimeSpent  *int     `json:"timeSpent" validate:"required,min=0,max=59"`
	HasEnded   *bool    `json:"hasEnded" validate:"required"`
}

type getQuery struct {
	Type string `query:"type" validate:"required,eq=id"`
	ID   string `query:"id" validate:"required,uuid"`
}
