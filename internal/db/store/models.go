package store

import (
	"time"

	"github.com/google/uuid"
)

// User is a row of users.
type User struct {
	ID                uuid.UUID
	GoogleID          *string
	FacebookID        *string
	Firstname         string
	Middlename        string
	Lastname          string
	Email             string
	Username          string
	Dob               *time.Time
	Gender            string
	Nationality       string
	Language          string
	Occupation        string
	Score             int64
	Rank              int32
	PasswordHash      *string
	Photo             string
	VerificationToken string
	IsEmailVerified   bool
	Role              string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// RefreshToken is a row of refresh_tokens.
type RefreshToken struct {
	ID        uuid.UUID
	Value     string
	UserID    uuid.UUID
	IsRevoked bool
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Tag is a row of tags.
type Tag struct {
	ID        uuid.UUID
	Name      string
	Type      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Quiz is a row of quizzes.
type Quiz struct {
	ID         uuid.UUID
	Title      string
	Status     string
	References []string
	Image      string
	OwnerID    uuid.UUID
	TagIDs     []uuid.UUID
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Question is a row of questions.
type Question struct {
	ID             string
	QuizID         uuid.UUID
	Question       string
	Answers        []string
	CorrectAnswers []string
	Comment        string
	SortOrder      int32
	UpdatedAt      time.Time
}

// Round is a row of rounds.
type Round struct {
	ID        uuid.UUID
	QuizID    uuid.UUID
	PlayerID  *uuid.UUID
	Questions []string
	Answered  []string
	Score     int64
	TotalTime int32
	HasEnded  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserScore is a projection used to seed the leaderboard.
type UserScore struct {
	ID    uuid.UUID
	Score int64
}
