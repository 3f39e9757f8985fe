package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const roundColumns = `id, quiz_id, player_id, questions, answered, score, total_time, has_ended, created_at, updated_at`

func scanRound(row pgx.Row) (Round, error) {
	var r Round
	err := row.Scan(&r.ID, &r.QuizID, &r.PlayerID, &r.Questions, &r.Answered, &r.Score, &r.TotalTime, &r.HasEnded, &r.CreatedAt, &r.UpdatedAt)
	return r, translate(err)
}

type CreateRoundParams struct {
	QuizID    uuid.UUID
	PlayerID  *uuid.UUID
	Questions []string
}

const createRound = `INSERT INTO rounds (quiz_id, player_id, questions)
VALUES ($1, $2, COALESCE($3::text[], '{}'))
RETURNING ` + roundColumns

func (q *Queries) CreateRound(ctx context.Context, arg CreateRoundParams) (Round, error) {
	return scanRound(q.db.QueryRow(ctx, createRound, arg.QuizID, arg.PlayerID, arg.Questions))
}

const getRoundByID = `SELECT ` + roundColumns + ` FROM rounds WHERE id = $1`

func (q *Queries) GetRoundByID(ctx context.Context, id uuid.UUID) (Round, error) {
	return scanRound(q.db.QueryRow(ctx, getRoundByID, id))
}

type ApplyRoundAnswerParams struct {
	RoundID    uuid.UUID
	QuestionID string
	Score      int64
	TimeSpent  int32
	HasEnded   bool
}

// The WHERE clause re-checks both preconditions so that concurrent
// submissions for the same round cannot both apply.
const applyRoundAnswer = `UPDATE rounds SET
	score      = score + $2,
	total_time = total_time + $3,
	has_ended  = $4,
	answered   = array_append(answered, $5::text),
	updated_at = now()
WHERE id = $1
  AND has_ended = FALSE
  AND NOT ($5::text = ANY(answered))
RETURNING ` + roundColumns

// ApplyRoundAnswer returns ErrNotFound when the round is missing, already
// ended or already holds the answer.
func (q *Queries) ApplyRoundAnswer(ctx context.Context, arg ApplyRoundAnswerParams) (Round, error) {
	return scanRound(q.db.QueryRow(ctx, applyRoundAnswer,
		arg.RoundID, arg.Score, arg.TimeSpent, arg.HasEnded, arg.QuestionID))
}
