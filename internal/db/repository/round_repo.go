package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/gokatarajesh/quiz-api/internal/db/store"
)

// ErrAnswerRejected means the conditional round update matched no row: the
// round ended or already holds the answer by the time the write ran.
var ErrAnswerRejected = errors.New("repository: round answer rejected")

type roundStore interface {
	CreateRound(ctx context.Context, arg store.CreateRoundParams) (store.Round, error)
	GetRoundByID(ctx context.Context, id uuid.UUID) (store.Round, error)
}

// roundTxStore is the write surface used inside the answer transaction.
type roundTxStore interface {
	ApplyRoundAnswer(ctx context.Context, arg store.ApplyRoundAnswerParams) (store.Round, error)
	IncrementUserScore(ctx context.Context, id uuid.UUID, delta int64) (int64, error)
}

type roundTxFunc func(ctx context.Context, fn func(tx roundTxStore) error) error

// RoundRepository persists rounds and applies answers atomically.
type RoundRepository struct {
	store roundStore
	inTx  roundTxFunc
}

// NewRoundRepository wires the repository to queries and a transaction runner.
func NewRoundRepository(s roundStore, runner *store.TxRunner) *RoundRepository {
	return newRoundRepository(s, func(ctx context.Context, fn func(tx roundTxStore) error) error {
		return runner.InTx(ctx, func(q *store.Queries) error { return fn(q) })
	})
}

func newRoundRepository(s roundStore, inTx roundTxFunc) *RoundRepository {
	return &RoundRepository{store: s, inTx: inTx}
}

// Create inserts a fresh round with its question snapshot.
func (r *RoundRepository) Create(ctx context.Context, params store.CreateRoundParams) (store.Round, error) {
	return r.store.CreateRound(ctx, params)
}

// Get fetches a round by id.
func (r *RoundRepository) Get(ctx context.Context, id uuid.UUID) (store.Round, error) {
	return r.store.GetRoundByID(ctx, id)
}

// ApplyAnswerParams is one graded submission.
type ApplyAnswerParams struct {
	RoundID    uuid.UUID
	QuestionID string
	Score      int64
	TimeSpent  int32
	HasEnded   bool
}

// ApplyAnswer records the answer and, when it closes a round that has a
// player, credits the round total to that player in the same transaction.
func (r *RoundRepository) ApplyAnswer(ctx context.Context, params ApplyAnswerParams) (store.Round, error) {
	var updated store.Round
	err := r.inTx(ctx, func(tx roundTxStore) error {
		var err error
		updated, err = tx.ApplyRoundAnswer(ctx, store.ApplyRoundAnswerParams{
			RoundID:    params.RoundID,
			QuestionID: params.QuestionID,
			Score:      params.Score,
			TimeSpent:  params.TimeSpent,
			HasEnded:   params.HasEnded,
		})
		if errors.Is(err, store.ErrNotFound) {
			return ErrAnswerRejected
		}
		if err != nil {
			return fmt.Errorf("apply round answer: %w", err)
		}
		if !params.HasEnded || updated.PlayerID == nil {
			return nil
		}
		// updated.Score already includes this answer.
		if _, err := tx.IncrementUserScore(ctx, *updated.PlayerID, updated.Score); err != nil && !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("increment user score: %w", err)
		}
		return nil
	})
	if err != nil {
		return store.Round{}, err
	}
	return updated, nil
}
