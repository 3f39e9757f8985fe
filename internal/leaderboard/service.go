package leaderboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-api/internal/db/store"
)

// Entry is one ranked player.
type Entry struct {
	Rank   int64     `json:"rank"`
	UserID uuid.UUID `json:"userId"`
	Score  int64     `json:"score"`
}

// Scores reads lifetime scores from the database, which stays the source of truth.
type Scores interface {
	TopScores(ctx context.Context, limit int32) ([]store.UserScore, error)
}

// ServiceOptions configures leaderboard service behavior.
type ServiceOptions struct {
	Key          string
	DefaultLimit int
	MaxLimit     int
	RebuildTopN  int
}

// Service keeps the all time ranking in a redis sorted set.
type Service struct {
	redis        redis.Cmdable
	scores       Scores
	key          string
	defaultLimit int
	maxLimit     int
	rebuildTopN  int
	logger       zerolog.Logger
}

// NewService constructs a leaderboard service instance.
func NewService(rdb redis.Cmdable, scores Scores, logger zerolog.Logger, opts ServiceOptions) *Service {
	if opts.Key == "" {
		opts.Key = "lb:all_time"
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = 100
	}
	if opts.DefaultLimit <= 0 || opts.DefaultLimit > opts.MaxLimit {
		opts.DefaultLimit = 10
	}
	if opts.RebuildTopN <= 0 {
		opts.RebuildTopN = 1000
	}
	return &Service{
		redis:        rdb,
		scores:       scores,
		key:          opts.Key,
		defaultLimit: opts.DefaultLimit,
		maxLimit:     opts.MaxLimit,
		rebuildTopN:  opts.RebuildTopN,
		logger:       logger.With().Str("component", "leaderboard").Logger(),
	}
}

// RecordRoundResult adds a finished round's total to the player's ranking score.
func (s *Service) RecordRoundResult(ctx context.Context, userID uuid.UUID, score int64) error {
	if err := s.redis.ZIncrBy(ctx, s.key, float64(score), userID.String()).Err(); err != nil {
		return fmt.Errorf("record round result: %w", err)
	}
	return nil
}

// Top returns the highest ranked players. A limit outside [1, max] falls back
// to the default.
func (s *Service) Top(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > s.maxLimit {
		limit = s.defaultLimit
	}

	results, err := s.redis.ZRevRangeWithScores(ctx, s.key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("fetch leaderboard: %w", err)
	}

	entries := make([]Entry, 0, len(results))
	for i, z := range results {
		member, _ := z.Member.(string)
		id, err := uuid.Parse(member)
		if err != nil {
			s.logger.Warn().Str("member", member).Msg("skipping malformed leaderboard member")
			continue
		}
		entries = append(entries, Entry{Rank: int64(i) + 1, UserID: id, Score: int64(z.Score)})
	}
	return entries, nil
}

// Rank returns the 1 based position of the user, or 0 when unranked.
func (s *Service) Rank(ctx context.Context, userID uuid.UUID) (int64, error) {
	rank, err := s.redis.ZRevRank(ctx, s.key, userID.String()).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("fetch rank: %w", err)
	}
	return rank + 1, nil
}

// Rebuild replaces the sorted set with the top scores from the database.
func (s *Service) Rebuild(ctx context.Context) (int, error) {
	rows, err := s.scores.TopScores(ctx, int32(s.rebuildTopN))
	if err != nil {
		return 0, fmt.Errorf("load scores: %w", err)
	}

	pipe := s.redis.TxPipeline()
	pipe.Del(ctx, s.key)
	if len(rows) > 0 {
		members := make([]redis.Z, len(rows))
		for i, row := range rows {
			members[i] = redis.Z{Score: float64(row.Score), Member: row.ID.String()}
		}
		pipe.ZAdd(ctx, s.key, members...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("rebuild leaderboard: %w", err)
	}

	s.logger.Info().Int("entries", len(rows)).Msg("leaderboard rebuilt")
	return len(rows), nil
}

// SeedIfEmpty rebuilds the ranking only when the sorted set does not exist yet.
func (s *Service) SeedIfEmpty(ctx context.Context) (bool, error) {
	n, err := s.redis.ZCard(ctx, s.key).Result()
	if err != nil {
		return false, fmt.Errorf("count leaderboard: %w", err)
	}
	if n > 0 {
		return false, nil
	}
	if _, err := s.Rebuild(ctx); err != nil {
		return false, err
	}
	return true, nil
}
