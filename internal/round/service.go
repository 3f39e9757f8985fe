package round

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-api/internal/db/repository"
	"github.com/gokatarajesh/quiz-api/internal/db/store"
	"github.com/gokatarajesh/quiz-api/internal/round/scoring"
	httperrors "github.com/gokatarajesh/quiz-api/pkg/http/errors"
)

// Messages shared by the service and its handlers.
const (
	MsgQuizNotFound     = "quiz not found"
	MsgRoundNotFound    = "round not found"
	MsgQuestionNotFound = "question not found"
	MsgRoundEnded       = "cannot update a round that has already ended"
	MsgAlreadyAnswered  = "this question has already been answered"
)

// Rounds persists rounds.
type Rounds interface {
	Create(ctx context.Context, params store.CreateRoundParams) (store.Round, error)
	Get(ctx context.Context, id uuid.UUID) (store.Round, error)
	ApplyAnswer(ctx context.Context, params repository.ApplyAnswerParams) (store.Round, error)
}

// Quizzes resolves the quiz a round is started for.
type Quizzes interface {
	Get(ctx context.Context, id uuid.UUID) (store.Quiz, error)
}

// Questions resolves question content.
type Questions interface {
	Get(ctx context.Context, id string) (store.Question, error)
	ListByQuiz(ctx context.Context, quizID uuid.UUID) ([]store.Question, error)
}

// ResultRecorder receives finished round totals for ranking.
type ResultRecorder interface {
	RecordRoundResult(ctx context.Context, userID uuid.UUID, score int64) error
}

// Metrics counts lifecycle events.
type Metrics interface {
	RoundStarted()
	RoundCompleted()
	AnswerGraded(correct bool)
}

// Service runs the round lifecycle: start, submit answer and get.
type Service struct {
	rounds    Rounds
	quizzes   Quizzes
	questions Questions
	results   ResultRecorder
	metrics   Metrics
	engine    *scoring.Engine
	logger    zerolog.Logger
}

// NewService creates a round service with all dependencies.
func NewService(
	rounds Rounds,
	quizzes Quizzes,
	questions Questions,
	results ResultRecorder,
	metrics Metrics,
	engine *scoring.Engine,
	logger zerolog.Logger,
) *Service {
	if engine == nil {
		engine = scoring.NewEngine(scoring.DefaultConfig())
	}
	return &Service{
		rounds:    rounds,
		quizzes:   quizzes,
		questions: questions,
		results:   results,
		metrics:   metrics,
		engine:    engine,
		logger:    logger.With().Str("component", "round_service").Logger(),
	}
}

// Start snapshots the quiz's current question ids into a new round. Every
// call creates a new round.
func (s *Service) Start(ctx context.Context, in StartInput) (StartResult, error) {
	if _, err := s.quizzes.Get(ctx, in.QuizID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return StartResult{}, httperrors.NotFound(MsgQuizNotFound)
		}
		return StartResult{}, httperrors.Internal("load quiz", err)
	}

	questions, err := s.questions.ListByQuiz(ctx, in.QuizID)
	if err != nil {
		return StartResult{}, httperrors.Internal("list quiz questions", err)
	}

	ids := make([]string, 0, len(questions))
	public := make([]PublicQuestion, 0, len(questions))
	for _, q := range questions {
		ids = append(ids, q.ID)
		public = append(public, NewPublicQuestion(q))
	}

	created, err := s.rounds.Create(ctx, store.CreateRoundParams{
		QuizID:    in.QuizID,
		PlayerID:  in.PlayerID,
		Questions: ids,
	})
	if err != nil {
		return StartResult{}, httperrors.Internal("create round", err)
	}

	s.metrics.RoundStarted()
	s.logger.Debug().
		Str("round_id", created.ID.String()).
		Str("quiz_id", in.QuizID.String()).
		Int("questions", len(ids)).
		Msg("round started")

	return StartResult{Round: toRound(created), Questions: public}, nil
}

// Get returns a round by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Round, error) {
	r, err := s.rounds.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Round{}, httperrors.NotFound(MsgRoundNotFound)
		}
		return Round{}, httperrors.Internal("load round", err)
	}
	return toRound(r), nil
}

// submission carries state between the steps of SubmitAnswer.
type submission struct {
	in       SubmitInput
	round    store.Round
	question store.Question
	grade    scoring.Result
	updated  store.Round
}

// step is one stage of SubmitAnswer. The first error stops the pipeline.
type step func(ctx context.Context, sub *submission) error

// SubmitAnswer grades one answer and records it on the round.
func (s *Service) SubmitAnswer(ctx context.Context, in SubmitInput) (SubmitResult, error) {
	sub := &submission{in: in}
	pipeline := []step{
		s.loadRound,
		ensureOpen,
		ensureUnanswered,
		s.loadQuestion,
		s.gradeAnswer,
		s.persist,
		s.publish,
	}
	for _, run := range pipeline {
		if err := run(ctx, sub); err != nil {
			return SubmitResult{}, err
		}
	}
	return sub.result(), nil
}

func (s *Service) loadRound(ctx context.Context, sub *submission) error {
	r, err := s.rounds.Get(ctx, sub.in.RoundID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return httperrors.NotFound(MsgRoundNotFound)
		}
		return httperrors.Internal("load round", err)
	}
	sub.round = r
	return nil
}

func ensureOpen(_ context.Context, sub *submission) error {
	if sub.round.HasEnded {
		return httperrors.Conflict(httperrors.ErrCodeRoundEnded, MsgRoundEnded)
	}
	return nil
}

func ensureUnanswered(_ context.Context, sub *submission) error {
	if slices.Contains(sub.round.Answered, sub.in.QuestionID) {
		return httperrors.Conflict(httperrors.ErrCodeAlreadyAnswered, MsgAlreadyAnswered)
	}
	return nil
}

func (s *Service) loadQuestion(ctx context.Context, sub *submission) error {
	q, err := s.questions.Get(ctx, sub.in.QuestionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return httperrors.NotFound(MsgQuestionNotFound)
		}
		return httperrors.Internal("load question", err)
	}
	sub.question = q
	return nil
}

// gradeAnswer decides correctness with the same exact multiset comparison
// that drives the score, so isCorrect and score always agree.
func (s *Service) gradeAnswer(_ context.Context, sub *submission) error {
	sub.grade = s.engine.Grade(sub.question.CorrectAnswers, sub.in.Response, sub.in.TimeSpent)
	return nil
}

func (s *Service) persist(ctx context.Context, sub *submission) error {
	updated, err := s.rounds.ApplyAnswer(ctx, repository.ApplyAnswerParams{
		RoundID:    sub.in.RoundID,
		QuestionID: sub.in.QuestionID,
		Score:      int64(sub.grade.Score),
		TimeSpent:  int32(sub.in.TimeSpent),
		HasEnded:   sub.in.HasEnded,
	})
	if errors.Is(err, repository.ErrAnswerRejected) {
		return s.explainRejection(ctx, sub)
	}
	if err != nil {
		return httperrors.Internal("record answer", err)
	}
	sub.updated = updated
	return nil
}

// explainRejection re-reads a round whose conditional update lost a race and
// reports the precondition that now fails.
func (s *Service) explainRejection(ctx context.Context, sub *submission) error {
	current, err := s.rounds.Get(ctx, sub.in.RoundID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return httperrors.NotFound(MsgRoundNotFound)
		}
		return httperrors.Internal("reload round", err)
	}
	if current.HasEnded {
		return httperrors.Conflict(httperrors.ErrCodeRoundEnded, MsgRoundEnded)
	}
	return httperrors.Conflict(httperrors.ErrCodeAlreadyAnswered, MsgAlreadyAnswered)
}

// publish runs after commit. Ranking is best effort: Postgres holds the
// authoritative score and the leaderboard is rebuilt from it.
func (s *Service) publish(ctx context.Context, sub *submission) error {
	s.metrics.AnswerGraded(sub.grade.IsCorrect)
	if !sub.in.HasEnded {
		return nil
	}
	s.metrics.RoundCompleted()

	if sub.updated.PlayerID == nil || s.results == nil {
		return nil
	}
	if err := s.results.RecordRoundResult(ctx, *sub.updated.PlayerID, sub.updated.Score); err != nil {
		s.logger.Warn().Err(err).
			Str("round_id", sub.updated.ID.String()).
			Str("player_id", sub.updated.PlayerID.String()).
			Msg("failed to record round result on leaderboard")
	}
	return nil
}

func (sub *submission) result() SubmitResult {
	res := SubmitResult{
		IsCorrect:      sub.grade.IsCorrect,
		CorrectAnswers: sub.question.CorrectAnswers,
		Comment:        sub.question.Comment,
		Score:          sub.grade.Score,
	}
	if sub.in.HasEnded {
		// The returned row is the snapshot at write time plus this answer.
		total := sub.updated.Score
		elapsed := sub.updated.TotalTime
		res.TotalScore = &total
		res.TotalTime = &elapsed
	}
	return res
}

// ParseID parses a round or quiz id, reporting failures as validation errors.
func ParseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, httperrors.Validation(fmt.Sprintf("invalid %s", field), nil)
	}
	return id, nil
}
