package round

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/quiz-api/internal/db/repository"
	"github.com/gokatarajesh/quiz-api/internal/db/store"
	"github.com/gokatarajesh/quiz-api/internal/round/scoring"
	httperrors "github.com/gokatarajesh/quiz-api/pkg/http/errors"
)

// memoryRounds mimics the conditional update of the Postgres store.
type memoryRounds struct {
	mu       sync.Mutex
	rounds   map[uuid.UUID]store.Round
	credited map[uuid.UUID]int64
	applyErr error
}

func newMemoryRounds() *memoryRounds {
	return &memoryRounds{rounds: map[uuid.UUID]store.Round{}, credited: map[uuid.UUID]int64{}}
}

func (m *memoryRounds) Create(_ context.Context, p store.CreateRoundParams) (store.Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := store.Round{
		ID:        uuid.New(),
		QuizID:    p.QuizID,
		PlayerID:  p.PlayerID,
		Questions: append([]string(nil), p.Questions...),
		Answered:  []string{},
		CreatedAt: time.Now(),
	}
	m.rounds[r.ID] = r
	return clone(r), nil
}

func (m *memoryRounds) Get(_ context.Context, id uuid.UUID) (store.Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rounds[id]
	if !ok {
		return store.Round{}, store.ErrNotFound
	}
	return clone(r), nil
}

func (m *memoryRounds) ApplyAnswer(_ context.Context, p repository.ApplyAnswerParams) (store.Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.applyErr != nil {
		return store.Round{}, m.applyErr
	}
	r, ok := m.rounds[p.RoundID]
	if !ok || r.HasEnded || slices.Contains(r.Answered, p.QuestionID) {
		return store.Round{}, repository.ErrAnswerRejected
	}
	r.Score += p.Score
	r.TotalTime += p.TimeSpent
	r.HasEnded = p.HasEnded
	r.Answered = append(r.Answered, p.QuestionID)
	m.rounds[r.ID] = r
	if p.HasEnded && r.PlayerID != nil {
		m.credited[*r.PlayerID] += r.Score
	}
	return clone(r), nil
}

func clone(r store.Round) store.Round {
	r.Questions = append([]string(nil), r.Questions...)
	r.Answered = append([]string{}, r.Answered...)
	return r
}

type memoryQuizzes map[uuid.UUID]store.Quiz

func (m memoryQuizzes) Get(_ context.Context, id uuid.UUID) (store.Quiz, error) {
	q, ok := m[id]
	if !ok {
		return store.Quiz{}, store.ErrNotFound
	}
	return q, nil
}

type memoryQuestions struct {
	mu    sync.Mutex
	items []store.Question
}

func (m *memoryQuestions) Get(_ context.Context, id string) (store.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, q := range m.items {
		if q.ID == id {
			return q, nil
		}
	}
	return store.Question{}, store.ErrNotFound
}

func (m *memoryQuestions) ListByQuiz(_ context.Context, quizID uuid.UUID) ([]store.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []store.Question
	for _, q := range m.items {
		if q.QuizID == quizID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (m *memoryQuestions) add(q store.Question) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, q)
}

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) RecordRoundResult(ctx context.Context, userID uuid.UUID, score int64) error {
	return m.Called(ctx, userID, score).Error(0)
}

type countingMetrics struct {
	mu                                     sync.Mutex
	started, completed, correct, incorrect int
}

func (c *countingMetrics) RoundStarted() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started++
}

func (c *countingMetrics) RoundCompleted() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.completed++
}

func (c *countingMetrics) AnswerGraded(ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ok {
		c.correct++
	} else {
		c.incorrect++
	}
}

type fixture struct {
	svc       *Service
	rounds    *memoryRounds
	questions *memoryQuestions
	recorder  *mockRecorder
	metrics   *countingMetrics
	quizID    uuid.UUID
}

// newFixture builds quiz Q with A (correct {x}) and B (correct {y, z}).
func newFixture(t *testing.T) *fixture {
	t.Helper()
	quizID := uuid.New()
	f := &fixture{
		rounds:   newMemoryRounds(),
		recorder: new(mockRecorder),
		metrics:  &countingMetrics{},
		quizID:   quizID,
		questions: &memoryQuestions{items: []store.Question{
			{ID: "A", QuizID: quizID, Question: "pick x", Answers: []string{"x", "w"}, CorrectAnswers: []string{"x"}, Comment: "x it is", SortOrder: 0},
			{ID: "B", QuizID: quizID, Question: "pick y and z", Answers: []string{"y", "z", "w"}, CorrectAnswers: []string{"y", "z"}, SortOrder: 1},
		}},
	}
	quizzes := memoryQuizzes{quizID: {ID: quizID, Title: "Q"}}
	f.svc = NewService(f.rounds, quizzes, f.questions, f.recorder, f.metrics, scoring.NewEngine(scoring.DefaultConfig()), zerolog.Nop())
	return f
}

func TestStart_SnapshotsQuestionsAndScrubsAnswers(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Start(context.Background(), StartInput{QuizID: f.quizID})
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, res.Round.Questions)
	assert.Equal(t, int64(0), res.Round.Score)
	assert.Equal(t, int32(0), res.Round.TotalTime)
	assert.False(t, res.Round.HasEnded)
	assert.Empty(t, res.Round.Answered)
	assert.Nil(t, res.Round.PlayerID)
	require.Len(t, res.Questions, 2)
	assert.Equal(t, "pick x", res.Questions[0].Question)
	assert.Equal(t, 1, f.metrics.started)
}

func TestStart_UnknownQuizCreatesNothing(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Start(context.Background(), StartInput{QuizID: uuid.New()})
	require.Error(t, err)
	assert.True(t, httperrors.IsKind(err, httperrors.KindNotFound))
	assert.Equal(t, MsgQuizNotFound, httperrors.As(err).Message)
	assert.Empty(t, f.rounds.rounds)
}

func TestStart_TwiceGivesIndependentSnapshots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Start(ctx, StartInput{QuizID: f.quizID})
	require.NoError(t, err)

	f.questions.add(store.Question{ID: "C", QuizID: f.quizID, CorrectAnswers: []string{"c"}, SortOrder: 2})

	second, err := f.svc.Start(ctx, StartInput{QuizID: f.quizID})
	require.NoError(t, err)

	assert.NotEqual(t, first.Round.ID, second.Round.ID)
	assert.Equal(t, []string{"A", "B"}, first.Round.Questions)
	assert.Equal(t, []string{"A", "B", "C"}, second.Round.Questions)

	reread, err := f.svc.Get(ctx, first.Round.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, reread.Questions)
}

func TestSubmit_FullRoundScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	player := uuid.New()

	started, err := f.svc.Start(ctx, StartInput{QuizID: f.quizID, PlayerID: &player})
	require.NoError(t, err)
	roundID := started.Round.ID

	first, err := f.svc.SubmitAnswer(ctx, SubmitInput{RoundID: roundID, QuestionID: "A", Response: []string{"x"}, TimeSpent: 0})
	require.NoError(t, err)
	assert.True(t, first.IsCorrect)
	assert.Equal(t, 1000, first.Score)
	assert.Equal(t, "x it is", first.Comment)
	assert.Nil(t, first.TotalScore)
	assert.Nil(t, first.TotalTime)

	mid, err := f.svc.Get(ctx, roundID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), mid.Score)
	assert.Equal(t, []string{"A"}, mid.Answered)

	f.recorder.On("RecordRoundResult", mock.Anything, player, int64(1500)).Return(nil)

	last, err := f.svc.SubmitAnswer(ctx, SubmitInput{RoundID: roundID, QuestionID: "B", Response: []string{"z", "y"}, TimeSpent: 30, HasEnded: true})
	require.NoError(t, err)
	assert.True(t, last.IsCorrect)
	assert.Equal(t, 500, last.Score)
	require.NotNil(t, last.TotalScore)
	assert.Equal(t, int64(1500), *last.TotalScore)
	require.NotNil(t, last.TotalTime)
	assert.Equal(t, int32(30), *last.TotalTime)

	ended, err := f.svc.Get(ctx, roundID)
	require.NoError(t, err)
	assert.True(t, ended.HasEnded)
	assert.Equal(t, int64(1500), ended.Score)
	assert.Equal(t, int64(1500), f.rounds.credited[player])

	_, err = f.svc.SubmitAnswer(ctx, SubmitInput{RoundID: roundID, QuestionID: "A", Response: []string{"x"}, TimeSpent: 0})
	require.Error(t, err)
	assert.True(t, httperrors.IsKind(err, httperrors.KindConflict))

	after, err := f.svc.Get(ctx, roundID)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), after.Score)
	assert.Equal(t, int64(1500), f.rounds.credited[player])

	f.recorder.AssertExpectations(t)
	assert.Equal(t, 1, f.metrics.completed)
	assert.Equal(t, 2, f.metrics.correct)
}

func TestSubmit_ResubmissionRejectedWithoutMutation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	started, err := f.svc.Start(ctx, StartInput{QuizID: f.quizID})
	require.NoError(t, err)
	_, err = f.svc.SubmitAnswer(ctx, SubmitInput{RoundID: started.Round.ID, QuestionID: "A", Response: []string{"w"}, TimeSpent: 10})
	require.NoError(t, err)

	before, err := f.svc.Get(ctx, started.Round.ID)
	require.NoError(t, err)

	_, err = f.svc.SubmitAnswer(ctx, SubmitInput{RoundID: started.Round.ID, QuestionID: "A", Response: []string{"x"}, TimeSpent: 0})
	require.Error(t, err)
	appErr := httperrors.As(err)
	assert.Equal(t, httperrors.KindConflict, appErr.Kind)
	assert.Equal(t, MsgAlreadyAnswered, appErr.Message)

	after, err := f.svc.Get(ctx, started.Round.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSubmit_AfterEndAlwaysRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	started, err := f.svc.Start(ctx, StartInput{QuizID: f.quizID})
	require.NoError(t, err)
	_, err = f.svc.SubmitAnswer(ctx, SubmitInput{RoundID: started.Round.ID, QuestionID: "A", Response: []string{"x"}, HasEnded: true})
	require.NoError(t, err)

	_, err = f.svc.SubmitAnswer(ctx, SubmitInput{RoundID: started.Round.ID, QuestionID: "B", Response: []string{"y", "z"}})
	require.Error(t, err)
	appErr := httperrors.As(err)
	assert.Equal(t, httperrors.KindConflict, appErr.Kind)
	assert.Equal(t, MsgRoundEnded, appErr.Message)
	f.recorder.AssertNotCalled(t, "RecordRoundResult", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmit_IsCorrectMatchesScore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	started, err := f.svc.Start(ctx, StartInput{QuizID: f.quizID})
	require.NoError(t, err)

	// Only the first element is right: not an exact match.
	res, err := f.svc.SubmitAnswer(ctx, SubmitInput{RoundID: started.Round.ID, QuestionID: "B", Response: []string{"y", "w"}, TimeSpent: 5})
	require.NoError(t, err)
	assert.False(t, res.IsCorrect)
	assert.Zero(t, res.Score)
	assert.Equal(t, []string{"y", "z"}, res.CorrectAnswers)
}

func TestSubmit_NotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SubmitAnswer(ctx, SubmitInput{RoundID: uuid.New(), QuestionID: "A", Response: []string{"x"}})
	assert.Equal(t, MsgRoundNotFound, httperrors.As(err).Message)

	started, err := f.svc.Start(ctx, StartInput{QuizID: f.quizID})
	require.NoError(t, err)
	_, err = f.svc.SubmitAnswer(ctx, SubmitInput{RoundID: started.Round.ID, QuestionID: "missing", Response: []string{"x"}})
	assert.True(t, httperrors.IsKind(err, httperrors.KindNotFound))
	assert.Equal(t, MsgQuestionNotFound, httperrors.As(err).Message)

	round, err := f.svc.Get(ctx, started.Round.ID)
	require.NoError(t, err)
	assert.Empty(t, round.Answered)
}

func TestSubmit_LostRaceReportsConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	started, err := f.svc.Start(ctx, StartInput{QuizID: f.quizID})
	require.NoError(t, err)

	// Another request answers A between this request's read and its write.
	racer := &racingRounds{memoryRounds: f.rounds, before: func() {
		_, _ = f.rounds.ApplyAnswer(ctx, repository.ApplyAnswerParams{RoundID: started.Round.ID, QuestionID: "A", Score: 1000})
	}}
	f.svc.rounds = racer

	_, err = f.svc.SubmitAnswer(ctx, SubmitInput{RoundID: started.Round.ID, QuestionID: "A", Response: []string{"x"}})
	require.Error(t, err)
	assert.Equal(t, MsgAlreadyAnswered, httperrors.As(err).Message)

	round, err := f.svc.Get(ctx, started.Round.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), round.Score)
}

func TestSubmit_ConcurrentSameQuestionScoresOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	started, err := f.svc.Start(ctx, StartInput{QuizID: f.quizID})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.SubmitAnswer(ctx, SubmitInput{RoundID: started.Round.ID, QuestionID: "A", Response: []string{"x"}})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok int
	for err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.True(t, httperrors.IsKind(err, httperrors.KindConflict))
	}
	assert.Equal(t, 1, ok)

	round, err := f.svc.Get(ctx, started.Round.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), round.Score)
	assert.Equal(t, []string{"A"}, round.Answered)
}

func TestSubmit_PersistFailureIsInternal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	started, err := f.svc.Start(ctx, StartInput{QuizID: f.quizID})
	require.NoError(t, err)
	f.rounds.applyErr = errors.New("connection refused")

	_, err = f.svc.SubmitAnswer(ctx, SubmitInput{RoundID: started.Round.ID, QuestionID: "A", Response: []string{"x"}})
	require.Error(t, err)
	assert.True(t, httperrors.IsKind(err, httperrors.KindInternal))
	assert.Zero(t, f.metrics.correct)
}

func TestSubmit_LeaderboardFailureDoesNotFailRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	player := uuid.New()

	started, err := f.svc.Start(ctx, StartInput{QuizID: f.quizID, PlayerID: &player})
	require.NoError(t, err)
	f.recorder.On("RecordRoundResult", mock.Anything, player, int64(1000)).Return(errors.New("redis down"))

	res, err := f.svc.SubmitAnswer(ctx, SubmitInput{RoundID: started.Round.ID, QuestionID: "A", Response: []string{"x"}, HasEnded: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1000), *res.TotalScore)
	assert.Equal(t, int64(1000), f.rounds.credited[player])
}

// racingRounds runs before() ahead of every ApplyAnswer.
type racingRounds struct {
	*memoryRounds
	before func()
}

func (r *racingRounds) ApplyAnswer(ctx context.Context, p repository.ApplyAnswerParams) (store.Round, error) {
	r.before()
	return r.memoryRounds.ApplyAnswer(ctx, p)
}
