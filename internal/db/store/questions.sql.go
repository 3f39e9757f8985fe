package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const questionColumns = `id, quiz_id, question, answers, correct_answers, comment, sort_order, updated_at`

func scanQuestion(row pgx.Row) (Question, error) {
	var x Question
	err := row.Scan(&x.ID, &x.QuizID, &x.Question, &x.Answers, &x.CorrectAnswers, &x.Comment, &x.SortOrder, &x.UpdatedAt)
	return x, translate(err)
}

func collectQuestions(rows pgx.Rows) ([]Question, error) {
	defer rows.Close()
	var items []Question
	for rows.Next() {
		x, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, x)
	}
	return items, rows.Err()
}

type QuestionParams struct {
	ID             string
	QuizID         uuid.UUID
	Question       string
	Answers        []string
	CorrectAnswers []string
	Comment        string
	SortOrder      int32
}

const createQuestion = `INSERT INTO questions (id, quiz_id, question, answers, correct_answers, comment, sort_order)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + questionColumns

// CreateQuestion returns ErrDuplicate when the id is taken.
func (q *Queries) CreateQuestion(ctx context.Context, arg QuestionParams) (Question, error) {
	return scanQuestion(q.db.QueryRow(ctx, createQuestion,
		arg.ID, arg.QuizID, arg.Question, arg.Answers, arg.CorrectAnswers, arg.Comment, arg.SortOrder))
}

const upsertQuestion = `INSERT INTO questions (id, quiz_id, question, answers, correct_answers, comment, sort_order)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE SET
	quiz_id         = EXCLUDED.quiz_id,
	question        = EXCLUDED.question,
	answers         = EXCLUDED.answers,
	correct_answers = EXCLUDED.correct_answers,
	comment         = EXCLUDED.comment,
	sort_order      = EXCLUDED.sort_order,
	updated_at      = now()
RETURNING ` + questionColumns

func (q *Queries) UpsertQuestion(ctx context.Context, arg QuestionParams) (Question, error) {
	return scanQuestion(q.db.QueryRow(ctx, upsertQuestion,
		arg.ID, arg.QuizID, arg.Question, arg.Answers, arg.CorrectAnswers, arg.Comment, arg.SortOrder))
}

const getQuestionByID = `SELECT ` + questionColumns + ` FROM questions WHERE id = $1`

func (q *Queries) GetQuestionByID(ctx context.Context, id string) (Question, error) {
	return scanQuestion(q.db.QueryRow(ctx, getQuestionByID, id))
}

const listQuestions = `SELECT ` + questionColumns + ` FROM questions ORDER BY quiz_id, sort_order, id LIMIT $1`

func (q *Queries) ListQuestions(ctx context.Context, limit int32) ([]Question, error) {
	rows, err := q.db.Query(ctx, listQuestions, limit)
	if err != nil {
		return nil, err
	}
	return collectQuestions(rows)
}

const listQuestionsByQuiz = `SELECT ` + questionColumns + ` FROM questions
WHERE quiz_id = $1
ORDER BY sort_order ASC, id ASC`

func (q *Queries) ListQuestionsByQuiz(ctx context.Context, quizID uuid.UUID) ([]Question, error) {
	rows, err := q.db.Query(ctx, listQuestionsByQuiz, quizID)
	if err != nil {
		return nil, err
	}
	return collectQuestions(rows)
}

const deleteQuestion = `DELETE FROM questions WHERE id = $1`

func (q *Queries) DeleteQuestion(ctx context.Context, id string) error {
	return q.execOne(ctx, deleteQuestion, id)
}
