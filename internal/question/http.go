package question

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-api/internal/auth"
	"github.com/gokatarajesh/quiz-api/internal/logging"
	httperrors "github.com/gokatarajesh/quiz-api/pkg/http/errors"
	"github.com/gokatarajesh/quiz-api/pkg/http/response"
	"github.com/gokatarajesh/quiz-api/pkg/http/validate"
)

// HTTPHandlers provides REST endpoints for questions.
type HTTPHandlers struct {
	service   *Service
	validator *validate.Validator
	logger    zerolog.Logger
}

func NewHTTPHandlers(service *Service, validator *validate.Validator, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "question_http").Logger(),
	}
}

// Create handles POST /question/create
func (h *HTTPHandlers) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var req createRequest
	if err := h.validator.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	q, err := h.service.Create(r.Context(), actor, CreateInput{
		ID:             req.ID,
		QuizID:         uuid.MustParse(req.QuizID),
		Question:       req.Question,
		Answers:        req.Answers,
		CorrectAnswers: req.CorrectAnswers,
		Comment:        req.Comment,
		SortOrder:      req.SortOrder,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Created(w, MsgCreated, q)
}

// Update handles POST /question/update
func (h *HTTPHandlers) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var req updateRequest
	if err := h.validator.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	in := UpdateInput{
		ID:             req.ID,
		Question:       req.Question,
		Answers:        req.Answers,
		CorrectAnswers: req.CorrectAnswers,
		Comment:        req.Comment,
		SortOrder:      req.SortOrder,
	}
	if req.QuizID != "" {
		quizID := uuid.MustParse(req.QuizID)
		in.QuizID = &quizID
	}
	q, err := h.service.Update(r.Context(), actor, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, MsgUpdated, q)
}

// Get handles GET /question/get?type=all|id|quizId
func (h *HTTPHandlers) Get(w http.ResponseWriter, r *http.Request) {
	var q getQuery
	if err := h.validator.DecodeQuery(r, &q); err != nil {
		h.fail(w, r, err)
		return
	}

	var (
		data interface{}
		err  error
	)
	switch q.Type {
	case "id":
		data, err = h.service.Get(r.Context(), q.ID)
	case "quizId":
		data, err = h.service.ListByQuiz(r.Context(), uuid.MustParse(q.QuizID))
	default:
		data, err = h.service.List(r.Context(), int32(q.Limit))
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, "", data)
}

// Correct handles GET /question/correct?id=...
func (h *HTTPHandlers) Correct(w http.ResponseWriter, r *http.Request) {
	var q idQuery
	if err := h.validator.DecodeQuery(r, &q); err != nil {
		h.fail(w, r, err)
		return
	}
	key, err := h.service.Correct(r.Context(), q.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, "", key)
}

// Delete handles DELETE /question/delete?type=id&id=...
func (h *HTTPHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var q deleteQuery
	if err := h.validator.DecodeQuery(r, &q); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.service.Delete(r.Context(), actor, q.ID); err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, MsgDeleted, nil)
}

func (h *HTTPHandlers) actor(w http.ResponseWriter, r *http.Request) (auth.Actor, bool) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.fail(w, r, httperrors.Unauthorized(auth.MsgUnauthenticated).WithCode(httperrors.ErrCodeAuthenticationRequired))
	}
	return actor, ok
}

func (h *HTTPHandlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	httperrors.RespondAppError(w, logging.FromContextOr(r.Context(), h.logger), err)
}
