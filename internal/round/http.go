package round

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-api/internal/auth"
	"github.com/gokatarajesh/quiz-api/internal/logging"
	httperrors "github.com/gokatarajesh/quiz-api/pkg/http/errors"
	"github.com/gokatarajesh/quiz-api/pkg/http/response"
	"github.com/gokatarajesh/quiz-api/pkg/http/validate"
)

// HTTPHandlers provides REST endpoints for round operations.
type HTTPHandlers struct {
	service   *Service
	validator *validate.Validator
	logger    zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for round endpoints.
func NewHTTPHandlers(service *Service, validator *validate.Validator, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "round_http").Logger(),
	}
}

// Start handles POST /round/start
func (h *HTTPHandlers) Start(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := h.validator.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	quizID, err := ParseID("quizId", req.QuizID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	res, err := h.service.Start(r.Context(), StartInput{
		QuizID:   quizID,
		PlayerID: auth.PlayerID(r.Context()),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Created(w, "round started", res)
}

// Submit handles POST /round/update
func (h *HTTPHandlers) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := h.validator.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	roundID, err := ParseID("id", req.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	res, err := h.service.SubmitAnswer(r.Context(), SubmitInput{
		RoundID:    roundID,
		QuestionID: req.QuestionID,
		Response:   req.Response,
		TimeSpent:  *req.TimeSpent,
		HasEnded:   *req.HasEnded,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, "progress updated", res)
}

// Get handles GET /round/get?type=id&id=...
func (h *HTTPHandlers) Get(w http.ResponseWriter, r *http.Request) {
	var q getQuery
	if err := h.validator.DecodeQuery(r, &q); err != nil {
		h.fail(w, r, err)
		return
	}
	id, err := ParseID("id", q.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	res, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, "", res)
}

func (h *HTTPHandlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	httperrors.RespondAppError(w, logging.FromContextOr(r.Context(), h.logger), err)
}
