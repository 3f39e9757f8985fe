package leaderboard

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-api/internal/logging"
	httperrors "github.com/gokatarajesh/quiz-api/pkg/http/errors"
	"github.com/gokatarajesh/quiz-api/pkg/http/response"
	"github.com/gokatarajesh/quiz-api/pkg/http/validate"
)

// HTTPHandler exposes REST endpoints for leaderboard queries.
type HTTPHandler struct {
	svc       *Service
	validator *validate.Validator
	logger    zerolog.Logger
}

// NewHTTPHandler constructs a leaderboard HTTP handler.
func NewHTTPHandler(svc *Service, validator *validate.Validator, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		svc:       svc,
		validator: validator,
		logger:    logger.With().Str("component", "leaderboard_http").Logger(),
	}
}

type topQuery struct {
	Limit int `query:"limit" validate:"omitempty,min=1,max=100"`
}

// HandleGet responds with the current ranking.
// Route: GET /leaderboard?limit=10
func (h *HTTPHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContextOr(r.Context(), h.logger)

	var q topQuery
	if err := h.validator.DecodeQuery(r, &q); err != nil {
		httperrors.RespondAppError(w, logger, err)
		return
	}

	top, err := h.svc.Top(r.Context(), q.Limit)
	if err != nil {
		httperrors.RespondAppError(w, logger, httperrors.Internal("fetch leaderboard", err))
		return
	}
	response.OK(w, "", map[string]interface{}{"top": top})
}
