package tag

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-api/internal/logging"
	httperrors "github.com/gokatarajesh/quiz-api/pkg/http/errors"
	"github.com/gokatarajesh/quiz-api/pkg/http/response"
	"github.com/gokatarajesh/quiz-api/pkg/http/validate"
)

// HTTPHandlers provides REST endpoints for tags.
type HTTPHandlers struct {
	service   *Service
	validator *validate.Validator
	logger    zerolog.Logger
}

func NewHTTPHandlers(service *Service, validator *validate.Validator, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "tag_http").Logger(),
	}
}

type createRequest struct {
	Name string `json:"name" validate:"required,min=1,max=64"`
	Type string `json:"type" validate:"omitempty,oneof=country general"`
}

type updateRequest struct {
	ID   string  `json:"id" validate:"required,uuid"`
	Name *string `json:"name" validate:"omitempty,min=1,max=64"`
	Type *string `json:"type" validate:"omitempty,oneof=country general"`
}

type getQuery struct {
	Type    string `query:"type" validate:"required,oneof=id all"`
	ID      string `query:"id" validate:"required_if=Type id,omitempty,uuid"`
	TagType string `query:"tagType" validate:"omitempty,oneof=country general"`
}

type deleteQuery struct {
	Type string `query:"type" validate:"required,eq=id"`
	ID   string `query:"id" validate:"required,uuid"`
}

// Create handles POST /tag/create
func (h *HTTPHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := h.validator.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	t, err := h.service.Create(r.Context(), req.Name, req.Type)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Created(w, MsgCreated, t)
}

// Update handles POST /tag/update
func (h *HTTPHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := h.validator.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	t, err := h.service.Update(r.Context(), uuid.MustParse(req.ID), req.Name, req.Type)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, MsgUpdated, t)
}

// Get handles GET /tag/get?type=all|id&id=...
func (h *HTTPHandlers) Get(w http.ResponseWriter, r *http.Request) {
	var q getQuery
	if err := h.validator.DecodeQuery(r, &q); err != nil {
		h.fail(w, r, err)
		return
	}
	if q.Type == "all" {
		tags, err := h.service.List(r.Context(), q.TagType)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		response.OK(w, "", tags)
		return
	}
	t, err := h.service.Get(r.Context(), uuid.MustParse(q.ID))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, "", t)
}

// Delete handles DELETE /tag/delete?type=id&id=...
func (h *HTTPHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	var q deleteQuery
	if err := h.validator.DecodeQuery(r, &q); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.service.Delete(r.Context(), uuid.MustParse(q.ID)); err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, MsgDeleted, nil)
}

func (h *HTTPHandlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	httperrors.RespondAppError(w, logging.FromContextOr(r.Context(), h.logger), err)
}
