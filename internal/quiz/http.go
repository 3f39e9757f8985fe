package quiz

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-api/internal/auth"
	"github.com/gokatarajesh/quiz-api/internal/logging"
	"github.com/gokatarajesh/quiz-api/internal/storage"
	httperrors "github.com/gokatarajesh/quiz-api/pkg/http/errors"
	"github.com/gokatarajesh/quiz-api/pkg/http/response"
	"github.com/gokatarajesh/quiz-api/pkg/http/validate"
)

// HTTPHandlers provides REST endpoints for quizzes.
type HTTPHandlers struct {
	service       *Service
	validator     *validate.Validator
	maxImageBytes int64
	logger        zerolog.Logger
}

func NewHTTPHandlers(service *Service, validator *validate.Validator, maxImageBytes int64, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		service:       service,
		validator:     validator,
		maxImageBytes: maxImageBytes,
		logger:        logger.With().Str("component", "quiz_http").Logger(),
	}
}

// Create handles POST /quiz/create
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
	tags, err := ParseIDs("tags", req.Tags)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	z, err := h.service.Create(r.Context(), actor.ID, CreateInput{
		Title:      req.Title,
		References: req.References,
		Tags:       tags,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Created(w, MsgCreated, z)
}

// Get handles GET /quiz/get?type=all|id|title|ownerId|tags
func (h *HTTPHandlers) Get(w http.ResponseWriter, r *http.Request) {
	var q getQuery
	if err := h.validator.DecodeQuery(r, &q); err != nil {
		h.fail(w, r, err)
		return
	}

	if q.Type == "id" {
		z, err := h.service.Get(r.Context(), uuid.MustParse(q.ID))
		if err != nil {
			h.fail(w, r, err)
			return
		}
		response.OK(w, "", z)
		return
	}

	var f Filter
	switch q.Type {
	case "title":
		f.Title = q.Title
	case "ownerId":
		owner := uuid.MustParse(q.OwnerID)
		f.OwnerID = &owner
	case "tags":
		tags, err := ParseIDs("tags", strings.Split(q.Tags, ","))
		if err != nil {
			h.fail(w, r, err)
			return
		}
		f.Tags = tags
	}
	quizzes, err := h.service.List(r.Context(), f)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, "", quizzes)
}

// QuestionCount handles GET /quiz/questioncount?quizId=...
func (h *HTTPHandlers) QuestionCount(w http.ResponseWriter, r *http.Request) {
	var q quizIDQuery
	if err := h.validator.DecodeQuery(r, &q); err != nil {
		h.fail(w, r, err)
		return
	}
	res, err := h.service.QuestionCount(r.Context(), uuid.MustParse(q.QuizID))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, "", res)
}

// Plays handles GET /quiz/plays?quizId=...
func (h *HTTPHandlers) Plays(w http.ResponseWriter, r *http.Request) {
	var q quizIDQuery
	if err := h.validator.DecodeQuery(r, &q); err != nil {
		h.fail(w, r, err)
		return
	}
	res, err := h.service.Plays(r.Context(), uuid.MustParse(q.QuizID))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, "", res)
}

// Update handles POST /quiz/update
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
	tags, err := ParseIDs("tags", req.Tags)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	z, err := h.service.Update(r.Context(), actor, UpdateInput{
		ID:         uuid.MustParse(req.ID),
		Title:      req.Title,
		Status:     req.Status,
		References: req.References,
		Tags:       tags,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, MsgUpdated, z)
}

// Delete handles DELETE /quiz/delete?type=id&id=...
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
	if err := h.service.Delete(r.Context(), actor, uuid.MustParse(q.ID)); err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, MsgDeleted, nil)
}

// UpdateImage handles POST /quiz/updateimage?id=... (multipart field "image")
func (h *HTTPHandlers) UpdateImage(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var q idQuery
	if err := h.validator.DecodeQuery(r, &q); err != nil {
		h.fail(w, r, err)
		return
	}
	img, err := storage.ReadImage(r, "image", h.maxImageBytes)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	url, err := h.service.SaveImage(r.Context(), actor, uuid.MustParse(q.ID), img)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, MsgImageSaved, map[string]string{"image": url})
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
