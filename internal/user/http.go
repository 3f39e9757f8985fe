package user

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-api/internal/auth"
	"github.com/gokatarajesh/quiz-api/internal/logging"
	"github.com/gokatarajesh/quiz-api/internal/storage"
	httperrors "github.com/gokatarajesh/quiz-api/pkg/http/errors"
	"github.com/gokatarajesh/quiz-api/pkg/http/response"
	"github.com/gokatarajesh/quiz-api/pkg/http/validate"
)

// HTTPHandlers provides REST endpoints for user accounts.
type HTTPHandlers struct {
	service   *Service
	validator *validate.Validator
	logger    zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for user endpoints.
func NewHTTPHandlers(service *Service, validator *validate.Validator, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "user_http").Logger(),
	}
}

// Profile handles GET /user/profile
func (h *HTTPHandlers) Profile(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	p, err := h.service.Profile(r.Context(), actor.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, "", p)
}

// Get handles GET /user/get?type=id&id=... and GET /user/get?type=all
func (h *HTTPHandlers) Get(w http.ResponseWriter, r *http.Request) {
	var q getQuery
	if err := h.validator.DecodeQuery(r, &q); err != nil {
		h.fail(w, r, err)
		return
	}

	if q.Type == "all" {
		users, err := h.service.List(r.Context(), int32(q.Limit), int32(q.Offset))
		if err != nil {
			h.fail(w, r, err)
			return
		}
		response.OK(w, "", users)
		return
	}

	p, err := h.service.Get(r.Context(), uuid.MustParse(q.ID))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, "", p)
}

// Update handles POST /user/update
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
	target := actor.ID
	if req.ID != "" {
		target = uuid.MustParse(req.ID)
	}

	p, err := h.service.Update(r.Context(), actor, target, UpdateInput{
		Email:       req.Email,
		Username:    req.Username,
		Firstname:   req.Firstname,
		Middlename:  req.Middlename,
		Lastname:    req.Lastname,
		Gender:      req.Gender,
		Dob:         req.Dob,
		Nationality: req.Nationality,
		Language:    req.Language,
		Occupation:  req.Occupation,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, MsgUserUpdated, p)
}

// Verify handles GET /user/verify?email=...&token=...
func (h *HTTPHandlers) Verify(w http.ResponseWriter, r *http.Request) {
	var q linkQuery
	if err := h.validator.DecodeQuery(r, &q); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.service.VerifyEmail(r.Context(), LinkInput{Email: q.Email, Token: q.Token}); err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, MsgEmailVerified, nil)
}

// ResetPassword handles POST /user/resetpassword?email=...&token=...
func (h *HTTPHandlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var q linkQuery
	if err := h.validator.DecodeQuery(r, &q); err != nil {
		h.fail(w, r, err)
		return
	}
	var req resetRequest
	if err := h.validator.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.service.ResetPassword(r.Context(), LinkInput{Email: q.Email, Token: q.Token}, req.Password); err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, MsgPasswordUpdated, nil)
}

// SendMail handles POST /user/sendmail
func (h *HTTPHandlers) SendMail(w http.ResponseWriter, r *http.Request) {
	var req sendMailRequest
	if err := h.validator.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	msg, err := h.service.SendMail(r.Context(), req.Email, req.MailType)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, msg, nil)
}

// UpdateImage handles POST /user/updateimage (multipart field "image")
func (h *HTTPHandlers) UpdateImage(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	img, err := storage.ReadImage(r, "image", h.service.opts.MaxImageBytes)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	url, err := h.service.SaveImage(r.Context(), actor.ID, img)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, MsgImageSaved, map[string]string{"photo": url})
}

// RemoveImage handles DELETE /user/removeimage
func (h *HTTPHandlers) RemoveImage(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	if err := h.service.RemoveImage(r.Context(), actor.ID); err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, MsgImageRemoved, nil)
}

// Delete handles DELETE /user/delete?type=id&id=...
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
	response.OK(w, MsgUserDeleted, nil)
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
