package auth

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-api/internal/logging"
	httperrors "github.com/gokatarajesh/quiz-api/pkg/http/errors"
	"github.com/gokatarajesh/quiz-api/pkg/http/response"
	"github.com/gokatarajesh/quiz-api/pkg/http/validate"
)

// CookieConfig controls the attributes of the session cookies.
type CookieConfig struct {
	Secure     bool
	Domain     string
	RefreshTTL time.Duration
}

func (c CookieConfig) set(w http.ResponseWriter, name, value string, httpOnly bool, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   c.Domain,
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: httpOnly,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c CookieConfig) setAccess(w http.ResponseWriter, token string, ttl time.Duration) {
	c.set(w, AccessCookie, token, true, ttl)
}

func (c CookieConfig) setSession(w http.ResponseWriter, s Session, accessTTL time.Duration) {
	c.setAccess(w, s.AccessToken, accessTTL)
	refreshTTL := c.RefreshTTL
	if refreshTTL == 0 {
		refreshTTL = time.Until(s.RefreshExpires)
	}
	c.set(w, RefreshCookie, s.RefreshToken, false, refreshTTL)
}

func (c CookieConfig) clear(w http.ResponseWriter) {
	for _, name := range []string{AccessCookie, RefreshCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "deleted",
			Path:     "/",
			Domain:   c.Domain,
			MaxAge:   -1,
			HttpOnly: name == AccessCookie,
			Secure:   c.Secure,
		})
	}
}

// HTTPHandlers provides REST endpoints for authentication.
type HTTPHandlers struct {
	authSvc      *Service
	oauthSvc     *OAuthService
	validator    *validate.Validator
	cookies      CookieConfig
	oauthSuccess string
	logger       zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for auth endpoints.
func NewHTTPHandlers(authSvc *Service, oauthSvc *OAuthService, validator *validate.Validator, cookies CookieConfig, oauthSuccessURL string, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		authSvc:      authSvc,
		oauthSvc:     oauthSvc,
		validator:    validator,
		cookies:      cookies,
		oauthSuccess: oauthSuccessURL,
		logger:       logger.With().Str("component", "auth_http").Logger(),
	}
}

type sessionView struct {
	UserID       string `json:"userId"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

func (h *HTTPHandlers) view(s Session) sessionView {
	return sessionView{
		UserID:       s.UserID.String(),
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		ExpiresIn:    int64(h.authSvc.tokenMgr.AccessTTL().Seconds()),
	}
}

// Register handles POST /auth/register
func (h *HTTPHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := h.validator.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	session, err := h.authSvc.Register(r.Context(), RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Username:  req.Username,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.cookies.setSession(w, session, h.authSvc.tokenMgr.AccessTTL())
	response.Created(w, MsgLoginSuccess, h.view(session))
}

// Login handles POST /auth/login
func (h *HTTPHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := h.validator.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	session, err := h.authSvc.Login(r.Context(), LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.cookies.setSession(w, session, h.authSvc.tokenMgr.AccessTTL())
	response.OK(w, MsgLoginSuccess, h.view(session))
}

// RefreshToken handles POST /auth/refreshtoken
func (h *HTTPHandlers) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, r, httperrors.Validation(MsgMissingField, nil).WithCode(httperrors.ErrCodeMissingField))
		return
	}

	access, _, err := h.authSvc.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.cookies.setAccess(w, access.Token, h.authSvc.tokenMgr.AccessTTL())
	response.OK(w, MsgTokenGenerated, map[string]interface{}{"accessToken": access})
}

// Silent handles GET /auth/silent (requires auth middleware)
func (h *HTTPHandlers) Silent(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, MsgUnauthenticated)
		return
	}
	response.OK(w, MsgSilentLogin, map[string]string{"id": actor.ID.String()})
}

// Logout handles GET /auth/logout (requires auth middleware)
func (h *HTTPHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(RefreshCookie); err == nil {
		if err := h.authSvc.Logout(r.Context(), c.Value); err != nil {
			h.fail(w, r, err)
			return
		}
	}
	h.cookies.clear(w)
	response.OK(w, MsgLoggedOut, nil)
}

// OAuthStart handles GET /auth/oauth/{provider}/start
func (h *HTTPHandlers) OAuthStart(w http.ResponseWriter, r *http.Request) {
	authURL, err := h.oauthSvc.Start(r.Context(), r.PathValue("provider"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, authURL, http.StatusFound)
}

// OAuthCallback handles GET /auth/oauth/{provider}/callback
func (h *HTTPHandlers) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	session, err := h.oauthSvc.Callback(r.Context(), r.PathValue("provider"), q.Get("code"), q.Get("state"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.cookies.setSession(w, session, h.authSvc.tokenMgr.AccessTTL())
	http.Redirect(w, r, h.oauthSuccess, http.StatusFound)
}

func (h *HTTPHandlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	httperrors.RespondAppError(w, logging.FromContextOr(r.Context(), h.logger), err)
}
