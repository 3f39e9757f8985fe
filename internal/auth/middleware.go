package auth

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-api/internal/logging"
	httperrors "github.com/gokatarajesh/quiz-api/pkg/http/errors"
)

// Middleware resolves the caller from the access token in the Authorization
// header or authToken cookie. When the access token is missing or no longer
// valid but a refreshToken cookie is present, a new access cookie is issued
// and the request continues as that user.
type Middleware struct {
	svc     *Service
	cookies CookieConfig
	logger  zerolog.Logger
}

// NewMiddleware creates the auth middleware.
func NewMiddleware(svc *Service, cookies CookieConfig, logger zerolog.Logger) *Middleware {
	return &Middleware{
		svc:     svc,
		cookies: cookies,
		logger:  logger.With().Str("component", "auth_middleware").Logger(),
	}
}

// OptionalAuth attaches the actor when one can be resolved and never rejects.
func (m *Middleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if actor, ok := m.resolve(w, r); ok {
			r = r.WithContext(WithActor(r.Context(), actor))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth rejects the request with 401 unless an actor is resolved.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := m.resolve(w, r)
		if !ok {
			httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, MsgUnauthenticated)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}

func (m *Middleware) resolve(w http.ResponseWriter, r *http.Request) (Actor, bool) {
	logger := logging.FromContextOr(r.Context(), m.logger)

	if token := accessTokenFrom(r); token != "" {
		actor, err := m.svc.Authenticate(r.Context(), token)
		if err == nil {
			return actor, true
		}
		if !httperrors.IsKind(err, httperrors.KindUnauthorized) {
			logger.Error().Err(err).Msg("authenticate access token")
		}
	}

	refresh, err := r.Cookie(RefreshCookie)
	if err != nil || refresh.Value == "" {
		return Actor{}, false
	}
	access, actor, err := m.svc.Refresh(r.Context(), refresh.Value)
	if err != nil {
		if !httperrors.IsKind(err, httperrors.KindUnauthorized) {
			logger.Error().Err(err).Msg("refresh from cookie")
		}
		return Actor{}, false
	}
	m.cookies.setAccess(w, access.Token, m.svc.tokenMgr.AccessTTL())
	logger.Debug().Str("user_id", actor.ID.String()).Msg("access token refreshed from cookie")
	return actor, true
}

func accessTokenFrom(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if c, err := r.Cookie(AccessCookie); err == nil {
		return c.Value
	}
	return ""
}
