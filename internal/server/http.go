package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-api/internal/auth"
	"github.com/gokatarajesh/quiz-api/internal/config"
	"github.com/gokatarajesh/quiz-api/internal/leaderboard"
	"github.com/gokatarajesh/quiz-api/internal/logging"
	"github.com/gokatarajesh/quiz-api/internal/metrics"
	"github.com/gokatarajesh/quiz-api/internal/question"
	"github.com/gokatarajesh/quiz-api/internal/quiz"
	"github.com/gokatarajesh/quiz-api/internal/round"
	"github.com/gokatarajesh/quiz-api/internal/tag"
	"github.com/gokatarajesh/quiz-api/internal/user"
	httperrors "github.com/gokatarajesh/quiz-api/pkg/http/errors"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers groups the per-domain endpoints mounted on the router.
type Handlers struct {
	Middleware  *auth.Middleware
	Auth        *auth.HTTPHandlers
	Round       *round.HTTPHandlers
	User        *user.HTTPHandlers
	Tag         *tag.HTTPHandlers
	Quiz        *quiz.HTTPHandlers
	Question    *question.HTTPHandlers
	Leaderboard *leaderboard.HTTPHandler
}

// NewHTTPServer wires every route behind the shared middleware chain.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, db Pinger, rdb redis.Cmdable, m *metrics.Metrics, h Handlers) *http.Server {
	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: NewRouter(cfg.CORS, logger, db, rdb, m, h),
	}
}

// NewRouter builds the mux and wraps it as recover > logging > metrics > CORS.
func NewRouter(corsCfg config.CORS, logger zerolog.Logger, db Pinger, rdb redis.Cmdable, m *metrics.Metrics, h Handlers) http.Handler {
	mux := http.NewServeMux()
	optional := func(fn http.HandlerFunc) http.Handler { return h.Middleware.OptionalAuth(fn) }
	required := func(fn http.HandlerFunc) http.Handler { return h.Middleware.RequireAuth(fn) }

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	mux.Handle("GET /metrics", m.Handler())
	mux.HandleFunc("GET /v1/ping", func(w http.ResponseWriter, r *http.Request) {
		if err := pingDependencies(r.Context(), db, rdb); err != nil {
			reqLogger := logging.FromContextOr(r.Context(), logger)
			reqLogger.Error().Err(err).Msg("dependency ping failed")
			httperrors.RespondError(w, http.StatusBadGateway, httperrors.ErrCodeUpstreamError, "upstream error")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pong":true}`))
	})

	mux.Handle("POST /round/start", optional(h.Round.Start))
	mux.Handle("POST /round/update", optional(h.Round.Submit))
	mux.Handle("GET /round/get", optional(h.Round.Get))

	mux.HandleFunc("POST /auth/register", h.Auth.Register)
	mux.HandleFunc("POST /auth/login", h.Auth.Login)
	mux.HandleFunc("POST /auth/refreshtoken", h.Auth.RefreshToken)
	mux.Handle("GET /auth/silent", required(h.Auth.Silent))
	mux.Handle("GET /auth/logout", required(h.Auth.Logout))
	mux.HandleFunc("GET /auth/oauth/{provider}/start", h.Auth.OAuthStart)
	mux.HandleFunc("GET /auth/oauth/{provider}/callback", h.Auth.OAuthCallback)

	mux.Handle("GET /user/profile", required(h.User.Profile))
	mux.Handle("GET /user/get", required(h.User.Get))
	mux.Handle("POST /user/update", required(h.User.Update))
	mux.HandleFunc("GET /user/verify", h.User.Verify)
	mux.HandleFunc("POST /user/resetpassword", h.User.ResetPassword)
	mux.HandleFunc("POST /user/sendmail", h.User.SendMail)
	mux.Handle("POST /user/updateimage", required(h.User.UpdateImage))
	mux.Handle("DELETE /user/removeimage", required(h.User.RemoveImage))
	mux.Handle("DELETE /user/delete", required(h.User.Delete))

	mux.Handle("POST /tag/create", required(h.Tag.Create))
	mux.Handle("POST /tag/update", required(h.Tag.Update))
	mux.HandleFunc("GET /tag/get", h.Tag.Get)
	mux.Handle("DELETE /tag/delete", required(h.Tag.Delete))

	mux.Handle("POST /quiz/create", required(h.Quiz.Create))
	mux.Handle("GET /quiz/get", optional(h.Quiz.Get))
	mux.HandleFunc("GET /quiz/questioncount", h.Quiz.QuestionCount)
	mux.HandleFunc("GET /quiz/plays", h.Quiz.Plays)
	mux.Handle("POST /quiz/update", required(h.Quiz.Update))
	mux.Handle("DELETE /quiz/delete", required(h.Quiz.Delete))
	mux.Handle("POST /quiz/updateimage", required(h.Quiz.UpdateImage))

	mux.Handle("POST /question/create", required(h.Question.Create))
	mux.Handle("POST /question/update", required(h.Question.Update))
	mux.Handle("GET /question/get", optional(h.Question.Get))
	mux.Handle("GET /question/correct", required(h.Question.Correct))
	mux.Handle("DELETE /question/delete", required(h.Question.Delete))

	mux.HandleFunc("GET /leaderboard", h.Leaderboard.HandleGet)

	var handler http.Handler = mux
	handler = newCORS(corsCfg).wrap(handler)
	handler = m.Middleware(handler)
	handler = logging.Middleware(logger)(handler)
	handler = recoverer(logger)(handler)
	return handler
}

// recoverer turns a handler panic into the generic 500 envelope.
func recoverer(base zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger := logging.FromContextOr(r.Context(), base)
				httperrors.RespondAppError(w, logger, httperrors.Internal("panic", fmt.Errorf("%v", rec)))
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func pingDependencies(ctx context.Context, db Pinger, rdb redis.Cmdable) error {
	if err := db.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	return nil
}
