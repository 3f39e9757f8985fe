package logging

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestFromContext_DefaultsToNop(t *testing.T) {
	logger := FromContext(context.Background())
	assert.Equal(t, zerolog.Disabled, logger.GetLevel())
}

func TestMiddleware_InjectsLoggerAndRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	var sawLogger bool
	handler := Middleware(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := FromContext(r.Context())
		logger.Info().Msg("inside")
		sawLogger = true
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/round/get", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.True(t, sawLogger)
	assert.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))
	assert.Contains(t, buf.String(), `"request_id":"req-123"`)
	assert.Contains(t, buf.String(), `"status":418`)
	assert.Contains(t, buf.String(), `"path":"/round/get"`)
}

func TestMiddleware_GeneratesRequestID(t *testing.T) {
	handler := Middleware(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestFromContextOr(t *testing.T) {
	fallback := zerolog.New(nil).Level(zerolog.WarnLevel)
	assert.Equal(t, zerolog.WarnLevel, FromContextOr(context.Background(), fallback).GetLevel())

	ctx := IntoContext(context.Background(), zerolog.New(nil).Level(zerolog.ErrorLevel))
	assert.Equal(t, zerolog.ErrorLevel, FromContextOr(ctx, fallback).GetLevel())
}
