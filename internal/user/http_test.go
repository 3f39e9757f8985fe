package user

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/quiz-api/internal/auth"
	"github.com/gokatarajesh/quiz-api/internal/db/store"
	"github.com/gokatarajesh/quiz-api/pkg/http/validate"
)

type envelope struct {
	Error   bool            `json:"error"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func serve(h http.HandlerFunc, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	rec := httptest.NewRecorder()
	h(rec, req)
	var env envelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return rec, env
}

func as(req *http.Request, actor auth.Actor) *http.Request {
	return req.WithContext(auth.WithActor(req.Context(), actor))
}

func TestHTTP_ProfileRequiresActor(t *testing.T) {
	f := newFixture(t)
	h := NewHTTPHandlers(f.svc, validate.New(), zerolog.Nop())

	rec, env := serve(h.Profile, httptest.NewRequest(http.MethodGet, "/user/profile", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, auth.MsgUnauthenticated, env.Message)
}

func TestHTTP_ProfileOmitsSecrets(t *testing.T) {
	f := newFixture(t)
	h := NewHTTPHandlers(f.svc, validate.New(), zerolog.Nop())
	u := sampleUser()
	f.users.On("GetByID", mock.Anything, u.ID).Return(u, nil)

	rec, env := serve(h.Profile, as(httptest.NewRequest(http.MethodGet, "/user/profile", nil), auth.Actor{ID: u.ID}))
	require.Equal(t, http.StatusOK, rec.Code)
	body := string(env.Data)
	assert.NotContains(t, body, *u.PasswordHash)
	assert.NotContains(t, body, u.VerificationToken)
	assert.Contains(t, body, `"rank":3`)
}

func TestHTTP_GetValidatesType(t *testing.T) {
	f := newFixture(t)
	h := NewHTTPHandlers(f.svc, validate.New(), zerolog.Nop())

	rec, _ := serve(h.Get, httptest.NewRequest(http.MethodGet, "/user/get?type=email", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = serve(h.Get, httptest.NewRequest(http.MethodGet, "/user/get?type=id", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	id := uuid.New()
	f.users.On("GetByID", mock.Anything, id).Return(store.User{}, store.ErrNotFound)
	rec, env := serve(h.Get, httptest.NewRequest(http.MethodGet, "/user/get?type=id&id="+id.String(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, MsgProfileNotFound, env.Message)
}

func TestHTTP_UpdateConflict(t *testing.T) {
	f := newFixture(t)
	h := NewHTTPHandlers(f.svc, validate.New(), zerolog.Nop())
	u := sampleUser()
	f.users.On("GetByEmail", mock.Anything, "taken@example.com").Return(sampleUser(), nil)

	req := as(httptest.NewRequest(http.MethodPost, "/user/update", strings.NewReader(`{"email":"taken@example.com"}`)), auth.Actor{ID: u.ID})
	rec, env := serve(h.Update, req)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, MsgEmailTaken, env.Message)
}

func TestHTTP_SendMailValidation(t *testing.T) {
	f := newFixture(t)
	h := NewHTTPHandlers(f.svc, validate.New(), zerolog.Nop())

	rec, _ := serve(h.SendMail, httptest.NewRequest(http.MethodPost, "/user/sendmail", strings.NewReader(`{"email":"a@b.co","mailtype":"spam"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = serve(h.SendMail, httptest.NewRequest(http.MethodPost, "/user/sendmail", strings.NewReader(`{"mailtype":"verify"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHTTP_VerifyFlow(t *testing.T) {
	f := newFixture(t)
	h := NewHTTPHandlers(f.svc, validate.New(), zerolog.Nop())
	u := sampleUser()
	f.users.On("GetByEmail", mock.Anything, u.Email).Return(u, nil)
	f.users.On("MarkEmailVerified", mock.Anything, u.ID).Return(nil)
	token, err := f.links.GenerateLinkToken(u.Email, u.VerificationToken)
	require.NoError(t, err)

	rec, env := serve(h.Verify, httptest.NewRequest(http.MethodGet, "/user/verify?email="+u.Email+"&token="+token, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, MsgEmailVerified, env.Message)
}

func TestHTTP_DeleteByAdmin(t *testing.T) {
	f := newFixture(t)
	h := NewHTTPHandlers(f.svc, validate.New(), zerolog.Nop())
	u := sampleUser()
	f.users.On("GetByID", mock.Anything, u.ID).Return(u, nil)
	f.users.On("Delete", mock.Anything, u.ID).Return(nil)

	req := as(httptest.NewRequest(http.MethodDelete, "/user/delete?type=id&id="+u.ID.String(), nil), auth.Actor{ID: uuid.New(), Role: auth.RoleAdmin})
	rec, env := serve(h.Delete, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, MsgUserDeleted, env.Message)
}
