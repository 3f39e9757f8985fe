package user

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/gokatarajesh/quiz-api/internal/auth"
	"github.com/gokatarajesh/quiz-api/internal/auth/jwt"
	"github.com/gokatarajesh/quiz-api/internal/db/store"
	"github.com/gokatarajesh/quiz-api/internal/storage"
	httperrors "github.com/gokatarajesh/quiz-api/pkg/http/errors"
)

type mockUsers struct {
	mock.Mock
}

func (m *mockUsers) GetByID(ctx context.Context, id uuid.UUID) (store.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(store.User), args.Error(1)
}

func (m *mockUsers) GetByEmail(ctx context.Context, email string) (store.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(store.User), args.Error(1)
}

func (m *mockUsers) List(ctx context.Context, limit, offset int32) ([]store.User, error) {
	args := m.Called(ctx, limit, offset)
	users, _ := args.Get(0).([]store.User)
	return users, args.Error(1)
}

func (m *mockUsers) UpdateProfile(ctx context.Context, params store.UpdateUserProfileParams) (store.User, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(store.User), args.Error(1)
}

func (m *mockUsers) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	return m.Called(ctx, id, hash).Error(0)
}

func (m *mockUsers) MarkEmailVerified(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockUsers) SetPhoto(ctx context.Context, id uuid.UUID, photo string) error {
	return m.Called(ctx, id, photo).Error(0)
}

func (m *mockUsers) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type stubRanker struct {
	rank int64
	err  error
}

func (s stubRanker) Rank(context.Context, uuid.UUID) (int64, error) { return s.rank, s.err }

type recordingMailer struct {
	sent []auth.Mail
	err  error
}

func (r *recordingMailer) Send(_ context.Context, m auth.Mail) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, m)
	return nil
}

type mockImages struct {
	mock.Mock
}

func (m *mockImages) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	args := m.Called(ctx, key, contentType, size)
	return args.String(0), args.Error(1)
}

func (m *mockImages) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *mockImages) URL(key string) string {
	return "https://cdn.example/" + key
}

type fixture struct {
	svc    *Service
	users  *mockUsers
	images *mockImages
	mailer *recordingMailer
	links  *jwt.Manager
	hasher *auth.Hasher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		users:  new(mockUsers),
		images: new(mockImages),
		mailer: &recordingMailer{},
		links:  jwt.NewManager(jwt.TokenConfig{AccessSecret: []byte("test-secret")}),
		hasher: auth.NewHasher(bcrypt.MinCost),
	}
	f.svc = NewService(f.users, stubRanker{rank: 3}, f.links, f.hasher, f.mailer, f.images,
		Options{PublicOrigin: "https://quiz.example"}, zerolog.Nop())
	return f
}

func sampleUser() store.User {
	hash := "$2a$04$existinghashvalue"
	return store.User{
		ID:                uuid.New(),
		Email:             "ada@example.com",
		Firstname:         "Ada",
		Lastname:          "Lovelace",
		PasswordHash:      &hash,
		VerificationToken: auth.VerificationToken("ada@example.com"),
		Role:              auth.RoleUser,
		Score:             1500,
	}
}

func kindOf(t *testing.T, err error) httperrors.Kind {
	t.Helper()
	require.Error(t, err)
	return httperrors.As(err).Kind
}

func TestProfile_HidesSecretsAndAddsRank(t *testing.T) {
	f := newFixture(t)
	u := sampleUser()
	f.users.On("GetByID", mock.Anything, u.ID).Return(u, nil)

	p, err := f.svc.Profile(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), p.Rank)
	assert.True(t, p.HasPassword)
	assert.Equal(t, int64(1500), p.Score)
}

func TestProfile_RankFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	f.svc.ranker = stubRanker{err: errors.New("redis down")}
	u := sampleUser()
	f.users.On("GetByID", mock.Anything, u.ID).Return(u, nil)

	p, err := f.svc.Profile(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), p.Rank)
}

func TestGet_NotFound(t *testing.T) {
	f := newFixture(t)
	id := uuid.New()
	f.users.On("GetByID", mock.Anything, id).Return(store.User{}, store.ErrNotFound)

	_, err := f.svc.Get(context.Background(), id)
	assert.Equal(t, httperrors.KindNotFound, kindOf(t, err))
	assert.Equal(t, MsgProfileNotFound, err.Error())
}

func TestList(t *testing.T) {
	f := newFixture(t)
	f.users.On("List", mock.Anything, int32(50), int32(0)).Return([]store.User{sampleUser(), sampleUser()}, nil).Once()

	users, err := f.svc.List(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	f.users.On("List", mock.Anything, int32(10), int32(20)).Return(nil, nil).Once()
	_, err = f.svc.List(context.Background(), 10, 20)
	assert.Equal(t, httperrors.KindNotFound, kindOf(t, err))
	assert.Equal(t, MsgNoUsersFound, err.Error())
}

func TestUpdate_DuplicateEmail(t *testing.T) {
	f := newFixture(t)
	u := sampleUser()
	other := sampleUser()
	email := "taken@example.com"
	f.users.On("GetByEmail", mock.Anything, email).Return(other, nil)

	_, err := f.svc.Update(context.Background(), auth.Actor{ID: u.ID}, u.ID, UpdateInput{Email: &email})
	assert.Equal(t, httperrors.KindConflict, kindOf(t, err))
	assert.Equal(t, MsgEmailTaken, err.Error())
	f.users.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything)
}

func TestUpdate_PartialFields(t *testing.T) {
	f := newFixture(t)
	u := sampleUser()
	name := "Augusta"
	f.users.On("UpdateProfile", mock.Anything, mock.MatchedBy(func(p store.UpdateUserProfileParams) bool {
		return p.ID == u.ID && p.Firstname != nil && *p.Firstname == name && p.Email == nil && p.Lastname == nil
	})).Return(u, nil)

	_, err := f.svc.Update(context.Background(), auth.Actor{ID: u.ID}, u.ID, UpdateInput{Firstname: &name})
	require.NoError(t, err)
	f.users.AssertExpectations(t)
}

func TestUpdate_Authorization(t *testing.T) {
	f := newFixture(t)
	name := "x"
	target := uuid.New()

	_, err := f.svc.Update(context.Background(), auth.Actor{ID: uuid.New(), Role: auth.RoleUser}, target, UpdateInput{Firstname: &name})
	assert.Equal(t, httperrors.KindForbidden, kindOf(t, err))

	f.users.On("UpdateProfile", mock.Anything, mock.Anything).Return(store.User{ID: target}, nil)
	_, err = f.svc.Update(context.Background(), auth.Actor{ID: uuid.New(), Role: auth.RoleAdmin}, target, UpdateInput{Firstname: &name})
	require.NoError(t, err)
}

func TestUpdate_EmptyInput(t *testing.T) {
	f := newFixture(t)
	id := uuid.New()
	_, err := f.svc.Update(context.Background(), auth.Actor{ID: id}, id, UpdateInput{})
	assert.Equal(t, httperrors.KindValidation, kindOf(t, err))
}

func TestVerifyEmail(t *testing.T) {
	f := newFixture(t)
	u := sampleUser()
	f.users.On("GetByEmail", mock.Anything, u.Email).Return(u, nil)
	f.users.On("MarkEmailVerified", mock.Anything, u.ID).Return(nil)

	token, err := f.links.GenerateLinkToken(u.Email, u.VerificationToken)
	require.NoError(t, err)

	require.NoError(t, f.svc.VerifyEmail(context.Background(), LinkInput{Email: u.Email, Token: token}))
	f.users.AssertExpectations(t)
}

func TestVerifyEmail_Rejections(t *testing.T) {
	u := sampleUser()
	tests := []struct {
		name    string
		token   func(f *fixture) string
		message string
	}{
		{"garbage", func(*fixture) string { return "not-a-token" }, MsgInvalidLink},
		{"wrong secret", func(f *fixture) string {
			tok, _ := f.links.GenerateLinkToken(u.Email, "some-other-secret")
			return tok
		}, MsgInvalidLink},
		{"email mismatch", func(f *fixture) string {
			tok, _ := f.links.GenerateLinkToken("eve@example.com", u.VerificationToken)
			return tok
		}, MsgEmailMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.users.On("GetByEmail", mock.Anything, u.Email).Return(u, nil)

			err := f.svc.VerifyEmail(context.Background(), LinkInput{Email: u.Email, Token: tt.token(f)})
			assert.Equal(t, httperrors.KindValidation, kindOf(t, err))
			assert.Equal(t, tt.message, err.Error())
			f.users.AssertNotCalled(t, "MarkEmailVerified", mock.Anything, mock.Anything)
		})
	}
}

func TestVerifyEmail_UnknownUser(t *testing.T) {
	f := newFixture(t)
	f.users.On("GetByEmail", mock.Anything, "nobody@example.com").Return(store.User{}, store.ErrNotFound)

	err := f.svc.VerifyEmail(context.Background(), LinkInput{Email: "nobody@example.com", Token: "x"})
	assert.Equal(t, httperrors.KindNotFound, kindOf(t, err))
	assert.Equal(t, MsgUserNotFound, err.Error())
}

func TestResetPassword(t *testing.T) {
	f := newFixture(t)
	u := sampleUser()
	f.users.On("GetByEmail", mock.Anything, u.Email).Return(u, nil)
	f.users.On("UpdatePassword", mock.Anything, u.ID, mock.AnythingOfType("string")).Return(nil)

	token, err := f.links.GenerateLinkToken(u.Email, *u.PasswordHash)
	require.NoError(t, err)

	require.NoError(t, f.svc.ResetPassword(context.Background(), LinkInput{Email: u.Email, Token: token}, "n3wpass"))

	stored := f.users.Calls[len(f.users.Calls)-1].Arguments.String(2)
	assert.NoError(t, f.hasher.Verify(stored, "n3wpass"))
}

func TestResetPassword_VerifyLinkCannotReset(t *testing.T) {
	f := newFixture(t)
	u := sampleUser()
	f.users.On("GetByEmail", mock.Anything, u.Email).Return(u, nil)

	token, err := f.links.GenerateLinkToken(u.Email, u.VerificationToken)
	require.NoError(t, err)

	err = f.svc.ResetPassword(context.Background(), LinkInput{Email: u.Email, Token: token}, "n3wpass")
	assert.Equal(t, MsgInvalidLink, err.Error())
	f.users.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}

func TestResetPassword_WeakPassword(t *testing.T) {
	f := newFixture(t)
	err := f.svc.ResetPassword(context.Background(), LinkInput{Email: "a@b.c", Token: "x"}, "abcd")
	assert.Equal(t, httperrors.KindValidation, kindOf(t, err))
}

func TestSendMail_Verify(t *testing.T) {
	f := newFixture(t)
	u := sampleUser()
	f.users.On("GetByEmail", mock.Anything, u.Email).Return(u, nil)

	msg, err := f.svc.SendMail(context.Background(), u.Email, auth.MailVerify)
	require.NoError(t, err)
	assert.Equal(t, MsgMailSent, msg)
	require.Len(t, f.mailer.sent, 1)

	sent := f.mailer.sent[0]
	assert.Equal(t, "Ada Lovelace", sent.Name)
	assert.True(t, strings.HasPrefix(sent.Link, "https://quiz.example/verify?"))

	link, err := url.Parse(sent.Link)
	require.NoError(t, err)
	claims, err := f.links.ValidateLinkToken(link.Query().Get("token"), u.VerificationToken)
	require.NoError(t, err)
	assert.Equal(t, u.Email, claims.Email)
}

func TestSendMail_Branches(t *testing.T) {
	verified := sampleUser()
	verified.IsEmailVerified = true
	unverified := sampleUser()

	t.Run("already verified", func(t *testing.T) {
		f := newFixture(t)
		f.users.On("GetByEmail", mock.Anything, verified.Email).Return(verified, nil)
		msg, err := f.svc.SendMail(context.Background(), verified.Email, auth.MailVerify)
		require.NoError(t, err)
		assert.Equal(t, MsgAlreadyVerified, msg)
		assert.Empty(t, f.mailer.sent)
	})

	t.Run("reset needs verified email", func(t *testing.T) {
		f := newFixture(t)
		f.users.On("GetByEmail", mock.Anything, unverified.Email).Return(unverified, nil)
		_, err := f.svc.SendMail(context.Background(), unverified.Email, auth.MailResetPassword)
		assert.Equal(t, httperrors.KindValidation, kindOf(t, err))
		assert.Equal(t, MsgVerifyFirst, err.Error())
	})

	t.Run("reset link", func(t *testing.T) {
		f := newFixture(t)
		f.users.On("GetByEmail", mock.Anything, verified.Email).Return(verified, nil)
		_, err := f.svc.SendMail(context.Background(), verified.Email, auth.MailResetPassword)
		require.NoError(t, err)
		require.Len(t, f.mailer.sent, 1)
		assert.Contains(t, f.mailer.sent[0].Link, "/resetpassword?")
	})

	t.Run("unknown email", func(t *testing.T) {
		f := newFixture(t)
		f.users.On("GetByEmail", mock.Anything, "x@example.com").Return(store.User{}, store.ErrNotFound)
		_, err := f.svc.SendMail(context.Background(), "x@example.com", auth.MailVerify)
		assert.Equal(t, MsgEmailNotFound, err.Error())
	})

	t.Run("mailer failure", func(t *testing.T) {
		f := newFixture(t)
		f.mailer.err = errors.New("smtp down")
		f.users.On("GetByEmail", mock.Anything, unverified.Email).Return(unverified, nil)
		_, err := f.svc.SendMail(context.Background(), unverified.Email, auth.MailVerify)
		assert.Equal(t, httperrors.KindInternal, kindOf(t, err))
	})
}

func TestSaveImage_ReplacesPreviousObject(t *testing.T) {
	f := newFixture(t)
	u := sampleUser()
	u.Photo = "https://cdn.example/users/user-" + u.ID.String() + ".jpg"
	newURL := "https://cdn.example/users/user-" + u.ID.String() + ".png"

	f.users.On("GetByID", mock.Anything, u.ID).Return(u, nil)
	f.images.On("Upload", mock.Anything, storage.UserImageKey(u.ID.String(), ".png"), "image/png", int64(4)).Return(newURL, nil)
	f.users.On("SetPhoto", mock.Anything, u.ID, newURL).Return(nil)
	f.images.On("Delete", mock.Anything, "users/user-"+u.ID.String()+".jpg").Return(nil)

	url, err := f.svc.SaveImage(context.Background(), u.ID, storage.Image{
		Body: strings.NewReader("data"), ContentType: "image/png", Ext: ".png", Size: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, newURL, url)
	f.images.AssertExpectations(t)
}

func TestSaveImage_StorageDisabled(t *testing.T) {
	f := newFixture(t)
	f.svc.images = nil
	_, err := f.svc.SaveImage(context.Background(), uuid.New(), storage.Image{})
	assert.Equal(t, httperrors.ErrCodeFeatureNotAvailable, httperrors.As(err).Code)
}

func TestRemoveImage(t *testing.T) {
	f := newFixture(t)
	u := sampleUser()
	u.Photo = "https://cdn.example/users/user-1.png"
	f.users.On("GetByID", mock.Anything, u.ID).Return(u, nil)
	f.users.On("SetPhoto", mock.Anything, u.ID, "").Return(nil)
	f.images.On("Delete", mock.Anything, "users/user-1.png").Return(errors.New("gone"))

	require.NoError(t, f.svc.RemoveImage(context.Background(), u.ID))
	f.users.AssertExpectations(t)
}

func TestRemoveImage_NoPhoto(t *testing.T) {
	f := newFixture(t)
	u := sampleUser()
	f.users.On("GetByID", mock.Anything, u.ID).Return(u, nil)

	err := f.svc.RemoveImage(context.Background(), u.ID)
	assert.Equal(t, httperrors.KindNotFound, kindOf(t, err))
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	u := sampleUser()
	u.Photo = "https://cdn.example/users/user-9.gif"
	f.users.On("GetByID", mock.Anything, u.ID).Return(u, nil)
	f.images.On("Delete", mock.Anything, "users/user-9.gif").Return(nil)
	f.users.On("Delete", mock.Anything, u.ID).Return(nil)

	require.NoError(t, f.svc.Delete(context.Background(), auth.Actor{ID: u.ID}, u.ID))
	f.users.AssertExpectations(t)
	f.images.AssertExpectations(t)
}

func TestDelete_MissingAndForbidden(t *testing.T) {
	f := newFixture(t)
	id := uuid.New()
	f.users.On("GetByID", mock.Anything, id).Return(store.User{}, store.ErrNotFound)

	err := f.svc.Delete(context.Background(), auth.Actor{ID: id}, id)
	assert.Equal(t, MsgDeleteMissing, err.Error())

	err = f.svc.Delete(context.Background(), auth.Actor{ID: uuid.New()}, id)
	assert.Equal(t, httperrors.KindForbidden, kindOf(t, err))
}
