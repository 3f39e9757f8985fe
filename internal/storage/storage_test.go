package storage

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/quiz-api/internal/config"
	httperrors "github.com/gokatarajesh/quiz-api/pkg/http/errors"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 32)...)

func TestValidateImage(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		ext  string
		ok   bool
	}{
		{"png", pngBytes, ".png", true},
		{"gif", []byte("GIF89a........"), ".gif", true},
		{"jpeg", []byte("\xFF\xD8\xFF\xE0....JFIF"), ".jpg", true},
		{"text", []byte("hello world"), "", false},
		{"empty", nil, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := ValidateImage(tt.data, MaxImageBytes)
			if !tt.ok {
				require.Error(t, err)
				assert.Equal(t, httperrors.ErrCodeInvalidImage, httperrors.As(err).Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.ext, img.Ext)
			assert.Equal(t, int64(len(tt.data)), img.Size)
		})
	}
}

func TestValidateImage_TooLarge(t *testing.T) {
	_, err := ValidateImage(pngBytes, 8)
	require.Error(t, err)
	assert.True(t, httperrors.IsKind(err, httperrors.KindValidation))
}

func multipartRequest(t *testing.T, field string, data []byte) *http.Request {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, "upload.bin")
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/user/updateimage", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestReadImage(t *testing.T) {
	img, err := ReadImage(multipartRequest(t, "image", pngBytes), "image", MaxImageBytes)
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.ContentType)

	_, err = ReadImage(multipartRequest(t, "photo", pngBytes), "image", MaxImageBytes)
	assert.True(t, httperrors.IsKind(err, httperrors.KindValidation))

	_, err = ReadImage(httptest.NewRequest(http.MethodPost, "/user/updateimage", strings.NewReader("{}")), "image", MaxImageBytes)
	assert.True(t, httperrors.IsKind(err, httperrors.KindValidation))
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "users/user-42.png", UserImageKey("42", ".png"))
	assert.Equal(t, "quizzes/quiz-7.gif", QuizImageKey("7", ".gif"))

	assert.Equal(t, "users/user-42.png", KeyFromURL("https://cdn.example/users/user-42.png"))
	assert.Equal(t, "quizzes/quiz-7.gif", KeyFromURL("quizzes/quiz-7.gif"))
	assert.Equal(t, "", KeyFromURL("https://lh3.googleusercontent.com/a/photo.jpg"))
	assert.Equal(t, "", KeyFromURL(""))
}

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch r.Method {
	case http.MethodPut:
		data, _ := io.ReadAll(r.Body)
		f.objects[r.URL.Path] = data
		f.types[r.URL.Path] = r.Header.Get("Content-Type")
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodDelete:
		delete(f.objects, r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestS3Store_UploadAndDelete(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	store, err := NewS3Store(context.Background(), config.Storage{
		Bucket:          "quiz-images",
		Region:          "us-east-1",
		Endpoint:        srv.URL,
		AccessKeyID:     "test",
		SecretAccessKey: "test",
		UsePathStyle:    true,
		PublicBaseURL:   "https://cdn.example",
	}, zerolog.Nop())
	require.NoError(t, err)

	url, err := store.Upload(context.Background(), "users/user-1.png", "image/png", bytes.NewReader(pngBytes), int64(len(pngBytes)))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/users/user-1.png", url)

	fake.mu.Lock()
	assert.Equal(t, pngBytes, fake.objects["/quiz-images/users/user-1.png"])
	assert.Equal(t, "image/png", fake.types["/quiz-images/users/user-1.png"])
	fake.mu.Unlock()

	require.NoError(t, store.Delete(context.Background(), "users/user-1.png"))
	fake.mu.Lock()
	assert.Empty(t, fake.objects)
	fake.mu.Unlock()
}

func TestS3Store_URL(t *testing.T) {
	s := &S3Store{cfg: config.Storage{Bucket: "b", Region: "eu-west-1"}}
	assert.Equal(t, "https://b.s3.eu-west-1.amazonaws.com/users/u.png", s.URL("users/u.png"))

	s.cfg.Endpoint = "http://minio:9000/"
	assert.Equal(t, "http://minio:9000/b/users/u.png", s.URL("users/u.png"))
}
