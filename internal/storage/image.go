package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	httperrors "github.com/gokatarajesh/quiz-api/pkg/http/errors"
)

// MaxImageBytes is the default upload limit (5MB).
const MaxImageBytes = 5 << 20

// Object key prefixes.
const (
	FolderUsers   = "users"
	FolderQuizzes = "quizzes"
)

// AllowedImageTypes maps accepted MIME types to the extension used in keys.
var AllowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Image is an upload that passed validation.
type Image struct {
	Body        io.Reader
	ContentType string
	Ext         string
	Size        int64
}

// UserImageKey returns users/user-<id><ext>.
func UserImageKey(userID, ext string) string {
	return path.Join(FolderUsers, "user-"+userID+ext)
}

// QuizImageKey returns quizzes/quiz-<id><ext>.
func QuizImageKey(quizID, ext string) string {
	return path.Join(FolderQuizzes, "quiz-"+quizID+ext)
}

// KeyFromURL recovers the object key from a URL produced by an ObjectStore.
// Values that are not under one of the managed folders yield "".
func KeyFromURL(raw string) string {
	for _, folder := range []string{FolderUsers, FolderQuizzes} {
		if i := strings.LastIndex(raw, "/"+folder+"/"); i >= 0 {
			return raw[i+1:]
		}
		if strings.HasPrefix(raw, folder+"/") {
			return raw
		}
	}
	return ""
}

// ReadImage pulls the multipart file named field from r and validates its
// size and sniffed content type.
func ReadImage(r *http.Request, field string, maxBytes int64) (Image, error) {
	if maxBytes <= 0 {
		maxBytes = MaxImageBytes
	}
	r.Body = http.MaxBytesReader(nil, r.Body, maxBytes+1<<20)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return Image{}, imageTooLarge(maxBytes)
		}
		return Image{}, invalidImage(fmt.Sprintf("%s must be a multipart file upload", field))
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		return Image{}, invalidImage(fmt.Sprintf("%s is required", field))
	}
	defer file.Close()

	if header.Size > maxBytes {
		return Image{}, imageTooLarge(maxBytes)
	}
	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return Image{}, httperrors.Internal("read upload", err)
	}
	return ValidateImage(data, maxBytes)
}

// ValidateImage checks raw bytes against the size limit and allowed types.
func ValidateImage(data []byte, maxBytes int64) (Image, error) {
	if int64(len(data)) > maxBytes {
		return Image{}, imageTooLarge(maxBytes)
	}
	if len(data) == 0 {
		return Image{}, invalidImage("image is empty")
	}
	contentType := http.DetectContentType(data)
	ext, ok := AllowedImageTypes[contentType]
	if !ok {
		return Image{}, invalidImage("image must be a jpeg, png, webp or gif")
	}
	return Image{
		Body:        bytes.NewReader(data),
		ContentType: contentType,
		Ext:         ext,
		Size:        int64(len(data)),
	}, nil
}

func imageTooLarge(maxBytes int64) error {
	return invalidImage(fmt.Sprintf("image must be at most %d bytes", maxBytes))
}

func invalidImage(message string) error {
	return httperrors.Validation(message, nil).WithCode(httperrors.ErrCodeInvalidImage)
}
