//go:build integration
// +build integration

package integration

import (
	"net/http"
	"testing"
)

func TestUnauthorizedAccess(t *testing.T) {
	status, env := doJSON(t, http.MethodGet, "/user/profile", "", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", status)
	}
	if !env.Error {
		t.Fatal("error flag is not set")
	}
	if env.Message == "" {
		t.Fatal("message is empty")
	}
}

func TestForbiddenQuizUpdate(t *testing.T) {
	owner := createRegisteredUser(t, uniqueEmail("owner"), "testpassword123")
	other := createRegisteredUser(t, uniqueEmail("other"), "testpassword123")
	quizID := createQuiz(t, owner.AccessToken, "owned quiz")

	status, env := doJSON(t, http.MethodPost, "/quiz/update", other.AccessToken, map[string]interface{}{
		"id":    quizID,
		"title": "hijacked",
	})
	if status != http.StatusForbidden {
		t.Fatalf("expected 403, got %d (%s)", status, env.Message)
	}
}

func TestValidationErrors(t *testing.T) {
	status, env := doJSON(t, http.MethodPost, "/round/start", "", map[string]string{"quizId": "not-a-uuid"})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
	if !env.Error {
		t.Fatal("error flag is not set")
	}
}

func TestNotFound(t *testing.T) {
	status, _ := doJSON(t, http.MethodGet, "/round/get?type=id&id=00000000-0000-4000-8000-000000000000", "", nil)
	if status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
}
