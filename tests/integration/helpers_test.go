//go:build integration
// +build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"
)

type envelope struct {
	Error   bool            `json:"error"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type userInfo struct {
	ID           string
	AccessToken  string
	RefreshToken string
}

func envOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func baseURL() string {
	return envOrDefault("INTEGRATION_BASE_URL", "http://localhost:8080")
}

func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@example.com", prefix, time.Now().UnixNano())
}

// doJSON sends payload (when non-nil) as JSON with an optional bearer token
// and decodes the response envelope.
func doJSON(t *testing.T, method, path, token string, payload interface{}) (int, envelope) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, baseURL()+path, body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && err != io.EOF {
		t.Fatalf("decode %s %s response: %v", method, path, err)
	}
	return resp.StatusCode, env
}

func decodeData(t *testing.T, env envelope, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("decode data %s: %v", string(env.Data), err)
	}
}

func sessionFrom(t *testing.T, env envelope) userInfo {
	t.Helper()
	var out struct {
		UserID       string `json:"userId"`
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	decodeData(t, env, &out)
	return userInfo{ID: out.UserID, AccessToken: out.AccessToken, RefreshToken: out.RefreshToken}
}

func createRegisteredUser(t *testing.T, email, password string) userInfo {
	t.Helper()
	status, env := doJSON(t, http.MethodPost, "/auth/register", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if status != http.StatusCreated {
		t.Fatalf("unexpected register status: %d (%s)", status, env.Message)
	}
	return sessionFrom(t, env)
}

func loginUser(t *testing.T, email, password string) userInfo {
	t.Helper()
	status, env := doJSON(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if status != http.StatusOK {
		t.Fatalf("unexpected login status: %d (%s)", status, env.Message)
	}
	return sessionFrom(t, env)
}

func createQuiz(t *testing.T, token, title string) string {
	t.Helper()
	status, env := doJSON(t, http.MethodPost, "/quiz/create", token, map[string]interface{}{"title": title})
	if status != http.StatusCreated {
		t.Fatalf("unexpected quiz create status: %d (%s)", status, env.Message)
	}
	var quiz struct {
		ID string `json:"id"`
	}
	decodeData(t, env, &quiz)
	return quiz.ID
}

func createQuestion(t *testing.T, token, quizID, id string, answers, correct []string) {
	t.Helper()
	status, env := doJSON(t, http.MethodPost, "/question/create", token, map[string]interface{}{
		"id":             id,
		"quizId":         quizID,
		"question":       "question " + id,
		"answers":        answers,
		"correctAnswers": correct,
		"comment":        "because " + id,
	})
	if status != http.StatusCreated {
		t.Fatalf("unexpected question create status: %d (%s)", status, env.Message)
	}
}
