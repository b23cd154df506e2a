package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"zoid-backend/pkg/models"

	"golang.org/x/crypto/bcrypt"
)

func registerUser(t *testing.T, h *AuthHandler, email, password string) models.UserLoginResponse {
	t.Helper()
	rec := httptest.NewRecorder()
	h.Register(rec, jsonRequest(t, http.MethodPost, "/api/auth/register",
		map[string]string{"email": email, "password": password}, nil))
	wantStatus(t, rec, http.StatusOK)

	data, _ := decodeEnvelope(t, rec)
	var session models.UserLoginResponse
	if err := json.Unmarshal(data, &session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	return session
}

func TestRegister_CreatesUserAndIssuesSession(t *testing.T) {
	env := newTestEnv(t)
	h := NewAuthHandler(env.cfg, env.db, env.logger)

	session := registerUser(t, h, "alice@example.com", "long-enough-pw")

	if session.AccessToken == "" || session.RefreshToken == "" {
		t.Error("session tokens missing")
	}
	if session.User.Email != "alice@example.com" {
		t.Errorf("user email = %q", session.User.Email)
	}

	stored, err := env.db.GetUserByEmail("alice@example.com")
	if err != nil {
		t.Fatalf("stored user: %v", err)
	}
	if stored.Password == "long-enough-pw" {
		t.Error("password stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("long-enough-pw")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}
}

func TestRegister_DuplicateEmailIsConflict(t *testing.T) {
	env := newTestEnv(t)
	h := NewAuthHandler(env.cfg, env.db, env.logger)
	registerUser(t, h, "alice@example.com", "long-enough-pw")

	rec := httptest.NewRecorder()
	h.Register(rec, jsonRequest(t, http.MethodPost, "/api/auth/register",
		map[string]string{"email": "alice@example.com", "password": "another-pw-123"}, nil))
	wantErrorCode(t, rec, http.StatusConflict, "CONFLICT")
}

func TestRegister_ValidatesInput(t *testing.T) {
	env := newTestEnv(t)
	h := NewAuthHandler(env.cfg, env.db, env.logger)

	cases := []struct {
		name  string
		body  map[string]string
	}{
		{"missing email", map[string]string{"password": "long-enough-pw"}},
		{"malformed email", map[string]string{"email": "not-an-email", "password": "long-enough-pw"}},
		{"short password", map[string]string{"email": "a@example.com", "password": "short"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Register(rec, jsonRequest(t, http.MethodPost, "/api/auth/register", tc.body, nil))
			wantErrorCode(t, rec, http.StatusBadRequest, "BAD_REQUEST")
		})
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	h := NewAuthHandler(env.cfg, env.db, env.logger)
	registerUser(t, h, "alice@example.com", "long-enough-pw")

	rec := httptest.NewRecorder()
	h.Login(rec, jsonRequest(t, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "alice@example.com", "password": "long-enough-pw"}, nil))
	wantStatus(t, rec, http.StatusOK)

	// Wrong password and unknown email produce the same response
	rec = httptest.NewRecorder()
	h.Login(rec, jsonRequest(t, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "alice@example.com", "password": "wrong-password"}, nil))
	wantErrorCode(t, rec, http.StatusUnauthorized, "UNAUTHORIZED")

	rec = httptest.NewRecorder()
	h.Login(rec, jsonRequest(t, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "nobody@example.com", "password": "long-enough-pw"}, nil))
	wantErrorCode(t, rec, http.StatusUnauthorized, "UNAUTHORIZED")
}

func TestRefreshToken(t *testing.T) {
	env := newTestEnv(t)
	h := NewAuthHandler(env.cfg, env.db, env.logger)
	session := registerUser(t, h, "alice@example.com", "long-enough-pw")

	rec := httptest.NewRecorder()
	h.RefreshToken(rec, jsonRequest(t, http.MethodPost, "/api/auth/refresh",
		map[string]string{"refresh_token": session.RefreshToken}, nil))
	wantStatus(t, rec, http.StatusOK)

	data, _ := decodeEnvelope(t, rec)
	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.AccessToken == "" {
		t.Error("refresh returned no access token")
	}

	// An access token is not accepted as a refresh token
	rec = httptest.NewRecorder()
	h.RefreshToken(rec, jsonRequest(t, http.MethodPost, "/api/auth/refresh",
		map[string]string{"refresh_token": session.AccessToken}, nil))
	wantErrorCode(t, rec, http.StatusUnauthorized, "UNAUTHORIZED")
}
