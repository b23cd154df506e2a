package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"zoid-backend/pkg/config"
	"zoid-backend/pkg/database"
	"zoid-backend/pkg/middleware"
	"zoid-backend/pkg/models"
	"zoid-backend/pkg/utils"

	"go.uber.org/zap"
)

// testEnv bundles the fixtures every handler test needs: a config with a
// known signing secret, the in-memory store and a silent logger.
type testEnv struct {
	cfg    *config.Config
	db     *database.MemoryDatabase
	logger *zap.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return &testEnv{
		cfg: &config.Config{
			Environment: "development",
			Port:        "3000",
			JWTSecret:   "test-secret",
			BaseURL:     "http://app.example.com",
		},
		db:     database.NewMemoryDatabase(),
		logger: zap.NewNop(),
	}
}

func (e *testEnv) user(t *testing.T, email string) *models.User {
	t.Helper()
	u := &models.User{Email: email, Password: "not-a-real-hash", Name: email}
	if err := e.db.CreateUser(u); err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u
}

// org creates an organization with the owner's membership, the way
// CreateOrganization would.
func (e *testEnv) org(t *testing.T, owner *models.User, name string) *models.Organization {
	t.Helper()
	org := &models.Organization{Name: name, OwnerID: owner.ID}
	if err := e.db.CreateOrganization(org); err != nil {
		t.Fatalf("create org %s: %v", name, err)
	}
	e.join(t, org, owner)
	return org
}

func (e *testEnv) join(t *testing.T, org *models.Organization, u *models.User) {
	t.Helper()
	if err := e.db.AddMembership(&models.Membership{OrgID: org.ID, MemberID: u.ID}); err != nil {
		t.Fatalf("add membership: %v", err)
	}
}

func (e *testEnv) idea(t *testing.T, org *models.Organization, author *models.User, name string) *models.Idea {
	t.Helper()
	inserted, err := e.db.CreateIdeas([]models.Idea{{
		OrgID:    org.ID,
		Name:     name,
		AuthorID: author.ID,
		Votes:    models.NewVotes(),
	}})
	if err != nil {
		t.Fatalf("create idea %s: %v", name, err)
	}
	return &inserted[0]
}

// jsonRequest builds a request with an optional JSON body and an optional
// pre-authenticated user on the context.
func jsonRequest(t *testing.T, method, target string, body interface{}, user *models.User) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	r := httptest.NewRequest(method, target, &buf)
	r.Header.Set("Content-Type", "application/json")
	if user != nil {
		r = middleware.WithTestUser(r, user)
	}
	return r
}

// decodeEnvelope unpacks the response envelope into raw data plus error.
func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) (json.RawMessage, *utils.APIError) {
	t.Helper()
	var resp struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   *utils.APIError `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return resp.Data, resp.Error
}

func wantStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d (body: %s)", rec.Code, want, rec.Body.String())
	}
}

func wantErrorCode(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	wantStatus(t, rec, status)
	_, apiErr := decodeEnvelope(t, rec)
	if apiErr == nil {
		t.Fatalf("expected error envelope, got %s", rec.Body.String())
	}
	if apiErr.Code != code {
		t.Fatalf("error code = %q, want %q", apiErr.Code, code)
	}
}
