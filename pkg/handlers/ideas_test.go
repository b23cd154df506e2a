package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"zoid-backend/pkg/models"
)

func TestListIdeas_NeedsNoAuthentication(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner@example.com")
	org := env.org(t, owner, "Acme")
	env.idea(t, org, owner, "zoid")
	h := NewIdeasHandler(env.cfg, env.db, env.logger)

	rec := httptest.NewRecorder()
	h.ListIdeas(rec, jsonRequest(t, http.MethodGet, "/api/ideas?id="+org.ID, nil, nil))
	wantStatus(t, rec, http.StatusOK)

	data, _ := decodeEnvelope(t, rec)
	var payload struct {
		Ideas []models.Idea `json:"ideas"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if len(payload.Ideas) != 1 || payload.Ideas[0].Name != "zoid" {
		t.Errorf("ideas = %+v", payload.Ideas)
	}
}

func TestCreateIdeas_RequiresMembership(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner@example.com")
	outsider := env.user(t, "outsider@example.com")
	org := env.org(t, owner, "Acme")
	h := NewIdeasHandler(env.cfg, env.db, env.logger)

	rec := httptest.NewRecorder()
	h.CreateIdeas(rec, jsonRequest(t, http.MethodPost, "/api/ideas", map[string]interface{}{
		"organization": org.ID,
		"ideas":        []map[string]string{{"name": "sneaky"}},
	}, outsider))
	wantErrorCode(t, rec, http.StatusUnauthorized, "UNAUTHORIZED")

	if ideas, _ := env.db.ListIdeasByOrg(org.ID); len(ideas) != 0 {
		t.Errorf("outsider created ideas: %d", len(ideas))
	}
}

func TestCreateIdeas_SetsAuthorAndEmptyVotes(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner@example.com")
	member := env.user(t, "member@example.com")
	org := env.org(t, owner, "Acme")
	env.join(t, org, member)
	h := NewIdeasHandler(env.cfg, env.db, env.logger)

	rec := httptest.NewRecorder()
	h.CreateIdeas(rec, jsonRequest(t, http.MethodPost, "/api/ideas", map[string]interface{}{
		"organization": org.ID,
		"ideas":        []map[string]string{{"name": "zoid"}, {"name": "brandr"}},
	}, member))
	wantStatus(t, rec, http.StatusOK)

	data, _ := decodeEnvelope(t, rec)
	var payload struct {
		Ideas []models.Idea `json:"ideas"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if len(payload.Ideas) != 2 {
		t.Fatalf("inserted %d ideas, want 2", len(payload.Ideas))
	}
	for _, idea := range payload.Ideas {
		if idea.AuthorID != member.ID {
			t.Errorf("author_id = %q, want caller %q", idea.AuthorID, member.ID)
		}
		if idea.OrgID != org.ID {
			t.Errorf("org_id = %q, want %q", idea.OrgID, org.ID)
		}
		if len(idea.Votes.Up) != 0 || len(idea.Votes.Down) != 0 {
			t.Errorf("votes should start empty: %+v", idea.Votes)
		}
	}
}

// Submitted vote sets are stored verbatim. The server does not check
// that they are a legal transition, nor that the voter ids are members.
func TestUpdateIdeaVotes_AcceptsArbitraryVoteSets(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner@example.com")
	org := env.org(t, owner, "Acme")
	idea := env.idea(t, org, owner, "zoid")
	h := NewIdeasHandler(env.cfg, env.db, env.logger)

	submitted := models.Votes{
		Up:   []string{"ghost-1", "ghost-2", owner.ID},
		Down: []string{"ghost-1"}, // overlaps with up, still accepted
	}
	rec := httptest.NewRecorder()
	h.UpdateIdeaVotes(rec, jsonRequest(t, http.MethodPut, "/api/ideas", map[string]interface{}{
		"idea": models.Idea{ID: idea.ID, OrgID: org.ID, Votes: submitted},
	}, owner))
	wantStatus(t, rec, http.StatusOK)

	stored, err := env.db.GetIdea(idea.ID)
	if err != nil {
		t.Fatalf("get idea: %v", err)
	}
	if len(stored.Votes.Up) != 3 || len(stored.Votes.Down) != 1 {
		t.Errorf("votes not stored verbatim: %+v", stored.Votes)
	}
}

func TestUpdateIdeaVotes_NonMemberIs401(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner@example.com")
	outsider := env.user(t, "outsider@example.com")
	org := env.org(t, owner, "Acme")
	idea := env.idea(t, org, owner, "zoid")
	h := NewIdeasHandler(env.cfg, env.db, env.logger)

	rec := httptest.NewRecorder()
	h.UpdateIdeaVotes(rec, jsonRequest(t, http.MethodPut, "/api/ideas", map[string]interface{}{
		"idea": models.Idea{ID: idea.ID, OrgID: org.ID, Votes: models.NewVotes().Upvote(outsider.ID)},
	}, outsider))
	wantErrorCode(t, rec, http.StatusUnauthorized, "UNAUTHORIZED")
}

func TestDeleteIdea_AuthorCanDelete(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner@example.com")
	member := env.user(t, "member@example.com")
	org := env.org(t, owner, "Acme")
	env.join(t, org, member)
	idea := env.idea(t, org, member, "mine")
	h := NewIdeasHandler(env.cfg, env.db, env.logger)

	rec := httptest.NewRecorder()
	h.DeleteIdea(rec, jsonRequest(t, http.MethodDelete,
		"/api/ideas?id="+idea.ID+"&organization="+org.ID, nil, member))
	wantStatus(t, rec, http.StatusOK)

	if ideas, _ := env.db.ListIdeasByOrg(org.ID); len(ideas) != 0 {
		t.Errorf("idea survived author delete: %d", len(ideas))
	}
}

func TestDeleteIdea_OwnerCanDeleteAnyIdea(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner@example.com")
	member := env.user(t, "member@example.com")
	org := env.org(t, owner, "Acme")
	env.join(t, org, member)
	idea := env.idea(t, org, member, "members-idea")
	h := NewIdeasHandler(env.cfg, env.db, env.logger)

	rec := httptest.NewRecorder()
	h.DeleteIdea(rec, jsonRequest(t, http.MethodDelete,
		"/api/ideas?id="+idea.ID+"&organization="+org.ID, nil, owner))
	wantStatus(t, rec, http.StatusOK)
}

func TestDeleteIdea_OtherMemberIs401(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner@example.com")
	author := env.user(t, "author@example.com")
	peer := env.user(t, "peer@example.com")
	org := env.org(t, owner, "Acme")
	env.join(t, org, author)
	env.join(t, org, peer)
	idea := env.idea(t, org, author, "authors-idea")
	h := NewIdeasHandler(env.cfg, env.db, env.logger)

	rec := httptest.NewRecorder()
	h.DeleteIdea(rec, jsonRequest(t, http.MethodDelete,
		"/api/ideas?id="+idea.ID+"&organization="+org.ID, nil, peer))
	wantErrorCode(t, rec, http.StatusUnauthorized, "UNAUTHORIZED")

	if _, err := env.db.GetIdea(idea.ID); err != nil {
		t.Errorf("idea should survive denied delete: %v", err)
	}
}

func TestDeleteIdea_MissingParamsIs400(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner@example.com")
	h := NewIdeasHandler(env.cfg, env.db, env.logger)

	rec := httptest.NewRecorder()
	h.DeleteIdea(rec, jsonRequest(t, http.MethodDelete, "/api/ideas?id=x", nil, owner))
	wantErrorCode(t, rec, http.StatusBadRequest, "BAD_REQUEST")
}

func TestDeleteIdea_UnknownIdeaIs404(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner@example.com")
	org := env.org(t, owner, "Acme")
	h := NewIdeasHandler(env.cfg, env.db, env.logger)

	rec := httptest.NewRecorder()
	h.DeleteIdea(rec, jsonRequest(t, http.MethodDelete,
		"/api/ideas?id=missing&organization="+org.ID, nil, owner))
	wantErrorCode(t, rec, http.StatusNotFound, "NOT_FOUND")
}
