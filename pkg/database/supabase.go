package database

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"zoid-backend/pkg/models"
)

// SupabaseDatabase talks to Supabase's PostgREST endpoint. Used on
// serverless platforms where direct Postgres connections are unreliable.
type SupabaseDatabase struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewSupabaseDatabase creates a Supabase REST store.
func NewSupabaseDatabase(supabaseURL, key string) DatabaseInterface {
	if !strings.HasPrefix(supabaseURL, "http") {
		supabaseURL = "https://" + supabaseURL
	}

	return &SupabaseDatabase{
		baseURL: supabaseURL,
		apiKey:  key,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// makeRequest sends a request to the PostgREST endpoint and returns the
// raw response body. Prefer: return=representation makes writes echo the
// affected rows.
func (db *SupabaseDatabase) makeRequest(method, endpoint string, body interface{}) ([]byte, error) {
	var reqBody io.Reader

	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, db.baseURL+"/rest/v1"+endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("apikey", db.apiKey)
	req.Header.Set("Authorization", "Bearer "+db.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")

	resp, err := db.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

func inList(ids []string) string {
	escaped := make([]string, len(ids))
	for i, id := range ids {
		escaped[i] = url.QueryEscape(id)
	}
	return "in.(" + strings.Join(escaped, ",") + ")"
}

// ==== Users ====

func (db *SupabaseDatabase) CreateUser(user *models.User) error {
	payload := map[string]interface{}{
		"email":         user.Email,
		"password_hash": user.Password,
		"name":          user.Name,
	}
	resp, err := db.makeRequest("POST", "/users", []interface{}{payload})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	var created []models.User
	if err := json.Unmarshal(resp, &created); err != nil || len(created) == 0 {
		return fmt.Errorf("failed to parse created user")
	}
	user.ID = created[0].ID
	user.CreatedAt = created[0].CreatedAt
	user.UpdatedAt = created[0].UpdatedAt
	return nil
}

func (db *SupabaseDatabase) GetUserByEmail(email string) (*models.User, error) {
	resp, err := db.makeRequest("GET", "/users?email=eq."+url.QueryEscape(email)+"&limit=1", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return db.singleUser(resp)
}

func (db *SupabaseDatabase) GetUserByID(id string) (*models.User, error) {
	resp, err := db.makeRequest("GET", "/users?id=eq."+url.QueryEscape(id)+"&limit=1", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return db.singleUser(resp)
}

func (db *SupabaseDatabase) singleUser(resp []byte) (*models.User, error) {
	var users []struct {
		models.User
		PasswordHash string `json:"password_hash"`
	}
	if err := json.Unmarshal(resp, &users); err != nil {
		return nil, fmt.Errorf("failed to parse user response: %w", err)
	}
	if len(users) == 0 {
		return nil, ErrNotFound
	}
	u := users[0].User
	u.Password = users[0].PasswordHash
	return &u, nil
}

// ==== Organizations ====

func (db *SupabaseDatabase) CreateOrganization(org *models.Organization) error {
	payload := map[string]interface{}{
		"name":        org.Name,
		"description": org.Description,
		"owner_id":    org.OwnerID,
	}
	resp, err := db.makeRequest("POST", "/orgs", []interface{}{payload})
	if err != nil {
		return fmt.Errorf("failed to create organization: %w", err)
	}

	var created []models.Organization
	if err := json.Unmarshal(resp, &created); err != nil || len(created) == 0 {
		return fmt.Errorf("failed to parse created organization")
	}
	org.ID = created[0].ID
	org.CreatedAt = created[0].CreatedAt
	return nil
}

func (db *SupabaseDatabase) GetOrganization(orgID string) (*models.Organization, error) {
	resp, err := db.makeRequest("GET", "/orgs?id=eq."+url.QueryEscape(orgID)+"&limit=1", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}

	var orgs []models.Organization
	if err := json.Unmarshal(resp, &orgs); err != nil {
		return nil, fmt.Errorf("failed to parse organization response: %w", err)
	}
	if len(orgs) == 0 {
		return nil, ErrNotFound
	}
	return &orgs[0], nil
}

func (db *SupabaseDatabase) UpdateOrganization(org *models.Organization) error {
	payload := map[string]interface{}{
		"name":        org.Name,
		"description": org.Description,
	}
	resp, err := db.makeRequest("PATCH", "/orgs?id=eq."+url.QueryEscape(org.ID), payload)
	if err != nil {
		return fmt.Errorf("failed to update organization: %w", err)
	}

	var updated []models.Organization
	if err := json.Unmarshal(resp, &updated); err != nil {
		return fmt.Errorf("failed to parse updated organization: %w", err)
	}
	if len(updated) == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *SupabaseDatabase) DeleteOrganization(orgID string) error {
	if _, err := db.makeRequest("DELETE", "/orgs?id=eq."+url.QueryEscape(orgID), nil); err != nil {
		return fmt.Errorf("failed to delete organization: %w", err)
	}
	return nil
}

func (db *SupabaseDatabase) ListUserOrganizations(userID string) ([]models.Organization, error) {
	resp, err := db.makeRequest("GET", "/memberships?member_id=eq."+url.QueryEscape(userID)+"&select=org_id", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}

	var rows []struct {
		OrgID string `json:"org_id"`
	}
	if err := json.Unmarshal(resp, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse memberships: %w", err)
	}
	if len(rows) == 0 {
		return []models.Organization{}, nil
	}

	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.OrgID
	}
	resp, err = db.makeRequest("GET", "/orgs?id="+inList(ids)+"&order=created_at.asc", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}

	var orgs []models.Organization
	if err := json.Unmarshal(resp, &orgs); err != nil {
		return nil, fmt.Errorf("failed to parse organizations: %w", err)
	}
	return orgs, nil
}

// ==== Memberships ====

func (db *SupabaseDatabase) AddMembership(m *models.Membership) error {
	payload := map[string]interface{}{
		"org_id":    m.OrgID,
		"member_id": m.MemberID,
	}
	resp, err := db.makeRequest("POST", "/memberships", []interface{}{payload})
	if err != nil {
		return fmt.Errorf("failed to add membership: %w", err)
	}

	var created []models.Membership
	if err := json.Unmarshal(resp, &created); err != nil || len(created) == 0 {
		return fmt.Errorf("failed to parse created membership")
	}
	m.CreatedAt = created[0].CreatedAt
	return nil
}

func (db *SupabaseDatabase) HasMembership(orgID, memberID string) (bool, error) {
	endpoint := "/memberships?org_id=eq." + url.QueryEscape(orgID) +
		"&member_id=eq." + url.QueryEscape(memberID) + "&limit=1"
	resp, err := db.makeRequest("GET", endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}

	var rows []models.Membership
	if err := json.Unmarshal(resp, &rows); err != nil {
		return false, fmt.Errorf("failed to parse memberships: %w", err)
	}
	return len(rows) > 0, nil
}

func (db *SupabaseDatabase) ListMembers(orgID string) ([]models.Member, error) {
	resp, err := db.makeRequest("GET", "/memberships?org_id=eq."+url.QueryEscape(orgID)+"&order=created_at.asc", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}

	var rows []models.Membership
	if err := json.Unmarshal(resp, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse memberships: %w", err)
	}

	members := make([]models.Member, 0, len(rows))
	for _, m := range rows {
		member := models.Member{
			OrgID:    m.OrgID,
			MemberID: m.MemberID,
			JoinedAt: m.CreatedAt,
		}
		// Best-effort user enrichment; a missing user row leaves the
		// public fields empty rather than failing the listing.
		if u, err := db.GetUserByID(m.MemberID); err == nil {
			member.Email = u.Email
			member.Name = u.Name
		}
		members = append(members, member)
	}
	return members, nil
}

func (db *SupabaseDatabase) DeleteMembershipsByOrg(orgID string) error {
	if _, err := db.makeRequest("DELETE", "/memberships?org_id=eq."+url.QueryEscape(orgID), nil); err != nil {
		return fmt.Errorf("failed to delete memberships: %w", err)
	}
	return nil
}

func (db *SupabaseDatabase) DeleteMemberships(orgID string, memberIDs []string) error {
	if len(memberIDs) == 0 {
		return nil
	}
	endpoint := "/memberships?org_id=eq." + url.QueryEscape(orgID) + "&member_id=" + inList(memberIDs)
	if _, err := db.makeRequest("DELETE", endpoint, nil); err != nil {
		return fmt.Errorf("failed to delete memberships: %w", err)
	}
	return nil
}

// ==== Ideas ====

func (db *SupabaseDatabase) CreateIdeas(ideas []models.Idea) ([]models.Idea, error) {
	payload := make([]interface{}, len(ideas))
	for i, idea := range ideas {
		payload[i] = map[string]interface{}{
			"org_id":    idea.OrgID,
			"name":      idea.Name,
			"author_id": idea.AuthorID,
			"votes":     idea.Votes,
		}
	}
	resp, err := db.makeRequest("POST", "/ideas", payload)
	if err != nil {
		return nil, fmt.Errorf("failed to create ideas: %w", err)
	}

	var created []models.Idea
	if err := json.Unmarshal(resp, &created); err != nil {
		return nil, fmt.Errorf("failed to parse created ideas: %w", err)
	}
	return created, nil
}

func (db *SupabaseDatabase) GetIdea(ideaID string) (*models.Idea, error) {
	resp, err := db.makeRequest("GET", "/ideas?id=eq."+url.QueryEscape(ideaID)+"&limit=1", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get idea: %w", err)
	}

	var ideas []models.Idea
	if err := json.Unmarshal(resp, &ideas); err != nil {
		return nil, fmt.Errorf("failed to parse idea response: %w", err)
	}
	if len(ideas) == 0 {
		return nil, ErrNotFound
	}
	return &ideas[0], nil
}

func (db *SupabaseDatabase) ListIdeasByOrg(orgID string) ([]models.Idea, error) {
	resp, err := db.makeRequest("GET", "/ideas?org_id=eq."+url.QueryEscape(orgID)+"&order=created_at.asc", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list ideas: %w", err)
	}

	ideas := []models.Idea{}
	if err := json.Unmarshal(resp, &ideas); err != nil {
		return nil, fmt.Errorf("failed to parse ideas: %w", err)
	}
	return ideas, nil
}

func (db *SupabaseDatabase) UpdateIdeaVotes(ideaID string, votes models.Votes) ([]models.Idea, error) {
	payload := map[string]interface{}{"votes": votes}
	resp, err := db.makeRequest("PATCH", "/ideas?id=eq."+url.QueryEscape(ideaID), payload)
	if err != nil {
		return nil, fmt.Errorf("failed to update idea votes: %w", err)
	}

	updated := []models.Idea{}
	if err := json.Unmarshal(resp, &updated); err != nil {
		return nil, fmt.Errorf("failed to parse updated ideas: %w", err)
	}
	return updated, nil
}

func (db *SupabaseDatabase) DeleteIdea(ideaID string) ([]models.Idea, error) {
	resp, err := db.makeRequest("DELETE", "/ideas?id=eq."+url.QueryEscape(ideaID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to delete idea: %w", err)
	}

	deleted := []models.Idea{}
	if err := json.Unmarshal(resp, &deleted); err != nil {
		return nil, fmt.Errorf("failed to parse deleted ideas: %w", err)
	}
	return deleted, nil
}

func (db *SupabaseDatabase) DeleteIdeasByOrg(orgID string) error {
	if _, err := db.makeRequest("DELETE", "/ideas?org_id=eq."+url.QueryEscape(orgID), nil); err != nil {
		return fmt.Errorf("failed to delete ideas: %w", err)
	}
	return nil
}

func (db *SupabaseDatabase) DeleteIdeasByAuthors(orgID string, authorIDs []string) error {
	if len(authorIDs) == 0 {
		return nil
	}
	endpoint := "/ideas?org_id=eq." + url.QueryEscape(orgID) + "&author_id=" + inList(authorIDs)
	if _, err := db.makeRequest("DELETE", endpoint, nil); err != nil {
		return fmt.Errorf("failed to delete ideas: %w", err)
	}
	return nil
}

// ==== Lifecycle ====

func (db *SupabaseDatabase) HealthCheck() error {
	_, err := db.makeRequest("GET", "/orgs?limit=1", nil)
	return err
}

func (db *SupabaseDatabase) Close() error {
	return nil
}
