package database

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"zoid-backend/pkg/models"

	"github.com/google/uuid"
)

// MemoryDatabase is an in-process store for development and tests.
type MemoryDatabase struct {
	mu          sync.RWMutex
	users       map[string]models.User
	orgs        map[string]models.Organization
	memberships map[string]models.Membership // keyed by orgID+"/"+memberID
	ideas       map[string]models.Idea
}

// NewMemoryDatabase creates an empty in-memory store.
func NewMemoryDatabase() *MemoryDatabase {
	return &MemoryDatabase{
		users:       make(map[string]models.User),
		orgs:        make(map[string]models.Organization),
		memberships: make(map[string]models.Membership),
		ideas:       make(map[string]models.Idea),
	}
}

func membershipKey(orgID, memberID string) string {
	return orgID + "/" + memberID
}

// ==== Users ====

func (db *MemoryDatabase) CreateUser(user *models.User) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Email == user.Email {
			return fmt.Errorf("email already registered")
		}
	}

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	db.users[user.ID] = *user
	return nil
}

func (db *MemoryDatabase) GetUserByEmail(email string) (*models.User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	for _, u := range db.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

func (db *MemoryDatabase) GetUserByID(id string) (*models.User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	u, ok := db.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	user := u
	return &user, nil
}

// ==== Organizations ====

func (db *MemoryDatabase) CreateOrganization(org *models.Organization) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if org.ID == "" {
		org.ID = uuid.New().String()
	}
	org.CreatedAt = time.Now()
	db.orgs[org.ID] = *org
	return nil
}

func (db *MemoryDatabase) GetOrganization(orgID string) (*models.Organization, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	o, ok := db.orgs[orgID]
	if !ok {
		return nil, ErrNotFound
	}
	org := o
	return &org, nil
}

func (db *MemoryDatabase) UpdateOrganization(org *models.Organization) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	stored, ok := db.orgs[org.ID]
	if !ok {
		return ErrNotFound
	}
	stored.Name = org.Name
	stored.Description = org.Description
	db.orgs[org.ID] = stored
	return nil
}

func (db *MemoryDatabase) DeleteOrganization(orgID string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	delete(db.orgs, orgID)
	return nil
}

func (db *MemoryDatabase) ListUserOrganizations(userID string) ([]models.Organization, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	orgs := []models.Organization{}
	for _, m := range db.memberships {
		if m.MemberID != userID {
			continue
		}
		if o, ok := db.orgs[m.OrgID]; ok {
			orgs = append(orgs, o)
		}
	}
	sort.Slice(orgs, func(i, j int) bool { return orgs[i].CreatedAt.Before(orgs[j].CreatedAt) })
	return orgs, nil
}

// ==== Memberships ====

func (db *MemoryDatabase) AddMembership(m *models.Membership) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	key := membershipKey(m.OrgID, m.MemberID)
	if _, exists := db.memberships[key]; exists {
		return fmt.Errorf("membership already exists")
	}
	m.CreatedAt = time.Now()
	db.memberships[key] = *m
	return nil
}

func (db *MemoryDatabase) HasMembership(orgID, memberID string) (bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	_, ok := db.memberships[membershipKey(orgID, memberID)]
	return ok, nil
}

func (db *MemoryDatabase) ListMembers(orgID string) ([]models.Member, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	members := []models.Member{}
	for _, m := range db.memberships {
		if m.OrgID != orgID {
			continue
		}
		member := models.Member{
			OrgID:    m.OrgID,
			MemberID: m.MemberID,
			JoinedAt: m.CreatedAt,
		}
		if u, ok := db.users[m.MemberID]; ok {
			member.Email = u.Email
			member.Name = u.Name
		}
		members = append(members, member)
	}
	sort.Slice(members, func(i, j int) bool { return members[i].JoinedAt.Before(members[j].JoinedAt) })
	return members, nil
}

func (db *MemoryDatabase) DeleteMembershipsByOrg(orgID string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for key, m := range db.memberships {
		if m.OrgID == orgID {
			delete(db.memberships, key)
		}
	}
	return nil
}

func (db *MemoryDatabase) DeleteMemberships(orgID string, memberIDs []string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, id := range memberIDs {
		delete(db.memberships, membershipKey(orgID, id))
	}
	return nil
}

// ==== Ideas ====

func (db *MemoryDatabase) CreateIdeas(ideas []models.Idea) ([]models.Idea, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	inserted := make([]models.Idea, 0, len(ideas))
	for _, idea := range ideas {
		if idea.ID == "" {
			idea.ID = uuid.New().String()
		}
		idea.CreatedAt = time.Now()
		db.ideas[idea.ID] = idea
		inserted = append(inserted, idea)
	}
	return inserted, nil
}

func (db *MemoryDatabase) GetIdea(ideaID string) (*models.Idea, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	i, ok := db.ideas[ideaID]
	if !ok {
		return nil, ErrNotFound
	}
	idea := i
	return &idea, nil
}

func (db *MemoryDatabase) ListIdeasByOrg(orgID string) ([]models.Idea, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	ideas := []models.Idea{}
	for _, i := range db.ideas {
		if i.OrgID == orgID {
			ideas = append(ideas, i)
		}
	}
	sort.Slice(ideas, func(i, j int) bool { return ideas[i].CreatedAt.Before(ideas[j].CreatedAt) })
	return ideas, nil
}

func (db *MemoryDatabase) UpdateIdeaVotes(ideaID string, votes models.Votes) ([]models.Idea, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	idea, ok := db.ideas[ideaID]
	if !ok {
		return []models.Idea{}, nil
	}
	idea.Votes = votes
	db.ideas[ideaID] = idea
	return []models.Idea{idea}, nil
}

func (db *MemoryDatabase) DeleteIdea(ideaID string) ([]models.Idea, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	idea, ok := db.ideas[ideaID]
	if !ok {
		return []models.Idea{}, nil
	}
	delete(db.ideas, ideaID)
	return []models.Idea{idea}, nil
}

func (db *MemoryDatabase) DeleteIdeasByOrg(orgID string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for id, i := range db.ideas {
		if i.OrgID == orgID {
			delete(db.ideas, id)
		}
	}
	return nil
}

func (db *MemoryDatabase) DeleteIdeasByAuthors(orgID string, authorIDs []string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	authors := make(map[string]bool, len(authorIDs))
	for _, id := range authorIDs {
		authors[id] = true
	}
	for id, i := range db.ideas {
		if i.OrgID == orgID && authors[i.AuthorID] {
			delete(db.ideas, id)
		}
	}
	return nil
}

// ==== Lifecycle ====

func (db *MemoryDatabase) HealthCheck() error {
	return nil
}

func (db *MemoryDatabase) Close() error {
	return nil
}
