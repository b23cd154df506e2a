package database

import (
	"errors"
	"fmt"
	"os"

	"zoid-backend/pkg/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// DatabaseInterface is the persistence contract the handlers depend on.
// All implementations provide per-call atomicity only; multi-step
// operations in the handlers are sequences of these calls.
type DatabaseInterface interface {
	// Users
	CreateUser(user *models.User) error
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)

	// Organizations
	CreateOrganization(org *models.Organization) error
	GetOrganization(orgID string) (*models.Organization, error)
	UpdateOrganization(org *models.Organization) error
	DeleteOrganization(orgID string) error
	ListUserOrganizations(userID string) ([]models.Organization, error)

	// Memberships
	AddMembership(m *models.Membership) error
	HasMembership(orgID, memberID string) (bool, error)
	ListMembers(orgID string) ([]models.Member, error)
	DeleteMembershipsByOrg(orgID string) error
	DeleteMemberships(orgID string, memberIDs []string) error

	// Ideas
	CreateIdeas(ideas []models.Idea) ([]models.Idea, error)
	GetIdea(ideaID string) (*models.Idea, error)
	ListIdeasByOrg(orgID string) ([]models.Idea, error)
	UpdateIdeaVotes(ideaID string, votes models.Votes) ([]models.Idea, error)
	DeleteIdea(ideaID string) ([]models.Idea, error)
	DeleteIdeasByOrg(orgID string) error
	DeleteIdeasByAuthors(orgID string, authorIDs []string) error

	// Health check
	HealthCheck() error

	// Close the underlying connection
	Close() error
}

// DatabaseConfig selects and configures the backing store.
type DatabaseConfig struct {
	PostgresDSN string
	SupabaseURL string
	SupabaseKey string
	UseMemoryDB bool
	Debug       bool
}

// NewDatabase picks a store implementation for the given configuration.
// On serverless platforms Supabase REST is preferred over direct
// Postgres connections.
func NewDatabase(config DatabaseConfig) (DatabaseInterface, error) {
	if config.UseMemoryDB {
		return NewMemoryDatabase(), nil
	}

	if isServerlessEnvironment() {
		if config.SupabaseURL != "" && config.SupabaseKey != "" {
			return NewSupabaseDatabase(config.SupabaseURL, config.SupabaseKey), nil
		}
		if config.PostgresDSN != "" {
			return NewPostgresDatabase(config.PostgresDSN)
		}
		return nil, fmt.Errorf("no database configured for serverless environment: set SUPABASE_URL+SUPABASE_SERVICE_KEY or POSTGRES_DSN")
	}

	if config.PostgresDSN != "" {
		return NewPostgresDatabase(config.PostgresDSN)
	}
	if config.SupabaseURL != "" && config.SupabaseKey != "" {
		return NewSupabaseDatabase(config.SupabaseURL, config.SupabaseKey), nil
	}

	return nil, fmt.Errorf("no database configured: set POSTGRES_DSN or SUPABASE_URL+SUPABASE_SERVICE_KEY")
}

// isServerlessEnvironment detects Vercel/Lambda runtimes.
func isServerlessEnvironment() bool {
	return os.Getenv("VERCEL_ENV") != "" ||
		os.Getenv("VERCEL_URL") != "" ||
		os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""
}
