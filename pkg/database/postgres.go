package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"zoid-backend/pkg/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// PostgresDatabase is the sqlx-backed Postgres store.
type PostgresDatabase struct {
	db *sqlx.DB
}

// NewPostgresDatabase connects to Postgres and configures the pool for
// short-lived serverless processes.
func NewPostgresDatabase(dsn string) (DatabaseInterface, error) {
	dsn = strings.TrimSpace(dsn)

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &PostgresDatabase{db: db}, nil
}

// ==== Users ====

func (p *PostgresDatabase) CreateUser(user *models.User) error {
	query := `
		INSERT INTO users (email, password_hash, name, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	err := p.db.QueryRowx(query, user.Email, user.Password, user.Name).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (p *PostgresDatabase) GetUserByEmail(email string) (*models.User, error) {
	var u models.User
	query := `
		SELECT id, email, COALESCE(password_hash,'') AS password_hash,
		       COALESCE(name,'') AS name, created_at, updated_at
		FROM users WHERE email = $1
	`
	if err := p.db.Get(&u, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &u, nil
}

func (p *PostgresDatabase) GetUserByID(id string) (*models.User, error) {
	var u models.User
	query := `
		SELECT id, email, COALESCE(password_hash,'') AS password_hash,
		       COALESCE(name,'') AS name, created_at, updated_at
		FROM users WHERE id = $1
	`
	if err := p.db.Get(&u, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// ==== Organizations ====

func (p *PostgresDatabase) CreateOrganization(org *models.Organization) error {
	query := `
		INSERT INTO orgs (name, description, owner_id, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at
	`
	err := p.db.QueryRowx(query, org.Name, org.Description, org.OwnerID).
		Scan(&org.ID, &org.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create organization: %w", err)
	}
	return nil
}

func (p *PostgresDatabase) GetOrganization(orgID string) (*models.Organization, error) {
	var org models.Organization
	query := `SELECT id, name, description, owner_id, created_at FROM orgs WHERE id = $1`
	if err := p.db.Get(&org, query, orgID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return &org, nil
}

func (p *PostgresDatabase) UpdateOrganization(org *models.Organization) error {
	query := `UPDATE orgs SET name = $1, description = $2 WHERE id = $3`
	res, err := p.db.Exec(query, org.Name, org.Description, org.ID)
	if err != nil {
		return fmt.Errorf("failed to update organization: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PostgresDatabase) DeleteOrganization(orgID string) error {
	if _, err := p.db.Exec(`DELETE FROM orgs WHERE id = $1`, orgID); err != nil {
		return fmt.Errorf("failed to delete organization: %w", err)
	}
	return nil
}

func (p *PostgresDatabase) ListUserOrganizations(userID string) ([]models.Organization, error) {
	orgs := []models.Organization{}
	query := `
		SELECT o.id, o.name, o.description, o.owner_id, o.created_at
		FROM orgs o
		JOIN memberships m ON m.org_id = o.id
		WHERE m.member_id = $1
		ORDER BY o.created_at
	`
	if err := p.db.Select(&orgs, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	return orgs, nil
}

// ==== Memberships ====

func (p *PostgresDatabase) AddMembership(m *models.Membership) error {
	query := `
		INSERT INTO memberships (org_id, member_id, created_at)
		VALUES ($1, $2, NOW())
		RETURNING created_at
	`
	if err := p.db.QueryRowx(query, m.OrgID, m.MemberID).Scan(&m.CreatedAt); err != nil {
		return fmt.Errorf("failed to add membership: %w", err)
	}
	return nil
}

func (p *PostgresDatabase) HasMembership(orgID, memberID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM memberships WHERE org_id = $1 AND member_id = $2)`
	if err := p.db.Get(&exists, query, orgID, memberID); err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return exists, nil
}

func (p *PostgresDatabase) ListMembers(orgID string) ([]models.Member, error) {
	members := []models.Member{}
	query := `
		SELECT m.org_id, m.member_id, u.email, COALESCE(u.name,'') AS name,
		       m.created_at AS joined_at
		FROM memberships m
		JOIN users u ON u.id = m.member_id
		WHERE m.org_id = $1
		ORDER BY m.created_at
	`
	if err := p.db.Select(&members, query, orgID); err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

func (p *PostgresDatabase) DeleteMembershipsByOrg(orgID string) error {
	if _, err := p.db.Exec(`DELETE FROM memberships WHERE org_id = $1`, orgID); err != nil {
		return fmt.Errorf("failed to delete memberships: %w", err)
	}
	return nil
}

func (p *PostgresDatabase) DeleteMemberships(orgID string, memberIDs []string) error {
	if len(memberIDs) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM memberships WHERE org_id = ? AND member_id IN (?)`, orgID, memberIDs)
	if err != nil {
		return fmt.Errorf("failed to build membership delete: %w", err)
	}
	if _, err := p.db.Exec(p.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to delete memberships: %w", err)
	}
	return nil
}

// ==== Ideas ====

func (p *PostgresDatabase) CreateIdeas(ideas []models.Idea) ([]models.Idea, error) {
	inserted := []models.Idea{}
	query := `
		INSERT INTO ideas (org_id, name, author_id, votes, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, org_id, name, author_id, votes, created_at
	`
	for _, idea := range ideas {
		var row models.Idea
		err := p.db.QueryRowx(query, idea.OrgID, idea.Name, idea.AuthorID, idea.Votes).
			StructScan(&row)
		if err != nil {
			return nil, fmt.Errorf("failed to insert idea: %w", err)
		}
		inserted = append(inserted, row)
	}
	return inserted, nil
}

func (p *PostgresDatabase) GetIdea(ideaID string) (*models.Idea, error) {
	var idea models.Idea
	query := `SELECT id, org_id, name, author_id, votes, created_at FROM ideas WHERE id = $1`
	if err := p.db.Get(&idea, query, ideaID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get idea: %w", err)
	}
	return &idea, nil
}

func (p *PostgresDatabase) ListIdeasByOrg(orgID string) ([]models.Idea, error) {
	ideas := []models.Idea{}
	query := `
		SELECT id, org_id, name, author_id, votes, created_at
		FROM ideas WHERE org_id = $1 ORDER BY created_at
	`
	if err := p.db.Select(&ideas, query, orgID); err != nil {
		return nil, fmt.Errorf("failed to list ideas: %w", err)
	}
	return ideas, nil
}

func (p *PostgresDatabase) UpdateIdeaVotes(ideaID string, votes models.Votes) ([]models.Idea, error) {
	updated := []models.Idea{}
	query := `
		UPDATE ideas SET votes = $1 WHERE id = $2
		RETURNING id, org_id, name, author_id, votes, created_at
	`
	if err := p.db.Select(&updated, query, votes, ideaID); err != nil {
		return nil, fmt.Errorf("failed to update idea votes: %w", err)
	}
	return updated, nil
}

func (p *PostgresDatabase) DeleteIdea(ideaID string) ([]models.Idea, error) {
	deleted := []models.Idea{}
	query := `
		DELETE FROM ideas WHERE id = $1
		RETURNING id, org_id, name, author_id, votes, created_at
	`
	if err := p.db.Select(&deleted, query, ideaID); err != nil {
		return nil, fmt.Errorf("failed to delete idea: %w", err)
	}
	return deleted, nil
}

func (p *PostgresDatabase) DeleteIdeasByOrg(orgID string) error {
	if _, err := p.db.Exec(`DELETE FROM ideas WHERE org_id = $1`, orgID); err != nil {
		return fmt.Errorf("failed to delete ideas: %w", err)
	}
	return nil
}

func (p *PostgresDatabase) DeleteIdeasByAuthors(orgID string, authorIDs []string) error {
	if len(authorIDs) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM ideas WHERE org_id = ? AND author_id IN (?)`, orgID, authorIDs)
	if err != nil {
		return fmt.Errorf("failed to build idea delete: %w", err)
	}
	if _, err := p.db.Exec(p.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to delete ideas: %w", err)
	}
	return nil
}

// ==== Lifecycle ====

func (p *PostgresDatabase) HealthCheck() error {
	return p.db.Ping()
}

func (p *PostgresDatabase) Close() error {
	return p.db.Close()
}
