package models

import "time"

// Organization is a workspace grouping members and ideas, with exactly one owner
type Organization struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description" db:"description"`
	OwnerID     string    `json:"owner_id" db:"owner_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Membership relates a user to an organization. At most one row exists
// per (org_id, member_id) pair.
type Membership struct {
	OrgID     string    `json:"org_id" db:"org_id"`
	MemberID  string    `json:"member_id" db:"member_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Member is a membership joined with the member's public user fields,
// as returned by the member listing endpoint.
type Member struct {
	OrgID    string    `json:"org_id" db:"org_id"`
	MemberID string    `json:"member_id" db:"member_id"`
	Email    string    `json:"email" db:"email"`
	Name     string    `json:"name,omitempty" db:"name"`
	JoinedAt time.Time `json:"joined_at" db:"joined_at"`
}
