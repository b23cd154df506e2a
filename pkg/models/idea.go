package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Votes holds the up/down voter identity sets of an idea. A user appears
// in at most one of the two sets at any time; the transition helpers below
// maintain that, the server does not re-check submitted sets.
type Votes struct {
	Up   []string `json:"up"`
	Down []string `json:"down"`
}

// NewVotes returns an empty vote set that marshals as {"up":[],"down":[]}
// rather than null arrays.
func NewVotes() Votes {
	return Votes{Up: []string{}, Down: []string{}}
}

// Score is the displayed tally: len(up) - len(down).
func (v Votes) Score() int {
	return len(v.Up) - len(v.Down)
}

// Upvoted reports whether userID is in the up set.
func (v Votes) Upvoted(userID string) bool {
	return contains(v.Up, userID)
}

// Downvoted reports whether userID is in the down set.
func (v Votes) Downvoted(userID string) bool {
	return contains(v.Down, userID)
}

// Upvote returns the vote set with userID added to up and removed from
// down. Adding an already-present voter is a no-op.
func (v Votes) Upvote(userID string) Votes {
	return Votes{
		Up:   add(v.Up, userID),
		Down: remove(v.Down, userID),
	}
}

// Downvote returns the vote set with userID added to down and removed
// from up.
func (v Votes) Downvote(userID string) Votes {
	return Votes{
		Up:   remove(v.Up, userID),
		Down: add(v.Down, userID),
	}
}

// Clear returns the vote set with userID removed from both sets.
func (v Votes) Clear(userID string) Votes {
	return Votes{
		Up:   remove(v.Up, userID),
		Down: remove(v.Down, userID),
	}
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func add(ids []string, id string) []string {
	if contains(ids, id) {
		return append([]string{}, ids...)
	}
	out := make([]string, 0, len(ids)+1)
	out = append(out, ids...)
	return append(out, id)
}

func remove(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// Value implements driver.Valuer so votes can be stored as JSONB.
func (v Votes) Value() (driver.Value, error) {
	if v.Up == nil {
		v.Up = []string{}
	}
	if v.Down == nil {
		v.Down = []string{}
	}
	return json.Marshal(v)
}

// Scan implements sql.Scanner for the JSONB votes column.
func (v *Votes) Scan(src interface{}) error {
	switch data := src.(type) {
	case []byte:
		return json.Unmarshal(data, v)
	case string:
		return json.Unmarshal([]byte(data), v)
	case nil:
		*v = NewVotes()
		return nil
	default:
		return fmt.Errorf("unsupported votes column type %T", src)
	}
}

// Idea is a proposed brand name plus its vote tally, scoped to an organization
type Idea struct {
	ID        string    `json:"id" db:"id"`
	OrgID     string    `json:"org_id" db:"org_id"`
	Name      string    `json:"name" db:"name"`
	AuthorID  string    `json:"author_id" db:"author_id"`
	Votes     Votes     `json:"votes" db:"votes"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
