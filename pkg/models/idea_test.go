package models

import (
	"encoding/json"
	"testing"
)

func TestVotesUpvoteMovesUserBetweenSets(t *testing.T) {
	v := NewVotes()

	v = v.Upvote("u1")
	if !v.Upvoted("u1") || v.Downvoted("u1") {
		t.Fatalf("after upvote: up=%v down=%v", v.Up, v.Down)
	}
	if v.Score() != 1 {
		t.Errorf("score = %d, want 1", v.Score())
	}

	// Switching sides removes the user from the other set
	v = v.Downvote("u1")
	if v.Upvoted("u1") || !v.Downvoted("u1") {
		t.Fatalf("after downvote: up=%v down=%v", v.Up, v.Down)
	}
	if v.Score() != -1 {
		t.Errorf("score = %d, want -1", v.Score())
	}

	v = v.Clear("u1")
	if v.Upvoted("u1") || v.Downvoted("u1") {
		t.Fatalf("after clear: up=%v down=%v", v.Up, v.Down)
	}
	if v.Score() != 0 {
		t.Errorf("score = %d, want 0", v.Score())
	}
}

func TestVotesUpvoteIsIdempotent(t *testing.T) {
	v := NewVotes().Upvote("u1").Upvote("u1")
	if len(v.Up) != 1 {
		t.Errorf("up = %v, want single entry", v.Up)
	}

	v = v.Downvote("u1").Downvote("u1")
	if len(v.Down) != 1 || len(v.Up) != 0 {
		t.Errorf("after repeated downvote: up=%v down=%v", v.Up, v.Down)
	}
}

func TestVotesScoreSequence(t *testing.T) {
	// Two voters converging on the same idea from opposite sides.
	v := NewVotes()
	v = v.Upvote("alice")
	v = v.Downvote("bob")
	if v.Score() != 0 {
		t.Errorf("score = %d, want 0", v.Score())
	}

	v = v.Upvote("bob")
	if v.Score() != 2 {
		t.Errorf("score after bob switches = %d, want 2", v.Score())
	}
	if v.Downvoted("bob") {
		t.Errorf("bob still in down set: %v", v.Down)
	}

	v = v.Clear("alice")
	if v.Score() != 1 {
		t.Errorf("score after alice clears = %d, want 1", v.Score())
	}
}

func TestVotesTransitionsDoNotMutateReceiver(t *testing.T) {
	orig := NewVotes().Upvote("u1")
	_ = orig.Downvote("u1")
	if !orig.Upvoted("u1") {
		t.Error("receiver mutated by Downvote")
	}
}

func TestVotesMarshalsEmptyArrays(t *testing.T) {
	data, err := json.Marshal(NewVotes())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"up":[],"down":[]}` {
		t.Errorf("marshal = %s", data)
	}
}

func TestVotesValueScanRoundTrip(t *testing.T) {
	v := NewVotes().Upvote("u1").Downvote("u2")

	raw, err := v.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}

	var got Votes
	if err := got.Scan(raw); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if !got.Upvoted("u1") || !got.Downvoted("u2") {
		t.Errorf("round trip lost votes: up=%v down=%v", got.Up, got.Down)
	}
}

func TestVotesScanNilColumn(t *testing.T) {
	var v Votes
	if err := v.Scan(nil); err != nil {
		t.Fatalf("scan nil: %v", err)
	}
	if v.Up == nil || v.Down == nil {
		t.Errorf("nil column should scan to empty sets: %+v", v)
	}
}
