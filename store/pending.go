package store

import (
	"time"

	"meet-registration-portal/models"
)

// PendingAction names a queued write intent.
type PendingAction string

const (
	// ActionAppendBatch replays a failed batched insert.
	ActionAppendBatch PendingAction = "appendMultiple"
	// ActionRequestDelete replays a failed status update to Requested.
	ActionRequestDelete PendingAction = "requestDelete"
)

// PendingWrite is one entry in a team's durable retry queue.
type PendingWrite struct {
	Action     PendingAction        `json:"action"`
	Rows       []models.Participant `json:"rows,omitempty"`
	Delete     *DeleteIntent        `json:"delete,omitempty"`
	EnqueuedAt time.Time            `json:"enqueuedAt"`
}

// DeleteIntent identifies the row whose status should become Requested:
// by server id when known, else by teamId + timestamp.
type DeleteIntent struct {
	ID        string    `json:"id,omitempty"`
	TeamID    string    `json:"teamId"`
	Timestamp time.Time `json:"timestamp"`
	Name      string    `json:"name,omitempty"`
	Reason    string    `json:"reason,omitempty"`
}

// LoadQueue returns the team's pending writes, oldest first.
func (s *Store) LoadQueue(teamID string) []PendingWrite {
	s.mu.Lock()
	defer s.mu.Unlock()
	var q []PendingWrite
	loadList(s.path("pending", teamID), &q)
	return q
}

// Enqueue appends one write intent to the tail of the team's queue.
func (s *Store) Enqueue(teamID string, w PendingWrite) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var q []PendingWrite
	loadList(s.path("pending", teamID), &q)
	q = append(q, w)
	saveList(s.path("pending", teamID), q)
}

// DequeueHead removes the front entry after its remote write succeeded
// (or was classified as permanently rejected).
func (s *Store) DequeueHead(teamID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var q []PendingWrite
	loadList(s.path("pending", teamID), &q)
	if len(q) == 0 {
		return
	}
	saveList(s.path("pending", teamID), q[1:])
}

// QueueLen reports how many writes are waiting for the team.
func (s *Store) QueueLen(teamID string) int {
	return len(s.LoadQueue(teamID))
}
