package models

import "time"

// Delete-request resolution states.
const (
	DeleteReqPending  = "pending"
	DeleteReqApproved = "approved"
	DeleteReqRejected = "rejected"
)

// DeleteRequest is a team manager's petition to remove a participant.
// Created locally the moment the manager asks (even when the remote update
// fails) and resolved later by an administrator.
type DeleteRequest struct {
	ReqID  string `json:"reqId"`
	RowID  string `json:"rowId,omitempty"` // empty when the row never got a server id
	TeamID string `json:"teamId"`
	Name   string `json:"name"`
	// Timestamp of the row itself, the fallback matching key.
	Timestamp   time.Time `json:"timestamp"`
	Reason      string    `json:"reason"`
	RequestedAt time.Time `json:"requestedAt"`
	Status      string    `json:"status"`
}
