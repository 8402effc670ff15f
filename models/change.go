package models

// ChangeKind tags a live change-feed event from the canonical store.
type ChangeKind string

const (
	ChangeInsert ChangeKind = "insert"
	ChangeUpdate ChangeKind = "update"
	ChangeDelete ChangeKind = "delete"
)

// ChangeEvent is one row-level notification. Consumers must tolerate kinds
// they do not recognise (the reconciliation engine falls back to a full
// refetch in that case).
type ChangeEvent struct {
	Kind ChangeKind  `json:"kind"`
	Row  Participant `json:"row"`
}
