package ir

// EventKind classifies a journal record.
type EventKind string

const (
	EventBuilt       EventKind = "built"
	EventGrant       EventKind = "grant"
	EventBooting     EventKind = "booting"
	EventBooted      EventKind = "booted"
	EventFailed      EventKind = "failed"
	EventDestroyed   EventKind = "destroyed"
	EventDeprecation EventKind = "deprecation"
)

// LifecycleEvent is one entry in an instance lifecycle journal.
//
// Seq comes from a logical clock and is the only ordering key.
type LifecycleEvent struct {
	Seq        int64     `json:"seq"`
	InstanceID string    `json:"instance_id"`
	ParentID   string    `json:"parent_id,omitempty"`
	Engine     string    `json:"engine"`
	Kind       EventKind `json:"kind"`
	Detail     string    `json:"detail,omitempty"`
}
