package activity

import "time"

// Activity is an immutable, append-only record of one mutation on a contact or project.
//
// Invariants:
// - Exactly one of ContactID / ProjectID is set.
// - Activities are never updated or deleted.
// - Retrieval order is Timestamp descending.
type Activity struct {
	ID        string `json:"id"`
	ContactID string `json:"contactId,omitempty"`
	ProjectID string `json:"projectId,omitempty"`

	Action  Action `json:"action"`
	Details string `json:"details,omitempty"`

	// Metadata carries previousValue/newValue/field/userId and similar keys.
	Metadata map[string]any `json:"metadata,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}

type Action string

const (
	ActionContactCreated    Action = "contact_created"
	ActionProjectCreated    Action = "project_created"
	ActionStatusChanged     Action = "status_changed"
	ActionContactAssigned   Action = "contact_assigned"
	ActionProjectAssigned   Action = "project_assigned"
	ActionNoteAdded         Action = "note_added"
	ActionContactDeleted    Action = "contact_deleted"
	ActionContactMarkedSpam Action = "contact_marked_spam"
	ActionProjectDeleted    Action = "project_deleted"
	ActionProjectCancelled  Action = "project_cancelled"
	ActionEstimatesUpdated  Action = "estimates_updated"
)

// RecordID returns whichever record id is set.
func (a Activity) RecordID() string {
	if a.ContactID != "" {
		return a.ContactID
	}
	return a.ProjectID
}
