package crm

import "time"

type NoteType string

const (
	NoteTypeNote    NoteType = "note"
	NoteTypeCall    NoteType = "call"
	NoteTypeEmail   NoteType = "email"
	NoteTypeMeeting NoteType = "meeting"
)

// SystemAuthor is recorded on notes attached by status changes.
const SystemAuthor = "System"

// Note is one entry of a record's append-only note list.
type Note struct {
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	Timestamp time.Time `json:"timestamp"`
	Type      NoteType  `json:"type"`
}

// ValidNoteType reports whether t is allowed on records of kind k.
// Meetings are only tracked for project consultations.
func ValidNoteType(k Kind, t NoteType) bool {
	switch t {
	case NoteTypeNote, NoteTypeCall, NoteTypeEmail:
		return true
	case NoteTypeMeeting:
		return k == KindProject
	default:
		return false
	}
}

// AppendNote returns a new slice with n appended; the input is never mutated.
func AppendNote(notes []Note, n Note) []Note {
	out := make([]Note, 0, len(notes)+1)
	out = append(out, notes...)
	return append(out, n)
}

// Touch returns the next updatedAt value: now, but never earlier than prev.
func Touch(prev, now time.Time) time.Time {
	if now.Before(prev) {
		return prev
	}
	return now
}

// StampOnce returns existing when already set, otherwise a pointer to now.
func StampOnce(existing *time.Time, now time.Time) *time.Time {
	if existing != nil {
		return existing
	}
	t := now
	return &t
}
