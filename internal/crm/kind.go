package crm

// Kind identifies which lifecycle a record belongs to.
// Contacts and project consultations share notes, assignment and the activity log,
// but each kind keeps its own status set and its own soft-delete status.
type Kind string

const (
	KindContact Kind = "contact"
	KindProject Kind = "projectConsultation"
)

// Path is the URL segment used by the HTTP surface.
func (k Kind) Path() string {
	switch k {
	case KindContact:
		return "contacts"
	case KindProject:
		return "projects"
	default:
		return ""
	}
}

// KindFromPath resolves a URL segment back to a Kind.
func KindFromPath(p string) (Kind, bool) {
	switch p {
	case "contacts":
		return KindContact, true
	case "projects":
		return KindProject, true
	default:
		return "", false
	}
}

// SoftDeleteStatus is the terminal status a non-permanent delete moves a record into.
func (k Kind) SoftDeleteStatus() string {
	switch k {
	case KindContact:
		return "spam"
	case KindProject:
		return "cancelled"
	default:
		return ""
	}
}

// Priority is shared by both kinds. Projects mirror their urgency into it.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	default:
		return false
	}
}
