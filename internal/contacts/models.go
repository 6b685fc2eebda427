package contacts

import (
	"time"

	"leadcrm/internal/crm"
)

type Status string

const (
	StatusNew        Status = "new"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusClosed     Status = "closed"
	StatusSpam       Status = "spam"
)

// Any status may follow any other; only entering resolved has a side effect.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusResolved, StatusClosed, StatusSpam:
		return true
	default:
		return false
	}
}

type ContactType string

const (
	TypeGeneral     ContactType = "general"
	TypeBusiness    ContactType = "business"
	TypeSupport     ContactType = "support"
	TypePartnership ContactType = "partnership"
	TypeCareers     ContactType = "careers"
)

func (t ContactType) Valid() bool {
	switch t {
	case TypeGeneral, TypeBusiness, TypeSupport, TypePartnership, TypeCareers:
		return true
	default:
		return false
	}
}

const DefaultSource = "website"

// Contact is a contact-form submission and its follow-up state.
type Contact struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Email   string      `json:"email"`
	Phone   string      `json:"phone,omitempty"`
	Company string      `json:"company,omitempty"`
	Subject string      `json:"subject,omitempty"`
	Message string      `json:"message"`
	Type    ContactType `json:"contactType"`

	Priority crm.Priority `json:"priority"`
	Status   Status       `json:"status"`

	Source    string `json:"source"`
	UserAgent string `json:"userAgent,omitempty"`
	IPAddress string `json:"ipAddress,omitempty"`
	Referrer  string `json:"referrer,omitempty"`

	GDPRConsent      *bool `json:"gdprConsent,omitempty"`
	MarketingConsent *bool `json:"marketingConsent,omitempty"`

	AssignedTo string     `json:"assignedTo,omitempty"`
	Notes      []crm.Note `json:"notes"`

	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
	ResolvedAt      *time.Time `json:"resolvedAt,omitempty"`
	LastContactedAt *time.Time `json:"lastContactedAt,omitempty"`
}

// Patch lists the fields a lifecycle mutation may change. Nil means untouched.
type Patch struct {
	Status          *Status
	AssignedTo      *string
	Notes           *[]crm.Note
	ResolvedAt      *time.Time
	LastContactedAt *time.Time
	UpdatedAt       time.Time
}

// Index names a single-field lookup. Results are always newest first.
type Index string

const (
	IndexStatus     Index = "by_status"
	IndexType       Index = "by_type"
	IndexPriority   Index = "by_priority"
	IndexAssignedTo Index = "by_assigned_to"
	IndexCreated    Index = "by_created"
)

// Filter narrows a listing. The first non-empty of Status, Type, Priority and
// AssignedTo picks the index; the rest are applied to the scanned rows.
// Limit is applied last.
type Filter struct {
	Status     Status
	Type       ContactType
	Priority   crm.Priority
	AssignedTo string
	Limit      int
}
