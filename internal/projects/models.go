package projects

import (
	"time"

	"leadcrm/internal/crm"
	"leadcrm/internal/estimate"
)

type Status string

const (
	StatusNew        Status = "new"
	StatusReviewing  Status = "reviewing"
	StatusQuoted     Status = "quoted"
	StatusAccepted   Status = "accepted"
	StatusDeclined   Status = "declined"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusReviewing, StatusQuoted, StatusAccepted,
		StatusDeclined, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

const DefaultSource = "website"

// ContactInfo is how the prospect wants to be reached.
type ContactInfo struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Project is a project-consultation intake with its computed estimates.
// Estimates are filled at creation and only change through UpdateEstimates.
type Project struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`

	Type       estimate.ProjectType      `json:"type,omitempty"`
	Urgency    estimate.Urgency          `json:"urgency,omitempty"`
	Priority   crm.Priority              `json:"priority"`
	HasContent estimate.ContentReadiness `json:"hasContent,omitempty"`

	Industry          string   `json:"industry,omitempty"`
	TargetAudience    string   `json:"targetAudience,omitempty"`
	ExistingWebsite   string   `json:"existingWebsite,omitempty"`
	Goals             []string `json:"goals"`
	Features          []string `json:"features"`
	Timeline          string   `json:"timeline,omitempty"`
	Budget            string   `json:"budget,omitempty"`
	DesignPreferences string   `json:"designPreferences,omitempty"`

	Contact          ContactInfo `json:"contact"`
	Company          string      `json:"company,omitempty"`
	PreferredContact string      `json:"preferredContact,omitempty"`
	AdditionalInfo   string      `json:"additionalInfo,omitempty"`

	Status Status `json:"status"`

	EstimatedBudget   *int     `json:"estimatedBudget,omitempty"`
	EstimatedTimeline *int     `json:"estimatedTimeline,omitempty"`
	ComplexityScore   *float64 `json:"complexityScore,omitempty"`

	Source    string `json:"source"`
	UserAgent string `json:"userAgent,omitempty"`
	IPAddress string `json:"ipAddress,omitempty"`
	Referrer  string `json:"referrer,omitempty"`

	AssignedTo string     `json:"assignedTo,omitempty"`
	Notes      []crm.Note `json:"notes"`

	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	ReviewedAt  *time.Time `json:"reviewedAt,omitempty"`
	QuotedAt    *time.Time `json:"quotedAt,omitempty"`
	AcceptedAt  *time.Time `json:"acceptedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// Patch lists the fields a lifecycle mutation may change. Nil means untouched.
type Patch struct {
	Status     *Status
	AssignedTo *string
	Notes      *[]crm.Note

	ReviewedAt  *time.Time
	QuotedAt    *time.Time
	AcceptedAt  *time.Time
	CompletedAt *time.Time

	EstimatedBudget   *int
	EstimatedTimeline *int
	ComplexityScore   *float64

	UpdatedAt time.Time
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

// Filter narrows a listing; see contacts.Filter for the index rules.
type Filter struct {
	Status     Status
	Type       estimate.ProjectType
	Priority   crm.Priority
	AssignedTo string
	Limit      int
}
