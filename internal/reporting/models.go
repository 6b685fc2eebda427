package reporting

import "leadcrm/internal/activity"

// ContactStats tallies the contact collection. Every known status, type and
// priority is present in the maps, with zero when nothing matches.
type ContactStats struct {
	Total      int            `json:"total"`
	ByStatus   map[string]int `json:"byStatus"`
	ByType     map[string]int `json:"byType"`
	ByPriority map[string]int `json:"byPriority"`
	Unassigned int            `json:"unassigned"`

	// AverageResolutionHours covers contacts with a resolvedAt stamp only.
	AverageResolutionHours float64 `json:"averageResolutionHours"`
}

// ProjectStats tallies the project collection. Averages only include
// projects where the field is present and are 0 when none are.
type ProjectStats struct {
	Total      int            `json:"total"`
	ByStatus   map[string]int `json:"byStatus"`
	ByType     map[string]int `json:"byType"`
	ByPriority map[string]int `json:"byPriority"`
	Unassigned int            `json:"unassigned"`

	AverageBudget     float64 `json:"averageBudget"`
	AverageTimeline   float64 `json:"averageTimeline"`
	AverageComplexity float64 `json:"averageComplexity"`

	// PipelineValue sums estimated budgets of projects that are still open.
	PipelineValue int `json:"pipelineValue"`
}

// Overview is the admin dashboard payload.
type Overview struct {
	Contacts       ContactStats        `json:"contacts"`
	Projects       ProjectStats        `json:"projects"`
	RecentActivity []activity.Activity `json:"recentActivity"`
}
