package estimate

type ProjectType string

const (
	TypeWebsiteRedesign ProjectType = "website-redesign"
	TypeNewWebsite      ProjectType = "new-website"
	TypeEcommerce       ProjectType = "ecommerce"
	TypeWebApp          ProjectType = "web-app"
	TypeMobileApp       ProjectType = "mobile-app"
	TypeBranding        ProjectType = "branding"
)

func (t ProjectType) Valid() bool {
	_, ok := baseBudget[t]
	return ok
}

type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
	UrgencyUrgent Urgency = "urgent"
)

func (u Urgency) Valid() bool {
	_, ok := budgetUrgency[u]
	return ok
}

type ContentReadiness string

const (
	ContentReady    ContentReadiness = "ready"
	ContentPartial  ContentReadiness = "partial"
	ContentNeedHelp ContentReadiness = "need-help"
	ContentNotSure  ContentReadiness = "not-sure"
)

func (c ContentReadiness) Valid() bool {
	_, ok := contentFactor[c]
	return ok
}

// Input is the subset of a project intake the engine looks at.
// Empty strings mean "not provided".
type Input struct {
	Type       ProjectType
	Features   []string
	Urgency    Urgency
	HasContent ContentReadiness
}

// Result carries the three derived figures persisted on a project at creation.
type Result struct {
	Budget     int     `json:"estimatedBudget"`
	Timeline   int     `json:"estimatedTimeline"`
	Complexity float64 `json:"complexityScore"`
}

// KnownFeature reports whether the feature carries a budget or timeline weight.
func KnownFeature(f string) bool {
	_, ok := featureBudget[f]
	return ok
}
