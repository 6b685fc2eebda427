package estimate

// Lookup tables are fixed business rules. They are not runtime configuration.

const (
	defaultBaseBudget     = 10000
	defaultBaseWeeks      = 8
	defaultBaseComplexity = 3

	// absent or unrecognised content readiness is treated like "partial"
	defaultContentFactor = 1.2

	complexityPerFeature = 0.5
)

var baseBudget = map[ProjectType]float64{
	TypeWebsiteRedesign: 8000,
	TypeNewWebsite:      12000,
	TypeEcommerce:       20000,
	TypeWebApp:          35000,
	TypeMobileApp:       45000,
	TypeBranding:        6000,
}

var baseWeeks = map[ProjectType]float64{
	TypeWebsiteRedesign: 6,
	TypeNewWebsite:      8,
	TypeEcommerce:       12,
	TypeWebApp:          16,
	TypeMobileApp:       20,
	TypeBranding:        4,
}

var baseComplexity = map[ProjectType]float64{
	TypeWebsiteRedesign: 2,
	TypeNewWebsite:      3,
	TypeEcommerce:       5,
	TypeWebApp:          7,
	TypeMobileApp:       8,
	TypeBranding:        2,
}

var featureBudget = map[string]float64{
	"contact-forms":      500,
	"blog":               2000,
	"payment-processing": 5000,
	"user-accounts":      4000,
	"booking-system":     4000,
	"multilingual":       3000,
	"cms":                3000,
	"seo-optimization":   1500,
	"analytics":          2000,
	"api-integration":    4000,
	"admin-dashboard":    6000,
	"mobile-app":         20000,
	"live-chat":          1500,
	"newsletter":         1000,
	"social-media":       1000,
}

var featureWeeks = map[string]float64{
	"contact-forms":      0.5,
	"blog":               1,
	"payment-processing": 2,
	"user-accounts":      2,
	"booking-system":     2,
	"multilingual":       2,
	"cms":                1.5,
	"seo-optimization":   1,
	"analytics":          1,
	"api-integration":    2,
	"admin-dashboard":    3,
	"mobile-app":         8,
	"live-chat":          0.5,
	"newsletter":         0.5,
	"social-media":       0.5,
}

var budgetUrgency = map[Urgency]float64{
	UrgencyLow:    0.9,
	UrgencyMedium: 1.0,
	UrgencyHigh:   1.2,
	UrgencyUrgent: 1.5,
}

// Faster delivery compresses the schedule.
var timelineUrgency = map[Urgency]float64{
	UrgencyLow:    1.1,
	UrgencyMedium: 1.0,
	UrgencyHigh:   0.8,
	UrgencyUrgent: 0.6,
}

var contentFactor = map[ContentReadiness]float64{
	ContentReady:    1.0,
	ContentPartial:  1.2,
	ContentNeedHelp: 1.5,
	ContentNotSure:  1.3,
}
