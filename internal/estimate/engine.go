package estimate

import "math"

// Compute derives all three estimates for an intake.
func Compute(in Input) Result {
	return Result{
		Budget:     Budget(in.Type, in.Features, in.Urgency),
		Timeline:   Timeline(in.Type, in.Features, in.HasContent, in.Urgency),
		Complexity: Complexity(in.Type, in.Features),
	}
}

// Budget returns the estimated budget in whole currency units.
// Unknown features contribute nothing; unknown or absent urgency is neutral.
func Budget(t ProjectType, features []string, u Urgency) int {
	total := lookup(baseBudget, t, defaultBaseBudget)
	for _, f := range features {
		total += featureBudget[f]
	}
	total *= lookup(budgetUrgency, u, 1.0)
	return nonNegative(math.Round(total))
}

// Timeline returns the estimated duration in weeks.
func Timeline(t ProjectType, features []string, content ContentReadiness, u Urgency) int {
	weeks := lookup(baseWeeks, t, defaultBaseWeeks)
	for _, f := range features {
		weeks += featureWeeks[f]
	}
	weeks *= lookup(contentFactor, content, defaultContentFactor)
	weeks *= lookup(timelineUrgency, u, 1.0)
	return nonNegative(math.Round(weeks))
}

// Complexity returns a score rounded to one decimal place.
// Every feature weighs the same regardless of which one it is.
func Complexity(t ProjectType, features []string) float64 {
	score := lookup(baseComplexity, t, defaultBaseComplexity)
	score += complexityPerFeature * float64(len(features))
	return math.Round(score*10) / 10
}

func lookup[K comparable](table map[K]float64, key K, fallback float64) float64 {
	if v, ok := table[key]; ok {
		return v
	}
	return fallback
}

func nonNegative(v float64) int {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return int(v)
}
