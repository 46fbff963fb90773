package domain

import "fmt"

// Thresholds for the recommendation rules.
const (
	significantImprovementPct = 5.0
	errorRateCeiling          = 5.0
	satisfactionFloor         = 7.0
)

// GenerateInsights derives human-readable insights and action
// recommendations from aggregated results. Recommendations are not mutually
// exclusive; every applicable rule emits.
func GenerateInsights(t *Test, results []VariantResults, winnerID string) (insights, recommendations []string) {
	leader, runnerUp := leaderAndRunnerUp(results)

	if leader == nil {
		insights = append(insights, "No participants have been assigned yet; results are empty.")
		recommendations = append(recommendations, "Extend the test or increase traffic to gather a larger sample.")
		return insights, recommendations
	}

	insights = append(insights, fmt.Sprintf("Variant %q currently leads with a %s value of %.2f.",
		leader.VariantName, t.PrimaryMetric, leader.PrimaryMetricValue))

	underPowered := leader.ParticipantCount < t.MinimumSampleSize
	if underPowered {
		insights = append(insights, fmt.Sprintf("The leading variant has %d participants, below the minimum sample size of %d; results are under-powered.",
			leader.ParticipantCount, t.MinimumSampleSize))
	}

	if runnerUp != nil && runnerUp.PrimaryMetricValue > 0 {
		improvement := (leader.PrimaryMetricValue - runnerUp.PrimaryMetricValue) / runnerUp.PrimaryMetricValue * 100
		if improvement > significantImprovementPct {
			insights = append(insights, fmt.Sprintf("%q shows a significant improvement of %.1f%% over %q.",
				leader.VariantName, improvement, runnerUp.VariantName))
		} else {
			insights = append(insights, fmt.Sprintf("No significant difference between %q and %q (%.1f%%).",
				leader.VariantName, runnerUp.VariantName, improvement))
		}
	}

	winner := findVariantResults(results, winnerID)
	switch {
	case winner == nil:
		recommendations = append(recommendations, "Extend the test or increase traffic to gather a larger sample.")
	case winner.ParticipantCount < t.MinimumSampleSize:
		recommendations = append(recommendations, "Extend the test duration before making a rollout decision.")
	default:
		recommendations = append(recommendations, fmt.Sprintf("Roll out %q to all users.", winner.VariantName))
	}
	if winner != nil && winner.ErrorRate > errorRateCeiling {
		recommendations = append(recommendations, fmt.Sprintf("Address the elevated error rate (%.1f) before rollout.", winner.ErrorRate))
	}
	if winner != nil && winner.SatisfactionScore > 0 && winner.SatisfactionScore < satisfactionFloor {
		recommendations = append(recommendations, fmt.Sprintf("Improve the user experience (satisfaction %.1f) before rollout.", winner.SatisfactionScore))
	}

	return insights, recommendations
}

// leaderAndRunnerUp returns the two populated variants with the highest
// primary metric values, in definition order on ties.
func leaderAndRunnerUp(results []VariantResults) (leader, runnerUp *VariantResults) {
	for i := range results {
		r := &results[i]
		if r.ParticipantCount == 0 {
			continue
		}
		switch {
		case leader == nil:
			leader = r
		case r.PrimaryMetricValue > leader.PrimaryMetricValue:
			runnerUp = leader
			leader = r
		case runnerUp == nil || r.PrimaryMetricValue > runnerUp.PrimaryMetricValue:
			runnerUp = r
		}
	}
	return leader, runnerUp
}

func findVariantResults(results []VariantResults, variantID string) *VariantResults {
	if variantID == "" {
		return nil
	}
	for i := range results {
		if results[i].VariantID == variantID {
			return &results[i]
		}
	}
	return nil
}
