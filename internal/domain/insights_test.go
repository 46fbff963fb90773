package domain

import (
	"strings"
	"testing"
)

func insightTest(minSample int) *Test {
	t := twoVariantTest()
	t.MinimumSampleSize = minSample
	return t
}

func containsSubstring(list []string, substr string) bool {
	for _, s := range list {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}

func TestGenerateInsights_NoData(t *testing.T) {
	insights, recs := GenerateInsights(insightTest(10), ComputeVariantResults(insightTest(10), nil), "")

	if !containsSubstring(insights, "No participants") {
		t.Errorf("insights = %v, want a no-data insight", insights)
	}
	if !containsSubstring(recs, "Extend the test") {
		t.Errorf("recommendations = %v, want extend-test", recs)
	}
}

func TestGenerateInsights_LeaderAlwaysStated(t *testing.T) {
	results := []VariantResults{
		{VariantID: "control", VariantName: "control", ParticipantCount: 20, PrimaryMetricValue: 0.4},
		{VariantID: "treatment", VariantName: "treatment", ParticipantCount: 20, PrimaryMetricValue: 0.6},
	}

	insights, _ := GenerateInsights(insightTest(10), results, "treatment")
	if !containsSubstring(insights, `"treatment" currently leads`) {
		t.Errorf("insights = %v, want leader statement", insights)
	}
}

func TestGenerateInsights_UnderPowered(t *testing.T) {
	results := []VariantResults{
		{VariantID: "control", VariantName: "control", ParticipantCount: 3, PrimaryMetricValue: 0.4},
		{VariantID: "treatment", VariantName: "treatment", ParticipantCount: 4, PrimaryMetricValue: 0.6},
	}

	insights, recs := GenerateInsights(insightTest(100), results, "treatment")
	if !containsSubstring(insights, "under-powered") {
		t.Errorf("insights = %v, want under-powered flag", insights)
	}
	if !containsSubstring(recs, "Extend the test duration") {
		t.Errorf("recommendations = %v, want extend-duration", recs)
	}
	if containsSubstring(recs, "Roll out") {
		t.Errorf("recommendations = %v, must not recommend rollout below minimum sample", recs)
	}
}

func TestGenerateInsights_ImprovementThreshold(t *testing.T) {
	tests := []struct {
		name        string
		leaderValue float64
		wantPhrase  string
	}{
		{"above 5 percent", 0.6, "significant improvement"},
		{"below 5 percent", 0.51, "No significant difference"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := []VariantResults{
				{VariantID: "control", VariantName: "control", ParticipantCount: 200, PrimaryMetricValue: 0.5},
				{VariantID: "treatment", VariantName: "treatment", ParticipantCount: 200, PrimaryMetricValue: tt.leaderValue},
			}
			insights, _ := GenerateInsights(insightTest(100), results, "treatment")
			if !containsSubstring(insights, tt.wantPhrase) {
				t.Errorf("insights = %v, want %q", insights, tt.wantPhrase)
			}
		})
	}
}

func TestGenerateInsights_RolloutWithQualityFlags(t *testing.T) {
	results := []VariantResults{
		{VariantID: "control", VariantName: "control", ParticipantCount: 200, PrimaryMetricValue: 0.5},
		{
			VariantID: "treatment", VariantName: "treatment", ParticipantCount: 200,
			PrimaryMetricValue: 0.8, ErrorRate: 6.5, SatisfactionScore: 5.5,
		},
	}

	_, recs := GenerateInsights(insightTest(100), results, "treatment")

	// All applicable rules emit, not just the first.
	if !containsSubstring(recs, `Roll out "treatment"`) {
		t.Errorf("recommendations = %v, want rollout", recs)
	}
	if !containsSubstring(recs, "error rate") {
		t.Errorf("recommendations = %v, want error-rate warning", recs)
	}
	if !containsSubstring(recs, "satisfaction") {
		t.Errorf("recommendations = %v, want satisfaction warning", recs)
	}
}

func TestGenerateInsights_NoWinner(t *testing.T) {
	results := []VariantResults{
		{VariantID: "control", VariantName: "control", ParticipantCount: 10, PrimaryMetricValue: 0.5},
		{VariantID: "treatment", VariantName: "treatment", ParticipantCount: 10, PrimaryMetricValue: 0.5},
	}

	_, recs := GenerateInsights(insightTest(5), results, "")
	if !containsSubstring(recs, "Extend the test or increase traffic") {
		t.Errorf("recommendations = %v, want extend/increase-sample", recs)
	}
}

func TestGenerateInsights_UnratedWinnerSkipsSatisfactionRule(t *testing.T) {
	results := []VariantResults{
		{VariantID: "control", VariantName: "control", ParticipantCount: 200, PrimaryMetricValue: 0.5},
		{VariantID: "treatment", VariantName: "treatment", ParticipantCount: 200, PrimaryMetricValue: 0.8, SatisfactionScore: 0},
	}

	_, recs := GenerateInsights(insightTest(100), results, "treatment")
	if containsSubstring(recs, "satisfaction") {
		t.Errorf("recommendations = %v, must not warn about satisfaction with no ratings", recs)
	}
}
