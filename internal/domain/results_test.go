package domain

import (
	"math"
	"testing"
)

func twoVariantTest() *Test {
	return &Test{
		ID:                "test-1",
		Name:              "checkout flow",
		Status:            TestStatusActive,
		TrafficAllocation: 100,
		Variants: []Variant{
			{ID: "control", Name: "control", TrafficSplit: 50, IsControl: true},
			{ID: "treatment", Name: "treatment", TrafficSplit: 50},
		},
		PrimaryMetric:     MetricConversion,
		MinimumSampleSize: 2,
	}
}

func TestComputeVariantResults_ConversionScenario(t *testing.T) {
	// Control holds subjects A (one conversion) and B (none); treatment
	// holds subject C (two conversions).
	test := twoVariantTest()
	participants := []*Participant{
		{SubjectID: "A", TestID: "test-1", VariantID: "control", Conversions: []Conversion{{Event: "purchase"}}},
		{SubjectID: "B", TestID: "test-1", VariantID: "control"},
		{SubjectID: "C", TestID: "test-1", VariantID: "treatment", Conversions: []Conversion{{Event: "purchase"}, {Event: "purchase"}}},
	}

	results := ComputeVariantResults(test, participants)
	if len(results) != 2 {
		t.Fatalf("got %d variant rows, want 2", len(results))
	}

	control, treatment := results[0], results[1]

	if control.ParticipantCount != 2 {
		t.Errorf("control participants = %d, want 2", control.ParticipantCount)
	}
	assertFloatNear(t, "control conversion rate", 50, control.ConversionRate)
	assertFloatNear(t, "control primary metric", 0.5, control.PrimaryMetricValue)
	// Samples 1 and 0: population std dev is 0.5.
	assertFloatNear(t, "control std dev", 0.5, control.StdDev)

	if treatment.ParticipantCount != 1 {
		t.Errorf("treatment participants = %d, want 1", treatment.ParticipantCount)
	}
	assertFloatNear(t, "treatment conversion rate", 100, treatment.ConversionRate)
	assertFloatNear(t, "treatment primary metric", 2, treatment.PrimaryMetricValue)

	if treatment.PrimaryMetricValue <= control.PrimaryMetricValue {
		t.Error("treatment should out-perform control in this scenario")
	}
}

func TestComputeVariantResults_EmptyVariantRendersZero(t *testing.T) {
	test := twoVariantTest()
	participants := []*Participant{
		{SubjectID: "A", TestID: "test-1", VariantID: "control"},
	}

	results := ComputeVariantResults(test, participants)
	treatment := results[1]

	if treatment.ParticipantCount != 0 {
		t.Fatalf("treatment participants = %d, want 0", treatment.ParticipantCount)
	}
	for field, v := range map[string]float64{
		"PrimaryMetricValue": treatment.PrimaryMetricValue,
		"StdDev":             treatment.StdDev,
		"ConversionRate":     treatment.ConversionRate,
		"AvgSessionTime":     treatment.AvgSessionTime,
		"ErrorRate":          treatment.ErrorRate,
		"TaskCompletionRate": treatment.TaskCompletionRate,
		"SatisfactionScore":  treatment.SatisfactionScore,
	} {
		if v != 0 {
			t.Errorf("%s = %v for empty variant, want 0", field, v)
		}
	}
}

func TestComputeVariantResults_NoParticipants(t *testing.T) {
	results := ComputeVariantResults(twoVariantTest(), nil)
	if len(results) != 2 {
		t.Fatalf("got %d rows, want 2", len(results))
	}
	for _, r := range results {
		if r.ParticipantCount != 0 || r.PrimaryMetricValue != 0 {
			t.Errorf("expected zero row, got %+v", r)
		}
	}
}

func TestComputeVariantResults_DescriptiveFields(t *testing.T) {
	test := twoVariantTest()
	test.PrimaryMetric = MetricEngagement
	test.SecondaryMetrics = []string{"quick_add"}

	participants := []*Participant{
		{
			SubjectID: "A", TestID: "test-1", VariantID: "control",
			Metrics: ParticipantMetrics{
				SessionCount:        4,
				TotalTimeSeconds:    200,
				TaskCompletions:     2,
				ErrorCount:          1,
				SatisfactionRatings: []float64{8, 6},
				FeatureUsage:        map[string]int{"quick_add": 3},
			},
		},
		{
			SubjectID: "B", TestID: "test-1", VariantID: "control",
			Metrics: ParticipantMetrics{
				SessionCount:     2,
				TotalTimeSeconds: 100,
				TaskCompletions:  4,
				ErrorCount:       3,
				FeatureUsage:     map[string]int{"quick_add": 1},
			},
		},
	}

	control := ComputeVariantResults(test, participants)[0]

	assertFloatNear(t, "PrimaryMetricValue", 3, control.PrimaryMetricValue)
	assertFloatNear(t, "StdDev", 1, control.StdDev)
	assertFloatNear(t, "AvgSessionTime", 150, control.AvgSessionTime)
	assertFloatNear(t, "ErrorRate", 2, control.ErrorRate)
	assertFloatNear(t, "TaskCompletionRate", 3, control.TaskCompletionRate)
	// Only A rated; its mean of 7 is the variant score.
	assertFloatNear(t, "SatisfactionScore", 7, control.SatisfactionScore)
	assertFloatNear(t, "quick_add", 2, control.SecondaryMetrics["quick_add"])
}

func TestStatsHelpers(t *testing.T) {
	if got := mean(nil); got != 0 {
		t.Errorf("mean(nil) = %v, want 0", got)
	}
	if got := stdDev(nil, 0); got != 0 {
		t.Errorf("stdDev(nil) = %v, want 0", got)
	}

	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	m := mean(values)
	assertFloatNear(t, "mean", 5, m)
	// Population standard deviation of this classic sample is exactly 2.
	if sd := stdDev(values, m); math.Abs(sd-2) > 1e-9 {
		t.Errorf("stdDev = %v, want 2", sd)
	}
}
