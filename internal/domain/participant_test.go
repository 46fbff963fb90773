package domain

import (
	"testing"
	"time"
)

func TestMetricSample(t *testing.T) {
	p := &Participant{
		Conversions: []Conversion{
			{Timestamp: time.Now(), Event: "purchase"},
			{Timestamp: time.Now(), Event: "purchase"},
		},
		Metrics: ParticipantMetrics{
			SessionCount:        7,
			TaskCompletions:     3,
			ErrorCount:          2,
			SatisfactionRatings: []float64{8, 9, 10},
		},
	}

	tests := []struct {
		metric PrimaryMetric
		want   float64
	}{
		{MetricConversion, 2},
		{MetricEngagement, 7},
		{MetricSatisfaction, 9},
		{MetricTaskCompletion, 3},
		{MetricErrorRate, 2},
		{"unknown", 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.metric), func(t *testing.T) {
			assertFloatNear(t, "MetricSample", tt.want, p.MetricSample(tt.metric))
		})
	}
}

func TestMetricSample_EmptyData(t *testing.T) {
	p := &Participant{}
	for _, metric := range []PrimaryMetric{MetricConversion, MetricEngagement, MetricSatisfaction, MetricTaskCompletion, MetricErrorRate} {
		if got := p.MetricSample(metric); got != 0 {
			t.Errorf("MetricSample(%s) = %v on empty participant, want 0", metric, got)
		}
	}
}

func TestConverted(t *testing.T) {
	p := &Participant{}
	if p.Converted() {
		t.Error("Converted() = true for participant with no conversions")
	}
	p.Conversions = append(p.Conversions, Conversion{Event: "signup"})
	if !p.Converted() {
		t.Error("Converted() = false for participant with a conversion")
	}
}

func TestParticipantMetricsMerge(t *testing.T) {
	m := ParticipantMetrics{
		SessionCount:        2,
		TotalTimeSeconds:    100,
		SatisfactionRatings: []float64{8},
		FeatureUsage:        map[string]int{"quick_add": 1},
	}

	m.Merge(MetricsDelta{
		SessionCount:        1,
		TotalTimeSeconds:    50,
		TaskCompletions:     4,
		ErrorCount:          1,
		SatisfactionRatings: []float64{6, 7},
		FeatureUsage:        map[string]int{"quick_add": 2, "bulk_edit": 1},
	})

	if m.SessionCount != 3 {
		t.Errorf("SessionCount = %d, want 3", m.SessionCount)
	}
	if m.TotalTimeSeconds != 150 {
		t.Errorf("TotalTimeSeconds = %d, want 150", m.TotalTimeSeconds)
	}
	if m.TaskCompletions != 4 {
		t.Errorf("TaskCompletions = %d, want 4", m.TaskCompletions)
	}
	if m.ErrorCount != 1 {
		t.Errorf("ErrorCount = %d, want 1", m.ErrorCount)
	}
	if len(m.SatisfactionRatings) != 3 {
		t.Errorf("SatisfactionRatings = %v, want 3 entries", m.SatisfactionRatings)
	}
	if m.FeatureUsage["quick_add"] != 3 || m.FeatureUsage["bulk_edit"] != 1 {
		t.Errorf("FeatureUsage = %v", m.FeatureUsage)
	}
}

func TestParticipantMetricsMerge_NilFeatureUsage(t *testing.T) {
	var m ParticipantMetrics
	m.Merge(MetricsDelta{FeatureUsage: map[string]int{"quick_add": 1}})
	if m.FeatureUsage["quick_add"] != 1 {
		t.Errorf("FeatureUsage = %v, want quick_add=1", m.FeatureUsage)
	}
}
