package domain

import "time"

// Participant is the durable record of one subject's assignment and activity
// within one test. Created exactly once per (subject, test); append-only
// afterwards. The assignment itself never changes.
type Participant struct {
	SubjectID     string             `json:"subject_id"`
	TestID        string             `json:"test_id"`
	VariantID     string             `json:"variant_id"`
	AssignedAt    time.Time          `json:"assigned_at"`
	FirstExposure *time.Time         `json:"first_exposure,omitempty"`
	Exposures     []Exposure         `json:"exposures,omitempty"`
	Conversions   []Conversion       `json:"conversions,omitempty"`
	Metrics       ParticipantMetrics `json:"metrics"`
}

// Exposure marks that a participant was shown a feature under test. The
// variant id is denormalized for query convenience.
type Exposure struct {
	Timestamp time.Time      `json:"timestamp"`
	Feature   string         `json:"feature"`
	VariantID string         `json:"variant_id"`
	Context   map[string]any `json:"context,omitempty"`
}

// Conversion marks that a participant performed the tracked success action.
type Conversion struct {
	Timestamp  time.Time      `json:"timestamp"`
	Event      string         `json:"event"`
	Value      *float64       `json:"value,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
}

// ParticipantMetrics aggregates per-participant activity.
type ParticipantMetrics struct {
	SessionCount        int            `json:"session_count"`
	TotalTimeSeconds    int64          `json:"total_time_seconds"`
	TaskCompletions     int            `json:"task_completions"`
	ErrorCount          int            `json:"error_count"`
	SatisfactionRatings []float64      `json:"satisfaction_ratings,omitempty"`
	FeatureUsage        map[string]int `json:"feature_usage,omitempty"`
}

// MetricsDelta is a partial metrics update. Counters increment, ratings
// append, feature usage adds per key.
type MetricsDelta struct {
	SessionCount        int
	TotalTimeSeconds    int64
	TaskCompletions     int
	ErrorCount          int
	SatisfactionRatings []float64
	FeatureUsage        map[string]int
}

// Merge applies a delta in place.
func (m *ParticipantMetrics) Merge(d MetricsDelta) {
	m.SessionCount += d.SessionCount
	m.TotalTimeSeconds += d.TotalTimeSeconds
	m.TaskCompletions += d.TaskCompletions
	m.ErrorCount += d.ErrorCount
	m.SatisfactionRatings = append(m.SatisfactionRatings, d.SatisfactionRatings...)
	if len(d.FeatureUsage) > 0 {
		if m.FeatureUsage == nil {
			m.FeatureUsage = make(map[string]int, len(d.FeatureUsage))
		}
		for k, v := range d.FeatureUsage {
			m.FeatureUsage[k] += v
		}
	}
}

// Converted reports whether the participant recorded at least one conversion.
func (p *Participant) Converted() bool {
	return len(p.Conversions) > 0
}

// MetricSample extracts this participant's sample for the given primary
// metric. Empty data yields zero, never an error.
func (p *Participant) MetricSample(metric PrimaryMetric) float64 {
	switch metric {
	case MetricConversion:
		return float64(len(p.Conversions))
	case MetricEngagement:
		return float64(p.Metrics.SessionCount)
	case MetricSatisfaction:
		return mean(p.Metrics.SatisfactionRatings)
	case MetricTaskCompletion:
		return float64(p.Metrics.TaskCompletions)
	case MetricErrorRate:
		return float64(p.Metrics.ErrorCount)
	}
	return 0
}

// SatisfactionScore is the mean of the participant's satisfaction ratings,
// zero when none were recorded.
func (p *Participant) SatisfactionScore() float64 {
	return mean(p.Metrics.SatisfactionRatings)
}
