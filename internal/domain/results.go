package domain

import "time"

// VariantResults is the derived per-variant summary. Computed on demand from
// live participant data, never persisted.
type VariantResults struct {
	VariantID          string             `json:"variant_id"`
	VariantName        string             `json:"variant_name"`
	IsControl          bool               `json:"is_control"`
	ParticipantCount   int                `json:"participant_count"`
	PrimaryMetricValue float64            `json:"primary_metric_value"` // sample mean of the primary metric
	StdDev             float64            `json:"std_dev"`              // population standard deviation of the same
	ConversionRate     float64            `json:"conversion_rate"`      // percent of participants with at least one conversion
	AvgSessionTime     float64            `json:"avg_session_time"`     // seconds
	ErrorRate          float64            `json:"error_rate"`           // mean error count per participant
	TaskCompletionRate float64            `json:"task_completion_rate"` // mean task completions per participant
	SatisfactionScore  float64            `json:"satisfaction_score"`   // mean of per-participant satisfaction means
	SecondaryMetrics   map[string]float64 `json:"secondary_metrics,omitempty"`
}

// TestResults is a fresh, disposable analysis view. Recomputed on every
// request, never cached.
type TestResults struct {
	TestID            string           `json:"test_id"`
	GeneratedAt       time.Time        `json:"generated_at"`
	StartDate         time.Time        `json:"start_date"`
	EndDate           *time.Time       `json:"end_date,omitempty"`
	TotalParticipants int              `json:"total_participants"`
	VariantResults    []VariantResults `json:"variant_results"`
	WinnerVariantID   string           `json:"winner_variant_id,omitempty"` // empty when no winner can be declared
	Confidence        float64          `json:"confidence"`
	Significance      float64          `json:"significance"`
	Insights          []string         `json:"insights,omitempty"`
	Recommendations   []string         `json:"recommendations,omitempty"`
}

// ComputeVariantResults reduces all participants of a test into per-variant
// summaries, in variant definition order. A variant with no participants
// renders as an all-zero row, not an error.
func ComputeVariantResults(t *Test, participants []*Participant) []VariantResults {
	results := make([]VariantResults, 0, len(t.Variants))

	for _, v := range t.Variants {
		r := VariantResults{
			VariantID:   v.ID,
			VariantName: v.Name,
			IsControl:   v.IsControl,
		}

		var samples []float64
		var converted int
		var totalTime float64
		var errorSum, taskSum float64
		var satisfactionMeans []float64
		secondary := make(map[string]float64, len(t.SecondaryMetrics))

		for _, p := range participants {
			if p.VariantID != v.ID {
				continue
			}
			r.ParticipantCount++
			samples = append(samples, p.MetricSample(t.PrimaryMetric))
			if p.Converted() {
				converted++
			}
			totalTime += float64(p.Metrics.TotalTimeSeconds)
			errorSum += float64(p.Metrics.ErrorCount)
			taskSum += float64(p.Metrics.TaskCompletions)
			if len(p.Metrics.SatisfactionRatings) > 0 {
				satisfactionMeans = append(satisfactionMeans, p.SatisfactionScore())
			}
			for _, name := range t.SecondaryMetrics {
				secondary[name] += float64(p.Metrics.FeatureUsage[name])
			}
		}

		r.PrimaryMetricValue = mean(samples)
		r.StdDev = stdDev(samples, r.PrimaryMetricValue)

		if r.ParticipantCount > 0 {
			n := float64(r.ParticipantCount)
			r.ConversionRate = float64(converted) / n * 100
			r.AvgSessionTime = totalTime / n
			r.ErrorRate = errorSum / n
			r.TaskCompletionRate = taskSum / n
			for name := range secondary {
				secondary[name] /= n
			}
		}
		r.SatisfactionScore = mean(satisfactionMeans)
		if len(t.SecondaryMetrics) > 0 {
			r.SecondaryMetrics = secondary
		}

		results = append(results, r)
	}

	return results
}
