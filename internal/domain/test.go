package domain

import "time"

// TestStatus is the lifecycle state of a Test.
type TestStatus string

const (
	TestStatusDraft     TestStatus = "draft"
	TestStatusActive    TestStatus = "active"
	TestStatusPaused    TestStatus = "paused"
	TestStatusCompleted TestStatus = "completed"
)

// PrimaryMetric selects which per-participant measurement decides the winner.
type PrimaryMetric string

const (
	MetricConversion     PrimaryMetric = "conversion"
	MetricEngagement     PrimaryMetric = "engagement"
	MetricSatisfaction   PrimaryMetric = "satisfaction"
	MetricTaskCompletion PrimaryMetric = "task_completion"
	MetricErrorRate      PrimaryMetric = "error_rate"
)

// splitTolerance absorbs floating-point drift when variant splits are summed.
const splitTolerance = 0.01

// Test is an A/B test definition. Owned by the registry; mutated only by
// lifecycle transitions, never deleted.
type Test struct {
	ID                string         `json:"id"`
	Name              string         `json:"name"`
	Description       string         `json:"description,omitempty"`
	Status            TestStatus     `json:"status"`
	StartDate         time.Time      `json:"start_date"`
	EndDate           *time.Time     `json:"end_date,omitempty"`
	TrafficAllocation float64        `json:"traffic_allocation"` // percent of the matching audience included at all, 0-100
	Variants          []Variant      `json:"variants"`
	TargetAudience    TargetAudience `json:"target_audience"`
	PrimaryMetric     PrimaryMetric  `json:"primary_metric"`
	SecondaryMetrics  []string       `json:"secondary_metrics,omitempty"`
	MinimumSampleSize int            `json:"minimum_sample_size"`
	CreatedAt         time.Time      `json:"created_at"`
}

// Variant is one treatment option within a Test. Immutable once the
// parent test leaves draft.
type Variant struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Description  string         `json:"description,omitempty"`
	TrafficSplit float64        `json:"traffic_split"` // share of included test traffic, 0-100
	Config       map[string]any `json:"config,omitempty"`
	IsControl    bool           `json:"is_control"`
}

// Validate checks the structural invariants of a test definition.
// It returns a *ValidationError describing the first violation found.
func (t *Test) Validate() error {
	if t.Name == "" {
		return newValidationError("test name is required")
	}
	if len(t.Variants) < 2 {
		return newValidationError("at least two variants are required, got %d", len(t.Variants))
	}
	if t.TrafficAllocation < 0 || t.TrafficAllocation > 100 {
		return newValidationError("traffic allocation must be between 0 and 100, got %g", t.TrafficAllocation)
	}

	var splitSum float64
	controls := 0
	for _, v := range t.Variants {
		if v.Name == "" {
			return newValidationError("variant name is required")
		}
		if v.TrafficSplit < 0 || v.TrafficSplit > 100 {
			return newValidationError("variant %q traffic split must be between 0 and 100, got %g", v.Name, v.TrafficSplit)
		}
		splitSum += v.TrafficSplit
		if v.IsControl {
			controls++
		}
	}
	if splitSum < 100-splitTolerance || splitSum > 100+splitTolerance {
		return newValidationError("variant traffic splits must sum to 100, got %g", splitSum)
	}
	if controls != 1 {
		return newValidationError("exactly one variant must be the control, got %d", controls)
	}

	switch t.PrimaryMetric {
	case MetricConversion, MetricEngagement, MetricSatisfaction, MetricTaskCompletion, MetricErrorRate:
	default:
		return newValidationError("unknown primary metric %q", t.PrimaryMetric)
	}
	if t.MinimumSampleSize < 0 {
		return newValidationError("minimum sample size must not be negative, got %d", t.MinimumSampleSize)
	}

	return nil
}

// Variant returns the variant with the given id, or nil.
func (t *Test) Variant(id string) *Variant {
	for i := range t.Variants {
		if t.Variants[i].ID == id {
			return &t.Variants[i]
		}
	}
	return nil
}

// Control returns the control variant, or nil for an invalid definition.
func (t *Test) Control() *Variant {
	for i := range t.Variants {
		if t.Variants[i].IsControl {
			return &t.Variants[i]
		}
	}
	return nil
}

// VariantForBucket walks variants in definition order, accumulating traffic
// split boundaries, and returns the first variant whose cumulative boundary
// reaches the bucket value. The walk order is the definition order so the
// result is reproducible for a fixed test definition.
func (t *Test) VariantForBucket(bucket float64) *Variant {
	cumulative := 0.0
	for i := range t.Variants {
		cumulative += t.Variants[i].TrafficSplit / 100
		if bucket <= cumulative {
			return &t.Variants[i]
		}
	}
	// Splits sum to 100 within tolerance; a bucket past the last boundary
	// can only be floating-point drift.
	return &t.Variants[len(t.Variants)-1]
}
