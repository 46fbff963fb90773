package domain

import "math"

// Analysis holds the winner decision and its uncertainty estimates.
type Analysis struct {
	WinnerVariantID string  // empty when fewer than two variants have data
	Confidence      float64 // 0-100
	Significance    float64 // 0-1
}

// Analyze picks the winning variant and estimates confidence and
// significance from the aggregated results. The winner is the variant with
// the highest primary metric value; ties break in definition order so the
// output stays deterministic.
//
// Confidence and significance use a pooled-standard-deviation effect-size
// heuristic, not a full hypothesis test. Equal-variance zero spread reports
// maximal uncertainty: identical variance-free results cannot be told apart
// from a real effect. A proper two-sample test (Welch, chi-square) can
// replace this as long as confidence stays in [0,100], significance in
// (0,1], and both improve monotonically with effect size.
func Analyze(results []VariantResults) Analysis {
	var populated []VariantResults
	for _, r := range results {
		if r.ParticipantCount > 0 {
			populated = append(populated, r)
		}
	}

	if len(populated) < 2 {
		return Analysis{Confidence: 0, Significance: 1}
	}

	// Leader and runner-up by primary metric, first-declared wins ties.
	leader, runnerUp := 0, -1
	for i := 1; i < len(populated); i++ {
		if populated[i].PrimaryMetricValue > populated[leader].PrimaryMetricValue {
			runnerUp = leader
			leader = i
		} else if runnerUp < 0 || populated[i].PrimaryMetricValue > populated[runnerUp].PrimaryMetricValue {
			runnerUp = i
		}
	}

	a := Analysis{WinnerVariantID: populated[leader].VariantID}

	sd1 := populated[leader].StdDev
	sd2 := populated[runnerUp].StdDev
	pooled := math.Sqrt((sd1*sd1 + sd2*sd2) / 2)
	if pooled == 0 {
		a.Confidence = 50
		a.Significance = 0.5
		return a
	}

	effectSize := math.Abs(populated[leader].PrimaryMetricValue-populated[runnerUp].PrimaryMetricValue) / pooled
	a.Confidence = math.Min(95, effectSize*30+50)
	a.Significance = math.Max(0.01, 1-a.Confidence/100)
	return a
}
