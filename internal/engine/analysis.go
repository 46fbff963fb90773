package engine

import (
	"context"
	"fmt"

	"github.com/AFA55/pontifex-industries-sub002/internal/domain"
)

// AnalyzeTest computes a full results report for a test: per-variant
// descriptive statistics, the winner analysis, and generated insights and
// recommendations. Works on tests in any status so reports can be pulled
// mid-flight.
func (e *Engine) AnalyzeTest(ctx context.Context, testID string) (*domain.TestResults, error) {
	test, err := e.GetTest(ctx, testID)
	if err != nil {
		return nil, err
	}
	participants, err := e.participants.ListByTest(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("loading participants of test %s: %w", testID, err)
	}

	variantResults := domain.ComputeVariantResults(test, participants)
	analysis := domain.Analyze(variantResults)
	insights, recommendations := domain.GenerateInsights(test, variantResults, analysis.WinnerVariantID)

	results := &domain.TestResults{
		TestID:            test.ID,
		GeneratedAt:       e.clock.Now(),
		StartDate:         test.StartDate,
		EndDate:           test.EndDate,
		TotalParticipants: len(participants),
		VariantResults:    variantResults,
		WinnerVariantID:   analysis.WinnerVariantID,
		Confidence:        analysis.Confidence,
		Significance:      analysis.Significance,
		Insights:          insights,
		Recommendations:   recommendations,
	}
	e.logger.Debug("analyzed test %s: %d participants, winner=%q confidence=%.1f",
		testID, len(participants), analysis.WinnerVariantID, analysis.Confidence)
	return results, nil
}
