package engine

import (
	"context"
	"fmt"

	"github.com/AFA55/pontifex-industries-sub002/internal/domain"
)

// AssignVariant resolves the variant for a subject in a test. Only active
// tests assign: once a test is paused or completed, nobody participates, not
// even subjects assigned earlier. Within an active test an already assigned
// subject always gets their stored variant back, even if the audience or
// allocation changed since. New subjects are admitted only when the audience
// matches and the subject's inclusion bucket falls inside the traffic
// allocation. Returns the variant id and whether the subject participates.
func (e *Engine) AssignVariant(ctx context.Context, subjectID, testID string, audience domain.AudienceContext) (string, bool, error) {
	test, err := e.GetTest(ctx, testID)
	if err != nil {
		return "", false, err
	}
	if test.Status != domain.TestStatusActive {
		return "", false, nil
	}

	// Sticky assignment wins over audience and allocation rules.
	existing, err := e.participants.Get(ctx, subjectID, testID)
	if err != nil {
		return "", false, fmt.Errorf("loading participant %s/%s: %w", subjectID, testID, err)
	}
	if existing != nil {
		return existing.VariantID, true, nil
	}

	if !test.TargetAudience.Matches(audience) {
		return "", false, nil
	}
	if domain.Bucket(subjectID, testID) >= test.TrafficAllocation/100 {
		return "", false, nil
	}

	variant := test.VariantForBucket(domain.VariantBucket(subjectID, testID))
	candidate := &domain.Participant{
		SubjectID:  subjectID,
		TestID:     testID,
		VariantID:  variant.ID,
		AssignedAt: e.clock.Now(),
	}
	stored, created, err := e.participants.InsertIfAbsent(ctx, candidate)
	if err != nil {
		return "", false, fmt.Errorf("assigning %s to test %s: %w", subjectID, testID, err)
	}
	if created {
		e.metrics.RecordAssignment(ctx, testID, stored.VariantID)
		e.logger.Debug("assigned %s to variant %s of test %s", subjectID, stored.VariantID, testID)
	}
	return stored.VariantID, true, nil
}

// GetFeatureConfig resolves the configuration value a subject should see for
// a feature key, scanning active tests the subject is assigned to. The
// second return reports whether any experiment carries the key; callers fall
// back to their default when it is false. Lookup never assigns: subjects not
// yet in a test see the default. A hit is recorded as an implicit exposure.
func (e *Engine) GetFeatureConfig(ctx context.Context, subjectID, feature string) (any, bool) {
	active, err := e.tests.ListByStatus(ctx, domain.TestStatusActive)
	if err != nil {
		e.logger.Error("listing active tests for feature %s: %v", feature, err)
		return nil, false
	}
	for _, test := range active {
		participant, err := e.participants.Get(ctx, subjectID, test.ID)
		if err != nil {
			e.logger.Error("loading participant %s/%s: %v", subjectID, test.ID, err)
			continue
		}
		if participant == nil {
			continue
		}
		variant := test.Variant(participant.VariantID)
		if variant == nil {
			continue
		}
		value, ok := variant.Config[feature]
		if !ok {
			continue
		}
		e.TrackExposure(ctx, subjectID, test.ID, feature, nil)
		return value, true
	}
	return nil, false
}
