package engine

import (
	"context"

	"github.com/AFA55/pontifex-industries-sub002/internal/domain"
)

// TrackExposure records that a subject saw an experimental feature. Events
// for subjects who are not participants of the test are dropped, so callers
// can fire exposures unconditionally from instrumentation points. The return
// reports whether the event was recorded; it is never an error.
func (e *Engine) TrackExposure(ctx context.Context, subjectID, testID, feature string, eventCtx map[string]any) bool {
	participant, err := e.participants.Get(ctx, subjectID, testID)
	if err != nil {
		e.logger.Error("loading participant %s/%s: %v", subjectID, testID, err)
		return false
	}
	if participant == nil {
		return false
	}

	exposure := domain.Exposure{
		Timestamp: e.clock.Now(),
		Feature:   feature,
		VariantID: participant.VariantID,
		Context:   eventCtx,
	}
	if err := e.participants.AppendExposure(ctx, subjectID, testID, exposure); err != nil {
		e.logger.Error("recording exposure for %s/%s: %v", subjectID, testID, err)
		return false
	}
	e.metrics.RecordExposure(ctx, testID, participant.VariantID, feature)
	return true
}

// TrackConversion records a conversion event for a participating subject.
// Non-participants are ignored the same way TrackExposure ignores them.
func (e *Engine) TrackConversion(ctx context.Context, subjectID, testID, event string, value *float64, properties map[string]any) bool {
	participant, err := e.participants.Get(ctx, subjectID, testID)
	if err != nil {
		e.logger.Error("loading participant %s/%s: %v", subjectID, testID, err)
		return false
	}
	if participant == nil {
		return false
	}

	conversion := domain.Conversion{
		Timestamp:  e.clock.Now(),
		Event:      event,
		Value:      value,
		Properties: properties,
	}
	if err := e.participants.AppendConversion(ctx, subjectID, testID, conversion); err != nil {
		e.logger.Error("recording conversion for %s/%s: %v", subjectID, testID, err)
		return false
	}
	e.metrics.RecordConversion(ctx, testID, participant.VariantID, event)
	return true
}

// UpdateParticipantMetrics merges a behavioral metrics delta into a
// participant's accumulated metrics. Unknown subjects are ignored.
func (e *Engine) UpdateParticipantMetrics(ctx context.Context, subjectID, testID string, delta domain.MetricsDelta) bool {
	participant, err := e.participants.Get(ctx, subjectID, testID)
	if err != nil {
		e.logger.Error("loading participant %s/%s: %v", subjectID, testID, err)
		return false
	}
	if participant == nil {
		return false
	}
	if err := e.participants.MergeMetrics(ctx, subjectID, testID, delta); err != nil {
		e.logger.Error("merging metrics for %s/%s: %v", subjectID, testID, err)
		return false
	}
	return true
}
