package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/AFA55/pontifex-industries-sub002/internal/domain"
)

// TestDefinition describes a test to register. IDs are generated on
// creation; everything else is caller-supplied.
type TestDefinition struct {
	Name              string
	Description       string
	Variants          []VariantDefinition
	TrafficAllocation float64
	TargetAudience    domain.TargetAudience
	PrimaryMetric     domain.PrimaryMetric
	SecondaryMetrics  []string
	MinimumSampleSize int
}

// VariantDefinition describes one arm of a test.
type VariantDefinition struct {
	Name         string
	Description  string
	TrafficSplit float64
	Config       map[string]any
	IsControl    bool
}

// CreateTest validates and registers a new test in draft status.
func (e *Engine) CreateTest(ctx context.Context, def TestDefinition) (*domain.Test, error) {
	test := &domain.Test{
		ID:                uuid.New().String(),
		Name:              def.Name,
		Description:       def.Description,
		Status:            domain.TestStatusDraft,
		TrafficAllocation: def.TrafficAllocation,
		TargetAudience:    def.TargetAudience,
		PrimaryMetric:     def.PrimaryMetric,
		SecondaryMetrics:  def.SecondaryMetrics,
		MinimumSampleSize: def.MinimumSampleSize,
		CreatedAt:         e.clock.Now(),
	}
	for _, v := range def.Variants {
		test.Variants = append(test.Variants, domain.Variant{
			ID:           uuid.New().String(),
			Name:         v.Name,
			Description:  v.Description,
			TrafficSplit: v.TrafficSplit,
			Config:       v.Config,
			IsControl:    v.IsControl,
		})
	}

	if err := test.Validate(); err != nil {
		return nil, err
	}
	if err := e.tests.Create(ctx, test); err != nil {
		return nil, fmt.Errorf("creating test: %w", err)
	}
	e.logger.Debug("created test %s (%s) with %d variants", test.ID, test.Name, len(test.Variants))
	return test, nil
}

// GetTest loads a test by id.
func (e *Engine) GetTest(ctx context.Context, testID string) (*domain.Test, error) {
	test, err := e.tests.GetByID(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("loading test %s: %w", testID, err)
	}
	if test == nil {
		return nil, domain.ErrTestNotFound
	}
	return test, nil
}

// ListTests returns all registered tests, oldest first.
func (e *Engine) ListTests(ctx context.Context) ([]*domain.Test, error) {
	return e.tests.List(ctx)
}

// ListTestsByStatus returns tests in the given lifecycle status.
func (e *Engine) ListTestsByStatus(ctx context.Context, status domain.TestStatus) ([]*domain.Test, error) {
	return e.tests.ListByStatus(ctx, status)
}

// StartTest activates a draft test and stamps its start date. Returns false
// for any other status: restarting would corrupt the test's timing semantics,
// so paused and completed tests are rejected rather than silently accepted.
func (e *Engine) StartTest(ctx context.Context, testID string) (bool, error) {
	test, err := e.GetTest(ctx, testID)
	if err != nil {
		return false, err
	}
	if test.Status != domain.TestStatusDraft {
		return false, nil
	}
	test.Status = domain.TestStatusActive
	test.StartDate = e.clock.Now()
	if err := e.tests.Update(ctx, test); err != nil {
		return false, fmt.Errorf("starting test %s: %w", testID, err)
	}
	e.logger.Debug("test %s is now active", testID)
	return true, nil
}

// PauseTest suspends assignment for an active test. Existing participants
// keep their variants and tracking keeps working.
func (e *Engine) PauseTest(ctx context.Context, testID string) (bool, error) {
	test, err := e.GetTest(ctx, testID)
	if err != nil {
		return false, err
	}
	if test.Status != domain.TestStatusActive {
		return false, nil
	}
	test.Status = domain.TestStatusPaused
	if err := e.tests.Update(ctx, test); err != nil {
		return false, fmt.Errorf("pausing test %s: %w", testID, err)
	}
	e.logger.Debug("test %s paused", testID)
	return true, nil
}

// CompleteTest ends an active or paused test and stamps its end date.
func (e *Engine) CompleteTest(ctx context.Context, testID string) (bool, error) {
	test, err := e.GetTest(ctx, testID)
	if err != nil {
		return false, err
	}
	if test.Status != domain.TestStatusActive && test.Status != domain.TestStatusPaused {
		return false, nil
	}
	test.Status = domain.TestStatusCompleted
	end := e.clock.Now()
	test.EndDate = &end
	if err := e.tests.Update(ctx, test); err != nil {
		return false, fmt.Errorf("completing test %s: %w", testID, err)
	}
	e.logger.Debug("test %s completed", testID)
	return true, nil
}
