package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/AFA55/pontifex-industries-sub002/internal/domain"
)

// TestRepository is an in-memory test store. The registry owns test records
// for their lifetime; callers get copies so stored state only changes through
// repository calls.
type TestRepository struct {
	mu    sync.RWMutex
	tests map[string]*domain.Test
}

// NewTestRepository creates an empty in-memory test store.
func NewTestRepository() *TestRepository {
	return &TestRepository{tests: make(map[string]*domain.Test)}
}

func (r *TestRepository) Create(_ context.Context, test *domain.Test) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tests[test.ID] = cloneTest(test)
	return nil
}

func (r *TestRepository) GetByID(_ context.Context, id string) (*domain.Test, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tests[id]
	if !ok {
		return nil, nil
	}
	return cloneTest(t), nil
}

func (r *TestRepository) List(_ context.Context) ([]*domain.Test, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.listLocked(func(*domain.Test) bool { return true }), nil
}

func (r *TestRepository) ListByStatus(_ context.Context, status domain.TestStatus) ([]*domain.Test, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.listLocked(func(t *domain.Test) bool { return t.Status == status }), nil
}

func (r *TestRepository) Update(_ context.Context, test *domain.Test) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tests[test.ID]; !ok {
		return domain.ErrTestNotFound
	}
	r.tests[test.ID] = cloneTest(test)
	return nil
}

// listLocked returns matching tests ordered by creation time then id, so
// list results are stable across calls.
func (r *TestRepository) listLocked(match func(*domain.Test) bool) []*domain.Test {
	var out []*domain.Test
	for _, t := range r.tests {
		if match(t) {
			out = append(out, cloneTest(t))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

type participantKey struct {
	subjectID string
	testID    string
}

// ParticipantRepository is an in-memory participant store. A single mutex
// serializes writes, which makes first-time insertion linearizable per key
// and keeps each participant's event lists in submission order.
type ParticipantRepository struct {
	mu           sync.RWMutex
	participants map[participantKey]*domain.Participant
}

// NewParticipantRepository creates an empty in-memory participant store.
func NewParticipantRepository() *ParticipantRepository {
	return &ParticipantRepository{participants: make(map[participantKey]*domain.Participant)}
}

func (r *ParticipantRepository) Get(_ context.Context, subjectID, testID string) (*domain.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.participants[participantKey{subjectID, testID}]
	if !ok {
		return nil, nil
	}
	return cloneParticipant(p), nil
}

func (r *ParticipantRepository) InsertIfAbsent(_ context.Context, p *domain.Participant) (*domain.Participant, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := participantKey{p.SubjectID, p.TestID}
	if existing, ok := r.participants[key]; ok {
		return cloneParticipant(existing), false, nil
	}
	r.participants[key] = cloneParticipant(p)
	return cloneParticipant(p), true, nil
}

func (r *ParticipantRepository) AppendExposure(_ context.Context, subjectID, testID string, e domain.Exposure) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[participantKey{subjectID, testID}]
	if !ok {
		return domain.ErrParticipantNotFound
	}
	if p.FirstExposure == nil {
		ts := e.Timestamp
		p.FirstExposure = &ts
	}
	p.Exposures = append(p.Exposures, e)
	return nil
}

func (r *ParticipantRepository) AppendConversion(_ context.Context, subjectID, testID string, c domain.Conversion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[participantKey{subjectID, testID}]
	if !ok {
		return domain.ErrParticipantNotFound
	}
	p.Conversions = append(p.Conversions, c)
	return nil
}

func (r *ParticipantRepository) MergeMetrics(_ context.Context, subjectID, testID string, d domain.MetricsDelta) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[participantKey{subjectID, testID}]
	if !ok {
		return domain.ErrParticipantNotFound
	}
	p.Metrics.Merge(d)
	return nil
}

func (r *ParticipantRepository) ListByTest(_ context.Context, testID string) ([]*domain.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Participant
	for key, p := range r.participants {
		if key.testID == testID {
			out = append(out, cloneParticipant(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubjectID < out[j].SubjectID })
	return out, nil
}

func cloneTest(t *domain.Test) *domain.Test {
	out := *t
	out.Variants = make([]domain.Variant, len(t.Variants))
	for i, v := range t.Variants {
		out.Variants[i] = v
		out.Variants[i].Config = cloneAnyMap(v.Config)
	}
	out.SecondaryMetrics = append([]string(nil), t.SecondaryMetrics...)
	out.TargetAudience.CompanySizes = append([]string(nil), t.TargetAudience.CompanySizes...)
	out.TargetAudience.WorkTypes = append([]string(nil), t.TargetAudience.WorkTypes...)
	if t.EndDate != nil {
		end := *t.EndDate
		out.EndDate = &end
	}
	return &out
}

func cloneParticipant(p *domain.Participant) *domain.Participant {
	out := *p
	if p.FirstExposure != nil {
		ts := *p.FirstExposure
		out.FirstExposure = &ts
	}
	out.Exposures = make([]domain.Exposure, len(p.Exposures))
	for i, e := range p.Exposures {
		out.Exposures[i] = e
		out.Exposures[i].Context = cloneAnyMap(e.Context)
	}
	out.Conversions = make([]domain.Conversion, len(p.Conversions))
	for i, c := range p.Conversions {
		out.Conversions[i] = c
		out.Conversions[i].Properties = cloneAnyMap(c.Properties)
		if c.Value != nil {
			v := *c.Value
			out.Conversions[i].Value = &v
		}
	}
	out.Metrics.SatisfactionRatings = append([]float64(nil), p.Metrics.SatisfactionRatings...)
	if p.Metrics.FeatureUsage != nil {
		out.Metrics.FeatureUsage = make(map[string]int, len(p.Metrics.FeatureUsage))
		for k, v := range p.Metrics.FeatureUsage {
			out.Metrics.FeatureUsage[k] = v
		}
	}
	return &out
}

func cloneAnyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
