package ports

import (
	"context"

	"github.com/AFA55/pontifex-industries-sub002/internal/domain"
)

// ParticipantRepository stores participant records and their event streams.
//
// InsertIfAbsent must be atomic: concurrent first-time inserts for the same
// (subject, test) key must store exactly one participant, with losing callers
// receiving the stored record. Appends to a single participant's event lists
// must be serialized so no event is lost and submission order is preserved.
// Reads return snapshots; they need not reflect writes racing with the read.
type ParticipantRepository interface {
	// Get returns (nil, nil) when no participant exists for the key.
	Get(ctx context.Context, subjectID, testID string) (*domain.Participant, error)
	// InsertIfAbsent stores p unless a participant already exists for its
	// key. It returns the stored record and whether this call created it.
	InsertIfAbsent(ctx context.Context, p *domain.Participant) (*domain.Participant, bool, error)
	AppendExposure(ctx context.Context, subjectID, testID string, e domain.Exposure) error
	AppendConversion(ctx context.Context, subjectID, testID string, c domain.Conversion) error
	MergeMetrics(ctx context.Context, subjectID, testID string, d domain.MetricsDelta) error
	ListByTest(ctx context.Context, testID string) ([]*domain.Participant, error)
}
