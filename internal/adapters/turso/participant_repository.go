package turso

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/AFA55/pontifex-industries-sub002/internal/domain"
	"github.com/AFA55/pontifex-industries-sub002/internal/infrastructure/database"
)

const (
	eventKindExposure   = "exposure"
	eventKindConversion = "conversion"
)

// ParticipantRepository persists participants and their event streams in
// libsql. The assignment row and the append-only event rows live in separate
// tables; the (subject_id, test_id) primary key makes first-time insertion a
// single atomic statement.
type ParticipantRepository struct {
	db *sql.DB
}

func NewParticipantRepository(db *sql.DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

func (r *ParticipantRepository) Get(ctx context.Context, subjectID, testID string) (*domain.Participant, error) {
	return database.WithRetry(ctx, 2, func() (*domain.Participant, error) {
		row := r.db.QueryRowContext(ctx, `
			SELECT subject_id, test_id, variant_id, assigned_at, first_exposure, metrics
			FROM participants WHERE subject_id = ? AND test_id = ?
		`, subjectID, testID)

		p, err := scanParticipant(row)
		if err == sql.ErrNoRows {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("get participant: %w", err)
		}
		if err := r.loadEvents(ctx, p); err != nil {
			return nil, err
		}
		return p, nil
	})
}

func (r *ParticipantRepository) InsertIfAbsent(ctx context.Context, p *domain.Participant) (*domain.Participant, bool, error) {
	metricsJSON, err := json.Marshal(p.Metrics)
	if err != nil {
		return nil, false, fmt.Errorf("marshal metrics: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO participants (subject_id, test_id, variant_id, assigned_at, first_exposure, metrics)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(subject_id, test_id) DO NOTHING
	`,
		p.SubjectID,
		p.TestID,
		p.VariantID,
		p.AssignedAt.Format(time.RFC3339),
		nullTime(p.FirstExposure),
		string(metricsJSON),
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert participant: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("insert participant: %w", err)
	}
	if affected > 0 {
		return p, true, nil
	}

	// Lost the race or the row predates this call; the stored assignment
	// is the authoritative one.
	stored, err := r.Get(ctx, p.SubjectID, p.TestID)
	if err != nil {
		return nil, false, err
	}
	if stored == nil {
		return nil, false, fmt.Errorf("participant %s/%s vanished after conflicting insert", p.SubjectID, p.TestID)
	}
	return stored, false, nil
}

func (r *ParticipantRepository) AppendExposure(ctx context.Context, subjectID, testID string, e domain.Exposure) error {
	payload, err := marshalPayload(e.Context)
	if err != nil {
		return fmt.Errorf("marshal exposure context: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin exposure tx: %w", err)
	}
	defer tx.Rollback()

	if err := requireParticipant(ctx, tx, subjectID, testID); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO participant_events (subject_id, test_id, kind, timestamp, feature, variant_id, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, subjectID, testID, eventKindExposure, e.Timestamp.Format(time.RFC3339), e.Feature, e.VariantID, payload)
	if err != nil {
		return fmt.Errorf("insert exposure: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE participants SET first_exposure = ?
		WHERE subject_id = ? AND test_id = ? AND first_exposure IS NULL
	`, e.Timestamp.Format(time.RFC3339), subjectID, testID)
	if err != nil {
		return fmt.Errorf("stamp first exposure: %w", err)
	}

	return tx.Commit()
}

func (r *ParticipantRepository) AppendConversion(ctx context.Context, subjectID, testID string, c domain.Conversion) error {
	payload, err := marshalPayload(c.Properties)
	if err != nil {
		return fmt.Errorf("marshal conversion properties: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin conversion tx: %w", err)
	}
	defer tx.Rollback()

	if err := requireParticipant(ctx, tx, subjectID, testID); err != nil {
		return err
	}

	var value sql.NullFloat64
	if c.Value != nil {
		value = sql.NullFloat64{Float64: *c.Value, Valid: true}
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO participant_events (subject_id, test_id, kind, timestamp, event, value, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, subjectID, testID, eventKindConversion, c.Timestamp.Format(time.RFC3339), c.Event, value, payload)
	if err != nil {
		return fmt.Errorf("insert conversion: %w", err)
	}

	return tx.Commit()
}

// MergeMetrics reads, merges and rewrites the metrics JSON inside one
// transaction so concurrent deltas do not drop each other's updates.
func (r *ParticipantRepository) MergeMetrics(ctx context.Context, subjectID, testID string, d domain.MetricsDelta) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin metrics tx: %w", err)
	}
	defer tx.Rollback()

	var metricsJSON string
	err = tx.QueryRowContext(ctx, `
		SELECT metrics FROM participants WHERE subject_id = ? AND test_id = ?
	`, subjectID, testID).Scan(&metricsJSON)
	if err == sql.ErrNoRows {
		return domain.ErrParticipantNotFound
	}
	if err != nil {
		return fmt.Errorf("read metrics: %w", err)
	}

	var metrics domain.ParticipantMetrics
	if err := json.Unmarshal([]byte(metricsJSON), &metrics); err != nil {
		return fmt.Errorf("unmarshal metrics: %w", err)
	}
	metrics.Merge(d)

	merged, err := json.Marshal(metrics)
	if err != nil {
		return fmt.Errorf("marshal metrics: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE participants SET metrics = ? WHERE subject_id = ? AND test_id = ?
	`, string(merged), subjectID, testID)
	if err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}

	return tx.Commit()
}

func (r *ParticipantRepository) ListByTest(ctx context.Context, testID string) ([]*domain.Participant, error) {
	return database.WithRetry(ctx, 2, func() ([]*domain.Participant, error) {
		rows, err := r.db.QueryContext(ctx, `
			SELECT subject_id, test_id, variant_id, assigned_at, first_exposure, metrics
			FROM participants WHERE test_id = ? ORDER BY subject_id
		`, testID)
		if err != nil {
			return nil, fmt.Errorf("query participants: %w", err)
		}
		defer rows.Close()

		var participants []*domain.Participant
		for rows.Next() {
			p, err := scanParticipant(rows)
			if err != nil {
				return nil, fmt.Errorf("scan participant: %w", err)
			}
			participants = append(participants, p)
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}

		for _, p := range participants {
			if err := r.loadEvents(ctx, p); err != nil {
				return nil, err
			}
		}
		return participants, nil
	})
}

func (r *ParticipantRepository) loadEvents(ctx context.Context, p *domain.Participant) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT kind, timestamp, feature, event, variant_id, value, payload
		FROM participant_events
		WHERE subject_id = ? AND test_id = ?
		ORDER BY id
	`, p.SubjectID, p.TestID)
	if err != nil {
		return fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			kind, timestamp, feature, event, variantID string
			value                                      sql.NullFloat64
			payload                                    string
		)
		if err := rows.Scan(&kind, &timestamp, &feature, &event, &variantID, &value, &payload); err != nil {
			return fmt.Errorf("scan event: %w", err)
		}

		ts, _ := time.Parse(time.RFC3339, timestamp)
		switch kind {
		case eventKindExposure:
			exposure := domain.Exposure{Timestamp: ts, Feature: feature, VariantID: variantID}
			if err := unmarshalPayload(payload, &exposure.Context); err != nil {
				return fmt.Errorf("unmarshal exposure context: %w", err)
			}
			p.Exposures = append(p.Exposures, exposure)
		case eventKindConversion:
			conversion := domain.Conversion{Timestamp: ts, Event: event}
			if value.Valid {
				v := value.Float64
				conversion.Value = &v
			}
			if err := unmarshalPayload(payload, &conversion.Properties); err != nil {
				return fmt.Errorf("unmarshal conversion properties: %w", err)
			}
			p.Conversions = append(p.Conversions, conversion)
		}
	}
	return rows.Err()
}

func requireParticipant(ctx context.Context, tx *sql.Tx, subjectID, testID string) error {
	var one int
	err := tx.QueryRowContext(ctx, `
		SELECT 1 FROM participants WHERE subject_id = ? AND test_id = ?
	`, subjectID, testID).Scan(&one)
	if err == sql.ErrNoRows {
		return domain.ErrParticipantNotFound
	}
	if err != nil {
		return fmt.Errorf("check participant: %w", err)
	}
	return nil
}

func scanParticipant(row rowScanner) (*domain.Participant, error) {
	var (
		p             domain.Participant
		assignedAt    string
		firstExposure sql.NullString
		metricsJSON   string
	)
	err := row.Scan(&p.SubjectID, &p.TestID, &p.VariantID, &assignedAt, &firstExposure, &metricsJSON)
	if err != nil {
		return nil, err
	}

	p.AssignedAt, _ = time.Parse(time.RFC3339, assignedAt)
	if firstExposure.Valid {
		t, _ := time.Parse(time.RFC3339, firstExposure.String)
		p.FirstExposure = &t
	}
	if err := json.Unmarshal([]byte(metricsJSON), &p.Metrics); err != nil {
		return nil, fmt.Errorf("unmarshal metrics: %w", err)
	}
	return &p, nil
}

func marshalPayload(m map[string]any) (string, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshalPayload(payload string, dst *map[string]any) error {
	if payload == "" || payload == "{}" {
		return nil
	}
	return json.Unmarshal([]byte(payload), dst)
}
