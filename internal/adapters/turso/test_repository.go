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

// TestRepository persists test definitions in libsql. Variants and audience
// rules are stored as JSON columns so the schema stays stable while the
// definition shape evolves.
type TestRepository struct {
	db *sql.DB
}

func NewTestRepository(db *sql.DB) *TestRepository {
	return &TestRepository{db: db}
}

const testColumns = `id, name, description, status, start_date, end_date, traffic_allocation,
	variants, target_audience, primary_metric, secondary_metrics, minimum_sample_size, created_at`

func (r *TestRepository) Create(ctx context.Context, test *domain.Test) error {
	variants, audience, secondary, err := marshalTestColumns(test)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO tests (` + testColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		test.ID,
		test.Name,
		test.Description,
		string(test.Status),
		test.StartDate.Format(time.RFC3339),
		nullTime(test.EndDate),
		test.TrafficAllocation,
		variants,
		audience,
		string(test.PrimaryMetric),
		secondary,
		test.MinimumSampleSize,
		test.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert test: %w", err)
	}
	return nil
}

func (r *TestRepository) GetByID(ctx context.Context, id string) (*domain.Test, error) {
	return database.WithRetry(ctx, 2, func() (*domain.Test, error) {
		row := r.db.QueryRowContext(ctx, `SELECT `+testColumns+` FROM tests WHERE id = ?`, id)
		test, err := scanTest(row)
		if err == sql.ErrNoRows {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("get test: %w", err)
		}
		return test, nil
	})
}

func (r *TestRepository) List(ctx context.Context) ([]*domain.Test, error) {
	return r.queryTests(ctx, `SELECT `+testColumns+` FROM tests ORDER BY created_at, id`)
}

func (r *TestRepository) ListByStatus(ctx context.Context, status domain.TestStatus) ([]*domain.Test, error) {
	return r.queryTests(ctx, `SELECT `+testColumns+` FROM tests WHERE status = ? ORDER BY created_at, id`, string(status))
}

func (r *TestRepository) Update(ctx context.Context, test *domain.Test) error {
	variants, audience, secondary, err := marshalTestColumns(test)
	if err != nil {
		return err
	}

	query := `
		UPDATE tests SET
			name = ?, description = ?, status = ?, start_date = ?, end_date = ?,
			traffic_allocation = ?, variants = ?, target_audience = ?,
			primary_metric = ?, secondary_metrics = ?, minimum_sample_size = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		test.Name,
		test.Description,
		string(test.Status),
		test.StartDate.Format(time.RFC3339),
		nullTime(test.EndDate),
		test.TrafficAllocation,
		variants,
		audience,
		string(test.PrimaryMetric),
		secondary,
		test.MinimumSampleSize,
		test.ID,
	)
	if err != nil {
		return fmt.Errorf("update test: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update test: %w", err)
	}
	if affected == 0 {
		return domain.ErrTestNotFound
	}
	return nil
}

func (r *TestRepository) queryTests(ctx context.Context, query string, args ...any) ([]*domain.Test, error) {
	return database.WithRetry(ctx, 2, func() ([]*domain.Test, error) {
		rows, err := r.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("query tests: %w", err)
		}
		defer rows.Close()

		var tests []*domain.Test
		for rows.Next() {
			test, err := scanTest(rows)
			if err != nil {
				return nil, fmt.Errorf("scan test: %w", err)
			}
			tests = append(tests, test)
		}
		return tests, rows.Err()
	})
}

func marshalTestColumns(test *domain.Test) (variants, audience, secondary string, err error) {
	variantsJSON, err := json.Marshal(test.Variants)
	if err != nil {
		return "", "", "", fmt.Errorf("marshal variants: %w", err)
	}
	audienceJSON, err := json.Marshal(test.TargetAudience)
	if err != nil {
		return "", "", "", fmt.Errorf("marshal target audience: %w", err)
	}
	metrics := test.SecondaryMetrics
	if metrics == nil {
		metrics = []string{}
	}
	secondaryJSON, err := json.Marshal(metrics)
	if err != nil {
		return "", "", "", fmt.Errorf("marshal secondary metrics: %w", err)
	}
	return string(variantsJSON), string(audienceJSON), string(secondaryJSON), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTest(row rowScanner) (*domain.Test, error) {
	var (
		test          domain.Test
		status        string
		startDate     string
		endDate       sql.NullString
		variants      string
		audience      string
		primaryMetric string
		secondary     string
		createdAt     string
	)
	err := row.Scan(
		&test.ID,
		&test.Name,
		&test.Description,
		&status,
		&startDate,
		&endDate,
		&test.TrafficAllocation,
		&variants,
		&audience,
		&primaryMetric,
		&secondary,
		&test.MinimumSampleSize,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	test.Status = domain.TestStatus(status)
	test.PrimaryMetric = domain.PrimaryMetric(primaryMetric)
	test.StartDate, _ = time.Parse(time.RFC3339, startDate)
	test.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if endDate.Valid {
		t, _ := time.Parse(time.RFC3339, endDate.String)
		test.EndDate = &t
	}
	if err := json.Unmarshal([]byte(variants), &test.Variants); err != nil {
		return nil, fmt.Errorf("unmarshal variants: %w", err)
	}
	if err := json.Unmarshal([]byte(audience), &test.TargetAudience); err != nil {
		return nil, fmt.Errorf("unmarshal target audience: %w", err)
	}
	if err := json.Unmarshal([]byte(secondary), &test.SecondaryMetrics); err != nil {
		return nil, fmt.Errorf("unmarshal secondary metrics: %w", err)
	}
	return &test, nil
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(time.RFC3339), Valid: true}
}
