package memory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/AFA55/pontifex-industries-sub002/internal/adapters/memory"
	"github.com/AFA55/pontifex-industries-sub002/internal/domain"
)

func sampleTest(id string, created time.Time) *domain.Test {
	return &domain.Test{
		ID:     id,
		Name:   "test " + id,
		Status: domain.TestStatusDraft,
		Variants: []domain.Variant{
			{ID: "control", Name: "Control", TrafficSplit: 50, IsControl: true, Config: map[string]any{"enabled": false}},
			{ID: "treatment", Name: "Treatment", TrafficSplit: 50, Config: map[string]any{"enabled": true}},
		},
		TrafficAllocation: 100,
		PrimaryMetric:     domain.MetricConversion,
		CreatedAt:         created,
	}
}

func TestTestRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewTestRepository()

	missing, err := repo.GetByID(ctx, "nope")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown id, got %+v", missing)
	}

	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	if err := repo.Create(ctx, sampleTest("t1", created)); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByID(ctx, "t1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil || got.Name != "test t1" {
		t.Fatalf("unexpected test: %+v", got)
	}

	got.Status = domain.TestStatusActive
	if err := repo.Update(ctx, got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	updated, _ := repo.GetByID(ctx, "t1")
	if updated.Status != domain.TestStatusActive {
		t.Fatalf("status = %q, want active", updated.Status)
	}
}

func TestTestRepositoryUpdateUnknown(t *testing.T) {
	repo := memory.NewTestRepository()
	err := repo.Update(context.Background(), sampleTest("ghost", time.Now()))
	if err != domain.ErrTestNotFound {
		t.Fatalf("err = %v, want ErrTestNotFound", err)
	}
}

func TestTestRepositoryListOrdering(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewTestRepository()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	// Insert out of order; List must come back oldest first.
	_ = repo.Create(ctx, sampleTest("b", base.Add(time.Hour)))
	_ = repo.Create(ctx, sampleTest("c", base.Add(time.Hour)))
	_ = repo.Create(ctx, sampleTest("a", base))

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var ids []string
	for _, tt := range all {
		ids = append(ids, tt.ID)
	}
	want := []string{"a", "b", "c"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids = %v, want %v", ids, want)
		}
	}
}

func TestTestRepositoryListByStatus(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewTestRepository()
	base := time.Now().UTC()

	active := sampleTest("active", base)
	active.Status = domain.TestStatusActive
	_ = repo.Create(ctx, active)
	_ = repo.Create(ctx, sampleTest("draft", base))

	got, err := repo.ListByStatus(ctx, domain.TestStatusActive)
	if err != nil {
		t.Fatalf("ListByStatus: %v", err)
	}
	if len(got) != 1 || got[0].ID != "active" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestTestRepositoryIsolation(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewTestRepository()
	in := sampleTest("t1", time.Now().UTC())
	_ = repo.Create(ctx, in)

	// Mutating the input or a read copy must not leak into the store.
	in.Variants[0].Config["enabled"] = true
	first, _ := repo.GetByID(ctx, "t1")
	first.Variants[1].TrafficSplit = 99

	fresh, _ := repo.GetByID(ctx, "t1")
	if fresh.Variants[0].Config["enabled"] != false {
		t.Fatal("stored variant config mutated through caller reference")
	}
	if fresh.Variants[1].TrafficSplit != 50 {
		t.Fatal("stored variant split mutated through read copy")
	}
}

func sampleParticipant(subjectID, testID string) *domain.Participant {
	return &domain.Participant{
		SubjectID:  subjectID,
		TestID:     testID,
		VariantID:  "control",
		AssignedAt: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	}
}

func TestParticipantInsertIfAbsent(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewParticipantRepository()

	stored, created, err := repo.InsertIfAbsent(ctx, sampleParticipant("user-1", "t1"))
	if err != nil {
		t.Fatalf("InsertIfAbsent: %v", err)
	}
	if !created || stored.VariantID != "control" {
		t.Fatalf("created=%v stored=%+v", created, stored)
	}

	second := sampleParticipant("user-1", "t1")
	second.VariantID = "treatment"
	stored, created, err = repo.InsertIfAbsent(ctx, second)
	if err != nil {
		t.Fatalf("InsertIfAbsent: %v", err)
	}
	if created {
		t.Fatal("second insert reported created")
	}
	if stored.VariantID != "control" {
		t.Fatalf("stored variant = %q, want original assignment", stored.VariantID)
	}
}

func TestParticipantInsertIfAbsentConcurrent(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewParticipantRepository()

	const workers = 100
	var wg sync.WaitGroup
	createdCount := make(chan bool, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, created, err := repo.InsertIfAbsent(ctx, sampleParticipant("user-1", "t1"))
			if err != nil {
				t.Errorf("InsertIfAbsent: %v", err)
				return
			}
			createdCount <- created
		}()
	}
	wg.Wait()
	close(createdCount)

	total := 0
	for created := range createdCount {
		if created {
			total++
		}
	}
	if total != 1 {
		t.Fatalf("created %d participants for one key, want exactly 1", total)
	}
}

func TestParticipantEventsAndMetrics(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewParticipantRepository()
	_, _, _ = repo.InsertIfAbsent(ctx, sampleParticipant("user-1", "t1"))

	first := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	if err := repo.AppendExposure(ctx, "user-1", "t1", domain.Exposure{Timestamp: first, Feature: "checkout", VariantID: "control"}); err != nil {
		t.Fatalf("AppendExposure: %v", err)
	}
	if err := repo.AppendExposure(ctx, "user-1", "t1", domain.Exposure{Timestamp: first.Add(time.Minute), Feature: "checkout", VariantID: "control"}); err != nil {
		t.Fatalf("AppendExposure: %v", err)
	}

	value := 12.5
	if err := repo.AppendConversion(ctx, "user-1", "t1", domain.Conversion{Timestamp: first.Add(2 * time.Minute), Event: "purchase", Value: &value}); err != nil {
		t.Fatalf("AppendConversion: %v", err)
	}
	if err := repo.MergeMetrics(ctx, "user-1", "t1", domain.MetricsDelta{SessionCount: 2, SatisfactionRatings: []float64{8}}); err != nil {
		t.Fatalf("MergeMetrics: %v", err)
	}

	p, err := repo.Get(ctx, "user-1", "t1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(p.Exposures) != 2 || len(p.Conversions) != 1 {
		t.Fatalf("events = %d exposures %d conversions", len(p.Exposures), len(p.Conversions))
	}
	if p.FirstExposure == nil || !p.FirstExposure.Equal(first) {
		t.Fatalf("FirstExposure = %v, want %v", p.FirstExposure, first)
	}
	if p.Metrics.SessionCount != 2 || len(p.Metrics.SatisfactionRatings) != 1 {
		t.Fatalf("metrics not merged: %+v", p.Metrics)
	}
}

func TestParticipantEventsUnknownKey(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewParticipantRepository()

	if err := repo.AppendExposure(ctx, "ghost", "t1", domain.Exposure{}); err != domain.ErrParticipantNotFound {
		t.Fatalf("AppendExposure err = %v, want ErrParticipantNotFound", err)
	}
	if err := repo.AppendConversion(ctx, "ghost", "t1", domain.Conversion{}); err != domain.ErrParticipantNotFound {
		t.Fatalf("AppendConversion err = %v, want ErrParticipantNotFound", err)
	}
	if err := repo.MergeMetrics(ctx, "ghost", "t1", domain.MetricsDelta{}); err != domain.ErrParticipantNotFound {
		t.Fatalf("MergeMetrics err = %v, want ErrParticipantNotFound", err)
	}
}

func TestParticipantListByTest(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewParticipantRepository()
	_, _, _ = repo.InsertIfAbsent(ctx, sampleParticipant("user-b", "t1"))
	_, _, _ = repo.InsertIfAbsent(ctx, sampleParticipant("user-a", "t1"))
	_, _, _ = repo.InsertIfAbsent(ctx, sampleParticipant("user-c", "t2"))

	got, err := repo.ListByTest(ctx, "t1")
	if err != nil {
		t.Fatalf("ListByTest: %v", err)
	}
	if len(got) != 2 || got[0].SubjectID != "user-a" || got[1].SubjectID != "user-b" {
		t.Fatalf("unexpected listing: %+v", got)
	}
}
