package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/swiftcart/checkout/internal/checkout/lifecyclelog"
)

func openTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := Open(filepath.Join(t.TempDir(), "lifecycle.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSaveAndListByOrder(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	stages := []lifecyclelog.Stage{
		lifecyclelog.StageSessionRequested,
		lifecyclelog.StageAwaitingGateway,
		lifecyclelog.StageVerifying,
		lifecyclelog.StageConfirmed,
	}
	for i, stage := range stages {
		err := repo.Save(ctx, &lifecyclelog.Entry{
			EntryID:    uuid.NewString(),
			OrderID:    "ORD-1",
			Stage:      stage,
			Detail:     "detail " + string(stage),
			TraceID:    "4bf92f3577b34da6a3ce929d0e0e4736",
			SpanID:     "00f067aa0ba902b7",
			RecordedAt: base.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("Save %s: %v", stage, err)
		}
	}

	// A row for another order must not leak into the listing.
	err := repo.Save(ctx, &lifecyclelog.Entry{
		EntryID:    uuid.NewString(),
		OrderID:    "ORD-2",
		Stage:      lifecyclelog.StageSessionRequested,
		RecordedAt: base,
	})
	if err != nil {
		t.Fatalf("Save other order: %v", err)
	}

	got, err := repo.ListByOrder(ctx, "ORD-1")
	if err != nil {
		t.Fatalf("ListByOrder: %v", err)
	}
	if len(got) != len(stages) {
		t.Fatalf("entries = %d, want %d", len(got), len(stages))
	}
	for i, e := range got {
		if e.Stage != stages[i] {
			t.Errorf("entries[%d].Stage = %s, want %s", i, e.Stage, stages[i])
		}
		if !e.RecordedAt.Equal(base.Add(time.Duration(i) * time.Second)) {
			t.Errorf("entries[%d].RecordedAt = %v", i, e.RecordedAt)
		}
	}
	if got[0].TraceID != "4bf92f3577b34da6a3ce929d0e0e4736" || got[0].SpanID != "00f067aa0ba902b7" {
		t.Errorf("trace correlation lost: %+v", got[0])
	}
}

func TestListByOrderEmpty(t *testing.T) {
	repo := openTestRepo(t)

	got, err := repo.ListByOrder(context.Background(), "ORD-none")
	if err != nil {
		t.Fatalf("ListByOrder: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("entries = %d, want 0", len(got))
	}
}

func TestSaveDuplicateEntryID(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	e := &lifecyclelog.Entry{
		EntryID:    uuid.NewString(),
		OrderID:    "ORD-1",
		Stage:      lifecyclelog.StageVerifying,
		RecordedAt: time.Now(),
	}
	if err := repo.Save(ctx, e); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := repo.Save(ctx, e); err == nil {
		t.Error("second save of same entry id succeeded, want primary key violation")
	}
}
