package history

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/harrison/maestro/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(":memory:")
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordRun_GeneratesID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.RecordRun(ctx, Run{
		Kind:   KindTask,
		Name:   "pm.track_tasks",
		Status: "success",
	})
	if err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}
	if id == "" {
		t.Fatal("RecordRun should generate a run ID")
	}

	runs, err := store.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	if runs[0].ID != id {
		t.Errorf("listed ID %q, want %q", runs[0].ID, id)
	}
	if runs[0].CreatedAt.IsZero() {
		t.Error("CreatedAt should be populated")
	}
}

func TestRecordTaskRun(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	result := models.FailureResult("research", "analyze_document", "Timeout after 60 seconds", 60.0)
	if _, err := store.RecordTaskRun(ctx, result); err != nil {
		t.Fatalf("RecordTaskRun failed: %v", err)
	}

	runs, err := store.ListRuns(ctx, 1)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	run := runs[0]
	if run.Kind != KindTask {
		t.Errorf("Kind = %q, want %q", run.Kind, KindTask)
	}
	if run.Name != "research.analyze_document" {
		t.Errorf("Name = %q", run.Name)
	}
	if run.Status != "error" || run.StepsFailed != 1 || run.StepsCompleted != 0 {
		t.Errorf("unexpected run: %+v", run)
	}
	if run.Summary["error"] != "Timeout after 60 seconds" {
		t.Errorf("Summary[error] = %v", run.Summary["error"])
	}
}

func TestRecordWorkflowRun(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	results := []models.AgentResult{
		models.SuccessResult("pm", "track_tasks", nil, 1.0),
		models.FailureResult("research", "analyze_document", "boom", 2.0),
	}
	wr := models.NewWorkflowResult("release-check", results, true)
	if _, err := store.RecordWorkflowRun(ctx, wr); err != nil {
		t.Fatalf("RecordWorkflowRun failed: %v", err)
	}

	runs, err := store.ListRuns(ctx, 1)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	run := runs[0]
	if run.Kind != KindWorkflow || run.Name != "release-check" {
		t.Errorf("unexpected run: %+v", run)
	}
	// One failed step makes the whole run an error even when gates pass.
	if run.Status != "error" {
		t.Errorf("Status = %q, want error", run.Status)
	}
	if run.StepsCompleted != 1 || run.StepsFailed != 1 {
		t.Errorf("steps = %d/%d, want 1/1", run.StepsCompleted, run.StepsFailed)
	}
}

func TestListRuns_NewestFirstWithLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := store.RecordRun(ctx, Run{
			Kind:   KindParallel,
			Name:   "batch",
			Status: "success",
		})
		if err != nil {
			t.Fatalf("RecordRun failed: %v", err)
		}
	}

	runs, err := store.ListRuns(ctx, 3)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("got %d runs, want 3", len(runs))
	}
	for i := 1; i < len(runs); i++ {
		if runs[i].CreatedAt.After(runs[i-1].CreatedAt) {
			t.Error("runs should be ordered newest first")
		}
	}
}

func TestPrune_KeepsRecentRuns(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.RecordRun(ctx, Run{Kind: KindTask, Name: "fresh", Status: "success"}); err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}
	// Backdate a second row beyond the retention window.
	if _, err := store.db.ExecContext(ctx, `
		INSERT INTO runs (id, kind, name, status, created_at)
		VALUES ('old-run', 'task', 'stale', 'success', datetime('now', '-120 days'))`); err != nil {
		t.Fatalf("backdated insert failed: %v", err)
	}

	deleted, err := store.Prune(ctx, 90)
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("Prune deleted %d rows, want 1", deleted)
	}

	runs, err := store.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 1 || runs[0].Name != "fresh" {
		t.Errorf("unexpected surviving runs: %+v", runs)
	}
}

func TestNewStore_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "nested", "history.db")

	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	defer store.Close()

	if _, err := store.RecordRun(context.Background(), Run{Kind: KindTask, Name: "x", Status: "success"}); err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}
}
