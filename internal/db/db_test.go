package db

import (
	"path/filepath"
	"testing"
	"time"
)

func TestInitCreatesSchema(t *testing.T) {
	dir := t.TempDir()
	database, err := Init(dir)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer database.Close()

	version, err := GetUserVersion(database)
	if err != nil {
		t.Fatalf("GetUserVersion: %v", err)
	}
	if version != CurrentSchemaVersion {
		t.Errorf("user_version = %d, want %d", version, CurrentSchemaVersion)
	}

	if _, err := database.Exec(`SELECT id FROM runs LIMIT 1`); err != nil {
		t.Errorf("runs table missing: %v", err)
	}
	if _, err := database.Exec(`SELECT path FROM run_files LIMIT 1`); err != nil {
		t.Errorf("run_files table missing: %v", err)
	}
}

func TestInitIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	first, err := Init(dir)
	if err != nil {
		t.Fatalf("first Init: %v", err)
	}
	first.Close()

	second, err := Init(dir)
	if err != nil {
		t.Fatalf("second Init: %v", err)
	}
	second.Close()

	if _, err := filepath.Glob(filepath.Join(dir, "nbtidy.db")); err != nil {
		t.Fatalf("db file: %v", err)
	}
}

func TestRecordAndRecentRuns(t *testing.T) {
	database, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer database.Close()

	now := time.Now().Unix()
	runs := []*Run{
		{ID: "01RUNA", Root: ".", Mode: "sanitize", Checked: 3, Modified: 2, CreatedAt: now - 10, Paths: []string{"b.ipynb", "a.ipynb"}},
		{ID: "01RUNB", Root: "docs", Mode: "check", Strip: true, Checked: 1, Modified: 0, CreatedAt: now},
	}
	for _, r := range runs {
		if err := RecordRun(database, r); err != nil {
			t.Fatalf("RecordRun(%s): %v", r.ID, err)
		}
	}

	got, err := RecentRuns(database, 10)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(runs) = %d, want 2", len(got))
	}
	// newest first
	if got[0].ID != "01RUNB" {
		t.Errorf("runs[0].ID = %q, want 01RUNB", got[0].ID)
	}
	if !got[0].Strip {
		t.Error("runs[0].Strip = false, want true")
	}
	if got[1].Modified != 2 {
		t.Errorf("runs[1].Modified = %d, want 2", got[1].Modified)
	}
	// paths come back sorted
	if len(got[1].Paths) != 2 || got[1].Paths[0] != "a.ipynb" {
		t.Errorf("runs[1].Paths = %v, want sorted paths", got[1].Paths)
	}
}

func TestRecentRunsLimit(t *testing.T) {
	database, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer database.Close()

	for i := 0; i < 5; i++ {
		run := &Run{
			ID:        string(rune('A' + i)),
			Root:      ".",
			Mode:      "sanitize",
			CreatedAt: int64(1000 + i),
		}
		if err := RecordRun(database, run); err != nil {
			t.Fatalf("RecordRun: %v", err)
		}
	}

	got, err := RecentRuns(database, 2)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("len(runs) = %d, want 2", len(got))
	}
}
