package audit

import (
	"path/filepath"
	"testing"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(":memory:")
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRecordAndList(t *testing.T) {
	db := newTestDB(t)

	actions := []struct{ actor, action, detail string }{
		{"10.0.0.1:5000", "set_emergency_stop", "true"},
		{"10.0.0.1:5000", "set_motor_status", "left_hip=warning"},
		{"system", "reset", ""},
	}
	for _, a := range actions {
		if err := db.RecordAction(a.actor, a.action, a.detail); err != nil {
			t.Fatalf("RecordAction(%q): %v", a.action, err)
		}
	}

	entries, err := db.RecentActions(10)
	if err != nil {
		t.Fatalf("RecentActions: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	// Newest first.
	if entries[0].Action != "reset" || entries[2].Action != "set_emergency_stop" {
		t.Errorf("wrong order: %+v", entries)
	}
	if entries[1].Detail != "left_hip=warning" {
		t.Errorf("detail = %q", entries[1].Detail)
	}
	for _, e := range entries {
		if e.Timestamp.IsZero() {
			t.Errorf("entry %q has zero timestamp", e.Action)
		}
	}
}

func TestRecentActionsLimit(t *testing.T) {
	db := newTestDB(t)
	for i := 0; i < 20; i++ {
		if err := db.RecordAction("system", "tick", ""); err != nil {
			t.Fatalf("RecordAction: %v", err)
		}
	}

	entries, err := db.RecentActions(5)
	if err != nil {
		t.Fatalf("RecentActions: %v", err)
	}
	if len(entries) != 5 {
		t.Errorf("got %d entries, want 5", len(entries))
	}

	// A nonsense limit falls back to the default instead of failing.
	entries, err = db.RecentActions(-1)
	if err != nil {
		t.Fatalf("RecentActions(-1): %v", err)
	}
	if len(entries) != 20 {
		t.Errorf("got %d entries with default limit, want 20", len(entries))
	}
}

func TestEmptyLog(t *testing.T) {
	db := newTestDB(t)
	entries, err := db.RecentActions(10)
	if err != nil {
		t.Fatalf("RecentActions: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("got %d entries from empty log", len(entries))
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")

	db, err := NewDB(path)
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	if err := db.RecordAction("system", "reset", ""); err != nil {
		t.Fatalf("RecordAction: %v", err)
	}
	db.Close()

	db, err = NewDB(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	entries, err := db.RecentActions(10)
	if err != nil {
		t.Fatalf("RecentActions: %v", err)
	}
	if len(entries) != 1 || entries[0].Action != "reset" {
		t.Errorf("entries after reopen: %+v", entries)
	}
}
