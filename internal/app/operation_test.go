package app

import "testing"

func TestNewOperation(t *testing.T) {
	op := NewOperation("Track", "/a.txt")

	if op.ID == "" {
		t.Error("expected a generated ID")
	}
	if op.Operation != "Track" || op.Parameters != "/a.txt" {
		t.Errorf("unexpected fields: %+v", op)
	}
	if op.Status != "success" {
		t.Errorf("Status = %q, want success", op.Status)
	}
	if op.StartedAt.IsZero() {
		t.Error("expected StartedAt to be set")
	}
	if op.Persisted() {
		t.Error("expected a fresh operation to be unpersisted")
	}

	op.MarkPersisted()
	if !op.Persisted() {
		t.Error("expected MarkPersisted to stick")
	}
}

func TestOperationIDsAreUnique(t *testing.T) {
	a := NewOperation("ScanAll", "")
	b := NewOperation("ScanAll", "")
	if a.ID == b.ID {
		t.Errorf("expected distinct IDs, both %q", a.ID)
	}
}
