package chroni_test

import (
	"testing"
)

func TestTrackFile(t *testing.T) {
	svc, _, fsmgr, _ := newTestService(t)
	fsmgr.AddFile("/home/user/notes.txt", "hello\n")

	tracked, err := svc.Track("/home/user/notes.txt")
	if err != nil {
		t.Fatalf("Track failed: %v", err)
	}
	if !tracked {
		t.Error("expected Track to report newly tracked")
	}

	paths, err := svc.ListTracked()
	if err != nil {
		t.Fatalf("ListTracked failed: %v", err)
	}
	if len(paths) != 1 || paths[0] != "/home/user/notes.txt" {
		t.Errorf("unexpected tracked paths: %v", paths)
	}
}

func TestTrackAlreadyTracked(t *testing.T) {
	svc, _, fsmgr, _ := newTestService(t)
	fsmgr.AddFile("/a.txt", "x\n")

	if _, err := svc.Track("/a.txt"); err != nil {
		t.Fatalf("Track failed: %v", err)
	}
	tracked, err := svc.Track("/a.txt")
	if err != nil {
		t.Fatalf("second Track failed: %v", err)
	}
	if tracked {
		t.Error("expected second Track to report already tracked")
	}
}

func TestTrackDirectoryFansOut(t *testing.T) {
	svc, _, fsmgr, _ := newTestService(t)
	fsmgr.AddFile("/proj/a.txt", "a\n")
	fsmgr.AddFile("/proj/sub/b.txt", "b\n")

	if _, err := svc.Track("/proj"); err != nil {
		t.Fatalf("Track failed: %v", err)
	}

	paths, err := svc.ListTracked()
	if err != nil {
		t.Fatalf("ListTracked failed: %v", err)
	}
	want := []string{"/proj", "/proj/a.txt", "/proj/sub/b.txt"}
	if len(paths) != len(want) {
		t.Fatalf("got %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("paths[%d] = %q, want %q", i, paths[i], want[i])
		}
	}
}

func TestUntrackKeepsHistory(t *testing.T) {
	svc, db, fsmgr, _ := newTestService(t)
	fsmgr.AddFile("/a.txt", "v1\n")

	if _, err := svc.Track("/a.txt"); err != nil {
		t.Fatalf("Track failed: %v", err)
	}
	if _, err := svc.ScanAll(); err != nil {
		t.Fatalf("ScanAll failed: %v", err)
	}

	ok, err := svc.Untrack("/a.txt")
	if err != nil {
		t.Fatalf("Untrack failed: %v", err)
	}
	if !ok {
		t.Error("expected Untrack to report success")
	}

	paths, err := svc.ListTracked()
	if err != nil {
		t.Fatalf("ListTracked failed: %v", err)
	}
	if len(paths) != 0 {
		t.Errorf("expected no tracked paths, got %v", paths)
	}

	// History must survive untracking.
	latest, err := db.LatestVersion("/a.txt")
	if err != nil {
		t.Fatalf("LatestVersion failed: %v", err)
	}
	if latest == nil {
		t.Fatal("expected version history to survive untrack")
	}
}

func TestUntrackNotTracked(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	ok, err := svc.Untrack("/never-tracked.txt")
	if err != nil {
		t.Fatalf("Untrack failed: %v", err)
	}
	if ok {
		t.Error("expected Untrack of unknown path to report false")
	}
}

func TestForgetErasesEverything(t *testing.T) {
	svc, db, fsmgr, _ := newTestService(t)
	fsmgr.AddFile("/a.txt", "v1\n")

	if _, err := svc.Track("/a.txt"); err != nil {
		t.Fatalf("Track failed: %v", err)
	}
	if _, err := svc.ScanAll(); err != nil {
		t.Fatalf("ScanAll failed: %v", err)
	}
	if _, err := svc.CreateSnapshot("before", ""); err != nil {
		t.Fatalf("CreateSnapshot failed: %v", err)
	}

	ok, err := svc.Forget("/a.txt")
	if err != nil {
		t.Fatalf("Forget failed: %v", err)
	}
	if !ok {
		t.Error("expected Forget to report success")
	}

	latest, err := db.LatestVersion("/a.txt")
	if err != nil {
		t.Fatalf("LatestVersion failed: %v", err)
	}
	if latest != nil {
		t.Error("expected version history to be gone")
	}

	entries, err := db.SnapshotEntries("before")
	if err != nil {
		t.Fatalf("SnapshotEntries failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected snapshot entries to be purged, got %v", entries)
	}
}

func TestForgetUnknownPath(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	ok, err := svc.Forget("/unknown.txt")
	if err != nil {
		t.Fatalf("Forget failed: %v", err)
	}
	if ok {
		t.Error("expected Forget of unknown path to report false")
	}
}

func TestRetrackAfterUntrack(t *testing.T) {
	svc, _, fsmgr, _ := newTestService(t)
	fsmgr.AddFile("/a.txt", "x\n")

	if _, err := svc.Track("/a.txt"); err != nil {
		t.Fatalf("Track failed: %v", err)
	}
	if _, err := svc.Untrack("/a.txt"); err != nil {
		t.Fatalf("Untrack failed: %v", err)
	}

	tracked, err := svc.Track("/a.txt")
	if err != nil {
		t.Fatalf("re-Track failed: %v", err)
	}
	if !tracked {
		t.Error("expected re-Track to report newly tracked")
	}
}
