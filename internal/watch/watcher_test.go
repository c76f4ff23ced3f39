package watch_test

import (
	"context"
	"testing"
	"time"

	"chroni/internal/chroni"
	"chroni/internal/diff"
	"chroni/internal/testutil"
	"chroni/internal/watch"
)

func TestWatchRoots(t *testing.T) {
	fsmgr := testutil.NewMockFilesystem()
	fsmgr.AddFile("/proj/a.txt", "a\n")
	fsmgr.AddFile("/proj/sub/b.txt", "b\n")
	fsmgr.AddFile("/notes/todo.txt", "t\n")

	paths := []string{"/proj", "/proj/a.txt", "/proj/sub/b.txt", "/notes/todo.txt"}
	roots := watch.WatchRoots(paths, fsmgr)

	want := []string{"/proj", "/proj/sub", "/notes"}
	if len(roots) != len(want) {
		t.Fatalf("got %v, want %v", roots, want)
	}
	for i := range want {
		if roots[i] != want[i] {
			t.Errorf("roots[%d] = %q, want %q", i, roots[i], want[i])
		}
	}
}

func TestWatchRootsSkipsMissingPaths(t *testing.T) {
	fsmgr := testutil.NewMockFilesystem()
	fsmgr.AddFile("/a/one.txt", "x\n")

	roots := watch.WatchRoots([]string{"/a/one.txt", "/gone/two.txt"}, fsmgr)
	if len(roots) != 1 || roots[0] != "/a" {
		t.Errorf("got %v, want [/a]", roots)
	}
}

func TestRunRequiresTrackedPaths(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	fsmgr := testutil.NewMockFilesystem()
	svc := chroni.NewService(db, fsmgr, diff.NewCodec(), chroni.NewNopLogger(), testutil.FixedClock())

	w := watch.New(svc, fsmgr, chroni.NewNopLogger())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := w.Run(ctx); err == nil {
		t.Error("expected an error when nothing is tracked")
	}
}
