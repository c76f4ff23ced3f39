package chroni_test

import (
	"testing"

	"chroni/internal/chroni"
	"chroni/internal/diff"
	"chroni/internal/testutil"
)

// newTestService wires a Service to an in-memory database, a mock
// filesystem, the real diff codec, and a stub clock.
func newTestService(t *testing.T) (*chroni.Service, chroni.Database, *testutil.MockFilesystem, *testutil.StubClock) {
	t.Helper()

	db := testutil.NewTestDatabase(t)
	fsmgr := testutil.NewMockFilesystem()
	clock := testutil.FixedClock()
	svc := chroni.NewService(db, fsmgr, diff.NewCodec(), chroni.NewNopLogger(), clock)
	return svc, db, fsmgr, clock
}
