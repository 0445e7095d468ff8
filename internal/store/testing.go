package store

import "testing"

// NewTestStore opens a migrated in-memory Store that is closed when the test ends.
// This is only intended for use in tests.
func NewTestStore(t testing.TB) *Store {
	t.Helper()

	s, err := OpenPath(":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}
