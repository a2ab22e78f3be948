package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luwen/lingoflash/internal/journal"
)

// NewTestJournal opens an in-memory SQLite journal with migrations applied
// and closes it when the test ends.
func NewTestJournal(t *testing.T) *journal.Journal {
	t.Helper()

	j, err := journal.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, j.Close())
	})
	return j
}
