package idx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/escritorio/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	id := idx.New()

	parsed, err := idx.Parse(" " + id.String() + " ")
	require.NoError(t, err)
	require.Equal(t, id, parsed)

	for _, in := range []string{"", "not-a-ulid", "01HQ7T3Z1MZ0JQ3M6MZQ1FQ3Z"} {
		_, err := idx.Parse(in)
		require.ErrorIs(t, err, idx.ErrInvalid, "input %q", in)
	}
}

func TestIDsSortByCreation(t *testing.T) {
	tm := time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC)

	prev := idx.NewAt(tm.Add(-time.Second))
	for range 50 {
		next := idx.NewAt(tm)
		require.Less(t, prev.String(), next.String())
		prev = next
	}
	require.WithinDuration(t, tm, prev.Time(), time.Millisecond)
	require.True(t, idx.ID("").Time().IsZero())
}
