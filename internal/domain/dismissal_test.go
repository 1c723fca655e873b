package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDismissalSet_RecordMembership(t *testing.T) {
	for _, seed := range [][]string{nil, {"x"}, {"x", "y", "z"}} {
		set := NewDismissalSet(seed...)
		updated := set.Record("target")
		require.True(t, updated.Contains("target"))
	}
}

func TestDismissalSet_RecordIsIdempotent(t *testing.T) {
	set := NewDismissalSet("a")
	once := set.Record("b")
	twice := once.Record("b")
	require.Equal(t, once.IDs(), twice.IDs())
}

func TestDismissalSet_RecordDoesNotMutateReceiver(t *testing.T) {
	set := NewDismissalSet("a")
	_ = set.Record("b")
	require.False(t, set.Contains("b"))
}

func TestDismissalSet_DedupesSeedIDs(t *testing.T) {
	set := NewDismissalSet("a", "a", "b", "")
	require.Equal(t, []string{"a", "b"}, set.IDs())
}

func TestDismissalSet_IDsSorted(t *testing.T) {
	set := NewDismissalSet("zulu", "alpha", "mike")
	require.Equal(t, []string{"alpha", "mike", "zulu"}, set.IDs())
}
