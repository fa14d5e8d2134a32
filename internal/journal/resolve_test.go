package journal

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func version(ts int64, person string) Version {
	return Version{Person: StringPtr(person), UpdatedAt: ts}
}

func TestResolve_NoStoredVersionCreates(t *testing.T) {
	incoming := version(100, "A")

	outcome, result := Resolve(nil, incoming)

	assert.Equal(t, OutcomeCreated, outcome)
	assert.Empty(t, cmp.Diff(incoming, result))
}

func TestResolve_NewerIncomingWins(t *testing.T) {
	stored := version(50, "B")
	incoming := version(100, "A")

	outcome, result := Resolve(&stored, incoming)

	assert.Equal(t, OutcomeUpdated, outcome)
	assert.Empty(t, cmp.Diff(incoming, result))
}

func TestResolve_StaleIncomingIsNoOp(t *testing.T) {
	stored := version(100, "A")
	incoming := version(50, "B")

	outcome, result := Resolve(&stored, incoming)

	assert.Equal(t, OutcomeNoOp, outcome)
	assert.Empty(t, cmp.Diff(stored, result))
}

func TestResolve_EqualTimestampKeepsStored(t *testing.T) {
	stored := version(100, "A")
	incoming := version(100, "B")

	outcome, result := Resolve(&stored, incoming)

	assert.Equal(t, OutcomeNoOp, outcome)
	assert.Empty(t, cmp.Diff(stored, result))
}

// A newer version with explicitly absent fields still replaces the whole
// record; there is no per-field merge.
func TestResolve_WholeRecordReplaceClearsFields(t *testing.T) {
	stored := Version{
		Person:    StringPtr("someone"),
		Grace:     StringPtr("a quiet morning"),
		Gratitude: StringPtr("coffee"),
		UpdatedAt: 50,
	}
	incoming := Version{Person: StringPtr("someone else"), UpdatedAt: 100}

	outcome, result := Resolve(&stored, incoming)

	require.Equal(t, OutcomeUpdated, outcome)
	assert.Nil(t, result.Grace)
	assert.Nil(t, result.Gratitude)
	assert.Equal(t, "someone else", *result.Person)
}

// Applying two versions in either order converges on the higher timestamp.
func TestResolve_OrderIndependentConvergence(t *testing.T) {
	v1 := version(100, "A")
	v2 := version(200, "B")

	apply := func(first, second Version) Version {
		_, after := Resolve(nil, first)
		_, final := Resolve(&after, second)
		return final
	}

	assert.Empty(t, cmp.Diff(apply(v1, v2), apply(v2, v1)))
	assert.Equal(t, int64(200), apply(v1, v2).UpdatedAt)
}

func TestReconcileDisplay(t *testing.T) {
	now := int64(9999)
	syncedEarlier := int64(500)
	local := version(100, "local")
	server := version(50, "server")

	t.Run("both absent", func(t *testing.T) {
		view := ReconcileDisplay(nil, nil, nil, now)
		assert.Nil(t, view.SyncedAt)
		assert.Equal(t, Version{}, view.Version)
	})

	t.Run("local only keeps its marker", func(t *testing.T) {
		view := ReconcileDisplay(&local, &syncedEarlier, nil, now)
		require.NotNil(t, view.SyncedAt)
		assert.Equal(t, syncedEarlier, *view.SyncedAt)
		assert.Equal(t, "local", *view.Version.Person)
	})

	t.Run("server only is synced now", func(t *testing.T) {
		view := ReconcileDisplay(nil, nil, &server, now)
		require.NotNil(t, view.SyncedAt)
		assert.Equal(t, now, *view.SyncedAt)
		assert.Equal(t, "server", *view.Version.Person)
	})

	t.Run("newer local wins and stays unsynced", func(t *testing.T) {
		view := ReconcileDisplay(&local, &syncedEarlier, &server, now)
		assert.Nil(t, view.SyncedAt)
		assert.Equal(t, "local", *view.Version.Person)
		assert.Equal(t, int64(100), view.Version.UpdatedAt)
	})

	t.Run("newer server wins and is synced now", func(t *testing.T) {
		newerServer := version(300, "server")
		view := ReconcileDisplay(&local, nil, &newerServer, now)
		require.NotNil(t, view.SyncedAt)
		assert.Equal(t, now, *view.SyncedAt)
		assert.Equal(t, "server", *view.Version.Person)
	})

	t.Run("tie goes to server", func(t *testing.T) {
		tiedServer := version(100, "server")
		view := ReconcileDisplay(&local, nil, &tiedServer, now)
		require.NotNil(t, view.SyncedAt)
		assert.Equal(t, now, *view.SyncedAt)
		assert.Equal(t, "server", *view.Version.Person)
	})
}
