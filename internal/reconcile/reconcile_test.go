package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIDs(n int) []uuid.UUID {
	ids := make([]uuid.UUID, n)
	for i := range ids {
		ids[i] = uuid.New()
	}
	return ids
}

func TestMergeCoversWholeRoster(t *testing.T) {
	roster := newIDs(5)
	records := map[uuid.UUID]string{
		roster[1]: "PRESENT",
		roster[3]: "ABSENT",
	}

	rows := Merge(roster, records, "PENDING")

	require.Len(t, rows, len(roster))
	for i, row := range rows {
		assert.Equal(t, roster[i], row.EntityID)
	}
	assert.Equal(t, "PENDING", rows[0].Status)
	assert.Equal(t, "PRESENT", rows[1].Status)
	assert.Equal(t, "PENDING", rows[2].Status)
	assert.Equal(t, "ABSENT", rows[3].Status)
	assert.Equal(t, "PENDING", rows[4].Status)
}

func TestMergeEmptyRecords(t *testing.T) {
	roster := newIDs(3)

	rows := Merge(roster, nil, "PENDING")

	require.Len(t, rows, 3)
	for _, row := range rows {
		assert.Equal(t, "PENDING", row.Status)
	}
}

func TestMergeValueStability(t *testing.T) {
	roster := newIDs(3)
	records := map[uuid.UUID]string{roster[0]: "PRESENT", roster[1]: "LATE"}

	first := Merge(roster, records, "PENDING")

	// Changing an unrelated record must not alter the others' values.
	records[roster[2]] = "ABSENT"
	second := Merge(roster, records, "PENDING")

	assert.Equal(t, first[0], second[0])
	assert.Equal(t, first[1], second[1])
	assert.Equal(t, "ABSENT", second[2].Status)
}

func TestTrackerSetStatus(t *testing.T) {
	roster := newIDs(2)
	records := map[uuid.UUID]string{roster[0]: "PRESENT"}
	tracker := NewTracker(roster, records, "PENDING")

	tracker.SetStatus(roster[0], "ABSENT")
	assert.Equal(t, 1, tracker.Len())

	status, ok := tracker.Status(roster[0])
	require.True(t, ok)
	assert.Equal(t, "ABSENT", status)

	// Reverting to the authoritative value removes the entry again.
	tracker.SetStatus(roster[0], "PRESENT")
	assert.Equal(t, 0, tracker.Len())
}

func TestTrackerRevertAfterManyEdits(t *testing.T) {
	roster := newIDs(1)
	records := map[uuid.UUID]string{roster[0]: "PRESENT"}
	tracker := NewTracker(roster, records, "PENDING")

	tracker.SetStatus(roster[0], "ABSENT")
	tracker.SetStatus(roster[0], "LATE")
	tracker.SetStatus(roster[0], "ABSENT")
	tracker.SetStatus(roster[0], "PRESENT")

	assert.Equal(t, 0, tracker.Len())
}

func TestTrackerIgnoresUnknownEntity(t *testing.T) {
	roster := newIDs(1)
	tracker := NewTracker(roster, nil, "PENDING")

	tracker.SetStatus(uuid.New(), "PRESENT")

	assert.Equal(t, 0, tracker.Len())
}

func TestTrackerDefaultCountsAsOriginal(t *testing.T) {
	roster := newIDs(1)
	tracker := NewTracker(roster, nil, "PENDING")

	// Entity has no record; PENDING is its effective original.
	tracker.SetStatus(roster[0], "PENDING")
	assert.Equal(t, 0, tracker.Len())

	tracker.SetStatus(roster[0], "PRESENT")
	assert.Equal(t, 1, tracker.Len())
}

func TestMarkAllOnlyTouchesVisible(t *testing.T) {
	roster := newIDs(4)
	records := map[uuid.UUID]string{roster[3]: "PRESENT"}
	tracker := NewTracker(roster, records, "PENDING")

	visible := roster[:2]
	tracker.MarkAll("PRESENT", visible)

	assert.Equal(t, 2, tracker.Len())

	status, _ := tracker.Status(roster[2])
	assert.Equal(t, "PENDING", status)

	// roster[3] already PRESENT and not visible: untouched either way.
	status, _ = tracker.Status(roster[3])
	assert.Equal(t, "PRESENT", status)
}

func TestMarkAllRemovesRevertedEntries(t *testing.T) {
	roster := newIDs(2)
	records := map[uuid.UUID]string{roster[0]: "PRESENT", roster[1]: "ABSENT"}
	tracker := NewTracker(roster, records, "PENDING")

	tracker.MarkAll("PRESENT", roster)

	// roster[0] was already PRESENT, only roster[1] diverges.
	assert.Equal(t, 1, tracker.Len())
	changes := tracker.Changes()
	require.Len(t, changes, 1)
	assert.Equal(t, roster[1], changes[0].EntityID)
	assert.Equal(t, "PRESENT", changes[0].Status)
}

func TestSubmitEmptyDirtySet(t *testing.T) {
	tracker := NewTracker(newIDs(3), nil, "PENDING")

	calls := 0
	err := Submit(context.Background(), tracker, func(context.Context, []Change[string]) error {
		calls++
		return nil
	})

	assert.ErrorIs(t, err, ErrNoChanges)
	assert.Equal(t, 0, calls)
}

func TestSubmitFailureKeepsDirtySet(t *testing.T) {
	roster := newIDs(2)
	tracker := NewTracker(roster, nil, "PENDING")
	tracker.SetStatus(roster[0], "PRESENT")
	tracker.SetStatus(roster[1], "ABSENT")

	saveErr := errors.New("db down")
	err := Submit(context.Background(), tracker, func(context.Context, []Change[string]) error {
		return saveErr
	})

	assert.ErrorIs(t, err, saveErr)
	assert.Equal(t, 2, tracker.Len())
}

func TestSubmitSuccessClearsDirtySet(t *testing.T) {
	roster := newIDs(2)
	tracker := NewTracker(roster, nil, "PENDING")
	tracker.SetStatus(roster[0], "PRESENT")

	var got []Change[string]
	err := Submit(context.Background(), tracker, func(_ context.Context, changes []Change[string]) error {
		got = changes
		return nil
	})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, roster[0], got[0].EntityID)
	assert.Equal(t, 0, tracker.Len())
}

func TestChangesAreSorted(t *testing.T) {
	roster := newIDs(10)
	tracker := NewTracker(roster, nil, 0)
	for i, id := range roster {
		tracker.SetStatus(id, i+1)
	}

	changes := tracker.Changes()
	require.Len(t, changes, 10)
	for i := 1; i < len(changes); i++ {
		assert.Less(t, changes[i-1].EntityID.String(), changes[i].EntityID.String())
	}
}
