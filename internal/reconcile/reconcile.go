// Package reconcile implements the roster-against-records merge used by the
// attendance, marks and submission flows. A full roster of entities is merged
// with the authoritative status records into working rows, edits are tracked
// as a dirty set relative to the authoritative snapshot, and only the changed
// subset is handed to the persistence callback.
package reconcile

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
)

// ErrNoChanges is returned by Submit when the dirty set is empty. Callers
// surface it as "no changes to save" without touching the database.
var ErrNoChanges = errors.New("no changes to save")

// Row is one merged working entry for a roster entity.
type Row[S comparable] struct {
	EntityID uuid.UUID `json:"entityId"`
	Status   S         `json:"status"`
	Dirty    bool      `json:"dirty"`
}

// Change is one entry of the serialized dirty set.
type Change[S comparable] struct {
	EntityID uuid.UUID `json:"entityId"`
	Status   S         `json:"status"`
}

// Merge produces exactly one row per roster entity, in roster order: the
// matching record's status when one exists, otherwise def. No roster entity
// is ever dropped.
func Merge[S comparable](roster []uuid.UUID, records map[uuid.UUID]S, def S) []Row[S] {
	rows := make([]Row[S], 0, len(roster))
	for _, id := range roster {
		status, ok := records[id]
		if !ok {
			status = def
		}
		rows = append(rows, Row[S]{EntityID: id, Status: status})
	}
	return rows
}

// Tracker records which entities' working status diverges from the
// authoritative snapshot taken at construction time.
type Tracker[S comparable] struct {
	original map[uuid.UUID]S
	dirty    map[uuid.UUID]S
}

// NewTracker snapshots the authoritative statuses. Roster entities without a
// record get def as their original, mirroring what Merge displays.
func NewTracker[S comparable](roster []uuid.UUID, records map[uuid.UUID]S, def S) *Tracker[S] {
	original := make(map[uuid.UUID]S, len(roster))
	for _, id := range roster {
		status, ok := records[id]
		if !ok {
			status = def
		}
		original[id] = status
	}
	return &Tracker[S]{
		original: original,
		dirty:    make(map[uuid.UUID]S),
	}
}

// SetStatus compares status against the original snapshot, not the previous
// working value. Setting an entity back to its original removes it from the
// dirty set, so Len is always a true diff size. Entities outside the tracked
// roster are ignored.
func (t *Tracker[S]) SetStatus(id uuid.UUID, status S) {
	original, ok := t.original[id]
	if !ok {
		return
	}
	if status == original {
		delete(t.dirty, id)
		return
	}
	t.dirty[id] = status
}

// MarkAll applies SetStatus to every entity in visible, leaving entities
// outside the current filter untouched.
func (t *Tracker[S]) MarkAll(status S, visible []uuid.UUID) {
	for _, id := range visible {
		t.SetStatus(id, status)
	}
}

// Status returns the working status for an entity: the pending edit if one
// exists, else the original.
func (t *Tracker[S]) Status(id uuid.UUID) (S, bool) {
	if s, ok := t.dirty[id]; ok {
		return s, true
	}
	s, ok := t.original[id]
	return s, ok
}

// Len reports the dirty set size.
func (t *Tracker[S]) Len() int {
	return len(t.dirty)
}

// Changes serializes the dirty set, ordered by entity id for deterministic
// batches.
func (t *Tracker[S]) Changes() []Change[S] {
	changes := make([]Change[S], 0, len(t.dirty))
	for id, status := range t.dirty {
		changes = append(changes, Change[S]{EntityID: id, Status: status})
	}
	sort.Slice(changes, func(i, j int) bool {
		return changes[i].EntityID.String() < changes[j].EntityID.String()
	})
	return changes
}

// Clear drops all tracked edits, typically after a successful save.
func (t *Tracker[S]) Clear() {
	t.dirty = make(map[uuid.UUID]S)
}

// Submit sends the dirty set through save. An empty dirty set returns
// ErrNoChanges without invoking save. On failure the dirty set is preserved
// unchanged for retry; on success it is cleared.
func Submit[S comparable](ctx context.Context, t *Tracker[S], save func(context.Context, []Change[S]) error) error {
	changes := t.Changes()
	if len(changes) == 0 {
		return ErrNoChanges
	}
	if err := save(ctx, changes); err != nil {
		return err
	}
	t.Clear()
	return nil
}
