// Package feed implements the client-side room feed: a local question list
// kept in sync with the server through a bulk fetch plus a realtime change
// subscription, with optimistic moderator mutations on top.
package feed

import (
	"sync"

	"github.com/google/uuid"

	"github.com/perguntas-ebd/backend/internal/models"
)

// EventKind tags a realtime change event.
type EventKind string

const (
	KindInsert EventKind = "insert"
	KindUpdate EventKind = "update"
	KindDelete EventKind = "delete"
)

// Event is one tagged change delivered by a room subscription.
type Event struct {
	Kind     EventKind
	Question models.Question // insert, update
	ID       uuid.UUID       // delete
}

// Feed holds the local list for the currently active room.
//
// Every entry point takes the epoch returned by Activate: switching rooms
// bumps the epoch, so a bulk fetch or subscription event that resolves
// late for the previous room is discarded instead of cancelled. Exactly
// one room is active at a time.
type Feed struct {
	mu        sync.Mutex
	room      string
	epoch     uint64
	list      []models.Question
	connected bool
}

// New creates an empty feed with no active room.
func New() *Feed {
	return &Feed{}
}

// Activate switches the feed to a room: the list is cleared, the
// connectivity flag reset, and a new epoch returned. The caller is
// expected to tear down the previous subscription first, then issue the
// bulk fetch and open the new subscription under the returned epoch.
func (f *Feed) Activate(room string) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.room = room
	f.epoch++
	f.list = nil
	f.connected = false
	return f.epoch
}

// Room returns the currently active room id.
func (f *Feed) Room() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.room
}

// SetInitial replaces the list with the bulk fetch result. Returns false
// when the epoch is stale (the room changed while the fetch was in flight).
func (f *Feed) SetInitial(epoch uint64, list []models.Question) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if epoch != f.epoch {
		return false
	}
	f.list = append([]models.Question(nil), list...)
	return true
}

// Apply merges one change event into the list. Stale epochs are discarded.
// Inserts are prepended (newest first); an insert for an id already present
// degrades to an update, which keeps replaying a delivery idempotent.
// Updates replace the matching record in place without reordering; updates
// and deletes for unknown ids are no-ops.
func (f *Feed) Apply(epoch uint64, ev Event) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if epoch != f.epoch {
		return false
	}
	switch ev.Kind {
	case KindInsert:
		if i := f.index(ev.Question.ID); i >= 0 {
			f.list[i] = ev.Question
			return true
		}
		f.list = append([]models.Question{ev.Question}, f.list...)
	case KindUpdate:
		if i := f.index(ev.Question.ID); i >= 0 {
			f.list[i] = ev.Question
		}
	case KindDelete:
		if i := f.index(ev.ID); i >= 0 {
			f.list = append(f.list[:i], f.list[i+1:]...)
		}
	}
	return true
}

// SetConnected records the subscription handshake state. Observational
// only: it never gates list mutations.
func (f *Feed) SetConnected(epoch uint64, connected bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if epoch != f.epoch {
		return
	}
	f.connected = connected
}

// Connected reports whether the active room's subscription is live.
func (f *Feed) Connected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

// Snapshot returns a copy of the list in feed order.
func (f *Feed) Snapshot() []models.Question {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Question(nil), f.list...)
}

// Get returns the local record for id.
func (f *Feed) Get(id uuid.UUID) (models.Question, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i := f.index(id); i >= 0 {
		return f.list[i], true
	}
	return models.Question{}, false
}

// Sorted returns the display order: highlighted, then pending, then
// answered. Inside each bucket the feed order is preserved, so a record
// moved between buckets keeps its relative age position and a fresh
// insert leads its bucket.
func (f *Feed) Sorted() []models.Question {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Question, 0, len(f.list))
	for _, status := range []models.Status{models.StatusHighlighted, models.StatusPending, models.StatusAnswered} {
		for _, q := range f.list {
			if q.Status == status {
				out = append(out, q)
			}
		}
	}
	return out
}

// restore puts back a snapshot taken before an optimistic mutation.
// Events merged since the snapshot are lost; the next ones re-converge.
func (f *Feed) restore(epoch uint64, snap []models.Question) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if epoch != f.epoch {
		return
	}
	f.list = append([]models.Question(nil), snap...)
}

// beginStatus snapshots the list and applies a status change locally,
// checking transition legality first. Caller holds no lock.
func (f *Feed) beginStatus(id uuid.UUID, status models.Status) (uint64, []models.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.index(id)
	if i < 0 {
		return 0, nil, ErrUnknownQuestion
	}
	if !f.list[i].Status.CanTransitionTo(status) {
		return 0, nil, ErrIllegalTransition
	}
	snap := append([]models.Question(nil), f.list...)
	f.list[i].Status = status
	return f.epoch, snap, nil
}

// beginDelete snapshots the list and removes the record locally.
func (f *Feed) beginDelete(id uuid.UUID) (uint64, []models.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.index(id)
	if i < 0 {
		return 0, nil, ErrUnknownQuestion
	}
	snap := append([]models.Question(nil), f.list...)
	f.list = append(f.list[:i], f.list[i+1:]...)
	return f.epoch, snap, nil
}

func (f *Feed) index(id uuid.UUID) int {
	for i := range f.list {
		if f.list[i].ID == id {
			return i
		}
	}
	return -1
}
