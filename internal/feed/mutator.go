package feed

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/perguntas-ebd/backend/internal/models"
)

var (
	// ErrUnknownQuestion means the id is not in the local list.
	ErrUnknownQuestion = errors.New("question not in local list")
	// ErrIllegalTransition means the requested status change is not allowed
	// from the question's current status.
	ErrIllegalTransition = errors.New("illegal status transition")
)

// Remote issues the server mutations behind optimistic local changes.
type Remote interface {
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.Status) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Mutator applies moderator mutations optimistically: snapshot, local
// apply, remote call, and on remote failure an exact snapshot restore.
// Realtime events that arrived inside the failure window are dropped with
// the restore; the feed re-converges on subsequent events.
type Mutator struct {
	feed   *Feed
	remote Remote
}

// NewMutator creates a mutator over a feed and its remote store.
func NewMutator(feed *Feed, remote Remote) *Mutator {
	return &Mutator{feed: feed, remote: remote}
}

// SetStatus changes a question's status. The local list reflects the
// change before the remote call is issued; an illegal transition fails
// before any side effect.
func (m *Mutator) SetStatus(ctx context.Context, id uuid.UUID, status models.Status) error {
	epoch, snap, err := m.feed.beginStatus(id, status)
	if err != nil {
		return err
	}
	if err := m.remote.UpdateStatus(ctx, id, status); err != nil {
		m.feed.restore(epoch, snap)
		return err
	}
	// success: the realtime update event reconciles independently
	return nil
}

// Delete removes a question. The caller is responsible for the
// confirmation step; by the time this runs the decision is final. The
// local removal already matches remote state on success, so the feed does
// not depend on the delete event.
func (m *Mutator) Delete(ctx context.Context, id uuid.UUID) error {
	epoch, snap, err := m.feed.beginDelete(id)
	if err != nil {
		return err
	}
	if err := m.remote.Delete(ctx, id); err != nil {
		m.feed.restore(epoch, snap)
		return err
	}
	return nil
}
