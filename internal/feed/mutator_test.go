package feed

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perguntas-ebd/backend/internal/models"
)

var errRemote = errors.New("remote unavailable")

// fakeRemote records calls and fails on demand.
type fakeRemote struct {
	updates []models.Status
	deletes []uuid.UUID
	err     error
}

func (r *fakeRemote) UpdateStatus(_ context.Context, _ uuid.UUID, status models.Status) error {
	if r.err != nil {
		return r.err
	}
	r.updates = append(r.updates, status)
	return nil
}

func (r *fakeRemote) Delete(_ context.Context, id uuid.UUID) error {
	if r.err != nil {
		return r.err
	}
	r.deletes = append(r.deletes, id)
	return nil
}

func setup(t *testing.T, initial ...models.Question) (*Feed, *fakeRemote, *Mutator, uint64) {
	t.Helper()
	f := New()
	epoch := f.Activate("doutrina")
	require.True(t, f.SetInitial(epoch, initial))
	remote := &fakeRemote{}
	return f, remote, NewMutator(f, remote), epoch
}

func TestSetStatusOptimistic(t *testing.T) {
	q1 := question("doutrina", "q1", models.StatusPending)
	other := question("doutrina", "other", models.StatusPending)
	f, remote, m, _ := setup(t, other, q1)

	require.NoError(t, m.SetStatus(context.Background(), q1.ID, models.StatusHighlighted))

	got, ok := f.Get(q1.ID)
	require.True(t, ok)
	assert.Equal(t, models.StatusHighlighted, got.Status)
	assert.Equal(t, q1.ID, f.Sorted()[0].ID, "instantly ahead of all pending entries")
	assert.Equal(t, []models.Status{models.StatusHighlighted}, remote.updates, "remote called with the new status")
}

func TestSetStatusRollback(t *testing.T) {
	q := question("doutrina", "q", models.StatusPending)
	f, remote, m, _ := setup(t, q)
	remote.err = errRemote

	before := f.Snapshot()
	err := m.SetStatus(context.Background(), q.ID, models.StatusAnswered)
	assert.ErrorIs(t, err, errRemote)
	assert.Equal(t, before, f.Snapshot(), "rollback restores the exact pre-mutation list")
}

func TestSetStatusRollbackDiscardsConcurrentEvents(t *testing.T) {
	q := question("doutrina", "q", models.StatusPending)
	f, _, _, epoch := setup(t, q)

	// remote that lets an event slip in before failing, like a slow request
	// overlapping the change feed
	racing := question("doutrina", "racing", models.StatusPending)
	m := NewMutator(f, &injectingRemote{feed: f, epoch: epoch, during: Event{Kind: KindInsert, Question: racing}})

	before := f.Snapshot()
	err := m.SetStatus(context.Background(), q.ID, models.StatusAnswered)
	assert.ErrorIs(t, err, errRemote)
	assert.Equal(t, before, f.Snapshot(), "events inside the failure window are lost by design")
}

type injectingRemote struct {
	feed   *Feed
	epoch  uint64
	during Event
}

func (r *injectingRemote) UpdateStatus(context.Context, uuid.UUID, models.Status) error {
	r.feed.Apply(r.epoch, r.during)
	return errRemote
}

func (r *injectingRemote) Delete(context.Context, uuid.UUID) error {
	r.feed.Apply(r.epoch, r.during)
	return errRemote
}

func TestSetStatusIllegalTransition(t *testing.T) {
	q := question("doutrina", "q", models.StatusAnswered)
	f, remote, m, _ := setup(t, q)

	err := m.SetStatus(context.Background(), q.ID, models.StatusHighlighted)
	assert.ErrorIs(t, err, ErrIllegalTransition)
	assert.Empty(t, remote.updates, "no remote call for a rejected transition")

	got, _ := f.Get(q.ID)
	assert.Equal(t, models.StatusAnswered, got.Status, "local state untouched")
}

func TestSetStatusUnknownQuestion(t *testing.T) {
	_, remote, m, _ := setup(t)
	err := m.SetStatus(context.Background(), uuid.New(), models.StatusAnswered)
	assert.ErrorIs(t, err, ErrUnknownQuestion)
	assert.Empty(t, remote.updates)
}

func TestDeleteOptimistic(t *testing.T) {
	q := question("doutrina", "q", models.StatusPending)
	keep := question("doutrina", "keep", models.StatusPending)
	f, remote, m, _ := setup(t, q, keep)

	require.NoError(t, m.Delete(context.Background(), q.ID))

	_, ok := f.Get(q.ID)
	assert.False(t, ok, "removed before the remote call returns")
	assert.Equal(t, []uuid.UUID{q.ID}, remote.deletes)
}

func TestDeleteRollback(t *testing.T) {
	q := question("doutrina", "q", models.StatusPending)
	f, remote, m, _ := setup(t, q)
	remote.err = errRemote

	before := f.Snapshot()
	err := m.Delete(context.Background(), q.ID)
	assert.ErrorIs(t, err, errRemote)
	assert.Equal(t, before, f.Snapshot())
}

func TestReopenLandsInPending(t *testing.T) {
	// a question highlighted before being answered must not return to
	// highlighted on reopen
	q := question("doutrina", "q", models.StatusAnswered)
	f, _, m, _ := setup(t, q)

	require.NoError(t, m.SetStatus(context.Background(), q.ID, models.StatusPending))
	got, _ := f.Get(q.ID)
	assert.Equal(t, models.StatusPending, got.Status)
}
