package realtime

import (
	"github.com/google/uuid"

	"github.com/perguntas-ebd/backend/internal/models"
)

// Change event names delivered over the room feed. The data payload is the
// full question row for inserts and updates, and just the id for deletes.
const (
	EventConnected = "connected"
	EventInsert    = "question_insert"
	EventUpdate    = "question_update"
	EventDelete    = "question_delete"
)

// DeletePayload is the data payload of a question_delete event.
type DeletePayload struct {
	ID uuid.UUID `json:"id"`
}

// Publisher is the handler-facing side of the feed: publish a change event
// for a room so every subscribed client (on any instance) receives it once.
type Publisher interface {
	PublishInsert(q *models.Question)
	PublishUpdate(q *models.Question)
	PublishDelete(room string, id uuid.UUID)
}
