package questions

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/perguntas-ebd/backend/internal/middleware"
	"github.com/perguntas-ebd/backend/internal/models"
	"github.com/perguntas-ebd/backend/internal/realtime"
	"github.com/perguntas-ebd/backend/internal/rooms"
	"github.com/perguntas-ebd/backend/pkg/response"
)

// Store is the persistence surface the handler needs.
type Store interface {
	Create(ctx context.Context, q *models.Question) error
	ListByRoom(ctx context.Context, room string) ([]models.Question, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Question, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.Status) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByRoom(ctx context.Context, room string) (int, error)
}

// CreateRequest is the body for POST /rooms/:room/questions.
type CreateRequest struct {
	Text string `json:"text" binding:"required"`
}

// StatusRequest is the body for PATCH /questions/:id/status.
type StatusRequest struct {
	Status models.Status `json:"status" binding:"required"`
}

// Handler handles question HTTP requests and publishes change events.
type Handler struct {
	store Store
	feed  realtime.Publisher
}

// NewHandler creates a questions handler.
func NewHandler(store Store, feed realtime.Publisher) *Handler {
	return &Handler{store: store, feed: feed}
}

// ListRooms handles GET /rooms: the static registry plus a question count
// per room.
func (h *Handler) ListRooms(c *gin.Context) {
	type roomWithCount struct {
		rooms.Room
		Questions int `json:"questions"`
	}
	all := rooms.All()
	out := make([]roomWithCount, 0, len(all))
	for _, r := range all {
		n, err := h.store.CountByRoom(c.Request.Context(), r.ID)
		if err != nil {
			response.Internal(c, "failed to list rooms")
			return
		}
		out = append(out, roomWithCount{Room: r, Questions: n})
	}
	response.OK(c, gin.H{"rooms": out})
}

// ListByRoom handles GET /rooms/:room/questions, newest first. Feeds use
// this as the bulk fetch on room activation.
func (h *Handler) ListByRoom(c *gin.Context) {
	room := c.Param("room")
	if !rooms.IsValid(room) {
		response.NotFound(c, "unknown room")
		return
	}
	list, err := h.store.ListByRoom(c.Request.Context(), room)
	if err != nil {
		response.Internal(c, "failed to list questions")
		return
	}
	response.OK(c, gin.H{"questions": list})
}

// Create handles POST /rooms/:room/questions (anonymous student submission).
func (h *Handler) Create(c *gin.Context) {
	room := c.Param("room")
	if !rooms.IsValid(room) {
		response.NotFound(c, "unknown room")
		return
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		response.BadRequest(c, "question text is empty")
		return
	}
	if len([]rune(text)) > models.MaxQuestionLength {
		response.BadRequest(c, "question text exceeds 500 characters")
		return
	}

	q := &models.Question{Room: room, Text: text}
	if err := h.store.Create(c.Request.Context(), q); err != nil {
		response.Internal(c, "failed to create question")
		return
	}

	h.feed.PublishInsert(q)
	response.Created(c, q)
}

// UpdateStatus handles PATCH /questions/:id/status (moderator only).
// Illegal transitions are rejected: the state machine is the same one the
// clients enforce, so a well-behaved client never hits the 422.
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid question id")
		return
	}

	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if !req.Status.Valid() {
		response.BadRequest(c, "unknown status")
		return
	}

	q, err := h.store.GetByID(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		response.NotFound(c, "question not found")
		return
	}
	if err != nil {
		response.Internal(c, "failed to load question")
		return
	}
	if !h.canModerate(c, q.Room) {
		return
	}
	if !q.Status.CanTransitionTo(req.Status) {
		response.UnprocessableEntity(c, "illegal status transition")
		return
	}

	if err := h.store.UpdateStatus(c.Request.Context(), id, req.Status); err != nil {
		response.Internal(c, "failed to update question")
		return
	}

	q.Status = req.Status
	h.feed.PublishUpdate(q)
	response.OK(c, q)
}

// Delete handles DELETE /questions/:id (moderator only). Hard delete; the
// delete event is consumed by student feeds, while the acting moderator's
// feed already removed the row optimistically.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid question id")
		return
	}

	q, err := h.store.GetByID(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		response.NotFound(c, "question not found")
		return
	}
	if err != nil {
		response.Internal(c, "failed to load question")
		return
	}
	if !h.canModerate(c, q.Room) {
		return
	}

	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		response.Internal(c, "failed to delete question")
		return
	}

	h.feed.PublishDelete(q.Room, id)
	response.NoContent(c)
}

// canModerate enforces room pinning: a non-admin moderator may only act on
// questions in their assigned room. Writes the 403 itself on violation.
func (h *Handler) canModerate(c *gin.Context, room string) bool {
	profile := middleware.ModeratorFrom(c)
	if profile.IsAdmin || profile.AssignedRoom == room {
		return true
	}
	response.Forbidden(c, "room not assigned to this moderator")
	return false
}
