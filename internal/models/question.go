package models

import (
	"time"

	"github.com/google/uuid"
)

// MaxQuestionLength is the storage cap on question text, enforced both
// client-side and by the database check constraint.
const MaxQuestionLength = 500

// Status is the moderation state of a question.
type Status string

const (
	// StatusPending is the initial state of every submitted question.
	StatusPending Status = "pending"
	// StatusHighlighted marks a question the moderator wants on top.
	StatusHighlighted Status = "highlighted"
	// StatusAnswered marks a question as dealt with. Not terminal: a
	// reopened question goes back to pending, never to highlighted.
	StatusAnswered Status = "answered"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusHighlighted, StatusAnswered:
		return true
	}
	return false
}

// CanTransitionTo reports whether a moderator may move a question from s
// to next. Highlighting is only allowed while not answered, and reopening
// an answered question always lands in pending.
func (s Status) CanTransitionTo(next Status) bool {
	if !s.Valid() || !next.Valid() || s == next {
		return false
	}
	switch s {
	case StatusPending:
		return next == StatusHighlighted || next == StatusAnswered
	case StatusHighlighted:
		return next == StatusPending || next == StatusAnswered
	case StatusAnswered:
		return next == StatusPending
	}
	return false
}

// Question is an anonymous question submitted to a room.
type Question struct {
	ID        uuid.UUID `json:"id"`
	Room      string    `json:"room"`
	Text      string    `json:"text"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
