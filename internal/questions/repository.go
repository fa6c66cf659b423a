package questions

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/perguntas-ebd/backend/internal/models"
)

// ErrNotFound is returned when a question id does not resolve.
var ErrNotFound = errors.New("question not found")

// Repository handles question persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a questions repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new question with status pending.
func (r *Repository) Create(ctx context.Context, q *models.Question) error {
	const query = `INSERT INTO questions (room, text, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`
	q.Status = models.StatusPending
	return r.pool.QueryRow(ctx, query, q.Room, q.Text, q.Status).
		Scan(&q.ID, &q.CreatedAt)
}

// ListByRoom returns all questions for a room, newest first. This is the
// bulk fetch a feed issues on room activation.
func (r *Repository) ListByRoom(ctx context.Context, room string) ([]models.Question, error) {
	const query = `SELECT id, room, text, status, created_at
		FROM questions WHERE room = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, room)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]models.Question, 0)
	for rows.Next() {
		var q models.Question
		if err := rows.Scan(&q.ID, &q.Room, &q.Text, &q.Status, &q.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, q)
	}
	return list, rows.Err()
}

// GetByID returns a question by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	const query = `SELECT id, room, text, status, created_at
		FROM questions WHERE id = $1`
	var q models.Question
	err := r.pool.QueryRow(ctx, query, id).
		Scan(&q.ID, &q.Room, &q.Text, &q.Status, &q.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// UpdateStatus sets the status of a question.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.Status) error {
	const query = `UPDATE questions SET status = $2 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a question permanently. No tombstone is kept.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM questions WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByRoom returns the number of questions in a room.
func (r *Repository) CountByRoom(ctx context.Context, room string) (int, error) {
	const query = `SELECT COUNT(*) FROM questions WHERE room = $1`
	var n int
	err := r.pool.QueryRow(ctx, query, room).Scan(&n)
	return n, err
}
