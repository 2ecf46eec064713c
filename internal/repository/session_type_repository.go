package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/learner-hub-api/internal/models"
	"github.com/noah-isme/learner-hub-api/pkg/database"
)

const sessionTypeColumns = "id, name, is_off_the_job, is_active, sort_order, created_at, updated_at"

// SessionTypeRepository persists session types and their display order.
type SessionTypeRepository struct {
	db *sqlx.DB
}

// NewSessionTypeRepository instantiates the repository.
func NewSessionTypeRepository(db *sqlx.DB) *SessionTypeRepository {
	return &SessionTypeRepository{db: db}
}

// List returns session types in ascending order.
func (r *SessionTypeRepository) List(ctx context.Context) ([]models.SessionType, error) {
	items := make([]models.SessionType, 0)
	if err := r.db.SelectContext(ctx, &items, "SELECT "+sessionTypeColumns+" FROM session_types ORDER BY sort_order ASC, created_at ASC"); err != nil {
		return nil, fmt.Errorf("list session types: %w", err)
	}
	return items, nil
}

// FindByID loads a session type.
func (r *SessionTypeRepository) FindByID(ctx context.Context, id string) (*models.SessionType, error) {
	var item models.SessionType
	if err := r.db.GetContext(ctx, &item, "SELECT "+sessionTypeColumns+" FROM session_types WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &item, nil
}

// Create appends a session type after the current last rank. The table lock serialises
// concurrent creates and keeps them out of an in-flight reorder or delete, so ranks stay unique.
func (r *SessionTypeRepository) Create(ctx context.Context, st *models.SessionType) error {
	if st.ID == "" {
		st.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	st.CreatedAt, st.UpdatedAt = now, now
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `LOCK TABLE session_types IN SHARE ROW EXCLUSIVE MODE`); err != nil {
			return fmt.Errorf("lock session types: %w", err)
		}
		if err := tx.GetContext(ctx, &st.Order, `SELECT COALESCE(MAX(sort_order), 0) + 1 FROM session_types`); err != nil {
			return fmt.Errorf("next session type order: %w", err)
		}
		const query = `INSERT INTO session_types (id, name, is_off_the_job, is_active, sort_order, created_at, updated_at) VALUES (:id, :name, :is_off_the_job, :is_active, :sort_order, :created_at, :updated_at)`
		if _, err := tx.NamedExecContext(ctx, query, st); err != nil {
			return fmt.Errorf("create session type: %w", err)
		}
		return nil
	})
}

// Update overwrites name and flags. The rank is only changed through Reorder.
func (r *SessionTypeRepository) Update(ctx context.Context, st *models.SessionType) error {
	st.UpdatedAt = time.Now().UTC()
	const query = `UPDATE session_types SET name = :name, is_off_the_job = :is_off_the_job, is_active = :is_active, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, st)
	if err != nil {
		return fmt.Errorf("update session type: %w", err)
	}
	return requireAffected(res)
}

// Delete removes a session type and closes the gap it leaves in the ranking.
func (r *SessionTypeRepository) Delete(ctx context.Context, id string) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var order int
		if err := tx.GetContext(ctx, &order, `SELECT sort_order FROM session_types WHERE id = $1 FOR UPDATE`, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM session_types WHERE id = $1`, id); err != nil {
			return fmt.Errorf("delete session type: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE session_types SET sort_order = sort_order - 1 WHERE sort_order > $1`, order); err != nil {
			return fmt.Errorf("compact session type order: %w", err)
		}
		return nil
	})
}

// Reorder swaps the rank of id with its neighbour in direction. It reports false when id is already at that edge.
func (r *SessionTypeRepository) Reorder(ctx context.Context, id string, direction models.ReorderDirection) (bool, error) {
	moved := false
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var current models.SessionType
		if err := tx.GetContext(ctx, &current, "SELECT "+sessionTypeColumns+" FROM session_types WHERE id = $1 FOR UPDATE", id); err != nil {
			return err
		}
		neighbourQuery := "SELECT " + sessionTypeColumns + " FROM session_types WHERE sort_order < $1 ORDER BY sort_order DESC LIMIT 1 FOR UPDATE"
		if direction == models.DirectionDown {
			neighbourQuery = "SELECT " + sessionTypeColumns + " FROM session_types WHERE sort_order > $1 ORDER BY sort_order ASC LIMIT 1 FOR UPDATE"
		}
		var neighbour models.SessionType
		if err := tx.GetContext(ctx, &neighbour, neighbourQuery, current.Order); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return fmt.Errorf("find neighbour session type: %w", err)
		}
		now := time.Now().UTC()
		const swap = `UPDATE session_types SET sort_order = $1, updated_at = $2 WHERE id = $3`
		if _, err := tx.ExecContext(ctx, swap, neighbour.Order, now, current.ID); err != nil {
			return fmt.Errorf("move session type: %w", err)
		}
		if _, err := tx.ExecContext(ctx, swap, current.Order, now, neighbour.ID); err != nil {
			return fmt.Errorf("move neighbour session type: %w", err)
		}
		moved = true
		return nil
	})
	return moved, err
}
