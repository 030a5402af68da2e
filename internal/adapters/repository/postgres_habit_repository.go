package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/kanso-streaks/internal/core/domain"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var _ domain.HabitRepository = (*PostgresHabitRepository)(nil)

type PostgresHabitRepository struct {
	db *sqlx.DB
}

func NewPostgresHabitRepository(db *sqlx.DB) *PostgresHabitRepository {
	return &PostgresHabitRepository{db: db}
}

const habitColumns = `id, user_id, title, description, habit_view, daily_goal, color, created_at, updated_at`

func (r *PostgresHabitRepository) Create(ctx context.Context, h *domain.Habit) error {
	query := `
        INSERT INTO habits (` + habitColumns + `)
        VALUES (
            :id, :user_id, :title, :description, :habit_view,
            :daily_goal, :color, :created_at, :updated_at
        )`

	if _, err := r.db.NamedExecContext(ctx, query, h); err != nil {
		return fmt.Errorf("failed to insert habit: %w", translatePgError(err))
	}
	return nil
}

// validID keeps malformed ids away from the uuid column, where they would
// fail the cast instead of matching nothing.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (r *PostgresHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	if !validID(id) {
		return nil, domain.ErrHabitNotFound
	}

	var h domain.Habit
	query := `SELECT ` + habitColumns + ` FROM habits WHERE id = $1`

	if err := r.db.GetContext(ctx, &h, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrHabitNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}
	return &h, nil
}

func (r *PostgresHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	habits := []*domain.Habit{}
	query := `
        SELECT ` + habitColumns + ` FROM habits
        WHERE user_id = $1
        ORDER BY created_at ASC`

	if err := r.db.SelectContext(ctx, &habits, query, userID); err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	return habits, nil
}

func (r *PostgresHabitRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return domain.ErrHabitNotFound
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM habits WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete query failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrHabitNotFound
	}
	return nil
}
