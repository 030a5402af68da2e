package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/kanso-streaks/internal/core/domain"
)

var _ domain.CompletionRepository = (*PostgresCompletionRepository)(nil)

type PostgresCompletionRepository struct {
	db *sqlx.DB
}

func NewPostgresCompletionRepository(db *sqlx.DB) *PostgresCompletionRepository {
	return &PostgresCompletionRepository{db: db}
}

func (r *PostgresCompletionRepository) Create(ctx context.Context, c *domain.Completion) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	query := `
		INSERT INTO habit_completions (id, habit_id, user_id, completion_date, created_at)
		VALUES (:id, :habit_id, :user_id, :completion_date, :created_at)`

	if _, err := r.db.NamedExecContext(ctx, query, c); err != nil {
		return translatePgError(err)
	}
	return nil
}

func (r *PostgresCompletionRepository) DeleteByDate(ctx context.Context, habitID, date string) error {
	query := `DELETE FROM habit_completions WHERE habit_id = $1 AND completion_date = $2::date`

	result, err := r.db.ExecContext(ctx, query, habitID, date)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrCompletionNotFound
	}
	return nil
}

func (r *PostgresCompletionRepository) ListDates(ctx context.Context, habitID string) ([]string, error) {
	dates := []string{}

	query := `
		SELECT to_char(completion_date, 'YYYY-MM-DD')
		FROM habit_completions
		WHERE habit_id = $1
		ORDER BY completion_date ASC`

	if err := r.db.SelectContext(ctx, &dates, query, habitID); err != nil {
		return nil, fmt.Errorf("list completion dates: %w", err)
	}
	return dates, nil
}

type habitDateRow struct {
	HabitID string `db:"habit_id"`
	Date    string `db:"completion_date"`
}

func (r *PostgresCompletionRepository) ListDatesByUserID(ctx context.Context, userID string) (map[string][]string, error) {
	rows := []habitDateRow{}

	query := `
		SELECT habit_id, to_char(completion_date, 'YYYY-MM-DD') AS completion_date
		FROM habit_completions
		WHERE user_id = $1
		ORDER BY habit_id, completion_date ASC`

	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("list user completion dates: %w", err)
	}

	grouped := make(map[string][]string)
	for _, row := range rows {
		grouped[row.HabitID] = append(grouped[row.HabitID], row.Date)
	}
	return grouped, nil
}

func (r *PostgresCompletionRepository) HabitsCompletedOn(ctx context.Context, date string) ([]string, error) {
	ids := []string{}

	query := `SELECT DISTINCT habit_id FROM habit_completions WHERE completion_date = $1::date`

	if err := r.db.SelectContext(ctx, &ids, query, date); err != nil {
		return nil, fmt.Errorf("habits completed on %s: %w", date, err)
	}
	return ids, nil
}
