package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aidar/certgen/internal/domain"
)

// RunRepository реализует repository.RunRepository для PostgreSQL
type RunRepository struct {
	db *pgxpool.Pool
}

// NewRunRepository создает новый экземпляр RunRepository
func NewRunRepository(db *pgxpool.Pool) *RunRepository {
	return &RunRepository{db: db}
}

// Create сохраняет новый запуск
func (r *RunRepository) Create(ctx context.Context, run *domain.Run) error {
	query := `
		INSERT INTO runs (run_id, source, id_mode, lines, results_dir, started_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(ctx, query, run.ID, run.Source, run.IDMode, run.Lines, run.ResultsDir, run.StartedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return fmt.Errorf("run %s already exists: %w", run.ID, err)
		}
		return err
	}

	return nil
}

// Finish сохраняет итоговые счетчики и время завершения
func (r *RunRepository) Finish(ctx context.Context, run *domain.Run) error {
	query := `
		UPDATE runs
		SET generated = $2, skipped = $3, error = $4, finished_at = $5
		WHERE run_id = $1
	`

	tag, err := r.db.Exec(ctx, query, run.ID, run.Generated, run.Skipped, run.Error, run.FinishedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRunNotFound
	}

	return nil
}

const runColumns = `run_id, source, id_mode, lines, results_dir, generated, skipped, error, started_at, finished_at`

// GetByID получает запуск по ID
func (r *RunRepository) GetByID(ctx context.Context, runID string) (*domain.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE run_id = $1`

	run, err := scanRun(r.db.QueryRow(ctx, query, runID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRunNotFound
		}
		return nil, err
	}

	return run, nil
}

// List возвращает последние запуски, новые первыми
func (r *RunRepository) List(ctx context.Context, limit int) ([]*domain.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, run_id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*domain.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return runs, nil
}

func scanRun(row pgx.Row) (*domain.Run, error) {
	var run domain.Run
	err := row.Scan(
		&run.ID,
		&run.Source,
		&run.IDMode,
		&run.Lines,
		&run.ResultsDir,
		&run.Generated,
		&run.Skipped,
		&run.Error,
		&run.StartedAt,
		&run.FinishedAt,
	)
	if err != nil {
		return nil, err
	}
	return &run, nil
}
