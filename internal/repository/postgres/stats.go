package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aidar/certgen/internal/domain"
)

// StatsRepository реализует repository.StatsRepository для PostgreSQL
type StatsRepository struct {
	db *pgxpool.Pool
}

// NewStatsRepository создает новый экземпляр StatsRepository
func NewStatsRepository(db *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{db: db}
}

// Totals возвращает общие счетчики журнала
func (r *StatsRepository) Totals(ctx context.Context) (*domain.Totals, error) {
	query := `
		SELECT
			COUNT(*) as runs,
			COUNT(finished_at) as finished_runs,
			COALESCE(SUM(skipped), 0) as skipped,
			(SELECT COUNT(*) FROM certificates) as certificates
		FROM runs
	`

	var totals domain.Totals
	if err := r.db.QueryRow(ctx, query).Scan(
		&totals.Runs,
		&totals.FinishedRuns,
		&totals.Skipped,
		&totals.Certificates,
	); err != nil {
		return nil, err
	}

	return &totals, nil
}

// CountsByGroup возвращает количество сертификатов по курсам и группам
func (r *StatsRepository) CountsByGroup(ctx context.Context) ([]domain.GroupStats, error) {
	query := `
		SELECT course, group_name, COUNT(*) as certificates
		FROM certificates
		GROUP BY course, group_name
		ORDER BY course, group_name
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := []domain.GroupStats{}
	for rows.Next() {
		var gs domain.GroupStats
		if err := rows.Scan(&gs.Course, &gs.Group, &gs.Certificates); err != nil {
			return nil, err
		}
		stats = append(stats, gs)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}
