package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aidar/certgen/internal/domain"
)

// CertificateRepository реализует repository.CertificateRepository для PostgreSQL
type CertificateRepository struct {
	db *pgxpool.Pool
}

// NewCertificateRepository создает новый экземпляр CertificateRepository
func NewCertificateRepository(db *pgxpool.Pool) *CertificateRepository {
	return &CertificateRepository{db: db}
}

// Create записывает сохраненный сертификат
func (r *CertificateRepository) Create(ctx context.Context, cert *domain.Certificate) error {
	query := `
		INSERT INTO certificates (run_id, file_name, user_id, course, group_name, full_name, line_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(ctx, query,
		cert.RunID, cert.FileName, cert.UserID, cert.Course, cert.Group,
		cert.FullName, cert.LineCount, cert.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
			return domain.ErrRunNotFound
		}
		return err
	}

	return nil
}

// ListByRun возвращает сертификаты запуска в порядке сохранения
func (r *CertificateRepository) ListByRun(ctx context.Context, runID string) ([]*domain.Certificate, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM runs WHERE run_id = $1)`, runID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrRunNotFound
	}

	query := `
		SELECT run_id, file_name, user_id, course, group_name, full_name, line_count, created_at
		FROM certificates
		WHERE run_id = $1
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	certs := []*domain.Certificate{}
	for rows.Next() {
		var c domain.Certificate
		if err := rows.Scan(&c.RunID, &c.FileName, &c.UserID, &c.Course, &c.Group, &c.FullName, &c.LineCount, &c.CreatedAt); err != nil {
			return nil, err
		}
		certs = append(certs, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return certs, nil
}
