package repository

import (
	"context"

	"github.com/aidar/certgen/internal/domain"
)

// RunRepository определяет методы для работы с журналом запусков генерации
type RunRepository interface {
	// Create сохраняет новый запуск
	Create(ctx context.Context, run *domain.Run) error

	// Finish сохраняет итоговые счетчики и время завершения запуска
	Finish(ctx context.Context, run *domain.Run) error

	// GetByID получает запуск по ID
	GetByID(ctx context.Context, runID string) (*domain.Run, error)

	// List возвращает последние запуски, новые первыми
	List(ctx context.Context, limit int) ([]*domain.Run, error)
}

// CertificateRepository определяет методы для работы с сохраненными сертификатами
type CertificateRepository interface {
	// Create записывает сохраненный сертификат
	Create(ctx context.Context, cert *domain.Certificate) error

	// ListByRun возвращает сертификаты запуска в порядке сохранения
	ListByRun(ctx context.Context, runID string) ([]*domain.Certificate, error)
}

// StatsRepository определяет агрегирующие запросы по журналу
type StatsRepository interface {
	// Totals возвращает общие счетчики
	Totals(ctx context.Context) (*domain.Totals, error)

	// CountsByGroup возвращает количество сертификатов по курсам и группам
	CountsByGroup(ctx context.Context) ([]domain.GroupStats, error)
}
