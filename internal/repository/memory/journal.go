// Package memory хранит журнал генерации в памяти процесса.
// Используется CLI без настроенной базы данных и в тестах.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/aidar/certgen/internal/domain"
)

// Journal реализует RunRepository, CertificateRepository и StatsRepository.
// При заданном лимите хранятся только последние maxRuns запусков.
type Journal struct {
	mu           sync.RWMutex
	runs         map[string]*domain.Run
	order        []string
	certificates map[string][]*domain.Certificate
	maxRuns      int // 0 - без ограничения
}

// Option настраивает журнал
type Option func(*Journal)

// WithMaxRuns ограничивает количество хранимых запусков
func WithMaxRuns(n int) Option {
	return func(j *Journal) {
		j.maxRuns = n
	}
}

// NewJournal создает пустой журнал
func NewJournal(opts ...Option) *Journal {
	j := &Journal{
		runs:         make(map[string]*domain.Run),
		certificates: make(map[string][]*domain.Certificate),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// evict удаляет самые старые завершенные запуски сверх лимита вместе с их сертификатами.
// Незавершенные запуски не удаляются. Вызывается под j.mu.
func (j *Journal) evict() {
	if j.maxRuns <= 0 {
		return
	}

	excess := len(j.order) - j.maxRuns
	kept := j.order[:0]
	for _, id := range j.order {
		if excess > 0 && j.runs[id].IsFinished() {
			delete(j.runs, id)
			delete(j.certificates, id)
			excess--
			continue
		}
		kept = append(kept, id)
	}
	j.order = kept
}

// Runs возвращает журнал как RunRepository
func (j *Journal) Runs() *RunRepository {
	return &RunRepository{j: j}
}

// Certificates возвращает журнал как CertificateRepository
func (j *Journal) Certificates() *CertificateRepository {
	return &CertificateRepository{j: j}
}

// RunRepository - представление журнала для запусков
type RunRepository struct {
	j *Journal
}

// Create сохраняет копию запуска
func (r *RunRepository) Create(_ context.Context, run *domain.Run) error {
	r.j.mu.Lock()
	defer r.j.mu.Unlock()

	if _, ok := r.j.runs[run.ID]; !ok {
		r.j.order = append(r.j.order, run.ID)
	}
	r.j.runs[run.ID] = cloneRun(run)
	r.j.evict()
	return nil
}

// Finish обновляет счетчики запуска
func (r *RunRepository) Finish(_ context.Context, run *domain.Run) error {
	r.j.mu.Lock()
	defer r.j.mu.Unlock()

	if _, ok := r.j.runs[run.ID]; !ok {
		return domain.ErrRunNotFound
	}
	r.j.runs[run.ID] = cloneRun(run)
	r.j.evict()
	return nil
}

// GetByID получает запуск по ID
func (r *RunRepository) GetByID(_ context.Context, runID string) (*domain.Run, error) {
	r.j.mu.RLock()
	defer r.j.mu.RUnlock()

	run, ok := r.j.runs[runID]
	if !ok {
		return nil, domain.ErrRunNotFound
	}
	return cloneRun(run), nil
}

// List возвращает последние запуски, новые первыми
func (r *RunRepository) List(_ context.Context, limit int) ([]*domain.Run, error) {
	r.j.mu.RLock()
	defer r.j.mu.RUnlock()

	runs := make([]*domain.Run, 0, len(r.j.order))
	for i := len(r.j.order) - 1; i >= 0; i-- {
		if limit > 0 && len(runs) == limit {
			break
		}
		runs = append(runs, cloneRun(r.j.runs[r.j.order[i]]))
	}
	return runs, nil
}

// CertificateRepository - представление журнала для сертификатов
type CertificateRepository struct {
	j *Journal
}

// Create записывает сертификат
func (r *CertificateRepository) Create(_ context.Context, cert *domain.Certificate) error {
	r.j.mu.Lock()
	defer r.j.mu.Unlock()

	if _, ok := r.j.runs[cert.RunID]; !ok {
		return domain.ErrRunNotFound
	}
	c := *cert
	r.j.certificates[cert.RunID] = append(r.j.certificates[cert.RunID], &c)
	return nil
}

// ListByRun возвращает сертификаты запуска
func (r *CertificateRepository) ListByRun(_ context.Context, runID string) ([]*domain.Certificate, error) {
	r.j.mu.RLock()
	defer r.j.mu.RUnlock()

	if _, ok := r.j.runs[runID]; !ok {
		return nil, domain.ErrRunNotFound
	}
	certs := make([]*domain.Certificate, 0, len(r.j.certificates[runID]))
	for _, cert := range r.j.certificates[runID] {
		c := *cert
		certs = append(certs, &c)
	}
	return certs, nil
}

// Totals возвращает общие счетчики
func (j *Journal) Totals(_ context.Context) (*domain.Totals, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	totals := &domain.Totals{Runs: len(j.runs)}
	for _, run := range j.runs {
		if run.IsFinished() {
			totals.FinishedRuns++
		}
		totals.Skipped += run.Skipped
	}
	for _, certs := range j.certificates {
		totals.Certificates += len(certs)
	}
	return totals, nil
}

// CountsByGroup возвращает количество сертификатов по курсам и группам
func (j *Journal) CountsByGroup(_ context.Context) ([]domain.GroupStats, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	type key struct{ course, group string }
	counts := make(map[key]int)
	for _, certs := range j.certificates {
		for _, cert := range certs {
			counts[key{cert.Course, cert.Group}]++
		}
	}

	stats := make([]domain.GroupStats, 0, len(counts))
	for k, n := range counts {
		stats = append(stats, domain.GroupStats{Course: k.course, Group: k.group, Certificates: n})
	}
	sort.Slice(stats, func(a, b int) bool {
		if stats[a].Course != stats[b].Course {
			return stats[a].Course < stats[b].Course
		}
		return stats[a].Group < stats[b].Group
	})
	return stats, nil
}

func cloneRun(run *domain.Run) *domain.Run {
	c := *run
	c.Lines = slices.Clone(run.Lines)
	if run.FinishedAt != nil {
		t := *run.FinishedAt
		c.FinishedAt = &t
	}
	return &c
}
