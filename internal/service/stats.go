package service

import (
	"context"

	"github.com/aidar/certgen/internal/domain"
	"github.com/aidar/certgen/internal/repository"
)

// Stats представляет сводную статистику журнала
type Stats struct {
	Totals domain.Totals       `json:"totals"`
	Groups []domain.GroupStats `json:"groups"`
}

// StatsService aggregates the run journal
type StatsService struct {
	statsRepo repository.StatsRepository
}

// NewStatsService creates a new StatsService
func NewStatsService(statsRepo repository.StatsRepository) *StatsService {
	return &StatsService{statsRepo: statsRepo}
}

// GetStats returns journal totals and per-group certificate counts.
// A non-empty course keeps only that course in the breakdown; totals are never filtered.
func (s *StatsService) GetStats(ctx context.Context, course string) (*Stats, error) {
	totals, err := s.statsRepo.Totals(ctx)
	if err != nil {
		return nil, err
	}

	groups, err := s.statsRepo.CountsByGroup(ctx)
	if err != nil {
		return nil, err
	}

	if course != "" {
		filtered := groups[:0]
		for _, g := range groups {
			if g.Course == course {
				filtered = append(filtered, g)
			}
		}
		groups = filtered
	}
	if groups == nil {
		groups = []domain.GroupStats{}
	}

	return &Stats{Totals: *totals, Groups: groups}, nil
}
