package handler

import (
	"net/http"

	"github.com/aidar/certgen/internal/service"
)

// StatsHandler отдает сводку журнала генерации
type StatsHandler struct {
	statsService *service.StatsService
}

// NewStatsHandler создает новый StatsHandler
func NewStatsHandler(statsService *service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// GetStats обрабатывает GET /stats. Параметр course оставляет в разбивке только один курс.
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsService.GetStats(r.Context(), r.URL.Query().Get("course"))
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, stats)
}
