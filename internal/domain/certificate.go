package domain

import "time"

// Run представляет один запуск генерации по списку
type Run struct {
	ID         string     `json:"run_id"`
	Source     string     `json:"source"`
	IDMode     bool       `json:"id_mode"`
	Lines      []int      `json:"lines"`
	ResultsDir string     `json:"results_dir"`
	Generated  int        `json:"generated"`
	Skipped    int        `json:"skipped"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// IsFinished возвращает true если запуск завершен (успешно или с ошибкой)
func (r *Run) IsFinished() bool {
	return r.FinishedAt != nil
}

// Certificate представляет один сохраненный PNG файл
type Certificate struct {
	RunID     string    `json:"run_id"`
	FileName  string    `json:"file_name"`
	UserID    string    `json:"user_id,omitempty"`
	Course    string    `json:"course"`
	Group     string    `json:"group"`
	FullName  string    `json:"full_name"`
	LineCount int       `json:"line_count"`
	CreatedAt time.Time `json:"created_at"`
}

// GroupStats содержит количество сертификатов по курсу и группе
type GroupStats struct {
	Course       string `json:"course"`
	Group        string `json:"group"`
	Certificates int    `json:"certificates"`
}

// Totals содержит общие счетчики журнала
type Totals struct {
	Runs         int `json:"runs"`
	FinishedRuns int `json:"finished_runs"`
	Certificates int `json:"certificates"`
	Skipped      int `json:"skipped"`
}
