package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aidar/certgen/internal/document"
	"github.com/aidar/certgen/internal/domain"
	"github.com/aidar/certgen/internal/repository"
	"github.com/aidar/certgen/internal/roster"
)

// Document - открытый многослойный шаблон, в который записываются данные студента
type Document interface {
	ArtLayers() []*document.ArtLayer
	GetByName(name string) (*document.ArtLayer, error)
	SaveAs(path string, opts document.PNGSaveOptions) error
}

// GenerateRequest описывает один запуск генерации
type GenerateRequest struct {
	Source     roster.Source
	ResultsDir string
	Lines      []int // допустимые количества строк ФИО, пусто - все
	IDMode     bool
	PerRunDir  bool // сохранять файлы в ResultsDir/<run_id>

	// OnSaved вызывается после сохранения каждого файла
	OnSaved func(cert *domain.Certificate)
}

// RunDetails содержит запуск и его сертификаты
type RunDetails struct {
	Run          *domain.Run           `json:"run"`
	Certificates []*domain.Certificate `json:"certificates"`
}

// CertificateService заполняет слои шаблона данными студентов и экспортирует PNG
type CertificateService struct {
	// Документ один на процесс, поэтому запуски выполняются последовательно
	mu sync.Mutex

	doc         Document
	linesLayers map[domain.LineSlot]*document.ArtLayer
	runRepo     repository.RunRepository
	certRepo    repository.CertificateRepository
	saveOptions document.PNGSaveOptions
	logger      *slog.Logger
	now         func() time.Time
}

// NewCertificateService создает сервис и связывает слоты строк ФИО со слоями документа
func NewCertificateService(
	doc Document,
	runRepo repository.RunRepository,
	certRepo repository.CertificateRepository,
	saveOptions document.PNGSaveOptions,
	logger *slog.Logger,
) (*CertificateService, error) {
	linesLayers := make(map[domain.LineSlot]*document.ArtLayer, len(domain.AllLineSlots))
	for _, slot := range domain.AllLineSlots {
		layer, err := doc.GetByName(slot.LayerName())
		if err != nil {
			return nil, err
		}
		if layer.Kind != document.TextLayer {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotTextLayer, layer.Name)
		}
		linesLayers[slot] = layer
	}

	return &CertificateService{
		doc:         doc,
		linesLayers: linesLayers,
		runRepo:     runRepo,
		certRepo:    certRepo,
		saveOptions: saveOptions,
		logger:      logger,
		now:         time.Now,
	}, nil
}

// Generate проходит по строкам списка и сохраняет PNG для каждой подходящей строки.
// Строки с количеством ФИО вне req.Lines пропускаются. Запуск записывается в журнал
// даже если завершился ошибкой.
func (s *CertificateService) Generate(ctx context.Context, req GenerateRequest) (run *domain.Run, err error) {
	lines, err := domain.ValidateLines(req.Lines)
	if err != nil {
		return nil, err
	}

	resultsDir, err := filepath.Abs(req.ResultsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve results dir: %w", err)
	}

	run = &domain.Run{
		ID:         uuid.NewString(),
		Source:     req.Source.Name(),
		IDMode:     req.IDMode,
		Lines:      lines,
		ResultsDir: resultsDir,
		StartedAt:  s.now(),
	}
	if req.PerRunDir {
		run.ResultsDir = filepath.Join(resultsDir, run.ID)
	}

	if err := ensureDir(run.ResultsDir); err != nil {
		return nil, err
	}

	if err := s.runRepo.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	logger := s.logger.With("run_id", run.ID, "source", run.Source)
	logger.Info("Generation started", "results_dir", run.ResultsDir, "lines", lines, "id_mode", req.IDMode)

	defer func() {
		finishedAt := s.now()
		run.FinishedAt = &finishedAt
		if err != nil {
			run.Error = err.Error()
		}
		// Журнал фиксирует итог и после отмены контекста запроса
		if finishErr := s.runRepo.Finish(context.WithoutCancel(ctx), run); finishErr != nil {
			logger.Error("Failed to finish run", "error", finishErr)
			if err == nil {
				err = fmt.Errorf("failed to finish run: %w", finishErr)
			}
		}
		if err != nil {
			logger.Error("Generation failed", "error", err, "generated", run.Generated)
			return
		}
		logger.Info("Generation finished", "generated", run.Generated, "skipped", run.Skipped)
	}()

	students, err := req.Source.Rows(ctx)
	if err != nil {
		return run, fmt.Errorf("failed to read roster: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range students {
		if err := ctx.Err(); err != nil {
			return run, err
		}

		student := &students[i]
		fileName := domain.OutputFileName(student, req.IDMode)

		if !slices.Contains(lines, student.LineCount()) {
			run.Skipped++
			logger.Debug("Row skipped", "row", i+2, "lines", student.LineCount())
			continue
		}

		if err := s.fillLayers(student); err != nil {
			return run, fmt.Errorf("row %d: %w", i+2, err)
		}

		path := filepath.Join(run.ResultsDir, fileName)
		if err := s.doc.SaveAs(path, s.saveOptions); err != nil {
			return run, fmt.Errorf("row %d: %w", i+2, err)
		}

		cert := &domain.Certificate{
			RunID:     run.ID,
			FileName:  fileName,
			UserID:    student.UserID,
			Course:    student.Course,
			Group:     student.Group,
			FullName:  student.FullName(),
			LineCount: student.LineCount(),
			CreatedAt: s.now(),
		}
		if err := s.certRepo.Create(ctx, cert); err != nil {
			return run, fmt.Errorf("failed to record certificate %s: %w", fileName, err)
		}
		run.Generated++

		logger.Debug("Certificate saved", "file", fileName)
		if req.OnSaved != nil {
			req.OnSaved(cert)
		}
	}

	return run, nil
}

// fillLayers записывает курс, группу и строки ФИО в слои документа
func (s *CertificateService) fillLayers(student *domain.Student) error {
	slots, err := domain.LinesFor(student.LineCount())
	if err != nil {
		return err
	}

	for _, layer := range s.doc.ArtLayers() {
		if layer.Kind != document.TextLayer {
			continue
		}
		var err error
		switch layer.Name {
		case domain.CourseLayerName:
			err = layer.SetText(student.Course)
		case domain.GroupLayerName:
			err = layer.SetText(student.Group)
		}
		if err != nil {
			return err
		}
	}

	s.setVisible(slots)
	for i, slot := range slots {
		if err := s.linesLayers[slot].SetText(student.FIOLines[i]); err != nil {
			return err
		}
	}

	return nil
}

// setVisible показывает слои указанных слотов и скрывает остальные слои ФИО
func (s *CertificateService) setVisible(slots []domain.LineSlot) {
	for slot, layer := range s.linesLayers {
		layer.Visible = slices.Contains(slots, slot)
	}
}

// GetRun возвращает запуск со списком сертификатов
func (s *CertificateService) GetRun(ctx context.Context, runID string) (*RunDetails, error) {
	run, err := s.runRepo.GetByID(ctx, runID)
	if err != nil {
		return nil, err
	}

	certs, err := s.certRepo.ListByRun(ctx, runID)
	if err != nil {
		return nil, err
	}

	return &RunDetails{Run: run, Certificates: certs}, nil
}

// ListRuns возвращает последние запуски
func (s *CertificateService) ListRuns(ctx context.Context, limit int) ([]*domain.Run, error) {
	return s.runRepo.List(ctx, limit)
}

// ResultPath возвращает путь к сохраненному файлу запуска
func (s *CertificateService) ResultPath(ctx context.Context, runID, fileName string) (string, error) {
	details, err := s.GetRun(ctx, runID)
	if err != nil {
		return "", err
	}

	for _, cert := range details.Certificates {
		if cert.FileName != fileName {
			continue
		}
		path := filepath.Join(details.Run.ResultsDir, cert.FileName)
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", domain.ErrFileNotFound
			}
			return "", err
		}
		return path, nil
	}

	return "", domain.ErrFileNotFound
}

// ensureDir создает директорию результатов, если ее нет
func ensureDir(dir string) error {
	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create results dir: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("failed to stat results dir: %w", err)
	case !info.IsDir():
		return fmt.Errorf("%w: %s", domain.ErrResultsDirNotDir, dir)
	}
	return nil
}
