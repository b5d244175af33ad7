package roster

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/aidar/certgen/internal/domain"
)

// nameColumns - количество колонок ФИО после курса и группы
const nameColumns = 4

type xlsxSource struct {
	name   string
	open   func() (io.ReadCloser, error)
	idMode bool
}

func (s *xlsxSource) Name() string {
	return s.name
}

// Rows читает активный лист книги. Первая строка листа - заголовок.
func (s *xlsxSource) Rows(ctx context.Context) ([]domain.Student, error) {
	rc, err := s.open()
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx %s: %w", s.name, err)
	}
	defer rc.Close()

	f, err := excelize.OpenReader(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel file %s: %w", s.name, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("Failed to close excel file", "file", s.name, "error", err)
		}
	}()

	sheetName := f.GetSheetName(f.GetActiveSheetIndex())
	if sheetName == "" {
		return nil, errors.New("excel file does not contain any sheets")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows from sheet %s: %w", sheetName, err)
	}

	// Индексы колонок с нуля: в режиме ID первая колонка занята идентификатором
	start := 0
	if s.idMode {
		start = 1
	}

	students := make([]domain.Student, 0, len(rows))
	for i, row := range rows {
		if i == 0 {
			continue // заголовок
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var student domain.Student
		if s.idMode {
			student.UserID = cell(row, 0)
		}
		student.Course = cell(row, start)
		student.Group = cell(row, start+1)

		names := make([]string, 0, nameColumns)
		for c := 0; c < nameColumns; c++ {
			names = append(names, cell(row, start+2+c))
		}
		student.FIOLines = nonEmpty(names...)

		students = append(students, student)
	}

	return students, nil
}

// cell возвращает значение колонки или пустую строку: GetRows обрезает хвостовые пустые ячейки
func cell(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}
