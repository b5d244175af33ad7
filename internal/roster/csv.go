package roster

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/aidar/certgen/internal/domain"
)

const (
	csvSeparator    = ";"
	csvFields       = 6 // курс;группа;ф1;ф2;ф3;ф4
	csvFieldsIDMode = 7 // id;курс;группа;ф1;ф2;ф3;ф4

	maxLineSize = 1 << 20
)

type csvSource struct {
	name   string
	open   func() (io.ReadCloser, error)
	idMode bool
}

func (s *csvSource) Name() string {
	return s.name
}

// Rows читает CSV в UTF-8 с разделителем ';'. Первая строка - заголовок.
// Каждая физическая строка файла - одна запись, кавычки остаются частью значений.
func (s *csvSource) Rows(ctx context.Context) ([]domain.Student, error) {
	rc, err := s.open()
	if err != nil {
		return nil, fmt.Errorf("failed to open csv %s: %w", s.name, err)
	}
	defer rc.Close()

	// BOM от Excel не должен попадать в первое поле
	decoder := unicode.UTF8BOM.NewDecoder()
	scanner := bufio.NewScanner(transform.NewReader(rc, decoder))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	want := csvFields
	if s.idMode {
		want = csvFieldsIDMode
	}

	var students []domain.Student
	line := 0
	for scanner.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if line == 1 {
			continue // заголовок
		}

		text := strings.TrimRight(scanner.Text(), "\r\n")
		if strings.TrimSpace(text) == "" {
			continue
		}

		record := strings.Split(text, csvSeparator)
		if len(record) != want {
			return nil, fmt.Errorf("%w: %s line %d: expected %d fields, got %d",
				domain.ErrMalformedRow, s.name, line, want, len(record))
		}

		var student domain.Student
		if s.idMode {
			student.UserID = record[0]
			record = record[1:]
		}
		student.Course = record[0]
		student.Group = record[1]
		student.FIOLines = nonEmpty(record[2:6]...)
		students = append(students, student)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read csv %s: %w", s.name, err)
	}

	return students, nil
}
