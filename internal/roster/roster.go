// Package roster читает списки студентов из XLSX и CSV файлов.
package roster

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aidar/certgen/internal/domain"
)

// Source представляет источник строк списка
type Source interface {
	// Name возвращает имя источника (обычно имя файла)
	Name() string

	// Rows читает все строки списка, пропуская заголовок
	Rows(ctx context.Context) ([]domain.Student, error)
}

// Format определяет формат файла списка
type Format string

// Поддерживаемые форматы
const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// DetectFormat выбирает формат по имени файла: .xlsx читается как таблица, остальное как CSV
func DetectFormat(name string) Format {
	if strings.HasSuffix(strings.ToLower(name), ".xlsx") {
		return FormatXLSX
	}
	return FormatCSV
}

// Open открывает файл списка и возвращает источник нужного формата
func Open(path string, idMode bool) (Source, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open roster: %w", err)
	}
	name := filepath.Base(path)
	open := func() (io.ReadCloser, error) { return os.Open(path) }

	switch DetectFormat(name) {
	case FormatXLSX:
		return &xlsxSource{name: name, open: open, idMode: idMode}, nil
	default:
		return &csvSource{name: name, open: open, idMode: idMode}, nil
	}
}

// OpenReader создает источник из уже прочитанных данных (например, загруженного файла)
func OpenReader(name string, data []byte, format Format, idMode bool) (Source, error) {
	open := func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}

	switch format {
	case FormatXLSX:
		return &xlsxSource{name: name, open: open, idMode: idMode}, nil
	case FormatCSV:
		return &csvSource{name: name, open: open, idMode: idMode}, nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, format)
	}
}

// nonEmpty возвращает непустые значения в исходном порядке
func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
