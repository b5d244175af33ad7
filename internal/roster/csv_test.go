package roster

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidar/certgen/internal/domain"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCSV_Rows(t *testing.T) {
	path := writeFile(t, "studs.csv",
		"курс;группа;ф1;ф2;ф3;ф4\n"+
			"1;5;Иванов Иван Иванович;;;\n"+
			"\n"+
			"2;101;Петрова;Анна;Сергеевна;\n")

	src, err := Open(path, false)
	require.NoError(t, err)
	assert.Equal(t, "studs.csv", src.Name())

	rows, err := src.Rows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, domain.Student{
		Course:   "1",
		Group:    "5",
		FIOLines: []string{"Иванов Иван Иванович"},
	}, rows[0])
	assert.Equal(t, []string{"Петрова", "Анна", "Сергеевна"}, rows[1].FIOLines)
	assert.Empty(t, rows[1].UserID)
}

func TestCSV_IDModeAndBOM(t *testing.T) {
	path := writeFile(t, "studs.csv",
		"\ufeffid;курс;группа;ф1;ф2;ф3;ф4\r\n"+
			"u-17;3;12;Сидоров;Петр;;\r\n")

	src, err := Open(path, true)
	require.NoError(t, err)

	rows, err := src.Rows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "u-17", rows[0].UserID)
	assert.Equal(t, "3", rows[0].Course)
	assert.Equal(t, "12", rows[0].Group)
	assert.Equal(t, []string{"Сидоров", "Петр"}, rows[0].FIOLines)
}

func TestCSV_MalformedRow(t *testing.T) {
	path := writeFile(t, "studs.csv",
		"курс;группа;ф1;ф2;ф3;ф4\n"+
			"1;5;Иванов;;;\n"+
			"1;5;Иванов\n")

	src, err := Open(path, false)
	require.NoError(t, err)

	_, err = src.Rows(context.Background())
	require.ErrorIs(t, err, domain.ErrMalformedRow)
	assert.Contains(t, err.Error(), "line 3")
}

func TestCSV_IDModeRequiresIDColumn(t *testing.T) {
	path := writeFile(t, "studs.csv",
		"курс;группа;ф1;ф2;ф3;ф4\n"+
			"1;5;Иванов;;;\n")

	src, err := Open(path, true)
	require.NoError(t, err)

	_, err = src.Rows(context.Background())
	assert.ErrorIs(t, err, domain.ErrMalformedRow)
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.csv"), false)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatXLSX, DetectFormat("studs.xlsx"))
	assert.Equal(t, FormatXLSX, DetectFormat("STUDS.XLSX"))
	assert.Equal(t, FormatCSV, DetectFormat("studs.csv"))
	assert.Equal(t, FormatCSV, DetectFormat("studs.txt"))
}

func TestOpenReader_UnknownFormat(t *testing.T) {
	_, err := OpenReader("x", nil, Format("ods"), false)
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}

func TestCSV_QuotesAreLiteral(t *testing.T) {
	path := writeFile(t, "studs.csv",
		"курс;группа;ф1;ф2;ф3;ф4\n"+
			"1;5;Иванов;\"Малыш\";;\n")

	src, err := Open(path, false)
	require.NoError(t, err)

	rows, err := src.Rows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"Иванов", "\"Малыш\""}, rows[0].FIOLines)
}

func TestCSV_UnbalancedQuoteStaysOnItsLine(t *testing.T) {
	path := writeFile(t, "studs.csv",
		"курс;группа;ф1;ф2;ф3;ф4\n"+
			"1;6;\"Петров;;;\n"+
			"2;7;Сидоров;;;\n")

	src, err := Open(path, false)
	require.NoError(t, err)

	rows, err := src.Rows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, []string{"\"Петров"}, rows[0].FIOLines)
	assert.Equal(t, "2", rows[1].Course)
	assert.Equal(t, "7", rows[1].Group)
	assert.Equal(t, []string{"Сидоров"}, rows[1].FIOLines)
}
