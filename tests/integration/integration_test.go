package integration

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// Тестовые структуры данных соответствующие API
type RunResponse struct {
	RunID      string `json:"run_id"`
	Source     string `json:"source"`
	IDMode     bool   `json:"id_mode"`
	Lines      []int  `json:"lines"`
	ResultsDir string `json:"results_dir"`
	Generated  int    `json:"generated"`
	Skipped    int    `json:"skipped"`
	Error      string `json:"error"`
}

type CertificateResponse struct {
	RunID     string `json:"run_id"`
	FileName  string `json:"file_name"`
	UserID    string `json:"user_id"`
	Course    string `json:"course"`
	Group     string `json:"group"`
	FullName  string `json:"full_name"`
	LineCount int    `json:"line_count"`
}

type RunDetailsResponse struct {
	Run          RunResponse           `json:"run"`
	Certificates []CertificateResponse `json:"certificates"`
}

type StatsResponse struct {
	Totals struct {
		Runs         int `json:"runs"`
		FinishedRuns int `json:"finished_runs"`
		Certificates int `json:"certificates"`
		Skipped      int `json:"skipped"`
	} `json:"totals"`
	Groups []struct {
		Course       string `json:"course"`
		Group        string `json:"group"`
		Certificates int    `json:"certificates"`
	} `json:"groups"`
}

// buildRoster собирает XLSX список в памяти
func buildRoster(t *testing.T, rows [][]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()

	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// TestE2E_CompleteWorkflow тестирует полный цикл: логин, загрузка списка, скачивание файлов, статистика
func TestE2E_CompleteWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	// Настраиваем тестовое окружение
	env := SetupTestEnvironment(t)
	defer env.Cleanup(t)

	// Ждем пока приложение будет готово
	env.WaitForHealthCheck(t)

	token := env.Login(t, "deanery")

	var xlsxRun RunDetailsResponse

	t.Run("Generate from XLSX", func(t *testing.T) {
		roster := buildRoster(t, [][]any{
			{"Курс", "Группа", "Ф1", "Ф2", "Ф3", "Ф4"},
			{1, 5, "Иванов", "Иван", "Иванович", ""},
			{2, 12, "Петрова Анна", "Сергеевна", "", ""},
			{3, 101, "Ким", "", "", ""},
			{4, 7, "Оглы", "Мамедов", "Рашид", "Гусейн"},
		})

		resp := env.MakeUpload(t, "studs.xlsx", roster, nil, token)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		xlsxRun = decode[RunDetailsResponse](t, resp)
		assert.Equal(t, "studs.xlsx", xlsxRun.Run.Source)
		assert.Equal(t, 4, xlsxRun.Run.Generated)
		assert.Equal(t, 0, xlsxRun.Run.Skipped)
		assert.Equal(t, []int{1, 2, 3, 4}, xlsxRun.Run.Lines)
		assert.Empty(t, xlsxRun.Run.Error)

		require.Len(t, xlsxRun.Certificates, 4)
		names := make([]string, 0, len(xlsxRun.Certificates))
		for _, c := range xlsxRun.Certificates {
			names = append(names, c.FileName)
		}
		assert.Equal(t, []string{
			"1к_005гр_Иванов Иван Иванович.png",
			"2к_012гр_Петрова Анна Сергеевна.png",
			"3к_101гр_Ким.png",
			"4к_007гр_Оглы Мамедов Рашид Гусейн.png",
		}, names)
	})

	t.Run("Files are written into per-run directory", func(t *testing.T) {
		require.NotEmpty(t, xlsxRun.Run.RunID)
		assert.Equal(t, filepath.Join(env.ResultsDir, xlsxRun.Run.RunID), xlsxRun.Run.ResultsDir)

		for _, c := range xlsxRun.Certificates {
			f, err := os.Open(filepath.Join(xlsxRun.Run.ResultsDir, c.FileName))
			require.NoError(t, err)
			cfg, err := png.DecodeConfig(f)
			f.Close()
			require.NoError(t, err)
			assert.Equal(t, 1754, cfg.Width)
			assert.Equal(t, 1240, cfg.Height)
		}
	})

	t.Run("Download file", func(t *testing.T) {
		fileName := xlsxRun.Certificates[2].FileName
		resp := env.MakeRequest(t, http.MethodGet, "/runs/"+xlsxRun.Run.RunID+"/files/"+url.PathEscape(fileName), nil, token)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
		_, err := png.Decode(resp.Body)
		require.NoError(t, err)
	})

	t.Run("Download unknown file", func(t *testing.T) {
		resp := env.MakeRequest(t, http.MethodGet, "/runs/"+xlsxRun.Run.RunID+"/files/missing.png", nil, token)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	var csvRun RunDetailsResponse

	t.Run("Generate from CSV in ID mode with lines filter", func(t *testing.T) {
		roster := "\ufeffid;курс;группа;ф1;ф2;ф3;ф4\r\n" +
			"s-001;1;5;Иванов;Иван;;\r\n" +
			"s-002;1;5;Смирнов;Олег;Петрович;\r\n" +
			"s-003;2;3;Ли;;;\r\n"

		resp := env.MakeUpload(t, "studs.csv", []byte(roster), map[string]string{
			"lines":   "1,2",
			"id_mode": "true",
		}, token)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		csvRun = decode[RunDetailsResponse](t, resp)
		assert.True(t, csvRun.Run.IDMode)
		assert.Equal(t, []int{1, 2}, csvRun.Run.Lines)
		assert.Equal(t, 2, csvRun.Run.Generated)
		assert.Equal(t, 1, csvRun.Run.Skipped)

		require.Len(t, csvRun.Certificates, 2)
		assert.Equal(t, "s-001.png", csvRun.Certificates[0].FileName)
		assert.Equal(t, "s-001", csvRun.Certificates[0].UserID)
		assert.Equal(t, "s-003.png", csvRun.Certificates[1].FileName)
		assert.Equal(t, 1, csvRun.Certificates[1].LineCount)
	})

	t.Run("Run is persisted", func(t *testing.T) {
		var generated, skipped int
		err := env.DB.QueryRow(t.Context(),
			`SELECT generated, skipped FROM runs WHERE run_id = $1 AND finished_at IS NOT NULL`,
			csvRun.Run.RunID,
		).Scan(&generated, &skipped)
		require.NoError(t, err)
		assert.Equal(t, 2, generated)
		assert.Equal(t, 1, skipped)

		var count int
		err = env.DB.QueryRow(t.Context(), `SELECT COUNT(*) FROM certificates WHERE run_id = $1`, csvRun.Run.RunID).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("List runs", func(t *testing.T) {
		resp := env.MakeRequest(t, http.MethodGet, "/runs?limit=10", nil, token)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		list := decode[struct {
			Runs []RunResponse `json:"runs"`
		}](t, resp)
		require.Len(t, list.Runs, 2)
		// Последний запуск идет первым
		assert.Equal(t, csvRun.Run.RunID, list.Runs[0].RunID)
		assert.Equal(t, xlsxRun.Run.RunID, list.Runs[1].RunID)
	})

	t.Run("Stats", func(t *testing.T) {
		resp := env.MakeRequest(t, http.MethodGet, "/stats", nil, token)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		stats := decode[StatsResponse](t, resp)
		assert.Equal(t, 2, stats.Totals.Runs)
		assert.Equal(t, 2, stats.Totals.FinishedRuns)
		assert.Equal(t, 6, stats.Totals.Certificates)
		assert.Equal(t, 1, stats.Totals.Skipped)

		require.NotEmpty(t, stats.Groups)
		assert.Equal(t, "1", stats.Groups[0].Course)
		assert.Equal(t, "5", stats.Groups[0].Group)
		assert.Equal(t, 2, stats.Groups[0].Certificates)
	})
}

// TestE2E_Errors проверяет коды ошибок API
func TestE2E_Errors(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := SetupTestEnvironment(t)
	defer env.Cleanup(t)

	env.WaitForHealthCheck(t)

	t.Run("Unauthorized without token", func(t *testing.T) {
		resp := env.MakeRequest(t, http.MethodGet, "/runs", nil, "")
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("Login with wrong key", func(t *testing.T) {
		body := bytes.NewReader([]byte(`{"operator":"deanery","api_key":"nope"}`))
		resp := env.MakeRequest(t, http.MethodPost, "/auth/login", body, "")
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	token := env.Login(t, "deanery")

	t.Run("Malformed row keeps failed run in journal", func(t *testing.T) {
		resp := env.MakeUpload(t, "bad.csv", []byte("h\n1;2;Иванов\n"), nil, token)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var failed int
		err := env.DB.QueryRow(t.Context(), `SELECT COUNT(*) FROM runs WHERE error <> ''`).Scan(&failed)
		require.NoError(t, err)
		assert.Equal(t, 1, failed)
	})

	t.Run("Invalid lines filter", func(t *testing.T) {
		resp := env.MakeUpload(t, "studs.csv", []byte("h\n"), map[string]string{"lines": "0,9"}, token)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Non-xlsx upload is read as CSV", func(t *testing.T) {
		resp := env.MakeUpload(t, "studs.txt", []byte("h\n"), nil, token)
		defer resp.Body.Close()
		// Все, что не .xlsx, читается как CSV; одна строка заголовка дает пустой запуск
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("Unknown run", func(t *testing.T) {
		resp := env.MakeRequest(t, http.MethodGet, "/runs/00000000-0000-0000-0000-000000000000", nil, token)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
