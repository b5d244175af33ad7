package domain

import "errors"

// Доменные ошибки генератора сертификатов
var (
	// ErrUnsupportedLineCount возвращается когда количество строк ФИО не входит в {1,2,3,4}
	ErrUnsupportedLineCount = errors.New("unsupported number of name lines")

	// ErrInvalidLines возвращается при недопустимом наборе разрешенных количеств строк
	ErrInvalidLines = errors.New("allowed line counts must be within 1..4")

	// ErrLayerNotFound возвращается когда в шаблоне нет слоя с нужным именем
	ErrLayerNotFound = errors.New("layer not found")

	// ErrNotTextLayer возвращается при попытке записать текст в нетекстовый слой
	ErrNotTextLayer = errors.New("layer is not a text layer")

	// ErrMalformedRow возвращается когда строка списка не разбирается на поля
	ErrMalformedRow = errors.New("malformed roster row")

	// ErrUnsupportedFormat возвращается для неизвестного формата списка
	ErrUnsupportedFormat = errors.New("unsupported roster format")

	// ErrResultsDirNotDir возвращается когда путь для результатов не является директорией
	ErrResultsDirNotDir = errors.New("results path is not a directory")

	// ErrRunNotFound возвращается когда запуск генерации не найден
	ErrRunNotFound = errors.New("run not found")

	// ErrFileNotFound возвращается когда сгенерированный файл не найден
	ErrFileNotFound = errors.New("file not found")

	// ErrUnauthorized возвращается при неудачной аутентификации
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidToken возвращается когда JWT токен невалиден
	ErrInvalidToken = errors.New("invalid token")
)

// ErrorCode представляет коды ошибок HTTP API
type ErrorCode string

// Коды ошибок API
const (
	CodeUnsupportedLineCount ErrorCode = "UNSUPPORTED_LINE_COUNT" // Строк ФИО не 1..4
	CodeInvalidLines         ErrorCode = "INVALID_LINES"          // Недопустимый фильтр строк
	CodeMalformedRow         ErrorCode = "MALFORMED_ROW"          // Ошибка разбора строки списка
	CodeUnsupportedFormat    ErrorCode = "UNSUPPORTED_FORMAT"     // Неизвестный формат файла
	CodeTemplateError        ErrorCode = "TEMPLATE_ERROR"         // Шаблон не содержит нужных слоев
	CodeNotFound             ErrorCode = "NOT_FOUND"              // Ресурс не найден
	CodeUnauthorized         ErrorCode = "UNAUTHORIZED"           // Нет доступа
	CodeInternal             ErrorCode = "INTERNAL_ERROR"         // Внутренняя ошибка
)

// MapErrorToCode преобразует доменные ошибки в коды ошибок API
func MapErrorToCode(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrUnsupportedLineCount):
		return CodeUnsupportedLineCount
	case errors.Is(err, ErrInvalidLines):
		return CodeInvalidLines
	case errors.Is(err, ErrMalformedRow):
		return CodeMalformedRow
	case errors.Is(err, ErrUnsupportedFormat):
		return CodeUnsupportedFormat
	case errors.Is(err, ErrLayerNotFound), errors.Is(err, ErrNotTextLayer):
		return CodeTemplateError
	case errors.Is(err, ErrRunNotFound), errors.Is(err, ErrFileNotFound):
		return CodeNotFound
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidToken):
		return CodeUnauthorized
	default:
		return CodeInternal
	}
}
