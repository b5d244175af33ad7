package domain

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Имена слоев шаблона
const (
	CourseLayerName = "__КУРС"
	GroupLayerName  = "__ГРУППА"
	fioLayerPrefix  = "__ФИО"
)

// MinLines и MaxLines ограничивают количество строк ФИО
const (
	MinLines = 1
	MaxLines = 4
)

// LineSlot идентифицирует слой строки ФИО: первая цифра - раскладка, вторая - позиция
type LineSlot int

// LayerName возвращает имя слоя шаблона для слота
func (s LineSlot) LayerName() string {
	return fmt.Sprintf("%s%d", fioLayerPrefix, int(s))
}

// AllLineSlots перечисляет все слоты ФИО, которые должны быть в шаблоне
var AllLineSlots = []LineSlot{21, 22, 31, 32, 33, 41, 42, 43, 44}

// LinesFor возвращает слоты для указанного количества строк ФИО.
// Одна строка выводится в средний слой трехстрочной раскладки.
func LinesFor(count int) ([]LineSlot, error) {
	switch count {
	case 1:
		return []LineSlot{32}, nil
	case 2:
		return []LineSlot{21, 22}, nil
	case 3:
		return []LineSlot{31, 32, 33}, nil
	case 4:
		return []LineSlot{41, 42, 43, 44}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedLineCount, count)
	}
}

// DefaultLines возвращает все допустимые количества строк
func DefaultLines() []int {
	return []int{1, 2, 3, 4}
}

// ValidateLines проверяет фильтр количеств строк. Пустой фильтр означает все значения.
func ValidateLines(lines []int) ([]int, error) {
	if len(lines) == 0 {
		return DefaultLines(), nil
	}
	out := make([]int, 0, len(lines))
	for _, n := range lines {
		if n < MinLines || n > MaxLines {
			return nil, fmt.Errorf("%w: got %d", ErrInvalidLines, n)
		}
		if !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	slices.Sort(out)
	return out, nil
}

// ParseLines разбирает список количеств строк вида "1,2" или "1 2"
func ParseLines(s string) ([]int, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	lines := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidLines, f)
		}
		lines = append(lines, n)
	}
	return ValidateLines(lines)
}
