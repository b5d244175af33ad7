package domain

import "strings"

// Student представляет одну строку списка студентов
type Student struct {
	UserID   string   `json:"user_id,omitempty"` // Заполняется только в режиме ID
	Course   string   `json:"course"`
	Group    string   `json:"group"`
	FIOLines []string `json:"fio_lines"` // От 1 до 4 непустых строк ФИО
}

// LineCount возвращает количество строк ФИО
func (s *Student) LineCount() int {
	return len(s.FIOLines)
}

// FullName возвращает строки ФИО, склеенные через пробел
func (s *Student) FullName() string {
	return strings.Join(s.FIOLines, " ")
}
