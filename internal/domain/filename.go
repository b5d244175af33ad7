package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const groupWidth = 3

var pathSeparators = strings.NewReplacer("/", "_", "\\", "_")

// OutputFileName строит имя PNG файла для студента.
// В режиме ID это "<id>.png", иначе "<курс>к_<группа>гр_<ФИО>.png".
func OutputFileName(s *Student, idMode bool) string {
	var name string
	if idMode {
		name = s.UserID + ".png"
	} else {
		name = fmt.Sprintf("%sк_%sгр_%s.png", s.Course, ZeroPad(s.Group, groupWidth), s.FullName())
	}
	return pathSeparators.Replace(name)
}

// ZeroPad дополняет строку нулями слева до ширины width символов.
// Знак в начале строки остается впереди: "-5" -> "-05".
func ZeroPad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	pad := strings.Repeat("0", width-n)
	if s != "" && (s[0] == '+' || s[0] == '-') {
		return s[:1] + pad + s[1:]
	}
	return pad + s
}
