// Package form реализует конвейер обработки полей анкеты: к сырому значению
// сначала применяется трансформация, затем упорядоченный список проверок.
// Поля обрабатываются независимо, ошибки собираются по всем полям сразу.
package form

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// FieldError описывает ошибку валидации одного поля.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors содержит ошибки полей в порядке объявления полей.
type Errors []FieldError

// Transform преобразует сырое значение поля в нормализованное.
type Transform func(value any) any

// Validator проверяет нормализованное значение поля.
type Validator struct {
	Check   func(value any) bool
	Message string
}

// Field описывает одно поле анкеты: имя, трансформацию и список проверок.
type Field struct {
	Name       string
	Optional   bool
	Transform  Transform
	Validators []Validator
}

// Process прогоняет значения через объявленные поля. Трансформация применяется
// всегда, до первой проверки. Для каждого поля фиксируется только первая
// непройденная проверка, но все поля обрабатываются до конца. Необязательное
// поле, пустое после трансформации, дальнейшим проверкам не подвергается.
func Process(fields []Field, values map[string]any) (map[string]any, Errors) {
	normalized := make(map[string]any, len(fields))
	var errs Errors

	for _, f := range fields {
		v := values[f.Name]
		if f.Transform != nil {
			v = f.Transform(v)
		}
		normalized[f.Name] = v

		if f.Optional && isEmpty(v) {
			continue
		}

		for _, check := range f.Validators {
			if !check.Check(v) {
				errs = append(errs, FieldError{Field: f.Name, Message: check.Message})
				break
			}
		}
	}

	return normalized, errs
}

func isEmpty(value any) bool {
	if value == nil {
		return true
	}
	s, ok := value.(string)
	return ok && s == ""
}

// TrimString обрезает пробелы вокруг строкового значения.
// Нестроковые значения заменяются пустой строкой.
func TrimString(value any) any {
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// Required проверяет, что значение — непустая строка.
func Required(message string) Validator {
	return Validator{
		Check: func(value any) bool {
			s, ok := value.(string)
			return ok && s != ""
		},
		Message: message,
	}
}

// MinLen проверяет минимальную длину строки в рунах.
func MinLen(n int, message string) Validator {
	return Validator{
		Check: func(value any) bool {
			s, ok := value.(string)
			return ok && utf8.RuneCountInString(s) >= n
		},
		Message: message,
	}
}

// MaxLen проверяет максимальную длину строки в рунах.
func MaxLen(n int, message string) Validator {
	return Validator{
		Check: func(value any) bool {
			s, ok := value.(string)
			return ok && utf8.RuneCountInString(s) <= n
		},
		Message: message,
	}
}

// Match проверяет строку на полное соответствие регулярному выражению.
func Match(re *regexp.Regexp, message string) Validator {
	return Validator{
		Check: func(value any) bool {
			s, ok := value.(string)
			return ok && re.MatchString(s)
		},
		Message: message,
	}
}

// IsBool проверяет, что значение имеет булев тип. Строки «true»/«false»
// и числа булевыми не считаются.
func IsBool(message string) Validator {
	return Validator{
		Check: func(value any) bool {
			_, ok := value.(bool)
			return ok
		},
		Message: message,
	}
}

// Predicate оборачивает произвольную строковую проверку в Validator.
func Predicate(fn func(s string) bool, message string) Validator {
	return Validator{
		Check: func(value any) bool {
			s, ok := value.(string)
			return ok && fn(s)
		},
		Message: message,
	}
}
