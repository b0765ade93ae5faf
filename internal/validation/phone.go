package validation

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// NormalizePhone приводит произвольный ввод номера телефона к каноническому
// виду «+» и 7–15 цифр. Правила, по порядку:
//   - строки проходят как есть, конечные числа усекаются до целого,
//     остальные типы сразу дают пустую строку;
//   - пробелы, дефисы и скобки удаляются;
//   - префикс «00» заменяется на «+»;
//   - если номер начинается с «+», из остатка берутся только цифры;
//   - иначе: 9 цифр — польский номер без кода, добавляется «+48»;
//     11 цифр с префиксом 48 — добавляется «+»; любые 7–15 цифр — «+» как есть.
//
// Пустая строка означает, что номер нормализовать не удалось. Это нестрогая
// эвристика, а не проверка нумерационного плана: жёсткий формат проверяется
// дальше по конвейеру.
func NormalizePhone(input any) string {
	raw, ok := coerceToString(input)
	if !ok {
		return ""
	}

	v := strings.TrimSpace(raw)
	v = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(v)

	if strings.HasPrefix(v, "00") {
		v = "+" + v[2:]
	}

	if strings.HasPrefix(v, "+") {
		digits := extractDigits(v[1:])
		if digits == "" {
			return ""
		}
		return "+" + digits
	}

	digits := extractDigits(v)

	switch {
	case len(digits) == 9:
		return "+48" + digits
	case strings.HasPrefix(digits, "48") && len(digits) == 11:
		return "+" + digits
	case len(digits) >= 7 && len(digits) <= 15:
		return "+" + digits
	default:
		return ""
	}
}

func coerceToString(input any) (string, bool) {
	switch v := input.(type) {
	case string:
		return v, true
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return strconv.FormatInt(i, 10), true
		}
		f, err := v.Float64()
		if err != nil {
			return "", false
		}
		return coerceToString(f)
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return "", false
		}
		return strconv.FormatInt(int64(math.Trunc(v)), 10), true
	case float32:
		return coerceToString(float64(v))
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case uint64:
		return strconv.FormatUint(v, 10), true
	default:
		return "", false
	}
}

func extractDigits(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
