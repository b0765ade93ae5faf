// Package validation содержит функции валидации и нормализации полей анкеты.
package validation

import (
	"strings"
	"time"
)

// Веса контрольной суммы для первых десяти цифр номера PESEL.
var peselWeights = [10]int{1, 3, 7, 9, 1, 3, 7, 9, 1, 3}

var daysInMonth = [13]int{0, 31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// ValidatePesel проверяет номер PESEL и возвращает закодированную в нём дату рождения.
// Проверки выполняются в порядке: структура (ровно 11 цифр после обрезки),
// календарная корректность даты, контрольная сумма. Некорректная дата
// отклоняется, а не нормализуется переносом на соседний месяц.
func ValidatePesel(raw string) (time.Time, bool) {
	pesel := strings.TrimSpace(raw)
	if len(pesel) != 11 {
		return time.Time{}, false
	}

	var digits [11]int
	for i := 0; i < len(pesel); i++ {
		ch := pesel[i]
		if ch < '0' || ch > '9' {
			return time.Time{}, false
		}
		digits[i] = int(ch - '0')
	}

	year, month, ok := decodePeselYearMonth(digits[0]*10+digits[1], digits[2]*10+digits[3])
	if !ok {
		return time.Time{}, false
	}

	day := digits[4]*10 + digits[5]
	if !isValidDate(year, month, day) {
		return time.Time{}, false
	}

	sum := 0
	for i, w := range peselWeights {
		sum += w * digits[i]
	}
	control := (10 - sum%10) % 10
	if control != digits[10] {
		return time.Time{}, false
	}

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}

// IsValidPesel сообщает, является ли строка корректным номером PESEL.
func IsValidPesel(raw string) bool {
	_, ok := ValidatePesel(raw)
	return ok
}

// decodePeselYearMonth восстанавливает год и месяц рождения из полей yy и mm.
// Столетие закодировано смещением месяца: 1..12 — 1900-е, 21..32 — 2000-е,
// 41..52 — 2100-е, 61..72 — 2200-е, 81..92 — 1800-е.
func decodePeselYearMonth(yy, mm int) (int, int, bool) {
	switch {
	case mm >= 1 && mm <= 12:
		return 1900 + yy, mm, true
	case mm >= 21 && mm <= 32:
		return 2000 + yy, mm - 20, true
	case mm >= 41 && mm <= 52:
		return 2100 + yy, mm - 40, true
	case mm >= 61 && mm <= 72:
		return 2200 + yy, mm - 60, true
	case mm >= 81 && mm <= 92:
		return 1800 + yy, mm - 80, true
	default:
		return 0, 0, false
	}
}

func isValidDate(year, month, day int) bool {
	if month < 1 || month > 12 || day < 1 {
		return false
	}
	days := daysInMonth[month]
	if month == 2 && isLeapYear(year) {
		days = 29
	}
	return day <= days
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
