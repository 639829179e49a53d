// Package sedol реализует проверку, нормализацию и расчёт контрольного
// разряда идентификаторов SEDOL.
package sedol

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Alphabet — упорядоченный набор из 31 допустимого символа SEDOL:
// десять цифр и 21 согласная буква (гласные исключены).
const Alphabet = "0123456789BCDFGHJKLMNPQRSTVWXYZ"

// Length — длина корректного SEDOL в символах.
const Length = 7

// weights — позиционные веса контрольной суммы для первых шести символов.
var weights = [6]int{1, 3, 1, 7, 3, 9}

// Clean удаляет из строки все символы, кроме ASCII-букв и ASCII-цифр.
// Порядок и регистр оставшихся символов сохраняются: приведение к верхнему
// регистру — ответственность вызывающего кода, строчные буквы валидатор
// отклонит как недопустимые символы.
func Clean(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= '0' && r <= '9') || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Validate проверяет строку по правилам SEDOL и возвращает её без изменений
// при успехе. Правила применяются строго по порядку, первая ошибка
// прерывает проверку:
//  1. все символы принадлежат допустимому набору;
//  2. длина строки равна семи символам;
//  3. строка, начинающаяся с цифры, состоит только из цифр (старый формат);
//  4. последний символ совпадает с вычисленным контрольным разрядом.
func Validate(s string) (string, error) {
	for _, r := range s {
		if alphabetIndex(r) < 0 {
			return "", &InvalidCharacterError{Character: r}
		}
	}
	if utf8.RuneCountInString(s) != Length {
		return "", ErrInvalidLength
	}
	if s[0] >= '0' && s[0] <= '9' && !allDigits(s) {
		return "", ErrInvalidOldFormat
	}

	got := rune(s[len(s)-1])
	calc := CalcCheckDigit(s)
	if got != calc {
		return "", &InvalidCheckDigitError{Got: got, Calc: calc}
	}

	return s, nil
}

// CalcCheckDigit вычисляет контрольный разряд по первым шести символам
// строки: значения символов взвешиваются по weights, разряд равен
// (10 - S mod 10) mod 10. Лишние символы после шестого игнорируются.
//
// Предусловие: первые шесть символов принадлежат Alphabet. Нарушение —
// ошибка программирования, функция паникует; публичный путь через Validate
// такие строки не пропускает.
func CalcCheckDigit(s string) rune {
	sum := 0
	for i, r := range s {
		if i == len(weights) {
			break
		}
		v := checksumValue(r)
		if v < 0 {
			panic(fmt.Sprintf("sedol: character %q is not in the SEDOL alphabet", r))
		}
		sum += weights[i] * v
	}
	return rune('0' + (10-sum%10)%10)
}

// checksumValue возвращает числовое значение символа в контрольной сумме:
// цифры — по номиналу (0–9), буквы — позиция в латинском алфавите плюс
// десять (B=11 ... Z=35, значения гласных остаются неиспользуемыми).
// Для символов вне Alphabet возвращает -1.
func checksumValue(r rune) int {
	if alphabetIndex(r) < 0 {
		return -1
	}
	if r <= '9' {
		return int(r - '0')
	}
	return int(r-'A') + 10
}

// alphabetIndex возвращает позицию символа в Alphabet или -1.
// Набор состоит только из ASCII, поэтому байтовый индекс совпадает с позицией.
func alphabetIndex(r rune) int {
	return strings.IndexRune(Alphabet, r)
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
