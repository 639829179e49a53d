package sedol

import (
	"errors"
	"fmt"
)

// ErrInvalidLength возвращается, если длина строки не равна семи символам.
var (
	ErrInvalidLength = errors.New("invalid length, expected 7")
	// ErrInvalidOldFormat возвращается, если строка начинается с цифры, но
	// содержит не только цифры: SEDOL старого формата состоят из одних цифр.
	ErrInvalidOldFormat = errors.New("invalid format, expected all digits when first char is digit")
)

// InvalidCharacterError возвращается при первом символе вне допустимого набора.
type InvalidCharacterError struct {
	Character rune
}

func (e *InvalidCharacterError) Error() string {
	return fmt.Sprintf("invalid character %c", e.Character)
}

// InvalidCheckDigitError возвращается при несовпадении контрольного разряда.
type InvalidCheckDigitError struct {
	// Got — контрольный разряд из проверяемой строки.
	Got rune
	// Calc — вычисленный контрольный разряд.
	Calc rune
}

func (e *InvalidCheckDigitError) Error() string {
	return fmt.Sprintf("invalid check digit %c, expected %c", e.Got, e.Calc)
}
