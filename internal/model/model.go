// Package model содержит доменные сущности сервиса проверки SEDOL.
package model

import "time"

// FailureKind описывает причину отклонения идентификатора.
type FailureKind string

const (
	FailureKindCharacter  FailureKind = "INVALID_CHARACTER"
	FailureKindLength     FailureKind = "INVALID_LENGTH"
	FailureKindOldFormat  FailureKind = "INVALID_OLD_FORMAT"
	FailureKindCheckDigit FailureKind = "INVALID_CHECK_DIGIT"
)

// Validation описывает вердикт по одному проверенному идентификатору.
type Validation struct {
	// Input — строка в том виде, в котором её прислал клиент.
	Input string
	// Sedol — нормализованный идентификатор; пустой при отрицательном вердикте.
	Sedol string
	// Valid — результат проверки.
	Valid bool
	// FailureKind и FailureMessage заполнены только при отрицательном вердикте.
	FailureKind    FailureKind
	FailureMessage string
	CreatedAt      time.Time
}
