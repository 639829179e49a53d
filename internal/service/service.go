// Package service реализует бизнес-логику сервиса проверки SEDOL.
package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/sedol-service/internal/model"
	"github.com/mmeshcher/sedol-service/internal/sedol"
)

// ErrInvalidStemLength возвращается, если основа для расчёта контрольного
// разряда короче или длиннее шести символов.
var ErrInvalidStemLength = errors.New("invalid stem length, expected 6")

const (
	historyRetention = 30 * 24 * time.Hour
	cleanupInterval  = 1 * time.Hour
	stemLength       = 6
)

// Repository описывает контракт доступа к журналу проверок, используемый сервисом.
type Repository interface {
	Close() error
	CreateValidation(ctx context.Context, v model.Validation) error
	RecentValidations(ctx context.Context, limit int) ([]model.Validation, error)
	DeleteValidationsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Service содержит бизнес-логику сервиса проверки SEDOL.
type Service struct {
	repo         Repository
	logger       *zap.Logger
	historyLimit int
}

// NewService создаёт новый сервис. Репозиторий может быть nil: в этом случае
// проверки выполняются без ведения журнала.
func NewService(repo Repository, logger *zap.Logger, historyLimit int) *Service {
	return &Service{
		repo:         repo,
		logger:       logger,
		historyLimit: historyLimit,
	}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

// ValidateSedol проверяет идентификатор и возвращает вердикт. При clean
// строка предварительно очищается от символов, не являющихся ASCII-буквами
// и цифрами. Вердикт записывается в журнал, если хранилище настроено; сбой
// записи не влияет на результат проверки.
func (s *Service) ValidateSedol(ctx context.Context, input string, clean bool) model.Validation {
	candidate := input
	if clean {
		candidate = sedol.Clean(candidate)
	}

	v := model.Validation{
		Input:     input,
		CreatedAt: time.Now(),
	}

	normalized, err := sedol.Validate(candidate)
	if err != nil {
		v.FailureKind = failureKind(err)
		v.FailureMessage = err.Error()
	} else {
		v.Valid = true
		v.Sedol = normalized
	}

	s.recordValidation(ctx, v)

	return v
}

// CompleteStem вычисляет контрольный разряд для шестисимвольной основы и
// возвращает полный идентификатор вместе с разрядом. Основа проверяется до
// вызова калькулятора, поэтому его предусловие всегда выполнено.
func (s *Service) CompleteStem(_ context.Context, stem string) (string, rune, error) {
	for _, r := range stem {
		if !isAlphabetMember(r) {
			return "", 0, &sedol.InvalidCharacterError{Character: r}
		}
	}
	if len(stem) != stemLength {
		return "", 0, ErrInvalidStemLength
	}

	digit := sedol.CalcCheckDigit(stem)

	return stem + string(digit), digit, nil
}

// RecentValidations возвращает последние вердикты из журнала. Без
// настроенного хранилища журнал считается пустым.
func (s *Service) RecentValidations(ctx context.Context) ([]model.Validation, error) {
	if s.repo == nil {
		return nil, nil
	}
	return s.repo.RecentValidations(ctx, s.historyLimit)
}

// StartHistoryCleanup запускает фоновый процесс удаления вердиктов старше
// окна хранения. Процесс останавливается при отмене контекста.
func (s *Service) StartHistoryCleanup(ctx context.Context) {
	if s.repo == nil {
		return
	}

	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.pruneHistory(ctx)
			}
		}
	}()
}

func (s *Service) pruneHistory(ctx context.Context) {
	cutoff := time.Now().Add(-historyRetention)

	deleted, err := s.repo.DeleteValidationsBefore(ctx, cutoff)
	if err != nil {
		s.logger.Warn("history cleanup error", zap.Error(err))
		return
	}

	if deleted > 0 {
		s.logger.Info("history cleanup", zap.Int64("deleted", deleted))
	}
}

func (s *Service) recordValidation(ctx context.Context, v model.Validation) {
	if s.repo == nil {
		return
	}

	if err := s.repo.CreateValidation(ctx, v); err != nil {
		s.logger.Warn("record validation error", zap.Error(err), zap.String("input", v.Input))
	}
}

func isAlphabetMember(r rune) bool {
	for _, a := range sedol.Alphabet {
		if a == r {
			return true
		}
	}
	return false
}

func failureKind(err error) model.FailureKind {
	var charErr *sedol.InvalidCharacterError
	var digitErr *sedol.InvalidCheckDigitError

	switch {
	case errors.As(err, &charErr):
		return model.FailureKindCharacter
	case errors.Is(err, sedol.ErrInvalidLength):
		return model.FailureKindLength
	case errors.Is(err, sedol.ErrInvalidOldFormat):
		return model.FailureKindOldFormat
	case errors.As(err, &digitErr):
		return model.FailureKindCheckDigit
	}

	return ""
}
