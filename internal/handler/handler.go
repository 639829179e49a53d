// Package handler содержит HTTP-обработчики API сервиса проверки SEDOL.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/sedol-service/internal/model"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	ValidateSedol(ctx context.Context, input string, clean bool) model.Validation
	CompleteStem(ctx context.Context, stem string) (string, rune, error)
	RecentValidations(ctx context.Context) ([]model.Validation, error)
}

// Handler реализует HTTP-обработчики API сервиса проверки SEDOL.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: s,
		logger:  logger,
	}
}

type validateRequest struct {
	Sedol string `json:"sedol"`
	Clean bool   `json:"clean"`
}

type validateResponse struct {
	Sedol     string `json:"sedol,omitempty"`
	Valid     bool   `json:"valid"`
	ErrorKind string `json:"error_kind,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ValidateSedol проверяет присланный идентификатор и возвращает вердикт.
func (h *Handler) ValidateSedol(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if req.Sedol == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	v := h.service.ValidateSedol(r.Context(), req.Sedol, req.Clean)

	resp := validateResponse{
		Sedol:     v.Sedol,
		Valid:     v.Valid,
		ErrorKind: string(v.FailureKind),
		Error:     v.FailureMessage,
	}

	status := http.StatusOK
	if !v.Valid {
		status = http.StatusUnprocessableEntity
	}

	writeJSON(w, status, resp, h.logger)
}

type checkDigitRequest struct {
	Stem string `json:"stem"`
}

type checkDigitResponse struct {
	Stem       string `json:"stem"`
	CheckDigit string `json:"check_digit"`
	Sedol      string `json:"sedol"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// CheckDigit вычисляет контрольный разряд для шестисимвольной основы.
func (h *Handler) CheckDigit(w http.ResponseWriter, r *http.Request) {
	var req checkDigitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if req.Stem == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	full, digit, err := h.service.CompleteStem(r.Context(), req.Stem)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()}, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, checkDigitResponse{
		Stem:       req.Stem,
		CheckDigit: string(digit),
		Sedol:      full,
	}, h.logger)
}

type validationResponse struct {
	Input     string `json:"input"`
	Sedol     string `json:"sedol,omitempty"`
	Valid     bool   `json:"valid"`
	ErrorKind string `json:"error_kind,omitempty"`
	Error     string `json:"error,omitempty"`
	CreatedAt string `json:"created_at"`
}

// GetValidations возвращает последние вердикты из журнала проверок.
func (h *Handler) GetValidations(w http.ResponseWriter, r *http.Request) {
	validations, err := h.service.RecentValidations(r.Context())
	if err != nil {
		h.logger.Error("get validations error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if len(validations) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	resp := make([]validationResponse, 0, len(validations))
	for _, v := range validations {
		resp = append(resp, validationResponse{
			Input:     v.Input,
			Sedol:     v.Sedol,
			Valid:     v.Valid,
			ErrorKind: string(v.FailureKind),
			Error:     v.FailureMessage,
			CreatedAt: v.CreatedAt.Format(time.RFC3339),
		})
	}

	writeJSON(w, http.StatusOK, resp, h.logger)
}

func writeJSON(w http.ResponseWriter, status int, v any, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response error", zap.Error(err))
	}
}
