package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/haple/bazaar/internal/mq"
	"github.com/haple/bazaar/internal/task"
)

// ErrorCode — код ошибки API.
type ErrorCode string

const (
	ErrCodeBadRequest    ErrorCode = "BAD_REQUEST"
	ErrCodeUnavailable   ErrorCode = "QUEUE_UNAVAILABLE"
	ErrCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// ErrorResponse — структура ответа с ошибкой.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail — детали ошибки.
type ErrorDetail struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// DataResponse — структура успешного ответа.
type DataResponse struct {
	Data any `json:"data"`
}

// JSON отправляет JSON ответ.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Success отправляет успешный ответ с данными.
func Success(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, DataResponse{Data: data})
}

// Accepted отправляет 202: задача принята брокером, результат асинхронный.
func Accepted(w http.ResponseWriter, data any) {
	JSON(w, http.StatusAccepted, DataResponse{Data: data})
}

// Error отправляет ответ с ошибкой.
func Error(w http.ResponseWriter, status int, code ErrorCode, message string) {
	JSON(w, status, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// BadRequest отправляет ошибку 400.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// InternalError отправляет ошибку 500.
func InternalError(w http.ResponseWriter, logger *slog.Logger, err error) {
	logger.Error("internal error", "error", err)
	Error(w, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
}

// HandleEnqueueError преобразует ошибку постановки в очередь в HTTP ответ.
// Возвращает true, если ошибка обработана.
func HandleEnqueueError(w http.ResponseWriter, logger *slog.Logger, err error) bool {
	if err == nil {
		return false
	}

	// Невалидная задача — ошибка вызывающего
	switch {
	case errors.Is(err, task.ErrNoRecipients),
		errors.Is(err, task.ErrNoBody),
		errors.Is(err, task.ErrUnknownEmailKind),
		errors.Is(err, task.ErrUnknownExportKind),
		errors.Is(err, task.ErrBadFileName):
		BadRequest(w, err.Error())
		return true
	}

	if errors.Is(err, mq.ErrPublish) || errors.Is(err, mq.ErrNoChannel) {
		logger.Error("enqueue failed", "error", err)
		Error(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "task queue unavailable")
		return true
	}

	InternalError(w, logger, err)
	return true
}
