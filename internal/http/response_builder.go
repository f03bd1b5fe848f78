// Package http provides the JSON API server.
//
// This file implements a builder for JSON responses so handlers produce a
// consistent envelope and error shape.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"frogbudget/internal/core"
	"frogbudget/internal/services"
	"frogbudget/internal/storage"
)

// JSONResponseBuilder accumulates status, headers and a payload, then
// writes them in one step.
type JSONResponseBuilder struct {
	statusCode int
	payload    any
	headers    map[string]string
}

// NewJSONResponse creates a response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Body sets the payload to be JSON-encoded.
func (b *JSONResponseBuilder) Body(payload any) *JSONResponseBuilder {
	b.payload = payload
	return b
}

// Header adds a custom header to the response.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Write sends the built response.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	if b.payload != nil {
		if err := json.NewEncoder(w).Encode(b.payload); err != nil {
			slog.Error("Failed to encode response", "error", err)
		}
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// ErrorResponse creates a JSON error response.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(statusCode).Body(errorBody{Error: message})
}

func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func UnprocessableEntityError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, message)
}

func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

func InternalServerError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

func ConflictError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusConflict, message)
}

// mapServiceError classifies an error from the service layer into a
// response. Validation failures are the client's fault; unknown errors are
// reported as internal without leaking detail.
func mapServiceError(err error) *JSONResponseBuilder {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return NotFoundError("record not found")
	case errors.Is(err, services.ErrAlreadySeeded):
		return ConflictError("categories already seeded")
	case isValidationError(err):
		return UnprocessableEntityError(err.Error())
	default:
		return InternalServerError("internal error")
	}
}

func isValidationError(err error) bool {
	if errors.Is(err, services.ErrInvalidInput) {
		return true
	}
	for _, sentinel := range []error{
		core.ErrInvalidDate,
		core.ErrInvalidAmount,
		core.ErrInvalidPercentage,
		core.ErrInvalidFrequency,
		core.ErrInvalidPriority,
		core.ErrEmptyName,
		core.ErrEmptyCategory,
		core.ErrEmptyUser,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
