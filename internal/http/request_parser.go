// Package http provides the JSON HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request
// data. It consolidates the repeated patterns of user identification, body
// decoding, and query parameter extraction used by the handlers.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"frogbudget/internal/core"
)

// maxBodyBytes caps decoded request bodies. Import payloads are larger and
// use maxImportBytes instead.
const (
	maxBodyBytes   = 1 << 20  // 1 MiB
	maxImportBytes = 10 << 20 // 10 MiB
)

// userIDHeader carries the caller identity. There is no auth protocol; the
// deployment fronts the API with something that sets this header.
const userIDHeader = "X-User-ID"

// requireUserID extracts the caller identity from the request headers.
// Returns an error response builder when the header is missing.
func requireUserID(r *http.Request) (string, *JSONResponseBuilder) {
	userID := strings.TrimSpace(r.Header.Get(userIDHeader))
	if userID == "" {
		return "", BadRequestError("missing " + userIDHeader + " header")
	}
	return sanitizeInput(userID), nil
}

// decodeJSONBody decodes the request body into dst, rejecting unknown
// fields and oversized payloads.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) *JSONResponseBuilder {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return BadRequestError("request body too large")
		case errors.Is(err, io.EOF):
			return BadRequestError("request body is empty")
		default:
			return BadRequestError("invalid JSON body: " + err.Error())
		}
	}
	// A second document after the first is a malformed request.
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return BadRequestError("request body must contain a single JSON object")
	}
	return nil
}

// parseBoolParam reads an optional boolean query parameter. Absence means
// false; anything other than "true"/"false"/"1"/"0" is a client error.
func parseBoolParam(r *http.Request, name string) (bool, *JSONResponseBuilder) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	switch v {
	case "", "false", "0":
		return false, nil
	case "true", "1":
		return true, nil
	default:
		return false, BadRequestError(fmt.Sprintf("invalid %s parameter %q", name, v))
	}
}

// parseDateParam reads an optional ISO date query parameter. Absence yields
// the zero Date.
func parseDateParam(r *http.Request, name string) (core.Date, *JSONResponseBuilder) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return core.Date{}, nil
	}
	d, err := core.ParseDate(v)
	if err != nil {
		return core.Date{}, BadRequestError(fmt.Sprintf("invalid %s parameter %q: expected YYYY-MM-DD", name, v))
	}
	return d, nil
}

// parseAmount converts a decimal string like "12.34" into cents.
func parseAmount(value string) (core.Money, *JSONResponseBuilder) {
	cents, err := core.ParseDecimalToCents(strings.TrimSpace(value))
	if err != nil {
		return core.Money{}, UnprocessableEntityError(fmt.Sprintf("invalid amount %q", value))
	}
	return core.Money{Cents: cents}, nil
}
