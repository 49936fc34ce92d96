package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"bestea-be/internal/apperr"
	"bestea-be/internal/logger"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

var (
	ErrMalformedBody = apperr.Validation("MALFORMED_BODY", "request body is not valid JSON")
	ErrBodyTooLarge  = apperr.Validation("BODY_TOO_LARGE", "request body is too large")
)

// ErrorBody is the shape of every failed response.
type ErrorBody struct {
	Success bool           `json:"success"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// DecodeJSON reads exactly one JSON object into dst. Unknown fields and
// trailing data are rejected.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return ErrMalformedBody.WithDetail("reason", "empty body")
	}

	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return ErrBodyTooLarge
		case errors.Is(err, io.EOF):
			return ErrMalformedBody.WithDetail("reason", "empty body")
		default:
			return ErrMalformedBody.WithDetail("reason", err.Error())
		}
	}

	if dec.More() {
		return ErrMalformedBody.WithDetail("reason", "unexpected data after JSON object")
	}
	return nil
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation, apperr.KindBusiness:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// WriteError renders err. Anything that is not an *apperr.Error is logged
// and reported as a generic internal error.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	e, ok := apperr.From(err)
	if !ok || e.Kind == apperr.KindInternal {
		logger.FromCtx(r.Context()).Error("request failed",
			zap.String("layer", "transport"),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		WriteJSON(w, http.StatusInternalServerError, ErrorBody{
			Code:    "INTERNAL_ERROR",
			Message: "something went wrong, please try again",
		})
		return
	}

	WriteJSON(w, StatusFor(e.Kind), ErrorBody{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}

// WriteStatus writes a bare status as an error body, for middleware that
// rejects a request before any handler runs.
func WriteStatus(w http.ResponseWriter, status int, code string) {
	WriteJSON(w, status, ErrorBody{Code: code, Message: fmt.Sprintf("%d %s", status, http.StatusText(status))})
}
