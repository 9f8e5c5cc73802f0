// ABOUTME: Maps domain errors to HTTP status codes and JSON error bodies
// ABOUTME: Installed as echo's HTTPErrorHandler so handlers just return errors

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/harper/matjip/internal/storage"
)

// HTTPErrorInfo contains the HTTP status code and message for an error.
type HTTPErrorInfo struct {
	Status  int
	Message string
}

// ErrorMapping represents a single error to HTTP status/message mapping.
type ErrorMapping struct {
	Error   error
	Status  int
	Message string
}

// ErrorMapper maps domain errors to HTTP status codes and messages.
type ErrorMapper struct {
	mappings       []ErrorMapping
	defaultStatus  int
	defaultMessage string
}

// NewErrorMapper creates an ErrorMapper answering 500 for anything unmapped.
func NewErrorMapper() *ErrorMapper {
	return &ErrorMapper{
		defaultStatus:  http.StatusInternalServerError,
		defaultMessage: "internal server error",
	}
}

// WithMapping adds an error mapping. An empty message uses err.Error() of
// the matched error at map time.
func (m *ErrorMapper) WithMapping(err error, status int, message string) *ErrorMapper {
	m.mappings = append(m.mappings, ErrorMapping{Error: err, Status: status, Message: message})
	return m
}

// Map converts an error to HTTP status and message.
func (m *ErrorMapper) Map(err error) HTTPErrorInfo {
	if err == nil {
		return HTTPErrorInfo{Status: http.StatusOK}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return HTTPErrorInfo{Status: http.StatusGatewayTimeout, Message: "request timeout"}
	}
	if errors.Is(err, context.Canceled) {
		return HTTPErrorInfo{Status: http.StatusServiceUnavailable, Message: "request cancelled"}
	}

	for _, mapping := range m.mappings {
		if errors.Is(err, mapping.Error) {
			msg := mapping.Message
			if msg == "" {
				msg = err.Error()
			}
			return HTTPErrorInfo{Status: mapping.Status, Message: msg}
		}
	}

	return HTTPErrorInfo{Status: m.defaultStatus, Message: m.defaultMessage}
}

// domainErrors is the mapping used by the API.
func domainErrors() *ErrorMapper {
	return NewErrorMapper().
		WithMapping(storage.ErrValidation, http.StatusBadRequest, "").
		WithMapping(storage.ErrNotFound, http.StatusNotFound, "not found").
		WithMapping(storage.ErrImportFormat, http.StatusUnprocessableEntity, "").
		WithMapping(ErrCrossOrigin, http.StatusForbidden, "cross-origin request refused").
		WithMapping(ErrMissingToken, http.StatusUnauthorized, "missing token").
		WithMapping(ErrInvalidToken, http.StatusUnauthorized, "invalid token")
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// errorHandler renders errors returned by handlers and middleware.
func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var body errorBody
	status := http.StatusInternalServerError

	var he *echo.HTTPError
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		status = http.StatusRequestEntityTooLarge
		body.Error = fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit)
	} else if errors.As(err, &he) {
		status = he.Code
		if msg, ok := he.Message.(string); ok {
			body.Error = msg
		} else {
			body.Error = http.StatusText(status)
		}
	} else {
		info := s.errors.Map(err)
		status, body.Error = info.Status, info.Message
		var verr *storage.ValidationError
		if errors.As(err, &verr) {
			body.Field = verr.Field
		}
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			slog.String("method", c.Request().Method),
			slog.String("path", c.Path()),
			slog.Any("error", err))
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		s.logger.Warn("write error response", slog.Any("error", err))
	}
}
