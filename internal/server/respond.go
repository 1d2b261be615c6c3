package server

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"tailorbase/internal/errors"

	"github.com/google/uuid"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *apiError `json:"error,omitempty"`
}

// writeData writes a success envelope
func (s *Server) writeData(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(apiResponse{Success: true, Data: data}); err != nil {
		s.logger.LogError(err, "Failed to encode response")
	}
}

// writeError maps an error to the failure envelope using the application
// error code and status tables. Unclassified errors become 500s.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := errors.HTTPStatus(err)
	code := errors.ErrorCode(err)

	message := "Internal server error"
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		message = appErr.Message
	}

	if status >= http.StatusInternalServerError {
		s.logger.LogError(err, "Request failed", "code", code)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encodeErr := json.NewEncoder(w).Encode(apiResponse{
		Success: false,
		Error:   &apiError{Code: code, Message: message},
	})
	if encodeErr != nil {
		s.logger.LogError(encodeErr, "Failed to encode error response")
	}
}

// parseJSONRequest reads and decodes a JSON request body
func parseJSONRequest(r *http.Request, v any) error {
	contentType := r.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, "application/json") {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"Content-Type must be application/json", nil)
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if stderrors.As(err, &maxBytesErr) {
			return errors.NewValidationError(errors.ErrCodeFieldTooLong,
				fmt.Sprintf("Request body exceeds %d bytes", maxBytesErr.Limit), err)
		}
		return errors.NewIOError(errors.ErrCodeInvalidRequest,
			"Failed to read request body", err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"Request body is not valid JSON", err)
	}
	return nil
}

// parseUUID validates a UUID coming from a request field or path segment
func parseUUID(field, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil, errors.NewValidationError(errors.ErrCodeInvalidUUID,
			fmt.Sprintf("%s must be a valid UUID", field), err)
	}
	return id, nil
}

// pathUUID validates the {id} path segment of the request
func pathUUID(r *http.Request) (uuid.UUID, error) {
	return parseUUID("id", r.PathValue("id"))
}

// requireField rejects blank required string fields
func requireField(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("%s is required", name), nil)
	}
	return nil
}

// boundField enforces the configured free-text size cap
func (s *Server) boundField(name, value string) error {
	limit := s.cfg.App.MaxContentChars
	if limit > 0 && len(value) > limit {
		return errors.NewValidationError(errors.ErrCodeFieldTooLong,
			fmt.Sprintf("%s exceeds the %d character limit", name, limit), nil)
	}
	return nil
}
