// Package server provides the HTTP API for the profile architect.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/profile-architect/internal/generation"
	"github.com/jonathan/profile-architect/internal/ingestion"
	"github.com/jonathan/profile-architect/internal/llm"
	"github.com/jonathan/profile-architect/internal/rendering"
	"github.com/jonathan/profile-architect/internal/schemas"
	"github.com/jonathan/profile-architect/internal/types"
	"github.com/jonathan/profile-architect/internal/workflow"
)

// ErrSessionNotFound indicates the session ID is unknown or malformed
type ErrSessionNotFound struct {
	ID string
}

func (e *ErrSessionNotFound) Error() string {
	return fmt.Sprintf("session not found: %s", e.ID)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		notFound     *ErrSessionNotFound
		reqErr       *ErrValidation
		inputErr     *types.ValidationError
		transportErr *llm.TransportError
		malformedErr *schemas.MalformedOutputError
		exportErr    *rendering.ExportError
	)

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &reqErr), errors.As(err, &inputErr), errors.Is(err, ingestion.ErrInvalidDataURL):
		return http.StatusBadRequest
	case errors.Is(err, ingestion.ErrAttachmentTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, generation.ErrStageBusy), errors.Is(err, generation.ErrStaleResult),
		errors.Is(err, generation.ErrNoDocument), errors.Is(err, workflow.ErrWrongStep):
		return http.StatusConflict
	case errors.As(err, &transportErr), errors.As(err, &malformedErr):
		return http.StatusBadGateway
	case errors.As(err, &exportErr):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage picks the text sent to the client. Stage failures carry a user-facing
// message; unclassified errors are not echoed.
func errorMessage(err error) string {
	var stageErr *generation.StageError
	if errors.As(err, &stageErr) {
		return stageErr.Message
	}
	if HTTPStatus(err) == http.StatusInternalServerError {
		var exportErr *rendering.ExportError
		if errors.As(err, &exportErr) {
			return fmt.Sprintf("%s export failed: %s", exportErr.Format, exportErr.Message)
		}
		return "internal server error"
	}
	return err.Error()
}
