package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jonathan/profile-architect/internal/generation"
	"github.com/jonathan/profile-architect/internal/ingestion"
	"github.com/jonathan/profile-architect/internal/llm"
	"github.com/jonathan/profile-architect/internal/rendering"
	"github.com/jonathan/profile-architect/internal/schemas"
	"github.com/jonathan/profile-architect/internal/types"
	"github.com/jonathan/profile-architect/internal/workflow"
	"github.com/stretchr/testify/assert"
)

func TestErrSessionNotFound(t *testing.T) {
	err := &ErrSessionNotFound{ID: "abc"}
	assert.Equal(t, "session not found: abc", err.Error())
	assert.Equal(t, http.StatusNotFound, HTTPStatus(err))
}

func TestErrValidation(t *testing.T) {
	err := &ErrValidation{Field: "format", Message: "unsupported"}
	assert.Equal(t, "validation error: format - unsupported", err.Error())
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"input validation", types.NewValidationError("targetRole", "required", "missing"), http.StatusBadRequest},
		{"bad data url", fmt.Errorf("attachment 1: %w", ingestion.ErrInvalidDataURL), http.StatusBadRequest},
		{"too large", ingestion.ErrAttachmentTooLarge, http.StatusRequestEntityTooLarge},
		{"busy", generation.ErrStageBusy, http.StatusConflict},
		{"stale", generation.ErrStaleResult, http.StatusConflict},
		{"no document", generation.ErrNoDocument, http.StatusConflict},
		{"wrong step", fmt.Errorf("%w: nope", workflow.ErrWrongStep), http.StatusConflict},
		{"transport", &generation.StageError{Stage: generation.StageGenerate, Message: "x", Cause: &llm.TransportError{Message: "down"}}, http.StatusBadGateway},
		{"malformed", &generation.StageError{Stage: generation.StageRefine, Message: "x", Cause: &schemas.MalformedOutputError{Message: "bad"}}, http.StatusBadGateway},
		{"export", &rendering.ExportError{Format: "pdf", Message: "no browser"}, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestErrorMessage(t *testing.T) {
	stageErr := &generation.StageError{Stage: generation.StageCoverLetter, Message: generation.CoverLetterFailedMessage, Cause: errors.New("secret detail")}
	assert.Equal(t, generation.CoverLetterFailedMessage, errorMessage(stageErr))

	assert.Equal(t, "internal server error", errorMessage(errors.New("secret detail")))
	assert.Equal(t, "pdf export failed: no browser", errorMessage(&rendering.ExportError{Format: "pdf", Message: "no browser", Cause: errors.New("exec")}))
	assert.Equal(t, generation.ErrStageBusy.Error(), errorMessage(generation.ErrStageBusy))
}
