package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/hireflow/internal/history"
	"github.com/jonathan/hireflow/internal/llm"
	"github.com/jonathan/hireflow/internal/payload"
	"github.com/jonathan/hireflow/internal/synthesis"
	"github.com/jonathan/hireflow/internal/transport"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrDraftingDisabled is returned when no drafting client is configured.
var ErrDraftingDisabled = errors.New("drafting is not configured")

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		failure       *payload.Failure
		requestErr    *synthesis.RequestError
		validationErr *ErrValidation
		fieldErrs     validator.ValidationErrors
		transportErr  *transport.Error
	)

	switch {
	case errors.As(err, &failure):
		switch failure.Reason {
		case payload.ReasonServerError, payload.ReasonNotFound:
			return http.StatusBadGateway
		case payload.ReasonMissingData:
			return http.StatusGone
		default:
			return http.StatusUnprocessableEntity
		}
	case errors.As(err, &requestErr), errors.As(err, &validationErr), errors.As(err, &fieldErrs):
		return http.StatusBadRequest
	case errors.Is(err, history.ErrEntryNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDraftingDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &transportErr), errors.Is(err, llm.ErrEmptyDraft):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorReason returns the machine-readable reason for a payload failure, if any.
func errorReason(err error) string {
	var failure *payload.Failure
	if errors.As(err, &failure) {
		return string(failure.Reason)
	}
	return ""
}

// errorMessage returns the text shown to API clients.
func errorMessage(err error) string {
	var failure *payload.Failure
	if errors.As(err, &failure) {
		return failure.UserMessage()
	}
	return err.Error()
}
