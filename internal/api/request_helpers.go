package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/debtwise/insight-api/internal/api/shared"
)

// ErrInvalidPathParam indicates a missing or malformed URL path parameter.
var ErrInvalidPathParam = errors.New("invalid path parameter")

// getPathUUID extracts a UUID from the URL path parameters.
// It parses and validates the UUID, handling common error cases.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, fmt.Errorf("%w: %s is required", ErrInvalidPathParam, paramName)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s has invalid format", ErrInvalidPathParam, paramName)
	}

	return id, nil
}

// handlePathUUID extracts a UUID path parameter, writing a 400 response on
// failure. The bool result reports whether the handler may proceed.
func handlePathUUID(w http.ResponseWriter, r *http.Request, paramName string) (uuid.UUID, bool) {
	id, err := getPathUUID(r, paramName)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return uuid.Nil, false
	}
	return id, true
}
