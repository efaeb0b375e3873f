package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"libris/internal/apperr"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		kind   apperr.Kind
		status int
	}{
		{apperr.Validation, http.StatusBadRequest},
		{apperr.NotFound, http.StatusNotFound},
		{apperr.Conflict, http.StatusBadRequest},
		{apperr.State, http.StatusBadRequest},
		{apperr.Config, http.StatusInternalServerError},
		{apperr.Execution, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.status, tc.kind.HTTPStatus())
		assert.Equal(t, tc.status, apperr.StatusOf(apperr.New(tc.kind, "boom")))
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := apperr.Wrap(apperr.Config, "unable to initialize gemini client", cause)

	assert.Equal(t, "unable to initialize gemini client: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, apperr.Config, apperr.KindOf(err))
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := apperr.New(apperr.Conflict, "existing vector store uses a different embedding model")
	wrapped := fmt.Errorf("ingest: %w", err)

	assert.Equal(t, apperr.Conflict, apperr.KindOf(wrapped))
	assert.Equal(t, http.StatusBadRequest, apperr.StatusOf(wrapped))
}

func TestUntaggedErrorIsInternal(t *testing.T) {
	assert.Equal(t, apperr.Kind(0), apperr.KindOf(errors.New("plain")))
	assert.Equal(t, http.StatusInternalServerError, apperr.StatusOf(errors.New("plain")))
}
