package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/book-expert/ai-router/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUpstream = errors.New("upstream unavailable")

func TestStatusOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   apperr.Kind
	}{
		{"validation", apperr.Validation("Missing 'text'"), http.StatusBadRequest, apperr.KindValidation},
		{"not found", apperr.NotFound("Route not found"), http.StatusNotFound, apperr.KindNotFound},
		{"provider", apperr.Provider("sentiment", errUpstream), http.StatusInternalServerError, apperr.KindProvider},
		{"internal", apperr.Internal(errUpstream), http.StatusInternalServerError, apperr.KindInternal},
		{"unclassified", errUpstream, http.StatusInternalServerError, apperr.KindInternal},
		{
			"wrapped validation",
			fmt.Errorf("handler: %w", apperr.Validation("bad")),
			http.StatusBadRequest,
			apperr.KindValidation,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.wantStatus, apperr.StatusOf(testCase.err))
			assert.Equal(t, testCase.wantKind, apperr.KindOf(testCase.err))
		})
	}
}

func TestError_UnwrapsCause(t *testing.T) {
	t.Parallel()

	err := apperr.Provider("translate", errUpstream)
	require.ErrorIs(t, err, errUpstream)
	assert.Contains(t, err.Error(), "translate call failed")
	assert.Contains(t, err.Error(), "upstream unavailable")
}
