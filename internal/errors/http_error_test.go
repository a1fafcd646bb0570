package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", NewValidationError("bad phone"), http.StatusBadRequest},
		{"wrapped validation", fmt.Errorf("create: %w", NewValidationError("dup")), http.StatusBadRequest},
		{"not found", fmt.Errorf("alert 7: %w", ErrNotFound), http.StatusNotFound},
		{"upstream", fmt.Errorf("foreup: %w", ErrUpstreamUnavailable), http.StatusBadGateway},
		{"http error", ErrUnauthorized("nope"), http.StatusUnauthorized},
		{"other", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}
