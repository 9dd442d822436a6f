package museum_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/museo-companion/internal/domain"
	"github.com/pkordes/museo-companion/internal/museum"
)

func TestAPIError_Kinds(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		kind    museum.ErrorKind
		message string
		warning bool
	}{
		{
			name:    "structured closed code",
			status:  http.StatusBadRequest,
			body:    `{"detail":{"code":"museum_closed","mensaje":"El museo está cerrado"}}`,
			kind:    museum.KindClosed,
			message: "El museo está cerrado",
		},
		{
			name:    "schedule adjusted is a warning",
			status:  http.StatusConflict,
			body:    `{"error":{"code":"schedule_adjusted","message":"Se ajustó la duración"}}`,
			kind:    museum.KindScheduleAdjusted,
			message: "Se ajustó la duración",
			warning: true,
		},
		{
			// message text mentioning closing hours does not change the kind
			name:    "text detail falls back to status",
			status:  http.StatusBadRequest,
			body:    `{"detail":"El museo cierra a las 17:00"}`,
			kind:    museum.KindValidation,
			message: "El museo cierra a las 17:00",
		},
		{
			name:    "request validation list",
			status:  http.StatusUnprocessableEntity,
			body:    `{"detail":[{"msg":"field required"},{"msg":"value too large"}]}`,
			kind:    museum.KindValidation,
			message: "field required; value too large",
		},
		{
			name:    "unauthorized",
			status:  http.StatusUnauthorized,
			body:    `{"detail":"Not authenticated"}`,
			kind:    museum.KindUnauthorized,
			message: "Not authenticated",
		},
		{
			name:    "server error with html body",
			status:  http.StatusBadGateway,
			body:    `<html>bad gateway</html>`,
			kind:    museum.KindUnavailable,
			message: "<html>bad gateway</html>",
		},
		{
			name:    "empty body",
			status:  http.StatusTeapot,
			body:    ``,
			kind:    museum.KindUnknown,
			message: http.StatusText(http.StatusTeapot),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tc.status, tc.body)
			})

			err := c.DeleteItinerary(context.Background(), 1)

			var apiErr *museum.APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tc.status, apiErr.Status)
			assert.Equal(t, tc.kind, apiErr.Kind)
			assert.Equal(t, tc.message, apiErr.Message)
			assert.Equal(t, tc.warning, apiErr.Warning())
		})
	}
}

func TestAPIError_UnwrapsToDomainSentinels(t *testing.T) {
	assert.ErrorIs(t, &museum.APIError{Kind: museum.KindValidation}, domain.ErrValidation)
	assert.ErrorIs(t, &museum.APIError{Kind: museum.KindUnauthorized}, domain.ErrUnauthenticated)
	assert.NotErrorIs(t, &museum.APIError{Kind: museum.KindClosed}, domain.ErrValidation)
}
