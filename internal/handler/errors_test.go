package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pkordes/museo-companion/internal/domain"
	"github.com/pkordes/museo-companion/internal/museum"
	"github.com/pkordes/museo-companion/internal/visit"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		code     string
		severity string
		message  string
	}{
		{
			name:   "first stop",
			err:    fmt.Errorf("visit.Tracker.GoToPrevious: %w", visit.ErrAtFirstStop),
			status: http.StatusConflict, code: "at_first_stop", severity: SeverityWarning,
			message: "You are already at the first stop.",
		},
		{
			name:   "validation",
			err:    fmt.Errorf("service.ProfileService.Complete: %w", fmt.Errorf("%w: city is required", domain.ErrValidation)),
			status: http.StatusUnprocessableEntity, code: "validation_error", severity: SeverityWarning,
			message: "city is required",
		},
		{
			name:   "not current stop",
			err:    fmt.Errorf("visit.Tracker.Skip: %w", visit.ErrNotCurrentStop),
			status: http.StatusConflict, code: "conflict", severity: SeverityError,
			message: "stop is not the current stop",
		},
		{
			name:   "not found",
			err:    fmt.Errorf("service.VisitService.Get: %w", domain.ErrNotFound),
			status: http.StatusNotFound, code: "not_found", severity: SeverityError,
			message: "not found",
		},
		{
			name:   "unauthenticated",
			err:    domain.ErrUnauthenticated,
			status: http.StatusUnauthorized, code: "unauthenticated", severity: SeverityError,
			message: "please log in",
		},
		{
			name:   "museum closed",
			err:    fmt.Errorf("service: %w", &museum.APIError{Status: 400, Kind: museum.KindClosed, Message: "El museo está cerrado"}),
			status: http.StatusConflict, code: "museum_closed", severity: SeverityError,
			message: "El museo está cerrado",
		},
		{
			name:   "schedule adjusted",
			err:    &museum.APIError{Status: 400, Kind: museum.KindScheduleAdjusted, Message: "Tiempo ajustado a 60 minutos"},
			status: http.StatusConflict, code: "schedule_adjusted", severity: SeverityWarning,
			message: "Tiempo ajustado a 60 minutos",
		},
		{
			name:   "backend validation",
			err:    &museum.APIError{Status: 422, Kind: museum.KindValidation, Message: "tiempo_disponible: too small"},
			status: http.StatusUnprocessableEntity, code: "validation_error", severity: SeverityWarning,
			message: "tiempo_disponible: too small",
		},
		{
			name:   "backend failure",
			err:    &museum.APIError{Status: 500, Kind: museum.KindUnknown},
			status: http.StatusBadGateway, code: "backend_error", severity: SeverityError,
			message: "Internal Server Error",
		},
		{
			name:   "unreachable",
			err:    fmt.Errorf("museum: GET /areas/: %w: %w", museum.ErrUnreachable, errors.New("connection refused")),
			status: http.StatusBadGateway, code: "backend_unavailable", severity: SeverityError,
			message: "the museum service is not reachable right now",
		},
		{
			name:   "too large",
			err:    &http.MaxBytesError{Limit: 10},
			status: http.StatusRequestEntityTooLarge, code: "payload_too_large", severity: SeverityError,
			message: "request body is too large",
		},
		{
			name:   "unexpected",
			err:    errors.New("pool closed"),
			status: http.StatusInternalServerError, code: "internal_error", severity: SeverityError,
			message: "internal server error",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := classify(tc.err)

			assert.Equal(t, tc.status, got.status)
			assert.Equal(t, ErrorDetail{Code: tc.code, Message: tc.message, Severity: tc.severity}, got.detail)
		})
	}
}
