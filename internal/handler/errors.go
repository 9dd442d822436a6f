package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/pkordes/museo-companion/internal/domain"
	"github.com/pkordes/museo-companion/internal/museum"
	"github.com/pkordes/museo-companion/internal/visit"
)

// Severity tells the client how to present an error: a blocking dialog or
// a non-blocking notice.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// ErrorDetail is the body of every error response.
type ErrorDetail struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// ErrorResponse wraps ErrorDetail under an "error" key.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// apiError is a classified error ready to be written.
type apiError struct {
	status int
	detail ErrorDetail
}

// classify maps a service or backend error onto an HTTP status, an error
// code, and a severity. Backend failures keep the backend's message.
func classify(err error) apiError {
	if errors.Is(err, visit.ErrAtFirstStop) {
		return apiError{http.StatusConflict, ErrorDetail{"at_first_stop", "You are already at the first stop.", SeverityWarning}}
	}

	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return apiError{http.StatusRequestEntityTooLarge, ErrorDetail{"payload_too_large", "request body is too large", SeverityError}}
	}

	var be *museum.APIError
	if errors.As(err, &be) {
		msg := be.Message
		if msg == "" {
			msg = http.StatusText(be.Status)
		}
		switch be.Kind {
		case museum.KindClosed:
			return apiError{http.StatusConflict, ErrorDetail{"museum_closed", msg, SeverityError}}
		case museum.KindScheduleAdjusted:
			return apiError{http.StatusConflict, ErrorDetail{"schedule_adjusted", msg, SeverityWarning}}
		case museum.KindNotFound:
			return apiError{http.StatusNotFound, ErrorDetail{"not_found", msg, SeverityError}}
		case museum.KindValidation:
			return apiError{http.StatusUnprocessableEntity, ErrorDetail{"validation_error", msg, SeverityWarning}}
		case museum.KindUnauthorized:
			return apiError{http.StatusUnauthorized, ErrorDetail{"unauthenticated", msg, SeverityError}}
		}
		return apiError{http.StatusBadGateway, ErrorDetail{"backend_error", msg, SeverityError}}
	}

	if errors.Is(err, museum.ErrUnreachable) {
		return apiError{http.StatusBadGateway, ErrorDetail{"backend_unavailable", "the museum service is not reachable right now", SeverityError}}
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		return apiError{http.StatusNotFound, ErrorDetail{"not_found", unwrapMessage(err, domain.ErrNotFound), SeverityError}}
	case errors.Is(err, domain.ErrValidation):
		return apiError{http.StatusUnprocessableEntity, ErrorDetail{"validation_error", unwrapMessage(err, domain.ErrValidation), SeverityWarning}}
	case errors.Is(err, domain.ErrUnauthenticated):
		return apiError{http.StatusUnauthorized, ErrorDetail{"unauthenticated", "please log in", SeverityError}}
	case errors.Is(err, domain.ErrConflict):
		return apiError{http.StatusConflict, ErrorDetail{"conflict", unwrapMessage(err, domain.ErrConflict), SeverityError}}
	}

	return apiError{http.StatusInternalServerError, ErrorDetail{"internal_error", "internal server error", SeverityError}}
}

// unwrapMessage extracts the human-readable part that follows the sentinel
// in a wrapped error.
// e.g. "service.ProfileService.Complete: validation error: city is required" → "city is required"
func unwrapMessage(err, sentinel error) string {
	msg := err.Error()
	marker := sentinel.Error() + ": "
	if i := strings.LastIndex(msg, marker); i >= 0 {
		return msg[i+len(marker):]
	}
	return sentinel.Error()
}

// writeError classifies err and writes it. Server errors are logged.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := classify(err)
	if e.status >= 500 {
		s.log.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, e.status, ErrorResponse{Error: e.detail})
}

// badRequest writes a 400 for input rejected before reaching a service,
// such as a malformed body or path parameter.
func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: ErrorDetail{"bad_request", message, SeverityError}})
}
