package domain

import "errors"

// ErrNotFound is returned when the requested resource does not exist,
// either in the local store or in the museum backend.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. a group entry without companions, an unanswered
// survey question). Handlers should map this to HTTP 422 with warning severity.
var ErrValidation = errors.New("validation error")

// ErrUnauthenticated is returned when an operation needs a logged-in visitor
// and the session holds none. Handlers should map this to HTTP 401.
var ErrUnauthenticated = errors.New("not authenticated")

// ErrConflict is returned when an operation is not allowed in the current
// state (e.g. completing a visit twice). Handlers should map this to HTTP 409.
var ErrConflict = errors.New("conflict")
