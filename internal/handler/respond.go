package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/museo-companion/internal/domain"
	"github.com/pkordes/museo-companion/internal/session"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeBody reads a JSON request body into dst. A body over the size limit
// comes back as *http.MaxBytesError so it maps to 413.
func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return errBadRequest("request body is required")
		}
		return errBadRequest("request body is not valid JSON")
	}
	return nil
}

// errBadRequest marks input rejected before it reaches a service.
type errBadRequest string

func (e errBadRequest) Error() string { return string(e) }

// fail writes err, as a 400 when it is input the handler itself rejected.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var bad errBadRequest
	if errors.As(err, &bad) {
		badRequest(w, string(bad))
		return
	}
	s.writeError(w, r, err)
}

// pathInt binds a simple-style integer path parameter.
func pathInt(r *http.Request, name string) (int, error) {
	var v int
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &v,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		return 0, errBadRequest(fmt.Sprintf("invalid %s", name))
	}
	return v, nil
}

// pathUUID binds a simple-style UUID path parameter.
func pathUUID(r *http.Request, name string) (openapi_types.UUID, error) {
	var v openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &v,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		return v, errBadRequest(fmt.Sprintf("invalid %s", name))
	}
	return v, nil
}

// queryParam binds an optional form-style query parameter into dst.
func queryParam(r *http.Request, name string, dst any) error {
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), dst); err != nil {
		return errBadRequest(fmt.Sprintf("invalid %s", name))
	}
	return nil
}

// pagination reads ?page= and ?limit=.
func pagination(r *http.Request) (domain.PaginationParams, error) {
	var page, limit *int
	if err := queryParam(r, "page", &page); err != nil {
		return domain.PaginationParams{}, err
	}
	if err := queryParam(r, "limit", &limit); err != nil {
		return domain.PaginationParams{}, err
	}
	return domain.NewPaginationParams(page, limit), nil
}

// state returns the caller's session. It is nil only when the route was
// mounted without the session middleware.
func state(r *http.Request) *session.State {
	return session.FromContext(r.Context())
}
