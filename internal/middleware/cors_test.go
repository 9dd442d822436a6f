package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pkordes/museo-companion/internal/middleware"
)

const appOrigin = "http://localhost:5173"

func corsRequest(t *testing.T, method, origin string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	h := middleware.NewCORSHandler([]string{appOrigin})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(method, "/visits", nil)
	req.Header.Set("Origin", origin)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCORSHandler_AllowedOrigin(t *testing.T) {
	rec := corsRequest(t, http.MethodGet, appOrigin, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, appOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), middleware.SessionTokenHeader)
}

func TestCORSHandler_ForeignOriginGetsNoHeaders(t *testing.T) {
	rec := corsRequest(t, http.MethodGet, "http://evil.example.com", nil)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSHandler_Preflight(t *testing.T) {
	// rs/cors matches request headers against its lowercased allow list.
	rec := corsRequest(t, http.MethodOptions, appOrigin, map[string]string{
		"Access-Control-Request-Method":  http.MethodDelete,
		"Access-Control-Request-Headers": "authorization,content-type",
	})

	assert.Less(t, rec.Code, 300)
	assert.Equal(t, appOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodDelete)
}
