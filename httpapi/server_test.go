package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hotpath-go/hotpath/internal/snapshot"
	"github.com/stretchr/testify/require"
)

func TestHandleFunctionsTimingUnwired(t *testing.T) {
	s := New("127.0.0.1:0")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/functions/timing", nil)
	s.httpSrv.Handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleFunctionsTimingWired(t *testing.T) {
	s := New("127.0.0.1:0")
	s.FunctionsTiming = func() (snapshot.FunctionsSnapshot, bool) {
		return snapshot.FunctionsSnapshot{ProfilingMode: "timing"}, true
	}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/functions/timing", nil)
	s.httpSrv.Handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "timing")
}

func TestHandleChannelsNotFoundWhenUnwired(t *testing.T) {
	s := New("127.0.0.1:0")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/channels", nil)
	s.httpSrv.Handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthz(t *testing.T) {
	s := New("127.0.0.1:0")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	s.httpSrv.Handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
