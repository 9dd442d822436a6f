package live_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/museo-companion/internal/domain"
	"github.com/pkordes/museo-companion/internal/generation"
	"github.com/pkordes/museo-companion/internal/live"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixedClock time.Duration

func (c fixedClock) Elapsed() time.Duration { return time.Duration(c) }

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) live.Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev live.Event
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func TestServeVisit_PushesElapsed(t *testing.T) {
	s := live.NewServer(nil, 10*time.Millisecond, quietLogger())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.ServeVisit(w, r, fixedClock(65*time.Second), nil)
	}))
	defer srv.Close()

	conn := dial(t, srv)

	for range 3 {
		ev := readEvent(t, conn)
		assert.Equal(t, live.EventElapsed, ev.Type)
		assert.Equal(t, int64(65), ev.ElapsedSeconds)
		assert.Equal(t, "1m 5s", ev.Elapsed)
	}
}

func TestServeVisit_ClientCloseStopsTicker(t *testing.T) {
	s := live.NewServer(nil, 10*time.Millisecond, quietLogger())
	returned := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer close(returned)
		s.ServeVisit(w, r, fixedClock(0), nil)
	}))
	defer srv.Close()

	conn := dial(t, srv)
	readEvent(t, conn)
	require.NoError(t, conn.Close())

	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("live view kept running after the socket closed")
	}
}

func TestServeVisit_ViewTornDown(t *testing.T) {
	s := live.NewServer(nil, time.Hour, quietLogger())
	done := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.ServeVisit(w, r, fixedClock(0), done)
	}))
	defer srv.Close()

	conn := dial(t, srv)
	assert.Equal(t, live.EventElapsed, readEvent(t, conn).Type)

	close(done)

	assert.Equal(t, live.EventClosed, readEvent(t, conn).Type)
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}

func TestServer_RejectsForeignOrigin(t *testing.T) {
	s := live.NewServer([]string{"http://localhost:5173"}, time.Second, quietLogger())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.ServeVisit(w, r, fixedClock(0), nil)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"http://evil.example.com"}})

	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

// scriptedStatus returns the scripted statuses in order, then repeats the last.
type scriptedStatus struct {
	mu       sync.Mutex
	statuses []domain.GenerationStatus
}

func (s *scriptedStatus) GenerationStatus(_ context.Context, id int) (domain.GenerationStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.statuses[0]
	if len(s.statuses) > 1 {
		s.statuses = s.statuses[1:]
	}
	st.ItineraryID = id
	return st, nil
}

func TestServeGeneration_ProgressThenComplete(t *testing.T) {
	src := &scriptedStatus{statuses: []domain.GenerationStatus{
		{AreasGenerated: 1, TotalAreas: 3, Percent: 33.3},
		{AreasGenerated: 2, TotalAreas: 3, Percent: 66.7},
		{AreasGenerated: 3, TotalAreas: 3, Percent: 100, Complete: true},
	}}
	poller := generation.NewPoller(src, 10*time.Millisecond, quietLogger())
	s := live.NewServer(nil, time.Second, quietLogger())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.ServeGeneration(w, r, poller, 42)
	}))
	defer srv.Close()

	conn := dial(t, srv)

	first := readEvent(t, conn)
	assert.Equal(t, live.EventProgress, first.Type)
	require.NotNil(t, first.Generation)
	assert.Equal(t, 42, first.Generation.ItineraryID)
	assert.Equal(t, 1, first.Generation.AreasGenerated)

	assert.Equal(t, live.EventProgress, readEvent(t, conn).Type)

	last := readEvent(t, conn)
	assert.Equal(t, live.EventComplete, last.Type)
	assert.True(t, last.Generation.Complete)

	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}
