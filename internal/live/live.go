// Package live serves the timer-driven views over WebSocket: the elapsed
// clock of a visit and the progress of itinerary generation. A view's timers
// run only while its socket is open.
package live

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pkordes/museo-companion/internal/domain"
	"github.com/pkordes/museo-companion/internal/generation"
	"github.com/pkordes/museo-companion/internal/visit"
)

const writeWait = 5 * time.Second

// Event types pushed to clients.
const (
	EventElapsed  = "elapsed"
	EventProgress = "progress"
	EventComplete = "complete"
	EventClosed   = "closed"
)

// Event is one message pushed over a live socket.
type Event struct {
	Type           string                   `json:"type"`
	ElapsedSeconds int64                    `json:"elapsed_seconds,omitempty"`
	Elapsed        string                   `json:"elapsed,omitempty"`
	Generation     *domain.GenerationStatus `json:"generation,omitempty"`
}

// Clock reports how long a visit has been running. *visit.Tracker satisfies it.
type Clock interface {
	Elapsed() time.Duration
}

// Server upgrades requests to live views.
type Server struct {
	upgrader websocket.Upgrader
	tick     time.Duration
	log      *slog.Logger
}

// NewServer returns a Server that accepts sockets from allowedOrigins (and
// from clients that send no Origin) and pushes elapsed time every tick.
func NewServer(allowedOrigins []string, tick time.Duration, log *slog.Logger) *Server {
	if tick <= 0 {
		tick = time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || slices.Contains(allowedOrigins, origin)
			},
		},
		tick: tick,
		log:  log,
	}
}

// ServeVisit pushes the visit's elapsed time every tick until the client
// goes away or done is closed. When done closes the client gets a final
// closed event.
func (s *Server) ServeVisit(w http.ResponseWriter, r *http.Request, clock Clock, done <-chan struct{}) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WarnContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := watchClose(r.Context(), conn)
	defer cancel()

	s.log.DebugContext(ctx, "live visit view opened", "path", r.URL.Path)
	defer s.log.DebugContext(ctx, "live visit view closed", "path", r.URL.Path)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	if err := send(conn, elapsedEvent(clock)); err != nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			if send(conn, Event{Type: EventClosed}) == nil {
				closeNormally(conn, "view closed")
			}
			return
		case <-ticker.C:
			if err := send(conn, elapsedEvent(clock)); err != nil {
				return
			}
		}
	}
}

// ServeGeneration polls generation status while the socket is open. Every
// check is pushed as a progress event; the last one, once generation is
// complete, as a single complete event.
func (s *Server) ServeGeneration(w http.ResponseWriter, r *http.Request, p *generation.Poller, itineraryID int) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WarnContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := watchClose(r.Context(), conn)
	defer cancel()

	_, complete := p.Watch(ctx, itineraryID, func(st domain.GenerationStatus) {
		ev := Event{Type: EventProgress, Generation: &st}
		if st.Complete {
			ev.Type = EventComplete
		}
		if err := send(conn, ev); err != nil {
			cancel()
		}
	})
	if complete && ctx.Err() == nil {
		closeNormally(conn, "generation complete")
	}
}

// watchClose returns a context cancelled when the client closes the socket
// or the connection drops. Incoming messages are discarded.
func watchClose(parent context.Context, conn *websocket.Conn) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()
	return ctx, cancel
}

func elapsedEvent(c Clock) Event {
	d := c.Elapsed()
	return Event{
		Type:           EventElapsed,
		ElapsedSeconds: int64(d / time.Second),
		Elapsed:        visit.FormatElapsed(d),
	}
}

func send(conn *websocket.Conn, ev Event) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(ev)
}

func closeNormally(conn *websocket.Conn, reason string) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}
