// Package handler implements the HTTP handlers for the museo-companion API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (auth.go, itinerary.go, visit.go, admin.go) but share the same Server
// struct so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/museo-companion/internal/certificate"
	"github.com/pkordes/museo-companion/internal/domain"
	"github.com/pkordes/museo-companion/internal/generation"
	"github.com/pkordes/museo-companion/internal/live"
	"github.com/pkordes/museo-companion/internal/service"
	"github.com/pkordes/museo-companion/internal/session"
	"github.com/pkordes/museo-companion/internal/visit"
)

// AuthServicer defines the login operations the auth handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching the backend or the session store.
type AuthServicer interface {
	LoginURL() string
	Login(ctx context.Context, st *session.State, cb service.LoginCallback) (domain.SessionUser, error)
	Logout(ctx context.Context, st *session.State) error
	Me(st *session.State) (domain.SessionUser, error)
}

// ProfileServicer completes the visitor's profile.
type ProfileServicer interface {
	Complete(ctx context.Context, st *session.State, p domain.ProfileUpdate) (domain.SessionUser, error)
}

// AreaServicer reads museum areas.
type AreaServicer interface {
	List(ctx context.Context) ([]domain.Area, error)
	Get(ctx context.Context, id int) (domain.Area, error)
}

// ItineraryServicer manages the visitor's itineraries.
type ItineraryServicer interface {
	SuggestedAreas(ctx context.Context, st *session.State) ([]string, error)
	Generate(ctx context.Context, st *session.State, opts domain.GenerateOptions) (domain.Itinerary, error)
	List(ctx context.Context, st *session.State) ([]domain.Itinerary, error)
	Get(ctx context.Context, st *session.State, id int) (domain.Itinerary, error)
	Start(ctx context.Context, st *session.State, id int) (domain.Itinerary, error)
	Delete(ctx context.Context, st *session.State, id int) error
	Status(ctx context.Context, st *session.State, id int) (domain.GenerationStatus, error)
	Certificate(ctx context.Context, st *session.State, id int, linkURL string) (certificate.Certificate, error)
}

// VisitServicer mounts and drives visit-progress views.
type VisitServicer interface {
	Mount(ctx context.Context, st *session.State, itineraryID int) (*service.View, error)
	Get(ctx context.Context, st *session.State, id uuid.UUID) (*service.View, error)
	Unmount(ctx context.Context, st *session.State, id uuid.UUID) error
	MarkVisited(ctx context.Context, st *session.State, id uuid.UUID, stopID int) (visit.Snapshot, error)
	Skip(ctx context.Context, st *session.State, id uuid.UUID, stopID int) (visit.Snapshot, error)
	Back(ctx context.Context, st *session.State, id uuid.UUID) (visit.Snapshot, error)
	Complete(ctx context.Context, st *session.State, id uuid.UUID, e domain.Evaluation) (visit.Snapshot, error)
}

// AdminServicer serves the statistics dashboard.
type AdminServicer interface {
	Dashboard(ctx context.Context, st *session.State) (service.Dashboard, error)
	Visitors(ctx context.Context, st *session.State, p domain.PaginationParams) ([]domain.Visitor, error)
}

// LiveViews upgrades requests to WebSocket views. *live.Server satisfies it.
type LiveViews interface {
	ServeVisit(w http.ResponseWriter, r *http.Request, clock live.Clock, done <-chan struct{})
	ServeGeneration(w http.ResponseWriter, r *http.Request, p *generation.Poller, itineraryID int)
}

// Deps are the Server's collaborators. Nil services leave their routes
// answering 500, which is only useful in tests.
type Deps struct {
	Auth        AuthServicer
	Profiles    ProfileServicer
	Areas       AreaServicer
	Itineraries ItineraryServicer
	Visits      VisitServicer
	Admin       AdminServicer
	Live        LiveViews
	Poller      *generation.Poller

	// PublicURL is the visitor-facing app; login redirects and certificate
	// links point there.
	PublicURL string
	// OpenAPI is served verbatim at /openapi.yaml.
	OpenAPI []byte
	Log     *slog.Logger
}

// Server holds the HTTP handlers.
type Server struct {
	Deps
	log *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
func NewServer(d Deps) *Server {
	log := d.Log
	if log == nil {
		log = slog.Default()
	}
	return &Server{Deps: d, log: log}
}

// Routes builds the router. withSession wraps every route that needs the
// caller's session; /healthz and /openapi.yaml are served without one.
func (s *Server) Routes(withSession func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Group(func(r chi.Router) {
		if withSession != nil {
			r.Use(withSession)
		}

		r.Get("/auth/login", s.Login)
		r.Get("/auth/callback", s.LoginCallback)
		r.Post("/auth/logout", s.Logout)
		r.Get("/auth/me", s.Me)
		r.Put("/profile", s.CompleteProfile)

		r.Get("/areas", s.ListAreas)
		r.Get("/areas/suggested", s.SuggestedAreas)
		r.Get("/areas/{areaId}", s.GetArea)

		r.Route("/itineraries", func(r chi.Router) {
			r.Get("/", s.ListItineraries)
			r.Post("/generate", s.GenerateItinerary)
			r.Route("/{itineraryId}", func(r chi.Router) {
				r.Get("/", s.GetItinerary)
				r.Delete("/", s.DeleteItinerary)
				r.Post("/start", s.StartItinerary)
				r.Get("/generation", s.GetGenerationStatus)
				r.Get("/generation/live", s.GenerationLive)
				r.Get("/certificate.pdf", s.GetCertificate)
			})
		})

		r.Route("/visits", func(r chi.Router) {
			r.Post("/", s.MountVisit)
			r.Route("/{visitId}", func(r chi.Router) {
				r.Get("/", s.GetVisit)
				r.Delete("/", s.UnmountVisit)
				r.Post("/stops/{stopId}/visited", s.MarkStopVisited)
				r.Post("/stops/{stopId}/skip", s.SkipStop)
				r.Post("/back", s.GoBack)
				r.Post("/complete", s.CompleteVisit)
				r.Get("/live", s.VisitLive)
			})
		})

		r.Get("/admin/stats", s.GetAdminStats)
		r.Get("/admin/visitors", s.ListVisitors)
	})
	return r
}
