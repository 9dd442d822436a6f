package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pkordes/museo-companion/internal/certificate"
	"github.com/pkordes/museo-companion/internal/domain"
	"github.com/pkordes/museo-companion/internal/generation"
	"github.com/pkordes/museo-companion/internal/museum"
	"github.com/pkordes/museo-companion/internal/session"
)

// ItineraryBackend is the part of the museum backend that manages itineraries.
type ItineraryBackend interface {
	GetPreferences(ctx context.Context, visitorID int) (domain.Preferences, error)
	GenerateItinerary(ctx context.Context, r museum.GenerateRequest) (domain.Itinerary, error)
	ListItineraries(ctx context.Context, visitorID int) ([]domain.Itinerary, error)
	GetItinerary(ctx context.Context, id int) (domain.Itinerary, error)
	StartItinerary(ctx context.Context, id int) (domain.Itinerary, error)
	DeleteItinerary(ctx context.Context, id int) error
	GenerationStatus(ctx context.Context, itineraryID int) (domain.GenerationStatus, error)
}

// ItineraryService generates and manages the logged-in visitor's itineraries.
type ItineraryService struct {
	backend ItineraryBackend
	log     *slog.Logger
}

// NewItineraryService constructs an ItineraryService.
func NewItineraryService(backend ItineraryBackend, log *slog.Logger) *ItineraryService {
	if log == nil {
		log = slog.Default()
	}
	return &ItineraryService{backend: backend, log: log}
}

// SuggestedAreas returns the area codes to preselect for the visitor, based
// on their stored interests.
func (s *ItineraryService) SuggestedAreas(ctx context.Context, st *session.State) ([]string, error) {
	u, err := currentUser(st)
	if err != nil {
		return nil, fmt.Errorf("service.ItineraryService.SuggestedAreas: %w", err)
	}
	return s.suggestedAreas(ctx, u.VisitorID), nil
}

func (s *ItineraryService) suggestedAreas(ctx context.Context, visitorID int) []string {
	prefs, err := s.backend.GetPreferences(ctx, visitorID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.log.WarnContext(ctx, "could not load visitor interests", "visitor_id", visitorID, "error", err)
		}
		return generation.AreasForInterests(nil)
	}
	return generation.AreasForInterests(prefs.Interests)
}

// Generate validates opts and asks the backend for a new itinerary. The
// returned itinerary may hold only its first stop; the rest arrive while
// generation continues and can be watched with Status or a live view.
//
// With no areas selected the visitor's suggested areas are used. An empty
// entry type falls back to the one on the visitor's profile, then to
// individual.
func (s *ItineraryService) Generate(ctx context.Context, st *session.State, opts domain.GenerateOptions) (domain.Itinerary, error) {
	u, err := currentUser(st)
	if err != nil {
		return domain.Itinerary{}, fmt.Errorf("service.ItineraryService.Generate: %w", err)
	}

	opts.VisitorID = u.VisitorID
	if len(opts.AreaCodes) == 0 {
		opts.AreaCodes = s.suggestedAreas(ctx, u.VisitorID)
	}
	if opts.EntryType == "" {
		opts.EntryType = u.EntryType
		if opts.EntryType == "" {
			opts.EntryType = domain.EntryIndividual
		}
	}
	if opts.DetailLevel == "" {
		opts.DetailLevel = domain.DetailMedium
	}

	req, err := generation.BuildRequest(opts)
	if err != nil {
		return domain.Itinerary{}, fmt.Errorf("service.ItineraryService.Generate: %w", err)
	}

	it, err := s.backend.GenerateItinerary(ctx, req)
	if err != nil {
		return domain.Itinerary{}, fmt.Errorf("service.ItineraryService.Generate: %w", err)
	}
	s.log.InfoContext(ctx, "itinerary generated",
		"itinerary_id", it.ID, "visitor_id", u.VisitorID, "stops_ready", len(it.Stops))
	return it, nil
}

// List returns the visitor's itineraries. Always returns a non-nil slice.
func (s *ItineraryService) List(ctx context.Context, st *session.State) ([]domain.Itinerary, error) {
	u, err := currentUser(st)
	if err != nil {
		return nil, fmt.Errorf("service.ItineraryService.List: %w", err)
	}
	its, err := s.backend.ListItineraries(ctx, u.VisitorID)
	if err != nil {
		return nil, fmt.Errorf("service.ItineraryService.List: %w", err)
	}
	if its == nil {
		return []domain.Itinerary{}, nil
	}
	return its, nil
}

// Get returns one itinerary with its stops.
func (s *ItineraryService) Get(ctx context.Context, st *session.State, id int) (domain.Itinerary, error) {
	if _, err := currentUser(st); err != nil {
		return domain.Itinerary{}, fmt.Errorf("service.ItineraryService.Get: %w", err)
	}
	it, err := s.backend.GetItinerary(ctx, id)
	if err != nil {
		return domain.Itinerary{}, fmt.Errorf("service.ItineraryService.Get: %w", err)
	}
	return it, nil
}

// Start moves a generated itinerary to active.
func (s *ItineraryService) Start(ctx context.Context, st *session.State, id int) (domain.Itinerary, error) {
	if _, err := currentUser(st); err != nil {
		return domain.Itinerary{}, fmt.Errorf("service.ItineraryService.Start: %w", err)
	}
	it, err := s.backend.StartItinerary(ctx, id)
	if err != nil {
		return domain.Itinerary{}, fmt.Errorf("service.ItineraryService.Start: %w", err)
	}
	return it, nil
}

// Delete removes an itinerary.
func (s *ItineraryService) Delete(ctx context.Context, st *session.State, id int) error {
	if _, err := currentUser(st); err != nil {
		return fmt.Errorf("service.ItineraryService.Delete: %w", err)
	}
	if err := s.backend.DeleteItinerary(ctx, id); err != nil {
		return fmt.Errorf("service.ItineraryService.Delete: %w", err)
	}
	return nil
}

// Status reports generation progress for an itinerary.
func (s *ItineraryService) Status(ctx context.Context, st *session.State, id int) (domain.GenerationStatus, error) {
	if _, err := currentUser(st); err != nil {
		return domain.GenerationStatus{}, fmt.Errorf("service.ItineraryService.Status: %w", err)
	}
	gs, err := s.backend.GenerationStatus(ctx, id)
	if err != nil {
		return domain.GenerationStatus{}, fmt.Errorf("service.ItineraryService.Status: %w", err)
	}
	return gs, nil
}

// Certificate returns the printable certificate for a completed itinerary.
// linkURL is encoded in the certificate's QR code.
func (s *ItineraryService) Certificate(ctx context.Context, st *session.State, id int, linkURL string) (certificate.Certificate, error) {
	u, err := currentUser(st)
	if err != nil {
		return certificate.Certificate{}, fmt.Errorf("service.ItineraryService.Certificate: %w", err)
	}
	it, err := s.backend.GetItinerary(ctx, id)
	if err != nil {
		return certificate.Certificate{}, fmt.Errorf("service.ItineraryService.Certificate: %w", err)
	}
	c, err := certificate.FromItinerary(u.Name, it, linkURL)
	if err != nil {
		return certificate.Certificate{}, fmt.Errorf("service.ItineraryService.Certificate: %w", err)
	}
	return c, nil
}
