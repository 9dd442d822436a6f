package museum

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/pkordes/museo-companion/internal/domain"
)

// GenerateRequest is a validated generation request ready for the backend.
// Interests are already derived from the selected areas.
type GenerateRequest struct {
	VisitorID     int
	Interests     []string
	Duration      *int
	DetailLevel   domain.DetailLevel
	EntryType     domain.EntryType
	Companions    int
	IncludeBreaks bool
	AvoidAreas    []int
}

// GenerateItinerary asks the backend to generate an itinerary. The backend
// answers as soon as the first stop is ready; the remaining stops are filled
// in asynchronously and observed through GenerationStatus.
func (c *Client) GenerateItinerary(ctx context.Context, r GenerateRequest) (domain.Itinerary, error) {
	body := generateWire{
		VisitanteID:      r.VisitorID,
		Intereses:        r.Interests,
		TiempoDisponible: r.Duration,
		NivelDetalle:     detailLevelToWire[r.DetailLevel],
		TipoEntrada:      entryTypeToWire[r.EntryType],
		Acompanantes:     r.Companions,
		IncluirDescansos: r.IncludeBreaks,
		AreasEvitar:      r.AvoidAreas,
	}
	if body.AreasEvitar == nil {
		body.AreasEvitar = []int{}
	}

	var w itineraryWire
	if err := c.do(ctx, http.MethodPost, "/itinerarios/generar", nil, body, &w); err != nil {
		return domain.Itinerary{}, fmt.Errorf("museum.Client.GenerateItinerary: %w", err)
	}
	return w.toDomain(), nil
}

// GenerationStatus reports how many of the itinerary's areas have content.
func (c *Client) GenerationStatus(ctx context.Context, itineraryID int) (domain.GenerationStatus, error) {
	var w generationStatusWire
	path := "/ia/itinerario/" + strconv.Itoa(itineraryID) + "/estado-generacion"
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &w); err != nil {
		return domain.GenerationStatus{}, fmt.Errorf("museum.Client.GenerationStatus: %w", err)
	}
	return w.toDomain(), nil
}

// ListItineraries returns the visitor's itineraries, without stops.
func (c *Client) ListItineraries(ctx context.Context, visitorID int) ([]domain.Itinerary, error) {
	var ws []itineraryWire
	path := "/itinerarios/visitante/" + strconv.Itoa(visitorID)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &ws); err != nil {
		return nil, fmt.Errorf("museum.Client.ListItineraries: %w", err)
	}
	out := make([]domain.Itinerary, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.toDomain())
	}
	return out, nil
}

// GetItinerary fetches an itinerary with all its stops and their areas.
func (c *Client) GetItinerary(ctx context.Context, id int) (domain.Itinerary, error) {
	var w itineraryWire
	if err := c.do(ctx, http.MethodGet, "/itinerarios/"+strconv.Itoa(id), nil, nil, &w); err != nil {
		return domain.Itinerary{}, fmt.Errorf("museum.Client.GetItinerary: %w", err)
	}
	return w.toDomain(), nil
}

// StartItinerary moves an itinerary from generated to active.
func (c *Client) StartItinerary(ctx context.Context, id int) (domain.Itinerary, error) {
	return c.transition(ctx, id, "iniciar", "museum.Client.StartItinerary")
}

// CompleteItinerary moves an itinerary to completed.
func (c *Client) CompleteItinerary(ctx context.Context, id int) (domain.Itinerary, error) {
	return c.transition(ctx, id, "completar", "museum.Client.CompleteItinerary")
}

func (c *Client) transition(ctx context.Context, id int, action, op string) (domain.Itinerary, error) {
	var w itineraryWire
	path := "/itinerarios/" + strconv.Itoa(id) + "/" + action
	if err := c.do(ctx, http.MethodPost, path, nil, nil, &w); err != nil {
		return domain.Itinerary{}, fmt.Errorf("%s: %w", op, err)
	}
	return w.toDomain(), nil
}

// DeleteItinerary removes an itinerary.
func (c *Client) DeleteItinerary(ctx context.Context, id int) error {
	if err := c.do(ctx, http.MethodDelete, "/itinerarios/"+strconv.Itoa(id), nil, nil, nil); err != nil {
		return fmt.Errorf("museum.Client.DeleteItinerary: %w", err)
	}
	return nil
}

// RequestCertificate asks the backend to generate and e-mail the visit
// certificate for a completed itinerary.
func (c *Client) RequestCertificate(ctx context.Context, id int) error {
	path := "/itinerarios/" + strconv.Itoa(id) + "/certificado"
	if err := c.do(ctx, http.MethodPost, path, nil, nil, nil); err != nil {
		return fmt.Errorf("museum.Client.RequestCertificate: %w", err)
	}
	return nil
}
