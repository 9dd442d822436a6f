package museum

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pkordes/museo-companion/internal/domain"
)

// SubmitEvaluation stores the visitor's satisfaction survey.
func (c *Client) SubmitEvaluation(ctx context.Context, e domain.Evaluation) error {
	if err := c.do(ctx, http.MethodPost, "/evaluaciones/", nil, evaluationToWire(e), nil); err != nil {
		return fmt.Errorf("museum.Client.SubmitEvaluation: %w", err)
	}
	return nil
}

// EvaluationStats returns the aggregate over all submitted evaluations.
func (c *Client) EvaluationStats(ctx context.Context) (domain.EvaluationStats, error) {
	var w evaluationStatsWire
	if err := c.do(ctx, http.MethodGet, "/evaluaciones/estadisticas", nil, nil, &w); err != nil {
		return domain.EvaluationStats{}, fmt.Errorf("museum.Client.EvaluationStats: %w", err)
	}
	return domain.EvaluationStats{
		Total:            w.TotalEvaluaciones,
		AverageRating:    w.CalificacionPromedio,
		PctPersonalized:  w.PorcentajePersonalizado,
		PctGoodDecisions: w.PorcentajeBuenasDecisiones,
		PctCompanionship: w.PorcentajeAcompaniamiento,
		PctUnderstanding: w.PorcentajeComprension,
		PctRelevant:      w.PorcentajeRelevante,
		PctWouldUseAgain: w.PorcentajeUsariaNuevamente,
		Satisfaction:     w.SatisfaccionGeneral,
	}, nil
}

// VisitorStats returns the aggregate over registered visitors.
func (c *Client) VisitorStats(ctx context.Context) (domain.VisitorStats, error) {
	var w visitorStatsWire
	if err := c.do(ctx, http.MethodGet, "/visitantes/estadisticas", nil, nil, &w); err != nil {
		return domain.VisitorStats{}, fmt.Errorf("museum.Client.VisitorStats: %w", err)
	}
	return domain.VisitorStats{
		Total:       w.TotalVisitantes,
		ByType:      w.VisitantesPorTipo,
		Recent30d:   w.VisitantesRecientes30Dias,
		ActiveCount: w.VisitantesActivos,
	}, nil
}

// ItineraryStats returns the aggregate over generated itineraries.
func (c *Client) ItineraryStats(ctx context.Context) (domain.ItineraryStats, error) {
	var w itineraryStatsWire
	if err := c.do(ctx, http.MethodGet, "/itinerarios/estadisticas", nil, nil, &w); err != nil {
		return domain.ItineraryStats{}, fmt.Errorf("museum.Client.ItineraryStats: %w", err)
	}
	byStatus := make(map[string]int, len(w.ItinerariosPorEstado))
	for k, v := range w.ItinerariosPorEstado {
		byStatus[string(itineraryStatus(k))] = v
	}
	return domain.ItineraryStats{
		Total:           w.TotalItinerarios,
		ByStatus:        byStatus,
		Completed:       w.Completados,
		InProgress:      w.EnProgreso,
		AverageDuration: w.DuracionPromedioMinutos,
		AverageScore:    w.PuntuacionPromedio,
		GeneratedWithAI: w.GeneradosConIA,
	}, nil
}

// TodayStats returns today's activity summary.
func (c *Client) TodayStats(ctx context.Context) (domain.TodayStats, error) {
	var w todayStatsWire
	if err := c.do(ctx, http.MethodGet, "/historial/estadisticas/hoy", nil, nil, &w); err != nil {
		return domain.TodayStats{}, fmt.Errorf("museum.Client.TodayStats: %w", err)
	}
	return domain.TodayStats{
		VisitorsToday:    w.VisitantesHoy,
		ActiveItinerary:  w.ItinerariosActivos,
		AverageEntryTime: w.HoraEntradaPromedio,
		AverageDuration:  w.DuracionPromedioMinutos,
	}, nil
}

// PeakHours returns the busiest hours of the day, busiest first.
func (c *Client) PeakHours(ctx context.Context) ([]domain.PeakHour, error) {
	var ws []peakHourWire
	if err := c.do(ctx, http.MethodGet, "/historial/estadisticas/horas-pico", nil, nil, &ws); err != nil {
		return nil, fmt.Errorf("museum.Client.PeakHours: %w", err)
	}
	out := make([]domain.PeakHour, 0, len(ws))
	for _, w := range ws {
		out = append(out, domain.PeakHour{Hour: w.Hora, Visitors: w.Visitantes})
	}
	return out, nil
}

// WeekStats returns the last seven days of visits.
func (c *Client) WeekStats(ctx context.Context) (domain.WeekStats, error) {
	var w weekStatsWire
	if err := c.do(ctx, http.MethodGet, "/historial/estadisticas/semana", nil, nil, &w); err != nil {
		return domain.WeekStats{}, fmt.Errorf("museum.Client.WeekStats: %w", err)
	}
	return domain.WeekStats{
		Period:              w.Periodo,
		TotalVisits:         w.TotalVisitas,
		VisitsByDay:         w.VisitasPorDia,
		AverageSatisfaction: w.SatisfaccionPromedio,
	}, nil
}
