package museum

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkordes/museo-companion/internal/domain"
)

// backendTime accepts both RFC 3339 timestamps and the zone-less
// "2006-01-02T15:04:05.999999" form the backend emits for naive datetimes,
// which are interpreted as UTC.
type backendTime struct {
	time.Time
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

func (t *backendTime) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
		t.Time = parsed
		return nil
	}
	for _, layout := range naiveLayouts {
		if parsed, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("museum: unrecognised timestamp %q", s)
}

func (t backendTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

// ptr returns nil for a zero time so optional timestamps stay optional.
func (t *backendTime) ptr() *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	v := t.Time
	return &v
}

// --- enum translation -------------------------------------------------------

var visitorTypeToWire = map[domain.VisitorType]string{
	domain.VisitorLocal:         "local",
	domain.VisitorNational:      "nacional",
	domain.VisitorInternational: "internacional",
}

var entryTypeToWire = map[domain.EntryType]string{
	domain.EntryIndividual: "individual",
	domain.EntryStudent:    "estudiante",
	domain.EntrySenior:     "adulto_mayor",
	domain.EntryGroup:      "grupo",
}

var statusFromWire = map[string]domain.ItineraryStatus{
	"generado":   domain.ItineraryGenerated,
	"activo":     domain.ItineraryActive,
	"pausado":    domain.ItineraryPaused,
	"completado": domain.ItineraryCompleted,
	"cancelado":  domain.ItineraryCancelled,
}

var detailLevelToWire = map[domain.DetailLevel]string{
	domain.DetailBasic:    "rapido",
	domain.DetailMedium:   "normal",
	domain.DetailDetailed: "profundo",
}

func reverse[K, V comparable](m map[K]V) map[V]K {
	out := make(map[V]K, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

var (
	visitorTypeFromWire = reverse(visitorTypeToWire)
	entryTypeFromWire   = reverse(entryTypeToWire)
)

func itineraryStatus(s string) domain.ItineraryStatus {
	if st, ok := statusFromWire[s]; ok {
		return st
	}
	return domain.ItineraryStatus(s)
}

// --- visitors ---------------------------------------------------------------

type visitorWire struct {
	ID             int          `json:"id"`
	Nombre         string       `json:"nombre"`
	Apellido       string       `json:"apellido,omitempty"`
	Email          string       `json:"email"`
	Telefono       string       `json:"telefono,omitempty"`
	PaisOrigen     string       `json:"pais_origen,omitempty"`
	CiudadOrigen   string       `json:"ciudad_origen,omitempty"`
	TipoVisitante  string       `json:"tipo_visitante,omitempty"`
	TipoEntrada    string       `json:"tipo_entrada,omitempty"`
	Acompanantes   int          `json:"acompanantes,omitempty"`
	TotalVisitas   int          `json:"total_visitas"`
	FechaRegistro  *backendTime `json:"fecha_registro,omitempty"`
	DatosCompletos bool         `json:"datos_completos,omitempty"`
}

func (w visitorWire) toDomain() domain.Visitor {
	name := w.Nombre
	if w.Apellido != "" {
		name += " " + w.Apellido
	}
	return domain.Visitor{
		ID:              w.ID,
		Name:            name,
		Email:           w.Email,
		ProfileComplete: w.DatosCompletos || (w.PaisOrigen != "" && w.CiudadOrigen != ""),
		Country:         w.PaisOrigen,
		City:            w.CiudadOrigen,
		Phone:           w.Telefono,
		VisitorType:     visitorTypeFromWire[w.TipoVisitante],
		EntryType:       entryTypeFromWire[w.TipoEntrada],
		Companions:      w.Acompanantes,
		TotalVisits:     w.TotalVisitas,
		RegisteredAt:    w.FechaRegistro.ptr(),
	}
}

type visitorUpdateWire struct {
	PaisOrigen    string  `json:"pais_origen"`
	CiudadOrigen  string  `json:"ciudad_origen"`
	TipoVisitante string  `json:"tipo_visitante"`
	TipoEntrada   string  `json:"tipo_entrada"`
	Acompanantes  int     `json:"acompanantes"`
	Telefono      *string `json:"telefono"`
}

func profileToWire(p domain.ProfileUpdate) visitorUpdateWire {
	w := visitorUpdateWire{
		PaisOrigen:    p.Country,
		CiudadOrigen:  p.City,
		TipoVisitante: visitorTypeToWire[p.VisitorType],
		TipoEntrada:   entryTypeToWire[p.EntryType],
		Acompanantes:  p.Companions,
	}
	if p.Phone != "" {
		w.Telefono = &p.Phone
	}
	return w
}

type preferencesWire struct {
	Intereses        []string `json:"intereses"`
	TiempoDisponible *int     `json:"tiempo_disponible"`
	NivelDetalle     string   `json:"nivel_detalle"`
}

// --- areas and itineraries --------------------------------------------------

type areaWire struct {
	ID           int    `json:"id"`
	Codigo       string `json:"codigo"`
	Nombre       string `json:"nombre"`
	Descripcion  string `json:"descripcion"`
	Categoria    string `json:"categoria"`
	Piso         int    `json:"piso"`
	Zona         string `json:"zona"`
	TiempoMinimo int    `json:"tiempo_minimo"`
	TiempoMaximo int    `json:"tiempo_maximo"`
	Activa       bool   `json:"activa"`
}

func (w areaWire) toDomain() domain.Area {
	return domain.Area{
		ID:          w.ID,
		Code:        w.Codigo,
		Name:        w.Nombre,
		Description: w.Descripcion,
		Category:    w.Categoria,
		Floor:       w.Piso,
		Zone:        w.Zona,
		MinMinutes:  w.TiempoMinimo,
		MaxMinutes:  w.TiempoMaximo,
		Active:      w.Activa,
	}
}

type stopWire struct {
	ID                 int          `json:"id"`
	ItinerarioID       int          `json:"itinerario_id"`
	AreaID             int          `json:"area_id"`
	Orden              int          `json:"orden"`
	TiempoSugerido     int          `json:"tiempo_sugerido"`
	Introduccion       string       `json:"introduccion"`
	HistoriaContextual string       `json:"historia_contextual"`
	DatosCuriosos      []string     `json:"datos_curiosos"`
	QueObservar        []string     `json:"que_observar"`
	PuntosClave        []string     `json:"puntos_clave"`
	Recomendacion      string       `json:"recomendacion"`
	Visitado           bool         `json:"visitado"`
	Skip               bool         `json:"skip"`
	HoraInicio         *backendTime `json:"hora_inicio"`
	HoraFin            *backendTime `json:"hora_fin"`
	Area               *areaWire    `json:"area"`
}

func (w stopWire) toDomain() domain.Stop {
	s := domain.Stop{
		ID:               w.ID,
		ItineraryID:      w.ItinerarioID,
		Order:            w.Orden,
		SuggestedMinutes: w.TiempoSugerido,
		Introduction:     w.Introduccion,
		History:          w.HistoriaContextual,
		Trivia:           w.DatosCuriosos,
		Observe:          w.QueObservar,
		KeyPoints:        w.PuntosClave,
		Recommendation:   w.Recomendacion,
		Visited:          w.Visitado,
		Skipped:          w.Skip && !w.Visitado,
		StartedAt:        w.HoraInicio.ptr(),
		FinishedAt:       w.HoraFin.ptr(),
	}
	if w.Area != nil {
		a := w.Area.toDomain()
		s.Area = &a
	} else if w.AreaID != 0 {
		s.Area = &domain.Area{ID: w.AreaID}
	}
	return s
}

type itineraryWire struct {
	ID              int          `json:"id"`
	Titulo          string       `json:"titulo"`
	Descripcion     string       `json:"descripcion"`
	DuracionTotal   int          `json:"duracion_total"`
	Estado          string       `json:"estado"`
	FechaGeneracion backendTime  `json:"fecha_generacion"`
	FechaInicio     *backendTime `json:"fecha_inicio"`
	FechaFin        *backendTime `json:"fecha_fin"`
	TipoEntrada     string       `json:"tipo_entrada"`
	Acompanantes    int          `json:"acompañantes"`
	Detalles        []stopWire   `json:"detalles"`
}

func (w itineraryWire) toDomain() domain.Itinerary {
	it := domain.Itinerary{
		ID:          w.ID,
		Status:      itineraryStatus(w.Estado),
		GeneratedAt: w.FechaGeneracion.Time,
		StartedAt:   w.FechaInicio.ptr(),
		FinishedAt:  w.FechaFin.ptr(),
		Title:       w.Titulo,
		Description: w.Descripcion,
		Duration:    w.DuracionTotal,
		EntryType:   entryTypeFromWire[w.TipoEntrada],
		Companions:  w.Acompanantes,
		Stops:       make([]domain.Stop, 0, len(w.Detalles)),
	}
	for _, d := range w.Detalles {
		it.Stops = append(it.Stops, d.toDomain())
	}
	return it
}

// generateWire is the backend's itinerary generation request.
type generateWire struct {
	VisitanteID      int      `json:"visitante_id"`
	Intereses        []string `json:"intereses"`
	TiempoDisponible *int     `json:"tiempo_disponible"`
	NivelDetalle     string   `json:"nivel_detalle"`
	TipoEntrada      string   `json:"tipo_entrada"`
	Acompanantes     int      `json:"acompañantes"`
	IncluirDescansos bool     `json:"incluir_descansos"`
	AreasEvitar      []int    `json:"areas_evitar"`
}

type generationStatusWire struct {
	ItinerarioID         int     `json:"itinerario_id"`
	Completado           bool    `json:"completado"`
	AreasGeneradas       int     `json:"areas_generadas"`
	TotalAreas           int     `json:"total_areas"`
	PorcentajeCompletado float64 `json:"porcentaje_completado"`
	Estado               string  `json:"estado"`
}

func (w generationStatusWire) toDomain() domain.GenerationStatus {
	return domain.GenerationStatus{
		ItineraryID:    w.ItinerarioID,
		Complete:       w.Completado,
		AreasGenerated: w.AreasGeneradas,
		TotalAreas:     w.TotalAreas,
		Percent:        w.PorcentajeCompletado,
		Status:         itineraryStatus(w.Estado),
	}
}

// stopPatchWire is the body of PATCH /itinerarios/detalles/{id}.
type stopPatchWire struct {
	Visitado *bool       `json:"visitado,omitempty"`
	Skip     *bool       `json:"skip,omitempty"`
	HoraFin  backendTime `json:"hora_fin,omitzero"`
}

// --- evaluations and statistics --------------------------------------------

type evaluationWire struct {
	ItinerarioID        int     `json:"itinerario_id"`
	CalificacionGeneral int     `json:"calificacion_general"`
	Personalizado       bool    `json:"personalizado"`
	BuenasDecisiones    bool    `json:"buenas_decisiones"`
	Acompaniamiento     bool    `json:"acompaniamiento"`
	Comprension         bool    `json:"comprension"`
	Relevante           bool    `json:"relevante"`
	UsariaNuevamente    bool    `json:"usaria_nuevamente"`
	Comentarios         *string `json:"comentarios"`
}

func evaluationToWire(e domain.Evaluation) evaluationWire {
	w := evaluationWire{
		ItinerarioID:        e.ItineraryID,
		CalificacionGeneral: e.Rating,
		Personalizado:       deref(e.Personalized),
		BuenasDecisiones:    deref(e.GoodDecisions),
		Acompaniamiento:     deref(e.Companionship),
		Comprension:         deref(e.Understanding),
		Relevante:           deref(e.Relevant),
		UsariaNuevamente:    deref(e.WouldUseAgain),
	}
	if e.Comment != "" {
		w.Comentarios = &e.Comment
	}
	return w
}

func deref(b *bool) bool {
	return b != nil && *b
}

type evaluationStatsWire struct {
	TotalEvaluaciones          int     `json:"total_evaluaciones"`
	CalificacionPromedio       float64 `json:"calificacion_promedio"`
	PorcentajePersonalizado    float64 `json:"porcentaje_personalizado"`
	PorcentajeBuenasDecisiones float64 `json:"porcentaje_buenas_decisiones"`
	PorcentajeAcompaniamiento  float64 `json:"porcentaje_acompaniamiento"`
	PorcentajeComprension      float64 `json:"porcentaje_comprension"`
	PorcentajeRelevante        float64 `json:"porcentaje_relevante"`
	PorcentajeUsariaNuevamente float64 `json:"porcentaje_usaria_nuevamente"`
	SatisfaccionGeneral        string  `json:"satisfaccion_general"`
}

type visitorStatsWire struct {
	TotalVisitantes           int            `json:"total_visitantes"`
	VisitantesPorTipo         map[string]int `json:"visitantes_por_tipo"`
	VisitantesRecientes30Dias int            `json:"visitantes_recientes_30dias"`
	VisitantesActivos         int            `json:"visitantes_activos"`
}

type itineraryStatsWire struct {
	TotalItinerarios        int            `json:"total_itinerarios"`
	ItinerariosPorEstado    map[string]int `json:"itinerarios_por_estado"`
	Completados             int            `json:"completados"`
	EnProgreso              int            `json:"en_progreso"`
	DuracionPromedioMinutos float64        `json:"duracion_promedio_minutos"`
	PuntuacionPromedio      float64        `json:"puntuacion_promedio"`
	GeneradosConIA          int            `json:"generados_con_ia"`
}

type todayStatsWire struct {
	VisitantesHoy           int     `json:"visitantes_hoy"`
	ItinerariosActivos      int     `json:"itinerarios_activos"`
	HoraEntradaPromedio     string  `json:"hora_entrada_promedio"`
	DuracionPromedioMinutos float64 `json:"duracion_promedio_minutos"`
}

type peakHourWire struct {
	Hora       string `json:"hora"`
	Visitantes int    `json:"visitantes"`
}

type weekStatsWire struct {
	Periodo              string         `json:"periodo"`
	TotalVisitas         int            `json:"total_visitas"`
	VisitasPorDia        map[string]int `json:"visitas_por_dia"`
	SatisfaccionPromedio *float64       `json:"satisfaccion_promedio"`
}
