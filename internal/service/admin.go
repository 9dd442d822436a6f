package service

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/pkordes/museo-companion/internal/domain"
	"github.com/pkordes/museo-companion/internal/session"
)

// StatsBackend is the part of the museum backend that serves statistics.
type StatsBackend interface {
	VisitorStats(ctx context.Context) (domain.VisitorStats, error)
	ItineraryStats(ctx context.Context) (domain.ItineraryStats, error)
	TodayStats(ctx context.Context) (domain.TodayStats, error)
	EvaluationStats(ctx context.Context) (domain.EvaluationStats, error)
	PeakHours(ctx context.Context) ([]domain.PeakHour, error)
	WeekStats(ctx context.Context) (domain.WeekStats, error)
	ListVisitors(ctx context.Context, p domain.PaginationParams) ([]domain.Visitor, error)
}

// recentVisitors is how many visitors the dashboard lists.
const recentVisitors = 10

// Band is a qualitative rating for a percentage.
type Band string

const (
	BandHigh Band = "high"
	BandGood Band = "good"
	BandFair Band = "fair"
	BandLow  Band = "low"
)

// BandFor rates a 0–100 percentage: 80 and up is high, 60 good, 40 fair.
func BandFor(pct float64) Band {
	switch {
	case pct >= 80:
		return BandHigh
	case pct >= 60:
		return BandGood
	case pct >= 40:
		return BandFair
	}
	return BandLow
}

// FormatPercent renders a percentage with one decimal, e.g. "85.3".
func FormatPercent(pct float64) string {
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		pct = 0
	}
	return strconv.FormatFloat(pct, 'f', 1, 64)
}

// Share is one entry of a breakdown with its share of the total.
type Share struct {
	Key     string `json:"key"`
	Count   int    `json:"count"`
	Percent string `json:"percent"`
}

// Question is one evaluation question's "yes" percentage.
type Question struct {
	Key     string `json:"key"`
	Percent string `json:"percent"`
	Band    Band   `json:"band"`
}

// EvaluationSummary is the formatted evaluation block of the dashboard.
type EvaluationSummary struct {
	Total         int        `json:"total"`
	AverageRating string     `json:"average_rating"`
	Satisfaction  string     `json:"satisfaction"`
	Band          Band       `json:"band"`
	Questions     []Question `json:"questions"`
}

// Dashboard is everything the admin statistics view shows.
type Dashboard struct {
	Visitors          domain.VisitorStats   `json:"visitors"`
	VisitorTypes      []Share               `json:"visitor_types"`
	Itineraries       domain.ItineraryStats `json:"itineraries"`
	ItineraryStatuses []Share               `json:"itinerary_statuses"`
	CompletionRate    string                `json:"completion_rate"`
	Today             domain.TodayStats     `json:"today"`
	Week              domain.WeekStats      `json:"week"`
	Evaluations       EvaluationSummary     `json:"evaluations"`
	PeakHours         []domain.PeakHour     `json:"peak_hours"`
	RecentVisitors    []domain.Visitor      `json:"recent_visitors"`
}

// AdminService aggregates backend statistics for the admin dashboard.
type AdminService struct {
	backend StatsBackend
}

// NewAdminService constructs an AdminService.
func NewAdminService(backend StatsBackend) *AdminService {
	return &AdminService{backend: backend}
}

// Dashboard fetches every statistic concurrently. Any failure fails the
// whole dashboard.
func (s *AdminService) Dashboard(ctx context.Context, st *session.State) (Dashboard, error) {
	if _, err := currentUser(st); err != nil {
		return Dashboard{}, fmt.Errorf("service.AdminService.Dashboard: %w", err)
	}

	var (
		d     Dashboard
		evals domain.EvaluationStats
	)
	limit := recentVisitors
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { d.Visitors, err = s.backend.VisitorStats(gctx); return })
	g.Go(func() (err error) { d.Itineraries, err = s.backend.ItineraryStats(gctx); return })
	g.Go(func() (err error) { d.Today, err = s.backend.TodayStats(gctx); return })
	g.Go(func() (err error) { evals, err = s.backend.EvaluationStats(gctx); return })
	g.Go(func() (err error) { d.PeakHours, err = s.backend.PeakHours(gctx); return })
	g.Go(func() (err error) { d.Week, err = s.backend.WeekStats(gctx); return })
	g.Go(func() (err error) {
		d.RecentVisitors, err = s.backend.ListVisitors(gctx, domain.NewPaginationParams(nil, &limit))
		return
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, fmt.Errorf("service.AdminService.Dashboard: %w", err)
	}

	d.VisitorTypes = shares(d.Visitors.ByType, d.Visitors.Total)
	d.ItineraryStatuses = shares(d.Itineraries.ByStatus, d.Itineraries.Total)
	d.CompletionRate = FormatPercent(percentOf(d.Itineraries.Completed, d.Itineraries.Total))
	d.Evaluations = summarize(evals)
	if d.PeakHours == nil {
		d.PeakHours = []domain.PeakHour{}
	}
	if d.Week.VisitsByDay == nil {
		d.Week.VisitsByDay = map[string]int{}
	}
	if d.RecentVisitors == nil {
		d.RecentVisitors = []domain.Visitor{}
	}
	return d, nil
}

// Visitors returns one page of registered visitors.
func (s *AdminService) Visitors(ctx context.Context, st *session.State, p domain.PaginationParams) ([]domain.Visitor, error) {
	if _, err := currentUser(st); err != nil {
		return nil, fmt.Errorf("service.AdminService.Visitors: %w", err)
	}
	vs, err := s.backend.ListVisitors(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("service.AdminService.Visitors: %w", err)
	}
	if vs == nil {
		return []domain.Visitor{}, nil
	}
	return vs, nil
}

func summarize(e domain.EvaluationStats) EvaluationSummary {
	satisfaction := e.AverageRating / 5 * 100
	out := EvaluationSummary{
		Total:         e.Total,
		AverageRating: strconv.FormatFloat(e.AverageRating, 'f', 1, 64),
		Satisfaction:  e.Satisfaction,
		Band:          BandFor(satisfaction),
	}
	for _, q := range []struct {
		key string
		pct float64
	}{
		{"personalized", e.PctPersonalized},
		{"good_decisions", e.PctGoodDecisions},
		{"companionship", e.PctCompanionship},
		{"understanding", e.PctUnderstanding},
		{"relevant", e.PctRelevant},
		{"would_use_again", e.PctWouldUseAgain},
	} {
		out.Questions = append(out.Questions, Question{Key: q.key, Percent: FormatPercent(q.pct), Band: BandFor(q.pct)})
	}
	return out
}

// shares turns a count breakdown into shares of total, largest first.
func shares(counts map[string]int, total int) []Share {
	out := make([]Share, 0, len(counts))
	for k, n := range counts {
		out = append(out, Share{Key: k, Count: n, Percent: FormatPercent(percentOf(n, total))})
	}
	slices.SortFunc(out, func(a, b Share) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	return out
}

func percentOf(n, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(n) * 100 / float64(total)
}
