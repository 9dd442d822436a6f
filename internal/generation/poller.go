package generation

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkordes/museo-companion/internal/domain"
)

// DefaultInterval is how often generation status is checked.
const DefaultInterval = 3 * time.Second

// StatusSource reports generation progress. *museum.Client satisfies it.
type StatusSource interface {
	GenerationStatus(ctx context.Context, itineraryID int) (domain.GenerationStatus, error)
}

// Poller checks an itinerary's generation status on a fixed interval.
type Poller struct {
	src      StatusSource
	interval time.Duration
	log      *slog.Logger
}

// NewPoller returns a Poller. A non-positive interval uses DefaultInterval.
func NewPoller(src StatusSource, interval time.Duration, log *slog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = slog.Default()
	}
	return &Poller{src: src, interval: interval, log: log}
}

// Watch polls until the backend reports the itinerary complete or ctx is
// cancelled. onProgress is called after every successful check, including
// the final one. It returns the final status and true on completion, or
// the last known status and false when ctx ended first. Failed checks are
// logged and polling continues.
//
// The first check happens one interval after Watch is called.
func (p *Poller) Watch(ctx context.Context, itineraryID int, onProgress func(domain.GenerationStatus)) (domain.GenerationStatus, bool) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	var last domain.GenerationStatus
	for {
		select {
		case <-ctx.Done():
			p.log.DebugContext(ctx, "generation polling stopped", "itinerary_id", itineraryID)
			return last, false
		case <-ticker.C:
		}

		st, err := p.src.GenerationStatus(ctx, itineraryID)
		if err != nil {
			if ctx.Err() != nil {
				return last, false
			}
			p.log.WarnContext(ctx, "generation status check failed", "itinerary_id", itineraryID, "error", err)
			continue
		}
		last = st
		if onProgress != nil {
			onProgress(st)
		}
		if st.Complete {
			p.log.InfoContext(ctx, "itinerary generation complete",
				"itinerary_id", itineraryID, "areas", st.TotalAreas)
			return st, true
		}
	}
}
