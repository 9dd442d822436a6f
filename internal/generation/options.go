// Package generation validates itinerary generation requests and polls the
// backend while the remaining stops are produced.
package generation

import (
	"fmt"
	"slices"

	"github.com/pkordes/museo-companion/internal/domain"
	"github.com/pkordes/museo-companion/internal/museum"
)

// Duration bounds accepted by the backend, in minutes.
const (
	MinDuration = 30
	MaxDuration = 480
)

// breaksAbove is the visit length, in minutes, past which breaks are planned.
const breaksAbove = 90

// DefaultAreas are preselected when the visitor has no usable interests.
var DefaultAreas = []string{"ARQ-01", "ETN-01", "ART-01"}

// fallbackInterests are sent when the selected areas map to no interest.
var fallbackInterests = []string{"arqueologia"}

// areaInterests maps area codes to the interests the backend plans around.
var areaInterests = map[string][]string{
	"ARQ-01":  {"arqueologia", "historia"},
	"ETN-01":  {"etnografia", "cultura"},
	"AVE-01":  {"aves", "naturaleza", "biodiversidad"},
	"BOT-01":  {"plantas", "naturaleza", "biodiversidad"},
	"ART-01":  {"arte", "cultura"},
	"RUIN-01": {"arqueologia", "historia"},
	"TEMP-01": {"arte", "cultura"},
}

// interestAreas maps stored visitor interests back to area codes.
var interestAreas = map[string][]string{
	"arqueologia":   {"ARQ-01", "RUIN-01"},
	"etnografia":    {"ETN-01"},
	"aves":          {"AVE-01"},
	"plantas":       {"BOT-01"},
	"arte":          {"ART-01"},
	"historia":      {"ARQ-01", "RUIN-01"},
	"cultura":       {"ARQ-01", "ETN-01", "ART-01"},
	"naturaleza":    {"BOT-01", "AVE-01"},
	"biodiversidad": {"BOT-01", "AVE-01"},
	"botanica":      {"BOT-01"},
	"ornitologia":   {"AVE-01"},
	"temporal":      {"TEMP-01"},
}

// Validate checks opts before anything is sent to the backend.
func Validate(opts domain.GenerateOptions) error {
	if len(opts.AreaCodes) == 0 {
		return fmt.Errorf("%w: select at least one area", domain.ErrValidation)
	}
	if !opts.DetailLevel.Valid() {
		return fmt.Errorf("%w: unknown detail level %q", domain.ErrValidation, opts.DetailLevel)
	}
	if !opts.EntryType.Valid() {
		return fmt.Errorf("%w: unknown entry type %q", domain.ErrValidation, opts.EntryType)
	}
	if opts.Companions < 0 || opts.Companions > 50 {
		return fmt.Errorf("%w: companions must be between 0 and 50", domain.ErrValidation)
	}
	if opts.EntryType == domain.EntryGroup && opts.Companions < 1 {
		return fmt.Errorf("%w: groups must have at least one companion", domain.ErrValidation)
	}
	if opts.EntryType == domain.EntryIndividual && opts.Companions > 0 {
		return fmt.Errorf("%w: individual entry cannot include companions", domain.ErrValidation)
	}
	if d := opts.Duration; d != nil && (*d < MinDuration || *d > MaxDuration) {
		return fmt.Errorf("%w: duration must be between %d and %d minutes", domain.ErrValidation, MinDuration, MaxDuration)
	}
	return nil
}

// BuildRequest validates opts and turns them into a backend request.
func BuildRequest(opts domain.GenerateOptions) (museum.GenerateRequest, error) {
	if err := Validate(opts); err != nil {
		return museum.GenerateRequest{}, err
	}
	return museum.GenerateRequest{
		VisitorID:     opts.VisitorID,
		Interests:     InterestsForAreas(opts.AreaCodes),
		Duration:      opts.Duration,
		DetailLevel:   opts.DetailLevel,
		EntryType:     opts.EntryType,
		Companions:    opts.Companions,
		IncludeBreaks: opts.Duration == nil || *opts.Duration > breaksAbove,
		AvoidAreas:    opts.AvoidAreas,
	}, nil
}

// InterestsForAreas returns the distinct interests behind the given area
// codes, in first-seen order. Unknown codes are ignored; if nothing maps,
// the fallback interest list is returned.
func InterestsForAreas(codes []string) []string {
	out := collect(codes, areaInterests)
	if len(out) == 0 {
		return slices.Clone(fallbackInterests)
	}
	return out
}

// AreasForInterests returns the area codes to preselect for a visitor's
// stored interests, falling back to DefaultAreas.
func AreasForInterests(interests []string) []string {
	out := collect(interests, interestAreas)
	if len(out) == 0 {
		return slices.Clone(DefaultAreas)
	}
	return out
}

func collect(keys []string, table map[string][]string) []string {
	var out []string
	for _, k := range keys {
		for _, v := range table[k] {
			if !slices.Contains(out, v) {
				out = append(out, v)
			}
		}
	}
	return out
}
