package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/museo-companion/internal/certificate"
	"github.com/pkordes/museo-companion/internal/domain"
	"github.com/pkordes/museo-companion/internal/museum"
	"github.com/pkordes/museo-companion/internal/service"
)

// mockItineraryBackend is a hand-written double for service.ItineraryBackend.
// Set only the function fields a test needs.
type mockItineraryBackend struct {
	getPreferences   func(ctx context.Context, visitorID int) (domain.Preferences, error)
	generate         func(ctx context.Context, r museum.GenerateRequest) (domain.Itinerary, error)
	list             func(ctx context.Context, visitorID int) ([]domain.Itinerary, error)
	get              func(ctx context.Context, id int) (domain.Itinerary, error)
	start            func(ctx context.Context, id int) (domain.Itinerary, error)
	delete           func(ctx context.Context, id int) error
	generationStatus func(ctx context.Context, id int) (domain.GenerationStatus, error)
}

func (m *mockItineraryBackend) GetPreferences(ctx context.Context, visitorID int) (domain.Preferences, error) {
	return m.getPreferences(ctx, visitorID)
}
func (m *mockItineraryBackend) GenerateItinerary(ctx context.Context, r museum.GenerateRequest) (domain.Itinerary, error) {
	return m.generate(ctx, r)
}
func (m *mockItineraryBackend) ListItineraries(ctx context.Context, visitorID int) ([]domain.Itinerary, error) {
	return m.list(ctx, visitorID)
}
func (m *mockItineraryBackend) GetItinerary(ctx context.Context, id int) (domain.Itinerary, error) {
	return m.get(ctx, id)
}
func (m *mockItineraryBackend) StartItinerary(ctx context.Context, id int) (domain.Itinerary, error) {
	return m.start(ctx, id)
}
func (m *mockItineraryBackend) DeleteItinerary(ctx context.Context, id int) error {
	return m.delete(ctx, id)
}
func (m *mockItineraryBackend) GenerationStatus(ctx context.Context, id int) (domain.GenerationStatus, error) {
	return m.generationStatus(ctx, id)
}

var _ service.ItineraryBackend = (*mockItineraryBackend)(nil)

func noPreferences(context.Context, int) (domain.Preferences, error) {
	return domain.Preferences{}, domain.ErrNotFound
}

func TestItineraryService_SuggestedAreas(t *testing.T) {
	tests := []struct {
		name  string
		prefs func(context.Context, int) (domain.Preferences, error)
		want  []string
	}{
		{"no preferences", noPreferences, []string{"ARQ-01", "ETN-01", "ART-01"}},
		{"backend error", func(context.Context, int) (domain.Preferences, error) {
			return domain.Preferences{}, errors.New("down")
		}, []string{"ARQ-01", "ETN-01", "ART-01"}},
		{"birds", func(context.Context, int) (domain.Preferences, error) {
			return domain.Preferences{Interests: []string{"aves", "arte"}}, nil
		}, []string{"AVE-01", "ART-01"}},
		{"unknown interests", func(context.Context, int) (domain.Preferences, error) {
			return domain.Preferences{Interests: []string{"astronomia"}}, nil
		}, []string{"ARQ-01", "ETN-01", "ART-01"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := service.NewItineraryService(&mockItineraryBackend{getPreferences: tc.prefs}, discardLogger())

			got, err := svc.SuggestedAreas(context.Background(), loggedInState(t))

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestItineraryService_Generate_FillsDefaults(t *testing.T) {
	var sent museum.GenerateRequest
	backend := &mockItineraryBackend{
		getPreferences: noPreferences,
		generate: func(_ context.Context, r museum.GenerateRequest) (domain.Itinerary, error) {
			sent = r
			return domain.Itinerary{ID: 12, Stops: []domain.Stop{{ID: 1, Order: 1}}}, nil
		},
	}
	svc := service.NewItineraryService(backend, discardLogger())

	it, err := svc.Generate(context.Background(), loggedInState(t), domain.GenerateOptions{Duration: intPtr(60)})

	require.NoError(t, err)
	assert.Equal(t, 12, it.ID)
	assert.Equal(t, 7, sent.VisitorID)
	assert.Equal(t, domain.EntryIndividual, sent.EntryType)
	assert.Equal(t, domain.DetailMedium, sent.DetailLevel)
	assert.Equal(t, []string{"arqueologia", "historia", "etnografia", "cultura", "arte"}, sent.Interests)
	assert.False(t, sent.IncludeBreaks)
}

func TestItineraryService_Generate_NoRushIncludesBreaks(t *testing.T) {
	var sent museum.GenerateRequest
	backend := &mockItineraryBackend{
		generate: func(_ context.Context, r museum.GenerateRequest) (domain.Itinerary, error) {
			sent = r
			return domain.Itinerary{ID: 1}, nil
		},
	}
	svc := service.NewItineraryService(backend, discardLogger())

	_, err := svc.Generate(context.Background(), loggedInState(t), domain.GenerateOptions{
		AreaCodes:   []string{"AVE-01"},
		DetailLevel: domain.DetailDetailed,
		EntryType:   domain.EntryGroup,
		Companions:  4,
	})

	require.NoError(t, err)
	assert.Nil(t, sent.Duration)
	assert.True(t, sent.IncludeBreaks)
	assert.Equal(t, 4, sent.Companions)
}

func TestItineraryService_Generate_InvalidSendsNothing(t *testing.T) {
	backend := &mockItineraryBackend{
		generate: func(context.Context, museum.GenerateRequest) (domain.Itinerary, error) {
			t.Fatal("backend must not be called")
			return domain.Itinerary{}, nil
		},
	}
	svc := service.NewItineraryService(backend, discardLogger())

	_, err := svc.Generate(context.Background(), loggedInState(t), domain.GenerateOptions{
		AreaCodes: []string{"ARQ-01"},
		Duration:  intPtr(20),
	})

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.ErrorContains(t, err, "service.ItineraryService.Generate: ")
}

func TestItineraryService_RequiresLogin(t *testing.T) {
	svc := service.NewItineraryService(&mockItineraryBackend{}, discardLogger())
	ctx := context.Background()
	st := anonymousState(t)

	_, err := svc.List(ctx, st)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	_, err = svc.Generate(ctx, st, domain.GenerateOptions{})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	err = svc.Delete(ctx, st, 1)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestItineraryService_List_NeverNil(t *testing.T) {
	backend := &mockItineraryBackend{
		list: func(_ context.Context, visitorID int) ([]domain.Itinerary, error) {
			assert.Equal(t, 7, visitorID)
			return nil, nil
		},
	}
	svc := service.NewItineraryService(backend, discardLogger())

	got, err := svc.List(context.Background(), loggedInState(t))

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestItineraryService_Get_NotFound(t *testing.T) {
	backend := &mockItineraryBackend{
		get: func(context.Context, int) (domain.Itinerary, error) {
			return domain.Itinerary{}, domain.ErrNotFound
		},
	}
	svc := service.NewItineraryService(backend, discardLogger())

	_, err := svc.Get(context.Background(), loggedInState(t), 99)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestItineraryService_Certificate(t *testing.T) {
	status := domain.ItineraryActive
	backend := &mockItineraryBackend{
		get: func(_ context.Context, id int) (domain.Itinerary, error) {
			return domain.Itinerary{ID: id, Status: status, Title: "Ruta"}, nil
		},
	}
	svc := service.NewItineraryService(backend, discardLogger())
	st := loggedInState(t)

	_, err := svc.Certificate(context.Background(), st, 5, "http://localhost/itineraries/5")
	assert.ErrorIs(t, err, certificate.ErrNotCompleted)

	status = domain.ItineraryCompleted
	c, err := svc.Certificate(context.Background(), st, 5, "http://localhost/itineraries/5")
	require.NoError(t, err)
	assert.Equal(t, "Ana Torres", c.VisitorName)
	assert.Equal(t, "certificate-5.pdf", c.Filename())
}
