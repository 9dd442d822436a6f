package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/museo-companion/internal/certificate"
	"github.com/pkordes/museo-companion/internal/domain"
	"github.com/pkordes/museo-companion/internal/handler"
	"github.com/pkordes/museo-companion/internal/service"
	"github.com/pkordes/museo-companion/internal/session"
	"github.com/pkordes/museo-companion/internal/visit"
)

// Test doubles for the handler's service interfaces.
// Each method is a function field; set only the ones a test needs.

type mockAuth struct {
	login  func(ctx context.Context, st *session.State, cb service.LoginCallback) (domain.SessionUser, error)
	logout func(ctx context.Context, st *session.State) error
	me     func(st *session.State) (domain.SessionUser, error)
}

func (m *mockAuth) LoginURL() string { return "http://museum.test/api/v1/auth/google/login" }
func (m *mockAuth) Login(ctx context.Context, st *session.State, cb service.LoginCallback) (domain.SessionUser, error) {
	return m.login(ctx, st, cb)
}
func (m *mockAuth) Logout(ctx context.Context, st *session.State) error { return m.logout(ctx, st) }
func (m *mockAuth) Me(st *session.State) (domain.SessionUser, error)    { return m.me(st) }

type mockProfiles struct {
	complete func(ctx context.Context, st *session.State, p domain.ProfileUpdate) (domain.SessionUser, error)
}

func (m *mockProfiles) Complete(ctx context.Context, st *session.State, p domain.ProfileUpdate) (domain.SessionUser, error) {
	return m.complete(ctx, st, p)
}

type mockAreas struct {
	list func(ctx context.Context) ([]domain.Area, error)
	get  func(ctx context.Context, id int) (domain.Area, error)
}

func (m *mockAreas) List(ctx context.Context) ([]domain.Area, error)      { return m.list(ctx) }
func (m *mockAreas) Get(ctx context.Context, id int) (domain.Area, error) { return m.get(ctx, id) }

type mockItineraries struct {
	suggested   func(ctx context.Context, st *session.State) ([]string, error)
	generate    func(ctx context.Context, st *session.State, opts domain.GenerateOptions) (domain.Itinerary, error)
	list        func(ctx context.Context, st *session.State) ([]domain.Itinerary, error)
	get         func(ctx context.Context, st *session.State, id int) (domain.Itinerary, error)
	start       func(ctx context.Context, st *session.State, id int) (domain.Itinerary, error)
	delete      func(ctx context.Context, st *session.State, id int) error
	status      func(ctx context.Context, st *session.State, id int) (domain.GenerationStatus, error)
	certificate func(ctx context.Context, st *session.State, id int, link string) (certificate.Certificate, error)
}

func (m *mockItineraries) SuggestedAreas(ctx context.Context, st *session.State) ([]string, error) {
	return m.suggested(ctx, st)
}
func (m *mockItineraries) Generate(ctx context.Context, st *session.State, opts domain.GenerateOptions) (domain.Itinerary, error) {
	return m.generate(ctx, st, opts)
}
func (m *mockItineraries) List(ctx context.Context, st *session.State) ([]domain.Itinerary, error) {
	return m.list(ctx, st)
}
func (m *mockItineraries) Get(ctx context.Context, st *session.State, id int) (domain.Itinerary, error) {
	return m.get(ctx, st, id)
}
func (m *mockItineraries) Start(ctx context.Context, st *session.State, id int) (domain.Itinerary, error) {
	return m.start(ctx, st, id)
}
func (m *mockItineraries) Delete(ctx context.Context, st *session.State, id int) error {
	return m.delete(ctx, st, id)
}
func (m *mockItineraries) Status(ctx context.Context, st *session.State, id int) (domain.GenerationStatus, error) {
	return m.status(ctx, st, id)
}
func (m *mockItineraries) Certificate(ctx context.Context, st *session.State, id int, link string) (certificate.Certificate, error) {
	return m.certificate(ctx, st, id, link)
}

type mockVisits struct {
	mount       func(ctx context.Context, st *session.State, itineraryID int) (*service.View, error)
	get         func(ctx context.Context, st *session.State, id uuid.UUID) (*service.View, error)
	unmount     func(ctx context.Context, st *session.State, id uuid.UUID) error
	markVisited func(ctx context.Context, st *session.State, id uuid.UUID, stopID int) (visit.Snapshot, error)
	skip        func(ctx context.Context, st *session.State, id uuid.UUID, stopID int) (visit.Snapshot, error)
	back        func(ctx context.Context, st *session.State, id uuid.UUID) (visit.Snapshot, error)
	complete    func(ctx context.Context, st *session.State, id uuid.UUID, e domain.Evaluation) (visit.Snapshot, error)
}

func (m *mockVisits) Mount(ctx context.Context, st *session.State, itineraryID int) (*service.View, error) {
	return m.mount(ctx, st, itineraryID)
}
func (m *mockVisits) Get(ctx context.Context, st *session.State, id uuid.UUID) (*service.View, error) {
	return m.get(ctx, st, id)
}
func (m *mockVisits) Unmount(ctx context.Context, st *session.State, id uuid.UUID) error {
	return m.unmount(ctx, st, id)
}
func (m *mockVisits) MarkVisited(ctx context.Context, st *session.State, id uuid.UUID, stopID int) (visit.Snapshot, error) {
	return m.markVisited(ctx, st, id, stopID)
}
func (m *mockVisits) Skip(ctx context.Context, st *session.State, id uuid.UUID, stopID int) (visit.Snapshot, error) {
	return m.skip(ctx, st, id, stopID)
}
func (m *mockVisits) Back(ctx context.Context, st *session.State, id uuid.UUID) (visit.Snapshot, error) {
	return m.back(ctx, st, id)
}
func (m *mockVisits) Complete(ctx context.Context, st *session.State, id uuid.UUID, e domain.Evaluation) (visit.Snapshot, error) {
	return m.complete(ctx, st, id, e)
}

type mockAdmin struct {
	dashboard func(ctx context.Context, st *session.State) (service.Dashboard, error)
	visitors  func(ctx context.Context, st *session.State, p domain.PaginationParams) ([]domain.Visitor, error)
}

func (m *mockAdmin) Dashboard(ctx context.Context, st *session.State) (service.Dashboard, error) {
	return m.dashboard(ctx, st)
}
func (m *mockAdmin) Visitors(ctx context.Context, st *session.State, p domain.PaginationParams) ([]domain.Visitor, error) {
	return m.visitors(ctx, st, p)
}

// compile-time checks: the mocks and the real services satisfy the
// handler's interfaces.
var (
	_ handler.AuthServicer      = (*mockAuth)(nil)
	_ handler.ProfileServicer   = (*mockProfiles)(nil)
	_ handler.AreaServicer      = (*mockAreas)(nil)
	_ handler.ItineraryServicer = (*mockItineraries)(nil)
	_ handler.VisitServicer     = (*mockVisits)(nil)
	_ handler.AdminServicer     = (*mockAdmin)(nil)

	_ handler.AuthServicer      = (*service.AuthService)(nil)
	_ handler.ProfileServicer   = (*service.ProfileService)(nil)
	_ handler.AreaServicer      = (*service.AreaService)(nil)
	_ handler.ItineraryServicer = (*service.ItineraryService)(nil)
	_ handler.VisitServicer     = (*service.VisitService)(nil)
	_ handler.AdminServicer     = (*service.AdminService)(nil)
)

// ---- helpers ---------------------------------------------------------------

type memStore struct {
	mu     sync.Mutex
	values map[string]string
}

func (m *memStore) Get(_ context.Context, id uuid.UUID, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[id.String()+"/"+key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return v, nil
}
func (m *memStore) Set(_ context.Context, id uuid.UUID, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[id.String()+"/"+key] = value
	return nil
}
func (m *memStore) Remove(_ context.Context, id uuid.UUID, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, id.String()+"/"+key)
	return nil
}
func (m *memStore) Clear(context.Context, uuid.UUID) error { return nil }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const publicURL = "http://app.test"

// newHTTPHandler wires a Server the way main.go does, with a session
// middleware that injects a fresh anonymous session.
func newHTTPHandler(t *testing.T, d handler.Deps) http.Handler {
	t.Helper()
	st, err := session.Open(context.Background(), &memStore{values: map[string]string{}}, uuid.New(), quietLogger())
	require.NoError(t, err)

	d.PublicURL = publicURL
	d.Log = quietLogger()
	withSession := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(session.NewContext(r.Context(), st)))
		})
	}
	return handler.NewServer(d).Routes(withSession)
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func decodeError(t *testing.T, body io.Reader) handler.ErrorDetail {
	t.Helper()
	var resp handler.ErrorResponse
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	return resp.Error
}

func itineraryFixture() domain.Itinerary {
	return domain.Itinerary{
		ID:          12,
		Status:      domain.ItineraryGenerated,
		GeneratedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		Title:       "Ruta arqueológica",
		Stops: []domain.Stop{
			{ID: 1, Order: 1, Area: &domain.Area{Name: "Arqueología", Floor: 1, Zone: "norte"}},
			{ID: 2, Order: 2, Area: &domain.Area{Name: "Etnografía", Floor: 2, Zone: "sur"}},
		},
	}
}
