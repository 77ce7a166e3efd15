package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/venusseo127/dentalApp/internal/store/memstore"
	"github.com/venusseo127/dentalApp/types"
)

var fixedNow = time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)

const (
	today    = "2026-10-16"
	tomorrow = "2026-10-17"
	nextWeek = "2026-10-23"
)

type fixture struct {
	store        *memstore.Store
	users        *UserService
	catalog      *CatalogService
	appointments *AppointmentService
	events       *recordingPublisher

	patient types.User
	other   types.User
	admin   types.User
	dentist types.Dentist
	service types.Service
}

func newFixture(t *testing.T, cfg AppointmentConfig) *fixture {
	t.Helper()
	ctx := context.Background()
	st := memstore.New()

	f := &fixture{store: st, events: &recordingPublisher{}}
	f.users = NewUserService(st.Users())
	f.catalog = NewCatalogService(st.Dentists(), st.Services(), nil, nil)
	if cfg.Clock == nil {
		cfg.Clock = func() time.Time { return fixedNow }
	}
	f.appointments = NewAppointmentService(st.Appointments(), f.catalog, f.events, cfg)

	var err error
	f.patient, err = st.Users().Create(ctx, types.User{Email: "jane@example.com", FirstName: "Jane", LastName: "Doe", Phone: "555-0100"})
	require.NoError(t, err)
	f.other, err = st.Users().Create(ctx, types.User{Email: "bob@example.com", FirstName: "Bob", LastName: "Roe"})
	require.NoError(t, err)
	f.admin, err = st.Users().Create(ctx, types.User{Email: "admin@example.com", FirstName: "Ann", Role: types.RoleAdmin})
	require.NoError(t, err)

	f.dentist, err = st.Dentists().Create(ctx, types.Dentist{
		Name: "Dr. Sarah Johnson", Specialization: "General Dentistry", Phone: "555-0101", IsActive: true, IsAvailable: true,
	})
	require.NoError(t, err)
	f.service, err = st.Services().Create(ctx, types.Service{
		Name: "Regular Cleaning", Description: "Routine cleaning", Price: "120", Duration: 60, Category: "Preventive", IsActive: true,
	})
	require.NoError(t, err)
	return f
}

func (f *fixture) book(t *testing.T, actor types.User, date, slot string) types.Appointment {
	t.Helper()
	appointment, err := f.appointments.Create(context.Background(), actor, types.AppointmentRequest{
		ServiceID: f.service.ID,
		DentistID: f.dentist.ID,
		Date:      date,
		Time:      slot,
	})
	require.NoError(t, err)
	return appointment
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []types.AppointmentEvent
	err    error
}

func (p *recordingPublisher) PublishAppointmentEvent(_ context.Context, event types.AppointmentEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) eventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, event := range p.events {
		out = append(out, event.Type)
	}
	return out
}

var errFlaky = errors.New("connection reset by peer")

// flakyAppointments fails the first failures reads before delegating.
type flakyAppointments struct {
	AppointmentRepository
	failures int
	calls    int
}

func (r *flakyAppointments) Get(ctx context.Context, id string) (types.Appointment, error) {
	r.calls++
	if r.calls <= r.failures {
		return types.Appointment{}, errFlaky
	}
	return r.AppointmentRepository.Get(ctx, id)
}

func (r *flakyAppointments) List(ctx context.Context, filter types.AppointmentFilter) ([]types.Appointment, error) {
	r.calls++
	if r.calls <= r.failures {
		return nil, errFlaky
	}
	return r.AppointmentRepository.List(ctx, filter)
}

// failingWrites rejects every write.
type failingWrites struct {
	AppointmentRepository
	writes int
}

func (r *failingWrites) Create(context.Context, types.Appointment) (types.Appointment, error) {
	r.writes++
	return types.Appointment{}, errFlaky
}

func (r *failingWrites) Update(context.Context, types.Appointment) (types.Appointment, error) {
	r.writes++
	return types.Appointment{}, errFlaky
}
