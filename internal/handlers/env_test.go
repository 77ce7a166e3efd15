package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"github.com/venusseo127/dentalApp/internal/booking"
	"github.com/venusseo127/dentalApp/internal/identity"
	"github.com/venusseo127/dentalApp/internal/services"
	"github.com/venusseo127/dentalApp/internal/store/memstore"
	"github.com/venusseo127/dentalApp/types"
)

const testSecret = "test-secret"

var fixedNow = time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)

const (
	tomorrow = "2026-10-17"
	nextWeek = "2026-10-23"
)

type testEnv struct {
	t      *testing.T
	router *chi.Mux
	store  *memstore.Store

	patient types.User
	other   types.User
	admin   types.User
	dentist types.Dentist
	service types.Service
}

func newTestEnv(t *testing.T, verifier identity.Verifier) *testEnv {
	t.Helper()
	ctx := context.Background()
	st := memstore.New()
	clock := func() time.Time { return fixedNow }

	userService := services.NewUserService(st.Users())
	catalogService := services.NewCatalogService(st.Dentists(), st.Services(), nil, nil)
	availabilityService := services.NewAvailabilityService(st.Availability(), catalogService)
	appointmentService := services.NewAppointmentService(st.Appointments(), catalogService, nil, services.AppointmentConfig{Clock: clock})
	statsService := services.NewStatsService(st.Stats(), clock)

	authHandler := NewAuthHandler(userService, verifier, testSecret, time.Hour)
	catalogHandler := NewCatalogHandler(catalogService, availabilityService)
	appointmentHandler := NewAppointmentHandler(appointmentService)
	slots := booking.AvailabilitySlots{Base: booking.DefaultSlots, Availability: availabilityService}
	bookingHandler := NewBookingHandler(appointmentService, slots, clock)
	actor := authHandler.Authenticated

	router := chi.NewRouter()
	router.Get("/healthz", Healthz(nil))
	router.Route("/auth", func(r chi.Router) { AuthRouter(r, authHandler, nil) })
	router.Route("/dentists", func(r chi.Router) { DentistRouter(r, catalogHandler, actor) })
	router.Route("/services", func(r chi.Router) { ServiceRouter(r, catalogHandler, actor) })
	router.Route("/availability", func(r chi.Router) { AvailabilityRouter(r, catalogHandler, actor) })
	router.Route("/appointments", func(r chi.Router) { AppointmentRouter(r, appointmentHandler, actor) })
	router.Route("/booking", func(r chi.Router) { BookingRouter(r, bookingHandler, actor) })
	router.Route("/admin", func(r chi.Router) { AdminRouter(r, statsService, actor) })

	env := &testEnv{t: t, router: router, store: st}
	var err error
	env.patient, err = st.Users().Create(ctx, types.User{Email: "jane@example.com", FirstName: "Jane", LastName: "Doe"})
	require.NoError(t, err)
	env.other, err = st.Users().Create(ctx, types.User{Email: "bob@example.com", FirstName: "Bob", LastName: "Roe"})
	require.NoError(t, err)
	env.admin, err = st.Users().Create(ctx, types.User{Email: "admin@example.com", FirstName: "Ann", Role: types.RoleAdmin})
	require.NoError(t, err)
	env.dentist, err = st.Dentists().Create(ctx, types.Dentist{Name: "Dr. Sarah Johnson", Specialization: "General Dentistry", IsActive: true, IsAvailable: true})
	require.NoError(t, err)
	env.service, err = st.Services().Create(ctx, types.Service{Name: "Regular Cleaning", Price: "120", Duration: 60, Category: "Preventive", IsActive: true})
	require.NoError(t, err)
	return env
}

func (e *testEnv) token(user types.User) string {
	e.t.Helper()
	token, err := issueToken(user.ID, []byte(testSecret), time.Hour)
	require.NoError(e.t, err)
	return token
}

// do sends a JSON request and returns the recorder.
func (e *testEnv) do(method, path string, user *types.User, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != nil {
		req.Header.Set("Authorization", "Bearer "+e.token(*user))
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) book(user types.User, date, slot string) types.Appointment {
	e.t.Helper()
	rec := e.do(http.MethodPost, "/appointments", &user, types.AppointmentRequest{
		ServiceID: e.service.ID,
		DentistID: e.dentist.ID,
		Date:      date,
		Time:      slot,
	})
	require.Equal(e.t, http.StatusCreated, rec.Code, rec.Body.String())
	var appointment types.Appointment
	decode(e.t, rec, &appointment)
	return appointment
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	decode(t, rec, &body)
	return body
}
