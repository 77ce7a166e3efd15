// Package memstore provides in-memory repositories with the same contracts
// as the Postgres store. It backs STORE_BACKEND=memory and handler tests.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/venusseo127/dentalApp/internal/store"
	"github.com/venusseo127/dentalApp/types"
)

// Store holds every collection behind a single lock.
type Store struct {
	mu           sync.RWMutex
	users        map[string]types.User
	dentists     map[string]types.Dentist
	services     map[string]types.Service
	appointments map[string]types.Appointment
	availability map[string]types.Availability
	now          func() time.Time
}

func New() *Store {
	return &Store{
		users:        make(map[string]types.User),
		dentists:     make(map[string]types.Dentist),
		services:     make(map[string]types.Service),
		appointments: make(map[string]types.Appointment),
		availability: make(map[string]types.Availability),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Users() *UserRepository               { return &UserRepository{s} }
func (s *Store) Dentists() *DentistRepository         { return &DentistRepository{s} }
func (s *Store) Services() *ServiceRepository         { return &ServiceRepository{s} }
func (s *Store) Appointments() *AppointmentRepository { return &AppointmentRepository{s} }
func (s *Store) Availability() *AvailabilityRepository {
	return &AvailabilityRepository{s}
}
func (s *Store) Stats() *StatsRepository { return &StatsRepository{s} }

type UserRepository struct{ s *Store }

func (r *UserRepository) GetByID(_ context.Context, id string) (types.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	user, ok := r.s.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *UserRepository) GetByAuthUID(_ context.Context, uid string) (types.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, user := range r.s.users {
		if uid != "" && user.AuthUID == uid {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (types.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, user := range r.s.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *UserRepository) Create(_ context.Context, user types.User) (types.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if strings.EqualFold(existing.Email, user.Email) ||
			(user.AuthUID != "" && existing.AuthUID == user.AuthUID) {
			return types.User{}, store.ErrDuplicate
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = types.RolePatient
	}
	user.CreatedAt = r.s.now()
	user.UpdatedAt = user.CreatedAt
	r.s.users[user.ID] = user
	return user, nil
}

func (r *UserRepository) Update(_ context.Context, user types.User) (types.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.users[user.ID]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	if user.AuthUID != "" {
		for id, other := range r.s.users {
			if id != user.ID && other.AuthUID == user.AuthUID {
				return types.User{}, store.ErrDuplicate
			}
		}
	}
	user.Email = existing.Email
	user.Role = existing.Role
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = r.s.now()
	r.s.users[user.ID] = user
	return user, nil
}

func (r *UserRepository) SetRole(_ context.Context, id string, role types.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.Role = role
	user.UpdatedAt = r.s.now()
	r.s.users[id] = user
	return nil
}

type DentistRepository struct{ s *Store }

func (r *DentistRepository) ListActive(_ context.Context) ([]types.Dentist, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	dentists := make([]types.Dentist, 0, len(r.s.dentists))
	for _, dentist := range r.s.dentists {
		if dentist.IsActive {
			dentists = append(dentists, dentist)
		}
	}
	sort.Slice(dentists, func(i, j int) bool { return dentists[i].Name < dentists[j].Name })
	return dentists, nil
}

func (r *DentistRepository) Get(_ context.Context, id string) (types.Dentist, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	dentist, ok := r.s.dentists[id]
	if !ok {
		return types.Dentist{}, store.ErrNotFound
	}
	return dentist, nil
}

func (r *DentistRepository) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.dentists), nil
}

func (r *DentistRepository) Create(_ context.Context, dentist types.Dentist) (types.Dentist, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if dentist.ID == "" {
		dentist.ID = uuid.NewString()
	}
	dentist.CreatedAt = r.s.now()
	dentist.UpdatedAt = dentist.CreatedAt
	r.s.dentists[dentist.ID] = dentist
	return dentist, nil
}

func (r *DentistRepository) Update(_ context.Context, dentist types.Dentist) (types.Dentist, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.dentists[dentist.ID]
	if !ok {
		return types.Dentist{}, store.ErrNotFound
	}
	dentist.CreatedAt = existing.CreatedAt
	dentist.UpdatedAt = r.s.now()
	r.s.dentists[dentist.ID] = dentist
	return dentist, nil
}

type ServiceRepository struct{ s *Store }

func (r *ServiceRepository) ListActive(_ context.Context) ([]types.Service, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	services := make([]types.Service, 0, len(r.s.services))
	for _, service := range r.s.services {
		if service.IsActive {
			services = append(services, service)
		}
	}
	sort.Slice(services, func(i, j int) bool { return services[i].Name < services[j].Name })
	return services, nil
}

func (r *ServiceRepository) Get(_ context.Context, id string) (types.Service, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	service, ok := r.s.services[id]
	if !ok {
		return types.Service{}, store.ErrNotFound
	}
	return service, nil
}

func (r *ServiceRepository) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.services), nil
}

func (r *ServiceRepository) Create(_ context.Context, service types.Service) (types.Service, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if service.ID == "" {
		service.ID = uuid.NewString()
	}
	service.CreatedAt = r.s.now()
	r.s.services[service.ID] = service
	return service, nil
}

func (r *ServiceRepository) Update(_ context.Context, service types.Service) (types.Service, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.services[service.ID]
	if !ok {
		return types.Service{}, store.ErrNotFound
	}
	service.CreatedAt = existing.CreatedAt
	r.s.services[service.ID] = service
	return service, nil
}

type AppointmentRepository struct{ s *Store }

func (r *AppointmentRepository) List(_ context.Context, filter types.AppointmentFilter) ([]types.Appointment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	appointments := make([]types.Appointment, 0)
	for _, appointment := range r.s.appointments {
		if filter.UserID != "" && appointment.UserID != filter.UserID {
			continue
		}
		if filter.DentistID != "" && appointment.DentistID != filter.DentistID {
			continue
		}
		if filter.Date != "" && appointment.AppointmentDate != filter.Date {
			continue
		}
		appointments = append(appointments, appointment)
	}
	sort.Slice(appointments, func(i, j int) bool {
		a, b := appointments[i], appointments[j]
		if filter.Date != "" {
			return a.AppointmentTime < b.AppointmentTime
		}
		if a.AppointmentDate != b.AppointmentDate {
			return a.AppointmentDate > b.AppointmentDate
		}
		return a.AppointmentTime > b.AppointmentTime
	})
	return appointments, nil
}

func (r *AppointmentRepository) Get(_ context.Context, id string) (types.Appointment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	appointment, ok := r.s.appointments[id]
	if !ok {
		return types.Appointment{}, store.ErrNotFound
	}
	return appointment, nil
}

func (r *AppointmentRepository) Create(_ context.Context, appointment types.Appointment) (types.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if appointment.ID == "" {
		appointment.ID = uuid.NewString()
	}
	appointment.CreatedAt = r.s.now()
	appointment.UpdatedAt = appointment.CreatedAt
	r.s.appointments[appointment.ID] = appointment
	return appointment, nil
}

func (r *AppointmentRepository) Update(_ context.Context, appointment types.Appointment) (types.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.appointments[appointment.ID]
	if !ok {
		return types.Appointment{}, store.ErrNotFound
	}
	existing.AppointmentDate = appointment.AppointmentDate
	existing.AppointmentTime = appointment.AppointmentTime
	existing.Status = appointment.Status
	existing.Notes = appointment.Notes
	existing.TotalCost = appointment.TotalCost
	existing.UpdatedAt = r.s.now()
	r.s.appointments[existing.ID] = existing
	return existing, nil
}

func (r *AppointmentRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.appointments[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.s.appointments, id)
	return nil
}

func (r *AppointmentRepository) HasConflict(_ context.Context, dentistID, date, slot, excludeID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for id, appointment := range r.s.appointments {
		if id == excludeID || appointment.DentistID != dentistID {
			continue
		}
		if appointment.Status == types.StatusCancelled || appointment.Status == types.StatusNoShow {
			continue
		}
		if appointment.AppointmentDate == date && appointment.AppointmentTime == slot {
			return true, nil
		}
	}
	return false, nil
}

type AvailabilityRepository struct{ s *Store }

func (r *AvailabilityRepository) ListByDentist(_ context.Context, dentistID, date string) ([]types.Availability, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	windows := make([]types.Availability, 0)
	for _, window := range r.s.availability {
		if window.DentistID != dentistID || (date != "" && window.Date != date) {
			continue
		}
		windows = append(windows, window)
	}
	sort.Slice(windows, func(i, j int) bool {
		if windows[i].Date != windows[j].Date {
			return windows[i].Date < windows[j].Date
		}
		return windows[i].StartTime < windows[j].StartTime
	})
	return windows, nil
}

func (r *AvailabilityRepository) Create(_ context.Context, window types.Availability) (types.Availability, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if window.ID == "" {
		window.ID = uuid.NewString()
	}
	window.CreatedAt = r.s.now()
	r.s.availability[window.ID] = window
	return window, nil
}

func (r *AvailabilityRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.availability[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.s.availability, id)
	return nil
}

type StatsRepository struct{ s *Store }

func (r *StatsRepository) Dashboard(_ context.Context, today string) (types.DashboardStats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var stats types.DashboardStats
	patients := make(map[string]struct{})
	for _, appointment := range r.s.appointments {
		stats.TotalAppointments++
		patients[appointment.UserID] = struct{}{}
		if appointment.AppointmentDate == today {
			stats.TodayAppointments++
		}
	}
	for _, dentist := range r.s.dentists {
		if dentist.IsActive {
			stats.ActiveDentists++
		}
	}
	stats.TotalPatients = len(patients)
	return stats, nil
}
