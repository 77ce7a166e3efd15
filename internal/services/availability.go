package services

import (
	"context"
	"strings"

	"github.com/venusseo127/dentalApp/internal/apperr"
	"github.com/venusseo127/dentalApp/types"
)

// AvailabilityRepository defines persistence operations for availability windows.
type AvailabilityRepository interface {
	ListByDentist(ctx context.Context, dentistID, date string) ([]types.Availability, error)
	Create(ctx context.Context, window types.Availability) (types.Availability, error)
	Delete(ctx context.Context, id string) error
}

type AvailabilityService struct {
	repo    AvailabilityRepository
	catalog CatalogLookup
	gate    Gate
}

func NewAvailabilityService(repo AvailabilityRepository, catalog CatalogLookup) *AvailabilityService {
	return &AvailabilityService{repo: repo, catalog: catalog}
}

// List returns the windows of a dentist, optionally restricted to one date.
func (s *AvailabilityService) List(ctx context.Context, dentistID, date string) ([]types.Availability, error) {
	if strings.TrimSpace(dentistID) == "" {
		return nil, apperr.Validation("dentistId", "is required")
	}
	if date != "" && !validDate(date) {
		return nil, apperr.Validation("date", "must be a date in YYYY-MM-DD format")
	}
	windows, err := retryRead(ctx, func(ctx context.Context) ([]types.Availability, error) {
		return s.repo.ListByDentist(ctx, dentistID, date)
	})
	if err != nil {
		return nil, apperr.Transient(err)
	}
	return windows, nil
}

// Create adds a window for an existing dentist.
func (s *AvailabilityService) Create(ctx context.Context, actor types.User, dentistID string, input types.AvailabilityInput) (types.Availability, error) {
	if err := s.gate.authorizeCatalog(actor); err != nil {
		return types.Availability{}, err
	}
	if err := validateStruct(input); err != nil {
		return types.Availability{}, err
	}
	if input.EndTime <= input.StartTime {
		return types.Availability{}, apperr.Validation("endTime", "must be after startTime")
	}
	if _, err := s.catalog.GetDentist(ctx, dentistID); err != nil {
		return types.Availability{}, err
	}

	window := types.Availability{
		DentistID:   dentistID,
		Date:        input.Date,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		IsAvailable: true,
	}
	if input.IsAvailable != nil {
		window.IsAvailable = *input.IsAvailable
	}
	created, err := s.repo.Create(ctx, window)
	if err != nil {
		return types.Availability{}, storeErr(err, "availability")
	}
	return created, nil
}

func (s *AvailabilityService) Delete(ctx context.Context, actor types.User, id string) error {
	if err := s.gate.authorizeCatalog(actor); err != nil {
		return err
	}
	return storeErr(s.repo.Delete(ctx, id), "availability")
}
