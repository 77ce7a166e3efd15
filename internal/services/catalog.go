package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/venusseo127/dentalApp/internal/apperr"
	"github.com/venusseo127/dentalApp/internal/storage"
	"github.com/venusseo127/dentalApp/types"
)

const dentistImagePrefix = "dentists/"

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// DentistRepository defines persistence operations for dentists.
type DentistRepository interface {
	ListActive(ctx context.Context) ([]types.Dentist, error)
	Get(ctx context.Context, id string) (types.Dentist, error)
	Create(ctx context.Context, dentist types.Dentist) (types.Dentist, error)
	Update(ctx context.Context, dentist types.Dentist) (types.Dentist, error)
}

// ServiceRepository defines persistence operations for services.
type ServiceRepository interface {
	ListActive(ctx context.Context) ([]types.Service, error)
	Get(ctx context.Context, id string) (types.Service, error)
	Create(ctx context.Context, service types.Service) (types.Service, error)
	Update(ctx context.Context, service types.Service) (types.Service, error)
}

// CatalogCache stores active catalog listings. A miss returns ok=false.
type CatalogCache interface {
	Dentists(ctx context.Context) ([]types.Dentist, bool, error)
	SetDentists(ctx context.Context, dentists []types.Dentist) error
	Services(ctx context.Context) ([]types.Service, bool, error)
	SetServices(ctx context.Context, services []types.Service) error
	Invalidate(ctx context.Context) error
}

// ImageStore holds dentist photos.
type ImageStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// CatalogService lists and manages dentists and services.
type CatalogService struct {
	dentists DentistRepository
	services ServiceRepository
	cache    CatalogCache
	images   ImageStore
	gate     Gate
	logger   *slog.Logger
}

// NewCatalogService constructs a CatalogService. cache and images may be nil.
func NewCatalogService(dentists DentistRepository, services ServiceRepository, cache CatalogCache, images ImageStore) *CatalogService {
	return &CatalogService{
		dentists: dentists,
		services: services,
		cache:    cache,
		images:   images,
		logger:   slog.Default().With(slog.String("component", "catalog")),
	}
}

// ListDentists returns active dentists sorted by name.
func (s *CatalogService) ListDentists(ctx context.Context) ([]types.Dentist, error) {
	if s.cache != nil {
		if cached, ok, err := s.cache.Dentists(ctx); err != nil {
			s.logger.WarnContext(ctx, "catalog cache read failed", slog.Any("error", err))
		} else if ok {
			return cached, nil
		}
	}

	dentists, err := retryRead(ctx, s.dentists.ListActive)
	if err != nil {
		return nil, apperr.Transient(err)
	}

	if s.cache != nil {
		if err := s.cache.SetDentists(ctx, dentists); err != nil {
			s.logger.WarnContext(ctx, "catalog cache write failed", slog.Any("error", err))
		}
	}
	return dentists, nil
}

// ListServices returns active services sorted by name.
func (s *CatalogService) ListServices(ctx context.Context) ([]types.Service, error) {
	if s.cache != nil {
		if cached, ok, err := s.cache.Services(ctx); err != nil {
			s.logger.WarnContext(ctx, "catalog cache read failed", slog.Any("error", err))
		} else if ok {
			return cached, nil
		}
	}

	services, err := retryRead(ctx, s.services.ListActive)
	if err != nil {
		return nil, apperr.Transient(err)
	}

	if s.cache != nil {
		if err := s.cache.SetServices(ctx, services); err != nil {
			s.logger.WarnContext(ctx, "catalog cache write failed", slog.Any("error", err))
		}
	}
	return services, nil
}

func (s *CatalogService) GetDentist(ctx context.Context, id string) (types.Dentist, error) {
	dentist, err := retryRead(ctx, func(ctx context.Context) (types.Dentist, error) {
		return s.dentists.Get(ctx, id)
	})
	return dentist, storeErr(err, "dentist")
}

func (s *CatalogService) GetService(ctx context.Context, id string) (types.Service, error) {
	service, err := retryRead(ctx, func(ctx context.Context) (types.Service, error) {
		return s.services.Get(ctx, id)
	})
	return service, storeErr(err, "service")
}

func (s *CatalogService) CreateDentist(ctx context.Context, actor types.User, input types.DentistInput) (types.Dentist, error) {
	if err := s.gate.authorizeCatalog(actor); err != nil {
		return types.Dentist{}, err
	}
	if err := validateStruct(input); err != nil {
		return types.Dentist{}, err
	}

	dentist := applyDentistInput(types.Dentist{IsActive: true, IsAvailable: true}, input)
	created, err := s.dentists.Create(ctx, dentist)
	if err != nil {
		return types.Dentist{}, apperr.Transient(err)
	}
	s.invalidate(ctx)
	return created, nil
}

func (s *CatalogService) UpdateDentist(ctx context.Context, actor types.User, id string, input types.DentistInput) (types.Dentist, error) {
	if err := s.gate.authorizeCatalog(actor); err != nil {
		return types.Dentist{}, err
	}
	if err := validateStruct(input); err != nil {
		return types.Dentist{}, err
	}

	existing, err := s.GetDentist(ctx, id)
	if err != nil {
		return types.Dentist{}, err
	}
	if input.ImageURL == "" {
		input.ImageURL = existing.ImageURL
	}
	updated, err := s.dentists.Update(ctx, applyDentistInput(existing, input))
	if err != nil {
		return types.Dentist{}, storeErr(err, "dentist")
	}
	s.invalidate(ctx)
	return updated, nil
}

func (s *CatalogService) CreateService(ctx context.Context, actor types.User, input types.ServiceInput) (types.Service, error) {
	if err := s.gate.authorizeCatalog(actor); err != nil {
		return types.Service{}, err
	}
	if err := validateServiceInput(input); err != nil {
		return types.Service{}, err
	}

	created, err := s.services.Create(ctx, applyServiceInput(types.Service{IsActive: true}, input))
	if err != nil {
		return types.Service{}, apperr.Transient(err)
	}
	s.invalidate(ctx)
	return created, nil
}

func (s *CatalogService) UpdateService(ctx context.Context, actor types.User, id string, input types.ServiceInput) (types.Service, error) {
	if err := s.gate.authorizeCatalog(actor); err != nil {
		return types.Service{}, err
	}
	if err := validateServiceInput(input); err != nil {
		return types.Service{}, err
	}

	existing, err := s.GetService(ctx, id)
	if err != nil {
		return types.Service{}, err
	}
	updated, err := s.services.Update(ctx, applyServiceInput(existing, input))
	if err != nil {
		return types.Service{}, storeErr(err, "service")
	}
	s.invalidate(ctx)
	return updated, nil
}

// UploadDentistImage stores a new profile photo and points the dentist at it.
func (s *CatalogService) UploadDentistImage(ctx context.Context, actor types.User, id, contentType string, size int64, r io.Reader) (types.Dentist, error) {
	if err := s.gate.authorizeCatalog(actor); err != nil {
		return types.Dentist{}, err
	}
	if s.images == nil {
		return types.Dentist{}, apperr.Unavailable("image storage is not configured")
	}
	ext, ok := imageExtensions[contentType]
	if !ok {
		return types.Dentist{}, apperr.Validation("image", "unsupported image type")
	}

	dentist, err := s.GetDentist(ctx, id)
	if err != nil {
		return types.Dentist{}, err
	}

	key := fmt.Sprintf("%s%s/%s%s", dentistImagePrefix, dentist.ID, uuid.NewString(), ext)
	if err := s.images.Put(ctx, key, r, size, contentType); err != nil {
		return types.Dentist{}, apperr.Transient(err)
	}

	previous := dentist.ImageURL
	dentist.ImageURL = key
	updated, err := s.dentists.Update(ctx, dentist)
	if err != nil {
		_ = s.images.Delete(ctx, key)
		return types.Dentist{}, storeErr(err, "dentist")
	}
	if strings.HasPrefix(previous, dentistImagePrefix) {
		if err := s.images.Delete(ctx, previous); err != nil {
			s.logger.WarnContext(ctx, "failed to delete replaced image", slog.String("key", previous), slog.Any("error", err))
		}
	}
	s.invalidate(ctx)
	return updated, nil
}

// DentistImage opens the stored photo of a dentist.
func (s *CatalogService) DentistImage(ctx context.Context, id string) (io.ReadCloser, string, error) {
	if s.images == nil {
		return nil, "", apperr.Unavailable("image storage is not configured")
	}
	dentist, err := s.GetDentist(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if !strings.HasPrefix(dentist.ImageURL, dentistImagePrefix) {
		return nil, "", apperr.NotFound("dentist image")
	}
	reader, err := s.images.Get(ctx, dentist.ImageURL)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, "", apperr.NotFound("dentist image")
	}
	if err != nil {
		return nil, "", apperr.Transient(err)
	}
	return reader, contentTypeFor(dentist.ImageURL), nil
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "catalog cache invalidation failed", slog.Any("error", err))
	}
}

func applyDentistInput(dentist types.Dentist, input types.DentistInput) types.Dentist {
	dentist.Name = strings.TrimSpace(input.Name)
	dentist.Specialization = strings.TrimSpace(input.Specialization)
	dentist.Experience = strings.TrimSpace(input.Experience)
	dentist.Phone = strings.TrimSpace(input.Phone)
	dentist.ImageURL = strings.TrimSpace(input.ImageURL)
	if input.IsActive != nil {
		dentist.IsActive = *input.IsActive
	}
	if input.IsAvailable != nil {
		dentist.IsAvailable = *input.IsAvailable
	}
	return dentist
}

func applyServiceInput(service types.Service, input types.ServiceInput) types.Service {
	service.Name = strings.TrimSpace(input.Name)
	service.Description = strings.TrimSpace(input.Description)
	service.Price = strings.TrimSpace(input.Price)
	service.Duration = input.Duration
	service.Category = strings.TrimSpace(input.Category)
	if input.IsActive != nil {
		service.IsActive = *input.IsActive
	}
	return service
}

func validateServiceInput(input types.ServiceInput) error {
	if err := validateStruct(input); err != nil {
		return err
	}
	if strings.HasPrefix(strings.TrimSpace(input.Price), "-") {
		return apperr.Validation("price", "must not be negative")
	}
	return nil
}

func contentTypeFor(key string) string {
	for contentType, ext := range imageExtensions {
		if path.Ext(key) == ext {
			return contentType
		}
	}
	return "application/octet-stream"
}
