package handlers

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/venusseo127/dentalApp/internal/apperr"
	"github.com/venusseo127/dentalApp/internal/services"
	"github.com/venusseo127/dentalApp/types"
)

const (
	maxImageBytes  = 5 << 20
	formFieldImage = "image"
)

// CatalogHandler serves dentists, services, and dentist availability.
type CatalogHandler struct {
	catalog      *services.CatalogService
	availability *services.AvailabilityService
}

func NewCatalogHandler(catalog *services.CatalogService, availability *services.AvailabilityService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, availability: availability}
}

// DentistRouter registers /dentists routes. actor must authenticate and load
// the acting user.
func DentistRouter(r chi.Router, handler *CatalogHandler, actor func(http.Handler) http.Handler) {
	r.Get("/", handler.ListDentists)
	r.With(actor, requireAdmin).Post("/", handler.CreateDentist)
	r.Route("/{dentistID}", func(r chi.Router) {
		r.Get("/", handler.GetDentist)
		r.With(actor, requireAdmin).Put("/", handler.UpdateDentist)
		r.Get("/image", handler.GetDentistImage)
		r.With(actor, requireAdmin).Put("/image", handler.UploadDentistImage)
		r.Get("/availability", handler.ListAvailability)
		r.With(actor, requireAdmin).Post("/availability", handler.CreateAvailability)
	})
}

// ServiceRouter registers /services routes.
func ServiceRouter(r chi.Router, handler *CatalogHandler, actor func(http.Handler) http.Handler) {
	r.Get("/", handler.ListServices)
	r.With(actor, requireAdmin).Post("/", handler.CreateService)
	r.Route("/{serviceID}", func(r chi.Router) {
		r.Get("/", handler.GetService)
		r.With(actor, requireAdmin).Put("/", handler.UpdateService)
	})
}

// AvailabilityRouter registers /availability routes.
func AvailabilityRouter(r chi.Router, handler *CatalogHandler, actor func(http.Handler) http.Handler) {
	r.With(actor, requireAdmin).Delete("/{availabilityID}", handler.DeleteAvailability)
}

func (h *CatalogHandler) ListDentists(w http.ResponseWriter, r *http.Request) {
	dentists, err := h.catalog.ListDentists(r.Context())
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dentists)
}

func (h *CatalogHandler) GetDentist(w http.ResponseWriter, r *http.Request) {
	dentist, err := h.catalog.GetDentist(r.Context(), chi.URLParam(r, "dentistID"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dentist)
}

func (h *CatalogHandler) CreateDentist(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())
	var input types.DentistInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeAppError(w, r, err)
		return
	}
	dentist, err := h.catalog.CreateDentist(r.Context(), actor, input)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, dentist)
}

func (h *CatalogHandler) UpdateDentist(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())
	var input types.DentistInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeAppError(w, r, err)
		return
	}
	dentist, err := h.catalog.UpdateDentist(r.Context(), actor, chi.URLParam(r, "dentistID"), input)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dentist)
}

// UploadDentistImage accepts a multipart form with a single image file.
func (h *CatalogHandler) UploadDentistImage(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes+(1<<20))
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		writeAppError(w, r, apperr.Validation(formFieldImage, "must be a multipart upload of at most 5 MiB"))
		return
	}
	file, header, err := r.FormFile(formFieldImage)
	if err != nil {
		writeAppError(w, r, apperr.Validation(formFieldImage, "is required"))
		return
	}
	defer file.Close()
	if header.Size > maxImageBytes {
		writeAppError(w, r, apperr.Validation(formFieldImage, "must be at most 5 MiB"))
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		sniff := make([]byte, 512)
		n, _ := io.ReadFull(file, sniff)
		contentType = http.DetectContentType(sniff[:n])
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			writeAppError(w, r, err)
			return
		}
	}

	dentist, err := h.catalog.UploadDentistImage(r.Context(), actor, chi.URLParam(r, "dentistID"), contentType, header.Size, file)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dentist)
}

func (h *CatalogHandler) GetDentistImage(w http.ResponseWriter, r *http.Request) {
	reader, contentType, err := h.catalog.DentistImage(r.Context(), chi.URLParam(r, "dentistID"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	defer reader.Close()
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, reader)
}

func (h *CatalogHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	list, err := h.catalog.ListServices(r.Context())
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *CatalogHandler) GetService(w http.ResponseWriter, r *http.Request) {
	service, err := h.catalog.GetService(r.Context(), chi.URLParam(r, "serviceID"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, service)
}

func (h *CatalogHandler) CreateService(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())
	var input types.ServiceInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeAppError(w, r, err)
		return
	}
	service, err := h.catalog.CreateService(r.Context(), actor, input)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, service)
}

func (h *CatalogHandler) UpdateService(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())
	var input types.ServiceInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeAppError(w, r, err)
		return
	}
	service, err := h.catalog.UpdateService(r.Context(), actor, chi.URLParam(r, "serviceID"), input)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, service)
}

func (h *CatalogHandler) ListAvailability(w http.ResponseWriter, r *http.Request) {
	windows, err := h.availability.List(r.Context(), chi.URLParam(r, "dentistID"), r.URL.Query().Get("date"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, windows)
}

func (h *CatalogHandler) CreateAvailability(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())
	var input types.AvailabilityInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeAppError(w, r, err)
		return
	}
	window, err := h.availability.Create(r.Context(), actor, chi.URLParam(r, "dentistID"), input)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, window)
}

func (h *CatalogHandler) DeleteAvailability(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())
	if err := h.availability.Delete(r.Context(), actor, chi.URLParam(r, "availabilityID")); err != nil {
		writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
