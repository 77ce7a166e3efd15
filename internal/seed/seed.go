// Package seed inserts the sample clinic catalog into an empty store.
package seed

import (
	"context"
	"fmt"

	"github.com/venusseo127/dentalApp/types"
)

type DentistStore interface {
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, dentist types.Dentist) (types.Dentist, error)
}

type ServiceStore interface {
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, service types.Service) (types.Service, error)
}

// Services is the sample treatment list.
var Services = []types.Service{
	{Name: "Regular Cleaning", Description: "Professional dental cleaning and examination", Duration: 60, Price: "120", Category: "Preventive", IsActive: true},
	{Name: "Teeth Whitening", Description: "Professional teeth whitening treatment", Duration: 90, Price: "300", Category: "Cosmetic", IsActive: true},
	{Name: "Dental Filling", Description: "Cavity filling treatment", Duration: 45, Price: "180", Category: "Restorative", IsActive: true},
	{Name: "Root Canal", Description: "Root canal therapy", Duration: 120, Price: "800", Category: "Endodontic", IsActive: true},
}

// Dentists is the sample practitioner list.
var Dentists = []types.Dentist{
	{Name: "Dr. Sarah Johnson", Specialization: "General Dentistry", Experience: "8 years", IsActive: true, IsAvailable: true},
	{Name: "Dr. Michael Chen", Specialization: "Orthodontics", Experience: "12 years", IsActive: true, IsAvailable: true},
	{Name: "Dr. Emily Davis", Specialization: "Cosmetic Dentistry", Experience: "10 years", IsActive: true, IsAvailable: true},
}

// Result counts the rows inserted by Catalog.
type Result struct {
	Dentists int
	Services int
}

// Catalog inserts the sample dentists and services. Each collection is only
// seeded when it is empty, so running it twice is a no-op.
func Catalog(ctx context.Context, dentists DentistStore, services ServiceStore) (Result, error) {
	var result Result

	total, err := services.Count(ctx)
	if err != nil {
		return result, fmt.Errorf("count services: %w", err)
	}
	if total == 0 {
		for _, service := range Services {
			if _, err := services.Create(ctx, service); err != nil {
				return result, fmt.Errorf("create service %s: %w", service.Name, err)
			}
			result.Services++
		}
	}

	total, err = dentists.Count(ctx)
	if err != nil {
		return result, fmt.Errorf("count dentists: %w", err)
	}
	if total == 0 {
		for _, dentist := range Dentists {
			if _, err := dentists.Create(ctx, dentist); err != nil {
				return result, fmt.Errorf("create dentist %s: %w", dentist.Name, err)
			}
			result.Dentists++
		}
	}
	return result, nil
}
