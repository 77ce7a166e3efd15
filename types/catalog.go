package types

import "time"

// Dentist is a practitioner offered for booking.
type Dentist struct {
	// ID is the unique identifier of the dentist.
	ID string `json:"id" db:"id"`

	// Name is the display name, e.g. "Dr. Sarah Johnson".
	Name string `json:"name" db:"name"`

	// Specialization is the practice area, e.g. "Orthodontics".
	Specialization string `json:"specialization" db:"specialization"`

	// Experience is free text such as "8 years".
	Experience string `json:"experience" db:"experience"`

	// Phone is the contact number shown to patients.
	Phone string `json:"phone" db:"phone"`

	// ImageURL references the profile photo, either an external URL or an
	// object storage key served by the API.
	ImageURL string `json:"imageUrl,omitempty" db:"image_url"`

	// IsActive controls whether the dentist is listed for booking.
	IsActive bool `json:"isActive" db:"is_active"`

	// IsAvailable is an informational flag set by administrators.
	IsAvailable bool `json:"isAvailable" db:"is_available"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Service is a billable treatment type.
type Service struct {
	// ID is the unique identifier of the service.
	ID string `json:"id" db:"id"`

	// Name is the treatment name, e.g. "Regular Cleaning".
	Name string `json:"name" db:"name"`

	// Description explains the treatment to patients.
	Description string `json:"description" db:"description"`

	// Price is a currency-agnostic decimal string such as "120" or "180.50".
	Price string `json:"price" db:"price"`

	// Duration is the treatment length in minutes.
	Duration int `json:"duration" db:"duration"`

	// Category groups services, e.g. "Preventive".
	Category string `json:"category" db:"category"`

	// IsActive controls whether the service is listed for booking.
	IsActive bool `json:"isActive" db:"is_active"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// DentistInput is the admin payload for creating or updating a dentist.
type DentistInput struct {
	Name           string `json:"name" validate:"required,max=255"`
	Specialization string `json:"specialization" validate:"required,max=255"`
	Experience     string `json:"experience" validate:"max=64"`
	Phone          string `json:"phone" validate:"max=32"`
	ImageURL       string `json:"imageUrl" validate:"omitempty,max=1024"`
	IsActive       *bool  `json:"isActive"`
	IsAvailable    *bool  `json:"isAvailable"`
}

// ServiceInput is the admin payload for creating or updating a service.
type ServiceInput struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"max=2000"`
	Price       string `json:"price" validate:"required,numeric"`
	Duration    int    `json:"duration" validate:"required,min=1,max=600"`
	Category    string `json:"category" validate:"required,max=100"`
	IsActive    *bool  `json:"isActive"`
}

// Availability is a per-dentist, per-date time window.
type Availability struct {
	ID          string    `json:"id" db:"id"`
	DentistID   string    `json:"dentistId" db:"dentist_id"`
	Date        string    `json:"date" db:"date"`
	StartTime   string    `json:"startTime" db:"start_time"`
	EndTime     string    `json:"endTime" db:"end_time"`
	IsAvailable bool      `json:"isAvailable" db:"is_available"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// AvailabilityInput is the admin payload for adding an availability window.
type AvailabilityInput struct {
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime   string `json:"startTime" validate:"required,datetime=15:04"`
	EndTime     string `json:"endTime" validate:"required,datetime=15:04"`
	IsAvailable *bool  `json:"isAvailable"`
}

// DashboardStats summarizes clinic activity for administrators.
type DashboardStats struct {
	TodayAppointments int `json:"todayAppointments"`
	TotalPatients     int `json:"totalPatients"`
	ActiveDentists    int `json:"activeDentists"`
	TotalAppointments int `json:"totalAppointments"`
}
