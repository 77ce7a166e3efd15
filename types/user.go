package types

import "time"

// Role is the authorization level of a user.
type Role string

// Supported roles.
const (
	// RolePatient is the default role assigned to every new user.
	RolePatient Role = "patient"

	// RoleAdmin grants access to every appointment and to catalog management.
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RolePatient || r == RoleAdmin
}

// User represents a patient or clinic administrator.
// It contains identity, contact details, demographics, and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID string `json:"id" db:"id"`

	// AuthUID is the stable identifier assigned by the external identity
	// provider. It is stored separately from ID so provider identifiers never
	// collide with storage-assigned keys. Empty for password-only accounts.
	AuthUID string `json:"-" db:"auth_uid"`

	// Email is the user's unique email address.
	Email string `json:"email" db:"email"`

	// FirstName is the user's given name.
	FirstName string `json:"firstName" db:"first_name"`

	// LastName is the user's family name.
	LastName string `json:"lastName" db:"last_name"`

	// Phone is the user's contact phone number.
	Phone string `json:"phone" db:"phone"`

	// ProfileImageURL is an optional avatar reference.
	ProfileImageURL string `json:"profileImageUrl,omitempty" db:"profile_image_url"`

	// Role indicates the user's authorization level. It can only be changed
	// through the administrative promote command.
	Role Role `json:"role" db:"role"`

	// Age is optional and, when set, lies in 1..120.
	Age *int `json:"age,omitempty" db:"age"`

	// Gender is an optional free-text demographic field.
	Gender string `json:"gender,omitempty" db:"gender"`

	// Address is an optional postal address.
	Address string `json:"address,omitempty" db:"address"`

	// PasswordHash stores the bcrypt hash for email/password accounts.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user.
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// FullName joins first and last name.
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// Principal is an identity verified by the external identity provider.
type Principal struct {
	// UID is the provider's stable identifier for this identity.
	UID string `json:"uid"`

	// Email is the address asserted by the provider.
	Email string `json:"email"`

	// EmailVerified reports whether the provider verified Email.
	EmailVerified bool `json:"emailVerified"`

	// DisplayName is the optional full name from the provider profile.
	DisplayName string `json:"displayName,omitempty"`

	// PhotoURL is the optional avatar from the provider profile.
	PhotoURL string `json:"photoUrl,omitempty"`
}

// ProfileUpdate carries the self-service editable fields of a user.
// Nil pointers leave the stored value unchanged.
type ProfileUpdate struct {
	FirstName       *string `json:"firstName" validate:"omitempty,min=1,max=100"`
	LastName        *string `json:"lastName" validate:"omitempty,min=1,max=100"`
	Phone           *string `json:"phone" validate:"omitempty,max=32"`
	ProfileImageURL *string `json:"profileImageUrl" validate:"omitempty,url"`
	Age             *int    `json:"age" validate:"omitempty,min=1,max=120"`
	Gender          *string `json:"gender" validate:"omitempty,max=32"`
	Address         *string `json:"address" validate:"omitempty,max=255"`
}
