package services

import (
	"context"
	"errors"
	"strings"

	"github.com/venusseo127/dentalApp/internal/apperr"
	"github.com/venusseo127/dentalApp/internal/store"
	"github.com/venusseo127/dentalApp/types"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (types.User, error)
	GetByAuthUID(ctx context.Context, uid string) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	Update(ctx context.Context, user types.User) (types.User, error)
	SetRole(ctx context.Context, id string, role types.Role) error
}

// RegisterInput is the email/password sign-up payload.
type RegisterInput struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6,max=72"`
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Phone     string `json:"phone" validate:"omitempty,max=32"`
	Age       *int   `json:"age" validate:"omitempty,min=1,max=120"`
	Gender    string `json:"gender" validate:"omitempty,max=32"`
	Address   string `json:"address" validate:"omitempty,max=255"`
}

// UserService encapsulates user use-cases, including the identity resolver.
type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) GetByID(ctx context.Context, id string) (types.User, error) {
	user, err := retryRead(ctx, func(ctx context.Context) (types.User, error) {
		return s.repo.GetByID(ctx, id)
	})
	return user, storeErr(err, "user")
}

// ResolveOrCreate maps a verified principal to its User, creating a patient
// on first sign-in. Repeated calls for the same principal return the same
// record and never change its role.
func (s *UserService) ResolveOrCreate(ctx context.Context, principal types.Principal) (types.User, error) {
	uid := strings.TrimSpace(principal.UID)
	email := strings.TrimSpace(principal.Email)
	if email == "" || !principal.EmailVerified {
		return types.User{}, apperr.Validation("email", "a verified email is required to sign in")
	}
	if uid == "" {
		return types.User{}, apperr.Validation("uid", "principal identifier is required")
	}

	user, err := s.repo.GetByAuthUID(ctx, uid)
	if err == nil {
		return s.refreshProfile(ctx, user, principal, false)
	}
	if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, apperr.Transient(err)
	}

	user, err = s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if user.AuthUID != "" && user.AuthUID != uid {
			return types.User{}, apperr.Conflict("email is linked to a different sign-in account")
		}
		user.AuthUID = uid
		return s.refreshProfile(ctx, user, principal, true)
	case !errors.Is(err, store.ErrNotFound):
		return types.User{}, apperr.Transient(err)
	}

	first, last := splitDisplayName(principal.DisplayName)
	created, err := s.repo.Create(ctx, types.User{
		AuthUID:         uid,
		Email:           email,
		FirstName:       first,
		LastName:        last,
		ProfileImageURL: principal.PhotoURL,
		Role:            types.RolePatient,
	})
	if errors.Is(err, store.ErrDuplicate) {
		// Lost a race with a concurrent first sign-in.
		existing, getErr := s.repo.GetByAuthUID(ctx, uid)
		if getErr == nil {
			return existing, nil
		}
		return types.User{}, apperr.Conflict("email is already registered")
	}
	if err != nil {
		return types.User{}, apperr.Transient(err)
	}
	return created, nil
}

func (s *UserService) refreshProfile(ctx context.Context, user types.User, principal types.Principal, linked bool) (types.User, error) {
	changed := linked
	if principal.PhotoURL != "" && principal.PhotoURL != user.ProfileImageURL {
		user.ProfileImageURL = principal.PhotoURL
		changed = true
	}
	if user.FirstName == "" && user.LastName == "" && principal.DisplayName != "" {
		user.FirstName, user.LastName = splitDisplayName(principal.DisplayName)
		changed = true
	}
	if !changed {
		return user, nil
	}
	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return types.User{}, storeErr(err, "user")
	}
	return updated, nil
}

// Register creates a password-based patient account.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (types.User, error) {
	input.Email = strings.TrimSpace(input.Email)
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	if err := validateStruct(input); err != nil {
		return types.User{}, err
	}

	if _, err := s.repo.GetByEmail(ctx, input.Email); err == nil {
		return types.User{}, apperr.Validation("email", "is already registered")
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, apperr.Transient(err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return types.User{}, err
	}

	user, err := s.repo.Create(ctx, types.User{
		Email:        input.Email,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Phone:        strings.TrimSpace(input.Phone),
		Age:          input.Age,
		Gender:       strings.TrimSpace(input.Gender),
		Address:      strings.TrimSpace(input.Address),
		Role:         types.RolePatient,
		PasswordHash: string(hashed),
	})
	if errors.Is(err, store.ErrDuplicate) {
		return types.User{}, apperr.Validation("email", "is already registered")
	}
	if err != nil {
		return types.User{}, apperr.Transient(err)
	}
	return user, nil
}

// Authenticate verifies email/password credentials.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (types.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return types.User{}, apperr.Validation("email", "email and password are required")
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, apperr.Unauthenticated("invalid credentials")
		}
		return types.User{}, apperr.Transient(err)
	}
	if user.PasswordHash == "" {
		return types.User{}, apperr.Unauthenticated("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return types.User{}, apperr.Unauthenticated("invalid credentials")
	}
	return user, nil
}

// UpdateProfile applies self-service edits to the acting user.
func (s *UserService) UpdateProfile(ctx context.Context, actor types.User, update types.ProfileUpdate) (types.User, error) {
	if err := validateStruct(update); err != nil {
		return types.User{}, err
	}

	user, err := s.GetByID(ctx, actor.ID)
	if err != nil {
		return types.User{}, err
	}

	if update.FirstName != nil {
		user.FirstName = strings.TrimSpace(*update.FirstName)
	}
	if update.LastName != nil {
		user.LastName = strings.TrimSpace(*update.LastName)
	}
	if update.Phone != nil {
		user.Phone = strings.TrimSpace(*update.Phone)
	}
	if update.ProfileImageURL != nil {
		user.ProfileImageURL = strings.TrimSpace(*update.ProfileImageURL)
	}
	if update.Age != nil {
		age := *update.Age
		user.Age = &age
	}
	if update.Gender != nil {
		user.Gender = strings.TrimSpace(*update.Gender)
	}
	if update.Address != nil {
		user.Address = strings.TrimSpace(*update.Address)
	}

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return types.User{}, storeErr(err, "user")
	}
	return updated, nil
}

// SetRole is the administrative role change used by the promote command.
func (s *UserService) SetRole(ctx context.Context, email string, role types.Role) (types.User, error) {
	if !role.Valid() {
		return types.User{}, apperr.Validation("role", "must be patient or admin")
	}
	user, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return types.User{}, storeErr(err, "user")
	}
	if err := s.repo.SetRole(ctx, user.ID, role); err != nil {
		return types.User{}, storeErr(err, "user")
	}
	user.Role = role
	return user, nil
}

func splitDisplayName(name string) (string, string) {
	fields := strings.Fields(name)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return fields[0], ""
	default:
		return fields[0], strings.Join(fields[1:], " ")
	}
}
