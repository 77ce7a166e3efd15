package services

import (
	"github.com/venusseo127/dentalApp/internal/apperr"
	"github.com/venusseo127/dentalApp/types"
)

// Gate decides what an acting user may read or change. The user passed in
// must be freshly loaded from the store; role is never taken from request data.
type Gate struct{}

// CanRead reports whether actor may view appointment.
func (Gate) CanRead(actor types.User, appointment types.Appointment) bool {
	return owns(actor, appointment) || actor.IsAdmin()
}

// CanMutate reports whether actor may change appointment.
func (Gate) CanMutate(actor types.User, appointment types.Appointment) bool {
	return owns(actor, appointment) || actor.IsAdmin()
}

// CanManageCatalog reports whether actor may create or update dentists,
// services, and availability.
func (Gate) CanManageCatalog(actor types.User) bool {
	return actor.IsAdmin()
}

func (g Gate) authorizeRead(actor types.User, appointment types.Appointment) error {
	if !g.CanRead(actor, appointment) {
		return apperr.PermissionDenied("you can only view your own appointments")
	}
	return nil
}

func (g Gate) authorizeMutate(actor types.User, appointment types.Appointment) error {
	if !g.CanMutate(actor, appointment) {
		return apperr.PermissionDenied("you can only change your own appointments")
	}
	return nil
}

func (g Gate) authorizeCatalog(actor types.User) error {
	if !g.CanManageCatalog(actor) {
		return apperr.PermissionDenied("admin access required")
	}
	return nil
}

func owns(actor types.User, appointment types.Appointment) bool {
	return actor.ID != "" && appointment.UserID == actor.ID
}
