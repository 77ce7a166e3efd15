package services

import (
	"context"
	"errors"

	"github.com/venusseo127/dentalApp/types"
)

// EventPublisher receives appointment events after a change is persisted.
type EventPublisher interface {
	PublishAppointmentEvent(ctx context.Context, event types.AppointmentEvent) error
}

// Publishers fans an event out to every publisher and joins their errors.
type Publishers []EventPublisher

func (p Publishers) PublishAppointmentEvent(ctx context.Context, event types.AppointmentEvent) error {
	var errs []error
	for _, publisher := range p {
		if publisher == nil {
			continue
		}
		if err := publisher.PublishAppointmentEvent(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
