package mq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/venusseo127/dentalApp/types"
)

const (
	attrEventType     = "event_type"
	attrAppointmentID = "appointment_id"
)

// EventPublisher sends appointment events to a single channel.
type EventPublisher struct {
	backend Backend
	channel string
}

func NewEventPublisher(backend Backend, channel string) *EventPublisher {
	return &EventPublisher{backend: backend, channel: channel}
}

func (p *EventPublisher) PublishAppointmentEvent(ctx context.Context, event types.AppointmentEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	_, err = p.backend.Publish(ctx, p.channel, data, map[string]string{
		attrEventType:     event.Type,
		attrAppointmentID: event.AppointmentID,
	})
	return err
}

// DecodeEvent parses a message produced by EventPublisher.
func DecodeEvent(msg Message) (types.AppointmentEvent, error) {
	var event types.AppointmentEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		return types.AppointmentEvent{}, fmt.Errorf("decode event %s: %w", msg.ID, err)
	}
	return event, nil
}

// SubscribeEvents consumes appointment events from channel. Undecodable
// messages are passed to handle as errors so they get nacked.
func SubscribeEvents(ctx context.Context, backend Backend, channel string, handle func(context.Context, types.AppointmentEvent) error) error {
	return backend.Subscribe(ctx, channel, func(ctx context.Context, msg Message) error {
		event, err := DecodeEvent(msg)
		if err != nil {
			return err
		}
		return handle(ctx, event)
	})
}
