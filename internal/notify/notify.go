// Package notify publishes booking events after an appointment change has
// been persisted.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"healthcare-booking-api/internal/model"
)

const (
	AppointmentCreated = "appointment.created"
	AppointmentDeleted = "appointment.deleted"
)

type Event struct {
	Type          string             `json:"type"`
	AppointmentID string             `json:"appointmentId"`
	Appointment   *model.Appointment `json:"appointment,omitempty"`
	At            time.Time          `json:"at"`
}

func (e Event) Encode() ([]byte, error) { return json.Marshal(e) }

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                          { return nil }
