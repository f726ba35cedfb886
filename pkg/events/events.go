// Package events names the NATS subjects the service publishes and
// subscribes to, and wraps the connection used to publish them.
//
//	<prefix>.appointment.<event>.<id>   payload: appointment id
//	<prefix>.reminders.run              payload: optional YYYY-MM-DD
package events

import (
	"strings"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

const (
	AppointmentCreated   = "created"
	AppointmentApproved  = "approved"
	AppointmentRejected  = "rejected"
	AppointmentCancelled = "cancelled"
	AppointmentCompleted = "completed"
	AppointmentUpdated   = "updated"
)

func AppointmentSubject(prefix, event string, id uuid.UUID) string {
	return join(prefix, "appointment", event, id.String())
}

// AppointmentWildcard matches every appointment id for event.
func AppointmentWildcard(prefix, event string) string {
	return join(prefix, "appointment", event, "*")
}

func RemindersRunSubject(prefix string) string {
	return join(prefix, "reminders", "run")
}

// AppointmentIDFromSubject returns the trailing id of an appointment subject.
func AppointmentIDFromSubject(subject string) (uuid.UUID, bool) {
	i := strings.LastIndexByte(subject, '.')
	if i < 0 {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(subject[i+1:])
	return id, err == nil
}

func join(parts ...string) string {
	if parts[0] == "" {
		parts = parts[1:]
	}
	return strings.Join(parts, ".")
}

// Publisher publishes over a NATS connection. A nil connection turns every
// publish into a no-op, which is how disabled messaging is represented.
type Publisher struct {
	nc *nats.Conn
}

func NewPublisher(nc *nats.Conn) *Publisher {
	return &Publisher{nc: nc}
}

func (p *Publisher) Enabled() bool { return p != nil && p.nc != nil }

func (p *Publisher) Publish(subject string, data []byte) error {
	if !p.Enabled() {
		return nil
	}
	return p.nc.Publish(subject, data)
}
