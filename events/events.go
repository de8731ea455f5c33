// Package events publishes application lifecycle events to NATS with
// OpenTelemetry trace propagation.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
)

// SubjectApplicationSubmitted is published when a customer leaves their
// contact details.
const SubjectApplicationSubmitted = "applications.submitted"

// ApplicationSubmitted is the payload of SubjectApplicationSubmitted.
type ApplicationSubmitted struct {
	ApplicationNumber string    `json:"application_number"`
	Location          string    `json:"location,omitempty"`
	SystemType        string    `json:"system_type,omitempty"`
	FullName          string    `json:"full_name"`
	Email             string    `json:"email"`
	Phone             string    `json:"phone"`
	ContactTime       string    `json:"contact_time,omitempty"`
	SubmittedAt       time.Time `json:"submitted_at"`
}

type Publisher interface {
	PublishApplicationSubmitted(ctx context.Context, ev ApplicationSubmitted) error
}

// Noop discards events. It is used when no NATS server is configured.
type Noop struct{}

func (Noop) PublishApplicationSubmitted(context.Context, ApplicationSubmitted) error { return nil }

// natsHeaderCarrier adapts nats.Msg headers for OTel TextMapCarrier.
type natsHeaderCarrier nats.Msg

func (c *natsHeaderCarrier) Get(key string) string {
	if c.Header == nil {
		return ""
	}
	return c.Header.Get(key)
}

func (c *natsHeaderCarrier) Set(key, val string) {
	if c.Header == nil {
		c.Header = make(nats.Header)
	}
	c.Header.Set(key, val)
}

func (c *natsHeaderCarrier) Keys() []string {
	if c.Header == nil {
		return nil
	}
	keys := make([]string, 0, len(c.Header))
	for k := range c.Header {
		keys = append(keys, k)
	}
	return keys
}

// Publish serializes v as JSON and publishes it on subject, injecting the
// trace context from ctx into the message headers.
func Publish[T any](ctx context.Context, nc *nats.Conn, subject string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	msg := &nats.Msg{
		Subject: subject,
		Data:    data,
	}
	otel.GetTextMapPropagator().Inject(ctx, (*natsHeaderCarrier)(msg))
	return nc.PublishMsg(msg)
}

// Subscribe decodes JSON messages of type T and hands them to handler with
// the trace context carried in the headers. Malformed messages are dropped.
func Subscribe[T any](nc *nats.Conn, subject string, handler func(context.Context, T)) (*nats.Subscription, error) {
	return nc.Subscribe(subject, func(msg *nats.Msg) {
		var v T
		if err := json.Unmarshal(msg.Data, &v); err != nil {
			return
		}
		ctx := otel.GetTextMapPropagator().Extract(context.Background(), (*natsHeaderCarrier)(msg))
		handler(ctx, v)
	})
}

// NATSPublisher publishes events on a NATS connection.
type NATSPublisher struct {
	nc *nats.Conn
}

// Connect dials url and returns a publisher that owns the connection.
func Connect(url string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url, nats.Name("solar-sizer"))
	if err != nil {
		return nil, err
	}
	return &NATSPublisher{nc: nc}, nil
}

func NewNATSPublisher(nc *nats.Conn) *NATSPublisher {
	return &NATSPublisher{nc: nc}
}

func (p *NATSPublisher) PublishApplicationSubmitted(ctx context.Context, ev ApplicationSubmitted) error {
	return Publish(ctx, p.nc, SubjectApplicationSubmitted, ev)
}

// Close flushes pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	return p.nc.Drain()
}
