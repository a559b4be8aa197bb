package notify

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Channel names used by the registry and the summary.
const (
	ChannelSMS   = "sms"
	ChannelInApp = "inapp"
)

// ErrMisconfigured marks a channel whose credentials or wiring are missing.
// It is raised once per dispatch, before any per-recipient work.
var ErrMisconfigured = errors.New("notify: channel misconfigured")

// DeliveryResult is the outcome for one recipient on one channel.
type DeliveryResult struct {
	RecipientID       string    `json:"recipient_id"`
	OK                bool      `json:"ok"`
	ProviderMessageID string    `json:"provider_message_id,omitempty"`
	Err               string    `json:"error,omitempty"`
	Timestamp         time.Time `json:"timestamp"`
}

// ChannelResult aggregates one channel's batch. Dropped counts recipients
// cut by a batch cap before any attempt was made; they are not failures.
type ChannelResult struct {
	Channel   string           `json:"channel"`
	Attempted []DeliveryResult `json:"attempted,omitempty"`
	Dropped   int              `json:"dropped,omitempty"`
}

// Sent returns the number of successful deliveries.
func (r ChannelResult) Sent() int {
	n := 0
	for _, d := range r.Attempted {
		if d.OK {
			n++
		}
	}
	return n
}

// Failed returns the number of failed attempts.
func (r ChannelResult) Failed() int {
	return len(r.Attempted) - r.Sent()
}

// Channel delivers one rendered message to a batch of recipients.
// Implementations must convert per-recipient failures into DeliveryResult
// entries; a returned error means the whole batch could not start
// (configuration, storage outage) and the orchestrator accounts every
// recipient as failed.
type Channel interface {
	Name() string
	Deliver(ctx context.Context, recipients []Recipient, msg Message) (ChannelResult, error)
}

// Registry holds the configured channels keyed by name. Orchestration code
// never branches on providers; adding a channel only touches wiring.
type Registry struct {
	channels map[string]Channel
}

func NewRegistry(channels ...Channel) (*Registry, error) {
	r := &Registry{channels: make(map[string]Channel, len(channels))}
	for _, ch := range channels {
		if ch == nil {
			continue
		}
		name := ch.Name()
		if _, dup := r.channels[name]; dup {
			return nil, fmt.Errorf("notify: duplicate channel %q", name)
		}
		r.channels[name] = ch
	}
	return r, nil
}

// Get returns the named channel, if configured.
func (r *Registry) Get(name string) (Channel, bool) {
	ch, ok := r.channels[name]
	return ch, ok
}
