package router

import (
	"context"
	"slices"

	"github.com/osmium-toolchains/osmium-cli/internal/domain"
)

// Well known surfaces
const (
	SurfaceHost  = "host"
	SurfacePanel = "panel"
)

// Channel is one independent UI surface exchanging envelopes with the backend
type Channel interface {
	Name() string
	Send(ctx context.Context, env domain.Envelope) error
}

// MemoryChannel is an in-process channel backed by a buffered Go channel
type MemoryChannel struct {
	name     string
	messages chan domain.Envelope
}

var _ Channel = (*MemoryChannel)(nil)

// NewMemoryChannel creates a channel holding up to buffer undelivered envelopes
func NewMemoryChannel(name string, buffer int) *MemoryChannel {
	return &MemoryChannel{name: name, messages: make(chan domain.Envelope, buffer)}
}

func (c *MemoryChannel) Name() string { return c.name }

// Send queues env, blocking while the buffer is full
func (c *MemoryChannel) Send(ctx context.Context, env domain.Envelope) error {
	select {
	case c.messages <- env:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Messages exposes delivered envelopes in order
func (c *MemoryChannel) Messages() <-chan domain.Envelope {
	return c.messages
}

// WaitFor returns the next envelope of one of the given types, discarding others
func (c *MemoryChannel) WaitFor(ctx context.Context, types ...domain.MessageType) (domain.Envelope, error) {
	for {
		select {
		case env := <-c.messages:
			if len(types) == 0 || slices.Contains(types, env.Type) {
				return env, nil
			}
		case <-ctx.Done():
			return domain.Envelope{}, ctx.Err()
		}
	}
}
