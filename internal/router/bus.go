package router

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/samber/lo"

	"github.com/osmium-toolchains/osmium-cli/internal/domain"
	"github.com/osmium-toolchains/osmium-cli/internal/observability/metrics"
)

// Activator asks the host to bring a surface up so it can attach
type Activator func(ctx context.Context, name string) error

// maxPendingForwards bounds the forwards held for one surface; the oldest are dropped
const maxPendingForwards = 64

// Bus addresses attached channels by name. Forwarded messages for a surface
// that is not attached yet are held and delivered, in order, once it attaches.
type Bus struct {
	log       *slog.Logger
	mu        sync.Mutex
	channels  map[string]Channel
	pending   map[string][]domain.Envelope
	attaching map[string]bool
	activator Activator
}

// NewBus creates an empty bus
func NewBus(log *slog.Logger) *Bus {
	return &Bus{
		log:      log.With("component", "Bus"),
		channels: make(map[string]Channel),
		pending:   make(map[string][]domain.Envelope),
		attaching: make(map[string]bool),
	}
}

// SetActivator installs the hook used by Forward for surfaces that are not attached
func (b *Bus) SetActivator(fn Activator) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.activator = fn
}

// Attach flushes the forwards queued for ch, then registers it under its name,
// replacing any previous channel of that name. Forwards arriving during the
// flush are queued behind the ones already held.
func (b *Bus) Attach(ch Channel) {
	name := ch.Name()
	flushed := 0

	b.mu.Lock()
	b.attaching[name] = true
	for len(b.pending[name]) > 0 {
		queued := b.pending[name]
		delete(b.pending, name)
		b.mu.Unlock()

		for _, env := range queued {
			if err := ch.Send(context.Background(), env); err != nil {
				b.log.Warn("failed to deliver queued message", "channel", name, "type", env.Type, "error", err)
			}
		}
		flushed += len(queued)

		b.mu.Lock()
	}
	delete(b.attaching, name)
	b.channels[name] = ch
	count := len(b.channels)
	b.mu.Unlock()

	metrics.ChannelsActive(count)
	b.log.Debug("channel attached", "channel", name, "queued", flushed)
}

// Detach removes ch if it is still the channel attached under its name
func (b *Bus) Detach(ch Channel) {
	name := ch.Name()

	b.mu.Lock()
	current, ok := b.channels[name]
	if ok && current == ch {
		delete(b.channels, name)
	}
	count := len(b.channels)
	b.mu.Unlock()

	metrics.ChannelsActive(count)
	b.log.Debug("channel detached", "channel", name)
}

// Active reports whether a channel is attached under name
func (b *Bus) Active(name string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.channels[name]
	return ok
}

// Names lists attached channels in lexical order
func (b *Bus) Names() []string {
	b.mu.Lock()
	names := lo.Keys(b.channels)
	b.mu.Unlock()
	sort.Strings(names)
	return names
}

func (b *Bus) channel(name string) (Channel, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch, ok := b.channels[name]
	return ch, ok
}

// Send delivers env to the named channel only
func (b *Bus) Send(ctx context.Context, name string, env domain.Envelope) error {
	ch, ok := b.channel(name)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrChannelNotActive, name)
	}
	return b.deliver(ctx, ch, env)
}

// Broadcast delivers env to every attached channel. Delivery failures are logged.
func (b *Bus) Broadcast(ctx context.Context, env domain.Envelope) {
	b.mu.Lock()
	targets := lo.Values(b.channels)
	b.mu.Unlock()

	metrics.Broadcast(string(env.Type))
	for _, ch := range targets {
		if err := ch.Send(ctx, env); err != nil {
			b.log.Warn("broadcast delivery failed", "channel", ch.Name(), "type", env.Type, "error", err)
		}
	}
}

// Forward delivers env to target. When target is not attached the message is
// queued and the activator is asked to bring the surface up.
func (b *Bus) Forward(ctx context.Context, target string, env domain.Envelope) error {
	b.mu.Lock()
	ch, ok := b.channels[target]
	dropped := 0
	if !ok {
		queue := append(b.pending[target], env)
		if len(queue) > maxPendingForwards {
			dropped = len(queue) - maxPendingForwards
			queue = append([]domain.Envelope(nil), queue[dropped:]...)
		}
		b.pending[target] = queue
	}
	attaching := b.attaching[target]
	activate := b.activator
	b.mu.Unlock()

	if ok {
		return b.deliver(ctx, ch, env)
	}

	metrics.ForwardQueued(target)
	if dropped > 0 {
		b.log.Warn("dropped oldest queued forwards", "target", target, "dropped", dropped)
	}
	b.log.Debug("queued forward for inactive surface", "target", target, "type", env.Type)
	if activate == nil || attaching {
		return nil
	}
	if err := activate(ctx, target); err != nil {
		return fmt.Errorf("failed to activate %s: %w", target, err)
	}
	return nil
}

func (b *Bus) deliver(ctx context.Context, ch Channel, env domain.Envelope) error {
	if err := ch.Send(ctx, env); err != nil {
		return fmt.Errorf("failed to send %s to %s: %w", env.Type, ch.Name(), err)
	}
	return nil
}

// HostActivator asks the host surface to show the named surface
func HostActivator(b *Bus) Activator {
	return func(ctx context.Context, name string) error {
		env, err := domain.NewEnvelope(domain.ShowSurface, map[string]string{"name": name})
		if err != nil {
			return err
		}
		return b.Send(ctx, SurfaceHost, env)
	}
}
