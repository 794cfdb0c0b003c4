package router

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osmium-toolchains/osmium-cli/internal/domain"
)

func newTestBus() *Bus {
	return NewBus(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func envelope(t *testing.T, typ domain.MessageType, data any) domain.Envelope {
	t.Helper()
	env, err := domain.NewEnvelope(typ, data)
	require.NoError(t, err)
	return env
}

// failingChannel rejects every message
type failingChannel struct{ name string }

func (c failingChannel) Name() string { return c.name }

func (c failingChannel) Send(context.Context, domain.Envelope) error {
	return errors.New("connection closed")
}

// gatedChannel records messages and holds its first Send until release is closed
type gatedChannel struct {
	name    string
	entered chan struct{}
	release chan struct{}

	mu   sync.Mutex
	seen []string
}

func newGatedChannel(name string) *gatedChannel {
	return &gatedChannel{name: name, entered: make(chan struct{}), release: make(chan struct{})}
}

func (c *gatedChannel) Name() string { return c.name }

func (c *gatedChannel) Send(_ context.Context, env domain.Envelope) error {
	c.mu.Lock()
	first := len(c.seen) == 0
	c.seen = append(c.seen, string(env.Data))
	c.mu.Unlock()
	if first {
		close(c.entered)
		<-c.release
	}
	return nil
}

func (c *gatedChannel) received() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.seen...)
}

func TestBus(t *testing.T) {
	ctx := context.Background()

	t.Run("send addresses one channel", func(t *testing.T) {
		bus := newTestBus()
		a, b := NewMemoryChannel("a", 4), NewMemoryChannel("b", 4)
		bus.Attach(a)
		bus.Attach(b)

		require.NoError(t, bus.Send(ctx, "a", envelope(t, domain.Wallets, []string{})))
		assert.Len(t, a.Messages(), 1)
		assert.Len(t, b.Messages(), 0)
	})

	t.Run("send to an inactive channel", func(t *testing.T) {
		bus := newTestBus()
		err := bus.Send(ctx, "ghost", envelope(t, domain.Wallets, nil))
		assert.ErrorIs(t, err, domain.ErrChannelNotActive)
	})

	t.Run("broadcast reaches everyone and survives failures", func(t *testing.T) {
		bus := newTestBus()
		a, b := NewMemoryChannel("a", 4), NewMemoryChannel("b", 4)
		bus.Attach(a)
		bus.Attach(failingChannel{name: "broken"})
		bus.Attach(b)

		bus.Broadcast(ctx, envelope(t, domain.Log, domain.LogPayload{Source: "deploy", Text: "ok"}))
		assert.Len(t, a.Messages(), 1)
		assert.Len(t, b.Messages(), 1)
	})

	t.Run("forwards are queued in order until attach", func(t *testing.T) {
		bus := newTestBus()
		var activated []string
		bus.SetActivator(func(_ context.Context, name string) error {
			activated = append(activated, name)
			return nil
		})

		require.NoError(t, bus.Forward(ctx, "panel", envelope(t, domain.OpenPanelResponse, map[string]string{"id": "1"})))
		require.NoError(t, bus.Forward(ctx, "panel", envelope(t, domain.OpenPanelResponse, map[string]string{"id": "2"})))
		assert.Equal(t, []string{"panel", "panel"}, activated)

		panel := NewMemoryChannel("panel", 4)
		bus.Attach(panel)
		first, second := <-panel.Messages(), <-panel.Messages()
		assert.JSONEq(t, `{"id":"1"}`, string(first.Data))
		assert.JSONEq(t, `{"id":"2"}`, string(second.Data))

		// the queue is drained
		bus.Detach(panel)
		bus.Attach(panel)
		assert.Len(t, panel.Messages(), 0)
	})

	t.Run("forwards during the flush stay behind queued ones", func(t *testing.T) {
		bus := newTestBus()
		activations := 0
		bus.SetActivator(func(context.Context, string) error {
			activations++
			return nil
		})
		require.NoError(t, bus.Forward(ctx, "panel", envelope(t, domain.OpenPanelResponse, 1)))
		require.NoError(t, bus.Forward(ctx, "panel", envelope(t, domain.OpenPanelResponse, 2)))

		panel := newGatedChannel("panel")
		attached := make(chan struct{})
		go func() {
			bus.Attach(panel)
			close(attached)
		}()

		<-panel.entered
		require.NoError(t, bus.Forward(ctx, "panel", envelope(t, domain.OpenPanelResponse, 3)))
		assert.False(t, bus.Active("panel"))
		close(panel.release)

		select {
		case <-attached:
		case <-time.After(5 * time.Second):
			t.Fatal("attach did not finish")
		}
		assert.Equal(t, []string{"1", "2", "3"}, panel.received())
		assert.True(t, bus.Active("panel"))
		assert.Equal(t, 2, activations)

		require.NoError(t, bus.Forward(ctx, "panel", envelope(t, domain.OpenPanelResponse, 4)))
		assert.Equal(t, []string{"1", "2", "3", "4"}, panel.received())
	})

	t.Run("queue keeps only the newest forwards", func(t *testing.T) {
		bus := newTestBus()
		total := maxPendingForwards + 6
		for i := 0; i < total; i++ {
			require.NoError(t, bus.Forward(ctx, "panel", envelope(t, domain.OpenPanelResponse, i)))
		}

		panel := NewMemoryChannel("panel", total)
		bus.Attach(panel)
		require.Len(t, panel.Messages(), maxPendingForwards)
		first := <-panel.Messages()
		assert.Equal(t, "6", string(first.Data))
	})

	t.Run("activation failure keeps the message queued", func(t *testing.T) {
		bus := newTestBus()
		bus.SetActivator(HostActivator(bus))

		err := bus.Forward(ctx, "panel", envelope(t, domain.OpenPanelResponse, map[string]string{"id": "x"}))
		assert.ErrorIs(t, err, domain.ErrChannelNotActive)

		panel := NewMemoryChannel("panel", 4)
		bus.Attach(panel)
		assert.Len(t, panel.Messages(), 1)
	})

	t.Run("detach only removes the attached instance", func(t *testing.T) {
		bus := newTestBus()
		old, fresh := NewMemoryChannel("panel", 1), NewMemoryChannel("panel", 1)
		bus.Attach(old)
		bus.Attach(fresh)
		bus.Detach(old)

		assert.True(t, bus.Active("panel"))
		bus.Detach(fresh)
		assert.False(t, bus.Active("panel"))
	})

	t.Run("names are sorted", func(t *testing.T) {
		bus := newTestBus()
		bus.Attach(NewMemoryChannel("sidebar", 1))
		bus.Attach(NewMemoryChannel("host", 1))
		bus.Attach(NewMemoryChannel("panel", 1))
		assert.Equal(t, []string{"host", "panel", "sidebar"}, bus.Names())
	})
}

func TestMemoryChannel_WaitFor(t *testing.T) {
	ch := NewMemoryChannel("ui", 4)
	ctx := context.Background()
	require.NoError(t, ch.Send(ctx, envelope(t, domain.Log, domain.LogPayload{Text: "noise"})))
	require.NoError(t, ch.Send(ctx, envelope(t, domain.ReadResponse, "42")))

	env, err := ch.WaitFor(ctx, domain.ReadResponse)
	require.NoError(t, err)
	assert.JSONEq(t, `"42"`, string(env.Data))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = ch.WaitFor(cancelled, domain.ReadResponse)
	assert.ErrorIs(t, err, context.Canceled)
}
