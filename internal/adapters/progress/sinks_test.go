package progress

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osmium-toolchains/osmium-cli/internal/domain"
	"github.com/osmium-toolchains/osmium-cli/internal/domain/config"
)

type recordingBus struct {
	sent []domain.Envelope
}

func (b *recordingBus) Broadcast(_ context.Context, env domain.Envelope) {
	b.sent = append(b.sent, env)
}

func init() {
	color.NoColor = true
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestConsoleSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsoleSink(&buf)

	sink.Append("deploy-script", "Compiling...\nScript ran successfully.\n")
	sink.Append("read", "")
	sink.Append("read", "number: 42")

	assert.Equal(t, "[deploy-script] Compiling...\n[deploy-script] Script ran successfully.\n[read] number: 42\n", buf.String())
}

func TestChannelSink(t *testing.T) {
	bus := &recordingBus{}
	NewChannelSink(bus, discard()).Append("write", "setNumber: 0xabc")

	require.Len(t, bus.sent, 1)
	assert.Equal(t, domain.Log, bus.sent[0].Type)
	var payload domain.LogPayload
	require.NoError(t, json.Unmarshal(bus.sent[0].Data, &payload))
	assert.Equal(t, domain.LogPayload{Source: "write", Text: "setNumber: 0xabc"}, payload)
}

func TestNewOutputSink(t *testing.T) {
	t.Run("interactive prints to the console", func(t *testing.T) {
		bus := &recordingBus{}
		var buf bytes.Buffer
		sink := NewOutputSink(&config.RuntimeConfig{}, bus, &buf, discard())

		sink.Append("read", "number: 1")
		assert.Len(t, bus.sent, 1)
		assert.Equal(t, "[read] number: 1\n", buf.String())
	})

	t.Run("json mode keeps stdout clean", func(t *testing.T) {
		bus := &recordingBus{}
		var buf bytes.Buffer
		sink := NewOutputSink(&config.RuntimeConfig{JSON: true}, bus, &buf, discard())

		sink.Append("read", "number: 1")
		assert.Len(t, bus.sent, 1)
		assert.Empty(t, buf.String())
	})
}

func TestSpinner_Disabled(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, false)
	s.Start("waiting")
	s.Stop()

	assert.Empty(t, buf.String())
}
