package progress

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/fatih/color"

	"github.com/osmium-toolchains/osmium-cli/internal/domain"
	"github.com/osmium-toolchains/osmium-cli/internal/domain/config"
	"github.com/osmium-toolchains/osmium-cli/internal/usecase"
)

// Broadcaster delivers an envelope to every attached channel
type Broadcaster interface {
	Broadcast(ctx context.Context, env domain.Envelope)
}

// ConsoleSink prints command output with a colored source prefix
type ConsoleSink struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsoleSink creates a sink writing to out
func NewConsoleSink(out io.Writer) *ConsoleSink {
	return &ConsoleSink{out: out}
}

func sourceColor(source string) *color.Color {
	switch {
	case strings.HasPrefix(source, "deploy"):
		return color.New(color.FgCyan, color.Bold)
	case source == "write":
		return color.New(color.FgYellow)
	case source == "read":
		return color.New(color.FgGreen)
	default:
		return color.New(color.FgWhite, color.Faint)
	}
}

// Append writes every line of text prefixed by the source
func (s *ConsoleSink) Append(source, text string) {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return
	}
	prefix := sourceColor(source).Sprintf("[%s]", source)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, line := range strings.Split(text, "\n") {
		fmt.Fprintf(s.out, "%s %s\n", prefix, line)
	}
}

// LogSink records command output in the structured log
type LogSink struct {
	log *slog.Logger
}

// NewLogSink creates a sink logging at debug level
func NewLogSink(log *slog.Logger) *LogSink {
	return &LogSink{log: log.With("component", "Output")}
}

func (s *LogSink) Append(source, text string) {
	s.log.Debug("command output", "source", source, "text", strings.TrimRight(text, "\n"))
}

// ChannelSink broadcasts command output to every attached UI channel as LOG messages
type ChannelSink struct {
	bus Broadcaster
	log *slog.Logger
}

// NewChannelSink creates a sink broadcasting through bus
func NewChannelSink(bus Broadcaster, log *slog.Logger) *ChannelSink {
	return &ChannelSink{bus: bus, log: log.With("component", "ChannelSink")}
}

func (s *ChannelSink) Append(source, text string) {
	env, err := domain.NewEnvelope(domain.Log, domain.LogPayload{Source: source, Text: text})
	if err != nil {
		s.log.Error("failed to encode output", "error", err)
		return
	}
	s.bus.Broadcast(context.Background(), env)
}

// MultiSink fans output out to several sinks in order
type MultiSink []usecase.LogSink

func (m MultiSink) Append(source, text string) {
	for _, sink := range m {
		sink.Append(source, text)
	}
}

// NewOutputSink builds the sink commands write to: LOG broadcasts plus the
// console, or the structured log when output must stay machine readable
func NewOutputSink(cfg *config.RuntimeConfig, bus Broadcaster, out io.Writer, log *slog.Logger) usecase.LogSink {
	sinks := MultiSink{NewChannelSink(bus, log)}
	if cfg.JSON || cfg.NonInteractive {
		sinks = append(sinks, NewLogSink(log))
	} else {
		sinks = append(sinks, NewConsoleSink(out))
	}
	return sinks
}

var (
	_ usecase.LogSink = (*ConsoleSink)(nil)
	_ usecase.LogSink = (*LogSink)(nil)
	_ usecase.LogSink = (*ChannelSink)(nil)
	_ usecase.LogSink = MultiSink(nil)
)
