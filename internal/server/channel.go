package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/osmium-toolchains/osmium-cli/internal/domain"
	"github.com/osmium-toolchains/osmium-cli/internal/observability/metrics"
	"github.com/osmium-toolchains/osmium-cli/internal/router"
)

const writeWait = 10 * time.Second

// errRateLimited is reported to a surface whose messages arrive faster than allowed
var errRateLimited = fmt.Errorf("%w: message rate exceeded", domain.ErrInvalidPayload)

// wsChannel is a UI channel carried by one websocket connection
type wsChannel struct {
	name    string
	conn    *websocket.Conn
	limiter *rate.Limiter
	log     *slog.Logger

	writeMu sync.Mutex
	closed  bool
}

var _ router.Channel = (*wsChannel)(nil)

func newWSChannel(name string, conn *websocket.Conn, perSecond float64, burst int, log *slog.Logger) *wsChannel {
	ch := &wsChannel{
		name: name,
		conn: conn,
		log:  log.With("channel", name),
	}
	if perSecond > 0 {
		if burst < 1 {
			burst = 1
		}
		ch.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
	return ch
}

func (c *wsChannel) Name() string { return c.name }

// Send writes env as one text frame. Writes are serialized per connection.
func (c *wsChannel) Send(ctx context.Context, env domain.Envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", env.Type, err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.closed {
		return fmt.Errorf("%w: %s", domain.ErrChannelNotActive, c.name)
	}

	deadline := time.Now().Add(writeWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

// Close sends a close frame and releases the connection
func (c *wsChannel) Close() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return c.conn.Close()
}

// readLoop decodes incoming frames and hands them to dispatch until the
// connection fails or closes
func (c *wsChannel) readLoop(ctx context.Context, dispatch func(context.Context, string, domain.Envelope)) {
	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.log.Warn("channel closed unexpectedly", "error", err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			c.log.Debug("ignoring non-text frame", "frame", messageType)
			continue
		}

		var env domain.Envelope
		if err := json.Unmarshal(data, &env); err != nil || env.Type == "" {
			if err == nil {
				err = errors.New("missing type")
			}
			c.reject(ctx, "", fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err))
			continue
		}

		if c.limiter != nil && !c.limiter.Allow() {
			metrics.RateLimited(c.name)
			c.log.Warn("message dropped", "type", env.Type, "error", errRateLimited)
			c.reject(ctx, env.Type, errRateLimited)
			continue
		}

		dispatch(ctx, c.name, env)
	}
}

func (c *wsChannel) reject(ctx context.Context, request domain.MessageType, err error) {
	env, encErr := domain.NewEnvelope(domain.ErrorMessage, domain.NewErrorPayload(request, err))
	if encErr != nil {
		return
	}
	if sendErr := c.Send(ctx, env); sendErr != nil {
		c.log.Debug("failed to report error", "error", sendErr)
	}
}
