// Package stream owns the streaming transport's lifecycle: connect,
// heartbeat, and unconditional fixed-delay reconnect. Transport failures
// never surface as errors, only as status changes.
package stream

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pipewatch/pipewatch/internal/telemetry"
)

// Status is the connection lifecycle state.
type Status string

const (
	StatusConnecting Status = "connecting"
	StatusOpen       Status = "open"
	StatusClosed     Status = "closed"
)

// Default timer settings, matching the backend's expectations.
const (
	DefaultHeartbeat   = 30 * time.Second
	DefaultReconnect   = 5 * time.Second
	defaultDialTimeout = 10 * time.Second
)

// Handlers receive the connection's outputs. All callbacks run on the
// connection goroutine; they must not block for long.
type Handlers struct {
	// OnEvent receives each "log"-tagged message.
	OnEvent func(telemetry.EventPayload)
	// OnSnapshot receives the raw payload of each snapshot-bearing message.
	OnSnapshot func(json.RawMessage)
	// OnStatus is called on every lifecycle transition.
	OnStatus func(Status)
	// OnOpen fires once per successful handshake, after OnStatus(open).
	// Used to trigger an immediate snapshot refresh after a reconnect.
	OnOpen func()
}

// Options configures the connection.
type Options struct {
	URL       string
	Heartbeat time.Duration
	Reconnect time.Duration
}

// Conn is the managed streaming connection.
type Conn struct {
	opts     Options
	handlers Handlers
	dialer   *websocket.Dialer
}

// envelope discriminates incoming stream messages by type tag.
type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ping is the fire-and-forget liveness message sent on each heartbeat.
type ping struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
}

// New creates a managed connection. Run must be called to start it.
func New(opts Options, handlers Handlers) *Conn {
	if opts.Heartbeat <= 0 {
		opts.Heartbeat = DefaultHeartbeat
	}
	if opts.Reconnect <= 0 {
		opts.Reconnect = DefaultReconnect
	}
	return &Conn{
		opts:     opts,
		handlers: handlers,
		dialer:   &websocket.Dialer{HandshakeTimeout: defaultDialTimeout},
	}
}

// Run drives the connect/heartbeat/reconnect loop until ctx is canceled.
// Reconnection is unconditional and indefinite: an unreachable backend
// means a permanent fixed-interval retry loop, by policy.
func (c *Conn) Run(ctx context.Context) {
	for {
		c.status(StatusConnecting)
		ws, _, err := c.dialer.DialContext(ctx, c.opts.URL, nil)
		if err != nil {
			c.status(StatusClosed)
			slog.Debug("stream dial failed", "url", c.opts.URL, "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.opts.Reconnect):
				continue
			}
		}

		c.status(StatusOpen)
		if c.handlers.OnOpen != nil {
			c.handlers.OnOpen()
		}

		c.serve(ctx, ws)
		_ = ws.Close()
		c.status(StatusClosed)

		select {
		case <-ctx.Done():
			return
		case <-time.After(c.opts.Reconnect):
		}
	}
}

// serve reads messages and runs the heartbeat until the connection drops
// or ctx is canceled.
func (c *Conn) serve(ctx context.Context, ws *websocket.Conn) {
	done := make(chan struct{})
	defer close(done)

	// Heartbeat: periodic liveness ping while open. The absence of a pong
	// is not separately modeled.
	go func() {
		ticker := time.NewTicker(c.opts.Heartbeat)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				// Unblocks the read loop below.
				_ = ws.Close()
				return
			case <-ticker.C:
				msg := ping{Type: "ping", Timestamp: time.Now().UTC().Format(time.RFC3339)}
				if err := ws.WriteJSON(msg); err != nil {
					slog.Debug("heartbeat write failed", "error", err)
					return
				}
			}
		}
	}()

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				slog.Debug("stream read failed", "error", err)
			}
			return
		}
		c.dispatch(data)
	}
}

// dispatch routes one raw message by its type tag. Malformed messages are
// discarded; processing continues with the next message.
func (c *Conn) dispatch(data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		slog.Debug("stream message discarded", "error", err)
		return
	}

	switch env.Type {
	case "log":
		if c.handlers.OnEvent == nil {
			return
		}
		var p telemetry.EventPayload
		// Some backends nest the event under payload, others inline it.
		raw := data
		if len(env.Payload) > 0 {
			raw = env.Payload
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			slog.Debug("log message discarded", "error", err)
			return
		}
		c.handlers.OnEvent(p)

	case "stats", "snapshot", "quality_update":
		if c.handlers.OnSnapshot == nil {
			return
		}
		raw := json.RawMessage(data)
		if len(env.Payload) > 0 {
			raw = env.Payload
		}
		c.handlers.OnSnapshot(raw)

	case "pong":
		// Fire-and-forget ping; pongs are ignored.

	default:
		slog.Debug("unknown stream message type", "type", env.Type)
	}
}

func (c *Conn) status(s Status) {
	if c.handlers.OnStatus != nil {
		c.handlers.OnStatus(s)
	}
}
