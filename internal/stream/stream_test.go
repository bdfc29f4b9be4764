package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pipewatch/pipewatch/internal/telemetry"
)

// collector records handler callbacks for assertions.
type collector struct {
	mu        sync.Mutex
	statuses  []Status
	events    []telemetry.EventPayload
	snapshots []json.RawMessage
	opens     int
	changed   chan struct{}
}

func newCollector() *collector {
	return &collector{changed: make(chan struct{}, 64)}
}

func (c *collector) handlers() Handlers {
	note := func() {
		select {
		case c.changed <- struct{}{}:
		default:
		}
	}
	return Handlers{
		OnStatus: func(s Status) {
			c.mu.Lock()
			c.statuses = append(c.statuses, s)
			c.mu.Unlock()
			note()
		},
		OnEvent: func(p telemetry.EventPayload) {
			c.mu.Lock()
			c.events = append(c.events, p)
			c.mu.Unlock()
			note()
		},
		OnSnapshot: func(raw json.RawMessage) {
			c.mu.Lock()
			c.snapshots = append(c.snapshots, raw)
			c.mu.Unlock()
			note()
		},
		OnOpen: func() {
			c.mu.Lock()
			c.opens++
			c.mu.Unlock()
			note()
		},
	}
}

func (c *collector) wait(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		c.mu.Lock()
		ok := cond()
		c.mu.Unlock()
		if ok {
			return
		}
		select {
		case <-c.changed:
		case <-deadline:
			t.Fatal("condition not reached in time")
		}
	}
}

// wsServer upgrades each connection and hands it to fn.
func wsServer(t *testing.T, fn func(*websocket.Conn)) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		fn(ws)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestConn_LifecycleAndDispatch(t *testing.T) {
	col := newCollector()

	srv := wsServer(t, func(ws *websocket.Conn) {
		defer func() { _ = ws.Close() }()
		msgs := []string{
			`{"type": "log", "level": "ERROR", "message": "boom", "agent_name": "Extractor"}`,
			`{"type": "stats", "payload": {"documents_processed": 7}}`,
			`{"type": "mystery", "payload": {}}`,
			`not even json`,
			`{"type": "snapshot", "documents_processed": 9}`,
		}
		for _, m := range msgs {
			if err := ws.WriteMessage(websocket.TextMessage, []byte(m)); err != nil {
				return
			}
		}
		// Keep the connection up until the client goes away.
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn := New(Options{URL: wsURL(srv), Reconnect: 50 * time.Millisecond}, col.handlers())
	go conn.Run(ctx)

	col.wait(t, func() bool { return len(col.events) >= 1 && len(col.snapshots) >= 2 })

	col.mu.Lock()
	defer col.mu.Unlock()

	if col.statuses[0] != StatusConnecting || col.statuses[1] != StatusOpen {
		t.Errorf("status sequence = %v, want connecting then open", col.statuses)
	}
	if col.opens != 1 {
		t.Errorf("opens = %d, want 1", col.opens)
	}

	ev := col.events[0]
	if ev.Level != "ERROR" || ev.Message != "boom" || ev.AgentName != "Extractor" {
		t.Errorf("event = %+v", ev)
	}

	// The nested payload form is unwrapped; the inline form passes through.
	var nested map[string]any
	if err := json.Unmarshal(col.snapshots[0], &nested); err != nil || nested["documents_processed"] != float64(7) {
		t.Errorf("nested snapshot = %s", col.snapshots[0])
	}
	var inline map[string]any
	if err := json.Unmarshal(col.snapshots[1], &inline); err != nil || inline["documents_processed"] != float64(9) {
		t.Errorf("inline snapshot = %s", col.snapshots[1])
	}
}

func TestConn_ReconnectAfterServerClose(t *testing.T) {
	col := newCollector()

	srv := wsServer(t, func(ws *websocket.Conn) {
		// Drop every connection immediately.
		_ = ws.Close()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn := New(Options{URL: wsURL(srv), Reconnect: 20 * time.Millisecond}, col.handlers())
	go conn.Run(ctx)

	// Reconnection is unconditional: at least two full open cycles happen.
	col.wait(t, func() bool { return col.opens >= 2 })

	col.mu.Lock()
	defer col.mu.Unlock()
	closed := 0
	for _, s := range col.statuses {
		if s == StatusClosed {
			closed++
		}
	}
	if closed == 0 {
		t.Errorf("statuses = %v, want closed transitions between opens", col.statuses)
	}
}

func TestConn_TeardownStopsRetryLoop(t *testing.T) {
	col := newCollector()

	// Nothing is listening: every dial fails.
	conn := New(Options{URL: "ws://127.0.0.1:1/ws", Reconnect: 10 * time.Millisecond}, col.handlers())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		conn.Run(ctx)
		close(done)
	}()

	col.wait(t, func() bool { return len(col.statuses) >= 2 })
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}

func TestConn_HeartbeatPing(t *testing.T) {
	col := newCollector()
	pings := make(chan []byte, 4)

	srv := wsServer(t, func(ws *websocket.Conn) {
		defer func() { _ = ws.Close() }()
		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				return
			}
			pings <- data
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn := New(Options{
		URL:       wsURL(srv),
		Heartbeat: 30 * time.Millisecond,
		Reconnect: time.Second,
	}, col.handlers())
	go conn.Run(ctx)

	select {
	case data := <-pings:
		var p ping
		if err := json.Unmarshal(data, &p); err != nil || p.Type != "ping" || p.Timestamp == "" {
			t.Errorf("ping payload = %s", data)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no heartbeat ping received")
	}
}
