// Package state holds the single mutable store behind the console: every
// ingest path writes into it under one mutex, and the view layer reads
// from it through copying accessors. A given ingest runs to its commit
// before another is processed.
package state

import (
	"sync"
	"time"

	"github.com/pipewatch/pipewatch/internal/baseline"
	"github.com/pipewatch/pipewatch/internal/history"
	"github.com/pipewatch/pipewatch/internal/insight"
	"github.com/pipewatch/pipewatch/internal/telemetry"
)

// ConnStatus mirrors the streaming transport's lifecycle.
type ConnStatus string

const (
	ConnConnecting ConnStatus = "connecting"
	ConnOpen       ConnStatus = "open"
	ConnClosed     ConnStatus = "closed"
)

// ConnectionState is the transport status exposed to the view layer.
type ConnectionState struct {
	Status        ConnStatus
	LastHeartbeat time.Time
}

// Highlight is the agent/plan-step pair the view layer is hovering. The
// store only holds it; it carries no engine semantics.
type Highlight struct {
	AgentID string
	StepID  string
}

// maxAlertMessages bounds the alert list grown between two snapshots. A
// snapshot replaces the list wholesale, so the cap only matters during a
// critical-event flood.
const maxAlertMessages = 20

// Trend series ids recorded on every snapshot ingest.
const (
	TrendAggregateLatency = "aggregate-latency"
	TrendDocsProcessed    = "documents-processed"
)

// Options configures store capacities and persistence.
type Options struct {
	EventBuffer       int           // bounded event ring capacity
	LatencyHistory    int           // per-agent latency series capacity
	MetricHistory     int           // per-metric value series capacity
	TrendHistory      int           // aggregate trend series capacity
	ActiveEventWindow time.Duration // how long a streamed event keeps weighing on system severity
	PrefsPath         string        // layout preference file; empty disables persistence
}

// DefaultOptions match the backend's observed volumes: 2000 log lines and
// 360 trend points cover a full shift at the default cadences.
func DefaultOptions() Options {
	return Options{
		EventBuffer:       2000,
		LatencyHistory:    60,
		MetricHistory:     120,
		TrendHistory:      360,
		ActiveEventWindow: 40 * time.Second,
	}
}

// Store is the state container.
type Store struct {
	mu sync.Mutex

	opts Options

	summary  telemetry.Summary
	agents   []telemetry.Agent
	plan     []telemetry.PlanStep
	quality  telemetry.Quality
	events   []telemetry.Event // newest first
	insights []insight.Insight

	latency *history.Store
	metrics *history.Store
	trend   *history.Store

	conn      ConnectionState
	highlight Highlight
	prefs     LayoutPrefs

	notify chan struct{}
}

// NewStore creates a store with the given options, loading any persisted
// layout preference.
func NewStore(opts Options) *Store {
	s := &Store{
		opts:    opts,
		latency: history.NewStore(opts.LatencyHistory),
		metrics: history.NewStore(opts.MetricHistory),
		trend:   history.NewStore(opts.TrendHistory),
		conn:    ConnectionState{Status: ConnConnecting},
		prefs:   defaultPrefs(),
		notify:  make(chan struct{}, 1),
	}
	s.summary = emptySummary()
	if opts.PrefsPath != "" {
		s.prefs = loadPrefs(opts.PrefsPath)
	}
	return s
}

func emptySummary() telemetry.Summary {
	return telemetry.Summary{AlertMessages: []string{}}
}

// IngestSnapshot normalizes a raw poll payload, updates histories, runs the
// baseline/severity evaluation and insight generation, and commits the
// result in one atomic step. It never fails: malformed payloads degrade to
// defaults.
func (s *Store) IngestSnapshot(raw []byte, now time.Time) {
	snap := telemetry.Normalize(telemetry.DecodeSnapshot(raw), now)

	s.mu.Lock()
	defer s.mu.Unlock()

	readings := s.evaluateAgents(snap.Agents, now)
	s.evaluateMetrics(&snap.Quality, now)
	s.recordTrend(snap, now)

	sev := snap.Summary.Severity
	for _, m := range snap.Quality.Metrics {
		sev = telemetry.MaxSeverity(sev, m.Severity)
	}
	for _, r := range readings {
		sev = telemetry.MaxSeverity(sev, baseline.LatencySeverity(r.LatencyRatio))
	}
	sev = telemetry.MaxSeverity(sev, s.activeEventSeverity(now))
	snap.Summary.Severity = sev

	s.summary = snap.Summary
	s.agents = snap.Agents
	s.plan = snap.Plan
	s.quality = snap.Quality
	s.insights = insight.Generate(readings, snap.Quality.Metrics, now)

	s.signal()
}

// evaluateAgents computes latency baselines from history as it stood
// before this snapshot, then records the new samples.
func (s *Store) evaluateAgents(agents []telemetry.Agent, now time.Time) []insight.AgentReading {
	readings := make([]insight.AgentReading, 0, len(agents))
	for _, a := range agents {
		if a.Executions <= 0 && a.AvgTime <= 0 {
			readings = append(readings, insight.AgentReading{Agent: a})
			continue
		}
		base := baseline.Compute(s.latency.Values(a.ID))
		readings = append(readings, insight.AgentReading{
			Agent:           a,
			LatencyRatio:    baseline.LatencyRatio(a.AvgTime, base),
			LatencyBaseline: base,
		})
		s.latency.Record(a.ID, now, a.AvgTime)
	}
	return readings
}

// evaluateMetrics resolves each metric's baseline (excluding the incoming
// sample) and severity, then records the new samples.
func (s *Store) evaluateMetrics(q *telemetry.Quality, now time.Time) {
	for i := range q.Metrics {
		m := &q.Metrics[i]
		if m.Value == nil {
			m.Severity = telemetry.SeverityNormal
			continue
		}
		m.Baseline = baseline.Compute(s.metrics.Values(m.ID))
		m.Severity = baseline.Classify(m.Value, m.Orientation, m.Baseline)
		s.metrics.Record(m.ID, now, *m.Value)
	}
}

func (s *Store) recordTrend(snap telemetry.Snapshot, now time.Time) {
	sum, n := 0.0, 0
	for _, a := range snap.Agents {
		if a.AvgTime > 0 {
			sum += a.AvgTime
			n++
		}
	}
	if n > 0 {
		s.trend.Record(TrendAggregateLatency, now, sum/float64(n))
	}
	s.trend.Record(TrendDocsProcessed, now, float64(snap.Summary.Processed))
}

// activeEventSeverity is the worst severity among buffered events recent
// enough to still count against system severity.
func (s *Store) activeEventSeverity(now time.Time) telemetry.Severity {
	cutoff := now.Add(-s.opts.ActiveEventWindow)
	sev := telemetry.SeverityNormal
	// The ring is ordered by arrival, not by event time: wire timestamps can
	// lag behind (replays, backend batching), so the whole ring is scanned.
	for _, ev := range s.events {
		if ev.Time.Before(cutoff) {
			continue
		}
		sev = telemetry.MaxSeverity(sev, ev.Severity)
	}
	return sev
}

// IngestEvent normalizes one streamed log payload, prepends it to the
// bounded event ring, and folds its severity into system severity without
// re-running the full metric evaluation.
func (s *Store) IngestEvent(p telemetry.EventPayload, now time.Time) {
	ev := telemetry.NormalizeEvent(p, now)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append([]telemetry.Event{ev}, s.events...)
	if len(s.events) > s.opts.EventBuffer {
		s.events = s.events[:s.opts.EventBuffer]
	}

	if ev.Severity > s.summary.Severity {
		s.summary.Severity = ev.Severity
	}
	if ev.Severity == telemetry.SeverityCritical && ev.Message != "" {
		s.summary.AlertMessages = append(s.summary.AlertMessages, ev.Message)
		if n := len(s.summary.AlertMessages); n > maxAlertMessages {
			s.summary.AlertMessages = s.summary.AlertMessages[n-maxAlertMessages:]
		}
	}

	s.signal()
}

// SetConnection records the transport status. The heartbeat time is
// refreshed on every status report.
func (s *Store) SetConnection(status ConnStatus, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn = ConnectionState{Status: status, LastHeartbeat: at}
	s.signal()
}

// SoftReset clears all derived telemetry state back to defaults. The
// layout preference and connection status survive.
func (s *Store) SoftReset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.summary = emptySummary()
	s.agents = nil
	s.plan = nil
	s.quality = telemetry.Quality{}
	s.events = nil
	s.insights = nil
	s.highlight = Highlight{}
	s.latency.Reset()
	s.metrics.Reset()
	s.trend.Reset()

	s.signal()
}

// SetHighlight stores the hovered agent/plan-step pair for the view layer.
func (s *Store) SetHighlight(agentID, stepID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.highlight = Highlight{AgentID: agentID, StepID: stepID}
}

// Notify returns an edge-triggered signal channel: one token is pending
// whenever the store changed since the last receive.
func (s *Store) Notify() <-chan struct{} {
	return s.notify
}

func (s *Store) signal() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Summary returns the current aggregate view.
func (s *Store) Summary() telemetry.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.summary
	out.AlertMessages = append(make([]string, 0, len(s.summary.AlertMessages)), s.summary.AlertMessages...)
	return out
}

// Agents returns a copy of the current agent list.
func (s *Store) Agents() []telemetry.Agent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]telemetry.Agent(nil), s.agents...)
}

// Plan returns a copy of the current plan steps.
func (s *Store) Plan() []telemetry.PlanStep {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]telemetry.PlanStep(nil), s.plan...)
}

// Quality returns a copy of the current quality state.
func (s *Store) Quality() telemetry.Quality {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := telemetry.Quality{
		Metrics:       append([]telemetry.QualityMetric(nil), s.quality.Metrics...),
		LayerFailures: append([]string(nil), s.quality.LayerFailures...),
	}
	return out
}

// Events returns up to limit buffered events, newest first. A non-positive
// limit returns the whole ring.
func (s *Store) Events(limit int) []telemetry.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 || limit > len(s.events) {
		limit = len(s.events)
	}
	return append([]telemetry.Event(nil), s.events[:limit]...)
}

// Insights returns a copy of the current insight list.
func (s *Store) Insights() []insight.Insight {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]insight.Insight(nil), s.insights...)
}

// Connection returns the current transport state.
func (s *Store) Connection() ConnectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

// CurrentHighlight returns the stored hover pair.
func (s *Store) CurrentHighlight() Highlight {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.highlight
}

// LatencySeries returns the latency history for an agent id.
func (s *Store) LatencySeries(agentID string) []history.Point {
	return s.latency.Series(agentID)
}

// MetricSeries returns the value history for a metric id.
func (s *Store) MetricSeries(metricID string) []history.Point {
	return s.metrics.Series(metricID)
}

// TrendSeries returns one of the aggregate trend series.
func (s *Store) TrendSeries(id string) []history.Point {
	return s.trend.Series(id)
}
