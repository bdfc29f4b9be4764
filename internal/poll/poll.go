// Package poll fetches full pipeline snapshots from the backend on a fixed
// interval, with an out-of-band refresh hook for post-reconnect catch-up.
package poll

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	retry "github.com/avast/retry-go/v5"
)

// Defaults for the polling loop.
const (
	DefaultInterval = 20 * time.Second
	fetchAttempts   = 3
	fetchRetryDelay = 500 * time.Millisecond
	requestTimeout  = 10 * time.Second
	maxBodyBytes    = 4 << 20
)

// Options configures the poller.
type Options struct {
	URL      string
	Interval time.Duration
	Client   *http.Client
}

// Poller periodically fetches snapshots and hands the raw payload to the
// ingest callback. Fetch failures are logged and absorbed; the next tick
// tries again.
type Poller struct {
	opts    Options
	ingest  func([]byte)
	refresh chan struct{}
}

// New creates a poller delivering raw snapshot payloads to ingest.
func New(opts Options, ingest func([]byte)) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: requestTimeout}
	}
	return &Poller{
		opts:    opts,
		ingest:  ingest,
		refresh: make(chan struct{}, 1),
	}
}

// Refresh requests an immediate out-of-band fetch. Coalesces when one is
// already pending.
func (p *Poller) Refresh() {
	select {
	case p.refresh <- struct{}{}:
	default:
	}
}

// Run polls until ctx is canceled. The first fetch happens immediately.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.opts.Interval)
	defer ticker.Stop()

	p.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		case <-p.refresh:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	raw, err := p.fetch(ctx)
	if err != nil {
		if ctx.Err() == nil {
			slog.Debug("snapshot fetch failed", "url", p.opts.URL, "error", err)
		}
		return
	}
	p.ingest(raw)
}

// fetch retrieves one snapshot payload, retrying transient failures a few
// times before giving up until the next tick.
func (p *Poller) fetch(ctx context.Context) ([]byte, error) {
	r := retry.New(
		retry.Context(ctx),
		retry.Attempts(fetchAttempts),
		// Fixed short delay; the outer tick provides the real pacing.
		retry.DelayType(func(uint, error, retry.DelayContext) time.Duration {
			return fetchRetryDelay
		}),
	)

	var raw []byte
	err := r.Do(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.opts.URL, nil)
		if err != nil {
			return err
		}
		resp, err := p.opts.Client.Do(req)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("snapshot endpoint returned %s", resp.Status)
		}
		raw, err = io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		return err
	})
	return raw, err
}
