package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/quake-map/internal/domain"
	"github.com/couchcryptid/quake-map/internal/observability"
)

// Failed refreshes retry on an exponential backoff: start at 15s, double each
// retry, cap at 4m. Keeps the page fresh after a transient feed outage without
// hammering the upstream endpoint.
const (
	initialBackoff = 15 * time.Second
	maxBackoff     = 4 * time.Minute
)

// State is the lifecycle phase of the pipeline. It starts in StateLoading,
// moves to StateReady after the first successful refresh, and to StateFailed
// when the first refresh fails before any view exists. Once ready it never
// regresses; later failures keep the previous view.
type State int32

const (
	StateLoading State = iota
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Renderer turns a map view into a self-contained HTML page.
type Renderer interface {
	Render(view domain.MapView) ([]byte, error)
}

// EventPublisher emits the quakes that appeared since the previous snapshot.
type EventPublisher interface {
	PublishBatch(ctx context.Context, snap domain.FeedSnapshot, quakes []domain.Quake) error
}

// RenderedView is one fully assembled page together with the snapshot it was
// built from. The HTTP layer serves HTML and Raw byte-for-byte.
type RenderedView struct {
	SnapshotID string
	FetchedAt  time.Time
	View       domain.MapView
	HTML       []byte
	Raw        []byte
}

// Pipeline orchestrates the fetch-build-render loop and keeps the latest good
// page for serving. A refresh either swaps in a complete new view or leaves
// the previous one untouched.
type Pipeline struct {
	fetcher   domain.FeedFetcher
	renderer  Renderer
	publisher EventPublisher
	logger    *slog.Logger
	metrics   *observability.Metrics
	interval  time.Duration
	clock     clockwork.Clock

	state   atomic.Int32
	current atomic.Pointer[RenderedView]
	seen    map[string]struct{}
}

// New creates a Pipeline with the given stages and observability. A nil
// publisher disables event publishing. An interval of zero disables polling:
// Run performs a single refresh and then waits for shutdown.
func New(f domain.FeedFetcher, r Renderer, pub EventPublisher, logger *slog.Logger, metrics *observability.Metrics, interval time.Duration) *Pipeline {
	p := &Pipeline{
		fetcher:   f,
		renderer:  r,
		publisher: pub,
		logger:    logger,
		metrics:   metrics,
		interval:  interval,
		clock:     clockwork.NewRealClock(),
	}
	p.setState(StateLoading)
	return p
}

// SetClock swaps the time source used for refresh scheduling and durations.
// Pass nil to reset to real time. Only tests should call this.
func (p *Pipeline) SetClock(c clockwork.Clock) {
	if c == nil {
		p.clock = clockwork.NewRealClock()
		return
	}
	p.clock = c
}

// State reports the current lifecycle phase.
func (p *Pipeline) State() State {
	return State(p.state.Load())
}

// Current returns the latest rendered view, or nil before the first
// successful refresh.
func (p *Pipeline) Current() *RenderedView {
	return p.current.Load()
}

// CheckReadiness returns nil once a view has been rendered, or an error
// describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	switch p.State() {
	case StateReady:
		return nil
	case StateFailed:
		return errors.New("unable to load earthquake data")
	default:
		return errors.New("pipeline has not rendered a view yet")
	}
}

// Run refreshes the view on the configured interval until the context is
// cancelled. Run drives Refresh from a single goroutine; Refresh is not safe
// for concurrent callers.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "refresh_interval", p.interval)

	backoff := initialBackoff
	for {
		err := p.Refresh(ctx)
		if ctx.Err() != nil {
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		}

		if p.interval <= 0 {
			// Polling disabled: serve this result until shutdown.
			<-ctx.Done()
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		}

		wait := p.interval
		if err != nil {
			wait = backoff
			backoff = nextBackoff(backoff, maxBackoff)
		} else {
			backoff = initialBackoff
		}

		if !p.sleepWithContext(ctx, wait) {
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		}
	}
}

// Refresh runs one fetch-build-render pass. On success the new view replaces
// the current one atomically; on failure the current view, if any, keeps
// serving and the error is returned. A pass interrupted by context
// cancellation returns the error without booking a failure.
func (p *Pipeline) Refresh(ctx context.Context) error {
	start := p.clock.Now()

	snap, err := p.fetchSnapshot(ctx)
	if err != nil {
		err = fmt.Errorf("fetch feed: %w", err)
		if ctx.Err() != nil {
			// Shutdown interrupted the fetch; not a feed failure.
			return err
		}
		return p.fail(err)
	}

	view := domain.BuildMapView(snap.Quakes)
	html, err := p.renderer.Render(view)
	if err != nil {
		return p.fail(fmt.Errorf("render view: %w", err))
	}

	p.publishNew(ctx, snap)

	p.current.Store(&RenderedView{
		SnapshotID: snap.ID,
		FetchedAt:  snap.FetchedAt,
		View:       view,
		HTML:       html,
		Raw:        snap.Raw,
	})
	p.setState(StateReady)

	p.metrics.RefreshesTotal.WithLabelValues("success").Inc()
	p.metrics.RefreshDuration.Observe(p.clock.Since(start).Seconds())
	p.metrics.QuakesRendered.Set(float64(len(snap.Quakes)))

	p.logger.Info("view refreshed",
		"snapshot_id", snap.ID,
		"quakes", len(snap.Quakes),
		"fetched_at", snap.FetchedAt,
	)
	return nil
}

// fetchSnapshot acquires the feed through the configured fetcher, which may
// serve from cache, and records acquisition metrics.
func (p *Pipeline) fetchSnapshot(ctx context.Context) (domain.FeedSnapshot, error) {
	start := p.clock.Now()
	snap, err := p.fetcher.Fetch(ctx)
	p.metrics.FeedFetchSeconds.Observe(p.clock.Since(start).Seconds())
	if err != nil {
		if ctx.Err() == nil {
			p.metrics.FeedFetches.WithLabelValues("error").Inc()
		}
		return domain.FeedSnapshot{}, err
	}
	p.metrics.FeedFetches.WithLabelValues("success").Inc()
	return snap, nil
}

// fail records a failed refresh. The pipeline only enters StateFailed when no
// view has ever been rendered; after that a failure keeps the previous view.
func (p *Pipeline) fail(err error) error {
	p.metrics.RefreshesTotal.WithLabelValues("error").Inc()
	if p.current.Load() == nil {
		p.setState(StateFailed)
		p.logger.Error("refresh failed", "error", err)
	} else {
		p.logger.Warn("refresh failed, keeping previous view", "error", err)
	}
	return err
}

// publishNew emits the quakes that were not in the previous snapshot. The
// first snapshot publishes everything. Publish failures never fail the pass;
// the unpublished quakes are retried on the next refresh.
func (p *Pipeline) publishNew(ctx context.Context, snap domain.FeedSnapshot) {
	if p.publisher == nil {
		return
	}

	fresh := snap.Quakes
	if p.seen != nil {
		fresh = make([]domain.Quake, 0, len(snap.Quakes))
		for _, q := range snap.Quakes {
			if _, ok := p.seen[q.ID]; !ok {
				fresh = append(fresh, q)
			}
		}
	}

	if err := p.publisher.PublishBatch(ctx, snap, fresh); err != nil {
		p.metrics.PublishErrors.Inc()
		p.logger.Warn("publish new quakes failed", "error", err, "count", len(fresh))
		return
	}

	p.metrics.EventsPublished.Add(float64(len(fresh)))
	p.seen = quakeIDs(snap.Quakes)
}

func (p *Pipeline) setState(s State) {
	p.state.Store(int32(s))
	p.metrics.PipelineState.Set(float64(s))
}

func (p *Pipeline) sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	select {
	case <-ctx.Done():
		return false
	case <-p.clock.After(d):
		return true
	}
}

func quakeIDs(quakes []domain.Quake) map[string]struct{} {
	ids := make(map[string]struct{}, len(quakes))
	for _, q := range quakes {
		ids[q.ID] = struct{}{}
	}
	return ids
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}
