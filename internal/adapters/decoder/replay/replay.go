// Package replay implements a scan.Decoder that plays back a scripted read sequence
// like a camera feed: frames keep coming at the stream frequency and frames that
// arrive while the decoder is paused or stopped are lost
package replay

import (
	"context"
	"sync"

	"caisse/internal/core/scan"
	perr "caisse/internal/platform/errors"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"
)

// Counters reports what the feed did with the script
type Counters struct {
	Emitted uint64 `json:"emitted"`
	Dropped uint64 `json:"dropped"`
}

// Option configures a Decoder
type Option func(*Decoder)

// WithClock sets the clock used for per line delays
func WithClock(c clockwork.Clock) Option {
	return func(d *Decoder) {
		if c != nil {
			d.clk = c
		}
	}
}

// WithLimit overrides the frame pacing derived from the stream frequency
func WithLimit(l rate.Limit) Option {
	return func(d *Decoder) { d.limit = &l }
}

// Decoder replays a fixed script
type Decoder struct {
	lines []Line
	clk   clockwork.Clock
	limit *rate.Limit

	mu        sync.Mutex
	running   bool
	feeding   bool
	cancel    context.CancelFunc
	detected  func(scan.RawDetection)
	processed func(scan.ProcessedFrame)
	counters  Counters

	started   chan struct{}
	startOnce sync.Once
	done      chan struct{}
}

var _ scan.Decoder = (*Decoder)(nil)

// New returns a decoder for lines
func New(lines []Line, opts ...Option) *Decoder {
	d := &Decoder{
		lines:   lines,
		clk:     clockwork.NewRealClock(),
		started: make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Initialize arms the feed; playback begins on the first Start and runs until the
// script runs out or ctx is canceled
func (d *Decoder) Initialize(ctx context.Context, cfg scan.StreamConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.feeding {
		return perr.Conflictf("replay already initialized")
	}

	limit := rate.Inf
	if cfg.Frequency > 0 {
		limit = rate.Limit(cfg.Frequency)
	}
	if d.limit != nil {
		limit = *d.limit
	}

	fctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.feeding = true
	go d.feed(fctx, rate.NewLimiter(limit, 1))
	return nil
}

func (d *Decoder) feed(ctx context.Context, lim *rate.Limiter) {
	defer close(d.done)
	select {
	case <-ctx.Done():
		return
	case <-d.started:
	}
	for _, ln := range d.lines {
		if ln.Delay > 0 {
			select {
			case <-ctx.Done():
				return
			case <-d.clk.After(ln.Delay):
			}
		}
		if err := lim.Wait(ctx); err != nil {
			return
		}
		d.deliver(ln)
	}
}

func (d *Decoder) deliver(ln Line) {
	d.mu.Lock()
	if !d.running {
		d.counters.Dropped++
		d.mu.Unlock()
		return
	}
	d.counters.Emitted++
	onFrame, onRead := d.processed, d.detected
	d.mu.Unlock()

	if onFrame != nil {
		onFrame(scan.ProcessedFrame{Code: ln.Detection.Value})
	}
	if onRead != nil {
		onRead(ln.Detection)
	}
}

// Start lets frames through
func (d *Decoder) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.feeding {
		return perr.Conflictf("replay not initialized")
	}
	d.running = true
	d.startOnce.Do(func() { close(d.started) })
	return nil
}

// Pause drops frames until the next Start
func (d *Decoder) Pause() error {
	d.mu.Lock()
	d.running = false
	d.mu.Unlock()
	return nil
}

// Stop drops frames until the next Start
func (d *Decoder) Stop() error { return d.Pause() }

// OnDetected implements scan.Decoder
func (d *Decoder) OnDetected(fn func(scan.RawDetection)) {
	d.mu.Lock()
	d.detected = fn
	d.mu.Unlock()
}

// OnProcessed implements scan.Decoder
func (d *Decoder) OnProcessed(fn func(scan.ProcessedFrame)) {
	d.mu.Lock()
	d.processed = fn
	d.mu.Unlock()
}

// Done is closed once the feed ends; it never closes before Initialize
func (d *Decoder) Done() <-chan struct{} { return d.done }

// Wait blocks until the feed ends or ctx is done
func (d *Decoder) Wait(ctx context.Context) error {
	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close ends the feed early
func (d *Decoder) Close() {
	d.mu.Lock()
	cancel := d.cancel
	d.running = false
	d.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Counters returns a copy of the feed counters
func (d *Decoder) Counters() Counters {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.counters
}
