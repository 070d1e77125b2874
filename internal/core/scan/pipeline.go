// Package scan turns a noisy stream of per-frame barcode reads into a low-rate stream
// of confirmed, de-duplicated scan events
//
// Per read, in order
// 1 reject while disabled, suspended, or ended
// 2 reject inside the debounce window of the last confirmation
// 3 reject values failing the symbol format
// 4 reject reads under the confidence threshold
// 5 tally the value; confirm once it reaches the required repeats and differs
// from the last confirmed value
//
// A confirmation pauses the decoder, clears the tally, hands the value to the
// consumer, and arms a cancelable resume after the cooldown window
package scan

import (
	"fmt"
	"sync"
	"time"

	perr "caisse/internal/platform/errors"
	"caisse/internal/platform/logger"

	"github.com/jonboulle/clockwork"
)

// maxCandidates bounds the tally between confirmations
// a new value arriving at the bound clears every partial tally, not just the oldest
const maxCandidates = 256

// Outcome classifies what the pipeline did with a read
type Outcome uint8

const (
	// OutcomeConfirmed means the read produced a ConfirmedEvent
	OutcomeConfirmed Outcome = iota
	// OutcomeInactive means the pipeline was disabled, suspended, or ended
	OutcomeInactive
	// OutcomeDebounced means the read fell inside the debounce window
	OutcomeDebounced
	// OutcomeMalformed means the value failed the symbol format
	OutcomeMalformed
	// OutcomeLowConfidence means the read was under the confidence threshold
	OutcomeLowConfidence
	// OutcomePending means the read was tallied but has not reached the required repeats
	OutcomePending
	// OutcomeDuplicate means the value equals the last confirmed value
	OutcomeDuplicate
)

var outcomeNames = [...]string{"confirmed", "inactive", "debounced", "malformed", "low_confidence", "pending", "duplicate"}

func (o Outcome) String() string {
	if int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return fmt.Sprintf("outcome(%d)", o)
}

// Stats counts reads per outcome over the pipeline lifetime
type Stats struct {
	Received      uint64 `json:"received"`
	Confirmed     uint64 `json:"confirmed"`
	Inactive      uint64 `json:"inactive"`
	Debounced     uint64 `json:"debounced"`
	Malformed     uint64 `json:"malformed"`
	LowConfidence uint64 `json:"low_confidence"`
	Pending       uint64 `json:"pending"`
	Duplicate     uint64 `json:"duplicate"`
}

func (s *Stats) count(o Outcome) {
	switch o {
	case OutcomeConfirmed:
		s.Confirmed++
	case OutcomeInactive:
		s.Inactive++
	case OutcomeDebounced:
		s.Debounced++
	case OutcomeMalformed:
		s.Malformed++
	case OutcomeLowConfidence:
		s.LowConfidence++
	case OutcomePending:
		s.Pending++
	case OutcomeDuplicate:
		s.Duplicate++
	}
}

// State is a read-only view of the pipeline
type State struct {
	LastConfirmedValue string    `json:"last_confirmed_value,omitempty"`
	LastConfirmedAt    time.Time `json:"last_confirmed_at,omitempty"`
	Suspended          bool      `json:"suspended"`
	Enabled            bool      `json:"enabled"`
	Ended              bool      `json:"ended"`
	Candidates         int       `json:"candidates"`
	ResumePending      bool      `json:"resume_pending"`
	DecoderError       string    `json:"decoder_error,omitempty"`
	Stats              Stats     `json:"stats"`
}

// Option mutates a Pipeline during New
type Option func(*Pipeline)

// WithClock sets the clock used for timestamps and the resume timer
func WithClock(c clockwork.Clock) Option {
	return func(p *Pipeline) {
		if c != nil {
			p.clk = c
		}
	}
}

// WithLogger sets the logger for decoder failures and consumer panics
func WithLogger(l *logger.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.log = l
		}
	}
}

// Pipeline is the scan confirmation state machine for one scanning session
// safe for use from the decoder callback goroutine and the resume timer at once
type Pipeline struct {
	mu sync.Mutex

	// idle is signaled on mu when the last running consumer call returns
	idle     *sync.Cond
	inflight int

	cfg     Config
	clk     clockwork.Clock
	log     *logger.Logger
	dec     Decoder
	consume func(ConfirmedEvent)

	tally map[string]int

	lastValue string
	lastAt    time.Time
	suspended bool
	enabled   bool
	ended     bool

	resume    clockwork.Timer
	resumeGen uint64

	lastErr string
	stats   Stats
}

// New builds an enabled pipeline driving dec and feeding consume
func New(dec Decoder, cfg Config, consume func(ConfirmedEvent), opts ...Option) *Pipeline {
	if dec == nil {
		panic("scan.Pipeline requires a non nil Decoder")
	}
	p := &Pipeline{
		cfg:     cfg.withDefaults(),
		clk:     clockwork.NewRealClock(),
		dec:     dec,
		consume: consume,
		tally:   make(map[string]int),
		enabled: true,
	}
	p.idle = sync.NewCond(&p.mu)
	for _, o := range opts {
		o(p)
	}
	if p.log == nil {
		p.log = logger.Named("scanner")
	}
	return p
}

// OnRawDetection feeds one decoder read and reports whether it was confirmed
func (p *Pipeline) OnRawDetection(d RawDetection) (ConfirmedEvent, bool) {
	ev, out := p.Process(d)
	return ev, out == OutcomeConfirmed
}

// Process feeds one decoder read and reports what happened to it
func (p *Pipeline) Process(d RawDetection) (ConfirmedEvent, Outcome) {
	p.mu.Lock()
	now := p.clk.Now()
	p.stats.Received++
	out := p.evaluate(d, now)
	p.stats.count(out)
	if out != OutcomeConfirmed {
		p.mu.Unlock()
		return ConfirmedEvent{}, out
	}

	ev := ConfirmedEvent{Value: d.Value, Timestamp: now}

	// a decoder that cannot pause keeps running, so there is nothing to resume
	paused := p.call("pause", p.dec.Pause) == nil
	p.suspended = paused
	p.lastValue = d.Value
	p.lastAt = now
	clear(p.tally)
	p.mu.Unlock()

	p.emit(ev)

	p.mu.Lock()
	p.armResume()
	p.mu.Unlock()

	return ev, OutcomeConfirmed
}

// evaluate applies the gates and the tally; caller holds mu
func (p *Pipeline) evaluate(d RawDetection, now time.Time) Outcome {
	switch {
	case p.ended || !p.enabled || p.suspended:
		return OutcomeInactive
	case !p.lastAt.IsZero() && now.Sub(p.lastAt) < p.cfg.DebounceWindow:
		return OutcomeDebounced
	case !p.cfg.Validator(d.Value):
		return OutcomeMalformed
	case !(p.confidence(d) >= p.cfg.ConfidenceThreshold):
		// NaN compares false both ways, so it lands here
		return OutcomeLowConfidence
	}

	if _, seen := p.tally[d.Value]; !seen && len(p.tally) >= maxCandidates {
		clear(p.tally)
	}
	p.tally[d.Value]++
	if p.tally[d.Value] < p.cfg.RequiredRepeats {
		return OutcomePending
	}
	if d.Value == p.lastValue {
		return OutcomeDuplicate
	}
	return OutcomeConfirmed
}

func (p *Pipeline) confidence(d RawDetection) float64 {
	if d.Confidence != nil {
		return *d.Confidence
	}
	if p.cfg.MissingConfidencePasses {
		return 1
	}
	return 0
}

// emit runs the consumer outside mu; a panicking consumer never leaves the
// decoder paused because the resume is armed after emit returns either way
func (p *Pipeline) emit(ev ConfirmedEvent) {
	p.mu.Lock()
	fn := p.consume
	if p.ended {
		fn = nil
	}
	if fn != nil {
		p.inflight++
	}
	p.mu.Unlock()
	if fn == nil {
		return
	}
	defer func() {
		p.mu.Lock()
		p.inflight--
		if p.inflight == 0 {
			p.idle.Broadcast()
		}
		p.mu.Unlock()
	}()
	defer func() {
		if r := recover(); r != nil {
			p.log.Error().Interface("panic", r).Str("value", ev.Value).Msg("scan consumer panicked")
		}
	}()
	fn(ev)
}

// armResume schedules the post-cooldown resume; caller holds mu
func (p *Pipeline) armResume() {
	if p.ended || !p.suspended {
		return
	}
	p.cancelResume()
	gen := p.resumeGen
	p.resume = p.clk.AfterFunc(p.cfg.CooldownWindow, func() { p.fireResume(gen) })
}

// cancelResume stops the pending timer and invalidates any callback already in flight; caller holds mu
func (p *Pipeline) cancelResume() {
	if p.resume != nil {
		p.resume.Stop()
		p.resume = nil
	}
	p.resumeGen++
}

func (p *Pipeline) fireResume(gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ended || gen != p.resumeGen {
		return
	}
	p.resume = nil
	if !p.enabled {
		return
	}
	p.suspended = false
	_ = p.call("start", p.dec.Start)
}

// SetEnabled is the user facing pause/resume toggle
// only transitions reach the decoder: off stops it, on starts it
func (p *Pipeline) SetEnabled(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ended || p.enabled == enabled {
		return
	}
	p.enabled = enabled
	p.suspended = false
	p.cancelResume()
	if enabled {
		_ = p.call("start", p.dec.Start)
		return
	}
	_ = p.call("stop", p.dec.Stop)
}

// enableAndStart turns scanning on and starts the decoder even when already enabled
func (p *Pipeline) enableAndStart() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ended {
		return nil
	}
	p.enabled = true
	p.suspended = false
	p.cancelResume()
	return p.call("start", p.dec.Start)
}

// EndSession stops the decoder, cancels the pending resume, and discards all state
// safe to call more than once and from inside the consumer; afterwards no new
// consumer call starts and the decoder is never called again
func (p *Pipeline) EndSession() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ended {
		return
	}
	p.ended = true
	p.cancelResume()
	_ = p.call("stop", p.dec.Stop)

	p.consume = nil
	p.tally = nil
	p.lastValue = ""
	p.lastAt = time.Time{}
	p.suspended = false
	p.enabled = false
}

// Drain blocks until no consumer call is running; calling it from the consumer deadlocks
func (p *Pipeline) Drain() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for p.inflight > 0 {
		p.idle.Wait()
	}
}

// Ended reports whether EndSession has run
func (p *Pipeline) Ended() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ended
}

// Snapshot returns a copy of the current state
func (p *Pipeline) Snapshot() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return State{
		LastConfirmedValue: p.lastValue,
		LastConfirmedAt:    p.lastAt,
		Suspended:          p.suspended,
		Enabled:            p.enabled,
		Ended:              p.ended,
		Candidates:         len(p.tally),
		ResumePending:      p.resume != nil,
		DecoderError:       p.lastErr,
		Stats:              p.stats,
	}
}

// call runs a decoder lifecycle method, downgrading errors and panics to a warning
func (p *Pipeline) call(op string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = perr.Newf(perr.ErrorCodeUnavailable, "decoder %s panicked: %v", op, r)
		}
		if err != nil {
			err = perr.WithOp(err, op)
			p.lastErr = err.Error()
			p.log.Warn().Err(err).Str("op", op).Msg("decoder call failed")
		}
	}()
	if err := fn(); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "decoder %s", op)
	}
	return nil
}

// recordErr stores a decoder failure observed outside the lifecycle calls
func (p *Pipeline) recordErr(op string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	err = perr.WithOp(perr.Wrapf(err, perr.ErrorCodeUnavailable, "decoder %s", op), op)
	p.lastErr = err.Error()
	p.log.Warn().Err(err).Str("op", op).Msg("decoder call failed")
}

// decoderCall runs a decoder method under the pipeline lock unless the session ended
func (p *Pipeline) decoderCall(op string, fn func() error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ended {
		return nil
	}
	return p.call(op, fn)
}
