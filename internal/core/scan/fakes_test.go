package scan

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// fakeDecoder records lifecycle calls and lets tests inject reads
type fakeDecoder struct {
	mu        sync.Mutex
	calls     []string
	failOn    map[string]error
	panicOn   map[string]bool
	detected  func(RawDetection)
	processed func(ProcessedFrame)
	started   chan struct{}
}

func newFakeDecoder() *fakeDecoder {
	return &fakeDecoder{
		failOn:  map[string]error{},
		panicOn: map[string]bool{},
		started: make(chan struct{}, 64),
	}
}

func (f *fakeDecoder) record(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, op)
	if f.panicOn[op] {
		panic(op + " exploded")
	}
	return f.failOn[op]
}

func (f *fakeDecoder) Initialize(_ context.Context, _ StreamConfig) error { return f.record("initialize") }

func (f *fakeDecoder) Start() error {
	err := f.record("start")
	select {
	case f.started <- struct{}{}:
	default:
	}
	return err
}

func (f *fakeDecoder) Stop() error  { return f.record("stop") }
func (f *fakeDecoder) Pause() error { return f.record("pause") }

func (f *fakeDecoder) OnDetected(fn func(RawDetection)) {
	f.mu.Lock()
	f.detected = fn
	f.mu.Unlock()
}

func (f *fakeDecoder) OnProcessed(fn func(ProcessedFrame)) {
	f.mu.Lock()
	f.processed = fn
	f.mu.Unlock()
}

func (f *fakeDecoder) fail(op string, err error) {
	f.mu.Lock()
	f.failOn[op] = err
	f.mu.Unlock()
}

func (f *fakeDecoder) emit(d RawDetection) {
	f.mu.Lock()
	fn := f.detected
	f.mu.Unlock()
	if fn != nil {
		fn(d)
	}
}

func (f *fakeDecoder) frame(p ProcessedFrame) {
	f.mu.Lock()
	fn := f.processed
	f.mu.Unlock()
	if fn != nil {
		fn(p)
	}
}

func (f *fakeDecoder) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == op {
			n++
		}
	}
	return n
}

func (f *fakeDecoder) history() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// waitStart blocks until the decoder saw a Start call
func (f *fakeDecoder) waitStart(t *testing.T) {
	t.Helper()
	select {
	case <-f.started:
	case <-time.After(2 * time.Second):
		t.Fatalf("decoder was never resumed, calls=%v", f.history())
	}
}

// assertNoStart fails when a Start call shows up within a short grace period
func (f *fakeDecoder) assertNoStart(t *testing.T) {
	t.Helper()
	select {
	case <-f.started:
		t.Fatalf("unexpected decoder start, calls=%v", f.history())
	case <-time.After(50 * time.Millisecond):
	}
}

// sink collects confirmed events
type sink struct {
	mu     sync.Mutex
	events []ConfirmedEvent
}

func (s *sink) consume(ev ConfirmedEvent) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
}

func (s *sink) values() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.Value)
	}
	return out
}

func quietLogger() Option {
	l := zerolog.Nop()
	return WithLogger(&l)
}

type harness struct {
	p   *Pipeline
	dec *fakeDecoder
	clk *clockwork.FakeClock
	out *sink
}

func newHarness(t *testing.T, cfg Config) harness {
	t.Helper()
	dec := newFakeDecoder()
	clk := clockwork.NewFakeClock()
	out := &sink{}
	p := New(dec, cfg, out.consume, WithClock(clk), quietLogger())
	t.Cleanup(p.EndSession)
	return harness{p: p, dec: dec, clk: clk, out: out}
}

// feed pushes a read and returns its outcome
func (h harness) feed(value string, conf float64) Outcome {
	_, out := h.p.Process(RawDetection{Value: value, Confidence: Conf(conf)})
	return out
}

// cool advances past the cooldown and waits for the decoder to resume
func (h harness) cool(t *testing.T, d time.Duration) {
	t.Helper()
	h.clk.Advance(d)
	h.dec.waitStart(t)
}
