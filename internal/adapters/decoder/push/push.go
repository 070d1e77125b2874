// Package push implements a scan.Decoder fed by an external client
// the mobile web client runs the camera decoder and posts each raw read; this adapter
// applies the lifecycle the pipeline expects so reads posted while paused or stopped
// never reach it
package push

import (
	"context"
	"sync"

	"caisse/internal/core/scan"
	perr "caisse/internal/platform/errors"
)

type phase uint8

const (
	phaseIdle phase = iota
	phaseReady
	phaseRunning
	phasePaused
	phaseStopped
)

var phaseNames = [...]string{"idle", "ready", "running", "paused", "stopped"}

func (p phase) String() string { return phaseNames[p] }

// Counters reports what happened to pushed reads
type Counters struct {
	Delivered uint64 `json:"delivered"`
	Dropped   uint64 `json:"dropped"`
	Frames    uint64 `json:"frames"`
}

// Decoder is a client driven scan.Decoder
type Decoder struct {
	mu        sync.Mutex
	phase     phase
	stream    scan.StreamConfig
	detected  func(scan.RawDetection)
	processed func(scan.ProcessedFrame)
	counters  Counters
}

var _ scan.Decoder = (*Decoder)(nil)

// New returns an idle decoder
func New() *Decoder { return &Decoder{} }

// Initialize records the stream config the client should use
func (d *Decoder) Initialize(ctx context.Context, cfg scan.StreamConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.phase == phaseRunning {
		return perr.Conflictf("decoder already running")
	}
	d.stream = cfg
	d.phase = phaseReady
	return nil
}

// Start opens the gate for pushed reads
func (d *Decoder) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.phase == phaseIdle {
		return perr.Conflictf("decoder not initialized")
	}
	d.phase = phaseRunning
	return nil
}

// Pause drops reads until the next Start
func (d *Decoder) Pause() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.phase != phaseRunning {
		return perr.Conflictf("decoder is %s", d.phase)
	}
	d.phase = phasePaused
	return nil
}

// Stop drops reads until the next Start
func (d *Decoder) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.phase != phaseIdle {
		d.phase = phaseStopped
	}
	return nil
}

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

// Push forwards one read and reports whether it was delivered
func (d *Decoder) Push(r scan.RawDetection) bool {
	d.mu.Lock()
	fn := d.detected
	if d.phase != phaseRunning || fn == nil {
		d.counters.Dropped++
		d.mu.Unlock()
		return false
	}
	d.counters.Delivered++
	d.mu.Unlock()

	fn(r)
	return true
}

// PushFrame forwards overlay geometry while running
func (d *Decoder) PushFrame(f scan.ProcessedFrame) bool {
	d.mu.Lock()
	fn := d.processed
	if d.phase != phaseRunning || fn == nil {
		d.mu.Unlock()
		return false
	}
	d.counters.Frames++
	d.mu.Unlock()

	fn(f)
	return true
}

// Running reports whether pushed reads are currently delivered
func (d *Decoder) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.phase == phaseRunning
}

// Phase returns the lifecycle phase name
func (d *Decoder) Phase() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.phase.String()
}

// Stream returns the stream config handed over by Initialize
func (d *Decoder) Stream() scan.StreamConfig {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stream
}

// Counters returns a copy of the delivery counters
func (d *Decoder) Counters() Counters {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.counters
}
