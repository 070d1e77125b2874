package scan

import (
	"context"
	"sync"

	perr "caisse/internal/platform/errors"
)

// SessionConfig describes one mount of a scanning surface
type SessionConfig struct {
	ID          string
	Pipeline    Config
	Stream      StreamConfig
	OnConfirmed func(ConfirmedEvent)
	// OnFrame receives overlay geometry, nil drops it
	OnFrame func(ProcessedFrame)
}

// Session binds a decoder to a fresh pipeline for the lifetime of one scanning surface
type Session struct {
	id     string
	dec    Decoder
	pipe   *Pipeline
	stream StreamConfig

	frameMu sync.Mutex
	onFrame func(ProcessedFrame)

	initMu     sync.Mutex
	needsStart bool

	closeOnce sync.Once
}

// NewSession wires dec to a new pipeline; nothing touches the decoder until Open
func NewSession(dec Decoder, sc SessionConfig, opts ...Option) *Session {
	return &Session{
		id:      sc.ID,
		dec:     dec,
		pipe:    New(dec, sc.Pipeline, sc.OnConfirmed, opts...),
		stream:  sc.Stream,
		onFrame: sc.OnFrame,
	}
}

// ID returns the session id
func (s *Session) ID() string { return s.id }

// Pipeline exposes the confirmation pipeline, mainly for the enable toggle and status
func (s *Session) Pipeline() *Pipeline { return s.pipe }

// Open registers callbacks, initializes the decoder, and starts it
// a failing initialize is logged and returned but the session stays usable:
// the next SetEnabled(true) runs initialize and start again
func (s *Session) Open(ctx context.Context) error {
	s.dec.OnDetected(s.handleDetection)
	s.dec.OnProcessed(s.handleFrame)

	s.initMu.Lock()
	defer s.initMu.Unlock()
	if err := s.initialize(ctx); err != nil {
		s.needsStart = true
		s.pipe.recordErr("initialize", err)
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "decoder initialize")
	}
	s.needsStart = false
	return s.pipe.decoderCall("start", s.dec.Start)
}

// reopen retries a failed Open; it reports false while the decoder is still unusable
func (s *Session) reopen(ctx context.Context) bool {
	s.initMu.Lock()
	defer s.initMu.Unlock()
	if !s.needsStart || s.pipe.Ended() {
		return false
	}
	if err := s.initialize(ctx); err != nil {
		s.pipe.recordErr("initialize", err)
		return false
	}
	s.needsStart = false
	_ = s.pipe.enableAndStart()
	return true
}

func (s *Session) initialize(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = perr.Newf(perr.ErrorCodeUnavailable, "decoder initialize panicked: %v", r)
		}
	}()
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.dec.Initialize(ctx, s.stream)
}

func (s *Session) handleDetection(d RawDetection) {
	s.pipe.Process(d)
}

func (s *Session) handleFrame(f ProcessedFrame) {
	s.frameMu.Lock()
	fn := s.onFrame
	s.frameMu.Unlock()
	if fn != nil {
		fn(f)
	}
}

// SetEnabled toggles scanning for this session
func (s *Session) SetEnabled(enabled bool) {
	if enabled && s.reopen(context.Background()) {
		return
	}
	s.pipe.SetEnabled(enabled)
}

// Snapshot returns the pipeline state
func (s *Session) Snapshot() State { return s.pipe.Snapshot() }

// Close ends the session on any exit path and returns once a running
// OnConfirmed call has finished; safe to call more than once, never from OnConfirmed
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.frameMu.Lock()
		s.onFrame = nil
		s.frameMu.Unlock()
		s.pipe.EndSession()
	})
	s.pipe.Drain()
}
