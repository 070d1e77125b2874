// Package service runs scanning sessions and hands confirmed values to the cart
package service

import (
	"context"
	"sync"
	"time"

	"caisse/internal/adapters/decoder/push"
	"caisse/internal/core/scan"
	perr "caisse/internal/platform/errors"
	"caisse/internal/platform/logger"
	"caisse/internal/services/api/scanner/domain"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Service defines the service contract for scanning
type Service interface {
	domain.ServicePort
	Shutdown(ctx context.Context) error
}

// Config tunes the pipeline and the stream handed to clients
type Config struct {
	Pipeline scan.Config
	Stream   scan.StreamConfig
	// History bounds the confirmed scans kept per session
	History int
	// ConsumeTimeout bounds one hand-off to the consumer
	ConsumeTimeout time.Duration
}

// DefaultConfig is the live retail setup
func DefaultConfig() Config {
	return Config{
		Pipeline:       scan.DefaultConfig(),
		Stream:         scan.DefaultStreamConfig(),
		History:        20,
		ConsumeTimeout: 5 * time.Second,
	}
}

var newID = uuid.NewString

// Svc implements the Service interface
// at most one session is active; opening a second one is a conflict
type Svc struct {
	mu       sync.Mutex
	active   *session
	cfg      Config
	clk      clockwork.Clock
	log      *logger.Logger
	consumer domain.ConsumerPort
}

// New creates a scanner service; consumer may be nil when confirmed scans only
// need to be recorded
func New(cfg Config, consumer domain.ConsumerPort, clk clockwork.Clock) *Svc {
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	if cfg.History <= 0 {
		cfg.History = 20
	}
	if cfg.ConsumeTimeout <= 0 {
		cfg.ConsumeTimeout = 5 * time.Second
	}
	return &Svc{cfg: cfg, clk: clk, log: logger.Named("scanner"), consumer: consumer}
}

// Open starts a session over a push decoder
// a decoder failure is kept in the session state; the session stays usable
func (s *Svc) Open(ctx context.Context, in domain.OpenInput) (domain.Session, error) {
	s.mu.Lock()
	if s.active != nil {
		id := s.active.id
		s.mu.Unlock()
		return domain.Session{}, perr.WithField(perr.Conflictf("scanning session %s is already active", id), "session")
	}

	stream := s.cfg.Stream
	if len(in.Readers) > 0 {
		stream.Readers = append([]string(nil), in.Readers...)
	}
	ss := &session{
		id:       newID(),
		openedAt: s.clk.Now().UTC(),
		dec:      push.New(),
		history:  s.cfg.History,
	}
	log := s.log.With().Str("session_id", ss.id).Logger()
	ss.sess = scan.NewSession(ss.dec, scan.SessionConfig{
		ID:          ss.id,
		Pipeline:    s.cfg.Pipeline,
		Stream:      stream,
		OnConfirmed: func(ev scan.ConfirmedEvent) { s.consume(ss, ev) },
		OnFrame:     ss.setFrame,
	}, scan.WithClock(s.clk), scan.WithLogger(&log))
	s.active = ss
	s.mu.Unlock()

	if err := ss.sess.Open(ctx); err != nil {
		log.Warn().Err(err).Str("op", "open").Msg("decoder failed to start")
	}
	log.Info().Strs("readers", stream.Readers).Msg("scanning session opened")
	return ss.view(), nil
}

// consume hands a confirmed value to the consumer and records the outcome
func (s *Svc) consume(ss *session, ev scan.ConfirmedEvent) {
	var res domain.ConsumerResult
	if s.consumer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ConsumeTimeout)
		r, err := s.consumer.Consume(ctx, ev)
		cancel()
		res = r
		if err != nil {
			res.Error = err.Error()
			s.log.Error().Err(err).Str("session_id", ss.id).Str("value", ev.Value).Msg("scan consumer failed")
		}
	}
	ss.record(ev, res)
	s.log.Info().Str("session_id", ss.id).Str("value", ev.Value).Bool("matched", res.Matched).Msg("scan confirmed")
}

// lookup returns the active session when its id is id
func (s *Svc) lookup(ctx context.Context, id string) (*session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil || s.active.id != id {
		return nil, perr.NotFoundf("scanning session %s not found", id)
	}
	return s.active, nil
}

// Current returns the active session
func (s *Svc) Current(ctx context.Context) (domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return domain.Session{}, err
	}
	s.mu.Lock()
	ss := s.active
	s.mu.Unlock()
	if ss == nil {
		return domain.Session{}, perr.NotFoundf("no active scanning session")
	}
	return ss.view(), nil
}

// Status returns the session with id
func (s *Svc) Status(ctx context.Context, id string) (domain.Session, error) {
	ss, err := s.lookup(ctx, id)
	if err != nil {
		return domain.Session{}, err
	}
	return ss.view(), nil
}

// Detect pushes one raw read through the session decoder
func (s *Svc) Detect(ctx context.Context, id string, in domain.DetectionInput) (domain.DetectionResult, error) {
	ss, err := s.lookup(ctx, id)
	if err != nil {
		return domain.DetectionResult{}, err
	}
	before := ss.seq()
	delivered := ss.dec.Push(in.Detection())
	out := domain.DetectionResult{Delivered: delivered, State: ss.sess.Snapshot()}
	if last := ss.last(); last != nil && last.Seq > before {
		out.Confirmed = last
	}
	return out, nil
}

// Frame pushes overlay geometry; it reports whether the decoder took it
func (s *Svc) Frame(ctx context.Context, id string, in domain.FrameInput) (bool, error) {
	ss, err := s.lookup(ctx, id)
	if err != nil {
		return false, err
	}
	return ss.dec.PushFrame(scan.ProcessedFrame{Box: in.Box, Boxes: in.Boxes, Code: in.Code}), nil
}

// SetEnabled toggles scanning for the session
func (s *Svc) SetEnabled(ctx context.Context, id string, enabled bool) (domain.Session, error) {
	ss, err := s.lookup(ctx, id)
	if err != nil {
		return domain.Session{}, err
	}
	ss.sess.SetEnabled(enabled)
	return ss.view(), nil
}

// Confirmed returns the confirmed scans of the session, oldest first
func (s *Svc) Confirmed(ctx context.Context, id string) ([]domain.ConfirmedScan, error) {
	ss, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	return ss.confirmed(), nil
}

// Close ends the session; its pending resume is canceled and the decoder stopped
func (s *Svc) Close(ctx context.Context, id string) error {
	ss, err := s.lookup(ctx, id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	if s.active == ss {
		s.active = nil
	}
	s.mu.Unlock()
	ss.sess.Close()
	s.log.Info().Str("session_id", id).Msg("scanning session closed")
	return nil
}

// Stream returns the stream config clients should run their decoder with
func (s *Svc) Stream(ctx context.Context) (scan.StreamConfig, error) {
	if err := ctx.Err(); err != nil {
		return scan.StreamConfig{}, err
	}
	return s.cfg.Stream, nil
}

// Shutdown closes the active session, if any
func (s *Svc) Shutdown(_ context.Context) error {
	s.mu.Lock()
	ss := s.active
	s.active = nil
	s.mu.Unlock()
	if ss != nil {
		ss.sess.Close()
	}
	return nil
}
