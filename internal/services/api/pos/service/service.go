// Package service contains point of sale workflows
package service

import (
	"context"
	"sync"
	"time"

	"caisse/internal/core/posstate"
	"caisse/internal/modkit/repokit"
	"caisse/internal/platform/logger"
	"caisse/internal/services/api/pos/domain"
	"caisse/internal/services/api/pos/repo"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Service defines the service contract for the point of sale
type Service interface {
	domain.ServicePort
	Run(ctx context.Context) error
}

// Config tunes the simulated peripherals and inventory thresholds
type Config struct {
	LowStockDefault  int
	Currency         string
	CardLatency      time.Duration
	ConnectLatency   time.Duration
	DiscoveryLatency time.Duration
	TestLatency      time.Duration
	PrintLatency     time.Duration
	DropProbability  float64
	MonitorInterval  time.Duration
}

// DefaultConfig mirrors the retail counter setup
func DefaultConfig() Config {
	return Config{
		LowStockDefault:  posstate.DefaultMinStock,
		Currency:         "EUR",
		CardLatency:      2 * time.Second,
		ConnectLatency:   time.Second,
		DiscoveryLatency: 3 * time.Second,
		TestLatency:      time.Second,
		PrintLatency:     time.Second,
		DropProbability:  0.01,
		MonitorInterval:  5 * time.Second,
	}
}

const maxNotifications = 50

// newID mints entity ids
var newID = uuid.NewString

// Svc implements the Service interface
type Svc struct {
	db     repokit.TxRunner[posstate.State]
	binder repokit.Binder[posstate.State, repo.Repo]
	clk    clockwork.Clock
	cfg    Config
	log    *logger.Logger

	// scan and device side channels, not part of the persisted state
	mu            sync.Mutex
	lastUnmatched string
	notifications []domain.Notification
}

// New creates a new pos service
func New(db repokit.TxRunner[posstate.State], binder repokit.Binder[posstate.State, repo.Repo], clk clockwork.Clock, cfg Config) *Svc {
	if db == nil {
		panic("pos.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("pos.Service requires a non nil Repo binder")
	}
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	if cfg.LowStockDefault <= 0 {
		cfg.LowStockDefault = posstate.DefaultMinStock
	}
	return &Svc{db: db, binder: binder, clk: clk, cfg: cfg, log: logger.Named("pos")}
}

// tx runs fn against a writable repo
func (s *Svc) tx(ctx context.Context, fn func(r repo.Repo) error) error {
	return repokit.WithTx[posstate.State, repo.Repo](ctx, s.db, s.binder, fn)
}

// view runs fn against a read only repo
func (s *Svc) view(ctx context.Context, fn func(r repo.Repo) error) error {
	return repokit.WithView[posstate.State, repo.Repo](ctx, s.db, s.binder, fn)
}

// snapshot returns the committed state
func (s *Svc) snapshot(ctx context.Context) (posstate.State, error) {
	var st posstate.State
	err := s.view(ctx, func(r repo.Repo) error {
		st = r.State()
		return nil
	})
	return st, err
}

// wait blocks for d on the service clock
func (s *Svc) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.clk.After(d):
		return nil
	}
}

// Stats summarizes the inventory
func (s *Svc) Stats(ctx context.Context) (posstate.InventoryStats, error) {
	st, err := s.snapshot(ctx)
	if err != nil {
		return posstate.InventoryStats{}, err
	}
	return posstate.Stats(st, s.cfg.LowStockDefault), nil
}
