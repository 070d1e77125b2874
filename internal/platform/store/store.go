// Package store provides the in-process state backend
// state lives in memory for the lifetime of the process; writers take turns under an
// exclusive lock and work on a staged copy that is only published when they succeed
package store

import (
	"context"
	"sync"

	perr "caisse/internal/platform/errors"
	"caisse/internal/platform/logger"

	"github.com/rs/zerolog"
)

// Cell is the read and write surface repos bind to
type Cell[S any] interface {
	Load() S
	Store(S) error
}

// TxRunner runs functions against a state cell
// Tx publishes the staged state only when fn returns nil; View gets a read only cell
type TxRunner[S any] interface {
	Tx(ctx context.Context, fn func(c Cell[S]) error) error
	View(ctx context.Context, fn func(c Cell[S]) error) error
}

// Pinger is any seam that can report readiness
type Pinger interface{ Ping(context.Context) error }

// CommitHook observes a published state change; it runs after the lock is released
type CommitHook[S any] func(prev, next S, version uint64)

// Memory is a TxRunner over a single in-memory value
type Memory[S any] struct {
	mu      sync.RWMutex
	state   S
	version uint64
	closed  bool

	name  string
	log   logger.Logger
	hooks []CommitHook[S]
}

var _ TxRunner[int] = (*Memory[int])(nil)

// NewMemory returns a store holding initial
func NewMemory[S any](initial S, opts ...Option[S]) *Memory[S] {
	m := &Memory[S]{state: initial, name: "memory", log: zerolog.Nop()}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Tx runs fn on a staged cell and publishes the result if fn succeeds and ctx is
// still live
func (m *Memory[S]) Tx(ctx context.Context, fn func(c Cell[S]) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return perr.Unavailablef("%s store is closed", m.name)
	}
	prev := m.state
	staged := &stagedCell[S]{state: prev}
	if err := m.run(fn, staged); err != nil {
		m.mu.Unlock()
		return err
	}
	if err := ctx.Err(); err != nil {
		m.mu.Unlock()
		return err
	}
	if !staged.dirty {
		m.mu.Unlock()
		return nil
	}
	m.state = staged.state
	m.version++
	version := m.version
	hooks := m.hooks
	m.mu.Unlock()

	for _, h := range hooks {
		h(prev, staged.state, version)
	}
	return nil
}

// View runs fn on a read only cell
func (m *Memory[S]) View(ctx context.Context, fn func(c Cell[S]) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return perr.Unavailablef("%s store is closed", m.name)
	}
	return m.run(fn, readCell[S]{state: m.state})
}

// run calls fn, turning a panic into an error so the lock is always released
func (m *Memory[S]) run(fn func(c Cell[S]) error, c Cell[S]) (err error) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error().Interface("panic", r).Str("store", m.name).Msg("store fn panicked")
			err = perr.PanicErrf("%s store: %v", m.name, r)
		}
	}()
	return fn(c)
}

// Snapshot returns the published state and its version
func (m *Memory[S]) Snapshot() (S, uint64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state, m.version
}

// Ping reports readiness
func (m *Memory[S]) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return perr.Unavailablef("%s store is closed", m.name)
	}
	return nil
}

// Close rejects further transactions
func (m *Memory[S]) Close(context.Context) error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

type stagedCell[S any] struct {
	state S
	dirty bool
}

func (c *stagedCell[S]) Load() S { return c.state }

func (c *stagedCell[S]) Store(s S) error {
	c.state = s
	c.dirty = true
	return nil
}

type readCell[S any] struct{ state S }

func (c readCell[S]) Load() S { return c.state }

func (readCell[S]) Store(S) error { return perr.Conflictf("store is read only in View") }
