// Package repokit binds domain repos to a state store for the length of one
// transaction or view
package repokit

import (
	"context"
	"fmt"
	"time"

	"caisse/internal/platform/store"
)

type (
	// Queryer is the cell a repo reads and stages writes through
	Queryer[S any] = store.Cell[S]
	// TxRunner runs read write and read only callbacks against the state
	TxRunner[S any] = store.TxRunner[S]
)

// Binder makes a T over one transaction's cell
type Binder[S, T any] interface {
	Bind(Queryer[S]) T
}

// BindFunc is a Binder from a plain constructor
type BindFunc[S, T any] func(Queryer[S]) T

// Bind implements Binder
func (f BindFunc[S, T]) Bind(q Queryer[S]) T { return f(q) }

func bind[S, T any](b Binder[S, T], q Queryer[S]) T {
	if q == nil {
		panic("repokit: bind on a nil cell")
	}
	return b.Bind(q)
}

// WithTx runs fn on a repo bound to a transaction; a returned error discards its writes
func WithTx[S, T any](ctx context.Context, tx TxRunner[S], b Binder[S, T], fn func(r T) error) error {
	return tx.Tx(ctx, func(q Queryer[S]) error { return fn(bind(b, q)) })
}

// WithView runs fn on a repo bound to a read only view
func WithView[S, T any](ctx context.Context, tx TxRunner[S], b Binder[S, T], fn func(r T) error) error {
	return tx.View(ctx, func(q Queryer[S]) error { return fn(bind(b, q)) })
}

// Pinger is a dependency that can report it is up
type Pinger interface {
	Ping(ctx context.Context) error
}

// MustPing panics when p is nil or does not answer; without a deadline on ctx it waits 5s
func MustPing(ctx context.Context, name string, p Pinger) {
	if p == nil {
		panic(fmt.Sprintf("repokit: %s is nil", name))
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}
	if err := p.Ping(ctx); err != nil {
		panic(fmt.Sprintf("repokit: %s ping: %v", name, err))
	}
}
