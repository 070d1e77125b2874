package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	perr "caisse/internal/platform/errors"
	"caisse/internal/platform/testkit"

	"github.com/rs/zerolog"
)

func TestTx_CommitsOnSuccess(t *testing.T) {
	t.Parallel()

	m := NewMemory(1)
	err := m.Tx(context.Background(), func(c Cell[int]) error {
		return c.Store(c.Load() + 1)
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}
	v, ver := m.Snapshot()
	if v != 2 || ver != 1 {
		t.Fatalf("state=%d version=%d", v, ver)
	}
}

func TestTx_RollsBackOnError(t *testing.T) {
	t.Parallel()

	m := NewMemory("a")
	boom := errors.New("boom")
	err := m.Tx(context.Background(), func(c Cell[string]) error {
		_ = c.Store("b")
		if c.Load() != "b" {
			t.Fatalf("staged write should be visible inside the tx")
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if v, ver := m.Snapshot(); v != "a" || ver != 0 {
		t.Fatalf("state=%q version=%d", v, ver)
	}
}

func TestTx_NoWriteKeepsVersion(t *testing.T) {
	t.Parallel()

	m := NewMemory(7)
	_ = m.Tx(context.Background(), func(c Cell[int]) error { _ = c.Load(); return nil })
	if _, ver := m.Snapshot(); ver != 0 {
		t.Fatalf("read only tx bumped version to %d", ver)
	}
}

func TestTx_PanicBecomesError(t *testing.T) {
	t.Parallel()

	m := NewMemory(0, WithLogger[int](zerolog.Nop()), WithName[int]("pos"))
	var err error
	testkit.MustNotPanic(t, func() {
		err = m.Tx(context.Background(), func(c Cell[int]) error {
			_ = c.Store(9)
			panic("kaboom")
		})
	})
	if perr.CodeOf(err) != perr.ErrorCodePanic {
		t.Fatalf("code = %v", perr.CodeOf(err))
	}
	testkit.MustContain(t, err.Error(), "pos store")
	if v, _ := m.Snapshot(); v != 0 {
		t.Fatalf("panicking tx must not publish, state=%d", v)
	}
	// lock was released
	if err := m.Tx(context.Background(), func(c Cell[int]) error { return c.Store(1) }); err != nil {
		t.Fatalf("tx after panic: %v", err)
	}
}

func TestTx_CanceledContext(t *testing.T) {
	t.Parallel()

	m := NewMemory(0)
	ctx, cancel := context.WithCancel(context.Background())
	err := m.Tx(ctx, func(c Cell[int]) error {
		cancel()
		return c.Store(5)
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	if v, _ := m.Snapshot(); v != 0 {
		t.Fatalf("canceled tx must not publish")
	}
	if err := m.View(ctx, func(Cell[int]) error { return nil }); !errors.Is(err, context.Canceled) {
		t.Fatalf("view err = %v", err)
	}
}

func TestView_IsReadOnly(t *testing.T) {
	t.Parallel()

	m := NewMemory(3)
	err := m.View(context.Background(), func(c Cell[int]) error {
		if c.Load() != 3 {
			t.Fatalf("load = %d", c.Load())
		}
		return c.Store(4)
	})
	if perr.CodeOf(err) != perr.ErrorCodeConflict {
		t.Fatalf("code = %v", perr.CodeOf(err))
	}
}

func TestCommitHook_SeesPrevAndNext(t *testing.T) {
	t.Parallel()

	var got [][3]int
	m := NewMemory(1, WithCommitHook[int](func(prev, next int, ver uint64) {
		got = append(got, [3]int{prev, next, int(ver)})
	}))
	_ = m.Tx(context.Background(), func(c Cell[int]) error { return c.Store(2) })
	_ = m.Tx(context.Background(), func(c Cell[int]) error { return errors.New("no") })
	_ = m.Tx(context.Background(), func(c Cell[int]) error { return c.Store(3) })
	if len(got) != 2 || got[0] != [3]int{1, 2, 1} || got[1] != [3]int{2, 3, 2} {
		t.Fatalf("hooks = %v", got)
	}
}

func TestClose_RejectsWork(t *testing.T) {
	t.Parallel()

	m := NewMemory(0)
	if err := m.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	_ = m.Close(context.Background())
	if err := m.Ping(context.Background()); perr.CodeOf(err) != perr.ErrorCodeUnavailable {
		t.Fatalf("ping after close = %v", err)
	}
	if err := m.Tx(context.Background(), func(Cell[int]) error { return nil }); err == nil {
		t.Fatalf("tx after close should fail")
	}
}

func TestTx_SerializesWriters(t *testing.T) {
	t.Parallel()

	m := NewMemory(0)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.Tx(context.Background(), func(c Cell[int]) error { return c.Store(c.Load() + 1) })
		}()
	}
	wg.Wait()
	if v, ver := m.Snapshot(); v != 50 || ver != 50 {
		t.Fatalf("state=%d version=%d", v, ver)
	}
}
