package modkit

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func TestClockOrReal(t *testing.T) {
	var d Deps
	if d.ClockOrReal() == nil {
		t.Fatal("zero Deps must fall back to the wall clock")
	}

	clk := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	d.Clock = clk
	if d.ClockOrReal() != clockwork.Clock(clk) {
		t.Fatal("injected clock should win")
	}
}
