package modkit

import (
	"caisse/internal/core/posstate"
	"caisse/internal/modkit/repokit"
	"caisse/internal/platform/config"

	"github.com/jonboulle/clockwork"
)

// Deps is what api.Mount shares with every module; each field may be zero
type Deps struct {
	Cfg   config.Conf
	Clock clockwork.Clock
	// POS is the shared state store; pos falls back to a private one when nil
	POS repokit.TxRunner[posstate.State]
}

// ClockOrReal returns the injected clock or the wall clock
func (d Deps) ClockOrReal() clockwork.Clock {
	if d.Clock != nil {
		return d.Clock
	}
	return clockwork.NewRealClock()
}
