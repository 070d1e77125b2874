// Command caisse-replay plays a scripted decoder feed through the scan
// confirmation pipeline and logs every confirmed scan
package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"

	"caisse/internal/adapters/decoder/replay"
	"caisse/internal/core/scan"
	"caisse/internal/platform/config"
	"caisse/internal/platform/logger"

	scannermod "caisse/internal/services/api/scanner/module"

	"github.com/google/uuid"
)

func main() {
	var (
		script  = flag.String("script", "-", "replay script path, - for stdin")
		repeats = flag.Int("repeats", 0, "override required repeats (0 keeps config)")
	)
	flag.Parse()

	logger.Init(logger.FromEnv())
	l := logger.Named("replay")

	// pipeline tuning comes from the same CORE_SCANNER_ keys as the api
	opts := scannermod.FromConfig(config.New())
	if *repeats > 0 {
		opts.RequiredRepeats = *repeats
	}
	if err := opts.Validate(); err != nil {
		l.Fatal().Err(err).Msg("invalid scanner config")
	}

	lines, err := readScript(*script)
	if err != nil {
		l.Fatal().Err(err).Str("script", *script).Msg("read script failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dec := replay.New(lines)
	sess := scan.NewSession(dec, scan.SessionConfig{
		ID:       uuid.NewString(),
		Pipeline: opts.Pipeline(),
		Stream:   opts.Stream(),
		OnConfirmed: func(ev scan.ConfirmedEvent) {
			l.Info().Str("value", ev.Value).Time("at", ev.Timestamp).Msg("confirmed")
		},
	}, scan.WithLogger(l))

	if err := sess.Open(ctx); err != nil {
		l.Fatal().Err(err).Msg("open session failed")
	}
	if err := dec.Wait(ctx); err != nil {
		l.Warn().Err(err).Msg("replay interrupted")
	}
	sess.Close()
	dec.Close()

	st := sess.Snapshot()
	c := dec.Counters()
	l.Info().
		Int("lines", len(lines)).
		Uint64("emitted", c.Emitted).
		Uint64("dropped", c.Dropped).
		Uint64("confirmed", st.Stats.Confirmed).
		Uint64("duplicate", st.Stats.Duplicate).
		Uint64("low_confidence", st.Stats.LowConfidence).
		Uint64("malformed", st.Stats.Malformed).
		Uint64("debounced", st.Stats.Debounced).
		Msg("replay done")
}

func readScript(path string) ([]replay.Line, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	return replay.Parse(r)
}
