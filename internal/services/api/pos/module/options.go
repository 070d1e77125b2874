package module

import (
	"time"

	"caisse/internal/core/posstate"
	"caisse/internal/platform/config"
	possvc "caisse/internal/services/api/pos/service"
)

// Options controls the point of sale service
type Options struct {
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

// FromConfig reads with CORE_POS_ prefix
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("CORE_POS_")
	d := possvc.DefaultConfig()
	return Options{
		LowStockDefault:  c.MayInt("LOW_STOCK_DEFAULT", posstate.DefaultMinStock),
		Currency:         c.MayString("CURRENCY", d.Currency),
		CardLatency:      c.MayDuration("CARD_LATENCY", d.CardLatency),
		ConnectLatency:   c.MayDuration("CONNECT_LATENCY", d.ConnectLatency),
		DiscoveryLatency: c.MayDuration("DISCOVERY_LATENCY", d.DiscoveryLatency),
		TestLatency:      c.MayDuration("TEST_LATENCY", d.TestLatency),
		PrintLatency:     c.MayDuration("PRINT_LATENCY", d.PrintLatency),
		DropProbability:  c.MayFloat64("DROP_PROBABILITY", d.DropProbability),
		MonitorInterval:  c.MayDuration("MONITOR_INTERVAL", d.MonitorInterval),
	}
}

func (o Options) service() possvc.Config {
	return possvc.Config{
		LowStockDefault:  o.LowStockDefault,
		Currency:         o.Currency,
		CardLatency:      o.CardLatency,
		ConnectLatency:   o.ConnectLatency,
		DiscoveryLatency: o.DiscoveryLatency,
		TestLatency:      o.TestLatency,
		PrintLatency:     o.PrintLatency,
		DropProbability:  o.DropProbability,
		MonitorInterval:  o.MonitorInterval,
	}
}
