package module

import (
	"time"

	"caisse/internal/core/scan"
	"caisse/internal/platform/config"
	perr "caisse/internal/platform/errors"
	"caisse/internal/platform/net/http/bind"
	scannersvc "caisse/internal/services/api/scanner/service"
)

// Options controls the confirmation pipeline and the client stream
type Options struct {
	ConfidenceThreshold     float64       `json:"confidence_threshold" validate:"gte=0,lte=1"`
	RequiredRepeats         int           `json:"required_repeats" validate:"min=1,max=10"`
	DebounceWindow          time.Duration `json:"debounce_window" validate:"min=0"`
	CooldownWindow          time.Duration `json:"cooldown_window" validate:"min=0"`
	MinDigits               int           `json:"min_digits" validate:"min=1,max=64"`
	MaxDigits               int           `json:"max_digits" validate:"min=1,max=64,gtefield=MinDigits"`
	MissingConfidencePasses bool          `json:"missing_confidence_passes"`

	FrameRate  int      `json:"frame_rate" validate:"min=1,max=120"`
	Frequency  int      `json:"frequency" validate:"min=1,max=60"`
	Readers    []string `json:"readers" validate:"min=1,dive,required"`
	Workers    int      `json:"workers" validate:"min=0,max=16"`
	PatchSize  string   `json:"patch_size" validate:"oneof=x-small small medium large x-large"`
	HalfSample bool     `json:"half_sample"`

	History int `json:"history" validate:"min=1,max=1000"`
}

// FromConfig reads with CORE_SCANNER_ prefix
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("CORE_SCANNER_")
	p := scan.DefaultConfig()
	st := scan.DefaultStreamConfig()
	return Options{
		ConfidenceThreshold:     c.MayFloat64("CONFIDENCE_THRESHOLD", p.ConfidenceThreshold),
		RequiredRepeats:         c.MayInt("REQUIRED_REPEATS", p.RequiredRepeats),
		DebounceWindow:          c.MayDuration("DEBOUNCE_WINDOW", p.DebounceWindow),
		CooldownWindow:          c.MayDuration("COOLDOWN_WINDOW", p.CooldownWindow),
		MinDigits:               c.MayInt("MIN_DIGITS", 8),
		MaxDigits:               c.MayInt("MAX_DIGITS", 13),
		MissingConfidencePasses: c.MayBool("MISSING_CONFIDENCE_PASSES", false),
		FrameRate:               c.MayInt("FRAME_RATE", st.FrameRate.Ideal),
		Frequency:               c.MayInt("FREQUENCY", st.Frequency),
		Readers:                 c.MayCSV("READERS", st.Readers),
		Workers:                 c.MayInt("WORKERS", st.Workers),
		PatchSize:               c.MayEnum("PATCH_SIZE", st.PatchSize, "x-small", "small", "medium", "large", "x-large"),
		HalfSample:              c.MayBool("HALF_SAMPLE", st.HalfSample),
		History:                 c.MayInt("HISTORY", 20),
	}
}

// Validate checks the options with the shared validator
func (o Options) Validate() error {
	return perr.WithOp(bind.Struct(o), "scanner config")
}

// Pipeline returns the confirmation tuning
func (o Options) Pipeline() scan.Config {
	return scan.Config{
		ConfidenceThreshold:     o.ConfidenceThreshold,
		RequiredRepeats:         o.RequiredRepeats,
		DebounceWindow:          o.DebounceWindow,
		CooldownWindow:          o.CooldownWindow,
		MissingConfidencePasses: o.MissingConfidencePasses,
		Validator:               scan.Digits(o.MinDigits, o.MaxDigits),
	}
}

// Stream returns the decoder stream settings layered over the defaults
func (o Options) Stream() scan.StreamConfig {
	st := scan.DefaultStreamConfig()
	st.FrameRate.Ideal = o.FrameRate
	st.Frequency = o.Frequency
	st.Readers = append([]string(nil), o.Readers...)
	st.Workers = o.Workers
	st.PatchSize = o.PatchSize
	st.HalfSample = o.HalfSample
	return st
}

func (o Options) service() scannersvc.Config {
	cfg := scannersvc.DefaultConfig()
	cfg.Pipeline = o.Pipeline()
	cfg.Stream = o.Stream()
	cfg.History = o.History
	return cfg
}
