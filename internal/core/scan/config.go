package scan

import "time"

// Validator reports whether a decoded value has an acceptable symbol format
type Validator func(value string) bool

// Digits accepts digit strings with a length in [min, max]
func Digits(min, max int) Validator {
	return func(v string) bool {
		if len(v) < min || len(v) > max {
			return false
		}
		for i := 0; i < len(v); i++ {
			if v[i] < '0' || v[i] > '9' {
				return false
			}
		}
		return true
	}
}

// Config tunes the confirmation pipeline
type Config struct {
	ConfidenceThreshold float64       `validate:"gte=0,lte=1"`
	RequiredRepeats     int           `validate:"min=1"`
	DebounceWindow      time.Duration `validate:"min=0"`
	CooldownWindow      time.Duration `validate:"min=0"`

	// MissingConfidencePasses lets reads without a confidence through the gate
	// otherwise a missing confidence counts as 0
	MissingConfidencePasses bool

	// Validator defaults to Digits(8, 13)
	Validator Validator `validate:"-"`
}

// DefaultConfig matches the live retail scanner tuning
func DefaultConfig() Config {
	return Config{
		ConfidenceThreshold: 0.75,
		RequiredRepeats:     2,
		DebounceWindow:      300 * time.Millisecond,
		CooldownWindow:      300 * time.Millisecond,
		Validator:           Digits(8, 13),
	}
}

func (c Config) withDefaults() Config {
	if c.RequiredRepeats < 1 {
		c.RequiredRepeats = 1
	}
	if c.Validator == nil {
		c.Validator = Digits(8, 13)
	}
	return c
}
