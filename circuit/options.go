package circuit

import "fmt"

// DefaultWindowBits is the window length, in bits, used for both the
// exponent and multiplier windows of modular exponentiation unless
// overridden with WithExpWindowBits / WithMulWindowBits.
const DefaultWindowBits = 5

// Config carries the synthesis parameters threaded through the call chain.
type Config struct {
	// ExpWindowBits is the width of the exponent windows in windowed
	// modular exponentiation.
	ExpWindowBits int
	// MulWindowBits is the width of the multiplier windows in windowed
	// modular multiplication.
	MulWindowBits int
	// MeasurementUncompute selects the measurement-based realization of the
	// inverse AND (measure the target; if set, reset it and apply a
	// diagonal correction) instead of re-applying the Toffoli. It requires
	// the sink to implement MeasuringSink.
	MeasurementUncompute bool
}

// DefaultConfig returns the default synthesis parameters.
func DefaultConfig() Config {
	return Config{
		ExpWindowBits: DefaultWindowBits,
		MulWindowBits: DefaultWindowBits,
	}
}

// Option defines a configuration option for a Builder.
type Option func(*Builder) error

// WithExpWindowBits sets the exponent window length for windowed modular
// exponentiation. n must be in [1, 16].
func WithExpWindowBits(n int) Option {
	return func(b *Builder) error {
		if n < 1 || n > 16 {
			return fmt.Errorf("exponent window length must be in [1, 16], got %d", n)
		}
		b.cfg.ExpWindowBits = n
		return nil
	}
}

// WithMulWindowBits sets the multiplier window length for windowed modular
// multiplication. n must be in [1, 16].
func WithMulWindowBits(n int) Option {
	return func(b *Builder) error {
		if n < 1 || n > 16 {
			return fmt.Errorf("multiplier window length must be in [1, 16], got %d", n)
		}
		b.cfg.MulWindowBits = n
		return nil
	}
}

// WithMeasurementUncompute toggles the measurement-based inverse of the AND
// building block, halving its expensive-gate cost at the price of requiring
// mid-circuit measurement-and-branch support from the sink.
func WithMeasurementUncompute(enable bool) Option {
	return func(b *Builder) error {
		b.cfg.MeasurementUncompute = enable
		return nil
	}
}

// WithAccountant installs a cost accountant consulted through BeginCaching /
// EndCaching. When BeginCaching answers false the caller skips emitting the
// gates for that repetition and the accountant replays the recorded cost.
func WithAccountant(acc Accountant) Option {
	return func(b *Builder) error {
		b.acc = acc
		return nil
	}
}
