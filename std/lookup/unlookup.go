package lookup

import (
	"math/big"

	"github.com/qsyn/qsyn/circuit"
	"github.com/qsyn/qsyn/logger"
)

// Unlookup erases a target previously written by Select with the same
// arguments. Without measurement-based uncomputation the network is simply
// run again (it is its own inverse). With it, the target is measured and
// reset, and the remaining correction is a phase fixup over a reduced
// address space: the fixup table is computed classically and is diagonal,
// so no further bit-level gates are emitted.
func Unlookup(b *circuit.Builder, ctls, addr, tgt circuit.Register, t *Table) error {
	if !b.Config().MeasurementUncompute {
		return Select(b, ctls, addr, tgt, t)
	}
	if err := checkSelect(addr, tgt, t); err != nil {
		return err
	}
	m := measureReset(b, tgt)
	fix := t.fixupTable(m, len(addr))
	log := logger.Logger()
	log.Trace().
		Str("table", t.Fingerprint()).
		Str("fixup", fix.Fingerprint()).
		Int("fixupRows", fix.Len()).
		Msg("measurement-based unlookup")
	return nil
}

// measureReset measures r, resets every set cell and returns the outcome.
func measureReset(b *circuit.Builder, r circuit.Register) *big.Int {
	m := new(big.Int)
	for j, q := range r {
		if b.Measure(q) == 1 {
			m.SetBit(m, j, 1)
			b.Not(q)
		}
	}
	return m
}
