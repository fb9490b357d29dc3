// Package test provides a classical bit-simulation engine implementing
// circuit.MeasuringSink, and an Assert helper to test synthesized circuits.
package test

import (
	"fmt"
	"math/big"

	"github.com/bits-and-blooms/bitset"

	"github.com/qsyn/qsyn/circuit"
)

// Engine simulates a circuit with ordinary classical bit semantics: every
// cell is 0 or 1, gates are boolean updates, and Measure reads a cell out
// deterministically.
//
// It is used for a fast verification of circuit semantics in tests; since it
// implements circuit.BitReader, debug builds additionally check clean AND
// targets and zero-on-release ancilla discipline against it.
type Engine struct {
	state *bitset.BitSet
}

// NewEngine returns an all-zero simulation engine.
func NewEngine() *Engine {
	return &Engine{state: bitset.New(64)}
}

func (e *Engine) ApplyNot(q circuit.Qubit) {
	e.state.Flip(uint(q))
}

func (e *Engine) ApplyCNOT(c, t circuit.Qubit) {
	if e.state.Test(uint(c)) {
		e.state.Flip(uint(t))
	}
}

func (e *Engine) ApplyAnd(c1, c2, t circuit.Qubit) {
	if e.state.Test(uint(c1)) && e.state.Test(uint(c2)) {
		e.state.Flip(uint(t))
	}
}

func (e *Engine) ApplySwap(a, b circuit.Qubit) {
	va, vb := e.state.Test(uint(a)), e.state.Test(uint(b))
	e.state.SetTo(uint(a), vb)
	e.state.SetTo(uint(b), va)
}

// Measure implements circuit.MeasuringSink with deterministic classical
// readout.
func (e *Engine) Measure(q circuit.Qubit) uint8 {
	return e.Bit(q)
}

// Bit implements circuit.BitReader.
func (e *Engine) Bit(q circuit.Qubit) uint8 {
	if e.state.Test(uint(q)) {
		return 1
	}
	return 0
}

// Load sets the cells of r to the little-endian binary representation of v.
func (e *Engine) Load(r circuit.Register, v uint64) {
	if len(r) < 64 && v>>uint(len(r)) != 0 {
		panic(fmt.Sprintf("value %d does not fit in %d cells", v, len(r)))
	}
	for i, q := range r {
		e.state.SetTo(uint(q), (v>>uint(i))&1 == 1)
	}
}

// Read returns the value of r as an unsigned integer. r must not exceed 64
// cells; use ReadBig for wider registers.
func (e *Engine) Read(r circuit.Register) uint64 {
	if len(r) > 64 {
		panic(fmt.Sprintf("register of %d cells does not fit in a uint64", len(r)))
	}
	var v uint64
	for i, q := range r {
		if e.state.Test(uint(q)) {
			v |= 1 << uint(i)
		}
	}
	return v
}

// LoadBig sets the cells of r to the little-endian binary representation of
// v. v must be non-negative and fit in len(r) bits.
func (e *Engine) LoadBig(r circuit.Register, v *big.Int) {
	if v.Sign() < 0 || v.BitLen() > len(r) {
		panic(fmt.Sprintf("value %s does not fit in %d cells", v, len(r)))
	}
	for i, q := range r {
		e.state.SetTo(uint(q), v.Bit(i) == 1)
	}
}

// ReadBig returns the value of r as an unsigned big integer.
func (e *Engine) ReadBig(r circuit.Register) *big.Int {
	v := new(big.Int)
	for i, q := range r {
		if e.state.Test(uint(q)) {
			v.SetBit(v, i, 1)
		}
	}
	return v
}
