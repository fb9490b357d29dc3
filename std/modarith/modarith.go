// Package modarith synthesizes modular arithmetic on little-endian
// registers: in-place modular addition and subtraction, windowed modular
// multiply-accumulate through table lookups, and windowed modular
// exponentiation. Window tables are precomputed classically with math/big.
package modarith

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/qsyn/qsyn/circuit"
	"github.com/qsyn/qsyn/std/arith"
	"github.com/qsyn/qsyn/std/cmp"
)

// AddMod computes y = (y + x) mod N in place for x, y < N. Both registers
// must be N.BitLen() cells or wider and of equal length.
func AddMod(b *circuit.Builder, N *big.Int, x, y circuit.Register) error {
	if err := checkMod(N, x, y); err != nil {
		return err
	}
	s := b.Scope()
	defer s.Release()
	carry := s.One()
	flag := s.One()
	yext := append(y.Clone(), carry)

	// y += x over n+1 bits, subtract N, re-add N when that underflowed
	if err := arith.AddWith(b, arith.CG, x, yext); err != nil {
		return err
	}
	if err := arith.SubConstant(b, N, yext); err != nil {
		return err
	}
	b.CNOT(carry, flag)
	if err := ctlAddConstant(b, flag, N, yext); err != nil {
		return err
	}
	// the underflow flag is set iff no reduction happened, i.e. the final
	// sum is still at least x
	return cmp.IfGreaterOrEqual(b, y, x, func(b *circuit.Builder, ctl circuit.Qubit) {
		b.CNOT(ctl, flag)
	})
}

// SubMod computes y = (y - x) mod N in place; it is the exact inverse gate
// sequence of AddMod.
func SubMod(b *circuit.Builder, N *big.Int, x, y circuit.Register) error {
	if err := checkMod(N, x, y); err != nil {
		return err
	}
	s := b.Scope()
	defer s.Release()
	carry := s.One()
	flag := s.One()
	yext := append(y.Clone(), carry)

	if err := cmp.IfGreaterOrEqual(b, y, x, func(b *circuit.Builder, ctl circuit.Qubit) {
		b.CNOT(ctl, flag)
	}); err != nil {
		return err
	}
	if err := ctlSubConstant(b, flag, N, yext); err != nil {
		return err
	}
	b.CNOT(carry, flag)
	if err := arith.AddConstant(b, N, yext); err != nil {
		return err
	}
	return arith.SubWith(b, arith.CG, x, yext)
}

// ctlAddConstant adds the classical constant c into y controlled on ctl:
// the constant bits are written into a scratch register under the control,
// added, and unwritten.
func ctlAddConstant(b *circuit.Builder, ctl circuit.Qubit, c *big.Int, y circuit.Register) error {
	if c.Sign() == 0 {
		return nil
	}
	tz := 0
	for c.Bit(tz) == 0 {
		tz++
	}
	rest := y[tz:]
	shifted := new(big.Int).Rsh(c, uint(tz))
	s := b.Scope()
	defer s.Release()
	xs := s.Acquire(len(rest))
	ctlWrite(b, ctl, xs, shifted)
	if err := arith.AddWith(b, arith.CG, xs, rest); err != nil {
		return err
	}
	ctlWrite(b, ctl, xs, shifted)
	return nil
}

func ctlSubConstant(b *circuit.Builder, ctl circuit.Qubit, c *big.Int, y circuit.Register) error {
	m := new(big.Int).Lsh(big.NewInt(1), uint(len(y)))
	cc := new(big.Int).Sub(m, c)
	cc.Mod(cc, m)
	return ctlAddConstant(b, ctl, cc, y)
}

func ctlWrite(b *circuit.Builder, ctl circuit.Qubit, r circuit.Register, c *big.Int) {
	for i, q := range r {
		if c.Bit(i) == 1 {
			b.CNOT(ctl, q)
		}
	}
}

func checkMod(N *big.Int, x, y circuit.Register) error {
	if N == nil || N.Cmp(big.NewInt(2)) < 0 {
		return errors.New("modulus must be at least 2")
	}
	if len(x) == 0 || len(x) != len(y) {
		return fmt.Errorf("operand registers must be non-empty and of equal length, got %d and %d", len(x), len(y))
	}
	if N.BitLen() > len(x) {
		return fmt.Errorf("modulus of %d bits does not fit in %d cells", N.BitLen(), len(x))
	}
	return nil
}
