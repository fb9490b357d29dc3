package arith

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/qsyn/qsyn/circuit"
)

// AddConstant adds the classical constant c into y modulo 2^len(y). Trailing
// zero bits of c are skipped; the remaining bits are written into a scratch
// register, added with the default adder, and erased by the inverse write.
// Negative or overflowing constants are construction-time errors.
func AddConstant(b *circuit.Builder, c *big.Int, y circuit.Register) error {
	if err := checkConstant(c, y); err != nil {
		return err
	}
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
	writeConstant(b, xs, shifted)
	addTTK(b, xs, rest)
	writeConstant(b, xs, shifted)
	return nil
}

// SubConstant subtracts the classical constant c from y modulo 2^len(y).
func SubConstant(b *circuit.Builder, c *big.Int, y circuit.Register) error {
	if err := checkConstant(c, y); err != nil {
		return err
	}
	m := new(big.Int).Lsh(big.NewInt(1), uint(len(y)))
	cc := new(big.Int).Sub(m, c)
	cc.Mod(cc, m)
	return AddConstant(b, cc, y)
}

// Neg replaces y with its two's complement.
func Neg(b *circuit.Builder, y circuit.Register) error {
	if len(y) == 0 {
		return errors.New("register is empty")
	}
	for _, q := range y {
		b.Not(q)
	}
	return AddConstant(b, big.NewInt(1), y)
}

func checkConstant(c *big.Int, y circuit.Register) error {
	if len(y) == 0 {
		return errors.New("accumulator register is empty")
	}
	if c.Sign() < 0 {
		return fmt.Errorf("constant must be non-negative, got %s", c)
	}
	if c.BitLen() > len(y) {
		return fmt.Errorf("constant %s does not fit in %d cells", c, len(y))
	}
	return nil
}

func writeConstant(b *circuit.Builder, r circuit.Register, c *big.Int) {
	for i, q := range r {
		if c.Bit(i) == 1 {
			b.Not(q)
		}
	}
}
