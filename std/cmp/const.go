package cmp

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/qsyn/qsyn/circuit"
)

// IfGreaterConst runs action controlled on x > c for a classical constant
// 0 <= c < 2^len(x).
func IfGreaterConst(b *circuit.Builder, x circuit.Register, c *big.Int, action Action) error {
	if err := checkConstOperand(x, c); err != nil {
		return err
	}
	// x > c iff x + ^c overflows
	withOverflowConst(b, x, complement(c, len(x)), false, action)
	return nil
}

// IfLessOrEqualConst runs action controlled on x <= c.
func IfLessOrEqualConst(b *circuit.Builder, x circuit.Register, c *big.Int, action Action) error {
	if err := checkConstOperand(x, c); err != nil {
		return err
	}
	withOverflowConst(b, x, complement(c, len(x)), true, action)
	return nil
}

// IfGreaterOrEqualConst runs action controlled on x >= c.
func IfGreaterOrEqualConst(b *circuit.Builder, x circuit.Register, c *big.Int, action Action) error {
	if err := checkConstOperand(x, c); err != nil {
		return err
	}
	if c.Sign() == 0 {
		alwaysRun(b, action)
		return nil
	}
	// x >= c iff x + (2^n - c) overflows
	withOverflowConst(b, x, negate(c, len(x)), false, action)
	return nil
}

// IfLessConst runs action controlled on x < c.
func IfLessConst(b *circuit.Builder, x circuit.Register, c *big.Int, action Action) error {
	if err := checkConstOperand(x, c); err != nil {
		return err
	}
	if c.Sign() == 0 {
		return nil // never
	}
	withOverflowConst(b, x, negate(c, len(x)), true, action)
	return nil
}

// IfEqualConst runs action controlled on x == c.
func IfEqualConst(b *circuit.Builder, x circuit.Register, c *big.Int, action Action) error {
	if err := checkConstOperand(x, c); err != nil {
		return err
	}
	flipZeroBits(b, x, c)
	onAllOnes(b, x, false, action)
	flipZeroBits(b, x, c)
	return nil
}

// IfNotEqualConst runs action controlled on x != c.
func IfNotEqualConst(b *circuit.Builder, x circuit.Register, c *big.Int, action Action) error {
	if err := checkConstOperand(x, c); err != nil {
		return err
	}
	flipZeroBits(b, x, c)
	onAllOnes(b, x, true, action)
	flipZeroBits(b, x, c)
	return nil
}

// withOverflowConst runs action on the carry out of x + c, optionally
// inverted. The chain folds the classical bits of c in directly: where a
// bit of c is one the carry is x OR cin, realized as ^(^x AND ^cin).
func withOverflowConst(b *circuit.Builder, x circuit.Register, c *big.Int, invert bool, action Action) {
	n := len(x)
	s := b.Scope()
	defer s.Release()
	cs := s.Acquire(n)
	if c.Bit(0) == 1 {
		b.CNOT(x[0], cs[0])
	}
	for i := 1; i < n; i++ {
		if c.Bit(i) == 1 {
			b.Not(x[i])
			b.Not(cs[i-1])
			b.AndZero(x[i], cs[i-1], cs[i])
			b.Not(cs[i])
			b.Not(cs[i-1])
			b.Not(x[i])
		} else {
			b.AndZero(x[i], cs[i-1], cs[i])
		}
	}
	top := cs[n-1]
	if invert {
		b.Not(top)
	}
	action(b, top)
	if invert {
		b.Not(top)
	}
	for i := n - 1; i >= 1; i-- {
		if c.Bit(i) == 1 {
			b.Not(x[i])
			b.Not(cs[i-1])
			b.Not(cs[i])
			b.UnAnd(x[i], cs[i-1], cs[i])
			b.Not(cs[i-1])
			b.Not(x[i])
		} else {
			b.UnAnd(x[i], cs[i-1], cs[i])
		}
	}
	if c.Bit(0) == 1 {
		b.CNOT(x[0], cs[0])
	}
}

// alwaysRun triggers action unconditionally through a scratch cell held at
// one.
func alwaysRun(b *circuit.Builder, action Action) {
	s := b.Scope()
	defer s.Release()
	t := s.One()
	b.Not(t)
	action(b, t)
	b.Not(t)
}

// flipZeroBits flips the cells of x at positions where c has a zero bit, so
// that x reads all-ones iff x == c.
func flipZeroBits(b *circuit.Builder, x circuit.Register, c *big.Int) {
	for i, q := range x {
		if c.Bit(i) == 0 {
			b.Not(q)
		}
	}
}

func complement(c *big.Int, n int) *big.Int {
	mask := new(big.Int).Lsh(big.NewInt(1), uint(n))
	mask.Sub(mask, big.NewInt(1))
	return new(big.Int).Xor(mask, c)
}

func negate(c *big.Int, n int) *big.Int {
	m := new(big.Int).Lsh(big.NewInt(1), uint(n))
	cc := new(big.Int).Sub(m, c)
	return cc.Mod(cc, m)
}

func checkConstOperand(x circuit.Register, c *big.Int) error {
	if len(x) == 0 {
		return errors.New("comparison register is empty")
	}
	if c.Sign() < 0 {
		return fmt.Errorf("comparison constant must be non-negative, got %s", c)
	}
	if c.BitLen() > len(x) {
		return fmt.Errorf("comparison constant %s does not fit in %d cells", c, len(x))
	}
	return nil
}
