package arith

import (
	"errors"
	"fmt"

	"github.com/qsyn/qsyn/circuit"
)

// Strategy selects the in-place adder realization.
type Strategy uint8

const (
	// TTK is the Takahashi-Tani-Kunihiro ripple adder; no ancilla.
	TTK Strategy = iota
	// CDKM is the Cuccaro-Draper-Kutin-Moulton ripple adder; one ancilla.
	CDKM
	// CG is the Gidney ripple adder chaining carries through n-1 ancillas
	// with the AND building block.
	CG
	// LookAhead is the Draper-Kutin-Rains-Svore carry-lookahead adder;
	// logarithmic depth.
	LookAhead
)

func (s Strategy) String() string {
	switch s {
	case TTK:
		return "ttk"
	case CDKM:
		return "cdkm"
	case CG:
		return "cg"
	case LookAhead:
		return "lookahead"
	default:
		return fmt.Sprintf("strategy(%d)", uint8(s))
	}
}

// Add computes y += x in place with the default strategy. See the package
// documentation for the length rules.
func Add(b *circuit.Builder, x, y circuit.Register) error {
	return AddWith(b, TTK, x, y)
}

// AddWith computes y += x in place with the given strategy.
func AddWith(b *circuit.Builder, strat Strategy, x, y circuit.Register) error {
	if err := checkInPlace(x, y); err != nil {
		return err
	}
	switch strat {
	case TTK:
		addTTK(b, x, y)
	case CDKM:
		addCDKM(b, x, y)
	case CG:
		addCG(b, x, y)
	case LookAhead:
		incLookAhead(b, x, y)
	default:
		return fmt.Errorf("unknown adder strategy %d", strat)
	}
	return nil
}

// Sub computes y -= x modulo 2^len(y) in place, using the identity
// y - x == ^(^y + x) on two's-complement values.
func Sub(b *circuit.Builder, x, y circuit.Register) error {
	return SubWith(b, TTK, x, y)
}

// SubWith computes y -= x modulo 2^len(y) with the given strategy.
func SubWith(b *circuit.Builder, strat Strategy, x, y circuit.Register) error {
	if err := checkInPlace(x, y); err != nil {
		return err
	}
	for _, q := range y {
		b.Not(q)
	}
	if err := AddWith(b, strat, x, y); err != nil {
		return err
	}
	for _, q := range y {
		b.Not(q)
	}
	return nil
}

func checkInPlace(x, y circuit.Register) error {
	if len(x) == 0 {
		return errors.New("addend register is empty")
	}
	if len(y) < len(x) {
		return fmt.Errorf("accumulator has %d cells, addend needs at least %d", len(y), len(x))
	}
	return nil
}

// padded zero-extends x to len(y)-1 cells using fresh ancillas from s. The
// pad cells stay zero through any in-place adder, so the scope can be
// released right after the inner call.
func padded(s *circuit.Scope, x circuit.Register, m int) circuit.Register {
	pad := s.Acquire(m - len(x) - 1)
	return append(x.Clone(), pad...)
}
