package cmp

import (
	"errors"
	"fmt"

	"github.com/qsyn/qsyn/circuit"
	"github.com/qsyn/qsyn/std/arith"
)

// Action is invoked with a control cell holding the comparison outcome. It
// must leave every cell other than its own targets unchanged; the control
// cell itself is uncomputed by the caller afterwards.
type Action func(b *circuit.Builder, ctl circuit.Qubit)

// IfGreater runs action controlled on x > y. Both registers are restored.
func IfGreater(b *circuit.Builder, x, y circuit.Register, action Action) error {
	if err := checkOperands(x, y); err != nil {
		return err
	}
	// x > y iff x + ^y overflows
	notAll(b, y)
	withOverflow(b, x, y, false, action)
	notAll(b, y)
	return nil
}

// IfLessOrEqual runs action controlled on x <= y.
func IfLessOrEqual(b *circuit.Builder, x, y circuit.Register, action Action) error {
	if err := checkOperands(x, y); err != nil {
		return err
	}
	notAll(b, y)
	withOverflow(b, x, y, true, action)
	notAll(b, y)
	return nil
}

// IfLess runs action controlled on x < y.
func IfLess(b *circuit.Builder, x, y circuit.Register, action Action) error {
	return IfGreater(b, y, x, action)
}

// IfGreaterOrEqual runs action controlled on x >= y.
func IfGreaterOrEqual(b *circuit.Builder, x, y circuit.Register, action Action) error {
	return IfLessOrEqual(b, y, x, action)
}

// IfEqual runs action controlled on x == y.
func IfEqual(b *circuit.Builder, x, y circuit.Register, action Action) error {
	if err := checkOperands(x, y); err != nil {
		return err
	}
	xorNot(b, x, y)
	onAllOnes(b, x, false, action)
	xorNotInv(b, x, y)
	return nil
}

// IfNotEqual runs action controlled on x != y.
func IfNotEqual(b *circuit.Builder, x, y circuit.Register, action Action) error {
	if err := checkOperands(x, y); err != nil {
		return err
	}
	xorNot(b, x, y)
	onAllOnes(b, x, true, action)
	xorNotInv(b, x, y)
	return nil
}

// withOverflow runs action on the carry out of the n-bit sum x + y,
// optionally inverted. The carry chain is computed forward and then undone;
// no sum bits are produced.
func withOverflow(b *circuit.Builder, x, y circuit.Register, invert bool, action Action) {
	s := b.Scope()
	defer s.Release()
	cs := s.Acquire(len(x))
	arith.CarryChain(b, x, y, cs)
	top := cs[len(cs)-1]
	if invert {
		b.Not(top)
	}
	action(b, top)
	if invert {
		b.Not(top)
	}
	arith.UncarryChain(b, x, y, cs)
}

// xorNot rewrites x[i] to ^(x[i]^y[i]), so that x is all-ones iff x == y.
func xorNot(b *circuit.Builder, x, y circuit.Register) {
	for i := range x {
		b.CNOT(y[i], x[i])
		b.Not(x[i])
	}
}

func xorNotInv(b *circuit.Builder, x, y circuit.Register) {
	for i := range x {
		b.Not(x[i])
		b.CNOT(y[i], x[i])
	}
}

// onAllOnes runs action controlled on every cell of r being one, inverting
// the control first when invert is set.
func onAllOnes(b *circuit.Builder, r circuit.Register, invert bool, action Action) {
	run := func(ctl circuit.Qubit) {
		if invert {
			b.Not(ctl)
		}
		action(b, ctl)
		if invert {
			b.Not(ctl)
		}
	}
	if len(r) == 1 {
		run(r[0])
		return
	}
	s := b.Scope()
	defer s.Release()
	ctl, undo := b.CollapseControls(s, r)
	run(ctl)
	undo()
}

func notAll(b *circuit.Builder, r circuit.Register) {
	for _, q := range r {
		b.Not(q)
	}
}

func checkOperands(x, y circuit.Register) error {
	if len(x) == 0 {
		return errors.New("comparison registers are empty")
	}
	if len(x) != len(y) {
		return fmt.Errorf("comparison registers differ in length: %d vs %d", len(x), len(y))
	}
	return nil
}
