package arith

import "github.com/qsyn/qsyn/circuit"

// AddTTK computes y += x in place with the Takahashi-Tani-Kunihiro ripple
// adder. It uses no ancilla cells; carries ripple through the addend
// register itself, which is restored before returning.
func AddTTK(b *circuit.Builder, x, y circuit.Register) error {
	if err := checkInPlace(x, y); err != nil {
		return err
	}
	addTTK(b, x, y)
	return nil
}

func addTTK(b *circuit.Builder, x, y circuit.Register) {
	n := len(x)
	switch {
	case len(y) == n:
		if n > 1 {
			ttkOuter(b, x, y)
			ttkInner(b, x, y, false)
			ttkOuterInv(b, x, y)
		}
		b.CNOT(x[0], y[0])
	case len(y) == n+1:
		if n > 1 {
			b.CNOT(x[n-1], y[n])
			ttkOuter(b, x, y)
			ttkInner(b, x, y, true)
			ttkOuterInv(b, x, y)
		} else {
			b.Toffoli(x[0], y[0], y[1])
		}
		b.CNOT(x[0], y[0])
	default:
		s := b.Scope()
		defer s.Release()
		addTTK(b, padded(s, x, len(y)), y)
	}
}

// ttkOuter is the self-inverse-up-to-order conjugation rewriting x into the
// cumulative-xor form the inner cascade needs.
func ttkOuter(b *circuit.Builder, x, y circuit.Register) {
	n := len(x)
	for i := 1; i < n; i++ {
		b.CNOT(x[i], y[i])
	}
	for i := n - 2; i > 0; i-- {
		b.CNOT(x[i], x[i+1])
	}
}

func ttkOuterInv(b *circuit.Builder, x, y circuit.Register) {
	n := len(x)
	for i := 1; i < n-1; i++ {
		b.CNOT(x[i], x[i+1])
	}
	for i := n - 1; i > 0; i-- {
		b.CNOT(x[i], y[i])
	}
}

// ttkInner ripples the carries up through x and back down, depositing the
// sum bits in y. With carryOut set, the top Toffoli additionally writes the
// carry out of the most significant position into y[n].
func ttkInner(b *circuit.Builder, x, y circuit.Register, carryOut bool) {
	n := len(x)
	for i := 0; i < n-1; i++ {
		b.Toffoli(x[i], y[i], x[i+1])
	}
	if carryOut {
		b.Toffoli(x[n-1], y[n-1], y[n])
	}
	for i := n - 1; i > 0; i-- {
		b.CNOT(x[i], y[i])
		b.Toffoli(x[i-1], y[i-1], x[i])
	}
}
