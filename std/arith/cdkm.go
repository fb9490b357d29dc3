package arith

import "github.com/qsyn/qsyn/circuit"

// AddCDKM computes y += x in place with the Cuccaro-Draper-Kutin-Moulton
// ripple adder. It borrows a single ancilla for the bottom carry.
func AddCDKM(b *circuit.Builder, x, y circuit.Register) error {
	if err := checkInPlace(x, y); err != nil {
		return err
	}
	addCDKM(b, x, y)
	return nil
}

func addCDKM(b *circuit.Builder, x, y circuit.Register) {
	n, m := len(x), len(y)
	if m >= n+2 {
		s := b.Scope()
		defer s.Release()
		addCDKM(b, padded(s, x, m), y)
		return
	}
	if n == 1 {
		if m == 2 {
			b.Toffoli(x[0], y[0], y[1])
		}
		b.CNOT(x[0], y[0])
		return
	}
	s := b.Scope()
	defer s.Release()
	a := s.One()
	maj(b, a, y[0], x[0])
	for i := 1; i < n; i++ {
		maj(b, x[i-1], y[i], x[i])
	}
	if m == n+1 {
		b.CNOT(x[n-1], y[n])
	}
	for i := n - 1; i > 0; i-- {
		uma(b, x[i-1], y[i], x[i])
	}
	uma(b, a, y[0], x[0])
}

// maj leaves the majority of (a, y, x) in x; uma undoes it while writing the
// sum bit into y.
func maj(b *circuit.Builder, a, y, x circuit.Qubit) {
	b.CNOT(x, y)
	b.CNOT(x, a)
	b.Toffoli(a, y, x)
}

func uma(b *circuit.Builder, a, y, x circuit.Qubit) {
	b.Toffoli(a, y, x)
	b.CNOT(x, a)
	b.CNOT(a, y)
}
