package arith

import "github.com/qsyn/qsyn/circuit"

// AddCG computes y += x in place with the Gidney ripple adder. Carries chain
// through n-1 fresh ancillas via the AND building block, so with
// measurement-based uncomputation the ancilla teardown costs no expensive
// gates.
func AddCG(b *circuit.Builder, x, y circuit.Register) error {
	if err := checkInPlace(x, y); err != nil {
		return err
	}
	addCG(b, x, y)
	return nil
}

func addCG(b *circuit.Builder, x, y circuit.Register) {
	n, m := len(x), len(y)
	if m >= n+2 {
		s := b.Scope()
		defer s.Release()
		addCG(b, padded(s, x, m), y)
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
	cs := s.Acquire(n - 1)
	b.AndZero(x[0], y[0], cs[0])
	for i := 1; i < n-1; i++ {
		carryForInc(b, cs[i-1], cs[i], x[i], y[i])
	}
	if m == n+1 {
		b.CNOT(cs[n-2], x[n-1])
		b.CNOT(cs[n-2], y[n-1])
		b.Toffoli(x[n-1], y[n-1], y[n])
		b.CNOT(cs[n-2], y[n])
		b.CNOT(cs[n-2], x[n-1])
		b.CNOT(x[n-1], y[n-1])
	} else {
		b.CNOT(cs[n-2], y[n-1])
		b.CNOT(x[n-1], y[n-1])
	}
	for i := n - 2; i > 0; i-- {
		uncarryForInc(b, cs[i-1], cs[i], x[i], y[i])
	}
	b.UnAnd(x[0], y[0], cs[0])
	b.CNOT(x[0], y[0])
}

// carryForInc writes the carry out of one bit position into cout, leaving x
// and y in the intermediate state uncarryForInc expects.
func carryForInc(b *circuit.Builder, cin, cout, x, y circuit.Qubit) {
	b.CNOT(cin, x)
	b.CNOT(cin, y)
	b.AndZero(x, y, cout)
	b.CNOT(cin, cout)
}

// uncarryForInc erases cout and deposits the sum bit in y.
func uncarryForInc(b *circuit.Builder, cin, cout, x, y circuit.Qubit) {
	b.CNOT(cin, cout)
	b.UnAnd(x, y, cout)
	b.CNOT(cin, x)
	b.CNOT(x, y)
}

// CarryChain computes the ripple carries of x + y forward into the clean
// register cs, with cs[i] receiving the carry out of bit i; in particular
// cs[n-1] is the overflow bit of the n-bit sum. x and y are left in an
// intermediate state that UncarryChain undoes; no sum bits are produced.
// len(cs) == len(x) == len(y) is required and not rechecked here.
func CarryChain(b *circuit.Builder, x, y, cs circuit.Register) {
	b.AndZero(x[0], y[0], cs[0])
	for i := 1; i < len(x); i++ {
		carryForInc(b, cs[i-1], cs[i], x[i], y[i])
	}
}

// UncarryChain is the exact inverse of CarryChain: it erases cs and restores
// x and y.
func UncarryChain(b *circuit.Builder, x, y, cs circuit.Register) {
	for i := len(x) - 1; i > 0; i-- {
		b.CNOT(cs[i-1], cs[i])
		b.UnAnd(x[i], y[i], cs[i])
		b.CNOT(cs[i-1], y[i])
		b.CNOT(cs[i-1], x[i])
	}
	b.UnAnd(x[0], y[0], cs[0])
}
