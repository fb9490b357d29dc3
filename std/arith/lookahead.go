package arith

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/qsyn/qsyn/circuit"
)

// AddLookAhead computes z = x + y out of place with the
// Draper-Kutin-Rains-Svore carry-lookahead adder. z must be clean with
// len(z) == len(x)+1; the top cell receives the carry-out. x and y are
// restored. The carry network runs in logarithmic depth over dyadic
// intervals with n - popcount(n) - floor(log2 n) workspace cells.
func AddLookAhead(b *circuit.Builder, x, y, z circuit.Register) error {
	if len(x) == 0 {
		return errors.New("addend register is empty")
	}
	if len(y) != len(x) {
		return fmt.Errorf("addend registers differ in length: %d vs %d", len(x), len(y))
	}
	if len(z) != len(x)+1 {
		return fmt.Errorf("sum register has %d cells, want %d", len(z), len(x)+1)
	}
	n := len(x)
	if n == 1 {
		b.AndZero(x[0], y[0], z[1])
		b.CNOT(x[0], z[0])
		b.CNOT(y[0], z[0])
		return nil
	}
	// generate bits into z[1..n], propagate bits into y
	for i := 0; i < n; i++ {
		b.AndZero(x[i], y[i], z[i+1])
	}
	for i := 0; i < n; i++ {
		b.CNOT(x[i], y[i])
	}
	computeCarries(b, y[1:n], z[1:n+1])
	// sum bits: s_i = p_i ^ c_i
	for i := 0; i < n; i++ {
		b.CNOT(y[i], z[i])
	}
	for i := 0; i < n; i++ {
		b.CNOT(x[i], y[i])
	}
	return nil
}

// IncLookAhead computes y += x in place with the carry-lookahead network.
// The carry register is erased by running the network backwards on the
// borrow reformulation of (sum, x), so no second addition is needed.
func IncLookAhead(b *circuit.Builder, x, y circuit.Register) error {
	if err := checkInPlace(x, y); err != nil {
		return err
	}
	incLookAhead(b, x, y)
	return nil
}

func incLookAhead(b *circuit.Builder, x, y circuit.Register) {
	n, m := len(x), len(y)
	if m >= n+2 {
		s := b.Scope()
		defer s.Release()
		incLookAhead(b, padded(s, x, m), y)
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
	cs := s.Acquire(n)
	for i := 0; i < n; i++ {
		b.AndZero(x[i], y[i], cs[i])
	}
	for i := 0; i < n; i++ {
		b.CNOT(x[i], y[i])
	}
	computeCarries(b, y[1:n], cs)
	for i := 1; i < n; i++ {
		b.CNOT(cs[i-1], y[i])
	}
	if m == n+1 {
		b.CNOT(cs[n-1], y[n])
	}
	// y now holds the sum s; cs holds the carries c_1..c_n. The carries of
	// x + y equal the borrows of s - x: with p' = ^(s^x) and g' = (s^x)&x,
	// the forward network maps g' to c, so its inverse maps c back to g'.
	for i := 0; i < n; i++ {
		b.CNOT(x[i], y[i])
	}
	for i := 1; i < n; i++ {
		b.Not(y[i])
	}
	computeCarriesInv(b, y[1:n], cs)
	for i := 1; i < n; i++ {
		b.Not(y[i])
	}
	for i := 0; i < n; i++ {
		b.UnAnd(x[i], y[i], cs[i])
	}
	for i := 0; i < n; i++ {
		b.CNOT(x[i], y[i])
	}
}

// computeCarries rewrites g in place: on entry g[i-1] holds the generate bit
// of position i, on exit the carry into position i+1. ps[i-1] holds the
// propagate bit of position i and is restored. len(ps) == len(g)-1.
func computeCarries(b *circuit.Builder, ps, g circuit.Register) {
	if len(g) == 1 {
		return
	}
	s := b.Scope()
	defer s.Release()
	newCarryNet(b, s, ps, len(g)).carries(g)
}

// computeCarriesInv applies the exact inverse gate sequence of
// computeCarries.
func computeCarriesInv(b *circuit.Builder, ps, g circuit.Register) {
	if len(g) == 1 {
		return
	}
	s := b.Scope()
	defer s.Release()
	newCarryNet(b, s, ps, len(g)).carriesInv(g)
}

// carryNet is the Brent-Kung style network of fused propagate cells P_t[i]
// covering the dyadic interval [i*2^t, (i+1)*2^t). Level 0 aliases the
// caller's propagate cells; higher levels live in scope workspace and are
// erased by the inverse P-rounds.
type carryNet struct {
	b      *circuit.Builder
	n, lg  int
	levels [][]circuit.Qubit // levels[t][i-1] holds P_t[i]
}

func newCarryNet(b *circuit.Builder, s *circuit.Scope, ps circuit.Register, n int) *carryNet {
	c := &carryNet{b: b, n: n, lg: bits.Len(uint(n)) - 1}
	c.levels = append(c.levels, ps)
	ws := s.Acquire(workspaceSize(n))
	off := 0
	for t := 1; n>>t >= 2; t++ {
		cnt := n>>t - 1
		c.levels = append(c.levels, ws[off:off+cnt])
		off += cnt
	}
	return c
}

func workspaceSize(n int) int {
	total := 0
	for t := 1; n>>t >= 2; t++ {
		total += n>>t - 1
	}
	return total
}

func (c *carryNet) p(t, i int) circuit.Qubit {
	return c.levels[t][i-1]
}

func (c *carryNet) carries(g circuit.Register) {
	c.pRounds()
	// G-rounds: fold generate spans upward
	for t := 1; t <= c.lg; t++ {
		for i := 1; i <= c.n>>t; i++ {
			idx := i << t
			c.b.Toffoli(g[idx-(1<<(t-1))-1], c.p(t-1, 2*i-1), g[idx-1])
		}
	}
	// C-rounds: fan carries back down
	for t := c.lg; t >= 1; t-- {
		for i := 1; i <= (c.n-(1<<(t-1)))>>t; i++ {
			idx := i<<t + 1<<(t-1)
			c.b.Toffoli(g[(i<<t)-1], c.p(t-1, 2*i), g[idx-1])
		}
	}
	c.pRoundsInv()
}

func (c *carryNet) carriesInv(g circuit.Register) {
	c.pRounds()
	for t := 1; t <= c.lg; t++ {
		for i := (c.n - (1 << (t - 1))) >> t; i >= 1; i-- {
			idx := i<<t + 1<<(t-1)
			c.b.Toffoli(g[(i<<t)-1], c.p(t-1, 2*i), g[idx-1])
		}
	}
	for t := c.lg; t >= 1; t-- {
		for i := c.n >> t; i >= 1; i-- {
			idx := i << t
			c.b.Toffoli(g[idx-(1<<(t-1))-1], c.p(t-1, 2*i-1), g[idx-1])
		}
	}
	c.pRoundsInv()
}

func (c *carryNet) pRounds() {
	for t := 1; t <= c.lg; t++ {
		for i := 1; i < c.n>>t; i++ {
			c.b.AndZero(c.p(t-1, 2*i), c.p(t-1, 2*i+1), c.p(t, i))
		}
	}
}

func (c *carryNet) pRoundsInv() {
	for t := c.lg; t >= 1; t-- {
		for i := c.n>>t - 1; i >= 1; i-- {
			c.b.UnAnd(c.p(t-1, 2*i), c.p(t-1, 2*i+1), c.p(t, i))
		}
	}
}
