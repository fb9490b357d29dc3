package modarith

import (
	"fmt"
	"math/big"

	"github.com/qsyn/qsyn/circuit"
	"github.com/qsyn/qsyn/std/lookup"
)

// MulAddWindowed computes dst = (dst + src * factors[e]) mod N, where e is
// the value of the exponent-window register ewin and len(factors) ==
// 2^len(ewin). For each window of Config().MulWindowBits source bits it
// looks the partial product up by (source window, exponent window) jointly,
// adds it modulo N and immediately unlooks it up. The per-window repetition
// is wrapped in the cost-caching hook.
func MulAddWindowed(b *circuit.Builder, N *big.Int, factors []*big.Int, ewin, src, dst circuit.Register) error {
	return mulWindowed(b, N, factors, ewin, src, dst, false)
}

// MulSubWindowed computes dst = (dst - src * factors[e]) mod N; it is the
// exact inverse of MulAddWindowed, running the windows in reverse order.
func MulSubWindowed(b *circuit.Builder, N *big.Int, factors []*big.Int, ewin, src, dst circuit.Register) error {
	return mulWindowed(b, N, factors, ewin, src, dst, true)
}

func mulWindowed(b *circuit.Builder, N *big.Int, factors []*big.Int, ewin, src, dst circuit.Register, inverse bool) error {
	if err := checkMod(N, src, dst); err != nil {
		return err
	}
	if len(factors) != 1<<uint(len(ewin)) {
		return fmt.Errorf("got %d factors for a %d-cell exponent window", len(factors), len(ewin))
	}
	n := len(src)
	wm := b.Config().MulWindowBits
	s := b.Scope()
	defer s.Release()
	tmp := s.Acquire(n)

	var windows []int
	for lo := 0; lo < n; lo += wm {
		windows = append(windows, lo)
	}
	if inverse {
		for i, j := 0, len(windows)-1; i < j; i, j = i+1, j-1 {
			windows[i], windows[j] = windows[j], windows[i]
		}
	}
	for _, lo := range windows {
		if err := mulWindow(b, N, factors, ewin, src, dst, tmp, lo, inverse); err != nil {
			return err
		}
	}
	return nil
}

// mulWindow adds (or subtracts) the partial products of one source window.
func mulWindow(b *circuit.Builder, N *big.Int, factors []*big.Int, ewin, src, dst, tmp circuit.Register, lo int, inverse bool) error {
	n := len(src)
	wbits := src[lo:min(lo+b.Config().MulWindowBits, n)]
	addr := append(wbits.Clone(), ewin...)

	if !b.BeginCaching("modarith.window", len(addr)<<16|n) {
		return nil
	}
	defer b.EndCaching()

	table, err := windowTable(N, factors, len(wbits), len(ewin), lo, n)
	if err != nil {
		return err
	}
	if err := lookup.Select(b, nil, addr, tmp, table); err != nil {
		return err
	}
	if inverse {
		err = SubMod(b, N, tmp, dst)
	} else {
		err = AddMod(b, N, tmp, dst)
	}
	if err != nil {
		return err
	}
	return lookup.Unlookup(b, nil, addr, tmp, table)
}

// windowTable tabulates (factors[v] * u * 2^lo) mod N over the joint
// address (v || u), the source window u in the low bits.
func windowTable(N *big.Int, factors []*big.Int, nbU, nbV, lo, width int) (*lookup.Table, error) {
	rows := make([]*big.Int, 1<<uint(nbU+nbV))
	for idx := range rows {
		u := idx & (1<<uint(nbU) - 1)
		v := idx >> uint(nbU)
		r := new(big.Int).SetInt64(int64(u))
		r.Mul(r, factors[v])
		r.Lsh(r, uint(lo))
		r.Mod(r, N)
		rows[idx] = r
	}
	return lookup.NewTable(width, rows)
}
