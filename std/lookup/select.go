package lookup

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/qsyn/qsyn/circuit"
)

// Select writes the table row addressed by addr into the clean target
// register, XOR-controlled on every cell of ctls. The network splits on the
// top address bit recursively; the single-control recursion serves both
// halves with one AND through a helper cell, and k >= 2 external controls
// are collapsed into one before entering the network. addr and ctls are
// restored.
func Select(b *circuit.Builder, ctls, addr, tgt circuit.Register, t *Table) error {
	if err := checkSelect(addr, tgt, t); err != nil {
		return err
	}
	if !b.BeginCaching("lookup.Select", selectVariant(t, len(ctls))) {
		return nil
	}
	defer b.EndCaching()
	switch len(ctls) {
	case 0:
		selectRows(b, 0, false, addr, tgt, t.rows)
	case 1:
		selectRows(b, ctls[0], true, addr, tgt, t.rows)
	default:
		s := b.Scope()
		defer s.Release()
		ctl, undo := b.CollapseControls(s, ctls)
		selectRows(b, ctl, true, addr, tgt, t.rows)
		undo()
	}
	return nil
}

// selectVariant discriminates lookups of different gate cost under the same
// caching tag: row count and, for the collapse tree, the control count.
func selectVariant(t *Table, nbCtls int) int {
	if nbCtls > 15 {
		nbCtls = 15
	}
	return t.Len()<<4 | nbCtls
}

func selectRows(b *circuit.Builder, ctl circuit.Qubit, hasCtl bool, addr, tgt circuit.Register, rows []*big.Int) {
	if len(rows) == 1 || len(addr) == 0 {
		writeRow(b, ctl, hasCtl, tgt, rows[0])
		return
	}
	top := addr[len(addr)-1]
	rest := addr[:len(addr)-1]
	half := 1 << uint(len(rest))
	if len(rows) <= half {
		// every valid address has a zero top bit; drop it
		selectRows(b, ctl, hasCtl, rest, tgt, rows)
		return
	}
	low, high := rows[:half], rows[half:]
	if !hasCtl {
		b.Not(top)
		selectRows(b, top, true, rest, tgt, low)
		b.Not(top)
		selectRows(b, top, true, rest, tgt, high)
		return
	}
	s := b.Scope()
	defer s.Release()
	h := s.One()
	b.AndZero(ctl, top, h)
	selectRows(b, h, true, rest, tgt, high)
	b.CNOT(ctl, h)
	selectRows(b, h, true, rest, tgt, low)
	b.CNOT(ctl, h)
	b.UnAnd(ctl, top, h)
}

func writeRow(b *circuit.Builder, ctl circuit.Qubit, hasCtl bool, tgt circuit.Register, row *big.Int) {
	for j, q := range tgt {
		if row.Bit(j) != 1 {
			continue
		}
		if hasCtl {
			b.CNOT(ctl, q)
		} else {
			b.Not(q)
		}
	}
}

func checkSelect(addr, tgt circuit.Register, t *Table) error {
	if t == nil {
		return errors.New("table is nil")
	}
	if t.Width() != len(tgt) {
		return fmt.Errorf("target has %d cells, table rows have %d bits", len(tgt), t.Width())
	}
	if len(addr) < 63 && t.Len() > 1<<uint(len(addr)) {
		return fmt.Errorf("address of %d cells cannot index %d rows", len(addr), t.Len())
	}
	return nil
}
