// Package lookup synthesizes table lookups: given an address register and a
// classical table, the Select network writes the addressed row into a target
// register using one AND per visited table entry. Unlookup erases the target
// again, either by re-running the network or, with measurement-based
// uncomputation, by a measure-and-reset with a classical fixup table.
package lookup

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	mbits "math/bits"

	"github.com/icza/bitio"
	"golang.org/x/crypto/blake2b"
)

// Table is a classical lookup table of fixed-width rows, little-endian bit
// order within each row.
type Table struct {
	rows  []*big.Int
	width int
}

// NewTable builds a table from big integer rows. Every row must be
// non-negative and fit in width bits. The rows are not copied; callers must
// not mutate them afterwards.
func NewTable(width int, rows []*big.Int) (*Table, error) {
	if width <= 0 {
		return nil, fmt.Errorf("table width must be positive, got %d", width)
	}
	if len(rows) == 0 {
		return nil, errors.New("table has no rows")
	}
	for i, r := range rows {
		if r == nil || r.Sign() < 0 {
			return nil, fmt.Errorf("table row %d is not a non-negative integer", i)
		}
		if r.BitLen() > width {
			return nil, fmt.Errorf("table row %d does not fit in %d bits", i, width)
		}
	}
	return &Table{rows: rows, width: width}, nil
}

// NewTableFromUint64 builds a table from uint64 rows.
func NewTableFromUint64(width int, rows []uint64) (*Table, error) {
	bigRows := make([]*big.Int, len(rows))
	for i, r := range rows {
		bigRows[i] = new(big.Int).SetUint64(r)
	}
	return NewTable(width, bigRows)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Width returns the row width in bits.
func (t *Table) Width() int {
	return t.width
}

// Row returns row i. The returned value must not be modified.
func (t *Table) Row(i int) *big.Int {
	return t.rows[i]
}

// Bit returns bit j of row i.
func (t *Table) Bit(i, j int) uint8 {
	return uint8(t.rows[i].Bit(j))
}

// Pack serializes the table content as a dense bit stream, width bits per
// row, prefixed by the row count and width.
func (t *Table) Pack() []byte {
	var buf bitsBuffer
	w := bitio.NewWriter(&buf)
	var hdr [16]byte
	binary.LittleEndian.PutUint64(hdr[0:], uint64(len(t.rows)))
	binary.LittleEndian.PutUint64(hdr[8:], uint64(t.width))
	_, _ = w.Write(hdr[:])
	for _, r := range t.rows {
		for j := 0; j < t.width; j++ {
			_ = w.WriteBool(r.Bit(j) == 1)
		}
	}
	_ = w.Close()
	return buf.b
}

// Fingerprint returns a short hex digest of the table content, used to
// correlate synthesized lookups in logs.
func (t *Table) Fingerprint() string {
	sum := blake2b.Sum256(t.Pack())
	return fmt.Sprintf("%x", sum[:8])
}

type bitsBuffer struct{ b []byte }

func (w *bitsBuffer) Write(p []byte) (int, error) {
	w.b = append(w.b, p...)
	return len(p), nil
}

// fixupTable returns the classical phase-fixup table for a measured outcome
// m: entry i of the source table needs a correction iff the parity of
// m AND rows[i] is odd. The per-entry bits are regrouped into rows of 2^l
// bits over the reduced address space, where l low address bits are dropped
// with l = min(floor(log2 width), nbAddr-1).
func (t *Table) fixupTable(m *big.Int, nbAddr int) *Table {
	l := mbits.Len(uint(t.width)) - 1
	if max := nbAddr - 1; l > max {
		l = max
	}
	if l < 0 {
		l = 0
	}
	nbRows := 1 << uint(nbAddr)
	fix := make([]*big.Int, 0, nbRows>>uint(l))
	for base := 0; base < nbRows; base += 1 << uint(l) {
		row := new(big.Int)
		for j := 0; j < 1<<uint(l); j++ {
			if i := base + j; i < len(t.rows) && parityAnd(m, t.rows[i]) == 1 {
				row.SetBit(row, j, 1)
			}
		}
		fix = append(fix, row)
	}
	return &Table{rows: fix, width: 1 << uint(l)}
}

func parityAnd(a, b *big.Int) uint {
	and := new(big.Int).And(a, b)
	var ones int
	for _, w := range and.Bits() {
		ones += mbits.OnesCount(uint(w))
	}
	return uint(ones) & 1
}
