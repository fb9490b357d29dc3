package lookup

import (
	"fmt"
	"math/big"
	"math/rand"
	"testing"

	"github.com/qsyn/qsyn/circuit"
	"github.com/qsyn/qsyn/test"
)

func TestSelectUnlookup(t *testing.T) {
	assert := test.NewAssert(t)
	rng := rand.New(rand.NewSource(42))
	for nbAddr := 0; nbAddr <= 5; nbAddr++ {
		nbRows := 1
		if nbAddr > 0 {
			nbRows = 1<<uint(nbAddr-1) + 1 + rng.Intn(1<<uint(nbAddr-1))
		}
		for _, width := range []int{1, 2, 5} {
			for nbCtls := 0; nbCtls <= 3; nbCtls++ {
				nbAddr, nbRows, width, nbCtls := nbAddr, nbRows, width, nbCtls
				assert.Run(func(assert *test.Assert) {
					for trial := 0; trial < 20; trial++ {
						rows := make([]uint64, nbRows)
						for i := range rows {
							rows[i] = rng.Uint64() & (1<<uint(width) - 1)
						}
						table, err := NewTableFromUint64(width, rows)
						assert.NoError(err)
						a := uint64(rng.Intn(nbRows))

						meas := trial%2 == 0
						b, e := assert.NewBuilder(circuit.WithMeasurementUncompute(meas))
						var addr circuit.Register
						if nbAddr > 0 {
							addr = b.Alloc(nbAddr)
						}
						tgt := b.Alloc(width)
						var ctls circuit.Register
						if nbCtls > 0 {
							ctls = b.Alloc(nbCtls)
							for _, q := range ctls {
								b.Not(q)
							}
						}
						e.Load(addr, a)

						assert.NoError(Select(b, ctls, addr, tgt, table))
						assert.Equal(rows[a], e.Read(tgt), "addr=%d", a)
						assert.Equal(a, e.Read(addr))

						assert.NoError(Unlookup(b, ctls, addr, tgt, table))
						assert.Equal(uint64(0), e.Read(tgt))
						assert.Equal(a, e.Read(addr))
					}
				}, fmt.Sprintf("addr=%d", nbAddr), fmt.Sprintf("width=%d", width), fmt.Sprintf("ctls=%d", nbCtls))
			}
		}
	}
}

func TestSelectControlsOff(t *testing.T) {
	assert := test.NewAssert(t)
	table, err := NewTableFromUint64(3, []uint64{5, 6, 7, 1})
	assert.NoError(err)
	for nbCtls := 1; nbCtls <= 3; nbCtls++ {
		nbCtls := nbCtls
		assert.Run(func(assert *test.Assert) {
			b, e := assert.NewBuilder()
			addr := b.Alloc(2)
			tgt := b.Alloc(3)
			ctls := b.Alloc(nbCtls)
			e.Load(addr, 2)
			assert.NoError(Select(b, ctls, addr, tgt, table))
			assert.Equal(uint64(0), e.Read(tgt))
			assert.Equal(uint64(2), e.Read(addr))
		}, fmt.Sprintf("ctls=%d", nbCtls))
	}
}

func TestSelectExample(t *testing.T) {
	// 8 two-bit rows; address 5 reads back row value 2.
	assert := test.NewAssert(t)
	table, err := NewTableFromUint64(2, []uint64{0, 1, 2, 3, 0, 2, 1, 3})
	assert.NoError(err)
	b, e := assert.NewBuilder()
	addr := b.Alloc(3)
	tgt := b.Alloc(2)
	e.Load(addr, 5)
	assert.NoError(Select(b, nil, addr, tgt, table))
	assert.Equal(uint64(2), e.Read(tgt))
}

func TestSelectWideAddress(t *testing.T) {
	assert := test.NewAssert(t)
	rng := rand.New(rand.NewSource(7))
	rows := make([]uint64, 256)
	for i := range rows {
		rows[i] = rng.Uint64() & 0x3f
	}
	table, err := NewTableFromUint64(6, rows)
	assert.NoError(err)
	for _, meas := range []bool{false, true} {
		meas := meas
		assert.Run(func(assert *test.Assert) {
			b, e := assert.NewBuilder(circuit.WithMeasurementUncompute(meas))
			addr := b.Alloc(8)
			tgt := b.Alloc(6)
			for trial := 0; trial < 32; trial++ {
				a := uint64(rng.Intn(256))
				e.Load(addr, a)
				assert.NoError(Select(b, nil, addr, tgt, table))
				assert.Equal(rows[a], e.Read(tgt), "addr=%d", a)
				assert.NoError(Unlookup(b, nil, addr, tgt, table))
				assert.Equal(uint64(0), e.Read(tgt))
				assert.Equal(a, e.Read(addr))
			}
		}, fmt.Sprintf("meas=%t", meas))
	}
}

func TestTableValidation(t *testing.T) {
	assert := test.NewAssert(t)

	_, err := NewTable(0, []*big.Int{big.NewInt(0)})
	assert.Error(err)
	_, err = NewTable(4, nil)
	assert.Error(err)
	_, err = NewTable(4, []*big.Int{big.NewInt(-1)})
	assert.Error(err)
	_, err = NewTable(2, []*big.Int{big.NewInt(4)})
	assert.Error(err)

	table, err := NewTableFromUint64(2, []uint64{1, 2, 3})
	assert.NoError(err)
	assert.Equal(3, table.Len())
	assert.Equal(2, table.Width())
	assert.Equal(uint8(1), table.Bit(2, 0))

	b, _ := assert.NewBuilder()
	addr := b.Alloc(1)
	tgt := b.Alloc(2)
	assert.Error(Select(b, nil, addr, tgt, nil))
	assert.Error(Select(b, nil, addr, b.Alloc(3), table))
	assert.Error(Select(b, nil, addr, tgt, table)) // 3 rows need 2 address cells
}

func TestTableFingerprint(t *testing.T) {
	assert := test.NewAssert(t)
	a, err := NewTableFromUint64(3, []uint64{1, 2, 3})
	assert.NoError(err)
	b, err := NewTableFromUint64(3, []uint64{1, 2, 3})
	assert.NoError(err)
	c, err := NewTableFromUint64(3, []uint64{1, 2, 4})
	assert.NoError(err)

	assert.Equal(a.Fingerprint(), b.Fingerprint())
	assert.NotEqual(a.Fingerprint(), c.Fingerprint())
	assert.Equal(a.Pack(), b.Pack())
}

func TestFixupTable(t *testing.T) {
	assert := test.NewAssert(t)
	table, err := NewTableFromUint64(4, []uint64{0b0011, 0b0101, 0b1111, 0b1000})
	assert.NoError(err)

	// zero outcome needs no correction anywhere
	fix := table.fixupTable(new(big.Int), 2)
	for i := 0; i < fix.Len(); i++ {
		assert.Equal(0, fix.Row(i).Sign())
	}

	// outcome 0b0110: parities of AND with the rows are 1,1,0,0; with one
	// low address bit folded the fixup rows read 0b11 and 0b00.
	fix = table.fixupTable(big.NewInt(0b0110), 2)
	assert.Equal(2, fix.Len())
	assert.Equal(2, fix.Width())
	assert.Equal(uint64(0b11), fix.Row(0).Uint64())
	assert.Equal(uint64(0), fix.Row(1).Uint64())
}
