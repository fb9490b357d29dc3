package circuit_test

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/qsyn/qsyn/circuit"
	"github.com/qsyn/qsyn/test"
)

func TestBuilderPrimitives(t *testing.T) {
	assert := test.NewAssert(t)
	b, e := assert.NewBuilder()
	r := b.Alloc(3)

	b.Not(r[0])
	assert.Equal(uint64(1), e.Read(r))
	b.CNOT(r[0], r[1])
	assert.Equal(uint64(3), e.Read(r))
	b.Toffoli(r[0], r[1], r[2])
	assert.Equal(uint64(7), e.Read(r))
	b.Swap(r[0], r[2])
	assert.Equal(uint64(7), e.Read(r))
	b.Not(r[2])
	b.Swap(r[0], r[2])
	assert.Equal(uint64(6), e.Read(r))
	assert.Equal(uint8(0), b.Measure(r[0]))
	assert.Equal(uint8(1), b.Measure(r[1]))
	assert.Equal(3, b.NbCells())
}

func TestBuilderValidation(t *testing.T) {
	assert := test.NewAssert(t)

	_, err := circuit.NewBuilder(nil)
	assert.Error(err)

	_, err = circuit.NewBuilder(test.NewEngine(), circuit.WithExpWindowBits(0))
	assert.Error(err)
	_, err = circuit.NewBuilder(test.NewEngine(), circuit.WithMulWindowBits(17))
	assert.Error(err)

	// a Recorder cannot measure, so it cannot serve measurement-based
	// uncomputation
	_, err = circuit.NewBuilder(circuit.NewRecorder(), circuit.WithMeasurementUncompute(true))
	assert.Error(err)

	b, _ := assert.NewBuilder(circuit.WithExpWindowBits(3), circuit.WithMulWindowBits(2))
	assert.Equal(3, b.Config().ExpWindowBits)
	assert.Equal(2, b.Config().MulWindowBits)
}

func TestScopeDiscipline(t *testing.T) {
	assert := test.NewAssert(t)
	b, _ := assert.NewBuilder()
	b.Alloc(2)

	outer := b.Scope()
	a := outer.Acquire(2)
	assert.Equal(circuit.Qubit(2), a[0])

	inner := b.Scope()
	q := inner.One()
	assert.Equal(circuit.Qubit(4), q)

	// only the innermost scope may operate
	assert.Panics(func() { outer.Acquire(1) })
	assert.Panics(func() { outer.Release() })
	// caller registers cannot be allocated under an open scope
	assert.Panics(func() { b.Alloc(1) })

	inner.Release()
	inner.Release() // idempotent
	assert.Panics(func() { inner.One() })

	// cells are reclaimed on release
	reused := outer.Acquire(1)
	assert.Equal(circuit.Qubit(4), reused[0])
	outer.Release()

	// the watermark keeps the deepest allocation
	assert.Equal(5, b.NbCells())
}

func TestCollapseControls(t *testing.T) {
	assert := test.NewAssert(t)
	for n := 2; n <= 6; n++ {
		for v := uint64(0); v < 1<<n; v++ {
			b, e := assert.NewBuilder()
			ctls := b.Alloc(n)
			out := b.Alloc(1)
			e.Load(ctls, v)

			s := b.Scope()
			ctl, undo := b.CollapseControls(s, ctls)
			b.CNOT(ctl, out[0])
			undo()
			s.Release()

			want := uint64(0)
			if v == 1<<n-1 {
				want = 1
			}
			assert.Equal(want, e.Read(out), "n=%d v=%b", n, v)
			assert.Equal(v, e.Read(ctls), "controls modified: n=%d v=%b", n, v)
		}
	}
}

// synthSample records a small but non-trivial gate stream.
func synthSample(t *testing.T) *circuit.Recorder {
	rec := circuit.NewRecorder()
	b, err := circuit.NewBuilder(rec)
	if err != nil {
		t.Fatal(err)
	}
	x := b.Alloc(4)
	y := b.Alloc(4)
	b.Not(x[0])
	b.Not(x[2])
	for i := range x {
		b.CNOT(x[i], y[i])
	}
	s := b.Scope()
	h := s.One()
	b.AndZero(x[0], y[1], h)
	b.CNOT(h, y[3])
	b.UnAnd(x[0], y[1], h)
	s.Release()
	b.Swap(x[0], x[3])
	return rec
}

func TestRecorder(t *testing.T) {
	assert := test.NewAssert(t)
	rec := synthSample(t)

	assert.Equal(9, rec.NbCells())
	assert.Equal(2, rec.CountKind(circuit.GateNot))
	assert.Equal(5, rec.CountKind(circuit.GateCNOT))
	assert.Equal(2, rec.CountKind(circuit.GateToffoli))
	assert.Equal(1, rec.CountKind(circuit.GateSwap))

	// replaying into an engine matches direct synthesis
	e := test.NewEngine()
	assert.NoError(rec.Replay(e))
	assert.Equal(uint8(1), e.Bit(circuit.Qubit(3)))
	assert.Equal(uint8(0), e.Bit(circuit.Qubit(8)))
}

func TestChecksumDeterminism(t *testing.T) {
	assert := test.NewAssert(t)
	a := synthSample(t)
	b := synthSample(t)
	assert.Equal(a.Checksum(), b.Checksum())

	c := circuit.NewRecorder()
	c.ApplyNot(0)
	assert.NotEqual(a.Checksum(), c.Checksum())
}

func TestMarshalRoundtrip(t *testing.T) {
	assert := test.NewAssert(t)
	rec := synthSample(t)

	var buf bytes.Buffer
	n, err := rec.WriteTo(&buf)
	assert.NoError(err)
	assert.Equal(int64(buf.Len()), n)

	got := circuit.NewRecorder()
	m, err := got.ReadFrom(&buf)
	assert.NoError(err)
	assert.Equal(n, m)

	if diff := cmp.Diff(rec.Gates(), got.Gates()); diff != "" {
		t.Fatalf("gate stream mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(rec.NbCells(), got.NbCells())
	assert.Equal(rec.Checksum(), got.Checksum())
}

func TestMarshalRejectsGarbage(t *testing.T) {
	assert := test.NewAssert(t)
	rec := circuit.NewRecorder()
	_, err := rec.ReadFrom(bytes.NewReader([]byte("definitely not a circuit")))
	assert.Error(err)
}
