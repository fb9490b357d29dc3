package profile_test

import (
	"math/big"
	"testing"

	"github.com/qsyn/qsyn/circuit"
	"github.com/qsyn/qsyn/profile"
	"github.com/qsyn/qsyn/std/arith"
	"github.com/qsyn/qsyn/std/modarith"
	"github.com/qsyn/qsyn/test"
)

// synthModExp synthesizes a small windowed modular exponentiation against
// the given sink and returns the builder error, if any.
func synthModExp(sink circuit.Sink, opts ...circuit.Option) error {
	b, err := circuit.NewBuilder(sink, opts...)
	if err != nil {
		return err
	}
	exp := b.Alloc(5)
	acc := b.Alloc(4)
	return modarith.ExpWindowed(b, big.NewInt(2), big.NewInt(13), exp, acc)
}

func TestEstimatorMatchesSynthesis(t *testing.T) {
	assert := test.NewAssert(t)

	// reference: full synthesis, counting Toffoli gates in the record
	rec := circuit.NewRecorder()
	assert.NoError(synthModExp(rec))
	want := int64(rec.CountKind(circuit.GateToffoli))
	assert.Greater(want, int64(0))

	// estimated: repeated windows are skipped and their cost replayed
	est := profile.NewEstimator()
	assert.NoError(synthModExp(test.NewEngine(), circuit.WithAccountant(est)))
	assert.Equal(want, est.AndGates())

	// the joint lookup address is the 4 accumulator bits plus one full
	// exponent window
	nbRows := 1 << uint(4+circuit.DefaultWindowBits)
	cost, ok := est.CachedCost("lookup.Select", nbRows<<4)
	assert.True(ok)
	assert.Greater(cost, int64(0))
}

func TestEstimatorCaching(t *testing.T) {
	assert := test.NewAssert(t)
	est := profile.NewEstimator()

	assert.True(est.BeginCaching("op", 7))
	est.RecordAnd()
	est.RecordAnd()
	est.EndCaching()
	assert.Equal(int64(2), est.AndGates())

	// hit: cost replayed, no frame opened
	assert.False(est.BeginCaching("op", 7))
	assert.Equal(int64(4), est.AndGates())

	// different variant is a miss
	assert.True(est.BeginCaching("op", 8))
	est.RecordAnd()
	est.EndCaching()
	assert.Equal(int64(5), est.AndGates())

	// nested frames account inner costs into the outer frame
	assert.True(est.BeginCaching("outer", 1))
	est.RecordAnd()
	assert.False(est.BeginCaching("op", 7))
	est.EndCaching()
	outerCost, ok := est.CachedCost("outer", 1)
	assert.True(ok)
	assert.Equal(int64(3), outerCost)

	assert.Panics(func() { est.EndCaching() })
}

func TestProfileSession(t *testing.T) {
	assert := test.NewAssert(t)

	p := profile.Start(profile.WithNoOutput())
	b, err := circuit.NewBuilder(test.NewEngine())
	assert.NoError(err)
	x := b.Alloc(6)
	y := b.Alloc(6)
	assert.NoError(arith.AddCG(b, x, y))
	p.Stop()

	assert.Greater(p.NbAnds(), 0)
	top := p.Top()
	assert.Contains(top, "and-gates")
}
