package modarith

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/qsyn/qsyn/circuit"
	"github.com/qsyn/qsyn/test"
)

func TestAddModSubMod(t *testing.T) {
	assert := test.NewAssert(t)
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 500; trial++ {
		n := 2 + rng.Intn(6)
		N := uint64(2 + rng.Intn(1<<uint(n)-2))
		x := rng.Uint64() % N
		y := rng.Uint64() % N

		b, e := assert.NewBuilder(circuit.WithMeasurementUncompute(trial%2 == 0))
		xs := b.Alloc(n)
		ys := b.Alloc(n)
		e.Load(xs, x)
		e.Load(ys, y)
		bigN := new(big.Int).SetUint64(N)

		assert.NoError(AddMod(b, bigN, xs, ys))
		assert.Equal((x+y)%N, e.Read(ys), "n=%d N=%d x=%d y=%d", n, N, x, y)
		assert.Equal(x, e.Read(xs))

		assert.NoError(SubMod(b, bigN, xs, ys))
		assert.Equal(y, e.Read(ys), "inverse: n=%d N=%d x=%d y=%d", n, N, x, y)
		assert.Equal(x, e.Read(xs))
	}
}

func TestMulAddWindowed(t *testing.T) {
	assert := test.NewAssert(t)
	rng := rand.New(rand.NewSource(8))
	for trial := 0; trial < 200; trial++ {
		n := 2 + rng.Intn(5)
		N := uint64(2 + rng.Intn(1<<uint(n)-2))
		ne := 1 + rng.Intn(3)
		src := rng.Uint64() % N
		dst := rng.Uint64() % N
		ev := uint64(rng.Intn(1 << uint(ne)))
		factors := make([]*big.Int, 1<<uint(ne))
		for v := range factors {
			factors[v] = new(big.Int).SetUint64(uint64(rng.Intn(int(N))))
		}

		b, e := assert.NewBuilder(
			circuit.WithMeasurementUncompute(trial%2 == 0),
			circuit.WithMulWindowBits(1+rng.Intn(3)),
		)
		ewin := b.Alloc(ne)
		srcReg := b.Alloc(n)
		dstReg := b.Alloc(n)
		e.Load(ewin, ev)
		e.Load(srcReg, src)
		e.Load(dstReg, dst)
		bigN := new(big.Int).SetUint64(N)

		assert.NoError(MulAddWindowed(b, bigN, factors, ewin, srcReg, dstReg))
		want := (dst + src*factors[ev].Uint64()) % N
		assert.Equal(want, e.Read(dstReg), "n=%d N=%d src=%d dst=%d e=%d", n, N, src, dst, ev)
		assert.Equal(src, e.Read(srcReg))
		assert.Equal(ev, e.Read(ewin))

		assert.NoError(MulSubWindowed(b, bigN, factors, ewin, srcReg, dstReg))
		assert.Equal(dst, e.Read(dstReg), "inverse: n=%d N=%d src=%d dst=%d e=%d", n, N, src, dst, ev)
	}
}

func TestExpWindowedProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)

	properties.Property("windowed modexp matches big.Int exponentiation", prop.ForAll(
		func(n, ne, we, wm int, seed int64) bool {
			rng := rand.New(rand.NewSource(seed))
			nbOdd := 1<<uint(n-1) - 1
			if nbOdd < 1 {
				nbOdd = 1
			}
			N := int64(3) + 2*rng.Int63n(int64(nbOdd))
			var g int64
			for {
				g = 1 + rng.Int63n(N-1)
				if new(big.Int).GCD(nil, nil, big.NewInt(g), big.NewInt(N)).Int64() == 1 {
					break
				}
			}
			e := rng.Uint64() & (1<<uint(ne) - 1)
			a0 := rng.Int63n(N)

			engine := test.NewEngine()
			b, err := circuit.NewBuilder(engine,
				circuit.WithMeasurementUncompute(seed%2 == 0),
				circuit.WithExpWindowBits(we),
				circuit.WithMulWindowBits(wm),
			)
			if err != nil {
				return false
			}
			exp := b.Alloc(ne)
			acc := b.Alloc(n)
			engine.Load(exp, e)
			engine.Load(acc, uint64(a0))

			if err := ExpWindowed(b, big.NewInt(g), big.NewInt(N), exp, acc); err != nil {
				return false
			}
			want := new(big.Int).Exp(big.NewInt(g), new(big.Int).SetUint64(e), big.NewInt(N))
			want.Mul(want, big.NewInt(a0))
			want.Mod(want, big.NewInt(N))
			return engine.Read(acc) == want.Uint64() && engine.Read(exp) == e
		},
		gen.IntRange(2, 6),
		gen.IntRange(1, 6),
		gen.IntRange(1, 3),
		gen.IntRange(1, 3),
		gen.Int64(),
	))

	properties.TestingRun(t)
}

func TestExpWindowedExample(t *testing.T) {
	// 7^11 mod 15 == 13
	assert := test.NewAssert(t)
	b, e := assert.NewBuilder()
	exp := b.Alloc(4)
	acc := b.Alloc(4)
	e.Load(exp, 11)
	e.Load(acc, 1)
	assert.NoError(ExpWindowed(b, big.NewInt(7), big.NewInt(15), exp, acc))
	assert.Equal(uint64(13), e.Read(acc))
	assert.Equal(uint64(11), e.Read(exp))
}

func TestModArgumentChecks(t *testing.T) {
	assert := test.NewAssert(t)
	b, _ := assert.NewBuilder()
	xs := b.Alloc(3)
	ys := b.Alloc(3)
	short := b.Alloc(2)

	assert.Error(AddMod(b, big.NewInt(1), xs, ys))
	assert.Error(AddMod(b, big.NewInt(9), xs, ys)) // 4-bit modulus, 3-cell registers
	assert.Error(SubMod(b, big.NewInt(5), xs, short))
	assert.Error(MulAddWindowed(b, big.NewInt(5), []*big.Int{big.NewInt(1)}, xs, xs, ys))
	assert.Error(ExpWindowed(b, big.NewInt(2), big.NewInt(8), xs, ys))  // even modulus
	assert.Error(ExpWindowed(b, big.NewInt(3), big.NewInt(9), xs, ys))  // not coprime
	assert.Error(ExpWindowed(b, big.NewInt(2), big.NewInt(17), xs, ys)) // modulus too wide
}
