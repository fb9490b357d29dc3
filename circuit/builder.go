package circuit

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/qsyn/qsyn/debug"
	"github.com/qsyn/qsyn/logger"
	"github.com/qsyn/qsyn/profile"
)

// Builder owns the cell arena and emits gates against a Sink. All composite
// operations are expressible as a finite ordered sequence of the four
// primitive gates plus measurement; the Builder is the only mutator.
//
// A Builder is not safe for concurrent use: circuit construction is
// single-threaded and purely sequential.
type Builder struct {
	sink Sink
	meas MeasuringSink // non-nil when the sink supports measurement
	bits BitReader     // non-nil when the sink supports direct reads
	acc  Accountant
	obs  costObserver // acc, if it tracks per-gate cost

	cfg  Config
	next uint32 // next fresh cell index
	high uint32 // arena high watermark

	scopes []*Scope

	log zerolog.Logger
}

// NewBuilder returns a Builder emitting against sink.
func NewBuilder(sink Sink, opts ...Option) (*Builder, error) {
	if sink == nil {
		return nil, errors.New("sink must not be nil")
	}
	b := &Builder{
		sink: sink,
		cfg:  DefaultConfig(),
		log:  logger.Logger(),
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	if m, ok := sink.(MeasuringSink); ok {
		b.meas = m
	}
	if r, ok := sink.(BitReader); ok {
		b.bits = r
	}
	if b.cfg.MeasurementUncompute && b.meas == nil {
		return nil, errors.New("measurement-based uncomputation requires a measuring sink")
	}
	if b.acc != nil {
		b.obs, _ = b.acc.(costObserver)
	}
	b.log.Debug().
		Int("expWindowBits", b.cfg.ExpWindowBits).
		Int("mulWindowBits", b.cfg.MulWindowBits).
		Bool("measurementUncompute", b.cfg.MeasurementUncompute).
		Msg("new circuit builder")
	return b, nil
}

// Config returns the synthesis parameters of the builder.
func (b *Builder) Config() Config {
	return b.cfg
}

// Alloc returns a fresh register of n zero-initialized cells owned by the
// caller. Caller registers must be allocated before any ancilla scope is
// opened; cells handed out here are never reclaimed.
func (b *Builder) Alloc(n int) Register {
	if n <= 0 {
		panic(fmt.Sprintf("register length must be positive, got %d", n))
	}
	if len(b.scopes) != 0 {
		panic("allocate caller registers before opening ancilla scopes")
	}
	return b.grab(n)
}

func (b *Builder) grab(n int) Register {
	r := make(Register, n)
	for i := range r {
		r[i] = Qubit(b.next)
		b.next++
	}
	if b.next > b.high {
		b.high = b.next
	}
	return r
}

// NbCells returns the arena high watermark: the maximum number of cells
// simultaneously live during synthesis so far.
func (b *Builder) NbCells() int {
	return int(b.high)
}

// Not emits a NOT gate on q.
func (b *Builder) Not(q Qubit) {
	b.sink.ApplyNot(q)
}

// CNOT emits a controlled-NOT with control c and target t.
func (b *Builder) CNOT(c, t Qubit) {
	if debug.Debug && c == t {
		panic("cnot control and target alias")
	}
	b.sink.ApplyCNOT(c, t)
}

// Toffoli emits a doubly-controlled NOT: t ^= c1 & c2. The target may hold
// data.
func (b *Builder) Toffoli(c1, c2, t Qubit) {
	if debug.Debug && (c1 == t || c2 == t || c1 == c2) {
		panic("toffoli operands alias")
	}
	b.recordAnd()
	b.sink.ApplyAnd(c1, c2, t)
}

// AndZero emits the AND building block: t ^= c1 & c2 under the caller
// contract that t is clean (zero). Its inverse is UnAnd.
func (b *Builder) AndZero(c1, c2, t Qubit) {
	if debug.Debug && b.bits != nil && b.bits.Bit(t) != 0 {
		panic("and target is not clean\n" + debug.Stack())
	}
	if debug.Debug && (c1 == t || c2 == t || c1 == c2) {
		panic("and operands alias")
	}
	b.recordAnd()
	b.sink.ApplyAnd(c1, c2, t)
}

// UnAnd inverts a previous AndZero on the same cells, returning t to zero.
// The realization depends on the builder configuration: re-apply the Toffoli
// (always valid), or measure the target and reset it, with a diagonal
// correction that has no classical-bit effect. The measurement-based
// realization costs no expensive gates.
func (b *Builder) UnAnd(c1, c2, t Qubit) {
	if b.cfg.MeasurementUncompute {
		if b.meas.Measure(t) == 1 {
			b.sink.ApplyNot(t)
		}
		return
	}
	b.recordAnd()
	b.sink.ApplyAnd(c1, c2, t)
}

// Swap emits a SWAP gate on a and bb.
func (b *Builder) Swap(a, bb Qubit) {
	b.sink.ApplySwap(a, bb)
}

// Measure reads q out classically. It panics when the sink does not
// implement MeasuringSink; callers gate measurement-based paths on
// Config().MeasurementUncompute, which NewBuilder validates.
func (b *Builder) Measure(q Qubit) uint8 {
	if b.meas == nil {
		panic("sink does not support measurement")
	}
	return b.meas.Measure(q)
}

func (b *Builder) recordAnd() {
	profile.RecordAnd()
	if b.obs != nil {
		b.obs.RecordAnd()
	}
}

// BeginCaching opens a cost-caching frame for a sub-circuit identified by
// (tag, count). It returns true when the caller must emit gates; false when
// the accountant replays a previously recorded cost and the caller must skip
// emission for this repetition. EndCaching must be called iff BeginCaching
// returned true.
func (b *Builder) BeginCaching(tag string, count int) bool {
	if b.acc == nil {
		return true
	}
	return b.acc.BeginCaching(tag, count)
}

// EndCaching closes the innermost caching frame opened by BeginCaching.
func (b *Builder) EndCaching() {
	if b.acc != nil {
		b.acc.EndCaching()
	}
}

// CollapseControls folds k >= 2 control cells into a single one using a
// logarithmic-depth pairwise AND tree, so that an expensive sub-circuit is
// emitted once under one control instead of k-fold duplicated. The tree
// cells are acquired from s; the returned undo function uncomputes them and
// must run before s is released.
func (b *Builder) CollapseControls(s *Scope, ctls Register) (Qubit, func()) {
	if len(ctls) < 2 {
		panic(fmt.Sprintf("collapse needs at least 2 controls, got %d", len(ctls)))
	}
	type node struct{ c1, c2, t Qubit }
	var tree []node
	cur := ctls.Clone()
	for len(cur) > 1 {
		next := cur[:0]
		var i int
		for i = 0; i+1 < len(cur); i += 2 {
			t := s.One()
			b.AndZero(cur[i], cur[i+1], t)
			tree = append(tree, node{cur[i], cur[i+1], t})
			next = append(next, t)
		}
		if i < len(cur) {
			next = append(next, cur[i])
		}
		cur = next
	}
	undo := func() {
		for i := len(tree) - 1; i >= 0; i-- {
			b.UnAnd(tree[i].c1, tree[i].c2, tree[i].t)
		}
	}
	return cur[0], undo
}
