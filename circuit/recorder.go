package circuit

import (
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Recorder is a Sink that records the emitted gate sequence instead of
// executing it. Recorded circuits can be replayed into another sink,
// serialized with WriteTo and compared by checksum.
//
// A Recorder does not implement MeasuringSink: a recorded stream cannot
// branch on measurement outcomes, so builders targeting a Recorder must use
// the fully reversible uncomputation path.
type Recorder struct {
	gates []Gate
	nb    uint32 // number of cells touched (max index + 1)
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) touch(qs ...Qubit) {
	for _, q := range qs {
		if uint32(q)+1 > r.nb {
			r.nb = uint32(q) + 1
		}
	}
}

func (r *Recorder) ApplyNot(q Qubit) {
	r.touch(q)
	r.gates = append(r.gates, Gate{Kind: GateNot, A: q})
}

func (r *Recorder) ApplyCNOT(c, t Qubit) {
	r.touch(c, t)
	r.gates = append(r.gates, Gate{Kind: GateCNOT, A: c, B: t})
}

func (r *Recorder) ApplyAnd(c1, c2, t Qubit) {
	r.touch(c1, c2, t)
	r.gates = append(r.gates, Gate{Kind: GateToffoli, A: c1, B: c2, C: t})
}

func (r *Recorder) ApplySwap(a, b Qubit) {
	r.touch(a, b)
	r.gates = append(r.gates, Gate{Kind: GateSwap, A: a, B: b})
}

// Gates returns the recorded gate sequence. The slice is owned by the
// Recorder; callers must not mutate it.
func (r *Recorder) Gates() []Gate {
	return r.gates
}

// NbGates returns the number of recorded gates.
func (r *Recorder) NbGates() int {
	return len(r.gates)
}

// NbCells returns the number of distinct cells the recorded gates touch.
func (r *Recorder) NbCells() int {
	return int(r.nb)
}

// CountKind returns the number of recorded gates of the given kind.
func (r *Recorder) CountKind(k GateKind) int {
	var n int
	for i := range r.gates {
		if r.gates[i].Kind == k {
			n++
		}
	}
	return n
}

// Replay feeds the recorded gate sequence into sink, in order.
func (r *Recorder) Replay(sink Sink) error {
	for i := range r.gates {
		g := &r.gates[i]
		switch g.Kind {
		case GateNot:
			sink.ApplyNot(g.A)
		case GateCNOT:
			sink.ApplyCNOT(g.A, g.B)
		case GateToffoli:
			sink.ApplyAnd(g.A, g.B, g.C)
		case GateSwap:
			sink.ApplySwap(g.A, g.B)
		default:
			return fmt.Errorf("cannot replay gate kind %s", g.Kind)
		}
	}
	return nil
}

// Checksum returns a blake2b digest of the recorded gate stream. Two
// synthesis runs with the same inputs produce the same checksum; it is used
// to check that synthesis is a pure function of its classical inputs.
func (r *Recorder) Checksum() [blake2b.Size256]byte {
	kinds, as, bs, cs := r.columns()
	h, _ := blake2b.New256(nil)
	buf := make([]byte, 4)
	writeCol := func(col []uint32) {
		for _, v := range col {
			buf[0] = byte(v)
			buf[1] = byte(v >> 8)
			buf[2] = byte(v >> 16)
			buf[3] = byte(v >> 24)
			h.Write(buf)
		}
	}
	writeCol(kinds)
	writeCol(as)
	writeCol(bs)
	writeCol(cs)
	var sum [blake2b.Size256]byte
	copy(sum[:], h.Sum(nil))
	return sum
}

// columns transposes the gate stream into four uint32 columns for
// serialization and hashing.
func (r *Recorder) columns() (kinds, as, bs, cs []uint32) {
	n := len(r.gates)
	kinds = make([]uint32, n)
	as = make([]uint32, n)
	bs = make([]uint32, n)
	cs = make([]uint32, n)
	for i := range r.gates {
		kinds[i] = uint32(r.gates[i].Kind)
		as[i] = uint32(r.gates[i].A)
		bs[i] = uint32(r.gates[i].B)
		cs[i] = uint32(r.gates[i].C)
	}
	return
}
