package circuit

// Qubit addresses a single bit-cell in the builder's cell arena.
type Qubit uint32

// Register is an ordered, fixed-length sequence of bit-cells, little-endian.
type Register []Qubit

// Clone returns a copy of the register. The copy addresses the same cells.
func (r Register) Clone() Register {
	c := make(Register, len(r))
	copy(c, r)
	return c
}

// GateKind tags an atomic reversible transform.
type GateKind uint8

const (
	// GateNot flips the target cell.
	GateNot GateKind = iota
	// GateCNOT flips the target cell iff the control cell is set.
	GateCNOT
	// GateToffoli XORs the AND of both controls into the target. When the
	// target is known to be clean the backend may substitute the cheaper
	// AND realization; that substitution is only valid under the caller
	// contract that the target is zero.
	GateToffoli
	// GateSwap exchanges two cells.
	GateSwap
	// GateMeasure reads a cell out classically.
	GateMeasure
)

func (k GateKind) String() string {
	switch k {
	case GateNot:
		return "x"
	case GateCNOT:
		return "cx"
	case GateToffoli:
		return "ccx"
	case GateSwap:
		return "swap"
	case GateMeasure:
		return "measure"
	default:
		return "unknown"
	}
}

// Gate is one atomic reversible transform applied to up to three cells.
// Unused operands are zero; Kind determines the arity.
type Gate struct {
	Kind    GateKind
	A, B, C Qubit
}

// Sink consumes the gate sequence emitted by a Builder. Implementations only
// need classical bit semantics: ApplyAnd computes t ^= c1 & c2 (a Toffoli).
//
// The core never inspects amplitudes; it emits gates in the exact order
// required to preserve reversibility and data dependencies.
type Sink interface {
	ApplyNot(q Qubit)
	ApplyCNOT(c, t Qubit)
	ApplyAnd(c1, c2, t Qubit)
	ApplySwap(a, b Qubit)
}

// MeasuringSink is a Sink with mid-circuit measurement support. It is
// required for measurement-based uncomputation (see WithMeasurementUncompute).
type MeasuringSink interface {
	Sink
	Measure(q Qubit) uint8
}

// BitReader is implemented by sinks that can report the current value of a
// cell without a measurement side effect. It is used only for debug
// assertions (clean AND targets, zeroed ancilla on scope release).
type BitReader interface {
	Bit(q Qubit) uint8
}
