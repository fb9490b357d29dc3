// Package circuit provides the bit-register abstraction, the atomic
// reversible gates and the Builder that emits gate sequences against an
// abstract execution sink.
//
// A Register is an ordered, fixed-length sequence of bit-cells, little-endian
// (index 0 is the least significant bit). Registers never resize; operations
// that need more capacity allocate a fresh, explicitly sized register.
//
// Scratch cells are managed through ancilla scopes: a scope hands out
// zero-initialized cells and requires them to be restored to zero before the
// scope is released. Scope nesting is strictly hierarchical.
//
// Circuit construction is single-threaded and purely sequential: synthesis
// either completes deterministically or a precondition violation aborts it
// before any gate is emitted.
package circuit
