// Package qsyn synthesizes reversible boolean circuits for big-integer
// arithmetic and table lookup, and composes them into windowed
// modular-exponentiation circuits as used by order-finding algorithms.
//
// qsyn operates entirely on classical reversible logic (NOT, CNOT,
// Toffoli/AND, SWAP) applied to bit registers; gate sequences are emitted
// against an abstract sink and can be verified with ordinary classical bit
// simulation.
//
// The main entry points are:
//   - circuit: registers, gate primitives, ancilla scopes and the Builder
//   - std/arith: ripple-carry and carry-lookahead adders
//   - std/cmp: apply-an-action-iff-a-relation-holds comparators
//   - std/lookup: multiplexed table lookup with measurement-based unlookup
//   - std/modarith: windowed modular multiplication and exponentiation
//   - profile: pprof-compatible expensive-gate profiles and cost caching
package qsyn

import (
	"github.com/blang/semver/v4"
)

// Version is the current release version of qsyn.
var Version = semver.MustParse("0.3.0")
