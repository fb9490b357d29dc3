// Package cmp provides comparisons of little-endian registers against each
// other or against classical constants, expressed as conditional actions:
// instead of producing a result bit, each operation invokes a caller
// callback on a control cell that holds the comparison outcome, then
// uncomputes all scratch state.
//
// Inequalities reduce to the overflow bit of x + ^y, computed with a
// forward ripple carry chain only (no sum bits). Equality XORs the operands
// together and triggers on all-ones via multi-control collapse.
package cmp
