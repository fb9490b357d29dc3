// Package arith provides reversible adders for little-endian registers:
// the Takahashi-Tani-Kunihiro (TTK) ripple adder, the
// Cuccaro-Draper-Kutin-Moulton (CDKM) adder, the Gidney ripple adder built
// on the AND building block, and the Draper-Kutin-Rains-Svore (DKRS)
// carry-lookahead adder, plus subtraction and addition by classical
// constants.
//
// All in-place adders follow the same length rules: with len(y) == len(x)
// the sum wraps modulo 2^n, with len(y) == len(x)+1 the top cell of y
// receives the carry-out, and with len(y) >= len(x)+2 the addend is
// zero-padded to len(y)-1 cells before delegating.
package arith
