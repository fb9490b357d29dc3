package circuit

import "github.com/qsyn/qsyn/debug"

// Scope is a LIFO region of freshly allocated, zero-initialized bit-cells.
// Cells are handed out clean and must be returned to zero before the scope
// is released; the composite operation using them is responsible for
// uncomputing them. Failure to do so is a caller bug, checked only under the
// debug build tag when the sink supports direct reads.
//
// Scope nesting is strictly hierarchical: only the innermost open scope may
// acquire or release cells.
type Scope struct {
	b        *Builder
	base     uint32
	cells    Register
	released bool
}

// Scope opens a new ancilla scope. Release it with Scope.Release, typically
// deferred at operation entry so the scope is destroyed at operation exit
// even on early failure.
func (b *Builder) Scope() *Scope {
	s := &Scope{b: b, base: b.next}
	b.scopes = append(b.scopes, s)
	return s
}

// Acquire returns n fresh zero cells belonging to the scope.
func (s *Scope) Acquire(n int) Register {
	s.check()
	r := s.b.grab(n)
	s.cells = append(s.cells, r...)
	return r
}

// One returns a single fresh zero cell belonging to the scope.
func (s *Scope) One() Qubit {
	return s.Acquire(1)[0]
}

// Release destroys the scope and reclaims its cells. The scope must be the
// innermost open one (no partial release). Releasing twice is a no-op so
// that Release can be deferred alongside early manual release.
func (s *Scope) Release() {
	if s.released {
		return
	}
	s.check()
	if debug.Debug && s.b.bits != nil {
		for _, q := range s.cells {
			if s.b.bits.Bit(q) != 0 {
				panic("ancilla cell released non-zero\n" + debug.Stack())
			}
		}
	}
	s.b.next = s.base
	s.b.scopes = s.b.scopes[:len(s.b.scopes)-1]
	s.released = true
}

func (s *Scope) check() {
	if s.released {
		panic("use of released ancilla scope")
	}
	if n := len(s.b.scopes); n == 0 || s.b.scopes[n-1] != s {
		panic("ancilla scopes must nest strictly; operate on the innermost scope")
	}
}
