package test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qsyn/qsyn/circuit"
)

// Assert is a helper to test synthesized circuits.
type Assert struct {
	t *testing.T
	*require.Assertions
}

// NewAssert returns an Assert helper embedding a testify/require object for
// convenience.
func NewAssert(t *testing.T) *Assert {
	return &Assert{t: t, Assertions: require.New(t)}
}

// Run runs the test function fn as a subtest. The subtest is parametrized by
// the description strings descs.
func (a *Assert) Run(fn func(assert *Assert), descs ...string) {
	desc := strings.Join(descs, "/")
	a.t.Run(desc, func(t *testing.T) {
		assert := &Assert{t, require.New(t)}
		fn(assert)
	})
}

// Log logs using the test instance logger.
func (a *Assert) Log(v ...interface{}) {
	a.t.Log(v...)
}

// NewBuilder returns a fresh simulation engine and a builder targeting it,
// failing the test on a configuration error.
func (a *Assert) NewBuilder(opts ...circuit.Option) (*circuit.Builder, *Engine) {
	engine := NewEngine()
	b, err := circuit.NewBuilder(engine, opts...)
	a.NoError(err)
	return b, engine
}
