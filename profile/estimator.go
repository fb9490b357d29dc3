package profile

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/qsyn/qsyn/logger"
)

type cacheKey struct {
	tag   string
	count int
}

func (k cacheKey) String() string {
	return fmt.Sprintf("%s/%d", k.tag, k.count)
}

type cacheFrame struct {
	key  cacheKey
	ands int64
}

// Estimator is a cost accountant: it memoizes the expensive-gate cost of
// sub-circuits by (tag, count) key. The first occurrence of a key is costed
// from the gates actually emitted between BeginCaching and EndCaching;
// subsequent occurrences answer false so the builder skips re-synthesis, and
// the recorded cost is replayed into the totals.
//
// An Estimator is installed on a builder with circuit.WithAccountant. Since
// skipped repetitions emit no gates, costing runs are separate from
// simulation runs.
type Estimator struct {
	memo  map[cacheKey]int64
	stack []cacheFrame
	total int64
	log   zerolog.Logger
}

// NewEstimator returns an empty Estimator.
func NewEstimator() *Estimator {
	return &Estimator{
		memo: make(map[cacheKey]int64),
		log:  logger.Logger(),
	}
}

// BeginCaching opens a costing frame for the sub-circuit identified by
// (tag, count). It returns false on a cache hit, in which case the memoized
// cost is replayed and the caller must skip gate emission (and must not call
// EndCaching).
func (e *Estimator) BeginCaching(tag string, count int) bool {
	k := cacheKey{tag, count}
	if cost, ok := e.memo[k]; ok {
		e.replay(cost)
		return false
	}
	e.stack = append(e.stack, cacheFrame{key: k})
	return true
}

// EndCaching closes the innermost costing frame and memoizes its cost.
func (e *Estimator) EndCaching() {
	if len(e.stack) == 0 {
		panic("EndCaching without matching BeginCaching")
	}
	top := e.stack[len(e.stack)-1]
	e.stack = e.stack[:len(e.stack)-1]
	e.memo[top.key] = top.ands
	e.log.Debug().Str("key", top.key.String()).Int64("andGates", top.ands).Msg("cost cached")
}

// RecordAnd accounts one expensive gate into the totals and every open frame.
func (e *Estimator) RecordAnd() {
	e.total++
	for i := range e.stack {
		e.stack[i].ands++
	}
}

func (e *Estimator) replay(cost int64) {
	e.total += cost
	for i := range e.stack {
		e.stack[i].ands += cost
	}
}

// AndGates returns the total expensive-gate cost accounted so far, including
// replayed repetitions.
func (e *Estimator) AndGates() int64 {
	return e.total
}

// CachedCost reports the memoized cost for (tag, count), if present.
func (e *Estimator) CachedCost(tag string, count int) (int64, bool) {
	cost, ok := e.memo[cacheKey{tag, count}]
	return cost, ok
}
