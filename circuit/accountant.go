package circuit

// Accountant memoizes the cost of sub-circuits that are structurally
// identical across loop iterations. BeginCaching is called with an operation
// tag and a count identifying the structural variant; when it returns false
// the caller must skip emitting gates for that repetition and trust that the
// accountant replays the previously recorded cost. When it returns true the
// caller emits gates normally and closes the frame with EndCaching.
//
// Accountants are consulted only when installed with WithAccountant;
// otherwise BeginCaching always answers true and synthesis is exact.
type Accountant interface {
	BeginCaching(tag string, count int) bool
	EndCaching()
}

// costObserver is implemented by accountants that track per-gate costs.
// The builder reports every expensive gate it emits.
type costObserver interface {
	RecordAnd()
}
