package reader

// Limits bounds a Reader's tolerance for untrusted input, per spec §4.2.
// A zero-value Limits disables every check: the Reader then never
// allocates or consults a per-depth counter stack, so safety ceilings cost
// nothing when the caller trusts its input.
type Limits struct {
	MaxDepth       int
	MaxBytesLength uint64
	MaxArrayLength int
	MaxObjectSize  int
}

func (l Limits) countingEnabled() bool {
	return l.MaxArrayLength > 0 || l.MaxObjectSize > 0
}

// Option configures a Reader's Limits at construction time.
type Option func(*Limits)

// WithMaxDepth bounds container nesting depth.
func WithMaxDepth(n int) Option {
	return func(l *Limits) { l.MaxDepth = n }
}

// WithMaxBytesLength bounds the length of any single bytes-family payload.
func WithMaxBytesLength(n uint64) Option {
	return func(l *Limits) { l.MaxBytesLength = n }
}

// WithMaxArrayLength bounds the number of elements iterated from a single
// array, independently per nesting depth.
func WithMaxArrayLength(n int) Option {
	return func(l *Limits) { l.MaxArrayLength = n }
}

// WithMaxObjectSize bounds the number of entries iterated from a single
// object, independently per nesting depth.
func WithMaxObjectSize(n int) Option {
	return func(l *Limits) { l.MaxObjectSize = n }
}
