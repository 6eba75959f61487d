package ir

// Ordering is the memory ordering requested for an atomic operation.
type Ordering int

const (
	NotAtomic Ordering = iota
	Unordered
	Monotonic
	Consume
	Acquire
	Release
	AcquireRelease
	SequentiallyConsistent
)

var orderingNames = [...]string{
	NotAtomic:              "not_atomic",
	Unordered:              "unordered",
	Monotonic:              "monotonic",
	Consume:                "consume",
	Acquire:                "acquire",
	Release:                "release",
	AcquireRelease:         "acq_rel",
	SequentiallyConsistent: "seq_cst",
}

func ParseOrdering(s string) (Ordering, bool) {
	for o, n := range orderingNames {
		if n == s {
			return Ordering(o), true
		}
	}

	return 0, false
}

func (o Ordering) String() string {
	if o < 0 || int(o) >= len(orderingNames) {
		return "ordering(?)"
	}

	return orderingNames[o]
}

// Valid reports whether o may tag an atomic placeholder.
func (o Ordering) Valid() bool {
	return o >= Unordered && o <= SequentiallyConsistent
}

// Strong reports whether o needs a fence in front of the LL/SC loop.
// Unordered and Monotonic are the only weak orderings.
func (o Ordering) Strong() bool {
	return o > Monotonic
}
