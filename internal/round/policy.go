package round

// SourcingPolicy decides how much of a request the persisted store may serve.
//
//	stored < Low          → reuse nothing, generate everything
//	Low ≤ stored < High   → reuse half, generate the rest
//	stored ≥ High         → reuse everything
type SourcingPolicy struct {
	LowWatermark  int
	HighWatermark int
}

// DefaultSourcingPolicy returns the production watermarks.
func DefaultSourcingPolicy() SourcingPolicy {
	return SourcingPolicy{LowWatermark: 20, HighWatermark: 100}
}

// Reuse returns how many of requested items to take from a store holding
// stored items. Never more than stored.
func (p SourcingPolicy) Reuse(stored, requested int) int {
	var n int
	switch {
	case stored < p.LowWatermark:
		n = 0
	case stored < p.HighWatermark:
		n = requested / 2
	default:
		n = requested
	}
	return min(n, stored)
}
