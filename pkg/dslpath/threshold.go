package dslpath

import "math"

// DefaultDisplayThreshold is the largest quantity the renderer draws as
// individual icon instances before collapsing to a single numeric label.
const DefaultDisplayThreshold = 20

// RendersAsInstances reports whether a quantity is expected to have been
// rendered as per-unit instance nodes (`entity_type[0..q-1]`) rather than a
// single `entity_quantity` text node. Only positive integral quantities up to
// the threshold qualify.
func RendersAsInstances(quantity float64, threshold int) bool {
	if threshold < 1 {
		return false
	}

	if quantity < 1 || quantity > float64(threshold) {
		return false
	}

	return quantity == math.Trunc(quantity)
}
