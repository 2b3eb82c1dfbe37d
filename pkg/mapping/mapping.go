// Package mapping defines the component mapping the generation backend
// returns alongside every DSL/SVG pair: a table from DSL path to the text
// range (and optional scalar value) of that component in the DSL text.
package mapping

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Sentinel errors for mapping validation.
var (
	// ErrRangeOutOfBounds indicates a dsl_range outside the paired DSL text.
	ErrRangeOutOfBounds = errors.New("mapping: dsl_range out of bounds")
	// ErrRangeInverted indicates a dsl_range with end before start.
	ErrRangeInverted = errors.New("mapping: dsl_range end before start")
)

// Range is a half-open [start, end) byte range into one exact text snapshot.
// Ranges are meaningless against any other text.
type Range struct {
	Start int
	End   int
}

// Len returns the number of bytes covered.
func (r Range) Len() int {
	return r.End - r.Start
}

// Contains reports whether other lies fully within r.
func (r Range) Contains(other Range) bool {
	return other.Start >= r.Start && other.End <= r.End
}

// Slice extracts the covered substring. The caller must have validated the
// range against this exact text.
func (r Range) Slice(text string) string {
	return text[r.Start:r.End]
}

// MarshalJSON encodes the range in the backend's `[start, end]` form.
func (r Range) MarshalJSON() ([]byte, error) {
	return []byte("[" + strconv.Itoa(r.Start) + "," + strconv.Itoa(r.End) + "]"), nil
}

// UnmarshalJSON decodes the backend's `[start, end]` form.
func (r *Range) UnmarshalJSON(data []byte) error {
	var pair [2]int

	err := json.Unmarshal(data, &pair)
	if err != nil {
		return fmt.Errorf("mapping: decode range: %w", err)
	}

	r.Start = pair[0]
	r.End = pair[1]

	return nil
}

// Component is one mapping entry: where a path's text lives in the DSL text,
// and, for leaf-property paths only, the scalar value at that path.
type Component struct {
	Range Range  `json:"dsl_range"`
	Value string `json:"property_value,omitempty"`
}

// Mapping maps DSL paths to their components. Keys are unique, order is
// irrelevant, and the table is only ever replaced in full together with the
// DSL text and SVG it was produced alongside.
type Mapping map[string]Component

// Lookup returns the component for a path.
func (m Mapping) Lookup(path string) (Component, bool) {
	component, exists := m[path]

	return component, exists
}

// Value returns the property value recorded for a path, or empty.
func (m Mapping) Value(path string) string {
	return m[path].Value
}

// Validate checks every dsl_range against the DSL text the mapping was
// produced with. A violation means the triad members drifted apart, which is
// a defect, never a recoverable state.
func (m Mapping) Validate(dslText string) error {
	for path, component := range m {
		rng := component.Range

		if rng.End < rng.Start {
			return fmt.Errorf("%w: %s %v", ErrRangeInverted, path, rng)
		}

		if rng.Start < 0 || rng.End > len(dslText) {
			return fmt.Errorf("%w: %s %v (text length %d)", ErrRangeOutOfBounds, path, rng, len(dslText))
		}
	}

	return nil
}
