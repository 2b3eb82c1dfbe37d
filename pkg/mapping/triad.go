package mapping

import (
	"errors"
	"fmt"

	"github.com/7i6ht/math2visual-sub000/pkg/dsltree"
)

// ErrNoTriad indicates an operation that needs a triad before one was applied.
var ErrNoTriad = errors.New("mapping: no triad applied")

// Triad is one atomic regeneration result: the DSL text, the SVG markup in
// both styles, the component mapping, and the parsed tree, all produced by
// the same backend response. Members of different triads must never be mixed,
// because ranges are only valid relative to their own text snapshot.
type Triad struct {
	DSLText      string
	MWPText      string
	Formula      string
	SVGFormal    string
	SVGIntuitive string
	Mapping      Mapping
	Tree         *dsltree.Operation

	// MissingEntities lists entity names the backend could not find icons
	// for; surfaced to the user, not an error.
	MissingEntities []string
}

// Validate checks the triad's internal consistency before it may be applied.
func (t *Triad) Validate() error {
	if t == nil {
		return ErrNoTriad
	}

	err := t.Mapping.Validate(t.DSLText)
	if err != nil {
		return fmt.Errorf("triad: %w", err)
	}

	return nil
}
