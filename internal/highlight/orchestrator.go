// Package highlight drives cross-representation highlighting: given a DSL
// path (from an SVG hover or a DSL-editor cursor), it resolves the path kind
// through a dispatch table and marks the matching SVG nodes, the DSL text
// range, and the MWP/formula ranges, keeping at most one target active.
package highlight

import (
	"golang.org/x/text/language"

	"github.com/7i6ht/math2visual-sub000/internal/svgdom"
	"github.com/7i6ht/math2visual-sub000/pkg/dslpath"
	"github.com/7i6ht/math2visual-sub000/pkg/mapping"
)

// State is the orchestrator's highlight lifecycle state.
type State int

// Lifecycle states: Idle -> Active(target) -> Idle.
const (
	StateIdle State = iota
	StateActive
)

// Element is a concrete SVG node a highlight request is bound to, together
// with the document that owns its identity.
type Element struct {
	Doc  *svgdom.Document
	Node svgdom.NodeID
}

// Result reports what a highlight call resolved. Empty range sets are a
// normal state: not every diagram element has a textual echo in the prose.
type Result struct {
	Applied       bool
	DSLRange      mapping.Range
	HasDSLRange   bool
	MWPRanges     []mapping.Range
	FormulaRanges []mapping.Range
}

// Config assembles one orchestrator per applied triad snapshot.
type Config struct {
	Docs      []*svgdom.Document
	Mapping   mapping.Mapping
	MWPText   string
	Formula   string
	Locale    language.Tag
	Threshold int
}

// Orchestrator owns the single-active-highlight state machine for one triad
// snapshot. It is rebuilt on every triad swap, so its mapping and documents
// can never belong to different response cycles.
type Orchestrator struct {
	docs      []*svgdom.Document
	mapping   mapping.Mapping
	mwp       string
	formula   string
	locale    language.Tag
	threshold int

	state   State
	applied []appliedMark
}

// appliedMark records one placed marker so the transition out of Active can
// remove exactly what was placed.
type appliedMark struct {
	doc    *svgdom.Document
	node   svgdom.NodeID
	marker svgdom.Marker
}

// New creates an orchestrator over one triad snapshot.
func New(cfg Config) *Orchestrator {
	threshold := cfg.Threshold
	if threshold == 0 {
		threshold = dslpath.DefaultDisplayThreshold
	}

	return &Orchestrator{
		docs:      cfg.Docs,
		mapping:   cfg.Mapping,
		mwp:       cfg.MWPText,
		formula:   cfg.Formula,
		locale:    cfg.Locale,
		threshold: threshold,
		state:     StateIdle,
	}
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State {
	return o.state
}

// Highlight activates the target addressed by path, optionally bound to a
// concrete SVG element. Any previous target is fully cleared first. Paths
// with an unrecognized kind are a silent no-op: new DSL shapes may appear
// before the engine learns them.
func (o *Orchestrator) Highlight(path string, elem *Element) Result {
	kind, ok := dslpath.Classify(path)
	if !ok {
		return Result{}
	}

	// A trailing index on a leaf is a per-unit rendering variant of the base
	// property. On a structural path it selects an operand and must stay:
	// `entities[0]` and `entities[1]` address different boxes.
	basePath := path
	if dslpath.IsLeaf(kind) {
		basePath = dslpath.Base(path)
	}

	entry, ok := kindDispatch[kind]
	if !ok {
		return Result{}
	}

	o.Clear()

	o.applied = entry.visual(o, path, basePath, elem)
	o.state = StateActive

	result := Result{Applied: true}
	result.DSLRange, result.HasDSLRange = o.dslRange(path, basePath)
	result.MWPRanges, result.FormulaRanges = entry.prose(o, basePath)

	return result
}

// Clear removes every marker belonging to the active target and returns the
// machine to Idle. Clearing is per-marker: each target class carries its own
// marker semantics and must not leak into the next target.
func (o *Orchestrator) Clear() {
	for _, mark := range o.applied {
		mark.doc.Unmark(mark.node, mark.marker)
	}

	o.applied = nil
	o.state = StateIdle
}

// dslRange resolves the mapping range for the path, falling back to the base
// path for instance paths, which the mapping does not list individually.
func (o *Orchestrator) dslRange(path, basePath string) (mapping.Range, bool) {
	if component, ok := o.mapping.Lookup(path); ok {
		return component.Range, true
	}

	if component, ok := o.mapping.Lookup(basePath); ok {
		return component.Range, true
	}

	return mapping.Range{}, false
}

// markElement marks one concrete node.
func (o *Orchestrator) markElement(elem *Element, marker svgdom.Marker) []appliedMark {
	elem.Doc.Mark(elem.Node, marker)

	return []appliedMark{{doc: elem.Doc, node: elem.Node, marker: marker}}
}

// markPath marks every node tagged with the path, across both documents. A
// bare path may resolve to zero, one, or many nodes.
func (o *Orchestrator) markPath(path string, marker svgdom.Marker) []appliedMark {
	var marks []appliedMark

	for _, doc := range o.docs {
		for _, id := range doc.NodesForPath(path) {
			doc.Mark(id, marker)
			marks = append(marks, appliedMark{doc: doc, node: id, marker: marker})
		}
	}

	return marks
}

// markInstances marks every indexed instance node of basePath.
func (o *Orchestrator) markInstances(basePath string, marker svgdom.Marker) []appliedMark {
	var marks []appliedMark

	for _, doc := range o.docs {
		for _, id := range doc.InstanceNodes(basePath) {
			doc.Mark(id, marker)
			marks = append(marks, appliedMark{doc: doc, node: id, marker: marker})
		}
	}

	return marks
}

// hasInstances probes whether any document rendered indexed instances.
func (o *Orchestrator) hasInstances(basePath string) bool {
	for _, doc := range o.docs {
		if len(doc.InstanceNodes(basePath)) > 0 {
			return true
		}
	}

	return false
}
