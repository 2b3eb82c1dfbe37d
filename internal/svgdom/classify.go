package svgdom

import "github.com/7i6ht/math2visual-sub000/pkg/dslpath"

// NodeClass is the semantic category of a tagged SVG node.
type NodeClass string

// The nine node classes the renderer emits.
const (
	ClassQuantityText      NodeClass = "quantity-text"
	ClassContainerNameText NodeClass = "container-name-text"
	ClassAttrNameText      NodeClass = "attr-name-text"
	ClassEntityIcon        NodeClass = "entity-icon"
	ClassContainerTypeIcon NodeClass = "container-type-icon"
	ClassAttrTypeIcon      NodeClass = "attr-type-icon"
	ClassOperationGroup    NodeClass = "operation-group"
	ClassPlainBox          NodeClass = "plain-box"
	ClassResultBox         NodeClass = "result-box"
)

// classifierRule maps a (tag, path kind) observation to a node class.
type classifierRule struct {
	matches func(tag string, kind dslpath.Kind) bool
	class   NodeClass
}

// classifierRules is checked in order. Text classes come before icon and box
// classes: a label and its surrounding box can share ancestry in the markup,
// and an event must attribute to the most specific class that applies.
//
//nolint:gochecknoglobals // Ordered package-level classification table.
var classifierRules = []classifierRule{
	{matchText(dslpath.KindEntityQuantity), ClassQuantityText},
	{matchText(dslpath.KindContainerName), ClassContainerNameText},
	{matchText(dslpath.KindAttrName), ClassAttrNameText},
	{matchKind(dslpath.KindEntityType), ClassEntityIcon},
	{matchKind(dslpath.KindContainerType), ClassContainerTypeIcon},
	{matchKind(dslpath.KindAttrType), ClassAttrTypeIcon},
	{matchKind(dslpath.KindOperation), ClassOperationGroup},
	{matchKind(dslpath.KindResultContainer), ClassResultBox},
	{matchKind(dslpath.KindEntities), ClassPlainBox},
}

// textTags are the SVG elements that render text content.
//
//nolint:gochecknoglobals // Package-level tag set.
var textTags = map[string]bool{
	"text":  true,
	"tspan": true,
}

func matchText(want dslpath.Kind) func(string, dslpath.Kind) bool {
	return func(tag string, kind dslpath.Kind) bool {
		return textTags[tag] && kind == want
	}
}

func matchKind(want dslpath.Kind) func(string, dslpath.Kind) bool {
	return func(_ string, kind dslpath.Kind) bool {
		return kind == want
	}
}

// ClassifyNode resolves a tagged element to its node class from its tag name
// and path suffix. Unrecognized combinations return ok=false and stay
// interaction-free.
func ClassifyNode(tag, path string) (NodeClass, bool) {
	kind, ok := dslpath.Classify(path)
	if !ok {
		return "", false
	}

	for _, rule := range classifierRules {
		if rule.matches(tag, kind) {
			return rule.class, true
		}
	}

	return "", false
}

// Marker is a highlight marker vocabulary. Each target class carries its own
// marker semantics; clearing is per-marker so one class never leaks into the
// next highlight.
type Marker string

// Markers by target class.
const (
	MarkerBox  Marker = "highlight-box"
	MarkerText Marker = "highlight-text"
	MarkerIcon Marker = "highlight-icon"
)

// MarkerFor returns the marker a node class is highlighted with.
func MarkerFor(class NodeClass) Marker {
	switch class {
	case ClassQuantityText, ClassContainerNameText, ClassAttrNameText:
		return MarkerText
	case ClassEntityIcon, ClassContainerTypeIcon, ClassAttrTypeIcon:
		return MarkerIcon
	case ClassOperationGroup, ClassPlainBox, ClassResultBox:
		return MarkerBox
	default:
		return MarkerBox
	}
}
