package svgdom

import "github.com/7i6ht/math2visual-sub000/pkg/dslpath"

// EventKind names a pointer event delivered to a bound node.
type EventKind string

// Bound event kinds.
const (
	EventMouseEnter EventKind = "mouseenter"
	EventMouseLeave EventKind = "mouseleave"
	EventClick      EventKind = "click"
)

// Event is one delivered interaction.
type Event struct {
	Node  NodeID
	Path  string
	Class NodeClass
	Kind  EventKind
}

// Handler consumes one event.
type Handler func(Event)

type handlerKey struct {
	node NodeID
	kind EventKind
}

// Registry is the explicit (node, event kind) -> handler table that stands
// in for DOM event properties. It is fully cleared and rebuilt every time
// markup is replaced, which makes rebinding idempotent by construction.
type Registry struct {
	handlers map[handlerKey]Handler
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[handlerKey]Handler)}
}

// Reset discards every binding.
func (r *Registry) Reset() {
	r.handlers = make(map[handlerKey]Handler)
}

// Len returns the number of bindings.
func (r *Registry) Len() int {
	return len(r.handlers)
}

func (r *Registry) bind(node NodeID, kind EventKind, handler Handler) {
	r.handlers[handlerKey{node: node, kind: kind}] = handler
}

// Dispatch delivers an event to the bound handler, if any. Exactly one
// handler can be bound per (node, kind), so a dispatch fires at most once.
func (r *Registry) Dispatch(event Event) bool {
	handler, ok := r.handlers[handlerKey{node: event.Node, kind: event.Kind}]
	if !ok {
		return false
	}

	handler(event)

	return true
}

// Interactions receives classified pointer events from bound nodes.
type Interactions interface {
	// HoverEnter is called with the node's own path and identity.
	HoverEnter(path string, node NodeID)
	// HoverLeave is called when the pointer leaves any bound node.
	HoverLeave()
	// Click is called with the node's click target path, which may be
	// redirected away from the node's own path.
	Click(path string, node NodeID)
}

// BindInteractions classifies every tagged node of the document and
// (re)binds its hover and click handlers. The registry is reset first, so
// repeated calls over unchanged markup never accumulate duplicate bindings.
// It must run again after every wholesale markup replacement: the old
// document's identities die with it.
func BindInteractions(doc *Document, registry *Registry, interactions Interactions) {
	registry.Reset()

	for _, tagged := range doc.Tagged() {
		node := tagged
		clickPath := clickTarget(node)

		registry.bind(node.ID, EventMouseEnter, func(Event) {
			interactions.HoverEnter(node.Path, node.ID)
		})

		registry.bind(node.ID, EventMouseLeave, func(Event) {
			interactions.HoverLeave()
		})

		registry.bind(node.ID, EventClick, func(Event) {
			interactions.Click(clickPath, node.ID)
		})
	}
}

// clickTarget resolves the path a click on the node addresses. Quantity text
// redirects to its parent entity path: the edit popup edits the entity, not
// the text node.
func clickTarget(node TaggedNode) string {
	if node.Class == ClassQuantityText {
		return dslpath.Parent(dslpath.Base(node.Path))
	}

	return node.Path
}
