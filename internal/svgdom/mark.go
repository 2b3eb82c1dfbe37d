package svgdom

import (
	"strings"

	"golang.org/x/net/html"
)

// classAttr is the attribute highlight markers are written into.
const classAttr = "class"

// Mark adds a highlight marker to a node's class attribute. Marking an
// already-marked node is a no-op, so re-applying a highlight is idempotent.
func (d *Document) Mark(id NodeID, marker Marker) {
	node, ok := d.nodes[id]
	if !ok {
		return
	}

	classes := classList(node)
	if containsToken(classes, string(marker)) {
		return
	}

	classes = append(classes, string(marker))
	setAttr(node, classAttr, strings.Join(classes, " "))
}

// Unmark removes a highlight marker from a node's class attribute, leaving
// unrelated classes untouched.
func (d *Document) Unmark(id NodeID, marker Marker) {
	node, ok := d.nodes[id]
	if !ok {
		return
	}

	classes := classList(node)

	kept := classes[:0]
	for _, class := range classes {
		if class != string(marker) {
			kept = append(kept, class)
		}
	}

	setAttr(node, classAttr, strings.Join(kept, " "))
}

// Marked reports whether a node currently carries the marker.
func (d *Document) Marked(id NodeID, marker Marker) bool {
	node, ok := d.nodes[id]
	if !ok {
		return false
	}

	return containsToken(classList(node), string(marker))
}

func classList(node *html.Node) []string {
	value, ok := attrValue(node, classAttr)
	if !ok {
		return nil
	}

	return strings.Fields(value)
}

func containsToken(tokens []string, token string) bool {
	for _, candidate := range tokens {
		if candidate == token {
			return true
		}
	}

	return false
}

func setAttr(node *html.Node, name, value string) {
	for i := range node.Attr {
		if node.Attr[i].Key == name {
			node.Attr[i].Val = value

			return
		}
	}

	node.Attr = append(node.Attr, html.Attribute{Key: name, Val: value})
}
