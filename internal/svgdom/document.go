// Package svgdom wraps freshly-injected SVG markup in a traversable document:
// it parses the markup, assigns stable node identities, classifies every node
// tagged with a DSL path into its semantic class, and carries the event
// handler registry that replaces direct DOM event properties.
package svgdom

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/7i6ht/math2visual-sub000/pkg/dslpath"
)

// PathAttr is the attribute the renderer tags addressable SVG nodes with.
const PathAttr = "data-dsl-path"

// NodeID identifies one element node within a single parsed document.
// Identities do not survive a markup replacement; the whole document is
// discarded and re-parsed together with its bindings.
type NodeID int

// TaggedNode is one path-carrying element and its classification.
type TaggedNode struct {
	ID    NodeID
	Path  string
	Tag   string
	Class NodeClass
}

// Document is a parsed SVG markup snapshot.
type Document struct {
	roots  []*html.Node
	nodes  map[NodeID]*html.Node
	byPath map[string][]NodeID
	tagged []TaggedNode
}

// Parse parses SVG markup. Nodes carrying a path attribute with an
// unrecognized path kind are kept in the tree but not tagged; unknown DSL
// shapes are tolerated, not fatal.
func Parse(markup string) (*Document, error) {
	container := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}

	roots, err := html.ParseFragment(strings.NewReader(markup), container)
	if err != nil {
		return nil, fmt.Errorf("svgdom: parse markup: %w", err)
	}

	doc := &Document{
		roots:  roots,
		nodes:  make(map[NodeID]*html.Node),
		byPath: make(map[string][]NodeID),
	}

	for _, root := range roots {
		doc.index(root)
	}

	return doc, nil
}

// index walks the tree in document order, assigning IDs and classifying
// tagged elements.
func (d *Document) index(node *html.Node) {
	if node.Type == html.ElementNode {
		id := NodeID(len(d.nodes))
		d.nodes[id] = node

		if path, ok := attrValue(node, PathAttr); ok {
			d.byPath[path] = append(d.byPath[path], id)

			if class, classified := ClassifyNode(node.Data, path); classified {
				d.tagged = append(d.tagged, TaggedNode{ID: id, Path: path, Tag: node.Data, Class: class})
			}
		}
	}

	for child := node.FirstChild; child != nil; child = child.NextSibling {
		d.index(child)
	}
}

// Tagged returns every classified path-carrying node in document order.
func (d *Document) Tagged() []TaggedNode {
	return d.tagged
}

// NodesForPath returns the IDs of all nodes tagged with exactly this path.
func (d *Document) NodesForPath(path string) []NodeID {
	return d.byPath[path]
}

// InstanceNodes returns the IDs of all indexed instance nodes of basePath
// (`basePath[0]`, `basePath[1]`, ...) in index order, stopping at the first
// gap. An empty result means the renderer chose the single-label form.
func (d *Document) InstanceNodes(basePath string) []NodeID {
	var ids []NodeID

	for i := 0; ; i++ {
		instances := d.byPath[dslpath.Instance(basePath, i)]
		if len(instances) == 0 {
			return ids
		}

		ids = append(ids, instances...)
	}
}

// PathOf returns the DSL path a node is tagged with.
func (d *Document) PathOf(id NodeID) (string, bool) {
	node, ok := d.nodes[id]
	if !ok {
		return "", false
	}

	return attrValue(node, PathAttr)
}

// Contains reports whether the node identity belongs to this document.
func (d *Document) Contains(id NodeID) bool {
	_, ok := d.nodes[id]

	return ok
}

// Render serializes the document, including any highlight markers, back to
// markup.
func (d *Document) Render() (string, error) {
	var buf bytes.Buffer

	for _, root := range d.roots {
		err := html.Render(&buf, root)
		if err != nil {
			return "", fmt.Errorf("svgdom: render: %w", err)
		}
	}

	return buf.String(), nil
}

func attrValue(node *html.Node, name string) (string, bool) {
	for _, attr := range node.Attr {
		if attr.Key == name {
			return attr.Val, true
		}
	}

	return "", false
}
