// Package dslpath defines the addressing grammar over the parsed DSL tree:
// slash-separated segments, optional array indices, and the classification of
// terminal segments into leaf and structural kinds.
package dslpath

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind classifies the terminal segment of a DSL path.
type Kind string

// Leaf kinds name a single scalar property of a tree node.
const (
	KindEntityName      Kind = "entity_name"
	KindEntityType      Kind = "entity_type"
	KindEntityQuantity  Kind = "entity_quantity"
	KindContainerName   Kind = "container_name"
	KindContainerType   Kind = "container_type"
	KindAttrName        Kind = "attr_name"
	KindAttrType        Kind = "attr_type"
	KindOperation       Kind = "operation"
	KindResultContainer Kind = "result_container"
)

// KindEntities is the structural kind for `entities`-suffixed paths, which
// address a whole operand box rather than a scalar.
const KindEntities Kind = "entities"

// Separator joins path segments.
const Separator = "/"

// noIndex marks a segment without an array index.
const noIndex = -1

// Sentinel errors for path parsing.
var (
	// ErrEmptyPath indicates an empty path string.
	ErrEmptyPath = errors.New("dslpath: empty path")
	// ErrBadIndex indicates a malformed or negative array index.
	ErrBadIndex = errors.New("dslpath: malformed array index")
)

// leafKinds is the set of recognized leaf kinds, keyed by segment name.
//
//nolint:gochecknoglobals // Package-level lookup table for classification.
var leafKinds = map[string]Kind{
	"entity_name":      KindEntityName,
	"entity_type":      KindEntityType,
	"entity_quantity":  KindEntityQuantity,
	"container_name":   KindContainerName,
	"container_type":   KindContainerType,
	"attr_name":        KindAttrName,
	"attr_type":        KindAttrType,
	"operation":        KindOperation,
	"result_container": KindResultContainer,
}

// Segment is one element of a parsed DSL path.
type Segment struct {
	Name  string
	Index int
}

// Indexed reports whether the segment carries an array index.
func (s Segment) Indexed() bool {
	return s.Index != noIndex
}

// String renders the segment back to its path form.
func (s Segment) String() string {
	if s.Indexed() {
		return s.Name + "[" + strconv.Itoa(s.Index) + "]"
	}

	return s.Name
}

// Parse splits a path into segments, resolving `name[i]` index suffixes.
func Parse(path string) ([]Segment, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	parts := strings.Split(path, Separator)
	segments := make([]Segment, 0, len(parts))

	for _, part := range parts {
		segment, err := parseSegment(part)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", path, err)
		}

		segments = append(segments, segment)
	}

	return segments, nil
}

func parseSegment(part string) (Segment, error) {
	if part == "" {
		return Segment{}, ErrEmptyPath
	}

	open := strings.IndexByte(part, '[')
	if open < 0 {
		return Segment{Name: part, Index: noIndex}, nil
	}

	if !strings.HasSuffix(part, "]") || open == 0 {
		return Segment{}, fmt.Errorf("%w: %q", ErrBadIndex, part)
	}

	index, err := strconv.Atoi(part[open+1 : len(part)-1])
	if err != nil || index < 0 {
		return Segment{}, fmt.Errorf("%w: %q", ErrBadIndex, part)
	}

	return Segment{Name: part[:open], Index: index}, nil
}

// Join renders segments back into a path string.
func Join(segments []Segment) string {
	parts := make([]string, 0, len(segments))

	for _, segment := range segments {
		parts = append(parts, segment.String())
	}

	return strings.Join(parts, Separator)
}

// Terminal returns the name of the final segment, ignoring any index.
// Returns an empty string for unparseable paths.
func Terminal(path string) string {
	last := lastSegment(path)

	segment, err := parseSegment(last)
	if err != nil {
		return ""
	}

	return segment.Name
}

// TerminalIndex returns the array index of the final segment, if present.
func TerminalIndex(path string) (int, bool) {
	segment, err := parseSegment(lastSegment(path))
	if err != nil || !segment.Indexed() {
		return 0, false
	}

	return segment.Index, true
}

// Base strips a trailing array index from the final segment. An instance path
// such as `.../entity_type[2]` becomes its base path `.../entity_type`.
func Base(path string) string {
	last := lastSegment(path)

	segment, err := parseSegment(last)
	if err != nil || !segment.Indexed() {
		return path
	}

	return path[:len(path)-len(last)] + segment.Name
}

// Instance returns the indexed per-unit variant of a base path.
func Instance(basePath string, index int) string {
	return basePath + "[" + strconv.Itoa(index) + "]"
}

// Parent strips the final segment. Returns an empty string when the path has
// a single segment.
func Parent(path string) string {
	idx := strings.LastIndex(path, Separator)
	if idx < 0 {
		return ""
	}

	return path[:idx]
}

// Sibling replaces the final segment of path with name.
func Sibling(path, name string) string {
	parent := Parent(path)
	if parent == "" {
		return name
	}

	return parent + Separator + name
}

// Classify resolves the terminal segment of a path (index stripped) to a
// Kind. Unrecognized terminals return ok=false; callers treat those as a
// silent no-op, since new DSL shapes may appear before the engine learns
// their names.
func Classify(path string) (Kind, bool) {
	terminal := Terminal(path)
	if terminal == "" {
		return "", false
	}

	if kind, exists := leafKinds[terminal]; exists {
		return kind, true
	}

	if terminal == string(KindEntities) {
		return KindEntities, true
	}

	return "", false
}

// IsLeaf reports whether the kind names a scalar property.
func IsLeaf(kind Kind) bool {
	return kind != KindEntities
}

func lastSegment(path string) string {
	idx := strings.LastIndex(path, Separator)
	if idx < 0 {
		return path
	}

	return path[idx+1:]
}
