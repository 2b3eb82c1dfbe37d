package dsltree

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/7i6ht/math2visual-sub000/pkg/dslpath"
)

// PathError reports a path that could not be walked to completion against
// the tree, or a scalar value incompatible with the addressed field. A patch
// must fail loudly on either: a silent no-op would desynchronize what the
// user sees edited from what is sent for regeneration.
type PathError struct {
	Path    string
	Segment string
	Reason  string
}

// Error implements the error interface.
func (e *PathError) Error() string {
	return fmt.Sprintf("dsltree: patch %q: segment %q: %s", e.Path, e.Segment, e.Reason)
}

// PatchScalar locates the node addressed by path inside a deep copy of the
// tree, writes value into the terminal scalar field, and returns the copy.
// The input tree is never mutated. Any unresolvable segment, out-of-bounds
// index, or incompatible value yields a *PathError and a nil tree.
func PatchScalar(root *Operation, path string, value any) (*Operation, error) {
	if root == nil {
		return nil, &PathError{Path: path, Reason: "nil tree"}
	}

	segments, err := dslpath.Parse(path)
	if err != nil {
		return nil, &PathError{Path: path, Reason: err.Error()}
	}

	cloned := root.Clone()

	owner, leaf, err := walkToOwner(cloned, path, segments)
	if err != nil {
		return nil, err
	}

	err = setScalar(owner, path, leaf, value)
	if err != nil {
		return nil, err
	}

	return cloned, nil
}

// walkToOwner resolves all but the final segment, returning the owning node
// and the terminal segment. A leading `operation` segment addresses the root
// itself and is skipped.
func walkToOwner(root *Operation, path string, segments []dslpath.Segment) (any, dslpath.Segment, error) {
	if isRootOperator(segments) {
		// A bare `operation` path patches the root operator.
		return root, segments[0], nil
	}

	if segments[0].Name == "operation" && !segments[0].Indexed() {
		segments = segments[1:]
	}

	var current any = root

	for _, segment := range segments[:len(segments)-1] {
		next, err := resolveSegment(current, path, segment)
		if err != nil {
			return nil, dslpath.Segment{}, err
		}

		current = next
	}

	return current, segments[len(segments)-1], nil
}

func isRootOperator(segments []dslpath.Segment) bool {
	return len(segments) == 1 && segments[0].Name == "operation" && !segments[0].Indexed()
}

func resolveSegment(current any, path string, segment dslpath.Segment) (any, error) {
	op, ok := current.(*Operation)
	if !ok {
		return nil, &PathError{Path: path, Segment: segment.String(), Reason: "segment below a leaf-owning node"}
	}

	switch segment.Name {
	case "entities":
		return resolveEntity(op, path, segment)
	case "operands":
		return resolveOperand(op, path, segment)
	case "result_container":
		return resolveResultContainer(op, path, segment)
	default:
		return nil, &PathError{Path: path, Segment: segment.String(), Reason: "unknown structural segment"}
	}
}

func resolveEntity(op *Operation, path string, segment dslpath.Segment) (any, error) {
	if !segment.Indexed() {
		return nil, &PathError{Path: path, Segment: segment.String(), Reason: "entities requires an index"}
	}

	if segment.Index >= len(op.Entities) {
		reason := "entity index out of bounds (have " + strconv.Itoa(len(op.Entities)) + ")"

		return nil, &PathError{Path: path, Segment: segment.String(), Reason: reason}
	}

	return op.Entities[segment.Index], nil
}

func resolveOperand(op *Operation, path string, segment dslpath.Segment) (any, error) {
	if !segment.Indexed() {
		return nil, &PathError{Path: path, Segment: segment.String(), Reason: "operands requires an index"}
	}

	if segment.Index >= len(op.Operands) {
		reason := "operand index out of bounds (have " + strconv.Itoa(len(op.Operands)) + ")"

		return nil, &PathError{Path: path, Segment: segment.String(), Reason: reason}
	}

	return op.Operands[segment.Index], nil
}

func resolveResultContainer(op *Operation, path string, segment dslpath.Segment) (any, error) {
	if segment.Indexed() {
		return nil, &PathError{Path: path, Segment: segment.String(), Reason: "result_container takes no index"}
	}

	if op.ResultContainer == nil {
		return nil, &PathError{Path: path, Segment: segment.String(), Reason: "no result container"}
	}

	return op.ResultContainer, nil
}

func setScalar(owner any, path string, leaf dslpath.Segment, value any) error {
	if leaf.Indexed() {
		// Instance paths address rendered units, not tree fields.
		return &PathError{Path: path, Segment: leaf.String(), Reason: "cannot patch an instance path"}
	}

	switch node := owner.(type) {
	case *Operation:
		return setOperationScalar(node, path, leaf, value)
	case *Entity:
		return setEntityScalar(node, path, leaf, value)
	default:
		return &PathError{Path: path, Segment: leaf.String(), Reason: "unexpected node shape"}
	}
}

func setOperationScalar(op *Operation, path string, leaf dslpath.Segment, value any) error {
	if leaf.Name != "operation" {
		return &PathError{Path: path, Segment: leaf.String(), Reason: "operation nodes own only the operator scalar"}
	}

	text, ok := value.(string)
	if !ok {
		return &PathError{Path: path, Segment: leaf.String(), Reason: "operator requires a string value"}
	}

	op.Operator = text

	return nil
}

func setEntityScalar(entity *Entity, path string, leaf dslpath.Segment, value any) error {
	switch leaf.Name {
	case "entity_name":
		return setEntityName(entity, path, leaf, value)
	case "entity_type":
		return setEntityType(entity, path, leaf, value)
	case "entity_quantity":
		return setEntityQuantity(entity, path, leaf, value)
	case "container_name":
		return setStringField(&entity.ContainerName, path, leaf, value)
	case "container_type":
		return setStringField(&entity.ContainerType, path, leaf, value)
	case "attr_name":
		return setStringField(&entity.AttrName, path, leaf, value)
	case "attr_type":
		return setStringField(&entity.AttrType, path, leaf, value)
	default:
		return &PathError{Path: path, Segment: leaf.String(), Reason: "unknown entity field"}
	}
}

func setEntityName(entity *Entity, path string, leaf dslpath.Segment, value any) error {
	if entity.Item != nil {
		return setStringField(&entity.Item.EntityName, path, leaf, value)
	}

	return setStringField(&entity.EntityName, path, leaf, value)
}

func setEntityType(entity *Entity, path string, leaf dslpath.Segment, value any) error {
	if entity.Item != nil {
		return setStringField(&entity.Item.EntityType, path, leaf, value)
	}

	return setStringField(&entity.EntityType, path, leaf, value)
}

func setEntityQuantity(entity *Entity, path string, leaf dslpath.Segment, value any) error {
	number, ok := quantityNumber(value)
	if !ok {
		return &PathError{Path: path, Segment: leaf.String(), Reason: "quantity requires a numeric value"}
	}

	if entity.Item != nil {
		entity.Item.EntityQuantity = number

		return nil
	}

	entity.EntityQuantity = number

	return nil
}

func setStringField(field *string, path string, leaf dslpath.Segment, value any) error {
	text, ok := value.(string)
	if !ok {
		return &PathError{Path: path, Segment: leaf.String(), Reason: "field requires a string value"}
	}

	*field = text

	return nil
}

// quantityNumber normalizes accepted quantity value shapes to a json.Number.
func quantityNumber(value any) (json.Number, bool) {
	switch typed := value.(type) {
	case int:
		return json.Number(strconv.Itoa(typed)), true
	case int64:
		return json.Number(strconv.FormatInt(typed, 10)), true
	case float64:
		return json.Number(strconv.FormatFloat(typed, 'f', -1, 64)), true
	case json.Number:
		_, err := typed.Float64()

		return typed, err == nil
	case string:
		_, err := strconv.ParseFloat(typed, 64)
		if err != nil {
			return "", false
		}

		return json.Number(typed), true
	default:
		return "", false
	}
}
