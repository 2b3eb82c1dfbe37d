// Package dsltree models the parsed DSL tree for a math word problem: a
// recursive structure of Operation nodes owning ordered Entity operands, and
// the scalar-patch operation applied before every regeneration request.
package dsltree

import "encoding/json"

// Operation is an operation node of the parsed DSL tree. The tree root is
// itself an Operation; a leading `operation` path segment addresses it.
type Operation struct {
	Operator        string       `json:"operation,omitempty"`
	Entities        []*Entity    `json:"entities,omitempty"`
	Operands        []*Operation `json:"operands,omitempty"`
	ResultContainer *Entity      `json:"result_container,omitempty"`
}

// Entity is one operand container of an operation. Scalar entity fields live
// either directly on the entity or one level down under an Item wrapper; the
// two shapes are produced by different backend DSL constructs and a patch
// must write to whichever the node actually uses.
type Entity struct {
	Item *Item `json:"item,omitempty"`

	EntityName     string      `json:"entity_name,omitempty"`
	EntityType     string      `json:"entity_type,omitempty"`
	EntityQuantity json.Number `json:"entity_quantity,omitempty"`

	ContainerName string `json:"container_name,omitempty"`
	ContainerType string `json:"container_type,omitempty"`
	AttrName      string `json:"attr_name,omitempty"`
	AttrType      string `json:"attr_type,omitempty"`
}

// Item wraps the entity-scalar fields for entities that nest them.
type Item struct {
	EntityName     string      `json:"entity_name,omitempty"`
	EntityType     string      `json:"entity_type,omitempty"`
	EntityQuantity json.Number `json:"entity_quantity,omitempty"`
}

// Quantity returns the entity quantity as a float, resolving through the
// Item wrapper when present. Returns ok=false when the field is absent or
// not numeric.
func (e *Entity) Quantity() (float64, bool) {
	raw := e.EntityQuantity
	if e.Item != nil && e.Item.EntityQuantity != "" {
		raw = e.Item.EntityQuantity
	}

	if raw == "" {
		return 0, false
	}

	value, err := raw.Float64()
	if err != nil {
		return 0, false
	}

	return value, true
}

// Name returns the entity name, resolving through the Item wrapper.
func (e *Entity) Name() string {
	if e.Item != nil && e.Item.EntityName != "" {
		return e.Item.EntityName
	}

	return e.EntityName
}

// Clone returns a deep copy of the operation tree. The copy shares no
// pointers with the original, so a patch never aliases session state.
func (op *Operation) Clone() *Operation {
	if op == nil {
		return nil
	}

	cloned := &Operation{Operator: op.Operator}

	if len(op.Entities) > 0 {
		cloned.Entities = make([]*Entity, len(op.Entities))
		for i, entity := range op.Entities {
			cloned.Entities[i] = entity.Clone()
		}
	}

	if len(op.Operands) > 0 {
		cloned.Operands = make([]*Operation, len(op.Operands))
		for i, operand := range op.Operands {
			cloned.Operands[i] = operand.Clone()
		}
	}

	cloned.ResultContainer = op.ResultContainer.Clone()

	return cloned
}

// Clone returns a deep copy of the entity.
func (e *Entity) Clone() *Entity {
	if e == nil {
		return nil
	}

	cloned := *e

	if e.Item != nil {
		item := *e.Item
		cloned.Item = &item
	}

	return &cloned
}

// Decode parses a backend `parsed_tree` JSON document into an Operation.
func Decode(data []byte) (*Operation, error) {
	var op Operation

	err := json.Unmarshal(data, &op)
	if err != nil {
		return nil, err
	}

	return &op, nil
}
