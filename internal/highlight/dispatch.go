package highlight

import (
	"strconv"

	"github.com/7i6ht/math2visual-sub000/internal/svgdom"
	"github.com/7i6ht/math2visual-sub000/pkg/dslpath"
	"github.com/7i6ht/math2visual-sub000/pkg/mapping"
	"github.com/7i6ht/math2visual-sub000/pkg/match"
)

// kindEntry supplies the visual-highlight and prose-highlight functions for
// one path kind.
type kindEntry struct {
	visual func(o *Orchestrator, path, basePath string, elem *Element) []appliedMark
	prose  func(o *Orchestrator, basePath string) (mwp, formula []mapping.Range)
}

// kindDispatch routes a classified path to its highlight behavior.
//
//nolint:gochecknoglobals // Package-level dispatch table, keyed by path kind.
var kindDispatch = map[dslpath.Kind]kindEntry{
	dslpath.KindEntityName:      {visual: textVisual, prose: ownValueProse},
	dslpath.KindEntityQuantity:  {visual: quantityVisual, prose: quantityProse},
	dslpath.KindEntityType:      {visual: iconVisual, prose: siblingNameProse("entity_name")},
	dslpath.KindContainerName:   {visual: textVisual, prose: ownValueProse},
	dslpath.KindContainerType:   {visual: iconVisual, prose: siblingNameProse("container_name")},
	dslpath.KindAttrName:        {visual: textVisual, prose: ownValueProse},
	dslpath.KindAttrType:        {visual: iconVisual, prose: siblingNameProse("attr_name")},
	dslpath.KindOperation:       {visual: boxVisual, prose: operationProse},
	dslpath.KindResultContainer: {visual: boxVisual, prose: childNameProse},
	dslpath.KindEntities:        {visual: boxVisual, prose: childNameProse},
}

func textVisual(o *Orchestrator, path, basePath string, elem *Element) []appliedMark {
	if elem != nil {
		return o.markElement(elem, svgdom.MarkerText)
	}

	return o.markPath(basePath, svgdom.MarkerText)
}

func iconVisual(o *Orchestrator, path, basePath string, elem *Element) []appliedMark {
	if elem != nil {
		return o.markElement(elem, svgdom.MarkerIcon)
	}

	if marks := o.markInstances(basePath, svgdom.MarkerIcon); len(marks) > 0 {
		return marks
	}

	return o.markPath(basePath, svgdom.MarkerIcon)
}

func boxVisual(o *Orchestrator, path, basePath string, elem *Element) []appliedMark {
	if elem != nil {
		return o.markElement(elem, svgdom.MarkerBox)
	}

	return o.markPath(basePath, svgdom.MarkerBox)
}

// quantityVisual branches on the display threshold: small quantities were
// rendered as one icon instance per unit at indexed entity_type paths, large
// quantities as a single text label. The renderer's actual choice can only
// be recovered by probing for instance nodes and consulting the mapped
// quantity value.
func quantityVisual(o *Orchestrator, path, basePath string, elem *Element) []appliedMark {
	if elem != nil {
		return o.markElement(elem, svgdom.MarkerText)
	}

	typeBase := dslpath.Sibling(basePath, "entity_type")

	if o.quantityDrawsInstances(basePath, typeBase) {
		return o.markInstances(typeBase, svgdom.MarkerIcon)
	}

	return o.markPath(basePath, svgdom.MarkerText)
}

func (o *Orchestrator) quantityDrawsInstances(quantityPath, typeBase string) bool {
	if !o.hasInstances(typeBase) {
		return false
	}

	quantity, err := strconv.ParseFloat(o.mapping.Value(quantityPath), 64)
	if err != nil {
		return false
	}

	return dslpath.RendersAsInstances(quantity, o.threshold)
}

// ownValueProse highlights the path's own mapped value as a name.
func ownValueProse(o *Orchestrator, basePath string) ([]mapping.Range, []mapping.Range) {
	return match.FindName(o.mwp, o.mapping.Value(basePath)), nil
}

// siblingNameProse highlights the mapped value of a sibling leaf; icons have
// no text of their own, so their prose echo is the name beside them.
func siblingNameProse(sibling string) func(*Orchestrator, string) ([]mapping.Range, []mapping.Range) {
	return func(o *Orchestrator, basePath string) ([]mapping.Range, []mapping.Range) {
		name := o.mapping.Value(dslpath.Sibling(basePath, sibling))

		return match.FindName(o.mwp, name), nil
	}
}

// childNameProse highlights the container name owned by a structural path.
func childNameProse(o *Orchestrator, basePath string) ([]mapping.Range, []mapping.Range) {
	name := o.mapping.Value(basePath + dslpath.Separator + "container_name")

	return match.FindName(o.mwp, name), nil
}

// quantityProse finds the quantity in the MWP text (digit form first) and,
// when it occurs in several places, pins it to the sentence that best scores
// on {container name, quantity}. The formula is searched with the same
// digit-first matcher.
func quantityProse(o *Orchestrator, basePath string) ([]mapping.Range, []mapping.Range) {
	quantity := o.mapping.Value(basePath)

	entityPath := dslpath.Parent(basePath)
	containerName := o.mapping.Value(entityPath + dslpath.Separator + "container_name")

	ranges := match.FindQuantity(o.mwp, quantity, o.locale)
	ranges = disambiguate(o, ranges, containerName, quantity)

	return ranges, match.FindQuantity(o.formula, quantity, o.locale)
}

func disambiguate(o *Orchestrator, ranges []mapping.Range, containerName, quantity string) []mapping.Range {
	if len(ranges) < 2 {
		return ranges
	}

	sentence, ok := match.BestSentence(o.mwp, containerName, quantity, o.locale)
	if !ok {
		return ranges
	}

	var within []mapping.Range

	for _, candidate := range ranges {
		if sentence.Contains(candidate) {
			within = append(within, candidate)
		}
	}

	if len(within) == 0 {
		return ranges
	}

	return within
}

// operationProse highlights the sentence containing the second operand's
// quantity. The first operand is typically already visible from context, so
// the asymmetry is intentional.
func operationProse(o *Orchestrator, basePath string) ([]mapping.Range, []mapping.Range) {
	secondEntity := basePath + dslpath.Separator + "entities[1]"

	quantity := o.mapping.Value(secondEntity + dslpath.Separator + "entity_quantity")
	containerName := o.mapping.Value(secondEntity + dslpath.Separator + "container_name")

	sentence, ok := match.BestSentence(o.mwp, containerName, quantity, o.locale)
	if !ok {
		return nil, nil
	}

	return []mapping.Range{sentence}, nil
}
