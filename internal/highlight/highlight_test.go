package highlight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/7i6ht/math2visual-sub000/internal/svgdom"
	"github.com/7i6ht/math2visual-sub000/pkg/mapping"
)

const testSVG = `<svg>
	<g data-dsl-path="operation">
		<g data-dsl-path="operation/entities[0]">
			<text data-dsl-path="operation/entities[0]/container_name">Tom</text>
			<use data-dsl-path="operation/entities[0]/entity_type[0]"></use>
			<use data-dsl-path="operation/entities[0]/entity_type[1]"></use>
			<use data-dsl-path="operation/entities[0]/entity_type[2]"></use>
		</g>
		<g data-dsl-path="operation/entities[1]">
			<text data-dsl-path="operation/entities[1]/container_name">Lily</text>
			<text data-dsl-path="operation/entities[1]/entity_quantity">25</text>
		</g>
	</g>
</svg>`

const testMWP = "Tom has 3 apples. Lily has 25 peaches."

func testMapping() mapping.Mapping {
	return mapping.Mapping{
		"operation":                              {Range: mapping.Range{Start: 0, End: 8}},
		"operation/entities[0]":                  {Range: mapping.Range{Start: 9, End: 40}},
		"operation/entities[0]/container_name":   {Range: mapping.Range{Start: 10, End: 13}, Value: "Tom"},
		"operation/entities[0]/entity_name":      {Range: mapping.Range{Start: 15, End: 20}, Value: "apple"},
		"operation/entities[0]/entity_type":      {Range: mapping.Range{Start: 22, End: 27}, Value: "apple"},
		"operation/entities[0]/entity_quantity":  {Range: mapping.Range{Start: 29, End: 30}, Value: "3"},
		"operation/entities[1]":                  {Range: mapping.Range{Start: 41, End: 75}},
		"operation/entities[1]/container_name":   {Range: mapping.Range{Start: 42, End: 46}, Value: "Lily"},
		"operation/entities[1]/entity_name":      {Range: mapping.Range{Start: 48, End: 53}, Value: "peach"},
		"operation/entities[1]/entity_quantity":  {Range: mapping.Range{Start: 55, End: 57}, Value: "25"},
	}
}

func newTestOrchestrator(t *testing.T) (*Orchestrator, *svgdom.Document) {
	t.Helper()

	doc, err := svgdom.Parse(testSVG)
	require.NoError(t, err)

	orch := New(Config{
		Docs:    []*svgdom.Document{doc},
		Mapping: testMapping(),
		MWPText: testMWP,
		Formula: "3 + 25 = 28",
	})

	return orch, doc
}

func markedNodes(doc *svgdom.Document, marker svgdom.Marker) []svgdom.NodeID {
	var ids []svgdom.NodeID

	for _, tagged := range doc.Tagged() {
		if doc.Marked(tagged.ID, marker) {
			ids = append(ids, tagged.ID)
		}
	}

	return ids
}

func TestHighlight_SmallQuantityMarksInstanceIcons(t *testing.T) {
	t.Parallel()

	orch, doc := newTestOrchestrator(t)

	result := orch.Highlight("operation/entities[0]/entity_quantity", nil)

	require.True(t, result.Applied)
	assert.Equal(t, StateActive, orch.State())
	assert.Len(t, markedNodes(doc, svgdom.MarkerIcon), 3)
	assert.Empty(t, markedNodes(doc, svgdom.MarkerText))
}

func TestHighlight_LargeQuantityMarksTextLabel(t *testing.T) {
	t.Parallel()

	orch, doc := newTestOrchestrator(t)

	result := orch.Highlight("operation/entities[1]/entity_quantity", nil)

	require.True(t, result.Applied)

	marked := markedNodes(doc, svgdom.MarkerText)
	require.Len(t, marked, 1)

	path, ok := doc.PathOf(marked[0])
	require.True(t, ok)
	assert.Equal(t, "operation/entities[1]/entity_quantity", path)
}

func TestHighlight_QuantityProseDigitForm(t *testing.T) {
	t.Parallel()

	orch, _ := newTestOrchestrator(t)

	result := orch.Highlight("operation/entities[0]/entity_quantity", nil)

	require.Len(t, result.MWPRanges, 1)
	assert.Equal(t, "3", result.MWPRanges[0].Slice(testMWP))
	require.Len(t, result.FormulaRanges, 1)
	assert.Equal(t, "3", result.FormulaRanges[0].Slice("3 + 25 = 28"))
}

func TestHighlight_DSLRangeFromMapping(t *testing.T) {
	t.Parallel()

	orch, _ := newTestOrchestrator(t)

	result := orch.Highlight("operation/entities[0]/container_name", nil)

	require.True(t, result.HasDSLRange)
	assert.Equal(t, mapping.Range{Start: 10, End: 13}, result.DSLRange)
}

func TestHighlight_InstancePathFallsBackToBaseRange(t *testing.T) {
	t.Parallel()

	orch, _ := newTestOrchestrator(t)

	result := orch.Highlight("operation/entities[0]/entity_type[1]", nil)

	require.True(t, result.HasDSLRange)
	assert.Equal(t, mapping.Range{Start: 22, End: 27}, result.DSLRange)
}

func TestHighlight_ContainerNameProse(t *testing.T) {
	t.Parallel()

	orch, _ := newTestOrchestrator(t)

	result := orch.Highlight("operation/entities[1]/container_name", nil)

	require.Len(t, result.MWPRanges, 1)
	assert.Equal(t, "Lily", result.MWPRanges[0].Slice(testMWP))
}

func TestHighlight_EntityNameProseMatchesPlural(t *testing.T) {
	t.Parallel()

	orch, _ := newTestOrchestrator(t)

	result := orch.Highlight("operation/entities[1]/entity_name", nil)

	// "peach" matches the plural "peaches" in the prose.
	require.Len(t, result.MWPRanges, 1)
	assert.Equal(t, "peaches", result.MWPRanges[0].Slice(testMWP))
}

func TestHighlight_OperationMarksSecondOperandSentence(t *testing.T) {
	t.Parallel()

	orch, _ := newTestOrchestrator(t)

	result := orch.Highlight("operation", nil)

	require.True(t, result.Applied)
	require.Len(t, result.MWPRanges, 1)
	assert.Equal(t, "Lily has 25 peaches", result.MWPRanges[0].Slice(testMWP))
}

func TestHighlight_EntitiesBoxMarksAndNamesContainer(t *testing.T) {
	t.Parallel()

	orch, doc := newTestOrchestrator(t)

	result := orch.Highlight("operation/entities[0]", nil)

	require.True(t, result.Applied)
	require.Len(t, result.MWPRanges, 1)
	assert.Equal(t, "Tom", result.MWPRanges[0].Slice(testMWP))

	marked := markedNodes(doc, svgdom.MarkerBox)
	require.Len(t, marked, 1)

	path, ok := doc.PathOf(marked[0])
	require.True(t, ok)
	assert.Equal(t, "operation/entities[0]", path)
}

func TestHighlight_EntitiesIndexSelectsOperand(t *testing.T) {
	t.Parallel()

	orch, doc := newTestOrchestrator(t)

	result := orch.Highlight("operation/entities[1]", nil)

	require.True(t, result.Applied)
	require.Len(t, result.MWPRanges, 1)
	assert.Equal(t, "Lily", result.MWPRanges[0].Slice(testMWP))

	marked := markedNodes(doc, svgdom.MarkerBox)
	require.Len(t, marked, 1)

	path, ok := doc.PathOf(marked[0])
	require.True(t, ok)
	assert.Equal(t, "operation/entities[1]", path)

	require.True(t, result.HasDSLRange)
	assert.Equal(t, mapping.Range{Start: 41, End: 75}, result.DSLRange)
}

func TestHighlight_ElementBoundMarksGivenNode(t *testing.T) {
	t.Parallel()

	orch, doc := newTestOrchestrator(t)

	icons := doc.InstanceNodes("operation/entities[0]/entity_type")
	require.Len(t, icons, 3)

	orch.Highlight("operation/entities[0]/entity_type[1]", &Element{Doc: doc, Node: icons[1]})

	marked := markedNodes(doc, svgdom.MarkerIcon)
	require.Len(t, marked, 1)
	assert.Equal(t, icons[1], marked[0])
}

func TestHighlight_UnknownKindIsSilentNoOp(t *testing.T) {
	t.Parallel()

	orch, doc := newTestOrchestrator(t)

	result := orch.Highlight("operation/entities[0]/entity_color", nil)

	assert.False(t, result.Applied)
	assert.Equal(t, StateIdle, orch.State())
	assert.Empty(t, markedNodes(doc, svgdom.MarkerBox))
}

func TestHighlight_ConsecutiveCallsAreIdempotent(t *testing.T) {
	t.Parallel()

	orch, doc := newTestOrchestrator(t)

	orch.Highlight("operation/entities[0]/entity_quantity", nil)
	first := markedNodes(doc, svgdom.MarkerIcon)

	orch.Highlight("operation/entities[0]/entity_quantity", nil)
	second := markedNodes(doc, svgdom.MarkerIcon)

	assert.Equal(t, first, second)
}

func TestHighlight_SwitchLeavesNoResidualMarkers(t *testing.T) {
	t.Parallel()

	orch, doc := newTestOrchestrator(t)

	orch.Highlight("operation/entities[0]/entity_quantity", nil)
	require.NotEmpty(t, markedNodes(doc, svgdom.MarkerIcon))

	orch.Highlight("operation/entities[1]/container_name", nil)

	assert.Empty(t, markedNodes(doc, svgdom.MarkerIcon))
	require.Len(t, markedNodes(doc, svgdom.MarkerText), 1)
}

func TestClear_ReturnsToIdle(t *testing.T) {
	t.Parallel()

	orch, doc := newTestOrchestrator(t)

	orch.Highlight("operation/entities[0]", nil)
	require.Equal(t, StateActive, orch.State())

	orch.Clear()

	assert.Equal(t, StateIdle, orch.State())
	assert.Empty(t, markedNodes(doc, svgdom.MarkerBox))
}

func TestHighlight_AbsentProseIsEmptyNotError(t *testing.T) {
	t.Parallel()

	doc, err := svgdom.Parse(testSVG)
	require.NoError(t, err)

	orch := New(Config{
		Docs:    []*svgdom.Document{doc},
		Mapping: testMapping(),
		MWPText: "A story that mentions nothing relevant.",
	})

	result := orch.Highlight("operation/entities[0]/container_name", nil)

	require.True(t, result.Applied)
	assert.Empty(t, result.MWPRanges)
}
