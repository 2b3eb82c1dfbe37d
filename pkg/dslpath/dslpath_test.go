package dslpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_SimplePath(t *testing.T) {
	t.Parallel()

	segments, err := Parse("operation/entities[0]/entity_quantity")

	require.NoError(t, err)
	require.Len(t, segments, 3)
	assert.Equal(t, Segment{Name: "operation", Index: -1}, segments[0])
	assert.Equal(t, Segment{Name: "entities", Index: 0}, segments[1])
	assert.Equal(t, Segment{Name: "entity_quantity", Index: -1}, segments[2])
}

func TestParse_EmptyPath(t *testing.T) {
	t.Parallel()

	_, err := Parse("")

	require.ErrorIs(t, err, ErrEmptyPath)
}

func TestParse_EmptySegment(t *testing.T) {
	t.Parallel()

	_, err := Parse("operation//entity_name")

	require.ErrorIs(t, err, ErrEmptyPath)
}

func TestParse_MalformedIndex(t *testing.T) {
	t.Parallel()

	for _, path := range []string{"entities[", "entities[x]", "entities[-1]", "[3]"} {
		_, err := Parse(path)
		assert.ErrorIs(t, err, ErrBadIndex, path)
	}
}

func TestJoin_RoundTrip(t *testing.T) {
	t.Parallel()

	path := "operation/entities[2]/entity_type[1]"

	segments, err := Parse(path)

	require.NoError(t, err)
	assert.Equal(t, path, Join(segments))
}

func TestTerminal_IgnoresIndex(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "entity_type", Terminal("operation/entities[0]/entity_type[2]"))
	assert.Equal(t, "entity_quantity", Terminal("operation/entities[1]/entity_quantity"))
	assert.Equal(t, "operation", Terminal("operation"))
}

func TestTerminalIndex_Present(t *testing.T) {
	t.Parallel()

	index, ok := TerminalIndex("operation/entities[0]/entity_type[7]")

	require.True(t, ok)
	assert.Equal(t, 7, index)
}

func TestTerminalIndex_Absent(t *testing.T) {
	t.Parallel()

	_, ok := TerminalIndex("operation/entities[0]/entity_type")

	assert.False(t, ok)
}

func TestBase_StripsTrailingIndex(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "operation/entities[0]/entity_type", Base("operation/entities[0]/entity_type[2]"))
}

func TestBase_NoIndexUnchanged(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "operation/entities[0]/entity_type", Base("operation/entities[0]/entity_type"))
}

func TestBase_InnerIndexPreserved(t *testing.T) {
	t.Parallel()

	// Only the final segment's index is stripped.
	assert.Equal(t, "operation/entities[3]/entity_name", Base("operation/entities[3]/entity_name"))
}

func TestInstance_AppendsIndex(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "operation/entities[0]/entity_type[4]", Instance("operation/entities[0]/entity_type", 4))
}

func TestParent_DropsFinalSegment(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "operation/entities[0]", Parent("operation/entities[0]/entity_quantity"))
	assert.Equal(t, "", Parent("operation"))
}

func TestSibling_ReplacesFinalSegment(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "operation/entities[0]/entity_name", Sibling("operation/entities[0]/entity_quantity", "entity_name"))
	assert.Equal(t, "entity_name", Sibling("operation", "entity_name"))
}

func TestClassify_LeafKinds(t *testing.T) {
	t.Parallel()

	kind, ok := Classify("operation/entities[0]/entity_quantity")

	require.True(t, ok)
	assert.Equal(t, KindEntityQuantity, kind)
}

func TestClassify_InstancePathUsesBaseKind(t *testing.T) {
	t.Parallel()

	kind, ok := Classify("operation/entities[0]/entity_type[3]")

	require.True(t, ok)
	assert.Equal(t, KindEntityType, kind)
}

func TestClassify_EntitiesIsStructural(t *testing.T) {
	t.Parallel()

	kind, ok := Classify("operation/entities[1]")

	require.True(t, ok)
	assert.Equal(t, KindEntities, kind)
	assert.False(t, IsLeaf(kind))
}

func TestClassify_UnknownTerminal(t *testing.T) {
	t.Parallel()

	_, ok := Classify("operation/entities[0]/entity_color")

	assert.False(t, ok)
}

func TestClassify_OperationRoot(t *testing.T) {
	t.Parallel()

	kind, ok := Classify("operation")

	require.True(t, ok)
	assert.Equal(t, KindOperation, kind)
	assert.True(t, IsLeaf(kind))
}

func TestRendersAsInstances_WithinThreshold(t *testing.T) {
	t.Parallel()

	assert.True(t, RendersAsInstances(1, DefaultDisplayThreshold))
	assert.True(t, RendersAsInstances(20, DefaultDisplayThreshold))
}

func TestRendersAsInstances_AboveThreshold(t *testing.T) {
	t.Parallel()

	assert.False(t, RendersAsInstances(21, DefaultDisplayThreshold))
	assert.False(t, RendersAsInstances(150, DefaultDisplayThreshold))
}

func TestRendersAsInstances_NonIntegral(t *testing.T) {
	t.Parallel()

	assert.False(t, RendersAsInstances(2.5, DefaultDisplayThreshold))
}

func TestRendersAsInstances_NonPositive(t *testing.T) {
	t.Parallel()

	assert.False(t, RendersAsInstances(0, DefaultDisplayThreshold))
	assert.False(t, RendersAsInstances(-3, DefaultDisplayThreshold))
}
