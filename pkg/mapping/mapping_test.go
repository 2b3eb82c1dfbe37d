package mapping

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRange_UnmarshalBackendForm(t *testing.T) {
	t.Parallel()

	var component Component

	err := json.Unmarshal([]byte(`{"dsl_range": [4, 9], "property_value": "apple"}`), &component)

	require.NoError(t, err)
	assert.Equal(t, Range{Start: 4, End: 9}, component.Range)
	assert.Equal(t, "apple", component.Value)
}

func TestRange_MarshalRoundTrip(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(Range{Start: 4, End: 9})

	require.NoError(t, err)
	assert.JSONEq(t, `[4,9]`, string(data))
}

func TestRange_Slice(t *testing.T) {
	t.Parallel()

	text := "addition(apple, 5)"

	assert.Equal(t, "apple", Range{Start: 9, End: 14}.Slice(text))
}

func TestRange_Contains(t *testing.T) {
	t.Parallel()

	outer := Range{Start: 10, End: 30}

	assert.True(t, outer.Contains(Range{Start: 10, End: 30}))
	assert.True(t, outer.Contains(Range{Start: 12, End: 20}))
	assert.False(t, outer.Contains(Range{Start: 9, End: 20}))
	assert.False(t, outer.Contains(Range{Start: 12, End: 31}))
}

func TestMapping_Lookup(t *testing.T) {
	t.Parallel()

	m := Mapping{
		"operation/entities[0]/entity_name": {Range: Range{Start: 9, End: 14}, Value: "apple"},
	}

	component, ok := m.Lookup("operation/entities[0]/entity_name")

	require.True(t, ok)
	assert.Equal(t, "apple", component.Value)

	_, ok = m.Lookup("operation/entities[1]/entity_name")
	assert.False(t, ok)
}

func TestMapping_ValidateBounds(t *testing.T) {
	t.Parallel()

	text := "addition(apple, 5)"

	valid := Mapping{"operation": {Range: Range{Start: 0, End: 8}}}
	require.NoError(t, valid.Validate(text))

	overflow := Mapping{"operation": {Range: Range{Start: 0, End: len(text) + 1}}}
	assert.ErrorIs(t, overflow.Validate(text), ErrRangeOutOfBounds)

	negative := Mapping{"operation": {Range: Range{Start: -1, End: 3}}}
	assert.ErrorIs(t, negative.Validate(text), ErrRangeOutOfBounds)

	inverted := Mapping{"operation": {Range: Range{Start: 5, End: 3}}}
	assert.ErrorIs(t, inverted.Validate(text), ErrRangeInverted)
}

func TestTriad_ValidateNil(t *testing.T) {
	t.Parallel()

	var triad *Triad

	assert.ErrorIs(t, triad.Validate(), ErrNoTriad)
}

func TestTriad_ValidateMapping(t *testing.T) {
	t.Parallel()

	triad := &Triad{
		DSLText: "addition(apple)",
		Mapping: Mapping{"operation": {Range: Range{Start: 0, End: 99}}},
	}

	assert.ErrorIs(t, triad.Validate(), ErrRangeOutOfBounds)
}
