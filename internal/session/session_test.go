package session

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/7i6ht/math2visual-sub000/internal/observability"
	"github.com/7i6ht/math2visual-sub000/internal/svgdom"
	"github.com/7i6ht/math2visual-sub000/pkg/dsltree"
	"github.com/7i6ht/math2visual-sub000/pkg/mapping"
)

const sessionSVG = `<svg>
	<g data-dsl-path="operation">
		<g data-dsl-path="operation/entities[0]">
			<text data-dsl-path="operation/entities[0]/container_name">Tom</text>
			<text data-dsl-path="operation/entities[0]/entity_quantity">3</text>
		</g>
	</g>
</svg>`

func testTriad() *mapping.Triad {
	dsl := "addition(tom, apple, 3)"

	return &mapping.Triad{
		DSLText:   dsl,
		MWPText:   "Tom has 3 apples.",
		SVGFormal: sessionSVG,
		Mapping: mapping.Mapping{
			"operation":                            {Range: mapping.Range{Start: 0, End: 8}},
			"operation/entities[0]":                {Range: mapping.Range{Start: 9, End: 22}},
			"operation/entities[0]/container_name": {Range: mapping.Range{Start: 9, End: 12}, Value: "Tom"},
			"operation/entities[0]/entity_name":    {Range: mapping.Range{Start: 14, End: 19}, Value: "apple"},
			"operation/entities[0]/entity_quantity": {
				Range: mapping.Range{Start: 21, End: 22}, Value: "3",
			},
		},
		Tree: &dsltree.Operation{
			Operator: "addition",
			Entities: []*dsltree.Entity{{
				ContainerName:  "tom",
				EntityName:     "apple",
				EntityQuantity: json.Number("3"),
			}},
		},
	}
}

// fakeRegenerator hands back a canned triad and records what it was asked.
type fakeRegenerator struct {
	next     *mapping.Triad
	err      error
	lastTree *dsltree.Operation
	lastPath string
	calls    int

	// reenter, when set, is invoked from inside FromPatch to exercise the
	// single-in-flight discipline.
	reenter func() error
}

func (f *fakeRegenerator) FromDSL(_ context.Context, _ string) (*mapping.Triad, error) {
	f.calls++

	return f.next, f.err
}

func (f *fakeRegenerator) FromPatch(_ context.Context, tree *dsltree.Operation, path string, _ any) (*mapping.Triad, error) {
	f.calls++
	f.lastTree = tree
	f.lastPath = path

	if f.reenter != nil {
		return nil, f.reenter()
	}

	return f.next, f.err
}

func TestApplyTriad_BuildsDerivedState(t *testing.T) {
	t.Parallel()

	sess := New(Config{})

	require.NoError(t, sess.ApplyTriad(testTriad()))

	require.Len(t, sess.Documents(), 1)
	require.Len(t, sess.Registries(), 1)
	assert.Positive(t, sess.Registries()[0].Len())
	assert.NotNil(t, sess.Mapping())
}

func TestApplyTriad_InvalidMappingKeepsPrevious(t *testing.T) {
	t.Parallel()

	sess := New(Config{})
	require.NoError(t, sess.ApplyTriad(testTriad()))

	bad := testTriad()
	bad.Mapping["operation"] = mapping.Component{Range: mapping.Range{Start: 0, End: 999}}

	err := sess.ApplyTriad(bad)

	require.ErrorIs(t, err, mapping.ErrRangeOutOfBounds)
	assert.Equal(t, "addition(tom, apple, 3)", sess.Triad().DSLText)
}

func TestApplyTriad_NoSVG(t *testing.T) {
	t.Parallel()

	sess := New(Config{})

	triad := testTriad()
	triad.SVGFormal = ""

	require.ErrorIs(t, sess.ApplyTriad(triad), ErrNoSVG)
}

func TestHighlight_BeforeApply(t *testing.T) {
	t.Parallel()

	sess := New(Config{})

	_, err := sess.Highlight("operation", nil)

	require.ErrorIs(t, err, mapping.ErrNoTriad)
}

func TestEditScalar_BadPathFailsBeforeRequest(t *testing.T) {
	t.Parallel()

	regen := &fakeRegenerator{}
	sess := New(Config{Regenerator: regen})
	require.NoError(t, sess.ApplyTriad(testTriad()))

	err := sess.EditScalar(context.Background(), "operation/entities[9]/entity_quantity", 7)

	var pathErr *dsltree.PathError
	require.ErrorAs(t, err, &pathErr)
	assert.Zero(t, regen.calls)
}

func TestEditScalar_SendsPatchedTreeAndSwaps(t *testing.T) {
	t.Parallel()

	next := testTriad()
	next.DSLText = "addition(tom, apple, 7)"
	next.Mapping["operation/entities[0]/entity_quantity"] = mapping.Component{
		Range: mapping.Range{Start: 21, End: 22}, Value: "7",
	}
	next.Tree.Entities[0].EntityQuantity = json.Number("7")

	regen := &fakeRegenerator{next: next}
	sess := New(Config{Regenerator: regen})
	require.NoError(t, sess.ApplyTriad(testTriad()))

	err := sess.EditScalar(context.Background(), "operation/entities[0]/entity_quantity", 7)
	require.NoError(t, err)

	assert.Equal(t, "operation/entities[0]/entity_quantity", regen.lastPath)
	assert.Equal(t, json.Number("7"), regen.lastTree.Entities[0].EntityQuantity)
	assert.Equal(t, "addition(tom, apple, 7)", sess.Triad().DSLText)
	assert.False(t, sess.Busy())
}

func TestEditScalar_RecordsPatchAndRegenerationMetrics(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	metrics, err := observability.NewEngineMetrics(mp.Meter("test"))
	require.NoError(t, err)

	regen := &fakeRegenerator{next: testTriad()}
	sess := New(Config{Regenerator: regen, Metrics: metrics})
	require.NoError(t, sess.ApplyTriad(testTriad()))

	require.NoError(t, sess.EditScalar(context.Background(), "operation/entities[0]/entity_quantity", 7))
	require.Error(t, sess.EditScalar(context.Background(), "operation/entities[9]/entity_quantity", 7))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	patches := sumValues(t, findSessionMetric(rm, "math2visual.patches.total"))
	assert.Equal(t, int64(2), patches)

	regenerations := sumValues(t, findSessionMetric(rm, "math2visual.regenerations.total"))
	assert.Equal(t, int64(1), regenerations)

	inflight := sumValues(t, findSessionMetric(rm, "math2visual.regeneration.inflight"))
	assert.Equal(t, int64(0), inflight)
}

func findSessionMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for idx := range rm.ScopeMetrics {
		for midx := range rm.ScopeMetrics[idx].Metrics {
			if rm.ScopeMetrics[idx].Metrics[midx].Name == name {
				return &rm.ScopeMetrics[idx].Metrics[midx]
			}
		}
	}

	return nil
}

func sumValues(t *testing.T, m *metricdata.Metrics) int64 {
	t.Helper()
	require.NotNil(t, m)

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)

	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}

	return total
}

func TestEditScalar_AbortRetainsTriad(t *testing.T) {
	t.Parallel()

	regen := &fakeRegenerator{err: context.Canceled}
	sess := New(Config{Regenerator: regen})
	require.NoError(t, sess.ApplyTriad(testTriad()))

	err := sess.EditScalar(context.Background(), "operation/entities[0]/entity_quantity", 7)

	require.NoError(t, err)
	assert.Equal(t, "addition(tom, apple, 3)", sess.Triad().DSLText)
	assert.False(t, sess.Busy())
}

func TestEditScalar_SecondEditWhileInFlight(t *testing.T) {
	t.Parallel()

	regen := &fakeRegenerator{}
	sess := New(Config{Regenerator: regen})
	require.NoError(t, sess.ApplyTriad(testTriad()))

	regen.reenter = func() error {
		return sess.EditScalar(context.Background(), "operation/entities[0]/entity_quantity", 9)
	}

	err := sess.EditScalar(context.Background(), "operation/entities[0]/entity_quantity", 7)

	require.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, 1, regen.calls)
	assert.False(t, sess.Busy())
}

func TestLoadDSL_AppliesResponse(t *testing.T) {
	t.Parallel()

	regen := &fakeRegenerator{next: testTriad()}
	sess := New(Config{Regenerator: regen})

	require.NoError(t, sess.LoadDSL(context.Background(), "addition(tom, apple, 3)"))
	assert.NotNil(t, sess.Triad())
}

func TestBoundHandlers_HoverHighlightsAndClears(t *testing.T) {
	t.Parallel()

	sess := New(Config{})
	require.NoError(t, sess.ApplyTriad(testTriad()))

	doc := sess.Documents()[0]
	registry := sess.Registries()[0]

	nodes := doc.NodesForPath("operation/entities[0]/container_name")
	require.Len(t, nodes, 1)

	require.True(t, registry.Dispatch(svgdom.Event{Node: nodes[0], Kind: svgdom.EventMouseEnter}))
	assert.True(t, doc.Marked(nodes[0], svgdom.MarkerText))

	require.True(t, registry.Dispatch(svgdom.Event{Node: nodes[0], Kind: svgdom.EventMouseLeave}))
	assert.False(t, doc.Marked(nodes[0], svgdom.MarkerText))
}

func TestApplyTriad_RebindReplacesOldDocument(t *testing.T) {
	t.Parallel()

	sess := New(Config{})
	require.NoError(t, sess.ApplyTriad(testTriad()))
	oldDoc := sess.Documents()[0]

	require.NoError(t, sess.ApplyTriad(testTriad()))

	assert.NotSame(t, oldDoc, sess.Documents()[0])
	assert.Positive(t, sess.Registries()[0].Len())
}
