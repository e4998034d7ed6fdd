package taint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slackhq/hakana-sub001/internal/dataflow"
)

// source -> intermediate -> sink, all tagged "UserControlled", matching
// "user input reaches shell_exec" worked example.
func TestTracesFindsDirectPath(t *testing.T) {
	g := dataflow.New(dataflow.GraphWholeProgramTaint)
	src := dataflow.NewNodeID()
	mid := dataflow.NewNodeID()
	sink := dataflow.NewNodeID()
	g.AddNode(&dataflow.Node{ID: src, Kind: dataflow.KindTaintSource})
	g.AddNode(&dataflow.Node{ID: mid})
	g.AddNode(&dataflow.Node{ID: sink, Kind: dataflow.KindTaintSink})
	g.AddEdge(&dataflow.Edge{From: src, To: mid})
	g.AddEdge(&dataflow.Edge{From: mid, To: sink})

	engine := New(g, []Sink{{Node: sink, Tags: map[Tag]bool{"UserControlled": true}, Kind: SinkShell}})
	traces := engine.Traces([]Source{{Node: src, Tags: map[Tag]bool{"UserControlled": true}}})

	require.Len(t, traces, 1)
	assert.Equal(t, SinkShell, traces[0].SinkKind)
	assert.Equal(t, Tag("UserControlled"), traces[0].Tag)
}

// An edge that strips the tag (e.g. the value passed through an
// escaping function) breaks the trace before it reaches the sink.
func TestTracesRespectRemovedTaints(t *testing.T) {
	g := dataflow.New(dataflow.GraphWholeProgramTaint)
	src := dataflow.NewNodeID()
	sink := dataflow.NewNodeID()
	g.AddNode(&dataflow.Node{ID: src, Kind: dataflow.KindTaintSource})
	g.AddNode(&dataflow.Node{ID: sink, Kind: dataflow.KindTaintSink})
	g.AddEdge(&dataflow.Edge{
		From: src, To: sink,
		RemovedTaints: map[string]struct{}{"UserControlled": {}},
	})

	engine := New(g, []Sink{{Node: sink, Tags: map[Tag]bool{"UserControlled": true}, Kind: SinkSQL}})
	traces := engine.Traces([]Source{{Node: src, Tags: map[Tag]bool{"UserControlled": true}}})
	assert.Empty(t, traces)
}

// A sink that doesn't share any tag with the reaching value produces no
// trace, even though the path itself exists.
func TestTracesRequireSharedTag(t *testing.T) {
	g := dataflow.New(dataflow.GraphWholeProgramTaint)
	src := dataflow.NewNodeID()
	sink := dataflow.NewNodeID()
	g.AddNode(&dataflow.Node{ID: src, Kind: dataflow.KindTaintSource})
	g.AddNode(&dataflow.Node{ID: sink, Kind: dataflow.KindTaintSink})
	g.AddEdge(&dataflow.Edge{From: src, To: sink})

	engine := New(g, []Sink{{Node: sink, Tags: map[Tag]bool{"SqlInjection": true}, Kind: SinkSQL}})
	traces := engine.Traces([]Source{{Node: src, Tags: map[Tag]bool{"UserControlled": true}}})
	assert.Empty(t, traces)
}

func TestClassifyKnownAndUnknownSinks(t *testing.T) {
	assert.Equal(t, SinkShell, classify("shell_exec"))
	assert.Equal(t, SinkSQL, classify("mysqli_query"))
	assert.Equal(t, SinkHTML, classify("echo"))
	assert.Equal(t, SinkGeneric, classify("some_custom_func"))
}
