// Package taint implements reachability over the whole-program
// data-flow graph from tagged sources to tagged sinks (the classic
// "user input reaches a shell sink" kind of worked example). It
// consumes a merged GraphWholeProgramTaint built by the pipeline from
// every function's per-worker graph, plus each FunctionLikeInfo's
// TaintSources/TaintSinks tags, and yields Trace values the caller
// turns into TaintedSql/TaintedShell/TaintedHtml/TaintedInput issues.
package taint

import (
	"sort"

	"github.com/slackhq/hakana-sub001/internal/dataflow"
)

// SinkKind names the security-relevant sink categories issue
// kinds distinguish (TaintedSql, TaintedShell, TaintedHtml, plus the
// generic TaintedInput for untyped sinks).
type SinkKind string

const (
	SinkSQL SinkKind = "sql"
	SinkShell SinkKind = "shell"
	SinkHTML SinkKind = "html"
	SinkGeneric SinkKind = "generic"
)

// Tag is a single source/sink security label (e.g. "UserControlled",
// matching worked example).
type Tag string

// Source marks a node as tainted with a set of Tags.
type Source struct {
	Node dataflow.NodeID
	Tags map[Tag]bool
}

// Sink marks a node that must never be reached by any of Tags, and
// names which diagnostic kind a reaching trace should report as.
type Sink struct {
	Node dataflow.NodeID
	Tags map[Tag]bool
	Kind SinkKind
}

// Trace is one confirmed source-to-sink path ("a flat list of
// source->sink traces").
type Trace struct {
	Source dataflow.NodeID
	Sink dataflow.NodeID
	Tag Tag
	SinkKind SinkKind
	Path []dataflow.NodeID
}

// Engine runs reachability queries over one merged graph.
type Engine struct {
	graph *dataflow.Graph
	sinks []Sink
}

// New builds an Engine over graph (expected Kind ==
// GraphWholeProgramTaint) and the project's declared sinks.
func New(graph *dataflow.Graph, sinks []Sink) *Engine {
	return &Engine{graph: graph, sinks: sinks}
}

// Traces finds every path from any source to any sink that shares at
// least one tag, via a per-source BFS forward through the graph's
// edges, carrying the accumulated taint-type set (
// AddedTaints/RemovedTaints edge annotations narrow or widen the set as
// the walk proceeds — str_replace/json_encode examples
// are exactly this kind of edge). BFS bounds path length implicitly via
// the visited set, so cyclic flows (recursive calls) terminate.
func (e *Engine) Traces(sources []Source) []Trace {
	sinkByNode := make(map[dataflow.NodeID]Sink, len(e.sinks))
	for _, s := range e.sinks {
		sinkByNode[s.Node] = s
	}

	var traces []Trace
	for _, src := range sources {
		traces = append(traces, e.traceOne(src, sinkByNode)...)
	}
	sortTraces(traces)
	return traces
}

type frontier struct {
	node dataflow.NodeID
	tags map[Tag]bool
	path []dataflow.NodeID
}

func (e *Engine) traceOne(src Source, sinkByNode map[dataflow.NodeID]Sink) []Trace {
	var out []Trace
	visited := map[dataflow.NodeID]bool{src.Node: true}
	queue := []frontier{{node: src.Node, tags: src.Tags, path: []dataflow.NodeID{src.Node}}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if sink, ok := sinkByNode[cur.node]; ok && cur.node != src.Node {
			for tag := range cur.tags {
				if sink.Tags[tag] {
					out = append(out, Trace{
						Source: src.Node,
						Sink: sink.Node,
						Tag: tag,
						SinkKind: sink.Kind,
						Path: append([]dataflow.NodeID(nil), cur.path...),
					})
				}
			}
		}

		for _, edge := range e.graph.EdgesFrom(cur.node) {
			if visited[edge.To] {
				continue
			}
			nextTags := propagate(cur.tags, edge)
			if len(nextTags) == 0 {
				continue
			}
			visited[edge.To] = true
			queue = append(queue, frontier{
				node: edge.To,
				tags: nextTags,
				path: append(append([]dataflow.NodeID(nil), cur.path...), edge.To),
			})
		}
	}
	return out
}

// propagate computes the tag set carried across one edge: tags the
// edge's RemovedTaints strips, minus nothing it doesn't carry, plus
// whatever the edge itself adds (per-edge added/removed
// taint-type sets).
func propagate(tags map[Tag]bool, edge *dataflow.Edge) map[Tag]bool {
	out := make(map[Tag]bool, len(tags))
	for t := range tags {
		if edge.RemovedTaints != nil {
			if _, removed := edge.RemovedTaints[string(t)]; removed {
				continue
			}
		}
		out[t] = true
	}
	for t := range edge.AddedTaints {
		out[Tag(t)] = true
	}
	return out
}

func sortTraces(traces []Trace) {
	sort.Slice(traces, func(i, j int) bool {
		if traces[i].Source != traces[j].Source {
			return traces[i].Source < traces[j].Source
		}
		if traces[i].Sink != traces[j].Sink {
			return traces[i].Sink < traces[j].Sink
		}
		return traces[i].Tag < traces[j].Tag
	})
}
