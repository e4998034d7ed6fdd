package taint

import (
	"strings"

	"github.com/slackhq/hakana-sub001/internal/codebase"
	"github.com/slackhq/hakana-sub001/internal/dataflow"
)

// sinkKindByName classifies a few well-known builtin sinks, e.g.
// `shell_exec` as a TaintedShell sink; anything not recognized defaults
// to SinkGeneric (TaintedInput).
var sinkKindByName = map[string]SinkKind{
	"shell_exec": SinkShell,
	"exec": SinkShell,
	"system": SinkShell,
	"passthru": SinkShell,
	"popen": SinkShell,
	"proc_open": SinkShell,
	"mysqli_query": SinkSQL,
	"pg_query": SinkSQL,
	"sqlite_query": SinkSQL,
	"echo": SinkHTML,
	"print": SinkHTML,
	"printf": SinkHTML,
}

func classify(name string) SinkKind {
	if kind, ok := sinkKindByName[strings.ToLower(name)]; ok {
		return kind
	}
	return SinkGeneric
}

// WireFromCodebase scans every functionlike's TaintSources/TaintSinks
//  and registers one graph node per tagged function, tagging
// its MethodReturn node (for sources — the tainted value flows out
// through the return) or its MethodParam offset-0 node (for sinks — the
// dangerous value flows in through the first argument), per
// node kinds. These reuse the same deterministic ids
// (dataflow.MethodReturnNodeID/MethodParamNodeID, keyed on the
// codebase's own FunctionlikeStringID) that the per-function analyzer
// attaches call argument/return edges to, so the two passes land on the
// same node without sharing any other state.
func WireFromCodebase(cb *codebase.Codebase, graph *dataflow.Graph) (sources []Source, sinks []Sink) {
	for _, f := range cb.AllFunctionLikes() {
		funcID := cb.FunctionlikeStringID(f.ClassID, f.MethodID)

		if len(f.TaintSources) > 0 {
			node := dataflow.MethodReturnNodeID(funcID)
			tags := make(map[Tag]bool, len(f.TaintSources))
			for _, t := range f.TaintSources {
				tags[Tag(t)] = true
			}
			graph.AddNode(&dataflow.Node{ID: node, Kind: dataflow.KindTaintSource, Label: funcID, FunctionlikeID: funcID})
			sources = append(sources, Source{Node: node, Tags: tags})
		}

		if len(f.TaintSinks) > 0 {
			node := dataflow.MethodParamNodeID(funcID, 0)
			tags := make(map[Tag]bool, len(f.TaintSinks))
			for _, t := range f.TaintSinks {
				tags[Tag(t)] = true
			}
			graph.AddNode(&dataflow.Node{ID: node, Kind: dataflow.KindTaintSink, Label: funcID, FunctionlikeID: funcID})
			sinks = append(sinks, Sink{Node: node, Tags: tags, Kind: classify(funcID)})
		}
	}
	return sources, sinks
}
