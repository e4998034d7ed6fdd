// Package pipeline orchestrates the three-stage pipeline 
// describe: per-file reflection run in parallel, a single-threaded
// population pass, then per-function analysis run in parallel, with
// results merged into whole-program issue lists, a reference graph, and
// (optionally) a taint reachability pass. Concurrency uses
// golang.org/x/sync/errgroup for both worker pools, matching the
// teacher's "fan out, join" shape .
package pipeline

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/slackhq/hakana-sub001/internal/analyzer"
	"github.com/slackhq/hakana-sub001/internal/ast"
	"github.com/slackhq/hakana-sub001/internal/clog"
	"github.com/slackhq/hakana-sub001/internal/codebase"
	"github.com/slackhq/hakana-sub001/internal/config"
	"github.com/slackhq/hakana-sub001/internal/dataflow"
	"github.com/slackhq/hakana-sub001/internal/interner"
	"github.com/slackhq/hakana-sub001/internal/issue"
	"github.com/slackhq/hakana-sub001/internal/taint"
)

// Result is the whole-program output of Run : every
// function's scope-independent issues, merged symbol references, the
// merged whole-program graphs, and any confirmed taint traces.
type Result struct {
	Issues []issue.Issue
	References *issue.SymbolReferences
	Codebase *codebase.Codebase
	ProgramGraph *dataflow.Graph
	TaintGraph *dataflow.Graph
	Traces []taint.Trace
}

// Options configures one Run.
type Options struct {
	Config *config.Config
	Log *clog.Logger
	Sinks []taint.Sink
}

// Scan runs the reflection builder over every file concurrently, then
// the populator once, single-threaded, over the combined result. This
// is the entry point that turns (FilePathID, Source, AST, ResolvedNames)
// tuples into a populated Codebase.
func Scan(ctx context.Context, in *interner.Interner, files []*ast.File) (*codebase.Codebase, error) {
	cb := codebase.New(in)

	g, _ := errgroup.WithContext(ctx)
	for _, f := range files {
		f := f
		g.Go(func() error {
			codebase.ReflectFile(cb, f)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	codebase.Populate(cb)
	return cb, nil
}

// Run drives the whole pipeline: Scan (if cb is nil, built from files),
// then one analysis worker per functionlike ("each worker owns
// its own ScopeContext, Graph, and Issues"), merged into a single
// program-wide FunctionBody-derived graph, then a taint reachability
// pass over any source/sink wired from the codebase's own annotations
// plus opts.Sinks, run whenever at least one of each was found.
func Run(ctx context.Context, cb *codebase.Codebase, opts Options) (*Result, error) {
	if opts.Log == nil {
		opts.Log = clog.Stderr()
	}

	funcs := cb.AllFunctionLikes()
	opts.Log.Infof("analyzing %d functionlikes", len(funcs))

	refs := issue.NewSymbolReferences()
	programGraph := dataflow.New(dataflow.GraphWholeProgramReferences)

	var mu sync.Mutex
	var allIssues []issue.Issue

	g, _ := errgroup.WithContext(ctx)
	for _, f := range funcs {
		f := f
		g.Go(func() error {
			if f.Body == nil {
				return nil
			}
			a := analyzer.New(cb, refs)
			analyzer.AnalyzeFunction(a, f)

			mu.Lock()
			allIssues = append(allIssues, a.Issues.Issues...)
			programGraph.Merge(a.Graph)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	unused := codebase.FindUnused(cb, refs)
	for _, u := range unused {
		name := cb.Interner.Lookup(u.Name)
		allIssues = append(allIssues, issue.New(issue.UnusedSymbolFound, "unused symbol "+name, ast.Position{}).WithOwner(u.ClassID, u.Name))
	}

	if opts.Config != nil {
		allIssues = opts.Config.Filter(allIssues)
	}
	sortIssues(allIssues)

	result := &Result{
		Issues: allIssues,
		References: refs,
		Codebase: cb,
		ProgramGraph: programGraph,
	}

	taintGraph := dataflow.New(dataflow.GraphWholeProgramTaint)
	taintGraph.Merge(programGraph)
	sources, wiredSinks := taint.WireFromCodebase(cb, taintGraph)
	allSinks := append(append([]taint.Sink(nil), opts.Sinks...), wiredSinks...)
	if len(sources) > 0 && len(allSinks) > 0 {
		engine := taint.New(taintGraph, allSinks)
		result.TaintGraph = taintGraph
		result.Traces = engine.Traces(sources)
		result.Issues = append(result.Issues, traceIssues(result.Traces)...)
		sortIssues(result.Issues)
	}

	return result, nil
}

func traceIssues(traces []taint.Trace) []issue.Issue {
	out := make([]issue.Issue, 0, len(traces))
	for _, t := range traces {
		kind := issue.TaintedInput
		switch t.SinkKind {
		case taint.SinkSQL:
			kind = issue.TaintedSql
		case taint.SinkShell:
			kind = issue.TaintedShell
		case taint.SinkHTML:
			kind = issue.TaintedHtml
		}
		out = append(out, issue.New(kind, "tainted value ("+string(t.Tag)+") reaches a sensitive sink", ast.Position{}))
	}
	return out
}

func sortIssues(issues []issue.Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		pi, pj := issues[i].Pos, issues[j].Pos
		if pi.StartLine != pj.StartLine {
			return pi.StartLine < pj.StartLine
		}
		return pi.StartCol < pj.StartCol
	})
}
