// Package dataflow implements the data-flow graph: a directed
// multigraph recording value provenance, used both to detect unused
// locals (FunctionBody graphs) and, merged across the whole program, to
// answer taint reachability queries.
package dataflow

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// NodeID identifies a node in a data-flow graph. Assignment/property/
// taint nodes mint a fresh id (backed by google/uuid, the same
// correlation-id convention used for request tracking elsewhere) so
// that per-instance "specialization" nodes — a per-instance or
// per-call-site data-flow node variant — never collide even when two
// call sites produce structurally identical nodes.
type NodeID string

// NewNodeID mints a fresh, globally unique node id.
func NewNodeID() NodeID {
	return NodeID(uuid.NewString())
}

// MethodParamNodeID derives the node id for parameter offset of funcID
// deterministically from its identity rather than minting a random id.
// The per-function analyzer and the later whole-program taint wiring
// pass run independently (one per worker, one after merge) and must
// agree on the same id for "parameter i of this functionlike" without
// sharing any mutable state; a value derived from (funcID, offset) lets
// both sides compute it on their own.
func MethodParamNodeID(funcID string, offset int) NodeID {
	return NodeID(fmt.Sprintf("param:%s:%d", funcID, offset))
}

// MethodReturnNodeID derives the node id for funcID's return value the
// same way MethodParamNodeID does for a parameter.
func MethodReturnNodeID(funcID string) NodeID {
	return NodeID(fmt.Sprintf("return:%s", funcID))
}

// PropertyNodeID derives the node id for a class's declared property,
// shared across every read/write site of that property the same way
// MethodParamNodeID is shared across call sites.
func PropertyNodeID(classID, member string) NodeID {
	return NodeID(fmt.Sprintf("prop:%s::%s", classID, member))
}

// NodeKind enumerates the data-flow node variants of .
type NodeKind int

const (
	KindAssignment NodeKind = iota
	KindVariableSource
	KindVariableSink
	KindMethodParam
	KindMethodReturn
	KindProperty
	KindLocalProperty
	KindTaintSource
	KindTaintSink
	KindShapeFieldAccess
)

// Position is a minimal source position; the core never needs more than
// this to report an issue or a taint trace .
type Position struct {
	FileID uint32
	StartLine, StartCol int
	EndLine, EndCol int
}

// Node is one vertex of the data-flow graph.
type Node struct {
	ID NodeID
	Kind NodeKind
	Label string
	Pos Position

	// MethodParam / MethodReturn
	FunctionlikeID string
	Offset int
	Specialization string

	// Property / LocalProperty
	ClassID string
	VarID string
	Member string

	// TaintSource / TaintSink
	TaintTypes map[string]struct{}

	// ShapeFieldAccess
	Alias string
	Field string
}

// PathKind tags an edge with how the value moved from parent to child
// .
type PathKind int

const (
	PathPlain PathKind = iota
	PathPropertyAssignment
	PathPropertyFetch
	PathArrayAssignmentLiteralKey
	PathArrayAssignmentUnknownKey
	PathArrayFetchLiteralKey
	PathArrayFetchUnknownKey
	PathInout
	PathSerialize
	PathExpressionFetchArrayValue
	PathExpressionFetchArrayKey
)

// Edge is a directed, typed connection between two nodes.
type Edge struct {
	From, To NodeID
	Path PathKind
	ArrayKey string // literal key, when Path uses a literal key variant
	AddedTaints map[string]struct{}
	RemovedTaints map[string]struct{}
}

// GraphKind distinguishes the three graph purposes of .
type GraphKind int

const (
	GraphFunctionBody GraphKind = iota
	GraphWholeProgramReferences
	GraphWholeProgramTaint
)

// Graph is a directed multigraph of Nodes connected by Edges. A Graph is
// built per-function during analysis (GraphFunctionBody) and merged into
// whole-program graphs after all workers finish .
type Graph struct {
	Kind GraphKind

	mu sync.Mutex
	nodes map[NodeID]*Node
	// edgesFrom/edgesTo support both forward (source->sink) and backward
	// (sink->source) traversal, which the taint engine needs for tracing.
	edgesFrom map[NodeID][]*Edge
	edgesTo map[NodeID][]*Edge
}

// New creates an empty graph of the given kind.
func New(kind GraphKind) *Graph {
	return &Graph{
		Kind: kind,
		nodes: make(map[NodeID]*Node),
		edgesFrom: make(map[NodeID][]*Edge),
		edgesTo: make(map[NodeID][]*Edge),
	}
}

// AddNode inserts n, overwriting any existing node with the same id.
func (g *Graph) AddNode(n *Node) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nodes[n.ID] = n
}

// Node looks up a node by id.
func (g *Graph) Node(id NodeID) (*Node, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[id]
	return n, ok
}

// AddEdge records a directed edge from->to. Edges are additive (a
// multigraph): calling AddEdge twice with the same endpoints creates two
// parallel edges, e.g. when two distinct taint types are added on
// separate control-flow paths.
func (g *Graph) AddEdge(e *Edge) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.edgesFrom[e.From] = append(g.edgesFrom[e.From], e)
	g.edgesTo[e.To] = append(g.edgesTo[e.To], e)
}

// EdgesFrom returns every outgoing edge of id, in insertion order.
func (g *Graph) EdgesFrom(id NodeID) []*Edge {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]*Edge(nil), g.edgesFrom[id]...)
}

// EdgesTo returns every incoming edge of id, in insertion order.
func (g *Graph) EdgesTo(id NodeID) []*Edge {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]*Edge(nil), g.edgesTo[id]...)
}

// Nodes returns a snapshot of every node currently in the graph.
func (g *Graph) Nodes() []*Node {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	return out
}

// Merge folds other's nodes and edges into g. Used to join per-worker
// FunctionBody fragments into a WholeProgram graph after analysis
// ("fragments are merged").
func (g *Graph) Merge(other *Graph) {
	other.mu.Lock()
	nodes := make([]*Node, 0, len(other.nodes))
	for _, n := range other.nodes {
		nodes = append(nodes, n)
	}
	var edges []*Edge
	for _, es := range other.edgesFrom {
		edges = append(edges, es...)
	}
	other.mu.Unlock()

	g.mu.Lock()
	defer g.mu.Unlock()
	for _, n := range nodes {
		g.nodes[n.ID] = n
	}
	for _, e := range edges {
		g.edgesFrom[e.From] = append(g.edgesFrom[e.From], e)
		g.edgesTo[e.To] = append(g.edgesTo[e.To], e)
	}
}
