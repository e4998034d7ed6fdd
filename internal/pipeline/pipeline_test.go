package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slackhq/hakana-sub001/internal/ast"
	"github.com/slackhq/hakana-sub001/internal/codebase"
	"github.com/slackhq/hakana-sub001/internal/interner"
	"github.com/slackhq/hakana-sub001/internal/issue"
	"github.com/slackhq/hakana-sub001/internal/taint"
	"github.com/slackhq/hakana-sub001/internal/ttype"
)

// Run orchestrates every registered functionlike concurrently and merges
// their issues, catching both a per-function type error and an
// unreferenced top-level function .
func TestRunMergesIssuesAndFindsUnused(t *testing.T) {
	in := interner.New()
	cb := codebase.New(in)

	cb.AddFunctionLike(interner.Empty, &codebase.FunctionLikeInfo{
		MethodID: in.Intern("entrypoint"),
		Return: ttype.Single(ttype.String),
		Body: []ast.Statement{
			&ast.ReturnStmt{Value: &ast.Literal{Kind: ast.LitInt, Int: 1}},
		},
	})
	cb.AddFunctionLike(interner.Empty, &codebase.FunctionLikeInfo{
		MethodID: in.Intern("neverCalled"),
		Return: ttype.Single(ttype.Void),
		Body: []ast.Statement{},
	})

	result, err := Run(context.Background(), cb, Options{})
	require.NoError(t, err)

	var kinds []issue.Kind
	for _, iss := range result.Issues {
		kinds = append(kinds, iss.Kind)
	}
	assert.Contains(t, kinds, issue.InvalidReturnStatement)
	assert.Contains(t, kinds, issue.UnusedSymbolFound)
}

// User input flowing unmodified from a tainted source's return value,
// through a local assignment, into a shell sink's first argument raises
// a TaintedShell issue with a source-to-sink trace — the whole-program
// taint pass exercised end to end instead of against a hand-built graph.
func TestRunFindsTaintedShellFlow(t *testing.T) {
	in := interner.New()
	cb := codebase.New(in)

	cb.AddFunctionLike(interner.Empty, &codebase.FunctionLikeInfo{
		MethodID: in.Intern("get_input"),
		Return: ttype.Single(ttype.String),
		TaintSources: []string{"UserControlled"},
	})
	cb.AddFunctionLike(interner.Empty, &codebase.FunctionLikeInfo{
		MethodID: in.Intern("shell_exec"),
		Params: []codebase.ParamInfo{{Name: in.Intern("cmd"), Type: ttype.Single(ttype.String)}},
		Return: ttype.Single(ttype.String),
		TaintSinks: []string{"UserControlled"},
	})

	cmd := &ast.Variable{Name: in.Intern("cmd")}
	cb.AddFunctionLike(interner.Empty, &codebase.FunctionLikeInfo{
		MethodID: in.Intern("run"),
		Return: ttype.Single(ttype.Void),
		Body: []ast.Statement{
			&ast.ExprStmt{Expr: &ast.Assign{
				Target: cmd,
				Value: &ast.FunctionCall{IsNamed: true, Name: in.Intern("get_input")},
			}},
			&ast.ExprStmt{Expr: &ast.FunctionCall{
				IsNamed: true,
				Name: in.Intern("shell_exec"),
				Args: []ast.Expression{cmd},
			}},
		},
	})

	result, err := Run(context.Background(), cb, Options{})
	require.NoError(t, err)

	require.Len(t, result.Traces, 1)
	trace := result.Traces[0]
	assert.Equal(t, taint.SinkShell, trace.SinkKind)

	var kinds []issue.Kind
	for _, iss := range result.Issues {
		kinds = append(kinds, iss.Kind)
	}
	assert.Contains(t, kinds, issue.TaintedShell)
}

// Scan runs reflection over a parsed file and populates the codebase
// single-threaded afterward .
func TestScanPopulatesCodebase(t *testing.T) {
	in := interner.New()
	file := &ast.File{PathID: 1, Path: "a.php"}

	cb, err := Scan(context.Background(), in, []*ast.File{file})
	require.NoError(t, err)

	info, ok := cb.File(1)
	require.True(t, ok)
	assert.Equal(t, "a.php", info.Path)
}
