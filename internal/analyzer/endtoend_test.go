package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slackhq/hakana-sub001/internal/ast"
	"github.com/slackhq/hakana-sub001/internal/codebase"
	"github.com/slackhq/hakana-sub001/internal/interner"
	"github.com/slackhq/hakana-sub001/internal/issue"
	"github.com/slackhq/hakana-sub001/internal/ttype"
)

func newTestCodebase() (*codebase.Codebase, *interner.Interner) {
	in := interner.New()
	return codebase.New(in), in
}

func variable(in *interner.Interner, name string) *ast.Variable {
	return &ast.Variable{Name: in.Intern(name)}
}

func strLit(s string) *ast.Literal  { return &ast.Literal{Kind: ast.LitString, Str: s} }
func intLit(i int64) *ast.Literal   { return &ast.Literal{Kind: ast.LitInt, Int: i} }
func nullLit() *ast.Literal         { return &ast.Literal{Kind: ast.LitNull} }

func assign(target ast.Expression, value ast.Expression) *ast.ExprStmt {
	return &ast.ExprStmt{Expr: &ast.Assign{Target: target, Value: value}}
}

// runFunction analyzes f's body end-to-end (reflection is skipped; the
// function is registered directly) and returns the issues it raises.
func runFunction(cb *codebase.Codebase, f *codebase.FunctionLikeInfo) []issue.Issue {
	a := New(cb, issue.NewSymbolReferences())
	AnalyzeFunction(a, f)
	return a.Issues.Issues
}

// A function that returns a bare int against a string-typed signature
// raises InvalidReturnStatement.
func TestEndToEnd_InvalidReturnType(t *testing.T) {
	cb, in := newTestCodebase()
	f := &codebase.FunctionLikeInfo{
		MethodID: in.Intern("badReturn"),
		Return:   ttype.Single(ttype.String),
		Body: []ast.Statement{
			&ast.ReturnStmt{Value: intLit(42)},
		},
	}

	issues := runFunction(cb, f)
	require.Len(t, issues, 1)
	assert.Equal(t, issue.InvalidReturnStatement, issues[0].Kind)
}

// A function declared to return a non-nullable string whose body can
// return null on one path raises NullableReturnStatement rather than an
// outright type mismatch.
func TestEndToEnd_NullableReturnWhereStringExpected(t *testing.T) {
	cb, in := newTestCodebase()
	x := variable(in, "x")
	f := &codebase.FunctionLikeInfo{
		MethodID: in.Intern("maybeNull"),
		Params:   []codebase.ParamInfo{{Name: in.Intern("flag"), Type: ttype.Single(ttype.Bool)}},
		Return:   ttype.Single(ttype.String),
		Body: []ast.Statement{
			&ast.IfStmt{
				Cond: variable(in, "flag"),
				Then: []ast.Statement{assign(x, strLit("hi"))},
				Else: []ast.Statement{assign(x, nullLit())},
			},
			&ast.ReturnStmt{Value: x},
		},
	}

	issues := runFunction(cb, f)
	require.Len(t, issues, 1)
	assert.Equal(t, issue.NullableReturnStatement, issues[0].Kind)
}

// if ($s === "a") { return $s; } return $s; with $s a string parameter:
// both returns stay within the declared string type through the
// assertion and branch-merge pipeline, so nothing is raised.
func TestEndToEnd_BranchNarrowingNoFalsePositive(t *testing.T) {
	cb, in := newTestCodebase()
	f := &codebase.FunctionLikeInfo{
		MethodID: in.Intern("narrowed"),
		Params:   []codebase.ParamInfo{{Name: in.Intern("s"), Type: ttype.Single(ttype.String)}},
		Return:   ttype.Single(ttype.String),
		Body: []ast.Statement{
			&ast.IfStmt{
				Cond: &ast.BinaryOp{Op: ast.OpIdentical, Left: variable(in, "s"), Right: strLit("a")},
				Then: []ast.Statement{
					&ast.ReturnStmt{Value: variable(in, "s")},
				},
			},
			&ast.ReturnStmt{Value: variable(in, "s")},
		},
	}

	issues := runFunction(cb, f)
	assert.Empty(t, issues)
}

// foreach over a vec<int> accumulated by repeated $xs[] = $i settles the
// accumulator's element type at int across the loop fixpoint, so
// returning it against a vec<int>-typed signature is clean.
func TestEndToEnd_LoopAccumulationFixpoint(t *testing.T) {
	cb, in := newTestCodebase()
	xs := variable(in, "xs")
	i := variable(in, "i")
	items := variable(in, "items")

	f := &codebase.FunctionLikeInfo{
		MethodID: in.Intern("collect"),
		Params: []codebase.ParamInfo{
			{Name: in.Intern("items"), Type: ttype.Single(ttype.Vec{Elem: ttype.Single(ttype.Int)})},
		},
		Return: ttype.Single(ttype.Vec{Elem: ttype.Single(ttype.Int)}),
		Body: []ast.Statement{
			assign(xs, &ast.ArrayLiteral{Kind: ast.ArrayLiteralVec}),
			&ast.ForeachStmt{
				Iterable: items,
				ValueVar: i.Name,
				Body: []ast.Statement{
					&ast.ExprStmt{Expr: &ast.Assign{
						Target: &ast.ArrayFetch{Array: xs, Key: nil},
						Value:  i,
					}},
				},
			},
			&ast.ReturnStmt{Value: xs},
		},
	}

	issues := runFunction(cb, f)
	assert.Empty(t, issues)
}

// shell_exec of a string-typed parameter is well-typed from the type
// checker's point of view; the taint engine (a separate reachability
// pass over the whole-program graph, exercised in internal/taint) is
// what flags the dangerous flow, not the per-function analyzer.
func TestEndToEnd_WellTypedCallDoesNotRaiseTypeIssues(t *testing.T) {
	cb, in := newTestCodebase()
	shellExec := &codebase.FunctionLikeInfo{
		MethodID:   in.Intern("shell_exec"),
		Params:     []codebase.ParamInfo{{Name: in.Intern("cmd"), Type: ttype.Single(ttype.String)}},
		Return:     ttype.Single(ttype.String),
		TaintSinks: []string{"UserControlled"},
	}
	cb.AddFunctionLike(interner.Empty, shellExec)

	f := &codebase.FunctionLikeInfo{
		MethodID: in.Intern("run"),
		Params:   []codebase.ParamInfo{{Name: in.Intern("cmd"), Type: ttype.Single(ttype.String)}},
		Return:   ttype.Single(ttype.String),
		Body: []ast.Statement{
			&ast.ReturnStmt{Value: &ast.FunctionCall{
				IsNamed: true,
				Name:    in.Intern("shell_exec"),
				Args:    []ast.Expression{variable(in, "cmd")},
			}},
		},
	}

	issues := runFunction(cb, f)
	assert.Empty(t, issues)
}
