package analyzer

import (
	"github.com/slackhq/hakana-sub001/internal/ast"
	"github.com/slackhq/hakana-sub001/internal/codebase"
	"github.com/slackhq/hakana-sub001/internal/dataflow"
	"github.com/slackhq/hakana-sub001/internal/interner"
	"github.com/slackhq/hakana-sub001/internal/ttype"
)

// wireCall links each argument union's provenance to f's MethodParam
// nodes and re-parents result to f's MethodReturn node, using the
// deterministic ids keyed on f's own string identity. This is what lets
// taint.WireFromCodebase's source/sink nodes — wired to the very same
// ids — sit on a path a later BFS can actually walk, instead of as
// disconnected islands.
func (a *Analyzer) wireCall(f *codebase.FunctionLikeInfo, argUnions []ttype.Union, result ttype.Union) ttype.Union {
	funcID := a.Codebase.FunctionlikeStringID(f.ClassID, f.MethodID)
	for i, u := range argUnions {
		param := dataflow.MethodParamNodeID(funcID, i)
		a.Graph.AddNode(&dataflow.Node{ID: param, Kind: dataflow.KindMethodParam, Label: funcID, FunctionlikeID: funcID, Offset: i})
		for _, parent := range u.ParentNodeIDs() {
			a.Graph.AddEdge(&dataflow.Edge{From: parent, To: param, Path: dataflow.PathPlain})
		}
	}
	ret := dataflow.MethodReturnNodeID(funcID)
	a.Graph.AddNode(&dataflow.Node{ID: ret, Kind: dataflow.KindMethodReturn, Label: funcID, FunctionlikeID: funcID})
	return result.WithParent(ret)
}

// inferTemplates accumulates a template lower bound per declared type
// parameter by matching each parameter's type against the corresponding
// argument union ("computing template lower bounds from
// argument-to-param matching"). This handles the common case where a
// template parameter appears bare as a parameter's type; it does not
// unify templates nested inside a parameter's collection/closure shape.
func inferTemplates(f *codebase.FunctionLikeInfo, argUnions []ttype.Union) map[string]ttype.Union {
	if len(f.TypeParams) == 0 {
		return nil
	}
	bounds := make(map[string]ttype.Union)
	for i, p := range f.Params {
		if i >= len(argUnions) {
			break
		}
		for _, at := range p.Type.Types {
			g, ok := at.(ttype.GenericParam)
			if !ok {
				continue
			}
			key := g.String()
			if existing, has := bounds[key]; has {
				bounds[key] = ttype.Combine(append(append([]ttype.Atomic(nil), existing.Types...), argUnions[i].Types...))
			} else {
				bounds[key] = argUnions[i]
			}
		}
	}
	for name, u := range f.WhereBounds {
		if _, has := bounds[name]; !has {
			bounds[name] = u
		}
	}
	return bounds
}

func (a *Analyzer) expandCallReturn(f *codebase.FunctionLikeInfo, bounds map[string]ttype.Union, selfClass interner.ID, hasSelf bool) ttype.Union {
	exp := ttype.NewExpander(a.Codebase, 10000)
	return exp.Expand(f.Return, ttype.ExpansionOptions{
		SelfClass: selfClass,
		HasSelfClass: hasSelf,
		ExpandTemplates: true,
		ExpandGeneric: true,
		ExpandTypeAliases: true,
		WhereConstraints: bounds,
	})
}

// evalArgs evaluates every call argument left to right and reports whether
// every one of them was pure (step 5's pure_exprs bookkeeping
// also covers a call's own purity, gated further by the callee's effect).
func (a *Analyzer) evalArgs(args []ast.Expression) ([]ttype.Union, bool) {
	units := make([]ttype.Union, len(args))
	allPure := true
	for i, arg := range args {
		units[i] = a.eval(a.scope, arg)
		if !a.PureExprs[exprKeyOf(arg.Pos())] {
			allPure = false
		}
	}
	return units, allPure
}

// specialFunctionResult models the fixed intrinsic table 
// describes for well-known builtins whose return shape isn't expressible
// by an ordinary declared signature.
func specialFunctionResult(in *interner.Interner, name interner.ID, argUnions []ttype.Union) (ttype.Union, bool) {
	switch in.Lookup(name) {
	case "idx":
		if len(argUnions) >= 2 {
			return ttype.NullableOf(stripNull(argUnions[0])), true
		}
		if len(argUnions) == 1 {
			return ttype.Single(ttype.Mixed), true
		}
	case "str_replace", "strtolower", "strtoupper", "trim", "ltrim", "rtrim", "substr", "implode", "json_encode":
		return ttype.Single(ttype.String), true
	case "preg_match", "preg_match_all":
		return ttype.Single(ttype.Int), true
	case "count", "sizeof":
		return ttype.Single(ttype.Int), true
	case "is_null", "is_int", "is_string", "is_bool", "is_array", "is_float", "isset":
		return ttype.Single(ttype.Bool), true
	}
	return ttype.Union{}, false
}

func (a *Analyzer) VisitFunctionCall(n *ast.FunctionCall) {
	argUnions, argsPure := a.evalArgs(n.Args)

	if !n.IsNamed {
		a.eval(a.scope, n.Callee)
		a.markPure(n.PosInfo, false)
		a.set(ttype.Single(ttype.Mixed))
		return
	}

	if result, ok := specialFunctionResult(a.Codebase.Interner, n.Name, argUnions); ok {
		a.markPure(n.PosInfo, argsPure)
		a.set(result)
		return
	}

	f, ok := a.Codebase.FunctionLike(interner.Empty, n.Name)
	if !ok {
		a.markPure(n.PosInfo, false)
		a.set(ttype.Single(ttype.Mixed))
		return
	}
	a.Refs.AddReference(a.scope.FunctionContext.ClassID, a.scope.FunctionContext.MethodID, interner.Empty, n.Name)

	bounds := inferTemplates(f, argUnions)
	result := a.expandCallReturn(f, bounds, interner.Empty, false)
	if f.IsAsync {
		result = ttype.Single(ttype.Awaitable{Inner: result})
	}
	result = a.wireCall(f, argUnions, result)
	a.markPure(n.PosInfo, argsPure && f.Effects == ttype.Pure)
	a.set(result)
}

func (a *Analyzer) VisitMethodCall(n *ast.MethodCall) {
	objUnion := a.eval(a.scope, n.Object)
	argUnions, argsPure := a.evalArgs(n.Args)

	var atoms []ttype.Atomic
	anyPure := false
	for _, at := range objUnion.Types {
		named, isNamed := at.(ttype.Named)
		if !isNamed {
			atoms = append(atoms, ttype.Mixed)
			continue
		}
		f, ok := resolveMethod(a.Codebase, named.Name, n.Method)
		if !ok {
			atoms = append(atoms, ttype.Mixed)
			continue
		}
		a.Refs.AddReference(a.scope.FunctionContext.ClassID, a.scope.FunctionContext.MethodID, named.Name, n.Method)
		bounds := inferTemplates(f, argUnions)
		result := a.expandCallReturn(f, bounds, named.Name, true)
		if f.IsAsync {
			result = ttype.Single(ttype.Awaitable{Inner: result})
		}
		result = a.wireCall(f, argUnions, result)
		atoms = append(atoms, result.Types...)
		anyPure = anyPure || f.Effects == ttype.Pure
	}

	if n.Nullsafe && objUnion.HasNull() {
		atoms = append(atoms, ttype.Null)
	}
	if len(atoms) == 0 {
		atoms = []ttype.Atomic{ttype.Mixed}
	}
	a.markPure(n.PosInfo, argsPure && anyPure)
	a.set(ttype.Combine(atoms))
}

func resolveMethod(cb *codebase.Codebase, classID, methodID interner.ID) (*codebase.FunctionLikeInfo, bool) {
	if f, ok := cb.FunctionLike(classID, methodID); ok {
		return f, true
	}
	c, ok := cb.ClassLike(classID)
	if !ok {
		return nil, false
	}
	for parentID := range c.AllParentClasses {
		if f, ok := cb.FunctionLike(parentID, methodID); ok {
			return f, true
		}
	}
	for ifaceID := range c.AllParentInterfaces {
		if f, ok := cb.FunctionLike(ifaceID, methodID); ok {
			return f, true
		}
	}
	return nil, false
}

func (a *Analyzer) VisitStaticCall(n *ast.StaticCall) {
	argUnions, argsPure := a.evalArgs(n.Args)

	classID := n.ClassName
	switch classID {
	case interner.SelfKeyword, interner.Static:
		classID = a.scope.FunctionContext.ClassID
	case interner.Parent:
		if c, ok := a.Codebase.ClassLike(a.scope.FunctionContext.ClassID); ok {
			classID = c.ParentID
		}
	}

	f, ok := resolveMethod(a.Codebase, classID, n.Method)
	if !ok {
		a.markPure(n.PosInfo, false)
		a.set(ttype.Single(ttype.Mixed))
		return
	}
	a.Refs.AddReference(a.scope.FunctionContext.ClassID, a.scope.FunctionContext.MethodID, classID, n.Method)

	bounds := inferTemplates(f, argUnions)
	result := a.expandCallReturn(f, bounds, classID, true)
	if f.IsAsync {
		result = ttype.Single(ttype.Awaitable{Inner: result})
	}
	result = a.wireCall(f, argUnions, result)
	a.markPure(n.PosInfo, argsPure && f.Effects == ttype.Pure)
	a.set(result)
}

// VisitNewExpr resolves the class (self/parent/static included) and
// builds the returned Named atomic, filling each template slot from a
// bound inferred from the constructor's arguments or, failing that, the
// template's upper bound. NewExpr carries no explicit type arguments, and
// the arguments are not checked against the constructor's parameters.
func (a *Analyzer) VisitNewExpr(n *ast.NewExpr) {
	argUnions, argsPure := a.evalArgs(n.Args)

	classID := n.ClassName
	switch classID {
	case interner.SelfKeyword:
		classID = a.scope.FunctionContext.ClassID
	case interner.Parent:
		if c, ok := a.Codebase.ClassLike(a.scope.FunctionContext.ClassID); ok {
			classID = c.ParentID
		}
	case interner.Static:
		classID = a.scope.FunctionContext.ClassID
	}
	if n.IsStatic {
		classID = a.scope.FunctionContext.ClassID
	}

	c, ok := a.Codebase.ClassLike(classID)
	if !ok {
		a.markPure(n.PosInfo, false)
		a.set(ttype.Single(ttype.Mixed))
		return
	}
	a.Refs.AddClassReference(classID)

	typeParams := make([]ttype.Union, len(c.TypeParams))
	if ctor, ok := resolveMethod(a.Codebase, classID, interner.Construct); ok {
		bounds := inferTemplates(ctor, argUnions)
		for i, tp := range c.TypeParams {
			key := "T:" + a.Codebase.Interner.Lookup(tp.Name)
			if u, has := bounds[key]; has {
				typeParams[i] = u
				continue
			}
			typeParams[i] = tp.AsType
		}
	} else {
		for i, tp := range c.TypeParams {
			typeParams[i] = tp.AsType
		}
	}

	named := ttype.NewNamed(a.Codebase.Interner, classID, typeParams...)
	_ = argsPure
	a.markPure(n.PosInfo, false)
	a.set(ttype.Single(named))
}
