package codebase

import (
	"strings"

	"github.com/slackhq/hakana-sub001/internal/ast"
	"github.com/slackhq/hakana-sub001/internal/interner"
	"github.com/slackhq/hakana-sub001/internal/ttype"
)

// ReflectFile is component C's entry point ("Reflection
// pass"): visit each top-level declaration of one file and record a
// ClassLike/FunctionLike/TypeDefinition/Constant skeleton. Parent and
// interface names are recorded but not yet resolved to IDs — that is
// the populator's job (component D).
//
// Safe to call concurrently for distinct files; all writes go through
// Codebase's locked accessors ("per-file scanning workers run
// in parallel").
func ReflectFile(cb *Codebase, file *ast.File) {
	info := &FileInfo{PathID: file.PathID, Path: file.Path, ParseError: file.ParseError}
	if file.ParseError != nil {
		cb.AddFile(info)
		return
	}
	for _, decl := range file.Declarations {
		switch d := decl.(type) {
		case *ast.ClassDecl:
			c := reflectClass(cb.Interner, d)
			cb.AddClassLike(c)
			info.ClassIDs = append(info.ClassIDs, c.Name)
		case *ast.FunctionDecl:
			f := reflectFunction(cb.Interner, interner.Empty, d)
			cb.AddFunctionLike(interner.Empty, f)
			info.FunctionIDs = append(info.FunctionIDs, f.MethodID)
		case *ast.TypeAliasDecl:
			t := reflectTypeAlias(cb.Interner, d)
			cb.AddTypeDefinition(t)
			info.AliasIDs = append(info.AliasIDs, t.Name)
		case *ast.GlobalConstDecl:
			cb.AddConstant(&ConstantInfo{
				Name: d.Name,
				Type: ParseTypeHint(cb.Interner, d.Type),
				Pos: d.Pos(),
			})
		}
	}
	cb.AddFile(info)
}

func headName(hint *ast.TypeHint) string {
	if hint == nil {
		return ""
	}
	s := strings.TrimSpace(hint.Text)
	s = strings.TrimPrefix(s, "?")
	if i := strings.IndexAny(s, "<|"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func reflectClass(in *interner.Interner, d *ast.ClassDecl) *ClassLikeInfo {
	c := &ClassLikeInfo{
		Name: d.Name,
		Kind: d.Kind,
		IsAbstract: d.IsAbstract,
		IsFinal: d.IsFinal,
		Pos: d.Pos(),
		Properties: make(map[interner.ID]*PropertyInfo),
		Methods: make(map[interner.ID]*FunctionLikeInfo),
		Constants: make(map[interner.ID]*ConstantInfo),
		TypeConsts: make(map[interner.ID]*TypeConstantInfo),
	}

	if d.Parent != nil {
		c.ParentName = headName(d.Parent)
	}
	for i := range d.Implements {
		c.ImplementsName = append(c.ImplementsName, headName(&d.Implements[i]))
	}
	for i := range d.TraitUses {
		c.TraitUseNames = append(c.TraitUseNames, headName(&d.TraitUses[i]))
	}

	for _, tp := range d.TypeParams {
		c.TypeParams = append(c.TypeParams, TypeParamInfo{
			Name: tp.Name,
			Variance: ttype.Variance(tp.Variance),
			AsType: ParseTypeHint(in, tp.AsType),
		})
	}

	for _, p := range d.Properties {
		typ := ParseTypeHint(in, p.Type)
		// Implicit nullability: a property/XHP attribute with no default
		// and not required is nullable .
		if !p.HasDefault && !p.IsRequired && !typ.HasNull() {
			typ = ttype.NullableOf(typ)
		}
		c.Properties[p.Name] = &PropertyInfo{
			Name: p.Name,
			Type: typ,
			IsStatic: p.IsStatic,
			Visibility: p.Visibility,
			HasDefault: p.HasDefault,
			Pos: p.Pos,
		}
	}

	for _, con := range d.Constants {
		c.Constants[con.Name] = &ConstantInfo{
			Name: con.Name,
			Type: ParseTypeHint(in, con.Type),
			Pos: con.Pos,
		}
	}

	for _, tc := range d.TypeConstants {
		entry := &TypeConstantInfo{
			Name: tc.Name,
			AsType: ParseTypeHint(in, tc.AsType),
		}
		if tc.Value != nil {
			v := ParseTypeHint(in, *tc.Value)
			entry.Value = &v
		}
		c.TypeConsts[tc.Name] = entry
	}

	for _, m := range d.Methods {
		c.Methods[m.Name] = reflectFunction(in, d.Name, m)
	}

	if d.EnumType != nil {
		u := ParseTypeHint(in, *d.EnumType)
		c.EnumType = &u
		c.EnumCases = append(c.EnumCases, d.EnumCases...)
	}

	return c
}

func reflectFunction(in *interner.Interner, classID interner.ID, d *ast.FunctionDecl) *FunctionLikeInfo {
	f := &FunctionLikeInfo{
		ClassID: classID,
		MethodID: d.Name,
		Return: ParseTypeHint(in, d.Return),
		IsAsync: d.IsAsync,
		IsAbstract: d.IsAbstract,
		IsStatic: d.IsStatic,
		IsFinal: d.IsFinal,
		HasYield: d.HasYield,
		Body: d.Body,
		Pos: d.PosInfo,
		TaintSources: d.TaintSources,
		TaintSinks: d.TaintSinks,
	}
	if d.IsAsync && !f.Return.HasKind(ttype.KAwaitable) {
		f.Return = ttype.Single(ttype.Awaitable{Inner: f.Return})
	}
	for _, p := range d.Params {
		f.Params = append(f.Params, ParamInfo{
			Name: p.Name,
			Type: ParseTypeHint(in, p.Type),
			Optional: p.Optional,
			Variadic: p.Variadic,
			ByRef: p.ByRef,
		})
	}
	for _, tp := range d.TypeParams {
		f.TypeParams = append(f.TypeParams, ttype.GenericParam{
			Name: tp.Name,
			DefiningEntity: entityKey(classID, d.Name, in),
			AsType: ParseTypeHint(in, tp.AsType),
		})
	}
	if len(d.WhereBounds) > 0 {
		f.WhereBounds = make(map[string]ttype.Union, len(d.WhereBounds))
		for k, v := range d.WhereBounds {
			f.WhereBounds[k] = ParseTypeHint(in, v)
		}
	}
	return f
}

func entityKey(classID, methodID interner.ID, in *interner.Interner) string {
	if classID == interner.Empty {
		return in.Lookup(methodID)
	}
	return in.Lookup(classID) + "::" + in.Lookup(methodID)
}

func reflectTypeAlias(in *interner.Interner, d *ast.TypeAliasDecl) *TypeDefinitionInfo {
	t := &TypeDefinitionInfo{Name: d.Name, AsType: ParseTypeHint(in, d.AsType)}
	for _, tp := range d.TypeParams {
		t.TypeParams = append(t.TypeParams, ttype.GenericParam{
			Name: tp.Name,
			AsType: ParseTypeHint(in, tp.AsType),
		})
	}
	return t
}
