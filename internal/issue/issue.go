// Package issue defines the diagnostic model every analysis stage
// reports through: diagnostic issues never fail the run.
package issue

import (
	"fmt"

	"github.com/slackhq/hakana-sub001/internal/ast"
	"github.com/slackhq/hakana-sub001/internal/interner"
)

// Kind enumerates the diagnostic categories, one per named check. New
// kinds are cheap to add; nothing downstream switches exhaustively over
// this type.
type Kind int

const (
	NullableReturnStatement Kind = iota
	InvalidReturnStatement
	RedundantTypeComparison
	ImpossibleTypeComparison
	PossiblyUndefinedIntArrayOffset
	PossiblyUndefinedStringArrayOffset
	MixedArrayAccess
	InvalidPropertyAssignmentValue
	PropertyTypeCoercion
	TaintedInput
	TaintedSql
	TaintedShell
	TaintedHtml
	UnusedSymbolFound
	InternalError
	InvalidDependencies
)

func (k Kind) String() string {
	switch k {
	case NullableReturnStatement:
		return "NullableReturnStatement"
	case InvalidReturnStatement:
		return "InvalidReturnStatement"
	case RedundantTypeComparison:
		return "RedundantTypeComparison"
	case ImpossibleTypeComparison:
		return "ImpossibleTypeComparison"
	case PossiblyUndefinedIntArrayOffset:
		return "PossiblyUndefinedIntArrayOffset"
	case PossiblyUndefinedStringArrayOffset:
		return "PossiblyUndefinedStringArrayOffset"
	case MixedArrayAccess:
		return "MixedArrayAccess"
	case InvalidPropertyAssignmentValue:
		return "InvalidPropertyAssignmentValue"
	case PropertyTypeCoercion:
		return "PropertyTypeCoercion"
	case TaintedInput:
		return "TaintedInput"
	case TaintedSql:
		return "TaintedSql"
	case TaintedShell:
		return "TaintedShell"
	case TaintedHtml:
		return "TaintedHtml"
	case UnusedSymbolFound:
		return "UnusedSymbolFound"
	case InternalError:
		return "InternalError"
	case InvalidDependencies:
		return "InvalidDependencies"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Severity buckets a Kind for reporting/suppression purposes.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

func (k Kind) Severity() Severity {
	switch k {
	case InternalError, InvalidDependencies, TaintedSql, TaintedShell, TaintedHtml:
		return SeverityError
	case RedundantTypeComparison, ImpossibleTypeComparison, UnusedSymbolFound:
		return SeverityInfo
	default:
		return SeverityWarning
	}
}

// Issue is one diagnostic finding, owned by the functionlike (or file,
// for file-level issues like InvalidDependencies) it was raised
// against.
type Issue struct {
	Kind Kind
	Message string
	Pos ast.Position
	ClassID interner.ID
	MethodID interner.ID
}

func New(kind Kind, message string, pos ast.Position) Issue {
	return Issue{Kind: kind, Message: message, Pos: pos}
}

func (i Issue) WithOwner(classID, methodID interner.ID) Issue {
	i.ClassID = classID
	i.MethodID = methodID
	return i
}

func (i Issue) String() string {
	return fmt.Sprintf("%s:%d: %s: %s", "file", i.Pos.StartLine, i.Kind, i.Message)
}

// Collector accumulates issues for one analysis worker ("each
// worker owns ... an issues vector"); Merge folds one worker's findings
// into a shared accumulator after all workers finish.
type Collector struct {
	Issues []Issue
}

func (c *Collector) Add(i Issue) {
	c.Issues = append(c.Issues, i)
}

func (c *Collector) Merge(other *Collector) {
	c.Issues = append(c.Issues, other.Issues...)
}

// SymbolReferences is the program-wide "who references whom" index
// names alongside Issue; the unused-code sweep 
// and the taint engine (component J) both query it.
type SymbolReferences struct {
	// refs[target] is the set of (class_id, method_id) call sites that
	// reference target (a method or top-level function).
	refs map[symbolKey]map[symbolKey]bool
	// classRefs[class_id] is whether anything instantiates/names the
	// classlike at all (new, type hint, static call, constant access).
	classRefs map[interner.ID]bool
}

type symbolKey struct {
	ClassID interner.ID
	MethodID interner.ID
}

func NewSymbolReferences() *SymbolReferences {
	return &SymbolReferences{
		refs: make(map[symbolKey]map[symbolKey]bool),
		classRefs: make(map[interner.ID]bool),
	}
}

func (r *SymbolReferences) AddReference(fromClass, fromMethod, toClass, toMethod interner.ID) {
	target := symbolKey{toClass, toMethod}
	if r.refs[target] == nil {
		r.refs[target] = make(map[symbolKey]bool)
	}
	r.refs[target][symbolKey{fromClass, fromMethod}] = true
}

func (r *SymbolReferences) AddClassReference(classID interner.ID) {
	r.classRefs[classID] = true
}

func (r *SymbolReferences) HasReferenceTo(classID, memberID interner.ID) bool {
	return len(r.refs[symbolKey{classID, memberID}]) > 0
}

func (r *SymbolReferences) HasReferenceToClassLike(classID interner.ID) bool {
	return r.classRefs[classID]
}

func (r *SymbolReferences) Merge(other *SymbolReferences) {
	for target, callers := range other.refs {
		if r.refs[target] == nil {
			r.refs[target] = make(map[symbolKey]bool)
		}
		for caller := range callers {
			r.refs[target][caller] = true
		}
	}
	for classID := range other.classRefs {
		r.classRefs[classID] = true
	}
}
