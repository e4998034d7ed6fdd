package ttype

import (
	"fmt"

	"github.com/slackhq/hakana-sub001/internal/interner"
)

// RegexPattern is a domain-special atomic tracking a string known to hold
// a compiled-looking regex literal, so sink-aware builtins (preg_match
// and friends) can validate the pattern shape without a general string
// analysis ("Domain-special").
type RegexPattern struct {
	Value string
}

func (RegexPattern) Kind() Kind { return KRegexPattern }
func (r RegexPattern) String() string { return fmt.Sprintf("re(%q)", r.Value) }

// Awaitable wraps the type an async function resolves to. When checking
// an async function's return value, the statement analyzer strips
// Awaitable from both the value and the declared type and compares the
// inner types.
type Awaitable struct {
	Inner Union
}

func (Awaitable) Kind() Kind { return KAwaitable }
func (a Awaitable) String() string { return fmt.Sprintf("Awaitable<%s>", a.Inner.String()) }

// Reference is an unresolved symbol placeholder : population
// could not find a classlike/typedef for this name. It surfaces as an
// error at first use  rather than during population itself.
type Reference struct {
	Name interner.ID
	in *interner.Interner
}

func (Reference) Kind() Kind { return KReference }
func (r Reference) String() string { return "?" + internedOrQuestion(r.in, r.Name) }
