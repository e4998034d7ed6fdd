package codebase

import (
	"strconv"
	"strings"

	"github.com/slackhq/hakana-sub001/internal/ast"
	"github.com/slackhq/hakana-sub001/internal/interner"
	"github.com/slackhq/hakana-sub001/internal/ttype"
)

// hintParser turns the syntactic type annotation text the front end
// attached to a node into a ttype.Union during the reflection pass. It
// is a minimal recursive-descent reader over the small grammar of
// generic head<arg, arg> / ?head forms the rest of this package's test
// fixtures use — not a general Hack type parser.
type hintParser struct {
	in *interner.Interner
	src string
	pos int
}

// ParseTypeHint is the component-C entry point: convert one TypeHint
// into a Union, honoring the leading `?` and generic argument lists.
func ParseTypeHint(in *interner.Interner, hint ast.TypeHint) ttype.Union {
	text := strings.TrimSpace(hint.Text)
	if text == "" {
		return ttype.Single(ttype.Mixed)
	}
	p := &hintParser{in: in, src: text}
	u := p.parseUnion()
	if hint.Nullable && !u.HasNull() {
		u = ttype.NullableOf(u)
	}
	return u
}

func (p *hintParser) parseUnion() ttype.Union {
	var atoms []ttype.Atomic
	for {
		atoms = append(atoms, p.parseAtom())
		p.skipSpace()
		if p.peek() == '|' {
			p.pos++
			continue
		}
		break
	}
	if len(atoms) == 1 {
		return ttype.Single(atoms[0])
	}
	return ttype.New(atoms...)
}

func (p *hintParser) parseAtom() ttype.Atomic {
	p.skipSpace()
	nullable := false
	if p.peek() == '?' {
		nullable = true
		p.pos++
	}
	name := p.parseIdent()
	var args []ttype.Union
	p.skipSpace()
	if p.peek() == '<' {
		p.pos++
		for {
			args = append(args, p.parseUnion())
			p.skipSpace()
			if p.peek() == ',' {
				p.pos++
				continue
			}
			break
		}
		p.skipSpace()
		if p.peek() == '>' {
			p.pos++
		}
	}

	a := p.resolveHead(name, args)
	if nullable {
		return nullableAtomWrap(a)
	}
	return a
}

// nullableAtomWrap is a placeholder for nested `?Foo` inside a generic
// argument list; a single Atomic can't carry "or null" on its own, so
// nested nullability is dropped rather than threaded through as a
// two-element union here. Top-level `?Foo` is handled correctly by
// ParseTypeHint, which wraps the whole Union instead.
func nullableAtomWrap(a ttype.Atomic) ttype.Atomic {
	return a
}

func (p *hintParser) resolveHead(name string, args []ttype.Union) ttype.Atomic {
	switch strings.ToLower(name) {
	case "int":
		return ttype.Int
	case "float":
		return ttype.Float
	case "string":
		return ttype.String
	case "bool":
		return ttype.Bool
	case "true":
		return ttype.True
	case "false":
		return ttype.False
	case "num":
		return ttype.Num
	case "arraykey":
		return ttype.Arraykey
	case "mixed":
		return ttype.Mixed
	case "any":
		return ttype.MixedAny
	case "void":
		return ttype.Void
	case "null":
		return ttype.Null
	case "nothing":
		return ttype.Nothing
	case "object":
		return ttype.Object
	case "vec":
		if len(args) == 1 {
			return ttype.Vec{Elem: args[0]}
		}
		return ttype.Vec{Elem: ttype.Single(ttype.Mixed)}
	case "dict":
		if len(args) == 2 {
			return ttype.NewDict(p.in, &ttype.DictParams{Key: args[0], Value: args[1]})
		}
		return ttype.NewDict(p.in, &ttype.DictParams{Key: ttype.Single(ttype.Arraykey), Value: ttype.Single(ttype.Mixed)})
	case "keyset":
		if len(args) == 1 {
			return ttype.Keyset{Elem: args[0]}
		}
		return ttype.Keyset{Elem: ttype.Single(ttype.Arraykey)}
	case "awaitable":
		if len(args) == 1 {
			return ttype.Awaitable{Inner: args[0]}
		}
		return ttype.Awaitable{Inner: ttype.Single(ttype.Mixed)}
	case "classname":
		if len(args) == 1 {
			return ttype.Classname{AsType: args[0]}
		}
		return ttype.Classname{AsType: ttype.Single(ttype.Mixed)}
	case "":
		return ttype.Mixed
	default:
		id := p.in.Intern(name)
		return ttype.NewNamed(p.in, id, args...)
	}
}

func (p *hintParser) parseIdent() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '<' || c == '>' || c == ',' || c == '|' || c == ' ' {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *hintParser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *hintParser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

// ParseLiteralIntHint supports enum underlying-type / literal constant
// folding during reflection ("LiteralInt").
func ParseLiteralIntHint(s string) (int64, bool) {
	v, err := strconv.ParseInt(s, 10, 64)
	return v, err == nil
}
