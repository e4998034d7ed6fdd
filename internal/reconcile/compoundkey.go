package reconcile

import "strings"

// KeyStep is one token of a compound variable id ("Compound
// keys"): `$a['b']->c[0]` tokenizes into a sequence of steps so the
// reconciler can descend the dict/vec known_items structure and
// rebuild the receiver type after narrowing a nested slot.
type KeyStep struct {
	IsProperty bool // ->name
	IsArrayKey bool // [literal]
	Literal string // the property name or array key text
}

// TokenizeCompoundKey splits a scope-context var-id like `$a['b']->c[0]`
// into its root variable (`$a`) and the chain of property/array-access
// steps that follow.
func TokenizeCompoundKey(varID string) (root string, steps []KeyStep) {
	i := 0
	n := len(varID)
	for i < n && varID[i] != '[' && varID[i] != '-' {
		i++
	}
	root = varID[:i]
	for i < n {
		switch {
		case varID[i] == '[':
			end := strings.IndexByte(varID[i:], ']')
			if end < 0 {
				return root, steps
			}
			end += i
			lit := strings.Trim(varID[i+1:end], "'\"")
			steps = append(steps, KeyStep{IsArrayKey: true, Literal: lit})
			i = end + 1
		case strings.HasPrefix(varID[i:], "->"):
			i += 2
			start := i
			for i < n && varID[i] != '[' && !strings.HasPrefix(varID[i:], "->") {
				i++
			}
			steps = append(steps, KeyStep{IsProperty: true, Literal: varID[start:i]})
		default:
			i++
		}
	}
	return root, steps
}

// BuildCompoundKey is the inverse of TokenizeCompoundKey, used when the
// array-assignment analyzer  synthesizes a var-id for a
// nested slot it just refined.
func BuildCompoundKey(root string, steps []KeyStep) string {
	var b strings.Builder
	b.WriteString(root)
	for _, s := range steps {
		if s.IsProperty {
			b.WriteString("->")
			b.WriteString(s.Literal)
		} else {
			b.WriteByte('[')
			b.WriteString("'" + s.Literal + "'")
			b.WriteByte(']')
		}
	}
	return b.String()
}
