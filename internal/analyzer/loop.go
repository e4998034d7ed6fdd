package analyzer

import (
	"sort"
	"strings"

	"github.com/slackhq/hakana-sub001/internal/issue"
	"github.com/slackhq/hakana-sub001/internal/scopectx"
)

// maxLoopIterations bounds the fixpoint below "iterate up to
// depth times"; computing the exact write-after-read dependency depth
// needs a use-def graph this analyzer doesn't build, so a fixed cap
// substitutes for it — sound because combine's atomic lattice has finite
// height per variable regardless of how many extra iterations run.
const maxLoopIterations = 10

// signatureOf renders vars_in_scope's per-variable GetID, the same
// structural-equality signature step 2 uses to detect
// stabilization across iterations.
func signatureOf(scope *scopectx.ScopeContext) string {
	keys := make([]string, 0, len(scope.VarsInScope))
	for k := range scope.VarsInScope {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(scope.VarsInScope[scopectx.VarID(k)].GetID())
		b.WriteByte(';')
	}
	return b.String()
}

// runLoop implements : runBody mutates a.scope in place (via
// AnalyzeStatements) for one pass over the loop body. Issue recording is
// suspended on every iteration but the last (step 3, "transient narrowings
// don't emit bogus issues"); widening happens by Combine-merging each
// iteration's ending vars_in_scope with the previous one's (step 4).
func (a *Analyzer) runLoop(pre *scopectx.ScopeContext, runBody func(scope *scopectx.ScopeContext)) {
	scope := pre.Clone()
	scope.InsideLoop = true

	liveIssues := a.Issues
	silent := &issue.Collector{}

	prevSig := ""
	for i := 0; i < maxLoopIterations; i++ {
		a.Issues = silent
		iter := scope.Clone()
		runBody(iter)
		if iter.HasReturned {
			scope = iter
			break
		}
		sig := signatureOf(iter)
		scope = scope.MergeBranch(pre, iter)
		if sig == prevSig {
			break
		}
		prevSig = sig
	}

	a.Issues = liveIssues
	final := scope.Clone()
	runBody(final)
	a.scope = final
}
