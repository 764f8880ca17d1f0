package resolver

import (
	"slices"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/t14raptor/fastscope/ast"
	"github.com/t14raptor/fastscope/diag"
)

// maxSuggestionDistance bounds the edit distance of a "did you mean" hint.
const maxSuggestionDistance = 2

// minFuzzyLen is the shortest name matched as a subsequence.
const minFuzzyLen = 3

func (r *Resolver) warnUndeclared(n ast.NodeRef, name ast.Atom) {
	str := r.lock.Str(name)
	b := r.sm.Warning(diag.SemUndeclaredVariable, r.span(n),
		"the variable '"+str+"' was not declared in function '"+r.fc().name+"'")
	if s, ok := closestMatch(str, r.visibleNames()); ok {
		b.WithNote(r.span(n), "did you mean '"+s+"'?")
	}
	b.Emit()
}

// visibleNames lists the declared names in the binding table, innermost
// first, without ambient globals.
func (r *Resolver) visibleNames() []string {
	seen := make(map[ast.Atom]bool)
	var out []string
	for i := len(r.bindings.frames) - 1; i >= 0; i-- {
		frame := r.bindings.frames[i]
		names := make([]ast.Atom, 0, len(frame))
		for name, b := range frame {
			if !seen[name] && r.sem.Decl(b.decl).Kind != DeclUndeclaredGlobalProperty {
				names = append(names, name)
			}
		}
		slices.Sort(names)
		for _, name := range names {
			seen[name] = true
			out = append(out, r.lock.Str(name))
		}
	}
	return out
}

// closestMatch picks the candidate nearest to target: a close edit
// distance first, then a fuzzy subsequence match.
func closestMatch(target string, candidates []string) (string, bool) {
	best, bestDist := "", maxSuggestionDistance+1
	for _, c := range candidates {
		if c == target {
			continue
		}
		if d := fuzzy.LevenshteinDistance(target, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	if best != "" {
		return best, true
	}

	if len(target) < minFuzzyLen {
		return "", false
	}
	ranks := fuzzy.RankFindFold(target, candidates)
	if len(ranks) == 0 {
		return "", false
	}
	sort.Sort(ranks)
	return ranks[0].Target, true
}
