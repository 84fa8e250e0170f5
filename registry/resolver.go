package registry

import "strings"

// wordDelims are the bytes that bound a word inside a test name.
const wordDelims = " \t-_/.,:;"

// Resolver matches command-line name patterns against the registry and
// marks the results in a selection.
type Resolver struct {
	reg *Registry
	sel *Selection
}

// NewResolver creates a resolver marking matches into sel.
func NewResolver(reg *Registry, sel *Selection) *Resolver {
	return &Resolver{reg: reg, sel: sel}
}

// Resolve marks every test matching the pattern and returns the match
// count. Matching tries three tiers in order and stops at the first
// tier that matches anything:
//
//  1. the pattern equals a test name (at most one match; names are unique),
//  2. the pattern occurs in a name as a whole word, bounded by the
//     name's ends or by one of the delimiter bytes in wordDelims,
//  3. the pattern occurs in a name as a plain substring.
//
// A zero return means the pattern matched nothing in any tier.
func (r *Resolver) Resolve(pattern string) int {
	if pattern == "" {
		return 0
	}

	if i, ok := r.reg.IndexOf(pattern); ok {
		r.sel.Mark(i)
		return 1
	}

	matched := 0
	for i := 0; i < r.reg.Len(); i++ {
		if containsWord(r.reg.Case(i).Name, pattern) {
			r.sel.Mark(i)
			matched++
		}
	}
	if matched > 0 {
		return matched
	}

	for i := 0; i < r.reg.Len(); i++ {
		if strings.Contains(r.reg.Case(i).Name, pattern) {
			r.sel.Mark(i)
			matched++
		}
	}
	return matched
}

// containsWord reports whether word occurs in name delimited on both
// sides by the string boundary or a delimiter byte.
func containsWord(name, word string) bool {
	for from := 0; ; {
		i := strings.Index(name[from:], word)
		if i < 0 {
			return false
		}
		i += from

		beforeOK := i == 0 || isDelim(name[i-1])
		end := i + len(word)
		afterOK := end == len(name) || isDelim(name[end])
		if beforeOK && afterOK {
			return true
		}
		from = i + 1
	}
}

func isDelim(b byte) bool {
	return strings.IndexByte(wordDelims, b) >= 0
}
