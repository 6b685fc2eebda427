package crm

import (
	"strings"
	"unicode"
)

// Cap truncates in to limit entries. limit <= 0 means no cap.
// Callers read the whole index first and slice afterwards.
func Cap[T any](in []T, limit int) []T {
	if limit > 0 && len(in) > limit {
		return in[:limit]
	}
	return in
}

// Keep returns the entries of in for which every predicate holds.
func Keep[T any](in []T, preds ...func(T) bool) []T {
	if len(preds) == 0 {
		return in
	}
	out := make([]T, 0, len(in))
next:
	for _, v := range in {
		for _, p := range preds {
			if !p(v) {
				continue next
			}
		}
		out = append(out, v)
	}
	return out
}

// Tokens lowercases s and splits it on anything that is not a letter or digit,
// the way the postgres 'simple' text-search configuration does.
func Tokens(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// MatchesTerm reports whether every token of term is a whole token of text.
// A term with no tokens matches nothing.
func MatchesTerm(text, term string) bool {
	want := Tokens(term)
	if len(want) == 0 {
		return false
	}
	have := make(map[string]struct{})
	for _, t := range Tokens(text) {
		have[t] = struct{}{}
	}
	for _, t := range want {
		if _, ok := have[t]; !ok {
			return false
		}
	}
	return true
}
