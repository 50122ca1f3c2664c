// Package searchindex turns record fields into search terms. Both store
// backends use it so that a query matches the same records on either.
package searchindex

import (
	"sort"
	"strings"
	"unicode"
)

// Tokenize lowercases s and splits it on anything that is not a letter or
// digit. Duplicates are removed; order follows first occurrence.
func Tokenize(s string) []string {
	parts := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	seen := make(map[string]struct{}, len(parts))
	out := parts[:0]
	for _, p := range parts {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// Terms returns the sorted, de-duplicated tokens of every field value not
// named in ignore.
func Terms(fields map[string]string, ignore []string) []string {
	skip := make(map[string]struct{}, len(ignore))
	for _, name := range ignore {
		skip[name] = struct{}{}
	}
	set := make(map[string]struct{})
	for name, value := range fields {
		if _, ok := skip[name]; ok {
			continue
		}
		for _, tok := range Tokenize(value) {
			set[tok] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for tok := range set {
		out = append(out, tok)
	}
	sort.Strings(out)
	return out
}

// Document joins Terms into a single space-separated string.
func Document(fields map[string]string, ignore []string) string {
	return strings.Join(Terms(fields, ignore), " ")
}

// Diff reports which terms were dropped and which were added going from
// before to after. Both inputs must be sorted.
func Diff(before, after []string) (removed, added []string) {
	i, j := 0, 0
	for i < len(before) && j < len(after) {
		switch {
		case before[i] == after[j]:
			i++
			j++
		case before[i] < after[j]:
			removed = append(removed, before[i])
			i++
		default:
			added = append(added, after[j])
			j++
		}
	}
	removed = append(removed, before[i:]...)
	added = append(added, after[j:]...)
	return removed, added
}
