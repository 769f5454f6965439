package features

import (
	"regexp"
	"strings"
)

var wordFinder = regexp.MustCompile(`[\p{L}\p{M}\p{N}']+`)

// Tokenize lowercases text and returns maximal runs of letters with their
// combining marks, digits and apostrophes. Tokens made only of apostrophes
// are dropped.
func Tokenize(text string) []string {
	raw := wordFinder.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, w := range raw {
		w = strings.Trim(w, "'")
		if w == "" {
			continue
		}
		out = append(out, w)
	}
	return out
}

func distinct(words []string) map[string]struct{} {
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		seen[w] = struct{}{}
	}
	return seen
}
