package segment

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

type Sentence struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// Split breaks text after '.', '!' or '?' when the mark is followed by
// whitespace and then an uppercase letter, a digit, a quotation mark or an
// opening bracket. Closing quotes and brackets directly after the mark stay
// with the sentence they close.
func Split(text string) []string {
	normalized := Normalize(text)
	if normalized == "" {
		return nil
	}
	runes := []rune(normalized)
	cuts := markBoundaries(runes)

	out := make([]string, 0, len(cuts)+1)
	start := 0
	for _, cut := range cuts {
		if s := strings.TrimSpace(string(runes[start:cut])); s != "" {
			out = append(out, s)
		}
		start = cut
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		out = append(out, s)
	}
	return out
}

func Segment(text string) []Sentence {
	parts := Split(text)
	out := make([]Sentence, len(parts))
	for i, p := range parts {
		out[i] = Sentence{Index: i, Text: p}
	}
	return out
}

// Normalize applies NFC and collapses every whitespace run to one space.
func Normalize(text string) string {
	return strings.Join(strings.Fields(norm.NFC.String(text)), " ")
}

// markBoundaries is the first pass: it records rune offsets where a new
// sentence starts. Split does the cutting in a second pass.
func markBoundaries(runes []rune) []int {
	var cuts []int
	for i := 0; i < len(runes); i++ {
		if !isTerminal(runes[i]) {
			continue
		}
		j := i + 1
		for j < len(runes) && (isTerminal(runes[j]) || isClosing(runes[j])) {
			j++
		}
		if j >= len(runes) || !unicode.IsSpace(runes[j]) {
			i = j - 1
			continue
		}
		k := j
		for k < len(runes) && unicode.IsSpace(runes[k]) {
			k++
		}
		if k < len(runes) && opensSentence(runes[k]) {
			cuts = append(cuts, k)
		}
		i = j - 1
	}
	return cuts
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isClosing(r rune) bool {
	switch r {
	case '"', '\'', '”', '’', '»', ')', ']', '}':
		return true
	}
	return false
}

func opensSentence(r rune) bool {
	if unicode.IsUpper(r) || unicode.IsDigit(r) {
		return true
	}
	switch r {
	case '"', '\'', '“', '‘', '«', '(', '[', '{':
		return true
	}
	return false
}
