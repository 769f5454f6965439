package highlight

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"docaudit/internal/segment"
)

// Mark is a byte range of the rendered text carrying one class.
type Mark struct {
	Start     int    `json:"start"`
	End       int    `json:"end"`
	ClassName string `json:"className"`
	Term      string `json:"term"`
}

type candidate struct {
	term  string
	class string
	order int
}

// Marks finds every occurrence of the group terms in text. Terms are matched
// against text as segmentation sees it, so a sentence wrapped across lines
// still matches; offsets always index the original text. Longer terms are
// placed first, and on equal length plagiarism wins over AI. A range that is
// already marked is never matched again, so marks never nest or overlap. The
// result is ordered by Start.
func Marks(text string, groups []Group) []Mark {
	var cands []candidate
	for _, g := range groups {
		for _, term := range g.Terms {
			term = segment.Normalize(term)
			if term == "" {
				continue
			}
			cands = append(cands, candidate{term: term, class: g.ClassName, order: len(cands)})
		}
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if len(cands[i].term) != len(cands[j].term) {
			return len(cands[i].term) > len(cands[j].term)
		}
		pi, pj := cands[i].class == ClassPlagiarism, cands[j].class == ClassPlagiarism
		if pi != pj {
			return pi
		}
		return cands[i].order < cands[j].order
	})

	v := newView(text)
	consumed := make([]bool, len(v.text))
	var marks []Mark
	for _, c := range cands {
		from := 0
		for from <= len(v.text)-len(c.term) {
			at := strings.Index(v.text[from:], c.term)
			if at < 0 {
				break
			}
			start := from + at
			end := start + len(c.term)
			if free(consumed, start, end) {
				for i := start; i < end; i++ {
					consumed[i] = true
				}
				marks = append(marks, Mark{
					Start:     v.start[start],
					End:       v.end[end-1],
					ClassName: c.class,
					Term:      c.term,
				})
				from = end
				continue
			}
			from = start + 1
		}
	}
	sort.Slice(marks, func(i, j int) bool { return marks[i].Start < marks[j].Start })
	return marks
}

// view is text in the form segment.Normalize gives it. start and end hold,
// for every byte of the view, the original byte range it came from.
type view struct {
	text  string
	start []int
	end   []int
}

func newView(text string) view {
	var b strings.Builder
	v := view{start: make([]int, 0, len(text)), end: make([]int, 0, len(text))}
	space := -1
	for i := 0; i < len(text); {
		n := norm.NFC.NextBoundaryInString(text[i:], true)
		if n <= 0 {
			n = len(text) - i
		}
		chunk := text[i : i+n]
		if r, _ := utf8.DecodeRuneInString(chunk); unicode.IsSpace(r) {
			if space < 0 {
				space = i
			}
			i += n
			continue
		}
		if space >= 0 && b.Len() > 0 {
			b.WriteByte(' ')
			v.start = append(v.start, space)
			v.end = append(v.end, i)
		}
		space = -1
		out := norm.NFC.String(chunk)
		b.WriteString(out)
		for k := 0; k < len(out); k++ {
			v.start = append(v.start, i)
			v.end = append(v.end, i+n)
		}
		i += n
	}
	v.text = b.String()
	return v
}

// Wrap renders text with every mark wrapped by open/close.
func Wrap(text string, marks []Mark, open func(Mark) string, close func(Mark) string) string {
	var b strings.Builder
	cursor := 0
	for _, m := range marks {
		if m.Start < cursor || m.End > len(text) {
			continue
		}
		b.WriteString(text[cursor:m.Start])
		b.WriteString(open(m))
		b.WriteString(text[m.Start:m.End])
		b.WriteString(close(m))
		cursor = m.End
	}
	b.WriteString(text[cursor:])
	return b.String()
}

func free(consumed []bool, start, end int) bool {
	for i := start; i < end; i++ {
		if consumed[i] {
			return false
		}
	}
	return true
}
