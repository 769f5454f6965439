package similarity

import (
	"strings"
	"testing"
)

func toks(s string) []string { return strings.Fields(s) }

func TestNGramSetShortSequence(t *testing.T) {
	set := NewNGramSet(toks("the cat sat"), 5)
	if len(set) != 1 {
		t.Fatalf("expected one whole-sequence gram, got %d", len(set))
	}
	if len(NewNGramSet(nil, 5)) != 0 {
		t.Fatal("expected empty set for no tokens")
	}
}

func TestNGramSetArity(t *testing.T) {
	set := NewNGramSet(toks("a b c d e f g"), 5)
	if len(set) != 3 {
		t.Fatalf("expected 3 five-grams, got %d", len(set))
	}
	if _, ok := set["c d e f g"]; !ok {
		t.Fatal("expected last gram to be present")
	}
}

func TestJaccard(t *testing.T) {
	a := NGramSet{"x": {}, "y": {}}
	b := NGramSet{"y": {}, "z": {}}
	if j := Jaccard(a, b); j < 0.333 || j > 0.334 {
		t.Fatalf("expected 1/3, got %.3f", j)
	}
	if j := Jaccard(NGramSet{}, NGramSet{}); j != 0 {
		t.Fatalf("expected 0 for empty sets, got %.3f", j)
	}
}

func TestInternalMaxExactDuplicates(t *testing.T) {
	s := toks("the cat sat on the mat")
	idx, err := NewIndex([][]string{s, s, toks("something else entirely different here")}, nil, DefaultNGram)
	if err != nil {
		t.Fatalf("new index: %v", err)
	}
	for _, i := range []int{0, 1} {
		if got := idx.InternalMax(i); got < 0.99 {
			t.Fatalf("sentence %d: expected internalMax >= 0.99, got %.3f", i, got)
		}
	}
	if got := idx.InternalMax(2); got != 0 {
		t.Fatalf("expected no overlap for unrelated sentence, got %.3f", got)
	}
}

func TestInternalMaxSingleSentence(t *testing.T) {
	idx, err := NewIndex([][]string{toks("only one sentence in this text")}, nil, DefaultNGram)
	if err != nil {
		t.Fatalf("new index: %v", err)
	}
	if got := idx.InternalMax(0); got != 0 {
		t.Fatalf("expected 0, got %.3f", got)
	}
}

func TestExternalMaxPicksWinningDocument(t *testing.T) {
	sentence := toks("photosynthesis converts light energy into chemical energy stored in glucose")
	corpus := []Document{
		{ID: "doc-a", Sentences: [][]string{toks("an unrelated passage about medieval trade routes and their taxes")}},
		{ID: "doc-b", Sentences: [][]string{
			toks("plants are green"),
			toks("photosynthesis converts light energy into chemical energy stored in glucose"),
		}},
	}
	idx, err := NewIndex([][]string{sentence}, corpus, DefaultNGram)
	if err != nil {
		t.Fatalf("new index: %v", err)
	}
	score, src := idx.ExternalMax(0)
	if src != "doc-b" || score < 0.99 {
		t.Fatalf("expected doc-b near 1.0, got %s %.3f", src, score)
	}
}

func TestExternalMaxEmptyCorpus(t *testing.T) {
	idx, err := NewIndex([][]string{toks("a b c d e f")}, nil, DefaultNGram)
	if err != nil {
		t.Fatalf("new index: %v", err)
	}
	score, src := idx.ExternalMax(0)
	if score != 0 || src != "" {
		t.Fatalf("expected no external match, got %s %.3f", src, score)
	}
}

func TestNewIndexRejectsBadN(t *testing.T) {
	for _, n := range []int{3, 8} {
		if _, err := NewIndex(nil, nil, n); err == nil {
			t.Fatalf("expected error for n=%d", n)
		}
	}
}
