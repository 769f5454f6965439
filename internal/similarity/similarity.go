package similarity

import (
	"fmt"
	"strings"
)

const (
	MinNGram     = 4
	MaxNGram     = 7
	DefaultNGram = 5

	// NearPerfect stops a scan early; no higher similarity changes a score.
	NearPerfect = 0.98
)

// NGramSet holds whitespace-joined token tuples of one arity.
type NGramSet map[string]struct{}

// NewNGramSet builds the n-grams of tokens. A non-empty sequence shorter
// than n yields a single gram made of the whole sequence, so short exact
// duplicates still compare as identical.
func NewNGramSet(tokens []string, n int) NGramSet {
	out := NGramSet{}
	if len(tokens) == 0 || n <= 0 {
		return out
	}
	if len(tokens) < n {
		out[strings.Join(tokens, " ")] = struct{}{}
		return out
	}
	for i := 0; i+n <= len(tokens); i++ {
		out[strings.Join(tokens[i:i+n], " ")] = struct{}{}
	}
	return out
}

// Jaccard returns |a∩b| / |a∪b|, with 0/0 defined as 0.
func Jaccard(a, b NGramSet) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	if len(a) > len(b) {
		a, b = b, a
	}
	inter := 0
	for k := range a {
		if _, ok := b[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union <= 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// Document is a corpus entry tokenized per sentence. External similarity is
// the best Jaccard against any of its sentence n-gram sets, so a copied
// sentence is not diluted by the size of the document it came from.
type Document struct {
	ID        string
	Sentences [][]string
}

// Signal is the similarity evidence for one sentence.
type Signal struct {
	InternalMax    float64 `json:"internalMax"`
	ExternalMax    float64 `json:"externalMax"`
	ExternalSource string  `json:"externalSource,omitempty"`
}

// Index is built once per analysis call and discarded with it.
type Index struct {
	n         int
	sentences []NGramSet
	corpusIDs []string
	corpus    [][]NGramSet
}

func ValidateN(n int) error {
	if n < MinNGram || n > MaxNGram {
		return fmt.Errorf("ngram size %d outside [%d,%d]", n, MinNGram, MaxNGram)
	}
	return nil
}

func NewIndex(sentences [][]string, corpus []Document, n int) (*Index, error) {
	if err := ValidateN(n); err != nil {
		return nil, err
	}
	idx := &Index{
		n:         n,
		sentences: make([]NGramSet, len(sentences)),
		corpusIDs: make([]string, 0, len(corpus)),
		corpus:    make([][]NGramSet, 0, len(corpus)),
	}
	for i, toks := range sentences {
		idx.sentences[i] = NewNGramSet(toks, n)
	}
	for _, doc := range corpus {
		idx.corpusIDs = append(idx.corpusIDs, doc.ID)
		sets := make([]NGramSet, 0, len(doc.Sentences))
		for _, toks := range doc.Sentences {
			if set := NewNGramSet(toks, n); len(set) > 0 {
				sets = append(sets, set)
			}
		}
		idx.corpus = append(idx.corpus, sets)
	}
	return idx, nil
}

func (idx *Index) Len() int { return len(idx.sentences) }

// InternalMax is the best Jaccard similarity of sentence i against every
// other sentence of the same document.
func (idx *Index) InternalMax(i int) float64 {
	if i < 0 || i >= len(idx.sentences) || len(idx.sentences) < 2 {
		return 0
	}
	best := 0.0
	for j, other := range idx.sentences {
		if j == i {
			continue
		}
		if s := Jaccard(idx.sentences[i], other); s > best {
			best = s
			if best > NearPerfect {
				break
			}
		}
	}
	return best
}

// ExternalMax compares sentence i against each corpus document and returns
// the best similarity with the winning document id.
func (idx *Index) ExternalMax(i int) (float64, string) {
	if i < 0 || i >= len(idx.sentences) {
		return 0, ""
	}
	best := 0.0
	source := ""
	for j, sets := range idx.corpus {
		for _, set := range sets {
			if s := Jaccard(idx.sentences[i], set); s > best {
				best = s
				source = idx.corpusIDs[j]
				if best > NearPerfect {
					return best, source
				}
			}
		}
	}
	return best, source
}

func (idx *Index) Signal(i int) Signal {
	ext, src := idx.ExternalMax(i)
	return Signal{InternalMax: idx.InternalMax(i), ExternalMax: ext, ExternalSource: src}
}
