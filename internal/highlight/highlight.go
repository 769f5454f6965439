package highlight

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

const (
	ClassAI         = "ai-suspect"
	ClassPlagiarism = "plagiarism-suspect"
)

type Group struct {
	Terms     []string `json:"terms"`
	ClassName string   `json:"className"`
}

// Ladder is a threshold fallback sequence: Strict first, then Relaxed,
// then the top TopFraction of sentences (at least one).
type Ladder struct {
	Strict      int     `mapstructure:"strict" json:"strict"`
	Relaxed     int     `mapstructure:"relaxed" json:"relaxed"`
	TopFraction float64 `mapstructure:"top_fraction" json:"topFraction"`
}

type Thresholds struct {
	AI         Ladder `mapstructure:"ai" json:"ai"`
	Plagiarism Ladder `mapstructure:"plagiarism" json:"plagiarism"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		AI:         Ladder{Strict: 70, Relaxed: 50, TopFraction: 0.10},
		Plagiarism: Ladder{Strict: 50, Relaxed: 40, TopFraction: 0.10},
	}
}

func (l Ladder) Validate() error {
	if l.Strict < 0 || l.Strict > 100 || l.Relaxed < 0 || l.Relaxed > 100 {
		return fmt.Errorf("ladder thresholds must lie in [0,100]")
	}
	if l.Relaxed > l.Strict {
		return fmt.Errorf("relaxed threshold %d above strict threshold %d", l.Relaxed, l.Strict)
	}
	if l.TopFraction <= 0 || l.TopFraction > 1 {
		return fmt.Errorf("top fraction %.2f outside (0,1]", l.TopFraction)
	}
	return nil
}

func (t Thresholds) Validate() error {
	if err := t.AI.Validate(); err != nil {
		return fmt.Errorf("ai ladder: %w", err)
	}
	if err := t.Plagiarism.Validate(); err != nil {
		return fmt.Errorf("plagiarism ladder: %w", err)
	}
	return nil
}

type Scored struct {
	Text       string
	AI         int
	Plagiarism int
}

// Select picks the sentences to emphasize. No plagiarism terms are chosen
// when the document-level plagiarism score is zero.
func Select(sentences []Scored, documentPlagiarism int, th Thresholds) []Group {
	groups := []Group{{
		Terms:     pick(sentences, func(s Scored) int { return s.AI }, th.AI),
		ClassName: ClassAI,
	}}
	plag := []string{}
	if documentPlagiarism > 0 {
		plag = pick(sentences, func(s Scored) int { return s.Plagiarism }, th.Plagiarism)
	}
	return append(groups, Group{Terms: plag, ClassName: ClassPlagiarism})
}

func pick(sentences []Scored, score func(Scored) int, l Ladder) []string {
	if len(sentences) == 0 {
		return []string{}
	}
	for _, threshold := range []int{l.Strict, l.Relaxed} {
		var chosen []Scored
		for _, s := range sentences {
			if score(s) >= threshold {
				chosen = append(chosen, s)
			}
		}
		if len(chosen) > 0 {
			return dedupe(chosen)
		}
	}

	ranked := append([]Scored(nil), sentences...)
	sort.SliceStable(ranked, func(i, j int) bool { return score(ranked[i]) > score(ranked[j]) })
	n := int(math.Ceil(float64(len(ranked)) * l.TopFraction))
	if n < 1 {
		n = 1
	}
	if n > len(ranked) {
		n = len(ranked)
	}
	return dedupe(ranked[:n])
}

func dedupe(in []Scored) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, s := range in {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		if _, ok := seen[text]; ok {
			continue
		}
		seen[text] = struct{}{}
		out = append(out, text)
	}
	return out
}
