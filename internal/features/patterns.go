package features

import "regexp"

type Pattern struct {
	Name   string
	Re     *regexp.Regexp
	Weight float64
}

// Library is a closed list of patterns. Each match adds the pattern weight.
type Library []Pattern

func (l Library) Score(lowered string) float64 {
	total := 0.0
	for _, p := range l {
		total += float64(len(p.Re.FindAllStringIndex(lowered, -1))) * p.Weight
	}
	return total
}

func pattern(name, expr string, weight float64) Pattern {
	return Pattern{Name: name, Re: regexp.MustCompile(expr), Weight: weight}
}

// AIPatterns are discourse markers typical of generated prose.
var AIPatterns = Library{
	pattern("furthermore", `\bfurthermore\b`, 0.35),
	pattern("moreover", `\bmoreover\b`, 0.35),
	pattern("additionally", `\badditionally\b`, 0.30),
	pattern("in_conclusion", `\bin conclusion\b`, 0.45),
	pattern("in_summary", `\bin summary\b`, 0.40),
	pattern("important_to_note", `\bit is (important|crucial|essential) to (note|remember|understand)\b`, 0.60),
	pattern("worth_noting", `\bit(?:'s| is) worth noting\b`, 0.55),
	pattern("delve", `\bdelv(e|es|ed|ing)\b`, 0.55),
	pattern("pivotal_role", `\bplays? an? (crucial|pivotal|vital|key|significant) role\b`, 0.55),
	pattern("testament", `\ba testament to\b`, 0.50),
	pattern("complexities", `\bnavigat(e|es|ing) the (complexities|intricacies)\b`, 0.55),
	pattern("fast_paced", `\bin today's (fast-paced|digital|modern|ever-changing) (world|landscape|age)\b`, 0.60),
	pattern("tapestry", `\b(rich )?tapestry\b`, 0.45),
	pattern("landscape", `\bthe (evolving |ever-evolving )?landscape of\b`, 0.35),
	pattern("harness_power", `\bharness(ing)? the power\b`, 0.50),
	pattern("seamless", `\bseamless(ly)?\b`, 0.25),
	pattern("leverage", `\bleverag(e|es|ed|ing)\b`, 0.25),
	pattern("foster", `\bfoster(s|ed|ing)?\b`, 0.20),
	pattern("not_only_but_also", `\bnot only\b.*\bbut also\b`, 0.30),
	pattern("overall", `^overall,`, 0.30),
	pattern("ultimately", `\bultimately\b`, 0.20),
}

// PlagiarismPatterns are citation and definition phrasings typical of
// unattributed academic copying.
var PlagiarismPatterns = Library{
	pattern("according_to", `\baccording to\b`, 0.30),
	pattern("as_stated_by", `\bas (stated|noted|argued|described) by\b`, 0.40),
	pattern("defined_as", `\b(is|are|was|can be) defined as\b`, 0.45),
	pattern("refers_to", `\brefers to\b`, 0.25),
	pattern("et_al", `\bet al\.?`, 0.50),
	pattern("year_citation", `\(\s*[\p{L} .,&]*\d{4}[a-z]?\s*\)`, 0.50),
	pattern("numeric_citation", `\[\d+(\s*[,-]\s*\d+)*\]`, 0.45),
	pattern("as_cited_in", `\bas cited in\b`, 0.55),
	pattern("in_their_work", `\bin (his|her|their) (book|paper|study|article|work)\b`, 0.35),
	pattern("coined", `\b(term|phrase) .{0,40}(was|is) (first )?coined\b`, 0.45),
	pattern("studies_show", `\b(studies|research) (have |has )?(show|shown|shows|indicate|indicates|suggest|suggests)\b`, 0.30),
	pattern("ibid", `\bibid\b`, 0.60),
	pattern("doi", `\bdoi:\s*\S+`, 0.60),
	pattern("url", `https?://\S+`, 0.40),
}

// AcademicPatterns mark academic register; they count against AI-likeness.
var AcademicPatterns = Library{
	pattern("hypothesis", `\bhypothes(is|es|ize|ized)\b`, 0.25),
	pattern("methodology", `\bmethodolog(y|ies|ical)\b`, 0.25),
	pattern("empirical", `\bempirical(ly)?\b`, 0.25),
	pattern("significant", `\bstatistically significant\b`, 0.30),
	pattern("findings", `\b(our|these|the) findings\b`, 0.20),
	pattern("results_indicate", `\bresults (indicate|suggest|show|demonstrate)\b`, 0.25),
	pattern("data_suggest", `\bdata (suggest|indicate|show)\b`, 0.25),
	pattern("literature", `\b(the|existing|prior) literature\b`, 0.25),
	pattern("framework", `\btheoretical framework\b`, 0.25),
	pattern("in_contrast", `\bin contrast\b`, 0.15),
	pattern("consequently", `\bconsequently\b`, 0.15),
	pattern("hence", `\b(hence|thus|therefore)\b`, 0.10),
	pattern("whereas", `\bwhereas\b`, 0.10),
	pattern("sample", `\b(sample size|participants|respondents)\b`, 0.20),
}
