package features

// Closed list of English function words.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {},
	"and": {}, "or": {}, "but": {}, "nor": {}, "so": {}, "yet": {},
	"of": {}, "in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "with": {}, "by": {},
	"from": {}, "about": {}, "as": {}, "into": {}, "over": {}, "under": {}, "between": {},
	"through": {}, "during": {}, "without": {}, "within": {}, "upon": {}, "than": {},
	"i": {}, "me": {}, "my": {}, "we": {}, "our": {}, "you": {}, "your": {},
	"he": {}, "him": {}, "his": {}, "she": {}, "her": {}, "it": {}, "its": {},
	"they": {}, "them": {}, "their": {}, "this": {}, "that": {}, "these": {}, "those": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {}, "has": {}, "have": {}, "had": {},
	"not": {}, "no": {}, "there": {}, "which": {}, "who": {},
}

func IsStopword(w string) bool {
	_, ok := stopwords[w]
	return ok
}
