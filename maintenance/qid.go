package maintenance

import (
	"regexp"
	"strings"
)

var numericTokenRE = regexp.MustCompile(`\d+`)

// BuildQIDQuery turns free text into a browser search query matching
// every question ID the text mentions. Numeric runs are extracted in
// order, deduplicated keeping the first occurrence, and joined as
// "qid:<id> OR qid:<id>". Text without numbers yields the empty string;
// callers report that to the user instead of searching.
func BuildQIDQuery(text string) string {
	tokens := numericTokenRE.FindAllString(text, -1)
	if len(tokens) == 0 {
		return ""
	}
	seen := make(map[string]struct{}, len(tokens))
	terms := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		terms = append(terms, "qid:"+tok)
	}
	return strings.Join(terms, " OR ")
}
