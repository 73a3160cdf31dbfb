package ember

import "strings"

// simpleAnalyzer tokenizes on whitespace and lowercases only, with no
// stemming or stopword removal, so test expectations can name exact terms
// without depending on Snowball's stemming rules.
type simpleAnalyzer struct{}

func (simpleAnalyzer) Analyze(field, text string) []Token {
	fields := strings.Fields(strings.ToLower(text))
	tokens := make([]Token, len(fields))
	for i, f := range fields {
		tokens[i] = Token{Text: f, Position: i}
	}
	return tokens
}

func newTestStore() *MemStore {
	return NewMemStore(simpleAnalyzer{})
}
