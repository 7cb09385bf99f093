package usecase

import (
	"strings"
	"unicode"
)

const minGroundingTokenLen = 3

var groundingStopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "with": {}, "that": {}, "this": {},
	"from": {}, "was": {}, "were": {}, "which": {}, "have": {}, "has": {}, "not": {},
	"but": {}, "can": {}, "its": {}, "also": {}, "such": {}, "other": {}, "their": {},
	"these": {}, "those": {}, "into": {}, "than": {}, "been": {}, "there": {},
	"what": {}, "when": {}, "where": {}, "who": {}, "how": {}, "any": {}, "all": {},
	"may": {}, "more": {}, "most": {}, "only": {}, "some": {}, "include": {},
	"includes": {}, "including": {}, "based": {}, "mentioned": {}, "context": {},
	"information": {}, "provided": {}, "common": {}, "commonly": {}, "used": {},
}

// groundingScore is the share of content tokens of the answer that also occur
// in the context. An answer with no content tokens scores zero.
func groundingScore(answer, contextText string) float64 {
	answerTokens := contentTokens(answer)
	if len(answerTokens) == 0 {
		return 0
	}
	return tokenOverlap(answerTokens, toTokenSet(contextText))
}

func contentTokens(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, token := range splitAlphaNumLower(s) {
		if len(token) < minGroundingTokenLen {
			continue
		}
		if _, stop := groundingStopwords[token]; stop {
			continue
		}
		out[token] = struct{}{}
	}
	return out
}

func tokenOverlap(query, chunk map[string]struct{}) float64 {
	if len(query) == 0 || len(chunk) == 0 {
		return 0
	}
	matches := 0
	for token := range query {
		if _, ok := chunk[token]; ok {
			matches++
		}
	}
	return float64(matches) / float64(len(query))
}

func toTokenSet(s string) map[string]struct{} {
	tokens := splitAlphaNumLower(s)
	out := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		out[token] = struct{}{}
	}
	return out
}

func splitAlphaNumLower(s string) []string {
	if s == "" {
		return nil
	}

	tokens := make([]string, 0, 16)
	var b strings.Builder
	for _, r := range s {
		r = unicode.ToLower(r)
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			continue
		}
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		tokens = append(tokens, b.String())
	}
	return tokens
}
