// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package normalize turns a raw user utterance into a ProcessedQuery: a
// lowercased, article-elided, politeness-stripped form plus the negation
// polarity computed from the language's negation-pattern table.
//
// The cleaned text is used for both embedding and parameter extraction, so
// normalization never removes information-bearing tokens such as emails or
// identifiers — only structural noise (articles, politeness prefixes,
// whitespace runs).
package normalize

import (
	"strings"

	"github.com/bennekrouf/matcher/internal/lang"
)

// ProcessedQuery is the ephemeral result of normalizing one raw query; it
// exists only for the duration of handling that query.
type ProcessedQuery struct {
	CleanedText string
	Parameters  map[string]string
	IsNegated   bool
}

// Normalize runs the six-step pipeline from the query normalizer design:
// lowercase, trim, compute negation polarity, elide articles, strip
// politeness prefixes, collapse whitespace.
func Normalize(raw string, langCode string) ProcessedQuery {
	profile := lang.ForLanguage(langCode)

	text := strings.ToLower(raw)
	text = strings.TrimSpace(text)

	negated := negationPolarity(text, profile)

	text = elideArticles(text, profile)
	text = stripPolitePrefixes(text, profile)
	text = collapseWhitespace(text)

	return ProcessedQuery{
		CleanedText: text,
		Parameters:  map[string]string{},
		IsNegated:   negated,
	}
}

// negationPolarity sums the weight of every profile negation pattern found
// as a substring of text and returns whether that sum is odd. Patterns are
// tried longest-first (enforced by lang.Profile construction) so a
// multi-token pattern consumes its occurrence before a shorter substring of
// it is counted again.
func negationPolarity(text string, profile *lang.Profile) bool {
	sum := 0
	remaining := text
	for _, neg := range profile.Negations {
		count := strings.Count(remaining, neg.Pattern)
		if count == 0 {
			continue
		}
		sum += count * neg.Weight
		remaining = strings.ReplaceAll(remaining, neg.Pattern, " ")
	}
	return sum%2 == 1
}

func elideArticles(text string, profile *lang.Profile) string {
	tokens := strings.Fields(text)
	out := make([]string, 0, len(tokens))
	articles := make(map[string]bool, len(profile.Articles))
	for _, a := range profile.Articles {
		articles[a] = true
	}
	for _, tok := range tokens {
		if articles[tok] {
			continue
		}
		out = append(out, tok)
	}
	return strings.Join(out, " ")
}

func stripPolitePrefixes(text string, profile *lang.Profile) string {
	for stripped := true; stripped; {
		stripped = false
		for _, phrase := range profile.PolitePhrases {
			if strings.HasPrefix(text, phrase) {
				text = strings.TrimSpace(strings.TrimPrefix(text, phrase))
				stripped = true
			}
		}
	}
	return text
}

func collapseWhitespace(text string) string {
	return strings.TrimSpace(strings.Join(strings.Fields(text), " "))
}
