// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package lang holds the per-language tables the normalizer and parameter
// extractors are driven by: negation patterns with integer weights, articles
// to elide, and polite-phrase prefixes to strip.
package lang

import "sort"

// NegationPattern is one negation form recognized in a language profile.
//
// # Description
//
// Weight is almost always 1 (a plain negation) or 2 (an explicit double
// negation such as "ne pas ne pas" that cancels itself out when summed with
// another weight-1 match). Patterns are matched as raw substrings of the
// lowercased query, longest first, so a multi-token form consumes its own
// occurrence before a shorter substring of it can double-count.
type NegationPattern struct {
	Pattern string
	Weight  int
}

// AppNameMarker is one (prefix, suffix) pair the application-name extractor
// scans for. An empty Suffix means "read to end of input".
type AppNameMarker struct {
	Prefix string
	Suffix string
}

// Profile is the full set of language-specific tables consulted by the
// normalizer (negation, articles, polite phrases) and by the application
// name extractor (markers).
//
// # Thread Safety
//
// Profiles are built once and never mutated; safe for concurrent reads.
type Profile struct {
	Code          string
	Negations     []NegationPattern
	Articles      []string
	PolitePhrases []string
	AppMarkers    []AppNameMarker
}

var profiles = map[string]*Profile{}

func register(p *Profile) {
	sortNegationsLongestFirst(p.Negations)
	profiles[p.Code] = p
}

// sortNegationsLongestFirst orders patterns so multi-token forms are tried
// before the shorter substrings they contain (e.g. "ne pas ne pas" before
// "ne pas"), preventing the shorter form from matching twice inside the
// longer one and corrupting the polarity sum.
func sortNegationsLongestFirst(patterns []NegationPattern) {
	sort.SliceStable(patterns, func(i, j int) bool {
		return len(patterns[i].Pattern) > len(patterns[j].Pattern)
	})
}

// ForLanguage returns the profile registered for code, falling back to the
// English profile for any unrecognized code.
//
// # Thread Safety
//
// Safe for concurrent use; the returned Profile must not be mutated.
func ForLanguage(code string) *Profile {
	if p, ok := profiles[code]; ok {
		return p
	}
	return profiles["en"]
}

func init() {
	register(frenchProfile())
	register(englishProfile())
}
