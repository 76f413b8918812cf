// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package lang

import "testing"

func TestForLanguage_KnownCodes(t *testing.T) {
	cases := []string{"fr", "en"}
	for _, code := range cases {
		t.Run(code, func(t *testing.T) {
			p := ForLanguage(code)
			if p == nil {
				t.Fatalf("expected non-nil profile for %q", code)
			}
			if p.Code != code {
				t.Fatalf("got profile %q, want %q", p.Code, code)
			}
		})
	}
}

func TestForLanguage_UnknownFallsBackToEnglish(t *testing.T) {
	p := ForLanguage("zz")
	if p.Code != "en" {
		t.Fatalf("expected fallback to en, got %q", p.Code)
	}
}

func TestForLanguage_NegationsSortedLongestFirst(t *testing.T) {
	p := ForLanguage("fr")
	for i := 1; i < len(p.Negations); i++ {
		if len(p.Negations[i-1].Pattern) < len(p.Negations[i].Pattern) {
			t.Fatalf("negations not sorted longest-first at index %d: %q before %q",
				i, p.Negations[i-1].Pattern, p.Negations[i].Pattern)
		}
	}
}

func TestEnglishProfile_HasNotAndDont(t *testing.T) {
	p := ForLanguage("en")
	found := map[string]bool{}
	for _, n := range p.Negations {
		found[n.Pattern] = true
	}
	for _, want := range []string{"not", "don't", "never"} {
		if !found[want] {
			t.Errorf("expected english negation pattern %q", want)
		}
	}
}
