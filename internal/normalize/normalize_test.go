// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package normalize

import (
	"strings"
	"testing"
)

func TestNormalize_FrenchNegation(t *testing.T) {
	q := Normalize("Ne pas envoyer de mail à a@b.co", "fr")
	if !q.IsNegated {
		t.Fatalf("expected is_negated=true")
	}
}

func TestNormalize_FrenchDoubleNegationCancels(t *testing.T) {
	q := Normalize("ne pas ne pas envoyer de mail à a@b.co", "fr")
	if q.IsNegated {
		t.Fatalf("expected is_negated=false for a double negation")
	}
}

func TestNormalize_PlainQueryNotNegated(t *testing.T) {
	q := Normalize("envoie un mail à alice@example.com", "fr")
	if q.IsNegated {
		t.Fatalf("expected is_negated=false")
	}
}

func TestNormalize_PreservesEmail(t *testing.T) {
	q := Normalize("envoie un mail à alice@example.com", "fr")
	if !strings.Contains(q.CleanedText, "alice@example.com") {
		t.Fatalf("cleaned text lost the email: %q", q.CleanedText)
	}
}

func TestNormalize_ElidesArticlesAndPoliteness(t *testing.T) {
	q := Normalize("Could you please send the email", "en")
	if strings.Contains(q.CleanedText, "please") {
		t.Errorf("expected politeness phrase stripped, got %q", q.CleanedText)
	}
	for _, tok := range strings.Fields(q.CleanedText) {
		if tok == "the" {
			t.Errorf("expected article elided, got %q", q.CleanedText)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	first := Normalize("envoie un mail à alice@example.com", "fr")
	second := Normalize(first.CleanedText, "fr")
	if first.CleanedText != second.CleanedText {
		t.Fatalf("normalize not idempotent: %q != %q", first.CleanedText, second.CleanedText)
	}
}

func TestNormalize_CollapsesWhitespace(t *testing.T) {
	q := Normalize("envoie    un   mail", "fr")
	if strings.Contains(q.CleanedText, "  ") {
		t.Errorf("expected collapsed whitespace, got %q", q.CleanedText)
	}
}

func TestNormalize_UnknownLanguageFallsBackToEnglish(t *testing.T) {
	q := Normalize("do not send the email", "zz")
	if !q.IsNegated {
		t.Fatalf("expected english fallback to detect negation")
	}
}
