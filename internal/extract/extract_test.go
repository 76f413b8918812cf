// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package extract

import (
	"testing"

	"github.com/bennekrouf/matcher/internal/lang"
)

func TestEmailExtractor_FirstMatch(t *testing.T) {
	e := emailExtractor{}
	val, ok := e.Extract("envoie un mail à alice@example.com et bob@example.com", nil)
	if !ok {
		t.Fatalf("expected a match")
	}
	if val != "alice@example.com" {
		t.Fatalf("got %q, want first left-to-right match", val)
	}
}

func TestEmailExtractor_NoMatch(t *testing.T) {
	e := emailExtractor{}
	if _, ok := e.Extract("envoie un mail a quelqu'un", nil); ok {
		t.Fatalf("expected no match")
	}
}

func TestAppNameExtractor_French(t *testing.T) {
	profile := lang.ForLanguage("fr")
	e := appNameExtractor{}
	val, ok := e.Extract("analyse de gpecs", profile)
	if !ok {
		t.Fatalf("expected a match")
	}
	if val != "gpecs" {
		t.Fatalf("got %q, want gpecs", val)
	}
}

func TestAppNameExtractor_RejectsEmail(t *testing.T) {
	profile := lang.ForLanguage("fr")
	e := appNameExtractor{}
	if _, ok := e.Extract("analyse de a@b.co", profile); ok {
		t.Fatalf("expected email-shaped candidate to be rejected")
	}
}

func TestAppNameExtractor_RejectsTooShort(t *testing.T) {
	profile := lang.ForLanguage("fr")
	e := appNameExtractor{}
	if _, ok := e.Extract("analyse de x", profile); ok {
		t.Fatalf("expected single-character candidate to be rejected")
	}
}

func TestRegistry_DefaultHasEmailAndApp(t *testing.T) {
	r := NewDefaultRegistry()
	if _, ok := r.Get("email"); !ok {
		t.Errorf("expected email extractor registered")
	}
	if _, ok := r.Get("app"); !ok {
		t.Errorf("expected app extractor registered")
	}
	if _, ok := r.Get("nonexistent"); ok {
		t.Errorf("expected no extractor for unregistered name")
	}
}
