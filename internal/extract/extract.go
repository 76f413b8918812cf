// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package extract holds the pluggable parameter extractors run against a
// query's cleaned text: an email extractor and an application-name
// extractor, registered by parameter name so the Result Processor can
// invoke only the extractor whose placeholder the matched pattern mentions.
package extract

import (
	"regexp"
	"strings"

	"github.com/bennekrouf/matcher/internal/lang"
)

// Extractor pulls a single named parameter value out of cleaned query text.
// It returns ("", false) when nothing usable is found; it never errors —
// absence is not a failure.
type Extractor interface {
	Name() string
	Extract(text string, profile *lang.Profile) (string, bool)
}

// Registry maps parameter name to the Extractor responsible for it.
//
// # Thread Safety
//
// Built once at startup and read concurrently thereafter; safe for
// concurrent Get calls once construction has finished.
type Registry struct {
	byName map[string]Extractor
}

// NewDefaultRegistry registers the two mandated extractors: email and
// application name.
func NewDefaultRegistry() *Registry {
	r := &Registry{byName: map[string]Extractor{}}
	r.Register(emailExtractor{})
	r.Register(appNameExtractor{})
	return r
}

func (r *Registry) Register(e Extractor) {
	r.byName[e.Name()] = e
}

func (r *Registry) Get(name string) (Extractor, bool) {
	e, ok := r.byName[name]
	return e, ok
}

// emailRegexp matches the regular language mandated for the email
// extractor; first left-to-right match wins.
var emailRegexp = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

type emailExtractor struct{}

func (emailExtractor) Name() string { return "email" }

func (emailExtractor) Extract(text string, _ *lang.Profile) (string, bool) {
	match := emailRegexp.FindString(text)
	if match == "" {
		return "", false
	}
	return match, true
}

type appNameExtractor struct{}

func (appNameExtractor) Name() string { return "app" }

// Extract scans the profile's ordered marker list; at the first prefix hit
// the candidate runs from after the prefix to the suffix (or end of input
// if the suffix is empty). Accepted iff length >= 2, no '@', no whitespace.
func (appNameExtractor) Extract(text string, profile *lang.Profile) (string, bool) {
	for _, marker := range profile.AppMarkers {
		idx := strings.Index(text, marker.Prefix)
		if idx < 0 {
			continue
		}
		start := idx + len(marker.Prefix)
		rest := text[start:]

		var candidate string
		if marker.Suffix == "" {
			candidate = rest
		} else {
			end := strings.Index(rest, marker.Suffix)
			if end < 0 {
				candidate = rest
			} else {
				candidate = rest[:end]
			}
		}
		candidate = strings.TrimSpace(candidate)
		if isValidAppName(candidate) {
			return candidate, true
		}
	}
	return "", false
}

func isValidAppName(candidate string) bool {
	if len(candidate) < 2 {
		return false
	}
	if strings.Contains(candidate, "@") {
		return false
	}
	if strings.ContainsAny(candidate, " \t\n") {
		return false
	}
	return true
}
