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

func englishProfile() *Profile {
	return &Profile{
		Code: "en",
		Negations: []NegationPattern{
			{Pattern: "do not ever", Weight: 2},
			{Pattern: "without ever", Weight: 1},
			{Pattern: "do not", Weight: 1},
			{Pattern: "don't", Weight: 1},
			{Pattern: "never", Weight: 1},
			{Pattern: "without", Weight: 1},
			{Pattern: "no longer", Weight: 1},
			{Pattern: "not any", Weight: 1},
			{Pattern: "none of", Weight: 1},
			{Pattern: "not", Weight: 1},
		},
		Articles: []string{"the", "a", "an"},
		PolitePhrases: []string{
			"please", "could you", "can you", "would you", "i would like",
			"i'd like", "kindly",
		},
		AppMarkers: []AppNameMarker{
			{Prefix: " of the application ", Suffix: ""},
			{Prefix: " of the app ", Suffix: ""},
			{Prefix: "named ", Suffix: ""},
			{Prefix: "called ", Suffix: ""},
			{Prefix: "for ", Suffix: ""},
			{Prefix: "of ", Suffix: ""},
			{Prefix: "about ", Suffix: ""},
		},
	}
}
