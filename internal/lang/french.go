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

func frenchProfile() *Profile {
	return &Profile{
		Code: "fr",
		Negations: []NegationPattern{
			{Pattern: "ne pas ne pas", Weight: 2},
			{Pattern: "sans jamais", Weight: 1},
			{Pattern: "ne plus", Weight: 1},
			{Pattern: "ne jamais", Weight: 1},
			{Pattern: "ne pas", Weight: 1},
			{Pattern: "n'est pas", Weight: 1},
			{Pattern: "pas de", Weight: 1},
			{Pattern: "sans", Weight: 1},
			{Pattern: "aucun", Weight: 1},
			{Pattern: "aucune", Weight: 1},
			{Pattern: "jamais", Weight: 1},
		},
		Articles: []string{"le", "la", "les", "l'", "un", "une", "des", "du", "de la", "de l'"},
		PolitePhrases: []string{
			"s'il vous plait", "s'il vous plaît", "merci de", "peux-tu",
			"pourriez-vous", "pouvez-vous", "je voudrais", "j'aimerais",
		},
		AppMarkers: []AppNameMarker{
			{Prefix: " de l'application ", Suffix: ""},
			{Prefix: " de l'app ", Suffix: ""},
			{Prefix: "de ", Suffix: ""},
			{Prefix: "du ", Suffix: ""},
			{Prefix: "pour ", Suffix: ""},
			{Prefix: "sur ", Suffix: ""},
			{Prefix: "nommee ", Suffix: ""},
			{Prefix: "nommée ", Suffix: ""},
			{Prefix: "appelee ", Suffix: ""},
			{Prefix: "appelée ", Suffix: ""},
		},
	}
}
