// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeDecl(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "endpoints.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Run("valid declaration builds a catalog", func(t *testing.T) {
		path := writeDecl(t, `
endpoints:
  - id: send_email
    text: Send an email
    description: Sends an email to a recipient
    patterns:
      - "envoyer un mail à {email}"
    parameters:
      - name: email
        description: recipient address
        required: true
`)
		cat, err := Load(path)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cat.Len() != 1 {
			t.Fatalf("expected 1 endpoint, got %d", cat.Len())
		}
	})

	t.Run("missing patterns fails struct validation", func(t *testing.T) {
		path := writeDecl(t, `
endpoints:
  - id: send_email
    text: Send an email
    description: ""
    patterns: []
    parameters: []
`)
		if _, err := Load(path); err == nil {
			t.Fatal("expected validation error for empty patterns")
		}
	})

	t.Run("required parameter missing from every pattern fails catalog invariant", func(t *testing.T) {
		path := writeDecl(t, `
endpoints:
  - id: send_email
    text: Send an email
    description: ""
    patterns:
      - "envoyer un mail"
    parameters:
      - name: email
        description: recipient address
        required: true
`)
		if _, err := Load(path); err == nil {
			t.Fatal("expected placeholder invariant error")
		}
	})

	t.Run("unreadable file errors", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
			t.Fatal("expected read error")
		}
	})
}
