// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the endpoint declaration file (§6 of the matching
// spec) from YAML, validates it with go-playground/validator on top of the
// catalog's own placeholder invariant, and can watch the file for changes
// so a deployment can rebuild the Pattern Index without a restart.
package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/bennekrouf/matcher/internal/catalog"
)

// Declaration is the structured document §6 describes: a single top-level
// "endpoints" key holding the ordered list of Endpoint declarations.
type Declaration struct {
	Endpoints []catalog.Endpoint `yaml:"endpoints" validate:"required,min=1,dive"`
}

var validate = validator.New()

// Load reads path as YAML, struct-tag-validates the decoded document, then
// hands the endpoints to catalog.New for the placeholder invariant check.
// Either validation failure aborts with a diagnostic naming the offending
// endpoint, per the Configuration-error taxonomy.
func Load(path string) (*catalog.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read endpoint declaration %q: %w", path, err)
	}

	var decl Declaration
	if err := yaml.Unmarshal(data, &decl); err != nil {
		return nil, fmt.Errorf("parse endpoint declaration %q: %w", path, err)
	}
	if err := validate.Struct(decl); err != nil {
		return nil, fmt.Errorf("validate endpoint declaration %q: %w", path, err)
	}

	cat, err := catalog.New(decl.Endpoints)
	if err != nil {
		return nil, fmt.Errorf("build catalog from %q: %w", path, err)
	}
	return cat, nil
}

// Watch reloads path with Load whenever the file is written, invoking
// onChange with the freshly built Catalog. A reload that fails validation
// is logged and the previous Catalog keeps serving — a malformed
// in-flight edit must never take down a running deployment. Watch blocks
// until done is closed; it is meant to run in its own goroutine.
func Watch(path string, logger *slog.Logger, onChange func(*catalog.Catalog), done <-chan struct{}) error {
	if logger == nil {
		logger = slog.Default()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("watch %q: %w", path, err)
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cat, err := Load(path)
			if err != nil {
				logger.Error("config: reload failed, keeping previous catalog",
					slog.String("path", path), slog.Any("error", err))
				continue
			}
			logger.Info("config: reloaded endpoint declaration", slog.String("path", path), slog.Int("endpoints", cat.Len()))
			onChange(cat)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("config: watcher error", slog.Any("error", err))
		case <-done:
			return nil
		}
	}
}
