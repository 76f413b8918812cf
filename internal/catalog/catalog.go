// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package catalog holds the declared, immutable-after-load set of
// Endpoints the system can match a query onto, together with the
// validation that runs once at startup and the parameter-completeness
// analysis the Result Processor drives slot-filling from.
package catalog

import (
	"fmt"
	"strings"
)

// Parameter is one named, possibly-required input an Endpoint expects.
type Parameter struct {
	Name        string `yaml:"name" json:"name" validate:"required"`
	Description string `yaml:"description" json:"description"`
	Required    bool   `yaml:"required" json:"required"`
}

// Endpoint is a declared, immutable intent: a set of pattern templates the
// query is matched against, and the parameters those templates require.
type Endpoint struct {
	ID          string      `yaml:"id" json:"id" validate:"required"`
	Text        string      `yaml:"text" json:"text" validate:"required"`
	Description string      `yaml:"description" json:"description"`
	Patterns    []string    `yaml:"patterns" json:"patterns" validate:"required,min=1,dive,required"`
	Parameters  []Parameter `yaml:"parameters" json:"parameters" validate:"dive"`
}

// Validate enforces the declared-Endpoint invariants: patterns is
// non-empty, and every required parameter appears as a {name} placeholder
// in at least one pattern.
func (e Endpoint) Validate() error {
	if len(e.Patterns) == 0 {
		return fmt.Errorf("endpoint %q: patterns must be non-empty", e.ID)
	}
	for _, p := range e.Parameters {
		if !p.Required {
			continue
		}
		placeholder := "{" + p.Name + "}"
		found := false
		for _, pattern := range e.Patterns {
			if strings.Contains(pattern, placeholder) {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("endpoint %q: required parameter %q does not appear as %s in any pattern",
				e.ID, p.Name, placeholder)
		}
	}
	return nil
}

// ParameterAnalysis classifies an Endpoint's declared parameters against a
// set of values actually found for one query.
type ParameterAnalysis struct {
	Found           []string
	MissingRequired []string
	MissingOptional []string
}

// Catalog is the validated, immutable-after-load set of Endpoints. Safe for
// concurrent reads; it is built once at startup and never mutated.
type Catalog struct {
	order     []string
	endpoints map[string]Endpoint
}

// New validates every endpoint (failing fast on the first invalid one, per
// the startup-abort contract) and returns a Catalog preserving declaration
// order for iteration and slot-filling determinism.
func New(endpoints []Endpoint) (*Catalog, error) {
	c := &Catalog{
		order:     make([]string, 0, len(endpoints)),
		endpoints: make(map[string]Endpoint, len(endpoints)),
	}
	for _, e := range endpoints {
		if err := e.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.endpoints[e.ID]; dup {
			return nil, fmt.Errorf("duplicate endpoint id %q", e.ID)
		}
		c.endpoints[e.ID] = e
		c.order = append(c.order, e.ID)
	}
	return c, nil
}

// Get returns the endpoint declared under id.
func (c *Catalog) Get(id string) (Endpoint, bool) {
	e, ok := c.endpoints[id]
	return e, ok
}

// Iter returns every endpoint in declaration order.
func (c *Catalog) Iter() []Endpoint {
	out := make([]Endpoint, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.endpoints[id])
	}
	return out
}

// Len reports how many endpoints the catalog holds.
func (c *Catalog) Len() int { return len(c.order) }

// AnalyzeParameters classifies endpoint's declared parameters against
// found, preserving declaration order in the emitted lists.
func AnalyzeParameters(endpoint Endpoint, found map[string]string) ParameterAnalysis {
	analysis := ParameterAnalysis{
		Found:           []string{},
		MissingRequired: []string{},
		MissingOptional: []string{},
	}
	for _, p := range endpoint.Parameters {
		if _, ok := found[p.Name]; ok {
			analysis.Found = append(analysis.Found, p.Name)
			continue
		}
		if p.Required {
			analysis.MissingRequired = append(analysis.MissingRequired, p.Name)
		} else {
			analysis.MissingOptional = append(analysis.MissingOptional, p.Name)
		}
	}
	return analysis
}
