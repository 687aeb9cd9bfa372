// Package test262 runs test262-shaped conformance fixtures: a YAML
// frontmatter block (includes/flags/negative) followed by a JSON AST body,
// since this module has no bundled parser (the evaluator only ever
// consumes an already-parsed tree). A real test262
// corpus ships raw .js source; this harness's fixtures carry the JSON AST
// pkg/esvm.LoadTree expects in place of source text, everything else about
// the frontmatter convention kept the same.
package test262

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Metadata is the YAML frontmatter block test262 fixtures carry between
// `/*---` and `---*/` markers.
type Metadata struct {
	Includes []string `yaml:"includes"`
	Flags    []string `yaml:"flags"`
	Negative *Negative `yaml:"negative"`
	Features []string `yaml:"features"`
}

// Negative describes an expected failure: the fixture is only a pass if
// evaluation throws and, when Type is set, the thrown error's name equals
// Type. Phase is decoded but the harness does not check it.
type Negative struct {
	Phase string `yaml:"phase"`
	Type  string `yaml:"type"`
}

// HasFlag reports whether the frontmatter declares the named flag (e.g.
// "async", "module", "raw").
func (m *Metadata) HasFlag(flag string) bool {
	if m == nil {
		return false
	}
	for _, f := range m.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

var frontmatterPattern = regexp.MustCompile(`(?s)/\*---\s*\n(.*?)\n---\*/`)

// splitFrontmatter separates a fixture's YAML frontmatter from its body.
// A fixture with no frontmatter block is treated as having empty metadata.
func splitFrontmatter(raw string) (*Metadata, string, error) {
	loc := frontmatterPattern.FindStringSubmatchIndex(raw)
	if loc == nil {
		return &Metadata{}, strings.TrimSpace(raw), nil
	}

	yamlBlock := raw[loc[2]:loc[3]]
	body := strings.TrimSpace(raw[:loc[0]] + raw[loc[1]:])

	var meta Metadata
	if err := yaml.Unmarshal([]byte(yamlBlock), &meta); err != nil {
		return nil, "", fmt.Errorf("test262: invalid frontmatter: %w", err)
	}
	return &meta, body, nil
}
