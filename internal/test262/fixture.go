package test262

import (
	"fmt"
	"os"
	"path/filepath"
)

// Fixture is one decoded conformance test: its frontmatter plus the raw
// JSON-AST body text (decoded lazily by Harness.Run, after includes are
// known, so an include resolution failure is reported against the fixture
// that needed it).
type Fixture struct {
	Path string
	Meta *Metadata
	Body string
}

// LoadFixture reads and splits a single fixture file.
func LoadFixture(path string) (*Fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("test262: reading %s: %w", path, err)
	}
	meta, body, err := splitFrontmatter(string(raw))
	if err != nil {
		return nil, fmt.Errorf("test262: %s: %w", path, err)
	}
	return &Fixture{Path: path, Meta: meta, Body: body}, nil
}

// DiscoverFixtures walks root for files with the given extension (".json"
// by default in this harness's convention) and loads each one. A file that
// fails to parse is reported in errs rather than aborting the whole walk,
// so one bad fixture doesn't hide the rest of a suite's results.
func DiscoverFixtures(root, ext string) (fixtures []*Fixture, errs []error) {
	_ = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			errs = append(errs, err)
			return nil
		}
		if info.IsDir() || filepath.Ext(path) != ext {
			return nil
		}
		fx, ferr := LoadFixture(path)
		if ferr != nil {
			errs = append(errs, ferr)
			return nil
		}
		fixtures = append(fixtures, fx)
		return nil
	})
	return fixtures, errs
}
